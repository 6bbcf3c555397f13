// Package render provides reader-side renderers for pressure rows.
package render

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/hawkline/depthwatch/internal/domain"
)

// Console renders the latest market state as a one-line KPI summary plus a
// small table of recent rows. An empty input renders a waiting indication.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	maxRows int
}

// NewConsole creates a Console writing to out, showing at most maxRows recent
// rows per refresh.
func NewConsole(out io.Writer, maxRows int) *Console {
	if maxRows <= 0 {
		maxRows = 10
	}
	return &Console{out: out, maxRows: maxRows}
}

// Render implements domain.Renderer. Rows arrive newest first.
func (c *Console) Render(_ context.Context, rows []domain.PressureRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(rows) == 0 {
		_, err := fmt.Fprintln(c.out, "waiting for data / store busy...")
		return err
	}

	latest := rows[0]
	pressureLabel := "ask pressure"
	if latest.ImbalanceRatio > 0 {
		pressureLabel = "bid pressure"
	}
	if _, err := fmt.Fprintf(c.out,
		"%s  best_bid=$%.2f  imbalance=%.4f (%s)  spread=%.2f\n",
		latest.Symbol, latest.BestBid, latest.ImbalanceRatio, pressureLabel, latest.Spread,
	); err != nil {
		return err
	}

	show := rows
	if len(show) > c.maxRows {
		show = show[:c.maxRows]
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "timestamp\tbid_vol\task_vol\timbalance\tspread")
	for _, r := range show {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.2f\n",
			r.Timestamp.Format("15:04:05"),
			r.BidVolTop5, r.AskVolTop5, r.ImbalanceRatio, r.Spread,
		)
	}
	return w.Flush()
}
