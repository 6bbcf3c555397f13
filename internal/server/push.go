package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hawkline/depthwatch/internal/domain"
	"github.com/hawkline/depthwatch/internal/server/handler"
	"github.com/hawkline/depthwatch/internal/server/ws"
)

// PressurePush implements domain.Renderer by broadcasting each query-loop
// tick's latest row to connected WebSocket clients.
type PressurePush struct {
	hub *ws.Hub
}

// NewPressurePush creates a PressurePush over hub.
func NewPressurePush(hub *ws.Hub) *PressurePush {
	return &PressurePush{hub: hub}
}

// pushEvent is the message pushed to dashboard clients. Latest is nil while
// no data has been written yet.
type pushEvent struct {
	Type     string                   `json:"type"`
	At       time.Time                `json:"at"`
	RowCount int                      `json:"row_count"`
	Latest   *handler.PressureRowJSON `json:"latest"`
}

// Render implements domain.Renderer. Rows arrive newest first.
func (p *PressurePush) Render(_ context.Context, rows []domain.PressureRow) error {
	ev := pushEvent{
		Type:     "pressure",
		At:       time.Now().UTC(),
		RowCount: len(rows),
	}
	if len(rows) > 0 {
		latest := handler.ToJSONRows(rows[:1])[0]
		ev.Latest = &latest
	}

	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("server: marshal push event: %w", err)
	}
	p.hub.Broadcast(msg)
	return nil
}
