// Package notify delivers imbalance alerts over one or more channels. Only
// the success/failure contract matters to the rest of the pipeline; transport
// details live in the individual senders.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hawkline/depthwatch/internal/domain"
)

// Sender is the interface each notification channel implements.
type Sender interface {
	// Send delivers one alert message with the given subject and body.
	Send(ctx context.Context, subject, body string) error
	// Name returns a human-readable channel identifier (e.g. "email").
	Name() string
}

// Notifier formats alerts and dispatches them to every configured sender. It
// implements domain.Notifier: delivery counts as successful when at least one
// channel accepted the message, which is what starts the debouncer cooldown.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier over the given senders.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Send formats and dispatches the alert. With no senders configured the alert
// is only logged and still reported as delivered, so the debouncer does not
// spin on retries with nothing to send to.
func (n *Notifier) Send(ctx context.Context, a domain.Alert) bool {
	subject, body := formatAlert(a)

	if len(n.senders) == 0 {
		n.logger.WarnContext(ctx, "no senders configured, alert logged only",
			slog.String("subject", subject),
		)
		return true
	}

	delivered := 0
	for _, s := range n.senders {
		if err := s.Send(ctx, subject, body); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("alert_id", a.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		delivered++
		n.logger.DebugContext(ctx, "alert delivered",
			slog.String("sender", s.Name()),
			slog.String("alert_id", a.ID),
		)
	}
	return delivered > 0
}

// formatAlert renders the alert subject and plain-text body.
func formatAlert(a domain.Alert) (subject, body string) {
	direction := "strong ask pressure (bearish)"
	if a.Bullish() {
		direction = "strong bid pressure (bullish)"
	}
	subject = fmt.Sprintf("[depthwatch] %s imbalance %.2f", a.Symbol, a.Imbalance)
	body = fmt.Sprintf(
		"Symbol:     %s\nBest bid:   $%.2f\nImbalance:  %.4f\nDirection:  %s\nFired at:   %s\nAlert ID:   %s\n",
		a.Symbol, a.BestBid, a.Imbalance, direction,
		a.FiredAt.UTC().Format("2006-01-02 15:04:05 UTC"), a.ID,
	)
	return subject, body
}
