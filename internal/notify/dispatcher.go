package notify

import (
	"context"
	"log/slog"

	"FireGar/internal/models/domain"
	"FireGar/internal/observability"
	"FireGar/internal/utils/logger/sl"
)

// Provider delivers one rendered message over a single channel.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans a publish notification out to resolved recipients.
// Delivery is best-effort: one recipient's failure never aborts the rest,
// and there is no retry, so each recipient is attempted at most once per
// publish.
type Dispatcher struct {
	providers  []Provider
	appBaseURL string
	metrics    *observability.Metrics
	log        *slog.Logger
}

// NewDispatcher creates a dispatcher sending over the given providers.
func NewDispatcher(providers []Provider, appBaseURL string, metrics *observability.Metrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		providers:  providers,
		appBaseURL: appBaseURL,
		metrics:    metrics,
		log:        logger.With(slog.String("component", "notify")),
	}
}

// Dispatch sends one message per recipient per provider. It returns true
// only if every attempted send succeeded; an empty recipient list is a
// successful no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, a *domain.Assessment, recipients []domain.Recipient) bool {
	op := "notify.Dispatcher.Dispatch"
	log := d.log.With(
		slog.String("op", op),
		slog.String("assessmentID", a.ID.String()),
	)

	if len(recipients) == 0 {
		log.Info("no recipients selected, nothing to send")
		return true
	}

	ok := true
	for _, r := range recipients {
		msg := buildMessage(d.appBaseURL, a, r)
		for _, p := range d.providers {
			if err := p.Send(ctx, msg); err != nil {
				ok = false
				d.metrics.NotificationSends.WithLabelValues(p.Name(), "error").Inc()
				log.Error("notification send failed",
					slog.String("channel", p.Name()),
					slog.String("recipient", r.Email),
					sl.Err(err),
				)
				continue
			}
			d.metrics.NotificationSends.WithLabelValues(p.Name(), "success").Inc()
		}
	}

	log.Info("notification dispatch finished",
		slog.Int("recipients", len(recipients)),
		slog.Bool("allDelivered", ok),
	)
	return ok
}
