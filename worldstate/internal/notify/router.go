package notify

import (
	"context"
	"errors"
	"log/slog"
)

// Router fans an event out to every notifier. A failing notifier does not
// stop the others; the errors are joined.
type Router struct {
	notifiers []Notifier
	logger    *slog.Logger
}

// NewRouter creates a fan-out router.
func NewRouter(logger *slog.Logger, notifiers ...Notifier) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{notifiers: notifiers, logger: logger}
}

// Add appends a notifier. Not safe to call once events are flowing.
func (r *Router) Add(n Notifier) { r.notifiers = append(r.notifiers, n) }

// Len returns the number of notifiers.
func (r *Router) Len() int { return len(r.notifiers) }

func (r *Router) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range r.notifiers {
		if err := n.Notify(ctx, ev); err != nil {
			r.logger.Warn("notify: delivery failed", "category", ev.Category, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Router) Close() error {
	var errs []error
	for _, n := range r.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
