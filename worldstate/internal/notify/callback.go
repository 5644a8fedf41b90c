package notify

import "context"

// Func handles an event in-process.
type Func func(ctx context.Context, ev Event) error

// Callback hands events to a Go function, for embedding the service in a
// bot process.
type Callback struct {
	fn Func
}

// NewCallback creates a Callback notifier. A nil fn drops events.
func NewCallback(fn Func) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) Notify(ctx context.Context, ev Event) error {
	if c.fn != nil {
		return c.fn(ctx, ev)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
