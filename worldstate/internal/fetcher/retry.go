package fetcher

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

type retryState int

const (
	stateAttempt retryState = iota
	stateBackoff
	stateGiveUp
)

// Retry runs an operation up to MaxAttempts times with a fixed Delay
// between attempts. It is independent of any caller-side backoff.
type Retry struct {
	MaxAttempts int
	Delay       time.Duration
	Clock       clockwork.Clock

	// OnAttempt is called before every attempt; n counts from 1.
	OnAttempt func(n int)
}

// Do runs op until it succeeds, attempts run out or ctx ends. It returns
// the last error and the number of attempts made.
func (r Retry) Do(ctx context.Context, op func(context.Context) ([]byte, error)) ([]byte, int, error) {
	clock := r.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	limit := r.MaxAttempts
	if limit < 1 {
		limit = 1
	}

	var (
		n       int
		lastErr error
		state   = stateAttempt
	)
	for {
		switch state {
		case stateAttempt:
			n++
			if r.OnAttempt != nil {
				r.OnAttempt(n)
			}
			body, err := op(ctx)
			if err == nil {
				return body, n, nil
			}
			lastErr = err
			switch {
			case ctx.Err() != nil, n >= limit:
				state = stateGiveUp
			default:
				state = stateBackoff
			}

		case stateBackoff:
			select {
			case <-clock.After(r.Delay):
				state = stateAttempt
			case <-ctx.Done():
				state = stateGiveUp
			}

		case stateGiveUp:
			return nil, n, lastErr
		}
	}
}
