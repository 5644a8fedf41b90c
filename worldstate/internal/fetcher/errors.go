package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/browser"
)

// Kind classifies a failed fetch.
type Kind int

const (
	// KindBrowserFailure covers every engine failure that is neither a
	// timeout nor a bad status: launch errors, navigation errors, missing
	// ready selector, connection resets.
	KindBrowserFailure Kind = iota
	KindTimeout
	KindBadStatus
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindBadStatus:
		return "bad_status"
	}
	return "browser_failure"
}

// FetchError is the final error of a fetch after retries.
type FetchError struct {
	Kind     Kind
	Source   string
	URL      string
	Status   int // set for KindBadStatus
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Kind == KindBadStatus {
		return fmt.Sprintf("fetcher: %s: status %d after %d attempt(s)", e.Source, e.Status, e.Attempts)
	}
	return fmt.Sprintf("fetcher: %s: %s after %d attempt(s): %v", e.Source, e.Kind, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusError reports a non-200 document response from the HTTP engine.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetcher: %s: status %d", e.URL, e.Status)
}

// IsKind reports whether err is a FetchError of kind k.
func IsKind(err error, k Kind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == k
}

func classify(err error) (Kind, int) {
	var se *StatusError
	if errors.As(err, &se) {
		return KindBadStatus, se.Status
	}
	var bse *browser.StatusError
	if errors.As(err, &bse) {
		return KindBadStatus, bse.Status
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, 0
	}
	return KindBrowserFailure, 0
}
