// File: internal/browser/context_utils.go
package browser

import (
	"context"
	"time"
)

// CombineContext returns a context derived from primary (inheriting its values,
// which is where chromedp keeps the CDP target) that is also canceled when
// operation is done.
func CombineContext(primary, operation context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)

	if deadline, ok := operation.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		combined, cancelDeadline = context.WithDeadline(combined, deadline)
		inner := cancel
		cancel = func() {
			cancelDeadline()
			inner()
		}
	}

	go func() {
		select {
		case <-operation.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}

// valueOnlyContext inherits values but never deadlines or cancellation.
type valueOnlyContext struct{ context.Context }

func (valueOnlyContext) Deadline() (time.Time, bool) { return time.Time{}, false }
func (valueOnlyContext) Done() <-chan struct{}       { return nil }
func (valueOnlyContext) Err() error                  { return nil }

// Detach returns a context carrying ctx's values that outlives ctx. Used for
// cleanup that must run after the session context is gone.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
