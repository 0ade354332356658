// File: internal/browser/tracker.go
package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ErrNetworkBusy is returned when the network did not go quiet before the wait timed out.
var ErrNetworkBusy = errors.New("network did not reach idle before timeout")

// NetworkTracker counts in-flight requests from CDP network events and records
// the status of the latest main-frame document response. Document loads
// triggered by clicks are observed the same way as explicit navigations.
type NetworkTracker struct {
	logger *zap.Logger

	mu           sync.RWMutex
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
	mainFrame    cdp.FrameID
	docStatus    int
	docSeen      bool
}

// NewNetworkTracker returns an empty tracker. Call Listen to attach it to a target.
func NewNetworkTracker(logger *zap.Logger) *NetworkTracker {
	return &NetworkTracker{
		logger:       logger.Named("network"),
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: time.Now(),
	}
}

// Listen subscribes the tracker to the target bound to ctx. The subscription
// ends when ctx is canceled.
func (t *NetworkTracker) Listen(ctx context.Context) {
	chromedp.ListenTarget(ctx, t.handleEvent)
}

func (t *NetworkTracker) handleEvent(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.mu.Lock()
		t.inflight[e.RequestID] = struct{}{}
		t.lastActivity = time.Now()
		t.mu.Unlock()
	case *network.EventResponseReceived:
		if e.Type != network.ResourceTypeDocument || e.Response == nil {
			return
		}
		t.mu.Lock()
		// Until the main frame is known every document counts; afterwards
		// iframe documents are ignored.
		if t.mainFrame == "" || e.FrameID == t.mainFrame {
			t.docStatus = int(e.Response.Status)
			t.docSeen = true
		}
		t.mu.Unlock()
	case *page.EventFrameNavigated:
		if e.Frame == nil || e.Frame.ParentID != "" {
			return
		}
		t.mu.Lock()
		t.mainFrame = e.Frame.ID
		t.mu.Unlock()
	case *network.EventLoadingFinished:
		t.finish(e.RequestID)
	case *network.EventLoadingFailed:
		t.finish(e.RequestID)
	}
}

func (t *NetworkTracker) finish(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.inflight[id]; !ok {
		return
	}
	delete(t.inflight, id)
	t.lastActivity = time.Now()
}

// Inflight returns the number of requests that have started but not finished.
func (t *NetworkTracker) Inflight() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.inflight)
}

// MarkNavigation forgets the previous document status and any requests that
// belonged to the old document.
func (t *NetworkTracker) MarkNavigation() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.docStatus = 0
	t.docSeen = false
	t.inflight = make(map[network.RequestID]struct{})
	t.lastActivity = time.Now()
}

// DocumentStatus returns the HTTP status of the current document, if one was observed.
func (t *NetworkTracker) DocumentStatus() (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.docStatus, t.docSeen
}

// WaitIdle polls until no request has been in flight for quiet, or until
// timeout elapses (ErrNetworkBusy), or ctx is done.
func (t *NetworkTracker) WaitIdle(ctx context.Context, quiet, timeout time.Duration) error {
	if quiet <= 0 {
		quiet = 500 * time.Millisecond
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(quiet / 4)
	defer ticker.Stop()

	for {
		t.mu.RLock()
		count := len(t.inflight)
		since := time.Since(t.lastActivity)
		t.mu.RUnlock()

		if count == 0 && since >= quiet {
			return nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.logger.Debug("Network still busy at idle timeout.", zap.Int("inflight_requests", count), zap.Duration("timeout", timeout))
			return ErrNetworkBusy
		case <-ticker.C:
		}
	}
}
