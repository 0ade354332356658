// File: internal/navigation/fake_driver_test.go
package navigation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/navigator/internal/browser"
	"github.com/xkilldash9x/navigator/internal/selectors"
)

const testBase = "http://app.test"

var testEpoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// fakePage is the rendered state of one path in the fake browser.
type fakePage struct {
	title    string
	body     string
	status   int
	elements map[string][]browser.Element
}

// fakeDriver is an in-memory browser: a map of paths to rendered pages, and
// links that change the current path when clicked.
type fakeDriver struct {
	mu sync.Mutex

	pages   map[string]*fakePage
	links   map[string]string
	effects map[string]func(*fakeDriver)
	current string

	width, height int

	clicks      []string
	navigations []string
	resizes     [][2]int
	reloads     int
	urlReads    int

	queryErrs map[string]error
	onReload  func(*fakeDriver)
}

var (
	_ browser.Driver         = (*fakeDriver)(nil)
	_ browser.StatusReporter = (*fakeDriver)(nil)
)

func newFakeDriver(width, height int) *fakeDriver {
	return &fakeDriver{
		pages:     make(map[string]*fakePage),
		links:     make(map[string]string),
		effects:   make(map[string]func(*fakeDriver)),
		queryErrs: make(map[string]error),
		width:     width,
		height:    height,
	}
}

func (d *fakeDriver) page(path string) *fakePage {
	p, ok := d.pages[path]
	if !ok {
		p = &fakePage{status: 200, elements: make(map[string][]browser.Element)}
		d.pages[path] = p
	}
	return p
}

func (d *fakeDriver) add(path, selector string, els ...browser.Element) {
	p := d.page(path)
	p.elements[selector] = append(p.elements[selector], els...)
}

// link places a usable element matched by selector on path that leads to target.
func (d *fakeDriver) link(path, selector, handle, target string) {
	d.add(path, selector, usable(handle))
	d.links[handle] = target
}

func usable(handle string) browser.Element {
	return browser.Element{
		Handle:       handle,
		Visible:      true,
		Interactable: true,
		Box:          browser.BoundingBox{Width: 120, Height: 48},
	}
}

func sized(handle string, w, h float64) browser.Element {
	el := usable(handle)
	el.Box = browser.BoundingBox{Width: w, Height: h}
	return el
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.navigations = append(d.navigations, url)
	d.current = strings.TrimPrefix(url, testBase)
	return ctx.Err()
}

func (d *fakeDriver) Reload(ctx context.Context) error {
	d.mu.Lock()
	d.reloads++
	hook := d.onReload
	d.mu.Unlock()
	if hook != nil {
		hook(d)
	}
	return ctx.Err()
}

func (d *fakeDriver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.urlReads++
	return testBase + d.current, nil
}

func (d *fakeDriver) Title(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pages[d.current]; ok {
		return p.title, nil
	}
	return "", nil
}

func (d *fakeDriver) BodyText(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pages[d.current]; ok {
		return p.body, nil
	}
	return "", nil
}

func (d *fakeDriver) DocumentStatus(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pages[d.current]; ok {
		return p.status, nil
	}
	return 404, nil
}

func (d *fakeDriver) QueryElements(ctx context.Context, selector string) ([]browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.queryErrs[selector]; err != nil {
		return nil, err
	}
	p, ok := d.pages[d.current]
	if !ok {
		return nil, nil
	}
	found := p.elements[selector]
	out := make([]browser.Element, len(found))
	for i, el := range found {
		el.Selector = selector
		el.Index = i
		out[i] = el
	}
	return out, nil
}

func (d *fakeDriver) Click(ctx context.Context, el browser.Element) error {
	d.mu.Lock()
	d.clicks = append(d.clicks, el.Handle)
	effect := d.effects[el.Handle]
	if target, ok := d.links[el.Handle]; ok {
		d.current = target
	}
	d.mu.Unlock()
	if effect != nil {
		effect(d)
	}
	return nil
}

func (d *fakeDriver) SetViewportSize(ctx context.Context, width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resizes = append(d.resizes, [2]int{width, height})
	d.width, d.height = width, height
	return nil
}

func (d *fakeDriver) ViewportSize(ctx context.Context) (int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.width == 0 {
		return 0, 0, errors.New("viewport unavailable")
	}
	return d.width, d.height, nil
}

func (d *fakeDriver) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	return ctx.Err()
}

func (d *fakeDriver) WaitForTimeout(ctx context.Context, dur time.Duration) error {
	return ctx.Err()
}

// -- fixtures --

const (
	mainContentSel = "[data-testid='main-content']"
	navTicketsSel  = "[data-testid='nav-tickets']"
	menuToggleSel  = "[data-testid='mobile-menu-toggle']"
	mobileNavSel   = "[data-testid='mobile-nav-tickets']"
)

// healthyTickets renders a valid tickets page at /tickets.
func healthyTickets(d *fakeDriver) {
	p := d.page("/tickets")
	p.title = "Tickets | Helpdesk"
	p.body = "Open tickets"
	p.status = 200
	p.elements[mainContentSel] = []browser.Element{usable("main")}
}

// dashboardWithNav renders /dashboard with a desktop nav link to tickets.
func dashboardWithNav(d *fakeDriver) {
	d.current = "/dashboard"
	p := d.page("/dashboard")
	p.title = "Dashboard"
	p.body = "Welcome"
	d.link("/dashboard", navTicketsSel, "nav-tickets", "/tickets")
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func newTestNavigator(t *testing.T, d *fakeDriver, reg *selectors.Registry, opts ...Option) (*Navigator, *sleepRecorder) {
	t.Helper()
	if reg == nil {
		reg = selectors.DefaultRegistry()
	}
	rec := &sleepRecorder{}
	base := []Option{
		WithLogger(zaptest.NewLogger(t)),
		WithBaseURL(testBase),
		WithSleeper(rec.sleep),
		WithClock(func() time.Time { return testEpoch }),
	}
	n, err := New(d, reg, append(base, opts...)...)
	require.NoError(t, err)
	return n, rec
}
