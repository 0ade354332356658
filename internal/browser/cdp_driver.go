// File: internal/browser/cdp_driver.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/navigator/internal/config"
	"github.com/xkilldash9x/navigator/internal/viewport"
)

const (
	probeAttribute      = "data-nav-probe"
	defaultQuietPeriod  = 500 * time.Millisecond
	defaultActionBudget = 15 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// probeScript marks every element matched by a selector with a handle attribute
// and reports its geometry and hit-testing state.
const probeScript = `(function(sel, token, attr) {
  let nodes = [];
  if (sel.startsWith("xpath=")) {
    const r = document.evaluate(sel.slice(6), document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
    for (let i = 0; i < r.snapshotLength; i++) {
      const n = r.snapshotItem(i);
      if (n.nodeType === Node.ELEMENT_NODE) nodes.push(n);
    }
  } else {
    nodes = Array.from(document.querySelectorAll(sel));
  }
  return nodes.map(function(el, i) {
    const handle = token + "-" + i;
    el.setAttribute(attr, handle);
    const rect = el.getBoundingClientRect();
    const style = window.getComputedStyle(el);
    const visible = rect.width > 0 && rect.height > 0 &&
      style.display !== "none" && style.visibility !== "hidden" &&
      parseFloat(style.opacity || "1") > 0;
    let interactable = false;
    if (visible && style.pointerEvents !== "none") {
      const cx = rect.left + rect.width / 2;
      const cy = rect.top + rect.height / 2;
      if (cx < 0 || cy < 0 || cx > window.innerWidth || cy > window.innerHeight) {
        interactable = true;
      } else {
        const hit = document.elementFromPoint(cx, cy);
        interactable = hit !== null && (hit === el || el.contains(hit) || hit.contains(el));
      }
    }
    return {
      handle: handle,
      tag: el.tagName.toLowerCase(),
      text: (el.innerText || el.textContent || "").trim().slice(0, 200),
      visible: visible,
      interactable: interactable,
      x: rect.left, y: rect.top, width: rect.width, height: rect.height
    };
  });
})(%s, %s, %s)`

type probeResult struct {
	Handle       string  `json:"handle"`
	Tag          string  `json:"tag"`
	Text         string  `json:"text"`
	Visible      bool    `json:"visible"`
	Interactable bool    `json:"interactable"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
}

// CDPDriver drives a single Chrome tab over the DevTools protocol.
// It is owned by one scenario at a time and is not safe for concurrent navigation.
type CDPDriver struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger
	tracker     *NetworkTracker
	quiet       time.Duration

	mu     sync.Mutex
	closed bool
}

var (
	_ Driver         = (*CDPDriver)(nil)
	_ StatusReporter = (*CDPDriver)(nil)
)

// NewCDPDriver launches a browser per cfg and opens one tab sized to the
// configured device or viewport.
func NewCDPDriver(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*CDPDriver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("cdp_driver")

	device := viewport.Device{Name: "custom", Width: cfg.Viewport.Width, Height: cfg.Viewport.Height, ScaleFactor: 1}
	if cfg.Device != "" {
		d, ok := viewport.DeviceByName(cfg.Device)
		if !ok {
			log.Warn("Unknown device preset, using default.", zap.String("device", cfg.Device), zap.String("default", d.Name))
		}
		device = d
	}
	if device.Width <= 0 || device.Height <= 0 {
		device = viewport.DefaultDevice
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(cfg, device)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Sugar().Debugf))

	quiet := cfg.IdleQuietPeriod
	if quiet <= 0 {
		quiet = defaultQuietPeriod
	}

	d := &CDPDriver{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		logger:      log,
		tracker:     NewNetworkTracker(log),
		quiet:       quiet,
	}
	d.tracker.Listen(tabCtx)

	if err := chromedp.Run(tabCtx, network.Enable(), d.metrics(device.Width, device.Height, device.ScaleFactor, device.Mobile)); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Info("Browser started.",
		zap.String("device", device.Name),
		zap.Int("width", device.Width),
		zap.Int("height", device.Height),
		zap.Bool("headless", cfg.Headless))
	return d, nil
}

func allocatorOptions(cfg config.BrowserConfig, device viewport.Device) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(device.Width, device.Height),
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	for _, arg := range cfg.Args {
		key, value, found := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if found {
			opts = append(opts, chromedp.Flag(key, value))
		} else {
			opts = append(opts, chromedp.Flag(key, true))
		}
	}
	return opts
}

func (d *CDPDriver) metrics(width, height int, scale float64, mobile bool) chromedp.Tasks {
	if scale <= 0 {
		scale = 1
	}
	return chromedp.Tasks{
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), scale, mobile),
		emulation.SetTouchEmulationEnabled(mobile),
	}
}

// run executes actions bounded by both the tab lifetime and ctx. Operations
// with no deadline of their own get defaultActionBudget.
func (d *CDPDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return errors.New("browser driver is closed")
	}

	opCtx, cancel := CombineContext(d.ctx, ctx)
	defer cancel()
	if _, ok := opCtx.Deadline(); !ok {
		var budgetCancel context.CancelFunc
		opCtx, budgetCancel = context.WithTimeout(opCtx, defaultActionBudget)
		defer budgetCancel()
	}
	return chromedp.Run(opCtx, actions...)
}

// Navigate loads url in the tab and resets the network tracker for the new document.
func (d *CDPDriver) Navigate(ctx context.Context, url string) error {
	d.logger.Debug("Navigating.", zap.String("url", url))
	d.tracker.MarkNavigation()
	if err := d.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// Reload reloads the current document.
func (d *CDPDriver) Reload(ctx context.Context) error {
	d.tracker.MarkNavigation()
	if err := d.run(ctx, chromedp.Reload()); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return nil
}

func (d *CDPDriver) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := d.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("could not read location: %w", err)
	}
	return loc, nil
}

func (d *CDPDriver) Title(ctx context.Context) (string, error) {
	var title string
	if err := d.run(ctx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("could not read title: %w", err)
	}
	return title, nil
}

func (d *CDPDriver) BodyText(ctx context.Context) (string, error) {
	var text string
	script := `document.body ? (document.body.innerText || "") : ""`
	if err := d.run(ctx, chromedp.Evaluate(script, &text)); err != nil {
		return "", fmt.Errorf("could not read body text: %w", err)
	}
	return text, nil
}

// QueryElements probes every element matching selector. Each returned Element
// carries a handle that Click can later target.
func (d *CDPDriver) QueryElements(ctx context.Context, selector string) ([]Element, error) {
	script, err := buildProbe(selector, uuid.NewString())
	if err != nil {
		return nil, err
	}
	var results []probeResult
	if err := d.run(ctx, chromedp.Evaluate(script, &results)); err != nil {
		return nil, fmt.Errorf("query %q failed: %w", selector, err)
	}

	elements := make([]Element, 0, len(results))
	for i, r := range results {
		elements = append(elements, Element{
			Handle:       r.Handle,
			Selector:     selector,
			Index:        i,
			Tag:          r.Tag,
			Text:         r.Text,
			Visible:      r.Visible,
			Interactable: r.Interactable,
			Box:          BoundingBox{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height},
		})
	}
	return elements, nil
}

func buildProbe(selector, token string) (string, error) {
	args := make([]string, 0, 3)
	for _, a := range []string{selector, token, probeAttribute} {
		b, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("could not encode probe argument: %w", err)
		}
		args = append(args, string(b))
	}
	return fmt.Sprintf(probeScript, args[0], args[1], args[2]), nil
}

func handleSelector(handle string) string {
	return fmt.Sprintf(`[%s="%s"]`, probeAttribute, handle)
}

// Click scrolls el into view and clicks it through the marker stamped by QueryElements.
// Elements from a previous document no longer carry the marker and fail to resolve.
func (d *CDPDriver) Click(ctx context.Context, el Element) error {
	if el.Handle == "" {
		return errors.New("cannot click element without a handle")
	}
	sel := handleSelector(el.Handle)
	if err := d.run(ctx, chromedp.ScrollIntoView(sel, chromedp.ByQuery), chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click on %q failed: %w", el.Selector, err)
	}
	return nil
}

// SetViewportSize emulates a viewport of the given size. Mobile and tablet
// widths also enable touch emulation.
func (d *CDPDriver) SetViewportSize(ctx context.Context, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid viewport size %dx%d", width, height)
	}
	touch := viewport.IsTouchCategory(viewport.Classify(width))
	if err := d.run(ctx, d.metrics(width, height, 1, touch)); err != nil {
		return fmt.Errorf("could not set viewport to %dx%d: %w", width, height, err)
	}
	d.logger.Debug("Viewport resized.", zap.Int("width", width), zap.Int("height", height), zap.Bool("touch", touch))
	return nil
}

// ViewportSize reports the layout viewport as seen by the page.
func (d *CDPDriver) ViewportSize(ctx context.Context) (int, int, error) {
	var dims []int
	if err := d.run(ctx, chromedp.Evaluate(`[window.innerWidth, window.innerHeight]`, &dims)); err != nil {
		return 0, 0, fmt.Errorf("could not read viewport size: %w", err)
	}
	if len(dims) != 2 {
		return 0, 0, fmt.Errorf("unexpected viewport dimensions %v", dims)
	}
	return dims[0], dims[1], nil
}

// WaitForNetworkIdle blocks until the tracker sees a quiet window or timeout expires.
func (d *CDPDriver) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	opCtx, cancel := CombineContext(d.ctx, ctx)
	defer cancel()
	return d.tracker.WaitIdle(opCtx, d.quiet, timeout)
}

func (d *CDPDriver) WaitForTimeout(ctx context.Context, dur time.Duration) error {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DocumentStatus returns the HTTP status of the last main document response,
// or 0 when none has been observed since the last navigation.
func (d *CDPDriver) DocumentStatus(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	status, _ := d.tracker.DocumentStatus()
	return status, nil
}

// Close shuts down the tab and the browser process. It is safe to call more than once.
func (d *CDPDriver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	closeCtx, cancel := context.WithTimeout(Detach(d.ctx), 5*time.Second)
	defer cancel()
	err := chromedp.Cancel(closeCtx)
	d.cancel()
	d.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("error closing browser: %w", err)
	}
	d.logger.Debug("Browser closed.")
	return nil
}
