// File: internal/navigation/navigator.go

// Package navigation drives a browser to a named page and decides whether the
// page loaded. It resolves navigation links through the selector registry,
// retries with bounded backoff, falls back to direct URL navigation and
// recovers from broken pages.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/navigator/internal/browser"
	"github.com/xkilldash9x/navigator/internal/selectors"
	"github.com/xkilldash9x/navigator/internal/viewport"
)

// State is a phase of the navigation state machine.
type State int

const (
	Idle State = iota
	Resolving
	Clicking
	AwaitingSettle
	Validating
	Succeeded
	Retrying
	FallingBack
	Failed
)

var stateNames = [...]string{"idle", "resolving", "clicking", "awaiting_settle", "validating", "succeeded", "retrying", "falling_back", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// menuSettle is how long the drawer gets to animate open after its toggle is clicked.
const menuSettle = 300 * time.Millisecond

// genericTouchTargets are measured when no page has been navigated yet.
var genericTouchTargets = []string{"a[href]", "button", "[role='button']", "input[type='submit']"}

// Navigator is the navigation orchestrator. A Navigator owns its driver's page
// for the duration of a call and must not be shared between concurrent scenarios.
type Navigator struct {
	driver    browser.Driver
	registry  *selectors.Registry
	resolver  *Resolver
	validator *Validator
	detector  *ErrorDetector
	settings

	lastPage string
}

// New builds a navigator over driver and registry.
func New(driver browser.Driver, registry *selectors.Registry, opts ...Option) (*Navigator, error) {
	if driver == nil {
		return nil, errors.New("navigator requires a driver")
	}
	if registry == nil {
		return nil, errors.New("navigator requires a selector registry")
	}
	s := newSettings(opts)
	if err := s.retry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry configuration: %w", err)
	}
	s.logger = s.logger.Named("navigator")

	return &Navigator{
		driver:    driver,
		registry:  registry,
		resolver:  NewResolver(driver, s.logger),
		validator: NewValidator(driver, registry, WithProfiles(s.profiles), WithClock(s.now), WithLogger(s.logger)),
		detector:  NewErrorDetector(driver, s.logger),
		settings:  s,
	}, nil
}

// run is the bookkeeping for one NavigateToPage call.
type run struct {
	page     selectors.PageConfig
	category viewport.Category
	corrID   string
	start    time.Time
	now      func() time.Time
	logger   *zap.Logger

	trail     []State
	selectors []Attempt
	attempts  int
	last      *PageValidation
	lastErr   error
}

func (r *run) enter(s State) {
	r.trail = append(r.trail, s)
	r.logger.Debug("State transition.", zap.Stringer("state", s), zap.Int("attempt", r.attempts))
}

func (r *run) trailStrings() []string {
	out := make([]string, len(r.trail))
	for i, s := range r.trail {
		out[i] = s.String()
	}
	return out
}

// succeed annotates v with the run's diagnostics.
func (r *run) succeed(v *PageValidation) *PageValidation {
	r.enter(Succeeded)
	v.CorrelationID = r.corrID
	v.Attempts = r.attempts
	v.Trail = r.trailStrings()
	r.logger.Info("Navigation succeeded.",
		zap.Int("attempts", r.attempts),
		zap.Bool("direct_url", v.ViaDirectURL),
		zap.Int("warnings", len(v.Warnings)),
		zap.Duration("elapsed", r.now().Sub(r.start)))
	return v
}

// NavigateToPage navigates to page through the UI using the configured retry ceiling.
// The category comes from override when non-nil, otherwise from the live viewport.
// Failure after retries and fallback returns a *NavigationFailedError; an
// unregistered page returns *selectors.UnknownPageError immediately.
func (n *Navigator) NavigateToPage(ctx context.Context, page string, override *viewport.Category) (*PageValidation, error) {
	return n.navigate(ctx, page, override, n.retry.MaxRetries)
}

// RetryNavigation is NavigateToPage with a per-call retry ceiling.
func (n *Navigator) RetryNavigation(ctx context.Context, page string, maxRetries int) (*PageValidation, error) {
	if maxRetries <= 0 {
		return nil, fmt.Errorf("max retries must be greater than 0, got %d", maxRetries)
	}
	return n.navigate(ctx, page, nil, maxRetries)
}

func (n *Navigator) navigate(ctx context.Context, page string, override *viewport.Category, maxRetries int) (*PageValidation, error) {
	cfg, err := n.registry.Page(page)
	if err != nil {
		return nil, err
	}

	corrID := uuid.NewString()
	r := &run{
		page:   cfg,
		corrID: corrID,
		start:  n.now(),
		now:    n.now,
		logger: n.logger.With(zap.String("page", cfg.Name), zap.String("correlation_id", corrID)),
	}
	r.enter(Idle)

	r.category, err = n.resolveCategory(ctx, override, r.logger)
	if err != nil {
		return nil, err
	}
	r.logger = r.logger.With(zap.String("viewport", r.category.String()))
	r.logger.Info("Navigating to page.", zap.Int("max_retries", maxRetries))
	n.lastPage = cfg.Name

	recoverNext := false
	for attempt := 1; attempt <= maxRetries; attempt++ {
		r.attempts = attempt

		var v *PageValidation
		if recoverNext {
			recoverNext = false
			v, err = n.reloadAndValidate(ctx, r)
			if v != nil {
				v.ViaRecovery = true
			}
		} else {
			v, err = n.attempt(ctx, r)
		}

		if err == nil && v.IsLoaded {
			return r.succeed(v), nil
		}
		if v != nil {
			r.last = v
			err = v.Err()
		}
		r.lastErr = err
		r.logger.Warn("Navigation attempt failed.", zap.Int("attempt", attempt), zap.Error(err))

		if ctx.Err() != nil {
			return nil, n.fail(r, ctx.Err())
		}

		if v != nil && !v.ViaRecovery {
			if state, derr := n.detector.Detect(ctx); derr == nil && state.InError {
				r.lastErr = &ErrorStateDetected{Page: cfg.Name, State: state}
				r.logger.Warn("Page is in an error state; recovering before the next attempt.",
					zap.String("error_type", string(state.Type)), zap.String("details", state.Details))
				recoverNext = true
			}
		}

		if attempt < maxRetries {
			r.enter(Retrying)
			delay := n.retry.Delay(attempt)
			r.logger.Debug("Backing off before retry.", zap.Duration("delay", delay))
			if err := n.sleep(ctx, delay); err != nil {
				return nil, n.fail(r, err)
			}
		}
	}

	r.enter(FallingBack)
	v, err := n.directNavigate(ctx, r)
	if err == nil && v.IsLoaded {
		return r.succeed(v), nil
	}
	if v != nil {
		r.last = v
		err = v.Err()
	}
	return nil, n.fail(r, err)
}

func (n *Navigator) fail(r *run, cause error) error {
	r.enter(Failed)
	if cause == nil {
		cause = r.lastErr
	}
	e := &NavigationFailedError{
		Page:           r.page.Name,
		CorrelationID:  r.corrID,
		Category:       r.category,
		Attempts:       r.attempts,
		Selectors:      r.selectors,
		LastValidation: r.last,
		Elapsed:        n.now().Sub(r.start),
		Trail:          append([]State(nil), r.trail...),
		Cause:          cause,
	}
	r.logger.Error("Navigation failed.", zap.Int("attempts", r.attempts), zap.Duration("elapsed", e.Elapsed), zap.Error(cause))
	return e
}

// attempt runs one full UI navigation cycle: open the mobile menu if needed,
// resolve and click the nav link, settle, validate.
func (n *Navigator) attempt(ctx context.Context, r *run) (*PageValidation, error) {
	start := n.now()
	r.enter(Resolving)

	if r.category == viewport.Mobile && len(r.page.MobileMenuToggle) > 0 {
		if err := n.openMobileMenu(ctx, r); err != nil {
			r.logger.Debug("Mobile menu could not be opened; trying nav links directly.", zap.Error(err))
		}
	}

	strategies, err := n.navStrategies(r)
	if err != nil {
		return nil, err
	}
	resolveCtx, cancel := context.WithTimeout(ctx, n.profiles.TimeoutFor(r.category, viewport.ElementWait))
	res, err := n.resolver.Resolve(resolveCtx, "navigation link to "+r.page.Name, strategies)
	cancel()
	r.record(res.Attempts, err)
	if err != nil {
		return nil, err
	}

	r.enter(Clicking)
	clickCtx, cancel := context.WithTimeout(ctx, n.profiles.TimeoutFor(r.category, viewport.ElementWait))
	err = n.driver.Click(clickCtx, res.Element)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("clicking %q: %w", res.Strategy.Selector, err)
	}

	n.settle(ctx, r)

	v, err := n.validate(ctx, r, start)
	if err != nil {
		return nil, err
	}
	v.NavSelector = res.Strategy.Selector
	if res.Strategy.Reliability == selectors.Low {
		v.addWarning("navigation link matched only by low-reliability selector %q", res.Strategy.Selector)
	}
	return v, nil
}

func (r *run) record(attempts []Attempt, err error) {
	var rerr *ElementResolutionError
	if errors.As(err, &rerr) {
		attempts = rerr.Attempts
	}
	r.selectors = append(r.selectors, attempts...)
}

// navStrategies is the structured ladder for the category followed by the
// generic text fallbacks.
func (n *Navigator) navStrategies(r *run) ([]selectors.Strategy, error) {
	structured, err := n.registry.StrategiesFor(r.page.Name, r.category)
	if err != nil {
		return nil, err
	}
	fallback, err := n.registry.FallbackStrategies(r.page.Name)
	if err != nil {
		return nil, err
	}
	return append(structured, fallback...), nil
}

// openMobileMenu clicks the drawer toggle unless the drawer is already open.
func (n *Navigator) openMobileMenu(ctx context.Context, r *run) error {
	if n.menuOpen(ctx, r.page.MobileMenuOpenIndicator) {
		r.logger.Debug("Mobile menu already open.")
		return nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, n.profiles.TimeoutFor(r.category, viewport.ElementWait))
	defer cancel()

	res, err := n.resolver.Resolve(waitCtx, "mobile menu toggle", selectors.Order(r.page.MobileMenuToggle, r.category))
	r.record(res.Attempts, err)
	if err != nil {
		return err
	}
	if err := n.driver.Click(waitCtx, res.Element); err != nil {
		return fmt.Errorf("clicking mobile menu toggle: %w", err)
	}
	return n.driver.WaitForTimeout(waitCtx, menuSettle)
}

func (n *Navigator) menuOpen(ctx context.Context, indicator string) bool {
	if indicator == "" {
		return false
	}
	elements, err := n.driver.QueryElements(ctx, indicator)
	if err != nil {
		return false
	}
	for _, el := range elements {
		if el.Visible {
			return true
		}
	}
	return false
}

// settle waits for the network to go quiet. A timeout here is only logged:
// validation decides whether the page is usable.
func (n *Navigator) settle(ctx context.Context, r *run) {
	r.enter(AwaitingSettle)
	timeout := n.profiles.TimeoutFor(r.category, viewport.NetworkIdle)
	if err := n.driver.WaitForNetworkIdle(ctx, timeout); err != nil {
		r.logger.Debug("Network did not settle.", zap.Duration("timeout", timeout), zap.Error(err))
	}
}

func (n *Navigator) validate(ctx context.Context, r *run, start time.Time) (*PageValidation, error) {
	r.enter(Validating)
	v, err := n.validator.Validate(ctx, r.page.Name, r.category, start)
	if err != nil {
		return nil, err
	}
	v.CorrelationID = r.corrID
	return v, nil
}

// directNavigate loads the page's primary URL and validates once.
func (n *Navigator) directNavigate(ctx context.Context, r *run) (*PageValidation, error) {
	start := n.now()
	target, err := n.pageURL(r.page)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Falling back to direct URL navigation.", zap.String("url", target))

	navCtx, cancel := context.WithTimeout(ctx, n.profiles.TimeoutFor(r.category, viewport.PageLoad))
	err = n.driver.Navigate(navCtx, target)
	cancel()
	if err != nil {
		r.logger.Warn("Direct navigation reported an error; validating anyway.", zap.Error(err))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	n.settle(ctx, r)
	v, verr := n.validate(ctx, r, start)
	if verr != nil {
		return nil, verr
	}
	v.ViaDirectURL = true
	return v, nil
}

// reloadAndValidate is the first recovery step: reload in place and validate.
func (n *Navigator) reloadAndValidate(ctx context.Context, r *run) (*PageValidation, error) {
	start := n.now()
	r.logger.Info("Reloading page to recover.")

	reloadCtx, cancel := context.WithTimeout(ctx, n.profiles.TimeoutFor(r.category, viewport.PageLoad))
	err := n.driver.Reload(reloadCtx)
	cancel()
	if err != nil {
		r.logger.Warn("Reload reported an error; validating anyway.", zap.Error(err))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	n.settle(ctx, r)
	return n.validate(ctx, r, start)
}

// pageURL resolves the page's primary URL pattern against the base URL.
func (n *Navigator) pageURL(p selectors.PageConfig) (string, error) {
	path := p.PrimaryURL()
	if n.baseURL == "" {
		return path, nil
	}
	base, err := url.Parse(n.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", n.baseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid URL pattern %q for page %q: %w", path, p.Name, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// resolveCategory returns override when given, resizing the viewport if the
// live one belongs to another category. Otherwise it classifies the live viewport.
func (n *Navigator) resolveCategory(ctx context.Context, override *viewport.Category, log *zap.Logger) (viewport.Category, error) {
	if override != nil {
		c := *override
		if !c.Valid() {
			return "", fmt.Errorf("invalid viewport category %q", c)
		}
		w, _, err := n.driver.ViewportSize(ctx)
		if err == nil && viewport.Classify(w) == c {
			return c, nil
		}
		d := viewport.DefaultDeviceFor(c)
		log.Debug("Resizing viewport for override.", zap.String("category", c.String()), zap.Int("width", d.Width), zap.Int("height", d.Height))
		if err := n.driver.SetViewportSize(ctx, d.Width, d.Height); err != nil {
			return "", fmt.Errorf("could not apply %s viewport: %w", c, err)
		}
		return c, nil
	}
	return n.CurrentViewportCategory(ctx)
}

// CurrentViewportCategory classifies the live viewport width. When the width
// cannot be read it returns the configured default category.
func (n *Navigator) CurrentViewportCategory(ctx context.Context) (viewport.Category, error) {
	w, _, err := n.driver.ViewportSize(ctx)
	if err != nil {
		n.logger.Warn("Could not read viewport size; using default category.",
			zap.String("default", n.defaultCategory.String()), zap.Error(err))
		return n.defaultCategory, nil
	}
	return viewport.Classify(w), nil
}

// ValidateTouchTargetSizes reports whether every interactive element of the
// current page meets the minimum touch size. Desktop viewports always pass.
func (n *Navigator) ValidateTouchTargetSizes(ctx context.Context) (bool, error) {
	c, err := n.CurrentViewportCategory(ctx)
	if err != nil {
		return false, err
	}
	if !viewport.IsTouchCategory(c) {
		return true, nil
	}

	targets := genericTouchTargets
	if n.lastPage != "" {
		if cfg, err := n.registry.Page(n.lastPage); err == nil && len(cfg.TouchTargets) > 0 {
			targets = cfg.TouchTargets
		}
	}

	violations := touchTargetViolations(ctx, n.driver, targets, n.logger)
	for _, v := range violations {
		n.logger.Info("Touch target below minimum size.",
			zap.String("selector", v.Selector), zap.Int("index", v.Index),
			zap.Float64("width", v.Width), zap.Float64("height", v.Height))
	}
	return len(violations) == 0, ctx.Err()
}
