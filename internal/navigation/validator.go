// File: internal/navigation/validator.go
package navigation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/navigator/internal/browser"
	"github.com/xkilldash9x/navigator/internal/selectors"
	"github.com/xkilldash9x/navigator/internal/viewport"
)

// MinTouchTarget is the smallest acceptable touch target edge, in CSS pixels.
const MinTouchTarget = 44

// IsTouchTargetAdequate reports whether a w x h target meets MinTouchTarget on both axes.
func IsTouchTargetAdequate(width, height float64) bool {
	return width >= MinTouchTarget && height >= MinTouchTarget
}

// TouchTargetViolation is one interactive element smaller than MinTouchTarget.
type TouchTargetViolation struct {
	Selector string  `json:"selector"`
	Index    int     `json:"index"`
	Text     string  `json:"text,omitempty"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// PageValidation is the verdict on a navigation attempt. IsLoaded is true
// exactly when Errors is empty; warnings never affect it.
type PageValidation struct {
	Page          string            `json:"page"`
	Category      viewport.Category `json:"viewportCategory"`
	CorrelationID string            `json:"correlationId,omitempty"`

	URL   string `json:"url"`
	Title string `json:"title"`

	IsLoaded     bool `json:"isLoaded"`
	IsResponsive bool `json:"isResponsive"`

	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	RequiredElementsFound            []string               `json:"requiredElementsFound"`
	MissingElements                  []string               `json:"missingElements"`
	SearchInterfacePresent           bool                   `json:"searchInterfacePresent"`
	SearchInterfaceValidationSkipped bool                   `json:"searchInterfaceValidationSkipped"`
	TouchTargetViolations            []TouchTargetViolation `json:"touchTargetViolations,omitempty"`

	LoadTimeMs int64 `json:"loadTimeMs"`

	// Set by the navigator.
	NavSelector  string   `json:"navSelector,omitempty"`
	ViaDirectURL bool     `json:"viaDirectUrl"`
	ViaRecovery  bool     `json:"viaRecovery"`
	Attempts     int      `json:"attempts"`
	Trail        []string `json:"trail,omitempty"`
}

func (v *PageValidation) addError(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *PageValidation) addWarning(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// finalize derives IsLoaded from Errors. It is the only place IsLoaded is set.
func (v *PageValidation) finalize() {
	v.IsLoaded = len(v.Errors) == 0
}

// Err returns a *PageValidationError when the page did not load, nil otherwise.
func (v *PageValidation) Err() error {
	if v == nil || v.IsLoaded {
		return nil
	}
	return &PageValidationError{Page: v.Page, Validation: v}
}

// Validator checks the current page against its PageConfig.
type Validator struct {
	driver   browser.Driver
	registry *selectors.Registry
	resolver *Resolver
	profiles viewport.Profiles
	now      func() time.Time
	logger   *zap.Logger
}

// NewValidator builds a validator. Only the profile, clock and logger options apply.
func NewValidator(driver browser.Driver, registry *selectors.Registry, opts ...Option) *Validator {
	s := newSettings(opts)
	return &Validator{
		driver:   driver,
		registry: registry,
		resolver: NewResolver(driver, s.logger),
		profiles: s.profiles,
		now:      s.now,
		logger:   s.logger.Named("validator"),
	}
}

// Validate runs every check for page at category c and returns the combined
// verdict. Checks never short-circuit. The only error is an unknown page.
func (v *Validator) Validate(ctx context.Context, page string, c viewport.Category, start time.Time) (*PageValidation, error) {
	cfg, err := v.registry.Page(page)
	if err != nil {
		return nil, err
	}

	res := &PageValidation{
		Page:                  cfg.Name,
		Category:              c,
		Errors:                []string{},
		Warnings:              []string{},
		RequiredElementsFound: []string{},
		MissingElements:       []string{},
	}

	v.checkURL(ctx, cfg, res)
	v.checkTitle(ctx, cfg, res)
	visibleRequired := v.checkRequiredElements(ctx, cfg, c, res)
	v.checkSearchInterface(ctx, cfg, res)
	if viewport.IsTouchCategory(c) {
		v.checkTouchTargets(ctx, cfg.TouchTargets, res)
	}

	elapsed := v.now().Sub(start)
	res.LoadTimeMs = elapsed.Milliseconds()
	if limit := v.profiles.TimeoutFor(c, viewport.PageLoad); elapsed > limit {
		res.addError("page load took %s, exceeding the %s limit for %s viewports", elapsed.Round(time.Millisecond), limit, c)
	}

	res.IsResponsive = res.URL != "" && res.Title != "" && (visibleRequired > 0 || len(cfg.RequiredElements) == 0)
	res.finalize()

	v.logger.Debug("Page validated.",
		zap.String("page", cfg.Name),
		zap.Bool("loaded", res.IsLoaded),
		zap.Int("errors", len(res.Errors)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Int64("load_time_ms", res.LoadTimeMs))
	return res, nil
}

func (v *Validator) checkURL(ctx context.Context, cfg selectors.PageConfig, res *PageValidation) {
	u, err := v.driver.CurrentURL(ctx)
	if err != nil {
		res.addError("could not read current URL: %v", err)
		return
	}
	res.URL = u
	if !containsAny(u, cfg.URLPatterns) {
		res.addError("URL %q does not match any of %v", u, cfg.URLPatterns)
	}
}

func (v *Validator) checkTitle(ctx context.Context, cfg selectors.PageConfig, res *PageValidation) {
	title, err := v.driver.Title(ctx)
	if err != nil {
		res.addError("could not read page title: %v", err)
		return
	}
	res.Title = title
	if len(cfg.TitlePatterns) > 0 && !containsAny(title, cfg.TitlePatterns) {
		res.addError("title %q does not match any of %v", title, cfg.TitlePatterns)
	}
}

// checkRequiredElements returns how many required elements were found.
func (v *Validator) checkRequiredElements(ctx context.Context, cfg selectors.PageConfig, c viewport.Category, res *PageValidation) int {
	found := 0
	for _, req := range cfg.RequiredElements {
		strategies := selectors.Order(req.Strategies, c)
		r, err := v.resolver.Resolve(ctx, req.Name, strategies)
		if err != nil {
			res.MissingElements = append(res.MissingElements, req.Name)
			res.addError("required element %q not found (tried %d selector(s))", req.Name, len(strategies))
			continue
		}
		found++
		res.RequiredElementsFound = append(res.RequiredElementsFound, req.Name)
		if r.Strategy.Reliability == selectors.Low {
			res.addWarning("required element %q matched only by low-reliability selector %q", req.Name, r.Strategy.Selector)
		}
	}
	return found
}

// checkSearchInterface only enforces presence when the page marks the search
// interface as required. Otherwise it records the skip and probes presence
// for information.
func (v *Validator) checkSearchInterface(ctx context.Context, cfg selectors.PageConfig, res *PageValidation) {
	var present bool
	if cfg.SearchInterfaceSelector != "" {
		_, err := v.resolver.Resolve(ctx, "search interface", []selectors.Strategy{
			{Selector: cfg.SearchInterfaceSelector, Priority: 1, Reliability: selectors.Medium, Scope: selectors.ScopeAll},
		})
		present = err == nil
	}
	res.SearchInterfacePresent = present

	if !cfg.SearchInterfaceRequired {
		res.SearchInterfaceValidationSkipped = true
		return
	}
	switch {
	case cfg.SearchInterfaceSelector == "":
		res.addError("search interface is required but no selector is configured")
	case !present:
		res.addError("required search interface %q not found", cfg.SearchInterfaceSelector)
	}
}

func (v *Validator) checkTouchTargets(ctx context.Context, targets []string, res *PageValidation) {
	for _, violation := range touchTargetViolations(ctx, v.driver, targets, v.logger) {
		res.TouchTargetViolations = append(res.TouchTargetViolations, violation)
		res.addWarning("touch target %s[%d] is %.0fx%.0f px, below the %dpx minimum",
			violation.Selector, violation.Index, violation.Width, violation.Height, MinTouchTarget)
	}
}

// touchTargetViolations measures every usable element matched by targets.
// Query failures are logged and skipped.
func touchTargetViolations(ctx context.Context, driver browser.Driver, targets []string, logger *zap.Logger) []TouchTargetViolation {
	var out []TouchTargetViolation
	for _, sel := range targets {
		elements, err := driver.QueryElements(ctx, sel)
		if err != nil {
			logger.Debug("Touch target query failed.", zap.String("selector", sel), zap.Error(err))
			continue
		}
		for _, el := range elements {
			if !el.Usable() || IsTouchTargetAdequate(el.Box.Width, el.Box.Height) {
				continue
			}
			out = append(out, TouchTargetViolation{
				Selector: sel,
				Index:    el.Index,
				Text:     el.Text,
				Width:    el.Box.Width,
				Height:   el.Box.Height,
			})
		}
	}
	return out
}

func containsAny(s string, patterns []string) bool {
	ls := strings.ToLower(s)
	for _, p := range patterns {
		if p != "" && strings.Contains(ls, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
