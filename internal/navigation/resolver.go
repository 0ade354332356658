// File: internal/navigation/resolver.go
package navigation

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/navigator/internal/browser"
	"github.com/xkilldash9x/navigator/internal/selectors"
)

// Resolution is the element a resolver settled on and the strategy that found it.
type Resolution struct {
	Element  browser.Element
	Strategy selectors.Strategy
	Attempts []Attempt
}

// Resolver locates elements by trying selector strategies in order.
type Resolver struct {
	driver browser.Driver
	logger *zap.Logger
}

// NewResolver returns a resolver that queries driver. A nil logger is replaced by a no-op one.
func NewResolver(driver browser.Driver, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{driver: driver, logger: logger.Named("resolver")}
}

// Resolve returns the first visible, interactable element with a non-zero box,
// trying strategies in the order given. A query error on one strategy is
// recorded and the next strategy is tried. Resolve makes a single pass; it
// never retries.
func (r *Resolver) Resolve(ctx context.Context, target string, strategies []selectors.Strategy) (Resolution, error) {
	attempts := make([]Attempt, 0, len(strategies))
	for _, s := range strategies {
		if ctx.Err() != nil {
			attempts = append(attempts, Attempt{Target: target, Selector: s.Selector, Reliability: s.Reliability, Err: ctx.Err().Error()})
			continue
		}

		a := Attempt{Target: target, Selector: s.Selector, Reliability: s.Reliability}
		elements, err := r.driver.QueryElements(ctx, s.Selector)
		if err != nil {
			a.Err = err.Error()
			attempts = append(attempts, a)
			r.logger.Debug("Selector query failed.", zap.String("target", target), zap.String("selector", s.Selector), zap.Error(err))
			continue
		}
		a.Matched = len(elements)

		for _, el := range elements {
			if !el.Usable() {
				continue
			}
			a.Usable++
			attempts = append(attempts, a)
			r.logger.Debug("Element resolved.",
				zap.String("target", target),
				zap.String("selector", s.Selector),
				zap.String("reliability", string(s.Reliability)))
			return Resolution{Element: el, Strategy: s, Attempts: attempts}, nil
		}
		attempts = append(attempts, a)
	}
	return Resolution{}, &ElementResolutionError{Target: target, Attempts: attempts}
}
