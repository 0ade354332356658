// File: internal/selectors/strategy.go

// Package selectors holds the catalogue of element locators for every logical
// page the navigator knows about.
package selectors

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/navigator/internal/viewport"
)

// Reliability is diagnostic confidence in a locator. It never affects ordering.
type Reliability string

const (
	High   Reliability = "high"
	Medium Reliability = "medium"
	Low    Reliability = "low"
)

// Scope restricts a strategy to one viewport category, or to all of them.
type Scope string

const (
	ScopeAll     Scope = "all"
	ScopeMobile  Scope = Scope(viewport.Mobile)
	ScopeTablet  Scope = Scope(viewport.Tablet)
	ScopeDesktop Scope = Scope(viewport.Desktop)
)

// Strategy is one candidate way of locating an element.
type Strategy struct {
	Selector    string      `yaml:"selector" json:"selector"`
	Priority    int         `yaml:"priority" json:"priority"`
	Reliability Reliability `yaml:"reliability" json:"reliability"`
	Scope       Scope       `yaml:"scope" json:"scope"`
}

// AppliesTo reports whether s may be tried for category c. An empty scope means all.
func (s Strategy) AppliesTo(c viewport.Category) bool {
	return s.Scope == "" || s.Scope == ScopeAll || string(s.Scope) == string(c)
}

func (s Strategy) String() string {
	return fmt.Sprintf("%s (priority=%d, reliability=%s)", s.Selector, s.Priority, s.reliability())
}

func (s Strategy) reliability() Reliability {
	if s.Reliability == "" {
		return Medium
	}
	return s.Reliability
}

func (s Strategy) validate() error {
	if strings.TrimSpace(s.Selector) == "" {
		return fmt.Errorf("selector is empty")
	}
	if s.Priority <= 0 {
		return fmt.Errorf("selector %q: priority must be positive, got %d", s.Selector, s.Priority)
	}
	switch s.Reliability {
	case "", High, Medium, Low:
	default:
		return fmt.Errorf("selector %q: unknown reliability %q", s.Selector, s.Reliability)
	}
	switch s.Scope {
	case "", ScopeAll, ScopeMobile, ScopeTablet, ScopeDesktop:
	default:
		return fmt.Errorf("selector %q: unknown scope %q", s.Selector, s.Scope)
	}
	return nil
}

// normalized fills defaulted fields so lookups never see empty values.
func (s Strategy) normalized() Strategy {
	s.Reliability = s.reliability()
	if s.Scope == "" {
		s.Scope = ScopeAll
	}
	return s
}

// ElementSpec names one required element together with its selector variants.
type ElementSpec struct {
	Name       string     `yaml:"name" json:"name"`
	Strategies []Strategy `yaml:"strategies" json:"strategies"`
}

// PageConfig describes one logical page. It is immutable once registered.
type PageConfig struct {
	Name          string   `yaml:"name"`
	URLPatterns   []string `yaml:"url_patterns"`
	TitlePatterns []string `yaml:"title_patterns"`

	NavStrategies []Strategy `yaml:"nav"`
	// NavFallbackText lists extra visible-text labels tried after every structured strategy.
	NavFallbackText []string `yaml:"nav_fallback_text"`

	RequiredElements []ElementSpec `yaml:"required_elements"`

	SearchInterfaceSelector string `yaml:"search_interface"`
	SearchInterfaceRequired bool   `yaml:"search_interface_required"`

	// MobileMenuToggle opens the navigation drawer on narrow layouts.
	MobileMenuToggle []Strategy `yaml:"mobile_menu_toggle"`
	// MobileMenuOpenIndicator matches a visible element only while the drawer is open.
	MobileMenuOpenIndicator string `yaml:"mobile_menu_open_indicator"`

	// TouchTargets are selectors of interactive elements held to the minimum touch size.
	TouchTargets []string `yaml:"touch_targets"`
}

// PrimaryURL is the first URL pattern, used for direct navigation.
func (p PageConfig) PrimaryURL() string {
	if len(p.URLPatterns) == 0 {
		return ""
	}
	return p.URLPatterns[0]
}

// Validate checks the page for missing or malformed fields.
func (p PageConfig) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("page name is empty")
	}
	if len(p.URLPatterns) == 0 {
		return fmt.Errorf("page %q: at least one url pattern is required", p.Name)
	}
	for _, s := range p.NavStrategies {
		if err := s.validate(); err != nil {
			return fmt.Errorf("page %q nav: %w", p.Name, err)
		}
	}
	for _, s := range p.MobileMenuToggle {
		if err := s.validate(); err != nil {
			return fmt.Errorf("page %q mobile menu toggle: %w", p.Name, err)
		}
	}
	// The toggle flips the drawer, so without an indicator a retry would close it again.
	if len(p.MobileMenuToggle) > 0 && strings.TrimSpace(p.MobileMenuOpenIndicator) == "" {
		return fmt.Errorf("page %q: mobile menu toggle requires an open indicator", p.Name)
	}
	for _, el := range p.RequiredElements {
		if el.Name == "" {
			return fmt.Errorf("page %q: required element without a name", p.Name)
		}
		if len(el.Strategies) == 0 {
			return fmt.Errorf("page %q: required element %q has no strategies", p.Name, el.Name)
		}
		for _, s := range el.Strategies {
			if err := s.validate(); err != nil {
				return fmt.Errorf("page %q element %q: %w", p.Name, el.Name, err)
			}
		}
	}
	return nil
}

// clone deep-copies p with normalized strategies so the registry never shares
// slices with its caller.
func (p PageConfig) clone() PageConfig {
	c := p
	c.URLPatterns = append([]string(nil), p.URLPatterns...)
	c.TitlePatterns = append([]string(nil), p.TitlePatterns...)
	c.NavFallbackText = append([]string(nil), p.NavFallbackText...)
	c.TouchTargets = append([]string(nil), p.TouchTargets...)
	c.NavStrategies = normalizeAll(p.NavStrategies)
	c.MobileMenuToggle = normalizeAll(p.MobileMenuToggle)
	c.RequiredElements = make([]ElementSpec, len(p.RequiredElements))
	for i, el := range p.RequiredElements {
		c.RequiredElements[i] = ElementSpec{Name: el.Name, Strategies: normalizeAll(el.Strategies)}
	}
	return c
}

func normalizeAll(in []Strategy) []Strategy {
	if in == nil {
		return nil
	}
	out := make([]Strategy, len(in))
	for i, s := range in {
		out[i] = s.normalized()
	}
	return out
}
