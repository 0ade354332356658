// File: internal/selectors/registry.go
package selectors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xkilldash9x/navigator/internal/viewport"
)

// UnknownPageError is returned for page names that are not registered.
// It is a configuration error and is never retried.
type UnknownPageError struct {
	Page string
}

func (e *UnknownPageError) Error() string {
	return fmt.Sprintf("unknown page %q: not present in the selector registry", e.Page)
}

// Registry is an immutable catalogue of PageConfigs keyed by lower-cased name.
// Build one per test suite and inject it; there is no package-level registry.
type Registry struct {
	pages map[string]PageConfig
}

// NewRegistry validates and indexes pages. Names are matched case-insensitively,
// so "Tickets" and "tickets" collide.
func NewRegistry(pages ...PageConfig) (*Registry, error) {
	r := &Registry{pages: make(map[string]PageConfig, len(pages))}
	for _, p := range pages {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		key := normalizeName(p.Name)
		if _, dup := r.pages[key]; dup {
			return nil, fmt.Errorf("page %q registered more than once", p.Name)
		}
		r.pages[key] = p.clone()
	}
	return r, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Page returns a copy of the named page's configuration.
func (r *Registry) Page(name string) (PageConfig, error) {
	p, ok := r.pages[normalizeName(name)]
	if !ok {
		return PageConfig{}, &UnknownPageError{Page: name}
	}
	return p.clone(), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.pages[normalizeName(name)]
	return ok
}

// Names returns every registered page name in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.pages))
	for _, p := range r.pages {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered pages.
func (r *Registry) Len() int { return len(r.pages) }

// StrategiesFor returns the structured nav strategies of page that apply to
// category c, in ascending priority. Ties keep declaration order.
func (r *Registry) StrategiesFor(page string, c viewport.Category) ([]Strategy, error) {
	p, ok := r.pages[normalizeName(page)]
	if !ok {
		return nil, &UnknownPageError{Page: page}
	}
	return Order(p.NavStrategies, c), nil
}

// Order filters strategies to those applying to c and stable-sorts them by priority.
func Order(strategies []Strategy, c viewport.Category) []Strategy {
	out := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s.AppliesTo(c) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// FallbackStrategies returns generic text-based locators for page. They are the
// last line of defense for DOM shapes no structured strategy anticipated, so
// every one of them is low reliability and ranks after all structured strategies.
func (r *Registry) FallbackStrategies(page string) ([]Strategy, error) {
	p, ok := r.pages[normalizeName(page)]
	if !ok {
		return nil, &UnknownPageError{Page: page}
	}

	next := 1
	for _, s := range p.NavStrategies {
		if s.Priority >= next {
			next = s.Priority + 1
		}
	}

	labels := append([]string{p.Name}, p.NavFallbackText...)
	seen := make(map[string]bool)
	var out []Strategy
	add := func(selector string) {
		if seen[selector] {
			return
		}
		seen[selector] = true
		out = append(out, Strategy{Selector: selector, Priority: next, Reliability: Low, Scope: ScopeAll})
		next++
	}

	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			continue
		}
		for _, tag := range []string{"a", "button", "*[@role='link']", "*[@role='menuitem']"} {
			add(TextContains(tag, label))
		}
	}
	if slug := slugify(p.Name); slug != "" {
		add(fmt.Sprintf("a[href*='/%s']", slug))
	}
	return out, nil
}

const (
	upperAlpha = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerAlpha = "abcdefghijklmnopqrstuvwxyz"
)

// XPathPrefix marks a selector as an XPath expression instead of CSS.
const XPathPrefix = "xpath="

// TextContains builds an XPath locator matching tag elements whose normalized,
// lower-cased visible text contains text.
func TextContains(tag, text string) string {
	return fmt.Sprintf("%s//%s[contains(translate(normalize-space(.), '%s', '%s'), %s)]",
		XPathPrefix, tag, upperAlpha, lowerAlpha, xpathLiteral(strings.ToLower(text)))
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = "'" + part + "'"
	}
	return "concat(" + strings.Join(quoted, `, "'", `) + ")"
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
