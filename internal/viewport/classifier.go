// File: internal/viewport/classifier.go

// Package viewport classifies browser widths into responsive layout categories
// and supplies the timeout profile used for each category.
package viewport

import (
	"fmt"
	"strings"
	"time"
)

// Category is a coarse responsive-design bucket derived from pixel width.
type Category string

const (
	Mobile  Category = "mobile"
	Tablet  Category = "tablet"
	Desktop Category = "desktop"
)

// Breakpoints. Each band is closed on its lower bound.
const (
	TabletMinWidth  = 768
	DesktopMinWidth = 1024
)

// Categories lists every category from narrowest to widest.
func Categories() []Category {
	return []Category{Mobile, Tablet, Desktop}
}

// Classify maps a pixel width onto a Category. It is total: any width,
// including zero or negative values, yields a category.
func Classify(width int) Category {
	switch {
	case width < TabletMinWidth:
		return Mobile
	case width < DesktopMinWidth:
		return Tablet
	default:
		return Desktop
	}
}

// ParseCategory converts a case-insensitive name into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown viewport category %q (want mobile, tablet or desktop)", s)
}

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case Mobile, Tablet, Desktop:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// IsTouchCategory reports whether layouts of this category are primarily driven by touch input.
func IsTouchCategory(c Category) bool {
	return c == Mobile || c == Tablet
}

// Operation names a phase that carries its own timeout.
type Operation string

const (
	PageLoad    Operation = "pageLoad"
	ElementWait Operation = "elementWait"
	NetworkIdle Operation = "networkIdle"
)

// TimeoutProfile is the set of operation timeouts used for one category.
type TimeoutProfile struct {
	PageLoad    time.Duration
	ElementWait time.Duration
	NetworkIdle time.Duration
}

// For returns the timeout for op. Unknown operations get the page-load timeout,
// the longest of the three.
func (p TimeoutProfile) For(op Operation) time.Duration {
	switch op {
	case ElementWait:
		return p.ElementWait
	case NetworkIdle:
		return p.NetworkIdle
	default:
		return p.PageLoad
	}
}

// Profiles maps every category to its timeout profile.
type Profiles map[Category]TimeoutProfile

// DefaultProfiles returns the built-in profiles. Mobile rendering is assumed to
// be the slowest, so its timeouts are the largest.
func DefaultProfiles() Profiles {
	return Profiles{
		Mobile:  {PageLoad: 45 * time.Second, ElementWait: 15 * time.Second, NetworkIdle: 10 * time.Second},
		Tablet:  {PageLoad: 38 * time.Second, ElementWait: 12 * time.Second, NetworkIdle: 8 * time.Second},
		Desktop: {PageLoad: 30 * time.Second, ElementWait: 10 * time.Second, NetworkIdle: 5 * time.Second},
	}
}

// Profile returns the profile for c. An unknown category gets the mobile
// profile, or the built-in mobile profile when p has none.
func (p Profiles) Profile(c Category) TimeoutProfile {
	if prof, ok := p[c]; ok {
		return prof
	}
	if prof, ok := p[Mobile]; ok {
		return prof
	}
	return DefaultProfiles()[Mobile]
}

// TimeoutFor returns the timeout of op for category c.
func (p Profiles) TimeoutFor(c Category, op Operation) time.Duration {
	return p.Profile(c).For(op)
}
