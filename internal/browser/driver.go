// File: internal/browser/driver.go

// Package browser defines the browser-automation contract the navigator
// depends on, and a chromedp-backed implementation of it.
package browser

import (
	"context"
	"time"
)

// BoundingBox is an element's layout rectangle in CSS pixels.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the box has no area.
func (b BoundingBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Element is a snapshot of one DOM element matched by a selector.
type Element struct {
	// Handle identifies the element for a later Click. It is only valid until
	// the next navigation or re-render.
	Handle   string `json:"handle"`
	Selector string `json:"selector"`
	Index    int    `json:"index"`
	Tag      string `json:"tag"`
	Text     string `json:"text"`
	Visible  bool   `json:"visible"`
	// Interactable means the element receives pointer events at its center.
	Interactable bool        `json:"interactable"`
	Box          BoundingBox `json:"box"`
}

// Usable reports whether the element can be clicked: visible, receiving
// pointer events and occupying a non-zero box.
func (e Element) Usable() bool {
	return e.Visible && e.Interactable && !e.Box.Empty()
}

// Driver is the set of browser capabilities the navigator consumes.
// Every blocking method honors ctx; implementations must never block beyond it.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	// BodyText returns the rendered text of the document body, empty for a blank page.
	BodyText(ctx context.Context) (string, error)
	// QueryElements returns every element matching selector. Selectors are CSS
	// unless prefixed with "xpath=". No match is not an error.
	QueryElements(ctx context.Context, selector string) ([]Element, error)
	Click(ctx context.Context, el Element) error
	SetViewportSize(ctx context.Context, width, height int) error
	ViewportSize(ctx context.Context) (width, height int, err error)
	// WaitForNetworkIdle blocks until network activity has quieted or timeout elapses.
	WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error
	WaitForTimeout(ctx context.Context, d time.Duration) error
}

// StatusReporter is implemented by drivers that observe the HTTP status of the
// main document. Error-state detection uses it when available.
type StatusReporter interface {
	DocumentStatus(ctx context.Context) (int, error)
}
