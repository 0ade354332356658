// File: internal/navigation/errors.go
package navigation

import (
	"fmt"
	"strings"
	"time"

	"github.com/xkilldash9x/navigator/internal/selectors"
	"github.com/xkilldash9x/navigator/internal/viewport"
)

// Attempt records one selector the resolver tried.
type Attempt struct {
	Target      string                `json:"target"`
	Selector    string                `json:"selector"`
	Reliability selectors.Reliability `json:"reliability"`
	Matched     int                   `json:"matched"`
	Usable      int                   `json:"usable"`
	Err         string                `json:"error,omitempty"`
}

func (a Attempt) String() string {
	s := fmt.Sprintf("%s [%s] matched=%d usable=%d", a.Selector, a.Reliability, a.Matched, a.Usable)
	if a.Err != "" {
		s += " error=" + a.Err
	}
	return s
}

// ElementResolutionError means every strategy for a target was exhausted.
type ElementResolutionError struct {
	Target   string
	Attempts []Attempt
}

func (e *ElementResolutionError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.String()
	}
	return fmt.Sprintf("no usable element for %s after %d selector(s): %s", e.Target, len(e.Attempts), strings.Join(parts, "; "))
}

// PageValidationError reports a page that loaded but failed validation.
type PageValidationError struct {
	Page       string
	Validation *PageValidation
}

func (e *PageValidationError) Error() string {
	if e.Validation == nil {
		return fmt.Sprintf("page %q failed validation", e.Page)
	}
	return fmt.Sprintf("page %q failed validation: %s", e.Page, strings.Join(e.Validation.Errors, "; "))
}

// ErrorStateDetected reports a page that is actively broken.
type ErrorStateDetected struct {
	Page  string
	State ErrorState
}

func (e *ErrorStateDetected) Error() string {
	return fmt.Sprintf("page %q is in error state %s: %s", e.Page, e.State.Type, e.State.Details)
}

// NavigationFailedError is returned once retries and the direct URL fallback
// are exhausted. It carries the full diagnostic trail of the navigation.
type NavigationFailedError struct {
	Page           string
	CorrelationID  string
	Category       viewport.Category
	Attempts       int
	Selectors      []Attempt
	LastValidation *PageValidation
	Elapsed        time.Duration
	Trail          []State
	Cause          error
}

// Error summarizes the failure on one line; Report gives the full diagnostics.
func (e *NavigationFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "navigation to %q failed after %d attempt(s) and direct URL fallback (viewport=%s, elapsed=%s)",
		e.Page, e.Attempts, e.Category, e.Elapsed.Round(time.Millisecond))
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if e.LastValidation != nil && len(e.LastValidation.Errors) > 0 {
		fmt.Fprintf(&b, "; last validation errors: %s", strings.Join(e.LastValidation.Errors, "; "))
	}
	if len(e.Selectors) > 0 {
		fmt.Fprintf(&b, "; %d selector attempt(s) recorded", len(e.Selectors))
	}
	return b.String()
}

func (e *NavigationFailedError) Unwrap() error { return e.Cause }

// Report renders every recorded attempt, one per line.
func (e *NavigationFailedError) Report() string {
	var b strings.Builder
	b.WriteString(e.Error())
	b.WriteString("\ntrail: ")
	for i, s := range e.Trail {
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(s.String())
	}
	for _, a := range e.Selectors {
		b.WriteString("\n  ")
		b.WriteString(a.Target)
		b.WriteString(": ")
		b.WriteString(a.String())
	}
	return b.String()
}
