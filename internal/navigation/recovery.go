// File: internal/navigation/recovery.go
package navigation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/navigator/internal/browser"
)

// ErrorType classifies a broken page.
type ErrorType string

const (
	ErrorNone ErrorType = "none"
	BlankPage ErrorType = "blank_page"
	HTTPError ErrorType = "http_error"
	NotFound  ErrorType = "not_found"
	JSCrash   ErrorType = "js_crash"
)

// ErrorState is the result of error-state detection.
type ErrorState struct {
	InError bool      `json:"inError"`
	Type    ErrorType `json:"type"`
	Details string    `json:"details,omitempty"`
	// Status is the HTTP status of the document when the driver reports it.
	Status int `json:"status,omitempty"`
}

type signature struct {
	kind ErrorType
	re   *regexp.Regexp
}

// Title signatures may match bare status codes; body text is only matched on
// phrases so that ordinary content containing numbers is not flagged.
var (
	titleSignatures = []signature{
		{NotFound, regexp.MustCompile(`(?i)\b404\b|not found`)},
		{HTTPError, regexp.MustCompile(`(?i)\b50[0-4]\b|internal server error|bad gateway|service unavailable|gateway timeout`)},
		{JSCrash, regexp.MustCompile(`(?i)application error|something went wrong`)},
	}
	bodySignatures = []signature{
		{NotFound, regexp.MustCompile(`(?i)\b404\b[^\n]{0,20}not found|page not found|page could not be found`)},
		{HTTPError, regexp.MustCompile(`(?i)\b(error|http)\s*50[0-4]\b|\b50[0-4]\s*(error|internal server error|bad gateway|service unavailable)|internal server error|bad gateway|service unavailable`)},
		{JSCrash, regexp.MustCompile(`(?i)application error: a client-side exception|uncaught (type|reference|syntax)?error|chunkloaderror|loading chunk \S+ failed|something went wrong`)},
	}
)

// ErrorDetector inspects the current page for known failure signatures.
// It never mutates the page.
type ErrorDetector struct {
	driver browser.Driver
	// status is nil when the driver cannot report document status.
	status browser.StatusReporter
	logger *zap.Logger
}

// NewErrorDetector builds a detector over driver. If the driver can report the
// main document status it is consulted before the page text.
func NewErrorDetector(driver browser.Driver, logger *zap.Logger) *ErrorDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &ErrorDetector{driver: driver, logger: logger.Named("error_detector")}
	if sr, ok := driver.(browser.StatusReporter); ok {
		d.status = sr
	}
	return d
}

// Detect reports whether the current page shows an error. Checks run in
// order: document status, blank body, title signatures, body signatures.
func (d *ErrorDetector) Detect(ctx context.Context) (ErrorState, error) {
	state := ErrorState{Type: ErrorNone}

	if d.status != nil {
		code, err := d.status.DocumentStatus(ctx)
		if err != nil {
			return state, fmt.Errorf("could not read document status: %w", err)
		}
		state.Status = code
		switch {
		case code == 404 || code == 410:
			return d.found(state, NotFound, fmt.Sprintf("document returned HTTP %d", code)), nil
		case code >= 400:
			return d.found(state, HTTPError, fmt.Sprintf("document returned HTTP %d", code)), nil
		}
	}

	body, err := d.driver.BodyText(ctx)
	if err != nil {
		return state, fmt.Errorf("could not read body text: %w", err)
	}
	if strings.TrimSpace(body) == "" {
		return d.found(state, BlankPage, "document body is empty"), nil
	}

	title, err := d.driver.Title(ctx)
	if err != nil {
		return state, fmt.Errorf("could not read title: %w", err)
	}
	if sig, match := matchSignature(titleSignatures, title); match != "" {
		return d.found(state, sig, fmt.Sprintf("title contains %q", match)), nil
	}
	if sig, match := matchSignature(bodySignatures, body); match != "" {
		return d.found(state, sig, fmt.Sprintf("page text contains %q", match)), nil
	}
	return state, nil
}

func (d *ErrorDetector) found(state ErrorState, kind ErrorType, details string) ErrorState {
	state.InError = true
	state.Type = kind
	state.Details = details
	d.logger.Debug("Error state detected.", zap.String("type", string(kind)), zap.String("details", details))
	return state
}

func matchSignature(sigs []signature, text string) (ErrorType, string) {
	for _, s := range sigs {
		if m := s.re.FindString(text); m != "" {
			return s.kind, m
		}
	}
	return ErrorNone, ""
}

// IsPageInErrorState inspects the current page. It does not change it.
func (n *Navigator) IsPageInErrorState(ctx context.Context) (ErrorState, error) {
	return n.detector.Detect(ctx)
}

// AttemptErrorRecovery reloads the current page and validates it as page; if
// that fails it navigates directly to the page's primary URL and validates
// again. It returns false when both steps fail. The only error is an unknown page.
func (n *Navigator) AttemptErrorRecovery(ctx context.Context, page string) (bool, error) {
	cfg, err := n.registry.Page(page)
	if err != nil {
		return false, err
	}
	category, err := n.CurrentViewportCategory(ctx)
	if err != nil {
		return false, err
	}

	corrID := uuid.NewString()
	r := &run{
		page:     cfg,
		category: category,
		corrID:   corrID,
		start:    n.now(),
		now:      n.now,
		logger: n.logger.With(
			zap.String("page", cfg.Name),
			zap.String("correlation_id", corrID),
			zap.String("viewport", category.String())),
	}

	if v, err := n.reloadAndValidate(ctx, r); err == nil && v.IsLoaded {
		r.logger.Info("Recovered by reload.")
		return true, nil
	}
	if ctx.Err() != nil {
		return false, nil
	}

	r.enter(FallingBack)
	if v, err := n.directNavigate(ctx, r); err == nil && v.IsLoaded {
		r.logger.Info("Recovered by direct URL navigation.")
		n.lastPage = cfg.Name
		return true, nil
	}
	r.logger.Warn("Error recovery failed.")
	return false, nil
}
