// File: internal/navigation/options.go
package navigation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/navigator/internal/config"
	"github.com/xkilldash9x/navigator/internal/viewport"
)

type settings struct {
	retry           RetryConfig
	profiles        viewport.Profiles
	baseURL         string
	defaultCategory viewport.Category
	logger          *zap.Logger
	sleep           func(context.Context, time.Duration) error
	now             func() time.Time
}

// Option configures a Navigator or Validator.
type Option func(*settings)

func newSettings(opts []Option) settings {
	s := settings{
		retry:           DefaultRetryConfig(),
		profiles:        viewport.DefaultProfiles(),
		defaultCategory: viewport.Desktop,
		logger:          zap.NewNop(),
		sleep:           sleepContext,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithRetryConfig sets the retry ceiling and backoff curve.
func WithRetryConfig(r RetryConfig) Option {
	return func(s *settings) { s.retry = r }
}

// WithProfiles sets the per-category timeout profiles.
func WithProfiles(p viewport.Profiles) Option {
	return func(s *settings) {
		if len(p) > 0 {
			s.profiles = p
		}
	}
}

// WithBaseURL sets the origin that direct URL fallbacks are resolved against.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

// WithDefaultViewport sets the category used when the live viewport cannot be read.
func WithDefaultViewport(c viewport.Category) Option {
	return func(s *settings) {
		if c.Valid() {
			s.defaultCategory = c
		}
	}
}

// WithLogger sets the parent logger. Nil is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSleeper replaces the backoff sleep. Tests use it to record delays.
func WithSleeper(fn func(context.Context, time.Duration) error) Option {
	return func(s *settings) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// WithClock replaces time.Now for load-time measurement.
func WithClock(fn func() time.Time) Option {
	return func(s *settings) {
		if fn != nil {
			s.now = fn
		}
	}
}

// OptionsFromConfig maps the navigation section of the configuration onto options.
func OptionsFromConfig(cfg config.NavigationConfig) []Option {
	opts := []Option{
		WithRetryConfig(RetryConfigFrom(cfg.Retry)),
		WithBaseURL(cfg.BaseURL),
		WithProfiles(ProfilesFrom(cfg.Timeouts)),
	}
	if c, err := viewport.ParseCategory(cfg.DefaultViewport); err == nil {
		opts = append(opts, WithDefaultViewport(c))
	}
	return opts
}

// ProfilesFrom converts configured timeouts into classifier profiles.
func ProfilesFrom(t config.TimeoutsConfig) viewport.Profiles {
	conv := func(p config.TimeoutProfileConfig) viewport.TimeoutProfile {
		return viewport.TimeoutProfile{PageLoad: p.PageLoad, ElementWait: p.ElementWait, NetworkIdle: p.NetworkIdle}
	}
	return viewport.Profiles{
		viewport.Mobile:  conv(t.Mobile),
		viewport.Tablet:  conv(t.Tablet),
		viewport.Desktop: conv(t.Desktop),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
