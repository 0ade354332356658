// File: internal/navigation/backoff.go
package navigation

import (
	"fmt"
	"math"
	"time"

	"github.com/xkilldash9x/navigator/internal/config"
)

// RetryConfig bounds the orchestrator's retry loop.
type RetryConfig struct {
	// MaxRetries is the hard ceiling on full navigation attempts before the
	// direct URL fallback.
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns three attempts with 1s, 2s, 4s... delays capped at 8s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 8 * time.Second, BackoffFactor: 2}
}

// RetryConfigFrom converts the configuration file representation.
func RetryConfigFrom(c config.RetryConfig) RetryConfig {
	return RetryConfig{
		MaxRetries:    c.MaxRetries,
		BaseDelay:     c.BaseDelay,
		MaxDelay:      c.MaxDelay,
		BackoffFactor: c.BackoffFactor,
	}
}

// Delay returns the sleep after failed attempt n (1-based):
// min(MaxDelay, BaseDelay * BackoffFactor^(n-1)). Attempts below 1 are treated as 1.
func (r RetryConfig) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.BaseDelay <= 0 {
		return 0
	}
	d := float64(r.BaseDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	if math.IsInf(d, 0) || math.IsNaN(d) || d >= float64(r.MaxDelay) {
		return r.MaxDelay
	}
	return time.Duration(d)
}

// Validate rejects configurations that would loop forever or shrink the delay.
func (r RetryConfig) Validate() error {
	switch {
	case r.MaxRetries <= 0:
		return fmt.Errorf("max retries must be greater than 0, got %d", r.MaxRetries)
	case r.BaseDelay < 0:
		return fmt.Errorf("base delay must not be negative, got %s", r.BaseDelay)
	case r.MaxDelay < r.BaseDelay:
		return fmt.Errorf("max delay %s is below base delay %s", r.MaxDelay, r.BaseDelay)
	case r.BackoffFactor < 1:
		return fmt.Errorf("backoff factor must be at least 1.0, got %g", r.BackoffFactor)
	}
	return nil
}
