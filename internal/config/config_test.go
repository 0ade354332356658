// File: internal/config/config_test.go
package config

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "navigator", cfg.Logger().ServiceName)
	assert.True(t, cfg.Browser().Headless)
	assert.Equal(t, 1920, cfg.Browser().Viewport.Width)
	assert.Equal(t, 500*time.Millisecond, cfg.Browser().IdleQuietPeriod)
	assert.Equal(t, "desktop", cfg.Navigation().DefaultViewport)
	assert.Equal(t, 3, cfg.Navigation().Retry.MaxRetries)
	assert.Equal(t, time.Second, cfg.Navigation().Retry.BaseDelay)
	assert.Equal(t, 8*time.Second, cfg.Navigation().Retry.MaxDelay)
	assert.Equal(t, 2.0, cfg.Navigation().Retry.BackoffFactor)
	assert.Equal(t, 45*time.Second, cfg.Navigation().Timeouts.Mobile.PageLoad)
	assert.Equal(t, 5*time.Second, cfg.Navigation().Timeouts.Desktop.NetworkIdle)
	assert.NoError(t, cfg.Validate())
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetBrowserHeadless(false)
	cfg.SetBrowserDevice("iphone-se")
	cfg.SetNavigationDefaultViewport("mobile")
	cfg.SetNavigationMaxRetries(5)

	assert.False(t, cfg.Browser().Headless)
	assert.Equal(t, "iphone-se", cfg.Browser().Device)
	assert.Equal(t, "mobile", cfg.Navigation().DefaultViewport)
	assert.Equal(t, 5, cfg.Navigation().Retry.MaxRetries)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Core Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		require.NoError(t, cfg.Validate())

		noBase := *cfg
		noBase.NavigationCfg.BaseURL = ""
		err := noBase.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base_url is required")

		badViewport := *cfg
		badViewport.NavigationCfg.DefaultViewport = "watch"
		err = badViewport.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_viewport must be one of")

		badSize := *cfg
		badSize.BrowserCfg.Viewport.Width = 0
		err = badSize.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "browser.viewport width and height must be positive")

		// A device preset makes the explicit viewport irrelevant.
		badSize.BrowserCfg.Device = "pixel-5"
		assert.NoError(t, badSize.Validate())
	})

	t.Run("Retry Validation", func(t *testing.T) {
		valid := RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 4 * time.Second, BackoffFactor: 2}
		assert.NoError(t, valid.Validate())

		noRetries := valid
		noRetries.MaxRetries = 0
		assert.ErrorContains(t, noRetries.Validate(), "max_retries must be greater than 0")

		inverted := valid
		inverted.MaxDelay = 500 * time.Millisecond
		assert.ErrorContains(t, inverted.Validate(), "max_delay must be greater than or equal to base_delay")

		shrinking := valid
		shrinking.BackoffFactor = 0.5
		assert.ErrorContains(t, shrinking.Validate(), "backoff_factor must be at least 1.0")

		negative := valid
		negative.BaseDelay = -time.Second
		assert.ErrorContains(t, negative.Validate(), "base_delay must not be negative")
	})

	t.Run("Timeout Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		timeouts := cfg.Navigation().Timeouts
		assert.NoError(t, timeouts.Validate())

		fastMobile := timeouts
		fastMobile.Mobile.PageLoad = time.Second
		assert.ErrorContains(t, fastMobile.Validate(), "timeouts.mobile must be at least as long as timeouts.desktop")

		zero := timeouts
		zero.Tablet.NetworkIdle = 0
		assert.ErrorContains(t, zero.Validate(), "timeouts.tablet values must be positive durations")
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
navigation:
  base_url: "https://staging.example.test"
  default_viewport: tablet
  retry:
    max_retries: 5
    base_delay: 250ms
browser:
  device: ipad
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "https://staging.example.test", cfg.Navigation().BaseURL)
		assert.Equal(t, "tablet", cfg.Navigation().DefaultViewport)
		assert.Equal(t, 5, cfg.Navigation().Retry.MaxRetries)
		assert.Equal(t, 250*time.Millisecond, cfg.Navigation().Retry.BaseDelay)
		assert.Equal(t, "ipad", cfg.Browser().Device)
		// Defaults survive alongside file values.
		assert.Equal(t, "info", cfg.Logger().Level)
		assert.Equal(t, 8*time.Second, cfg.Navigation().Retry.MaxDelay)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("navigation.retry.max_retries", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "max_retries must be greater than 0")
	})

	t.Run("Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
navigation:
  base_url: "https://configfile.example.test"
`)))

		t.Setenv("NAVIGATOR_NAVIGATION_BASE_URL", "https://env.example.test")
		t.Setenv("NAVIGATOR_NAVIGATION_RETRY_MAX_RETRIES", "7")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "https://env.example.test", cfg.Navigation().BaseURL)
		assert.Equal(t, 7, cfg.Navigation().Retry.MaxRetries)
	})

	t.Run("Pages File Home Expansion", func(t *testing.T) {
		home, err := homedir.Dir()
		if err != nil {
			t.Skip("home directory not resolvable in this environment")
		}
		v := viper.New()
		SetDefaults(v)
		v.Set("navigation.pages_file", "~/pages.yaml")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "pages.yaml"), cfg.Navigation().PagesFile)
	})
}

// -- Struct and Mapping Tests --

func TestConfigStructureMapping(t *testing.T) {
	yamlInput := `
logger:
  level: debug
  log_file: /var/log/navigator.log
navigation:
  timeouts:
    mobile:
      page_load: 60s
browser:
  args: ["--disable-dev-shm-usage"]
`
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlInput)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "debug", cfg.Logger().Level)
	assert.Equal(t, "/var/log/navigator.log", cfg.Logger().LogFile)
	assert.Equal(t, 60*time.Second, cfg.Navigation().Timeouts.Mobile.PageLoad)
	assert.Equal(t, 15*time.Second, cfg.Navigation().Timeouts.Mobile.ElementWait)
	assert.Equal(t, []string{"--disable-dev-shm-usage"}, cfg.Browser().Args)
}
