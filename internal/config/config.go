// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for every environment variable the application reads.
const EnvPrefix = "NAVIGATOR"

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Navigation() NavigationConfig

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserDevice(string)

	// Navigation Setters
	SetNavigationDefaultViewport(string)
	SetNavigationMaxRetries(int)
}

// Config holds the entire application configuration.
// Sections are exported so viper can decode into them; callers should prefer the getters.
type Config struct {
	LoggerCfg     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	BrowserCfg    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	NavigationCfg NavigationConfig `mapstructure:"navigation" yaml:"navigation"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig         { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig       { return c.BrowserCfg }
func (c *Config) Navigation() NavigationConfig { return c.NavigationCfg }

// --- Interface Method Implementations (Setters) ---

// Browser Setters
func (c *Config) SetBrowserHeadless(b bool) { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserDevice(d string) { c.BrowserCfg.Device = d }

// Navigation Setters
func (c *Config) SetNavigationDefaultViewport(v string) { c.NavigationCfg.DefaultViewport = v }
func (c *Config) SetNavigationMaxRetries(n int)         { c.NavigationCfg.Retry.MaxRetries = n }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the headless browser instance driven by the navigator.
type BrowserConfig struct {
	Headless bool     `mapstructure:"headless" yaml:"headless"`
	ExecPath string   `mapstructure:"exec_path" yaml:"exec_path"`
	Args     []string `mapstructure:"args" yaml:"args"`
	// Device names a viewport preset (e.g. "iphone-se"). Empty means use Viewport.
	Device   string         `mapstructure:"device" yaml:"device"`
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	// IdleQuietPeriod is how long the network must stay silent before the page counts as settled.
	IdleQuietPeriod time.Duration `mapstructure:"idle_quiet_period" yaml:"idle_quiet_period"`
}

// ViewportConfig is an explicit window size.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// NavigationConfig configures the navigation engine. It is read once at startup.
type NavigationConfig struct {
	BaseURL         string         `mapstructure:"base_url" yaml:"base_url"`
	DefaultViewport string         `mapstructure:"default_viewport" yaml:"default_viewport"`
	PagesFile       string         `mapstructure:"pages_file" yaml:"pages_file"`
	Retry           RetryConfig    `mapstructure:"retry" yaml:"retry"`
	Timeouts        TimeoutsConfig `mapstructure:"timeouts" yaml:"timeouts"`
}

// RetryConfig mirrors the retry/backoff parameters of the navigator.
type RetryConfig struct {
	MaxRetries    int           `mapstructure:"max_retries" yaml:"max_retries"`
	BaseDelay     time.Duration `mapstructure:"base_delay" yaml:"base_delay"`
	MaxDelay      time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
	BackoffFactor float64       `mapstructure:"backoff_factor" yaml:"backoff_factor"`
}

// TimeoutsConfig holds one timeout profile per viewport category.
type TimeoutsConfig struct {
	Mobile  TimeoutProfileConfig `mapstructure:"mobile" yaml:"mobile"`
	Tablet  TimeoutProfileConfig `mapstructure:"tablet" yaml:"tablet"`
	Desktop TimeoutProfileConfig `mapstructure:"desktop" yaml:"desktop"`
}

// TimeoutProfileConfig is the per-category set of operation timeouts.
type TimeoutProfileConfig struct {
	PageLoad    time.Duration `mapstructure:"page_load" yaml:"page_load"`
	ElementWait time.Duration `mapstructure:"element_wait" yaml:"element_wait"`
	NetworkIdle time.Duration `mapstructure:"network_idle" yaml:"network_idle"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "navigator")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.device", "")
	v.SetDefault("browser.viewport.width", 1920)
	v.SetDefault("browser.viewport.height", 1080)
	v.SetDefault("browser.idle_quiet_period", "500ms")

	// -- Navigation --
	v.SetDefault("navigation.base_url", "http://localhost:3000")
	v.SetDefault("navigation.default_viewport", "desktop")
	v.SetDefault("navigation.pages_file", "")
	v.SetDefault("navigation.retry.max_retries", 3)
	v.SetDefault("navigation.retry.base_delay", "1s")
	v.SetDefault("navigation.retry.max_delay", "8s")
	v.SetDefault("navigation.retry.backoff_factor", 2.0)

	// -- Navigation Timeouts (mobile is the slowest profile) --
	v.SetDefault("navigation.timeouts.mobile.page_load", "45s")
	v.SetDefault("navigation.timeouts.mobile.element_wait", "15s")
	v.SetDefault("navigation.timeouts.mobile.network_idle", "10s")
	v.SetDefault("navigation.timeouts.tablet.page_load", "38s")
	v.SetDefault("navigation.timeouts.tablet.element_wait", "12s")
	v.SetDefault("navigation.timeouts.tablet.network_idle", "8s")
	v.SetDefault("navigation.timeouts.desktop.page_load", "30s")
	v.SetDefault("navigation.timeouts.desktop.element_wait", "10s")
	v.SetDefault("navigation.timeouts.desktop.network_idle", "5s")
}

// BindEnvironment wires the NAVIGATOR_ prefixed environment variables into v.
// Keys map as "navigation.base_url" -> NAVIGATOR_NAVIGATION_BASE_URL.
func BindEnvironment(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short aliases for the values CI pipelines set most often.
	v.BindEnv("navigation.base_url", EnvPrefix+"_NAVIGATION_BASE_URL", "BASE_URL")
	v.BindEnv("navigation.default_viewport", EnvPrefix+"_NAVIGATION_DEFAULT_VIEWPORT", "VIEWPORT")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	BindEnvironment(v)

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.NavigationCfg.PagesFile != "" {
		expanded, err := homedir.Expand(cfg.NavigationCfg.PagesFile)
		if err != nil {
			return nil, fmt.Errorf("could not expand navigation.pages_file: %w", err)
		}
		cfg.NavigationCfg.PagesFile = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.NavigationCfg.Validate(); err != nil {
		return fmt.Errorf("navigation configuration invalid: %w", err)
	}
	if c.BrowserCfg.Device == "" {
		if c.BrowserCfg.Viewport.Width <= 0 || c.BrowserCfg.Viewport.Height <= 0 {
			return fmt.Errorf("browser.viewport width and height must be positive integers")
		}
	}
	return nil
}

// Validate checks the NavigationConfig settings.
func (n *NavigationConfig) Validate() error {
	if n.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	switch strings.ToLower(n.DefaultViewport) {
	case "", "mobile", "tablet", "desktop":
	default:
		return fmt.Errorf("default_viewport must be one of mobile, tablet, desktop (got %q)", n.DefaultViewport)
	}
	if err := n.Retry.Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	return n.Timeouts.Validate()
}

// Validate checks the RetryConfig settings.
func (r *RetryConfig) Validate() error {
	if r.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be greater than 0")
	}
	if r.BaseDelay < 0 {
		return fmt.Errorf("base_delay must not be negative")
	}
	if r.MaxDelay < r.BaseDelay {
		return fmt.Errorf("max_delay must be greater than or equal to base_delay")
	}
	if r.BackoffFactor < 1 {
		return fmt.Errorf("backoff_factor must be at least 1.0")
	}
	return nil
}

// Validate enforces that every timeout is positive and that the mobile profile
// is never faster than the desktop one.
func (t *TimeoutsConfig) Validate() error {
	for name, p := range map[string]TimeoutProfileConfig{"mobile": t.Mobile, "tablet": t.Tablet, "desktop": t.Desktop} {
		if p.PageLoad <= 0 || p.ElementWait <= 0 || p.NetworkIdle <= 0 {
			return fmt.Errorf("timeouts.%s values must be positive durations", name)
		}
	}
	if t.Mobile.PageLoad < t.Desktop.PageLoad ||
		t.Mobile.ElementWait < t.Desktop.ElementWait ||
		t.Mobile.NetworkIdle < t.Desktop.NetworkIdle {
		return fmt.Errorf("timeouts.mobile must be at least as long as timeouts.desktop")
	}
	return nil
}
