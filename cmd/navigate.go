// File: cmd/navigate.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/navigator/internal/browser"
	"github.com/xkilldash9x/navigator/internal/config"
	"github.com/xkilldash9x/navigator/internal/navigation"
	"github.com/xkilldash9x/navigator/internal/observability"
	"github.com/xkilldash9x/navigator/internal/selectors"
	"github.com/xkilldash9x/navigator/internal/viewport"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// sessionDriver is a driver the command owns and must close.
type sessionDriver interface {
	browser.Driver
	Close() error
}

type driverFactory func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (sessionDriver, error)

func defaultDriverFactory(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (sessionDriver, error) {
	return browser.NewCDPDriver(ctx, cfg, logger)
}

type navigateOptions struct {
	viewport string
	device   string
	retries  int
	output   string
	headed   bool
}

func newNavigateCommand(newDriver driverFactory) *cobra.Command {
	opts := &navigateOptions{}
	cmd := &cobra.Command{
		Use:   "navigate <page>",
		Short: "Navigate to a named page through the UI and report the validation result",
		Long: `Opens the application in a browser, navigates to the named page by clicking
through its navigation, and prints the page validation. Retries with backoff,
then falls back to loading the page URL directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if err := applyNavigateOverrides(cmd, cfg, opts); err != nil {
				return err
			}
			return runNavigate(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], opts, newDriver)
		},
	}

	cmd.Flags().StringVar(&opts.viewport, "viewport", "", "force a viewport category (mobile, tablet, desktop)")
	cmd.Flags().StringVar(&opts.device, "device", "", "device preset to emulate (e.g. iphone-se, ipad, desktop)")
	cmd.Flags().IntVar(&opts.retries, "retries", 0, "override navigation.retry.max_retries")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "output format (text or json)")
	cmd.Flags().BoolVar(&opts.headed, "headed", false, "show the browser window")
	return cmd
}

// applyNavigateOverrides copies changed flags into cfg and revalidates it.
func applyNavigateOverrides(cmd *cobra.Command, cfg config.Interface, opts *navigateOptions) error {
	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.SetBrowserDevice(opts.device)
	}
	if flags.Changed("headed") {
		cfg.SetBrowserHeadless(!opts.headed)
	}
	if flags.Changed("retries") {
		if opts.retries <= 0 {
			return fmt.Errorf("--retries must be greater than 0, got %d", opts.retries)
		}
		cfg.SetNavigationMaxRetries(opts.retries)
	}
	switch opts.output {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", opts.output)
	}
	if flags.Changed("viewport") {
		c, err := viewport.ParseCategory(opts.viewport)
		if err != nil {
			return err
		}
		cfg.SetNavigationDefaultViewport(c.String())
	}
	return nil
}

func runNavigate(ctx context.Context, out io.Writer, cfg *config.Config, page string, opts *navigateOptions, newDriver driverFactory) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := observability.GetLogger().Named("navigate")

	var override *viewport.Category
	if opts.viewport != "" {
		c, err := viewport.ParseCategory(opts.viewport)
		if err != nil {
			return err
		}
		override = &c
	}

	// The catalogue and the browser are independent, so start both at once.
	// The browser must outlive the group, so it is launched on ctx and closed
	// here if the catalogue turns out to be unusable.
	var (
		registry *selectors.Registry
		driver   sessionDriver
	)
	var g errgroup.Group
	g.Go(func() error {
		r, err := loadRegistry(cfg.Navigation().PagesFile)
		if err != nil {
			return err
		}
		if !r.Has(page) {
			return &selectors.UnknownPageError{Page: page}
		}
		registry = r
		return nil
	})
	g.Go(func() error {
		d, err := newDriver(ctx, cfg.Browser(), logger)
		if err != nil {
			return err
		}
		driver = d
		return nil
	})
	if err := g.Wait(); err != nil {
		if driver != nil {
			_ = driver.Close()
		}
		return err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			logger.Warn("Failed to close browser.", zap.Error(err))
		}
	}()

	navOpts := append(navigation.OptionsFromConfig(cfg.Navigation()), navigation.WithLogger(logger))
	nav, err := navigation.New(driver, registry, navOpts...)
	if err != nil {
		return err
	}

	startPage := strings.TrimRight(cfg.Navigation().BaseURL, "/") + "/"
	if err := driver.Navigate(ctx, startPage); err != nil {
		return fmt.Errorf("could not open %s: %w", startPage, err)
	}

	result, err := nav.NavigateToPage(ctx, page, override)
	if err != nil {
		var failed *navigation.NavigationFailedError
		if errors.As(err, &failed) {
			logger.Debug("Navigation diagnostics.", zap.String("report", failed.Report()))
			if opts.output == "json" && failed.LastValidation != nil {
				_ = writeJSON(out, failed.LastValidation)
			}
		}
		return err
	}

	if opts.output == "json" {
		return writeJSON(out, result)
	}
	writeValidationText(out, result)
	return nil
}

func loadRegistry(pagesFile string) (*selectors.Registry, error) {
	if pagesFile == "" {
		return selectors.NewRegistry(selectors.DefaultCatalogue()...)
	}
	return selectors.LoadFile(pagesFile)
}

func writeJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode result: %w", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func writeValidationText(out io.Writer, v *navigation.PageValidation) {
	status := "LOADED"
	if !v.IsLoaded {
		status = "NOT LOADED"
	}
	fmt.Fprintf(out, "%s %s (%s viewport, %d attempt(s), %dms)\n", v.Page, status, v.Category, v.Attempts, v.LoadTimeMs)
	fmt.Fprintf(out, "  url:   %s\n", v.URL)
	fmt.Fprintf(out, "  title: %s\n", v.Title)
	if v.NavSelector != "" {
		fmt.Fprintf(out, "  via:   %s\n", v.NavSelector)
	}
	if v.ViaDirectURL {
		fmt.Fprintln(out, "  via:   direct URL fallback")
	}
	for _, e := range v.Errors {
		fmt.Fprintf(out, "  error:   %s\n", e)
	}
	for _, w := range v.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
}
