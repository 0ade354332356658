// File: cmd/pages.go
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/navigator/internal/selectors"
	"github.com/xkilldash9x/navigator/internal/viewport"
)

type pageSummary struct {
	Name            string               `json:"name"`
	URLPatterns     []string             `json:"urlPatterns"`
	TitlePatterns   []string             `json:"titlePatterns"`
	SearchRequired  bool                 `json:"searchInterfaceRequired"`
	Strategies      []selectors.Strategy `json:"strategies,omitempty"`
	Fallbacks       []selectors.Strategy `json:"fallbacks,omitempty"`
	RequiredElement []string             `json:"requiredElements"`
}

func newPagesCommand() *cobra.Command {
	var (
		category string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List the pages in the selector catalogue",
		Long: `Lists every page in the active catalogue. With --viewport, also prints the
navigation strategies in the order they are tried for that category.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			var c viewport.Category
			if category != "" {
				if c, err = viewport.ParseCategory(category); err != nil {
					return err
				}
			}
			registry, err := loadRegistry(cfg.Navigation().PagesFile)
			if err != nil {
				return err
			}
			summaries, err := summarizePages(registry, c)
			if err != nil {
				return err
			}
			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), summaries)
			}
			writePagesText(cmd.OutOrStdout(), summaries)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "viewport", "", "show strategies for this viewport category")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text or json)")
	return cmd
}

func summarizePages(r *selectors.Registry, c viewport.Category) ([]pageSummary, error) {
	out := make([]pageSummary, 0, r.Len())
	for _, name := range r.Names() {
		p, err := r.Page(name)
		if err != nil {
			return nil, err
		}
		s := pageSummary{
			Name:           p.Name,
			URLPatterns:    p.URLPatterns,
			TitlePatterns:  p.TitlePatterns,
			SearchRequired: p.SearchInterfaceRequired,
		}
		for _, el := range p.RequiredElements {
			s.RequiredElement = append(s.RequiredElement, el.Name)
		}
		if c != "" {
			if s.Strategies, err = r.StrategiesFor(name, c); err != nil {
				return nil, err
			}
			if s.Fallbacks, err = r.FallbackStrategies(name); err != nil {
				return nil, err
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func writePagesText(out io.Writer, pages []pageSummary) {
	for _, p := range pages {
		fmt.Fprintf(out, "%s  %v\n", p.Name, p.URLPatterns)
		for _, s := range p.Strategies {
			fmt.Fprintf(out, "  %3d  %-6s  %s\n", s.Priority, s.Reliability, s.Selector)
		}
		for _, s := range p.Fallbacks {
			fmt.Fprintf(out, "  %3d  %-6s  %s (fallback)\n", s.Priority, s.Reliability, s.Selector)
		}
	}
}
