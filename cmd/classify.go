// File: cmd/classify.go
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/navigator/internal/navigation"
	"github.com/xkilldash9x/navigator/internal/viewport"
)

type classification struct {
	Width       int               `json:"width"`
	Category    viewport.Category `json:"category"`
	PageLoad    string            `json:"pageLoad"`
	ElementWait string            `json:"elementWait"`
	NetworkIdle string            `json:"networkIdle"`
}

func newClassifyCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "classify <width>",
		Short: "Print the viewport category and timeout profile for a pixel width",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := strconv.Atoi(args[0])
			if err != nil || width < 0 {
				return fmt.Errorf("width must be a non-negative integer, got %q", args[0])
			}
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}

			c := viewport.Classify(width)
			profile := navigation.ProfilesFrom(cfg.Navigation().Timeouts).Profile(c)
			res := classification{
				Width:       width,
				Category:    c,
				PageLoad:    profile.PageLoad.String(),
				ElementWait: profile.ElementWait.String(),
				NetworkIdle: profile.NetworkIdle.String(),
			}
			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d -> %s (page load %s, element wait %s, network idle %s)\n",
				res.Width, res.Category, res.PageLoad, res.ElementWait, res.NetworkIdle)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text or json)")
	return cmd
}
