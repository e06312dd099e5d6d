// sedstack stacks noisy galaxy cutouts into high-signal composites and
// derives background-subtracted radial surface-brightness profiles.
//
// Two subcommands, each taking the path to a YAML config file:
//
//	sedstack stack <config>        stack the configured images
//	sedstack photometry <config>   profile the stacked outputs and plot
package main

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"sedstack/pkg/config"
	"sedstack/pkg/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	var logger *charmlog.Logger

	root := &cobra.Command{
		Use:          "sedstack",
		Short:        "Stack galaxy stamps and measure their radial profiles",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
				ReportTimestamp: true,
				TimeFormat:      "15:04:05",
				Level:           level,
			})
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:   "stack <config>",
		Short: "Stack galaxy stamps from each configured image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			return pipeline.RunStacking(cfg, logger)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "photometry <config>",
		Short: "Profile stacked images and plot surface brightness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			return pipeline.RunPhotometry(cfg, logger)
		},
	})

	return root
}
