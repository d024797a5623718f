// Package cli implements the plumage command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"plumage/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		definitions string
		output      string
	)

	rootCmd := &cobra.Command{
		Use:           "plumage",
		Short:         "Feature planning CLI",
		Long:          "Compiles declarative feature views and plans point-in-time retrieval queries.",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			}))
			slog.SetDefault(logger)
			for _, warning := range cfg.Warnings {
				logger.Warn(warning)
			}

			// Precedence: flag > env > default.
			if !cmd.Flags().Changed("definitions") {
				definitions = cfg.DefinitionsDir
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&definitions, "definitions", "d", "features", "Directory of feature-view YAML definitions")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newCompileCmd(&definitions, &output))
	rootCmd.AddCommand(newPlanCmd(&definitions))

	return rootCmd
}
