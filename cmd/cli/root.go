// Package cli implements stockassist-admin, the operator tool of the
// StockAssist authentication service.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stockassist/platform/internal/config"
)

var configPath string

// NewRootCmd builds the command tree. Tests build a fresh tree per case.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stockassist-admin",
		Short: "Administrative tool for the StockAssist authentication service.",
		Long: `stockassist-admin performs operator tasks against the StockAssist
authentication service, such as generating a signing secret or creating
user accounts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("STOCKASSIST_CONFIG"), "path to the YAML config file")

	root.AddCommand(newSecretCmd(), newTokenCmd(), newUserCmd())
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(configPath)
}
