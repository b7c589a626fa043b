// Command forge tracks a wave-periodized strength program: it prescribes each
// day's sets from training maxes, records what was lifted and recomputes the
// maxes at the end of every block.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "forge",
		Short:         "Wave periodization strength tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("FORGE_CONFIG"), "Config file path (YAML)")

	cmd.AddCommand(
		serveCmd(&configPath),
		migrateCmd(&configPath),
		initCmd(&configPath),
		showCmd(&configPath),
		logCmd(&configPath),
		noteCmd(&configPath),
		advanceCmd(&configPath),
		setMaxCmd(&configPath),
		maxesCmd(&configPath),
		importCmd(&configPath),
		mcpCmd(&configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "forge version %s\n", Version)
			},
		},
	)
	return cmd
}
