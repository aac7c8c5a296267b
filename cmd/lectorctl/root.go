package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lectorncf/lector-ncf/internal/common"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "lectorctl",
	Short: "lectorctl - fiscal invoice extraction from the command line",
	Long: `lectorctl reads Dominican fiscal invoices (NCF, RNC, amounts) from
OCR text or image files, and manages the local invoice store.

The daemon counterpart, lectord, serves the WhatsApp webhooks; lectorctl
covers one-off runs and exports.`,
	Version: version,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}

// cliLogger builds a logger honoring the --log-level flag.
func cliLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return common.NewLogger(common.LoggingConfig{Level: level, Format: "text"})
}
