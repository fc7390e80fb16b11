package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for metrodemo.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrodemo",
		Short: "Demo data generator for the subway inspection app",
		Long: `metrodemo assembles the demo dataset of the subway inspection app.

It reads the fixtures in data/, replaces the <BASE64_OBRAn> placeholders in
image_records.json with the base64 of images/obra{n}_*.jpg and writes the
bundle to bin/. Every build is recorded in a local SQLite store, and a
bundle can be imported there for offline inspection.`,
		Version:       readBuildInfo().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs to stderr as JSON")

	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
