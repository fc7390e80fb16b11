package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/metrodemo/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [workdir]",
		Short: "List recorded builds",
		Long: `History lists the builds recorded by generate, newest first.

Without an argument every work directory is listed.

Examples:
  # All builds
  metrodemo history

  # Builds of one work directory
  metrodemo history demo_metro_sp`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", "",
		"Directory of the local store (default: XDG data directory)")
	cmd.Flags().IntP("limit", "l", 20,
		"Maximum number of builds to show (0 for all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("db-dir") {
		if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
			return err
		}
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	var workDir string
	if len(args) > 0 {
		workDir = filepath.Clean(args[0])
	}

	store, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		return fmt.Errorf("no build history yet: %w", err)
	}
	defer store.Close()

	return printHistory(cmd.Context(), cmd.OutOrStdout(), store, workDir, limit)
}

// printHistory writes the build history as a table.
func printHistory(ctx context.Context, out io.Writer, store *database.Store, workDir string, limit int) error {
	records, err := store.GetBuildHistory(ctx, workDir)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		if workDir != "" {
			fmt.Fprintf(out, "No builds recorded for %s\n", workDir)
		} else {
			fmt.Fprintln(out, "No builds recorded")
		}
		return nil
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	fmt.Fprintf(out, "Build history (%d builds):\n\n", len(records))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %-12s  %-10s  %s\n",
		"ID", "Date", "Version", "P/I/A", "Size", "Work Directory")

	for _, r := range records {
		status := ""
		switch {
		case r.Error != "":
			status = "  FAILED: " + r.Error
		case !r.Verified:
			status = "  (unverified)"
		}

		counts := fmt.Sprintf("%d/%d/%d", r.TotalProjects, r.TotalImages, r.TotalAnalyses)
		fmt.Fprintf(out, "  %-6d  %-20s  %-8s  %-12s  %-10s  %s%s\n",
			r.ID,
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			orNone(r.Version),
			counts,
			humanize.Bytes(uint64(r.SizeBytes)), //nolint:gosec // sizes are never negative
			r.WorkDir,
			status,
		)
	}

	return nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
