package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/metrodemo/internal/database"
	"github.com/nao1215/metrodemo/internal/model"
	"github.com/nao1215/metrodemo/internal/report"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a generated bundle into the local store",
		Long: `Import loads demo_data_complete.json into the local SQLite store.

Each collection (projects, image_records, analyses) is imported in its own
transaction, keyed by the document "id". Importing the same bundle again
updates the stored documents. Documents without an id get a random UUID.
Top-level ISO timestamps such as "2024-03-01T12:00:00.000Z" are stored as
{"seconds": ..., "nanos": ...} objects.

Examples:
  # Import bin/demo_data_complete.json of the current directory
  metrodemo import

  # Import a specific bundle
  metrodemo import demo_metro_sp/bin/demo_data_complete.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runImportCmd,
	}

	cmd.Flags().String("db-dir", "",
		"Directory of the local store (default: XDG data directory)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .metrodemo in current or home directory)")

	return cmd
}

// runImportCmd executes the import command.
func runImportCmd(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("db-dir") {
		if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
			return err
		}
	}

	path := filepath.Join(cfg.BinPath(cfg.Targets[0]), report.CompleteFileName)
	if len(args) > 0 {
		path = args[0]
	}

	logger := newLogger(cmd, getVerboseFlag(cmd))

	return runImport(cmd.Context(), cmd.OutOrStdout(), path, cfg.DBDir, logger)
}

// runImport reads a bundle and imports its collections.
func runImport(ctx context.Context, out io.Writer, path, dbDir string, logger *slog.Logger) error {
	raw, err := os.ReadFile(path) //nolint:gosec // user-provided bundle path is intentional
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}

	var data model.DemoData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	store, err := database.Open(dbDir, database.Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	fmt.Fprintf(out, "Importing %s into %s\n\n", path, store.Path())

	results, importErr := store.ImportDemoData(ctx, &data)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "  %-16s FAILED: %v\n", r.Collection, r.Err)
			continue
		}
		fmt.Fprintf(out, "  %-16s %d documents\n", r.Collection, r.Imported)
	}

	if importErr != nil {
		return fmt.Errorf("import incomplete: %w", importErr)
	}

	fmt.Fprintf(out, "\nGenerated at %s, version %s\n", data.Metadata.GeneratedAt, data.Metadata.Version)
	return nil
}
