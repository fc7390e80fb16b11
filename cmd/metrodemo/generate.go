package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/metrodemo/internal/config"
	"github.com/nao1215/metrodemo/internal/database"
	applog "github.com/nao1215/metrodemo/internal/log"
	"github.com/nao1215/metrodemo/internal/model"
	"github.com/nao1215/metrodemo/internal/pipeline"
	"github.com/nao1215/metrodemo/internal/report"
)

// ErrBuildFailed is returned when at least one work directory failed.
var ErrBuildFailed = errors.New("build failed")

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [workdir...]",
		Short: "Generate the demo data bundle",
		Long: `Generate builds the demo data bundle of one or more work directories.

For each work directory it:
- loads images/obra1_*.jpg .. obraN_*.jpg and encodes them as base64
- loads data/projects.json, data/image_records.json and data/analyses.json
- replaces every <BASE64_OBRAn> placeholder with the photo data
- writes bin/demo_data_complete.json, projects.bin.json,
  image_records.bin.json and analyses.bin.json
- reads the outputs back and verifies them

Examples:
  # Build the current directory
  metrodemo generate

  # Build two demo directories, two at a time
  metrodemo generate demo_metro_sp demo_metro_rj --batch 2

  # Embed six photos and write SUMMARY.md
  metrodemo generate --images 6 --markdown

  # Print the summary as JSON
  metrodemo generate --json`,
		Args: cobra.ArbitraryArgs,
		RunE: runGenerateCmd,
	}

	cmd.Flags().String("images-dir", config.DefaultImagesDir,
		"Photo directory, relative to each work directory")
	cmd.Flags().String("data-dir", config.DefaultDataDir,
		"Fixture directory, relative to each work directory")
	cmd.Flags().String("bin-dir", config.DefaultBinDir,
		"Output directory, relative to each work directory")
	cmd.Flags().String("version-tag", config.DefaultVersion,
		"Dataset version written to metadata")
	cmd.Flags().IntP("images", "n", config.DefaultImageCount,
		"Number of photos and placeholders")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Photos loaded in parallel")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Work directories built in parallel")

	cmd.Flags().BoolP("markdown", "m", false,
		"Write a Markdown summary into the output directory")
	cmd.Flags().String("summary", config.DefaultSummaryFile,
		"Markdown summary file name")
	cmd.Flags().BoolP("json", "j", false,
		"Print the build summary as JSON")
	cmd.Flags().Bool("no-db", false,
		"Do not record builds in the local store")
	cmd.Flags().String("db-dir", "",
		"Directory of the local store (default: XDG data directory)")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .metrodemo in current or home directory)")

	return cmd
}

// runGenerateCmd executes the generate command.
func runGenerateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runGenerate(ctx, cmd.OutOrStdout(), cfg, jsonOut, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getRootBoolFlag(cmd, "verbose")
}

// getRootBoolFlag reads a boolean flag from the command, falling back to
// the root's persistent flags. A missing flag reads as false.
func getRootBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// newLogger creates the secure logger writing to the command's stderr,
// as JSON when --log-json is set.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if getRootBoolFlag(cmd, "log-json") {
		return applog.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return applog.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}

// loadConfig returns the defaults overlaid with the configuration file.
// A missing file is only an error when its path was given explicitly.
func loadConfig(configPath string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.ConfigFilePath = configPath

	path := config.FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
		}
		return cfg, nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	file.Apply(cfg)

	return cfg, nil
}

// buildConfig creates a Config from the configuration file and the
// generate flags. Only flags set on the command line override the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"images-dir":  &cfg.ImagesDir,
		"data-dir":    &cfg.DataDir,
		"bin-dir":     &cfg.BinDir,
		"version-tag": &cfg.Version,
		"summary":     &cfg.SummaryFile,
		"db-dir":      &cfg.DBDir,
	} {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	for name, dst := range map[string]*int{
		"images":      &cfg.ImageCount,
		"concurrency": &cfg.Concurrency,
		"batch":       &cfg.BatchSize,
	} {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetInt(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("markdown") {
		if cfg.MarkdownSummary, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	if len(args) > 0 {
		cfg.Targets = args
	}
	// builds are recorded under the cleaned path so history lookups match
	targets := make([]string, len(cfg.Targets))
	for i, t := range cfg.Targets {
		targets[i] = filepath.Clean(t)
	}
	cfg.Targets = targets
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runGenerate builds every target and prints one summary per build.
func runGenerate(ctx context.Context, out io.Writer, cfg *config.Config, jsonOut bool, logger *slog.Logger) error {
	logger.Info("starting generation",
		"targets", cfg.Targets,
		"images", cfg.ImageCount,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var store *database.Store
	if cfg.SaveToDB {
		var err error
		store, err = database.Open(cfg.DBDir, database.Options{
			CreateIfNotExists: true,
			EnableWAL:         true,
			Logger:            logger,
		})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()
		logger.Info("database opened", "path", store.Path())
	}

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(cfg, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	builds, batchErr := bp.ProcessBatch(ctx, cfg.Targets)

	failed := 0
	for _, build := range builds {
		if build == nil {
			// never started because the batch was cancelled
			continue
		}
		if !build.Succeeded() {
			failed++
		}

		if err := outputBuild(out, cfg, build, jsonOut); err != nil {
			logger.Error("summary failed", "work_dir", build.WorkDir, "error", err)
		}

		if err := saveBuild(ctx, store, build, logger); err != nil {
			logger.Error("failed to save build", "work_dir", build.WorkDir, "error", err)
		}
	}

	logger.Info("generation finished",
		"builds", len(builds),
		"failed", failed,
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	if batchErr != nil {
		return batchErr
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d work directories", ErrBuildFailed, failed, len(builds))
	}
	return nil
}

// outputBuild prints the build summary and, when enabled, writes the
// Markdown summary next to the outputs.
func outputBuild(out io.Writer, cfg *config.Config, build *model.Build, jsonOut bool) error {
	var terminal report.Writer = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	if jsonOut {
		terminal = report.NewJSONWriter(out, report.WithPrettyPrint())
	}
	writers := []report.Writer{terminal}

	if cfg.MarkdownSummary {
		path := cfg.SummaryPath(build.WorkDir)
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}

		f, err := os.Create(path) //nolint:gosec // path is built from the configured output directory
		if err != nil {
			return fmt.Errorf("failed to create summary file: %w", err)
		}

		writers = append(writers, report.NewMarkdownWriter(f))
		if _, err := report.NewMultiWriter(writers...).Write(build); err != nil {
			_ = f.Close() //nolint:errcheck // the write error is more useful
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", path, err)
		}
		return nil
	}

	_, err := report.NewMultiWriter(writers...).Write(build)
	return err
}

// saveBuild records the build in the store if one is open.
func saveBuild(ctx context.Context, store *database.Store, build *model.Build, logger *slog.Logger) error {
	if store == nil {
		return nil
	}

	if err := store.SaveBuild(ctx, build); err != nil {
		return err
	}

	logger.Debug("build saved to database", "work_dir", build.WorkDir)
	return nil
}
