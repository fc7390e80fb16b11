package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/metrodemo/internal/config"
	"github.com/nao1215/metrodemo/internal/fixture"
	"github.com/nao1215/metrodemo/internal/imagery"
	"github.com/nao1215/metrodemo/internal/model"
	"github.com/nao1215/metrodemo/internal/report"
)

// Step names as recorded in Build.PerformedSteps.
const (
	StepLoadPhotos   = "load_photos"
	StepLoadFixtures = "load_fixtures"
	StepSubstitute   = "substitute_placeholders"
	StepAssemble     = "assemble"
	StepWriteOutputs = "write_outputs"
	StepVerify       = "verify_outputs"
)

// ErrNoData is returned when outputs are written before the dataset was
// assembled.
var ErrNoData = errors.New("no assembled demo data")

// LoadPhotosStep reads the obra{N}_*.jpg photographs of a work directory.
type LoadPhotosStep struct {
	// imagesDir is resolved against the build's work directory.
	imagesDir string

	// count is the number of photos to load, starting at 1.
	count int

	loader *imagery.Loader
	logger *slog.Logger
}

// NewLoadPhotosStep creates a step loading photos 1..count from imagesDir.
func NewLoadPhotosStep(imagesDir string, count int, loader *imagery.Loader, logger *slog.Logger) *LoadPhotosStep {
	if loader == nil {
		loader = imagery.NewLoader()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadPhotosStep{imagesDir: imagesDir, count: count, loader: loader, logger: logger}
}

// Name returns the step name.
func (s *LoadPhotosStep) Name() string {
	return StepLoadPhotos
}

// Do loads the photos into the build.
func (s *LoadPhotosStep) Do(ctx context.Context, build *model.Build) error {
	dir := config.Resolve(build.WorkDir, s.imagesDir)

	photos, err := s.loader.Load(ctx, dir, s.count)
	if err != nil {
		return fmt.Errorf("failed to load photos: %w", err)
	}
	build.Photos = photos

	var total int64
	for _, p := range photos {
		total += p.Size
	}
	s.logger.Info("photos loaded", "dir", dir, "count", len(photos), "bytes", total)
	return nil
}

// LoadFixturesStep reads projects, the image record template and analyses.
type LoadFixturesStep struct {
	dataDir string
	logger  *slog.Logger
}

// NewLoadFixturesStep creates a step reading fixtures from dataDir.
func NewLoadFixturesStep(dataDir string, logger *slog.Logger) *LoadFixturesStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadFixturesStep{dataDir: dataDir, logger: logger}
}

// Name returns the step name.
func (s *LoadFixturesStep) Name() string {
	return StepLoadFixtures
}

// Do loads the fixtures into the build.
func (s *LoadFixturesStep) Do(_ context.Context, build *model.Build) error {
	set, err := fixture.LoadSet(config.Resolve(build.WorkDir, s.dataDir))
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}

	build.Projects = set.Projects
	build.Template = set.Template
	build.Analyses = set.Analyses

	s.logger.Info("fixtures loaded",
		"projects", len(set.Projects),
		"analyses", len(set.Analyses),
		"template_bytes", len(set.Template),
	)
	return nil
}

// SubstituteStep replaces the photo placeholders in the image record
// template and parses the result.
type SubstituteStep struct {
	count  int
	logger *slog.Logger
}

// NewSubstituteStep creates a step substituting placeholders 1..count.
func NewSubstituteStep(count int, logger *slog.Logger) *SubstituteStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubstituteStep{count: count, logger: logger}
}

// Name returns the step name.
func (s *SubstituteStep) Name() string {
	return StepSubstitute
}

// Do stores the substituted image records in the build.
func (s *SubstituteStep) Do(_ context.Context, build *model.Build) error {
	for _, token := range fixture.AbsentTokens(build.Template, s.count) {
		s.logger.Warn("placeholder not used by any image record", "token", token)
	}

	substituted, err := fixture.Substitute(build.Template, build.Photos, s.count)
	if err != nil {
		return fmt.Errorf("failed to substitute placeholders: %w", err)
	}

	records, err := fixture.ParseCollection([]byte(substituted))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", fixture.ImageRecordsFile, err)
	}
	build.ImageRecords = records

	s.logger.Info("placeholders substituted", "image_records", len(records))
	return nil
}

// AssembleStep combines the collections into the demo dataset.
type AssembleStep struct {
	version string
	now     func() time.Time
}

// AssembleStepOption configures an AssembleStep.
type AssembleStepOption func(*AssembleStep)

// WithClock sets the clock used for metadata.generated_at.
func WithClock(now func() time.Time) AssembleStepOption {
	return func(s *AssembleStep) {
		s.now = now
	}
}

// NewAssembleStep creates a step stamping the dataset with version.
func NewAssembleStep(version string, opts ...AssembleStepOption) *AssembleStep {
	s := &AssembleStep{version: version, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AssembleStep) Name() string {
	return StepAssemble
}

// Do stores the assembled dataset in the build.
func (s *AssembleStep) Do(_ context.Context, build *model.Build) error {
	build.Data = fixture.Assemble(build.Projects, build.ImageRecords, build.Analyses, s.version, s.now())
	return nil
}

// WriteOutputsStep writes the JSON outputs into the bin directory.
type WriteOutputsStep struct {
	binDir string
	opts   []report.OutputOption
	logger *slog.Logger
}

// NewWriteOutputsStep creates a step writing into binDir.
func NewWriteOutputsStep(binDir string, logger *slog.Logger, opts ...report.OutputOption) *WriteOutputsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &WriteOutputsStep{binDir: binDir, opts: opts, logger: logger}
}

// Name returns the step name.
func (s *WriteOutputsStep) Name() string {
	return StepWriteOutputs
}

// Do writes the outputs and records them in the build.
func (s *WriteOutputsStep) Do(_ context.Context, build *model.Build) error {
	if build.Data == nil {
		return ErrNoData
	}

	outputs, err := report.NewOutputSet(config.Resolve(build.WorkDir, s.binDir), s.opts...).WriteAll(build.Data)
	build.Outputs = append(build.Outputs, outputs...)
	if err != nil {
		return err
	}

	for _, o := range outputs {
		s.logger.Info("output written", "file", o.Path, "size", o.Size)
	}
	return nil
}

// VerifyStep reads the outputs back and checks them.
type VerifyStep struct {
	binDir string
	logger *slog.Logger
}

// NewVerifyStep creates a step verifying the outputs in binDir.
func NewVerifyStep(binDir string, logger *slog.Logger) *VerifyStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerifyStep{binDir: binDir, logger: logger}
}

// Name returns the step name.
func (s *VerifyStep) Name() string {
	return StepVerify
}

// Do marks the build verified when every check passes.
func (s *VerifyStep) Do(_ context.Context, build *model.Build) error {
	v, err := report.Verify(config.Resolve(build.WorkDir, s.binDir))
	if err != nil {
		return fmt.Errorf("output verification failed: %w", err)
	}
	build.Verified = true

	s.logger.Info("outputs verified",
		"total_projects", v.Metadata.TotalProjects,
		"total_images", v.Metadata.TotalImages,
		"total_analyses", v.Metadata.TotalAnalyses,
		"total_size", v.TotalSize(),
	)
	return nil
}

// DefaultPipeline creates a pipeline with all generation steps configured
// from cfg. Options configure the pipeline itself; its logger is shared
// with the steps.
func DefaultPipeline(cfg *config.Config, opts ...Option) *Pipeline {
	p := New(opts...)

	loader := imagery.NewLoader(
		imagery.WithConcurrency(cfg.Concurrency),
		imagery.WithLogger(p.logger),
	)

	p.AddSteps(
		NewLoadPhotosStep(cfg.ImagesDir, cfg.ImageCount, loader, p.logger),
		NewLoadFixturesStep(cfg.DataDir, p.logger),
		NewSubstituteStep(cfg.ImageCount, p.logger),
		NewAssembleStep(cfg.Version),
		NewWriteOutputsStep(cfg.BinDir, p.logger),
		NewVerifyStep(cfg.BinDir, p.logger),
	)

	return p
}
