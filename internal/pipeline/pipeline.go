package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/metrodemo/internal/model"
)

// Step is one stage of a build. Steps run in order and communicate
// through the fields of the build.
type Step interface {
	// Do runs the step against build. A returned error ends the build.
	Do(ctx context.Context, build *model.Build) error

	// Name identifies the step in logs and in the build history.
	Name() string
}

// StepError records which step failed.
type StepError struct {
	Step string
	Err  error
}

// Error implements error.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the step's error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline runs a fixed sequence of steps for one work directory.
//
// Every step depends on the output of the one before it (placeholders
// cannot be substituted before the photos are loaded, outputs cannot be
// verified before they are written), so the first failure ends the run.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in the given order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps against build.
//
// The context is checked before each step. On failure or cancellation the
// error is stored in build.Error and build.ErrorMessage and returned; a step
// failure is wrapped in a *StepError. Completed step names are appended to
// build.PerformedSteps.
func (p *Pipeline) Execute(ctx context.Context, build *model.Build) error {
	logger := p.logger.With("work_dir", build.WorkDir)

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			logger.Warn("build cancelled", "step", step.Name(), "reason", err)
			p.fail(build, err)
			return err
		}

		logger.Info("executing step", "step", step.Name())
		start := time.Now()

		if err := step.Do(ctx, build); err != nil {
			logger.Error("step failed", "step", step.Name(), "error", err)
			stepErr := &StepError{Step: step.Name(), Err: err}
			p.fail(build, stepErr)
			return stepErr
		}

		logger.Debug("step completed",
			"step", step.Name(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		build.PerformedSteps = append(build.PerformedSteps, step.Name())
	}

	logger.Info("build finished",
		"photos", len(build.Photos),
		"outputs", len(build.Outputs),
		"bytes", build.TotalOutputSize(),
		"elapsed", time.Since(build.StartedAt).Round(time.Millisecond),
	)
	return nil
}

func (p *Pipeline) fail(build *model.Build, err error) {
	build.Error = err
	build.ErrorMessage = err.Error()
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
