package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/metrodemo/internal/model"
)

// mockStep implements Step for tests.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, build *model.Build) error
	callCount int
}

func (m *mockStep) Do(ctx context.Context, build *model.Build) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, build)
	}
	return nil
}

func (m *mockStep) Name() string {
	return m.name
}

// recordingSteps returns steps that append their names to order when run.
func recordingSteps(order *[]string, names ...string) []Step {
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		steps = append(steps, &mockStep{
			name: name,
			doFunc: func(_ context.Context, _ *model.Build) error {
				*order = append(*order, name)
				return nil
			},
		})
	}
	return steps
}

func TestPipelineSteps(t *testing.T) {
	t.Parallel()

	t.Run("new pipeline is empty", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if len(p.StepNames()) != 0 {
			t.Errorf("expected no names, got %v", p.StepNames())
		}
	})

	t.Run("AddStep and AddSteps keep order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: StepLoadPhotos})
		p.AddSteps(
			&mockStep{name: StepLoadFixtures},
			&mockStep{name: StepSubstitute},
		)

		want := []string{StepLoadPhotos, StepLoadFixtures, StepSubstitute}
		if diff := cmp.Diff(want, p.StepNames()); diff != "" {
			t.Errorf("step names mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order and records them", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New(WithLogger(discardLogger()))
		p.AddSteps(recordingSteps(&order, StepLoadPhotos, StepAssemble, StepWriteOutputs)...)

		build := model.NewBuild("demo")
		if err := p.Execute(context.Background(), build); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{StepLoadPhotos, StepAssemble, StepWriteOutputs}
		if diff := cmp.Diff(want, order); diff != "" {
			t.Errorf("execution order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want, build.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
		if build.Error != nil {
			t.Errorf("expected no build error, got %v", build.Error)
		}
	})

	t.Run("first failure ends the build", func(t *testing.T) {
		t.Parallel()

		errNoPhoto := errors.New("photo 3 not found")
		writer := &mockStep{name: StepWriteOutputs}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(
			&mockStep{name: StepLoadFixtures},
			&mockStep{
				name: StepLoadPhotos,
				doFunc: func(_ context.Context, _ *model.Build) error {
					return errNoPhoto
				},
			},
			writer,
		)

		build := model.NewBuild("demo")
		err := p.Execute(context.Background(), build)

		if !errors.Is(err, errNoPhoto) {
			t.Fatalf("expected wrapped step error, got %v", err)
		}
		var stepErr *StepError
		if !errors.As(err, &stepErr) || stepErr.Step != StepLoadPhotos {
			t.Errorf("expected StepError for %s, got %v", StepLoadPhotos, err)
		}
		if writer.callCount != 0 {
			t.Error("steps after the failure must not run")
		}
		if diff := cmp.Diff([]string{StepLoadFixtures}, build.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
		if !errors.Is(build.Error, errNoPhoto) {
			t.Errorf("expected error recorded in build, got %v", build.Error)
		}
		if build.ErrorMessage != "load_photos: photo 3 not found" {
			t.Errorf("unexpected error message %q", build.ErrorMessage)
		}
	})

	t.Run("cancelled context runs nothing", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: StepLoadPhotos}
		p := New(WithLogger(discardLogger()))
		p.AddStep(step)

		build := model.NewBuild("demo")
		err := p.Execute(ctx, build)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not have been called")
		}
		if !errors.Is(build.Error, context.Canceled) {
			t.Error("expected cancellation recorded in build")
		}
	})

	t.Run("cancellation between steps stops the build", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		second := &mockStep{name: StepVerify}
		p := New(WithLogger(discardLogger()))
		p.AddSteps(
			&mockStep{
				name: StepWriteOutputs,
				doFunc: func(_ context.Context, _ *model.Build) error {
					cancel()
					return nil
				},
			},
			second,
		)

		build := model.NewBuild("demo")
		if err := p.Execute(ctx, build); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("step after cancellation should not run")
		}
		if diff := cmp.Diff([]string{StepWriteOutputs}, build.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
	})
}
