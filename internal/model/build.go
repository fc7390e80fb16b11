package model

import (
	"time"
)

// OutputFile describes one file written to the bin directory.
type OutputFile struct {
	// Name is the file name, e.g. "demo_data_complete.json".
	Name string `json:"name"`

	// Path is the full path of the written file.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// Build is the state carried through a generation pipeline for one work
// directory. Each step reads what earlier steps produced and adds its own
// results.
type Build struct {
	// WorkDir is the directory holding images/, data/ and bin/.
	WorkDir string `json:"work_dir"` //nolint:tagliatelle

	// StartedAt is when the pipeline began.
	StartedAt time.Time `json:"started_at"` //nolint:tagliatelle

	// Photos are the loaded photographs ordered by index.
	Photos []*Photo `json:"photos"`

	// Template is the raw image_records.json text before substitution.
	Template string `json:"-"`

	// Projects, ImageRecords and Analyses are the parsed fixtures.
	Projects     []*Document `json:"-"`
	ImageRecords []*Document `json:"-"`
	Analyses     []*Document `json:"-"`

	// Data is the assembled dataset.
	Data *DemoData `json:"-"`

	// Outputs are the files written, in write order.
	Outputs []OutputFile `json:"outputs"`

	// Verified is true once the written outputs passed verification.
	Verified bool `json:"verified"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps"` //nolint:tagliatelle

	// Error is the error that stopped the pipeline, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as text for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewBuild creates a Build for the given work directory.
func NewBuild(workDir string) *Build {
	return &Build{
		WorkDir:        workDir,
		StartedAt:      time.Now(),
		Photos:         make([]*Photo, 0),
		Outputs:        make([]OutputFile, 0),
		PerformedSteps: make([]string, 0),
	}
}

// Photo returns the photo with the given 1-based index, or nil.
func (b *Build) Photo(index int) *Photo {
	for _, p := range b.Photos {
		if p != nil && p.Index == index {
			return p
		}
	}
	return nil
}

// Output returns the output file with the given name.
func (b *Build) Output(name string) (OutputFile, bool) {
	for _, o := range b.Outputs {
		if o.Name == name {
			return o, true
		}
	}
	return OutputFile{}, false
}

// TotalOutputSize returns the combined size of all written files.
func (b *Build) TotalOutputSize() int64 {
	var total int64
	for _, o := range b.Outputs {
		total += o.Size
	}
	return total
}

// Succeeded reports whether the build finished without error.
func (b *Build) Succeeded() bool {
	return b.Error == nil && b.Data != nil
}
