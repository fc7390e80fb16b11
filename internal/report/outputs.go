package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/metrodemo/internal/model"
)

// Output file names inside the bin directory.
const (
	// CompleteFileName holds the whole dataset with photographs inline.
	CompleteFileName = "demo_data_complete.json"

	// ProjectsFileName holds the projects collection.
	ProjectsFileName = "projects.bin.json"

	// ImageRecordsFileName holds image records with reference tokens
	// in place of photographs.
	ImageRecordsFileName = "image_records.bin.json"

	// AnalysesFileName holds the analyses collection.
	AnalysesFileName = "analyses.bin.json"
)

// OutputFileNames lists the output files in write order.
func OutputFileNames() []string {
	return []string{CompleteFileName, ProjectsFileName, ImageRecordsFileName, AnalysesFileName}
}

const (
	// DefaultDirMode is the permission of a created bin directory.
	DefaultDirMode os.FileMode = 0o750

	// DefaultFileMode is the permission of written output files.
	DefaultFileMode os.FileMode = 0o644
)

// OutputSet writes the demo data files into one directory.
type OutputSet struct {
	dir      string
	fileMode os.FileMode
	jsonOpts []JSONWriterOption
}

// OutputOption configures an OutputSet.
type OutputOption func(*OutputSet)

// WithFileMode sets the permission of written files.
func WithFileMode(mode os.FileMode) OutputOption {
	return func(s *OutputSet) {
		s.fileMode = mode
	}
}

// NewOutputSet creates an OutputSet writing into dir.
// Files are pretty printed with two spaces and no HTML escaping.
func NewOutputSet(dir string, opts ...OutputOption) *OutputSet {
	s := &OutputSet{
		dir:      dir,
		fileMode: DefaultFileMode,
		jsonOpts: []JSONWriterOption{WithPrettyPrint(), WithEscapeHTML(false)},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Dir returns the output directory.
func (s *OutputSet) Dir() string {
	return s.dir
}

// WriteAll writes the four output files and returns them in write order.
// The directory is created when missing. Existing files are overwritten.
func (s *OutputSet) WriteAll(data *model.DemoData) ([]model.OutputFile, error) {
	if err := os.MkdirAll(s.dir, DefaultDirMode); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}

	contents := []struct {
		name  string
		value any
	}{
		{CompleteFileName, data},
		{ProjectsFileName, data.Projects},
		{ImageRecordsFileName, model.ReferenceRecords(data.ImageRecords)},
		{AnalysesFileName, data.Analyses},
	}

	outputs := make([]model.OutputFile, 0, len(contents))
	for _, c := range contents {
		out, err := s.writeFile(c.name, c.value)
		if err != nil {
			return outputs, err
		}
		outputs = append(outputs, out)
	}

	return outputs, nil
}

// writeFile encodes v into a file and reports its size.
func (s *OutputSet) writeFile(name string, v any) (model.OutputFile, error) {
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, s.fileMode) //nolint:gosec // path is built from a fixed file name
	if err != nil {
		return model.OutputFile{}, fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := NewJSONWriter(f, s.jsonOpts...).Encode(v)
	if err != nil {
		_ = f.Close() //nolint:errcheck // the encode error is more useful
		return model.OutputFile{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return model.OutputFile{}, fmt.Errorf("failed to close %s: %w", path, err)
	}

	return model.OutputFile{Name: name, Path: path, Size: int64(n)}, nil
}
