package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/metrodemo/internal/model"
)

var (
	// ErrEmptyOutput is returned when the written outputs hold no bytes.
	ErrEmptyOutput = errors.New("output is empty")

	// ErrCountMismatch is returned when a metadata total differs from
	// the length of its collection.
	ErrCountMismatch = errors.New("metadata count does not match collection")
)

// Verification is the result of reading the outputs back.
type Verification struct {
	// Metadata is the metadata block of the complete file.
	Metadata model.Metadata

	// Sizes maps each output file name to its size in bytes.
	Sizes map[string]int64
}

// TotalSize returns the combined size of the verified files.
func (v *Verification) TotalSize() int64 {
	var total int64
	for _, s := range v.Sizes {
		total += s
	}
	return total
}

// completeFile mirrors demo_data_complete.json without decoding documents.
type completeFile struct {
	Projects     []json.RawMessage `json:"projects"`
	ImageRecords []json.RawMessage `json:"image_records"` //nolint:tagliatelle
	Analyses     []json.RawMessage `json:"analyses"`
	Metadata     model.Metadata    `json:"metadata"`
}

// Verify reads the outputs in dir back and checks that every file parses,
// that metadata totals equal collection lengths, that no placeholder
// token survived, and that the combined size is positive.
func Verify(dir string) (*Verification, error) {
	v := &Verification{Sizes: make(map[string]int64)}

	data, err := readOutput(dir, CompleteFileName, v)
	if err != nil {
		return nil, err
	}

	var complete completeFile
	if err := json.Unmarshal(data, &complete); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", CompleteFileName, err)
	}
	v.Metadata = complete.Metadata

	if err := checkCount(CompleteFileName, model.CollectionProjects, complete.Metadata.TotalProjects, len(complete.Projects)); err != nil {
		return nil, err
	}
	if err := checkCount(CompleteFileName, model.CollectionImageRecords, complete.Metadata.TotalImages, len(complete.ImageRecords)); err != nil {
		return nil, err
	}
	if err := checkCount(CompleteFileName, model.CollectionAnalyses, complete.Metadata.TotalAnalyses, len(complete.Analyses)); err != nil {
		return nil, err
	}

	expected := map[string]int{
		ProjectsFileName:     complete.Metadata.TotalProjects,
		ImageRecordsFileName: complete.Metadata.TotalImages,
		AnalysesFileName:     complete.Metadata.TotalAnalyses,
	}
	for _, name := range []string{ProjectsFileName, ImageRecordsFileName, AnalysesFileName} {
		data, err := readOutput(dir, name, v)
		if err != nil {
			return nil, err
		}

		var docs []json.RawMessage
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if err := checkCount(name, name, expected[name], len(docs)); err != nil {
			return nil, err
		}
	}

	if v.TotalSize() <= 0 {
		return nil, ErrEmptyOutput
	}

	return v, nil
}

// readOutput reads one output file, records its size and rejects
// leftover placeholder tokens.
func readOutput(dir, name string, v *Verification) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(filepath.Clean(dir), name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyOutput)
	}
	v.Sizes[name] = int64(len(data))

	if token := model.FindPlaceholderBytes(data); token != "" {
		return nil, fmt.Errorf("%s contains %s: %w", name, token, model.ErrPlaceholderRemaining)
	}
	return data, nil
}

func checkCount(file, collection string, want, got int) error {
	if want != got {
		return fmt.Errorf("%s: %s has %d documents, metadata says %d: %w", file, collection, got, want, ErrCountMismatch)
	}
	return nil
}
