package report

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/metrodemo/internal/model"
)

// Writer renders a build summary.
// Implementations write to terminals, Markdown files or JSON consumers.
type Writer interface {
	// Write outputs the summary of a build.
	// Returns the number of bytes written and any error encountered.
	Write(build *model.Build) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// It is used to print the terminal summary and save the Markdown summary
// from one call.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the build to all configured Writers.
// Returns the total bytes written and stops on the first error.
func (m *MultiWriter) Write(build *model.Build) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(build)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// collectionTitle turns "image_records" into "Image Records".
// A cases.Caser keeps state, so each call gets its own.
func collectionTitle(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// collectionCount is the number of documents in one collection.
type collectionCount struct {
	title string
	count int
}

// collectionCounts returns the document count per collection in output order.
func collectionCounts(build *model.Build) []collectionCount {
	if build.Data == nil {
		return nil
	}
	m := build.Data.Metadata
	return []collectionCount{
		{collectionTitle(model.CollectionProjects), m.TotalProjects},
		{collectionTitle(model.CollectionImageRecords), m.TotalImages},
		{collectionTitle(model.CollectionAnalyses), m.TotalAnalyses},
	}
}
