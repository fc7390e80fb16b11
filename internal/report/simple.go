package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nao1215/metrodemo/internal/model"
)

// SimpleWriter outputs a human-readable build summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds EXIF details and digests to the photo list.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the build summary in human-readable format.
func (w *SimpleWriter) Write(build *model.Build) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, build)
	w.writePhotos(&sb, build)
	w.writeCollections(&sb, build)
	w.writeOutputs(&sb, build)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the banner and the run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, build *model.Build) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          METRO DEMO DATA\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Work Directory: %s\n", build.WorkDir)
	if build.Data != nil {
		fmt.Fprintf(sb, "Generated At:   %s\n", build.Data.Metadata.GeneratedAt)
		fmt.Fprintf(sb, "Version:        %s\n", build.Data.Metadata.Version)
	}

	switch {
	case build.Error != nil:
		fmt.Fprintf(sb, "Status:         ERROR - %s\n", build.Error)
	case build.Verified:
		sb.WriteString("Status:         Complete (verified)\n")
	default:
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writePhotos lists the photographs that were embedded.
func (w *SimpleWriter) writePhotos(sb *strings.Builder, build *model.Build) {
	if len(build.Photos) == 0 {
		return
	}

	writeSection(sb, "Photos")
	for _, p := range build.Photos {
		if p == nil {
			continue
		}
		fmt.Fprintf(sb, "  [%d] %-32s %10s", p.Index, p.Name, humanize.Bytes(uint64(p.Size))) //nolint:gosec // sizes are never negative
		if p.Width > 0 {
			fmt.Fprintf(sb, "  %dx%d", p.Width, p.Height)
		}
		sb.WriteString("\n")

		if !w.verbose {
			continue
		}
		if camera := p.EXIF.Camera(); camera != "" {
			fmt.Fprintf(sb, "      Camera:   %s\n", camera)
		}
		if p.EXIF.DateTimeOriginal != "" {
			fmt.Fprintf(sb, "      Taken:    %s\n", p.EXIF.DateTimeOriginal)
		}
		if p.EXIF.HasGPS {
			sb.WriteString("      GPS:      present\n")
		}
		fmt.Fprintf(sb, "      SHA3-256: %s\n", p.Digest)
	}
	sb.WriteString("\n")
}

// writeCollections writes the per-collection document counts.
func (w *SimpleWriter) writeCollections(sb *strings.Builder, build *model.Build) {
	counts := collectionCounts(build)
	if len(counts) == 0 {
		return
	}

	writeSection(sb, "Collections")
	for _, c := range counts {
		fmt.Fprintf(sb, "  %-16s %d\n", c.title+":", c.count)
	}
	sb.WriteString("\n")
}

// writeOutputs lists the written files and the size of the complete file.
func (w *SimpleWriter) writeOutputs(sb *strings.Builder, build *model.Build) {
	if len(build.Outputs) == 0 {
		return
	}

	writeSection(sb, "Outputs")
	for _, o := range build.Outputs {
		fmt.Fprintf(sb, "  %-28s %10s\n", o.Name, humanize.Bytes(uint64(o.Size))) //nolint:gosec // sizes are never negative
	}
	sb.WriteString("\n")

	if complete, ok := build.Output(CompleteFileName); ok {
		fmt.Fprintf(sb, "Total size: %s MB (%s)\n", FormatMB(complete.Size), humanize.Bytes(uint64(complete.Size))) //nolint:gosec
	}
	sb.WriteString("\n")
}

// writeSection writes a section title with an underline.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
}

// FormatMB renders a byte count in binary megabytes with two decimals.
func FormatMB(size int64) string {
	return fmt.Sprintf("%.2f", float64(size)/(1024*1024))
}
