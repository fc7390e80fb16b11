package report

import (
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/metrodemo/internal/model"
)

// MarkdownWriter outputs the build summary as SUMMARY.md.
// The file is meant to be committed next to the generated data.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the build summary in Markdown format.
func (w *MarkdownWriter) Write(build *model.Build) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, build)
	w.writeCollections(md, build)
	w.writePhotos(md, build)
	w.writeOutputs(md, build)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, build *model.Build) {
	md.H1("Metro Demo Data")
	md.PlainText("")

	rows := [][]string{
		{"Work Directory", "`" + build.WorkDir + "`"},
	}
	if build.Data != nil {
		rows = append(rows,
			[]string{"Generated At", build.Data.Metadata.GeneratedAt},
			[]string{"Version", build.Data.Metadata.Version},
		)
	}
	rows = append(rows, []string{"Status", w.getStatusText(build)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if build.Error != nil {
		md.Cautionf("Generation failed: %s", build.Error)
		md.PlainText("")
	}
}

// getStatusText returns the status text based on build state.
func (w *MarkdownWriter) getStatusText(build *model.Build) string {
	switch {
	case build.Error != nil:
		return "❌ Error"
	case build.Verified:
		return "✅ Complete (verified)"
	default:
		return "✅ Complete"
	}
}

// writeCollections writes the document counts and their distribution.
func (w *MarkdownWriter) writeCollections(md *markdown.Markdown, build *model.Build) {
	counts := collectionCounts(build)
	if len(counts) == 0 {
		return
	}

	md.H2("Collections")
	md.PlainText("")

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.title, strconv.Itoa(c.count)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Collection", "Documents"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Documents per Collection"),
		piechart.WithShowData(true),
	)
	var total int
	for _, c := range counts {
		if c.count <= 0 {
			continue
		}
		total += c.count
		chart.LabelAndIntValue(c.title, uint64(c.count))
	}
	if total > 0 {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}
}

// writePhotos writes the embedded photographs with their EXIF summary.
func (w *MarkdownWriter) writePhotos(md *markdown.Markdown, build *model.Build) {
	if len(build.Photos) == 0 {
		return
	}

	md.H2("Photos")
	md.PlainText("")

	rows := make([][]string, 0, len(build.Photos))
	withGPS := 0
	for _, p := range build.Photos {
		if p == nil {
			continue
		}
		dimensions := "-"
		if p.Width > 0 {
			dimensions = strconv.Itoa(p.Width) + "x" + strconv.Itoa(p.Height)
		}
		gps := "-"
		if p.EXIF.HasGPS {
			gps = "yes"
			withGPS++
		}
		rows = append(rows, []string{
			strconv.Itoa(p.Index),
			"`" + p.Name + "`",
			humanize.Bytes(uint64(p.Size)), //nolint:gosec // sizes are never negative
			dimensions,
			orDash(p.EXIF.Camera()),
			orDash(p.EXIF.DateTimeOriginal),
			gps,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "File", "Size", "Pixels", "Camera", "Taken", "GPS"},
		Rows:   rows,
	})
	md.PlainText("")

	if withGPS > 0 {
		md.Warningf(
			"%d photo(s) carry GPS coordinates in their EXIF data, and the coordinates ship inside the demo bundle.",
			withGPS,
		)
		md.PlainText("")
	}

	for _, p := range build.Photos {
		if p == nil || p.Digest == "" {
			continue
		}
		md.Details(p.Name, "SHA3-256: "+p.Digest)
	}
	md.PlainText("")
}

// writeOutputs writes the table of generated files.
func (w *MarkdownWriter) writeOutputs(md *markdown.Markdown, build *model.Build) {
	md.H2("Outputs")
	md.PlainText("")

	if len(build.Outputs) == 0 {
		md.PlainText("No files were written.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(build.Outputs)+1)
	for _, o := range build.Outputs {
		rows = append(rows, []string{
			"`" + o.Name + "`",
			FormatMB(o.Size) + " MB",
			humanize.Bytes(uint64(o.Size)), //nolint:gosec // sizes are never negative
		})
	}
	total := build.TotalOutputSize()
	rows = append(rows, []string{
		"**Total**",
		"**" + FormatMB(total) + " MB**",
		"**" + humanize.Bytes(uint64(total)) + "**", //nolint:gosec
	})

	md.Table(markdown.TableSet{
		Header: []string{"File", "MB", "Size"},
		Rows:   rows,
	})
	md.PlainText("")
	md.Note("image_records.bin.json holds [BASE64_DATA_n] references instead of photographs.")
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Summary generated by metrodemo*")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
