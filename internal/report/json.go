package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/metrodemo/internal/model"
)

// JSONWriter outputs values as JSON.
// It writes both the demo data files and the machine-readable build summary.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// escapeHTML escapes <, > and & as \u003c, \u003e and \u0026.
	// Off by default: placeholders and Portuguese text must stay readable.
	escapeHTML bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithEscapeHTML toggles HTML escaping of strings.
func WithEscapeHTML(escape bool) JSONWriterOption {
	return func(w *JSONWriter) {
		w.escapeHTML = escape
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the build summary in JSON format.
func (w *JSONWriter) Write(build *model.Build) (int, error) {
	if build.Error != nil && build.ErrorMessage == "" {
		build.ErrorMessage = build.Error.Error()
	}
	return w.Encode(build)
}

// Encode marshals v and writes it with a trailing newline.
// The value is fully encoded before anything is written, so a failed
// encode leaves the output untouched.
func (w *JSONWriter) Encode(v any) (int, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(w.escapeHTML)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}

	if err := enc.Encode(v); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
