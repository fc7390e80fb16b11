package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys that are always masked.
// Most come from Firebase/Google service account key files, which the
// import tooling used to read next to the demo data.
var sensitiveKeys = map[string]bool{
	"private_key":    true,
	"privatekey":     true,
	"private_key_id": true,
	"client_email":   true,
	"client_id":      true,
	"client_secret":  true,
	"refresh_token":  true,
	"access_token":   true,
	"id_token":       true,
	"api_key":        true,
	"apikey":         true,
	"authorization":  true,
	"cookie":         true,
	"password":       true,
	"passwd":         true,
	"secret":         true,
	"token":          true,
	"credential":     true,
	"credentials":    true,
}

// sensitivePatterns match values that are masked regardless of key.
var sensitivePatterns = []*regexp.Regexp{
	// PEM private keys, including the escaped "\n" form found in JSON key files
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Google OAuth access tokens
	regexp.MustCompile(`^ya29\.[0-9A-Za-z_-]+$`),

	// Google API keys
	regexp.MustCompile(`^AIza[0-9A-Za-z_-]{35}$`),
}

// base64Pattern matches a standard base64 payload.
var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// BlobThreshold is the length above which base64 values are collapsed.
// Encoded photographs run to megabytes and would drown the log.
const BlobThreshold = 256

// SecureHandler wraps an slog.Handler to keep secrets and photo payloads
// out of log output. Credentials are masked; long base64 strings and
// base64 data URLs are replaced by a short length marker.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it to the underlying handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if isSensitiveValue(strVal) {
			return slog.String(a.Key, MaskValue)
		}
		if summary, ok := summarizeBlob(strVal); ok {
			return slog.String(a.Key, summary)
		}
	}

	return a
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// The bare word "key" is left out on purpose: "image_key" and "keys" are
// ordinary attributes here.
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "credential", "private",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// summarizeBlob returns a length marker for long base64 payloads and
// base64 data URLs. Short values are left alone.
func summarizeBlob(value string) (string, bool) {
	if len(value) <= BlobThreshold {
		return "", false
	}

	if strings.HasPrefix(value, "data:") {
		if idx := strings.Index(value, ";base64,"); idx > 0 {
			mediaType := value[len("data:"):idx]
			return fmt.Sprintf("[data url %s: %d chars]", mediaType, len(value)), true
		}
	}

	if base64Pattern.MatchString(value) {
		return fmt.Sprintf("[base64: %d chars]", len(value)), true
	}
	return "", false
}

// NewSecureLogger creates a text slog.Logger that sanitizes its output.
// Verbose sets the level to Debug; otherwise only warnings and errors are logged.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
