// Package log provides sanitized structured logging on top of log/slog.
//
// The SecureHandler keeps two kinds of values out of log output:
//   - credentials, such as the private_key of a service account key file,
//     OAuth tokens and API keys, which are masked
//   - photograph payloads, meaning long base64 strings and base64 data URLs,
//     which are replaced by a short length marker
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Debug("record", "imageBase64", b64) // logged as [base64: 812344 chars]
package log
