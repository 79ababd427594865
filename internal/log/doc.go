// Package log provides slog loggers that sanitize sensitive values.
//
// The SecureHandler masks:
//   - Attributes named like credentials (Authorization, Cookie, token, password)
//   - Values that look like bearer, basic or JWT tokens
//   - Userinfo and token-like query parameters inside logged URLs
//
// Cookies and auth headers configured per site in the config file are sent
// to crawled websites; this handler keeps them out of log output even in
// verbose mode.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("fetching page", "url", "https://user:pw@example.com/?token=abc")
//	// url=https://REDACTED@example.com/?token=REDACTED
package log
