package crawler

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrZeroPages is returned by Crawl when no page could be fetched.
// The accompanying CrawlResult is still valid and carries the failure
// counts; callers are expected to build a degenerate report from it.
var ErrZeroPages = errors.New("crawl produced no pages")

// ErrTooManyRedirects is returned by the Fetcher's redirect policy after
// MaxRedirects hops.
var ErrTooManyRedirects = errors.New("too many redirects")

// Seed validation errors, wrapped by InputError.
var (
	ErrEmptySeed         = errors.New("seed URL is empty")
	ErrNotAbsolute       = errors.New("seed URL must be absolute")
	ErrUnsupportedScheme = errors.New("seed URL scheme must be http or https")
)

// InputError reports a seed URL that cannot be crawled. It is raised
// before any network activity.
type InputError struct {
	Input string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid website URL %q: %v", e.Input, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// FetchReason classifies a failed fetch.
type FetchReason string

// Fetch failure reasons.
const (
	ReasonTimeout    FetchReason = "timeout"
	ReasonConnection FetchReason = "connection"
	ReasonHTTPStatus FetchReason = "http_status"
	ReasonRedirect   FetchReason = "redirect"
	ReasonTLS        FetchReason = "tls"
	ReasonOther      FetchReason = "other"
)

// FetchError is a per-page failure. The crawler skips the page and
// continues.
type FetchError struct {
	URL        string
	Reason     FetchReason
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Reason == ReasonHTTPStatus {
		return fmt.Sprintf("fetch %s: %s: status %d", e.URL, e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed. Redirect loops,
// certificate problems and status errors fail the same way again.
func (e *FetchError) Retryable() bool {
	return e.Reason == ReasonTimeout || e.Reason == ReasonConnection
}

// ParseError reports a response body that could not be turned into an
// HTML document. The page is treated like a failed fetch.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// classifyError maps a transport error to a FetchReason.
func classifyError(err error) FetchReason {
	if err == nil {
		return ReasonOther
	}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ReasonOther
	}

	if errors.Is(err, ErrTooManyRedirects) {
		return ReasonRedirect
	}
	if isTLSError(err) {
		return ReasonTLS
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return ReasonConnection
	}

	// Remaining client.Do failures (unexpected EOF, proxy errors) surface
	// as *url.Error.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ReasonConnection
	}
	return ReasonOther
}

// isTLSError reports certificate and handshake failures.
func isTLSError(err error) bool {
	var verifyErr *tls.CertificateVerificationError
	var authorityErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	var recordErr tls.RecordHeaderError
	var alertErr tls.AlertError
	return errors.As(err, &verifyErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &alertErr)
}
