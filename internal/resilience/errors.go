package resilience

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ExternalServiceError wraps a failure from an external collaborator (the
// language model, the extraction service). Transient failures are retried
// per policy; on exhaustion the error is surfaced as a non-fatal annotation
// on the run, never as a crash of the batch.
type ExternalServiceError struct {
	Service    string
	Err        error
	StatusCode int
	Transient  bool
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// NewExternalServiceError wraps err, marking it transient when the status
// code (if any) indicates a retryable server-side condition.
func NewExternalServiceError(service string, err error, statusCode int) *ExternalServiceError {
	return &ExternalServiceError{
		Service:    service,
		Err:        err,
		StatusCode: statusCode,
		Transient:  statusCode == 0 || IsTransientHTTPStatus(statusCode),
	}
}

// IsTransient reports whether the error (or anything in its chain) is safe
// to retry: an explicitly transient ExternalServiceError, a network
// timeout, a connection-level failure, or a known transient pattern from a
// wrapped HTTP client.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ese *ExternalServiceError
	if errors.As(err, &ese) {
		return ese.Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"overloaded",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus reports whether the HTTP status indicates a
// server-side condition that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
