package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies the class of an upstream failure.
type ErrorCode string

const (
	// CONFIG_MISSING means the upstream credential is not configured.
	// Raised before any network call is attempted, never silently defaulted.
	CONFIG_MISSING ErrorCode = "CONFIG_MISSING"

	// UPSTREAM_HTTP means the request failed with an HTTP status outcome:
	// a non-success upstream status, or a success body classified as one
	// (a transcript response with no transcript maps to 404). Status and
	// Body carry the outcome for callers to branch on.
	UPSTREAM_HTTP ErrorCode = "UPSTREAM_HTTP"

	// UPSTREAM_UNREACHABLE means the request never produced an HTTP response
	// (DNS failure, connection refused, timeout).
	UPSTREAM_UNREACHABLE ErrorCode = "UPSTREAM_UNREACHABLE"

	// BAD_RESPONSE means the upstream answered 2xx but the body was not
	// usable (invalid JSON, or no known envelope matched).
	BAD_RESPONSE ErrorCode = "BAD_RESPONSE"
)

// Error represents a failure talking to the meetings API.
type Error struct {
	Code      ErrorCode `json:"code"`
	Status    int       `json:"status,omitempty"`
	Message   string    `json:"message"`
	Body      string    `json:"-"`
	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 实现错误链支持
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new upstream error.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// NewConfigMissingError creates the missing-credential error.
func NewConfigMissingError() *Error {
	return NewError(CONFIG_MISSING, "meetings API credential is not configured (set MEETINGS_API_KEY)", nil)
}

// NewHTTPError creates an error for a non-success upstream status.
func NewHTTPError(status int, body string) *Error {
	e := NewError(UPSTREAM_HTTP, fmt.Sprintf("meetings API returned HTTP %d", status), nil)
	e.Status = status
	e.Body = body
	return e
}

// NewUnreachableError creates an error for a failed network call.
func NewUnreachableError(cause error) *Error {
	return NewError(UPSTREAM_UNREACHABLE, "meetings API unreachable", cause)
}

// NewTranscriptMissingError classifies a success response that carries no
// recognizable transcript. From the caller's view the transcript does not
// exist, whatever envelope the upstream used, so it maps to 404.
func NewTranscriptMissingError() *Error {
	e := NewError(UPSTREAM_HTTP, "no transcript found in response", nil)
	e.Status = http.StatusNotFound
	return e
}

// NewBadResponseError creates an error for an unusable 2xx body.
func NewBadResponseError(message string) *Error {
	return NewError(BAD_RESPONSE, message, nil)
}

// IsRateLimited reports whether err is an upstream HTTP 429.
func IsRateLimited(err error) bool {
	return StatusOf(err) == http.StatusTooManyRequests
}

// IsNotFound reports whether err is an upstream HTTP 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// StatusOf extracts the upstream HTTP status from err, or 0 when err is not
// an UPSTREAM_HTTP error.
func StatusOf(err error) int {
	var ue *Error
	if errors.As(err, &ue) && ue.Code == UPSTREAM_HTTP {
		return ue.Status
	}
	return 0
}
