package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind is the closed set of failure categories a call can end in.
type ErrorKind int

// Error kinds, in the order the response normalizer checks for them.
const (
	// KindValidation indicates malformed caller input detected before any network I/O.
	KindValidation ErrorKind = iota
	// KindTransport indicates a network, DNS, timeout or cancellation failure.
	KindTransport
	// KindHTTPStatus indicates a response with a status code outside [200, 300).
	KindHTTPStatus
	// KindParse indicates a body that is not structured data, or a page missing expected markup.
	KindParse
	// KindAPI indicates a well-formed response carrying a vendor error.
	KindAPI
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindTransport:
		return "TRANSPORT"
	case KindHTTPStatus:
		return "HTTP_STATUS"
	case KindParse:
		return "PARSE"
	case KindAPI:
		return "API_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Sentinel errors for validation conditions.
var (
	// ErrNoCredentials is returned when a private call is made without a key and secret.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNilHandler is returned when an async call is made without a result handler.
	ErrNilHandler = errors.New("result handler is required")
)

// Error is the single error type returned by the client.
// Which fields are populated depends on Kind.
type Error struct {
	// Kind categorizes the failure.
	Kind ErrorKind `json:"kind"`
	// StatusCode is the HTTP status code for KindHTTPStatus.
	StatusCode int `json:"status_code,omitempty"`
	// Status is the HTTP status line for KindHTTPStatus.
	Status string `json:"status,omitempty"`
	// Code is the vendor error code for KindAPI.
	Code int `json:"code,omitempty"`
	// TransportCode classifies a KindTransport failure.
	TransportCode ErrorCode `json:"transport_code,omitempty"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Request describes the attempted operation (method, URL, params).
	Request string `json:"request,omitempty"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`

	err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var s string
	switch e.Kind {
	case KindHTTPStatus:
		s = fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	case KindAPI:
		s = fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
	case KindTransport:
		s = fmt.Sprintf("%s (%s): %s", e.Kind, e.TransportCode, e.Message)
	default:
		s = fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Request != "" {
		s += " [" + e.Request + "]"
	}
	return s
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// WithRequest sets the request description and returns the error for chaining.
func (e *Error) WithRequest(desc string) *Error {
	e.Request = desc
	return e
}

// NewValidationError creates a KindValidation error.
func NewValidationError(format string, args ...any) *Error {
	return &Error{
		Kind:      KindValidation,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	}
}

// NewTransportError creates a KindTransport error wrapping cause.
// The transport code is derived from the cause.
func NewTransportError(cause error) *Error {
	msg := "request failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Kind:          KindTransport,
		TransportCode: ClassifyTransport(cause),
		Message:       msg,
		Timestamp:     time.Now(),
		err:           cause,
	}
}

// NewHTTPStatusError creates a KindHTTPStatus error.
func NewHTTPStatusError(statusCode int, status string) *Error {
	return &Error{
		Kind:       KindHTTPStatus,
		StatusCode: statusCode,
		Status:     status,
		Message:    fmt.Sprintf("HTTP status code %d returned. Status message: %s", statusCode, status),
		Timestamp:  time.Now(),
	}
}

// NewParseError creates a KindParse error, optionally wrapping cause.
func NewParseError(cause error, format string, args ...any) *Error {
	return &Error{
		Kind:      KindParse,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
		err:       cause,
	}
}

// NewAPIError creates a KindAPI error from a vendor code and message.
func NewAPIError(code int, message string) *Error {
	return &Error{
		Kind:      KindAPI,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// KindOf returns the kind of err and whether err is an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func isKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsValidation returns true if err is a caller input error.
// Validation errors are raised before any request is sent.
func IsValidation(err error) bool {
	return isKind(err, KindValidation)
}

// IsTransport returns true if err is a network-level failure.
func IsTransport(err error) bool {
	return isKind(err, KindTransport)
}

// IsHTTPStatus returns true if err is a non-2xx response.
func IsHTTPStatus(err error) bool {
	return isKind(err, KindHTTPStatus)
}

// IsParse returns true if err is an unparseable response body or page.
func IsParse(err error) bool {
	return isKind(err, KindParse)
}

// IsAPIError returns true if err is an error reported by the exchange in a well-formed response.
func IsAPIError(err error) bool {
	return isKind(err, KindAPI)
}
