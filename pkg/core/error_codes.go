package core

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// ErrorCode identifies the cause of a transport failure.
// It plays the role of the errno-style code a socket library reports.
type ErrorCode string

// Transport error codes.
const (
	// ErrCodeNetwork indicates a network connectivity failure not covered below.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrCodeTimeout indicates the request exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeDNS indicates the host name could not be resolved.
	ErrCodeDNS ErrorCode = "DNS_ERROR"
	// ErrCodeConnRefused indicates the remote host refused the connection.
	ErrCodeConnRefused ErrorCode = "CONNECTION_REFUSED"
	// ErrCodeConnReset indicates the connection was reset by the peer.
	ErrCodeConnReset ErrorCode = "CONNECTION_RESET"
	// ErrCodeCanceled indicates the caller cancelled the context.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// ClassifyTransport maps a transport-level error to an ErrorCode.
func ClassifyTransport(err error) ErrorCode {
	if err == nil {
		return ErrCodeNetwork
	}

	if errors.Is(err, context.Canceled) {
		return ErrCodeCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return ErrCodeTimeout
		}
		return ErrCodeDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrCodeConnRefused
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return ErrCodeConnReset
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrCodeTimeout
	}

	return ErrCodeNetwork
}

// IsTransportCode checks if err is a transport error with the given code.
func IsTransportCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindTransport && e.TransportCode == code
	}
	return false
}
