package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		name string
		kind ErrorKind
		want string
	}{
		{"validation", KindValidation, "VALIDATION"},
		{"transport", KindTransport, "TRANSPORT"},
		{"http_status", KindHTTPStatus, "HTTP_STATUS"},
		{"parse", KindParse, "PARSE"},
		{"api", KindAPI, "API_ERROR"},
		{"out_of_range", ErrorKind(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "http_status",
			err:  NewHTTPStatusError(503, "503 Service Unavailable").WithRequest("GET request to url x"),
			want: "HTTP_STATUS (503): HTTP status code 503 returned. Status message: 503 Service Unavailable [GET request to url x]",
		},
		{
			name: "api",
			err:  NewAPIError(-32003, "Insufficient CNY balance"),
			want: "API_ERROR (-32003): Insufficient CNY balance",
		},
		{
			name: "validation",
			err:  NewValidationError("params must be an array"),
			want: "VALIDATION: params must be an array",
		},
		{
			name: "transport",
			err:  NewTransportError(context.DeadlineExceeded),
			want: "TRANSPORT (TIMEOUT): context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewTransportError(cause)

	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("get ticker: %w", err)
	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindTransport, kind)
}

func TestIsKindHelpers(t *testing.T) {
	validation := NewValidationError("bad")
	transport := NewTransportError(errors.New("x"))
	status := NewHTTPStatusError(500, "500 Internal Server Error")
	parse := NewParseError(nil, "not json")
	api := NewAPIError(-1, "nope")

	assert.True(t, IsValidation(validation))
	assert.True(t, IsTransport(transport))
	assert.True(t, IsHTTPStatus(status))
	assert.True(t, IsParse(parse))
	assert.True(t, IsAPIError(api))

	assert.False(t, IsValidation(api))
	assert.False(t, IsAPIError(status))
	assert.False(t, IsHTTPStatus(nil))
	assert.False(t, IsParse(errors.New("plain")))

	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ErrCodeNetwork},
		{"canceled", context.Canceled, ErrCodeCanceled},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.invalid", IsNotFound: true}, ErrCodeDNS},
		{"dns_timeout", &net.DNSError{Err: "timeout", Name: "api.invalid", IsTimeout: true}, ErrCodeTimeout},
		{
			"refused",
			&net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
			ErrCodeConnRefused,
		},
		{
			"reset",
			&net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)},
			ErrCodeConnReset,
		},
		{"other", errors.New("something odd"), ErrCodeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTransport(tt.err))
		})
	}
}

func TestIsTransportCode(t *testing.T) {
	err := NewTransportError(context.DeadlineExceeded)

	assert.True(t, IsTransportCode(err, ErrCodeTimeout))
	assert.False(t, IsTransportCode(err, ErrCodeDNS))
	assert.False(t, IsTransportCode(NewValidationError("x"), ErrCodeTimeout))
}
