package conn

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Sentinel errors, usable with errors.Is against any *Error of the matching code.
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrConnection           = errors.New("connection error")
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Error wraps a return code, the endpoint involved (if any), a message and the cause.
type Error struct {
	Code     RetCode // The return code
	Endpoint string  // host:port or socket path, empty if not endpoint specific
	Msg      string  // The error message.
	Err      error   // The underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Msg
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s: %s", e.Endpoint, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the same code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Code == RetCConfigurationError
	case ErrConnection:
		return e.Code == RetCConnectionError
	case ErrUnsupportedOperation:
		return e.Code == RetCUnsupportedOperation
	}
	return false
}

// NewConfigurationError reports an invalid or missing configuration value.
func NewConfigurationError(msg string) *Error {
	return &Error{Code: RetCConfigurationError, Msg: msg}
}

// NewConnectionError reports a failed connect to the given endpoint.
func NewConnectionError(endpoint EndpointConfig, cause error) *Error {
	return &Error{
		Code:     RetCConnectionError,
		Endpoint: endpoint.Address(),
		Msg:      "connect error",
		Err:      cause,
	}
}

// NewUnsupportedOperationError reports a command that is not part of the connection's capability surface.
func NewUnsupportedOperationError(command string) *Error {
	return &Error{
		Code: RetCUnsupportedOperation,
		Msg:  fmt.Sprintf("command %q is not supported by the store client", command),
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Operation succeeded.
	RetCConfigurationError                  // 1: Missing or invalid configuration.
	RetCConnectionError                     // 2: The underlying connect call failed.
	RetCUnsupportedOperation                // 3: Command unknown to the store client.
)

// String returns the name of the return code.
func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCConfigurationError:
		return "ConfigurationError"
	case RetCConnectionError:
		return "ConnectionError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperationError"
	default:
		return "Unknown"
	}
}
