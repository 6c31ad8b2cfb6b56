package http

import (
	"errors"
	"fmt"
	"time"
)

// ExecutionError represents every failure Execute can return
type ExecutionError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of execution error
type ErrorType string

const (
	ConfigurationError ErrorType = "configuration"
	TimeoutError       ErrorType = "timeout"
	ConnectionError    ErrorType = "connection"
	ResponseError      ErrorType = "response"
	DecodeError        ErrorType = "decode"
	CancelledError     ErrorType = "cancelled"
)

// configurationError represents invalid call parameters, detected before any attempt
type configurationError struct {
	message string
	field   string
	wrapped error
}

func (e *configurationError) Error() string {
	msg := fmt.Sprintf("configuration error: %s", e.message)
	if e.field != "" {
		msg = fmt.Sprintf("%s (field: %s)", msg, e.field)
	}
	if e.wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.wrapped)
	}
	return msg
}

func (e *configurationError) Type() ErrorType {
	return ConfigurationError
}

func (e *configurationError) Field() string {
	return e.field
}

func (e *configurationError) Unwrap() error {
	return e.wrapped
}

// timeoutError represents an attempt that got no response within its deadline
type timeoutError struct {
	message string
	timeout time.Duration
	wrapped error
}

func (e *timeoutError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("timeout error: %s (timeout: %v): %v", e.message, e.timeout, e.wrapped)
	}
	return fmt.Sprintf("timeout error: %s (timeout: %v)", e.message, e.timeout)
}

func (e *timeoutError) Type() ErrorType {
	return TimeoutError
}

func (e *timeoutError) Timeout() time.Duration {
	return e.timeout
}

func (e *timeoutError) Unwrap() error {
	return e.wrapped
}

// connectionError represents a transport that could not reach the endpoint
type connectionError struct {
	message string
	wrapped error
}

func (e *connectionError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("connection error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("connection error: %s", e.message)
}

func (e *connectionError) Type() ErrorType {
	return ConnectionError
}

func (e *connectionError) Unwrap() error {
	return e.wrapped
}

// responseError represents an error status returned by the endpoint
type responseError struct {
	message    string
	statusCode int
	body       []byte
}

func (e *responseError) Error() string {
	return fmt.Sprintf("response error: %s (status: %d)", e.message, e.statusCode)
}

func (e *responseError) Type() ErrorType {
	return ResponseError
}

func (e *responseError) StatusCode() int {
	return e.statusCode
}

func (e *responseError) Body() []byte {
	return e.body
}

// decodeError represents a body that could not be parsed
type decodeError struct {
	message string
	wrapped error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("decode error: %s: %v", e.message, e.wrapped)
}

func (e *decodeError) Type() ErrorType {
	return DecodeError
}

func (e *decodeError) Unwrap() error {
	return e.wrapped
}

// cancelledError represents a caller-initiated abort
type cancelledError struct {
	message string
	wrapped error
}

func (e *cancelledError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("cancelled: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("cancelled: %s", e.message)
}

func (e *cancelledError) Type() ErrorType {
	return CancelledError
}

func (e *cancelledError) Unwrap() error {
	return e.wrapped
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message, field string, wrapped error) ExecutionError {
	return &configurationError{
		message: message,
		field:   field,
		wrapped: wrapped,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, timeout time.Duration, wrapped error) ExecutionError {
	return &timeoutError{
		message: message,
		timeout: timeout,
		wrapped: wrapped,
	}
}

// NewConnectionError creates a new connection error
func NewConnectionError(message string, wrapped error) ExecutionError {
	return &connectionError{
		message: message,
		wrapped: wrapped,
	}
}

// NewResponseError creates a new response error
func NewResponseError(message string, statusCode int, body []byte) ExecutionError {
	return &responseError{
		message:    message,
		statusCode: statusCode,
		body:       body,
	}
}

// NewDecodeError creates a new decode error
func NewDecodeError(message string, wrapped error) ExecutionError {
	return &decodeError{
		message: message,
		wrapped: wrapped,
	}
}

// NewCancelledError creates a new cancellation error
func NewCancelledError(message string, wrapped error) ExecutionError {
	return &cancelledError{
		message: message,
		wrapped: wrapped,
	}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var execErr ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Type() == errorType
	}
	return false
}

// IsRetryable reports whether err is a failure class that earns another attempt
func IsRetryable(err error) bool {
	return IsErrorType(err, TimeoutError) || IsErrorType(err, ConnectionError)
}

// IsHTTPStatusError checks if an error is a response error with a specific status code
func IsHTTPStatusError(err error, statusCode int) bool {
	var respErr *responseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode() == statusCode
	}
	return false
}

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// IsErrorStatus checks if a status code is a client or server error (4xx/5xx)
func IsErrorStatus(statusCode int) bool {
	return statusCode >= 400
}
