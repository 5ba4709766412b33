package oauthcore

import (
	"errors"
	"fmt"
)

// Error codes, mirroring the taxonomy in spec.md §7.
const (
	CodeConfiguration         = "configuration_error"
	CodeAuthorizationAborted  = "authorization_aborted"
	CodeAuthorizationRejected = "authorization_rejected"
	CodeAuthorizationTimeout  = "authorization_timeout"
	CodeTokenEndpoint         = "token_endpoint_error"
)

// Error is a structured error with a stable code and an optional cause,
// in the shape callers can match on with errors.As.
type Error struct {
	Code       string
	Message    string
	HTTPStatus int    // set for TokenEndpointError
	Body       string // raw response body, set for TokenEndpointError
	Cause      error
}

func (e *Error) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Body)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrConfiguration reports a missing or invalid field for the grant type.
func ErrConfiguration(msg string) *Error {
	return &Error{Code: CodeConfiguration, Message: msg}
}

// ErrAuthorizationAborted reports that the authorization surface closed
// before reaching the callback.
func ErrAuthorizationAborted() *Error {
	return &Error{Code: CodeAuthorizationAborted, Message: "authorization was aborted before completion"}
}

// ErrAuthorizationRejected reports that the callback carried an error
// parameter (the user denied consent, or the server rejected the request).
func ErrAuthorizationRejected(reason string) *Error {
	return &Error{Code: CodeAuthorizationRejected, Message: "authorization was rejected: " + reason}
}

// ErrAuthorizationTimeout reports that no callback arrived within the
// implementation-defined authorization window.
func ErrAuthorizationTimeout() *Error {
	return &Error{Code: CodeAuthorizationTimeout, Message: "authorization timed out waiting for the callback"}
}

// ErrTokenEndpoint wraps a non-2xx or unparseable token-endpoint response.
// The orchestrator rejects with the stringified response body, per
// spec.md §4.8.
func ErrTokenEndpoint(status int, body string, cause error) *Error {
	return &Error{
		Code:       CodeTokenEndpoint,
		Message:    "token endpoint request failed",
		HTTPStatus: status,
		Body:       body,
		Cause:      cause,
	}
}

// AsError converts err to *Error, wrapping it as a token-endpoint error if
// it isn't already one of ours.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeTokenEndpoint, Message: err.Error(), Cause: err}
}
