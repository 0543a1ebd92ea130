package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure. Tool-local codes stay inside the dispatcher;
// connection-fatal codes end the voice connection.
type Code string

const (
	CodeUnauthorized       Code = "unauthorized"
	CodeNotFound           Code = "not_found"
	CodeInvalidArgument    Code = "invalid_argument"
	CodePreconditionFailed Code = "precondition_failed"
	CodeUpstreamFailure    Code = "upstream_failure"
	CodeConfiguration      Code = "configuration_error"
	CodeInternal           Code = "internal"
)

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrUnauthorized       = &Error{Code: CodeUnauthorized}
	ErrNotFound           = &Error{Code: CodeNotFound}
	ErrInvalidArgument    = &Error{Code: CodeInvalidArgument}
	ErrPreconditionFailed = &Error{Code: CodePreconditionFailed}
	ErrUpstreamFailure    = &Error{Code: CodeUpstreamFailure}
	ErrConfiguration      = &Error{Code: CodeConfiguration}
	ErrInternal           = &Error{Code: CodeInternal}
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Code == e.Code
}

func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func Wrap(code Code, err error, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf reports the code carried by err; unclassified errors are internal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the human message of the outermost *Error, or "".
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// Fatal reports whether a code ends the voice connection.
func (c Code) Fatal() bool {
	switch c {
	case CodeUnauthorized, CodeUpstreamFailure, CodeConfiguration:
		return true
	default:
		return false
	}
}

func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case CodeUpstreamFailure:
		return http.StatusBadGateway
	case CodeConfiguration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
