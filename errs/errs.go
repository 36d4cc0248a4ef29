// Package errs classifies failures so transports can map them to status codes.
//
// Each error type carries a gRPC status code; HTTPStatus translates that code for the HTTP surface.
package errs

import (
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ValidationError reports bad input shape or type.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Msg)
}

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing stored resource.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func (e *NotFoundError) GRPCStatus() *status.Status {
	return status.New(codes.NotFound, e.Msg)
}

// NotFound builds a NotFoundError from a format string.
func NotFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a transport or parse failure of the completion service.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) GRPCStatus() *status.Status {
	return status.New(codes.Unavailable, e.Error())
}

// Upstream wraps err as an UpstreamError for operation op.
func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// FormatError reports bytes that are not a valid document container.
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) GRPCStatus() *status.Status {
	return status.New(codes.DataLoss, e.Error())
}

// Format wraps err as a FormatError for operation op.
func Format(op string, err error) error {
	return &FormatError{Op: op, Err: err}
}

// HTTPStatus maps an error to the HTTP status code returned to callers.
func HTTPStatus(err error) int {
	switch status.Code(err) {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
