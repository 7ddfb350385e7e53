// Package apierror provides the coded error type shared by services and
// handlers. Every business failure is an *Error carrying a machine-readable
// code plus enough detail (available vs requested stock, register state) for
// the UI to react. Internal errors wrap the cause but never leak it to
// clients.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeRegisterClosed    Code = "REGISTER_CLOSED"
	CodeNoOpenRegister    Code = "NO_OPEN_REGISTER"
	CodeAlreadyOpen       Code = "ALREADY_OPEN"
	CodeConflict          Code = "CONFLICT"
	CodeInternal          Code = "INTERNAL_ERROR"
)

// Error is the canonical error envelope. The JSON shape is what 4xx/5xx
// responses carry; HTTPStatus and Err are server-side only.
type Error struct {
	Code       Code           `json:"code"`
	Detail     string         `json:"detail"`
	Fields     map[string]any `json:"fields,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// WithField attaches a detail field for the client.
func (e *Error) WithField(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// CodeOf extracts the error code, defaulting to CodeInternal for plain errors.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// StatusOf maps an error to its HTTP status code.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.HTTPStatus != 0 {
		return ae.HTTPStatus
	}
	return http.StatusInternalServerError
}

// ── Factories ────────────────────────────────────────────────────────────────

func NotFound(entity string, ref any) *Error {
	return &Error{
		Code:       CodeNotFound,
		Detail:     fmt.Sprintf("%s not found", entity),
		Fields:     map[string]any{"entity": entity, "ref": fmt.Sprint(ref)},
		HTTPStatus: http.StatusNotFound,
	}
}

func InvalidInput(detail string) *Error {
	return &Error{Code: CodeInvalidInput, Detail: detail, HTTPStatus: http.StatusBadRequest}
}

func InsufficientStock(productName string, requested, available int) *Error {
	return &Error{
		Code:   CodeInsufficientStock,
		Detail: fmt.Sprintf("insufficient stock for %s", productName),
		Fields: map[string]any{
			"product":   productName,
			"requested": requested,
			"available": available,
		},
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

func RegisterClosed(registerID any) *Error {
	return &Error{
		Code:       CodeRegisterClosed,
		Detail:     "cash register is closed",
		Fields:     map[string]any{"register_id": fmt.Sprint(registerID), "state": "CLOSED"},
		HTTPStatus: http.StatusConflict,
	}
}

func NoOpenRegister() *Error {
	return &Error{
		Code:       CodeNoOpenRegister,
		Detail:     "no open cash register for this operator",
		HTTPStatus: http.StatusConflict,
	}
}

func AlreadyOpen(registerID any) *Error {
	return &Error{
		Code:       CodeAlreadyOpen,
		Detail:     "cash register is already open",
		Fields:     map[string]any{"register_id": fmt.Sprint(registerID), "state": "OPEN"},
		HTTPStatus: http.StatusConflict,
	}
}

func Conflict(detail string) *Error {
	return &Error{Code: CodeConflict, Detail: detail, HTTPStatus: http.StatusConflict}
}

func Internal(err error) *Error {
	return &Error{
		Code:       CodeInternal,
		Detail:     "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ValidationError wraps multiple field errors from request binding.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}
