// Package response provides the JSON envelope of the display-set API. Every
// endpoint answers {data, error}: data on success, error on failure.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/OHIF/Viewers-sub030/pkg/errors"
)

// Response represents the standardized API response structure.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error represents an API error with code, message, and optional details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are already sent, encoding errors are dropped
	_ = json.NewEncoder(w).Encode(resp)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// Created writes a successful response with 201 status.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Success(data))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail("BAD_REQUEST", message, details))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message, details))
}

// MethodNotAllowed writes a 405 error response.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	JSON(w, http.StatusMethodNotAllowed, Fail(
		"METHOD_NOT_ALLOWED",
		"Method not allowed",
		"Method "+method+" is not supported for this endpoint",
	))
}

// TooLarge writes a 413 error response.
func TooLarge(w http.ResponseWriter, limit int64) {
	JSON(w, http.StatusRequestEntityTooLarge, Fail(
		"REQUEST_TOO_LARGE",
		"Request body too large",
		"Bodies are limited to "+formatBytes(limit),
	))
}

// InternalError writes a 500 error response without exposing the cause.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(
		"INTERNAL_ERROR",
		"Internal server error",
		"An unexpected error occurred",
	))
}

// ErrorFromType maps typed errors to HTTP responses.
func ErrorFromType(w http.ResponseWriter, err error) {
	var (
		structural *errors.StructuralInputError
		parse      *errors.ParseError
	)
	switch {
	case errors.As(err, &structural):
		JSON(w, http.StatusBadRequest, Fail("STRUCTURAL_INPUT", structural.Error(), ""))
	case errors.As(err, &parse):
		JSON(w, http.StatusBadRequest, Fail("PARSE_ERROR", parse.Error(), ""))
	case errors.IsNotFound(err):
		NotFound(w, err.Error(), "")
	case errors.IsValidationError(err):
		BadRequest(w, err.Error(), "")
	case errors.IsHandlerFailure(err):
		JSON(w, http.StatusUnprocessableEntity, Fail("HANDLER_FAILURE", err.Error(), ""))
	default:
		InternalError(w, err)
	}
}

func formatBytes(n int64) string {
	const unit = 1 << 20
	if n >= unit && n%unit == 0 {
		return strconv.FormatInt(n/unit, 10) + " MiB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
