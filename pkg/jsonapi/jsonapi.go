// Package jsonapi provides JSON:API flavored response types and writers.
// See https://jsonapi.org for the full specification; only the subset the
// service needs is implemented.
package jsonapi

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ContentType is the JSON:API media type.
const ContentType = "application/vnd.api+json"

// Meta represents arbitrary metadata.
type Meta map[string]any

// Document represents a JSON:API top-level document.
// A document MUST contain at least one of: data, errors, or meta.
type Document struct {
	Data   any     `json:"data,omitempty"`
	Errors []Error `json:"errors,omitempty"`
	Meta   Meta    `json:"meta,omitempty"`
}

// Error represents a JSON:API error object.
type Error struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// StatusCode returns the HTTP status code as an int.
func (e Error) StatusCode() int {
	code, _ := strconv.Atoi(e.Status)
	return code
}

// NewError creates an error object with the given status, code, and title.
func NewError(status int, code, title, detail string) Error {
	return Error{
		Status: strconv.Itoa(status),
		Code:   code,
		Title:  title,
		Detail: detail,
	}
}

// ErrBadRequest creates a 400 Bad Request error.
func ErrBadRequest(detail string) Error {
	return NewError(http.StatusBadRequest, "bad_request", "Bad Request", detail)
}

// ErrValidation creates a 422 validation error.
func ErrValidation(detail string) Error {
	return NewError(http.StatusUnprocessableEntity, "validation_error", "Validation Failed", detail)
}

// ErrStorageUnavailable creates a 502 error for backing-store failures.
// Distinct from quota denial so callers can tell "not entitled" from
// "system unavailable".
func ErrStorageUnavailable(detail string) Error {
	return NewError(http.StatusBadGateway, "storage_error", "Storage Unavailable", detail)
}

// ErrInternal creates a 500 Internal Server Error.
func ErrInternal(detail string) Error {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	return NewError(http.StatusInternalServerError, "internal_error", "Internal Server Error", detail)
}

// WriteDocument writes a JSON:API document to the response.
func WriteDocument(w http.ResponseWriter, status int, doc Document) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(doc)
}

// WriteData writes a data document.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteDocument(w, status, Document{Data: data})
}

// WriteMeta writes a response with only metadata (no data).
func WriteMeta(w http.ResponseWriter, status int, meta Meta) {
	WriteDocument(w, status, Document{Meta: meta})
}

// WriteError writes an error response.
// The HTTP status is derived from the first error's status field.
func WriteError(w http.ResponseWriter, errs ...Error) {
	if len(errs) == 0 {
		errs = []Error{ErrInternal("")}
	}
	status := errs[0].StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}
	WriteDocument(w, status, Document{Errors: errs})
}

// WriteBadRequest is a convenience for 400 errors.
func WriteBadRequest(w http.ResponseWriter, detail string) {
	WriteError(w, ErrBadRequest(detail))
}

// WriteValidationError is a convenience for 422 validation errors.
func WriteValidationError(w http.ResponseWriter, detail string) {
	WriteError(w, ErrValidation(detail))
}

// WriteInternalError is a convenience for 500 errors.
func WriteInternalError(w http.ResponseWriter, detail string) {
	WriteError(w, ErrInternal(detail))
}
