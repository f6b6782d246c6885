// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package httperr provides error types with HTTP status codes for API error handling.
package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error response FromResponse reads.
const maxErrorBody = 64 << 10

// CodedError wraps an error with an HTTP status code.
// This allows errors to carry their intended HTTP response code through the call stack,
// enabling centralized error handling in API handlers.
type CodedError struct {
	err  error
	code int
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying error for errors.Is() and errors.As() compatibility.
func (e *CodedError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *CodedError) HTTPCode() int {
	return e.code
}

// WithCode wraps an error with an HTTP status code.
// The returned error implements Unwrap() for use with errors.Is() and errors.As().
// If err is nil, WithCode returns nil.
func WithCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &CodedError{err: err, code: code}
}

// Code extracts the HTTP status code from an error.
// It unwraps the error chain looking for a CodedError.
// If no CodedError is found, it returns http.StatusInternalServerError (500).
func Code(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.code
	}

	return http.StatusInternalServerError
}

// New creates a new error with the given message and HTTP status code.
// This is a convenience function equivalent to WithCode(errors.New(message), code).
func New(message string, code int) error {
	return &CodedError{err: errors.New(message), code: code}
}

// Body is the JSON envelope error responses are written in.
type Body struct {
	Error string `json:"error"`
}

// WriteJSON writes err as {"error": "..."} with the status code from [Code].
func WriteJSON(w http.ResponseWriter, err error) {
	code := Code(err)
	msg := http.StatusText(code)
	if err != nil {
		msg = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Body{Error: msg})
}

// FromResponse returns nil for a 2xx response and otherwise a CodedError
// carrying the response status. The message is taken from a JSON [Body] when
// the response has one, and from the raw body or status text when it does not.
// The response body is read but not closed.
func FromResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return WithCode(fmt.Errorf("reading error response: %w", err), resp.StatusCode)
	}

	var body Body
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return New(msg, resp.StatusCode)
}
