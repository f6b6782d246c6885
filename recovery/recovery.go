// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package recovery

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// RequestIDHeader is logged alongside a recovered panic when present.
const RequestIDHeader = "X-Request-Id"

// Middleware is an HTTP middleware that recovers from panics.
// When a panic occurs, it logs the panic value and stack trace with
// [log/slog.Default] and returns a 500 Internal Server Error response
// to the client, preventing the panic from crashing the server.
func Middleware(next http.Handler) http.Handler {
	return NewMiddleware(nil)(next)
}

// NewMiddleware returns a recovery middleware that logs to logger.
// A nil logger uses [log/slog.Default].
func NewMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				l := logger
				if l == nil {
					l = slog.Default()
				}
				l.ErrorContext(r.Context(), "recovered from panic in HTTP handler",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", r.Header.Get(RequestIDHeader),
					"stack", string(debug.Stack()),
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
