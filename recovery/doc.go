// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package recovery provides panic recovery middleware for HTTP handlers.
//
// The middleware recovers from panics in HTTP handlers, logs the panic value,
// request id and stack trace, and returns a 500 Internal Server Error response
// to the client. http.ErrAbortHandler is re-panicked so net/http can abort the
// response as usual.
//
// # Basic Usage
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("/", handler)
//	wrappedMux := recovery.Middleware(mux)
//	http.ListenAndServe(":8080", wrappedMux)
//
// Use NewMiddleware to log through a specific logger:
//
//	handler := recovery.NewMiddleware(logger)(mux)
package recovery
