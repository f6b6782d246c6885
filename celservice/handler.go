// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package celservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/cel-conditions/bridge"
	"github.com/stacklok/cel-conditions/cel"
	"github.com/stacklok/cel-conditions/httperr"
	"github.com/stacklok/cel-conditions/recovery"
	validation "github.com/stacklok/cel-conditions/validation/http"
)

const (
	// DefaultMaxBatchSize is the largest batch a Handler accepts by default.
	DefaultMaxBatchSize = 1000
	// DefaultMaxBodyBytes bounds a request body by default.
	DefaultMaxBodyBytes = 4 << 20
)

// Handler serves a bridge.Service over HTTP.
type Handler struct {
	svc          bridge.Service
	maxBatchSize int
	maxBodyBytes int64
	logger       *slog.Logger
	next         http.Handler
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithMaxBatchSize sets the largest accepted batch. Larger batches get 413.
func WithMaxBatchSize(n int) HandlerOption {
	return func(h *Handler) { h.maxBatchSize = n }
}

// WithMaxBodyBytes bounds the request body. Larger bodies get 413.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) { h.maxBodyBytes = n }
}

// WithHandlerLogger sets the logger for requests and recovered panics.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// NewHandler returns an HTTP handler exposing svc at BatchParsePath and
// BatchDeparsePath.
func NewHandler(svc bridge.Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:          svc,
		maxBatchSize: DefaultMaxBatchSize,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc(BatchParsePath, h.handleBatchParse)
	mux.HandleFunc(BatchDeparsePath, h.handleBatchDeparse)
	h.next = recovery.NewMiddleware(h.logger)(withRequestID(mux))
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.next.ServeHTTP(w, r)
}

// withRequestID makes sure every request carries a usable request id, and
// echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if validation.ValidateHeaderValue(id) != nil || len(id) > 128 {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleBatchParse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req textBatch
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, "batchParse", err)
		return
	}
	if err := h.checkSize(len(req.Expressions)); err != nil {
		h.fail(w, r, "batchParse", err)
		return
	}

	exprs, err := h.svc.BatchParse(r.Context(), req.Expressions)
	if err != nil {
		h.fail(w, r, "batchParse", classify(err))
		return
	}
	resp, err := encodeExprs(exprs)
	if err != nil {
		h.fail(w, r, "batchParse", err)
		return
	}
	h.write(w, r, "batchParse", resp, len(req.Expressions), start)
}

func (h *Handler) handleBatchDeparse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req exprBatch
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, "batchDeparse", err)
		return
	}
	if err := h.checkSize(len(req.Expressions)); err != nil {
		h.fail(w, r, "batchDeparse", err)
		return
	}
	exprs, err := decodeExprs(req)
	if err != nil {
		h.fail(w, r, "batchDeparse", httperr.WithCode(fmt.Errorf("%w: %w", ErrInvalidRequest, err), http.StatusBadRequest))
		return
	}

	texts, err := h.svc.BatchDeparse(r.Context(), exprs)
	if err != nil {
		h.fail(w, r, "batchDeparse", classify(err))
		return
	}
	h.write(w, r, "batchDeparse", textBatch{Expressions: texts}, len(exprs), start)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		return httperr.New(fmt.Sprintf("method %s not allowed", r.Method), http.StatusMethodNotAllowed)
	}
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return httperr.WithCode(fmt.Errorf("%w: body exceeds %d bytes", ErrBatchTooLarge, tooLarge.Limit),
				http.StatusRequestEntityTooLarge)
		}
		return httperr.WithCode(fmt.Errorf("%w: %w", ErrInvalidRequest, err), http.StatusBadRequest)
	}
	return nil
}

func (h *Handler) checkSize(n int) error {
	if n > h.maxBatchSize {
		return httperr.WithCode(fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, n, h.maxBatchSize),
			http.StatusRequestEntityTooLarge)
	}
	return nil
}

// classify attaches a status to a service error: CEL syntax and unparse
// failures are the caller's fault; coded errors keep their code.
func classify(err error) error {
	var coded *httperr.CodedError
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, cel.ErrExpressionCheck), errors.Is(err, cel.ErrUnparse):
		return httperr.WithCode(err, http.StatusBadRequest)
	}
	return err
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := httperr.Code(err)
	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, op+" failed",
		"request_id", r.Header.Get(RequestIDHeader),
		"status", code,
		"error", err,
	)
	httperr.WriteJSON(w, err)
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, op string, v any, n int, start time.Time) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.ErrorContext(r.Context(), op+" response write failed",
			"request_id", r.Header.Get(RequestIDHeader),
			"error", err,
		)
		return
	}
	h.logger.InfoContext(r.Context(), op+" served",
		"request_id", r.Header.Get(RequestIDHeader),
		"count", n,
		"duration", time.Since(start),
	)
}
