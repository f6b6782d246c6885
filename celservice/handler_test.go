// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package celservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	celpb "cel.dev/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/cel-conditions/bridge/mocks"
	"github.com/stacklok/cel-conditions/httperr"
)

func newTestHandler(t *testing.T, opts ...HandlerOption) *Handler {
	t.Helper()
	svc := NewLocal()
	t.Cleanup(svc.Close)
	return NewHandler(svc, opts...)
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httperr.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHandler_BatchParse(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	rec := post(t, h, BatchParsePath, `{"expressions": ["a > 1", "b == \"x\""]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp exprBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	exprs, err := decodeExprs(resp)
	require.NoError(t, err)
	require.Len(t, exprs, 2)
	assert.Equal(t, "_>_", exprs[0].GetCallExpr().GetFunction())
	assert.Equal(t, "_==_", exprs[1].GetCallExpr().GetFunction())
}

func TestHandler_BatchDeparse(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	parsed := post(t, h, BatchParsePath, `{"expressions": ["a > 1", "b in [1, 2]"]}`)
	require.Equal(t, http.StatusOK, parsed.Code)

	rec := post(t, h, BatchDeparsePath, parsed.Body.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp textBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"a > 1", "b in [1, 2]"}, resp.Expressions)
}

func TestHandler_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     []HandlerOption
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "syntax error",
			path:     BatchParsePath,
			body:     `{"expressions": ["a >"]}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "expression 0",
		},
		{
			name:     "malformed json",
			path:     BatchParsePath,
			body:     `{"expressions": [`,
			wantCode: http.StatusBadRequest,
			wantErr:  ErrInvalidRequest.Error(),
		},
		{
			name:     "malformed expression tree",
			path:     BatchDeparsePath,
			body:     `{"expressions": [{"id": "not a number"}]}`,
			wantCode: http.StatusBadRequest,
			wantErr:  ErrInvalidRequest.Error(),
		},
		{
			name:     "empty expression tree",
			path:     BatchDeparsePath,
			body:     `{"expressions": [{}]}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "unparse",
		},
		{
			name:     "wrong method",
			method:   http.MethodGet,
			path:     BatchParsePath,
			wantCode: http.StatusMethodNotAllowed,
			wantErr:  "not allowed",
		},
		{
			name:     "batch too large",
			opts:     []HandlerOption{WithMaxBatchSize(1)},
			path:     BatchParsePath,
			body:     `{"expressions": ["a", "b"]}`,
			wantCode: http.StatusRequestEntityTooLarge,
			wantErr:  ErrBatchTooLarge.Error(),
		},
		{
			name:     "body too large",
			opts:     []HandlerOption{WithMaxBodyBytes(16)},
			path:     BatchParsePath,
			body:     `{"expressions": ["a > 1", "b > 2", "c > 3"]}`,
			wantCode: http.StatusRequestEntityTooLarge,
			wantErr:  "exceeds 16 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandler(t, tt.opts...)
			method := tt.method
			if method == "" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, errorBody(t, rec), tt.wantErr)
			if tt.wantCode == http.StatusMethodNotAllowed {
				assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
			}
		})
	}
}

func TestHandler_ServiceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "plain error is internal", err: errors.New("backend down"), wantCode: http.StatusInternalServerError},
		{name: "coded error keeps its code", err: httperr.New("busy", http.StatusServiceUnavailable), wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			svc := mocks.NewMockService(ctrl)
			svc.EXPECT().BatchParse(gomock.Any(), []string{"a > 1"}).Return(nil, tt.err)

			rec := post(t, NewHandler(svc), BatchParsePath, `{"expressions": ["a > 1"]}`)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.err.Error(), errorBody(t, rec))
		})
	}
}

func TestHandler_RequestID(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	t.Run("echoes a valid id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, BatchParsePath, strings.NewReader(`{"expressions": []}`))
		req.Header.Set(RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	})

	t.Run("generates an id when missing", func(t *testing.T) {
		t.Parallel()

		rec := post(t, h, BatchParsePath, `{"expressions": []}`)
		assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, BatchParsePath, strings.NewReader(`{"expressions": []}`))
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
	})
}

func TestHandler_RecoversPanics(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().BatchDeparse(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, []*celpb.Expr) ([]string, error) {
			panic("boom")
		})

	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(exprBatch{}))
	rec := post(t, NewHandler(svc), BatchDeparsePath, body.String())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}
