// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package celservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	celpb "cel.dev/expr"
	"github.com/google/uuid"

	"github.com/stacklok/cel-conditions/httperr"
	validation "github.com/stacklok/cel-conditions/validation/http"
)

// DefaultClientTimeout bounds one batch request by default.
const DefaultClientTimeout = 30 * time.Second

// Client calls a remote CEL service over HTTP. It implements bridge.Service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithClientLogger sets the logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(cl *Client) { cl.logger = l }
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if err := validation.ValidateServiceURL(baseURL); err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultClientTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultClientTimeout}
	}
	return c, nil
}

// BatchParse implements bridge.Service.
func (c *Client) BatchParse(ctx context.Context, expressions []string) ([]*celpb.Expr, error) {
	var resp exprBatch
	if err := c.post(ctx, BatchParsePath, textBatch{Expressions: expressions}, &resp); err != nil {
		return nil, err
	}
	exprs, err := decodeExprs(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return exprs, nil
}

// BatchDeparse implements bridge.Service.
func (c *Client) BatchDeparse(ctx context.Context, expressions []*celpb.Expr) ([]string, error) {
	req, err := encodeExprs(expressions)
	if err != nil {
		return nil, err
	}
	var resp textBatch
	if err := c.post(ctx, BatchDeparsePath, req, &resp); err != nil {
		return nil, err
	}
	return resp.Expressions, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "CEL service call",
		"path", path,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if err := httperr.FromResponse(resp); err != nil {
		return fmt.Errorf("%s (request %s): %w", path, requestID, err)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}
