// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package celservice

import (
	"encoding/json"
	"fmt"

	celpb "cel.dev/expr"
	"google.golang.org/protobuf/encoding/protojson"
)

// HTTP routes served by Handler and called by Client.
const (
	BatchParsePath   = "/v1/cel:batchParse"
	BatchDeparsePath = "/v1/cel:batchDeparse"

	// RequestIDHeader carries the id that ties client and server logs together.
	RequestIDHeader = "X-Request-Id"
)

// textBatch is the envelope for CEL source text: the batchParse request and
// the batchDeparse response.
type textBatch struct {
	Expressions []string `json:"expressions"`
}

// exprBatch is the envelope for expression trees: the batchParse response and
// the batchDeparse request. Each element is the protojson form of a cel.expr.Expr.
type exprBatch struct {
	Expressions []json.RawMessage `json:"expressions"`
}

func encodeExprs(exprs []*celpb.Expr) (exprBatch, error) {
	out := exprBatch{Expressions: make([]json.RawMessage, len(exprs))}
	for i, e := range exprs {
		raw, err := protojson.Marshal(e)
		if err != nil {
			return exprBatch{}, fmt.Errorf("encoding expression %d: %w", i, err)
		}
		out.Expressions[i] = raw
	}
	return out, nil
}

func decodeExprs(batch exprBatch) ([]*celpb.Expr, error) {
	out := make([]*celpb.Expr, len(batch.Expressions))
	for i, raw := range batch.Expressions {
		e := &celpb.Expr{}
		if err := protojson.Unmarshal(raw, e); err != nil {
			return nil, fmt.Errorf("decoding expression %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}
