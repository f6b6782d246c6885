// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	celpb "cel.dev/expr"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/stacklok/cel-conditions/schema/converters"
)

var (
	// ErrLengthMismatch is logged when the backend returns a different number
	// of results than it was given.
	ErrLengthMismatch = errors.New("result count does not match input count")

	// ErrNilExpr is logged when a batch holds a nil expression tree.
	ErrNilExpr = errors.New("nil expression in batch")
)

// Batch is the result of a batch conversion. When Degraded is true the
// backend call failed and Values holds one default value per input.
type Batch[T any] struct {
	Values   []T
	Degraded bool
}

// Bridge converts between CEL source text and expression trees through a
// Service. It never returns errors: failures are logged and degrade the batch.
type Bridge struct {
	svc    Service
	logger *slog.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger failures are reported to.
// The default is [log/slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = l
	}
}

// New returns a Bridge backed by svc.
func New(svc Service, opts ...Option) *Bridge {
	b := &Bridge{svc: svc, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// BatchConvertCELStringToParsedExpr parses every expression with one backend
// call. On failure each value is an empty Expr.
func (b *Bridge) BatchConvertCELStringToParsedExpr(ctx context.Context, expressions []string) Batch[*celpb.Expr] {
	if len(expressions) == 0 {
		return Batch[*celpb.Expr]{Values: []*celpb.Expr{}}
	}

	exprs, err := b.parse(ctx, expressions)
	if err != nil {
		b.logFailure(ctx, "batch parse", len(expressions), err)
		return Batch[*celpb.Expr]{Values: fill(len(expressions), func() *celpb.Expr { return &celpb.Expr{} }), Degraded: true}
	}
	return Batch[*celpb.Expr]{Values: exprs}
}

// BatchConvertParsedExprToCELString deparses every expression with one
// backend call. On failure each value is the empty string.
func (b *Bridge) BatchConvertParsedExprToCELString(ctx context.Context, expressions []*celpb.Expr) Batch[string] {
	if len(expressions) == 0 {
		return Batch[string]{Values: []string{}}
	}

	texts, err := b.deparse(ctx, expressions)
	if err != nil {
		b.logFailure(ctx, "batch deparse", len(expressions), err)
		return Batch[string]{Values: make([]string, len(expressions)), Degraded: true}
	}
	return Batch[string]{Values: texts}
}

// BatchConvertCELStringToOldParsedExpr is BatchConvertCELStringToParsedExpr
// for callers that hold v1alpha1 expression trees.
func (b *Bridge) BatchConvertCELStringToOldParsedExpr(ctx context.Context, expressions []string) Batch[*exprpb.Expr] {
	parsed := b.BatchConvertCELStringToParsedExpr(ctx, expressions)
	if parsed.Degraded {
		return Batch[*exprpb.Expr]{Values: fill(len(expressions), func() *exprpb.Expr { return &exprpb.Expr{} }), Degraded: true}
	}
	values := make([]*exprpb.Expr, len(parsed.Values))
	for i, e := range parsed.Values {
		values[i] = converters.ConvertNewExprToOld(e)
	}
	return Batch[*exprpb.Expr]{Values: values}
}

// BatchConvertOldParsedExprToCELString is BatchConvertParsedExprToCELString
// for callers that hold v1alpha1 expression trees.
func (b *Bridge) BatchConvertOldParsedExprToCELString(ctx context.Context, expressions []*exprpb.Expr) Batch[string] {
	values := make([]*celpb.Expr, len(expressions))
	for i, e := range expressions {
		values[i] = converters.ConvertOldExprToNew(e)
	}
	return b.BatchConvertParsedExprToCELString(ctx, values)
}

func (b *Bridge) parse(ctx context.Context, expressions []string) ([]*celpb.Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	exprs, err := b.svc.BatchParse(ctx, expressions)
	if err != nil {
		return nil, err
	}
	if len(exprs) != len(expressions) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrLengthMismatch, len(expressions), len(exprs))
	}
	for i, e := range exprs {
		if e == nil {
			return nil, fmt.Errorf("%w: result %d", ErrNilExpr, i)
		}
	}
	return exprs, nil
}

func (b *Bridge) deparse(ctx context.Context, expressions []*celpb.Expr) ([]string, error) {
	for i, e := range expressions {
		if e == nil {
			return nil, fmt.Errorf("%w: input %d", ErrNilExpr, i)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	texts, err := b.svc.BatchDeparse(ctx, expressions)
	if err != nil {
		return nil, err
	}
	if len(texts) != len(expressions) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrLengthMismatch, len(expressions), len(texts))
	}
	return texts, nil
}

func (b *Bridge) logFailure(ctx context.Context, op string, n int, err error) {
	b.logger.ErrorContext(ctx, op+" failed, returning defaults",
		"count", n,
		"error", err,
	)
}

func fill[T any](n int, zero func() T) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = zero()
	}
	return out
}
