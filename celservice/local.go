// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package celservice

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	celpb "cel.dev/expr"
	"github.com/cespare/xxhash/v2"
	"github.com/karlseguin/ccache/v2"
	"github.com/sourcegraph/conc/iter"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
	"google.golang.org/protobuf/proto"

	"github.com/stacklok/cel-conditions/cel"
	"github.com/stacklok/cel-conditions/schema/converters"
)

const (
	// DefaultCacheSize is the number of parsed expressions kept by default.
	DefaultCacheSize = 10000
	// DefaultCacheTTL is how long a parsed expression stays cached by default.
	DefaultCacheTTL = 10 * time.Minute
	// DefaultMaxGoroutines bounds the per-batch fan-out by default.
	DefaultMaxGoroutines = 8
)

// Local parses and deparses CEL in-process with cel-go. It is safe for
// concurrent use.
type Local struct {
	engine        *cel.Engine
	cache         *ccache.Cache
	cacheTTL      time.Duration
	maxGoroutines int
	logger        *slog.Logger
}

type cacheEntry struct {
	source string
	expr   *celpb.Expr
}

// LocalOption configures a Local service.
type LocalOption func(*localConfig)

type localConfig struct {
	engine        *cel.Engine
	cacheSize     int64
	cacheTTL      time.Duration
	maxGoroutines int
	logger        *slog.Logger
}

// WithEngine sets the engine used to parse. The default is a cel.NewEngine
// without declarations, since parsing needs none.
func WithEngine(e *cel.Engine) LocalOption {
	return func(c *localConfig) { c.engine = e }
}

// WithCacheSize sets how many parsed expressions are cached. Zero disables
// the cache.
func WithCacheSize(n int64) LocalOption {
	return func(c *localConfig) { c.cacheSize = n }
}

// WithCacheTTL sets how long a parsed expression stays cached.
func WithCacheTTL(d time.Duration) LocalOption {
	return func(c *localConfig) { c.cacheTTL = d }
}

// WithMaxGoroutines bounds how many expressions of one batch are processed
// concurrently.
func WithMaxGoroutines(n int) LocalOption {
	return func(c *localConfig) { c.maxGoroutines = n }
}

// WithLocalLogger sets the logger.
func WithLocalLogger(l *slog.Logger) LocalOption {
	return func(c *localConfig) { c.logger = l }
}

// NewLocal returns an in-process CEL service.
func NewLocal(opts ...LocalOption) *Local {
	cfg := &localConfig{
		cacheSize:     DefaultCacheSize,
		cacheTTL:      DefaultCacheTTL,
		maxGoroutines: DefaultMaxGoroutines,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.engine == nil {
		cfg.engine = cel.NewEngine()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.maxGoroutines <= 0 {
		cfg.maxGoroutines = 1
	}

	l := &Local{
		engine:        cfg.engine,
		cacheTTL:      cfg.cacheTTL,
		maxGoroutines: cfg.maxGoroutines,
		logger:        cfg.logger,
	}
	if cfg.cacheSize > 0 {
		l.cache = ccache.New(ccache.Configure().MaxSize(cfg.cacheSize))
	}
	return l
}

// Close stops the cache's background worker.
func (l *Local) Close() {
	if l.cache != nil {
		l.cache.Stop()
	}
}

// BatchParse parses every expression. If any expression fails, the call
// fails with an error naming each failing index.
func (l *Local) BatchParse(ctx context.Context, expressions []string) ([]*celpb.Expr, error) {
	mapper := iter.Mapper[indexed[string], *celpb.Expr]{MaxGoroutines: l.maxGoroutines}
	out, err := mapper.MapErr(withIndex(expressions), func(src *indexed[string]) (*celpb.Expr, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := l.parseOne(src.v)
		if err != nil {
			return nil, fmt.Errorf("expression %d: %w", src.i, err)
		}
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	l.logger.DebugContext(ctx, "parsed CEL batch", "count", len(expressions))
	return out, nil
}

// BatchDeparse renders every expression as CEL source. If any expression
// fails, the call fails with an error naming each failing index.
func (l *Local) BatchDeparse(ctx context.Context, expressions []*celpb.Expr) ([]string, error) {
	mapper := iter.Mapper[indexed[*celpb.Expr], string]{MaxGoroutines: l.maxGoroutines}
	out, err := mapper.MapErr(withIndex(expressions), func(e *indexed[*celpb.Expr]) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := deparseOne(e.v)
		if err != nil {
			return "", fmt.Errorf("expression %d: %w", e.i, err)
		}
		return text, nil
	})
	if err != nil {
		return nil, err
	}
	l.logger.DebugContext(ctx, "deparsed CEL batch", "count", len(expressions))
	return out, nil
}

func (l *Local) parseOne(src string) (*celpb.Expr, error) {
	key := cacheKey(src)
	if l.cache != nil {
		if item := l.cache.Get(key); item != nil && !item.Expired() {
			if entry, ok := item.Value().(cacheEntry); ok && entry.source == src {
				return proto.Clone(entry.expr).(*celpb.Expr), nil
			}
		}
	}

	parsed, err := l.engine.Parse(src)
	if err != nil {
		return nil, err
	}
	e := converters.ConvertOldExprToNew(parsed.GetExpr())
	if l.cache != nil {
		l.cache.Set(key, cacheEntry{source: src, expr: proto.Clone(e).(*celpb.Expr)}, l.cacheTTL)
	}
	return e, nil
}

func deparseOne(e *celpb.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("%w: nil expression", cel.ErrUnparse)
	}
	return cel.Unparse(&exprpb.ParsedExpr{Expr: converters.ConvertNewExprToOld(e)})
}

type indexed[T any] struct {
	i int
	v T
}

func withIndex[T any](in []T) []indexed[T] {
	out := make([]indexed[T], len(in))
	for i, v := range in {
		out[i] = indexed[T]{i: i, v: v}
	}
	return out
}

func cacheKey(src string) string {
	return strconv.FormatUint(xxhash.Sum64String(src), 16)
}
