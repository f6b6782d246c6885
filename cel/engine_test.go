// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/stacklok/cel-conditions/cel"
	"github.com/stacklok/cel-conditions/condition"
)

// newTestConditionEngine creates an engine that declares the built-in factors.
func newTestConditionEngine() *cel.Engine {
	return cel.NewEngine(condition.DefaultCatalog().EnvOptions()...)
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	engine := newTestConditionEngine()
	require.NotNil(t, engine)

	expr, err := engine.Compile(`resource.environment_id == "prod"`)
	require.NoError(t, err)
	require.NotNil(t, expr)
}

func TestEngine_Compile_ValidExpressions(t *testing.T) {
	t.Parallel()

	engine := newTestConditionEngine()

	tests := []struct {
		name string
		expr string
	}{
		{name: "string equality", expr: `resource.environment_id == "prod"`},
		{name: "int compare", expr: `statement.affected_rows > 100`},
		{name: "double compare", expr: `risk.level_weight >= 0.5`},
		{name: "membership", expr: `statement.sql_type in ["DROP_TABLE", "TRUNCATE"]`},
		{name: "negated membership", expr: `!(resource.db_engine in ["MYSQL"])`},
		{name: "string predicate", expr: `resource.database_name.startsWith("prod_")`},
		{name: "regex predicate", expr: `statement.text.matches("(?i)^drop")`},
		{name: "timestamp compare", expr: `request.time < timestamp("2024-01-01T00:00:00.000Z")`},
		{
			name: "nested groups",
			expr: `(resource.environment_id == "prod" && (statement.affected_rows > 100 || statement.table_rows > 1000))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			expr, err := engine.Compile(tt.expr)
			require.NoError(t, err)
			require.NotNil(t, expr)
			assert.Equal(t, tt.expr, expr.Source())
		})
	}
}

func TestEngine_Compile_ParseErrors(t *testing.T) {
	t.Parallel()

	engine := newTestConditionEngine()

	tests := []struct {
		name string
		expr string
	}{
		{name: "unclosed paren", expr: `(resource.environment_id == "prod"`},
		{name: "invalid operator", expr: `statement.affected_rows === 1`},
		{name: "unclosed string", expr: `resource.environment_id == "prod`},
		{name: "missing operand", expr: `statement.affected_rows >`},
		{name: "empty group", expr: `()`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			expr, err := engine.Compile(tt.expr)
			require.Error(t, err)
			require.Nil(t, expr)

			var parseErr *cel.ParseError
			assert.True(t, errors.As(err, &parseErr), "expected ParseError, got %T", err)
			assert.ErrorIs(t, err, cel.ErrExpressionCheck)
		})
	}
}

func TestEngine_Compile_CheckErrors(t *testing.T) {
	t.Parallel()

	engine := newTestConditionEngine()

	tests := []struct {
		name string
		expr string
	}{
		{name: "unknown factor", expr: `resource.owner == "alice"`},
		{name: "type mismatch", expr: `statement.affected_rows == "many"`},
		{name: "undefined function", expr: `resource.database_name.shout()`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			expr, err := engine.Compile(tt.expr)
			require.Error(t, err)
			require.Nil(t, expr)

			var checkErr *cel.CheckError
			assert.True(t, errors.As(err, &checkErr), "expected CheckError, got %T", err)
		})
	}
}

func TestEngine_MaxExpressionLength(t *testing.T) {
	t.Parallel()

	engine := newTestConditionEngine().WithMaxExpressionLength(32)
	long := `resource.environment_id == "` + strings.Repeat("x", 40) + `"`

	_, err := engine.Compile(long)
	require.ErrorIs(t, err, cel.ErrExpressionCheck)
	assert.Contains(t, err.Error(), "exceeds maximum")

	_, err = engine.Parse(long)
	require.ErrorIs(t, err, cel.ErrExpressionCheck)

	require.NoError(t, engine.Check(`statement.affected_rows > 1`))
}

func TestEngine_Check(t *testing.T) {
	t.Parallel()

	engine := newTestConditionEngine()

	t.Run("valid expression", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, engine.Check(`statement.sql_type in ["DROP_TABLE"]`))
	})

	t.Run("invalid expression", func(t *testing.T) {
		t.Parallel()
		err := engine.Check(`statement.sql_type in [`)
		require.Error(t, err)

		var parseErr *cel.ParseError
		assert.True(t, errors.As(err, &parseErr))
	})
}

func TestEngine_Parse(t *testing.T) {
	t.Parallel()

	// Parsing needs no declarations.
	engine := cel.NewEngine()

	parsed, err := engine.Parse(`resource.database_name.startsWith("prod_")`)
	require.NoError(t, err)

	call := parsed.GetExpr().GetCallExpr()
	require.NotNil(t, call)
	assert.Equal(t, "startsWith", call.GetFunction())
	assert.Equal(t, "database_name", call.GetTarget().GetSelectExpr().GetField())
	assert.Equal(t, "prod_", call.GetArgs()[0].GetConstExpr().GetStringValue())
	assert.NotEmpty(t, parsed.GetSourceInfo().GetPositions())

	_, err = engine.Parse(`resource.database_name.startsWith(`)
	var parseErr *cel.ParseError
	require.True(t, errors.As(err, &parseErr))
	require.NotEmpty(t, parseErr.Errors)
	assert.Equal(t, 1, parseErr.Errors[0].Line)
}

func TestUnparse(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine()

	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "comparison", expr: `statement.affected_rows > 100`, want: `statement.affected_rows > 100`},
		{
			name: "redundant parentheses are dropped",
			expr: `(resource.environment_id == "prod" && (statement.affected_rows > 100))`,
			want: `resource.environment_id == "prod" && statement.affected_rows > 100`,
		},
		{
			name: "negated membership keeps its parentheses",
			expr: `!(statement.sql_type in ["DROP_TABLE", "TRUNCATE"])`,
			want: `!(statement.sql_type in ["DROP_TABLE", "TRUNCATE"])`,
		},
		{
			name: "macro is rendered from source info",
			expr: `has(resource.labels)`,
			want: `has(resource.labels)`,
		},
		{
			name: "escaped string",
			expr: `statement.text.contains("a\"b")`,
			want: `statement.text.contains("a\"b")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := engine.Parse(tt.expr)
			require.NoError(t, err)

			got, err := cel.Unparse(parsed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("without source info", func(t *testing.T) {
		t.Parallel()

		parsed, err := engine.Parse(`request.row_limit <= 1000`)
		require.NoError(t, err)

		got, err := cel.Unparse(&exprpb.ParsedExpr{Expr: parsed.GetExpr()})
		require.NoError(t, err)
		assert.Equal(t, `request.row_limit <= 1000`, got)
	})

	t.Run("empty expression", func(t *testing.T) {
		t.Parallel()

		_, err := cel.Unparse(&exprpb.ParsedExpr{Expr: &exprpb.Expr{}})
		assert.ErrorIs(t, err, cel.ErrUnparse)

		_, err = cel.Unparse(nil)
		assert.ErrorIs(t, err, cel.ErrUnparse)
	})
}

func TestCompiledExpression_Evaluate(t *testing.T) {
	t.Parallel()

	engine := newTestConditionEngine()
	newYear := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		expr     string
		vars     map[string]any
		expected any
	}{
		{
			name:     "string equality true",
			expr:     `resource.environment_id == "prod"`,
			vars:     map[string]any{"resource.environment_id": "prod"},
			expected: true,
		},
		{
			name:     "string equality false",
			expr:     `resource.environment_id == "prod"`,
			vars:     map[string]any{"resource.environment_id": "test"},
			expected: false,
		},
		{
			name:     "threshold exceeded",
			expr:     `statement.affected_rows > 100`,
			vars:     map[string]any{"statement.affected_rows": 150},
			expected: true,
		},
		{
			name:     "membership",
			expr:     `statement.sql_type in ["DROP_TABLE", "TRUNCATE"]`,
			vars:     map[string]any{"statement.sql_type": "TRUNCATE"},
			expected: true,
		},
		{
			name:     "negated membership",
			expr:     `!(statement.sql_type in ["DROP_TABLE", "TRUNCATE"])`,
			vars:     map[string]any{"statement.sql_type": "TRUNCATE"},
			expected: false,
		},
		{
			name:     "prefix",
			expr:     `resource.database_name.startsWith("prod_")`,
			vars:     map[string]any{"resource.database_name": "prod_orders"},
			expected: true,
		},
		{
			name:     "timestamp before",
			expr:     `request.time < timestamp("2024-01-01T00:00:00.000Z")`,
			vars:     map[string]any{"request.time": newYear.Add(-time.Hour)},
			expected: true,
		},
		{
			name: "grouped conditions",
			expr: `(resource.environment_id == "prod" && (statement.affected_rows > 100 || statement.table_rows > 1000))`,
			vars: map[string]any{
				"resource.environment_id": "prod",
				"statement.affected_rows": 10,
				"statement.table_rows":    5000,
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			expr, err := engine.Compile(tt.expr)
			require.NoError(t, err)

			result, err := expr.Evaluate(tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCompiledExpression_EvaluateBool(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine(condition.DefaultCatalog().EnvOptions()...)

	t.Run("returns true", func(t *testing.T) {
		t.Parallel()

		expr, err := engine.Compile(`resource.db_engine == "POSTGRES"`)
		require.NoError(t, err)

		result, err := expr.EvaluateBool(map[string]any{"resource.db_engine": "POSTGRES"})
		require.NoError(t, err)
		assert.True(t, result)
	})

	t.Run("error on non-bool result", func(t *testing.T) {
		t.Parallel()

		expr, err := engine.Compile(`resource.db_engine`)
		require.NoError(t, err)

		_, err = expr.EvaluateBool(map[string]any{"resource.db_engine": "POSTGRES"})
		require.Error(t, err)
		assert.ErrorIs(t, err, cel.ErrInvalidResult)
	})

	t.Run("missing factor wraps ErrEvaluation", func(t *testing.T) {
		t.Parallel()

		expr, err := engine.Compile(`statement.affected_rows > 100`)
		require.NoError(t, err)

		_, err = expr.EvaluateBool(map[string]any{})
		require.Error(t, err)
		assert.ErrorIs(t, err, cel.ErrEvaluation)
	})
}

func TestCheckError_Details(t *testing.T) {
	t.Parallel()

	engine := newTestConditionEngine()

	_, err := engine.Compile(`resource.owner == "alice"`)
	require.Error(t, err)

	var checkErr *cel.CheckError
	require.True(t, errors.As(err, &checkErr))

	assert.Contains(t, checkErr.Error(), "check")
	assert.Contains(t, checkErr.Source, "resource.owner")
	assert.NotEmpty(t, checkErr.Errors)
	assert.Contains(t, checkErr.AsJSON(), `"source"`)
}

func TestEngine_Concurrency(t *testing.T) {
	t.Parallel()

	engine := newTestConditionEngine()

	expr, err := engine.Compile(`statement.affected_rows > 100`)
	require.NoError(t, err)

	const numGoroutines = 100
	var wg sync.WaitGroup
	results := make([]bool, numGoroutines)
	errs := make([]error, numGoroutines)

	for i := range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = expr.EvaluateBool(map[string]any{"statement.affected_rows": i * 2})
		}()
	}
	wg.Wait()

	for i := range numGoroutines {
		require.NoError(t, errs[i])
		assert.Equal(t, i*2 > 100, results[i], "goroutine %d", i)
	}
}
