// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package cel wraps cel-go for condition expressions: parsing to and unparsing
from the v1alpha1 expression tree, type-checking against declared factors, and
evaluation.

The engine lazily builds and caches one CEL environment, reports parse and
type-check failures as structured errors with line and column details, and
bounds expression length and evaluation cost.

# Parsing and Unparsing

Parsing needs no declarations. The result is the tree cel-go produces, with
source positions and macro calls:

	engine := cel.NewEngine()
	parsed, err := engine.Parse(`statement.affected_rows > 100`)

	text, err := cel.Unparse(parsed)
	// statement.affected_rows > 100

Unparse drops parentheses that precedence makes redundant.

# Checking and Evaluating

Declare factors as variables to type-check or evaluate:

	engine := cel.NewEngine(condition.DefaultCatalog().EnvOptions()...)

	err := engine.Check(`resource.environment_id == "prod"`)

	expr, err := engine.Compile(`statement.affected_rows > 100`)
	ok, err := expr.EvaluateBool(map[string]any{"statement.affected_rows": 150})
	// ok == true

# Error Handling

Failures are returned as structured types with location information:

	_, err := engine.Parse(`statement.affected_rows >`)
	var parseErr *cel.ParseError
	if errors.As(err, &parseErr) {
	    fmt.Println(parseErr.Source)  // the original expression
	    fmt.Println(parseErr.Errors) // line/column/message details
	}

	err = engine.Check(`resource.owner == "alice"`)
	var checkErr *cel.CheckError
	if errors.As(err, &checkErr) {
	    fmt.Println(checkErr.AsJSON()) // structured JSON error details
	}

Both wrap [ErrExpressionCheck]. Unparse failures wrap [ErrUnparse].

# Limits

Expressions longer than [DefaultMaxExpressionLength] are rejected before
parsing, and evaluation stops after [DefaultCostLimit] cost units:

	engine := cel.NewEngine(opts...).
	    WithMaxExpressionLength(5000).
	    WithCostLimit(500000)

# Concurrency

The Engine and CompiledExpression types are safe for concurrent use. A compiled
expression can be evaluated from multiple goroutines simultaneously.
*/
package cel
