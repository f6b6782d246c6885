// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"fmt"
	"maps"
	"slices"

	celgo "github.com/google/cel-go/cel"
)

// FactorType is the CEL type a factor evaluates to.
type FactorType int

// Factor types.
const (
	FactorTypeString FactorType = iota + 1
	FactorTypeInt
	FactorTypeDouble
	FactorTypeTimestamp
)

// Well-known factors used by approval and risk rules.
const (
	FactorEnvironmentID   Factor = "resource.environment_id"
	FactorProjectID       Factor = "resource.project_id"
	FactorInstanceID      Factor = "resource.instance_id"
	FactorDBEngine        Factor = "resource.db_engine"
	FactorDatabaseName    Factor = "resource.database_name"
	FactorSchemaName      Factor = "resource.schema_name"
	FactorTableName       Factor = "resource.table_name"
	FactorSQLType         Factor = "statement.sql_type"
	FactorStatementText   Factor = "statement.text"
	FactorAffectedRows    Factor = "statement.affected_rows"
	FactorTableRows       Factor = "statement.table_rows"
	FactorExportFormat    Factor = "request.export_format"
	FactorRowLimit        Factor = "request.row_limit"
	FactorRequestTime     Factor = "request.time"
	FactorExpirationTime  Factor = "request.expiration_timestamp"
	FactorRiskLevelWeight Factor = "risk.level_weight"
)

// FactorCatalog maps known factors to their type.
type FactorCatalog map[Factor]FactorType

// DefaultCatalog returns the built-in factors.
func DefaultCatalog() FactorCatalog {
	return FactorCatalog{
		FactorEnvironmentID:   FactorTypeString,
		FactorProjectID:       FactorTypeString,
		FactorInstanceID:      FactorTypeString,
		FactorDBEngine:        FactorTypeString,
		FactorDatabaseName:    FactorTypeString,
		FactorSchemaName:      FactorTypeString,
		FactorTableName:       FactorTypeString,
		FactorSQLType:         FactorTypeString,
		FactorStatementText:   FactorTypeString,
		FactorAffectedRows:    FactorTypeInt,
		FactorTableRows:       FactorTypeInt,
		FactorExportFormat:    FactorTypeString,
		FactorRowLimit:        FactorTypeInt,
		FactorRequestTime:     FactorTypeTimestamp,
		FactorExpirationTime:  FactorTypeTimestamp,
		FactorRiskLevelWeight: FactorTypeDouble,
	}
}

var (
	numberOperators = []Operator{
		OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpIn, OpNotIn,
	}
	stringOperators = []Operator{
		OpEqual, OpNotEqual, OpIn, OpNotIn, OpContains, OpMatches, OpStartsWith, OpEndsWith,
	}
	timestampOperators = []Operator{
		OpGreater, OpGreaterEqual, OpLess, OpLessEqual,
	}
)

// Operators returns the operators offered for f, or nil for an unknown factor.
func (c FactorCatalog) Operators(f Factor) []Operator {
	switch c[f] {
	case FactorTypeString:
		return slices.Clone(stringOperators)
	case FactorTypeInt, FactorTypeDouble:
		return slices.Clone(numberOperators)
	case FactorTypeTimestamp:
		return slices.Clone(timestampOperators)
	}
	return nil
}

// Factors returns the catalog's factors in sorted order.
func (c FactorCatalog) Factors() []Factor {
	return slices.Sorted(maps.Keys(c))
}

// Check walks expr and reports the first condition whose factor is unknown,
// whose operator is not offered for the factor, or whose value does not have
// the factor's type.
func (c FactorCatalog) Check(expr SimpleExpr) error {
	if isNil(expr) {
		return fmt.Errorf("%w: nil expression", ErrUnsupportedExpr)
	}
	switch e := expr.(type) {
	case *LogicalExpr:
		for _, arg := range e.Args {
			if err := c.Check(arg); err != nil {
				return err
			}
		}
		return nil
	case *ConditionExpr:
		return c.checkCondition(e)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedExpr, expr)
	}
}

func (c FactorCatalog) checkCondition(e *ConditionExpr) error {
	ft, ok := c[e.Factor]
	if !ok {
		return fmt.Errorf("%w: unknown factor %q", ErrInvalidFactor, e.Factor)
	}
	if !slices.Contains(c.Operators(e.Factor), e.Operator) {
		return fmt.Errorf("%w: %q is not offered for %s", ErrUnsupportedOperator, e.Operator, e.Factor)
	}
	values := []Value{e.Value}
	if e.Value.Kind() == ValueKindList {
		values = e.Value.list
	}
	want := ft.valueKind()
	for _, v := range values {
		if v.Kind() != want {
			return fmt.Errorf("%w: %s takes %s values, got %s", ErrOperandMismatch, e.Factor, want, v.Kind())
		}
	}
	return nil
}

// TypedValue converts a plain Go value into the Value kind matching f's type.
// Timestamp factors accept RFC 3339 strings.
func (c FactorCatalog) TypedValue(f Factor, x any) (Value, error) {
	ft, ok := c[f]
	if !ok {
		return Value{}, fmt.Errorf("%w: unknown factor %q", ErrInvalidFactor, f)
	}
	v, err := ValueOf(x)
	if err != nil {
		return Value{}, err
	}
	if v.Kind() == ValueKindList {
		elems := make([]Value, len(v.list))
		for i, e := range v.list {
			if elems[i], err = coerce(ft, e); err != nil {
				return Value{}, err
			}
		}
		return List(elems...), nil
	}
	return coerce(ft, v)
}

func coerce(ft FactorType, v Value) (Value, error) {
	switch {
	case ft == FactorTypeTimestamp && v.Kind() == ValueKindString:
		t, err := parseTimestamp(v.str)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
		}
		return Time(t), nil
	case ft == FactorTypeDouble && v.Kind() == ValueKindInt:
		return Double(float64(v.i)), nil
	case v.Kind() == ft.valueKind():
		return v, nil
	}
	return Value{}, fmt.Errorf("%w: want %s, got %s", ErrOperandMismatch, ft.valueKind(), v.Kind())
}

// EnvOptions declares every factor as a CEL variable of its type so condition
// text can be type-checked and evaluated.
func (c FactorCatalog) EnvOptions() []celgo.EnvOption {
	opts := make([]celgo.EnvOption, 0, len(c))
	for _, f := range c.Factors() {
		opts = append(opts, celgo.Variable(string(f), c[f].celType()))
	}
	return opts
}

func (ft FactorType) valueKind() ValueKind {
	switch ft {
	case FactorTypeString:
		return ValueKindString
	case FactorTypeInt:
		return ValueKindInt
	case FactorTypeDouble:
		return ValueKindDouble
	case FactorTypeTimestamp:
		return ValueKindTimestamp
	}
	return ValueKindInvalid
}

func (ft FactorType) celType() *celgo.Type {
	switch ft {
	case FactorTypeString:
		return celgo.StringType
	case FactorTypeInt:
		return celgo.IntType
	case FactorTypeDouble:
		return celgo.DoubleType
	case FactorTypeTimestamp:
		return celgo.TimestampType
	}
	return celgo.DynType
}
