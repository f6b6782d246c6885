// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"fmt"

	"github.com/stacklok/cel-conditions/validation/factor"
)

// Factor is the dotted attribute path a condition tests, such as
// "resource.database_name".
type Factor string

// ExprKind discriminates the variants of SimpleExpr.
type ExprKind int

const (
	// ExprKindCondition is a single factor test.
	ExprKindCondition ExprKind = iota + 1
	// ExprKindGroup is a logical combination of child expressions.
	ExprKindGroup
)

// SimpleExpr is a node of a condition tree. It is implemented only by
// *ConditionExpr and *LogicalExpr.
type SimpleExpr interface {
	Kind() ExprKind
	isSimpleExpr()
}

// ConditionExpr tests one factor against a literal value.
type ConditionExpr struct {
	Operator Operator
	Factor   Factor
	Value    Value
}

// Kind implements SimpleExpr.
func (*ConditionExpr) Kind() ExprKind { return ExprKindCondition }

func (*ConditionExpr) isSimpleExpr() {}

// LogicalExpr joins its children with && or ||.
type LogicalExpr struct {
	Operator Operator
	Args     []SimpleExpr
}

// Kind implements SimpleExpr.
func (*LogicalExpr) Kind() ExprKind { return ExprKindGroup }

func (*LogicalExpr) isSimpleExpr() {}

// NewCondition builds a condition, checking that the factor is a valid path
// and that the value fits the operator:
//   - equality and compare operators take a scalar
//   - collection operators take a list of scalars
//   - string predicates take a string
func NewCondition(op Operator, f Factor, v Value) (*ConditionExpr, error) {
	if err := factor.ValidateName(string(f)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFactor, err)
	}
	if err := checkOperand(op, v); err != nil {
		return nil, err
	}
	return &ConditionExpr{Operator: op, Factor: f, Value: v}, nil
}

// MustCondition is NewCondition for static trees; it panics on error.
func MustCondition(op Operator, f Factor, v Value) *ConditionExpr {
	c, err := NewCondition(op, f, v)
	if err != nil {
		panic(err)
	}
	return c
}

// NewGroup builds a logical group. Empty groups are rejected.
func NewGroup(op Operator, args ...SimpleExpr) (*LogicalExpr, error) {
	if op.Kind() != OperatorKindLogical {
		return nil, fmt.Errorf("%w: %q is not a logical operator", ErrUnsupportedOperator, op)
	}
	if len(args) == 0 {
		return nil, ErrEmptyGroup
	}
	for i, arg := range args {
		if isNil(arg) {
			return nil, fmt.Errorf("%w: nil child at index %d", ErrUnsupportedExpr, i)
		}
	}
	return &LogicalExpr{Operator: op, Args: append([]SimpleExpr{}, args...)}, nil
}

// And is NewGroup(OpAnd, args...).
func And(args ...SimpleExpr) (*LogicalExpr, error) { return NewGroup(OpAnd, args...) }

// Or is NewGroup(OpOr, args...).
func Or(args ...SimpleExpr) (*LogicalExpr, error) { return NewGroup(OpOr, args...) }

// WrapAsGroup returns expr unchanged when it already is a group with operator
// op, and otherwise a single-child group holding expr.
func WrapAsGroup(expr SimpleExpr, op Operator) *LogicalExpr {
	if g, ok := expr.(*LogicalExpr); ok && g != nil && g.Operator == op {
		return g
	}
	return &LogicalExpr{Operator: op, Args: []SimpleExpr{expr}}
}

// Normalize unwraps single-child groups and merges a group into its parent
// when both use the same operator. The result stringifies to CEL with the
// same meaning as expr.
func Normalize(expr SimpleExpr) SimpleExpr {
	g, ok := expr.(*LogicalExpr)
	if !ok || g == nil {
		return expr
	}
	args := make([]SimpleExpr, 0, len(g.Args))
	for _, arg := range g.Args {
		arg = Normalize(arg)
		if child, ok := arg.(*LogicalExpr); ok && child.Operator == g.Operator {
			args = append(args, child.Args...)
			continue
		}
		args = append(args, arg)
	}
	if len(args) == 1 {
		return args[0]
	}
	return &LogicalExpr{Operator: g.Operator, Args: args}
}

func checkOperand(op Operator, v Value) error {
	switch op.Kind() {
	case OperatorKindEquality, OperatorKindCompare:
		if !v.IsScalar() {
			return fmt.Errorf("%w: %s needs a scalar, got %s", ErrOperandMismatch, op, v.Kind())
		}
		return checkLiteral(v)
	case OperatorKindCollection:
		if v.Kind() != ValueKindList {
			return fmt.Errorf("%w: %s needs a list, got %s", ErrOperandMismatch, op, v.Kind())
		}
		for _, e := range v.list {
			if !e.IsScalar() {
				return fmt.Errorf("%w: %s list holds a %s", ErrOperandMismatch, op, e.Kind())
			}
			if err := checkLiteral(e); err != nil {
				return err
			}
		}
	case OperatorKindString:
		if v.Kind() != ValueKindString {
			return fmt.Errorf("%w: %s needs a string, got %s", ErrOperandMismatch, op, v.Kind())
		}
		return checkLiteral(v)
	case OperatorKindLogical:
		return fmt.Errorf("%w: %q joins groups, not values", ErrUnsupportedOperator, op)
	case OperatorKindUnknown:
		return fmt.Errorf("%w: %q", ErrUnsupportedOperator, op)
	}
	return nil
}

func isNil(e SimpleExpr) bool {
	switch n := e.(type) {
	case nil:
		return true
	case *ConditionExpr:
		return n == nil
	case *LogicalExpr:
		return n == nil
	}
	return false
}
