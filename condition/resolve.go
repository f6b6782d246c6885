// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"fmt"
	"math"
	"strings"
	"time"

	celpb "cel.dev/expr"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/overloads"
)

// Resolve maps a parsed CEL expression back onto a condition tree.
//
// Chains of the same logical operator are flattened into one group, so the
// result is normalized: Resolve never returns a single-child group or a group
// nested directly inside a group with the same operator. A bare condition
// resolves to a *ConditionExpr; use WrapAsGroup when the editor needs a group.
func Resolve(e *celpb.Expr) (SimpleExpr, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil expression", ErrUnsupportedExpr)
	}
	call := e.GetCallExpr()
	if call == nil {
		return nil, fmt.Errorf("%w: expression %d is not a call", ErrUnsupportedExpr, e.GetId())
	}

	fn := call.GetFunction()
	switch op := Operator(fn); {
	case call.GetTarget() == nil && op.Kind() == OperatorKindLogical:
		return resolveGroup(op, call)
	case call.GetTarget() == nil && fn == operators.LogicalNot:
		return resolveNegation(call)
	case call.GetTarget() == nil && (op.Kind() == OperatorKindEquality || op.Kind() == OperatorKindCompare):
		return resolveBinary(op, call)
	case call.GetTarget() == nil && (fn == operators.In || fn == operators.OldIn):
		return resolveIn(OpIn, call)
	case call.GetTarget() != nil && op.Kind() == OperatorKindString:
		return resolveStringPredicate(op, call)
	}
	return nil, fmt.Errorf("%w: function %q", ErrUnsupportedExpr, fn)
}

func resolveGroup(op Operator, call *celpb.Expr_Call) (SimpleExpr, error) {
	var operands []*celpb.Expr
	collectOperands(string(op), call, &operands)

	args := make([]SimpleExpr, 0, len(operands))
	for _, operand := range operands {
		arg, err := Resolve(operand)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return NewGroup(op, args...)
}

// collectOperands flattens nested calls of fn into their leaf operands, in
// source order.
func collectOperands(fn string, call *celpb.Expr_Call, out *[]*celpb.Expr) {
	for _, arg := range call.GetArgs() {
		if inner := arg.GetCallExpr(); inner != nil && inner.GetTarget() == nil && inner.GetFunction() == fn {
			collectOperands(fn, inner, out)
			continue
		}
		*out = append(*out, arg)
	}
}

func resolveNegation(call *celpb.Expr_Call) (SimpleExpr, error) {
	if len(call.GetArgs()) != 1 {
		return nil, fmt.Errorf("%w: negation takes one argument", ErrUnsupportedExpr)
	}
	inner := call.GetArgs()[0].GetCallExpr()
	if inner == nil || inner.GetTarget() != nil ||
		(inner.GetFunction() != operators.In && inner.GetFunction() != operators.OldIn) {
		return nil, fmt.Errorf("%w: negation is only supported around membership", ErrUnsupportedExpr)
	}
	return resolveIn(OpNotIn, inner)
}

func resolveBinary(op Operator, call *celpb.Expr_Call) (SimpleExpr, error) {
	if len(call.GetArgs()) != 2 {
		return nil, fmt.Errorf("%w: %s takes two arguments", ErrUnsupportedExpr, op)
	}
	f, err := factorPath(call.GetArgs()[0])
	if err != nil {
		return nil, err
	}
	v, err := literal(call.GetArgs()[1])
	if err != nil {
		return nil, err
	}
	return NewCondition(op, f, v)
}

func resolveIn(op Operator, call *celpb.Expr_Call) (SimpleExpr, error) {
	if len(call.GetArgs()) != 2 {
		return nil, fmt.Errorf("%w: in takes two arguments", ErrUnsupportedExpr)
	}
	f, err := factorPath(call.GetArgs()[0])
	if err != nil {
		return nil, err
	}
	list := call.GetArgs()[1].GetListExpr()
	if list == nil {
		return nil, fmt.Errorf("%w: right side of in must be a list literal", ErrUnsupportedExpr)
	}
	if len(list.GetOptionalIndices()) > 0 {
		return nil, fmt.Errorf("%w: optional list elements", ErrUnsupportedExpr)
	}
	elems := make([]Value, 0, len(list.GetElements()))
	for _, el := range list.GetElements() {
		v, err := literal(el)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return NewCondition(op, f, List(elems...))
}

func resolveStringPredicate(op Operator, call *celpb.Expr_Call) (SimpleExpr, error) {
	if len(call.GetArgs()) != 1 {
		return nil, fmt.Errorf("%w: %s takes one argument", ErrUnsupportedExpr, op)
	}
	f, err := factorPath(call.GetTarget())
	if err != nil {
		return nil, err
	}
	v, err := literal(call.GetArgs()[0])
	if err != nil {
		return nil, err
	}
	return NewCondition(op, f, v)
}

// factorPath folds an identifier or a chain of field selections into a dotted
// factor name.
func factorPath(e *celpb.Expr) (Factor, error) {
	var parts []string
	for cur := e; ; {
		switch kind := cur.GetExprKind().(type) {
		case *celpb.Expr_IdentExpr:
			parts = append(parts, kind.IdentExpr.GetName())
			for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
				parts[i], parts[j] = parts[j], parts[i]
			}
			return Factor(strings.Join(parts, ".")), nil
		case *celpb.Expr_SelectExpr:
			if kind.SelectExpr.GetTestOnly() {
				return "", fmt.Errorf("%w: presence test on %q", ErrUnsupportedExpr, kind.SelectExpr.GetField())
			}
			parts = append(parts, kind.SelectExpr.GetField())
			cur = kind.SelectExpr.GetOperand()
		default:
			return "", fmt.Errorf("%w: expression %d is not a factor path", ErrUnsupportedExpr, cur.GetId())
		}
	}
}

// literal reads a constant, or a timestamp("...") call, as a Value.
func literal(e *celpb.Expr) (Value, error) {
	if call := e.GetCallExpr(); call != nil {
		if call.GetTarget() == nil && call.GetFunction() == overloads.TypeConvertTimestamp && len(call.GetArgs()) == 1 {
			if s, ok := call.GetArgs()[0].GetConstExpr().GetConstantKind().(*celpb.Constant_StringValue); ok {
				t, err := parseTimestamp(s.StringValue)
				if err != nil {
					return Value{}, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
				}
				return Time(t), nil
			}
		}
		return Value{}, fmt.Errorf("%w: call %q is not a literal", ErrUnsupportedValue, call.GetFunction())
	}

	c := e.GetConstExpr()
	if c == nil {
		return Value{}, fmt.Errorf("%w: expression %d is not a literal", ErrUnsupportedValue, e.GetId())
	}
	switch kind := c.GetConstantKind().(type) {
	case *celpb.Constant_StringValue:
		return Str(kind.StringValue), nil
	case *celpb.Constant_Int64Value:
		return Int(kind.Int64Value), nil
	case *celpb.Constant_Uint64Value:
		if kind.Uint64Value > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %du overflows int64", ErrUnsupportedValue, kind.Uint64Value)
		}
		return Int(int64(kind.Uint64Value)), nil
	case *celpb.Constant_DoubleValue:
		return Double(kind.DoubleValue), nil
	case *celpb.Constant_TimestampValue:
		return Time(kind.TimestampValue.AsTime()), nil
	}
	return Value{}, fmt.Errorf("%w: constant %T", ErrUnsupportedValue, c.GetConstantKind())
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
