// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"fmt"
	"strings"

	celpb "cel.dev/expr"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/overloads"
)

// Build converts a condition tree directly into a CEL expression tree, without
// going through source text. Node ids are assigned from 1 in visit order.
//
// A single-child group builds to its child; longer groups build to left-nested
// binary calls. Resolve(Build(x)) therefore returns the normalized form of x.
func Build(expr SimpleExpr) (*celpb.Expr, error) {
	b := &builder{}
	return b.expr(expr)
}

type builder struct {
	lastID int64
}

func (b *builder) nextID() int64 {
	b.lastID++
	return b.lastID
}

func (b *builder) expr(expr SimpleExpr) (*celpb.Expr, error) {
	if isNil(expr) {
		return nil, fmt.Errorf("%w: nil expression", ErrUnsupportedExpr)
	}
	switch e := expr.(type) {
	case *LogicalExpr:
		return b.group(e)
	case *ConditionExpr:
		return b.condition(e)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedExpr, expr)
	}
}

func (b *builder) group(g *LogicalExpr) (*celpb.Expr, error) {
	if g.Operator.Kind() != OperatorKindLogical {
		return nil, fmt.Errorf("%w: %q as group operator", ErrUnsupportedOperator, g.Operator)
	}
	if len(g.Args) == 0 {
		return nil, ErrEmptyGroup
	}
	acc, err := b.expr(g.Args[0])
	if err != nil {
		return nil, err
	}
	for _, arg := range g.Args[1:] {
		next, err := b.expr(arg)
		if err != nil {
			return nil, err
		}
		acc = b.call(nil, string(g.Operator), acc, next)
	}
	return acc, nil
}

func (b *builder) condition(c *ConditionExpr) (*celpb.Expr, error) {
	if err := checkOperand(c.Operator, c.Value); err != nil {
		return nil, err
	}
	f := b.factor(c.Factor)
	switch c.Operator.Kind() {
	case OperatorKindEquality, OperatorKindCompare:
		v, err := b.value(c.Value)
		if err != nil {
			return nil, err
		}
		return b.call(nil, string(c.Operator), f, v), nil
	case OperatorKindCollection:
		v, err := b.value(c.Value)
		if err != nil {
			return nil, err
		}
		in := b.call(nil, operators.In, f, v)
		if c.Operator == OpNotIn {
			return b.call(nil, operators.LogicalNot, in), nil
		}
		return in, nil
	case OperatorKindString:
		v, err := b.value(c.Value)
		if err != nil {
			return nil, err
		}
		return b.call(f, string(c.Operator), v), nil
	case OperatorKindLogical, OperatorKindUnknown:
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, c.Operator)
}

func (b *builder) factor(f Factor) *celpb.Expr {
	parts := strings.Split(string(f), ".")
	e := &celpb.Expr{
		Id:       b.nextID(),
		ExprKind: &celpb.Expr_IdentExpr{IdentExpr: &celpb.Expr_Ident{Name: parts[0]}},
	}
	for _, field := range parts[1:] {
		e = &celpb.Expr{
			Id:       b.nextID(),
			ExprKind: &celpb.Expr_SelectExpr{SelectExpr: &celpb.Expr_Select{Operand: e, Field: field}},
		}
	}
	return e
}

func (b *builder) value(v Value) (*celpb.Expr, error) {
	if err := checkLiteral(v); err != nil {
		return nil, err
	}
	switch v.kind {
	case ValueKindString:
		return b.constant(&celpb.Constant{ConstantKind: &celpb.Constant_StringValue{StringValue: v.str}}), nil
	case ValueKindInt:
		return b.constant(&celpb.Constant{ConstantKind: &celpb.Constant_Int64Value{Int64Value: v.i}}), nil
	case ValueKindDouble:
		if _, err := formatDouble(v.d); err != nil {
			return nil, err
		}
		return b.constant(&celpb.Constant{ConstantKind: &celpb.Constant_DoubleValue{DoubleValue: v.d}}), nil
	case ValueKindTimestamp:
		s := b.constant(&celpb.Constant{ConstantKind: &celpb.Constant_StringValue{
			StringValue: v.t.UTC().Format(timestampLayout),
		}})
		return b.call(nil, overloads.TypeConvertTimestamp, s), nil
	case ValueKindList:
		elems := make([]*celpb.Expr, 0, len(v.list))
		for _, el := range v.list {
			if !el.IsScalar() {
				return nil, fmt.Errorf("%w: %s inside list", ErrUnsupportedValue, el.Kind())
			}
			e, err := b.value(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return &celpb.Expr{
			Id:       b.nextID(),
			ExprKind: &celpb.Expr_ListExpr{ListExpr: &celpb.Expr_CreateList{Elements: elems}},
		}, nil
	case ValueKindInvalid:
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, v.kind)
}

func (b *builder) constant(c *celpb.Constant) *celpb.Expr {
	return &celpb.Expr{Id: b.nextID(), ExprKind: &celpb.Expr_ConstExpr{ConstExpr: c}}
}

func (b *builder) call(target *celpb.Expr, fn string, args ...*celpb.Expr) *celpb.Expr {
	return &celpb.Expr{
		Id: b.nextID(),
		ExprKind: &celpb.Expr_CallExpr{CallExpr: &celpb.Expr_Call{
			Target:   target,
			Function: fn,
			Args:     args,
		}},
	}
}
