// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package condition

import "github.com/google/cel-go/common/operators"

// Operator names a condition or group operator. Values match the CEL function
// names where CEL has one.
type Operator string

// Supported operators.
const (
	OpEqual        Operator = operators.Equals
	OpNotEqual     Operator = operators.NotEquals
	OpGreater      Operator = operators.Greater
	OpGreaterEqual Operator = operators.GreaterEquals
	OpLess         Operator = operators.Less
	OpLessEqual    Operator = operators.LessEquals

	OpIn    Operator = operators.In
	OpNotIn Operator = "@not_in"

	OpContains   Operator = "contains"
	OpMatches    Operator = "matches"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"

	OpAnd Operator = operators.LogicalAnd
	OpOr  Operator = operators.LogicalOr
)

// OperatorKind groups operators by the shape of their operands.
type OperatorKind int

const (
	// OperatorKindUnknown is the kind of any operator outside the supported set.
	OperatorKindUnknown OperatorKind = iota
	// OperatorKindEquality covers == and !=.
	OperatorKindEquality
	// OperatorKindCompare covers ordering comparisons.
	OperatorKindCompare
	// OperatorKindCollection covers membership in a list literal.
	OperatorKindCollection
	// OperatorKindString covers receiver-style string predicates.
	OperatorKindString
	// OperatorKindLogical covers && and ||.
	OperatorKindLogical
)

var operatorKinds = map[Operator]OperatorKind{
	OpEqual:        OperatorKindEquality,
	OpNotEqual:     OperatorKindEquality,
	OpGreater:      OperatorKindCompare,
	OpGreaterEqual: OperatorKindCompare,
	OpLess:         OperatorKindCompare,
	OpLessEqual:    OperatorKindCompare,
	OpIn:           OperatorKindCollection,
	OpNotIn:        OperatorKindCollection,
	OpContains:     OperatorKindString,
	OpMatches:      OperatorKindString,
	OpStartsWith:   OperatorKindString,
	OpEndsWith:     OperatorKindString,
	OpAnd:          OperatorKindLogical,
	OpOr:           OperatorKindLogical,
}

// infix tokens for equality, compare and logical operators.
var infixTokens = map[Operator]string{
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpAnd:          "&&",
	OpOr:           "||",
}

// Kind returns the operator kind, or OperatorKindUnknown.
func (o Operator) Kind() OperatorKind {
	return operatorKinds[o]
}

// Token returns the CEL source token for infix operators and the method name
// for string predicates. It returns false for collection and unknown operators.
func (o Operator) Token() (string, bool) {
	if tok, ok := infixTokens[o]; ok {
		return tok, true
	}
	if o.Kind() == OperatorKindString {
		return string(o), true
	}
	return "", false
}

// Operators returns every supported operator in a stable order.
func Operators() []Operator {
	return []Operator{
		OpEqual, OpNotEqual,
		OpGreater, OpGreaterEqual, OpLess, OpLessEqual,
		OpIn, OpNotIn,
		OpContains, OpMatches, OpStartsWith, OpEndsWith,
		OpAnd, OpOr,
	}
}
