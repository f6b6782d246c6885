// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// timestampLayout is ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Stringify renders a condition tree as CEL source text.
//
// Every group is parenthesized, including single-child groups, so the output
// never depends on operator precedence:
//
//	(resource.environment_id == "prod" && (statement.affected_rows > 100 || statement.sql_type in ["DROP_TABLE"]))
func Stringify(expr SimpleExpr) (string, error) {
	var sb strings.Builder
	if err := writeExpr(&sb, expr); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeExpr(sb *strings.Builder, expr SimpleExpr) error {
	if isNil(expr) {
		return fmt.Errorf("%w: nil expression", ErrUnsupportedExpr)
	}
	switch e := expr.(type) {
	case *LogicalExpr:
		return writeGroup(sb, e)
	case *ConditionExpr:
		return writeCondition(sb, e)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedExpr, expr)
	}
}

func writeGroup(sb *strings.Builder, g *LogicalExpr) error {
	if g.Operator.Kind() != OperatorKindLogical {
		return fmt.Errorf("%w: %q as group operator", ErrUnsupportedOperator, g.Operator)
	}
	if len(g.Args) == 0 {
		return ErrEmptyGroup
	}
	tok, _ := g.Operator.Token()
	sb.WriteByte('(')
	for i, arg := range g.Args {
		if i > 0 {
			sb.WriteString(" " + tok + " ")
		}
		if err := writeExpr(sb, arg); err != nil {
			return err
		}
	}
	sb.WriteByte(')')
	return nil
}

func writeCondition(sb *strings.Builder, c *ConditionExpr) error {
	if err := checkOperand(c.Operator, c.Value); err != nil {
		return err
	}
	switch c.Operator.Kind() {
	case OperatorKindEquality, OperatorKindCompare:
		tok, _ := c.Operator.Token()
		sb.WriteString(string(c.Factor) + " " + tok + " ")
		return writeValue(sb, c.Value)
	case OperatorKindCollection:
		if c.Operator == OpNotIn {
			sb.WriteString("!(")
		}
		sb.WriteString(string(c.Factor) + " in ")
		if err := writeValue(sb, c.Value); err != nil {
			return err
		}
		if c.Operator == OpNotIn {
			sb.WriteByte(')')
		}
		return nil
	case OperatorKindString:
		sb.WriteString(string(c.Factor) + "." + string(c.Operator) + "(")
		if err := writeValue(sb, c.Value); err != nil {
			return err
		}
		sb.WriteByte(')')
		return nil
	case OperatorKindLogical, OperatorKindUnknown:
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedOperator, c.Operator)
}

func writeValue(sb *strings.Builder, v Value) error {
	if err := checkLiteral(v); err != nil {
		return err
	}
	switch v.kind {
	case ValueKindString:
		sb.WriteString(quote(v.str))
	case ValueKindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case ValueKindDouble:
		s, err := formatDouble(v.d)
		if err != nil {
			return err
		}
		sb.WriteString(s)
	case ValueKindTimestamp:
		sb.WriteString(`timestamp("` + v.t.UTC().Format(timestampLayout) + `")`)
	case ValueKindList:
		sb.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			if !e.IsScalar() {
				return fmt.Errorf("%w: %s inside list", ErrUnsupportedValue, e.Kind())
			}
			if err := writeValue(sb, e); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case ValueKindInvalid:
		return fmt.Errorf("%w: missing value", ErrUnsupportedValue)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedValue, v.kind)
	}
	return nil
}

// quote renders s as a double-quoted CEL string literal. s must be valid
// UTF-8: Go writes invalid bytes as \xHH, which CEL reads as U+00HH.
func quote(s string) string {
	return strconv.Quote(s)
}

// formatDouble renders d with the fewest digits that round-trip, keeping a
// decimal point or exponent so CEL reads the literal back as a double.
func formatDouble(d float64) (string, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return "", fmt.Errorf("%w: %v has no CEL literal", ErrUnsupportedValue, d)
	}
	s := strconv.FormatFloat(d, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, nil
}
