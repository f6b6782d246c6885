// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package condition

import "github.com/stacklok/cel-conditions/validation/factor"

// Validate reports whether expr is complete enough to save: every group has
// children and a logical operator, and every condition has a valid factor, a
// supported operator and a non-empty value of the right shape.
func Validate(expr SimpleExpr) bool {
	if isNil(expr) {
		return false
	}
	switch e := expr.(type) {
	case *LogicalExpr:
		if e.Operator.Kind() != OperatorKindLogical || len(e.Args) == 0 {
			return false
		}
		for _, arg := range e.Args {
			if !Validate(arg) {
				return false
			}
		}
		return true
	case *ConditionExpr:
		if factor.ValidateName(string(e.Factor)) != nil {
			return false
		}
		if checkOperand(e.Operator, e.Value) != nil {
			return false
		}
		return !e.Value.IsEmpty()
	}
	return false
}
