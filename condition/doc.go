// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package condition models UI-editable conditions and compiles them to CEL.

A condition tree is a [SimpleExpr]: either a [*ConditionExpr] that tests one
factor against a literal, or a [*LogicalExpr] that joins children with && or
||. Trees are plain values; editors rebuild them on every change.

# Building Trees

Constructors check operand shapes up front:

	risky, err := condition.NewCondition(condition.OpGreater,
		condition.FactorAffectedRows, condition.Int(100))
	ddl, err := condition.NewCondition(condition.OpIn,
		condition.FactorSQLType, condition.Strs("DROP_TABLE", "TRUNCATE"))
	rule, err := condition.Or(risky, ddl)

Empty groups are rejected by [NewGroup].

# Rendering CEL

[Stringify] renders a tree as CEL source. Groups are always parenthesized:

	text, err := condition.Stringify(rule)
	// (statement.affected_rows > 100 || statement.sql_type in ["DROP_TABLE", "TRUNCATE"])

Strings are double-quoted with Go escapes, which CEL accepts. Timestamps render
as timestamp("2024-01-01T00:00:00.000Z") in UTC with millisecond precision.

# Reading CEL Back

[Resolve] maps a parsed cel.dev/expr tree back onto a condition tree, and
[Build] produces that tree directly. Both reject constructs outside the
condition subset with [ErrUnsupportedExpr] or [ErrUnsupportedValue].

# Factors

[FactorCatalog] records the type of each known factor, the operators an editor
offers for it, and the CEL declarations needed to type-check rendered text.
*/
package condition
