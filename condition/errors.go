// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"errors"
	"fmt"
)

// Sentinel errors for building, rendering and resolving condition trees.
var (
	// ErrUnsupportedOperator is returned for an operator outside the supported set,
	// or one used in the wrong position (a comparison as a group operator).
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrUnsupportedValue is returned for a value that cannot be rendered as a CEL
	// literal or that does not fit the operator it is used with.
	ErrUnsupportedValue = errors.New("unsupported value type")

	// ErrEmptyGroup is returned for a logical group without children.
	ErrEmptyGroup = errors.New("logical group has no conditions")

	// ErrOperandMismatch is returned when a condition's value kind does not match
	// the operator kind, for example a list used with ==. It wraps
	// ErrUnsupportedValue.
	ErrOperandMismatch = fmt.Errorf("%w: value does not match operator", ErrUnsupportedValue)

	// ErrUnsupportedExpr is returned when a CEL expression tree uses constructs
	// outside the condition subset.
	ErrUnsupportedExpr = errors.New("unsupported expression")

	// ErrInvalidFactor is returned for an empty or malformed factor path.
	ErrInvalidFactor = errors.New("invalid factor")
)
