// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// Bounds of CEL's timestamp type.
var (
	minTimestamp = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxTimestamp = time.Date(9999, time.December, 31, 23, 59, 59, 999_000_000, time.UTC)
)

// ValueKind discriminates the variants of Value.
type ValueKind int

// Value kinds. The zero Value has ValueKindInvalid.
const (
	ValueKindInvalid ValueKind = iota
	ValueKindString
	ValueKindInt
	ValueKindDouble
	ValueKindTimestamp
	ValueKindList
)

func (k ValueKind) String() string {
	switch k {
	case ValueKindString:
		return "string"
	case ValueKindInt:
		return "int"
	case ValueKindDouble:
		return "double"
	case ValueKindTimestamp:
		return "timestamp"
	case ValueKindList:
		return "list"
	case ValueKindInvalid:
		return "invalid"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is the literal operand of a condition. Timestamps are held in UTC with
// millisecond precision, which is what the stringifier renders.
type Value struct {
	kind ValueKind
	str  string
	i    int64
	d    float64
	t    time.Time
	list []Value
}

// Str returns a string value.
func Str(s string) Value { return Value{kind: ValueKindString, str: s} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: ValueKindInt, i: i} }

// Double returns a floating point value.
func Double(d float64) Value { return Value{kind: ValueKindDouble, d: d} }

// Time returns a timestamp value.
func Time(t time.Time) Value {
	return Value{kind: ValueKindTimestamp, t: t.UTC().Truncate(time.Millisecond)}
}

// List returns a list value. Elements must be scalars for the value to be
// usable with a collection operator.
func List(elems ...Value) Value {
	return Value{kind: ValueKindList, list: append([]Value{}, elems...)}
}

// Strs is shorthand for a list of string values.
func Strs(elems ...string) Value {
	vals := make([]Value, len(elems))
	for i, s := range elems {
		vals[i] = Str(s)
	}
	return List(vals...)
}

// checkLiteral rejects scalars that have no CEL literal reading back as the
// same value: strings that are not valid UTF-8 and timestamps outside CEL's
// range.
func checkLiteral(v Value) error {
	switch v.kind {
	case ValueKindString:
		if !utf8.ValidString(v.str) {
			return fmt.Errorf("%w: string %q is not valid UTF-8", ErrUnsupportedValue, v.str)
		}
	case ValueKindTimestamp:
		if v.t.Before(minTimestamp) || v.t.After(maxTimestamp) {
			return fmt.Errorf("%w: timestamp %s is outside 0001-01-01 to 9999-12-31",
				ErrUnsupportedValue, v.t.Format(time.RFC3339))
		}
	case ValueKindInvalid, ValueKindInt, ValueKindDouble, ValueKindList:
	}
	return nil
}

// Kind returns the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// IsScalar reports whether v is a string, number or timestamp.
func (v Value) IsScalar() bool {
	switch v.kind {
	case ValueKindString, ValueKindInt, ValueKindDouble, ValueKindTimestamp:
		return true
	case ValueKindInvalid, ValueKindList:
		return false
	}
	return false
}

// IsEmpty reports whether v carries nothing a user entered: the zero Value, an
// empty string or an empty list.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case ValueKindInvalid:
		return true
	case ValueKindString:
		return v.str == ""
	case ValueKindList:
		return len(v.list) == 0
	case ValueKindInt, ValueKindDouble, ValueKindTimestamp:
		return false
	}
	return true
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == ValueKindString }

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == ValueKindInt }

// AsDouble returns the float held by v.
func (v Value) AsDouble() (float64, bool) { return v.d, v.kind == ValueKindDouble }

// AsTime returns the timestamp held by v.
func (v Value) AsTime() (time.Time, bool) { return v.t, v.kind == ValueKindTimestamp }

// Elements returns a copy of the elements of a list value, or nil.
func (v Value) Elements() []Value {
	if v.kind != ValueKindList {
		return nil
	}
	return append([]Value{}, v.list...)
}

// Any returns v as a plain Go value: string, int64, float64, time.Time or []any.
func (v Value) Any() any {
	switch v.kind {
	case ValueKindString:
		return v.str
	case ValueKindInt:
		return v.i
	case ValueKindDouble:
		return v.d
	case ValueKindTimestamp:
		return v.t
	case ValueKindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Any()
		}
		return out
	case ValueKindInvalid:
		return nil
	}
	return nil
}

// ValueOf converts a Go value into a Value. It accepts strings, integers that
// fit in int64, floats, time.Time and slices of those.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case Value:
		return v, nil
	case string:
		return Str(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return uintValue(uint64(v))
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		return uintValue(v)
	case float32:
		return Double(float64(v)), nil
	case float64:
		return Double(v), nil
	case time.Time:
		return Time(v), nil
	case []string:
		return Strs(v...), nil
	case []int64:
		vals := make([]Value, len(v))
		for i, n := range v {
			vals[i] = Int(n)
		}
		return List(vals...), nil
	case []any:
		vals := make([]Value, len(v))
		for i, e := range v {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}
			if !ev.IsScalar() {
				return Value{}, fmt.Errorf("%w: nested %s in list", ErrUnsupportedValue, ev.Kind())
			}
			vals[i] = ev
		}
		return List(vals...), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
	}
}

func uintValue(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, u)
	}
	return Int(int64(u)), nil
}
