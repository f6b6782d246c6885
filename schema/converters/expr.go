// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package converters

import (
	"bytes"

	celpb "cel.dev/expr"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ConvertOldExprToNew converts a v1alpha1 Expr into a cel.dev/expr Expr.
func ConvertOldExprToNew(e *exprpb.Expr) *celpb.Expr {
	if e == nil {
		return nil
	}
	out := &celpb.Expr{Id: e.GetId()}
	switch kind := e.GetExprKind().(type) {
	case *exprpb.Expr_ConstExpr:
		out.ExprKind = &celpb.Expr_ConstExpr{ConstExpr: ConvertOldConstantToNew(kind.ConstExpr)}
	case *exprpb.Expr_IdentExpr:
		out.ExprKind = &celpb.Expr_IdentExpr{IdentExpr: ConvertOldIdentToNew(kind.IdentExpr)}
	case *exprpb.Expr_SelectExpr:
		out.ExprKind = &celpb.Expr_SelectExpr{SelectExpr: ConvertOldSelectToNew(kind.SelectExpr)}
	case *exprpb.Expr_CallExpr:
		out.ExprKind = &celpb.Expr_CallExpr{CallExpr: ConvertOldCallToNew(kind.CallExpr)}
	case *exprpb.Expr_ListExpr:
		out.ExprKind = &celpb.Expr_ListExpr{ListExpr: ConvertOldCreateListToNew(kind.ListExpr)}
	case *exprpb.Expr_StructExpr:
		out.ExprKind = &celpb.Expr_StructExpr{StructExpr: ConvertOldCreateStructToNew(kind.StructExpr)}
	case *exprpb.Expr_ComprehensionExpr:
		out.ExprKind = &celpb.Expr_ComprehensionExpr{
			ComprehensionExpr: ConvertOldComprehensionToNew(kind.ComprehensionExpr),
		}
	}
	return out
}

// ConvertNewExprToOld converts a cel.dev/expr Expr into a v1alpha1 Expr.
func ConvertNewExprToOld(e *celpb.Expr) *exprpb.Expr {
	if e == nil {
		return nil
	}
	out := &exprpb.Expr{Id: e.GetId()}
	switch kind := e.GetExprKind().(type) {
	case *celpb.Expr_ConstExpr:
		out.ExprKind = &exprpb.Expr_ConstExpr{ConstExpr: ConvertNewConstantToOld(kind.ConstExpr)}
	case *celpb.Expr_IdentExpr:
		out.ExprKind = &exprpb.Expr_IdentExpr{IdentExpr: ConvertNewIdentToOld(kind.IdentExpr)}
	case *celpb.Expr_SelectExpr:
		out.ExprKind = &exprpb.Expr_SelectExpr{SelectExpr: ConvertNewSelectToOld(kind.SelectExpr)}
	case *celpb.Expr_CallExpr:
		out.ExprKind = &exprpb.Expr_CallExpr{CallExpr: ConvertNewCallToOld(kind.CallExpr)}
	case *celpb.Expr_ListExpr:
		out.ExprKind = &exprpb.Expr_ListExpr{ListExpr: ConvertNewCreateListToOld(kind.ListExpr)}
	case *celpb.Expr_StructExpr:
		out.ExprKind = &exprpb.Expr_StructExpr{StructExpr: ConvertNewCreateStructToOld(kind.StructExpr)}
	case *celpb.Expr_ComprehensionExpr:
		out.ExprKind = &exprpb.Expr_ComprehensionExpr{
			ComprehensionExpr: ConvertNewComprehensionToOld(kind.ComprehensionExpr),
		}
	}
	return out
}

// ConvertOldConstantToNew converts a v1alpha1 Constant into a cel.dev/expr Constant.
func ConvertOldConstantToNew(c *exprpb.Constant) *celpb.Constant {
	if c == nil {
		return nil
	}
	out := &celpb.Constant{}
	switch kind := c.GetConstantKind().(type) {
	case *exprpb.Constant_NullValue:
		out.ConstantKind = &celpb.Constant_NullValue{NullValue: kind.NullValue}
	case *exprpb.Constant_BoolValue:
		out.ConstantKind = &celpb.Constant_BoolValue{BoolValue: kind.BoolValue}
	case *exprpb.Constant_Int64Value:
		out.ConstantKind = &celpb.Constant_Int64Value{Int64Value: kind.Int64Value}
	case *exprpb.Constant_Uint64Value:
		out.ConstantKind = &celpb.Constant_Uint64Value{Uint64Value: kind.Uint64Value}
	case *exprpb.Constant_DoubleValue:
		out.ConstantKind = &celpb.Constant_DoubleValue{DoubleValue: kind.DoubleValue}
	case *exprpb.Constant_StringValue:
		out.ConstantKind = &celpb.Constant_StringValue{StringValue: kind.StringValue}
	case *exprpb.Constant_BytesValue:
		out.ConstantKind = &celpb.Constant_BytesValue{BytesValue: bytes.Clone(kind.BytesValue)}
	case *exprpb.Constant_DurationValue:
		out.ConstantKind = &celpb.Constant_DurationValue{DurationValue: copyDuration(kind.DurationValue)}
	case *exprpb.Constant_TimestampValue:
		out.ConstantKind = &celpb.Constant_TimestampValue{TimestampValue: copyTimestamp(kind.TimestampValue)}
	}
	return out
}

// ConvertNewConstantToOld converts a cel.dev/expr Constant into a v1alpha1 Constant.
func ConvertNewConstantToOld(c *celpb.Constant) *exprpb.Constant {
	if c == nil {
		return nil
	}
	out := &exprpb.Constant{}
	switch kind := c.GetConstantKind().(type) {
	case *celpb.Constant_NullValue:
		out.ConstantKind = &exprpb.Constant_NullValue{NullValue: kind.NullValue}
	case *celpb.Constant_BoolValue:
		out.ConstantKind = &exprpb.Constant_BoolValue{BoolValue: kind.BoolValue}
	case *celpb.Constant_Int64Value:
		out.ConstantKind = &exprpb.Constant_Int64Value{Int64Value: kind.Int64Value}
	case *celpb.Constant_Uint64Value:
		out.ConstantKind = &exprpb.Constant_Uint64Value{Uint64Value: kind.Uint64Value}
	case *celpb.Constant_DoubleValue:
		out.ConstantKind = &exprpb.Constant_DoubleValue{DoubleValue: kind.DoubleValue}
	case *celpb.Constant_StringValue:
		out.ConstantKind = &exprpb.Constant_StringValue{StringValue: kind.StringValue}
	case *celpb.Constant_BytesValue:
		out.ConstantKind = &exprpb.Constant_BytesValue{BytesValue: bytes.Clone(kind.BytesValue)}
	case *celpb.Constant_DurationValue:
		out.ConstantKind = &exprpb.Constant_DurationValue{DurationValue: copyDuration(kind.DurationValue)}
	case *celpb.Constant_TimestampValue:
		out.ConstantKind = &exprpb.Constant_TimestampValue{TimestampValue: copyTimestamp(kind.TimestampValue)}
	}
	return out
}

// ConvertOldIdentToNew converts an identifier node.
func ConvertOldIdentToNew(i *exprpb.Expr_Ident) *celpb.Expr_Ident {
	if i == nil {
		return nil
	}
	return &celpb.Expr_Ident{Name: i.GetName()}
}

// ConvertNewIdentToOld converts an identifier node.
func ConvertNewIdentToOld(i *celpb.Expr_Ident) *exprpb.Expr_Ident {
	if i == nil {
		return nil
	}
	return &exprpb.Expr_Ident{Name: i.GetName()}
}

// ConvertOldSelectToNew converts a field selection or presence test.
func ConvertOldSelectToNew(s *exprpb.Expr_Select) *celpb.Expr_Select {
	if s == nil {
		return nil
	}
	return &celpb.Expr_Select{
		Operand:  ConvertOldExprToNew(s.GetOperand()),
		Field:    s.GetField(),
		TestOnly: s.GetTestOnly(),
	}
}

// ConvertNewSelectToOld converts a field selection or presence test.
func ConvertNewSelectToOld(s *celpb.Expr_Select) *exprpb.Expr_Select {
	if s == nil {
		return nil
	}
	return &exprpb.Expr_Select{
		Operand:  ConvertNewExprToOld(s.GetOperand()),
		Field:    s.GetField(),
		TestOnly: s.GetTestOnly(),
	}
}

// ConvertOldCallToNew converts a function call, including receiver-style calls.
func ConvertOldCallToNew(c *exprpb.Expr_Call) *celpb.Expr_Call {
	if c == nil {
		return nil
	}
	return &celpb.Expr_Call{
		Target:   ConvertOldExprToNew(c.GetTarget()),
		Function: c.GetFunction(),
		Args:     convertSlice(c.GetArgs(), ConvertOldExprToNew),
	}
}

// ConvertNewCallToOld converts a function call, including receiver-style calls.
func ConvertNewCallToOld(c *celpb.Expr_Call) *exprpb.Expr_Call {
	if c == nil {
		return nil
	}
	return &exprpb.Expr_Call{
		Target:   ConvertNewExprToOld(c.GetTarget()),
		Function: c.GetFunction(),
		Args:     convertSlice(c.GetArgs(), ConvertNewExprToOld),
	}
}

// ConvertOldCreateListToNew converts a list literal.
func ConvertOldCreateListToNew(l *exprpb.Expr_CreateList) *celpb.Expr_CreateList {
	if l == nil {
		return nil
	}
	return &celpb.Expr_CreateList{
		Elements:        convertSlice(l.GetElements(), ConvertOldExprToNew),
		OptionalIndices: cloneInt32s(l.GetOptionalIndices()),
	}
}

// ConvertNewCreateListToOld converts a list literal.
func ConvertNewCreateListToOld(l *celpb.Expr_CreateList) *exprpb.Expr_CreateList {
	if l == nil {
		return nil
	}
	return &exprpb.Expr_CreateList{
		Elements:        convertSlice(l.GetElements(), ConvertNewExprToOld),
		OptionalIndices: cloneInt32s(l.GetOptionalIndices()),
	}
}

// ConvertOldCreateStructToNew converts a map or message literal.
func ConvertOldCreateStructToNew(s *exprpb.Expr_CreateStruct) *celpb.Expr_CreateStruct {
	if s == nil {
		return nil
	}
	return &celpb.Expr_CreateStruct{
		MessageName: s.GetMessageName(),
		Entries:     convertSlice(s.GetEntries(), ConvertOldEntryToNew),
	}
}

// ConvertNewCreateStructToOld converts a map or message literal.
func ConvertNewCreateStructToOld(s *celpb.Expr_CreateStruct) *exprpb.Expr_CreateStruct {
	if s == nil {
		return nil
	}
	return &exprpb.Expr_CreateStruct{
		MessageName: s.GetMessageName(),
		Entries:     convertSlice(s.GetEntries(), ConvertNewEntryToOld),
	}
}

// ConvertOldEntryToNew converts one entry of a map or message literal.
func ConvertOldEntryToNew(e *exprpb.Expr_CreateStruct_Entry) *celpb.Expr_CreateStruct_Entry {
	if e == nil {
		return nil
	}
	out := &celpb.Expr_CreateStruct_Entry{
		Id:            e.GetId(),
		Value:         ConvertOldExprToNew(e.GetValue()),
		OptionalEntry: e.GetOptionalEntry(),
	}
	switch key := e.GetKeyKind().(type) {
	case *exprpb.Expr_CreateStruct_Entry_FieldKey:
		out.KeyKind = &celpb.Expr_CreateStruct_Entry_FieldKey{FieldKey: key.FieldKey}
	case *exprpb.Expr_CreateStruct_Entry_MapKey:
		out.KeyKind = &celpb.Expr_CreateStruct_Entry_MapKey{MapKey: ConvertOldExprToNew(key.MapKey)}
	}
	return out
}

// ConvertNewEntryToOld converts one entry of a map or message literal.
func ConvertNewEntryToOld(e *celpb.Expr_CreateStruct_Entry) *exprpb.Expr_CreateStruct_Entry {
	if e == nil {
		return nil
	}
	out := &exprpb.Expr_CreateStruct_Entry{
		Id:            e.GetId(),
		Value:         ConvertNewExprToOld(e.GetValue()),
		OptionalEntry: e.GetOptionalEntry(),
	}
	switch key := e.GetKeyKind().(type) {
	case *celpb.Expr_CreateStruct_Entry_FieldKey:
		out.KeyKind = &exprpb.Expr_CreateStruct_Entry_FieldKey{FieldKey: key.FieldKey}
	case *celpb.Expr_CreateStruct_Entry_MapKey:
		out.KeyKind = &exprpb.Expr_CreateStruct_Entry_MapKey{MapKey: ConvertNewExprToOld(key.MapKey)}
	}
	return out
}

// ConvertOldComprehensionToNew converts a comprehension, the expansion of macros
// such as all, exists and map.
func ConvertOldComprehensionToNew(c *exprpb.Expr_Comprehension) *celpb.Expr_Comprehension {
	if c == nil {
		return nil
	}
	return &celpb.Expr_Comprehension{
		IterVar:       c.GetIterVar(),
		IterVar2:      c.GetIterVar2(),
		IterRange:     ConvertOldExprToNew(c.GetIterRange()),
		AccuVar:       c.GetAccuVar(),
		AccuInit:      ConvertOldExprToNew(c.GetAccuInit()),
		LoopCondition: ConvertOldExprToNew(c.GetLoopCondition()),
		LoopStep:      ConvertOldExprToNew(c.GetLoopStep()),
		Result:        ConvertOldExprToNew(c.GetResult()),
	}
}

// ConvertNewComprehensionToOld converts a comprehension.
func ConvertNewComprehensionToOld(c *celpb.Expr_Comprehension) *exprpb.Expr_Comprehension {
	if c == nil {
		return nil
	}
	return &exprpb.Expr_Comprehension{
		IterVar:       c.GetIterVar(),
		IterVar2:      c.GetIterVar2(),
		IterRange:     ConvertNewExprToOld(c.GetIterRange()),
		AccuVar:       c.GetAccuVar(),
		AccuInit:      ConvertNewExprToOld(c.GetAccuInit()),
		LoopCondition: ConvertNewExprToOld(c.GetLoopCondition()),
		LoopStep:      ConvertNewExprToOld(c.GetLoopStep()),
		Result:        ConvertNewExprToOld(c.GetResult()),
	}
}

// convertSlice maps fn over in. A nil slice stays nil.
func convertSlice[In, Out any](in []In, fn func(In) Out) []Out {
	if in == nil {
		return nil
	}
	out := make([]Out, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

func cloneInt32s(in []int32) []int32 {
	if in == nil {
		return nil
	}
	return append([]int32(nil), in...)
}

func copyDuration(d *durationpb.Duration) *durationpb.Duration {
	if d == nil {
		return nil
	}
	return &durationpb.Duration{Seconds: d.GetSeconds(), Nanos: d.GetNanos()}
}

func copyTimestamp(ts *timestamppb.Timestamp) *timestamppb.Timestamp {
	if ts == nil {
		return nil
	}
	return &timestamppb.Timestamp{Seconds: ts.GetSeconds(), Nanos: ts.GetNanos()}
}
