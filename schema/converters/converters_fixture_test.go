// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package converters

import (
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Fixtures are built in the old generation because that is what cel-go emits.

func oldIdent(id int64, name string) *exprpb.Expr {
	return &exprpb.Expr{Id: id, ExprKind: &exprpb.Expr_IdentExpr{IdentExpr: &exprpb.Expr_Ident{Name: name}}}
}

func oldConst(id int64, c *exprpb.Constant) *exprpb.Expr {
	return &exprpb.Expr{Id: id, ExprKind: &exprpb.Expr_ConstExpr{ConstExpr: c}}
}

func oldString(id int64, s string) *exprpb.Expr {
	return oldConst(id, &exprpb.Constant{ConstantKind: &exprpb.Constant_StringValue{StringValue: s}})
}

func oldInt(id int64, v int64) *exprpb.Expr {
	return oldConst(id, &exprpb.Constant{ConstantKind: &exprpb.Constant_Int64Value{Int64Value: v}})
}

func oldSelect(id int64, operand *exprpb.Expr, field string, testOnly bool) *exprpb.Expr {
	return &exprpb.Expr{Id: id, ExprKind: &exprpb.Expr_SelectExpr{SelectExpr: &exprpb.Expr_Select{
		Operand:  operand,
		Field:    field,
		TestOnly: testOnly,
	}}}
}

func oldCall(id int64, target *exprpb.Expr, fn string, args ...*exprpb.Expr) *exprpb.Expr {
	return &exprpb.Expr{Id: id, ExprKind: &exprpb.Expr_CallExpr{CallExpr: &exprpb.Expr_Call{
		Target:   target,
		Function: fn,
		Args:     args,
	}}}
}

// constantFixtures covers every Constant kind.
func constantFixtures() map[string]*exprpb.Constant {
	return map[string]*exprpb.Constant{
		"null":      {ConstantKind: &exprpb.Constant_NullValue{NullValue: structpb.NullValue_NULL_VALUE}},
		"bool":      {ConstantKind: &exprpb.Constant_BoolValue{BoolValue: true}},
		"int64":     {ConstantKind: &exprpb.Constant_Int64Value{Int64Value: -42}},
		"uint64":    {ConstantKind: &exprpb.Constant_Uint64Value{Uint64Value: 18446744073709551615}},
		"double":    {ConstantKind: &exprpb.Constant_DoubleValue{DoubleValue: 3.25}},
		"string":    {ConstantKind: &exprpb.Constant_StringValue{StringValue: "DROP_TABLE"}},
		"bytes":     {ConstantKind: &exprpb.Constant_BytesValue{BytesValue: []byte{0x00, 0xff, 0x10}}},
		"duration":  {ConstantKind: &exprpb.Constant_DurationValue{DurationValue: &durationpb.Duration{Seconds: 90, Nanos: 5}}},
		"timestamp": {ConstantKind: &exprpb.Constant_TimestampValue{TimestampValue: &timestamppb.Timestamp{Seconds: 1704067200}}},
		"unset":     {},
	}
}

// exprFixtures covers every Expr kind, including the optional and two-variable
// forms of containers and comprehensions.
func exprFixtures() map[string]*exprpb.Expr {
	return map[string]*exprpb.Expr{
		"const": oldInt(1, 100),
		"ident": oldIdent(1, "request"),
		"select": oldSelect(2,
			oldSelect(1, oldIdent(3, "resource"), "labels", false), "env", false),
		"has macro select": oldSelect(1, oldIdent(2, "resource"), "labels", true),
		"global call": oldCall(3, nil, "_>_",
			oldSelect(1, oldIdent(4, "statement"), "affected_rows", false), oldInt(2, 100)),
		"receiver call": oldCall(3, oldSelect(1, oldIdent(4, "resource"), "database_name", false),
			"startsWith", oldString(2, "prod_")),
		"list with optional indices": {Id: 1, ExprKind: &exprpb.Expr_ListExpr{ListExpr: &exprpb.Expr_CreateList{
			Elements:        []*exprpb.Expr{oldString(2, "DROP_TABLE"), oldIdent(3, "maybe")},
			OptionalIndices: []int32{1},
		}}},
		"empty list": {Id: 1, ExprKind: &exprpb.Expr_ListExpr{ListExpr: &exprpb.Expr_CreateList{}}},
		"map literal": {Id: 1, ExprKind: &exprpb.Expr_StructExpr{StructExpr: &exprpb.Expr_CreateStruct{
			Entries: []*exprpb.Expr_CreateStruct_Entry{
				{Id: 2, KeyKind: &exprpb.Expr_CreateStruct_Entry_MapKey{MapKey: oldString(3, "k")}, Value: oldInt(4, 1)},
				{
					Id:            5,
					KeyKind:       &exprpb.Expr_CreateStruct_Entry_MapKey{MapKey: oldString(6, "opt")},
					Value:         oldIdent(7, "x"),
					OptionalEntry: true,
				},
			},
		}}},
		"message literal": {Id: 1, ExprKind: &exprpb.Expr_StructExpr{StructExpr: &exprpb.Expr_CreateStruct{
			MessageName: "google.protobuf.Duration",
			Entries: []*exprpb.Expr_CreateStruct_Entry{
				{Id: 2, KeyKind: &exprpb.Expr_CreateStruct_Entry_FieldKey{FieldKey: "seconds"}, Value: oldInt(3, 60)},
			},
		}}},
		"comprehension": {Id: 10, ExprKind: &exprpb.Expr_ComprehensionExpr{ComprehensionExpr: &exprpb.Expr_Comprehension{
			IterVar:       "k",
			IterVar2:      "v",
			IterRange:     oldIdent(1, "resource"),
			AccuVar:       "@result",
			AccuInit:      oldConst(2, &exprpb.Constant{ConstantKind: &exprpb.Constant_BoolValue{BoolValue: false}}),
			LoopCondition: oldCall(3, nil, "@not_strictly_false", oldCall(4, nil, "!_", oldIdent(5, "@result"))),
			LoopStep:      oldCall(6, nil, "_||_", oldIdent(7, "@result"), oldCall(8, nil, "_==_", oldIdent(9, "v"), oldInt(11, 1))),
			Result:        oldIdent(12, "@result"),
		}}},
		"unset kind": {Id: 7},
	}
}

// typeFixtures covers every Type kind.
func typeFixtures() map[string]*exprpb.Type {
	prim := func(p exprpb.Type_PrimitiveType) *exprpb.Type {
		return &exprpb.Type{TypeKind: &exprpb.Type_Primitive{Primitive: p}}
	}
	return map[string]*exprpb.Type{
		"dyn":        {TypeKind: &exprpb.Type_Dyn{Dyn: &emptypb.Empty{}}},
		"null":       {TypeKind: &exprpb.Type_Null{Null: structpb.NullValue_NULL_VALUE}},
		"primitive":  prim(exprpb.Type_UINT64),
		"wrapper":    {TypeKind: &exprpb.Type_Wrapper{Wrapper: exprpb.Type_STRING}},
		"well known": {TypeKind: &exprpb.Type_WellKnown{WellKnown: exprpb.Type_TIMESTAMP}},
		"list":       {TypeKind: &exprpb.Type_ListType_{ListType: &exprpb.Type_ListType{ElemType: prim(exprpb.Type_STRING)}}},
		"map": {TypeKind: &exprpb.Type_MapType_{MapType: &exprpb.Type_MapType{
			KeyType:   prim(exprpb.Type_STRING),
			ValueType: &exprpb.Type{TypeKind: &exprpb.Type_Dyn{Dyn: &emptypb.Empty{}}},
		}}},
		"function": {TypeKind: &exprpb.Type_Function{Function: &exprpb.Type_FunctionType{
			ResultType: prim(exprpb.Type_BOOL),
			ArgTypes:   []*exprpb.Type{prim(exprpb.Type_INT64), prim(exprpb.Type_DOUBLE)},
		}}},
		"message":    {TypeKind: &exprpb.Type_MessageType{MessageType: "google.protobuf.Struct"}},
		"type param": {TypeKind: &exprpb.Type_TypeParam{TypeParam: "T"}},
		"type":       {TypeKind: &exprpb.Type_Type{Type: prim(exprpb.Type_BYTES)}},
		"error":      {TypeKind: &exprpb.Type_Error{Error: &emptypb.Empty{}}},
		"abstract": {TypeKind: &exprpb.Type_AbstractType_{AbstractType: &exprpb.Type_AbstractType{
			Name:           "optional_type",
			ParameterTypes: []*exprpb.Type{prim(exprpb.Type_STRING)},
		}}},
		"unset": {},
	}
}

func sourceInfoFixture() *exprpb.SourceInfo {
	return &exprpb.SourceInfo{
		SyntaxVersion: "cel1",
		Location:      "<input>",
		LineOffsets:   []int32{24, 48},
		Positions:     map[int64]int32{1: 0, 2: 10, 3: 12},
		MacroCalls: map[int64]*exprpb.Expr{
			1: oldCall(0, nil, "has", oldSelect(2, oldIdent(3, "resource"), "labels", false)),
		},
		Extensions: []*exprpb.SourceInfo_Extension{
			{
				Id: "two_var_comprehensions",
				AffectedComponents: []exprpb.SourceInfo_Extension_Component{
					exprpb.SourceInfo_Extension_COMPONENT_PARSER,
					exprpb.SourceInfo_Extension_COMPONENT_TYPE_CHECKER,
					exprpb.SourceInfo_Extension_COMPONENT_RUNTIME,
				},
				Version: &exprpb.SourceInfo_Extension_Version{Major: 1, Minor: 2},
			},
		},
	}
}
