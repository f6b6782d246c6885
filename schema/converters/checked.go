// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package converters

import (
	celpb "cel.dev/expr"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ConvertOldCheckedExprToNew converts a type-checked expression, including its
// reference and type maps.
func ConvertOldCheckedExprToNew(c *exprpb.CheckedExpr) *celpb.CheckedExpr {
	if c == nil {
		return nil
	}
	return &celpb.CheckedExpr{
		ReferenceMap: convertMap(c.GetReferenceMap(), ConvertOldReferenceToNew),
		TypeMap:      convertMap(c.GetTypeMap(), ConvertOldTypeToNew),
		SourceInfo:   ConvertOldSourceInfoToNew(c.GetSourceInfo()),
		ExprVersion:  c.GetExprVersion(),
		Expr:         ConvertOldExprToNew(c.GetExpr()),
	}
}

// ConvertNewCheckedExprToOld converts a type-checked expression, including its
// reference and type maps.
func ConvertNewCheckedExprToOld(c *celpb.CheckedExpr) *exprpb.CheckedExpr {
	if c == nil {
		return nil
	}
	return &exprpb.CheckedExpr{
		ReferenceMap: convertMap(c.GetReferenceMap(), ConvertNewReferenceToOld),
		TypeMap:      convertMap(c.GetTypeMap(), ConvertNewTypeToOld),
		SourceInfo:   ConvertNewSourceInfoToOld(c.GetSourceInfo()),
		ExprVersion:  c.GetExprVersion(),
		Expr:         ConvertNewExprToOld(c.GetExpr()),
	}
}

// ConvertOldReferenceToNew converts a resolved identifier or overload reference.
func ConvertOldReferenceToNew(r *exprpb.Reference) *celpb.Reference {
	if r == nil {
		return nil
	}
	return &celpb.Reference{
		Name:       r.GetName(),
		OverloadId: cloneStrings(r.GetOverloadId()),
		Value:      ConvertOldConstantToNew(r.GetValue()),
	}
}

// ConvertNewReferenceToOld converts a resolved identifier or overload reference.
func ConvertNewReferenceToOld(r *celpb.Reference) *exprpb.Reference {
	if r == nil {
		return nil
	}
	return &exprpb.Reference{
		Name:       r.GetName(),
		OverloadId: cloneStrings(r.GetOverloadId()),
		Value:      ConvertNewConstantToOld(r.GetValue()),
	}
}

// ConvertOldTypeToNew converts a CEL type.
func ConvertOldTypeToNew(t *exprpb.Type) *celpb.Type {
	if t == nil {
		return nil
	}
	out := &celpb.Type{}
	switch kind := t.GetTypeKind().(type) {
	case *exprpb.Type_Dyn:
		out.TypeKind = &celpb.Type_Dyn{Dyn: copyEmpty(kind.Dyn)}
	case *exprpb.Type_Null:
		out.TypeKind = &celpb.Type_Null{Null: kind.Null}
	case *exprpb.Type_Primitive:
		out.TypeKind = &celpb.Type_Primitive{Primitive: ConvertOldPrimitiveTypeToNew(kind.Primitive)}
	case *exprpb.Type_Wrapper:
		out.TypeKind = &celpb.Type_Wrapper{Wrapper: ConvertOldPrimitiveTypeToNew(kind.Wrapper)}
	case *exprpb.Type_WellKnown:
		out.TypeKind = &celpb.Type_WellKnown{WellKnown: ConvertOldWellKnownTypeToNew(kind.WellKnown)}
	case *exprpb.Type_ListType_:
		out.TypeKind = &celpb.Type_ListType_{ListType: ConvertOldListTypeToNew(kind.ListType)}
	case *exprpb.Type_MapType_:
		out.TypeKind = &celpb.Type_MapType_{MapType: ConvertOldMapTypeToNew(kind.MapType)}
	case *exprpb.Type_Function:
		out.TypeKind = &celpb.Type_Function{Function: ConvertOldFunctionTypeToNew(kind.Function)}
	case *exprpb.Type_MessageType:
		out.TypeKind = &celpb.Type_MessageType{MessageType: kind.MessageType}
	case *exprpb.Type_TypeParam:
		out.TypeKind = &celpb.Type_TypeParam{TypeParam: kind.TypeParam}
	case *exprpb.Type_Type:
		out.TypeKind = &celpb.Type_Type{Type: ConvertOldTypeToNew(kind.Type)}
	case *exprpb.Type_Error:
		out.TypeKind = &celpb.Type_Error{Error: copyEmpty(kind.Error)}
	case *exprpb.Type_AbstractType_:
		out.TypeKind = &celpb.Type_AbstractType_{AbstractType: ConvertOldAbstractTypeToNew(kind.AbstractType)}
	}
	return out
}

// ConvertNewTypeToOld converts a CEL type.
func ConvertNewTypeToOld(t *celpb.Type) *exprpb.Type {
	if t == nil {
		return nil
	}
	out := &exprpb.Type{}
	switch kind := t.GetTypeKind().(type) {
	case *celpb.Type_Dyn:
		out.TypeKind = &exprpb.Type_Dyn{Dyn: copyEmpty(kind.Dyn)}
	case *celpb.Type_Null:
		out.TypeKind = &exprpb.Type_Null{Null: kind.Null}
	case *celpb.Type_Primitive:
		out.TypeKind = &exprpb.Type_Primitive{Primitive: ConvertNewPrimitiveTypeToOld(kind.Primitive)}
	case *celpb.Type_Wrapper:
		out.TypeKind = &exprpb.Type_Wrapper{Wrapper: ConvertNewPrimitiveTypeToOld(kind.Wrapper)}
	case *celpb.Type_WellKnown:
		out.TypeKind = &exprpb.Type_WellKnown{WellKnown: ConvertNewWellKnownTypeToOld(kind.WellKnown)}
	case *celpb.Type_ListType_:
		out.TypeKind = &exprpb.Type_ListType_{ListType: ConvertNewListTypeToOld(kind.ListType)}
	case *celpb.Type_MapType_:
		out.TypeKind = &exprpb.Type_MapType_{MapType: ConvertNewMapTypeToOld(kind.MapType)}
	case *celpb.Type_Function:
		out.TypeKind = &exprpb.Type_Function{Function: ConvertNewFunctionTypeToOld(kind.Function)}
	case *celpb.Type_MessageType:
		out.TypeKind = &exprpb.Type_MessageType{MessageType: kind.MessageType}
	case *celpb.Type_TypeParam:
		out.TypeKind = &exprpb.Type_TypeParam{TypeParam: kind.TypeParam}
	case *celpb.Type_Type:
		out.TypeKind = &exprpb.Type_Type{Type: ConvertNewTypeToOld(kind.Type)}
	case *celpb.Type_Error:
		out.TypeKind = &exprpb.Type_Error{Error: copyEmpty(kind.Error)}
	case *celpb.Type_AbstractType_:
		out.TypeKind = &exprpb.Type_AbstractType_{AbstractType: ConvertNewAbstractTypeToOld(kind.AbstractType)}
	}
	return out
}

// ConvertOldListTypeToNew converts a list type.
func ConvertOldListTypeToNew(l *exprpb.Type_ListType) *celpb.Type_ListType {
	if l == nil {
		return nil
	}
	return &celpb.Type_ListType{ElemType: ConvertOldTypeToNew(l.GetElemType())}
}

// ConvertNewListTypeToOld converts a list type.
func ConvertNewListTypeToOld(l *celpb.Type_ListType) *exprpb.Type_ListType {
	if l == nil {
		return nil
	}
	return &exprpb.Type_ListType{ElemType: ConvertNewTypeToOld(l.GetElemType())}
}

// ConvertOldMapTypeToNew converts a map type.
func ConvertOldMapTypeToNew(m *exprpb.Type_MapType) *celpb.Type_MapType {
	if m == nil {
		return nil
	}
	return &celpb.Type_MapType{
		KeyType:   ConvertOldTypeToNew(m.GetKeyType()),
		ValueType: ConvertOldTypeToNew(m.GetValueType()),
	}
}

// ConvertNewMapTypeToOld converts a map type.
func ConvertNewMapTypeToOld(m *celpb.Type_MapType) *exprpb.Type_MapType {
	if m == nil {
		return nil
	}
	return &exprpb.Type_MapType{
		KeyType:   ConvertNewTypeToOld(m.GetKeyType()),
		ValueType: ConvertNewTypeToOld(m.GetValueType()),
	}
}

// ConvertOldFunctionTypeToNew converts a function type.
func ConvertOldFunctionTypeToNew(f *exprpb.Type_FunctionType) *celpb.Type_FunctionType {
	if f == nil {
		return nil
	}
	return &celpb.Type_FunctionType{
		ResultType: ConvertOldTypeToNew(f.GetResultType()),
		ArgTypes:   convertSlice(f.GetArgTypes(), ConvertOldTypeToNew),
	}
}

// ConvertNewFunctionTypeToOld converts a function type.
func ConvertNewFunctionTypeToOld(f *celpb.Type_FunctionType) *exprpb.Type_FunctionType {
	if f == nil {
		return nil
	}
	return &exprpb.Type_FunctionType{
		ResultType: ConvertNewTypeToOld(f.GetResultType()),
		ArgTypes:   convertSlice(f.GetArgTypes(), ConvertNewTypeToOld),
	}
}

// ConvertOldAbstractTypeToNew converts an abstract (opaque) type.
func ConvertOldAbstractTypeToNew(a *exprpb.Type_AbstractType) *celpb.Type_AbstractType {
	if a == nil {
		return nil
	}
	return &celpb.Type_AbstractType{
		Name:           a.GetName(),
		ParameterTypes: convertSlice(a.GetParameterTypes(), ConvertOldTypeToNew),
	}
}

// ConvertNewAbstractTypeToOld converts an abstract (opaque) type.
func ConvertNewAbstractTypeToOld(a *celpb.Type_AbstractType) *exprpb.Type_AbstractType {
	if a == nil {
		return nil
	}
	return &exprpb.Type_AbstractType{
		Name:           a.GetName(),
		ParameterTypes: convertSlice(a.GetParameterTypes(), ConvertNewTypeToOld),
	}
}

// ConvertOldPrimitiveTypeToNew maps a primitive type. Unknown values map to
// PRIMITIVE_TYPE_UNSPECIFIED.
func ConvertOldPrimitiveTypeToNew(p exprpb.Type_PrimitiveType) celpb.Type_PrimitiveType {
	switch p {
	case exprpb.Type_BOOL:
		return celpb.Type_BOOL
	case exprpb.Type_INT64:
		return celpb.Type_INT64
	case exprpb.Type_UINT64:
		return celpb.Type_UINT64
	case exprpb.Type_DOUBLE:
		return celpb.Type_DOUBLE
	case exprpb.Type_STRING:
		return celpb.Type_STRING
	case exprpb.Type_BYTES:
		return celpb.Type_BYTES
	case exprpb.Type_PRIMITIVE_TYPE_UNSPECIFIED:
		return celpb.Type_PRIMITIVE_TYPE_UNSPECIFIED
	default:
		return celpb.Type_PRIMITIVE_TYPE_UNSPECIFIED
	}
}

// ConvertNewPrimitiveTypeToOld maps a primitive type. Unknown values map to
// PRIMITIVE_TYPE_UNSPECIFIED.
func ConvertNewPrimitiveTypeToOld(p celpb.Type_PrimitiveType) exprpb.Type_PrimitiveType {
	switch p {
	case celpb.Type_BOOL:
		return exprpb.Type_BOOL
	case celpb.Type_INT64:
		return exprpb.Type_INT64
	case celpb.Type_UINT64:
		return exprpb.Type_UINT64
	case celpb.Type_DOUBLE:
		return exprpb.Type_DOUBLE
	case celpb.Type_STRING:
		return exprpb.Type_STRING
	case celpb.Type_BYTES:
		return exprpb.Type_BYTES
	case celpb.Type_PRIMITIVE_TYPE_UNSPECIFIED:
		return exprpb.Type_PRIMITIVE_TYPE_UNSPECIFIED
	default:
		return exprpb.Type_PRIMITIVE_TYPE_UNSPECIFIED
	}
}

// ConvertOldWellKnownTypeToNew maps a well-known type. Unknown values map to
// WELL_KNOWN_TYPE_UNSPECIFIED.
func ConvertOldWellKnownTypeToNew(w exprpb.Type_WellKnownType) celpb.Type_WellKnownType {
	switch w {
	case exprpb.Type_ANY:
		return celpb.Type_ANY
	case exprpb.Type_TIMESTAMP:
		return celpb.Type_TIMESTAMP
	case exprpb.Type_DURATION:
		return celpb.Type_DURATION
	case exprpb.Type_WELL_KNOWN_TYPE_UNSPECIFIED:
		return celpb.Type_WELL_KNOWN_TYPE_UNSPECIFIED
	default:
		return celpb.Type_WELL_KNOWN_TYPE_UNSPECIFIED
	}
}

// ConvertNewWellKnownTypeToOld maps a well-known type. Unknown values map to
// WELL_KNOWN_TYPE_UNSPECIFIED.
func ConvertNewWellKnownTypeToOld(w celpb.Type_WellKnownType) exprpb.Type_WellKnownType {
	switch w {
	case celpb.Type_ANY:
		return exprpb.Type_ANY
	case celpb.Type_TIMESTAMP:
		return exprpb.Type_TIMESTAMP
	case celpb.Type_DURATION:
		return exprpb.Type_DURATION
	case celpb.Type_WELL_KNOWN_TYPE_UNSPECIFIED:
		return exprpb.Type_WELL_KNOWN_TYPE_UNSPECIFIED
	default:
		return exprpb.Type_WELL_KNOWN_TYPE_UNSPECIFIED
	}
}

func copyEmpty(e *emptypb.Empty) *emptypb.Empty {
	if e == nil {
		return nil
	}
	return &emptypb.Empty{}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
