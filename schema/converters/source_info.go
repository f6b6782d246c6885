// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package converters

import (
	"maps"

	celpb "cel.dev/expr"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ConvertOldParsedExprToNew converts a parsed expression together with its source info.
func ConvertOldParsedExprToNew(p *exprpb.ParsedExpr) *celpb.ParsedExpr {
	if p == nil {
		return nil
	}
	return &celpb.ParsedExpr{
		Expr:       ConvertOldExprToNew(p.GetExpr()),
		SourceInfo: ConvertOldSourceInfoToNew(p.GetSourceInfo()),
	}
}

// ConvertNewParsedExprToOld converts a parsed expression together with its source info.
func ConvertNewParsedExprToOld(p *celpb.ParsedExpr) *exprpb.ParsedExpr {
	if p == nil {
		return nil
	}
	return &exprpb.ParsedExpr{
		Expr:       ConvertNewExprToOld(p.GetExpr()),
		SourceInfo: ConvertNewSourceInfoToOld(p.GetSourceInfo()),
	}
}

// ConvertOldSourceInfoToNew converts source positions, macro calls and extensions.
func ConvertOldSourceInfoToNew(s *exprpb.SourceInfo) *celpb.SourceInfo {
	if s == nil {
		return nil
	}
	return &celpb.SourceInfo{
		SyntaxVersion: s.GetSyntaxVersion(),
		Location:      s.GetLocation(),
		LineOffsets:   cloneInt32s(s.GetLineOffsets()),
		Positions:     maps.Clone(s.GetPositions()),
		MacroCalls:    convertMap(s.GetMacroCalls(), ConvertOldExprToNew),
		Extensions:    convertSlice(s.GetExtensions(), ConvertOldExtensionToNew),
	}
}

// ConvertNewSourceInfoToOld converts source positions, macro calls and extensions.
func ConvertNewSourceInfoToOld(s *celpb.SourceInfo) *exprpb.SourceInfo {
	if s == nil {
		return nil
	}
	return &exprpb.SourceInfo{
		SyntaxVersion: s.GetSyntaxVersion(),
		Location:      s.GetLocation(),
		LineOffsets:   cloneInt32s(s.GetLineOffsets()),
		Positions:     maps.Clone(s.GetPositions()),
		MacroCalls:    convertMap(s.GetMacroCalls(), ConvertNewExprToOld),
		Extensions:    convertSlice(s.GetExtensions(), ConvertNewExtensionToOld),
	}
}

// ConvertOldExtensionToNew converts a source info extension record.
func ConvertOldExtensionToNew(e *exprpb.SourceInfo_Extension) *celpb.SourceInfo_Extension {
	if e == nil {
		return nil
	}
	return &celpb.SourceInfo_Extension{
		Id:                 e.GetId(),
		AffectedComponents: convertSlice(e.GetAffectedComponents(), ConvertOldComponentToNew),
		Version:            ConvertOldExtensionVersionToNew(e.GetVersion()),
	}
}

// ConvertNewExtensionToOld converts a source info extension record.
func ConvertNewExtensionToOld(e *celpb.SourceInfo_Extension) *exprpb.SourceInfo_Extension {
	if e == nil {
		return nil
	}
	return &exprpb.SourceInfo_Extension{
		Id:                 e.GetId(),
		AffectedComponents: convertSlice(e.GetAffectedComponents(), ConvertNewComponentToOld),
		Version:            ConvertNewExtensionVersionToOld(e.GetVersion()),
	}
}

// ConvertOldExtensionVersionToNew converts an extension version.
func ConvertOldExtensionVersionToNew(v *exprpb.SourceInfo_Extension_Version) *celpb.SourceInfo_Extension_Version {
	if v == nil {
		return nil
	}
	return &celpb.SourceInfo_Extension_Version{Major: v.GetMajor(), Minor: v.GetMinor()}
}

// ConvertNewExtensionVersionToOld converts an extension version.
func ConvertNewExtensionVersionToOld(v *celpb.SourceInfo_Extension_Version) *exprpb.SourceInfo_Extension_Version {
	if v == nil {
		return nil
	}
	return &exprpb.SourceInfo_Extension_Version{Major: v.GetMajor(), Minor: v.GetMinor()}
}

// ConvertOldComponentToNew maps an extension component. Unknown values map to
// COMPONENT_UNSPECIFIED.
func ConvertOldComponentToNew(c exprpb.SourceInfo_Extension_Component) celpb.SourceInfo_Extension_Component {
	switch c {
	case exprpb.SourceInfo_Extension_COMPONENT_PARSER:
		return celpb.SourceInfo_Extension_COMPONENT_PARSER
	case exprpb.SourceInfo_Extension_COMPONENT_TYPE_CHECKER:
		return celpb.SourceInfo_Extension_COMPONENT_TYPE_CHECKER
	case exprpb.SourceInfo_Extension_COMPONENT_RUNTIME:
		return celpb.SourceInfo_Extension_COMPONENT_RUNTIME
	case exprpb.SourceInfo_Extension_COMPONENT_UNSPECIFIED:
		return celpb.SourceInfo_Extension_COMPONENT_UNSPECIFIED
	default:
		return celpb.SourceInfo_Extension_COMPONENT_UNSPECIFIED
	}
}

// ConvertNewComponentToOld maps an extension component. Unknown values map to
// COMPONENT_UNSPECIFIED.
func ConvertNewComponentToOld(c celpb.SourceInfo_Extension_Component) exprpb.SourceInfo_Extension_Component {
	switch c {
	case celpb.SourceInfo_Extension_COMPONENT_PARSER:
		return exprpb.SourceInfo_Extension_COMPONENT_PARSER
	case celpb.SourceInfo_Extension_COMPONENT_TYPE_CHECKER:
		return exprpb.SourceInfo_Extension_COMPONENT_TYPE_CHECKER
	case celpb.SourceInfo_Extension_COMPONENT_RUNTIME:
		return exprpb.SourceInfo_Extension_COMPONENT_RUNTIME
	case celpb.SourceInfo_Extension_COMPONENT_UNSPECIFIED:
		return exprpb.SourceInfo_Extension_COMPONENT_UNSPECIFIED
	default:
		return exprpb.SourceInfo_Extension_COMPONENT_UNSPECIFIED
	}
}

// convertMap maps fn over the values of in. A nil map stays nil.
func convertMap[K comparable, In, Out any](in map[K]In, fn func(In) Out) map[K]Out {
	if in == nil {
		return nil
	}
	out := make(map[K]Out, len(in))
	for k, v := range in {
		out[k] = fn(v)
	}
	return out
}
