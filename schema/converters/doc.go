// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package converters translates CEL expression trees between the two generated
bindings of the google.api.expr schema.

The "old" generation is [google.golang.org/genproto/googleapis/api/expr/v1alpha1],
which is what cel-go produces from [github.com/google/cel-go/cel.AstToParsedExpr]
and consumes in [github.com/google/cel-go/cel.ParsedExprToAst]. The "new" generation
is [cel.dev/expr], which is the wire form of the batch parse/deparse service.

Both bindings describe the same messages, so every converter is a structural
copy. Each oneof is handled by an exhaustive type switch; a node kind that is
not set converts to a node with no kind set. Well-known types shared by both
bindings (durations, timestamps, empty, null) are deep-copied so the output
never aliases the input.

# Naming

Every message reachable from Expr has a pair of functions:

	ConvertOld<Message>ToNew(*exprpb.<Message>) *celpb.<Message>
	ConvertNew<Message>ToOld(*celpb.<Message>) *exprpb.<Message>

A nil input returns nil.

# Round Trip

For any message x, ConvertNewExprToOld(ConvertOldExprToNew(x)) is proto.Equal to
x, and the same holds in the other direction. Enum values outside the known set
map to the UNSPECIFIED sentinel of the target enum.
*/
package converters
