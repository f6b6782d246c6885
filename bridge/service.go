// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bridge

//go:generate mockgen -copyright_file=../.github/license-header.txt -source=service.go -destination=mocks/mock_service.go -package=mocks Service

import (
	"context"

	celpb "cel.dev/expr"
)

// Service is a backend that parses and deparses CEL in batches. Results are
// positional: element i of the result belongs to element i of the input.
type Service interface {
	// BatchParse parses each source text into an expression tree.
	BatchParse(ctx context.Context, expressions []string) ([]*celpb.Expr, error)
	// BatchDeparse renders each expression tree as CEL source text.
	BatchDeparse(ctx context.Context, expressions []*celpb.Expr) ([]string, error)
}
