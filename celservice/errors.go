// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package celservice

import "errors"

var (
	// ErrBatchTooLarge is returned when a batch holds more expressions than
	// the handler accepts.
	ErrBatchTooLarge = errors.New("batch exceeds the maximum number of expressions")

	// ErrInvalidRequest is returned for a request body that cannot be decoded.
	ErrInvalidRequest = errors.New("invalid request body")

	// ErrInvalidResponse is returned by clients for a response body that
	// cannot be decoded.
	ErrInvalidResponse = errors.New("invalid response body")
)
