// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package approval holds approval flows and the rules that select them.
//
// [ValidateFlow] and [ValidateRule] only answer yes or no. [Check] and
// [CheckRule] name the first problem for callers that need to show one.
package approval
