// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package factor provides validation functions for condition factor paths.

A factor is the attribute a condition tests. It is written into CEL source
verbatim, so it must already be a valid CEL identifier or select chain.

# Name Validation

	if err := factor.ValidateName("resource.database_name"); err != nil {
		// Handle invalid factor
	}

Valid factor names must:
  - Be non-empty (not just whitespace)
  - Consist of dot-separated segments of letters, digits and underscores
  - Not start a segment with a digit
  - Not use a CEL reserved word as a segment
  - Not contain null bytes

# Examples

Valid names:

	"request.time"
	"statement.affected_rows"
	"resource.db_engine"

Invalid names:

	""                        // empty
	"resource..table_name"    // empty segment
	"resource.1st"            // segment starts with a digit
	"request.in"              // reserved word
	"resource.table name"     // whitespace
*/
package factor
