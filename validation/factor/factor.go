// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package factor provides validation functions for condition factor paths.
package factor

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxNameLength bounds a factor path.
const MaxNameLength = 256

var validSegmentRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reserved words may not be used as CEL identifiers.
var reserved = map[string]bool{
	"false": true, "in": true, "null": true, "true": true,
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"for": true, "function": true, "if": true, "import": true, "let": true,
	"loop": true, "package": true, "namespace": true, "return": true,
	"var": true, "void": true, "while": true,
}

// ValidateName validates that a factor path is a dot-separated sequence of CEL
// identifiers, such as "resource.database_name".
// It rejects empty segments, reserved words, whitespace and null bytes.
func ValidateName(name string) error {
	if name == "" || strings.TrimSpace(name) == "" {
		return fmt.Errorf("factor name cannot be empty or consist only of whitespace")
	}

	if strings.Contains(name, "\x00") {
		return fmt.Errorf("factor name cannot contain null bytes")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("factor name exceeds maximum length of %d bytes", MaxNameLength)
	}

	for _, segment := range strings.Split(name, ".") {
		if segment == "" {
			return fmt.Errorf("factor name cannot contain empty segments: %q", name)
		}
		if !validSegmentRegex.MatchString(segment) {
			return fmt.Errorf("factor segment must be an identifier of letters, digits and underscores: %q", segment)
		}
		if reserved[segment] {
			return fmt.Errorf("factor segment is a reserved word: %q", segment)
		}
	}

	return nil
}
