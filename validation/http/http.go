// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package http provides validation functions for HTTP headers and URIs.
package http

import (
	"fmt"
	"net/url"

	"golang.org/x/net/http/httpguts"
)

// ValidateHeaderName validates that a string is a valid HTTP header name per RFC 7230.
// It checks for CRLF injection, control characters, and ensures RFC token compliance.
func ValidateHeaderName(name string) error {
	if name == "" {
		return fmt.Errorf("header name cannot be empty")
	}

	// Length limit to prevent DoS
	if len(name) > 256 {
		return fmt.Errorf("header name exceeds maximum length of 256 bytes")
	}

	// Use httpguts validation (same as Go's HTTP/2 implementation)
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("invalid HTTP header name: contains invalid characters")
	}

	return nil
}

// ValidateHeaderValue validates that a string is a valid HTTP header value per RFC 7230.
// It checks for CRLF injection and control characters.
func ValidateHeaderValue(value string) error {
	if value == "" {
		return fmt.Errorf("header value cannot be empty")
	}

	// Length limit to prevent DoS (common HTTP server limit)
	if len(value) > 8192 {
		return fmt.Errorf("header value exceeds maximum length of 8192 bytes")
	}

	// Use httpguts validation
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("invalid HTTP header value: contains control characters")
	}

	return nil
}

// ValidateServiceURL validates the base URL of a remote CEL service.
//
// A valid service URL must:
//   - Use the http or https scheme
//   - Include a host
//   - Not carry user info, a query or a fragment
func ValidateServiceURL(serviceURL string) error {
	if serviceURL == "" {
		return fmt.Errorf("service URL cannot be empty")
	}

	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid service URL: %w", err)
	}

	if parsed.Scheme == "" {
		return fmt.Errorf("service URL must include a scheme (e.g., https://): %s", serviceURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("service URL scheme must be http or https: %s", serviceURL)
	}

	if parsed.Host == "" {
		return fmt.Errorf("service URL must include a host: %s", serviceURL)
	}

	if parsed.User != nil {
		return fmt.Errorf("service URL must not contain credentials")
	}

	if parsed.RawQuery != "" || parsed.ForceQuery {
		return fmt.Errorf("service URL must not contain a query (?): %s", serviceURL)
	}

	if parsed.Fragment != "" {
		return fmt.Errorf("service URL must not contain fragments (#): %s", serviceURL)
	}

	return nil
}
