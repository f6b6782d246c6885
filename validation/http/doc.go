// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package http provides security-focused validation functions for HTTP headers and URIs.

This package helps prevent common security vulnerabilities such as HTTP header injection
(CRLF injection) and malformed URI attacks by validating input against RFC specifications.

# Header Validation

Validate HTTP header names and values per RFC 7230:

	if err := http.ValidateHeaderName("X-Request-Id"); err != nil {
		// Handle invalid header name
	}

	if err := http.ValidateHeaderValue("4f1c0c9e-0d7a-4c52-9a07-1f0f3b3e2a10"); err != nil {
		// Handle invalid header value
	}

The validators check for:
  - CRLF injection attempts (\r\n sequences)
  - Control characters
  - RFC 7230 token compliance for header names
  - Length limits to prevent DoS (256 bytes for names, 8192 for values)

# Service URL Validation

Validate the base URL a client sends CEL batches to:

	if err := http.ValidateServiceURL("https://cel.example.com/api"); err != nil {
		// Handle invalid URL
	}

Service URLs must:
  - Use the http or https scheme
  - Include a host
  - Not carry credentials, a query or a fragment identifier (#)

The CEL service handler runs incoming X-Request-Id values through
[ValidateHeaderValue] before echoing them into logs and responses.
*/
package http
