// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package httperr provides error types with HTTP status codes for API error handling.

This package allows errors to carry their intended HTTP response code through the
call stack, enabling centralized error handling in API handlers. The CodedError
type implements the standard error interface and supports error wrapping via
errors.Is() and errors.As().

# Basic Usage

Create errors with HTTP status codes:

	// Create a new error with a status code
	err := httperr.New("method not allowed", http.StatusMethodNotAllowed)

	// Wrap an existing error with a status code
	err := httperr.WithCode(err, http.StatusBadRequest)

# Extracting Status Codes

Extract the HTTP status code from an error chain:

	code := httperr.Code(err)
	// Returns the code if err contains a CodedError
	// Returns http.StatusInternalServerError (500) if no CodedError found
	// Returns http.StatusOK (200) if err is nil

# Error Wrapping

CodedError supports the standard Go error wrapping pattern:

	sentinel := errors.New("batch exceeds the configured maximum")
	err := httperr.WithCode(sentinel, http.StatusRequestEntityTooLarge)

	// errors.Is works through the wrapper
	if errors.Is(err, sentinel) {
		// handle specific error
	}

	// errors.As can extract the CodedError
	var coded *httperr.CodedError
	if errors.As(err, &coded) {
		log.Printf("HTTP %d: %s", coded.HTTPCode(), coded.Error())
	}

# JSON Error Envelope

Handlers write errors as {"error": "..."} with the status from the chain:

	func handleBatchParse(w http.ResponseWriter, r *http.Request) {
		exprs, err := parseBatch(r)
		if err != nil {
			httperr.WriteJSON(w, err)
			return
		}
		// ...
	}

Clients turn non-2xx responses back into coded errors:

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := httperr.FromResponse(resp); err != nil {
		return err // httperr.Code(err) == resp.StatusCode
	}
*/
package httperr
