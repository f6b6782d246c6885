// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package bridge converts between CEL source text and expression trees in
batches, through a backend [Service].

Each batch makes exactly one backend call and results keep input order. The
bridge never returns an error: when the call fails, the context is done, the
backend returns the wrong number of results or a nil tree, the failure is
logged at error level and the batch comes back with Degraded set and one
default value (an empty Expr or "") per input.

	client, err := celservice.NewClient(baseURL)
	if err != nil {
		return err
	}
	b := bridge.New(client, bridge.WithLogger(logger))

	batch := b.BatchConvertCELStringToParsedExpr(ctx, []string{
		`statement.affected_rows > 100`,
		`resource.environment_id == "prod"`,
	})
	if batch.Degraded {
		// show the raw text instead of the editor tree
	}

The Old variants accept and return v1alpha1 trees, converting with
schema/converters around the same backend call.
*/
package bridge
