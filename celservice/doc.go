// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package celservice provides backends for the bridge package: an in-process
implementation and HTTP and gRPC transports that carry it between processes.

# Local

[Local] parses with cel-go and unparses with its unparser. A batch is spread
over a bounded number of goroutines and results keep input order. Parsed
trees are cached by source text; callers always receive their own copy.

	svc := celservice.NewLocal(celservice.WithCacheSize(5000))
	defer svc.Close()

# HTTP

[Handler] serves a [bridge.Service] at two routes:

	POST /v1/cel:batchParse    {"expressions": ["a > 1", ...]}
	POST /v1/cel:batchDeparse  {"expressions": [<cel.expr.Expr as protojson>, ...]}

Responses use the same envelope. Errors are written as {"error": "..."} with
400 for malformed bodies and CEL syntax errors, 405 for other methods, 413 for
oversized batches or bodies, and 500 otherwise. Every response carries an
X-Request-Id header, echoed from the request when it is a valid header value.

[Server] runs a Handler with graceful shutdown, and [Client] calls it:

	client, err := celservice.NewClient("http://localhost:8080")
	if err != nil {
		return err
	}
	b := bridge.New(client)

# gRPC

[GRPCServer] exposes the same operations as the unary methods
stacklok.celconditions.v1.CELService/BatchParse and BatchDeparse, along with
the standard health service. [GRPCClient] calls them. Status codes map to the
same classes as the HTTP statuses, and GRPCClient reports failures as
httperr coded errors.
*/
package celservice
