// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Command celcond serves and renders CEL conditions.
package main

import (
	"os"

	"github.com/stacklok/cel-conditions/cmd/celcond/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
