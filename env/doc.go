// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package env provides an interface-based abstraction for environment variable
access, enabling dependency injection and testing isolation.

# Basic Usage

Use OSReader to read environment variables via the standard os package:

	reader := &env.OSReader{}
	value := reader.Getenv("LOG_LEVEL")

# Testing

The Reader interface allows injecting a mock in tests to avoid relying on
real environment variables. A generated mock is available in the mocks
sub-package:

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockReader(ctrl)
	mock.EXPECT().Getenv("UNSTRUCTURED_LOGS").Return("true")
	mock.EXPECT().Getenv("LOG_LEVEL").Return("debug")

	logger := logging.NewFromEnv(mock)

# Design

Production code such as logging.NewFromEnv and the celcond CLI accepts an
env.Reader, while tests substitute the generated mock.
*/
package env
