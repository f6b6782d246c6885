// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads configuration for the CEL condition service.
package config

import (
	"time"

	"github.com/stacklok/cel-conditions/cel"
	"github.com/stacklok/cel-conditions/celservice"
)

// EnvPrefix prefixes every environment variable the service reads, for
// example CELCOND_SERVER_PORT for server.port.
const EnvPrefix = "CELCOND"

// Config holds configuration for the CEL condition service.
type Config struct {
	Server  ServerConfig
	CEL     CELConfig
	Cache   CacheConfig
	Log     LogConfig
	Backend BackendConfig
}

// ServerConfig holds configuration for the HTTP and gRPC listeners.
type ServerConfig struct {
	Host            string
	Port            int
	GRPCPort        int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxBatchSize    int
	MaxBodyBytes    int64
}

// CELConfig holds limits for the CEL engine.
type CELConfig struct {
	MaxExpressionLength int
	CostLimit           uint64
	MaxGoroutines       int
}

// CacheConfig holds configuration for the parse cache. A zero size
// disables it.
type CacheConfig struct {
	Size int64
	TTL  time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Format string
	Level  string
}

// BackendConfig points the service at a remote CEL service instead of the
// in-process one. An empty URL selects the in-process service.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			RequestTimeout:  celservice.DefaultRequestTimeout,
			ShutdownTimeout: celservice.DefaultShutdownTimeout,
			MaxBatchSize:    celservice.DefaultMaxBatchSize,
			MaxBodyBytes:    celservice.DefaultMaxBodyBytes,
		},
		CEL: CELConfig{
			MaxExpressionLength: cel.DefaultMaxExpressionLength,
			CostLimit:           cel.DefaultCostLimit,
			MaxGoroutines:       celservice.DefaultMaxGoroutines,
		},
		Cache: CacheConfig{
			Size: celservice.DefaultCacheSize,
			TTL:  celservice.DefaultCacheTTL,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
		},
		Backend: BackendConfig{
			Timeout: celservice.DefaultClientTimeout,
		},
	}
}
