// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/stacklok/cel-conditions/logging"
	validation "github.com/stacklok/cel-conditions/validation/http"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence; flags are
// applied by the caller.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.grpc_port", def.Server.GRPCPort)
	v.SetDefault("server.request_timeout", def.Server.RequestTimeout.String())
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout.String())
	v.SetDefault("server.max_batch_size", def.Server.MaxBatchSize)
	v.SetDefault("server.max_body_bytes", def.Server.MaxBodyBytes)
	v.SetDefault("cel.max_expression_length", def.CEL.MaxExpressionLength)
	v.SetDefault("cel.cost_limit", def.CEL.CostLimit)
	v.SetDefault("cel.max_goroutines", def.CEL.MaxGoroutines)
	v.SetDefault("cache.size", def.Cache.Size)
	v.SetDefault("cache.ttl", def.Cache.TTL.String())
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("backend.url", def.Backend.URL)
	v.SetDefault("backend.timeout", def.Backend.Timeout.String())

	// Bind environment variables with CELCOND_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			GRPCPort:        v.GetInt("server.grpc_port"),
			RequestTimeout:  v.GetDuration("server.request_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			MaxBatchSize:    v.GetInt("server.max_batch_size"),
			MaxBodyBytes:    v.GetInt64("server.max_body_bytes"),
		},
		CEL: CELConfig{
			MaxExpressionLength: v.GetInt("cel.max_expression_length"),
			CostLimit:           v.GetUint64("cel.cost_limit"),
			MaxGoroutines:       v.GetInt("cel.max_goroutines"),
		},
		Cache: CacheConfig{
			Size: v.GetInt64("cache.size"),
			TTL:  v.GetDuration("cache.ttl"),
		},
		Log: LogConfig{
			Format: v.GetString("log.format"),
			Level:  v.GetString("log.level"),
		},
		Backend: BackendConfig{
			URL:     v.GetString("backend.url"),
			Timeout: v.GetDuration("backend.timeout"),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks ports, positive limits and timeouts, the log settings and
// the backend URL. Callers that override loaded values with flags should
// validate again.
func Validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.GRPCPort < 0 || cfg.Server.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port must be between 0 and 65535, got %d", cfg.Server.GRPCPort)
	}
	if cfg.Server.GRPCPort != 0 && cfg.Server.GRPCPort == cfg.Server.Port {
		return fmt.Errorf("server.grpc_port must differ from server.port")
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.MaxBatchSize <= 0 {
		return fmt.Errorf("server.max_batch_size must be positive, got %d", cfg.Server.MaxBatchSize)
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", cfg.Server.MaxBodyBytes)
	}
	if cfg.CEL.MaxExpressionLength <= 0 {
		return fmt.Errorf("cel.max_expression_length must be positive, got %d", cfg.CEL.MaxExpressionLength)
	}
	if cfg.CEL.CostLimit == 0 {
		return fmt.Errorf("cel.cost_limit must be positive")
	}
	if cfg.CEL.MaxGoroutines <= 0 {
		return fmt.Errorf("cel.max_goroutines must be positive, got %d", cfg.CEL.MaxGoroutines)
	}
	if cfg.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative, got %d", cfg.Cache.Size)
	}
	if cfg.Cache.Size > 0 && cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when the cache is enabled, got %v", cfg.Cache.TTL)
	}
	if _, err := logging.ParseFormat(cfg.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Backend.URL != "" {
		if err := validation.ValidateServiceURL(cfg.Backend.URL); err != nil {
			return fmt.Errorf("backend.url: %w", err)
		}
		if cfg.Backend.Timeout <= 0 {
			return fmt.Errorf("backend.timeout must be positive, got %v", cfg.Backend.Timeout)
		}
	}
	return nil
}
