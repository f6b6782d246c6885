// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package cmd holds the celcond commands.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stacklok/cel-conditions/config"
	"github.com/stacklok/cel-conditions/env"
	"github.com/stacklok/cel-conditions/logging"
)

var (
	configFile string
	logLevel   string
	logFormat  string
)

// NewRootCmd builds the celcond command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "celcond",
		Short:        "CEL condition service and tooling",
		Long:         `celcond parses and deparses CEL conditions over HTTP and gRPC, and renders condition templates.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")

	rootCmd.AddCommand(newServeCmd(), newRenderCmd(), newParseCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads the config file and applies the persistent log flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg. UNSTRUCTURED_LOGS and
// LOG_LEVEL only apply where the config leaves the default.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	def := config.Default()
	var opts []logging.Option
	if cfg.Log.Format != def.Log.Format {
		opts = append(opts, logging.WithFormat(format))
	}
	if cfg.Log.Level != def.Log.Level {
		opts = append(opts, logging.WithLevel(level))
	}
	opts = append(opts, logging.WithOutput(cmd.ErrOrStderr()))
	return logging.NewFromEnv(&env.OSReader{}, opts...), nil
}
