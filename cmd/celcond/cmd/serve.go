// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/stacklok/cel-conditions/bridge"
	"github.com/stacklok/cel-conditions/cel"
	"github.com/stacklok/cel-conditions/celservice"
	"github.com/stacklok/cel-conditions/config"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the CEL parse/deparse service",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().String("host", "", "listen host")
	serveCmd.Flags().Int("port", 0, "HTTP port")
	serveCmd.Flags().Int("grpc-port", 0, "gRPC port (0 disables gRPC)")
	serveCmd.Flags().String("backend-url", "", "forward to a remote CEL service instead of parsing in-process")
	return serveCmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("grpc-port") {
		cfg.Server.GRPCPort, _ = cmd.Flags().GetInt("grpc-port")
	}
	if cmd.Flags().Changed("backend-url") {
		cfg.Backend.URL, _ = cmd.Flags().GetString("backend-url")
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	svc, closeSvc, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSvc()

	handler := celservice.NewHandler(svc,
		celservice.WithMaxBatchSize(cfg.Server.MaxBatchSize),
		celservice.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		celservice.WithHandlerLogger(logger),
	)
	httpServer, err := celservice.NewServer(
		net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		handler,
		celservice.WithRequestTimeout(cfg.Server.RequestTimeout),
		celservice.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		celservice.WithServerLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(httpServer.Start)

	if cfg.Server.GRPCPort != 0 {
		grpcServer, err := celservice.NewGRPCServer(
			net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.GRPCPort)),
			svc,
			celservice.WithGRPCMaxBatchSize(cfg.Server.MaxBatchSize),
			celservice.WithGRPCShutdownTimeout(cfg.Server.ShutdownTimeout),
			celservice.WithGRPCLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("failed to create gRPC server: %w", err)
		}
		p.Go(grpcServer.Start)
	}

	logger.Info("starting CEL condition service",
		"http_port", cfg.Server.Port,
		"grpc_port", cfg.Server.GRPCPort,
		"backend", backendName(cfg),
	)
	if err := p.Wait(); err != nil {
		return err
	}
	logger.Info("CEL condition service stopped")
	return nil
}

// newService returns the in-process service, or a client for the configured
// remote one.
func newService(cfg *config.Config, logger *slog.Logger) (bridge.Service, func(), error) {
	if cfg.Backend.URL != "" {
		client, err := celservice.NewClient(cfg.Backend.URL,
			celservice.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout}),
			celservice.WithClientLogger(logger),
		)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	}

	engine := cel.NewEngine().
		WithMaxExpressionLength(cfg.CEL.MaxExpressionLength).
		WithCostLimit(cfg.CEL.CostLimit)
	local := celservice.NewLocal(
		celservice.WithEngine(engine),
		celservice.WithCacheSize(cfg.Cache.Size),
		celservice.WithCacheTTL(cfg.Cache.TTL),
		celservice.WithMaxGoroutines(cfg.CEL.MaxGoroutines),
		celservice.WithLocalLogger(logger),
	)
	return local, local.Close, nil
}

func backendName(cfg *config.Config) string {
	if cfg.Backend.URL != "" {
		return cfg.Backend.URL
	}
	return "local"
}
