// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package celservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	celpb "cel.dev/expr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/stacklok/cel-conditions/bridge"
	"github.com/stacklok/cel-conditions/httperr"
)

// gRPC method names. Source text travels as a google.protobuf.ListValue of
// strings and trees as a cel.expr.Expr.CreateList, so the binding needs no
// generated code.
const (
	GRPCServiceName        = "stacklok.celconditions.v1.CELService"
	grpcBatchParseMethod   = "/" + GRPCServiceName + "/BatchParse"
	grpcBatchDeparseMethod = "/" + GRPCServiceName + "/BatchDeparse"
)

// grpcService adapts a bridge.Service to the gRPC handlers below.
type grpcService struct {
	svc          bridge.Service
	maxBatchSize int
}

func (g *grpcService) batchParse(ctx context.Context, in *structpb.ListValue) (*celpb.Expr_CreateList, error) {
	if len(in.GetValues()) > g.maxBatchSize {
		return nil, status.Errorf(codes.ResourceExhausted, "%v: %d > %d", ErrBatchTooLarge, len(in.GetValues()), g.maxBatchSize)
	}
	texts := make([]string, len(in.GetValues()))
	for i, v := range in.GetValues() {
		s, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "%v: element %d is not a string", ErrInvalidRequest, i)
		}
		texts[i] = s.StringValue
	}
	exprs, err := g.svc.BatchParse(ctx, texts)
	if err != nil {
		return nil, toStatus(err)
	}
	return &celpb.Expr_CreateList{Elements: exprs}, nil
}

func (g *grpcService) batchDeparse(ctx context.Context, in *celpb.Expr_CreateList) (*structpb.ListValue, error) {
	if len(in.GetElements()) > g.maxBatchSize {
		return nil, status.Errorf(codes.ResourceExhausted, "%v: %d > %d", ErrBatchTooLarge, len(in.GetElements()), g.maxBatchSize)
	}
	texts, err := g.svc.BatchDeparse(ctx, in.GetElements())
	if err != nil {
		return nil, toStatus(err)
	}
	out := &structpb.ListValue{Values: make([]*structpb.Value, len(texts))}
	for i, t := range texts {
		out.Values[i] = structpb.NewStringValue(t)
	}
	return out, nil
}

var grpcServiceDesc = grpc.ServiceDesc{
	ServiceName: GRPCServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "BatchParse",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(structpb.ListValue)
				if err := dec(in); err != nil {
					return nil, err
				}
				g := srv.(*grpcService)
				if interceptor == nil {
					return g.batchParse(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: grpcBatchParseMethod}
				return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
					return g.batchParse(ctx, req.(*structpb.ListValue))
				})
			},
		},
		{
			MethodName: "BatchDeparse",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(celpb.Expr_CreateList)
				if err := dec(in); err != nil {
					return nil, err
				}
				g := srv.(*grpcService)
				if interceptor == nil {
					return g.batchDeparse(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: grpcBatchDeparseMethod}
				return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
					return g.batchDeparse(ctx, req.(*celpb.Expr_CreateList))
				})
			},
		},
	},
	Streams: []grpc.StreamDesc{},
}

// toStatus maps a service error onto a gRPC status, using the same
// classification as the HTTP handler.
func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	switch httperr.Code(classify(err)) {
	case http.StatusBadRequest:
		return status.Error(codes.InvalidArgument, err.Error())
	case http.StatusRequestEntityTooLarge:
		return status.Error(codes.ResourceExhausted, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// fromStatus maps a gRPC status back onto an httperr coded error so callers
// see the same codes from both transports.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	code := http.StatusInternalServerError
	switch st.Code() {
	case codes.InvalidArgument:
		code = http.StatusBadRequest
	case codes.ResourceExhausted:
		code = http.StatusRequestEntityTooLarge
	case codes.Unavailable:
		code = http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		code = http.StatusGatewayTimeout
	case codes.Unimplemented:
		code = http.StatusNotImplemented
	}
	return httperr.WithCode(err, code)
}

// unaryLogger logs each call with its outcome.
func unaryLogger(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
			if status.Code(err) == codes.Internal {
				level = slog.LevelError
			}
		}
		logger.Log(ctx, level, "gRPC call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

// GRPCServer manages the gRPC server lifecycle for a bridge.Service.
type GRPCServer struct {
	addr            string
	server          *grpc.Server
	health          *health.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// GRPCServerOption configures a GRPCServer.
type GRPCServerOption func(*grpcServerConfig)

type grpcServerConfig struct {
	maxBatchSize    int
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// WithGRPCMaxBatchSize sets the largest accepted batch.
func WithGRPCMaxBatchSize(n int) GRPCServerOption {
	return func(c *grpcServerConfig) { c.maxBatchSize = n }
}

// WithGRPCShutdownTimeout bounds a graceful stop before the server is
// forcibly stopped.
func WithGRPCShutdownTimeout(d time.Duration) GRPCServerOption {
	return func(c *grpcServerConfig) { c.shutdownTimeout = d }
}

// WithGRPCLogger sets the logger.
func WithGRPCLogger(l *slog.Logger) GRPCServerOption {
	return func(c *grpcServerConfig) { c.logger = l }
}

// NewGRPCServer creates a gRPC server exposing svc and the standard health
// service.
func NewGRPCServer(addr string, svc bridge.Service, opts ...GRPCServerOption) (*GRPCServer, error) {
	if svc == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	cfg := &grpcServerConfig{
		maxBatchSize:    DefaultMaxBatchSize,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogger(cfg.logger)))
	server.RegisterService(&grpcServiceDesc, &grpcService{svc: svc, maxBatchSize: cfg.maxBatchSize})

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus(GRPCServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		addr:            addr,
		server:          server,
		health:          healthServer,
		shutdownTimeout: cfg.shutdownTimeout,
		logger:          cfg.logger,
	}, nil
}

// Start binds the listener and serves until Shutdown is called or ctx is
// done, in which case it shuts down gracefully.
func (s *GRPCServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.addr, err)
	}
	stop := context.AfterFunc(ctx, func() {
		if err := s.Shutdown(context.Background()); err != nil {
			s.logger.Error("gRPC shutdown after cancellation failed", "error", err)
		}
	})
	defer stop()
	return s.Serve(ln)
}

// Serve serves on an existing listener until Shutdown is called.
func (s *GRPCServer) Serve(ln net.Listener) error {
	s.logger.Info("CEL gRPC service listening", "addr", ln.Addr().String())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown marks the service not serving and stops gracefully, forcing a stop
// when ctx is done or the shutdown timeout passes first.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(s.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-timer.C:
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}

// GRPCClient calls a remote CEL service over gRPC. It implements
// bridge.Service.
type GRPCClient struct {
	conn *grpc.ClientConn
}

// NewGRPCClient dials target without transport security unless opts say
// otherwise. The connection is established lazily.
func NewGRPCClient(target string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gRPC client for %s: %w", target, err)
	}
	return &GRPCClient{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// BatchParse implements bridge.Service.
func (c *GRPCClient) BatchParse(ctx context.Context, expressions []string) ([]*celpb.Expr, error) {
	in := &structpb.ListValue{Values: make([]*structpb.Value, len(expressions))}
	for i, s := range expressions {
		in.Values[i] = structpb.NewStringValue(s)
	}
	out := new(celpb.Expr_CreateList)
	if err := c.conn.Invoke(ctx, grpcBatchParseMethod, in, out); err != nil {
		return nil, fromStatus(err)
	}
	return out.GetElements(), nil
}

// BatchDeparse implements bridge.Service.
func (c *GRPCClient) BatchDeparse(ctx context.Context, expressions []*celpb.Expr) ([]string, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, grpcBatchDeparseMethod, &celpb.Expr_CreateList{Elements: expressions}, out); err != nil {
		return nil, fromStatus(err)
	}
	texts := make([]string, len(out.GetValues()))
	for i, v := range out.GetValues() {
		s, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is not a string", ErrInvalidResponse, i)
		}
		texts[i] = s.StringValue
	}
	return texts, nil
}
