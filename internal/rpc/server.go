// Package rpc serves the DeviceManagement operations over gRPC.
//
// There is no generated code: the service is described by a hand-written
// grpc.ServiceDesc and messages travel as JSON through a registered codec.
// Any gRPC client that speaks the "json" content-subtype can call it; the
// Client type in this package is one.
//
// Lifecycle:
//
//	srv := rpc.NewServer(svc, logger)
//	err := srv.ListenAndServe(ctx, cfg.RPC.Address()) // blocks until ctx is done
//
// Thread Safety: All methods are safe for concurrent use.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// gracefulShutdownTimeout bounds how long in-flight RPCs may run after the
// serve context is cancelled before connections are closed forcibly.
const gracefulShutdownTimeout = 10 * time.Second

// Logger defines the logging interface used by the server.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Server is the gRPC front end for a DeviceManagementServer.
type Server struct {
	grpc   *grpc.Server
	logger Logger
}

// NewServer creates a server dispatching to impl. A nil logger disables
// logging. Extra options are appended after the built-in ones.
func NewServer(impl DeviceManagementServer, logger Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = noopLogger{}
	}
	s := &Server{logger: logger}

	base := []grpc.ServerOption{
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.ChainUnaryInterceptor(
			s.recoveryInterceptor,
			s.loggingInterceptor,
			errorInterceptor,
		),
	}
	s.grpc = grpc.NewServer(append(base, opts...)...)
	s.grpc.RegisterService(&serviceDesc, impl)
	return s
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpc.Serve(lis)
	}()

	s.logger.Info("gRPC server listening", "address", lis.Addr().String())

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving gRPC: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("gRPC server shutting down")
	s.shutdown()
	if err := <-errCh; err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serving gRPC: %w", err)
	}
	return nil
}

// shutdown drains in-flight RPCs, forcing a stop after the timeout.
func (s *Server) shutdown() {
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(gracefulShutdownTimeout):
		s.logger.Warn("graceful gRPC shutdown timed out, forcing stop")
		s.grpc.Stop()
	}
}

// errorInterceptor maps service errors to gRPC status codes.
func errorInterceptor(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return resp, nil
}

// loggingInterceptor logs each call with its outcome and latency.
func (s *Server) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	args := []any{
		"method", info.FullMethod,
		"code", code.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	switch code {
	case codes.OK, codes.NotFound, codes.InvalidArgument, codes.Canceled:
		s.logger.Debug("rpc", args...)
	default:
		s.logger.Warn("rpc failed", append(args, "error", err)...)
	}
	return resp, err
}

// recoveryInterceptor turns a handler panic into codes.Internal.
func (s *Server) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic recovered in rpc handler",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			resp = nil
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}
