// Package api provides the HTTP REST API and WebSocket server for the fleet daemon.
//
// It exposes the same five device management operations as the gRPC
// service, plus health and metrics endpoints, and streams fleet events to
// WebSocket subscribers.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/fleet-core/internal/fleet"
	"github.com/nerrad567/fleet-core/internal/infrastructure/config"
	"github.com/nerrad567/fleet-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Service is the device management core served by the API.
// *fleet.Service implements it.
type Service interface {
	RegisterDevice(ctx context.Context, req fleet.RegisterDeviceRequest) (fleet.RegisterDeviceResponse, error)
	SetDeviceStatus(ctx context.Context, req fleet.SetDeviceStatusRequest) (fleet.SetDeviceStatusResponse, error)
	GetDeviceInfo(ctx context.Context, req fleet.GetDeviceInfoRequest) (fleet.GetDeviceInfoResponse, error)
	InitiateDeviceAction(ctx context.Context, req fleet.InitiateDeviceActionRequest) (fleet.InitiateDeviceActionResponse, error)
	GetDeviceActionStatus(ctx context.Context, req fleet.GetDeviceActionStatusRequest) (fleet.GetDeviceActionStatusResponse, error)
	GetStats() fleet.Stats
}

// ConnectionChecker reports broker connectivity for metrics.
type ConnectionChecker interface {
	IsConnected() bool
}

// DBStatsProvider reports connection pool statistics for metrics.
type DBStatsProvider interface {
	Stats() sql.DBStats
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Service Service
	MQTT    ConnectionChecker // optional, metrics only
	DB      DBStatsProvider   // optional, metrics only
	Audit   AuditLister       // optional, enables GET /audit
	Version string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	service   Service
	mqtt      ConnectionChecker
	db        DBStatsProvider
	audit     AuditLister
	version   string
	startTime time.Time
	server    *http.Server
	hub       *Hub
	cancel    context.CancelFunc // stops the hub on Close()
}

// New creates a new API server with the given dependencies.
//
// The WebSocket hub is created immediately so it can be registered as a
// fleet event sink before the server starts. The listener is not opened
// until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Service == nil {
		return nil, fmt.Errorf("fleet service is required")
	}

	wsCfg := withWebSocketDefaults(deps.WS)
	return &Server{
		cfg:       deps.Config,
		wsCfg:     wsCfg,
		logger:    deps.Logger,
		service:   deps.Service,
		mqtt:      deps.MQTT,
		db:        deps.DB,
		audit:     deps.Audit,
		version:   deps.Version,
		startTime: time.Now(),
		hub:       NewHub(wsCfg, deps.Logger),
	}, nil
}

// Hub returns the WebSocket hub. Register it with the fleet service to
// stream events to connected clients.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start opens the listener and begins serving in a background goroutine.
//
// Listen errors (port in use, bad address) are returned synchronously.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Address()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ServeTLS(lis, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", addr)
			err = s.server.Serve(lis)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// withWebSocketDefaults fills zero WebSocket settings so pumps never run
// with a zero ticker interval.
func withWebSocketDefaults(cfg config.WebSocketConfig) config.WebSocketConfig {
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 8192
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 10
	}
	return cfg
}
