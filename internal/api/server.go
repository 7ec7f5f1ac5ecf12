package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/mastercontrol/internal/device"
	"github.com/nerrad567/mastercontrol/internal/deviceconfig"
	"github.com/nerrad567/mastercontrol/internal/devicelog"
	"github.com/nerrad567/mastercontrol/internal/infrastructure/config"
	"github.com/nerrad567/mastercontrol/internal/infrastructure/database"
	"github.com/nerrad567/mastercontrol/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// WebSocket fallbacks for zero-valued settings.
const (
	defaultWSMaxMessageSize = 8192
	defaultWSPingInterval   = 30
	defaultWSPongTimeout    = 10
)

// DevicePublisher pushes device events to the message bus.
// *mqtt.Client satisfies it.
type DevicePublisher interface {
	PublishDeviceConfig(deviceID string, payload []byte) error
	PublishDeviceRegistered(deviceID string, payload []byte) error
	IsConnected() bool
}

// ActivityRecorder records per-device activity for time-series reporting.
// *influxdb.Client satisfies it.
type ActivityRecorder interface {
	WriteDeviceActivity(deviceID, event string)
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Devices *device.Index
	Configs *deviceconfig.Store
	Logs    *devicelog.Store

	// StorageBackend names the record store backend for health and metrics.
	StorageBackend string

	// Optional.
	DB        *database.DB
	Publisher DevicePublisher
	Activity  ActivityRecorder

	Version string
}

// Server is the HTTP API server for Master Control.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg            config.APIConfig
	wsCfg          config.WebSocketConfig
	logger         *logging.Logger
	devices        *device.Index
	configs        *deviceconfig.Store
	logs           *devicelog.Store
	storageBackend string
	db             *database.DB
	publisher      DevicePublisher
	activity       ActivityRecorder
	version        string
	startTime      time.Time

	hub      *Hub
	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Devices == nil {
		return nil, fmt.Errorf("device index is required")
	}
	if deps.Configs == nil {
		return nil, fmt.Errorf("config store is required")
	}
	if deps.Logs == nil {
		return nil, fmt.Errorf("log store is required")
	}

	s := &Server{
		cfg:            deps.Config,
		wsCfg:          deps.WS,
		logger:         deps.Logger,
		devices:        deps.Devices,
		configs:        deps.Configs,
		logs:           deps.Logs,
		storageBackend: deps.StorageBackend,
		db:             deps.DB,
		publisher:      deps.Publisher,
		activity:       deps.Activity,
		version:        deps.Version,
		startTime:      time.Now(),
	}
	if s.wsCfg.MaxMessageSize <= 0 {
		s.wsCfg.MaxMessageSize = defaultWSMaxMessageSize
	}
	if s.wsCfg.PingInterval <= 0 {
		s.wsCfg.PingInterval = defaultWSPingInterval
	}
	if s.wsCfg.PongTimeout <= 0 {
		s.wsCfg.PongTimeout = defaultWSPongTimeout
	}
	s.hub = NewHub(s.wsCfg, s.logger)

	return s, nil
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start binds the listener and serves HTTP in the background until Close.
//
// Binding happens synchronously so a port already in use is reported here
// rather than in the logs.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.ReadTimeout(),
		WriteTimeout:      s.cfg.WriteTimeout(),
		IdleTimeout:       s.cfg.IdleTimeout(),
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
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

// HealthCheck verifies the API server is running.
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
