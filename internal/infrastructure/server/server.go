package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	handlers "github.com/GriffinCanCode/filemanager-connector/internal/api/http"
	"github.com/GriffinCanCode/filemanager-connector/internal/api/middleware"
	"github.com/GriffinCanCode/filemanager-connector/internal/domain/filemanager"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/config"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/logging"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/monitoring"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	adapter *filemanager.Adapter
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	connector, err := LoadConnector(cfg.Connector, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing filemanager connector",
		zap.String("port", cfg.Server.Port),
		zap.String("route", cfg.Connector.Route),
		zap.String("root", connector.RootDir()),
	)

	metrics := monitoring.NewMetrics()

	adapter, err := filemanager.New(connector, filemanager.Options{
		Logger:           logger,
		ListConcurrency:  cfg.Connector.ListConcurrency,
		DisablePathLocks: !cfg.Connector.PathLocks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create filemanager: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger.Named("http")))
	router.Use(monitoring.Middleware(metrics))

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	}
	router.Use(middleware.CORS(corsCfg))

	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	h := handlers.NewHandlers(adapter, metrics, logger, connector.Connector.UploadDir)

	router.GET(cfg.Connector.Route, h.Connector)
	router.POST(cfg.Connector.Route, h.Connector)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if dir := cfg.Server.StaticDir; dir != "" {
		logger.Info("Serving static files", zap.String("dir", dir))
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(dir))))
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		adapter: adapter,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// LoadConnector reads the connector file named by cfg and applies the
// deployment overrides. A missing file selects the built-in defaults.
func LoadConnector(cfg config.ConnectorConfig, logger *logging.Logger) (*config.Connector, error) {
	connector, err := config.LoadConnector(cfg.ConfigPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("Connector config not found, using defaults", zap.String("path", cfg.ConfigPath))
		connector = config.DefaultConnector()
	case err != nil:
		return nil, err
	}
	return connector.WithOverrides(cfg), nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}

// Close flushes the logger.
func (s *Server) Close() error {
	_ = s.logger.Sync()
	return nil
}
