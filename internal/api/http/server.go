package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/pipefilter/internal/api/middleware"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/logging"
)

// RouterConfig configures the admin router.
type RouterConfig struct {
	Development bool
	RateLimit   middleware.RateLimitConfig
}

// NewRouter registers the admin routes on a fresh gin engine.
func NewRouter(h *Handlers, logger *logging.Logger, cfg RouterConfig) *gin.Engine {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	if cfg.RateLimit.Enabled() {
		router.Use(middleware.GlobalRateLimit(cfg.RateLimit))
	}

	router.GET("/health", h.Health)
	router.GET("/stats", h.Stats)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{})))
	}

	return router
}

// Server runs the admin router on its own listener.
type Server struct {
	srv    *http.Server
	logger *logging.Logger
}

// NewServer creates an admin server listening on addr.
func NewServer(addr string, router *gin.Engine, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.Named("admin"),
	}
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("Starting admin server", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener and waits for open requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down admin server")
	return s.srv.Shutdown(ctx)
}
