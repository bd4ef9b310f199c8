package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/feral-file/ff-registry/internal/api/middleware"
	"github.com/feral-file/ff-registry/internal/api/rest"
	"github.com/feral-file/ff-registry/internal/logger"
	"github.com/feral-file/ff-registry/internal/ratelimit"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Auth         middleware.AuthConfig
	// CORSHeaders are allowed in addition to the standard request headers
	CORSHeaders []string
	// RateLimiter guards the write routes; nil disables limiting
	RateLimiter  ratelimit.Limiter
	RateLimitKey middleware.KeyFunc
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	handler    rest.Handler
	gatherer   prometheus.Gatherer
	httpServer *http.Server
}

// New creates a new API server. A nil gatherer disables /metrics.
func New(cfg Config, handler rest.Handler, gatherer prometheus.Gatherer) *Server {
	return &Server{
		config:   cfg,
		handler:  handler,
		gatherer: gatherer,
	}
}

// Router builds the gin engine with every route and middleware
func (s *Server) Router() *gin.Engine {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS(s.config.CORSHeaders...))

	if s.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	key := s.config.RateLimitKey
	if key == nil {
		key = middleware.PayerOrIP(rest.DEFAULT_PAYER_HEADER)
	}
	rest.SetupRoutes(router, s.handler, s.config.Auth, middleware.RateLimit(s.config.RateLimiter, key))
	return router
}

// Start serves until Shutdown is called or the listener fails
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
