package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/api/middleware"
	"github.com/feral-file/ff-registry/internal/api/rest"
	"github.com/feral-file/ff-registry/internal/api/server"
	"github.com/feral-file/ff-registry/internal/auth"
	"github.com/feral-file/ff-registry/internal/config"
	"github.com/feral-file/ff-registry/internal/logger"
	"github.com/feral-file/ff-registry/internal/metrics"
	"github.com/feral-file/ff-registry/internal/ratelimit"
	"github.com/feral-file/ff-registry/internal/registry"
	"github.com/feral-file/ff-registry/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Service:         "registry-api",
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Feral File Registry API")

	// Connect to the key-value backend
	kv, closeStore, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open storage", zap.Error(err), zap.String("backend", cfg.Storage.Backend))
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error(fmt.Errorf("failed to close storage: %w", err))
		}
	}()
	logger.InfoCtx(ctx, "Connected to storage", zap.String("backend", cfg.Storage.Backend))

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize adapters
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()

	// Registry directory
	directory := registry.NewDirectory(kv, jsonAdapter, adapter.NewJCS(), clock, adapter.NewULID(), m, registry.Config{
		WorkerPoolSize: cfg.Worker.WorkerPoolSize,
	})
	defer directory.Close()

	// Signing domain and authenticator
	signingDomain, err := auth.NewDomain(cfg.Signing.DomainName, cfg.Signing.DomainVersion, auth.Network(cfg.Signing.Network))
	if err != nil {
		logger.FatalCtx(ctx, "Invalid signing domain", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(auth.Config{
		Domain:          signingDomain,
		ChallengeTTL:    cfg.Signing.ChallengeTTL,
		TimestampMaxAge: cfg.Signing.TimestampMaxAge,
		TimestampSkew:   cfg.Signing.TimestampSkew,
	}, auth.NewChallengeStore(clock), clock, adapter.NewRandom(), adapter.NewUUID(), m)
	logger.InfoCtx(ctx, "Signing domain configured",
		zap.String("name", signingDomain.Name),
		zap.String("version", signingDomain.Version),
		zap.Uint64("chain_id", signingDomain.ChainID))

	// Load blacklist registry
	var blacklistRegistry registry.BlacklistRegistry
	if cfg.BlacklistPath != "" {
		blacklistLoader := registry.NewBlacklistRegistryLoader(fs, jsonAdapter)
		blacklistRegistry, err = blacklistLoader.Load(cfg.BlacklistPath)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to load blacklist registry",
				zap.Error(err),
				zap.String("path", cfg.BlacklistPath))
		}
		logger.InfoCtx(ctx, "Loaded blacklist registry", zap.String("path", cfg.BlacklistPath))
	} else {
		logger.WarnCtx(ctx, "Blacklist registry path not configured, all hosts and owners will be allowed")
	}

	// Per-client limits on write routes, shared across replicas through Redis when configured
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		var distributed adapter.RedisRateLimiter
		if cfg.RateLimit.RedisURL != "" {
			redisClient, err := adapter.NewRedisClient(cfg.RateLimit.RedisURL, 0)
			if err != nil {
				logger.FatalCtx(ctx, "Failed to create rate limiter redis client", zap.Error(err))
			}
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Error(fmt.Errorf("failed to close rate limiter redis client: %w", err))
				}
			}()
			distributed = redisClient.NewRateLimiter()
		}
		limiter = ratelimit.New(cfg.RateLimit, distributed, clock, m)
		logger.InfoCtx(ctx, "Rate limiter configured",
			zap.Int("requests_per_minute", cfg.RateLimit.RequestsPerMinute),
			zap.Bool("distributed", distributed != nil))
	}

	payments := rest.NewHeaderPaymentResolver(cfg.Payment.PayerHeader)
	handler := rest.NewHandler(cfg.Debug, directory, authenticator, payments, blacklistRegistry, kv, clock)

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
		CORSHeaders:  []string{payments.Header()},
		RateLimiter:  limiter,
		RateLimitKey: middleware.PayerOrIP(payments.Header()),
	}

	srv := server.New(serverConfig, handler, reg)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
