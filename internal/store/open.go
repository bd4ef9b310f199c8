package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/config"
	"github.com/feral-file/ff-registry/internal/logger"
)

// Open creates the configured key-value backend and waits until it is reachable.
// The returned close function releases the backend connection.
func Open(ctx context.Context, cfg config.StorageConfig) (KVStore, func() error, error) {
	var (
		kv      KVStore
		closeFn = func() error { return nil }
	)

	switch cfg.Backend {
	case BackendMemory, "":
		logger.WarnCtx(ctx, "Using in-memory storage, registry contents will not survive a restart")
		return NewMemoryStore(), closeFn, nil

	case BackendRedis:
		client, err := adapter.NewRedisClient(cfg.Redis.URL, cfg.Redis.PoolSize)
		if err != nil {
			return nil, nil, err
		}
		kv = NewRedisStore(client)
		closeFn = client.Close

	case BackendPostgres:
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
			return nil, nil, err
		}
		kv = NewPGStore(db)
		closeFn = func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}

		if err := waitReady(ctx, kv, cfg.ConnectTimeout); err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		if err := Migrate(db); err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		logger.InfoCtx(ctx, "Connected to postgres storage",
			zap.String("host", cfg.Database.Host),
			zap.Int("max_open_conns", cfg.Database.MaxOpenConns))
		return kv, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	if err := waitReady(ctx, kv, cfg.ConnectTimeout); err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	logger.InfoCtx(ctx, "Connected to redis storage", zap.Int("pool_size", cfg.Redis.PoolSize))
	return kv, closeFn, nil
}

// waitReady pings the backend with exponential backoff until it answers or the timeout elapses
func waitReady(ctx context.Context, kv KVStore, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = timeout
	if timeout <= 0 {
		b.MaxElapsedTime = 30 * time.Second
	}

	var attemptCount int
	notifyOnError := func(err error, next time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Storage backend not ready, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", next))
	}

	operation := func() error {
		return kv.Ping(ctx)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError); err != nil {
		return fmt.Errorf("storage backend unreachable after %d attempts: %w", attemptCount+1, err)
	}
	return nil
}
