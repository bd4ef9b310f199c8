package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  port: 9090
storage:
  backend: postgres
  database:
    host: localhost
    user: testuser
    password: testpass
    dbname: registry
    sslmode: require
auth:
  api_keys: ["k1", "k2"]
signing:
  network: testnet
  challenge_ttl: "2m"
blacklist_path: "config/blacklist.json"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "postgres", cfg.Storage.Backend)
				assert.Equal(t, "localhost", cfg.Storage.Database.Host)
				assert.Equal(t, 5432, cfg.Storage.Database.Port)
				assert.Equal(t, "require", cfg.Storage.Database.SSLMode)
				assert.Equal(t, []string{"k1", "k2"}, cfg.Auth.APIKeys)
				assert.Equal(t, "testnet", cfg.Signing.Network)
				assert.Equal(t, 2*time.Minute, cfg.Signing.ChallengeTTL)
				assert.Equal(t, "config/blacklist.json", cfg.BlacklistPath)
			},
		},
		{
			name:       "config with defaults",
			configFile: `debug: false`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "memory", cfg.Storage.Backend)
				assert.Equal(t, 30*time.Second, cfg.Storage.ConnectTimeout)
				assert.Equal(t, "ff-registry", cfg.Signing.DomainName)
				assert.Equal(t, "1.0.0", cfg.Signing.DomainVersion)
				assert.Equal(t, "mainnet", cfg.Signing.Network)
				assert.Equal(t, 5*time.Minute, cfg.Signing.ChallengeTTL)
				assert.Equal(t, 5*time.Minute, cfg.Signing.TimestampMaxAge)
				assert.Equal(t, 30*time.Second, cfg.Signing.TimestampSkew)
				assert.Equal(t, "X-Payment-Payer", cfg.Payment.PayerHeader)
				assert.Equal(t, 16, cfg.Worker.WorkerPoolSize)
				assert.True(t, cfg.RateLimit.Enabled)
				assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
				assert.Equal(t, 20, cfg.RateLimit.Burst)
				assert.Empty(t, cfg.RateLimit.RedisURL)
				assert.True(t, cfg.RateLimit.LocalFallback)
				assert.Equal(t, 10*time.Minute, cfg.RateLimit.LocalIdleExpiry)
			},
		},
		{
			name: "rate limiter shares the storage redis",
			configFile: `
storage:
  backend: redis
  redis:
    url: redis://cache:6379/1
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, "redis://cache:6379/1", cfg.RateLimit.RedisURL)
			},
		},
		{
			name: "rate limit without a rate",
			configFile: `
rate_limit:
  requests_per_minute: 0
`,
			expectError: true,
		},
		{
			name: "redis backend without url",
			configFile: `
storage:
  backend: redis
`,
			expectError: true,
		},
		{
			name: "unknown backend",
			configFile: `
storage:
  backend: etcd
`,
			expectError: true,
		},
		{
			name: "invalid port",
			configFile: `
server:
  port: invalid
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadAPIConfig(writeConfig(t, tt.configFile), t.TempDir())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadAPIConfig_Environment(t *testing.T) {
	t.Setenv("FF_REGISTRY_STORAGE_BACKEND", "redis")
	t.Setenv("FF_REGISTRY_STORAGE_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("FF_REGISTRY_SIGNING_TIMESTAMP_SKEW", "10s")

	cfg, err := LoadAPIConfig(writeConfig(t, "debug: true"), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Storage.Redis.URL)
	assert.Equal(t, 10, cfg.Storage.Redis.PoolSize)
	assert.Equal(t, 10*time.Second, cfg.Signing.TimestampSkew)
}

func TestLoadAPIConfig_EnvFile(t *testing.T) {
	envDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte("FF_REGISTRY_SERVER_PORT=7000\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("FF_REGISTRY_SERVER_PORT") })

	cfg, err := LoadAPIConfig(writeConfig(t, "debug: true"), envDir)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadReconcilerConfig(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		cfg, err := LoadReconcilerConfig(writeConfig(t, `
storage:
  backend: postgres
  database:
    host: db
    dbname: registry
interval: "10m"
`), t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, 10*time.Minute, cfg.Interval)
		assert.Equal(t, 5, cfg.Storage.Database.MaxOpenConns)
		assert.Equal(t, 2, cfg.Storage.Database.MaxIdleConns)
		assert.Equal(t, 8, cfg.Worker.WorkerPoolSize)
	})

	t.Run("memory backend is rejected", func(t *testing.T) {
		_, err := LoadReconcilerConfig(writeConfig(t, `
storage:
  backend: memory
`), t.TempDir())
		assert.Error(t, err)
	})

	t.Run("postgres without database name", func(t *testing.T) {
		_, err := LoadReconcilerConfig(writeConfig(t, `
storage:
  backend: postgres
  database:
    host: db
`), t.TempDir())
		assert.Error(t, err)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "u",
		Password: "p",
		DBName:   "registry",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=registry sslmode=disable", cfg.DSN())
}
