package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string `mapstructure:"url"` // e.g. redis://localhost:6379/0
	PoolSize int    `mapstructure:"pool_size"`
}

// StorageConfig selects and configures the key-value backend
type StorageConfig struct {
	Backend        string         `mapstructure:"backend"` // memory, redis or postgres
	ConnectTimeout time.Duration  `mapstructure:"connect_timeout"`
	Database       DatabaseConfig `mapstructure:"database"`
	Redis          RedisConfig    `mapstructure:"redis"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds admin authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// SigningConfig holds the structured-data signing domain and verification windows
type SigningConfig struct {
	DomainName      string        `mapstructure:"domain_name"`
	DomainVersion   string        `mapstructure:"domain_version"`
	Network         string        `mapstructure:"network"` // mainnet or testnet
	ChallengeTTL    time.Duration `mapstructure:"challenge_ttl"`
	TimestampMaxAge time.Duration `mapstructure:"timestamp_max_age"`
	TimestampSkew   time.Duration `mapstructure:"timestamp_skew"`
}

// PaymentConfig holds the settlement gateway integration
type PaymentConfig struct {
	PayerHeader string `mapstructure:"payer_header"`
}

// RateLimitConfig holds per-client limits on write routes
type RateLimitConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	Burst             int    `mapstructure:"burst"`
	RedisURL          string `mapstructure:"redis_url"` // defaults to storage.redis.url when the backend is redis
	KeyPrefix         string `mapstructure:"key_prefix"`
	// LocalFallback keeps limiting in-process while Redis is unreachable
	LocalFallback bool `mapstructure:"local_fallback"`
	// LocalIdleExpiry drops a local bucket once its client has been idle this long
	LocalIdleExpiry time.Duration `mapstructure:"local_idle_expiry"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize int `mapstructure:"pool_size"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Server        ServerConfig    `mapstructure:"server"`
	Storage       StorageConfig   `mapstructure:"storage"`
	Auth          AuthConfig      `mapstructure:"auth"`
	Signing       SigningConfig   `mapstructure:"signing"`
	Payment       PaymentConfig   `mapstructure:"payment"`
	RateLimit     RateLimitConfig `mapstructure:"rate_limit"`
	Worker        WorkerConfig    `mapstructure:"worker"`
	BlacklistPath string          `mapstructure:"blacklist_path"`
}

// ReconcilerConfig holds configuration for the reconciler program
type ReconcilerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Storage    StorageConfig `mapstructure:"storage"`
	Worker     WorkerConfig  `mapstructure:"worker"`
	// Interval between runs; zero runs once and exits
	Interval time.Duration `mapstructure:"interval"`
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	setStorageDefaults(v)
	v.SetDefault("signing.domain_name", "ff-registry")
	v.SetDefault("signing.domain_version", "1.0.0")
	v.SetDefault("signing.network", "mainnet")
	v.SetDefault("signing.challenge_ttl", "5m")
	v.SetDefault("signing.timestamp_max_age", "5m")
	v.SetDefault("signing.timestamp_skew", "30s")
	v.SetDefault("payment.payer_header", "X-Payment-Payer")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.key_prefix", "ff:registry:limiter:")
	v.SetDefault("rate_limit.local_fallback", true)
	v.SetDefault("rate_limit.local_idle_expiry", "10m")
	v.SetDefault("worker.pool_size", 16)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Storage.Validate(); err != nil {
		return nil, err
	}
	if config.RateLimit.Enabled && config.RateLimit.RequestsPerMinute <= 0 {
		return nil, errors.New("rate_limit.requests_per_minute must be positive")
	}
	if config.RateLimit.RedisURL == "" && config.Storage.Backend == "redis" {
		config.RateLimit.RedisURL = config.Storage.Redis.URL
	}

	return &config, nil
}

// LoadReconcilerConfig loads configuration for the reconciler program
func LoadReconcilerConfig(configFile string, envPath string) (*ReconcilerConfig, error) {
	v := configureViper("reconciler", configFile, envPath)

	// Set defaults
	setStorageDefaults(v)
	v.SetDefault("storage.database.max_open_conns", 5)
	v.SetDefault("storage.database.max_idle_conns", 2)
	v.SetDefault("worker.pool_size", 8)
	v.SetDefault("interval", 0)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg ReconcilerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Storage.Backend == "memory" {
		return nil, errors.New("storage.backend memory cannot be reconciled out of process")
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the selected backend has what it needs to connect
func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("storage.redis.url is required")
		}
		return nil
	case "postgres":
		if c.Database.Host == "" {
			return errors.New("storage.database.host is required")
		}
		if c.Database.DBName == "" {
			return errors.New("storage.database.dbname is required")
		}
		return nil
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Backend)
	}
}

func setStorageDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.connect_timeout", "30s")
	v.SetDefault("storage.database.port", 5432)
	v.SetDefault("storage.database.sslmode", "disable")
	v.SetDefault("storage.redis.pool_size", 10)
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/reconciler/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_REGISTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Storage
		"storage.backend",
		"storage.connect_timeout",
		"storage.database.host",
		"storage.database.port",
		"storage.database.user",
		"storage.database.password",
		"storage.database.dbname",
		"storage.database.sslmode",
		"storage.database.max_open_conns",
		"storage.database.max_idle_conns",
		"storage.database.conn_max_lifetime",
		"storage.database.conn_max_idle_time",
		"storage.redis.url",
		"storage.redis.pool_size",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Signing
		"signing.domain_name",
		"signing.domain_version",
		"signing.network",
		"signing.challenge_ttl",
		"signing.timestamp_max_age",
		"signing.timestamp_skew",
		// Payment
		"payment.payer_header",
		// Rate limit
		"rate_limit.enabled",
		"rate_limit.requests_per_minute",
		"rate_limit.burst",
		"rate_limit.redis_url",
		"rate_limit.key_prefix",
		"rate_limit.local_fallback",
		"rate_limit.local_idle_expiry",
		// Worker
		"worker.pool_size",
		"blacklist_path",
		"interval",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
