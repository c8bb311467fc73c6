package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Covalent data gateway configuration
	Gateway GatewayConfig

	// Optional Ethereum node configuration
	Ethereum EthereumConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Registry persistence configuration
	Store StoreConfig

	// Background refresher configuration
	Refresher RefresherConfig

	// Chain registry configuration
	Chains ChainsConfig

	// Logging configuration
	Log LogConfig
}

// GatewayConfig holds Covalent API settings
type GatewayConfig struct {
	APIKey         string        `envconfig:"COVALENT_API_KEY" default:""`
	BaseURL        string        `envconfig:"COVALENT_BASE_URL" default:"https://api.covalenthq.com/v1"`
	RequestTimeout time.Duration `envconfig:"COVALENT_REQUEST_TIMEOUT" default:"15s"`
	MaxRetries     int           `envconfig:"COVALENT_MAX_RETRIES" default:"2"`
	RetryDelay     time.Duration `envconfig:"COVALENT_RETRY_DELAY" default:"500ms"`
	RateLimitRPS   float64       `envconfig:"COVALENT_RATE_LIMIT_RPS" default:"4"`
}

// EthereumConfig holds Ethereum node connection settings. An empty RPC URL
// disables metadata lookups and receipt enrichment.
type EthereumConfig struct {
	RPCURL         string        `envconfig:"ETH_RPC_URL" default:""`
	ChainID        int64         `envconfig:"ETH_CHAIN_ID" default:"1"`
	RequestTimeout time.Duration `envconfig:"ETH_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"ETH_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"ETH_RETRY_DELAY" default:"1s"`
}

// Enabled reports whether an RPC endpoint is configured
func (c EthereumConfig) Enabled() bool {
	return c.RPCURL != ""
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"wallet"`
	Password        string        `envconfig:"DB_PASSWORD" default:"wallet"`
	Name            string        `envconfig:"DB_NAME" default:"wallet_dashboard"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings. Redis backs the response
// cache when enabled, otherwise an in-process cache is used.
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	CORSOrigins     []string      `envconfig:"API_CORS_ORIGINS" default:"http://localhost:3000"`
	BalancesTTL     time.Duration `envconfig:"API_BALANCES_TTL" default:"30s"`
	TransactionsTTL time.Duration `envconfig:"API_TRANSACTIONS_TTL" default:"60s"`
}

// Store backends
const (
	StoreBackendPostgres = "postgres"
	StoreBackendRedis    = "redis"
	StoreBackendMemory   = "memory"
)

// StoreConfig selects where the registry state is persisted
type StoreConfig struct {
	Backend   string `envconfig:"STORE_BACKEND" default:"memory"`
	Namespace string `envconfig:"STORE_NAMESPACE" default:"portfolio-wallet-storage"`
}

// RefresherConfig holds background refresher settings
type RefresherConfig struct {
	MetricsPort int           `envconfig:"REFRESHER_METRICS_PORT" default:"8080"`
	Interval    time.Duration `envconfig:"REFRESHER_INTERVAL" default:"30s"`
	WorkerCount int           `envconfig:"REFRESHER_WORKER_COUNT" default:"4"`
	PageSize    int           `envconfig:"REFRESHER_PAGE_SIZE" default:"20"`
	RefreshNFTs bool          `envconfig:"REFRESHER_REFRESH_NFTS" default:"false"`
	Addresses   []string      `envconfig:"REFRESHER_ADDRESSES" default:""`
	ChainIDs    []int64       `envconfig:"REFRESHER_CHAIN_IDS" default:"1"`
}

// ChainsConfig points at an optional YAML file with chain overrides
type ChainsConfig struct {
	OverridesFile string `envconfig:"CHAINS_FILE" default:""`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendPostgres, StoreBackendRedis, StoreBackendMemory:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: expected postgres, redis or memory", c.Store.Backend)
	}
	if c.Store.Backend == StoreBackendRedis && !c.Redis.Enabled {
		return fmt.Errorf("STORE_BACKEND=redis requires REDIS_ENABLED=true")
	}
	if c.Refresher.WorkerCount < 1 {
		return fmt.Errorf("REFRESHER_WORKER_COUNT must be at least 1")
	}
	if c.Refresher.Interval <= 0 {
		return fmt.Errorf("REFRESHER_INTERVAL must be positive")
	}
	if c.Gateway.RateLimitRPS <= 0 {
		return fmt.Errorf("COVALENT_RATE_LIMIT_RPS must be positive")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Addr returns the Redis host:port
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
