// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds all configuration for our application
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Security SecurityConfig
	Storage  StorageConfig
	Order    OrderConfig
	Cart     CartConfig
	Loyalty  LoyaltyConfig
	Logging  LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"E-commerce Core"`
	Version     string `env:"APP_VERSION" envDefault:"1.0.0"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Debug       bool   `env:"APP_DEBUG" envDefault:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            string        `env:"APP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string        `env:"DB_HOST" envDefault:"localhost"`
	Port         string        `env:"DB_PORT" envDefault:"5432"`
	Name         string        `env:"DB_NAME" envDefault:"ecommerce_db"`
	User         string        `env:"DB_USER" envDefault:"ecommerce_user"`
	Password     string        `env:"DB_PASSWORD" envDefault:"ecommerce_password"`
	SSLMode      string        `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxLifetime  time.Duration `env:"DB_MAX_LIFETIME" envDefault:"300s"`
	LogQueries   bool          `env:"DB_LOG_QUERIES" envDefault:"false"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string `env:"REDIS_HOST" envDefault:"localhost"`
	Port         string `env:"REDIS_PORT" envDefault:"6379"`
	Password     string `env:"REDIS_PASSWORD"`
	DB           int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize     int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"5"`
}

// JWTConfig contains JWT token configuration
type JWTConfig struct {
	Secret            string        `env:"JWT_SECRET" envDefault:"your-super-secret-jwt-key-change-in-production"`
	AccessTokenExpiry time.Duration `env:"JWT_ACCESS_EXPIRE" envDefault:"24h"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	BcryptCost         int      `env:"BCRYPT_COST" envDefault:"12"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"100"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:3001"`
	CORSAllowedMethods []string `env:"CORS_ALLOWED_METHODS" envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	CORSAllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envDefault:"Origin,Content-Type,Accept,Authorization"`
	TrustedProxies     []string `env:"TRUSTED_PROXIES"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
}

// OrderConfig contains order lifecycle configuration
type OrderConfig struct {
	LockTimeout      time.Duration `env:"ORDER_LOCK_TIMEOUT" envDefault:"5s"`
	IDLength         int           `env:"ORDER_ID_LENGTH" envDefault:"6"`
	CompleteRetries  int           `env:"ORDER_COMPLETE_RETRIES" envDefault:"3"`
	CreateIDAttempts int           `env:"ORDER_CREATE_ID_ATTEMPTS" envDefault:"5"`
}

// CartConfig contains cart configuration
type CartConfig struct {
	GuestTTL      time.Duration `env:"CART_GUEST_TTL" envDefault:"24h"`
	SessionCookie string        `env:"CART_SESSION_COOKIE" envDefault:"cart_session"`
}

// LoyaltyConfig contains score and discount accrual configuration
type LoyaltyConfig struct {
	BonusUnit        int64 `env:"LOYALTY_BONUS_UNIT" envDefault:"10000"`
	Tier1Min         int64 `env:"LOYALTY_TIER1_MIN" envDefault:"500"`
	Tier1Max         int64 `env:"LOYALTY_TIER1_MAX" envDefault:"1000"`
	Tier2Max         int64 `env:"LOYALTY_TIER2_MAX" envDefault:"1500"`
	CurrencyPerPoint int64 `env:"LOYALTY_CURRENCY_PER_POINT" envDefault:"1000"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"debug"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse reads the environment into a Config without touching .env files
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters long")
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Host == "" {
			return errors.New("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return errors.New("DB_NAME is required")
		}
		if c.Database.User == "" {
			return errors.New("DB_USER is required")
		}
		if c.Redis.Host == "" {
			return errors.New("REDIS_HOST is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT is required")
	}

	if c.Order.LockTimeout <= 0 {
		return errors.New("ORDER_LOCK_TIMEOUT must be positive")
	}
	if c.Order.IDLength < 6 {
		return errors.New("ORDER_ID_LENGTH must be at least 6")
	}

	l := c.Loyalty
	if l.BonusUnit < 0 {
		return errors.New("LOYALTY_BONUS_UNIT must not be negative")
	}
	if l.Tier1Min <= 0 || l.Tier1Min > l.Tier1Max || l.Tier1Max >= l.Tier2Max {
		return errors.New("loyalty tiers must satisfy 0 < LOYALTY_TIER1_MIN <= LOYALTY_TIER1_MAX < LOYALTY_TIER2_MAX")
	}
	if l.CurrencyPerPoint <= 0 {
		return errors.New("LOYALTY_CURRENCY_PER_POINT must be positive")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
