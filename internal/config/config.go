package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Repayment policies for overshooting or already-settled debts.
const (
	RepaymentPolicyLegacy = "legacy"
	RepaymentPolicyReject = "reject"
	RepaymentPolicyClamp  = "clamp"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
	Business  BusinessConfig
	Health    HealthConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Env          string
	ReadTimeout  string
	WriteTimeout string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SchedulerConfig struct {
	Timezone string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type BusinessConfig struct {
	HighBalanceThreshold string
	RepaymentPolicy      string
	SpikeThresholdPct    int
	DashboardCacheTTL    string
}

type HealthConfig struct {
	Timeout string
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_HOST", "localhost")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_NAME", "ledger")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SCHEDULER_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("HIGH_BALANCE_THRESHOLD", "10000")
	viper.SetDefault("LEDGER_REPAYMENT_POLICY", RepaymentPolicyReject)
	viper.SetDefault("SPIKE_THRESHOLD_PCT", 10)
	viper.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  viper.GetString("SERVER_READ_TIMEOUT"),
			WriteTimeout: viper.GetString("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DATABASE_HOST"),
			Port:            viper.GetString("DATABASE_PORT"),
			Name:            viper.GetString("DATABASE_NAME"),
			User:            viper.GetString("DATABASE_USER"),
			Password:        viper.GetString("DATABASE_PASSWORD"),
			SSLMode:         viper.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    viper.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: viper.GetString("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Scheduler: SchedulerConfig{
			Timezone: viper.GetString("SCHEDULER_TIMEZONE"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Business: BusinessConfig{
			HighBalanceThreshold: viper.GetString("HIGH_BALANCE_THRESHOLD"),
			RepaymentPolicy:      viper.GetString("LEDGER_REPAYMENT_POLICY"),
			SpikeThresholdPct:    viper.GetInt("SPIKE_THRESHOLD_PCT"),
			DashboardCacheTTL:    viper.GetString("DASHBOARD_CACHE_TTL"),
		},
		Health: HealthConfig{
			Timeout: viper.GetString("HEALTH_CHECK_TIMEOUT"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("DATABASE_HOST and DATABASE_NAME are required")
	}

	switch c.Business.RepaymentPolicy {
	case RepaymentPolicyLegacy, RepaymentPolicyReject, RepaymentPolicyClamp:
	default:
		return fmt.Errorf("LEDGER_REPAYMENT_POLICY must be one of legacy, reject, clamp")
	}

	if c.Business.SpikeThresholdPct <= 0 {
		return fmt.Errorf("SPIKE_THRESHOLD_PCT must be greater than 0")
	}

	if _, err := decimal.NewFromString(c.Business.HighBalanceThreshold); err != nil {
		return fmt.Errorf("HIGH_BALANCE_THRESHOLD must be a valid decimal: %w", err)
	}

	if _, err := time.ParseDuration(c.Business.DashboardCacheTTL); err != nil {
		return fmt.Errorf("DASHBOARD_CACHE_TTL must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("DATABASE_CONN_MAX_LIFETIME must be a valid duration: %w", err)
	}

	return nil
}

// DSN builds the postgres connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetConnMaxLifetime returns the pool connection lifetime as duration
func (c *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetHighBalanceThreshold returns the risk-flag threshold as decimal
func (c *Config) GetHighBalanceThreshold() decimal.Decimal {
	threshold, _ := decimal.NewFromString(c.Business.HighBalanceThreshold)
	return threshold
}

// GetDashboardCacheTTL returns the dashboard cache TTL as duration
func (c *Config) GetDashboardCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Business.DashboardCacheTTL)
	return ttl
}

// GetReadTimeout returns the server read timeout as duration
func (c *Config) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

// GetWriteTimeout returns the server write timeout as duration
func (c *Config) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.WriteTimeout)
	return d
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}
