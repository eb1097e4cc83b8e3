package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the server
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Log         LogConfig
	RateLimit   RateLimitConfig
	CORSOrigins []string
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds PostgreSQL connection parameters
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	ConnectRetries int
	RetryInterval  time.Duration
	QueryTimeout   time.Duration
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret          string
	ExpirationHours int64
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig configures the login limiter. An empty RedisURL selects
// the in-process limiter.
type RateLimitConfig struct {
	RedisURL string
	Limit    int
	Window   time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_CONNECT_RETRIES", 5)
	v.SetDefault("DB_RETRY_INTERVAL", "5s")
	v.SetDefault("DB_QUERY_TIMEOUT", "5s")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_EXPIRATION_HOURS", 1)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LOGIN_RATE_LIMIT", 5)
	v.SetDefault("LOGIN_RATE_WINDOW", "1m")
}

// Load reads an optional .env file into the environment, then builds the
// configuration from environment variables over defaults.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:    v.GetString("SERVER_PORT"),
			GinMode: v.GetString("GIN_MODE"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Name:           v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			ConnectRetries: v.GetInt("DB_CONNECT_RETRIES"),
			RetryInterval:  v.GetDuration("DB_RETRY_INTERVAL"),
			QueryTimeout:   v.GetDuration("DB_QUERY_TIMEOUT"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET_KEY"),
			ExpirationHours: v.GetInt64("JWT_EXPIRATION_HOURS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		RateLimit: RateLimitConfig{
			RedisURL: v.GetString("REDIS_URL"),
			Limit:    v.GetInt("LOGIN_RATE_LIMIT"),
			Window:   v.GetDuration("LOGIN_RATE_WINDOW"),
		},
		CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Host == "" || c.Database.Port == "" || c.Database.User == "" || c.Database.Name == "" {
		errs = append(errs, errors.New("database environment variables not set (DB_HOST, DB_PORT, DB_USER, DB_NAME)"))
	}
	if c.Database.ConnectRetries < 1 {
		errs = append(errs, fmt.Errorf("DB_CONNECT_RETRIES must be at least 1, got %d", c.Database.ConnectRetries))
	}
	if c.Database.QueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("DB_QUERY_TIMEOUT must be positive, got %s", c.Database.QueryTimeout))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY not set"))
	}
	if c.JWT.ExpirationHours <= 0 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRATION_HOURS must be positive, got %d", c.JWT.ExpirationHours))
	}
	if c.RateLimit.Limit < 1 {
		errs = append(errs, fmt.Errorf("LOGIN_RATE_LIMIT must be at least 1, got %d", c.RateLimit.Limit))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("LOGIN_RATE_WINDOW must be positive, got %s", c.RateLimit.Window))
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.Server.GinMode))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// DSN renders the libpq key/value connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
