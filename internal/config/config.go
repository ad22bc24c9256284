package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config captures the development backend configuration loaded from environment variables.
type Config struct {
	AppName               string        `env:"APP_NAME" envDefault:"TipSlap"`
	AppEnv                string        `env:"APP_ENV" envDefault:"development"`
	Port                  string        `env:"PORT" envDefault:"3000"`
	LogLevel              string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat             string        `env:"LOG_FORMAT" envDefault:"json"`
	DatabaseURL           string        `env:"DATABASE_URL"`
	RedisURL              string        `env:"REDIS_URL"`
	JWTSecret             string        `env:"JWT_SECRET"`
	AccessTokenTTL        time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"720h"`
	OTPTTL                time.Duration `env:"OTP_TTL" envDefault:"5m"`
	OTPMockCode           string        `env:"OTP_MOCK_CODE"`
	CodeRequestsPerMinute int           `env:"CODE_REQUESTS_PER_MINUTE" envDefault:"5"`
	ShutdownPeriod        time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ClientConfig captures the terminal client configuration.
type ClientConfig struct {
	APIURL              string        `env:"TIPSLAP_API_URL" envDefault:"http://localhost:3000/api/v1"`
	HTTPTimeout         time.Duration `env:"TIPSLAP_HTTP_TIMEOUT" envDefault:"15s"`
	OpeningBalanceCents int64         `env:"TIPSLAP_OPENING_BALANCE_CENTS" envDefault:"5400"`
	Demo                bool          `env:"TIPSLAP_DEMO" envDefault:"false"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads the backend configuration from the environment (and an optional .env file).
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	return parse(env.Options{})
}

// LoadFrom parses configuration from the supplied map instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if !IsDev(cfg.AppEnv) {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.JWTSecret == "" {
			return Config{}, fmt.Errorf("JWT_SECRET must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.OTPMockCode != "" {
			return Config{}, fmt.Errorf("OTP_MOCK_CODE is only allowed in development")
		}
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
	}
	if cfg.OTPMockCode != "" && len(cfg.OTPMockCode) != 6 {
		return Config{}, fmt.Errorf("OTP_MOCK_CODE must be 6 digits")
	}
	if cfg.CodeRequestsPerMinute <= 0 {
		cfg.CodeRequestsPerMinute = 5
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// LoadClient reads the terminal client configuration.
func LoadClient() (ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return ClientConfig{}, err
	}
	return parseClient(env.Options{})
}

// LoadClientFrom parses client configuration from the supplied map.
func LoadClientFrom(vars map[string]string) (ClientConfig, error) {
	return parseClient(env.Options{Environment: vars})
}

func parseClient(opts env.Options) (ClientConfig, error) {
	var cfg ClientConfig
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return ClientConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.APIURL == "" {
		return ClientConfig{}, fmt.Errorf("TIPSLAP_API_URL must not be empty")
	}
	if cfg.OpeningBalanceCents < 0 {
		return ClientConfig{}, fmt.Errorf("TIPSLAP_OPENING_BALANCE_CENTS must not be negative")
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
	return cfg, nil
}

// IsDev reports whether the environment name is a local development one.
func IsDev(appEnv string) bool {
	switch strings.ToLower(appEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
