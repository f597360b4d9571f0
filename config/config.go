package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	Minio    MinioConfig    `yaml:"minio"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Security SecurityConfig `yaml:"security"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// BackendConfig points at the iAyos core API. The gateway never owns domain
// state; everything is fetched from and written to this origin.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text, console
}

// StoreConfig configures the local key/value store used for UX-ephemeral
// state: theme, language, lockout end timestamps. Never domain data.
type StoreConfig struct {
	Path string `yaml:"path"`
}

type SecurityConfig struct {
	RateLimitPerMinute   int `yaml:"rate_limit_per_minute"`
	OTPResendWaitSeconds int `yaml:"otp_resend_wait_seconds"`
	OTPLength            int `yaml:"otp_length"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	GlobalConfig = &cfg
	return &cfg, nil
}

// applyEnvOverrides lets deployment environments override the yaml file.
// IAYOS_BACKEND_URL in particular selects the upstream origin; when it is
// absent and the yaml leaves it blank, every upstream call degrades to the
// "service unavailable" error category instead of leaking connection errors.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IAYOS_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("IAYOS_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("IAYOS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("IAYOS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = 30
	}
	if cfg.Minio.ExpireDays == 0 {
		cfg.Minio.ExpireDays = 7
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "iayos-local.db"
	}
	if cfg.Security.RateLimitPerMinute == 0 {
		cfg.Security.RateLimitPerMinute = 100
	}
	if cfg.Security.OTPResendWaitSeconds == 0 {
		cfg.Security.OTPResendWaitSeconds = 60
	}
	if cfg.Security.OTPLength == 0 {
		cfg.Security.OTPLength = 6
	}
}

// Validate checks startup-critical settings. The backend URL is deliberately
// not required: a misconfigured origin must degrade at request time, not
// crash the gateway.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required")
	}
	return nil
}
