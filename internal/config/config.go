package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration. Values come from a YAML
// file and can be overridden by environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig covers the cache, the token revoker, and the rate
// limiter. An empty addr disables all three.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
}

type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// StorageConfig configures the MinIO object store for profile
// pictures. An empty endpoint disables uploads.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type RateLimitConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// Load reads the YAML file (if present), applies environment
// overrides, fills defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "SERVER_ADDR")
	setString(&cfg.Server.LogLevel, "LOG_LEVEL")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Storage.Endpoint, "MINIO_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.Storage.Bucket, "MINIO_BUCKET")
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		cfg.Storage.UseSSL, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("JWT_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWT.TokenTTL = d
		}
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.JWT.TokenTTL <= 0 {
		cfg.JWT.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "profile-pictures"
	}
	if cfg.RateLimit.Limit <= 0 {
		cfg.RateLimit.Limit = 20
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("config: database dsn is required (database.dsn or DATABASE_URL)")
	}
	if c.JWT.Secret == "" {
		return errors.New("config: jwt secret is required (jwt.secret or JWT_SECRET)")
	}
	if c.Storage.Endpoint != "" && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		return errors.New("config: storage endpoint set but credentials missing")
	}
	return nil
}
