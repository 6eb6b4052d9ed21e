// Package config loads process settings from the environment, an optional
// .env file and an optional YAML file named by CONFIG_FILE.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultSecret = "dev-secret-change-in-production"

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret     string
	JWTTTL        time.Duration
	JWTRefreshTTL time.Duration

	RedisURL string

	StorageDir  string
	UploadMaxKB int

	Location *time.Location
	AppURL   string
}

// Production reports whether the process runs with ENV=production.
func (c Config) Production() bool { return c.Env == "production" }

// Load reads the configuration. Environment variables win over the file.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("database_driver", "mysql")
	v.SetDefault("database_dsn", "root:password@tcp(127.0.0.1:3306)/tasklist?parseTime=true")
	v.SetDefault("jwt_secret", defaultSecret)
	v.SetDefault("jwt_ttl", "60m")
	v.SetDefault("jwt_refresh_ttl", "336h")
	v.SetDefault("redis_url", "")
	v.SetDefault("storage_dir", "storage/app")
	v.SetDefault("upload_max_kb", 2048)
	v.SetDefault("app_timezone", "UTC")
	v.SetDefault("app_url", "")
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Port:           v.GetString("port"),
		Env:            v.GetString("env"),
		LogLevel:       v.GetString("log_level"),
		DatabaseDriver: strings.ToLower(v.GetString("database_driver")),
		DatabaseDSN:    v.GetString("database_dsn"),
		JWTSecret:      v.GetString("jwt_secret"),
		RedisURL:       v.GetString("redis_url"),
		StorageDir:     v.GetString("storage_dir"),
		UploadMaxKB:    v.GetInt("upload_max_kb"),
		AppURL:         v.GetString("app_url"),
	}

	var err error
	if cfg.JWTTTL, err = parseDuration(v.GetString("jwt_ttl")); err != nil {
		return Config{}, fmt.Errorf("JWT_TTL: %w", err)
	}
	if cfg.JWTRefreshTTL, err = parseDuration(v.GetString("jwt_refresh_ttl")); err != nil {
		return Config{}, fmt.Errorf("JWT_REFRESH_TTL: %w", err)
	}
	if cfg.Location, err = time.LoadLocation(v.GetString("app_timezone")); err != nil {
		return Config{}, fmt.Errorf("APP_TIMEZONE: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DatabaseDriver {
	case "mysql", "sqlite", "postgres":
	default:
		return fmt.Errorf("DATABASE_DRIVER: unsupported driver %q", c.DatabaseDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Production() && c.JWTSecret == defaultSecret {
		return errors.New("JWT_SECRET must be set in production environment")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.JWTRefreshTTL < c.JWTTTL {
		return errors.New("JWT_REFRESH_TTL must not be shorter than JWT_TTL")
	}
	if c.UploadMaxKB <= 0 {
		return errors.New("UPLOAD_MAX_KB must be positive")
	}
	return nil
}

// parseDuration accepts Go duration syntax or a bare number of seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
