package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// strava upstream
	StravaBaseURL string `toml:"strava_base_url"`
	// SyncMaxPages guards against runaway pagination from a misbehaving
	// upstream; 50 pages of 100 activities is far beyond any real year.
	SyncMaxPages int `toml:"sync_max_pages"`
	SyncPerPage  int `toml:"sync_per_page"`

	// how many sync triggers per athlete per minute are allowed
	SyncRateLimitAllowedPerMin int `toml:"sync_rate_limit_allowed_per_min"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlFile Toml
	if _, err := toml.DecodeFile(path, &tomlFile); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := tomlFile.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %q missing", env)
	}

	cfg.Environment = env

	if cfg.StravaBaseURL == "" {
		cfg.StravaBaseURL = "https://www.strava.com/api/v3"
	}
	if cfg.SyncMaxPages <= 0 {
		cfg.SyncMaxPages = 50
	}
	if cfg.SyncPerPage <= 0 {
		cfg.SyncPerPage = 100
	}
	if cfg.SyncRateLimitAllowedPerMin <= 0 {
		cfg.SyncRateLimitAllowedPerMin = 5
	}

	return cfg, nil
}
