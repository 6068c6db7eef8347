package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config captures all runtime configuration. Values come from an optional YAML
// file (CONFIG_FILE) overridden by environment variables.
type Config struct {
	Port      string `yaml:"port"`
	AuthToken string `yaml:"auth_token"`

	DBURL             string `yaml:"db_url"`
	DBMaxConns        int    `yaml:"db_max_conns"`
	DBMinConns        int    `yaml:"db_min_conns"`
	DBMaxIdleSecs     int    `yaml:"db_max_conn_idle_secs"`
	DBMaxLifeSecs     int    `yaml:"db_max_conn_lifetime_secs"`
	DBConnTimeoutSecs int    `yaml:"db_conn_timeout_secs"`
	DBStatementCache  int    `yaml:"db_statement_cache_capacity"`

	OMDBURL         string `yaml:"omdb_url"`
	OMDBAPIKey      string `yaml:"omdb_api_key"`
	OMDBTimeoutSecs int    `yaml:"omdb_timeout_secs"`
	OMDBRateLimit   int    `yaml:"omdb_rate_limit"`

	Top250URL           string `yaml:"top250_url"`
	Top100URL           string `yaml:"top100_url"`
	ChartTimeoutSecs    int    `yaml:"chart_timeout_secs"`
	FreshnessWindowDays int    `yaml:"freshness_window_days"`

	ReadTimeoutSecs  int `yaml:"server_read_timeout"`
	WriteTimeoutSecs int `yaml:"server_write_timeout"`
	IdleTimeoutSecs  int `yaml:"server_idle_timeout"`
}

// Load reads configuration, applying defaults, the optional file layer, env
// overrides, and validation.
func Load() (Config, error) {
	cfg := Config{
		Port:                "8080",
		DBMaxConns:          20,
		DBMinConns:          2,
		DBMaxIdleSecs:       300,
		DBMaxLifeSecs:       3600,
		DBConnTimeoutSecs:   10,
		DBStatementCache:    256,
		OMDBTimeoutSecs:     5,
		OMDBRateLimit:       1,
		Top250URL:           "https://www.imdb.com/chart/top/",
		Top100URL:           "https://www.imdb.com/chart/moviemeter/",
		ChartTimeoutSecs:    15,
		FreshnessWindowDays: 7,
		ReadTimeoutSecs:     15,
		WriteTimeoutSecs:    15,
		IdleTimeoutSecs:     60,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		payload, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(payload, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.AuthToken == "" {
		return Config{}, fmt.Errorf("AUTH_TOKEN is required")
	}
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.OMDBURL == "" {
		return Config{}, fmt.Errorf("OMDB_URL is required")
	}
	if cfg.OMDBAPIKey == "" {
		return Config{}, fmt.Errorf("OMDB_API_KEY is required")
	}
	if cfg.OMDBTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("OMDB_TIMEOUT_SECS must be positive")
	}
	if cfg.OMDBRateLimit <= 0 {
		return Config{}, fmt.Errorf("OMDB_RATE_LIMIT must be positive")
	}
	if cfg.Top250URL == "" || cfg.Top100URL == "" {
		return Config{}, fmt.Errorf("TOP250_URL and TOP100_URL are required")
	}
	if cfg.FreshnessWindowDays <= 0 {
		return Config{}, fmt.Errorf("FRESHNESS_WINDOW_DAYS must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.AuthToken, "AUTH_TOKEN")
	setString(&cfg.DBURL, "DB_URL")
	setString(&cfg.OMDBURL, "OMDB_URL")
	setString(&cfg.OMDBAPIKey, "OMDB_API_KEY")
	setString(&cfg.Top250URL, "TOP250_URL")
	setString(&cfg.Top100URL, "TOP100_URL")

	setInt(&cfg.DBMaxConns, "DB_MAX_CONNS")
	setInt(&cfg.DBMinConns, "DB_MIN_CONNS")
	setInt(&cfg.DBMaxIdleSecs, "DB_MAX_CONN_IDLE_SECS")
	setInt(&cfg.DBMaxLifeSecs, "DB_MAX_CONN_LIFETIME_SECS")
	setInt(&cfg.DBConnTimeoutSecs, "DB_CONN_TIMEOUT_SECS")
	setInt(&cfg.DBStatementCache, "DB_STATEMENT_CACHE_CAPACITY")
	setInt(&cfg.OMDBTimeoutSecs, "OMDB_TIMEOUT_SECS")
	setInt(&cfg.OMDBRateLimit, "OMDB_RATE_LIMIT")
	setInt(&cfg.ChartTimeoutSecs, "CHART_TIMEOUT_SECS")
	setInt(&cfg.FreshnessWindowDays, "FRESHNESS_WINDOW_DAYS")
	setInt(&cfg.ReadTimeoutSecs, "SERVER_READ_TIMEOUT")
	setInt(&cfg.WriteTimeoutSecs, "SERVER_WRITE_TIMEOUT")
	setInt(&cfg.IdleTimeoutSecs, "SERVER_IDLE_TIMEOUT")
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dst = parsed
		}
	}
}
