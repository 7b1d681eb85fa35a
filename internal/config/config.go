package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/airlens/airlens/internal/health"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Airwave   AirwaveConfig   `yaml:"airwave"`
	Provider  ProviderConfig  `yaml:"provider"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Refresher RefresherConfig `yaml:"refresher"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
	RateLimit   int    `yaml:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type AirwaveConfig struct {
	URL string `yaml:"url"`
}

type ProviderConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

type ScoringConfig struct {
	Weights     health.ComponentWeights `yaml:"weights"`
	ResultTTLMs int                     `yaml:"result_ttl_ms"`
}

type RefresherConfig struct {
	TickIntervalMs       int `yaml:"tick_interval_ms"`
	CleanupIntervalMs    int `yaml:"cleanup_interval_ms"`
	ReadingRetentionDays int `yaml:"reading_retention_days"`
	ScoreRetentionDays   int `yaml:"score_retention_days"`
	RefreshBatchSize     int `yaml:"refresh_batch_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) ResultTTL() time.Duration {
	return time.Duration(c.Scoring.ResultTTLMs) * time.Millisecond
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Refresher.TickIntervalMs) * time.Millisecond
}

func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.Refresher.CleanupIntervalMs) * time.Millisecond
}

func (c *Config) ReadingRetention() time.Duration {
	return time.Duration(c.Refresher.ReadingRetentionDays) * 24 * time.Hour
}

func (c *Config) ScoreRetention() time.Duration {
	return time.Duration(c.Refresher.ScoreRetentionDays) * 24 * time.Hour
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
			RateLimit:   120,
		},
		Airwave: AirwaveConfig{
			URL: "nats://localhost:4222",
		},
		Provider: ProviderConfig{
			URL: "http://localhost:9400",
		},
		Scoring: ScoringConfig{
			Weights:     health.DefaultComponentWeights(),
			ResultTTLMs: int(health.DefaultResultTTL / time.Millisecond),
		},
		Refresher: RefresherConfig{
			TickIntervalMs:       60000,
			CleanupIntervalMs:    3600000,
			ReadingRetentionDays: 90,
			ScoreRetentionDays:   30,
			RefreshBatchSize:     50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Scoring.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("scoring weights: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AIRLENS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("AIRLENS_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("AIRLENS_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("AIRLENS_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("AIRLENS_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("AIRLENS_AIRWAVE_URL"); v != "" {
		cfg.Airwave.URL = v
	}
	if v := os.Getenv("AIRLENS_PROVIDER_URL"); v != "" {
		cfg.Provider.URL = v
	}
	if v := os.Getenv("AIRLENS_PROVIDER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("AIRLENS_RESULT_TTL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.ResultTTLMs = n
		}
	}
	if v := os.Getenv("AIRLENS_TICK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Refresher.TickIntervalMs = n
		}
	}
	if v := os.Getenv("AIRLENS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
