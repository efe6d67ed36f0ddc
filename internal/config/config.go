package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
)

// SourceSeed — запись источника из конфигурации; при старте загружается в БД.
type SourceSeed struct {
	Name           string `json:"name"`
	APIURL         string `json:"api_url"`
	APIKey         string `json:"api_key"`
	FallbackAPIKey string `json:"fallback_api_key"`
	Active         bool   `json:"active"`
}

// Config хранит настройки пайплайна: источники, интервалы опроса, очередь и БД.
type Config struct {
	DatabaseURL string `json:"database_url"`
	RabbitMQ    struct {
		URL   string `json:"url"`
		Queue string `json:"queue"`
	} `json:"rabbitmq"`
	Sources              []SourceSeed `json:"sources"`
	FetchIntervalMinutes int          `json:"fetch_interval_minutes"`
	SyncIntervalHours    int          `json:"sync_interval_hours"`
	Workers              int          `json:"workers"`
	JobTimeoutMinutes    int          `json:"job_timeout_minutes"`
	LeaseTTLMinutes      int          `json:"lease_ttl_minutes"`
	HTTPAddr             string       `json:"http_addr"`
	DefaultCategory      string       `json:"newsapi_default_category"`
}

// Validate проверяет интервалы, уникальность имён источников и валидность URL.
func (cfg *Config) Validate() error {
	if cfg.FetchIntervalMinutes < 1 {
		return errors.New("fetch interval must be ≥ 1 minute")
	}
	if cfg.SyncIntervalHours < 1 {
		return errors.New("sync interval must be ≥ 1 hour")
	}
	if len(cfg.Sources) == 0 {
		return errors.New("at least one source is required")
	}
	seen := make(map[string]bool, len(cfg.Sources))
	for _, s := range cfg.Sources {
		if s.Name == "" {
			return errors.New("source name must not be empty")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate source name: %s", s.Name)
		}
		seen[s.Name] = true
		if _, err := url.ParseRequestURI(s.APIURL); err != nil {
			return fmt.Errorf("invalid API URL for %s: %s", s.Name, s.APIURL)
		}
		if s.APIKey == "" {
			return fmt.Errorf("missing API key for source: %s", s.Name)
		}
	}
	return nil
}

// LoadConfig читает JSON-файл по пути path и декодирует его в Config.
// Значения вида ${VAR} подставляются из окружения (ключи API, строка подключения).
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal([]byte(os.ExpandEnv(string(raw))), &cfg); err != nil {
		return nil, err
	}

	if cfg.Workers == 0 {
		cfg.Workers = 5
	}
	if cfg.JobTimeoutMinutes == 0 {
		cfg.JobTimeoutMinutes = 5
	}
	if cfg.LeaseTTLMinutes == 0 {
		cfg.LeaseTTLMinutes = 10
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = "general"
	}
	return &cfg, nil
}
