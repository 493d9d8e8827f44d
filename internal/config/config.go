package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `yaml:"port" default:"8080"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec" default:"10" validate:"gt=0"`
}

type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"json" validate:"oneof=json console"`
}

// Keyless describes a provider that needs no credentials.
type Keyless struct {
	Enabled              bool   `yaml:"enabled" default:"true"`
	Endpoint             string `yaml:"endpoint" validate:"omitempty,url"`
	MaxRequestsPerMinute int    `yaml:"max_requests_per_minute"`
	Burst                int    `yaml:"burst" default:"1"`
}

// Keyed describes a provider gated on an API key. An empty key leaves
// the provider configured but unavailable.
type Keyed struct {
	Enabled              bool   `yaml:"enabled" default:"true"`
	APIKey               string `yaml:"api_key"`
	Endpoint             string `yaml:"endpoint" validate:"omitempty,url"`
	MaxRequestsPerMinute int    `yaml:"max_requests_per_minute"`
	Burst                int    `yaml:"burst" default:"1"`
}

type Config struct {
	Server       Server  `yaml:"server"`
	Log          Log     `yaml:"log"`
	FinanceQuery Keyless `yaml:"financequery"`
	Yahoo        Keyless `yaml:"yahoo"`
	Finnhub      Keyed   `yaml:"finnhub"`
	AlphaVantage Keyed   `yaml:"alphavantage"`
	Polygon      Keyed   `yaml:"polygon"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	_ = defaults.Set(&cfg)
	cfg.FinanceQuery.Endpoint = "https://finance-query.onrender.com"
	cfg.Yahoo.Endpoint = "https://query1.finance.yahoo.com"
	cfg.Finnhub.Endpoint = "https://finnhub.io/api/v1"
	cfg.AlphaVantage.Endpoint = "https://www.alphavantage.co"
	cfg.Polygon.Endpoint = "https://api.polygon.io"
	return cfg
}

// Load reads YAML config from path. If path is empty or the file does
// not exist, it returns defaults. Environment variables override select
// fields so keys stay out of config files.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := validator.New().Struct(&cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Finnhub.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.Polygon.APIKey = v
	}
	if v := os.Getenv("FINANCEQUERY_ENDPOINT"); v != "" {
		cfg.FinanceQuery.Endpoint = v
	}
	if v := os.Getenv("YAHOO_ENDPOINT"); v != "" {
		cfg.Yahoo.Endpoint = v
	}
	if v := os.Getenv("FINNHUB_ENDPOINT"); v != "" {
		cfg.Finnhub.Endpoint = v
	}
	if v := os.Getenv("ALPHAVANTAGE_ENDPOINT"); v != "" {
		cfg.AlphaVantage.Endpoint = v
	}
	if v := os.Getenv("POLYGON_ENDPOINT"); v != "" {
		cfg.Polygon.Endpoint = v
	}
}
