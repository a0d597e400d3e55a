package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Stocks struct {
	BaseURL               string `json:"base_url"`
	APIKey                string `json:"api_key"`
	Format                string `json:"format"`
	ChartURLTemplate      string `json:"chart_url_template"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	Burst                 int    `json:"burst"`
}

type Connectivity struct {
	// AssumeOnline skips probing and always reports online.
	AssumeOnline    bool   `json:"assume_online"`
	CheckAddress    string `json:"check_address"`
	CheckTimeoutSec int    `json:"check_timeout_sec"`
	CacheSec        int    `json:"cache_sec"`
}

type Log struct {
	Level string `json:"level"`
}

type Config struct {
	Symbol       string       `json:"symbol"`
	Server       Server       `json:"server"`
	Stocks       Stocks       `json:"stocks"`
	Connectivity Connectivity `json:"connectivity"`
	Log          Log          `json:"log"`
}

func Default() Config {
	return Config{
		Symbol: "AAPL",
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Stocks: Stocks{
			BaseURL:              "https://dev.markitondemand.com/MODApis/Api/v2",
			Format:               "json",
			ChartURLTemplate:     "https://chart.finance.yahoo.com/z?s=%s&t=6m&q=l&l=on&z=l",
			MaxRequestsPerMinute: 30,
			Burst:                2,
		},
		Connectivity: Connectivity{
			CheckAddress:    "dev.markitondemand.com:443",
			CheckTimeoutSec: 2,
			CacheSec:        5,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads JSON config from path. If path is empty, config.json is used
// when present; a missing file yields defaults. A .env file in the working
// directory is loaded into the environment first (existing variables win),
// then environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks fields that would otherwise fail late.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Stocks.BaseURL) == "" {
		return errors.New("config: stocks.base_url is required")
	}
	if strings.Count(c.Stocks.ChartURLTemplate, "%s") != 1 {
		return fmt.Errorf("config: stocks.chart_url_template must contain exactly one %%s, got %q", c.Stocks.ChartURLTemplate)
	}
	if !c.Connectivity.AssumeOnline && c.Connectivity.CheckAddress == "" {
		return errors.New("config: connectivity.check_address is required unless assume_online is set")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if x, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Server.RequestTimeoutSec = x
	}

	if v := os.Getenv("STOCKS_BASE_URL"); v != "" {
		cfg.Stocks.BaseURL = v
	}
	if v := os.Getenv("STOCKS_API_KEY"); v != "" {
		cfg.Stocks.APIKey = v
	}
	if v := os.Getenv("STOCKS_FORMAT"); v != "" {
		cfg.Stocks.Format = v
	}
	if v := os.Getenv("CHART_URL_TEMPLATE"); v != "" {
		cfg.Stocks.ChartURLTemplate = v
	}
	if x, ok := envInt("STOCKS_MAX_RPM"); ok && x >= 0 {
		cfg.Stocks.MaxRequestsPerMinute = x
	}
	if x, ok := envInt("STOCKS_MIN_INTERVAL_SEC"); ok && x >= 0 {
		cfg.Stocks.MinRequestIntervalSec = x
	}
	if x, ok := envInt("STOCKS_BURST"); ok && x > 0 {
		cfg.Stocks.Burst = x
	}

	if b, ok := envBool("ASSUME_ONLINE"); ok {
		cfg.Connectivity.AssumeOnline = b
	}
	if v := os.Getenv("CHECK_ADDRESS"); v != "" {
		cfg.Connectivity.CheckAddress = v
	}
	if x, ok := envInt("CHECK_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Connectivity.CheckTimeoutSec = x
	}
	if x, ok := envInt("CHECK_CACHE_SEC"); ok && x >= 0 {
		cfg.Connectivity.CacheSec = x
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return x, true
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true, true
	case "0", "false", "no", "n":
		return false, true
	}
	return false, false
}
