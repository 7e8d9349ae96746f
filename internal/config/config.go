package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds the gateway configuration.
type Config struct {
	Server         ServerConfig         `koanf:"server"`
	Upstream       UpstreamConfig       `koanf:"upstream"`
	Recommendation RecommendationConfig `koanf:"recommendation"`
	Database       DatabaseConfig       `koanf:"database"`
	Logging        LoggingConfig        `koanf:"logging"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
	// JWTSecret enables the bearer token guard on /api/v1 when set.
	JWTSecret   string `koanf:"jwt_secret"`
	CORSOrigins string `koanf:"cors_origins"`
}

// UpstreamConfig points at the inventory backend.
type UpstreamConfig struct {
	BaseURL   string        `koanf:"base_url"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"`
	Burst     int           `koanf:"burst"`
}

type RecommendationConfig struct {
	WindowDays       int `koanf:"window_days"`
	HorizonDays      int `koanf:"horizon_days"`
	TTEWindowDays    int `koanf:"tte_window_days"`
	ExpiryWindowDays int `koanf:"expiry_window_days"`
	HistorySize      int `koanf:"history_size"`
}

// DatabaseConfig is optional; an empty URL keeps snapshots in memory.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

// env var name -> config key
var envKeys = map[string]string{
	"DASHBOARD_ADDR":             "server.addr",
	"JWT_SECRET":                 "server.jwt_secret",
	"CORS_ORIGINS":               "server.cors_origins",
	"INVENTORY_API_URL":          "upstream.base_url",
	"UPSTREAM_TIMEOUT":           "upstream.timeout",
	"UPSTREAM_RATE_LIMIT":        "upstream.rate_limit",
	"UPSTREAM_BURST":             "upstream.burst",
	"RECOMMENDATION_WINDOW_DAYS": "recommendation.window_days",
	"ML_HORIZON_DAYS":            "recommendation.horizon_days",
	"TTE_WINDOW_DAYS":            "recommendation.tte_window_days",
	"EXPIRY_WINDOW_DAYS":         "recommendation.expiry_window_days",
	"SNAPSHOT_HISTORY_SIZE":      "recommendation.history_size",
	"DATABASE_URL":               "database.url",
	"LOG_LEVEL":                  "logging.level",
	"LOG_FORMAT":                 "logging.format",
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":3000",
			CORSOrigins: "*",
		},
		Upstream: UpstreamConfig{
			BaseURL:   "http://localhost:8080",
			Timeout:   10 * time.Second,
			RateLimit: 20,
			Burst:     10,
		},
		Recommendation: RecommendationConfig{
			WindowDays:       30,
			HorizonDays:      30,
			TTEWindowDays:    30,
			ExpiryWindowDays: 30,
			HistorySize:      100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load layers defaults, an optional YAML file and environment variables,
// later layers winning, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey returns "" for variables that are not configuration.
func envKey(name string) string {
	return envKeys[strings.ToUpper(name)]
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// targetsSelf reports whether upstream resolves to the address the gateway
// listens on. An empty or wildcard listen host matches any loopback host.
func targetsSelf(listen string, upstream *url.URL) bool {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return false
	}
	upstreamPort := upstream.Port()
	if upstreamPort == "" {
		upstreamPort = "80"
		if upstream.Scheme == "https" {
			upstreamPort = "443"
		}
	}
	if upstreamPort != port {
		return false
	}
	upstreamHost := upstream.Hostname()
	switch host {
	case "", "0.0.0.0", "::":
		return isLoopback(upstreamHost)
	}
	return strings.EqualFold(host, upstreamHost) || (isLoopback(host) && isLoopback(upstreamHost))
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Validate reports every unusable setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if u, err := url.Parse(c.Upstream.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("upstream.base_url must be an http(s) URL, got %q", c.Upstream.BaseURL))
	} else if targetsSelf(c.Server.Addr, u) {
		errs = append(errs, fmt.Errorf("upstream.base_url %q points at the gateway's own listen address %q", c.Upstream.BaseURL, c.Server.Addr))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream.timeout must be positive"))
	}
	if c.Upstream.RateLimit <= 0 {
		errs = append(errs, errors.New("upstream.rate_limit must be positive"))
	}
	if c.Upstream.Burst < 1 {
		errs = append(errs, errors.New("upstream.burst must be at least 1"))
	}
	for name, days := range map[string]int{
		"recommendation.window_days":        c.Recommendation.WindowDays,
		"recommendation.horizon_days":       c.Recommendation.HorizonDays,
		"recommendation.tte_window_days":    c.Recommendation.TTEWindowDays,
		"recommendation.expiry_window_days": c.Recommendation.ExpiryWindowDays,
	} {
		if days < 1 || days > 365 {
			errs = append(errs, fmt.Errorf("%s must be between 1 and 365, got %d", name, days))
		}
	}
	if c.Recommendation.HistorySize < 1 {
		errs = append(errs, errors.New("recommendation.history_size must be at least 1"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
