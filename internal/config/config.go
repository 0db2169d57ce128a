package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when SENTIDASH_CONFIG is unset.
const DefaultPath = "config/sentidash.yaml"

// DefaultProducts is the catalog offered when none is configured.
var DefaultProducts = []string{
	"phone case", "shirt", "socks", "chain armament", "hat", "cap", "red hat", "kit",
}

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the sentidash server and tools.
type Config struct {
	Server   Server   `yaml:"server"`
	Upstream Upstream `yaml:"upstream"`
	Catalog  Catalog  `yaml:"catalog"`
	Chart    Chart    `yaml:"chart"`
	Logging  Logging  `yaml:"logging"`
}

// Server holds network listener configuration. A zero GRPCPort disables the
// gRPC listener.
type Server struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// Upstream points at the product sentiment API. RateLimit caps outgoing
// requests per minute; zero means unlimited.
type Upstream struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit int           `yaml:"rate_limit"`
	Burst     int           `yaml:"burst"`
}

// Catalog lists the selectable products. When RefreshCron is set the list is
// periodically replaced by the API's /products response.
type Catalog struct {
	Products    []string `yaml:"products"`
	RefreshCron string   `yaml:"refresh_cron"`
}

// Chart controls date handling and PNG size.
type Chart struct {
	DateLayout string `yaml:"date_layout"`
	Timezone   string `yaml:"timezone"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
}

// Logging configures the application logger. File enables a rotating log
// file next to stderr.
type Logging struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Defaults returns a configuration that works against a local API.
func Defaults() *Config {
	return &Config{
		Server: Server{Host: "0.0.0.0", Port: 8080, GRPCPort: 9090},
		Upstream: Upstream{
			BaseURL: "http://localhost:5000",
			Timeout: 10 * time.Second,
			Burst:   4,
		},
		Catalog: Catalog{Products: append([]string(nil), DefaultProducts...)},
		Chart: Chart{
			DateLayout: "1/2/2006",
			Timezone:   "UTC",
			Width:      1024,
			Height:     480,
		},
		Logging: Logging{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Path returns the config file path from SENTIDASH_CONFIG or DefaultPath.
func Path() string {
	if v := os.Getenv("SENTIDASH_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads the YAML configuration file at path over Defaults, loads .env
// from the working directory, applies environment overrides and validates the
// result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SENTIDASH_API_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}

	if v := os.Getenv("SENTIDASH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SENTIDASH_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	if v := os.Getenv("SENTIDASH_GRPC_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SENTIDASH_GRPC_PORT: %w", err)
		}
		cfg.Server.GRPCPort = port
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	return nil
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("server.grpc_port %d out of range", c.Server.GRPCPort))
	}
	if c.Server.GRPCPort != 0 && c.Server.GRPCPort == c.Server.Port {
		errs = append(errs, errors.New("server.grpc_port must differ from server.port"))
	}

	if u, err := url.Parse(c.Upstream.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("upstream.base_url %q is not an http(s) URL", c.Upstream.BaseURL))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream.timeout must be positive"))
	}
	if c.Upstream.RateLimit < 0 || c.Upstream.Burst < 0 {
		errs = append(errs, errors.New("upstream.rate_limit and upstream.burst must not be negative"))
	}

	if len(c.Catalog.Products) == 0 {
		errs = append(errs, errors.New("catalog.products is empty"))
	}
	for i, p := range c.Catalog.Products {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("catalog.products[%d] is blank", i))
		}
	}
	if c.Catalog.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.Catalog.RefreshCron); err != nil {
			errs = append(errs, fmt.Errorf("catalog.refresh_cron: %w", err))
		}
	}

	if _, err := time.LoadLocation(c.Chart.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("chart.timezone: %w", err))
	}
	if c.Chart.Width < 100 || c.Chart.Height < 100 {
		errs = append(errs, fmt.Errorf("chart size %dx%d too small", c.Chart.Width, c.Chart.Height))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q unknown", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text", "":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q unknown", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Location returns the configured chart timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Chart.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HTTPAddr is the host:port the HTTP listener binds.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddr is the host:port the gRPC listener binds.
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
