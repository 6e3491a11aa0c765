package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Database  Database         `yaml:"database"`
	Storage   Storage          `yaml:"storage"`
	Server    Server           `yaml:"server"`
	Logging   Logging          `yaml:"logging"`
	Runner    RunnerConfig     `yaml:"runner"`
	Reporting Reporting        `yaml:"reporting"`
	Backtests []BacktestConfig `yaml:"backtests"`
}

// Database is the Postgres/TimescaleDB holding candles and results.
type Database struct {
	URL string `yaml:"url"`
}

// Storage holds paths for file based data and local result history.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
	ParquetDir string `yaml:"parquet_dir"`
}

type Server struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RunnerConfig struct {
	MaxWorkers int  `yaml:"max_workers"`
	Progress   bool `yaml:"progress"`
}

type Reporting struct {
	PrintTrades bool   `yaml:"print_trades"`
	OutputDir   string `yaml:"output_dir"`
}

// BacktestConfig is one run of the CLI batch.
type BacktestConfig struct {
	Name           string         `yaml:"name"`
	Strategy       string         `yaml:"strategy"`
	Symbol         string         `yaml:"symbol"`
	Interval       string         `yaml:"interval"`
	Start          string         `yaml:"start"`
	End            string         `yaml:"end"`
	InitialCapital string         `yaml:"initial_capital"`
	Params         map[string]any `yaml:"params"`
}

const dateLayout = "2006-01-02"

// Path returns the config path to use: the flag value if set, then
// STRATLAB_CONFIG, then DefaultPath.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("STRATLAB_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads the YAML configuration file at the given path, applies
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default is the configuration used when no file exists: environment
// overrides on top of defaults.
func Default() *Config {
	cfg := &Config{}
	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("PARQUET_DIR"); v != "" {
		cfg.Storage.ParquetDir = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Runner.MaxWorkers <= 0 {
		cfg.Runner.MaxWorkers = runtime.NumCPU()
	}
	for i := range cfg.Backtests {
		if cfg.Backtests[i].Interval == "" {
			cfg.Backtests[i].Interval = "D"
		}
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	for i, b := range c.Backtests {
		if err := b.validate(); err != nil {
			return fmt.Errorf("backtests[%d]: %w", i, err)
		}
	}
	return nil
}

func (b BacktestConfig) validate() error {
	if b.Strategy == "" {
		return errors.New("strategy is required")
	}
	if b.Symbol == "" {
		return errors.New("symbol is required")
	}
	if _, _, err := b.Window(); err != nil {
		return err
	}
	return nil
}

// Window parses start and end. An empty end means no upper bound.
func (b BacktestConfig) Window() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, b.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start %q must be YYYY-MM-DD", b.Start)
	}
	if b.End == "" {
		return start, time.Time{}, nil
	}
	end, err := time.Parse(dateLayout, b.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end %q must be YYYY-MM-DD", b.End)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s", b.End, b.Start)
	}
	// inclusive of the whole end day
	return start, end.Add(24*time.Hour - time.Nanosecond), nil
}
