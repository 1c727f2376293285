// Package config loads align's YAML configuration with .env and
// environment overrides.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/reformtrack/align/engine"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "align.yaml"

// Config holds all configuration for align.
type Config struct {
	Data     DataConfig        `yaml:"data"`
	Server   ServerConfig      `yaml:"server"`
	Export   ExportConfig      `yaml:"export"`
	Logging  LoggingConfig     `yaml:"logging"`
	Dev      DevConfig         `yaml:"dev"`
	Chapters engine.ChapterMap `yaml:"chapters,omitempty"`

	// ReliabilityThreshold flags charts built from fewer rows.
	ReliabilityThreshold int `yaml:"reliability_threshold"`
}

// DataConfig locates the source table.
type DataConfig struct {
	Path               string `yaml:"path"`
	ParquetParallelism int64  `yaml:"parquet_parallelism"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// ExportConfig configures chart exports.
type ExportConfig struct {
	PNG        bool   `yaml:"png"`
	BrowserBin string `yaml:"browser_bin"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DevConfig gates developer affordances. It is not an access control.
type DevConfig struct {
	Enabled     bool `yaml:"enabled"`
	PreviewRows int  `yaml:"preview_rows"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Path:               "data/align.csv",
			ParquetParallelism: 2,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
		},
		Export: ExportConfig{
			PNG:    true,
			Width:  1000,
			Height: 560,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Dev: DevConfig{
			PreviewRows: engine.DefaultPreviewRows,
		},
		Chapters:             engine.DefaultChapterMap(),
		ReliabilityThreshold: engine.DefaultReliabilityThreshold,
	}
}

// Load reads the .env file (if any), the YAML file at path (if it exists)
// and applies ALIGN_* environment overrides. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if len(cfg.Chapters) == 0 {
		cfg.Chapters = engine.DefaultChapterMap()
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("ALIGN_DATA_PATH"); v != "" {
		c.Data.Path = v
	}
	if v := os.Getenv("ALIGN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ALIGN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ALIGN_BROWSER_BIN"); v != "" {
		c.Export.BrowserBin = v
	}
	if v := os.Getenv("ALIGN_DEV"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ALIGN_DEV: %w", err)
		}
		c.Dev.Enabled = b
	}
	if v := os.Getenv("ALIGN_RELIABILITY_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ALIGN_RELIABILITY_THRESHOLD: %w", err)
		}
		c.ReliabilityThreshold = n
	}
	return nil
}

// GetShutdownTimeout returns the graceful shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("invalid server addr %q: %w", c.Server.Addr, err)
	}
	if c.ReliabilityThreshold < 1 {
		return fmt.Errorf("reliability_threshold must be >= 1, got %d", c.ReliabilityThreshold)
	}
	if c.Dev.PreviewRows < 0 {
		return fmt.Errorf("dev.preview_rows must be >= 0, got %d", c.Dev.PreviewRows)
	}
	level := strings.ToLower(c.Logging.Level)
	valid := false
	for _, l := range validLevels {
		if level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, validLevels)
	}
	if err := c.Chapters.Validate(); err != nil {
		return fmt.Errorf("invalid chapters: %w", err)
	}
	return nil
}
