package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Table sources.
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourceDB       = "db"
)

// Config holds the application configuration.
type Config struct {
	Table  TableConfig  `yaml:"table"`
	Detect DetectConfig `yaml:"detect"`
	Log    LogConfig    `yaml:"log"`
	DB     DBConfig     `yaml:"db"`
	Server ServerConfig `yaml:"server"`
}

// TableConfig selects where the language table is loaded from.
type TableConfig struct {
	Source string `yaml:"source"` // "embedded", "dir", "db"
	Dir    string `yaml:"dir"`    // Directory of language files, used when source is "dir"
}

// DetectConfig holds matcher defaults.
type DetectConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address         string   `yaml:"address"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Table: TableConfig{
			Source: SourceEmbedded,
			Dir:    "./data/languages",
		},
		Detect: DetectConfig{
			Threshold: 0.5,
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/langcover.db",
		},
		Server: ServerConfig{
			Address:         "localhost:1921",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(15 * time.Second),
			ShutdownTimeout: Duration(5 * time.Second),
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	// Env fallbacks and expansion are applied in memory only.
	if v := os.Getenv("LANGCOVER_DB_PATH"); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv("LANGCOVER_TABLE_DIR"); v != "" {
		cfg.Table.Dir = v
	}
	cfg.DB.Path = expandPath(cfg.DB.Path)
	cfg.Table.Dir = expandPath(cfg.Table.Dir)
	cfg.Log.Server.Path = expandPath(cfg.Log.Server.Path)
	cfg.Log.Requests.Path = expandPath(cfg.Log.Requests.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that yaml cannot.
func (c *Config) Validate() error {
	switch c.Table.Source {
	case SourceEmbedded, SourceDB:
	case SourceDir:
		if c.Table.Dir == "" {
			return fmt.Errorf("table.dir is required when table.source is %q", SourceDir)
		}
	default:
		return fmt.Errorf("invalid table.source '%s': must be one of embedded, dir, db", c.Table.Source)
	}
	if math.IsNaN(c.Detect.Threshold) || math.IsInf(c.Detect.Threshold, 0) {
		return fmt.Errorf("detect.threshold must be a finite number")
	}
	return nil
}

var winEnvRe = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// expandPath expands $VAR, ${VAR} and %VAR% references.
func expandPath(p string) string {
	p = winEnvRe.ReplaceAllStringFunc(p, func(m string) string {
		return os.Getenv(m[1 : len(m)-1])
	})
	return os.ExpandEnv(p)
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# langcover Configuration
# ----------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
# Paths may reference environment variables as $VAR, ${VAR} or %VAR%.

`)
	data = append(header, data...)

	reSource := regexp.MustCompile(`(?m)^(\s+)source:`)
	data = reSource.ReplaceAll(data, []byte("${1}# Options: embedded, dir, db\n${1}source:"))

	reThreshold := regexp.MustCompile(`(?m)^(\s+)threshold:`)
	data = reThreshold.ReplaceAll(data, []byte("${1}# Minimum coverage ratio in [0.0, 1.0]\n${1}threshold:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
