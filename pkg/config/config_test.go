package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "langcover.yaml")

	tests := []struct {
		name          string
		setup         func(t *testing.T)
		validate      func(*testing.T, *Config)
		checkFile     func(*testing.T)
		expectedError bool
	}{
		{
			name:  "NewFile_Defaults",
			setup: func(t *testing.T) {}, // No file
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Table.Source != SourceEmbedded {
					t.Errorf("expected default table source 'embedded', got '%s'", cfg.Table.Source)
				}
				if cfg.Detect.Threshold != 0.5 {
					t.Errorf("expected default threshold 0.5, got %v", cfg.Detect.Threshold)
				}
				if time.Duration(cfg.Server.ShutdownTimeout) != 5*time.Second {
					t.Errorf("expected shutdown timeout 5s, got %v", time.Duration(cfg.Server.ShutdownTimeout))
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if !strings.Contains(string(content), "source: embedded") {
					t.Error("config file missing default values")
				}
				if !strings.Contains(string(content), "# Options: embedded, dir, db") {
					t.Error("config file missing source options comment")
				}
			},
		},
		{
			name: "ExistingFile_Override",
			setup: func(t *testing.T) {
				err := os.WriteFile(configPath, []byte("table:\n  source: dir\n  dir: /srv/langs\ndetect:\n  threshold: 0.9\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Table.Source != SourceDir {
					t.Errorf("expected table source 'dir', got '%s'", cfg.Table.Source)
				}
				if cfg.Table.Dir != "/srv/langs" {
					t.Errorf("expected table dir '/srv/langs', got '%s'", cfg.Table.Dir)
				}
				if cfg.Detect.Threshold != 0.9 {
					t.Errorf("expected threshold 0.9, got %v", cfg.Detect.Threshold)
				}
				// Untouched sections keep defaults.
				if cfg.Server.Address != "localhost:1921" {
					t.Errorf("expected default address, got '%s'", cfg.Server.Address)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if strings.Contains(string(content), "server:") {
					t.Error("existing config file must not be rewritten")
				}
			},
		},
		{
			name: "DB_Env_Override",
			setup: func(t *testing.T) {
				t.Setenv("LANGCOVER_DB_PATH", "/tmp/env.db")
				err := os.WriteFile(configPath, []byte("db:\n  path: ./data/file.db\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.DB.Path != "/tmp/env.db" {
					t.Errorf("expected DB path '/tmp/env.db', got '%s'", cfg.DB.Path)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if strings.Contains(string(content), "/tmp/env.db") {
					t.Error("environment override should NOT be persisted to config file")
				}
			},
		},
		{
			name: "Path_Env_Expansion",
			setup: func(t *testing.T) {
				t.Setenv("LANGCOVER_HOME", "/home/lc")
				t.Setenv("APP_DATA", "/app/data")
				err := os.WriteFile(configPath, []byte("db:\n  path: \"$LANGCOVER_HOME/db.sqlite\"\ntable:\n  source: dir\n  dir: \"%APP_DATA%/languages\"\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.DB.Path != "/home/lc/db.sqlite" {
					t.Errorf("expected DB path '/home/lc/db.sqlite', got '%s'", cfg.DB.Path)
				}
				if cfg.Table.Dir != "/app/data/languages" {
					t.Errorf("expected table dir '/app/data/languages', got '%s'", cfg.Table.Dir)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if !strings.Contains(string(content), "$LANGCOVER_HOME") {
					t.Error("config file should persist raw $VAR path")
				}
			},
		},
		{
			name: "Invalid_YAML",
			setup: func(t *testing.T) {
				err := os.WriteFile(configPath, []byte("detect: [not a map]"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Invalid_Source",
			setup: func(t *testing.T) {
				err := os.WriteFile(configPath, []byte("table:\n  source: s3\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Invalid_Threshold",
			setup: func(t *testing.T) {
				err := os.WriteFile(configPath, []byte("detect:\n  threshold: .inf\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Invalid_Duration",
			setup: func(t *testing.T) {
				err := os.WriteFile(configPath, []byte("server:\n  read_timeout: soon\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Remove(configPath)
			tt.setup(t)

			cfg, err := Load(configPath)
			if (err != nil) != tt.expectedError {
				t.Fatalf("Load() error = %v, expectedError %v", err, tt.expectedError)
			}
			if err == nil {
				tt.validate(t, cfg)
				tt.checkFile(t)
			}
		})
	}
}

func TestGenerateDefault(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "default_config.yaml")

	err := GenerateDefault(configPath)
	if err != nil {
		t.Fatalf("GenerateDefault() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("GenerateDefault() did not create file")
	}

	// Running again should not fail
	err = GenerateDefault(configPath)
	if err != nil {
		t.Errorf("GenerateDefault() error on second run = %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() of generated file failed: %v", err)
	}
	if cfg.Detect.Threshold != DefaultConfig().Detect.Threshold {
		t.Errorf("generated threshold %v does not match default", cfg.Detect.Threshold)
	}
}
