package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func loadWith(t *testing.T, flags []string, args []string) (Config, error) {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	RegisterFlags(cmd)
	if err := cmd.ParseFlags(flags); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	return LoadConfig(cmd, args)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadWith(t, nil, nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.InputPath != "" {
		t.Errorf("InputPath = %q, want empty (stdin)", cfg.InputPath)
	}
	if cfg.Indent != 2 {
		t.Errorf("Indent = %d, want 2", cfg.Indent)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadConfigPositionalInput(t *testing.T) {
	cfg, err := loadWith(t, []string{"--analysis", "a.json", "-o", "out.json"}, []string{"in.json"})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.InputPath != "in.json" {
		t.Errorf("InputPath = %q", cfg.InputPath)
	}
	if cfg.AnalysisPath != "a.json" {
		t.Errorf("AnalysisPath = %q", cfg.AnalysisPath)
	}
	if cfg.OutputPath != "out.json" {
		t.Errorf("OutputPath = %q", cfg.OutputPath)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
	}{
		{name: "bad log level", flags: []string{"--log-level", "loud"}},
		{name: "negative indent", flags: []string{"--indent", "-1"}},
		{name: "auto-name with output", flags: []string{"--auto-name", "-o", "out.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadWith(t, tt.flags, nil); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadConfigWarningAlias(t *testing.T) {
	cfg, err := loadWith(t, []string{"--log-level", "WARNING"}, nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoadConfigFileDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defaults.toml")
	contents := "indent = 4\nlog_level = \"debug\"\noutput = \"from-file.json\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := loadWith(t, []string{"--config", path}, nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Indent != 4 {
		t.Errorf("Indent = %d, want 4 from config file", cfg.Indent)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug from config file", cfg.LogLevel)
	}
	if cfg.OutputPath != "from-file.json" {
		t.Errorf("OutputPath = %q", cfg.OutputPath)
	}

	// Explicit flags win over file values.
	cfg, err = loadWith(t, []string{"--config", path, "--indent", "0", "--log-level", "warn"}, nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Indent != 0 {
		t.Errorf("Indent = %d, want explicit flag to win", cfg.Indent)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want explicit flag to win", cfg.LogLevel)
	}
}
