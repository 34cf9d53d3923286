// Package config translates CLI flags and an optional TOML defaults
// file into the runtime configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// Config captures all command-line options for a conversion run.
type Config struct {
	InputPath    string
	AnalysisPath string
	OutputPath   string
	AutoName     bool
	Indent       int
	LogLevel     string
	LogDir       string
}

// FileDefaults is the shape of the optional TOML defaults file.
// Explicit flags always win over file values.
type FileDefaults struct {
	Output   string `toml:"output"`
	Indent   int    `toml:"indent"`
	LogLevel string `toml:"log_level"`
	LogDir   string `toml:"log_dir"`
}

// RegisterFlags attaches all CLI flags to the provided command.
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("analysis", "", "Analysis payload JSON file to apply after the base document (phase 2)")
	flags.StringP("output", "o", "", "Output file (default: stdout)")
	flags.Bool("auto-name", false, "Derive the output filename from the subject and entry date")
	flags.Int("indent", 2, "JSON output indentation width, 0 for compact output")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (logs also go to stderr)")
	flags.String("config", "", "TOML file with default option values")
}

// LoadConfig converts the parsed Cobra flags into a Config struct with
// validation. args carries the positional input path, if any; an
// empty input path means stdin.
func LoadConfig(cmd *cobra.Command, args []string) (Config, error) {
	flags := cmd.Flags()

	analysisPath, err := flags.GetString("analysis")
	if err != nil {
		return Config{}, err
	}
	outputPath, err := flags.GetString("output")
	if err != nil {
		return Config{}, err
	}
	autoName, err := flags.GetBool("auto-name")
	if err != nil {
		return Config{}, err
	}
	indent, err := flags.GetInt("indent")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}
	configPath, err := flags.GetString("config")
	if err != nil {
		return Config{}, err
	}

	if configPath != "" {
		defaults, err := loadDefaults(configPath)
		if err != nil {
			return Config{}, err
		}
		if outputPath == "" {
			outputPath = defaults.Output
		}
		if !flags.Changed("indent") && defaults.Indent > 0 {
			indent = defaults.Indent
		}
		if !flags.Changed("log-level") && defaults.LogLevel != "" {
			logLevel = defaults.LogLevel
		}
		if logDir == "" {
			logDir = defaults.LogDir
		}
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}

	cfg := Config{
		AnalysisPath: analysisPath,
		OutputPath:   outputPath,
		AutoName:     autoName,
		Indent:       indent,
		LogLevel:     logLevel,
		LogDir:       logDir,
	}
	if len(args) > 0 {
		cfg.InputPath = args[0]
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.AutoName && cfg.OutputPath != "" {
		return fmt.Errorf("--auto-name and --output are mutually exclusive")
	}
	if cfg.Indent < 0 {
		return fmt.Errorf("--indent must not be negative")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}

func loadDefaults(path string) (FileDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileDefaults{}, fmt.Errorf("read config file: %w", err)
	}

	var defaults FileDefaults
	if err := toml.Unmarshal(data, &defaults); err != nil {
		return FileDefaults{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return defaults, nil
}
