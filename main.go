package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/gavinnn-m/vcon-parser/config"
	"github.com/gavinnn-m/vcon-parser/generator"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vcon-parser [input.json]",
		Short: "Convert conversation records (email, transcripts, chat) into vCon documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cmd, args)
			if err != nil {
				return err
			}

			logger, cleanup, err := setupLogger(cfg.LogLevel, cfg.LogDir)
			if err != nil {
				return err
			}
			defer func() {
				_ = cleanup()
			}()

			slog.SetDefault(logger)
			return run(cfg, logger)
		},
	}
	config.RegisterFlags(rootCmd)
	rootCmd.AddCommand(newMboxCmd())

	if err := rootCmd.Execute(); err != nil {
		var verr *generator.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "validation error: %v\n", verr)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	var in generator.EmailInput
	if err := decodeFile(cfg.InputPath, &in); err != nil {
		return err
	}

	gen := generator.New()
	doc, err := gen.GenerateBase(in)
	if err != nil {
		return err
	}
	logger.Info("base document generated",
		"uuid", doc.UUID,
		"version", doc.Version,
		"participants", len(doc.Participants),
		"events", len(doc.Events))

	if cfg.AnalysisPath != "" {
		var payload generator.AnalysisInput
		if err := decodeFile(cfg.AnalysisPath, &payload); err != nil {
			return err
		}
		doc, err = gen.AddAnalysis(payload)
		if err != nil {
			return err
		}
		logger.Info("analysis applied",
			"version", doc.Version,
			"records", len(doc.Analysis),
			"source", doc.Analysis[len(doc.Analysis)-1].Source)
	}

	output, err := gen.ToJSON(cfg.Indent)
	if err != nil {
		return err
	}

	outputPath := cfg.OutputPath
	if cfg.AutoName {
		outputPath = generator.Filename(in)
	}
	if outputPath == "" {
		_, err := os.Stdout.Write(append(output, '\n'))
		return err
	}

	if err := os.WriteFile(outputPath, output, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("document written", "path", outputPath)
	return nil
}

// decodeFile reads JSON from a file path, or from stdin when the path
// is empty.
func decodeFile(path string, v any) error {
	var reader io.Reader = os.Stdin
	name := "stdin"
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		reader = file
		name = path
	}

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func setupLogger(logLevel, logDir string) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	switch logLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}

	opts := &slog.HandlerOptions{Level: level}
	cleanup := func() error { return nil }

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, cleanup, err
		}

		logFilePath := filepath.Join(logDir, fmt.Sprintf("vcon-parser-%s.log", time.Now().Format("20060102T150405")))
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, err
		}

		handler := slog.NewTextHandler(io.MultiWriter(os.Stderr, file), opts)
		cleanup = func() error {
			return file.Close()
		}
		return slog.New(handler), cleanup, nil
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler), cleanup, nil
}
