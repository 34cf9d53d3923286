package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gavinnn-m/vcon-parser/filter"
	"github.com/gavinnn-m/vcon-parser/generator"
	"github.com/gavinnn-m/vcon-parser/mboxconv"
	"github.com/gavinnn-m/vcon-parser/progress"
	"github.com/gavinnn-m/vcon-parser/stats"
)

func newMboxCmd() *cobra.Command {
	var (
		outputDir     string
		indent        int
		logLevel      string
		includeHeader []string
		includeBody   []string
		excludeHeader []string
		excludeBody   []string
	)

	cmd := &cobra.Command{
		Use:   "mbox [archive.mbox]",
		Short: "Batch-convert every message of an mbox archive into vCon documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cleanup, err := setupLogger(logLevel, "")
			if err != nil {
				return err
			}
			defer func() {
				_ = cleanup()
			}()

			f, err := filter.New(filter.Options{
				IncludeHeader: includeHeader,
				IncludeBody:   includeBody,
				ExcludeHeader: excludeHeader,
				ExcludeBody:   excludeBody,
			})
			if err != nil {
				return fmt.Errorf("create filter: %w", err)
			}

			return runMbox(args[0], outputDir, indent, logLevel, f, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&outputDir, "output", "o", ".", "Output directory for the generated documents")
	flags.IntVar(&indent, "indent", 2, "JSON output indentation width, 0 for compact output")
	flags.StringVar(&logLevel, "log-level", "info", "Logging level: debug, info, warn, error")
	flags.StringArrayVar(&includeHeader, "include-header", nil, "Regex allow-list applied to message headers (mutually exclusive with exclude flags)")
	flags.StringArrayVar(&includeBody, "include-body", nil, "Regex allow-list applied to message bodies (mutually exclusive with exclude flags)")
	flags.StringArrayVar(&excludeHeader, "exclude-header", nil, "Regex block-list applied to message headers (mutually exclusive with include flags)")
	flags.StringArrayVar(&excludeBody, "exclude-body", nil, "Regex block-list applied to message bodies (mutually exclusive with include flags)")

	return cmd
}

func runMbox(archivePath, outputDir string, indent int, logLevel string, f *filter.Filter, logger *slog.Logger) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	total, err := countMessages(archivePath)
	if err != nil {
		return err
	}
	logger.Info("starting mbox conversion", "archive", archivePath, "messages", total, "outputDir", outputDir)

	bar := progress.New(total, logLevel)
	defer bar.Stop()

	collector := stats.NewCollector()
	gen := generator.New()

	skipped, err := mboxconv.Read(archivePath, func(ordinal int, in generator.EmailInput) error {
		collector.Scanned()
		defer bar.Increment()

		if !f.Allows(in) {
			collector.Filtered()
			return nil
		}

		if _, genErr := gen.GenerateBase(in); genErr != nil {
			collector.Failed(genErr)
			logger.Warn("message did not validate", "ordinal", ordinal, "subject", in.Subject, "err", genErr)
			return nil
		}

		data, jsonErr := gen.ToJSON(indent)
		if jsonErr != nil {
			return jsonErr
		}

		name := fmt.Sprintf("%03d-%s", ordinal, generator.Filename(in))
		if writeErr := os.WriteFile(filepath.Join(outputDir, name), data, 0o644); writeErr != nil {
			return fmt.Errorf("write %s: %w", name, writeErr)
		}

		collector.Converted()
		return nil
	})
	if err != nil {
		return fmt.Errorf("convert mbox: %w", err)
	}
	collector.Skipped(skipped)

	bar.Stop()
	summary := collector.Snapshot()
	logger.Info("mbox conversion finished", summary.LogAttrs()...)
	return nil
}

// countMessages walks the archive once so the progress bar has a
// total before the conversion pass starts.
func countMessages(path string) (int, error) {
	count := 0
	_, err := mboxconv.Read(path, func(int, generator.EmailInput) error {
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count mbox messages: %w", err)
	}
	return count, nil
}
