package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/kjans/mboxkit/config"
	"github.com/kjans/mboxkit/filter"
	"github.com/kjans/mboxkit/mbox"
	"github.com/kjans/mboxkit/progress"
	"github.com/kjans/mboxkit/runner"
	"github.com/kjans/mboxkit/stats"
)

var rootCmd = &cobra.Command{
	Use:          "mboxkit",
	Short:        "Parse, filter and re-export mbox mail archives",
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := config.RegisterFlags(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register CLI flags: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	switch cfg.LogLevel {
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

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, cleanup, err
		}

		logFilePath := filepath.Join(cfg.LogDir, fmt.Sprintf("mboxkit-%s.log", time.Now().Format("20060102T150405")))
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, err
		}

		handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), opts)
		cleanup = func() error {
			return file.Close()
		}
		return slog.New(handler), cleanup, nil
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler), cleanup, nil
}

// loadContainer reads the mbox file. An empty or unreadable container is
// the single container-level failure, reported here once.
func loadContainer(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mbox: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("mbox container %s is empty", path)
	}
	return data, nil
}

// runParse drives one parse session with the progress bar and stats
// reporter attached, then returns the result and final summary.
func runParse(ctx context.Context, cfg config.Config, logger *slog.Logger) (*mbox.Result, stats.Summary, error) {
	data, err := loadContainer(cfg.MboxPath)
	if err != nil {
		return nil, stats.Summary{}, err
	}

	opts := mbox.Options{
		ProgressEvery: cfg.ProgressEvery,
		MaxRecordSize: cfg.MaxRecordSize,
	}
	session := runner.New(ctx, data, opts, logger)
	reporter := stats.NewReporter(session, logger)
	bar := progress.New(len(data), cfg.LogLevel)

	var barWG sync.WaitGroup
	barWG.Add(1)
	go func() {
		defer barWG.Done()
		bar.Consume(ctx, session.Progress())
	}()

	session.Start()

	res, err := session.Wait()
	barWG.Wait()
	bar.Stop()
	if err != nil {
		return nil, stats.Summary{}, err
	}

	return res, reporter.Summary(), nil
}

func newFilter(cfg config.Config) (*filter.Filter, error) {
	f, err := filter.New(filter.Options{
		IncludeHeader: cfg.IncludeHeader,
		IncludeBody:   cfg.IncludeBody,
		ExcludeHeader: cfg.ExcludeHeader,
		ExcludeBody:   cfg.ExcludeBody,
	})
	if err != nil {
		return nil, fmt.Errorf("create filter: %w", err)
	}
	return f, nil
}
