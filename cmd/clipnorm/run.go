package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/nguyentantai21042004/clipnorm/internal/batch"
	"github.com/nguyentantai21042004/clipnorm/internal/codec"
	"github.com/nguyentantai21042004/clipnorm/internal/config"
	"github.com/nguyentantai21042004/clipnorm/internal/failure"
	"github.com/nguyentantai21042004/clipnorm/internal/logger"
	"github.com/nguyentantai21042004/clipnorm/internal/processor"
	"github.com/nguyentantai21042004/clipnorm/internal/watcher"
	"github.com/nguyentantai21042004/clipnorm/pkg/executor"
)

// exitInterrupted is the conventional status for a run stopped by SIGINT.
const exitInterrupted = 130

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})

	if err := preparePaths(cfg); err != nil {
		log.Error(ctx, "%v", err)
		return cli.Exit(err.Error(), 1)
	}
	if err := checkBinaries(cfg); err != nil {
		log.Error(ctx, "%v", err)
		return cli.Exit(err.Error(), 1)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "========================================")
	log.Info(ctx, "clipnorm")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s, %d CPUs", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	log.Info(ctx, "Input: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "Profile: %v", cfg.Profile)
	log.Info(ctx, "Workers: %d", cfg.Performance.MaxConcurrent)

	exec := executor.New()
	svc := codec.New(exec, log, codec.Options{
		FFmpegPath:  cfg.FFmpeg.BinaryPath,
		FFprobePath: cfg.FFmpeg.ProbePath,
		Threads:     cfg.FFmpeg.Threads,
	})
	proc := processor.New(cfg, svc, log)
	runner := batch.New(cfg, proc, log)

	sum, err := runner.Run(ctx)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if cfg.Paths.Report != "" {
		if err := batch.WriteReport(cfg.Paths.Report, sum); err != nil {
			log.Error(ctx, "Failed to write report: %v", err)
		} else {
			log.Info(ctx, "Report written to %s", cfg.Paths.Report)
		}
	}

	if ctx.Err() != nil {
		return cli.Exit("interrupted", exitInterrupted)
	}
	if !cfg.Watch.Enabled {
		return nil
	}

	return watch(ctx, cfg, runner, log)
}

// watch keeps normalizing new files until a shutdown signal arrives.
func watch(ctx context.Context, cfg *config.Config, runner batch.Runner, log logger.Logger) error {
	w, err := watcher.New(cfg.Paths.Input, runner.Handle, log, watcher.Options{
		MaxConcurrent: cfg.Performance.MaxConcurrent,
		SettleDelay:   cfg.Watch.SettleDelay,
	})
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		return cli.Exit(err.Error(), 1)
	}
	defer w.Stop()

	log.Info(ctx, "Press Ctrl+C to stop")
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Watcher error: %v", err)
		return cli.Exit(err.Error(), 1)
	}

	s := runner.Stats()
	log.Info(ctx, "Watch stopped: %d processed, %d skipped, %d failed, %d clips since start",
		s.Processed, s.Skipped, s.Failed, s.Segments)
	return nil
}

// preparePaths resolves the input and output directories to absolute,
// symlink-free paths, creating the output directory if needed.
func preparePaths(cfg *config.Config) error {
	in, err := resolveDir(cfg.Paths.Input)
	if err != nil {
		return failure.New(failure.KindDiscovery, cfg.Paths.Input, err)
	}

	if err := os.MkdirAll(cfg.Paths.Output, 0o755); err != nil {
		return failure.New(failure.KindConfig, cfg.Paths.Output, fmt.Errorf("create output directory: %w", err))
	}
	out, err := resolveDir(cfg.Paths.Output)
	if err != nil {
		return failure.New(failure.KindConfig, cfg.Paths.Output, err)
	}

	if err := cfg.ValidatePaths(in, out); err != nil {
		return failure.New(failure.KindConfig, out, err)
	}
	cfg.Paths.Input, cfg.Paths.Output = in, out
	return nil
}

func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return resolved, nil
}

// checkBinaries fails fast when ffmpeg or ffprobe cannot be found.
func checkBinaries(cfg *config.Config) error {
	for _, bin := range []string{cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath} {
		if _, err := executor.LookPath(bin); err != nil {
			return failure.New(failure.KindConfig, bin, err)
		}
	}
	return nil
}
