package main

import (
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/nguyentantai21042004/clipnorm/internal/config"
	"github.com/nguyentantai21042004/clipnorm/internal/failure"
)

// resolveConfig layers defaults, the optional config file, positional
// arguments and flags, in that order, and validates the result.
func resolveConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, failure.New(failure.KindConfig, cmd.String("config"), err)
	}

	switch cmd.NArg() {
	case 0:
	case 2:
		cfg.Paths.Input = cmd.Args().Get(0)
		cfg.Paths.Output = cmd.Args().Get(1)
	default:
		return nil, failure.New(failure.KindConfig, "", fmt.Errorf("expected INPUT_DIR OUTPUT_DIR, got %d arguments", cmd.NArg()))
	}

	if cmd.IsSet("duration") {
		cfg.Profile.SegmentDuration = cmd.Float64("duration")
	}
	if cmd.IsSet("width") {
		cfg.Profile.Width = int(cmd.Int("width"))
	}
	if cmd.IsSet("height") {
		cfg.Profile.Height = int(cmd.Int("height"))
	}
	if cmd.IsSet("fps") {
		cfg.Profile.FPS = int(cmd.Int("fps"))
	}
	if cmd.IsSet("workers") {
		cfg.Performance.MaxConcurrent = int(cmd.Int("workers"))
	}
	if cmd.IsSet("progress") {
		cfg.Performance.ShowProgress = cmd.Bool("progress")
	}
	if cmd.IsSet("watch") {
		cfg.Watch.Enabled = cmd.Bool("watch")
	}
	if cmd.IsSet("log-level") {
		cfg.Logging.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Logging.Format = cmd.String("log-format")
	}
	if cmd.IsSet("report") {
		cfg.Paths.Report = cmd.String("report")
	}
	if cmd.IsSet("ffmpeg") {
		cfg.FFmpeg.BinaryPath = cmd.String("ffmpeg")
	}
	if cmd.IsSet("ffprobe") {
		cfg.FFmpeg.ProbePath = cmd.String("ffprobe")
	}

	if err := cfg.Validate(); err != nil {
		return nil, failure.New(failure.KindConfig, "", fmt.Errorf("invalid configuration: %w", err))
	}
	return cfg, nil
}
