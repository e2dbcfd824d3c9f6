package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "clipnorm: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "clipnorm",
		Usage:     "Split videos into fixed-length, fixed-size training clips with captions",
		ArgsUsage: "INPUT_DIR OUTPUT_DIR",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "Segment duration in seconds (default 2.5)",
			},
			&cli.IntFlag{
				Name:    "width",
				Aliases: []string{"w"},
				Usage:   "Output width in pixels (default 848)",
			},
			&cli.IntFlag{
				Name:    "height",
				Aliases: []string{"H"},
				Usage:   "Output height in pixels (default 480)",
			},
			&cli.IntFlag{
				Name:    "fps",
				Aliases: []string{"f"},
				Usage:   "Output frame rate (default 30)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file; flags override its values",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Source videos processed in parallel (default: CPU count, at most 4)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "console or json",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a YAML batch report to this path",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Draw a progress bar on stderr",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep running and normalize videos added to INPUT_DIR",
			},
			&cli.StringFlag{
				Name:  "ffmpeg",
				Usage: "ffmpeg binary",
			},
			&cli.StringFlag{
				Name:  "ffprobe",
				Usage: "ffprobe binary",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			return run(ctx, cfg)
		},
	}
}
