package codec

import (
	"github.com/nguyentantai21042004/clipnorm/internal/logger"
	"github.com/nguyentantai21042004/clipnorm/pkg/executor"
)

// Options configures the ffmpeg-backed Service.
type Options struct {
	FFmpegPath  string
	FFprobePath string
	// Threads is passed to the encoder; 0 lets ffmpeg decide.
	Threads int
}

type implService struct {
	executor    executor.Executor
	logger      logger.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// New creates a Service that probes with ffprobe and encodes with ffmpeg,
// running both through exec.
func New(exec executor.Executor, log logger.Logger, opts Options) Service {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = "ffprobe"
	}
	return &implService{
		executor:    exec,
		logger:      log,
		ffmpegPath:  opts.FFmpegPath,
		ffprobePath: opts.FFprobePath,
		threads:     opts.Threads,
	}
}
