package batch

import (
	"io"
	"os"
	"sync"

	"github.com/nguyentantai21042004/clipnorm/internal/config"
	"github.com/nguyentantai21042004/clipnorm/internal/logger"
	"github.com/nguyentantai21042004/clipnorm/internal/processor"
)

type implRunner struct {
	inputDir  string
	outputDir string
	workers   int
	progress  io.Writer
	proc      processor.Processor
	logger    logger.Logger
	counters  counters

	mu      sync.Mutex
	claimed map[string]string
}

// New creates a Runner over cfg.Paths. Progress is drawn on stderr when
// cfg.Performance.ShowProgress is set.
func New(cfg *config.Config, proc processor.Processor, log logger.Logger) Runner {
	var progress io.Writer
	if cfg.Performance.ShowProgress {
		progress = os.Stderr
	}

	workers := cfg.Performance.MaxConcurrent
	if workers <= 0 {
		workers = 1
	}

	return &implRunner{
		inputDir:  cfg.Paths.Input,
		outputDir: cfg.Paths.Output,
		workers:   workers,
		progress:  progress,
		proc:      proc,
		logger:    log,
		claimed:   make(map[string]string),
	}
}
