package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/clipnorm/internal/logger"
)

// Options tunes a Watcher.
type Options struct {
	// MaxConcurrent bounds how many handlers run at once.
	MaxConcurrent int
	// SettleDelay is how long a new file must go without writes before it
	// is handed to the handler.
	SettleDelay time.Duration
}

// New creates a Watcher over inputDir and every directory below it.
func New(inputDir string, handler EventHandler, log logger.Logger, opts Options) (Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 500 * time.Millisecond
	}

	w := &implWatcher{
		inputDir:      inputDir,
		handler:       handler,
		logger:        log,
		watcher:       fw,
		maxConcurrent: opts.MaxConcurrent,
		settleDelay:   opts.SettleDelay,
		semaphore:     newSemaphore(opts.MaxConcurrent),
		pending:       make(map[string]*pendingFile),
	}

	if err := w.addTree(inputDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}
	return w, nil
}
