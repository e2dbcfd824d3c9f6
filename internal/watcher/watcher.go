package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/clipnorm/internal/logger"
	"github.com/nguyentantai21042004/clipnorm/internal/media"
)

type implWatcher struct {
	inputDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	settleDelay   time.Duration
	semaphore     *semaphore
	wg            sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*pendingFile
}

// pendingFile is a video waiting out its settle delay.
type pendingFile struct {
	timer *time.Timer
}

// Start monitors the input tree until ctx is cancelled. New directories
// are watched as they appear; new .mp4/.mov files are handed to the
// handler once they stop changing.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d, settle %s). Monitoring: %s",
		w.maxConcurrent, w.settleDelay, w.inputDir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.cancelPending()
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create):
		fi, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if fi.IsDir() {
			w.logger.Debug(ctx, "New directory: %s", event.Name)
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn(ctx, "Cannot watch %s: %v", event.Name, err)
			}
			w.scanTree(ctx, event.Name)
			return
		}
		if media.IsVideo(event.Name) {
			w.logger.Info(ctx, "New video detected: %s", event.Name)
			w.schedule(ctx, event.Name)
		} else {
			w.logger.Debug(ctx, "Ignoring non-video file: %s", event.Name)
		}

	case event.Has(fsnotify.Write):
		w.mu.Lock()
		_, waiting := w.pending[event.Name]
		w.mu.Unlock()
		if waiting {
			w.schedule(ctx, event.Name)
		}
	}
}

// addTree watches root and every directory below it.
func (w *implWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			if path == root {
				return err
			}
			return nil
		}
		return nil
	})
}

// scanTree schedules the videos already inside a directory that was moved
// into the tree; they produce no events of their own.
func (w *implWatcher) scanTree(ctx context.Context, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && media.IsVideo(path) {
			w.schedule(ctx, path)
		}
		return nil
	})
}

// schedule starts, or restarts, the settle timer for path.
func (w *implWatcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[path]; ok && p.timer.Stop() {
		p.timer.Reset(w.settleDelay)
		return
	}

	p := &pendingFile{}
	w.pending[path] = p
	w.wg.Add(1)
	p.timer = time.AfterFunc(w.settleDelay, func() { w.dispatch(ctx, path, p) })
}

// dispatch runs the handler for a settled file under the concurrency limit.
func (w *implWatcher) dispatch(ctx context.Context, path string, p *pendingFile) {
	defer w.wg.Done()

	w.mu.Lock()
	if w.pending[path] == p {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if err := w.semaphore.acquire(ctx); err != nil {
		return
	}
	defer w.semaphore.release()

	if err := w.handler(ctx, path); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error(ctx, "Failed to process %s: %v", path, err)
	}
}

// cancelPending drops files still waiting out their settle delay.
func (w *implWatcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, p := range w.pending {
		if p.timer.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}
