// Package batch discovers source videos and drives the per-source pipeline
// over them on a bounded worker pool, aggregating outcomes without letting
// one source abort the rest.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/clipnorm/internal/failure"
	"github.com/nguyentantai21042004/clipnorm/internal/media"
	"github.com/nguyentantai21042004/clipnorm/internal/processor"
)

// Run is the batch entry point: discover, dispatch each source to a
// worker, log one outcome line per source and a final summary.
func (r *implRunner) Run(ctx context.Context) (Summary, error) {
	startTime := time.Now()
	sum := Summary{InputDir: r.inputDir, OutputDir: r.outputDir}

	sources, err := Discover(r.inputDir)
	if err != nil {
		r.logger.Error(ctx, "File discovery failed: %v", err)
		return sum, err
	}
	if len(sources) == 0 {
		r.logger.Info(ctx, "No video files found in %s", r.inputDir)
		sum.Elapsed = time.Since(startTime)
		r.logSummary(ctx, sum)
		return sum, nil
	}

	workers := r.workers
	if workers > len(sources) {
		workers = len(sources)
	}
	r.logger.Info(ctx, "Found %d source videos, normalizing with %d workers", len(sources), workers)

	sum.Results = make([]processor.Result, len(sources))
	dispatched := make([]bool, len(sources))
	bar := newProgressBar(len(sources), r.progress)

	tasks := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				res := r.proc.Process(ctx, sources[i])
				sum.Results[i] = res
				r.finish(ctx, res)
				describe(bar, r.counters.snapshot())
				_ = bar.Add(1)
			}
		}()
	}

feed:
	for i, src := range sources {
		if owner, ok := r.claim(src); !ok {
			res := processor.Skipped(src, fmt.Sprintf("output name collides with %s", owner))
			sum.Results[i] = res
			dispatched[i] = true
			r.finish(ctx, res)
			_ = bar.Add(1)
			continue
		}
		select {
		case tasks <- i:
			dispatched[i] = true
		case <-ctx.Done():
			break feed
		}
	}
	close(tasks)
	wg.Wait()
	_ = bar.Finish()

	for i, ok := range dispatched {
		if !ok {
			sum.Results[i] = processor.Skipped(sources[i], "not started: interrupted")
		}
	}

	sum.Elapsed = time.Since(startTime)
	if ctx.Err() != nil {
		r.logger.Warn(ctx, "Interrupted")
	}
	r.logSummary(ctx, sum)
	return sum, nil
}

// Handle normalizes one file that appeared after the batch, for watch
// mode. Failed sources are returned as errors for the caller to log.
func (r *implRunner) Handle(ctx context.Context, path string) error {
	src := Resolve(path)
	if owner, ok := r.claim(src); !ok {
		res := processor.Skipped(src, fmt.Sprintf("output name collides with %s", owner))
		r.counters.record(res)
		r.logOutcome(ctx, res)
		return nil
	}

	res := r.proc.Process(ctx, src)
	r.counters.record(res)
	if res.Status == processor.StatusFailed {
		return res.Err
	}
	r.logOutcome(ctx, res)
	return nil
}

func (r *implRunner) Stats() Stats {
	return r.counters.snapshot()
}

// claim reserves the output stem of src. Stems are compared
// case-insensitively so outputs stay distinct on case-folding file
// systems; the same path may be claimed again.
func (r *implRunner) claim(src media.SourceVideo) (owner string, ok bool) {
	key := strings.ToLower(src.Stem)

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, taken := r.claimed[key]; taken && owner != src.Path {
		return owner, false
	}
	r.claimed[key] = src.Path
	return "", true
}

func (r *implRunner) finish(ctx context.Context, res processor.Result) {
	r.counters.record(res)
	r.logOutcome(ctx, res)
}

func (r *implRunner) logOutcome(ctx context.Context, res processor.Result) {
	name := r.displayName(res.Source.Path)
	switch res.Status {
	case processor.StatusCompleted:
		if failed := res.FailedSegments(); failed > 0 {
			r.logger.Warn(ctx, "%s: processed %d segments, %d failed", name, res.Written(), failed)
		} else {
			r.logger.Info(ctx, "%s: processed %d segments in %s", name, res.Written(), res.Elapsed.Round(time.Millisecond))
		}
	case processor.StatusSkipped:
		r.logger.Info(ctx, "%s: skipped: %s", name, res.Reason)
	default:
		r.logger.Error(ctx, "%s: failed: %v", name, res.Err)
	}
}

func (r *implRunner) logSummary(ctx context.Context, sum Summary) {
	r.logger.Info(ctx, "Done in %s: %d processed, %d skipped, %d failed, %d clips (%d warnings) written to %s",
		sum.Elapsed.Round(time.Millisecond),
		sum.Count(processor.StatusCompleted),
		sum.Count(processor.StatusSkipped),
		sum.Count(processor.StatusFailed),
		sum.Segments(),
		sum.Warnings(),
		sum.OutputDir)
}

// displayName shortens path relative to the input directory for log lines.
func (r *implRunner) displayName(path string) string {
	if rel, err := filepath.Rel(r.inputDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// Fatal reports whether err should stop the program rather than be
// counted against one source.
func Fatal(err error) bool {
	return err != nil && failure.KindOf(err).Fatal()
}
