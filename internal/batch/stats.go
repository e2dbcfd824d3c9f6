package batch

import (
	"sync/atomic"
	"time"

	"github.com/nguyentantai21042004/clipnorm/internal/processor"
)

// Stats is a snapshot of the runner's counters.
type Stats struct {
	Done      int64
	Processed int64
	Skipped   int64
	Failed    int64
	Segments  int64
	Warnings  int64
}

// counters are updated by every worker as sources finish.
type counters struct {
	done      atomic.Int64
	processed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
	segments  atomic.Int64
	warnings  atomic.Int64
}

func (c *counters) record(res processor.Result) {
	switch res.Status {
	case processor.StatusCompleted:
		c.processed.Add(1)
	case processor.StatusSkipped:
		c.skipped.Add(1)
	default:
		c.failed.Add(1)
	}
	c.segments.Add(int64(res.Written()))
	c.warnings.Add(int64(len(res.Warnings())))
	c.done.Add(1)
}

func (c *counters) snapshot() Stats {
	return Stats{
		Done:      c.done.Load(),
		Processed: c.processed.Load(),
		Skipped:   c.skipped.Load(),
		Failed:    c.failed.Load(),
		Segments:  c.segments.Load(),
		Warnings:  c.warnings.Load(),
	}
}

// Summary is the outcome of one batch run. Results are in discovery order.
type Summary struct {
	InputDir  string
	OutputDir string
	Results   []processor.Result
	Elapsed   time.Duration
}

// Count returns how many sources ended in status.
func (s Summary) Count(status processor.Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Segments counts clips written across the batch.
func (s Summary) Segments() int {
	n := 0
	for _, r := range s.Results {
		n += r.Written()
	}
	return n
}

// Warnings counts non-fatal diagnostics across the batch.
func (s Summary) Warnings() int {
	n := 0
	for _, r := range s.Results {
		n += len(r.Warnings())
	}
	return n
}
