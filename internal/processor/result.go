package processor

import (
	"errors"
	"time"

	"github.com/nguyentantai21042004/clipnorm/internal/caption"
	"github.com/nguyentantai21042004/clipnorm/internal/media"
)

// Status is the terminal state of one source video.
type Status int

const (
	// StatusCompleted: at least one segment was written.
	StatusCompleted Status = iota
	// StatusSkipped: nothing to do (too short, name collision).
	StatusSkipped
	// StatusFailed: the source could not be opened or yielded no segment.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "processed"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result is the outcome of processing one source video.
type Result struct {
	Source   media.SourceVideo
	Status   Status
	Reason   string
	Err      error
	Duration float64
	Width    int
	Height   int
	Segments []SegmentResult
	Elapsed  time.Duration
}

// SegmentResult is the outcome of one segment. VideoPath and CaptionPath
// are set only once the respective file exists under its final name.
type SegmentResult struct {
	Segment     media.Segment
	VideoPath   string
	CaptionPath string
	Caption     caption.Outcome
	Warning     error
	Err         error
}

// Written counts segments whose video reached its final name.
func (r Result) Written() int {
	n := 0
	for _, s := range r.Segments {
		if s.Err == nil && s.VideoPath != "" {
			n++
		}
	}
	return n
}

// FailedSegments counts segments that hit an error.
func (r Result) FailedSegments() int {
	n := 0
	for _, s := range r.Segments {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Warnings returns the non-fatal diagnostics of every segment.
func (r Result) Warnings() []error {
	var out []error
	for _, s := range r.Segments {
		if s.Warning != nil {
			out = append(out, s.Warning)
		}
	}
	return out
}

// Skipped builds a Result for a source that is skipped before opening.
func Skipped(src media.SourceVideo, reason string) Result {
	return Result{Source: src, Status: StatusSkipped, Reason: reason}
}

// segmentErrors joins every segment error, for a source whose segments
// all failed.
func segmentErrors(segs []SegmentResult) error {
	var errs []error
	for _, s := range segs {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errors.Join(errs...)
}
