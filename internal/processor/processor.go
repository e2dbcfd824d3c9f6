package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/clipnorm/internal/codec"
	"github.com/nguyentantai21042004/clipnorm/internal/failure"
	"github.com/nguyentantai21042004/clipnorm/internal/logger"
	"github.com/nguyentantai21042004/clipnorm/internal/media"
)

// ErrNoCaption is the warning attached to segments of a source without a
// caption file.
var ErrNoCaption = errors.New("no caption file found")

// Process runs the segmentation pipeline for one source video:
// open -> duration gate -> crop geometry -> one pass per segment.
func (p *implProcessor) Process(ctx context.Context, src media.SourceVideo) Result {
	startTime := time.Now()
	ctx = logger.WithField(ctx, "source", src.Path)
	res := Result{Source: src}

	// Discovered -> Loaded
	handle, err := p.codec.Open(ctx, src.Path)
	if err != nil {
		res.Status = StatusFailed
		res.Err = failure.New(failure.KindDecode, src.Path, err)
		p.logger.Error(ctx, "Cannot open %s: %v", src.Path, err)
		return finish(res, startTime)
	}
	defer p.closeSource(ctx, handle)

	res.Duration = handle.Duration()
	res.Width, res.Height = handle.Dimensions()

	// Loaded -> Skipped
	if res.Duration < p.profile.SegmentDuration {
		res.Status = StatusSkipped
		res.Reason = fmt.Sprintf("too short (%.1fs < %gs)", res.Duration, p.profile.SegmentDuration)
		p.logger.Info(ctx, "Skipping %s: %s", src.Path, res.Reason)
		return finish(res, startTime)
	}

	rect, err := media.CenterCrop(res.Width, res.Height, p.profile.Width, p.profile.Height)
	if err != nil {
		res.Status = StatusFailed
		res.Err = failure.New(failure.KindGeometry, src.Path, err)
		p.logger.Error(ctx, "Cannot reframe %s: %v", src.Path, err)
		return finish(res, startTime)
	}

	// Loaded -> Processing
	segments := media.Plan(res.Duration, p.profile.SegmentDuration)
	p.logger.Info(ctx, "Splitting %s into %d segments (%.1fs, %dx%d, crop %v)",
		src.Path, len(segments), res.Duration, res.Width, res.Height, rect)

	for _, seg := range segments {
		if ctx.Err() != nil {
			break
		}
		res.Segments = append(res.Segments, p.processSegment(ctx, handle, src, seg, rect))
	}

	switch {
	case ctx.Err() != nil && res.Written() < len(segments):
		res.Status = StatusFailed
		res.Err = failure.New(failure.KindEncode, src.Path, fmt.Errorf("interrupted after %d of %d segments: %w", res.Written(), len(segments), ctx.Err()))
	case res.Written() == 0:
		res.Status = StatusFailed
		res.Err = failure.New(failure.KindEncode, src.Path, segmentErrors(res.Segments))
	default:
		res.Status = StatusCompleted
	}

	if failed := res.FailedSegments(); failed > 0 && res.Status == StatusCompleted {
		p.logger.Warn(ctx, "Finished %s with %d of %d segments failed", src.Path, failed, len(segments))
	}
	return finish(res, startTime)
}

func finish(res Result, startTime time.Time) Result {
	res.Elapsed = time.Since(startTime)
	return res
}

func (p *implProcessor) closeSource(ctx context.Context, handle codec.Source) {
	if err := handle.Close(); err != nil {
		p.logger.Warn(ctx, "Failed to close %s: %v", handle.Path(), err)
	}
}
