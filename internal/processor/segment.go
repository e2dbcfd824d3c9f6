package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/nguyentantai21042004/clipnorm/internal/caption"
	"github.com/nguyentantai21042004/clipnorm/internal/codec"
	"github.com/nguyentantai21042004/clipnorm/internal/failure"
	"github.com/nguyentantai21042004/clipnorm/internal/logger"
	"github.com/nguyentantai21042004/clipnorm/internal/media"
)

// processSegment slices, reframes and encodes one segment, then writes its
// caption. Clip handles are closed before returning whatever the outcome,
// so a worker holds at most one segment in memory.
func (p *implProcessor) processSegment(ctx context.Context, handle codec.Source, src media.SourceVideo, seg media.Segment, rect media.Rect) SegmentResult {
	ctx = logger.WithField(ctx, "segment", seg.Number())
	sr := SegmentResult{Segment: seg}

	videoPath := filepath.Join(p.outputDir, media.VideoName(src.Stem, seg.Number()))
	captionPath := filepath.Join(p.outputDir, media.CaptionName(src.Stem, seg.Number()))

	slice, err := handle.Slice(seg.Start, seg.End)
	if err != nil {
		sr.Err = failure.Segment(failure.KindEncode, src.Path, seg.Number(), fmt.Errorf("slice [%.3f, %.3f): %w", seg.Start, seg.End, err))
		p.logger.Error(ctx, "Segment %d of %s: %v", seg.Number(), src.Path, err)
		return sr
	}
	defer slice.Close()

	clip := slice.
		Crop(rect).
		Resize(p.profile.Width, p.profile.Height).
		SetFPS(p.profile.FPS)
	defer clip.Close()

	if err := p.writeVideo(ctx, clip, videoPath); err != nil {
		sr.Err = failure.Segment(failure.KindEncode, src.Path, seg.Number(), err)
		if !errors.Is(err, context.Canceled) {
			p.logger.Error(ctx, "Segment %d of %s: %v", seg.Number(), src.Path, err)
		}
		return sr
	}
	sr.VideoPath = videoPath

	sr.Caption, sr.Warning = caption.Associate(src.CaptionPath, captionPath)
	switch sr.Caption {
	case caption.Copied:
		sr.CaptionPath = captionPath
	case caption.Stubbed:
		sr.CaptionPath = captionPath
		sr.Warning = fmt.Errorf("%s segment %d: %w", src.Path, seg.Number(), ErrNoCaption)
		p.logger.Warn(ctx, "No caption file found for %s", filepath.Base(src.Path))
	case caption.Fallback:
		sr.CaptionPath = captionPath
		p.logger.Warn(ctx, "Caption copy failed, wrote empty %s: %v", filepath.Base(captionPath), sr.Warning)
	default:
		p.logger.Warn(ctx, "No caption written for %s: %v", filepath.Base(videoPath), sr.Warning)
	}

	p.logger.Debug(ctx, "Wrote %s [%.3f, %.3f)", filepath.Base(videoPath), seg.Start, seg.End)
	return sr
}
