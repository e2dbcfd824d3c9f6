package codec

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/nguyentantai21042004/clipnorm/internal/media"
)

var errClosed = errors.New("handle closed")

// Open probes path; ffmpeg itself is only started by Clip.WriteTo.
func (s *implService) Open(ctx context.Context, path string) (Source, error) {
	info, err := s.probe(ctx, path)
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "Probed %s: %.3fs %dx%d audio=%t", path, info.Duration, info.Width, info.Height, info.HasAudio)
	return &ffmpegSource{svc: s, path: path, info: info}, nil
}

type ffmpegSource struct {
	svc    *implService
	path   string
	info   Info
	closed bool
}

func (src *ffmpegSource) Path() string      { return src.path }
func (src *ffmpegSource) Duration() float64 { return src.info.Duration }
func (src *ffmpegSource) Dimensions() (int, int) {
	return src.info.Width, src.info.Height
}

func (src *ffmpegSource) Slice(start, end float64) (Clip, error) {
	if src.closed {
		return nil, errClosed
	}
	if start < 0 || end <= start || end > src.info.Duration {
		return nil, fmt.Errorf("slice [%.3f, %.3f) outside source of %.3fs", start, end, src.info.Duration)
	}
	return &ffmpegClip{src: src, start: start, end: end}, nil
}

func (src *ffmpegSource) Close() error {
	src.closed = true
	return nil
}

// ffmpegClip accumulates the filter chain; each step returns a copy so a
// clip value is never changed after it is handed out.
type ffmpegClip struct {
	src    *ffmpegSource
	start  float64
	end    float64
	crop   *media.Rect
	width  int
	height int
	fps    int
	closed bool
}

func (c *ffmpegClip) Crop(r media.Rect) Clip {
	next := *c
	next.crop = &r
	return &next
}

func (c *ffmpegClip) Resize(width, height int) Clip {
	next := *c
	next.width, next.height = width, height
	return &next
}

func (c *ffmpegClip) SetFPS(fps int) Clip {
	next := *c
	next.fps = fps
	return &next
}

func (c *ffmpegClip) Close() error {
	c.closed = true
	return nil
}

func (c *ffmpegClip) WriteTo(ctx context.Context, path string, params EncodeParams) error {
	if c.closed || c.src.closed {
		return errClosed
	}

	args := c.args(path, params)
	c.src.svc.logger.Debug(ctx, "ffmpeg %v", args)

	if _, err := c.src.svc.executor.Execute(ctx, c.src.svc.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg encode: %w", err)
	}
	return nil
}

// args renders the ffmpeg command line: input-side seek to the slice,
// crop -> scale -> fps filter chain, video-only output with fixed
// encoder settings.
func (c *ffmpegClip) args(path string, params EncodeParams) []string {
	stream := ffmpeg.Input(c.src.path, ffmpeg.KwArgs{
		"ss": formatSeconds(c.start),
		"t":  formatSeconds(c.end - c.start),
	})

	if c.crop != nil {
		stream = stream.Filter("crop", ffmpeg.Args{
			strconv.Itoa(c.crop.Width),
			strconv.Itoa(c.crop.Height),
			strconv.Itoa(c.crop.X),
			strconv.Itoa(c.crop.Y),
		})
	}
	if c.width > 0 && c.height > 0 {
		stream = stream.Filter("scale", ffmpeg.Args{strconv.Itoa(c.width), strconv.Itoa(c.height)})
		// Scaling a ratio-matched crop can still leave a non-square SAR from
		// the source; pin it so players show exactly width x height.
		stream = stream.Filter("setsar", ffmpeg.Args{"1"})
	}
	if c.fps > 0 {
		stream = stream.Filter("fps", ffmpeg.Args{strconv.Itoa(c.fps)})
	}

	out := ffmpeg.KwArgs{
		"an":       "",
		"c:v":      params.VideoCodec,
		"preset":   params.Preset,
		"b:v":      params.Bitrate,
		"pix_fmt":  params.PixelFormat,
		"movflags": "+faststart",
	}
	if params.Format != "" {
		out["f"] = params.Format
	}
	if t := c.src.svc.threads; t > 0 {
		out["threads"] = strconv.Itoa(t)
	}

	return stream.
		Output(path, out).
		GlobalArgs("-hide_banner", "-nostdin", "-loglevel", "error").
		OverWriteOutput().
		GetArgs()
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
