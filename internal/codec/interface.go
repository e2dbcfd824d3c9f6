// Package codec is the boundary to the video decode/encode engine. The
// normalizer only needs a small capability set (open, slice, crop, resize,
// set fps, write, close); Service captures exactly that so the pipeline can
// run against ffmpeg in production and an in-memory fake in tests.
package codec

import (
	"context"

	"github.com/nguyentantai21042004/clipnorm/internal/media"
)

// Service opens source videos.
type Service interface {
	Open(ctx context.Context, path string) (Source, error)
}

// Source is an opened, read-only source video. Implementations are not
// required to be safe for concurrent use.
type Source interface {
	Path() string
	Duration() float64
	Dimensions() (width, height int)
	// Slice returns the time range [start, end) as a new clip.
	Slice(start, end float64) (Clip, error)
	Close() error
}

// Clip is a lazily processed slice of a source. Crop, Resize and SetFPS
// return a new Clip with the step appended; nothing is decoded until
// WriteTo. The written stream never carries audio.
type Clip interface {
	Crop(r media.Rect) Clip
	Resize(width, height int) Clip
	SetFPS(fps int) Clip
	WriteTo(ctx context.Context, path string, params EncodeParams) error
	Close() error
}

// EncodeParams fixes how clips are encoded. Format names the container
// explicitly so output can go to a path without a media extension.
type EncodeParams struct {
	VideoCodec  string
	Preset      string
	Bitrate     string
	PixelFormat string
	Format      string
}

// DefaultEncodeParams is the quality-oriented H.264 setting used for every
// training clip.
func DefaultEncodeParams() EncodeParams {
	return EncodeParams{
		VideoCodec:  "libx264",
		Preset:      "medium",
		Bitrate:     "5000k",
		PixelFormat: "yuv420p",
		Format:      media.VideoContainer,
	}
}
