// Package codectest provides an in-memory codec.Service for exercising the
// normalization pipeline without ffmpeg.
package codectest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/nguyentantai21042004/clipnorm/internal/codec"
	"github.com/nguyentantai21042004/clipnorm/internal/media"
)

// Media describes one fake source file.
type Media struct {
	Duration float64
	Width    int
	Height   int
	// OpenErr makes Open fail for this path.
	OpenErr error
	// WriteErrs makes WriteTo fail for the slice starting at the key.
	WriteErrs map[float64]error
	// WriteDelay is spent inside WriteTo, honouring ctx.
	WriteDelay time.Duration
}

// Written records one successful WriteTo.
type Written struct {
	Path   string
	Source string
	Start  float64
	End    float64
	Crop   media.Rect
	Width  int
	Height int
	FPS    int
	Audio  bool
	Params codec.EncodeParams
}

// Service is a codec.Service backed by a map of fake media. Files it
// writes contain a one-line description of the clip.
type Service struct {
	mu        sync.Mutex
	media     map[string]Media
	written   []Written
	opened    []string
	openNow   int
	maxOpen   int
	liveSrc   int
	liveClips int
}

// New returns a fake serving the given media keyed by path.
func New(m map[string]Media) *Service {
	return &Service{media: m}
}

// Add registers (or replaces) a fake source.
func (s *Service) Add(path string, m Media) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.media == nil {
		s.media = make(map[string]Media)
	}
	s.media[path] = m
}

func (s *Service) Open(ctx context.Context, path string) (codec.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}

	s.opened = append(s.opened, path)
	s.liveSrc++
	s.openNow++
	if s.openNow > s.maxOpen {
		s.maxOpen = s.openNow
	}
	return &source{svc: s, path: path, m: m}, nil
}

// Written returns every clip written so far, ordered by output path.
func (s *Service) Written() []Written {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Written(nil), s.written...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Opened returns the paths passed to successful Open calls, in call order.
func (s *Service) Opened() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.opened...)
}

// MaxConcurrentOpen is the highest number of sources open at once.
func (s *Service) MaxConcurrentOpen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxOpen
}

// Leaks returns how many sources and clips were never closed.
func (s *Service) Leaks() (sources, clips int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveSrc, s.liveClips
}

type source struct {
	svc    *Service
	path   string
	m      Media
	closed bool
}

func (src *source) Path() string           { return src.path }
func (src *source) Duration() float64      { return src.m.Duration }
func (src *source) Dimensions() (int, int) { return src.m.Width, src.m.Height }

func (src *source) Slice(start, end float64) (codec.Clip, error) {
	if src.closed {
		return nil, errors.New("source closed")
	}
	if start < 0 || end <= start || end > src.m.Duration {
		return nil, fmt.Errorf("slice [%g, %g) outside %gs", start, end, src.m.Duration)
	}

	src.svc.mu.Lock()
	src.svc.liveClips++
	src.svc.mu.Unlock()

	return &clip{
		src:   src,
		start: start,
		end:   end,
		crop:  media.Rect{Width: src.m.Width, Height: src.m.Height},
		w:     src.m.Width,
		h:     src.m.Height,
	}, nil
}

func (src *source) Close() error {
	if src.closed {
		return errors.New("source closed twice")
	}
	src.closed = true
	src.svc.mu.Lock()
	src.svc.liveSrc--
	src.svc.openNow--
	src.svc.mu.Unlock()
	return nil
}

// clip is shared by value between steps; only the original slice is
// counted as a live handle.
type clip struct {
	src    *source
	root   *clip
	start  float64
	end    float64
	crop   media.Rect
	w, h   int
	fps    int
	closed bool
	err    error
}

func (c *clip) derive() *clip {
	next := *c
	if c.root == nil {
		next.root = c
	}
	return &next
}

func (c *clip) Crop(r media.Rect) codec.Clip {
	next := c.derive()
	if r.X < 0 || r.Y < 0 || r.X+r.Width > c.w || r.Y+r.Height > c.h || r.Width <= 0 || r.Height <= 0 {
		next.err = fmt.Errorf("crop %v outside %dx%d frame", r, c.w, c.h)
	}
	next.crop = r
	next.w, next.h = r.Width, r.Height
	return next
}

func (c *clip) Resize(width, height int) codec.Clip {
	next := c.derive()
	next.w, next.h = width, height
	return next
}

func (c *clip) SetFPS(fps int) codec.Clip {
	next := c.derive()
	next.fps = fps
	return next
}

func (c *clip) WriteTo(ctx context.Context, path string, params codec.EncodeParams) error {
	if c.err != nil {
		return c.err
	}
	if err := c.src.m.WriteErrs[c.start]; err != nil {
		return err
	}
	if d := c.src.m.WriteDelay; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	body := fmt.Sprintf("%s [%.3f,%.3f) %dx%d@%d audio=false\n", c.src.path, c.start, c.end, c.w, c.h, c.fps)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return err
	}

	c.src.svc.mu.Lock()
	c.src.svc.written = append(c.src.svc.written, Written{
		Path:   path,
		Source: c.src.path,
		Start:  c.start,
		End:    c.end,
		Crop:   c.crop,
		Width:  c.w,
		Height: c.h,
		FPS:    c.fps,
		Audio:  false,
		Params: params,
	})
	c.src.svc.mu.Unlock()
	return nil
}

// Close releases the underlying slice; closing any step of a chain counts.
func (c *clip) Close() error {
	root := c
	if c.root != nil {
		root = c.root
	}
	if root.closed {
		return nil
	}
	root.closed = true
	c.src.svc.mu.Lock()
	c.src.svc.liveClips--
	c.src.svc.mu.Unlock()
	return nil
}
