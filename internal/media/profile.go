package media

import (
	"fmt"
	"math"
)

// Default target profile values.
const (
	DefaultSegmentDuration = 2.5
	DefaultWidth           = 848
	DefaultHeight          = 480
	DefaultFPS             = 30
)

// Profile is the target every clip of a run is normalized to. It is
// supplied once and never changes during a run.
type Profile struct {
	SegmentDuration float64 `yaml:"segment_duration"`
	Width           int     `yaml:"target_width"`
	Height          int     `yaml:"target_height"`
	FPS             int     `yaml:"target_fps"`
}

// DefaultProfile returns the 2.5s 848x480@30 profile.
func DefaultProfile() Profile {
	return Profile{
		SegmentDuration: DefaultSegmentDuration,
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		FPS:             DefaultFPS,
	}
}

// Validate checks each field independently; there is no cross-field rule.
func (p Profile) Validate() error {
	if d := p.SegmentDuration; math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return fmt.Errorf("segment_duration must be a positive number, got %g", d)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("target size must be positive, got %dx%d", p.Width, p.Height)
	}
	if p.FPS <= 0 {
		return fmt.Errorf("target_fps must be positive, got %d", p.FPS)
	}
	return nil
}

func (p Profile) String() string {
	return fmt.Sprintf("%dx%d, %gs, %dfps", p.Width, p.Height, p.SegmentDuration, p.FPS)
}
