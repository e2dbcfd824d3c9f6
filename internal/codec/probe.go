package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Info is what the pipeline needs to know about a source before slicing.
// Width and Height are display dimensions, already swapped for sources
// carrying a 90/270 degree rotation since ffmpeg autorotates on decode.
type Info struct {
	Duration float64
	Width    int
	Height   int
	HasAudio bool
}

func (s *implService) probe(ctx context.Context, path string) (Info, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	}

	out, err := s.executor.Execute(ctx, s.ffprobePath, args...)
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe: %w", err)
	}
	return ParseProbe([]byte(out))
}

// ParseProbe converts ffprobe JSON output into Info. It fails when the
// file has no video stream or no usable duration.
func ParseProbe(data []byte) (Info, error) {
	var raw probeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	var info Info
	var video *probeStream
	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			if video == nil && s.Disposition["attached_pic"] != 1 {
				video = s
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if video == nil {
		return Info{}, fmt.Errorf("no video stream")
	}

	info.Width, info.Height = video.Width, video.Height
	if r := video.rotation(); r == 90 || r == 270 {
		info.Width, info.Height = info.Height, info.Width
	}

	info.Duration = parseFloat(raw.Format.Duration)
	if info.Duration <= 0 {
		info.Duration = parseFloat(video.Duration)
	}
	if info.Duration <= 0 || math.IsNaN(info.Duration) || math.IsInf(info.Duration, 0) {
		return Info{}, fmt.Errorf("unknown duration")
	}
	return info, nil
}

// --- ffprobe JSON wire types ---

type probeOutput struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeStream struct {
	CodecType    string            `json:"codec_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Duration     string            `json:"duration"`
	Disposition  map[string]int    `json:"disposition"`
	Tags         map[string]string `json:"tags"`
	SideDataList []struct {
		Rotation float64 `json:"rotation"`
	} `json:"side_data_list"`
}

// rotation returns the clockwise display rotation normalized to [0, 360).
func (s *probeStream) rotation() int {
	deg := 0
	if v, ok := s.Tags["rotate"]; ok {
		deg, _ = strconv.Atoi(strings.TrimSpace(v))
	}
	for _, sd := range s.SideDataList {
		if sd.Rotation != 0 {
			deg = int(math.Round(sd.Rotation))
		}
	}
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
