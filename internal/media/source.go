package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Output naming.
const (
	VideoContainer = "mp4"
	CaptionExt     = ".txt"
)

// videoExtensions are the accepted source containers (lowercase, with
// leading dot).
var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
}

// IsVideo reports whether path has an accepted source extension, compared
// case-insensitively.
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// SourceVideo is a discovered input file. CaptionPath is empty when no
// sibling caption existed at discovery time.
type SourceVideo struct {
	Path        string
	Stem        string
	CaptionPath string
}

// NewSourceVideo derives the stem from path and records caption as given.
func NewSourceVideo(path, caption string) SourceVideo {
	return SourceVideo{Path: path, Stem: Stem(path), CaptionPath: caption}
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CaptionSibling returns {dir}/{stem}.txt for a video path.
func CaptionSibling(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + CaptionExt
}

// SegmentBase returns "{stem}_segment{N}", the shared name of a segment's
// video and caption files.
func SegmentBase(stem string, number int) string {
	return fmt.Sprintf("%s_segment%d", stem, number)
}

// VideoName returns the encoded clip's file name.
func VideoName(stem string, number int) string {
	return SegmentBase(stem, number) + "." + VideoContainer
}

// CaptionName returns the caption file name paired with VideoName.
func CaptionName(stem string, number int) string {
	return SegmentBase(stem, number) + CaptionExt
}
