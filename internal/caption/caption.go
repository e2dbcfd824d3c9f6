// Package caption produces the caption file paired with every clip.
// Captions are copied verbatim from the source's sibling .txt file, or
// created empty when there is none; they are never generated or split.
package caption

import (
	"errors"
	"fmt"
	"os"

	"github.com/nguyentantai21042004/clipnorm/internal/failure"
)

// Outcome says what ended up in a segment's caption file.
type Outcome int

const (
	// Copied: the source caption was copied byte for byte.
	Copied Outcome = iota
	// Stubbed: the source had no caption; an empty file was created.
	Stubbed
	// Fallback: copying failed, an empty file was created instead.
	Fallback
	// Missing: not even an empty file could be created.
	Missing
)

func (o Outcome) String() string {
	switch o {
	case Copied:
		return "copied"
	case Stubbed:
		return "stubbed"
	case Fallback:
		return "fallback"
	default:
		return "missing"
	}
}

// Associate writes the caption for one segment to dst. src is the
// source's caption path, empty when none was found at discovery.
//
// The returned error is always a CaptionIO failure meant to be reported as
// a warning; it never invalidates the segment's video.
func Associate(src, dst string) (Outcome, error) {
	if src == "" {
		if err := writeEmpty(dst); err != nil {
			return Missing, failure.New(failure.KindCaptionIO, dst, err)
		}
		return Stubbed, nil
	}

	copyErr := copyFile(src, dst)
	if copyErr == nil {
		return Copied, nil
	}

	if err := writeEmpty(dst); err != nil {
		return Missing, failure.New(failure.KindCaptionIO, src, errors.Join(copyErr, err))
	}
	return Fallback, failure.New(failure.KindCaptionIO, src, copyErr)
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write destination: %w", err)
	}
	return nil
}

func writeEmpty(dst string) error {
	if err := os.WriteFile(dst, nil, 0o644); err != nil {
		return fmt.Errorf("create empty caption: %w", err)
	}
	return nil
}
