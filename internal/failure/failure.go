// Package failure classifies the errors a normalization run can hit so the
// batch runner can decide which ones are fatal and which stay local to one
// source or one segment.
package failure

import (
	"errors"
	"fmt"
)

// Kind identifies where in the run an error originated.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfig and KindDiscovery abort the whole run.
	KindConfig
	KindDiscovery
	// KindDecode and KindGeometry isolate one source video.
	KindDecode
	KindGeometry
	// KindEncode isolates one segment.
	KindEncode
	// KindCaptionIO is downgraded to a warning.
	KindCaptionIO
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindDiscovery:
		return "discovery"
	case KindDecode:
		return "decode"
	case KindGeometry:
		return "geometry"
	case KindEncode:
		return "encode"
	case KindCaptionIO:
		return "caption-io"
	default:
		return "unknown"
	}
}

// Fatal reports whether errors of this kind stop the batch.
func (k Kind) Fatal() bool {
	return k == KindConfig || k == KindDiscovery
}

// Error carries the kind and the identity of the file (and segment, when
// relevant) the failure belongs to. Segment is 1-based; zero means the
// error is not tied to a segment.
type Error struct {
	Kind    Kind
	Path    string
	Segment int
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Path == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Segment > 0:
		return fmt.Sprintf("%s %s segment %d: %v", e.Kind, e.Path, e.Segment, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with a kind and a path. A nil err yields nil.
func New(kind Kind, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Path: path, Err: err}
}

// Segment wraps err with a kind, a path and a 1-based segment number.
func Segment(kind Kind, path string, segment int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Path: path, Segment: segment, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
