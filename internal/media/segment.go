package media

import "math"

// Segment is one fixed-length time slice of a source, [Start, End).
type Segment struct {
	Index int
	Start float64
	End   float64
}

// Number is the 1-based segment number used in output names.
func (s Segment) Number() int { return s.Index + 1 }

// Duration returns End - Start.
func (s Segment) Duration() float64 { return s.End - s.Start }

// SegmentCount returns floor(duration / segmentDuration), the number of
// full-length segments that fit in the source. The remainder is dropped.
// Non-finite or non-positive inputs yield zero.
func SegmentCount(duration, segmentDuration float64) int {
	if !(segmentDuration > 0) || math.IsInf(segmentDuration, 0) || math.IsInf(duration, 0) || !(duration >= segmentDuration) {
		return 0
	}
	n := int(math.Floor(duration / segmentDuration))
	// The quotient can round either way; settle on the largest n whose end
	// n*S, computed exactly as Plan computes it, stays within the source.
	for n > 0 && float64(n)*segmentDuration > duration {
		n--
	}
	for float64(n+1)*segmentDuration <= duration {
		n++
	}
	return n
}

// Plan lays out the segments of a source of the given duration. Segment i
// covers [i*S, (i+1)*S). Each boundary is computed once, so neighbours
// share it exactly and the last end never exceeds duration.
func Plan(duration, segmentDuration float64) []Segment {
	n := SegmentCount(duration, segmentDuration)
	if n == 0 {
		return nil
	}
	segs := make([]Segment, n)
	for i := range segs {
		segs[i] = Segment{
			Index: i,
			Start: float64(i) * segmentDuration,
			End:   float64(i+1) * segmentDuration,
		}
	}
	return segs
}
