package media

import "fmt"

// Rect is a pixel region, [X, X+Width) x [Y, Y+Height).
type Rect struct {
	X, Y          int
	Width, Height int
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// CenterCrop returns the largest centered region of a srcW x srcH frame
// whose aspect ratio matches dstW:dstH. A source wider than the target
// loses columns on both sides; otherwise it loses rows top and bottom.
//
// The ratios are compared and the new edge computed in integer arithmetic,
// which gives floor(srcH*dstW/dstH) and floor(srcW*dstH/dstW) exactly with
// no float rounding.
func CenterCrop(srcW, srcH, dstW, dstH int) (Rect, error) {
	if srcW <= 0 || srcH <= 0 {
		return Rect{}, fmt.Errorf("degenerate source dimensions %dx%d", srcW, srcH)
	}
	if dstW <= 0 || dstH <= 0 {
		return Rect{}, fmt.Errorf("degenerate target dimensions %dx%d", dstW, dstH)
	}

	sw, sh, tw, th := int64(srcW), int64(srcH), int64(dstW), int64(dstH)

	var r Rect
	if sw*th > tw*sh {
		newW := sh * tw / th
		r = Rect{X: int((sw - newW) / 2), Y: 0, Width: int(newW), Height: srcH}
	} else {
		newH := sw * th / tw
		r = Rect{X: 0, Y: int((sh - newH) / 2), Width: srcW, Height: int(newH)}
	}

	if r.Width <= 0 || r.Height <= 0 {
		return Rect{}, fmt.Errorf("crop of %dx%d to ratio %d:%d is empty", srcW, srcH, dstW, dstH)
	}
	return r, nil
}
