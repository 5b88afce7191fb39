package prompter

import "math"

// Bounds is a snapshot of the scroll container's measurements in pixels.
// The zero value is unmeasured.
type Bounds struct {
	ContentHeight  float64
	ViewportHeight float64
}

// MaxScroll returns the furthest legal scroll offset.
func MaxScroll(contentHeight, viewportHeight float64) float64 {
	return math.Max(0, contentHeight-viewportHeight)
}

// Measured reports whether the container has been laid out.
func (b Bounds) Measured() bool {
	return b.ViewportHeight > 0 && finite(b.ViewportHeight) && finite(b.ContentHeight)
}

// MaxScroll returns the furthest legal scroll offset for b.
func (b Bounds) MaxScroll() float64 {
	return MaxScroll(b.ContentHeight, b.ViewportHeight)
}

// Clamp limits pos to [0, MaxScroll]. NaN clamps to 0.
func (b Bounds) Clamp(pos float64) float64 {
	if math.IsNaN(pos) {
		return 0
	}
	return math.Max(0, math.Min(pos, b.MaxScroll()))
}

// Progress returns pos as a fraction of MaxScroll. ok is false when there is
// nothing to scroll, in which case no progress should be shown.
func (b Bounds) Progress(pos float64) (progress float64, ok bool) {
	if !b.Measured() {
		return 0, false
	}
	limit := b.MaxScroll()
	if limit <= 0 {
		return 0, false
	}
	return math.Max(0, math.Min(pos/limit, 1)), true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
