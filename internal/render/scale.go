package render

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorScale maps a count in [0, max] linearly onto the RGB segment between
// two anchor colors.
type ColorScale struct {
	low  colorful.Color
	high colorful.Color
	max  float64
}

// NewColorScale parses the hex anchors. A max of zero or less maps every
// value to the low anchor.
func NewColorScale(low, high string, maxValue float64) (ColorScale, error) {
	lo, err := colorful.Hex(low)
	if err != nil {
		return ColorScale{}, fmt.Errorf("parse low color: %w", err)
	}
	hi, err := colorful.Hex(high)
	if err != nil {
		return ColorScale{}, fmt.Errorf("parse high color: %w", err)
	}
	return ColorScale{low: lo, high: hi, max: maxValue}, nil
}

// At returns the hex color for v. Values outside the domain are clamped.
func (s ColorScale) At(v float64) string {
	if s.max <= 0 {
		return s.low.Hex()
	}
	t := v / s.max
	switch {
	case t <= 0:
		return s.low.Hex()
	case t >= 1:
		return s.high.Hex()
	}
	return s.low.BlendRgb(s.high, t).Hex()
}
