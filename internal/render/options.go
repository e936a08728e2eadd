package render

import (
	"errors"
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Margins reserve space around the grid for labels, in canvas units.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Options controls the canvas geometry and palette.
type Options struct {
	Width       float64
	Height      float64
	Margins     Margins
	CellSize    float64
	LowColor    string
	HighColor   string
	LegendSteps int
	Title       string
}

// DefaultOptions returns the 1000x500 layout with 25-unit cells.
func DefaultOptions() Options {
	return Options{
		Width:       1000,
		Height:      500,
		Margins:     Margins{Top: 60, Right: 30, Bottom: 100, Left: 180},
		CellSize:    25,
		LowColor:    "#f0f9ff",
		HighColor:   "#dc2626",
		LegendSteps: 5,
		Title:       "Collisions by City during Peak Hours (7-9 AM & 5-7 PM)",
	}
}

// Validate checks that the options describe a drawable canvas.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return errors.New("canvas width and height must be positive")
	}
	if o.CellSize <= 0 {
		return errors.New("cell size must be positive")
	}
	if o.LegendSteps < 2 {
		return fmt.Errorf("legend needs at least 2 steps, got %d", o.LegendSteps)
	}
	if _, err := colorful.Hex(o.LowColor); err != nil {
		return fmt.Errorf("low color %q: %w", o.LowColor, err)
	}
	if _, err := colorful.Hex(o.HighColor); err != nil {
		return fmt.Errorf("high color %q: %w", o.HighColor, err)
	}
	return nil
}
