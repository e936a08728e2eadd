package render

import (
	"fmt"
	"strconv"

	"github.com/couchcryptid/collision-heatmap/internal/domain"
)

// Layer names, in drawing order.
const (
	LayerTitle      = "title"
	LayerCells      = "cells"
	LayerValues     = "values"
	LayerHourLabels = "hour-labels"
	LayerCityLabels = "city-labels"
	LayerCaptions   = "captions"
	LayerLegend     = "legend"
)

const (
	textDark  = "#333"
	textLight = "white"

	legendStripWidth   = 100.0
	legendSwatchHeight = 15.0
)

// Render lays out the matrix as a grid of colored cells with axis labels and
// a legend. It performs no I/O; see WriteSVG for serialization.
func Render(m domain.Matrix, opts Options) (Drawing, error) {
	if err := opts.Validate(); err != nil {
		return Drawing{}, err
	}
	scale, err := NewColorScale(opts.LowColor, opts.HighColor, float64(m.MaxCollisions))
	if err != nil {
		return Drawing{}, err
	}

	hourIdx := make(map[int]int, len(m.Hours))
	for i, h := range m.Hours {
		hourIdx[h] = i
	}
	cityIdx := make(map[string]int, len(m.Cities))
	for i, c := range m.Cities {
		cityIdx[c] = i
	}

	g := grid{opts: opts, hourIdx: hourIdx, cityIdx: cityIdx}

	d := Drawing{Width: opts.Width, Height: opts.Height}
	d.Layers = append(d.Layers,
		titleLayer(opts),
		g.cellLayer(m, scale),
		g.valueLayer(m),
		g.hourLabelLayer(m.Hours),
		g.cityLabelLayer(m.Cities),
		captionLayer(opts),
		legendLayer(opts, scale, m.MaxCollisions),
	)
	return d, nil
}

// grid maps hours to columns and cities to rows, one CellSize band each.
type grid struct {
	opts    Options
	hourIdx map[int]int
	cityIdx map[string]int
}

func (g grid) x(hour int) float64 {
	return g.opts.Margins.Left + float64(g.hourIdx[hour])*g.opts.CellSize
}

func (g grid) y(city string) float64 {
	return g.opts.Margins.Top + float64(g.cityIdx[city])*g.opts.CellSize
}

func titleLayer(opts Options) Layer {
	return Layer{
		Name: LayerTitle,
		Texts: []Text{{
			X:          opts.Width / 2,
			Y:          30,
			Content:    opts.Title,
			Anchor:     "middle",
			FontSize:   "18px",
			FontWeight: "bold",
		}},
	}
}

func (g grid) cellLayer(m domain.Matrix, scale ColorScale) Layer {
	rects := make([]Rect, 0, len(m.Cells))
	for _, c := range m.Cells {
		rects = append(rects, Rect{
			X:           g.x(c.Hour),
			Y:           g.y(c.City),
			Width:       g.opts.CellSize,
			Height:      g.opts.CellSize,
			Fill:        scale.At(float64(c.Collisions)),
			Stroke:      "white",
			StrokeWidth: 1,
			Title:       fmt.Sprintf("%s\n%d:00\nCollisions: %d", c.City, c.Hour, c.Collisions),
		})
	}
	return Layer{Name: LayerCells, Rects: rects}
}

// valueLayer labels non-empty cells. Counts above half the maximum get light
// text so they stay readable on the darker fills.
func (g grid) valueLayer(m domain.Matrix) Layer {
	var texts []Text
	half := float64(m.MaxCollisions) * 0.5
	for _, c := range m.Cells {
		if c.Collisions <= 0 {
			continue
		}
		fill := textDark
		if float64(c.Collisions) > half {
			fill = textLight
		}
		texts = append(texts, Text{
			X:          g.x(c.Hour) + g.opts.CellSize/2,
			Y:          g.y(c.City) + g.opts.CellSize/2,
			Content:    strconv.Itoa(c.Collisions),
			Anchor:     "middle",
			Baseline:   "middle",
			FontSize:   "11px",
			FontWeight: "bold",
			Fill:       fill,
		})
	}
	return Layer{Name: LayerValues, Texts: texts}
}

func (g grid) hourLabelLayer(hours []int) Layer {
	texts := make([]Text, 0, len(hours))
	for _, h := range hours {
		texts = append(texts, Text{
			X:        g.x(h) + g.opts.CellSize/2,
			Y:        g.opts.Margins.Top - 10,
			Content:  fmt.Sprintf("%d:00", h),
			Anchor:   "middle",
			FontSize: "12px",
		})
	}
	return Layer{Name: LayerHourLabels, Texts: texts}
}

func (g grid) cityLabelLayer(cities []string) Layer {
	texts := make([]Text, 0, len(cities))
	for _, c := range cities {
		texts = append(texts, Text{
			X:        g.opts.Margins.Left - 10,
			Y:        g.y(c) + g.opts.CellSize/2,
			Content:  c,
			Anchor:   "end",
			Baseline: "middle",
			FontSize: "11px",
		})
	}
	return Layer{Name: LayerCityLabels, Texts: texts}
}

func captionLayer(opts Options) Layer {
	return Layer{
		Name: LayerCaptions,
		Texts: []Text{
			{
				X:          opts.Width / 2,
				Y:          opts.Height - 10,
				Content:    "Hour of Day",
				Anchor:     "middle",
				FontWeight: "bold",
			},
			{
				X:          -(opts.Height / 2),
				Y:          20,
				Content:    "City",
				Anchor:     "middle",
				FontWeight: "bold",
				Transform:  "rotate(-90)",
			},
		},
	}
}

// legendLayer samples the color scale at LegendSteps evenly spaced values
// from 0 to maxCollisions. The strip has a fixed width between the Low and
// High captions; swatches share it equally, left (low) to right (high).
func legendLayer(opts Options, scale ColorScale, maxCollisions int) Layer {
	originX := opts.Width - 150
	steps := opts.LegendSteps
	swatchWidth := legendStripWidth / float64(steps)

	rects := make([]Rect, 0, steps)
	for i := range steps {
		value := float64(i) / float64(steps-1) * float64(maxCollisions)
		rects = append(rects, Rect{
			X:      originX + float64(i)*swatchWidth,
			Y:      10,
			Width:  swatchWidth,
			Height: legendSwatchHeight,
			Fill:   scale.At(value),
		})
	}

	return Layer{
		Name:  LayerLegend,
		Rects: rects,
		Texts: []Text{
			{X: opts.Width - 160, Y: 35, Content: "Low", FontSize: "10px"},
			{X: opts.Width - 30, Y: 35, Content: "High", FontSize: "10px"},
		},
	}
}
