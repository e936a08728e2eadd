package render

// Drawing is a backend-neutral description of the heatmap: a fixed canvas
// and an ordered list of layers, each drawn on top of the previous one.
type Drawing struct {
	Width  float64
	Height float64
	Layers []Layer
}

// Layer groups primitives that belong together (cells, labels, legend...).
type Layer struct {
	Name  string
	Rects []Rect
	Texts []Text
}

// Rect is a filled rectangle. A non-empty Title becomes a hover tooltip.
type Rect struct {
	X, Y          float64
	Width, Height float64
	Fill          string
	Stroke        string
	StrokeWidth   float64
	Title         string
}

// Text is a single positioned label.
type Text struct {
	X, Y       float64
	Content    string
	Anchor     string // start, middle, end
	Baseline   string // dominant-baseline; empty means the renderer default
	FontSize   string
	FontWeight string
	Fill       string
	Transform  string
}

// Layer returns the layer with the given name, or nil.
func (d Drawing) Layer(name string) *Layer {
	for i := range d.Layers {
		if d.Layers[i].Name == name {
			return &d.Layers[i]
		}
	}
	return nil
}
