package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

type svgDoc struct {
	XMLName xml.Name   `xml:"svg"`
	Xmlns   string     `xml:"xmlns,attr"`
	ViewBox string     `xml:"viewBox,attr"`
	Width   string     `xml:"width,attr"`
	Height  string     `xml:"height,attr"`
	Groups  []svgGroup `xml:"g"`
}

type svgGroup struct {
	Class string    `xml:"class,attr,omitempty"`
	Rects []svgRect `xml:"rect"`
	Texts []svgText `xml:"text"`
}

type svgRect struct {
	X           string `xml:"x,attr"`
	Y           string `xml:"y,attr"`
	Width       string `xml:"width,attr"`
	Height      string `xml:"height,attr"`
	Fill        string `xml:"fill,attr,omitempty"`
	Stroke      string `xml:"stroke,attr,omitempty"`
	StrokeWidth string `xml:"stroke-width,attr,omitempty"`
	Title       string `xml:"title,omitempty"`
}

type svgText struct {
	X          string `xml:"x,attr"`
	Y          string `xml:"y,attr"`
	Transform  string `xml:"transform,attr,omitempty"`
	Anchor     string `xml:"text-anchor,attr,omitempty"`
	Baseline   string `xml:"dominant-baseline,attr,omitempty"`
	FontSize   string `xml:"font-size,attr,omitempty"`
	FontWeight string `xml:"font-weight,attr,omitempty"`
	Fill       string `xml:"fill,attr,omitempty"`
	Content    string `xml:",chardata"`
}

// WriteSVG serializes a Drawing as a standalone SVG document, one <g> per layer.
func WriteSVG(w io.Writer, d Drawing) error {
	doc := svgDoc{
		Xmlns:   "http://www.w3.org/2000/svg",
		ViewBox: fmt.Sprintf("0 0 %s %s", num(d.Width), num(d.Height)),
		Width:   num(d.Width),
		Height:  num(d.Height),
		Groups:  make([]svgGroup, 0, len(d.Layers)),
	}
	for _, l := range d.Layers {
		doc.Groups = append(doc.Groups, toGroup(l))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write svg header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode svg: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush svg: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// SVG renders the drawing into a byte slice.
func SVG(d Drawing) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toGroup(l Layer) svgGroup {
	g := svgGroup{Class: l.Name}
	for _, r := range l.Rects {
		sr := svgRect{
			X:      num(r.X),
			Y:      num(r.Y),
			Width:  num(r.Width),
			Height: num(r.Height),
			Fill:   r.Fill,
			Stroke: r.Stroke,
			Title:  r.Title,
		}
		if r.StrokeWidth > 0 {
			sr.StrokeWidth = num(r.StrokeWidth)
		}
		g.Rects = append(g.Rects, sr)
	}
	for _, t := range l.Texts {
		g.Texts = append(g.Texts, svgText{
			X:          num(t.X),
			Y:          num(t.Y),
			Transform:  t.Transform,
			Anchor:     t.Anchor,
			Baseline:   t.Baseline,
			FontSize:   t.FontSize,
			FontWeight: t.FontWeight,
			Fill:       t.Fill,
			Content:    t.Content,
		})
	}
	return g
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
