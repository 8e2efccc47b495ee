// Package svg renders a drawing as an SVG preview.
//
// The preview mirrors what a CAD viewer shows for the DXF output: each layer
// is stroked in the screen color of its ACI color, WINDOWS is dashed, and the
// Y axis is flipped so that the drawing's bottom-left corner appears at the
// bottom-left of the image.
package svg

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/floorcad/pkg/drawing"
)

// DefaultMargin is the padding around the drawing bounds in drawing units.
const DefaultMargin = 20.0

// aciColors maps the ACI colors used by the layer table to screen colors.
var aciColors = map[int]string{
	1: "#e53935",
	2: "#c9a400",
	3: "#43a047",
	5: "#1e88e5",
	7: "#212121",
}

// Option configures Render.
type Option func(*renderer)

type renderer struct {
	margin      float64
	strokeWidth float64
	background  string
}

// WithMargin sets the blank border around the drawing, in drawing units.
// The default is DefaultMargin.
func WithMargin(m float64) Option { return func(r *renderer) { r.margin = m } }

// WithStrokeWidth sets the line width of every entity. The default is 1.5.
func WithStrokeWidth(w float64) Option { return func(r *renderer) { r.strokeWidth = w } }

// WithBackground sets the page fill color. An empty fill leaves the page
// transparent.
func WithBackground(fill string) Option { return func(r *renderer) { r.background = fill } }

// Render returns an SVG document previewing doc.
func Render(doc *drawing.Document, opts ...Option) []byte {
	r := renderer{margin: DefaultMargin, strokeWidth: 1.5, background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}

	minPt, maxPt, ok := doc.Bounds()
	if !ok {
		minPt, maxPt = drawing.Point{}, drawing.Point{}
	}
	width := maxPt.X - minPt.X + 2*r.margin
	height := maxPt.Y - minPt.Y + 2*r.margin

	// Drawing Y grows upward, SVG Y grows downward.
	tx := func(x float64) float64 { return x - minPt.X + r.margin }
	ty := func(y float64) float64 { return maxPt.Y - y + r.margin }

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}

	for _, style := range doc.Layers() {
		layer, err := drawing.ParseLayer(style.Name)
		if err != nil {
			continue
		}
		ents := doc.EntitiesOn(layer)
		if len(ents) == 0 {
			continue
		}
		renderLayer(&buf, &r, style, ents, tx, ty)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLayer(buf *bytes.Buffer, r *renderer, style drawing.LayerStyle, ents []drawing.Entity, tx, ty func(float64) float64) {
	color := layerColor(style.Color)
	dash := ""
	if style.LineType == drawing.LineDashed {
		dash = ` stroke-dasharray="6 3"`
	}
	fmt.Fprintf(buf, `  <g id="layer-%s" stroke="%s" stroke-width="%.1f" fill="none"%s>`+"\n",
		style.Name, color, r.strokeWidth, dash)

	for _, e := range ents {
		switch e.Kind {
		case drawing.KindPolygon:
			buf.WriteString(`    <polygon points="`)
			for i, p := range e.Points {
				if i > 0 {
					buf.WriteByte(' ')
				}
				fmt.Fprintf(buf, "%.2f,%.2f", tx(p.X), ty(p.Y))
			}
			buf.WriteString(`"/>` + "\n")
		case drawing.KindLine:
			a, b := e.Points[0], e.Points[1]
			fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
				tx(a.X), ty(a.Y), tx(b.X), ty(b.Y))
		case drawing.KindText:
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" text-anchor="middle" dominant-baseline="middle" fill="%s" stroke="none">%s</text>`+"\n",
				tx(e.Insert.X), ty(e.Insert.Y), e.Height, color, html.EscapeString(e.Text))
		}
	}
	buf.WriteString("  </g>\n")
}

func layerColor(aci int) string {
	if c, ok := aciColors[aci]; ok {
		return c
	}
	return aciColors[7]
}
