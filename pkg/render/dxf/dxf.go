// Package dxf writes drawings as ASCII DXF files.
//
// The output targets AutoCAD R12 (AC1009), the most widely readable DXF
// dialect. It contains a HEADER with the drawing extents, a TABLES section
// with the line types, layers and the STANDARD text style, and an ENTITIES
// section. Polygons become closed POLYLINEs, labels become TEXT entities
// aligned on their middle center, and opening segments become LINEs.
//
// The writer emits no handles and no timestamps, and every number goes
// through one formatter, so identical drawings produce identical bytes.
package dxf

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/floorcad/pkg/drawing"
	"github.com/matzehuels/floorcad/pkg/errors"
)

// DefaultPrecision is the number of decimal places written for coordinates.
const DefaultPrecision = 6

// Option configures the writer.
type Option func(*writer)

// WithPrecision sets the number of decimal places for coordinates. Values
// outside 0..15 are clamped.
func WithPrecision(n int) Option {
	return func(w *writer) { w.precision = min(max(n, 0), 15) }
}

type writer struct {
	buf       bytes.Buffer
	precision int
}

// Render returns the DXF encoding of doc.
func Render(doc *drawing.Document, opts ...Option) []byte {
	w := &writer{precision: DefaultPrecision}
	for _, opt := range opts {
		opt(w)
	}
	w.header(doc)
	w.tables(doc)
	w.entities(doc)
	w.pair(0, "EOF")
	return w.buf.Bytes()
}

// Write encodes doc to out. Failures are reported as SINK_FAILURE.
func Write(out io.Writer, doc *drawing.Document, opts ...Option) error {
	if _, err := out.Write(Render(doc, opts...)); err != nil {
		return errors.Wrap(errors.ErrCodeSinkFailure, err, "write dxf")
	}
	return nil
}

func (w *writer) pair(code int, value string) {
	fmt.Fprintf(&w.buf, "%3d\n%s\n", code, value)
}

func (w *writer) integer(code, v int) { w.pair(code, strconv.Itoa(v)) }

func (w *writer) num(code int, v float64) { w.pair(code, w.format(v)) }

func (w *writer) point(code int, p drawing.Point) {
	w.num(code, p.X)
	w.num(code+10, p.Y)
	w.num(code+20, 0)
}

// format prints v with the configured precision, trims trailing zeros but
// keeps one decimal, and never prints negative zero.
func (w *writer) format(v float64) string {
	s := strconv.FormatFloat(v, 'f', w.precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		if strings.HasSuffix(s, ".") {
			s += "0"
		}
	} else {
		s += ".0"
	}
	if s == "-0.0" {
		s = "0.0"
	}
	return s
}

func (w *writer) beginSection(name string) {
	w.pair(0, "SECTION")
	w.pair(2, name)
}

func (w *writer) endSection() { w.pair(0, "ENDSEC") }

func (w *writer) header(doc *drawing.Document) {
	minPt, maxPt, ok := doc.Bounds()
	if !ok {
		minPt, maxPt = drawing.Point{}, drawing.Point{}
	}

	w.beginSection("HEADER")
	w.pair(9, "$ACADVER")
	w.pair(1, "AC1009")
	w.pair(9, "$INSBASE")
	w.point(10, drawing.Point{})
	w.pair(9, "$EXTMIN")
	w.point(10, minPt)
	w.pair(9, "$EXTMAX")
	w.point(10, maxPt)
	w.endSection()
}

type lineType struct {
	name    string
	desc    string
	pattern []float64
}

var lineTypes = []lineType{
	{name: string(drawing.LineContinuous), desc: "Solid line"},
	{name: string(drawing.LineDashed), desc: "Dashed __ __ __ __", pattern: []float64{0.5, -0.25}},
}

func (w *writer) tables(doc *drawing.Document) {
	w.beginSection("TABLES")

	w.beginTable("LTYPE", len(lineTypes))
	for _, lt := range lineTypes {
		total := 0.0
		for _, d := range lt.pattern {
			if d < 0 {
				total -= d
			} else {
				total += d
			}
		}
		w.pair(0, "LTYPE")
		w.pair(2, lt.name)
		w.integer(70, 0)
		w.pair(3, lt.desc)
		w.integer(72, 65)
		w.integer(73, len(lt.pattern))
		w.num(40, total)
		for _, d := range lt.pattern {
			w.num(49, d)
		}
	}
	w.endTable()

	layers := doc.Layers()
	w.beginTable("LAYER", len(layers)+1)
	w.layer(drawing.LayerStyle{Name: "0", Color: 7, LineType: drawing.LineContinuous})
	for _, l := range layers {
		w.layer(l)
	}
	w.endTable()

	w.beginTable("STYLE", 1)
	w.pair(0, "STYLE")
	w.pair(2, "STANDARD")
	w.integer(70, 0)
	w.num(40, 0)
	w.num(41, 1)
	w.num(50, 0)
	w.integer(71, 0)
	w.num(42, 2.5)
	w.pair(3, "txt")
	w.pair(4, "")
	w.endTable()

	w.endSection()
}

func (w *writer) beginTable(name string, n int) {
	w.pair(0, "TABLE")
	w.pair(2, name)
	w.integer(70, n)
}

func (w *writer) endTable() { w.pair(0, "ENDTAB") }

func (w *writer) layer(s drawing.LayerStyle) {
	w.pair(0, "LAYER")
	w.pair(2, s.Name)
	w.integer(70, 0)
	w.integer(62, s.Color)
	w.pair(6, string(s.LineType))
}

func (w *writer) entities(doc *drawing.Document) {
	w.beginSection("ENTITIES")
	for _, e := range doc.Entities() {
		layer := e.Layer.String()
		switch e.Kind {
		case drawing.KindPolygon:
			w.pair(0, "POLYLINE")
			w.pair(8, layer)
			w.integer(66, 1)
			w.point(10, drawing.Point{})
			w.integer(70, 1)
			for _, p := range e.Points {
				w.pair(0, "VERTEX")
				w.pair(8, layer)
				w.point(10, p)
			}
			w.pair(0, "SEQEND")
			w.pair(8, layer)
		case drawing.KindText:
			w.pair(0, "TEXT")
			w.pair(8, layer)
			w.point(10, e.Insert)
			w.num(40, e.Height)
			w.pair(1, EscapeText(e.Text))
			w.pair(7, "STANDARD")
			w.integer(72, 1)
			w.point(11, e.Insert)
			w.integer(73, 2)
		case drawing.KindLine:
			w.pair(0, "LINE")
			w.pair(8, layer)
			w.point(10, e.Points[0])
			w.point(11, e.Points[1])
		}
	}
	w.endSection()
}

// EscapeText makes s safe for a single DXF text value. Line breaks become
// spaces and characters outside printable ASCII use the \U+XXXX escape.
func EscapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\r' || r == '\n' || r == '\t':
			b.WriteByte(' ')
		case r < 0x20:
		case r < 0x7f:
			b.WriteRune(r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\U+%04X`, r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
