// Package compiler turns a floor-plan document into a layered drawing.
//
// Compilation is a pure function of its input: the same document and options
// always yield the same entities in the same order. For every room the
// compiler emits, in order:
//
//  1. a closed polygon through the corners BL, BR, TR, TL on ROOMS
//  2. the room name centered in the rectangle on TEXT
//  3. one segment per door on DOORS
//  4. one segment per window on WINDOWS
//  5. a second identical ROOMS polygon when the room is named "Corridor"
//
// Openings are centered on their wall. An opening wider than its wall is
// drawn as given.
//
// The document is validated up front, so a compilation either succeeds
// completely or returns the first error without a partial drawing.
package compiler

import (
	"fmt"
	"math"

	"github.com/matzehuels/floorcad/pkg/drawing"
	"github.com/matzehuels/floorcad/pkg/errors"
	"github.com/matzehuels/floorcad/pkg/floorplan"
)

// DefaultTextHeight is the label height used when no option overrides it.
const DefaultTextHeight = 10.0

// CorridorName is the room name that gets its outline drawn twice.
// Matching is exact and case-sensitive.
const CorridorName = "Corridor"

type config struct {
	textHeight float64
	strict     bool
}

// Option configures a compilation.
type Option func(*config)

// WithTextHeight sets the height of every room label. It must be positive
// and finite; Compile rejects other values.
func WithTextHeight(h float64) Option {
	return func(c *config) { c.textHeight = h }
}

// WithStrictOpenings makes an opening on an unknown wall side fatal. By
// default such openings are skipped and recorded in the drawing metadata.
func WithStrictOpenings() Option {
	return func(c *config) { c.strict = true }
}

// Compile converts doc into a drawing.
func Compile(doc floorplan.Document, opts ...Option) (*drawing.Document, error) {
	cfg := config{textHeight: DefaultTextHeight}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.textHeight <= 0 || math.IsNaN(cfg.textHeight) || math.IsInf(cfg.textHeight, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "text height must be positive, got %g", cfg.textHeight)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	rooms, doors, windows := doc.Counts()
	b := drawing.NewBuilder(2*rooms + doors + windows + 1)
	if d := doc.Dimensions; d != nil {
		b.SetArea(d.TotalArea, d.Unit)
	}

	for i, r := range doc.Rooms {
		if err := compileRoom(b, cfg, i, r); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

func compileRoom(b *drawing.Builder, cfg config, idx int, r floorplan.Room) error {
	outline := corners(r)
	b.Add(drawing.Polygon(drawing.LayerRooms, outline...))

	c := r.Center()
	b.Add(drawing.Text(drawing.LayerText, drawing.Point{X: c.X, Y: c.Y}, r.Name, cfg.textHeight))

	if err := addOpenings(b, cfg, idx, r, r.Doors, drawing.LayerDoors, "doors"); err != nil {
		return err
	}
	if err := addOpenings(b, cfg, idx, r, r.Windows, drawing.LayerWindows, "windows"); err != nil {
		return err
	}

	if r.Name == CorridorName {
		b.Add(drawing.Polygon(drawing.LayerRooms, outline...))
	}
	return nil
}

func addOpenings(b *drawing.Builder, cfg config, idx int, r floorplan.Room, openings []floorplan.Opening, layer drawing.Layer, field string) error {
	for j, o := range openings {
		a, z, ok := Segment(r, o)
		if ok {
			b.Add(drawing.Line(layer, a, z))
			continue
		}
		if cfg.strict {
			return errors.Field(errors.ErrCodeUnknownOpeningSide,
				fmt.Sprintf("rooms[%d].%s[%d].position", idx, field, j),
				"room %q: unknown wall side %q", r.Name, o.Side)
		}
		b.Drop(drawing.DroppedOpening{
			Room:      r.Name,
			RoomIndex: idx,
			Layer:     layer,
			Index:     j,
			Side:      string(o.Side),
		})
	}
	return nil
}

// corners returns the room rectangle as BL, BR, TR, TL.
func corners(r floorplan.Room) []drawing.Point {
	x, y := r.Position.X, r.Position.Y
	return []drawing.Point{
		{X: x, Y: y},
		{X: x + r.Width, Y: y},
		{X: x + r.Width, Y: y + r.Height},
		{X: x, Y: y + r.Height},
	}
}

// Segment returns the endpoints of opening o centered on its wall of r.
// ok is false when the opening names an unknown side.
//
// Horizontal walls run left to right and vertical walls bottom to top.
func Segment(r floorplan.Room, o floorplan.Opening) (a, b drawing.Point, ok bool) {
	x, y, w, h := r.Position.X, r.Position.Y, r.Width, r.Height
	half := o.Width / 2
	cx, cy := x+w/2, y+h/2

	switch o.Side {
	case floorplan.SideTop:
		return drawing.Point{X: cx - half, Y: y + h}, drawing.Point{X: cx + half, Y: y + h}, true
	case floorplan.SideBottom:
		return drawing.Point{X: cx - half, Y: y}, drawing.Point{X: cx + half, Y: y}, true
	case floorplan.SideLeft:
		return drawing.Point{X: x, Y: cy - half}, drawing.Point{X: x, Y: cy + half}, true
	case floorplan.SideRight:
		return drawing.Point{X: x + w, Y: cy - half}, drawing.Point{X: x + w, Y: cy + half}, true
	}
	return drawing.Point{}, drawing.Point{}, false
}
