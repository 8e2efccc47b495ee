package compiler

import (
	"math"
	"testing"

	"github.com/matzehuels/floorcad/pkg/drawing"
	"github.com/matzehuels/floorcad/pkg/errors"
	"github.com/matzehuels/floorcad/pkg/floorplan"
)

func kitchen() floorplan.Document {
	return floorplan.Document{
		Rooms: []floorplan.Room{{
			Name:     "Kitchen",
			Width:    150,
			Height:   150,
			Position: floorplan.Point{X: 300, Y: 0},
			Doors:    []floorplan.Opening{{Side: floorplan.SideLeft, Width: 50}},
		}},
	}
}

func apartment() floorplan.Document {
	return floorplan.Document{
		Rooms: []floorplan.Room{
			{
				Name: "Living Room", Width: 300, Height: 200,
				Doors:   []floorplan.Opening{{Side: floorplan.SideRight, Width: 40}},
				Windows: []floorplan.Opening{{Side: floorplan.SideTop, Width: 80}, {Side: floorplan.SideBottom, Width: 60}},
			},
			{
				Name: "Corridor", Width: 300, Height: 50, Position: floorplan.Point{Y: 200},
				Doors: []floorplan.Opening{{Side: floorplan.SideTop, Width: 30}},
			},
			{
				Name: "Bedroom", Width: 150, Height: 150, Position: floorplan.Point{Y: 250},
				Windows: []floorplan.Opening{{Side: floorplan.SideLeft, Width: 50}},
			},
		},
		Dimensions: &floorplan.Dimensions{TotalArea: 1200, Unit: "sq_ft"},
	}
}

func TestCompileKitchen(t *testing.T) {
	d, err := Compile(kitchen())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	ents := d.Entities()
	if len(ents) != 3 {
		t.Fatalf("len(entities) = %d, want 3", len(ents))
	}

	poly := ents[0]
	if poly.Kind != drawing.KindPolygon || poly.Layer != drawing.LayerRooms {
		t.Errorf("entities[0] = %v on %v, want polygon on ROOMS", poly.Kind, poly.Layer)
	}
	wantCorners := []drawing.Point{{X: 300, Y: 0}, {X: 450, Y: 0}, {X: 450, Y: 150}, {X: 300, Y: 150}}
	for i, p := range wantCorners {
		if poly.Points[i] != p {
			t.Errorf("corner %d = %+v, want %+v", i, poly.Points[i], p)
		}
	}

	label := ents[1]
	if label.Kind != drawing.KindText || label.Layer != drawing.LayerText {
		t.Errorf("entities[1] = %v on %v, want text on TEXT", label.Kind, label.Layer)
	}
	if label.Insert != (drawing.Point{X: 375, Y: 75}) || label.Text != "Kitchen" {
		t.Errorf("label = %q at %+v, want Kitchen at (375,75)", label.Text, label.Insert)
	}
	if label.Height != DefaultTextHeight {
		t.Errorf("label height = %g, want %g", label.Height, DefaultTextHeight)
	}

	door := ents[2]
	if door.Kind != drawing.KindLine || door.Layer != drawing.LayerDoors {
		t.Errorf("entities[2] = %v on %v, want line on DOORS", door.Kind, door.Layer)
	}
	if door.Points[0] != (drawing.Point{X: 300, Y: 50}) || door.Points[1] != (drawing.Point{X: 300, Y: 100}) {
		t.Errorf("door = %+v, want (300,50)-(300,100)", door.Points)
	}
}

func TestCompileOrderAndCounts(t *testing.T) {
	d, err := Compile(apartment())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	type slot struct {
		kind  drawing.Kind
		layer drawing.Layer
	}
	want := []slot{
		{drawing.KindPolygon, drawing.LayerRooms},
		{drawing.KindText, drawing.LayerText},
		{drawing.KindLine, drawing.LayerDoors},
		{drawing.KindLine, drawing.LayerWindows},
		{drawing.KindLine, drawing.LayerWindows},
		{drawing.KindPolygon, drawing.LayerRooms},
		{drawing.KindText, drawing.LayerText},
		{drawing.KindLine, drawing.LayerDoors},
		{drawing.KindPolygon, drawing.LayerRooms},
		{drawing.KindPolygon, drawing.LayerRooms},
		{drawing.KindText, drawing.LayerText},
		{drawing.KindLine, drawing.LayerWindows},
	}
	ents := d.Entities()
	if len(ents) != len(want) {
		t.Fatalf("len(entities) = %d, want %d", len(ents), len(want))
	}
	for i, w := range want {
		if ents[i].Kind != w.kind || ents[i].Layer != w.layer {
			t.Errorf("entities[%d] = %v on %v, want %v on %v", i, ents[i].Kind, ents[i].Layer, w.kind, w.layer)
		}
	}

	if got := d.Count(drawing.LayerRooms, drawing.KindPolygon); got != 4 {
		t.Errorf("ROOMS polygons = %d, want 4", got)
	}
	if got := d.Count(drawing.LayerText, drawing.KindText); got != 3 {
		t.Errorf("TEXT labels = %d, want 3", got)
	}
	if got := d.Count(drawing.LayerDoors, drawing.KindLine); got != 2 {
		t.Errorf("DOORS lines = %d, want 2", got)
	}
	if got := d.Count(drawing.LayerWindows, drawing.KindLine); got != 3 {
		t.Errorf("WINDOWS lines = %d, want 3", got)
	}
	if got := len(d.EntitiesOn(drawing.LayerWalls)); got != 0 {
		t.Errorf("WALLS entities = %d, want 0", got)
	}

	// Corridor outline at 5, its duplicate after the openings at 8.
	if !ents[5].Equal(ents[8]) {
		t.Errorf("corridor duplicate %+v differs from its outline %+v", ents[8], ents[5])
	}
	if ents[8].Equal(ents[9]) {
		t.Error("corridor duplicate equals the next room's outline")
	}

	area := d.Meta().Area
	if area == nil || area.Total != 1200 || area.Unit != "sq_ft" {
		t.Errorf("Meta().Area = %+v, want 1200 sq_ft", area)
	}
}

func TestCompileDeterministic(t *testing.T) {
	a, err := Compile(apartment())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	b, err := Compile(apartment())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if !a.Equal(b) {
		t.Error("two compilations of the same document differ")
	}
}

func TestCorridorCaseSensitive(t *testing.T) {
	tests := []struct {
		name     string
		polygons int
	}{
		{"Corridor", 2},
		{"corridor", 1},
		{"CORRIDOR", 1},
		{"Corridor ", 1},
		{"Main Corridor", 1},
	}
	for _, tt := range tests {
		doc := floorplan.Document{Rooms: []floorplan.Room{{Name: tt.name, Width: 10, Height: 10}}}
		d, err := Compile(doc)
		if err != nil {
			t.Fatalf("Compile(%q) error: %v", tt.name, err)
		}
		if got := d.Count(drawing.LayerRooms, drawing.KindPolygon); got != tt.polygons {
			t.Errorf("Compile(%q) polygons = %d, want %d", tt.name, got, tt.polygons)
		}
	}
}

func TestSegment(t *testing.T) {
	room := floorplan.Room{Width: 100, Height: 60, Position: floorplan.Point{X: 10, Y: 20}}
	tests := []struct {
		side floorplan.Side
		a, b drawing.Point
	}{
		{floorplan.SideTop, drawing.Point{X: 50, Y: 80}, drawing.Point{X: 70, Y: 80}},
		{floorplan.SideBottom, drawing.Point{X: 50, Y: 20}, drawing.Point{X: 70, Y: 20}},
		{floorplan.SideLeft, drawing.Point{X: 10, Y: 40}, drawing.Point{X: 10, Y: 60}},
		{floorplan.SideRight, drawing.Point{X: 110, Y: 40}, drawing.Point{X: 110, Y: 60}},
	}
	for _, tt := range tests {
		a, b, ok := Segment(room, floorplan.Opening{Side: tt.side, Width: 20})
		if !ok {
			t.Errorf("Segment(%s) ok = false", tt.side)
			continue
		}
		if a != tt.a || b != tt.b {
			t.Errorf("Segment(%s) = %+v-%+v, want %+v-%+v", tt.side, a, b, tt.a, tt.b)
		}
		if got := math.Hypot(b.X-a.X, b.Y-a.Y); got != 20 {
			t.Errorf("Segment(%s) length = %g, want 20", tt.side, got)
		}
	}

	if _, _, ok := Segment(room, floorplan.Opening{Side: "north", Width: 20}); ok {
		t.Error("Segment(north) ok = true, want false")
	}
}

func TestOpeningWiderThanWall(t *testing.T) {
	doc := floorplan.Document{Rooms: []floorplan.Room{{
		Name: "Closet", Width: 10, Height: 10,
		Doors: []floorplan.Opening{{Side: floorplan.SideBottom, Width: 30}},
	}}}
	d, err := Compile(doc)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	door := d.EntitiesOn(drawing.LayerDoors)[0]
	if door.Points[0].X != -10 || door.Points[1].X != 20 {
		t.Errorf("door = %+v, want x from -10 to 20", door.Points)
	}
}

func TestTextHeight(t *testing.T) {
	d, err := Compile(apartment(), WithTextHeight(24))
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	for _, e := range d.EntitiesOn(drawing.LayerText) {
		if e.Height != 24 {
			t.Errorf("label %q height = %g, want 24", e.Text, e.Height)
		}
	}

	for _, h := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Compile(apartment(), WithTextHeight(h)); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("WithTextHeight(%g) error = %v, want INVALID_INPUT", h, err)
		}
	}
}

func TestUnknownSide(t *testing.T) {
	doc := floorplan.Document{Rooms: []floorplan.Room{{
		Name: "Study", Width: 100, Height: 100,
		Doors:   []floorplan.Opening{{Side: floorplan.SideTop, Width: 20}, {Side: "Top", Width: 20}},
		Windows: []floorplan.Opening{{Side: "diagonal", Width: 10}},
	}}}

	t.Run("lenient", func(t *testing.T) {
		d, err := Compile(doc)
		if err != nil {
			t.Fatalf("Compile() error: %v", err)
		}
		if got := len(d.EntitiesOn(drawing.LayerDoors)); got != 1 {
			t.Errorf("DOORS lines = %d, want 1", got)
		}
		if got := len(d.EntitiesOn(drawing.LayerWindows)); got != 0 {
			t.Errorf("WINDOWS lines = %d, want 0", got)
		}
		dropped := d.Meta().Dropped
		if len(dropped) != 2 {
			t.Fatalf("dropped = %d, want 2", len(dropped))
		}
		if dropped[0].Side != "Top" || dropped[0].Index != 1 || dropped[0].Layer != drawing.LayerDoors {
			t.Errorf("dropped[0] = %+v", dropped[0])
		}
		if dropped[1].Side != "diagonal" || dropped[1].Layer != drawing.LayerWindows {
			t.Errorf("dropped[1] = %+v", dropped[1])
		}
	})

	t.Run("strict", func(t *testing.T) {
		d, err := Compile(doc, WithStrictOpenings())
		if d != nil {
			t.Error("strict compile returned a partial drawing")
		}
		if !errors.Is(err, errors.ErrCodeUnknownOpeningSide) {
			t.Fatalf("error = %v, want UNKNOWN_OPENING_SIDE", err)
		}
		if got := errors.GetField(err); got != "rooms[0].doors[1].position" {
			t.Errorf("field = %q, want rooms[0].doors[1].position", got)
		}
	})
}

func TestFailFast(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*floorplan.Document)
		field string
	}{
		{"zero width", func(d *floorplan.Document) { d.Rooms[1].Width = 0 }, "rooms[1].width"},
		{"negative height", func(d *floorplan.Document) { d.Rooms[2].Height = -5 }, "rooms[2].height"},
		{"nan position", func(d *floorplan.Document) { d.Rooms[0].Position.X = math.NaN() }, "rooms[0].position"},
		{"zero door", func(d *floorplan.Document) { d.Rooms[1].Doors[0].Width = 0 }, "rooms[1].doors[0].width"},
		{"infinite window", func(d *floorplan.Document) { d.Rooms[0].Windows[1].Width = math.Inf(1) }, "rooms[0].windows[1].width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := apartment()
			tt.mut(&doc)
			d, err := Compile(doc)
			if d != nil {
				t.Error("Compile() returned a partial drawing")
			}
			if !errors.Is(err, errors.ErrCodeInvalidGeometry) {
				t.Fatalf("error = %v, want INVALID_GEOMETRY", err)
			}
			if got := errors.GetField(err); got != tt.field {
				t.Errorf("field = %q, want %q", got, tt.field)
			}
		})
	}
}

func TestCompileEmpty(t *testing.T) {
	d, err := Compile(floorplan.Document{})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
	if len(d.Layers()) != 5 {
		t.Errorf("layers = %d, want 5", len(d.Layers()))
	}
}

func TestCompileDoesNotMutateInput(t *testing.T) {
	doc := apartment()
	before := doc.Rooms[0].Doors[0]
	if _, err := Compile(doc); err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if doc.Rooms[0].Doors[0] != before {
		t.Error("Compile() mutated its input")
	}
}
