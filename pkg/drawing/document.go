package drawing

import "math"

// Area is the overall plan size carried through from the floor-plan document.
type Area struct {
	Total float64 `json:"total"`
	Unit  string  `json:"unit"`
}

// DroppedOpening records an opening the compiler skipped because its wall
// side was not recognised.
type DroppedOpening struct {
	Room      string `json:"room"`
	RoomIndex int    `json:"room_index"`
	Layer     Layer  `json:"layer"`
	Index     int    `json:"index"`
	Side      string `json:"side"`
}

// Meta is non-geometric information attached to a drawing.
type Meta struct {
	Area    *Area            `json:"area,omitempty"`
	Dropped []DroppedOpening `json:"dropped,omitempty"`
}

func (m Meta) clone() Meta {
	if m.Area != nil {
		a := *m.Area
		m.Area = &a
	}
	m.Dropped = append([]DroppedOpening(nil), m.Dropped...)
	return m
}

// Document is a finished, immutable drawing.
type Document struct {
	entities []Entity
	meta     Meta
}

// Layers returns the layer table in table order. It is the same for every
// document.
func (d *Document) Layers() []LayerStyle {
	styles := make([]LayerStyle, 0, len(layerTable))
	for _, l := range Layers() {
		styles = append(styles, l.Style())
	}
	return styles
}

// Len returns the number of entities.
func (d *Document) Len() int { return len(d.entities) }

// Entities returns a copy of the entities in insertion order.
func (d *Document) Entities() []Entity {
	out := make([]Entity, len(d.entities))
	for i, e := range d.entities {
		out[i] = e.clone()
	}
	return out
}

// EntitiesOn returns a copy of the entities on layer l in insertion order.
func (d *Document) EntitiesOn(l Layer) []Entity {
	var out []Entity
	for _, e := range d.entities {
		if e.Layer == l {
			out = append(out, e.clone())
		}
	}
	return out
}

// Count returns the number of entities of kind k on layer l.
func (d *Document) Count(l Layer, k Kind) int {
	n := 0
	for _, e := range d.entities {
		if e.Layer == l && e.Kind == k {
			n++
		}
	}
	return n
}

// Meta returns a copy of the document metadata.
func (d *Document) Meta() Meta { return d.meta.clone() }

// Bounds returns the bounding box of all geometry. Text contributes its
// insertion point only. ok is false for an empty drawing.
func (d *Document) Bounds() (minPt, maxPt Point, ok bool) {
	minPt = Point{X: math.Inf(1), Y: math.Inf(1)}
	maxPt = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	extend := func(p Point) {
		minPt.X, minPt.Y = math.Min(minPt.X, p.X), math.Min(minPt.Y, p.Y)
		maxPt.X, maxPt.Y = math.Max(maxPt.X, p.X), math.Max(maxPt.Y, p.Y)
		ok = true
	}
	for _, e := range d.entities {
		if e.Kind == KindText {
			extend(e.Insert)
			continue
		}
		for _, p := range e.Points {
			extend(p)
		}
	}
	if !ok {
		return Point{}, Point{}, false
	}
	return minPt, maxPt, true
}

// Equal reports whether d and o hold the same entities in the same order.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if len(d.entities) != len(o.entities) {
		return false
	}
	for i := range d.entities {
		if !d.entities[i].Equal(o.entities[i]) {
			return false
		}
	}
	return true
}

// Builder assembles a Document. A Builder must not be used after Build.
type Builder struct {
	entities []Entity
	meta     Meta
}

// NewBuilder returns a builder with room for n entities.
func NewBuilder(n int) *Builder {
	return &Builder{entities: make([]Entity, 0, n)}
}

// Add appends e to the drawing.
func (b *Builder) Add(e Entity) {
	b.entities = append(b.entities, e.clone())
}

// SetArea records the overall plan size.
func (b *Builder) SetArea(total float64, unit string) {
	b.meta.Area = &Area{Total: total, Unit: unit}
}

// Drop records a skipped opening.
func (b *Builder) Drop(o DroppedOpening) {
	b.meta.Dropped = append(b.meta.Dropped, o)
}

// Build freezes the drawing and releases the builder's storage.
func (b *Builder) Build() *Document {
	doc := &Document{entities: b.entities, meta: b.meta}
	b.entities, b.meta = nil, Meta{}
	return doc
}
