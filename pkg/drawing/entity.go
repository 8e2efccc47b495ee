package drawing

import "fmt"

// Kind is the type of a drawing primitive.
type Kind int

// Entity kinds.
const (
	KindPolygon Kind = iota // closed polyline
	KindText                // single-line label
	KindLine                // open line segment
)

var kindNames = [...]string{
	KindPolygon: "polygon",
	KindText:    "text",
	KindLine:    "line",
}

// String returns the kind name, e.g. "polygon".
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("KIND(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid entity kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown entity kind %q", text)
}

// Point is a 2-D coordinate in drawing units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Entity is one drawing primitive tagged with its layer.
//
// Polygons carry their corners in Points and are implicitly closed. Lines
// carry exactly two endpoints in Points. Text is centered horizontally and
// vertically on Insert and drawn Height units tall.
type Entity struct {
	Kind   Kind    `json:"kind"`
	Layer  Layer   `json:"layer"`
	Points []Point `json:"points,omitempty"`
	Insert Point   `json:"insert,omitzero"`
	Text   string  `json:"text,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Polygon returns a closed polygon entity through pts.
func Polygon(layer Layer, pts ...Point) Entity {
	return Entity{Kind: KindPolygon, Layer: layer, Points: append([]Point(nil), pts...)}
}

// Line returns a line segment entity from a to b.
func Line(layer Layer, a, b Point) Entity {
	return Entity{Kind: KindLine, Layer: layer, Points: []Point{a, b}}
}

// Text returns a text entity centered on at.
func Text(layer Layer, at Point, content string, height float64) Entity {
	return Entity{Kind: KindText, Layer: layer, Insert: at, Text: content, Height: height}
}

// Equal reports whether e and o describe the same primitive.
func (e Entity) Equal(o Entity) bool {
	if e.Kind != o.Kind || e.Layer != o.Layer || e.Insert != o.Insert ||
		e.Text != o.Text || e.Height != o.Height || len(e.Points) != len(o.Points) {
		return false
	}
	for i := range e.Points {
		if e.Points[i] != o.Points[i] {
			return false
		}
	}
	return true
}

func (e Entity) clone() Entity {
	e.Points = append([]Point(nil), e.Points...)
	return e
}
