package floorplan

// Side names the wall of a room an opening sits on.
type Side string

// Wall sides recognised by the compiler.
const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Sides lists the recognised wall sides.
var Sides = []Side{SideTop, SideBottom, SideLeft, SideRight}

// Valid reports whether s is one of the four recognised sides.
// Matching is exact and case-sensitive.
func (s Side) Valid() bool {
	switch s {
	case SideTop, SideBottom, SideLeft, SideRight:
		return true
	}
	return false
}

// Point is a position in document coordinates.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Opening is a door or a window: a wall side plus a width along that wall.
type Opening struct {
	Side  Side    `json:"position" bson:"position"`
	Width float64 `json:"width" bson:"width"`
}

// Room is a rectangular room. Position is its bottom-left corner.
type Room struct {
	Name     string    `json:"name" bson:"name"`
	Width    float64   `json:"width" bson:"width"`
	Height   float64   `json:"height" bson:"height"`
	Position Point     `json:"position" bson:"position"`
	Doors    []Opening `json:"doors,omitempty" bson:"doors,omitempty"`
	Windows  []Opening `json:"windows,omitempty" bson:"windows,omitempty"`
}

// Center returns the geometric center of the room rectangle.
func (r Room) Center() Point {
	return Point{X: r.Position.X + r.Width/2, Y: r.Position.Y + r.Height/2}
}

// Dimensions is the overall plan size. It is carried through to the drawing
// but never used for geometry.
type Dimensions struct {
	TotalArea float64 `json:"total_area" bson:"total_area"`
	Unit      string  `json:"unit" bson:"unit"`
}

// Document is a floor plan: rooms in rendering order plus optional overall
// dimensions.
type Document struct {
	Rooms      []Room      `json:"rooms" bson:"rooms"`
	Dimensions *Dimensions `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
}

// Counts returns the number of rooms, doors and windows in the document.
func (d Document) Counts() (rooms, doors, windows int) {
	for _, r := range d.Rooms {
		doors += len(r.Doors)
		windows += len(r.Windows)
	}
	return len(d.Rooms), doors, windows
}
