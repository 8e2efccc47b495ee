package drawing

import "fmt"

// Layer identifies one of the fixed drawing layers.
type Layer int

// Drawing layers in table order.
const (
	LayerRooms Layer = iota
	LayerText
	LayerWalls
	LayerDoors
	LayerWindows
)

// LineType names a line pattern understood by CAD tools.
type LineType string

// Line types used by the layer table.
const (
	LineContinuous LineType = "CONTINUOUS"
	LineDashed     LineType = "DASHED"
)

// LayerStyle is the display style of a layer. Color is an AutoCAD Color
// Index (1 red, 2 yellow, 3 green, 5 blue, 7 white/black).
type LayerStyle struct {
	Name     string
	Color    int
	LineType LineType
}

// layerTable is read-only after package initialisation.
var layerTable = [...]LayerStyle{
	LayerRooms:   {Name: "ROOMS", Color: 1, LineType: LineContinuous},
	LayerText:    {Name: "TEXT", Color: 2, LineType: LineContinuous},
	LayerWalls:   {Name: "WALLS", Color: 7, LineType: LineContinuous},
	LayerDoors:   {Name: "DOORS", Color: 5, LineType: LineContinuous},
	LayerWindows: {Name: "WINDOWS", Color: 3, LineType: LineDashed},
}

// Layers returns every layer in table order.
func Layers() []Layer {
	return []Layer{LayerRooms, LayerText, LayerWalls, LayerDoors, LayerWindows}
}

// Style returns the display style of l.
func (l Layer) Style() LayerStyle {
	if !l.Valid() {
		return LayerStyle{Name: l.String(), Color: 7, LineType: LineContinuous}
	}
	return layerTable[l]
}

// Valid reports whether l is one of the fixed layers.
func (l Layer) Valid() bool {
	return l >= LayerRooms && int(l) < len(layerTable)
}

// String returns the layer name, e.g. "ROOMS".
func (l Layer) String() string {
	if !l.Valid() {
		return fmt.Sprintf("LAYER(%d)", int(l))
	}
	return layerTable[l].Name
}

// ParseLayer returns the layer with the given name.
func ParseLayer(name string) (Layer, error) {
	for _, l := range Layers() {
		if layerTable[l].Name == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown layer %q", name)
}

// MarshalText encodes the layer by name.
func (l Layer) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid layer %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a layer name.
func (l *Layer) UnmarshalText(text []byte) error {
	parsed, err := ParseLayer(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
