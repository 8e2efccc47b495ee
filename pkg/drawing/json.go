package drawing

import (
	"encoding/json"
	"fmt"
)

type jsonLayer struct {
	Name     string   `json:"name"`
	Color    int      `json:"color"`
	LineType LineType `json:"line_type"`
}

type jsonDocument struct {
	Layers   []jsonLayer `json:"layers"`
	Entities []Entity    `json:"entities"`
	Meta     Meta        `json:"meta"`
}

// Marshal serializes a drawing to pretty-printed JSON, including the layer
// table so that external tools need no other context.
func Marshal(d *Document) ([]byte, error) {
	out := jsonDocument{
		Entities: d.entities,
		Meta:     d.meta,
	}
	if out.Entities == nil {
		out.Entities = []Entity{}
	}
	for _, s := range d.Layers() {
		out.Layers = append(out.Layers, jsonLayer(s))
	}
	return json.MarshalIndent(out, "", "  ")
}

// Unmarshal deserializes a drawing produced by Marshal. The layer table in
// the input is ignored; entities must reference known layers.
func Unmarshal(data []byte) (*Document, error) {
	var in jsonDocument
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("unmarshal drawing: %w", err)
	}

	b := NewBuilder(len(in.Entities))
	for i, e := range in.Entities {
		if err := checkEntity(e); err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		b.Add(e)
	}
	b.meta = in.Meta
	return b.Build(), nil
}

func checkEntity(e Entity) error {
	switch e.Kind {
	case KindPolygon:
		if len(e.Points) < 3 {
			return fmt.Errorf("polygon needs at least 3 points, got %d", len(e.Points))
		}
	case KindLine:
		if len(e.Points) != 2 {
			return fmt.Errorf("line needs 2 points, got %d", len(e.Points))
		}
	case KindText:
		if e.Height <= 0 {
			return fmt.Errorf("text height must be positive, got %g", e.Height)
		}
	}
	return nil
}
