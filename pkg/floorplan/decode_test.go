package floorplan

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/floorcad/pkg/errors"
)

const twoBHK = `{
  "floor_plan": {
    "dimensions": {"total_area": 1000, "unit": "sq_ft"},
    "rooms": [
      {"name": "Living Room", "width": 300, "height": 300, "position": {"x": 0, "y": 0},
       "doors": [{"position": "bottom", "width": 40}],
       "windows": [{"position": "left", "width": 80}, {"position": "top", "width": 60}]},
      {"name": "Kitchen", "width": 150, "height": 150, "position": {"x": 300, "y": 0},
       "doors": [{"position": "left", "width": 50}]},
      {"name": "Bedroom 1", "width": 200, "height": 200, "position": {"x": 0, "y": 300}, "doors": null},
      {"name": "Bedroom 2", "width": 200, "height": 200, "position": {"x": 200, "y": 300}}
    ]
  }
}`

func TestDecodeWrapped(t *testing.T) {
	doc, err := Decode([]byte(twoBHK))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	rooms, doors, windows := doc.Counts()
	if rooms != 4 || doors != 2 || windows != 2 {
		t.Errorf("Counts() = (%d, %d, %d), want (4, 2, 2)", rooms, doors, windows)
	}

	kitchen := doc.Rooms[1]
	if kitchen.Name != "Kitchen" {
		t.Errorf("Rooms[1].Name = %q, want %q", kitchen.Name, "Kitchen")
	}
	if kitchen.Position != (Point{X: 300, Y: 0}) {
		t.Errorf("Rooms[1].Position = %+v, want {300 0}", kitchen.Position)
	}
	if len(kitchen.Doors) != 1 || kitchen.Doors[0] != (Opening{Side: SideLeft, Width: 50}) {
		t.Errorf("Rooms[1].Doors = %+v", kitchen.Doors)
	}
	if doc.Rooms[2].Doors != nil {
		t.Errorf("null doors should decode as empty, got %+v", doc.Rooms[2].Doors)
	}

	if doc.Dimensions == nil {
		t.Fatal("Dimensions should be carried through")
	}
	if doc.Dimensions.TotalArea != 1000 || doc.Dimensions.Unit != "sq_ft" {
		t.Errorf("Dimensions = %+v", *doc.Dimensions)
	}
}

func TestDecodeBareMatchesWrapped(t *testing.T) {
	bare := `{"rooms": [{"name": "Kitchen", "width": 150, "height": 150, "position": {"x": 300, "y": 0}}]}`
	wrapped := `{"floor_plan": ` + bare + `}`

	a, err := Decode([]byte(bare))
	if err != nil {
		t.Fatalf("Decode(bare) error: %v", err)
	}
	b, err := Decode([]byte(wrapped))
	if err != nil {
		t.Fatalf("Decode(wrapped) error: %v", err)
	}
	if len(a.Rooms) != 1 || len(b.Rooms) != 1 || a.Rooms[0].Name != b.Rooms[0].Name {
		t.Errorf("bare and wrapped documents differ: %+v vs %+v", a, b)
	}
}

func TestDecodeEmptyRooms(t *testing.T) {
	doc, err := Decode([]byte(`{"rooms": []}`))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(doc.Rooms) != 0 {
		t.Errorf("Rooms = %d, want 0", len(doc.Rooms))
	}
}

func TestDecodeErrors(t *testing.T) {
	room := func(fields string) string {
		return `{"rooms": [{"name": "A", "width": 10, "height": 10, "position": {"x": 0, "y": 0}}, {` + fields + `}]}`
	}

	tests := []struct {
		name  string
		input string
		code  errors.Code
		field string
	}{
		{"invalid json", `{"rooms": [`, errors.ErrCodeMalformedDocument, ""},
		{"not an object", `[1, 2]`, errors.ErrCodeMalformedDocument, "document"},
		{"null document", `null`, errors.ErrCodeMalformedDocument, "document"},
		{"missing rooms", `{}`, errors.ErrCodeMalformedDocument, "rooms"},
		{"rooms not array", `{"rooms": {}}`, errors.ErrCodeMalformedDocument, "rooms"},
		{"room not object", `{"rooms": [42]}`, errors.ErrCodeMalformedDocument, "rooms[0]"},
		{
			"missing width",
			room(`"name": "B", "height": 10, "position": {"x": 0, "y": 0}`),
			errors.ErrCodeMalformedDocument, "rooms[1].width",
		},
		{
			"null height",
			room(`"name": "B", "width": 10, "height": null, "position": {"x": 0, "y": 0}`),
			errors.ErrCodeMalformedDocument, "rooms[1].height",
		},
		{
			"missing name",
			room(`"width": 10, "height": 10, "position": {"x": 0, "y": 0}`),
			errors.ErrCodeMalformedDocument, "rooms[1].name",
		},
		{
			"name wrong type",
			room(`"name": 7, "width": 10, "height": 10, "position": {"x": 0, "y": 0}`),
			errors.ErrCodeMalformedDocument, "rooms[1].name",
		},
		{
			"width not numeric",
			room(`"name": "B", "width": "wide", "height": 10, "position": {"x": 0, "y": 0}`),
			errors.ErrCodeMalformedDocument, "rooms[1].width",
		},
		{
			"missing position",
			room(`"name": "B", "width": 10, "height": 10`),
			errors.ErrCodeMalformedDocument, "rooms[1].position",
		},
		{
			"missing position y",
			room(`"name": "B", "width": 10, "height": 10, "position": {"x": 0}`),
			errors.ErrCodeMalformedDocument, "rooms[1].position.y",
		},
		{
			"door missing position",
			room(`"name": "B", "width": 10, "height": 10, "position": {"x": 0, "y": 0}, "doors": [{"width": 3}]`),
			errors.ErrCodeMalformedDocument, "rooms[1].doors[0].position",
		},
		{
			"window missing width",
			room(`"name": "B", "width": 10, "height": 10, "position": {"x": 0, "y": 0}, "windows": [{"position": "top"}]`),
			errors.ErrCodeMalformedDocument, "rooms[1].windows[0].width",
		},
		{
			"doors not array",
			room(`"name": "B", "width": 10, "height": 10, "position": {"x": 0, "y": 0}, "doors": "front"`),
			errors.ErrCodeMalformedDocument, "rooms[1].doors",
		},
		{
			"zero width",
			room(`"name": "B", "width": 0, "height": 10, "position": {"x": 0, "y": 0}`),
			errors.ErrCodeInvalidGeometry, "rooms[1].width",
		},
		{
			"negative height",
			room(`"name": "B", "width": 10, "height": -5, "position": {"x": 0, "y": 0}`),
			errors.ErrCodeInvalidGeometry, "rooms[1].height",
		},
		{
			"zero door width",
			room(`"name": "B", "width": 10, "height": 10, "position": {"x": 0, "y": 0}, "doors": [{"position": "top", "width": 0}]`),
			errors.ErrCodeInvalidGeometry, "rooms[1].doors[0].width",
		},
		{
			"dimensions wrong type",
			`{"rooms": [], "dimensions": {"total_area": "big"}}`,
			errors.ErrCodeMalformedDocument, "dimensions.total_area",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.input))
			if err == nil {
				t.Fatalf("Decode() = %+v, want error", doc)
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (err: %v)", got, tt.code, err)
			}
			if got := errors.GetField(err); got != tt.field {
				t.Errorf("field = %q, want %q (err: %v)", got, tt.field, err)
			}
			if doc.Rooms != nil {
				t.Errorf("no partial document should be returned, got %+v", doc)
			}
		})
	}
}

func TestDecodeKeepsUnknownSides(t *testing.T) {
	input := `{"rooms": [{"name": "A", "width": 10, "height": 10, "position": {"x": 0, "y": 0},
		"doors": [{"position": "north", "width": 2}]}]}`
	doc, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got := doc.Rooms[0].Doors[0].Side; got != "north" || got.Valid() {
		t.Errorf("Side = %q (valid=%v), want unvalidated %q", got, got.Valid(), "north")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.json")
	if err := os.WriteFile(path, []byte(twoBHK), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if len(doc.Rooms) != 4 {
		t.Errorf("Rooms = %d, want 4", len(doc.Rooms))
	}

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestRead(t *testing.T) {
	doc, err := Read(strings.NewReader(twoBHK))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(doc.Rooms) != 4 {
		t.Errorf("Rooms = %d, want 4", len(doc.Rooms))
	}
}

func TestValidate(t *testing.T) {
	valid := Room{Name: "A", Width: 10, Height: 10}

	tests := []struct {
		name  string
		doc   Document
		field string
	}{
		{"valid", Document{Rooms: []Room{valid}}, ""},
		{"nan width", Document{Rooms: []Room{{Name: "A", Width: math.NaN(), Height: 1}}}, "rooms[0].width"},
		{"inf height", Document{Rooms: []Room{{Name: "A", Width: 1, Height: math.Inf(1)}}}, "rooms[0].height"},
		{"inf position", Document{Rooms: []Room{{Name: "A", Width: 1, Height: 1, Position: Point{X: math.Inf(-1)}}}}, "rooms[0].position"},
		{
			"negative window",
			Document{Rooms: []Room{valid, {Name: "B", Width: 1, Height: 1, Windows: []Opening{{Side: SideTop, Width: -1}}}}},
			"rooms[1].windows[0].width",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidGeometry) {
				t.Fatalf("Validate() error = %v, want INVALID_GEOMETRY", err)
			}
			if got := errors.GetField(err); got != tt.field {
				t.Errorf("field = %q, want %q", got, tt.field)
			}
		})
	}
}

func TestSideValid(t *testing.T) {
	for _, s := range Sides {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []Side{"", "Top", "north", " top"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestRoomCenter(t *testing.T) {
	r := Room{Width: 150, Height: 150, Position: Point{X: 300, Y: 0}}
	if got := r.Center(); got != (Point{X: 375, Y: 75}) {
		t.Errorf("Center() = %+v, want {375 75}", got)
	}
}
