package floorplan

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/floorcad/pkg/errors"
)

// wrapperKey is the envelope key used by the original chat endpoint.
const wrapperKey = "floor_plan"

// Decode parses a floor-plan document from JSON and validates it.
// See the package documentation for the accepted shapes and error codes.
func Decode(data []byte) (Document, error) {
	root, err := decodeObject(data, "")
	if err != nil {
		return Document{}, err
	}
	if raw, ok := root[wrapperKey]; ok && !isNull(raw) {
		if root, err = decodeObject(raw, wrapperKey); err != nil {
			return Document{}, err
		}
	}

	var doc Document

	rooms, err := root.array("rooms", "rooms", true)
	if err != nil {
		return Document{}, err
	}
	doc.Rooms = make([]Room, 0, len(rooms))
	for i, raw := range rooms {
		room, err := decodeRoom(raw, fmt.Sprintf("rooms[%d]", i))
		if err != nil {
			return Document{}, err
		}
		doc.Rooms = append(doc.Rooms, room)
	}

	if raw, ok := root["dimensions"]; ok && !isNull(raw) {
		dims, err := decodeDimensions(raw)
		if err != nil {
			return Document{}, err
		}
		doc.Dimensions = dims
	}

	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Read decodes a floor-plan document from r.
func Read(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read floor plan")
	}
	return Decode(data)
}

// ReadFile decodes the floor-plan document stored at path.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.Wrap(errors.ErrCodeNotFound, err, "floor plan %s", path)
		}
		return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read floor plan %s", path)
	}
	return Decode(data)
}

func decodeRoom(raw json.RawMessage, path string) (Room, error) {
	obj, err := decodeObject(raw, path)
	if err != nil {
		return Room{}, err
	}

	var room Room
	if room.Name, err = obj.str("name", path+".name"); err != nil {
		return Room{}, err
	}
	if room.Width, err = obj.number("width", path+".width"); err != nil {
		return Room{}, err
	}
	if room.Height, err = obj.number("height", path+".height"); err != nil {
		return Room{}, err
	}

	posRaw, err := obj.require("position", path+".position")
	if err != nil {
		return Room{}, err
	}
	if room.Position, err = decodePoint(posRaw, path+".position"); err != nil {
		return Room{}, err
	}

	if room.Doors, err = decodeOpenings(obj, "doors", path); err != nil {
		return Room{}, err
	}
	if room.Windows, err = decodeOpenings(obj, "windows", path); err != nil {
		return Room{}, err
	}
	return room, nil
}

func decodePoint(raw json.RawMessage, path string) (Point, error) {
	obj, err := decodeObject(raw, path)
	if err != nil {
		return Point{}, err
	}
	var p Point
	if p.X, err = obj.number("x", path+".x"); err != nil {
		return Point{}, err
	}
	if p.Y, err = obj.number("y", path+".y"); err != nil {
		return Point{}, err
	}
	return p, nil
}

func decodeOpenings(room object, key, roomPath string) ([]Opening, error) {
	path := roomPath + "." + key
	items, err := room.array(key, path, false)
	if err != nil || len(items) == 0 {
		return nil, err
	}

	openings := make([]Opening, 0, len(items))
	for i, raw := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		obj, err := decodeObject(raw, itemPath)
		if err != nil {
			return nil, err
		}
		side, err := obj.str("position", itemPath+".position")
		if err != nil {
			return nil, err
		}
		width, err := obj.number("width", itemPath+".width")
		if err != nil {
			return nil, err
		}
		openings = append(openings, Opening{Side: Side(side), Width: width})
	}
	return openings, nil
}

func decodeDimensions(raw json.RawMessage) (*Dimensions, error) {
	const path = "dimensions"
	obj, err := decodeObject(raw, path)
	if err != nil {
		return nil, err
	}
	var dims Dimensions
	if v, ok := obj["total_area"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &dims.TotalArea); err != nil {
			return nil, errors.Field(errors.ErrCodeMalformedDocument, path+".total_area",
				"expected a number, got %s", jsonKind(v))
		}
	}
	if v, ok := obj["unit"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &dims.Unit); err != nil {
			return nil, errors.Field(errors.ErrCodeMalformedDocument, path+".unit",
				"expected a string, got %s", jsonKind(v))
		}
	}
	return &dims, nil
}

// object is a JSON object whose values are decoded lazily so that each
// failure can be attributed to its field path.
type object map[string]json.RawMessage

func decodeObject(raw []byte, path string) (object, error) {
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		var syntaxErr *json.SyntaxError
		if path == "" && stderrors.As(err, &syntaxErr) {
			return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "invalid JSON")
		}
		return nil, errors.Field(errors.ErrCodeMalformedDocument, fieldName(path),
			"expected an object, got %s", jsonKind(raw))
	}
	if obj == nil {
		return nil, errors.Field(errors.ErrCodeMalformedDocument, fieldName(path), "required object is missing")
	}
	return obj, nil
}

func (o object) require(key, path string) (json.RawMessage, error) {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return nil, errors.Field(errors.ErrCodeMalformedDocument, path, "required field is missing")
	}
	return raw, nil
}

func (o object) number(key, path string) (float64, error) {
	raw, err := o.require(key, path)
	if err != nil {
		return 0, err
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, errors.Field(errors.ErrCodeMalformedDocument, path, "expected a number, got %s", jsonKind(raw))
	}
	return v, nil
}

func (o object) str(key, path string) (string, error) {
	raw, err := o.require(key, path)
	if err != nil {
		return "", err
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", errors.Field(errors.ErrCodeMalformedDocument, path, "expected a string, got %s", jsonKind(raw))
	}
	return v, nil
}

// array returns the elements of the array at key. Optional arrays that are
// absent or null yield nil.
func (o object) array(key, path string, required bool) ([]json.RawMessage, error) {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		if required {
			return nil, errors.Field(errors.ErrCodeMalformedDocument, path, "required field is missing")
		}
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Field(errors.ErrCodeMalformedDocument, path, "expected an array, got %s", jsonKind(raw))
	}
	return items, nil
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// jsonKind names the JSON type of raw for error messages.
func jsonKind(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func fieldName(path string) string {
	if path == "" {
		return "document"
	}
	return path
}
