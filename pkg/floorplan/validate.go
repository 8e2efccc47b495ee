package floorplan

import (
	"fmt"
	"math"

	"github.com/matzehuels/floorcad/pkg/errors"
)

// Validate checks the geometric contract of the document: every room width,
// room height and opening width must be strictly positive and finite, and
// every room position must be finite. It returns the first violation found.
func (d Document) Validate() error {
	for i, r := range d.Rooms {
		path := fmt.Sprintf("rooms[%d]", i)
		if err := positive(path+".width", r.Name, "width", r.Width); err != nil {
			return err
		}
		if err := positive(path+".height", r.Name, "height", r.Height); err != nil {
			return err
		}
		if !finite(r.Position.X) || !finite(r.Position.Y) {
			return errors.Field(errors.ErrCodeInvalidGeometry, path+".position",
				"room %q: position must be finite, got (%g, %g)", r.Name, r.Position.X, r.Position.Y)
		}
		if err := validateOpenings(path+".doors", r.Name, r.Doors); err != nil {
			return err
		}
		if err := validateOpenings(path+".windows", r.Name, r.Windows); err != nil {
			return err
		}
	}
	return nil
}

func validateOpenings(path, room string, openings []Opening) error {
	for j, o := range openings {
		if err := positive(fmt.Sprintf("%s[%d].width", path, j), room, "opening width", o.Width); err != nil {
			return err
		}
	}
	return nil
}

func positive(path, room, what string, v float64) error {
	if !finite(v) || v <= 0 {
		return errors.Field(errors.ErrCodeInvalidGeometry, path,
			"room %q: %s must be positive, got %g", room, what, v)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
