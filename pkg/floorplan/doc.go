// Package floorplan defines the floor-plan document consumed by the layout
// compiler and decodes it from JSON.
//
// # JSON Format
//
// The document is an object with an ordered "rooms" array and optional
// "dimensions". The wrapped form produced by the original chat endpoint,
// {"floor_plan": {...}}, is accepted as well:
//
//	{
//	  "floor_plan": {
//	    "dimensions": {"total_area": 1000, "unit": "sq_ft"},
//	    "rooms": [
//	      {
//	        "name": "Kitchen",
//	        "width": 150,
//	        "height": 150,
//	        "position": {"x": 300, "y": 0},
//	        "doors": [{"position": "left", "width": 50}],
//	        "windows": [{"position": "top", "width": 60}]
//	      }
//	    ]
//	  }
//	}
//
// Room "position" is the bottom-left corner of the room. Opening "position"
// names the wall the opening sits on.
//
// # Validation
//
// [Decode] rejects the whole document on the first problem it finds:
//
//   - a required field that is absent, null or of the wrong JSON type fails
//     with MALFORMED_DOCUMENT
//   - a width or height that is not strictly positive fails with
//     INVALID_GEOMETRY
//
// Errors carry the path of the offending field relative to the floor-plan
// object, e.g. "rooms[1].doors[0].width". Opening sides are not checked here;
// the compiler decides how to treat unknown sides.
//
// Documents built directly in Go should be checked with [Document.Validate].
package floorplan
