// Package drawing defines the in-memory drawing document produced by the
// layout compiler and consumed by the output sinks.
//
// The model is deliberately plain data: a fixed [Layer] enumeration with a
// read-only style table, and an ordered list of tagged [Entity] records. It is
// independent of any CAD file format; the DXF and SVG sinks translate it.
//
// # Layers
//
//	ROOMS    room and corridor outlines   ACI 1 (red)
//	TEXT     room name labels             ACI 2 (yellow)
//	WALLS    reserved, no entities        ACI 7 (default)
//	DOORS    door openings                ACI 5 (blue)
//	WINDOWS  window openings              ACI 3 (green), dashed
//
// # Immutability
//
// A [Document] is assembled with a [Builder] and frozen by [Builder.Build].
// Accessors return copies, so a built document can be handed to several sinks
// or goroutines without coordination.
package drawing
