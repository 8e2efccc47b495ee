// Package render groups the drawing sinks.
//
// Each sink takes an immutable [drawing.Document] and returns bytes; none of
// them performs I/O beyond an optional io.Writer, and identical drawings
// always encode to identical bytes.
//
//   - [dxf]: ASCII DXF (R12) for CAD tools
//   - [svg]: a browser preview with the same layer colors
//
// The JSON export lives in the drawing package itself (drawing.Marshal).
//
// [drawing.Document]: github.com/matzehuels/floorcad/pkg/drawing.Document
// [dxf]: github.com/matzehuels/floorcad/pkg/render/dxf
// [svg]: github.com/matzehuels/floorcad/pkg/render/svg
package render
