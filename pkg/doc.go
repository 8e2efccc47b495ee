// Package pkg provides the core libraries for floorcad.
//
// # Overview
//
// floorcad compiles a structured floor-plan description into a layered CAD
// drawing. The pkg directory is organized into three areas:
//
//  1. Domain: [floorplan] (input model), [drawing] (output model) and
//     [compiler] (the layout compiler)
//  2. Output: [render/dxf] and [render/svg] sinks, [storage] for artifacts
//     keyed by drawing id
//  3. Infrastructure: [pipeline], [cache], [config], [errors],
//     [observability], [buildinfo]
//
// # Architecture
//
//	floor-plan JSON
//	      ↓
//	[floorplan] Decode (field-path errors, fail fast)
//	      ↓
//	[compiler] Compile
//	      ↓
//	[drawing] Document (ROOMS, TEXT, WALLS, DOORS, WINDOWS)
//	      ↓
//	[render/dxf] / [render/svg] / drawing.Marshal
//	      ↓
//	[storage] Store or output file
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/floorcad/pkg/compiler"
//	    "github.com/matzehuels/floorcad/pkg/floorplan"
//	    "github.com/matzehuels/floorcad/pkg/render/dxf"
//	)
//
//	plan, err := floorplan.ReadFile("plan.json")
//	if err != nil {
//	    return err
//	}
//	doc, err := compiler.Compile(plan)
//	if err != nil {
//	    return err
//	}
//	return os.WriteFile("plan.dxf", dxf.Render(doc), 0o644)
//
// [floorplan]: github.com/matzehuels/floorcad/pkg/floorplan
// [drawing]: github.com/matzehuels/floorcad/pkg/drawing
// [compiler]: github.com/matzehuels/floorcad/pkg/compiler
// [render/dxf]: github.com/matzehuels/floorcad/pkg/render/dxf
// [render/svg]: github.com/matzehuels/floorcad/pkg/render/svg
// [storage]: github.com/matzehuels/floorcad/pkg/storage
// [pipeline]: github.com/matzehuels/floorcad/pkg/pipeline
// [cache]: github.com/matzehuels/floorcad/pkg/cache
// [config]: github.com/matzehuels/floorcad/pkg/config
// [errors]: github.com/matzehuels/floorcad/pkg/errors
// [observability]: github.com/matzehuels/floorcad/pkg/observability
// [buildinfo]: github.com/matzehuels/floorcad/pkg/buildinfo
package pkg
