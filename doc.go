// Package dm is the draw-artifact cache of a multi-backend CAD display
// manager.
//
// # Overview
//
// Every scene object is described by a [Record] holding its source
// geometry: a [CommandStream] of vector drawing commands or an indexed
// [Mesh]. Each frame the renderer calls [Controller.Render] for every
// visible record. The controller either replays a compiled artifact, or
// compiles a new one when the estimated geometry size fits the memory
// budget, or emits the raw drawing calls when it does not.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/dm"
//		"github.com/gogpu/dm/backend"
//		_ "github.com/gogpu/dm/backend/raster"
//	)
//
//	b := backend.MustNew("raster")
//	ctrl, err := dm.NewController(b)
//
//	rec, err := dm.NewRecord("part", mesh, dm.NewMaterial(200, 40, 40, 1))
//	for range frames {
//		if _, err := ctrl.Render(rec, dm.ModeShaded); errors.Is(err, dm.ErrNeedsReingest) {
//			_ = rec.Ingest(regenerate())
//		}
//	}
//
// # Artifacts
//
// An [Artifact] is an opaque handle to whatever replay primitive a
// [Backend] offers: a display list, a recorded command buffer, a retained
// scene node. Artifacts are keyed by [Mode]; a record requested in a
// different mode than its artifact was built for is rebuilt, never reused.
//
// # Memory Policy
//
// Before every build the controller samples a [memory.Oracle]. A build is
// attempted only when the estimated size is below half of the available
// memory, and after a successful build the source geometry is discarded
// when it exceeds one percent of it. Both fractions are fields of
// [policy.Policy] and can be reloaded at run time.
//
// # Logging
//
// The package is silent by default. Use [SetLogger] to route build,
// fallback and reclaim decisions to a [log/slog] handler.
package dm
