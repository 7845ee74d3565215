package dm

import (
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f64"
)

// Artifact is an opaque handle to a backend-compiled, replayable
// sequence of drawing operations. Handles are owned by the backend
// that issued them.
type Artifact uint64

// NoArtifact is the zero handle. Backends never issue it.
const NoArtifact Artifact = 0

// Emitter receives primitive drawing calls. Calls have no result: like
// a graphics context, an emitter records or draws whatever it is given.
//
// Raster state (line width, point size) takes effect at the next Begin.
// Vertex calls are only valid between Begin and End.
type Emitter interface {
	// Begin opens a primitive.
	Begin(p Primitive)
	// End closes the open primitive.
	End()
	// Vertex adds a vertex with the current normal.
	Vertex(v f64.Vec3)
	// Normal sets the current normal.
	Normal(n f64.Vec3)

	// SetColor sets the unlit color.
	SetColor(c gputypes.Color)
	// SetMaterial sets the lit material of the selected faces.
	SetMaterial(f Face, s Surface)
	// SetLighting enables or disables lighting and two-sided lighting.
	SetLighting(lit, twoSided bool)
	// SetBlend enables or disables alpha blending.
	SetBlend(enabled bool)

	LineWidth(w float64)
	PointSize(s float64)
}

// Backend is a draw backend capable of compiling emitted calls into
// artifacts.
//
// Between BeginCompile and EndCompile, emitted calls are captured into
// the artifact returned by BeginCompile and are not drawn. A failed
// EndCompile leaves the artifact incomplete; the caller releases it.
//
// Backends are used from a single goroutine: the one that owns the
// current drawing context.
type Backend interface {
	Emitter

	// BeginCompile starts capturing emitted calls for the given mode.
	BeginCompile(mode Mode) (Artifact, error)
	// EndCompile finishes the capture started by BeginCompile.
	EndCompile() error
	// Replay draws a compiled artifact.
	Replay(a Artifact) error
	// ReleaseArtifact frees an artifact. Unknown handles are ignored.
	ReleaseArtifact(a Artifact)
}
