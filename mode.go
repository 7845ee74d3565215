package dm

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Mode selects how a record is drawn. Compiled artifacts are keyed by
// mode: an artifact built for one mode is never replayed for another.
type Mode uint8

const (
	// ModeWireframe draws mesh face boundaries as line loops and command
	// streams with an unlit foreground color.
	ModeWireframe Mode = iota
	// ModeShaded draws filled, lit triangles and polygons.
	ModeShaded

	modeCount
)

var modeNames = [...]string{
	ModeWireframe: "wireframe",
	ModeShaded:    "shaded",
}

// String returns the lower-case mode name.
func (m Mode) String() string {
	if m.Valid() {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m < modeCount
}

// ParseMode parses a mode name as produced by [Mode.String].
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Primitive is the kind of primitive opened by [Emitter.Begin].
type Primitive uint8

const (
	// PrimPoints draws each vertex as a point.
	PrimPoints Primitive = iota
	// PrimLineStrip connects consecutive vertices.
	PrimLineStrip
	// PrimLineLoop connects consecutive vertices and closes the loop.
	PrimLineLoop
	// PrimTriangles fills every group of three vertices.
	PrimTriangles
	// PrimPolygon fills a single convex polygon.
	PrimPolygon
)

var primitiveNames = [...]string{
	PrimPoints:    "Points",
	PrimLineStrip: "LineStrip",
	PrimLineLoop:  "LineLoop",
	PrimTriangles: "Triangles",
	PrimPolygon:   "Polygon",
}

// String returns the primitive name.
func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return "Unknown"
}

// Topology returns the GPU primitive topology a retained-mode backend
// uploads this primitive as. Line loops are submitted as strips with a
// repeated first vertex and polygons are fanned into triangle lists.
func (p Primitive) Topology() gputypes.PrimitiveTopology {
	switch p {
	case PrimPoints:
		return gputypes.PrimitiveTopologyPointList
	case PrimLineStrip, PrimLineLoop:
		return gputypes.PrimitiveTopologyLineStrip
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

// Filled reports whether the primitive covers area.
func (p Primitive) Filled() bool {
	return p == PrimTriangles || p == PrimPolygon
}
