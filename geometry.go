package dm

import (
	"fmt"
	"math"

	"github.com/gogpu/dm/policy"
	"golang.org/x/image/math/f64"
)

// Source is uncompiled geometry a record can be built from.
// It is implemented by [CommandStream] and [*Mesh].
type Source interface {
	// Counts returns the element counts used for size estimation.
	Counts() policy.Counts

	validate() error
}

// CommandKind is the opcode of a [Command].
type CommandKind uint8

const (
	// CmdLineMove ends any open primitive and starts a new line strip at Pt.
	CmdLineMove CommandKind = iota
	// CmdLineDraw extends the current line strip to Pt.
	CmdLineDraw
	// CmdPolyStart opens a polygon; Pt is the face normal.
	CmdPolyStart
	// CmdPolyMove adds the first polygon vertex.
	CmdPolyMove
	// CmdPolyDraw adds a polygon vertex.
	CmdPolyDraw
	// CmdPolyEnd closes the polygon.
	CmdPolyEnd
	// CmdPolyVertNormal sets the normal of the following polygon vertex.
	CmdPolyVertNormal
	// CmdTriStart opens a triangle list on first use; Pt is the face normal.
	CmdTriStart
	// CmdTriMove adds the first vertex of a triangle.
	CmdTriMove
	// CmdTriDraw adds a triangle vertex.
	CmdTriDraw
	// CmdTriEnd closes the current triangle; the list stays open.
	CmdTriEnd
	// CmdTriVertNormal sets the normal of the following triangle vertex.
	CmdTriVertNormal
	// CmdPointDraw ends any open primitive other than points and draws a point at Pt.
	CmdPointDraw
	// CmdLineWidth sets the line width to Pt[0] when it is positive.
	CmdLineWidth
	// CmdPointSize sets the point size to Pt[0] when it is positive.
	CmdPointSize

	cmdCount
)

var commandNames = [...]string{
	CmdLineMove:       "LineMove",
	CmdLineDraw:       "LineDraw",
	CmdPolyStart:      "PolyStart",
	CmdPolyMove:       "PolyMove",
	CmdPolyDraw:       "PolyDraw",
	CmdPolyEnd:        "PolyEnd",
	CmdPolyVertNormal: "PolyVertNormal",
	CmdTriStart:       "TriStart",
	CmdTriMove:        "TriMove",
	CmdTriDraw:        "TriDraw",
	CmdTriEnd:         "TriEnd",
	CmdTriVertNormal:  "TriVertNormal",
	CmdPointDraw:      "PointDraw",
	CmdLineWidth:      "LineWidth",
	CmdPointSize:      "PointSize",
}

// String returns the opcode name.
func (k CommandKind) String() string {
	if k < cmdCount {
		return commandNames[k]
	}
	return fmt.Sprintf("CommandKind(%d)", uint8(k))
}

// Command is one entry of a [CommandStream].
type Command struct {
	Kind CommandKind
	Pt   f64.Vec3
}

// CommandStream is an ordered list of vector drawing commands, the
// line/point geometry of wireframe-heavy objects.
type CommandStream []Command

// Counts implements [Source].
func (s CommandStream) Counts() policy.Counts {
	return policy.Counts{Commands: len(s)}
}

func (s CommandStream) validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty command stream", ErrInvalidGeometry)
	}
	for i, c := range s {
		if c.Kind >= cmdCount {
			return fmt.Errorf("%w: command %d: unknown kind %d", ErrInvalidGeometry, i, c.Kind)
		}
	}
	return nil
}

// MoveTo appends a line move.
func (s *CommandStream) MoveTo(p f64.Vec3) *CommandStream {
	*s = append(*s, Command{Kind: CmdLineMove, Pt: p})
	return s
}

// LineTo appends a line draw.
func (s *CommandStream) LineTo(p f64.Vec3) *CommandStream {
	*s = append(*s, Command{Kind: CmdLineDraw, Pt: p})
	return s
}

// Point appends a point.
func (s *CommandStream) Point(p f64.Vec3) *CommandStream {
	*s = append(*s, Command{Kind: CmdPointDraw, Pt: p})
	return s
}

// SetLineWidth appends a line width change.
func (s *CommandStream) SetLineWidth(w float64) *CommandStream {
	*s = append(*s, Command{Kind: CmdLineWidth, Pt: f64.Vec3{w}})
	return s
}

// SetPointSize appends a point size change.
func (s *CommandStream) SetPointSize(size float64) *CommandStream {
	*s = append(*s, Command{Kind: CmdPointSize, Pt: f64.Vec3{size}})
	return s
}

// Polygon appends a closed polygon with the given face normal.
func (s *CommandStream) Polygon(normal f64.Vec3, pts ...f64.Vec3) *CommandStream {
	if len(pts) == 0 {
		return s
	}
	*s = append(*s, Command{Kind: CmdPolyStart, Pt: normal})
	*s = append(*s, Command{Kind: CmdPolyMove, Pt: pts[0]})
	for _, p := range pts[1:] {
		*s = append(*s, Command{Kind: CmdPolyDraw, Pt: p})
	}
	*s = append(*s, Command{Kind: CmdPolyEnd})
	return s
}

// Triangle appends one triangle of a triangle list.
func (s *CommandStream) Triangle(normal, a, b, c f64.Vec3) *CommandStream {
	*s = append(*s,
		Command{Kind: CmdTriStart, Pt: normal},
		Command{Kind: CmdTriMove, Pt: a},
		Command{Kind: CmdTriDraw, Pt: b},
		Command{Kind: CmdTriDraw, Pt: c},
		Command{Kind: CmdTriEnd},
	)
	return s
}

// Mesh is indexed triangle geometry. Faces holds three vertex indices per
// face. VertexNormals, when present, parallels Vertices; FaceNormals,
// when present, holds one normal per face and takes precedence.
type Mesh struct {
	Vertices      []f64.Vec3
	Faces         []int
	VertexNormals []f64.Vec3
	FaceNormals   []f64.Vec3
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces) / 3
}

// Counts implements [Source].
func (m *Mesh) Counts() policy.Counts {
	return policy.Counts{
		Vertices: len(m.Vertices),
		Normals:  len(m.VertexNormals) + len(m.FaceNormals),
		Faces:    m.FaceCount(),
	}
}

// Validate checks index bounds and normal array lengths.
func (m *Mesh) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil mesh", ErrInvalidGeometry)
	}
	if len(m.Faces)%3 != 0 {
		return fmt.Errorf("%w: %d face indices is not a multiple of 3", ErrInvalidGeometry, len(m.Faces))
	}
	if m.FaceCount() == 0 {
		return fmt.Errorf("%w: mesh has no faces", ErrInvalidGeometry)
	}
	for i, idx := range m.Faces {
		if idx < 0 || idx >= len(m.Vertices) {
			return fmt.Errorf("%w: face index %d out of range [0,%d)", ErrInvalidGeometry, i, len(m.Vertices))
		}
	}
	if n := len(m.VertexNormals); n != 0 && n != len(m.Vertices) {
		return fmt.Errorf("%w: %d vertex normals for %d vertices", ErrInvalidGeometry, n, len(m.Vertices))
	}
	if n := len(m.FaceNormals); n != 0 && n != m.FaceCount() {
		return fmt.Errorf("%w: %d face normals for %d faces", ErrInvalidGeometry, n, m.FaceCount())
	}
	return nil
}

func (m *Mesh) validate() error { return m.Validate() }

func sub(a, b f64.Vec3) f64.Vec3 {
	return f64.Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b f64.Vec3) f64.Vec3 {
	return f64.Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// FaceNormal returns the unit normal of the triangle (a, b, c) following
// the right-hand rule, or the zero vector for a degenerate triangle.
func FaceNormal(a, b, c f64.Vec3) f64.Vec3 {
	n := cross(sub(b, a), sub(c, a))
	l2 := n[0]*n[0] + n[1]*n[1] + n[2]*n[2]
	if l2 == 0 {
		return f64.Vec3{}
	}
	inv := 1 / math.Sqrt(l2)
	return f64.Vec3{n[0] * inv, n[1] * inv, n[2] * inv}
}
