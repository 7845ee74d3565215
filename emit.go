package dm

import (
	"fmt"

	"golang.org/x/image/math/f64"
)

// Emit translates src into primitive calls on e for the given mode,
// material and light level. The call sequence depends only on its
// arguments, so an artifact compiled from it is indistinguishable from
// direct emission.
//
// Wireframe mode is always drawn unlit. Line width and point size
// changes made by a command stream are restored to the material's
// values before Emit returns.
func Emit(e Emitter, src Source, mode Mode, mat Material, light LightLevel) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}
	if !light.Valid() {
		return fmt.Errorf("dm: invalid light level %v", light)
	}
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrInvalidGeometry)
	}
	emit(e, src, mode, mat, light)
	return nil
}

// emit assumes validated arguments.
func emit(e Emitter, src Source, mode Mode, mat Material, light LightLevel) {
	if mode == ModeWireframe {
		light = LightFlat
	}
	s := emitState{e: e, mat: mat, light: light}
	s.begin()
	switch g := src.(type) {
	case CommandStream:
		s.commands(g)
	case *Mesh:
		if mode == ModeWireframe {
			s.meshWire(g)
		} else {
			s.meshShaded(g)
		}
	}
	s.finish()
}

type materialState uint8

const (
	matNone materialState = iota
	matWire
	matSurface
)

// noPrim marks that no primitive is open.
const noPrim Primitive = 0xff

type emitState struct {
	e     Emitter
	mat   Material
	light LightLevel

	open      Primitive
	material  materialState
	lineWidth float64
	pointSize float64
	blend     bool
}

func (s *emitState) begin() {
	s.open = noPrim
	s.e.SetLighting(s.light.Lit(), s.light.TwoSided())
	if !s.light.Lit() {
		s.e.SetColor(s.mat.Color)
	}
	s.lineWidth = s.mat.LineWidth
	s.pointSize = s.mat.PointSize
	s.e.LineWidth(s.lineWidth)
	s.e.PointSize(s.pointSize)
}

func (s *emitState) finish() {
	s.close()
	if s.lineWidth != s.mat.LineWidth {
		s.e.LineWidth(s.mat.LineWidth)
	}
	if s.pointSize != s.mat.PointSize {
		s.e.PointSize(s.mat.PointSize)
	}
	if s.blend {
		s.e.SetBlend(false)
	}
}

func (s *emitState) close() {
	if s.open != noPrim {
		s.e.End()
		s.open = noPrim
	}
}

func (s *emitState) openPrim(p Primitive) {
	s.close()
	s.e.Begin(p)
	s.open = p
}

// useWire selects the material for lines and points.
func (s *emitState) useWire() {
	if !s.light.Lit() || s.material == matWire {
		return
	}
	s.e.SetMaterial(FaceFrontAndBack, s.mat.Wire())
	s.material = matWire
}

// useSurface selects the material for filled primitives and enables
// blending for translucent materials.
func (s *emitState) useSurface() {
	if s.mat.Translucent() && !s.blend {
		s.e.SetBlend(true)
		s.blend = true
	}
	if !s.light.Lit() || s.material == matSurface {
		return
	}
	if s.light.TwoSided() {
		s.e.SetMaterial(FaceFront, s.mat.Front())
		s.e.SetMaterial(FaceBack, s.mat.Back(s.light))
	} else {
		s.e.SetMaterial(FaceFrontAndBack, s.mat.Front())
	}
	s.material = matSurface
}

func (s *emitState) vertex(in Primitive, v f64.Vec3) {
	if s.open == in {
		s.e.Vertex(v)
	}
}

func (s *emitState) commands(cs CommandStream) {
	for _, c := range cs {
		switch c.Kind {
		case CmdLineMove:
			s.close()
			s.useWire()
			s.openPrim(PrimLineStrip)
			s.e.Vertex(c.Pt)
		case CmdLineDraw:
			s.vertex(PrimLineStrip, c.Pt)
		case CmdPolyStart:
			s.close()
			s.useSurface()
			s.openPrim(PrimPolygon)
			s.e.Normal(c.Pt)
		case CmdPolyMove, CmdPolyDraw:
			s.vertex(PrimPolygon, c.Pt)
		case CmdPolyEnd:
			if s.open == PrimPolygon {
				s.close()
			}
		case CmdTriStart:
			if s.open != PrimTriangles {
				s.close()
				s.useSurface()
				s.openPrim(PrimTriangles)
			}
			s.e.Normal(c.Pt)
		case CmdTriMove, CmdTriDraw:
			s.vertex(PrimTriangles, c.Pt)
		case CmdTriEnd:
			// The triangle list stays open for the next TriStart.
		case CmdPolyVertNormal, CmdTriVertNormal:
			if s.open.Filled() {
				s.e.Normal(c.Pt)
			}
		case CmdPointDraw:
			if s.open != PrimPoints {
				s.close()
				s.useWire()
				s.openPrim(PrimPoints)
			}
			s.e.Vertex(c.Pt)
		case CmdLineWidth:
			if w := c.Pt[0]; w > 0 {
				s.e.LineWidth(w)
				s.lineWidth = w
			}
		case CmdPointSize:
			if p := c.Pt[0]; p > 0 {
				s.e.PointSize(p)
				s.pointSize = p
			}
		}
	}
}

func (s *emitState) meshWire(m *Mesh) {
	for f := 0; f < m.FaceCount(); f++ {
		i := m.Faces[f*3 : f*3+3]
		s.openPrim(PrimLineLoop)
		s.e.Vertex(m.Vertices[i[0]])
		s.e.Vertex(m.Vertices[i[1]])
		s.e.Vertex(m.Vertices[i[2]])
		s.close()
	}
}

func (s *emitState) meshShaded(m *Mesh) {
	s.useSurface()
	for f := 0; f < m.FaceCount(); f++ {
		i := m.Faces[f*3 : f*3+3]
		s.openPrim(PrimTriangles)
		switch {
		case len(m.FaceNormals) != 0:
			s.e.Normal(m.FaceNormals[f])
			for _, k := range i {
				s.e.Vertex(m.Vertices[k])
			}
		case len(m.VertexNormals) != 0:
			for _, k := range i {
				s.e.Normal(m.VertexNormals[k])
				s.e.Vertex(m.Vertices[k])
			}
		default:
			a, b, c := m.Vertices[i[0]], m.Vertices[i[1]], m.Vertices[i[2]]
			s.e.Normal(FaceNormal(a, b, c))
			s.e.Vertex(a)
			s.e.Vertex(b)
			s.e.Vertex(c)
		}
		s.close()
	}
}
