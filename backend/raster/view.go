package raster

import (
	"math"

	"golang.org/x/image/math/f64"
)

// View is an orthographic camera. Model coordinates are translated by
// -Center, rotated by Yaw about the Y axis and then by Pitch about the X
// axis, and scaled by Scale pixels per unit. Positive view-space Z points
// toward the viewer.
type View struct {
	Center f64.Vec3
	Scale  float64
	Yaw    float64 // radians
	Pitch  float64 // radians
}

// DefaultView looks down the Z axis at the origin with 100 pixels per unit.
func DefaultView() View {
	return View{Scale: 100}
}

// rotation returns Rx(Pitch) * Ry(Yaw) in row-major order.
func (v View) rotation() f64.Mat3 {
	sy, cy := math.Sincos(v.Yaw)
	sp, cp := math.Sincos(v.Pitch)
	return f64.Mat3{
		cy, 0, sy,
		sp * sy, cp, -sp * cy,
		-cp * sy, sp, cp * cy,
	}
}

func mul(m *f64.Mat3, p f64.Vec3) f64.Vec3 {
	return f64.Vec3{
		m[0]*p[0] + m[1]*p[1] + m[2]*p[2],
		m[3]*p[0] + m[4]*p[1] + m[5]*p[2],
		m[6]*p[0] + m[7]*p[1] + m[8]*p[2],
	}
}

func normalize(p f64.Vec3) f64.Vec3 {
	l := math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
	if l == 0 {
		return p
	}
	return f64.Vec3{p[0] / l, p[1] / l, p[2] / l}
}

// projector maps model coordinates to pixel coordinates for one frame.
type projector struct {
	rot    f64.Mat3
	center f64.Vec3
	scale  float64
	cx, cy float64
}

func newProjector(v View, width, height int) projector {
	return projector{
		rot:    v.rotation(),
		center: v.Center,
		scale:  v.Scale,
		cx:     float64(width) / 2,
		cy:     float64(height) / 2,
	}
}

// eye returns p in view space.
func (p *projector) eye(v f64.Vec3) f64.Vec3 {
	return mul(&p.rot, f64.Vec3{v[0] - p.center[0], v[1] - p.center[1], v[2] - p.center[2]})
}

// screen returns the pixel position of a view-space point. Y grows down.
func (p *projector) screen(e f64.Vec3) point {
	return point{
		X: float32(p.cx + p.scale*e[0]),
		Y: float32(p.cy - p.scale*e[1]),
	}
}

// direction rotates a normal into view space and normalizes it.
func (p *projector) direction(n f64.Vec3) f64.Vec3 {
	return normalize(mul(&p.rot, n))
}
