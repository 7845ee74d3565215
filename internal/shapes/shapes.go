// Package shapes generates demo and test geometry.
package shapes

import (
	"math"

	"github.com/gogpu/dm"
	"golang.org/x/image/math/f64"
)

// Sphere returns a UV sphere centered on the origin with outward-facing
// triangles and per-vertex normals. slices is the number of segments
// around the Y axis and stacks the number from pole to pole; values below
// 3 and 2 are raised to those minimums.
func Sphere(radius float64, slices, stacks int) *dm.Mesh {
	slices = max(slices, 3)
	stacks = max(stacks, 2)

	m := &dm.Mesh{}
	for j := 0; j <= stacks; j++ {
		theta := math.Pi * float64(j) / float64(stacks)
		st, ct := math.Sincos(theta)
		for i := 0; i <= slices; i++ {
			phi := 2 * math.Pi * float64(i) / float64(slices)
			sp, cp := math.Sincos(phi)
			n := f64.Vec3{st * cp, ct, st * sp}
			m.Vertices = append(m.Vertices, f64.Vec3{radius * n[0], radius * n[1], radius * n[2]})
			m.VertexNormals = append(m.VertexNormals, n)
		}
	}

	row := slices + 1
	for j := 0; j < stacks; j++ {
		for i := 0; i < slices; i++ {
			a := j*row + i
			b := a + 1
			d := a + row
			c := d + 1
			// The first and last stacks meet at a pole and need one triangle.
			if j != 0 {
				m.Faces = append(m.Faces, a, b, d)
			}
			if j != stacks-1 {
				m.Faces = append(m.Faces, b, c, d)
			}
		}
	}
	return m
}

// SphereFaces returns the number of faces Sphere generates.
func SphereFaces(slices, stacks int) int {
	slices = max(slices, 3)
	stacks = max(stacks, 2)
	return slices * (2*stacks - 2)
}

// Torus returns a torus around the Z axis with per-vertex normals.
// segs is used for both the ring and the tube and is raised to 3.
func Torus(radius, tube float64, segs int) *dm.Mesh {
	segs = max(segs, 3)

	m := &dm.Mesh{}
	for j := 0; j <= segs; j++ {
		v := 2 * math.Pi * float64(j) / float64(segs)
		sv, cv := math.Sincos(v)
		for i := 0; i <= segs; i++ {
			u := 2 * math.Pi * float64(i) / float64(segs)
			su, cu := math.Sincos(u)
			m.Vertices = append(m.Vertices, f64.Vec3{
				(radius + tube*cv) * cu,
				(radius + tube*cv) * su,
				tube * sv,
			})
			m.VertexNormals = append(m.VertexNormals, f64.Vec3{cv * cu, cv * su, sv})
		}
	}

	row := segs + 1
	for j := 1; j <= segs; j++ {
		for i := 1; i <= segs; i++ {
			a := row*j + i - 1
			b := row*(j-1) + i - 1
			c := row*(j-1) + i
			d := row*j + i
			m.Faces = append(m.Faces, a, b, d, b, c, d)
		}
	}
	return m
}

// Box returns an axis-aligned box centered on the origin with the given
// edge length and outward-facing triangles.
func Box(size float64) *dm.Mesh {
	h := size / 2
	return &dm.Mesh{
		Vertices: []f64.Vec3{
			{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
			{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
		},
		Faces: []int{
			0, 2, 1, 0, 3, 2, // -Z
			4, 5, 6, 4, 6, 7, // +Z
			0, 1, 5, 0, 5, 4, // -Y
			2, 3, 7, 2, 7, 6, // +Y
			1, 2, 6, 1, 6, 5, // +X
			3, 0, 4, 3, 4, 7, // -X
		},
	}
}

// Grid returns an n x n line grid in the XZ plane centered on the origin.
func Grid(n int, spacing float64) dm.CommandStream {
	n = max(n, 1)
	h := float64(n) * spacing / 2

	var s dm.CommandStream
	for i := 0; i <= n; i++ {
		x := -h + float64(i)*spacing
		s.MoveTo(f64.Vec3{x, 0, -h}).LineTo(f64.Vec3{x, 0, h})
		s.MoveTo(f64.Vec3{-h, 0, x}).LineTo(f64.Vec3{h, 0, x})
	}
	return s
}

// Axes returns the three unit axes as a line stream with a point marker
// at the origin.
func Axes(length float64) dm.CommandStream {
	var s dm.CommandStream
	s.SetLineWidth(2)
	s.MoveTo(f64.Vec3{}).LineTo(f64.Vec3{length, 0, 0})
	s.MoveTo(f64.Vec3{}).LineTo(f64.Vec3{0, length, 0})
	s.MoveTo(f64.Vec3{}).LineTo(f64.Vec3{0, 0, length})
	s.SetPointSize(5).Point(f64.Vec3{})
	return s
}

// WireBox returns the twelve edges of Box(size) as a line stream.
func WireBox(size float64) dm.CommandStream {
	m := Box(size)
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	var s dm.CommandStream
	for _, e := range edges {
		s.MoveTo(m.Vertices[e[0]]).LineTo(m.Vertices[e[1]])
	}
	return s
}
