package raster

import (
	"image/color"
	"math"

	"github.com/gogpu/dm"
	"github.com/gogpu/gputypes"
)

// Headlight parameters. The single light sits at the eye, so the light
// and half vectors both equal view-space +Z.
const (
	ambientLight = 0.2
	shininess    = 16
)

// shade evaluates a lit surface for a view-space normal Z component.
func shade(s dm.Surface, nz float64) gputypes.Color {
	diff := math.Max(nz, 0)
	spec := 0.0
	if diff > 0 {
		spec = math.Pow(diff, shininess)
	}
	return gputypes.Color{
		R: s.Emission.R + s.Ambient.R*ambientLight + s.Diffuse.R*diff + s.Specular.R*spec,
		G: s.Emission.G + s.Ambient.G*ambientLight + s.Diffuse.G*diff + s.Specular.G*spec,
		B: s.Emission.B + s.Ambient.B*ambientLight + s.Diffuse.B*diff + s.Specular.B*spec,
		A: alphaOf(s),
	}
}

// alphaOf returns the opacity carried by a surface.
func alphaOf(s dm.Surface) float64 {
	if s.Diffuse.A != 0 {
		return s.Diffuse.A
	}
	return s.Emission.A
}

func unit16(v float64) uint16 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}

// toNRGBA converts c, forcing full opacity unless blending is enabled.
func toNRGBA(c gputypes.Color, blend bool) color.NRGBA64 {
	a := c.A
	if !blend {
		a = 1
	}
	return color.NRGBA64{R: unit16(c.R), G: unit16(c.G), B: unit16(c.B), A: unit16(a)}
}
