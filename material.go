package dm

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// LightLevel is the lighting ladder used for shaded emission.
// Levels above LightOneSided enable two-sided lighting and differ only
// in the diffuse term applied to back faces.
type LightLevel uint8

const (
	// LightFlat disables lighting; primitives use the plain foreground color.
	LightFlat LightLevel = iota
	// LightOneSided lights front faces only.
	LightOneSided
	// LightTwoSidedLight lights back faces with the front diffuse color.
	LightTwoSidedLight
	// LightTwoSidedDark lights back faces with a darkened diffuse color.
	LightTwoSidedDark
	// LightTwoSidedDefault lights back faces with a brightened diffuse color.
	LightTwoSidedDefault

	lightCount
)

var lightNames = [...]string{
	LightFlat:            "flat",
	LightOneSided:        "one-sided",
	LightTwoSidedLight:   "two-sided-light",
	LightTwoSidedDark:    "two-sided-dark",
	LightTwoSidedDefault: "two-sided-default",
}

// String returns the level name.
func (l LightLevel) String() string {
	if l.Valid() {
		return lightNames[l]
	}
	return fmt.Sprintf("LightLevel(%d)", uint8(l))
}

// Valid reports whether l is a defined level.
func (l LightLevel) Valid() bool { return l < lightCount }

// Lit reports whether lighting is enabled at this level.
func (l LightLevel) Lit() bool { return l != LightFlat }

// TwoSided reports whether back faces are lit with their own material.
func (l LightLevel) TwoSided() bool { return l > LightOneSided }

// ParseLightLevel parses a level name as produced by [LightLevel.String].
func ParseLightLevel(s string) (LightLevel, error) {
	for l, name := range lightNames {
		if s == name {
			return LightLevel(l), nil
		}
	}
	return 0, fmt.Errorf("dm: unknown light level %q", s)
}

// Face selects which polygon faces a material applies to.
type Face uint8

const (
	FaceFront Face = iota
	FaceBack
	FaceFrontAndBack
)

// Surface holds the lit material terms for one face.
type Surface struct {
	Emission gputypes.Color
	Ambient  gputypes.Color
	Specular gputypes.Color
	Diffuse  gputypes.Color
}

// Material coefficients applied to the foreground color.
const (
	ambientScale     = 0.2
	specularScale    = 0.2
	diffuseScale     = 0.6
	backDarkScale    = 0.3
	backDefaultScale = 0.9
)

// Material is the immutable per-record drawing descriptor. Every lit
// term is derived from the single foreground Color; its alpha channel is
// the opacity, and values below one enable blending for filled primitives.
type Material struct {
	Color     gputypes.Color
	LineWidth float64
	PointSize float64
}

// NewMaterial returns a material for the given 8-bit foreground color and
// opacity with one-pixel lines and points.
func NewMaterial(r, g, b uint8, opacity float64) Material {
	return Material{
		Color: gputypes.Color{
			R: float64(r) / 255,
			G: float64(g) / 255,
			B: float64(b) / 255,
			A: opacity,
		},
		LineWidth: 1,
		PointSize: 1,
	}
}

// DefaultMaterial is opaque white with one-pixel lines and points.
func DefaultMaterial() Material {
	return NewMaterial(255, 255, 255, 1)
}

// Translucent reports whether filled primitives need blending.
func (m Material) Translucent() bool {
	return m.Color.A < 1
}

func (m Material) scaled(k float64) gputypes.Color {
	return gputypes.Color{R: m.Color.R * k, G: m.Color.G * k, B: m.Color.B * k, A: m.Color.A}
}

// Wire returns the lit material used for lines and points: the
// foreground color is emitted and every reflective term is black.
func (m Material) Wire() Surface {
	return Surface{Emission: m.Color}
}

// Front returns the lit material for front faces.
func (m Material) Front() Surface {
	return Surface{
		Ambient:  m.scaled(ambientScale),
		Specular: m.scaled(specularScale),
		Diffuse:  m.scaled(diffuseScale),
	}
}

// Back returns the lit material for back faces at the given level.
// For levels that are not two-sided it equals [Material.Front].
func (m Material) Back(l LightLevel) Surface {
	s := m.Front()
	switch l {
	case LightTwoSidedDark:
		s.Diffuse = m.scaled(backDarkScale)
	case LightTwoSidedDefault:
		s.Diffuse = m.scaled(backDefaultScale)
	}
	return s
}
