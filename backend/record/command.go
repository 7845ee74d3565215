// Package record provides a draw backend that records primitive calls as
// typed commands instead of drawing them.
//
// Recordings serve two purposes. The [Backend] keeps a trace of everything
// drawn, which makes it the reference backend for tests: two call
// sequences are equivalent exactly when their recordings are equal. Other
// backends use a [Recorder] as their compiled-artifact representation and
// replay it with [Recording.Playback].
//
// # Example
//
//	b := record.New()
//	ctrl, _ := dm.NewController(b)
//	ctrl.Render(rec, dm.ModeShaded)
//	for _, cmd := range b.Trace().Commands() {
//	    fmt.Println(cmd)
//	}
package record

import (
	"fmt"

	"github.com/gogpu/dm"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f64"
)

// Op identifies the type of a command.
type Op uint8

const (
	// Primitive commands
	OpBegin  Op = iota // Open a primitive
	OpEnd              // Close the open primitive
	OpVertex           // Add a vertex
	OpNormal           // Set the current normal

	// State commands
	OpColor     // Set the unlit color
	OpMaterial  // Set a lit material
	OpLighting  // Enable or disable lighting
	OpBlend     // Enable or disable blending
	OpLineWidth // Set the line width
	OpPointSize // Set the point size
)

// opNames maps Op values to their string representation.
var opNames = [...]string{
	OpBegin:     "Begin",
	OpEnd:       "End",
	OpVertex:    "Vertex",
	OpNormal:    "Normal",
	OpColor:     "Color",
	OpMaterial:  "Material",
	OpLighting:  "Lighting",
	OpBlend:     "Blend",
	OpLineWidth: "LineWidth",
	OpPointSize: "PointSize",
}

// String returns the name of the op.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "Unknown"
}

// Command is a recorded call. Commands are comparable values, so two
// recordings can be compared with slices.Equal.
type Command interface {
	// Op returns the type of this command.
	Op() Op
}

// BeginCommand opens a primitive.
type BeginCommand struct {
	Primitive dm.Primitive
}

// Op implements Command.
func (BeginCommand) Op() Op { return OpBegin }

func (c BeginCommand) String() string { return fmt.Sprintf("Begin(%v)", c.Primitive) }

// EndCommand closes the open primitive.
type EndCommand struct{}

// Op implements Command.
func (EndCommand) Op() Op { return OpEnd }

func (EndCommand) String() string { return "End" }

// VertexCommand adds a vertex.
type VertexCommand struct {
	V f64.Vec3
}

// Op implements Command.
func (VertexCommand) Op() Op { return OpVertex }

func (c VertexCommand) String() string { return fmt.Sprintf("Vertex%v", c.V) }

// NormalCommand sets the current normal.
type NormalCommand struct {
	N f64.Vec3
}

// Op implements Command.
func (NormalCommand) Op() Op { return OpNormal }

func (c NormalCommand) String() string { return fmt.Sprintf("Normal%v", c.N) }

// ColorCommand sets the unlit color.
type ColorCommand struct {
	Color gputypes.Color
}

// Op implements Command.
func (ColorCommand) Op() Op { return OpColor }

func (c ColorCommand) String() string {
	return fmt.Sprintf("Color(%g, %g, %g, %g)", c.Color.R, c.Color.G, c.Color.B, c.Color.A)
}

// MaterialCommand sets the lit material of the selected faces.
type MaterialCommand struct {
	Face    dm.Face
	Surface dm.Surface
}

// Op implements Command.
func (MaterialCommand) Op() Op { return OpMaterial }

// LightingCommand enables or disables lighting.
type LightingCommand struct {
	Lit      bool
	TwoSided bool
}

// Op implements Command.
func (LightingCommand) Op() Op { return OpLighting }

// BlendCommand enables or disables blending.
type BlendCommand struct {
	Enabled bool
}

// Op implements Command.
func (BlendCommand) Op() Op { return OpBlend }

// LineWidthCommand sets the line width.
type LineWidthCommand struct {
	Width float64
}

// Op implements Command.
func (LineWidthCommand) Op() Op { return OpLineWidth }

// PointSizeCommand sets the point size.
type PointSizeCommand struct {
	Size float64
}

// Op implements Command.
func (PointSizeCommand) Op() Op { return OpPointSize }
