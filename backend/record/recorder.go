package record

import (
	"github.com/gogpu/dm"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f64"
)

// Recorder is a [dm.Emitter] that captures calls as commands.
// The zero value is ready to use.
type Recorder struct {
	commands []Command
	vertices int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

var _ dm.Emitter = (*Recorder)(nil)

func (r *Recorder) add(c Command) {
	r.commands = append(r.commands, c)
}

// Begin implements dm.Emitter.
func (r *Recorder) Begin(p dm.Primitive) { r.add(BeginCommand{Primitive: p}) }

// End implements dm.Emitter.
func (r *Recorder) End() { r.add(EndCommand{}) }

// Vertex implements dm.Emitter.
func (r *Recorder) Vertex(v f64.Vec3) {
	r.add(VertexCommand{V: v})
	r.vertices++
}

// Normal implements dm.Emitter.
func (r *Recorder) Normal(n f64.Vec3) { r.add(NormalCommand{N: n}) }

// SetColor implements dm.Emitter.
func (r *Recorder) SetColor(c gputypes.Color) { r.add(ColorCommand{Color: c}) }

// SetMaterial implements dm.Emitter.
func (r *Recorder) SetMaterial(f dm.Face, s dm.Surface) {
	r.add(MaterialCommand{Face: f, Surface: s})
}

// SetLighting implements dm.Emitter.
func (r *Recorder) SetLighting(lit, twoSided bool) {
	r.add(LightingCommand{Lit: lit, TwoSided: twoSided})
}

// SetBlend implements dm.Emitter.
func (r *Recorder) SetBlend(enabled bool) { r.add(BlendCommand{Enabled: enabled}) }

// LineWidth implements dm.Emitter.
func (r *Recorder) LineWidth(w float64) { r.add(LineWidthCommand{Width: w}) }

// PointSize implements dm.Emitter.
func (r *Recorder) PointSize(s float64) { r.add(PointSizeCommand{Size: s}) }

// Len returns the number of recorded commands.
func (r *Recorder) Len() int { return len(r.commands) }

// Reset discards all recorded commands.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
	r.vertices = 0
}

// Finish returns the recording and resets the recorder.
// The recorder may be reused afterwards.
func (r *Recorder) Finish() *Recording {
	rec := &Recording{
		commands: r.commands,
		vertices: r.vertices,
	}
	r.commands = nil
	r.vertices = 0
	return rec
}

// Recording is an immutable list of recorded commands.
type Recording struct {
	commands []Command
	vertices int
}

// Commands returns the recorded commands.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Len returns the number of commands.
func (r *Recording) Len() int {
	return len(r.commands)
}

// Vertices returns the number of vertex commands.
func (r *Recording) Vertices() int {
	return r.vertices
}

// Playback replays the recording to the given emitter.
func (r *Recording) Playback(e dm.Emitter) {
	for _, cmd := range r.commands {
		switch c := cmd.(type) {
		case BeginCommand:
			e.Begin(c.Primitive)
		case EndCommand:
			e.End()
		case VertexCommand:
			e.Vertex(c.V)
		case NormalCommand:
			e.Normal(c.N)
		case ColorCommand:
			e.SetColor(c.Color)
		case MaterialCommand:
			e.SetMaterial(c.Face, c.Surface)
		case LightingCommand:
			e.SetLighting(c.Lit, c.TwoSided)
		case BlendCommand:
			e.SetBlend(c.Enabled)
		case LineWidthCommand:
			e.LineWidth(c.Width)
		case PointSizeCommand:
			e.PointSize(c.Size)
		}
	}
}
