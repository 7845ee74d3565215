package record

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/dm"
	"github.com/gogpu/dm/backend"
	"golang.org/x/image/math/f64"
)

func drawTriangle(e dm.Emitter) {
	e.Begin(dm.PrimTriangles)
	e.Normal(f64.Vec3{0, 0, 1})
	e.Vertex(f64.Vec3{0, 0, 0})
	e.Vertex(f64.Vec3{1, 0, 0})
	e.Vertex(f64.Vec3{0, 1, 0})
	e.End()
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.NameRecord) {
		t.Fatal("record backend not registered")
	}
	b, err := backend.New(backend.NameRecord)
	if err != nil {
		t.Fatalf("backend.New() = %v", err)
	}
	if _, ok := b.(*Backend); !ok {
		t.Errorf("backend.New() returned %T, want *Backend", b)
	}
}

func TestRecorderPlayback(t *testing.T) {
	r := NewRecorder()
	r.SetLighting(true, true)
	r.SetMaterial(dm.FaceBack, dm.DefaultMaterial().Back(dm.LightTwoSidedDark))
	r.LineWidth(2)
	r.PointSize(3)
	r.SetBlend(true)
	r.SetColor(dm.DefaultMaterial().Color)
	drawTriangle(r)
	rec := r.Finish()

	if rec.Len() != 12 {
		t.Fatalf("Len() = %d, want 12", rec.Len())
	}
	if rec.Vertices() != 3 {
		t.Errorf("Vertices() = %d, want 3", rec.Vertices())
	}
	if r.Len() != 0 {
		t.Errorf("recorder not reset after Finish: %d commands", r.Len())
	}

	// Playing a recording into a recorder reproduces it exactly.
	r2 := NewRecorder()
	rec.Playback(r2)
	if got := r2.Finish(); !slices.Equal(got.Commands(), rec.Commands()) {
		t.Errorf("playback mismatch:\n got %v\nwant %v", got.Commands(), rec.Commands())
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{BeginCommand{}, "Begin"},
		{EndCommand{}, "End"},
		{VertexCommand{}, "Vertex"},
		{NormalCommand{}, "Normal"},
		{ColorCommand{}, "Color"},
		{MaterialCommand{}, "Material"},
		{LightingCommand{}, "Lighting"},
		{BlendCommand{}, "Blend"},
		{LineWidthCommand{}, "LineWidth"},
		{PointSizeCommand{}, "PointSize"},
	}
	for _, tt := range tests {
		if got := tt.cmd.Op().String(); got != tt.want {
			t.Errorf("%T.Op().String() = %q, want %q", tt.cmd, got, tt.want)
		}
	}
	if Op(200).String() != "Unknown" {
		t.Error("Op(200).String() should be Unknown")
	}
}

func TestCompileReplay(t *testing.T) {
	b := New()
	h, err := b.BeginCompile(dm.ModeShaded)
	if err != nil {
		t.Fatalf("BeginCompile() = %v", err)
	}
	drawTriangle(b)
	if b.Trace().Len() != 0 {
		t.Error("calls during compile must not be drawn")
	}
	if err := b.EndCompile(); err != nil {
		t.Fatalf("EndCompile() = %v", err)
	}

	art, mode, ok := b.Artifact(h)
	if !ok || mode != dm.ModeShaded || art.Len() != 6 {
		t.Fatalf("Artifact(%d) = %v, %v, %v", h, art, mode, ok)
	}

	for i := 0; i < 2; i++ {
		if err := b.Replay(h); err != nil {
			t.Fatalf("Replay() = %v", err)
		}
	}
	if got := b.Trace().Len(); got != 12 {
		t.Errorf("trace length after two replays = %d, want 12", got)
	}
	if b.Count(EventReplay) != 2 {
		t.Errorf("Count(Replay) = %d, want 2", b.Count(EventReplay))
	}

	b.ReleaseArtifact(h)
	if b.Live() != 0 {
		t.Errorf("Live() = %d after release, want 0", b.Live())
	}
	if err := b.Replay(h); !errors.Is(err, ErrUnknownArtifact) {
		t.Errorf("Replay(released) = %v, want ErrUnknownArtifact", err)
	}
	b.ReleaseArtifact(h) // unknown handles are ignored
}

func TestCompileErrors(t *testing.T) {
	b := New()
	if err := b.EndCompile(); !errors.Is(err, ErrNoCompile) {
		t.Errorf("EndCompile() without BeginCompile = %v, want ErrNoCompile", err)
	}
	if _, err := b.BeginCompile(dm.ModeWireframe); err != nil {
		t.Fatalf("BeginCompile() = %v", err)
	}
	if _, err := b.BeginCompile(dm.ModeWireframe); !errors.Is(err, ErrCompileInProgress) {
		t.Errorf("nested BeginCompile() = %v, want ErrCompileInProgress", err)
	}
}

func TestFaultInjection(t *testing.T) {
	b := New(WithCompileFailures(1), WithEndCompileFailures(1), WithReplayFailures(1))

	if _, err := b.BeginCompile(dm.ModeShaded); !errors.Is(err, ErrInjected) {
		t.Fatalf("first BeginCompile() = %v, want ErrInjected", err)
	}

	h, err := b.BeginCompile(dm.ModeShaded)
	if err != nil {
		t.Fatalf("second BeginCompile() = %v", err)
	}
	drawTriangle(b)
	if err := b.EndCompile(); !errors.Is(err, ErrInjected) {
		t.Fatalf("first EndCompile() = %v, want ErrInjected", err)
	}
	if _, _, ok := b.Artifact(h); ok {
		t.Error("failed compile must not produce a usable artifact")
	}
	if err := b.Replay(h); !errors.Is(err, ErrUnknownArtifact) {
		t.Errorf("Replay(incomplete) = %v, want ErrUnknownArtifact", err)
	}
	if b.Live() != 1 {
		t.Errorf("Live() = %d, incomplete artifact must stay until released", b.Live())
	}
	b.ReleaseArtifact(h)

	h, _ = b.BeginCompile(dm.ModeShaded)
	drawTriangle(b)
	if err := b.EndCompile(); err != nil {
		t.Fatalf("EndCompile() = %v", err)
	}
	if err := b.Replay(h); !errors.Is(err, ErrInjected) {
		t.Errorf("first Replay() = %v, want ErrInjected", err)
	}
	if err := b.Replay(h); err != nil {
		t.Errorf("second Replay() = %v", err)
	}
}

func TestEventString(t *testing.T) {
	b := New()
	h, _ := b.BeginCompile(dm.ModeWireframe)
	_ = b.EndCompile()
	b.ReleaseArtifact(h)

	var got []string
	for _, e := range b.Events() {
		got = append(got, e.String())
	}
	want := []string{"BeginCompile(wireframe)=1", "EndCompile(1)", "Release(1)"}
	if !slices.Equal(got, want) {
		t.Errorf("Events() = %v, want %v", got, want)
	}

	b.ResetTrace()
	if len(b.Events()) != 0 {
		t.Error("ResetTrace() must clear events")
	}
}
