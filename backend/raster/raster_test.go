package raster

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/gogpu/dm"
	"github.com/gogpu/dm/backend"
	"github.com/gogpu/dm/memory"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f64"
)

var (
	red   = gputypes.Color{R: 1, A: 1}
	black = color.RGBA{A: 255}
)

// newCanvas returns a 100x100 backend with 10 pixels per unit, so model
// (x, y) maps to pixel (50+10x, 50-10y).
func newCanvas(t *testing.T) *Backend {
	t.Helper()
	b, err := New(100, 100, WithView(View{Scale: 10}))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return b
}

func triangle(e dm.Emitter, n f64.Vec3, a, b, c f64.Vec3) {
	e.Begin(dm.PrimTriangles)
	e.Normal(n)
	e.Vertex(a)
	e.Vertex(b)
	e.Vertex(c)
	e.End()
}

// ccw is a counter-clockwise triangle covering pixel (50, 60).
func ccw(e dm.Emitter, n f64.Vec3) {
	triangle(e, n, f64.Vec3{-3, -3, 0}, f64.Vec3{3, -3, 0}, f64.Vec3{0, 3, 0})
}

// cw is ccw with the opposite winding.
func cw(e dm.Emitter, n f64.Vec3) {
	triangle(e, n, f64.Vec3{-3, -3, 0}, f64.Vec3{0, 3, 0}, f64.Vec3{3, -3, 0})
}

func TestNewInvalidDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -1, 10},
		{"too large", MaxDimension + 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.w, tt.h); !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("New(%d, %d) = %v, want ErrInvalidDimensions", tt.w, tt.h, err)
			}
		})
	}
}

func TestRegistered(t *testing.T) {
	b, err := backend.New(backend.NameRaster)
	if err != nil {
		t.Fatalf("backend.New() = %v", err)
	}
	r, ok := b.(*Backend)
	if !ok {
		t.Fatalf("backend.New() returned %T, want *Backend", b)
	}
	if r.Width() != DefaultWidth || r.Height() != DefaultHeight {
		t.Errorf("size = %dx%d, want %dx%d", r.Width(), r.Height(), DefaultWidth, DefaultHeight)
	}
	d, err := backend.Default()
	if err != nil {
		t.Fatalf("backend.Default() = %v", err)
	}
	if _, ok := d.(*Backend); !ok {
		t.Errorf("backend.Default() returned %T, want the raster backend", d)
	}
}

func TestFillTriangle(t *testing.T) {
	b := newCanvas(t)
	b.SetLighting(false, false)
	b.SetColor(red)
	ccw(b, f64.Vec3{0, 0, 1})

	if got := b.Image().RGBAAt(50, 60); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("inside pixel = %v, want red", got)
	}
	if got := b.Image().RGBAAt(5, 5); got != black {
		t.Errorf("outside pixel = %v, want background", got)
	}
	if b.Primitives() != 1 {
		t.Errorf("Primitives() = %d, want 1", b.Primitives())
	}
}

func TestPolygon(t *testing.T) {
	b := newCanvas(t)
	b.SetColor(red)
	b.Begin(dm.PrimPolygon)
	b.Vertex(f64.Vec3{-2, -2, 0})
	b.Vertex(f64.Vec3{2, -2, 0})
	b.Vertex(f64.Vec3{2, 2, 0})
	b.Vertex(f64.Vec3{-2, 2, 0})
	b.End()

	for _, p := range [][2]int{{31, 31}, {50, 50}, {68, 68}} {
		if got := b.Image().RGBAAt(p[0], p[1]); got.R != 255 {
			t.Errorf("pixel %v = %v, want red", p, got)
		}
	}
	if got := b.Image().RGBAAt(25, 50); got != black {
		t.Errorf("pixel outside square = %v", got)
	}
}

func TestLinesAndPoints(t *testing.T) {
	b := newCanvas(t)
	b.SetColor(red)
	b.LineWidth(3)
	b.Begin(dm.PrimLineStrip)
	b.Vertex(f64.Vec3{-4, 0, 0})
	b.Vertex(f64.Vec3{4, 0, 0})
	b.End()

	b.PointSize(4)
	b.Begin(dm.PrimPoints)
	b.Vertex(f64.Vec3{2, 2, 0})
	b.End()

	img := b.Image()
	if img.RGBAAt(50, 50).R != 255 {
		t.Errorf("line center = %v, want red", img.RGBAAt(50, 50))
	}
	if img.RGBAAt(50, 45) != black {
		t.Errorf("pixel beside line = %v, want background", img.RGBAAt(50, 45))
	}
	if img.RGBAAt(70, 30).R != 255 {
		t.Errorf("point center = %v, want red", img.RGBAAt(70, 30))
	}
}

func TestLineLoopCloses(t *testing.T) {
	b := newCanvas(t)
	b.SetColor(red)
	b.LineWidth(2)
	b.Begin(dm.PrimLineLoop)
	b.Vertex(f64.Vec3{-3, -3, 0})
	b.Vertex(f64.Vec3{3, -3, 0})
	b.Vertex(f64.Vec3{3, 3, 0})
	b.Vertex(f64.Vec3{-3, 3, 0})
	b.End()

	// The closing edge runs along x = -3, i.e. pixel column 20.
	if got := b.Image().RGBAAt(20, 50); got.R == 0 {
		t.Errorf("closing edge not drawn: %v", got)
	}
	if got := b.Image().RGBAAt(50, 50); got != black {
		t.Errorf("loop interior = %v, want background", got)
	}
}

func TestVerticesOutsidePrimitiveIgnored(t *testing.T) {
	b := newCanvas(t)
	b.Vertex(f64.Vec3{0, 0, 0})
	b.End()
	if b.Primitives() != 0 {
		t.Errorf("Primitives() = %d, want 0", b.Primitives())
	}
}

func TestBlend(t *testing.T) {
	half := gputypes.Color{R: 1, A: 0.5}
	tests := []struct {
		blend bool
		want  uint8
	}{
		{false, 255},
		{true, 128},
	}
	for _, tt := range tests {
		b := newCanvas(t)
		b.SetBlend(tt.blend)
		b.SetColor(half)
		ccw(b, f64.Vec3{0, 0, 1})
		got := b.Image().RGBAAt(50, 60).R
		if diff := int(got) - int(tt.want); diff < -1 || diff > 1 {
			t.Errorf("blend=%v: R = %d, want %d", tt.blend, got, tt.want)
		}
	}
}

func TestLighting(t *testing.T) {
	m := dm.DefaultMaterial()
	draw := func(twoSided bool, tri func(dm.Emitter, f64.Vec3), n f64.Vec3) uint8 {
		b := newCanvas(t)
		b.SetLighting(true, twoSided)
		b.SetMaterial(dm.FaceFront, m.Front())
		b.SetMaterial(dm.FaceBack, m.Back(dm.LightTwoSidedDefault))
		tri(b, n)
		return b.Image().RGBAAt(50, 60).R
	}

	facing := draw(false, ccw, f64.Vec3{0, 0, 1})
	away := draw(false, cw, f64.Vec3{0, 0, -1})
	backLit := draw(true, cw, f64.Vec3{0, 0, -1})

	if facing <= away {
		t.Errorf("front face (%d) must be brighter than unlit back face (%d)", facing, away)
	}
	if backLit <= away {
		t.Errorf("two-sided back face (%d) must be brighter than one-sided (%d)", backLit, away)
	}
}

func TestCompileDrawsNothing(t *testing.T) {
	b := newCanvas(t)
	h, err := b.BeginCompile(dm.ModeShaded)
	if err != nil {
		t.Fatalf("BeginCompile() = %v", err)
	}
	b.SetColor(red)
	ccw(b, f64.Vec3{0, 0, 1})
	if err := b.EndCompile(); err != nil {
		t.Fatalf("EndCompile() = %v", err)
	}
	if b.Image().RGBAAt(50, 60) != black {
		t.Fatal("compile must not draw")
	}

	if err := b.Replay(h); err != nil {
		t.Fatalf("Replay() = %v", err)
	}
	if b.Image().RGBAAt(50, 60).R != 255 {
		t.Errorf("replay did not draw: %v", b.Image().RGBAAt(50, 60))
	}
	if b.Artifacts() != 1 {
		t.Errorf("Artifacts() = %d, want 1", b.Artifacts())
	}
	b.ReleaseArtifact(h)
	if b.Artifacts() != 0 {
		t.Errorf("Artifacts() = %d after release, want 0", b.Artifacts())
	}
}

func TestArtifactErrors(t *testing.T) {
	b := newCanvas(t)
	if err := b.EndCompile(); !errors.Is(err, ErrNoCompile) {
		t.Errorf("EndCompile() = %v, want ErrNoCompile", err)
	}
	if err := b.Replay(42); !errors.Is(err, ErrUnknownArtifact) {
		t.Errorf("Replay(42) = %v, want ErrUnknownArtifact", err)
	}
	h, _ := b.BeginCompile(dm.ModeWireframe)
	if _, err := b.BeginCompile(dm.ModeWireframe); !errors.Is(err, ErrCompileInProgress) {
		t.Errorf("nested BeginCompile() = %v, want ErrCompileInProgress", err)
	}
	if err := b.Replay(h); !errors.Is(err, ErrUnknownArtifact) {
		t.Errorf("Replay(incomplete) = %v, want ErrUnknownArtifact", err)
	}
}

func box() *dm.Mesh {
	return &dm.Mesh{
		Vertices: []f64.Vec3{
			{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
			{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
		},
		Faces: []int{
			0, 2, 1, 0, 3, 2,
			4, 5, 6, 4, 6, 7,
			0, 1, 5, 0, 5, 4,
			2, 3, 7, 2, 7, 6,
			1, 2, 6, 1, 6, 5,
			3, 0, 4, 3, 4, 7,
		},
	}
}

// TestCachedMatchesImmediate renders the same record through a compiled
// artifact and through raw calls and requires identical pixels.
func TestCachedMatchesImmediate(t *testing.T) {
	view := View{Scale: 20, Yaw: 0.5, Pitch: 0.4}
	render := func(avail uint64, want dm.Outcome) []byte {
		b, err := New(100, 100, WithView(view))
		if err != nil {
			t.Fatal(err)
		}
		c, err := dm.NewController(b,
			dm.WithOracle(memory.NewFixed(avail)),
			dm.WithLighting(dm.LightTwoSidedDark))
		if err != nil {
			t.Fatal(err)
		}
		rec, _ := dm.NewRecord("box", box(), dm.NewMaterial(40, 160, 220, 1))
		for _, mode := range []dm.Mode{dm.ModeShaded, dm.ModeShaded, dm.ModeWireframe} {
			if _, err := c.Render(rec, mode); err != nil {
				t.Fatalf("Render(%v) = %v", mode, err)
			}
		}
		if out, _ := c.Render(rec, dm.ModeWireframe); out != want {
			t.Fatalf("Render() = %v, want %v", out, want)
		}
		return b.Image().Pix
	}

	cached := render(memory.GiB, dm.OutcomeReplayed)
	immediate := render(0, dm.OutcomeImmediate)
	if !bytes.Equal(cached, immediate) {
		t.Error("cached rendering differs from immediate rendering")
	}
}

func TestEncodePNG(t *testing.T) {
	b := newCanvas(t)
	b.SetColor(red)
	ccw(b, f64.Vec3{0, 0, 1})

	var buf bytes.Buffer
	if err := b.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG() = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() = %v", err)
	}
	if img.Bounds() != b.Image().Bounds() {
		t.Errorf("bounds = %v, want %v", img.Bounds(), b.Image().Bounds())
	}
	if r, _, _, _ := img.At(50, 60).RGBA(); r != 0xffff {
		t.Errorf("decoded pixel R = %#x, want 0xffff", r)
	}
}

func TestSavePNG(t *testing.T) {
	b := newCanvas(t)
	if err := b.SavePNG(t.TempDir() + "/out.png"); err != nil {
		t.Errorf("SavePNG() = %v", err)
	}
	if err := b.SavePNG(t.TempDir() + "/missing/out.png"); err == nil {
		t.Error("SavePNG() into a missing directory should fail")
	}
}

func TestClear(t *testing.T) {
	b, err := New(10, 10, WithBackground(color.White))
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Image().RGBAAt(3, 3); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel = %v, want white", got)
	}
}

func TestViewRotation(t *testing.T) {
	const eps = 1e-9
	tests := []struct {
		name string
		view View
		in   f64.Vec3
		want f64.Vec3
	}{
		{"identity", View{Scale: 1}, f64.Vec3{1, 2, 3}, f64.Vec3{1, 2, 3}},
		{"yaw 90", View{Scale: 1, Yaw: math.Pi / 2}, f64.Vec3{1, 0, 0}, f64.Vec3{0, 0, -1}},
		{"pitch 90", View{Scale: 1, Pitch: math.Pi / 2}, f64.Vec3{0, 1, 0}, f64.Vec3{0, 0, 1}},
		{"center", View{Scale: 1, Center: f64.Vec3{1, 1, 1}}, f64.Vec3{1, 1, 1}, f64.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProjector(tt.view, 10, 10)
			got := p.eye(tt.in)
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > eps {
					t.Fatalf("eye(%v) = %v, want %v", tt.in, got, tt.want)
				}
			}
		})
	}
}

func TestSetView(t *testing.T) {
	b := newCanvas(t)
	b.SetView(View{Scale: 10, Center: f64.Vec3{-3, 0, 0}})
	b.SetColor(red)
	ccw(b, f64.Vec3{0, 0, 1})
	// Shifting the camera left moves the triangle 30 pixels right.
	if b.Image().RGBAAt(80, 60).R != 255 {
		t.Errorf("shifted triangle not found: %v", b.Image().RGBAAt(80, 60))
	}
	if b.View().Center != (f64.Vec3{-3, 0, 0}) {
		t.Errorf("View() = %v", b.View())
	}
}

func TestResize(t *testing.T) {
	b := newCanvas(t)
	h, _ := b.BeginCompile(dm.ModeShaded)
	b.SetColor(red)
	ccw(b, f64.Vec3{0, 0, 1})
	_ = b.EndCompile()

	if err := b.Resize(0, 10); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Resize(0, 10) = %v, want ErrInvalidDimensions", err)
	}
	if err := b.Resize(200, 200); err != nil {
		t.Fatalf("Resize() = %v", err)
	}
	if b.Width() != 200 || b.Height() != 200 {
		t.Fatalf("size = %dx%d, want 200x200", b.Width(), b.Height())
	}
	// The artifact survives and is centered on the new canvas.
	if err := b.Replay(h); err != nil {
		t.Fatalf("Replay() = %v", err)
	}
	if b.Image().RGBAAt(100, 110).R != 255 {
		t.Errorf("pixel = %v, want red", b.Image().RGBAAt(100, 110))
	}
}
