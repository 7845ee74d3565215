// Package raster provides a CPU draw backend that renders primitives into
// an [image.RGBA] with an orthographic camera and a single headlight.
//
// Filled primitives are scan converted with golang.org/x/image/vector,
// lines are drawn as quads of the current line width and points as
// squares of the current point size. There is no depth buffer: primitives
// are painted in call order.
//
// Compiled artifacts are stored as [record.Recording] values and replayed
// through the same drawing path, so a replayed artifact produces exactly
// the pixels of the raw calls it captured.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/chewxy/math32"
	"github.com/gogpu/dm"
	"github.com/gogpu/dm/backend"
	"github.com/gogpu/dm/backend/record"
	"github.com/gogpu/dm/internal/handle"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// Default canvas size used by the registry factory.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// MaxDimension bounds the canvas width and height.
const MaxDimension = 16384

func init() {
	backend.Register(backend.NameRaster, func() dm.Backend {
		b, _ := New(DefaultWidth, DefaultHeight)
		return b
	})
}

// Backend errors.
var (
	ErrInvalidDimensions = errors.New("raster: invalid dimensions")
	ErrCompileInProgress = errors.New("raster: compile already in progress")
	ErrNoCompile         = errors.New("raster: no compile in progress")
	ErrUnknownArtifact   = errors.New("raster: unknown artifact")
)

// Option configures a Backend.
type Option func(*Backend)

// WithView sets the camera.
func WithView(v View) Option {
	return func(b *Backend) { b.view = v }
}

// WithBackground sets the color used by Clear. The default is opaque black.
func WithBackground(c color.Color) Option {
	return func(b *Backend) { b.background = c }
}

type point struct {
	X, Y float32
}

type vertex struct {
	pos    f64.Vec3
	normal f64.Vec3
}

type artifact struct {
	mode dm.Mode
	rec  *record.Recording // nil until EndCompile succeeds
}

// Backend is a [dm.Backend] drawing into an RGBA image.
//
// Backend is not safe for concurrent use.
type Backend struct {
	img        *image.RGBA
	view       View
	proj       projector
	background color.Color
	raster     vector.Rasterizer

	// Current state.
	lit, twoSided bool
	front, back   dm.Surface
	color         gputypes.Color
	blend         bool
	lineWidth     float64
	pointSize     float64
	normal        f64.Vec3

	// Open primitive.
	open  bool
	prim  dm.Primitive
	verts []vertex

	compiling *record.Recorder
	current   dm.Artifact
	artifacts *handle.Table[*artifact]

	primitives int
}

var _ dm.Backend = (*Backend)(nil)

// New creates a backend with a width x height canvas cleared to the
// background color.
func New(width, height int, opts ...Option) (*Backend, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	b := &Backend{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		view:       DefaultView(),
		background: color.Black,
		color:      gputypes.Color{R: 1, G: 1, B: 1, A: 1},
		lineWidth:  1,
		pointSize:  1,
		normal:     f64.Vec3{0, 0, 1},
		artifacts:  handle.New[*artifact](),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.proj = newProjector(b.view, width, height)
	b.Clear()
	return b, nil
}

// Image returns the canvas. It is drawn into by subsequent calls.
func (b *Backend) Image() *image.RGBA { return b.img }

// Width returns the canvas width in pixels.
func (b *Backend) Width() int { return b.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (b *Backend) Height() int { return b.img.Rect.Dy() }

// View returns the camera.
func (b *Backend) View() View { return b.view }

// SetView changes the camera for subsequent primitives.
func (b *Backend) SetView(v View) {
	b.view = v
	b.proj = newProjector(v, b.Width(), b.Height())
}

// Resize replaces the canvas with a cleared width x height one.
// Compiled artifacts stay valid.
func (b *Backend) Resize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width == b.Width() && height == b.Height() {
		return nil
	}
	b.img = image.NewRGBA(image.Rect(0, 0, width, height))
	b.proj = newProjector(b.view, width, height)
	b.Clear()
	return nil
}

// Clear fills the canvas with the background color.
func (b *Backend) Clear() {
	draw.Draw(b.img, b.img.Bounds(), image.NewUniform(b.background), image.Point{}, draw.Src)
}

// Primitives returns the number of primitives drawn since creation.
func (b *Backend) Primitives() int { return b.primitives }

// EncodePNG writes the canvas as PNG.
func (b *Backend) EncodePNG(w io.Writer) error {
	return png.Encode(w, b.img)
}

// SavePNG writes the canvas to a PNG file.
func (b *Backend) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := b.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Begin implements dm.Emitter.
func (b *Backend) Begin(p dm.Primitive) {
	if b.compiling != nil {
		b.compiling.Begin(p)
		return
	}
	if b.open {
		b.flush()
	}
	b.open = true
	b.prim = p
	b.verts = b.verts[:0]
}

// End implements dm.Emitter.
func (b *Backend) End() {
	if b.compiling != nil {
		b.compiling.End()
		return
	}
	if b.open {
		b.flush()
	}
}

// Vertex implements dm.Emitter.
func (b *Backend) Vertex(v f64.Vec3) {
	if b.compiling != nil {
		b.compiling.Vertex(v)
		return
	}
	if b.open {
		b.verts = append(b.verts, vertex{pos: v, normal: b.normal})
	}
}

// Normal implements dm.Emitter.
func (b *Backend) Normal(n f64.Vec3) {
	if b.compiling != nil {
		b.compiling.Normal(n)
		return
	}
	b.normal = n
}

// SetColor implements dm.Emitter.
func (b *Backend) SetColor(c gputypes.Color) {
	if b.compiling != nil {
		b.compiling.SetColor(c)
		return
	}
	b.color = c
}

// SetMaterial implements dm.Emitter.
func (b *Backend) SetMaterial(f dm.Face, s dm.Surface) {
	if b.compiling != nil {
		b.compiling.SetMaterial(f, s)
		return
	}
	switch f {
	case dm.FaceFront:
		b.front = s
	case dm.FaceBack:
		b.back = s
	default:
		b.front, b.back = s, s
	}
}

// SetLighting implements dm.Emitter.
func (b *Backend) SetLighting(lit, twoSided bool) {
	if b.compiling != nil {
		b.compiling.SetLighting(lit, twoSided)
		return
	}
	b.lit, b.twoSided = lit, twoSided
}

// SetBlend implements dm.Emitter.
func (b *Backend) SetBlend(enabled bool) {
	if b.compiling != nil {
		b.compiling.SetBlend(enabled)
		return
	}
	b.blend = enabled
}

// LineWidth implements dm.Emitter.
func (b *Backend) LineWidth(w float64) {
	if b.compiling != nil {
		b.compiling.LineWidth(w)
		return
	}
	b.lineWidth = w
}

// PointSize implements dm.Emitter.
func (b *Backend) PointSize(s float64) {
	if b.compiling != nil {
		b.compiling.PointSize(s)
		return
	}
	b.pointSize = s
}

// BeginCompile starts capturing calls into a new artifact. Nothing is
// drawn until the artifact is replayed.
func (b *Backend) BeginCompile(mode dm.Mode) (dm.Artifact, error) {
	if b.compiling != nil {
		return dm.NoArtifact, ErrCompileInProgress
	}
	h := dm.Artifact(b.artifacts.Insert(&artifact{mode: mode}))
	b.compiling = record.NewRecorder()
	b.current = h
	return h, nil
}

// EndCompile finishes the artifact started by BeginCompile.
func (b *Backend) EndCompile() error {
	if b.compiling == nil {
		return ErrNoCompile
	}
	rec := b.compiling.Finish()
	h := b.current
	b.compiling = nil
	b.current = dm.NoArtifact

	a, ok := b.artifacts.Get(uint64(h))
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownArtifact, h)
	}
	b.artifacts.Replace(uint64(h), &artifact{mode: a.mode, rec: rec})
	dm.Logger().Debug("raster: artifact compiled",
		"artifact", uint64(h), "mode", a.mode.String(), "commands", rec.Len())
	return nil
}

// Replay draws a compiled artifact.
func (b *Backend) Replay(h dm.Artifact) error {
	a, ok := b.artifacts.Get(uint64(h))
	if !ok || a.rec == nil {
		return fmt.Errorf("%w: %d", ErrUnknownArtifact, h)
	}
	a.rec.Playback(b)
	return nil
}

// ReleaseArtifact frees an artifact. Unknown handles are ignored.
func (b *Backend) ReleaseArtifact(h dm.Artifact) {
	b.artifacts.Delete(uint64(h))
}

// Artifacts returns the number of live artifacts.
func (b *Backend) Artifacts() int { return b.artifacts.Len() }

// flush draws the open primitive and closes it.
func (b *Backend) flush() {
	b.open = false
	if len(b.verts) == 0 {
		return
	}
	b.primitives++
	switch b.prim {
	case dm.PrimPoints:
		c := b.flatColor()
		for _, v := range b.verts {
			b.square(b.proj.screen(b.proj.eye(v.pos)), float32(b.pointSize), c)
		}
	case dm.PrimLineStrip, dm.PrimLineLoop:
		c := b.flatColor()
		pts := b.screenPoints()
		for i := 1; i < len(pts); i++ {
			b.segment(pts[i-1], pts[i], float32(b.lineWidth), c)
		}
		if b.prim == dm.PrimLineLoop && len(pts) > 2 {
			b.segment(pts[len(pts)-1], pts[0], float32(b.lineWidth), c)
		}
	case dm.PrimTriangles:
		for i := 0; i+2 < len(b.verts); i += 3 {
			b.polygon(b.verts[i : i+3])
		}
	case dm.PrimPolygon:
		if len(b.verts) >= 3 {
			b.polygon(b.verts)
		}
	}
}

// flatColor returns the color of lines and points.
func (b *Backend) flatColor() color.NRGBA64 {
	if b.lit {
		return toNRGBA(shade(b.front, 1), b.blend)
	}
	return toNRGBA(b.color, b.blend)
}

func (b *Backend) screenPoints() []point {
	pts := make([]point, len(b.verts))
	for i, v := range b.verts {
		pts[i] = b.proj.screen(b.proj.eye(v.pos))
	}
	return pts
}

// polygon fills a convex polygon shaded with the normal of its first
// vertex. Back faces are detected from the view-space winding.
func (b *Backend) polygon(vs []vertex) {
	eye := make([]f64.Vec3, len(vs))
	for i, v := range vs {
		eye[i] = b.proj.eye(v.pos)
	}

	c := toNRGBA(b.color, b.blend)
	if b.lit {
		n := b.proj.direction(vs[0].normal)
		s := b.front
		if signedArea(eye) < 0 {
			if b.twoSided {
				s = b.back
				n = f64.Vec3{-n[0], -n[1], -n[2]}
			}
		}
		c = toNRGBA(shade(s, n[2]), b.blend)
	}

	pts := make([]point, len(eye))
	for i, e := range eye {
		pts[i] = b.proj.screen(e)
	}
	b.fill(pts, c)
}

// signedArea returns twice the signed view-space area of a polygon.
// It is positive for counter-clockwise winding as seen by the viewer.
func signedArea(eye []f64.Vec3) float64 {
	var a float64
	for i := range eye {
		j := (i + 1) % len(eye)
		a += eye[i][0]*eye[j][1] - eye[j][0]*eye[i][1]
	}
	return a
}

// segment draws a line of width w as a quad.
func (b *Backend) segment(p, q point, w float32, c color.NRGBA64) {
	dx, dy := q.X-p.X, q.Y-p.Y
	l := math32.Sqrt(dx*dx + dy*dy)
	if l == 0 {
		b.square(p, w, c)
		return
	}
	h := math32.Max(w, 1) / 2
	nx, ny := -dy/l*h, dx/l*h
	b.fill([]point{
		{p.X + nx, p.Y + ny},
		{q.X + nx, q.Y + ny},
		{q.X - nx, q.Y - ny},
		{p.X - nx, p.Y - ny},
	}, c)
}

// square draws an axis-aligned square of side s centered on p.
func (b *Backend) square(p point, s float32, c color.NRGBA64) {
	h := math32.Max(s, 1) / 2
	b.fill([]point{
		{p.X - h, p.Y - h},
		{p.X + h, p.Y - h},
		{p.X + h, p.Y + h},
		{p.X - h, p.Y + h},
	}, c)
}

// fill rasterizes a closed path with the nonzero rule.
func (b *Backend) fill(pts []point, c color.NRGBA64) {
	bounds := b.img.Bounds()
	if !onCanvas(pts, float32(bounds.Dx()), float32(bounds.Dy())) {
		return
	}
	z := &b.raster
	z.Reset(bounds.Dx(), bounds.Dy())
	z.DrawOp = draw.Over
	z.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		z.LineTo(p.X, p.Y)
	}
	z.ClosePath()
	z.Draw(b.img, bounds, image.NewUniform(c), image.Point{})
}

// onCanvas reports whether the bounding box of pts overlaps a w x h canvas.
func onCanvas(pts []point, w, h float32) bool {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = math32.Min(minX, p.X), math32.Max(maxX, p.X)
		minY, maxY = math32.Min(minY, p.Y), math32.Max(maxY, p.Y)
	}
	return maxX > 0 && maxY > 0 && minX < w && minY < h
}
