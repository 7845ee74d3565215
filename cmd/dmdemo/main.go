// Command dmdemo renders generated objects through the draw-artifact cache
// with the raster backend and writes the last frame as PNG.
//
// The first half of the frames is drawn in the initial mode and the
// second half in the other one, so the log shows artifacts being built,
// replayed, released on the mode switch and rebuilt:
//
//	dmdemo -frames 6 -mode wireframe -v
//	dmdemo -budget 1 -policy dm.toml
package main

import (
	"errors"
	"flag"
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/dm"
	"github.com/gogpu/dm/backend/raster"
	"github.com/gogpu/dm/internal/shapes"
	"github.com/gogpu/dm/memory"
	"github.com/gogpu/dm/policy"
	"golang.org/x/image/math/f64"
)

// object is a scene entry together with the generator of its source, so
// the demo can re-ingest geometry the cache reclaimed.
type object struct {
	rec    *dm.Record
	source func() dm.Source
}

func main() {
	var (
		width   = flag.Int("width", 800, "image width")
		height  = flag.Int("height", 600, "image height")
		output  = flag.String("output", "dmdemo.png", "output file")
		frames  = flag.Int("frames", 4, "number of frames to render")
		mode    = flag.String("mode", "shaded", "initial display mode (wireframe or shaded)")
		light   = flag.String("light", "two-sided-dark", "light level")
		detail  = flag.Int("detail", 48, "sphere and torus segments")
		budget  = flag.Uint64("budget", 0, "available memory in MiB (0 samples the system)")
		polFile = flag.String("policy", "", "TOML or YAML policy file, reloaded on change")
		verbose = flag.Bool("v", false, "log cache decisions")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	dm.SetLogger(logger)

	first, err := dm.ParseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}
	lightLevel, err := dm.ParseLightLevel(*light)
	if err != nil {
		log.Fatal(err)
	}

	b, err := raster.New(*width, *height,
		raster.WithView(raster.View{Scale: float64(min(*width, *height)) / 7, Yaw: 0.6, Pitch: 0.45}),
		raster.WithBackground(rgb(24, 26, 32)))
	if err != nil {
		log.Fatal(err)
	}

	opts := []dm.Option{dm.WithLighting(lightLevel)}
	if *budget > 0 {
		opts = append(opts, dm.WithOracle(memory.NewFixed(*budget*memory.MiB)))
	}
	if *polFile != "" {
		p, err := policy.Load(*polFile)
		if err != nil {
			log.Fatalf("Failed to load policy: %v", err)
		}
		opts = append(opts, dm.WithPolicy(p))
	}

	ctrl, err := dm.NewController(b, opts...)
	if err != nil {
		log.Fatal(err)
	}

	if *polFile != "" {
		w, err := policy.Watch(*polFile, func(p policy.Policy) {
			if err := ctrl.SetPolicy(p); err != nil {
				logger.Warn("dmdemo: policy rejected", "err", err)
			}
		}, func(err error) {
			logger.Warn("dmdemo: policy reload failed", "err", err)
		})
		if err != nil {
			log.Fatalf("Failed to watch policy: %v", err)
		}
		defer w.Close()
	}

	objects, err := scene(*detail)
	if err != nil {
		log.Fatal(err)
	}

	second := dm.ModeShaded
	if first == dm.ModeShaded {
		second = dm.ModeWireframe
	}
	for i := 0; i < *frames; i++ {
		m := first
		if i >= *frames/2 && *frames > 1 {
			m = second
		}
		b.Clear()
		drawFrame(ctrl, objects, m, logger)
	}

	st := ctrl.Stats()
	logger.Info("dmdemo: done",
		"frames", *frames,
		"records", st.Records,
		"cached", st.Cached,
		"builds", st.Builds,
		"replays", st.Replays,
		"immediate", st.Immediate,
		"fallbacks", st.Fallbacks,
		"releases", st.Releases,
		"reclaims", st.Reclaims,
		"reingests", st.Reingests)

	if err := b.SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	ctrl.ReleaseAll()

	log.Printf("Demo saved to %s (%dx%d)\n", *output, *width, *height)
}

// drawFrame renders every object once, re-ingesting sources the cache
// discarded when the mode changes.
func drawFrame(ctrl *dm.Controller, objects []object, mode dm.Mode, logger *slog.Logger) {
	for _, o := range objects {
		out, err := ctrl.Render(o.rec, mode)
		if errors.Is(err, dm.ErrNeedsReingest) {
			if err := o.rec.Ingest(o.source()); err != nil {
				logger.Error("dmdemo: reingest failed", "record", o.rec.Name(), "err", err)
				continue
			}
			out, err = ctrl.Render(o.rec, mode)
		}
		if err != nil {
			logger.Error("dmdemo: render failed", "record", o.rec.Name(), "err", err)
			continue
		}
		logger.Debug("dmdemo: rendered", "record", o.rec.Name(), "mode", mode.String(),
			"outcome", out.String(), "state", o.rec.State().String())
	}
}

func scene(detail int) ([]object, error) {
	defs := []struct {
		name   string
		mat    dm.Material
		source func() dm.Source
	}{
		{"grid", dm.NewMaterial(90, 90, 100, 1), func() dm.Source { return shapes.Grid(10, 0.5) }},
		{"axes", dm.NewMaterial(230, 200, 60, 1), func() dm.Source { return shapes.Axes(1.5) }},
		{"sphere", dm.NewMaterial(60, 140, 230, 1), func() dm.Source { return offset(shapes.Sphere(1, detail, detail/2), -1.4, 1, 0) }},
		{"torus", dm.NewMaterial(230, 90, 70, 0.7), func() dm.Source { return offset(shapes.Torus(0.9, 0.3, detail), 1.4, 1, 0) }},
		{"box", dm.NewMaterial(120, 210, 120, 1), func() dm.Source { return offset(shapes.Box(1.2), 0, 0.6, 1.6) }},
		{"frame", dm.NewMaterial(250, 250, 250, 1), func() dm.Source { return shapes.WireBox(5) }},
	}
	objects := make([]object, 0, len(defs))
	for _, d := range defs {
		rec, err := dm.NewRecord(d.name, d.source(), d.mat)
		if err != nil {
			return nil, err
		}
		objects = append(objects, object{rec: rec, source: d.source})
	}
	return objects, nil
}

func offset(m *dm.Mesh, x, y, z float64) *dm.Mesh {
	for i, v := range m.Vertices {
		m.Vertices[i] = f64.Vec3{v[0] + x, v[1] + y, v[2] + z}
	}
	return m
}

func rgb(r, g, b uint8) color.Color {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
