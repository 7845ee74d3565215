// Package backend is the registry of draw backends.
//
// Backend packages register themselves from init(), so importing a
// backend for its side effect makes it available by name:
//
//	import (
//		"github.com/gogpu/dm/backend"
//		_ "github.com/gogpu/dm/backend/raster"
//	)
//
//	b, err := backend.New("raster")
//
// # Backend Selection
//
// Use Default() to get the best registered backend, or New() to request
// a specific backend by name:
//
//	b, err := backend.Default()
//	b, err := backend.New("record")
//
// # Available Backends
//
//   - raster: software rasterizer drawing into an *image.RGBA
//   - record: records every call, for tests and debugging
package backend
