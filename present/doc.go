// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package present shows frames drawn by the raster backend in a gogpu
// window.
//
// The data flow is:
//
//	dm.Controller (render) -> raster.Backend (CPU image) -> GPU texture -> window
//
// The texture is created lazily on the first RenderTo and updated only
// when the canvas is dirty:
//
//	b, _ := raster.New(800, 600)
//	canvas, _ := present.New(b)
//	defer canvas.Close()
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    canvas.Draw(func(b *raster.Backend) {
//	        b.Clear()
//	        for _, rec := range scene {
//	            ctrl.Render(rec, dm.ModeShaded)
//	        }
//	    })
//	    canvas.RenderTo(dc.AsTextureDrawer())
//	})
//
// The package depends only on gpucontext interfaces, not on gogpu itself.
package present
