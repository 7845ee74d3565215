// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"errors"
	"fmt"

	"github.com/gogpu/dm/backend/raster"
	"github.com/gogpu/gpucontext"
)

// Common errors returned by Canvas operations.
var (
	// ErrCanvasClosed is returned when operations are attempted on a closed canvas.
	ErrCanvasClosed = errors.New("present: canvas is closed")

	// ErrNilBackend is returned when a nil raster backend is passed.
	ErrNilBackend = errors.New("present: nil raster backend")

	// ErrInvalidRenderer is returned when the draw context has no
	// texture creator.
	ErrInvalidRenderer = errors.New("present: draw context has no texture creator")
)

// textureDestroyer matches the Destroy method of gogpu textures.
type textureDestroyer interface {
	Destroy()
}

func destroy(tex gpucontext.Texture) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}

// Canvas uploads the image of a raster backend to a GPU texture and draws
// it into a gogpu window.
//
// Canvas is NOT safe for concurrent use.
type Canvas struct {
	backend    *raster.Backend
	texture    gpucontext.Texture
	oldTexture gpucontext.Texture // replaced on resize, destroyed after the next upload
	dirty      bool
	closed     bool
	uploads    int
}

// New creates a canvas presenting b.
func New(b *raster.Backend) (*Canvas, error) {
	if b == nil {
		return nil, ErrNilBackend
	}
	return &Canvas{backend: b, dirty: true}, nil
}

// Backend returns the raster backend, or nil if the canvas is closed.
func (c *Canvas) Backend() *raster.Backend {
	if c.closed {
		return nil
	}
	return c.backend
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (width, height int) {
	return c.backend.Width(), c.backend.Height()
}

// Draw calls fn with the backend and marks the canvas dirty.
func (c *Canvas) Draw(fn func(*raster.Backend)) error {
	if c.closed {
		return ErrCanvasClosed
	}
	fn(c.backend)
	c.dirty = true
	return nil
}

// MarkDirty flags the canvas for upload on the next RenderTo.
func (c *Canvas) MarkDirty() { c.dirty = true }

// IsDirty reports whether the canvas has changes not yet uploaded.
func (c *Canvas) IsDirty() bool { return c.dirty }

// Uploads returns the number of texture creations and updates so far.
func (c *Canvas) Uploads() int { return c.uploads }

// Texture returns the current texture, or nil before the first RenderTo.
func (c *Canvas) Texture() gpucontext.Texture { return c.texture }

// Resize resizes the backend canvas. The texture is recreated on the next
// RenderTo.
func (c *Canvas) Resize(width, height int) error {
	if c.closed {
		return ErrCanvasClosed
	}
	w, h := c.Size()
	if w == width && h == height {
		return nil
	}
	if err := c.backend.Resize(width, height); err != nil {
		return err
	}
	if c.texture != nil {
		if c.oldTexture != nil {
			destroy(c.oldTexture)
		}
		c.oldTexture = c.texture
		c.texture = nil
	}
	c.dirty = true
	return nil
}

// RenderTo uploads the canvas if needed and draws it at (0, 0).
func (c *Canvas) RenderTo(dc gpucontext.TextureDrawer) error {
	return c.RenderToPosition(dc, 0, 0)
}

// RenderToPosition uploads the canvas if needed and draws it at (x, y).
func (c *Canvas) RenderToPosition(dc gpucontext.TextureDrawer, x, y float32) error {
	if c.closed {
		return ErrCanvasClosed
	}
	if err := c.upload(dc); err != nil {
		return err
	}
	return dc.DrawTexture(c.texture, x, y)
}

func (c *Canvas) upload(dc gpucontext.TextureDrawer) error {
	img := c.backend.Image()
	if c.texture == nil {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrInvalidRenderer
		}
		tex, err := creator.NewTextureFromRGBA(img.Rect.Dx(), img.Rect.Dy(), img.Pix)
		if err != nil {
			return fmt.Errorf("present: NewTextureFromRGBA failed: %w", err)
		}
		// image.RGBA is premultiplied.
		if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}
		c.texture = tex
		c.uploads++
		c.dirty = false

		// Creating the texture waits for the GPU, so the old one is idle.
		if c.oldTexture != nil {
			destroy(c.oldTexture)
			c.oldTexture = nil
		}
		return nil
	}
	if !c.dirty {
		return nil
	}
	if u, ok := c.texture.(gpucontext.TextureUpdater); ok {
		if err := u.UpdateData(img.Pix); err != nil {
			return fmt.Errorf("present: texture update failed: %w", err)
		}
		c.uploads++
	}
	c.dirty = false
	return nil
}

// Close destroys the textures. Close is idempotent.
func (c *Canvas) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.oldTexture != nil {
		destroy(c.oldTexture)
		c.oldTexture = nil
	}
	if c.texture != nil {
		destroy(c.texture)
		c.texture = nil
	}
	return nil
}
