// pkg/renderer/camera.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

// Camera maps world coordinates to clip and window coordinates. The
// batching layer asks it for a fresh projection matrix at every flush so
// that pans, zooms, and window resizes take effect immediately.
type Camera interface {
	// ProjectionMatrix returns a column-major orthographic projection for
	// the current view. depthBias is written to the matrix's z translation
	// and establishes the fixed stacking order between the batch kinds.
	ProjectionMatrix(depthBias float32) [16]float32

	// ScreenFromWorld converts a world-space position to window
	// coordinates with the origin at the top left.
	ScreenFromWorld(p [2]float32) [2]float32
}

// defaultZoom gives the world-space half height of the view at zoom 1.
const defaultZoom = 25

// OrthoCamera is a 2D orthographic camera centered on a world position.
// The visible world half extents are (aspect*25, 25) scaled by Zoom.
type OrthoCamera struct {
	Center [2]float32
	Zoom   float32
	Width  int
	Height int
}

func NewOrthoCamera(width, height int) *OrthoCamera {
	return &OrthoCamera{Zoom: 1, Width: width, Height: height}
}

func (c *OrthoCamera) extents() (lower, upper [2]float32) {
	ratio := float32(c.Width) / float32(c.Height)
	ex := ratio * defaultZoom * c.Zoom
	ey := float32(defaultZoom) * c.Zoom
	lower = [2]float32{c.Center[0] - ex, c.Center[1] - ey}
	upper = [2]float32{c.Center[0] + ex, c.Center[1] + ey}
	return
}

func (c *OrthoCamera) ProjectionMatrix(depthBias float32) [16]float32 {
	lower, upper := c.extents()

	var m [16]float32
	m[0] = 2 / (upper[0] - lower[0])
	m[5] = 2 / (upper[1] - lower[1])
	m[10] = 1
	m[12] = -(upper[0] + lower[0]) / (upper[0] - lower[0])
	m[13] = -(upper[1] + lower[1]) / (upper[1] - lower[1])
	m[14] = depthBias
	m[15] = 1
	return m
}

func (c *OrthoCamera) ScreenFromWorld(p [2]float32) [2]float32 {
	lower, upper := c.extents()
	u := (p[0] - lower[0]) / (upper[0] - lower[0])
	v := (p[1] - lower[1]) / (upper[1] - lower[1])
	return [2]float32{u * float32(c.Width), (1 - v) * float32(c.Height)}
}

// WorldFromScreen is the inverse of ScreenFromWorld; it is what mouse
// interaction code wants.
func (c *OrthoCamera) WorldFromScreen(p [2]float32) [2]float32 {
	lower, upper := c.extents()
	u := p[0] / float32(c.Width)
	v := 1 - p[1]/float32(c.Height)
	return [2]float32{
		(1-u)*lower[0] + u*upper[0],
		(1-v)*lower[1] + v*upper[1],
	}
}
