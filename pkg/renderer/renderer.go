// pkg/renderer/renderer.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"image"
	"log/slog"
)

// Renderer abstracts the graphics API from the batching layer. There is
// currently a single implementation of it--OpenGL33Renderer--though having
// all of the API details behind the Renderer interface makes it relatively
// easy to add a Vulkan or Metal backend and, more importantly, lets the
// batching and command-encoding code be tested without a GPU.
type Renderer interface {
	// CreateTextureFromImage returns an identifier for a texture map
	// defined by the specified image.
	CreateTextureFromImage(img image.Image, magNearest bool) uint32

	// UpdateTextureFromImage updates the contents of an existing texture
	// with the provided image.
	UpdateTextureFromImage(id uint32, img image.Image, magNearest bool)

	// DestroyTexture frees the resources associated with the given texture id.
	DestroyTexture(id uint32)

	// RenderCommandBuffer executes all of the commands encoded in the
	// provided command buffer, returning statistics about what was
	// rendered.
	RenderCommandBuffer(*CommandBuffer) RendererStats

	// ReadPixelRGBAs returns the current framebuffer contents for the
	// given rectangle as 8-bit RGBA values, rows ordered bottom to top.
	ReadPixelRGBAs(x, y, w, h int) []uint8

	// Dispose releases resources allocated by the renderer. It may be
	// called multiple times; calls after the first are no-ops.
	Dispose()
}

// RendererStats encapsulates assorted statistics from rendering.
type RendererStats struct {
	nBuffers, bufferBytes       int
	nDrawCalls                  int
	nPoints, nLines, nTriangles int
}

func (rs *RendererStats) String() string {
	return fmt.Sprintf("%d buffers (%.2f MB), %d draw calls: %d points, %d lines, %d tris",
		rs.nBuffers, float32(rs.bufferBytes)/(1024*1024), rs.nDrawCalls, rs.nPoints, rs.nLines, rs.nTriangles)
}

func (rs *RendererStats) Merge(s RendererStats) {
	rs.nBuffers += s.nBuffers
	rs.bufferBytes += s.bufferBytes
	rs.nDrawCalls += s.nDrawCalls
	rs.nPoints += s.nPoints
	rs.nLines += s.nLines
	rs.nTriangles += s.nTriangles
}

func (rs RendererStats) DrawCalls() int { return rs.nDrawCalls }
func (rs RendererStats) Points() int    { return rs.nPoints }
func (rs RendererStats) Lines() int     { return rs.nLines }
func (rs RendererStats) Triangles() int { return rs.nTriangles }

func (rs RendererStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("buffers", rs.nBuffers),
		slog.Int("buffer_memory", rs.bufferBytes),
		slog.Int("draw_calls", rs.nDrawCalls),
		slog.Int("points_drawn", rs.nPoints),
		slog.Int("lines", rs.nLines),
		slog.Int("tris", rs.nTriangles),
	)
}
