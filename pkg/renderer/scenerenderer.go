// pkg/renderer/scenerenderer.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"image"

	"github.com/svqa/simviz/pkg/log"
	"github.com/svqa/simviz/pkg/math"
)

const (
	// circleSegments is the fixed tessellation of circle outlines and
	// fills, independent of radius and zoom.
	circleSegments = 16

	// transformAxisScale is the world-space length of the axes drawn by
	// DrawTransform.
	transformAxisScale = 0.4

	// TextureTileEdge is the world-space size one material texture tile
	// covers; texture coordinates are world position divided by it.
	TextureTileEdge = 7.5
)

// debugFillAttenuation dims fills under wireframe overlays in debug mode.
const debugFillAttenuation = 0.5

// Config selects the SceneRenderer variants that are fixed for its
// lifetime.
type Config struct {
	// Textured routes filled shapes through the textured triangle
	// program; the renderer backend must have been built with the same
	// setting.
	Textured bool

	// DebugMode is the initial debug mode; it can be toggled later with
	// SetDebugMode.
	DebugMode bool
}

// SceneRenderer turns shape-level draw calls into batched GPU primitives.
// Primitives accumulate in per-kind batches and reach the Renderer when a
// batch fills up or when Flush is called at the end of a frame. It is not
// safe for concurrent use.
type SceneRenderer struct {
	target    batchTarget
	points    *PointBatch
	lines     *LineBatch
	triangles TriangleBatch

	overlay   TextOverlay
	debugMode bool

	capture  CaptureSink
	captureW int
	captureH int
	lg       *log.Logger
}

func NewSceneRenderer(r Renderer, camera Camera, overlay TextOverlay, config Config, lg *log.Logger) *SceneRenderer {
	sr := &SceneRenderer{
		target:    batchTarget{renderer: r, camera: camera},
		overlay:   overlay,
		debugMode: config.DebugMode,
		lg:        lg,
	}
	sr.points = NewPointBatch(&sr.target)
	sr.lines = NewLineBatch(&sr.target)
	if config.Textured {
		sr.triangles = NewTexturedTriangleBatch(&sr.target)
	} else {
		sr.triangles = NewTriangleBatch(&sr.target)
	}
	return sr
}

func (sr *SceneRenderer) SetDebugMode(debug bool) { sr.debugMode = debug }
func (sr *SceneRenderer) DebugMode() bool         { return sr.debugMode }

// fillColor attenuates the fill in debug mode so the wireframe overlay
// stays legible on top of it.
func (sr *SceneRenderer) fillColor(color RGBA) RGBA {
	if sr.debugMode {
		return color.Scale(debugFillAttenuation)
	}
	return color
}

// DrawPolygon draws a closed polygon outline. Vertices are in world space
// and counterclockwise order.
func (sr *SceneRenderer) DrawPolygon(vertices [][2]float32, color RGBA) {
	for i := range vertices {
		sr.lines.AddSegment(vertices[i], vertices[(i+1)%len(vertices)], color)
	}
}

// DrawSolidPolygon draws a filled convex polygon, triangulated as a fan
// from the first vertex. Convexity is the caller's responsibility; a
// reflex polygon fans into overlapping triangles rather than failing.
func (sr *SceneRenderer) DrawSolidPolygon(vertices [][2]float32, color RGBA) {
	fill := sr.fillColor(color)
	for i := 1; i < len(vertices)-1; i++ {
		sr.triangles.Add(vertices[0], fill, [2]float32{}, 0)
		sr.triangles.Add(vertices[i], fill, [2]float32{}, 0)
		sr.triangles.Add(vertices[i+1], fill, [2]float32{}, 0)
	}
	if sr.debugMode {
		sr.DrawPolygon(vertices, color)
	}
}

// DrawTexturedPolygon is DrawSolidPolygon with per-vertex texture
// coordinates and a material slot; the texture is bound to the slot for
// this and subsequent flushes.
func (sr *SceneRenderer) DrawTexturedPolygon(vertices, uvs [][2]float32, color RGBA, texid uint32, slot int) {
	if texid != 0 {
		sr.triangles.BindMaterial(slot, texid)
	}
	fill := sr.fillColor(color)
	for i := 1; i < len(vertices)-1; i++ {
		sr.triangles.Add(vertices[0], fill, uvs[0], slot)
		sr.triangles.Add(vertices[i], fill, uvs[i], slot)
		sr.triangles.Add(vertices[i+1], fill, uvs[i+1], slot)
	}
	if sr.debugMode {
		sr.DrawPolygon(vertices, color)
	}
}

// circleVertex returns the i'th point of the fixed circle tessellation,
// scaled and translated.
func circleVertex(center [2]float32, radius float32, i int) [2]float32 {
	p := math.CirclePoints(circleSegments)[i%circleSegments]
	return math.Add2f(center, math.Scale2f(p, radius))
}

// DrawCircle draws a circle outline with a fixed 16 segment tessellation.
func (sr *SceneRenderer) DrawCircle(center [2]float32, radius float32, color RGBA) {
	for i := 0; i < circleSegments; i++ {
		sr.lines.AddSegment(circleVertex(center, radius, i), circleVertex(center, radius, i+1), color)
	}
}

// DrawSolidCircle draws a filled circle as a 16 triangle fan from the
// center. axis is the body's local x axis; in debug mode a tick from the
// center to the rim along it makes rotation visible.
func (sr *SceneRenderer) DrawSolidCircle(center [2]float32, radius float32, axis [2]float32, color RGBA) {
	fill := sr.fillColor(color)
	for i := 0; i < circleSegments; i++ {
		sr.triangles.Add(center, fill, [2]float32{}, 0)
		sr.triangles.Add(circleVertex(center, radius, i), fill, [2]float32{}, 0)
		sr.triangles.Add(circleVertex(center, radius, i+1), fill, [2]float32{}, 0)
	}
	if sr.debugMode {
		sr.DrawCircle(center, radius, color)
		sr.lines.AddSegment(center, math.Add2f(center, math.Scale2f(axis, radius)), color)
	}
}

// DrawTexturedCircle is DrawSolidCircle routed to the textured batch, with
// texture coordinates derived from world position so the material pattern
// is continuous across shapes.
func (sr *SceneRenderer) DrawTexturedCircle(center [2]float32, radius float32, axis [2]float32, color RGBA, texid uint32, slot int) {
	if texid != 0 {
		sr.triangles.BindMaterial(slot, texid)
	}
	uv := func(p [2]float32) [2]float32 {
		return math.Scale2f(p, 1/float32(TextureTileEdge))
	}
	fill := sr.fillColor(color)
	for i := 0; i < circleSegments; i++ {
		v1, v2 := circleVertex(center, radius, i), circleVertex(center, radius, i+1)
		sr.triangles.Add(center, fill, uv(center), slot)
		sr.triangles.Add(v1, fill, uv(v1), slot)
		sr.triangles.Add(v2, fill, uv(v2), slot)
	}
	if sr.debugMode {
		sr.DrawCircle(center, radius, color)
		sr.lines.AddSegment(center, math.Add2f(center, math.Scale2f(axis, radius)), color)
	}
}

// DrawSegment draws a single line segment.
func (sr *SceneRenderer) DrawSegment(p1, p2 [2]float32, color RGBA) {
	sr.lines.AddSegment(p1, p2, color)
}

// DrawTransform draws a body frame as two short axes: x in red, y in
// green.
func (sr *SceneRenderer) DrawTransform(xf math.Transform) {
	red := RGBA{R: 1, A: 1}
	green := RGBA{G: 1, A: 1}
	sr.lines.AddSegment(xf.P, math.Add2f(xf.P, math.Scale2f(xf.Q.XAxis(), transformAxisScale)), red)
	sr.lines.AddSegment(xf.P, math.Add2f(xf.P, math.Scale2f(xf.Q.YAxis(), transformAxisScale)), green)
}

// DrawPoint draws a single point with the given size in pixels.
func (sr *SceneRenderer) DrawPoint(p [2]float32, size float32, color RGBA) {
	sr.points.Add(p, color, size)
}

// DrawAABB draws an axis-aligned box outline, corners in counterclockwise
// order from the lower left.
func (sr *SceneRenderer) DrawAABB(box math.Extent2D, color RGBA) {
	ll := box.P0
	lr := [2]float32{box.P1[0], box.P0[1]}
	ur := box.P1
	ul := [2]float32{box.P0[0], box.P1[1]}
	sr.lines.AddSegment(ll, lr, color)
	sr.lines.AddSegment(lr, ur, color)
	sr.lines.AddSegment(ur, ul, color)
	sr.lines.AddSegment(ul, ll, color)
}

// DrawText draws a string at the given window coordinates through the
// text overlay; without an overlay it is dropped.
func (sr *SceneRenderer) DrawText(p [2]float32, text string) {
	if sr.overlay != nil {
		sr.overlay.AddText(p, text)
	}
}

// DrawTextWorld draws a string anchored at a world-space position.
func (sr *SceneRenderer) DrawTextWorld(pw [2]float32, text string) {
	sr.DrawText(sr.target.camera.ScreenFromWorld(pw), text)
}

// Flush submits all pending batches, triangles first so they stack under
// lines, which stack under points, and returns the statistics for the
// frame. If file output is enabled the finished frame is captured.
func (sr *SceneRenderer) Flush() RendererStats {
	sr.triangles.Flush()
	sr.lines.Flush()
	sr.points.Flush()

	stats := sr.target.stats
	sr.target.stats = RendererStats{}

	if sr.capture != nil {
		sr.captureFrame()
	}

	return stats
}

// SetFileOutput enables per-frame capture of the framebuffer to path; the
// format is chosen by extension (.gif for animation, PNG stills
// otherwise). An empty path, or a path that cannot be opened, disables
// capture; open failures are logged, not fatal.
func (sr *SceneRenderer) SetFileOutput(path string, width, height int) {
	if sr.capture != nil {
		if err := sr.capture.Close(); err != nil {
			sr.lg.Errorf("%v: closing previous capture sink", err)
		}
		sr.capture = nil
	}
	if path == "" {
		return
	}

	sink, err := NewCaptureSink(path, sr.lg)
	if err != nil {
		sr.lg.Errorf("%s: %v", path, err)
		return
	}
	sr.capture = sink
	sr.captureW, sr.captureH = width, height
}

func (sr *SceneRenderer) captureFrame() {
	px := sr.target.renderer.ReadPixelRGBAs(0, 0, sr.captureW, sr.captureH)

	// Flip the bottom-to-top framebuffer rows into a top-down image.
	img := image.NewRGBA(image.Rect(0, 0, sr.captureW, sr.captureH))
	rowBytes := 4 * sr.captureW
	for y := 0; y < sr.captureH; y++ {
		src := px[(sr.captureH-1-y)*rowBytes : (sr.captureH-y)*rowBytes]
		copy(img.Pix[y*img.Stride:], src)
	}

	if err := sr.capture.WriteFrame(img); err != nil {
		sr.lg.Errorf("%v: writing captured frame", err)
	}
}

// Finish closes the capture sink, completing any deferred encoding. It is
// safe to call when capture was never enabled, and safe to call more than
// once.
func (sr *SceneRenderer) Finish() {
	if sr.capture == nil {
		return
	}
	if err := sr.capture.Close(); err != nil {
		sr.lg.Errorf("%v: closing capture sink", err)
	}
	sr.capture = nil
}
