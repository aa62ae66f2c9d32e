// pkg/renderer/scenerenderer_test.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"testing"

	"github.com/svqa/simviz/pkg/math"
)

func testSceneRenderer(config Config) (*testRenderer, *SceneRenderer) {
	tr := &testRenderer{}
	sr := NewSceneRenderer(tr, NewOrthoCamera(800, 600), nil, config, nil)
	return tr, sr
}

func TestFlushOrder(t *testing.T) {
	tr, sr := testSceneRenderer(Config{})

	// Issue draws in points, lines, triangles order; the frame flush
	// must still submit triangles, then lines, then points.
	sr.DrawPoint([2]float32{0, 0}, 4, RGBA{A: 1})
	sr.DrawSegment([2]float32{0, 0}, [2]float32{1, 0}, RGBA{A: 1})
	sr.DrawSolidPolygon([][2]float32{{0, 0}, {1, 0}, {0, 1}}, RGBA{A: 1})
	stats := sr.Flush()

	if len(tr.draws) != 3 {
		t.Fatalf("got %d draws, expected 3", len(tr.draws))
	}
	wantOrder := []uint32{RendererDrawTriangles, RendererDrawLines, RendererDrawPoints}
	wantBias := []float32{trianglesDepthBias, linesDepthBias, pointsDepthBias}
	for i, d := range tr.draws {
		if d.cmd != wantOrder[i] {
			t.Errorf("draw %d is command %d, expected %d", i, d.cmd, wantOrder[i])
		}
		if d.projection[14] != wantBias[i] {
			t.Errorf("draw %d has depth bias %v, expected %v", i, d.projection[14], wantBias[i])
		}
	}

	if stats.Points() != 1 || stats.Lines() != 1 || stats.Triangles() != 1 {
		t.Errorf("stats %s", stats.String())
	}

	// The returned stats must cover only the finished frame.
	stats = sr.Flush()
	if stats.DrawCalls() != 0 {
		t.Errorf("second flush reports stale stats: %s", stats.String())
	}
}

func TestDrawPolygonCounts(t *testing.T) {
	tr, sr := testSceneRenderer(Config{})

	pentagon := [][2]float32{{0, 0}, {2, 0}, {3, 1}, {1, 3}, {-1, 1}}
	sr.DrawPolygon(pentagon, RGBA{A: 1})
	sr.Flush()

	if len(tr.draws) != 1 || tr.draws[0].count != 2*len(pentagon) {
		t.Fatalf("pentagon outline drew %+v, expected one draw with 10 vertices", tr.draws)
	}
	// The outline closes back to the first vertex.
	d := tr.draws[0]
	if d.p[len(d.p)-1] != pentagon[0] {
		t.Errorf("outline does not close: last vertex %v", d.p[len(d.p)-1])
	}

	tr.draws = nil
	sr.DrawSolidPolygon(pentagon, RGBA{A: 1})
	sr.Flush()
	if len(tr.draws) != 1 {
		t.Fatalf("solid polygon outside debug mode drew %d draws, expected fill only", len(tr.draws))
	}
	if want := 3 * (len(pentagon) - 2); tr.draws[0].count != want {
		t.Errorf("fan triangulation produced %d vertices, expected %d", tr.draws[0].count, want)
	}
	// Fan from vertex 0: every triangle starts there.
	for i := 0; i < tr.draws[0].count; i += 3 {
		if tr.draws[0].p[i] != pentagon[0] {
			t.Errorf("triangle %d does not start at vertex 0", i/3)
		}
	}
}

func TestDebugModeOverlay(t *testing.T) {
	tr, sr := testSceneRenderer(Config{DebugMode: true})

	color := RGBA{R: 0.8, G: 0.4, B: 0.2, A: 1}
	sr.DrawSolidPolygon([][2]float32{{0, 0}, {1, 0}, {0, 1}}, color)
	sr.Flush()

	if len(tr.draws) != 2 {
		t.Fatalf("debug mode drew %d draws, expected fill and wireframe", len(tr.draws))
	}
	fill, wire := tr.draws[0], tr.draws[1]
	if fill.cmd != RendererDrawTriangles || wire.cmd != RendererDrawLines {
		t.Fatalf("unexpected draw kinds %d, %d", fill.cmd, wire.cmd)
	}
	want := color.Scale(debugFillAttenuation)
	if fill.color[0] != want {
		t.Errorf("debug fill color %+v, expected %+v", fill.color[0], want)
	}
	if wire.color[0] != color {
		t.Errorf("wireframe color %+v, expected the unattenuated %+v", wire.color[0], color)
	}

	// Toggling debug mode off restores full-strength fills and no overlay.
	tr.draws = nil
	sr.SetDebugMode(false)
	sr.DrawSolidPolygon([][2]float32{{0, 0}, {1, 0}, {0, 1}}, color)
	sr.Flush()
	if len(tr.draws) != 1 {
		t.Fatalf("got %d draws with debug off", len(tr.draws))
	}
	if tr.draws[0].color[0] != color {
		t.Errorf("fill color %+v attenuated with debug off", tr.draws[0].color[0])
	}
}

func TestCircleTessellationRadiusInvariant(t *testing.T) {
	for _, radius := range []float32{0.1, 1, 250} {
		tr, sr := testSceneRenderer(Config{})
		sr.DrawCircle([2]float32{5, 5}, radius, RGBA{A: 1})
		sr.Flush()
		if tr.draws[0].count != 2*circleSegments {
			t.Errorf("radius %v outline has %d vertices, expected %d", radius, tr.draws[0].count, 2*circleSegments)
		}

		tr.draws = nil
		sr.DrawSolidCircle([2]float32{5, 5}, radius, [2]float32{1, 0}, RGBA{A: 1})
		sr.Flush()
		if tr.draws[0].count != 3*circleSegments {
			t.Errorf("radius %v fill has %d vertices, expected %d", radius, tr.draws[0].count, 3*circleSegments)
		}
	}
}

func TestDrawSolidCircleDebugTick(t *testing.T) {
	tr, sr := testSceneRenderer(Config{DebugMode: true})

	center := [2]float32{3, 4}
	axis := [2]float32{0, 1}
	sr.DrawSolidCircle(center, 2, axis, RGBA{A: 1})
	sr.Flush()

	if len(tr.draws) != 2 {
		t.Fatalf("got %d draws", len(tr.draws))
	}
	wire := tr.draws[1]
	// 16 outline segments plus the rotation tick.
	if wire.count != 2*circleSegments+2 {
		t.Fatalf("wireframe has %d vertices, expected %d", wire.count, 2*circleSegments+2)
	}
	tick0, tick1 := wire.p[wire.count-2], wire.p[wire.count-1]
	if tick0 != center || tick1 != ([2]float32{3, 6}) {
		t.Errorf("rotation tick %v -> %v, expected %v -> {3 6}", tick0, tick1, center)
	}
}

func TestDrawTexturedCircleUVs(t *testing.T) {
	tr, sr := testSceneRenderer(Config{Textured: true})

	center := [2]float32{15, 0}
	sr.DrawTexturedCircle(center, 1, [2]float32{1, 0}, RGBA{A: 1}, 3, 1)
	sr.Flush()

	d := tr.draws[0]
	if d.program != ProgramTexturedTriangles {
		t.Fatalf("textured circle used program %v", d.program)
	}
	if d.textures[1] != 3 {
		t.Errorf("material slot 1 bound to %d, expected 3", d.textures[1])
	}
	// Texture coordinates are world position over the tile size.
	if want := ([2]float32{15 / float32(TextureTileEdge), 0}); d.uv[0] != want {
		t.Errorf("center uv %v, expected %v", d.uv[0], want)
	}
	for _, m := range d.matIndex {
		if m != 1 {
			t.Errorf("material index %d, expected 1", m)
		}
	}
}

func TestDrawTransform(t *testing.T) {
	tr, sr := testSceneRenderer(Config{})

	xf := math.MakeTransform([2]float32{1, 2}, 0)
	sr.DrawTransform(xf)
	sr.Flush()

	d := tr.draws[0]
	if d.count != 4 {
		t.Fatalf("transform drew %d vertices, expected 4", d.count)
	}
	if d.p[1] != ([2]float32{1 + transformAxisScale, 2}) {
		t.Errorf("x axis endpoint %v", d.p[1])
	}
	if d.p[3] != ([2]float32{1, 2 + transformAxisScale}) {
		t.Errorf("y axis endpoint %v", d.p[3])
	}
	if (d.color[0] != RGBA{R: 1, A: 1}) {
		t.Errorf("x axis color %+v, expected red", d.color[0])
	}
	if (d.color[2] != RGBA{G: 1, A: 1}) {
		t.Errorf("y axis color %+v, expected green", d.color[2])
	}
}

func TestDrawAABB(t *testing.T) {
	tr, sr := testSceneRenderer(Config{})

	box := math.Extent2D{P0: [2]float32{-1, -2}, P1: [2]float32{3, 4}}
	sr.DrawAABB(box, RGBA{A: 1})
	sr.Flush()

	d := tr.draws[0]
	want := [][2]float32{
		{-1, -2}, {3, -2},
		{3, -2}, {3, 4},
		{3, 4}, {-1, 4},
		{-1, 4}, {-1, -2},
	}
	if len(d.p) != len(want) {
		t.Fatalf("box outline has %d vertices, expected %d", len(d.p), len(want))
	}
	for i, p := range want {
		if d.p[i] != p {
			t.Errorf("vertex %d is %v, expected %v", i, d.p[i], p)
		}
	}
}

func TestDrawTextWithoutOverlay(t *testing.T) {
	_, sr := testSceneRenderer(Config{})
	// Must not panic when no overlay is configured.
	sr.DrawText([2]float32{10, 10}, "hello")
	sr.DrawTextWorld([2]float32{0, 0}, "world")
}

type recordingOverlay struct {
	positions [][2]float32
	texts     []string
}

func (o *recordingOverlay) AddText(p [2]float32, text string) {
	o.positions = append(o.positions, p)
	o.texts = append(o.texts, text)
}

func TestDrawTextWorld(t *testing.T) {
	tr := &testRenderer{}
	overlay := &recordingOverlay{}
	cam := NewOrthoCamera(800, 600)
	sr := NewSceneRenderer(tr, cam, overlay, Config{}, nil)

	sr.DrawTextWorld([2]float32{0, 0}, "origin")
	if len(overlay.texts) != 1 || overlay.texts[0] != "origin" {
		t.Fatalf("overlay got %v", overlay.texts)
	}
	// The world origin is at the window center for the default camera.
	if overlay.positions[0] != ([2]float32{400, 300}) {
		t.Errorf("world origin mapped to %v, expected {400 300}", overlay.positions[0])
	}
}
