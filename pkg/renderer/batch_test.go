// pkg/renderer/batch_test.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"image"
	gomath "math"
	"testing"
)

// testRenderer decodes submitted command buffers back into draws so that
// tests can check what would reach the GPU without one being present.
type testDraw struct {
	cmd        uint32
	count      int
	program    ProgramKind
	projection [16]float32
	blend      bool
	p          [][2]float32
	color      []RGBA
	uv         [][2]float32
	sizes      []float32
	matIndex   []int32
	textures   map[int]uint32
}

type testRenderer struct {
	draws       []testDraw
	nextTexture uint32
	readPix     []uint8
}

func (tr *testRenderer) CreateTextureFromImage(img image.Image, magNearest bool) uint32 {
	tr.nextTexture++
	return tr.nextTexture
}

func (tr *testRenderer) UpdateTextureFromImage(id uint32, img image.Image, magNearest bool) {}
func (tr *testRenderer) DestroyTexture(id uint32)                                           {}
func (tr *testRenderer) Dispose()                                                           {}

func (tr *testRenderer) ReadPixelRGBAs(x, y, w, h int) []uint8 {
	if tr.readPix != nil {
		return tr.readPix
	}
	return make([]uint8, 4*w*h)
}

func (tr *testRenderer) RenderCommandBuffer(cb *CommandBuffer) RendererStats {
	var stats RendererStats
	stats.nBuffers++
	stats.bufferBytes += 4 * len(cb.Buf)

	i := 0
	ui32 := func() uint32 {
		v := cb.Buf[i]
		i++
		return v
	}
	i32 := func() int32 { return int32(ui32()) }
	float := func() float32 { return gomath.Float32frombits(ui32()) }
	floatsAt := func(offset uint32) []float32 {
		n := int(cb.Buf[offset/4-1])
		out := make([]float32, n)
		for j := range out {
			out[j] = gomath.Float32frombits(cb.Buf[int(offset/4)+j])
		}
		return out
	}

	cur := testDraw{textures: make(map[int]uint32)}
	for i < len(cb.Buf) {
		cmd := cb.Buf[i]
		i++
		switch cmd {
		case RendererUseProgram:
			cur.program = ProgramKind(i32())

		case RendererLoadProjectionMatrix:
			for j := 0; j < 16; j++ {
				cur.projection[j] = float()
			}

		case RendererClearRGBA:
			i += 4

		case RendererViewport:
			i += 4

		case RendererBlend:
			cur.blend = true

		case RendererDisableBlend:

		case RendererFloatBuffer, RendererIntBuffer:
			i += int(i32())

		case RendererVertexArray:
			offset := ui32()
			i32()
			i32()
			f := floatsAt(offset)
			cur.p = nil
			for j := 0; j+1 < len(f); j += 2 {
				cur.p = append(cur.p, [2]float32{f[j], f[j+1]})
			}

		case RendererColorArray:
			offset := ui32()
			i32()
			i32()
			f := floatsAt(offset)
			cur.color = nil
			for j := 0; j+3 < len(f); j += 4 {
				cur.color = append(cur.color, RGBA{f[j], f[j+1], f[j+2], f[j+3]})
			}

		case RendererPointSizeArray:
			offset := ui32()
			i32()
			cur.sizes = floatsAt(offset)

		case RendererTexCoordArray:
			offset := ui32()
			i32()
			i32()
			f := floatsAt(offset)
			cur.uv = nil
			for j := 0; j+1 < len(f); j += 2 {
				cur.uv = append(cur.uv, [2]float32{f[j], f[j+1]})
			}

		case RendererMaterialIndexArray:
			offset := ui32()
			i32()
			n := int(cb.Buf[offset/4-1])
			cur.matIndex = nil
			for j := 0; j < n; j++ {
				cur.matIndex = append(cur.matIndex, int32(cb.Buf[int(offset/4)+j]))
			}

		case RendererBindMaterialTexture:
			slot := int(i32())
			cur.textures[slot] = ui32()

		case RendererDrawPoints:
			cur.cmd = RendererDrawPoints
			cur.count = int(i32())
			stats.nDrawCalls++
			stats.nPoints += cur.count
			tr.draws = append(tr.draws, cur)

		case RendererDrawLines:
			cur.cmd = RendererDrawLines
			cur.count = int(i32())
			stats.nDrawCalls++
			stats.nLines += cur.count / 2
			tr.draws = append(tr.draws, cur)

		case RendererDrawTriangles:
			cur.cmd = RendererDrawTriangles
			cur.count = int(i32())
			stats.nDrawCalls++
			stats.nTriangles += cur.count / 3
			tr.draws = append(tr.draws, cur)

		case RendererDisableVertexArrays:

		default:
			panic("unhandled command in testRenderer")
		}
	}

	return stats
}

func testTarget() (*testRenderer, *batchTarget) {
	tr := &testRenderer{}
	return tr, &batchTarget{renderer: tr, camera: NewOrthoCamera(800, 600)}
}

func TestPointBatchOverflow(t *testing.T) {
	tr, target := testTarget()
	b := NewPointBatch(target)

	for i := 0; i < PointBatchCapacity+1; i++ {
		b.Add([2]float32{float32(i), 0}, RGBA{R: 1, A: 1}, 4)
	}

	// The 513th Add must have flushed the first 512 points implicitly.
	if len(tr.draws) != 1 {
		t.Fatalf("got %d draws, expected 1 after overflow", len(tr.draws))
	}
	if tr.draws[0].count != PointBatchCapacity {
		t.Errorf("overflow draw has %d points, expected %d", tr.draws[0].count, PointBatchCapacity)
	}
	if b.Len() != 1 {
		t.Errorf("batch holds %d points after overflow, expected 1", b.Len())
	}

	b.Flush()
	if len(tr.draws) != 2 || tr.draws[1].count != 1 {
		t.Fatalf("expected a second draw with 1 point, got %+v", tr.draws)
	}
	if got := tr.draws[1].p[0]; got != [2]float32{PointBatchCapacity, 0} {
		t.Errorf("leftover point is %v, expected {512 0}", got)
	}

	// Flushing an empty batch must not submit anything.
	b.Flush()
	if len(tr.draws) != 2 {
		t.Errorf("empty flush submitted a draw")
	}
}

func TestPointBatchOrder(t *testing.T) {
	tr, target := testTarget()
	b := NewPointBatch(target)

	for i := 0; i < 10; i++ {
		b.Add([2]float32{float32(i), float32(-i)}, RGBA{A: 1}, float32(i))
	}
	b.Flush()

	d := tr.draws[0]
	if d.program != ProgramPoints {
		t.Errorf("points drawn with program %v", d.program)
	}
	for i := 0; i < 10; i++ {
		if d.p[i] != [2]float32{float32(i), float32(-i)} {
			t.Errorf("vertex %d out of order: %v", i, d.p[i])
		}
		if d.sizes[i] != float32(i) {
			t.Errorf("size %d out of order: %v", i, d.sizes[i])
		}
	}
}

func TestLineBatchSegmentNotSplit(t *testing.T) {
	tr, target := testTarget()
	b := NewLineBatch(target)

	// Fill to one vertex short of capacity; the next segment does not
	// fit and must flush first rather than straddle two draws.
	for i := 0; i < LineBatchCapacity-2; i++ {
		b.Add([2]float32{float32(i), 0}, RGBA{A: 1})
	}
	b.Add([2]float32{0, 0}, RGBA{A: 1})

	b.AddSegment([2]float32{1, 1}, [2]float32{2, 2}, RGBA{A: 1})
	if len(tr.draws) != 1 {
		t.Fatalf("expected implicit flush before segment, got %d draws", len(tr.draws))
	}
	if tr.draws[0].count != LineBatchCapacity-1 {
		t.Errorf("flushed %d vertices, expected %d", tr.draws[0].count, LineBatchCapacity-1)
	}
	if b.Len() != 2 {
		t.Errorf("segment split across flush: %d vertices pending", b.Len())
	}
}

func TestTriangleBatchOverflow(t *testing.T) {
	tr, target := testTarget()
	b := NewTriangleBatch(target)

	for i := 0; i < TriangleBatchCapacity+3; i++ {
		b.Add([2]float32{float32(i), 0}, RGBA{A: 1}, [2]float32{}, 0)
	}
	if len(tr.draws) != 1 || tr.draws[0].count != TriangleBatchCapacity {
		t.Fatalf("expected implicit flush of %d vertices, got %+v draws", TriangleBatchCapacity, len(tr.draws))
	}
	if !tr.draws[0].blend {
		t.Errorf("triangle draw without blending")
	}

	b.Flush()
	if tr.draws[1].count != 3 {
		t.Errorf("leftover draw has %d vertices, expected 3", tr.draws[1].count)
	}
}

func TestTexturedTriangleBatch(t *testing.T) {
	tr, target := testTarget()
	b := NewTexturedTriangleBatch(target)

	b.BindMaterial(0, 7)
	b.BindMaterial(1, 9)
	b.Add([2]float32{0, 0}, RGBA{A: 1}, [2]float32{0, 0}, 0)
	b.Add([2]float32{1, 0}, RGBA{A: 1}, [2]float32{1, 0}, 1)
	b.Add([2]float32{0, 1}, RGBA{A: 1}, [2]float32{0, 1}, 1)
	b.Flush()

	d := tr.draws[0]
	if d.program != ProgramTexturedTriangles {
		t.Errorf("textured triangles drawn with program %v", d.program)
	}
	if d.textures[0] != 7 || d.textures[1] != 9 {
		t.Errorf("material textures %v, expected slot 0 -> 7, slot 1 -> 9", d.textures)
	}
	want := []int32{0, 1, 1}
	for i, m := range d.matIndex {
		if m != want[i] {
			t.Errorf("material index %d is %d, expected %d", i, m, want[i])
		}
	}
	if d.uv[1] != [2]float32{1, 0} {
		t.Errorf("uv[1] = %v", d.uv[1])
	}

	// An unbound slot must not produce a texture bind.
	tr.draws = nil
	b2 := NewTexturedTriangleBatch(target)
	b2.BindMaterial(0, 7)
	b2.Add([2]float32{0, 0}, RGBA{A: 1}, [2]float32{}, 0)
	b2.Add([2]float32{1, 0}, RGBA{A: 1}, [2]float32{}, 0)
	b2.Add([2]float32{0, 1}, RGBA{A: 1}, [2]float32{}, 0)
	b2.Flush()
	if _, ok := tr.draws[0].textures[1]; ok {
		t.Errorf("unbound material slot 1 was bound anyway")
	}
}
