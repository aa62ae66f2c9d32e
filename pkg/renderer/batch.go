// pkg/renderer/batch.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

// The batches accumulate primitives on the CPU and submit them to the
// Renderer in a single draw each when flushed. Adding a vertex to a full
// batch flushes it first, so callers never see an overflow; the tradeoff
// is that primitives from different batch kinds are only ordered between
// kinds by the per-kind depth biases, not by submission time.

const (
	PointBatchCapacity    = 512
	LineBatchCapacity     = 2 * 512
	TriangleBatchCapacity = 3 * 512
)

// Depth biases establish the stacking order of the batch kinds: triangles
// under lines under points.
const (
	pointsDepthBias    float32 = 0.0
	linesDepthBias     float32 = 0.1
	trianglesDepthBias float32 = 0.2
)

// batchTarget is shared by all batches of a SceneRenderer: the backend
// and camera to submit against, plus the statistics accumulated over the
// current frame.
type batchTarget struct {
	renderer Renderer
	camera   Camera
	stats    RendererStats
}

func (bt *batchTarget) submit(cb *CommandBuffer) {
	bt.stats.Merge(bt.renderer.RenderCommandBuffer(cb))
}

// PointBatch accumulates colored, sized points.
type PointBatch struct {
	target *batchTarget
	cb     CommandBuffer
	p      [][2]float32
	color  []RGBA
	size   []float32
}

func NewPointBatch(t *batchTarget) *PointBatch {
	return &PointBatch{
		target: t,
		p:      make([][2]float32, 0, PointBatchCapacity),
		color:  make([]RGBA, 0, PointBatchCapacity),
		size:   make([]float32, 0, PointBatchCapacity),
	}
}

func (b *PointBatch) Add(p [2]float32, color RGBA, size float32) {
	if len(b.p) == PointBatchCapacity {
		b.Flush()
	}
	b.p = append(b.p, p)
	b.color = append(b.color, color)
	b.size = append(b.size, size)
}

func (b *PointBatch) Len() int { return len(b.p) }

func (b *PointBatch) Flush() {
	if len(b.p) == 0 {
		return
	}

	cb := &b.cb
	cb.Reset()
	cb.UseProgram(ProgramPoints)
	cb.LoadProjectionMatrix(b.target.camera.ProjectionMatrix(pointsDepthBias))

	pos := cb.Float2Buffer(b.p)
	cb.VertexArray(pos, 2, 2*4)
	col := cb.RGBABuffer(b.color)
	cb.ColorArray(col, 4, 4*4)
	sz := cb.FloatBuffer(b.size)
	cb.PointSizeArray(sz, 4)

	cb.DrawPoints(len(b.p))
	cb.DisableVertexArrays()

	b.target.submit(cb)

	b.p = b.p[:0]
	b.color = b.color[:0]
	b.size = b.size[:0]
}

// LineBatch accumulates colored line segments, two vertices per segment.
type LineBatch struct {
	target *batchTarget
	cb     CommandBuffer
	p      [][2]float32
	color  []RGBA
}

func NewLineBatch(t *batchTarget) *LineBatch {
	return &LineBatch{
		target: t,
		p:      make([][2]float32, 0, LineBatchCapacity),
		color:  make([]RGBA, 0, LineBatchCapacity),
	}
}

func (b *LineBatch) Add(p [2]float32, color RGBA) {
	if len(b.p) == LineBatchCapacity {
		b.Flush()
	}
	b.p = append(b.p, p)
	b.color = append(b.color, color)
}

// AddSegment adds both endpoints of a segment. Flushing between the two
// Adds would split the segment, so it checks capacity for the pair.
func (b *LineBatch) AddSegment(p0, p1 [2]float32, color RGBA) {
	if len(b.p)+2 > LineBatchCapacity {
		b.Flush()
	}
	b.p = append(b.p, p0, p1)
	b.color = append(b.color, color, color)
}

func (b *LineBatch) Len() int { return len(b.p) }

func (b *LineBatch) Flush() {
	if len(b.p) == 0 {
		return
	}

	cb := &b.cb
	cb.Reset()
	cb.UseProgram(ProgramLines)
	cb.LoadProjectionMatrix(b.target.camera.ProjectionMatrix(linesDepthBias))

	pos := cb.Float2Buffer(b.p)
	cb.VertexArray(pos, 2, 2*4)
	col := cb.RGBABuffer(b.color)
	cb.ColorArray(col, 4, 4*4)

	cb.DrawLines(len(b.p))
	cb.DisableVertexArrays()

	b.target.submit(cb)

	b.p = b.p[:0]
	b.color = b.color[:0]
}

// TriangleBatch abstracts the filled triangle batch so that the plain and
// textured variants can be selected when the SceneRenderer is configured.
// The plain variant ignores the texture coordinate and material arguments.
type TriangleBatch interface {
	Add(p [2]float32, color RGBA, uv [2]float32, slot int)
	BindMaterial(slot int, texid uint32)
	Len() int
	Flush()
}

type plainTriangleBatch struct {
	target *batchTarget
	cb     CommandBuffer
	p      [][2]float32
	color  []RGBA
}

func NewTriangleBatch(t *batchTarget) TriangleBatch {
	return &plainTriangleBatch{
		target: t,
		p:      make([][2]float32, 0, TriangleBatchCapacity),
		color:  make([]RGBA, 0, TriangleBatchCapacity),
	}
}

func (b *plainTriangleBatch) Add(p [2]float32, color RGBA, uv [2]float32, slot int) {
	if len(b.p) == TriangleBatchCapacity {
		b.Flush()
	}
	b.p = append(b.p, p)
	b.color = append(b.color, color)
}

func (b *plainTriangleBatch) BindMaterial(slot int, texid uint32) {}

func (b *plainTriangleBatch) Len() int { return len(b.p) }

func (b *plainTriangleBatch) Flush() {
	if len(b.p) == 0 {
		return
	}

	cb := &b.cb
	cb.Reset()
	cb.UseProgram(ProgramTriangles)
	cb.LoadProjectionMatrix(b.target.camera.ProjectionMatrix(trianglesDepthBias))

	pos := cb.Float2Buffer(b.p)
	cb.VertexArray(pos, 2, 2*4)
	col := cb.RGBABuffer(b.color)
	cb.ColorArray(col, 4, 4*4)

	cb.Blend()
	cb.DrawTriangles(len(b.p))
	cb.DisableBlend()
	cb.DisableVertexArrays()

	b.target.submit(cb)

	b.p = b.p[:0]
	b.color = b.color[:0]
}

type texturedTriangleBatch struct {
	target   *batchTarget
	cb       CommandBuffer
	p        [][2]float32
	color    []RGBA
	uv       [][2]float32
	matIndex []int32

	// Texture handles per material slot; zero means not bound.
	textures [NumMaterialSlots]uint32
}

func NewTexturedTriangleBatch(t *batchTarget) TriangleBatch {
	return &texturedTriangleBatch{
		target:   t,
		p:        make([][2]float32, 0, TriangleBatchCapacity),
		color:    make([]RGBA, 0, TriangleBatchCapacity),
		uv:       make([][2]float32, 0, TriangleBatchCapacity),
		matIndex: make([]int32, 0, TriangleBatchCapacity),
	}
}

func (b *texturedTriangleBatch) Add(p [2]float32, color RGBA, uv [2]float32, slot int) {
	if len(b.p) == TriangleBatchCapacity {
		b.Flush()
	}
	b.p = append(b.p, p)
	b.color = append(b.color, color)
	b.uv = append(b.uv, uv)
	b.matIndex = append(b.matIndex, int32(slot))
}

// BindMaterial associates a texture with a material slot for subsequent
// flushes. The binding persists across flushes since the material set is
// small and fixed.
func (b *texturedTriangleBatch) BindMaterial(slot int, texid uint32) {
	if slot >= 0 && slot < NumMaterialSlots {
		b.textures[slot] = texid
	}
}

func (b *texturedTriangleBatch) Len() int { return len(b.p) }

func (b *texturedTriangleBatch) Flush() {
	if len(b.p) == 0 {
		return
	}

	cb := &b.cb
	cb.Reset()
	cb.UseProgram(ProgramTexturedTriangles)
	cb.LoadProjectionMatrix(b.target.camera.ProjectionMatrix(trianglesDepthBias))

	pos := cb.Float2Buffer(b.p)
	cb.VertexArray(pos, 2, 2*4)
	col := cb.RGBABuffer(b.color)
	cb.ColorArray(col, 4, 4*4)
	uv := cb.Float2Buffer(b.uv)
	cb.TexCoordArray(uv, 2, 2*4)
	mat := cb.Int32Buffer(b.matIndex)
	cb.MaterialIndexArray(mat, 4)

	for slot, texid := range b.textures {
		if texid != 0 {
			cb.BindMaterialTexture(slot, texid)
		}
	}

	cb.Blend()
	cb.DrawTriangles(len(b.p))
	cb.DisableBlend()
	cb.DisableVertexArrays()

	b.target.submit(cb)

	b.p = b.p[:0]
	b.color = b.color[:0]
	b.uv = b.uv[:0]
	b.matIndex = b.matIndex[:0]
}
