// pkg/renderer/commandbuffer.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	gomath "math"
	"sync"
	"unsafe"
)

// The command buffer stores a series of rendering commands, represented by
// the following values. Each one is followed in the buffer by a number of
// command arguments, after which the next command follows. Comments after
// each command briefly describe its arguments.
//
// Vertex attribute buffers (positions, colors, point sizes, texture
// coordinates, material indices) are stored directly in the CommandBuffer,
// following RendererFloatBuffer and RendererIntBuffer commands; the first
// argument after those commands is the length of the buffer and then its
// values follow directly. Array binding commands like RendererVertexArray
// are then directed to those buffers via integer parameters that encode the
// byte offset from the start of the command buffer where a buffer begins.
// (Note that this implies that one CommandBuffer cannot refer to a vertex
// buffer in another CommandBuffer.)
//
// Draw commands take only a vertex count: vertices are consumed in the
// order they were appended to the bound arrays, which is what guarantees
// that primitives within a batch appear in submission order.

const (
	RendererUseProgram           = iota // 1 int32: ProgramKind
	RendererLoadProjectionMatrix        // 16 float32: column-major matrix
	RendererClearRGBA                   // 4 float32: RGBA
	RendererViewport                    // 4 int32: x, y, width, height
	RendererBlend                       // no args: always src alpha, 1-src alpha
	RendererDisableBlend                // no args
	RendererFloatBuffer                 // int32 size, then size*float32 values
	RendererIntBuffer                   // int32 size, then size*int32 values
	RendererVertexArray                 // byte offset to array values, n components, stride (bytes)
	RendererColorArray                  // byte offset to array values, n components, stride (bytes)
	RendererPointSizeArray              // byte offset to array values, stride (bytes)
	RendererTexCoordArray               // byte offset to array values, n components, stride (bytes)
	RendererMaterialIndexArray          // byte offset to array values, stride (bytes)
	RendererBindMaterialTexture         // 2 int32: material slot, texture handle
	RendererDrawPoints                  // 1 int32: vertex count
	RendererDrawLines                   // 1 int32: vertex count
	RendererDrawTriangles               // 1 int32: vertex count
	RendererDisableVertexArrays         // no args: disables all enabled attribute arrays
)

// ProgramKind selects which of the compiled shader programs a draw command
// runs with.
type ProgramKind int

const (
	ProgramPoints ProgramKind = iota
	ProgramLines
	ProgramTriangles
	ProgramTexturedTriangles
)

func (pk ProgramKind) String() string {
	switch pk {
	case ProgramPoints:
		return "points"
	case ProgramLines:
		return "lines"
	case ProgramTriangles:
		return "triangles"
	case ProgramTexturedTriangles:
		return "textured triangles"
	default:
		return "unknown"
	}
}

// CommandBuffer encodes a sequence of rendering commands in an
// API-agnostic manner. It makes it possible for the batching layer to
// "pre-bake" rendering work into a form that can be efficiently processed
// by a Renderer.
type CommandBuffer struct {
	Buf []uint32
}

// CommandBuffers are managed using a sync.Pool so that their buf slice
// allocations persist across multiple uses.
var commandBufferPool = sync.Pool{New: func() any { return &CommandBuffer{} }}

func GetCommandBuffer() *CommandBuffer {
	return commandBufferPool.Get().(*CommandBuffer)
}

func ReturnCommandBuffer(cb *CommandBuffer) {
	cb.Reset()
	commandBufferPool.Put(cb)
}

// Reset resets the command buffer's length to zero so that it can be
// reused.
func (cb *CommandBuffer) Reset() {
	cb.Buf = cb.Buf[:0]
}

// growFor ensures that at least n more values can be added to the end of
// the buffer without going past its capacity.
func (cb *CommandBuffer) growFor(n int) {
	if len(cb.Buf)+n > cap(cb.Buf) {
		sz := 2 * cap(cb.Buf)
		if sz < 1024 {
			sz = 1024
		}
		if sz < len(cb.Buf)+n {
			sz = 2 * (len(cb.Buf) + n)
		}
		b := make([]uint32, len(cb.Buf), sz)
		copy(b, cb.Buf)
		cb.Buf = b
	}
}

func (cb *CommandBuffer) appendFloats(floats ...float32) {
	for _, f := range floats {
		// Convert each one to a uint32 since that's the type that is
		// actually stored...
		cb.Buf = append(cb.Buf, gomath.Float32bits(f))
	}
}

func (cb *CommandBuffer) appendInts(ints ...int) {
	for _, i := range ints {
		if i != int(uint32(i)) {
			lg.Errorf("%d: attempting to add non-32-bit value to CommandBuffer", i)
		}
		cb.Buf = append(cb.Buf, uint32(i))
	}
}

// UseProgram adds a command to the command buffer that makes the given
// shader program current for subsequent commands.
func (cb *CommandBuffer) UseProgram(kind ProgramKind) {
	cb.appendInts(RendererUseProgram, int(kind))
}

// LoadProjectionMatrix adds a command to the command buffer to set the
// projection matrix uniform of the current program. The matrix is given in
// column-major order.
func (cb *CommandBuffer) LoadProjectionMatrix(m [16]float32) {
	cb.appendInts(RendererLoadProjectionMatrix)
	cb.appendFloats(m[:]...)
}

// ClearRGBA adds a command to the command buffer to clear the framebuffer
// to the specified color.
func (cb *CommandBuffer) ClearRGBA(color RGBA) {
	cb.appendInts(RendererClearRGBA)
	cb.appendFloats(color.R, color.G, color.B, color.A)
}

// Viewport adds a command to the command buffer to set the viewport to the
// specified rectangle.
func (cb *CommandBuffer) Viewport(x, y, w, h int) {
	cb.appendInts(RendererViewport, x, y, w, h)
}

// Blend adds a command to the command buffer to enable blending. The blend
// mode cannot be specified currently, since only one mode (alpha over
// blending) is used.
func (cb *CommandBuffer) Blend() {
	cb.appendInts(RendererBlend)
}

// DisableBlend adds a command to the command buffer that disables
// blending.
func (cb *CommandBuffer) DisableBlend() {
	cb.appendInts(RendererDisableBlend)
}

// Float2Buffer stores the provided slice of [2]float32 values in the
// CommandBuffer and returns the byte offset where the first value of the
// slice is stored; this offset can then be passed to commands like
// VertexArray to specify this array.
func (cb *CommandBuffer) Float2Buffer(buf [][2]float32) int {
	cb.appendInts(RendererFloatBuffer, 2*len(buf))
	offset := 4 * len(cb.Buf)

	n := 2 * len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))

	return offset
}

// FloatBuffer stores the provided slice of float32 values in the command
// buffer and returns the byte offset where the first value of the slice is
// stored.
func (cb *CommandBuffer) FloatBuffer(buf []float32) int {
	cb.appendInts(RendererFloatBuffer, len(buf))
	offset := 4 * len(cb.Buf)

	n := len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))

	return offset
}

// RGBABuffer stores the provided slice of RGBA values in the command
// buffer and returns the byte offset where the first value of the slice is
// stored.
func (cb *CommandBuffer) RGBABuffer(buf []RGBA) int {
	cb.appendInts(RendererFloatBuffer, 4*len(buf))
	offset := 4 * len(cb.Buf)

	n := 4 * len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))

	return offset
}

// Int32Buffer stores the provided slice of int32 values in the command
// buffer and returns the byte offset where the first value of the slice is
// stored.
func (cb *CommandBuffer) Int32Buffer(buf []int32) int {
	cb.appendInts(RendererIntBuffer, len(buf))
	offset := 4 * len(cb.Buf)

	n := len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))

	return offset
}

// VertexArray adds a command to the command buffer that specifies an array
// of vertex positions to use for a subsequent draw command. offset gives
// the offset into the current command buffer where the vertices begin
// (e.g., as returned by Float2Buffer), nComps is the number of components
// per vertex (generally 2 for simviz), and stride gives the stride in
// bytes between vertices (e.g., 8 for densely packed 2D vertex
// coordinates.)
func (cb *CommandBuffer) VertexArray(offset, nComps, stride int) {
	cb.appendInts(RendererVertexArray, offset, nComps, stride)
}

// ColorArray adds a command to the command buffer that specifies an array
// of float32 RGBA colors to use for a subsequent draw command. Its
// arguments are analogous to the ones passed to VertexArray.
func (cb *CommandBuffer) ColorArray(offset, nComps, stride int) {
	cb.appendInts(RendererColorArray, offset, nComps, stride)
}

// PointSizeArray adds a command to the command buffer that specifies an
// array of per-vertex point sizes in pixels; one float32 per vertex.
func (cb *CommandBuffer) PointSizeArray(offset, stride int) {
	cb.appendInts(RendererPointSizeArray, offset, stride)
}

// TexCoordArray adds a command to the command buffer that specifies an
// array of per-vertex texture coordinates. Its arguments are analogous to
// the ones passed to VertexArray.
func (cb *CommandBuffer) TexCoordArray(offset, nComps, stride int) {
	cb.appendInts(RendererTexCoordArray, offset, nComps, stride)
}

// MaterialIndexArray adds a command to the command buffer that specifies
// an array of per-vertex material slot indices; one int32 per vertex.
func (cb *CommandBuffer) MaterialIndexArray(offset, stride int) {
	cb.appendInts(RendererMaterialIndexArray, offset, stride)
}

// BindMaterialTexture adds a command to the command buffer that binds the
// given texture (as returned by Renderer's CreateTextureFromImage) to the
// given material slot of the textured triangle program.
func (cb *CommandBuffer) BindMaterialTexture(slot int, texid uint32) {
	cb.appendInts(RendererBindMaterialTexture, slot, int(texid))
}

// DrawPoints adds a command to the command buffer to draw count points
// from the currently bound vertex arrays, in append order.
func (cb *CommandBuffer) DrawPoints(count int) {
	cb.appendInts(RendererDrawPoints, count)
}

// DrawLines adds a command to the command buffer to draw count/2 lines;
// each line takes two consecutive vertices from the bound arrays.
func (cb *CommandBuffer) DrawLines(count int) {
	cb.appendInts(RendererDrawLines, count)
}

// DrawTriangles adds a command to the command buffer to draw count/3
// triangles; each triangle takes three consecutive vertices from the bound
// arrays.
func (cb *CommandBuffer) DrawTriangles(count int) {
	cb.appendInts(RendererDrawTriangles, count)
}

// DisableVertexArrays adds a command to the command buffer that disables
// all vertex attribute arrays enabled by earlier array commands.
func (cb *CommandBuffer) DisableVertexArrays() {
	cb.appendInts(RendererDisableVertexArrays)
}
