// pkg/renderer/ogl33.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"image"
	"image/draw"
	gomath "math"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/svqa/simviz/pkg/log"
	"github.com/svqa/simviz/pkg/util"
)

var lg *log.Logger

// Vertex attribute locations; all shader programs use the same layout.
// Location 2 carries the point size for the points program and the texture
// coordinate for the textured triangle program; the two are never bound at
// the same time.
const (
	attribPosition      = 0
	attribColor         = 1
	attribPointSize     = 2
	attribTexCoord      = 2
	attribMaterialIndex = 3
)

// NumMaterialSlots is how many material textures the textured triangle
// program multiplexes between with per-vertex indices.
const NumMaterialSlots = 2

type glProgram struct {
	id               uint32
	projectionMatrix int32
	materialTextures [NumMaterialSlots]int32
}

type OpenGL33Renderer struct {
	lg *log.Logger

	createdTextures map[uint32]int

	programs map[ProgramKind]*glProgram
	current  *glProgram

	vao uint32
	vbo struct {
		position      uint32
		color         uint32
		pointSize     uint32
		uv            uint32
		materialIndex uint32
	}

	enabledArrays [4]bool
	disposed      bool
}

// NewOpenGL33Renderer creates an OpenGL 3.3 core context and compiles the
// shader programs: points, lines, and one of the two triangle variants,
// chosen by textured.
func NewOpenGL33Renderer(textured bool, l *log.Logger) (Renderer, error) {
	lg = l
	l.Info("Starting OpenGL33Renderer initialization")
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	vendor := gl.GoStr(gl.GetString(gl.VENDOR))
	rend := gl.GoStr(gl.GetString(gl.RENDERER))
	l.Infof("OpenGL vendor %s renderer %s", vendor, rend)

	ogl := &OpenGL33Renderer{
		lg:              l,
		createdTextures: make(map[uint32]int),
		programs:        make(map[ProgramKind]*glProgram),
	}

	sources := map[ProgramKind][2]string{
		ProgramPoints: {pointsVertexShader, flatFragmentShader},
		ProgramLines:  {linesVertexShader, flatFragmentShader},
	}
	if textured {
		sources[ProgramTexturedTriangles] = [2]string{texturedVertexShader, texturedFragmentShader}
	} else {
		sources[ProgramTriangles] = [2]string{linesVertexShader, flatFragmentShader}
	}

	for kind, src := range sources {
		id, err := newProgram(src[0], src[1])
		if err != nil {
			return nil, fmt.Errorf("%s program: %w", kind, err)
		}
		p := &glProgram{id: id}
		p.projectionMatrix = gl.GetUniformLocation(id, gl.Str("projectionMatrix\x00"))
		if kind == ProgramTexturedTriangles {
			p.materialTextures[0] = gl.GetUniformLocation(id, gl.Str("materialTexture0\x00"))
			p.materialTextures[1] = gl.GetUniformLocation(id, gl.Str("materialTexture1\x00"))
		}
		ogl.programs[kind] = p
	}

	ogl.glCheck()

	gl.GenVertexArrays(1, &ogl.vao)
	gl.BindVertexArray(ogl.vao)
	gl.GenBuffers(1, &ogl.vbo.position)
	gl.GenBuffers(1, &ogl.vbo.color)
	gl.GenBuffers(1, &ogl.vbo.pointSize)
	gl.GenBuffers(1, &ogl.vbo.uv)
	gl.GenBuffers(1, &ogl.vbo.materialIndex)

	ogl.glCheck()

	l.Info("Finished OpenGL33Renderer initialization")
	return ogl, nil
}

// glCheck treats any pending GL error as fatal; errors here indicate a bug
// in command encoding or execution, not a runtime condition to recover
// from.
func (ogl *OpenGL33Renderer) glCheck() {
	if err := gl.GetError(); err != gl.NO_ERROR {
		frame := log.Callstack(nil)[0]
		panic(fmt.Sprintf("%s:%d: GL Error %x", frame.File, frame.Line, err))
	}
}

func (ogl *OpenGL33Renderer) Dispose() {
	if ogl.disposed {
		return
	}
	ogl.disposed = true

	for texid := range ogl.createdTextures {
		gl.DeleteTextures(1, &texid)
	}
	for _, p := range ogl.programs {
		gl.DeleteProgram(p.id)
	}
	gl.DeleteVertexArrays(1, &ogl.vao)
	gl.DeleteBuffers(1, &ogl.vbo.position)
	gl.DeleteBuffers(1, &ogl.vbo.color)
	gl.DeleteBuffers(1, &ogl.vbo.pointSize)
	gl.DeleteBuffers(1, &ogl.vbo.uv)
	gl.DeleteBuffers(1, &ogl.vbo.materialIndex)
}

func (ogl *OpenGL33Renderer) createdTexture(texid uint32, bytes int) {
	_, exists := ogl.createdTextures[texid]

	ogl.createdTextures[texid] = bytes

	reduce := func(id uint32, bytes int, total int) int { return total + bytes }
	total := util.ReduceMap[uint32, int, int](ogl.createdTextures, reduce, 0)
	mb := float32(total) / (1024 * 1024)

	if exists {
		ogl.lg.Infof("Updated tex id %d: %d bytes -> %.2f MiB of textures total", texid, bytes, mb)
	} else {
		ogl.lg.Infof("Created tex id %d: %d bytes -> %.2f MiB of textures total", texid, bytes, mb)
	}
}

func (ogl *OpenGL33Renderer) CreateTextureFromImage(img image.Image, magNearest bool) uint32 {
	var texid uint32
	gl.GenTextures(1, &texid)
	ogl.UpdateTextureFromImage(texid, img, magNearest)
	return texid
}

func (ogl *OpenGL33Renderer) UpdateTextureFromImage(texid uint32, img image.Image, magNearest bool) {
	var lastTexture int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &lastTexture)

	gl.BindTexture(gl.TEXTURE_2D, texid)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	magFilter := int32(gl.LINEAR)
	if magNearest {
		magFilter = gl.NEAREST
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	ny, nx := img.Bounds().Dy(), img.Bounds().Dx()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, nx, ny))
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(nx), int32(ny), 0, gl.RGBA,
		gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba.Pix[0]))

	gl.BindTexture(gl.TEXTURE_2D, uint32(lastTexture))
	ogl.glCheck()

	ogl.createdTexture(texid, 4*nx*ny)
}

func (ogl *OpenGL33Renderer) DestroyTexture(texid uint32) {
	gl.DeleteTextures(1, &texid)
	delete(ogl.createdTextures, texid)
}

func (ogl *OpenGL33Renderer) ReadPixelRGBAs(x, y, w, h int) []uint8 {
	px := make([]uint8, 4*w*h)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(x), int32(y), int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE,
		unsafe.Pointer(&px[0]))
	ogl.glCheck()
	return px
}

func (ogl *OpenGL33Renderer) enableArray(index uint32) {
	gl.EnableVertexAttribArray(index)
	ogl.enabledArrays[index] = true
}

func (ogl *OpenGL33Renderer) RenderCommandBuffer(cb *CommandBuffer) RendererStats {
	var stats RendererStats
	stats.nBuffers++
	stats.bufferBytes += 4 * len(cb.Buf)

	i := 0
	ui32 := func() uint32 {
		v := cb.Buf[i]
		i++
		return v
	}
	i32 := func() int32 {
		return int32(ui32())
	}
	float := func() float32 {
		return gomath.Float32frombits(ui32())
	}
	// Buffer commands store the value count immediately before the values,
	// so the byte size of an array bound by offset is recoverable.
	bufBytes := func(offset uint32) int {
		return 4 * int(cb.Buf[offset/4-1])
	}

	for i < len(cb.Buf) {
		ogl.glCheck()

		cmd := cb.Buf[i]
		i++
		switch cmd {
		case RendererUseProgram:
			kind := ProgramKind(i32())
			p, ok := ogl.programs[kind]
			if !ok {
				panic(fmt.Sprintf("%s: program not compiled for this configuration", kind))
			}
			gl.UseProgram(p.id)
			ogl.current = p

		case RendererLoadProjectionMatrix:
			ptr := unsafe.Pointer(&cb.Buf[i])
			gl.UniformMatrix4fv(ogl.current.projectionMatrix, 1, false, (*float32)(ptr))
			i += 16

		case RendererClearRGBA:
			r := float()
			g := float()
			b := float()
			a := float()
			gl.ClearColor(r, g, b, a)
			gl.Clear(gl.COLOR_BUFFER_BIT)

		case RendererViewport:
			x := i32()
			y := i32()
			w := i32()
			h := i32()
			gl.Viewport(x, y, w, h)

		case RendererBlend:
			gl.Enable(gl.BLEND)
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

		case RendererDisableBlend:
			gl.Disable(gl.BLEND)

		case RendererFloatBuffer, RendererIntBuffer:
			// Skip ahead; the values are bound via array commands.
			i += int(i32())

		case RendererVertexArray:
			offset := ui32()
			nc := i32()
			stride := i32()

			ptr := unsafe.Add(unsafe.Pointer(&cb.Buf[0]), offset)

			gl.BindBuffer(gl.ARRAY_BUFFER, ogl.vbo.position)
			gl.BufferData(gl.ARRAY_BUFFER, bufBytes(offset), ptr, gl.DYNAMIC_DRAW)

			ogl.enableArray(attribPosition)
			gl.VertexAttribPointer(attribPosition, nc, gl.FLOAT, false, stride, nil)

		case RendererColorArray:
			offset := ui32()
			nc := i32()
			stride := i32()

			ptr := unsafe.Add(unsafe.Pointer(&cb.Buf[0]), offset)

			gl.BindBuffer(gl.ARRAY_BUFFER, ogl.vbo.color)
			gl.BufferData(gl.ARRAY_BUFFER, bufBytes(offset), ptr, gl.DYNAMIC_DRAW)

			ogl.enableArray(attribColor)
			gl.VertexAttribPointer(attribColor, nc, gl.FLOAT, false, stride, nil)

		case RendererPointSizeArray:
			offset := ui32()
			stride := i32()

			ptr := unsafe.Add(unsafe.Pointer(&cb.Buf[0]), offset)

			gl.BindBuffer(gl.ARRAY_BUFFER, ogl.vbo.pointSize)
			gl.BufferData(gl.ARRAY_BUFFER, bufBytes(offset), ptr, gl.DYNAMIC_DRAW)

			ogl.enableArray(attribPointSize)
			gl.VertexAttribPointer(attribPointSize, 1, gl.FLOAT, false, stride, nil)

		case RendererTexCoordArray:
			offset := ui32()
			nc := i32()
			stride := i32()

			ptr := unsafe.Add(unsafe.Pointer(&cb.Buf[0]), offset)

			gl.BindBuffer(gl.ARRAY_BUFFER, ogl.vbo.uv)
			gl.BufferData(gl.ARRAY_BUFFER, bufBytes(offset), ptr, gl.DYNAMIC_DRAW)

			ogl.enableArray(attribTexCoord)
			gl.VertexAttribPointer(attribTexCoord, nc, gl.FLOAT, false, stride, nil)

		case RendererMaterialIndexArray:
			offset := ui32()
			stride := i32()

			ptr := unsafe.Add(unsafe.Pointer(&cb.Buf[0]), offset)

			gl.BindBuffer(gl.ARRAY_BUFFER, ogl.vbo.materialIndex)
			gl.BufferData(gl.ARRAY_BUFFER, bufBytes(offset), ptr, gl.DYNAMIC_DRAW)

			ogl.enableArray(attribMaterialIndex)
			gl.VertexAttribIPointer(attribMaterialIndex, 1, gl.INT, stride, nil)

		case RendererBindMaterialTexture:
			slot := i32()
			texid := ui32()
			gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
			gl.BindTexture(gl.TEXTURE_2D, texid)
			gl.Uniform1i(ogl.current.materialTextures[slot], slot)

		case RendererDrawPoints:
			count := i32()

			gl.Enable(gl.PROGRAM_POINT_SIZE)
			gl.DrawArrays(gl.POINTS, 0, count)
			gl.Disable(gl.PROGRAM_POINT_SIZE)

			stats.nDrawCalls++
			stats.nPoints += int(count)

		case RendererDrawLines:
			count := i32()

			gl.DrawArrays(gl.LINES, 0, count)

			stats.nDrawCalls++
			stats.nLines += int(count / 2)

		case RendererDrawTriangles:
			count := i32()

			gl.DrawArrays(gl.TRIANGLES, 0, count)

			stats.nDrawCalls++
			stats.nTriangles += int(count / 3)

		case RendererDisableVertexArrays:
			for idx, on := range ogl.enabledArrays {
				if on {
					gl.DisableVertexAttribArray(uint32(idx))
					ogl.enabledArrays[idx] = false
				}
			}

		default:
			ogl.lg.Error("unhandled command")
		}
	}

	ogl.glCheck()

	return stats
}

// https://github.com/go-gl/example/blob/master/gl41core-cube/cube.go
func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}

	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()

	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))

		return 0, fmt.Errorf("failed to link program: %v", infoLog)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))

		return 0, fmt.Errorf("failed to compile %v: %v", source, infoLog)
	}

	return shader, nil
}
