// pkg/renderer/commandbuffer_test.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	gomath "math"
	"testing"
)

func TestCommandBufferBuffers(t *testing.T) {
	var cb CommandBuffer

	p := [][2]float32{{1, 2}, {3, 4}, {5, 6}}
	offset := cb.Float2Buffer(p)

	// The word before the values holds the value count.
	if n := cb.Buf[offset/4-1]; n != 6 {
		t.Errorf("length word is %d, expected 6", n)
	}
	for i := 0; i < 6; i++ {
		got := gomath.Float32frombits(cb.Buf[offset/4+i])
		if got != float32(i+1) {
			t.Errorf("value %d is %v, expected %v", i, got, i+1)
		}
	}

	// A second buffer lands after the first with its own length word.
	mats := []int32{0, 1, 1, 0}
	offset2 := cb.Int32Buffer(mats)
	if offset2 <= offset {
		t.Errorf("second buffer offset %d not after first %d", offset2, offset)
	}
	for i, m := range mats {
		if got := int32(cb.Buf[offset2/4+i]); got != m {
			t.Errorf("int value %d is %d, expected %d", i, got, m)
		}
	}

	cb.Reset()
	if len(cb.Buf) != 0 {
		t.Errorf("reset left %d words", len(cb.Buf))
	}
}

func TestCommandBufferGrow(t *testing.T) {
	var cb CommandBuffer

	// Force multiple growths and check nothing is corrupted.
	var offsets []int
	for i := 0; i < 100; i++ {
		buf := make([]float32, 100)
		for j := range buf {
			buf[j] = float32(i)
		}
		offsets = append(offsets, cb.FloatBuffer(buf))
	}
	for i, offset := range offsets {
		for j := 0; j < 100; j++ {
			if got := gomath.Float32frombits(cb.Buf[offset/4+j]); got != float32(i) {
				t.Fatalf("buffer %d value %d corrupted: %v", i, j, got)
			}
		}
	}
}

func TestCommandBufferPool(t *testing.T) {
	cb := GetCommandBuffer()
	cb.Blend()
	ReturnCommandBuffer(cb)

	cb2 := GetCommandBuffer()
	if len(cb2.Buf) != 0 {
		t.Errorf("pooled command buffer not reset")
	}
	ReturnCommandBuffer(cb2)
}

func TestProjectionMatrixRoundTrip(t *testing.T) {
	var cb CommandBuffer
	var m [16]float32
	for i := range m {
		m[i] = float32(i) / 2
	}
	cb.UseProgram(ProgramLines)
	cb.LoadProjectionMatrix(m)

	if cb.Buf[0] != RendererUseProgram || ProgramKind(cb.Buf[1]) != ProgramLines {
		t.Errorf("UseProgram encoded as %v", cb.Buf[:2])
	}
	if cb.Buf[2] != RendererLoadProjectionMatrix {
		t.Fatalf("expected LoadProjectionMatrix, got %d", cb.Buf[2])
	}
	for i := 0; i < 16; i++ {
		if got := gomath.Float32frombits(cb.Buf[3+i]); got != m[i] {
			t.Errorf("matrix element %d is %v, expected %v", i, got, m[i])
		}
	}
}
