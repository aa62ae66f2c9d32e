// pkg/math/math_test.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestCirclePoints(t *testing.T) {
	for _, nsegs := range []int{3, 8, 16, 100} {
		pts := CirclePoints(nsegs)
		if len(pts) != nsegs {
			t.Errorf("requested %d segments, got %d points", nsegs, len(pts))
		}
		for i, p := range pts {
			if l := Length2f(p); Abs(l-1) > 1e-5 {
				t.Errorf("point %d of %d-segment circle has length %g, expected 1", i, nsegs, l)
			}
		}
		// The first vertex is always on the +x axis.
		if pts[0][0] != 1 || Abs(pts[0][1]) > 1e-6 {
			t.Errorf("first circle point %v is not (1, 0)", pts[0])
		}
	}
}

func TestExtent2DFromPoints(t *testing.T) {
	e := Extent2DFromPoints([][2]float32{{1, 2}, {-3, 4}, {2, -1}})
	if e.P0 != [2]float32{-3, -1} || e.P1 != [2]float32{2, 4} {
		t.Errorf("got extent %+v", e)
	}
	if e.Width() != 5 || e.Height() != 5 {
		t.Errorf("got width %g height %g, expected 5 and 5", e.Width(), e.Height())
	}
	if !e.Inside([2]float32{0, 0}) {
		t.Errorf("origin reported outside %+v", e)
	}
	if e.Inside([2]float32{10, 0}) {
		t.Errorf("(10,0) reported inside %+v", e)
	}
}

func TestTransform(t *testing.T) {
	// Rotation by 90 degrees about the origin, then translation by (1, 2).
	xf := MakeTransform([2]float32{1, 2}, Radians(90))

	p := xf.Apply([2]float32{1, 0})
	if Distance2f(p, [2]float32{1, 3}) > 1e-5 {
		t.Errorf("got %v, expected (1, 3)", p)
	}

	x, y := xf.Q.XAxis(), xf.Q.YAxis()
	if Abs(Dot(x, y)) > 1e-5 {
		t.Errorf("axes not orthogonal: %v %v", x, y)
	}
	if Distance2f(x, [2]float32{0, 1}) > 1e-5 {
		t.Errorf("x axis %v, expected (0, 1)", x)
	}
}

func TestVec2Basics(t *testing.T) {
	a, b := [2]float32{1, 2}, [2]float32{3, -4}
	if Add2f(a, b) != [2]float32{4, -2} {
		t.Errorf("Add2f: %v", Add2f(a, b))
	}
	if Sub2f(a, b) != [2]float32{-2, 6} {
		t.Errorf("Sub2f: %v", Sub2f(a, b))
	}
	if Scale2f(a, 3) != [2]float32{3, 6} {
		t.Errorf("Scale2f: %v", Scale2f(a, 3))
	}
	if Length2f(b) != 5 {
		t.Errorf("Length2f: %g", Length2f(b))
	}
	if n := Normalize2f([2]float32{0, 0}); n != [2]float32{0, 0} {
		t.Errorf("Normalize2f of zero vector: %v", n)
	}
}
