// pkg/math/geom.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D represents a 2D bounding box with the two vertices at its
// opposite minimum and maximum corners.
type Extent2D struct {
	P0, P1 [2]float32
}

// EmptyExtent2D returns an Extent2D representing an empty bounding box.
func EmptyExtent2D() Extent2D {
	// Degenerate bounds
	return Extent2D{P0: [2]float32{1e30, 1e30}, P1: [2]float32{-1e30, -1e30}}
}

// Extent2DFromPoints returns an Extent2D that bounds all of the provided
// points.
func Extent2DFromPoints(pts [][2]float32) Extent2D {
	e := EmptyExtent2D()
	for _, p := range pts {
		for d := 0; d < 2; d++ {
			if p[d] < e.P0[d] {
				e.P0[d] = p[d]
			}
			if p[d] > e.P1[d] {
				e.P1[d] = p[d]
			}
		}
	}
	return e
}

func (e Extent2D) Width() float32 {
	return e.P1[0] - e.P0[0]
}

func (e Extent2D) Height() float32 {
	return e.P1[1] - e.P0[1]
}

func (e Extent2D) Center() [2]float32 {
	return [2]float32{(e.P0[0] + e.P1[0]) / 2, (e.P0[1] + e.P1[1]) / 2}
}

// Expand expands the extent by the given distance in all directions.
func (e Extent2D) Expand(d float32) Extent2D {
	return Extent2D{
		P0: [2]float32{e.P0[0] - d, e.P0[1] - d},
		P1: [2]float32{e.P1[0] + d, e.P1[1] + d}}
}

func (e Extent2D) Inside(p [2]float32) bool {
	return p[0] >= e.P0[0] && p[0] <= e.P1[0] && p[1] >= e.P0[1] && p[1] <= e.P1[1]
}

// Union returns the Extent2D that encompasses the extent e and the
// provided point p.
func Union(e Extent2D, p [2]float32) Extent2D {
	for d := 0; d < 2; d++ {
		if p[d] < e.P0[d] {
			e.P0[d] = p[d]
		}
		if p[d] > e.P1[d] {
			e.P1[d] = p[d]
		}
	}
	return e
}

///////////////////////////////////////////////////////////////////////////
// Transform

// Rotation is a 2D rotation stored as the sine and cosine of its angle so
// that transforming points doesn't require repeated trigonometry.
type Rotation struct {
	S, C float32
}

func RotationFromAngle(a float32) Rotation {
	return Rotation{S: Sin(a), C: Cos(a)}
}

// XAxis returns the rotated image of the x axis (1,0).
func (r Rotation) XAxis() [2]float32 {
	return [2]float32{r.C, r.S}
}

// YAxis returns the rotated image of the y axis (0,1).
func (r Rotation) YAxis() [2]float32 {
	return [2]float32{-r.S, r.C}
}

// Transform is a rigid-body pose: a rotation followed by a translation.
type Transform struct {
	P [2]float32
	Q Rotation
}

func MakeTransform(p [2]float32, angle float32) Transform {
	return Transform{P: p, Q: RotationFromAngle(angle)}
}

// Apply transforms the point v from the local coordinate space of the pose
// into world space.
func (t Transform) Apply(v [2]float32) [2]float32 {
	return [2]float32{
		t.Q.C*v[0] - t.Q.S*v[1] + t.P[0],
		t.Q.S*v[0] + t.Q.C*v[1] + t.P[1]}
}

///////////////////////////////////////////////////////////////////////////
// Circle tessellation

var (
	// So that we can efficiently draw circles with various tessellations,
	// circlePoints caches vertex positions of a unit circle at the origin
	// for specified tessellation rates.
	circlePoints map[int][][2]float32
)

// CirclePoints returns the vertices for a unit circle at the origin
// with the given number of segments; it creates the vertex slice if this
// tessellation rate hasn't been seen before and otherwise returns a
// preexisting one.
func CirclePoints(nsegs int) [][2]float32 {
	if circlePoints == nil {
		circlePoints = make(map[int][][2]float32)
	}
	if _, ok := circlePoints[nsegs]; !ok {
		// Evaluate the vertices of the circle to initialize a new slice.
		var pts [][2]float32
		for d := 0; d < nsegs; d++ {
			angle := Radians(float32(d) / float32(nsegs) * 360)
			pt := [2]float32{Cos(angle), Sin(angle)}
			pts = append(pts, pt)
		}
		circlePoints[nsegs] = pts
	}

	// One way or another, it's now available in the map.
	return circlePoints[nsegs]
}
