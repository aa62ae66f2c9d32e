// pkg/scene/scene.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/svqa/simviz/pkg/math"
	"github.com/svqa/simviz/pkg/renderer"
	"github.com/svqa/simviz/pkg/util"
)

// Shape selects the geometry of an object.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeBox
	ShapePolygon
)

var shapeNames = map[Shape]string{
	ShapeCircle:  "circle",
	ShapeBox:     "box",
	ShapePolygon: "polygon",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

func (s Shape) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Shape) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for sh, n := range shapeNames {
		if n == name {
			*s = sh
			return nil
		}
	}
	return fmt.Errorf("%s: unknown shape", name)
}

// ObjectState is one rigid body's pose, motion, and appearance at an
// instant. Vertices are in local space, counterclockwise and convex;
// HalfExtents applies to boxes and Radius to circles.
type ObjectState struct {
	ID              int           `json:"id"`
	Shape           Shape         `json:"shape"`
	Position        [2]float32    `json:"position"`
	Angle           float32       `json:"angle"`
	LinearVelocity  [2]float32    `json:"linearVelocity"`
	AngularVelocity float32       `json:"angularVelocity"`
	Radius          float32       `json:"radius,omitempty"`
	HalfExtents     [2]float32    `json:"halfExtents"`
	Vertices        [][2]float32  `json:"vertices,omitempty"`
	Material        Material      `json:"material"`
	Color           renderer.RGBA `json:"color"`
	Static          bool          `json:"static,omitempty"`
}

// Transform returns the object's local-to-world transform.
func (o *ObjectState) Transform() math.Transform {
	return math.MakeTransform(o.Position, o.Angle)
}

// worldVertices returns the shape's outline in world space; for circles it
// returns nil.
func (o *ObjectState) worldVertices() [][2]float32 {
	xf := o.Transform()
	var local [][2]float32
	switch o.Shape {
	case ShapeBox:
		hx, hy := o.HalfExtents[0], o.HalfExtents[1]
		local = [][2]float32{{-hx, -hy}, {hx, -hy}, {hx, hy}, {-hx, hy}}
	case ShapePolygon:
		local = o.Vertices
	default:
		return nil
	}
	return util.MapSlice(local, xf.Apply)
}

// AABB returns the object's world-space bounding box.
func (o *ObjectState) AABB() math.Extent2D {
	if o.Shape == ShapeCircle {
		return math.Extent2D{
			P0: [2]float32{o.Position[0] - o.Radius, o.Position[1] - o.Radius},
			P1: [2]float32{o.Position[0] + o.Radius, o.Position[1] + o.Radius},
		}
	}
	return math.Extent2DFromPoints(o.worldVertices())
}

// SceneState is the complete drawable state of the simulation at one
// frame.
type SceneState struct {
	Objects []ObjectState `json:"objects"`
}

func LoadSceneState(path string) (*SceneState, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s SceneState
	if err := util.UnmarshalJSON(b, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

func (s *SceneState) Save(path string) error {
	b, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Draw renders every object through the SceneRenderer. With a non-nil
// TextureCache fills are textured by material; otherwise they are flat
// colored. In the renderer's debug mode each object additionally gets its
// body frame, bounding box, and velocity drawn.
func (s *SceneState) Draw(sr *renderer.SceneRenderer, textures *TextureCache) {
	for i := range s.Objects {
		o := &s.Objects[i]
		xf := o.Transform()

		switch o.Shape {
		case ShapeCircle:
			if textures != nil {
				sr.DrawTexturedCircle(o.Position, o.Radius, xf.Q.XAxis(), o.Color,
					textures.Texture(o.Material), o.Material.Slot())
			} else {
				sr.DrawSolidCircle(o.Position, o.Radius, xf.Q.XAxis(), o.Color)
			}

		case ShapeBox, ShapePolygon:
			world := o.worldVertices()
			if textures != nil {
				uvs := make([][2]float32, len(world))
				for j, w := range world {
					uvs[j] = math.Scale2f(w, 1/float32(renderer.TextureTileEdge))
				}
				sr.DrawTexturedPolygon(world, uvs, o.Color,
					textures.Texture(o.Material), o.Material.Slot())
			} else {
				sr.DrawSolidPolygon(world, o.Color)
			}
		}

		if sr.DebugMode() {
			sr.DrawTransform(xf)
			sr.DrawAABB(o.AABB(), renderer.RGBA{R: 0.9, G: 0.3, B: 0.9, A: 1})
			sr.DrawPoint(o.Position, 4, renderer.RGBA{R: 1, G: 1, B: 1, A: 1})
			if o.LinearVelocity != ([2]float32{}) {
				tip := math.Add2f(o.Position, o.LinearVelocity)
				sr.DrawSegment(o.Position, tip, renderer.RGBA{R: 1, G: 1, B: 0, A: 1})
			}
		}
	}
}

// Step advances the scene with a minimal ballistic integrator: gravity,
// velocity integration, and an elastic bounce against the ground plane at
// y=0 using the material restitution. It stands in for a real physics
// engine so recordings and the demo have motion in them.
func (s *SceneState) Step(dt float32) {
	const gravity = -10

	for i := range s.Objects {
		o := &s.Objects[i]
		if o.Static {
			continue
		}

		o.LinearVelocity[1] += gravity * dt
		o.Position[0] += o.LinearVelocity[0] * dt
		o.Position[1] += o.LinearVelocity[1] * dt
		o.Angle += o.AngularVelocity * dt

		if bottom := o.AABB().P0[1]; bottom < 0 && o.LinearVelocity[1] < 0 {
			o.Position[1] -= bottom
			o.LinearVelocity[1] = -o.LinearVelocity[1] * o.Material.Restitution()
		}
	}
}
