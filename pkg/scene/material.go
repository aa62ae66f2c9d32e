// pkg/scene/material.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/svqa/simviz/pkg/renderer"
	"github.com/svqa/simviz/pkg/util"
)

// Material identifies the physical material of an object; it determines
// both the simulation parameters and which texture slot the object's fill
// samples from.
type Material int

const (
	Metal Material = iota
	Rubber
)

func (m Material) String() string {
	switch m {
	case Metal:
		return "metal"
	case Rubber:
		return "rubber"
	default:
		return fmt.Sprintf("material(%d)", int(m))
	}
}

func (m Material) Density() float32 {
	if m == Metal {
		return 10
	}
	return 5
}

func (m Material) Restitution() float32 {
	if m == Metal {
		return 0.02
	}
	return 0.35
}

// Slot returns the material texture slot the textured triangle program
// multiplexes on: 0 for metal, 1 for rubber.
func (m Material) Slot() int {
	return int(m)
}

func (m Material) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Material) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "metal":
		*m = Metal
	case "rubber":
		*m = Rubber
	default:
		return fmt.Errorf("%s: unknown material", s)
	}
	return nil
}

// TextureCache creates the material textures on first use and keeps their
// handles for the lifetime of the renderer.
type TextureCache struct {
	renderer renderer.Renderer
	ids      map[Material]uint32
}

func NewTextureCache(r renderer.Renderer) *TextureCache {
	return &TextureCache{renderer: r, ids: make(map[Material]uint32)}
}

// Texture returns the GPU texture handle for the material, generating and
// uploading its image on the first call.
func (tc *TextureCache) Texture(m Material) uint32 {
	if id, ok := tc.ids[m]; ok {
		return id
	}
	id := tc.renderer.CreateTextureFromImage(materialImage(m), false)
	tc.ids[m] = id
	return id
}

func (tc *TextureCache) Dispose() {
	for _, m := range util.SortedMapKeys(tc.ids) {
		tc.renderer.DestroyTexture(tc.ids[m])
	}
	tc.ids = make(map[Material]uint32)
}

// materialImage procedurally generates a tileable texture for the
// material: horizontally brushed gray for metal, dark speckle for rubber.
func materialImage(m Material) image.Image {
	const res = 128
	img := image.NewRGBA(image.Rect(0, 0, res, res))

	// A small multiplicative hash gives a deterministic pseudo-random
	// value per texel, so the texture is identical run to run.
	hash := func(x, y uint32) uint32 {
		h := x*374761393 + y*668265263
		h = (h ^ (h >> 13)) * 1274126177
		return h ^ (h >> 16)
	}

	set := func(x, y int, v uint8) {
		i := y*img.Stride + 4*x
		img.Pix[i] = v
		img.Pix[i+1] = v
		img.Pix[i+2] = v
		img.Pix[i+3] = 255
	}

	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			switch m {
			case Metal:
				// Streaks run along x: the row hash carries most of the
				// variation, the texel hash adds fine grain.
				row := 170 + int(hash(0, uint32(y))%60)
				grain := int(hash(uint32(x), uint32(y))%20) - 10
				set(x, y, uint8(min(max(row+grain, 0), 255)))
			case Rubber:
				v := 40 + int(hash(uint32(x), uint32(y))%25)
				set(x, y, uint8(v))
			}
		}
	}
	return img
}
