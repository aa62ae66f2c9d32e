// pkg/renderer/rgb.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import "github.com/svqa/simviz/pkg/math"

type RGB struct {
	R, G, B float32
}

type RGBA struct {
	R, G, B, A float32
}

func LerpRGB(x float32, a, b RGB) RGB {
	return RGB{R: math.Lerp(x, a.R, b.R), G: math.Lerp(x, a.G, b.G), B: math.Lerp(x, a.B, b.B)}
}

func (r RGB) Equals(other RGB) bool {
	return r.R == other.R && r.G == other.G && r.B == other.B
}

func (r RGB) Scale(v float32) RGB {
	return RGB{R: r.R * v, G: r.G * v, B: r.B * v}
}

func (r RGB) RGBA(a float32) RGBA {
	return RGBA{R: r.R, G: r.G, B: r.B, A: a}
}

// Scale attenuates both the color channels and alpha by v; it is used for
// the translucent fills drawn under wireframe overlays.
func (r RGBA) Scale(v float32) RGBA {
	return RGBA{R: r.R * v, G: r.G * v, B: r.B * v, A: r.A * v}
}
