// pkg/renderer/overlay.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"

	"github.com/mmp/imgui-go/v4"
)

// TextOverlay draws debug strings on top of the rendered frame. Text is
// not batched with the GPU primitives; it goes through the host's UI
// layer, so a SceneRenderer can be constructed without one (text is then
// dropped).
type TextOverlay interface {
	// AddText draws text at the given window coordinates; it must be
	// called between the host's UI frame begin/end.
	AddText(p [2]float32, text string)
}

// ImguiOverlay draws text into a transparent full-window imgui layer.
type ImguiOverlay struct {
	Color RGB
}

func NewImguiOverlay() *ImguiOverlay {
	return &ImguiOverlay{Color: RGB{R: 0.9, G: 0.9, B: 0.6}}
}

func (o *ImguiOverlay) AddText(p [2]float32, text string) {
	imgui.SetNextWindowPosV(imgui.Vec2{X: p[0], Y: p[1]}, imgui.ConditionAlways, imgui.Vec2{})
	imgui.PushStyleColor(imgui.StyleColorWindowBg, imgui.Vec4{})
	imgui.BeginV("##overlay-"+text, nil,
		imgui.WindowFlagsNoTitleBar|imgui.WindowFlagsNoInputs|
			imgui.WindowFlagsAlwaysAutoResize|imgui.WindowFlagsNoScrollbar)
	imgui.PushStyleColor(imgui.StyleColorText,
		imgui.Vec4{X: o.Color.R, Y: o.Color.G, Z: o.Color.B, W: 1})
	imgui.Text(text)
	imgui.PopStyleColorV(2)
	imgui.End()
}

// AddTextf is AddText with fmt-style formatting; the arguments are typed
// rather than smuggled through varargs of unchecked interface values.
func AddTextf(o TextOverlay, p [2]float32, format string, args ...any) {
	if o == nil {
		return
	}
	o.AddText(p, fmt.Sprintf(format, args...))
}
