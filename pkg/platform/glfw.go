// pkg/platform/glfw.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package platform

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/svqa/simviz/pkg/log"
	"github.com/svqa/simviz/pkg/util"
)

// glfwPlatform implements the Platform interface using GLFW.
type glfwPlatform struct {
	lg     *log.Logger
	window *glfw.Window

	onScroll func(dy float32)
	onKey    func(key string)
}

// New returns a Platform implemented with a GLFW window of the specified
// size holding an OpenGL 3.3 core context, which is made current.
func New(config *Config, lg *log.Logger) (Platform, error) {
	lg.Info("Starting GLFW initialization")
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}
	lg.Infof("GLFW: %s", glfw.GetVersionString())

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	size := config.InitialWindowSize
	if size[0] == 0 || size[1] == 0 {
		vm := glfw.GetPrimaryMonitor().GetVideoMode()
		size = [2]int{vm.Width - 150, vm.Height - 150}
	}

	title := config.WindowTitle
	if title == "" {
		title = "simviz"
	}

	window, err := glfw.CreateWindow(size[0], size[1], title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()

	p := &glfwPlatform{lg: lg, window: window}
	p.EnableVSync(config.EnableVSync)
	p.installCallbacks()

	lg.Info("Finished GLFW initialization")
	return p, nil
}

func (g *glfwPlatform) installCallbacks() {
	g.window.SetScrollCallback(func(window *glfw.Window, x, y float64) {
		if g.onScroll != nil {
			g.onScroll(float32(y))
		}
	})
	g.window.SetKeyCallback(func(window *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press || g.onKey == nil {
			return
		}
		if name := glfw.GetKeyName(key, scancode); name != "" {
			g.onKey(name)
		}
	})
}

func (g *glfwPlatform) EnableVSync(sync bool) {
	glfw.SwapInterval(util.Select(sync, 1, 0))
}

func (g *glfwPlatform) ShouldStop() bool {
	return g.window.ShouldClose()
}

func (g *glfwPlatform) CancelShouldStop() {
	g.window.SetShouldClose(false)
}

func (g *glfwPlatform) ProcessEvents() {
	glfw.PollEvents()
}

func (g *glfwPlatform) WindowSize() [2]int {
	w, h := g.window.GetSize()
	return [2]int{w, h}
}

func (g *glfwPlatform) FramebufferSize() [2]int {
	w, h := g.window.GetFramebufferSize()
	return [2]int{w, h}
}

func (g *glfwPlatform) SwapBuffers() {
	g.window.SwapBuffers()
}

func (g *glfwPlatform) SetWindowTitle(text string) {
	g.window.SetTitle(text)
}

func (g *glfwPlatform) SetScrollCallback(cb func(dy float32)) {
	g.onScroll = cb
}

func (g *glfwPlatform) SetKeyCallback(cb func(key string)) {
	g.onKey = cb
}

func (g *glfwPlatform) Dispose() {
	if g.window != nil {
		g.window.Destroy()
		g.window = nil
	}
	glfw.Terminate()
}
