// pkg/platform/platform.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package platform

// Platform is the host window and event loop abstraction; the one
// implementation is GLFW. It owns the OpenGL context that the renderer
// draws into.
type Platform interface {
	// ShouldStop returns true when the user has requested that the
	// window close.
	ShouldStop() bool
	// CancelShouldStop cancels a pending stop request, for hosts that
	// want to confirm before exiting.
	CancelShouldStop()
	// ProcessEvents pumps window events; it must be called every frame.
	ProcessEvents()
	// WindowSize returns the window size in screen coordinates.
	WindowSize() [2]int
	// FramebufferSize returns the size in pixels of the framebuffer,
	// which differs from WindowSize on retina-style displays.
	FramebufferSize() [2]int
	// SwapBuffers presents the rendered frame.
	SwapBuffers()
	// EnableVSync synchronizes buffer swaps with the display refresh.
	EnableVSync(sync bool)
	// SetWindowTitle updates the window title text.
	SetWindowTitle(text string)
	// SetScrollCallback registers a handler for vertical mouse wheel
	// movement, replacing any previous handler.
	SetScrollCallback(func(dy float32))
	// SetKeyCallback registers a handler called with the key name for
	// each key press, replacing any previous handler.
	SetKeyCallback(func(key string))
	// Dispose destroys the window and shuts the windowing system down.
	Dispose()
}

type Config struct {
	InitialWindowSize [2]int
	WindowTitle       string
	EnableVSync       bool
}
