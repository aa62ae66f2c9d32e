// cmd/simviz/main.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/svqa/simviz/pkg/log"
	"github.com/svqa/simviz/pkg/platform"
	"github.com/svqa/simviz/pkg/renderer"
	"github.com/svqa/simviz/pkg/scene"
)

func init() {
	// OpenGL and GLFW want to run on the main thread.
	runtime.LockOSThread()
}

var (
	scenePath   = flag.String("scene", "", "JSON scene file to load instead of the built-in demo scene")
	recordPath  = flag.String("record", "", "record per-frame scene states to this file")
	capturePath = flag.String("capture", "", "capture rendered frames to this file (.gif for animation, PNG still otherwise)")
	nFrames     = flag.Int("frames", 0, "exit after rendering this many frames (0 to run until closed)")
	textured    = flag.Bool("textured", false, "render fills with material textures")
	debugMode   = flag.Bool("debug", false, "start with debug overlays enabled")
	vsync       = flag.Bool("vsync", true, "synchronize with display refresh")
	logDir      = flag.String("logdir", "", "directory for log files")
	logLevel    = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	lg := log.New(*logLevel, *logDir)

	if err := run(lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "simviz: %v\n", err)
		os.Exit(1)
	}
}

func run(lg *log.Logger) error {
	state, err := makeScene(*scenePath)
	if err != nil {
		return err
	}

	plat, err := platform.New(&platform.Config{
		InitialWindowSize: [2]int{1280, 720},
		WindowTitle:       "simviz",
		EnableVSync:       *vsync,
	}, lg)
	if err != nil {
		return fmt.Errorf("unable to create window: %w", err)
	}
	defer plat.Dispose()

	rend, err := renderer.NewOpenGL33Renderer(*textured, lg)
	if err != nil {
		return fmt.Errorf("unable to initialize OpenGL: %w", err)
	}
	defer rend.Dispose()

	fb := plat.FramebufferSize()
	camera := renderer.NewOrthoCamera(fb[0], fb[1])
	camera.Center = [2]float32{0, 20}

	config := renderer.Config{Textured: *textured, DebugMode: *debugMode}
	sr := renderer.NewSceneRenderer(rend, camera, nil, config, lg)
	if *capturePath != "" {
		sr.SetFileOutput(*capturePath, fb[0], fb[1])
	}
	defer sr.Finish()

	var textures *scene.TextureCache
	if *textured {
		textures = scene.NewTextureCache(rend)
		defer textures.Dispose()
	}

	var rec *scene.Recorder
	if *recordPath != "" {
		f, err := os.Create(*recordPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if rec, err = scene.NewRecorder(f); err != nil {
			return err
		}
		defer rec.Close()
	}

	plat.SetScrollCallback(func(dy float32) {
		camera.Zoom *= 1 - 0.1*dy
		camera.Zoom = max(camera.Zoom, 0.05)
	})
	plat.SetKeyCallback(func(key string) {
		if key == "d" {
			sr.SetDebugMode(!sr.DebugMode())
		}
	})

	cb := renderer.GetCommandBuffer()
	defer renderer.ReturnCommandBuffer(cb)

	const dt = 1.0 / 60
	frame := 0
	lastStats := time.Now()

	for !plat.ShouldStop() {
		plat.ProcessEvents()

		fb = plat.FramebufferSize()
		camera.Width, camera.Height = fb[0], fb[1]

		cb.Reset()
		cb.Viewport(0, 0, fb[0], fb[1])
		cb.ClearRGBA(renderer.RGBA{R: 0.1, G: 0.1, B: 0.12, A: 1})
		rend.RenderCommandBuffer(cb)

		state.Step(dt)
		if rec != nil {
			if err := rec.WriteState(state); err != nil {
				return fmt.Errorf("recording: %w", err)
			}
		}

		state.Draw(sr, textures)
		stats := sr.Flush()

		if time.Since(lastStats) > 10*time.Second {
			lg.Info("frame rendered", "stats", stats)
			lastStats = time.Now()
		}

		plat.SwapBuffers()

		frame++
		if *nFrames > 0 && frame == *nFrames {
			break
		}
	}

	lg.Infof("Exiting after %d frames", frame)
	return nil
}

// makeScene loads the scene file if one was given and otherwise builds
// the demo scene: a stack of bodies of both materials falling onto a
// static ground slab.
func makeScene(path string) (*scene.SceneState, error) {
	if path != "" {
		return scene.LoadSceneState(path)
	}

	s := &scene.SceneState{
		Objects: []scene.ObjectState{{
			ID:          0,
			Shape:       scene.ShapeBox,
			Position:    [2]float32{0, -2},
			HalfExtents: [2]float32{40, 2},
			Material:    scene.Metal,
			Color:       renderer.RGBA{R: 0.5, G: 0.5, B: 0.55, A: 1},
			Static:      true,
		}},
	}

	colors := []renderer.RGBA{
		{R: 0.9, G: 0.3, B: 0.3, A: 1},
		{R: 0.3, G: 0.7, B: 0.9, A: 1},
		{R: 0.9, G: 0.8, B: 0.2, A: 1},
	}
	for i := 0; i < 12; i++ {
		o := scene.ObjectState{
			ID:              i + 1,
			Position:        [2]float32{float32(i%4)*4 - 6, 12 + 3*float32(i/4)},
			Angle:           0.3 * float32(i),
			AngularVelocity: 0.5,
			Material:        scene.Material(i % 2),
			Color:           colors[i%len(colors)],
		}
		switch i % 3 {
		case 0:
			o.Shape = scene.ShapeCircle
			o.Radius = 1
		case 1:
			o.Shape = scene.ShapeBox
			o.HalfExtents = [2]float32{1, 0.6}
		case 2:
			o.Shape = scene.ShapePolygon
			o.Vertices = [][2]float32{{-1, -0.8}, {1, -0.8}, {0, 1.2}}
		}
		s.Objects = append(s.Objects, o)
	}
	return s, nil
}
