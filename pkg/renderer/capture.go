// pkg/renderer/capture.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/color/palette"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/svqa/simviz/pkg/log"
)

// CaptureSink receives the rendered frames when file output is enabled.
// WriteFrame is called once per flushed frame with a top-down RGBA image;
// Close finishes any deferred encoding. Sinks are not safe for concurrent
// use by multiple goroutines.
type CaptureSink interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// NewCaptureSink returns a sink appropriate for the given path: animated
// GIF for .gif, a PNG still (rewritten every frame) otherwise.
func NewCaptureSink(path string, lg *log.Logger) (CaptureSink, error) {
	if strings.ToLower(filepath.Ext(path)) == ".gif" {
		return newGIFCaptureSink(path, lg)
	}
	return &stillCaptureSink{path: path}, nil
}

// stillCaptureSink rewrites a single PNG with the latest frame, so after
// the run the file holds the final state of the simulation.
type stillCaptureSink struct {
	path string
}

func (s *stillCaptureSink) WriteFrame(img *image.RGBA) error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *stillCaptureSink) Close() error { return nil }

// gifCaptureSink accumulates frames into an animated GIF that is encoded
// and written when the sink is closed. Frames are handed to an encoding
// goroutine so palettization doesn't stall rendering.
type gifCaptureSink struct {
	path    string
	frameCh chan *image.RGBA
	done    chan error
	closed  bool
}

func newGIFCaptureSink(path string, lg *log.Logger) (*gifCaptureSink, error) {
	// Fail now rather than after the run if the path isn't writable.
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	f.Close()

	s := &gifCaptureSink{
		path:    path,
		frameCh: make(chan *image.RGBA, 100),
		done:    make(chan error, 1),
	}
	go s.encodeFrames(lg)
	return s, nil
}

func (s *gifCaptureSink) WriteFrame(img *image.RGBA) error {
	if s.closed {
		return fmt.Errorf("%s: capture sink already closed", s.path)
	}
	s.frameCh <- img
	return nil
}

func (s *gifCaptureSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.frameCh)
	return <-s.done
}

func (s *gifCaptureSink) encodeFrames(lg *log.Logger) {
	var anim gif.GIF
	for img := range s.frameCh {
		frame := palettize(img)

		if n := len(anim.Image); n > 0 && samePix(anim.Image[n-1], frame) {
			// Identical to the previous frame; extend its display time.
			anim.Delay[n-1] += 10
		} else {
			anim.Image = append(anim.Image, frame)
			anim.Delay = append(anim.Delay, 10) // 100ms per frame
		}
	}

	lg.Infof("Encoding GIF with %d frames to %s", len(anim.Image), s.path)

	f, err := os.Create(s.path)
	if err != nil {
		s.done <- err
		return
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		s.done <- err
		return
	}
	s.done <- f.Close()
}

// palettize converts a frame for GIF encoding: an exact palette when the
// frame has few enough distinct colors, Floyd-Steinberg dithering against
// the fixed Plan9 palette otherwise.
func palettize(img *image.RGBA) *image.Paletted {
	colorIndex := make(map[color.RGBA]uint8)
	var colors []color.Color

	b := img.Bounds()
	pal := image.NewPaletted(b, nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			idx, ok := colorIndex[c]
			if !ok {
				if len(colors) == 256 {
					// Too many distinct colors for an exact palette.
					pal = image.NewPaletted(b, palette.Plan9)
					draw.FloydSteinberg.Draw(pal, b, img, b.Min)
					return pal
				}
				idx = uint8(len(colors))
				colorIndex[c] = idx
				colors = append(colors, c)
			}
			pal.SetColorIndex(x, y, idx)
		}
	}
	pal.Palette = colors
	return pal
}

func samePix(a *image.Paletted, b *image.Paletted) bool {
	if len(a.Pix) != len(b.Pix) || len(a.Palette) != len(b.Palette) {
		return false
	}
	for i, p := range a.Pix {
		if b.Pix[i] != p {
			return false
		}
	}
	for i, c := range a.Palette {
		if c != b.Palette[i] {
			return false
		}
	}
	return true
}
