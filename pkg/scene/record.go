// pkg/scene/record.go
// Copyright(c) 2026 simviz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Recorder streams per-frame SceneStates to a writer as
// zstd-compressed msgpack, one state per frame. The resulting file can be
// replayed later without the simulation that produced it.
type Recorder struct {
	zw     *zstd.Encoder
	enc    *msgpack.Encoder
	frames int
}

func NewRecorder(w io.Writer) (*Recorder, error) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, err
	}
	return &Recorder{zw: zw, enc: msgpack.NewEncoder(zw)}, nil
}

func (r *Recorder) WriteState(s *SceneState) error {
	if err := r.enc.Encode(s); err != nil {
		return err
	}
	r.frames++
	return nil
}

func (r *Recorder) Frames() int { return r.frames }

// Close flushes the compressor; it does not close the underlying writer.
func (r *Recorder) Close() error {
	return r.zw.Close()
}

// ReadRecording decodes all frames from a recording stream.
func ReadRecording(rd io.Reader) ([]SceneState, error) {
	zr, err := zstd.NewReader(rd, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	dec := msgpack.NewDecoder(zr)
	var states []SceneState
	for {
		var s SceneState
		if err := dec.Decode(&s); err != nil {
			if errors.Is(err, io.EOF) {
				return states, nil
			}
			return nil, err
		}
		states = append(states, s)
	}
}

// LoadRecording reads a recording file written by a Recorder.
func LoadRecording(path string) ([]SceneState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecording(f)
}
