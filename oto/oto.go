// Package oto plays the audio of the sequencer through the ebitengine
// oto backend, converting the float32 frames the synth produces into
// the little endian byte stream the device pulls.
package oto

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/taktile/takt"
)

const bytesPerFrame = 8 // two channels of float32

type (
	// Context is an opened audio device. A process can only have one;
	// opening a second one fails.
	Context struct {
		context *oto.Context
	}

	playback struct {
		player *oto.Player
	}

	reader struct {
		source takt.AudioSource
		buffer takt.AudioBuffer
		bytes  []byte
	}
)

// NewContext opens the audio device at the sample rate and channel
// layout of the synth, waiting until the device is ready to play.
func NewContext() (*Context, error) {
	op := &oto.NewContextOptions{
		SampleRate:   takt.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready
	return &Context{context: context}, nil
}

// Play starts playing audio pulled from the source and returns a handle
// to stop playback or wait for the source to run out. The device pulls
// from the source on its own goroutine.
func (c *Context) Play(source takt.AudioSource) takt.CloserWaiter {
	p := c.context.NewPlayer(&reader{source: source})
	p.Play()
	return playback{player: p}
}

func (p playback) Close() error { return p.player.Close() }

func (p playback) Wait() {
	for p.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
}

func (r *reader) Read(p []byte) (int, error) {
	if len(r.bytes) == 0 {
		frames := len(p) / bytesPerFrame
		if frames < 1 {
			frames = 1
		}
		if cap(r.buffer) < frames {
			r.buffer = make(takt.AudioBuffer, frames)
		}
		r.buffer = r.buffer[:frames]
		n, err := r.source(r.buffer)
		if n == 0 {
			return 0, err
		}
		if cap(r.bytes) < n*bytesPerFrame {
			r.bytes = make([]byte, n*bytesPerFrame)
		}
		r.bytes = r.bytes[:n*bytesPerFrame]
		for i, frame := range r.buffer[:n] {
			binary.LittleEndian.PutUint32(r.bytes[i*bytesPerFrame:], math.Float32bits(frame[0]))
			binary.LittleEndian.PutUint32(r.bytes[i*bytesPerFrame+4:], math.Float32bits(frame[1]))
		}
	}
	n := copy(p, r.bytes)
	r.bytes = r.bytes[n:]
	return n, nil
}
