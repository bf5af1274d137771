package takt

import "io"

// SampleRate is the fixed playback and render rate, in frames per second.
const SampleRate = 44100

type (
	// AudioBuffer is a buffer of stereo audio samples of the format
	// [][2]float32, where [i][0] is the left and [i][1] the right channel
	// of frame i.
	AudioBuffer [][2]float32

	// AudioSource fills the start of buf with audio and returns the
	// number of frames written. It returns io.EOF when no more audio will
	// follow.
	AudioSource func(buf AudioBuffer) (int, error)

	// AudioContext is the low level audio driver; there should be at most
	// one AudioContext alive at a time. Play starts pulling audio from
	// the source until the source is exhausted or the returned handle is
	// closed.
	AudioContext interface {
		Play(source AudioSource) CloserWaiter
	}

	// CloserWaiter is a handle to ongoing playback: Close stops it, Wait
	// blocks until it has finished on its own.
	CloserWaiter interface {
		io.Closer
		Wait()
	}
)

// Source returns an AudioSource that plays back the contents of the
// buffer once, from the beginning.
func (buffer AudioBuffer) Source() AudioSource {
	pos := 0
	return func(buf AudioBuffer) (int, error) {
		n := copy(buf, buffer[pos:])
		pos += n
		if pos >= len(buffer) {
			return n, io.EOF
		}
		return n, nil
	}
}
