package takt

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Pitch limits of the piano roll, as MIDI note numbers; C1 to B6.
const (
	PitchMin = 24
	PitchMax = 95
)

type (
	// Note is a single note on the piano roll grid of a track. Start and
	// Duration are in beats and the note sounds over the half open
	// interval [Start, Start+Duration). The ID stays the same for the
	// whole life of the note, no matter how it is moved or resized.
	Note struct {
		ID       string  `json:"id" yaml:"id"`
		Pitch    int     `json:"pitch" yaml:"pitch"`
		Start    float64 `json:"start" yaml:"start"`
		Duration float64 `json:"duration" yaml:"duration"`
		Velocity float64 `json:"velocity" yaml:"velocity"`
	}
)

// NewNote returns a note with a fresh unique ID.
func NewNote(pitch int, start, duration, velocity float64) Note {
	return Note{
		ID:       uuid.NewString(),
		Pitch:    pitch,
		Start:    start,
		Duration: duration,
		Velocity: velocity,
	}
}

// End returns the beat at which the note stops sounding.
func (n Note) End() float64 {
	return n.Start + n.Duration
}

// Valid reports whether the note fields are within their documented
// ranges. Invalid notes are rejected when added and skipped when
// scheduling, so a corrupt note can never stall playback.
func (n Note) Valid() bool {
	if n.Pitch < PitchMin || n.Pitch > PitchMax {
		return false
	}
	if math.IsNaN(n.Start) || math.IsInf(n.Start, 0) || n.Start < 0 {
		return false
	}
	if math.IsNaN(n.Duration) || math.IsInf(n.Duration, 0) || n.Duration <= 0 {
		return false
	}
	if math.IsNaN(n.Velocity) || n.Velocity < 0 || n.Velocity > 1 {
		return false
	}
	return true
}

// MIDIToFrequency returns the frequency of a MIDI note number in hertz,
// in 12-tone equal temperament with A4 (note 69) at 440 Hz.
func MIDIToFrequency(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the conventional name of a MIDI note number, e.g.
// "C4" for 60.
func NoteName(pitch int) string {
	return fmt.Sprintf("%s%d", noteNames[((pitch%12)+12)%12], pitch/12-1)
}
