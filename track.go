package takt

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type (
	// Track is one lane of the sequencer: a monotimbral voice definition
	// (oscillator, envelope and effect chain) plus the notes played with
	// it. A track owns its notes; removing the track removes them too.
	Track struct {
		ID       string   `json:"id" yaml:"id"`
		Name     string   `json:"name" yaml:"name"`
		Color    string   `json:"color" yaml:"color"`
		WaveType WaveType `json:"waveType" yaml:"waveType"`
		Volume   float64  `json:"volume" yaml:"volume"`
		Pan      float64  `json:"pan" yaml:"pan"`
		Muted    bool     `json:"muted" yaml:"muted"`
		Solo     bool     `json:"solo" yaml:"solo"`
		Envelope Envelope `json:"envelope" yaml:"envelope"`
		Effects  Effects  `json:"effects" yaml:"effects"`
		Notes    []Note   `json:"notes" yaml:"notes"`
	}

	// WaveType selects the oscillator shape of a track.
	WaveType string

	// Envelope is an ADSR amplitude envelope. Attack, Decay and Release
	// are times in seconds, Sustain is a level in [0, 1].
	Envelope struct {
		Attack  float64 `json:"attack" yaml:"attack"`
		Decay   float64 `json:"decay" yaml:"decay"`
		Sustain float64 `json:"sustain" yaml:"sustain"`
		Release float64 `json:"release" yaml:"release"`
	}

	// Effects holds the parameters of the per track effect chain. Every
	// track has all four effects; an effect with zero wet (or amount) is
	// effectively bypassed.
	Effects struct {
		Reverb     ReverbSettings     `json:"reverb" yaml:"reverb"`
		Delay      DelaySettings      `json:"delay" yaml:"delay"`
		Filter     FilterSettings     `json:"filter" yaml:"filter"`
		Distortion DistortionSettings `json:"distortion" yaml:"distortion"`
	}

	ReverbSettings struct {
		Wet float64 `json:"wet" yaml:"wet"`
	}

	DelaySettings struct {
		Time     DelayTime `json:"time" yaml:"time"`
		Feedback float64   `json:"feedback" yaml:"feedback"`
		Wet      float64   `json:"wet" yaml:"wet"`
	}

	FilterSettings struct {
		Kind      FilterKind `json:"type" yaml:"type"`
		Frequency float64    `json:"frequency" yaml:"frequency"`
		Q         float64    `json:"Q" yaml:"Q"`
	}

	DistortionSettings struct {
		Amount float64 `json:"amount" yaml:"amount"`
	}

	// DelayTime is a musical duration for the delay line, written as the
	// note value denominator followed by "n", optionally dotted: "4n" is
	// a quarter note, "8n." a dotted eighth.
	DelayTime string

	// FilterKind selects the filter response of a track.
	FilterKind string
)

const (
	WaveSine     WaveType = "sine"
	WaveSquare   WaveType = "square"
	WaveSawtooth WaveType = "sawtooth"
	WaveTriangle WaveType = "triangle"
)

const (
	FilterLowpass  FilterKind = "lowpass"
	FilterHighpass FilterKind = "highpass"
)

// Valid reports whether the wave type is one of the four oscillator
// shapes.
func (w WaveType) Valid() bool {
	switch w {
	case WaveSine, WaveSquare, WaveSawtooth, WaveTriangle:
		return true
	}
	return false
}

// Seconds converts the symbolic delay duration to seconds at the given
// tempo. Unparseable values fall back to an eighth note.
func (t DelayTime) Seconds(bpm float64) float64 {
	s := string(t)
	dotted := strings.HasSuffix(s, ".")
	s = strings.TrimSuffix(s, ".")
	s = strings.TrimSuffix(s, "n")
	div, err := strconv.Atoi(s)
	if err != nil || div <= 0 {
		div = 8
	}
	beats := 4 / float64(div)
	if dotted {
		beats *= 1.5
	}
	return BeatsToSeconds(beats, bpm)
}

// TrackColors is the palette that new tracks cycle through, so that
// consecutively added tracks are easy to tell apart.
var TrackColors = [8]string{
	"#e6194b",
	"#f58231",
	"#ffe119",
	"#3cb44b",
	"#42d4f4",
	"#4363d8",
	"#911eb4",
	"#f032e6",
}

// NewTrack returns a track with a fresh unique ID, no notes and the
// default voice parameters.
func NewTrack(name, color string) Track {
	return Track{
		ID:       uuid.NewString(),
		Name:     name,
		Color:    color,
		WaveType: WaveSine,
		Volume:   0.8,
		Pan:      0,
		Envelope: Envelope{Attack: 0.01, Decay: 0.1, Sustain: 0.7, Release: 0.3},
		Effects: Effects{
			Delay:  DelaySettings{Time: "8n", Feedback: 0.3, Wet: 0},
			Filter: FilterSettings{Kind: FilterLowpass, Frequency: 20000, Q: 1},
		},
	}
}

// Copy makes a deep copy of a Track.
func (t Track) Copy() Track {
	notes := make([]Note, len(t.Notes))
	copy(notes, t.Notes)
	ret := t
	ret.Notes = notes
	return ret
}

// NoteIndex returns the index of the note with the given ID, or -1 if
// the track has no such note.
func (t Track) NoteIndex(id string) int {
	for i, n := range t.Notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// EndBeat returns the end of the last note of the track, in beats, or 0
// if the track has no notes.
func (t Track) EndBeat() float64 {
	var end float64
	for _, n := range t.Notes {
		if e := n.End(); e > end {
			end = e
		}
	}
	return end
}

type (
	// Effect is a tagged parameter update for one of the four effects of
	// a track. Construct one with ReverbEffect, DelayEffect, FilterEffect
	// or DistortionEffect and apply it with Apply; only the effect of the
	// matching kind is touched.
	Effect struct {
		kind       EffectKind
		reverb     ReverbSettings
		delay      DelaySettings
		filter     FilterSettings
		distortion DistortionSettings
	}

	// EffectKind tells which effect an Effect updates.
	EffectKind int
)

const (
	EffectReverb EffectKind = iota
	EffectDelay
	EffectFilter
	EffectDistortion
)

func ReverbEffect(s ReverbSettings) Effect {
	return Effect{kind: EffectReverb, reverb: s}
}

func DelayEffect(s DelaySettings) Effect {
	return Effect{kind: EffectDelay, delay: s}
}

func FilterEffect(s FilterSettings) Effect {
	return Effect{kind: EffectFilter, filter: s}
}

func DistortionEffect(s DistortionSettings) Effect {
	return Effect{kind: EffectDistortion, distortion: s}
}

// Kind returns which of the four effects the parameters are for.
func (e Effect) Kind() EffectKind {
	return e.kind
}

// Apply writes the carried parameters into the matching effect of fx,
// clamping every value to its legal range.
func (e Effect) Apply(fx *Effects) {
	switch e.kind {
	case EffectReverb:
		fx.Reverb = ReverbSettings{Wet: clampF(e.reverb.Wet, 0, 1)}
	case EffectDelay:
		d := e.delay
		d.Feedback = clampF(d.Feedback, 0, 0.9)
		d.Wet = clampF(d.Wet, 0, 1)
		if d.Time == "" {
			d.Time = "8n"
		}
		fx.Delay = d
	case EffectFilter:
		f := e.filter
		if f.Kind != FilterHighpass {
			f.Kind = FilterLowpass
		}
		f.Frequency = clampF(f.Frequency, 20, 20000)
		f.Q = clampF(f.Q, 0.1, 20)
		fx.Filter = f
	case EffectDistortion:
		fx.Distortion = DistortionSettings{Amount: clampF(e.distortion.Amount, 0, 1)}
	}
}

func clampF(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
