package seq

import (
	"math"

	"github.com/taktile/takt"
)

type (
	// Float wraps a float value of the model the same way Int wraps an
	// integer one.
	Float struct {
		v FloatData
	}

	FloatData interface {
		Value() float64
		Range() FloatRange
		setValue(float64)
		change(kind string) func()
	}

	FloatRange struct {
		Min, Max float64
	}
)

func (r FloatRange) Clamp(value float64) float64 {
	if math.IsNaN(value) {
		return r.Min
	}
	return math.Max(r.Min, math.Min(r.Max, value))
}

func (v Float) Value() float64 {
	if v.v == nil {
		return 0
	}
	return v.v.Value()
}

func (v Float) Range() FloatRange {
	if v.v == nil {
		return FloatRange{}
	}
	return v.v.Range()
}

// SetValue clamps the value to Range and assigns it, returning false if
// the value did not change.
func (v Float) SetValue(value float64) bool {
	if v.v == nil {
		return false
	}
	value = v.v.Range().Clamp(value)
	if value == v.v.Value() {
		return false
	}
	defer v.v.change("SetValue")()
	v.v.setValue(value)
	return true
}

// Add adds delta to the value, clamping the result to Range.
func (v Float) Add(delta float64) bool {
	return v.SetValue(v.Value() + delta)
}

type bpm Model

// BPM is the tempo of the project in beats per minute. Changing it
// while playing reschedules playback at the new tempo.
func (m *Model) BPM() Float { return Float{(*bpm)(m)} }

func (v *bpm) Value() float64 { return v.d.Project.BPM }
func (v *bpm) setValue(x float64) { v.d.Project.BPM = x }
func (v *bpm) Range() FloatRange { return FloatRange{takt.BPMMin, takt.BPMMax} }
func (v *bpm) change(kind string) func() {
	return (*Model)(v).change("BPM."+kind, TempoChange, MinorChange)
}

type metronomeVolume Model

// MetronomeVolume is the volume of the metronome click, 0 to 1.
func (m *Model) MetronomeVolume() Float { return Float{(*metronomeVolume)(m)} }

func (v *metronomeVolume) Value() float64 { return v.d.MetronomeVolume }
func (v *metronomeVolume) setValue(x float64) { v.d.MetronomeVolume = x }
func (v *metronomeVolume) Range() FloatRange { return FloatRange{0, 1} }
func (v *metronomeVolume) change(kind string) func() {
	return (*Model)(v).change("MetronomeVolume."+kind, MetronomeChange, MinorChange)
}

type trackVolume Model

// TrackVolume is the volume of the selected track, 0 to 1.
func (m *Model) TrackVolume() Float { return Float{(*trackVolume)(m)} }

func (v *trackVolume) Value() float64 {
	if i := v.d.Project.TrackIndex(v.d.Selection.TrackID); i >= 0 {
		return v.d.Project.Tracks[i].Volume
	}
	return 0
}

func (v *trackVolume) setValue(x float64) {
	if i := v.d.Project.TrackIndex(v.d.Selection.TrackID); i >= 0 {
		v.d.Project.Tracks[i].Volume = x
	}
}

func (v *trackVolume) Range() FloatRange { return FloatRange{0, 1} }
func (v *trackVolume) change(kind string) func() {
	return (*Model)(v).change("TrackVolume."+kind, TrackChange, MinorChange)
}

type trackPan Model

// TrackPan is the stereo pan of the selected track, -1 full left to 1
// full right.
func (m *Model) TrackPan() Float { return Float{(*trackPan)(m)} }

func (v *trackPan) Value() float64 {
	if i := v.d.Project.TrackIndex(v.d.Selection.TrackID); i >= 0 {
		return v.d.Project.Tracks[i].Pan
	}
	return 0
}

func (v *trackPan) setValue(x float64) {
	if i := v.d.Project.TrackIndex(v.d.Selection.TrackID); i >= 0 {
		v.d.Project.Tracks[i].Pan = x
	}
}

func (v *trackPan) Range() FloatRange { return FloatRange{-1, 1} }
func (v *trackPan) change(kind string) func() {
	return (*Model)(v).change("TrackPan."+kind, TrackChange, MinorChange)
}
