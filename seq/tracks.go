package seq

import (
	"math"

	"github.com/taktile/takt"
)

// RemoveTrack removes a track and its notes. The selection moves to
// the first remaining track. Removing a track is not undoable; the
// history steps that mention its notes simply stop matching anything.
func (m *Model) RemoveTrack(trackID string) bool {
	i := m.d.Project.TrackIndex(trackID)
	if i < 0 {
		return false
	}
	defer m.change("RemoveTrack", TrackChange, MajorChange)()
	m.d.Project.Tracks = append(m.d.Project.Tracks[:i], m.d.Project.Tracks[i+1:]...)
	return true
}

// SetWaveType changes the oscillator shape of the selected track.
func (m *Model) SetWaveType(w takt.WaveType) bool {
	if !w.Valid() {
		return false
	}
	i := m.d.Project.TrackIndex(m.d.Selection.TrackID)
	if i < 0 {
		return false
	}
	defer m.change("SetWaveType", TrackChange, MinorChange)()
	m.d.Project.Tracks[i].WaveType = w
	return true
}

// SetEnvelope changes the amplitude envelope of the selected track.
// Negative times are clamped to zero and the sustain level to 0-1.
func (m *Model) SetEnvelope(e takt.Envelope) bool {
	i := m.d.Project.TrackIndex(m.d.Selection.TrackID)
	if i < 0 {
		return false
	}
	defer m.change("SetEnvelope", TrackChange, MinorChange)()
	e.Attack = math.Max(0, e.Attack)
	e.Decay = math.Max(0, e.Decay)
	e.Sustain = math.Max(0, math.Min(1, e.Sustain))
	e.Release = math.Max(0, e.Release)
	m.d.Project.Tracks[i].Envelope = e
	return true
}

// SetEffect applies one effect setting to the selected track, leaving
// the other three effects as they were. The effect values are clamped
// into their valid ranges.
func (m *Model) SetEffect(e takt.Effect) bool {
	i := m.d.Project.TrackIndex(m.d.Selection.TrackID)
	if i < 0 {
		return false
	}
	defer m.change("SetEffect", TrackChange, MinorChange)()
	e.Apply(&m.d.Project.Tracks[i].Effects)
	return true
}
