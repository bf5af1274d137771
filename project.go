package takt

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type (
	// Project is the root entity of the sequencer: the global tempo and
	// meter plus all the tracks. It serializes 1:1 to the project file
	// format.
	Project struct {
		Name          string        `json:"name" yaml:"name"`
		BPM           float64       `json:"bpm" yaml:"bpm"`
		TimeSignature TimeSignature `json:"timeSignature" yaml:"timeSignature"`
		Tracks        []Track       `json:"tracks" yaml:"tracks"`
	}

	// TimeSignature is the meter of a project. On the wire it is a two
	// element array, [beatsPerBar, noteValue].
	TimeSignature struct {
		BeatsPerBar int
		NoteValue   int
	}
)

// Tempo limits of a project; values outside are clamped, never rejected.
const (
	BPMMin = 40
	BPMMax = 240
)

// NewProject returns an empty project with the default tempo and meter.
func NewProject() Project {
	return Project{
		Name:          "Untitled",
		BPM:           120,
		TimeSignature: TimeSignature{BeatsPerBar: 4, NoteValue: 4},
	}
}

// Copy makes a deep copy of a Project.
func (p Project) Copy() Project {
	tracks := make([]Track, len(p.Tracks))
	for i, t := range p.Tracks {
		tracks[i] = t.Copy()
	}
	ret := p
	ret.Tracks = tracks
	return ret
}

// EndBeat returns the end of the last note in any track, in beats, or 0
// if the project has no notes at all.
func (p Project) EndBeat() float64 {
	var end float64
	for _, t := range p.Tracks {
		if e := t.EndBeat(); e > end {
			end = e
		}
	}
	return end
}

// TrackIndex returns the index of the track with the given ID, or -1 if
// there is no such track.
func (p Project) TrackIndex(id string) int {
	for i, t := range p.Tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks that the project is safe to take into use: the tempo
// and meter are sane and every note is within its documented ranges.
// Imports reject the whole file on the first violation so a corrupt
// project can never replace a healthy one half way.
func (p Project) Validate() error {
	if p.BPM < BPMMin || p.BPM > BPMMax {
		return fmt.Errorf("bpm %v outside [%v, %v]", p.BPM, BPMMin, BPMMax)
	}
	if p.TimeSignature.BeatsPerBar <= 0 || p.TimeSignature.NoteValue <= 0 {
		return fmt.Errorf("invalid time signature [%d, %d]", p.TimeSignature.BeatsPerBar, p.TimeSignature.NoteValue)
	}
	seen := make(map[string]bool)
	for i, t := range p.Tracks {
		if t.ID == "" {
			return fmt.Errorf("track %d has no id", i)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate track id %q", t.ID)
		}
		seen[t.ID] = true
		if !t.WaveType.Valid() {
			return fmt.Errorf("track %q has unknown wave type %q", t.Name, t.WaveType)
		}
		for _, n := range t.Notes {
			if !n.Valid() {
				return fmt.Errorf("track %q has an invalid note %q", t.Name, n.ID)
			}
		}
	}
	return nil
}

func (ts TimeSignature) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{ts.BeatsPerBar, ts.NoteValue})
}

func (ts *TimeSignature) UnmarshalJSON(data []byte) error {
	var v [2]int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v[0] <= 0 || v[1] <= 0 {
		return fmt.Errorf("invalid time signature [%d, %d]", v[0], v[1])
	}
	ts.BeatsPerBar, ts.NoteValue = v[0], v[1]
	return nil
}

func (ts TimeSignature) MarshalYAML() (any, error) {
	return []int{ts.BeatsPerBar, ts.NoteValue}, nil
}

func (ts *TimeSignature) UnmarshalYAML(value *yaml.Node) error {
	var v []int
	if err := value.Decode(&v); err != nil {
		return err
	}
	if len(v) != 2 || v[0] <= 0 || v[1] <= 0 {
		return fmt.Errorf("invalid time signature %v", v)
	}
	ts.BeatsPerBar, ts.NoteValue = v[0], v[1]
	return nil
}
