package takt_test

import (
	"bytes"
	"math"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/taktile/takt"
)

type midiNote struct {
	tick uint32
	on   bool
	ch   uint8
	key  uint8
	vel  uint8
}

// noteMessages walks a track and returns its note on/off messages with
// absolute ticks.
func noteMessages(track smf.Track) []midiNote {
	var notes []midiNote
	var tick uint32
	for _, ev := range track {
		tick += ev.Delta
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) {
			notes = append(notes, midiNote{tick, true, ch, key, vel})
		} else if ev.Message.GetNoteOff(&ch, &key, &vel) {
			notes = append(notes, midiNote{tick, false, ch, key, vel})
		}
	}
	return notes
}

func TestMIDIExport(t *testing.T) {
	p := takt.NewProject()
	p.Name = "Export test"
	p.BPM = 100
	p.TimeSignature = takt.TimeSignature{BeatsPerBar: 3, NoteValue: 4}
	lead := takt.NewTrack("Lead", takt.TrackColors[0])
	lead.Notes = []takt.Note{{ID: "l1", Pitch: 60, Start: 0, Duration: 1, Velocity: 1}}
	bass := takt.NewTrack("Bass", takt.TrackColors[1])
	bass.Notes = []takt.Note{{ID: "b1", Pitch: 76, Start: 0.5, Duration: 0.25, Velocity: 0.5}}
	p.Tracks = []takt.Track{lead, bass}

	data, err := p.MIDI()
	if err != nil {
		t.Fatalf("MIDI failed: %v", err)
	}
	sm, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reading the exported file failed: %v", err)
	}
	if len(sm.Tracks) != 3 {
		t.Fatalf("got %d tracks, expected a meta track plus 2 note tracks", len(sm.Tracks))
	}
	ticks, ok := sm.TimeFormat.(smf.MetricTicks)
	if !ok || int(ticks) != 960 {
		t.Errorf("time format = %v, expected 960 metric ticks", sm.TimeFormat)
	}
	var foundTempo, foundMeter bool
	for _, ev := range sm.Tracks[0] {
		var bpm float64
		if ev.Message.GetMetaTempo(&bpm) {
			foundTempo = true
			if math.Abs(bpm-100) > 1e-6 {
				t.Errorf("tempo = %v, expected 100", bpm)
			}
		}
		var num, denom uint8
		if ev.Message.GetMetaMeter(&num, &denom) {
			foundMeter = true
			if num != 3 || denom != 4 {
				t.Errorf("meter = %d/%d, expected 3/4", num, denom)
			}
		}
	}
	if !foundTempo || !foundMeter {
		t.Errorf("meta track is missing tempo or meter (tempo %v, meter %v)", foundTempo, foundMeter)
	}
	wantLead := []midiNote{
		{0, true, 0, 60, 127},
		{960, false, 0, 60, 0},
	}
	wantBass := []midiNote{
		{480, true, 1, 76, 64},
		{720, false, 1, 76, 0},
	}
	for i, want := range [][]midiNote{wantLead, wantBass} {
		got := noteMessages(sm.Tracks[i+1])
		if len(got) != len(want) {
			t.Fatalf("track %d has %d note messages, expected %d", i+1, len(got), len(want))
		}
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("track %d message %d = %+v, expected %+v", i+1, j, got[j], want[j])
			}
		}
	}
}

func TestMIDIExportOffsBeforeOns(t *testing.T) {
	p := takt.NewProject()
	track := takt.NewTrack("Mono", takt.TrackColors[0])
	track.Notes = []takt.Note{
		{ID: "a", Pitch: 60, Start: 0, Duration: 1, Velocity: 1},
		{ID: "b", Pitch: 64, Start: 1, Duration: 1, Velocity: 1},
	}
	p.Tracks = []takt.Track{track}
	data, err := p.MIDI()
	if err != nil {
		t.Fatalf("MIDI failed: %v", err)
	}
	sm, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reading the exported file failed: %v", err)
	}
	got := noteMessages(sm.Tracks[1])
	want := []midiNote{
		{0, true, 0, 60, 127},
		{960, false, 0, 60, 0},
		{960, true, 0, 64, 127},
		{1920, false, 0, 64, 0},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d note messages, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, expected %+v", i, got[i], want[i])
		}
	}
}

func TestMIDIExportIncludesMutedTracks(t *testing.T) {
	p := takt.NewProject()
	track := takt.NewTrack("Muted", takt.TrackColors[0])
	track.Muted = true
	track.Notes = []takt.Note{{ID: "m", Pitch: 60, Start: 0, Duration: 1, Velocity: 1}}
	p.Tracks = []takt.Track{track}
	data, err := p.MIDI()
	if err != nil {
		t.Fatalf("MIDI failed: %v", err)
	}
	sm, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reading the exported file failed: %v", err)
	}
	if got := noteMessages(sm.Tracks[1]); len(got) != 2 {
		t.Errorf("muted track exported %d note messages, expected 2", len(got))
	}
}
