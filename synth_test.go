package takt_test

import (
	"fmt"
	"testing"

	"github.com/taktile/takt"
)

// recordingSynth renders silence and records every trigger and release,
// so the tests can assert on the exact voice allocation.
type recordingSynth struct {
	calls *[]string
}

func (s recordingSynth) Render(buffer takt.AudioBuffer) error {
	for i := range buffer {
		buffer[i] = [2]float32{}
	}
	return nil
}

func (s recordingSynth) Update(tracks []takt.Track, bpm float64) error { return nil }

func (s recordingSynth) Trigger(voice int, pitch int, velocity float64) {
	*s.calls = append(*s.calls, fmt.Sprintf("on %d %d", voice, pitch))
}

func (s recordingSynth) Release(voice int) {
	*s.calls = append(*s.calls, fmt.Sprintf("off %d", voice))
}

type recordingSynther struct {
	calls *[]string
}

func (s recordingSynther) Name() string { return "recording" }
func (s recordingSynther) Synth(tracks []takt.Track, bpm float64) (takt.Synth, error) {
	return recordingSynth{s.calls}, nil
}

func newRecordingSynther() (recordingSynther, *[]string) {
	calls := new([]string)
	return recordingSynther{calls}, calls
}

func TestPlayEmptyProjectLength(t *testing.T) {
	synther, _ := newRecordingSynther()
	buffer, err := takt.Play(synther, takt.NewProject(), nil)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	// 16 beats at 120 bpm is 8 seconds, plus the 2 second tail
	if want := 10 * takt.SampleRate; len(buffer) != want {
		t.Errorf("rendered %d frames, expected %d", len(buffer), want)
	}
}

func TestPlayLengthRoundsUpToWholeBeat(t *testing.T) {
	synther, _ := newRecordingSynther()
	p := takt.NewProject()
	track := takt.NewTrack("a", takt.TrackColors[0])
	track.Notes = []takt.Note{{ID: "n", Pitch: 60, Start: 18, Duration: 1.5, Velocity: 1}}
	p.Tracks = []takt.Track{track}
	buffer, err := takt.Play(synther, p, nil)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	// the last note ends at beat 19.5, so the render covers 20 beats
	if want := 12 * takt.SampleRate; len(buffer) != want {
		t.Errorf("rendered %d frames, expected %d", len(buffer), want)
	}
}

func TestPlayTriggersAndReleases(t *testing.T) {
	synther, calls := newRecordingSynther()
	p := takt.NewProject()
	track := takt.NewTrack("a", takt.TrackColors[0])
	track.Notes = []takt.Note{
		{ID: "a", Pitch: 60, Start: 0, Duration: 1, Velocity: 1},
		{ID: "b", Pitch: 64, Start: 2, Duration: 1, Velocity: 1},
	}
	p.Tracks = []takt.Track{track}
	if _, err := takt.Play(synther, p, nil); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	want := []string{"on 0 60", "off 0", "on 1 64", "off 1"}
	if len(*calls) != len(want) {
		t.Fatalf("got calls %v, expected %v", *calls, want)
	}
	for i := range want {
		if (*calls)[i] != want[i] {
			t.Fatalf("got calls %v, expected %v", *calls, want)
		}
	}
}

func TestPlayCyclesVoicesWithinTrack(t *testing.T) {
	synther, calls := newRecordingSynther()
	p := takt.NewProject()
	track := takt.NewTrack("a", takt.TrackColors[0])
	// six overlapping notes, so the fifth and sixth wrap around to the
	// first voices of the track again
	for i := 0; i < 6; i++ {
		track.Notes = append(track.Notes, takt.Note{
			ID: fmt.Sprintf("n%d", i), Pitch: 60 + i, Start: float64(i), Duration: 10, Velocity: 1,
		})
	}
	p.Tracks = []takt.Track{track}
	if _, err := takt.Play(synther, p, nil); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	wantOns := []string{"on 0 60", "on 1 61", "on 2 62", "on 3 63", "on 0 64", "on 1 65"}
	var ons []string
	for _, c := range *calls {
		if c[0] == 'o' && c[1] == 'n' {
			ons = append(ons, c)
		}
	}
	if len(ons) != len(wantOns) {
		t.Fatalf("got triggers %v, expected %v", ons, wantOns)
	}
	for i := range wantOns {
		if ons[i] != wantOns[i] {
			t.Fatalf("got triggers %v, expected %v", ons, wantOns)
		}
	}
}

func TestPlayReportsProgress(t *testing.T) {
	synther, _ := newRecordingSynther()
	p := takt.NewProject()
	track := takt.NewTrack("a", takt.TrackColors[0])
	track.Notes = []takt.Note{
		{ID: "a", Pitch: 60, Start: 0, Duration: 1, Velocity: 1},
		{ID: "b", Pitch: 64, Start: 2, Duration: 2, Velocity: 1},
	}
	p.Tracks = []takt.Track{track}
	var values []float32
	if _, err := takt.Play(synther, p, func(v float32) { values = append(values, v) }); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if len(values) == 0 {
		t.Fatalf("no progress reported")
	}
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Errorf("progress went backwards at %d: %v", i, values)
		}
	}
	if last := values[len(values)-1]; last != 1 {
		t.Errorf("final progress = %v, expected 1", last)
	}
}

func TestPlayRejectsInvalidProject(t *testing.T) {
	synther, _ := newRecordingSynther()
	p := takt.NewProject()
	p.BPM = 10
	if _, err := takt.Play(synther, p, nil); err == nil {
		t.Errorf("Play should have rejected a project with a bpm of 10")
	}
}

func TestVoiceForTrack(t *testing.T) {
	tests := []struct {
		track   int
		voice   int
		wantErr bool
	}{
		{0, 0, false},
		{1, 4, false},
		{15, 60, false},
		{16, 0, true},
		{-1, 0, true},
	}
	for _, test := range tests {
		voice, err := takt.VoiceForTrack(test.track)
		if (err != nil) != test.wantErr {
			t.Errorf("VoiceForTrack(%d) error = %v, expected error %v", test.track, err, test.wantErr)
			continue
		}
		if !test.wantErr && voice != test.voice {
			t.Errorf("VoiceForTrack(%d) = %d, expected %d", test.track, voice, test.voice)
		}
	}
}
