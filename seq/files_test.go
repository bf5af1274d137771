package seq_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/taktile/takt"
	"github.com/taktile/takt/seq"
	"github.com/taktile/takt/synth"
)

const projectJSON = `{
  "name": "Demo",
  "bpm": 100,
  "timeSignature": [3, 4],
  "tracks": [
    {
      "id": "t1",
      "name": "Lead",
      "color": "#e6194b",
      "waveType": "square",
      "volume": 0.5,
      "pan": -0.25,
      "envelope": {"attack": 0.01, "decay": 0.1, "sustain": 0.7, "release": 0.3},
      "notes": [
        {"id": "n1", "pitch": 60, "start": 0, "duration": 1, "velocity": 0.9}
      ]
    }
  ]
}`

const projectYAML = `name: Demo
bpm: 100
timeSignature: [3, 4]
tracks:
  - id: t1
    name: Lead
    color: "#e6194b"
    waveType: square
    volume: 0.5
    pan: -0.25
    envelope: {attack: 0.01, decay: 0.1, sustain: 0.7, release: 0.3}
    notes:
      - {id: n1, pitch: 60, start: 0, duration: 1, velocity: 0.9}
`

func checkDemoProject(t *testing.T, p takt.Project) {
	t.Helper()
	if p.Name != "Demo" || p.BPM != 100 {
		t.Errorf("got name %q bpm %v, expected Demo at 100", p.Name, p.BPM)
	}
	if p.TimeSignature.BeatsPerBar != 3 || p.TimeSignature.NoteValue != 4 {
		t.Errorf("time signature = %+v, expected 3/4", p.TimeSignature)
	}
	if len(p.Tracks) != 1 {
		t.Fatalf("got %d tracks, expected 1", len(p.Tracks))
	}
	track := p.Tracks[0]
	if track.ID != "t1" || track.Name != "Lead" || track.WaveType != takt.WaveSquare {
		t.Errorf("track = %+v, expected the Lead square track", track)
	}
	if track.Volume != 0.5 || track.Pan != -0.25 {
		t.Errorf("track volume %v pan %v, expected 0.5 and -0.25", track.Volume, track.Pan)
	}
	if len(track.Notes) != 1 {
		t.Fatalf("got %d notes, expected 1", len(track.Notes))
	}
	n := track.Notes[0]
	if n.ID != "n1" || n.Pitch != 60 || n.Start != 0 || n.Duration != 1 || n.Velocity != 0.9 {
		t.Errorf("note = %+v", n)
	}
}

func TestParseProjectJSON(t *testing.T) {
	p, err := seq.ParseProject([]byte(projectJSON))
	if err != nil {
		t.Fatalf("ParseProject failed: %v", err)
	}
	checkDemoProject(t, p)
}

func TestParseProjectYAML(t *testing.T) {
	p, err := seq.ParseProject([]byte(projectYAML))
	if err != nil {
		t.Fatalf("ParseProject failed: %v", err)
	}
	checkDemoProject(t, p)
}

func TestParseProjectRejectsBadFiles(t *testing.T) {
	for _, test := range []struct {
		name     string
		contents string
	}{
		{"Garbage", "{{{ not a project"},
		{"BPMOutOfRange", `{"name": "x", "bpm": 500, "timeSignature": [4, 4], "tracks": []}`},
		{"ZeroTimeSignature", `{"name": "x", "bpm": 120, "timeSignature": [0, 4], "tracks": []}`},
		{"DuplicateTrackIDs", `{"name": "x", "bpm": 120, "timeSignature": [4, 4], "tracks": [
			{"id": "a", "name": "1", "waveType": "sine", "notes": []},
			{"id": "a", "name": "2", "waveType": "sine", "notes": []}]}`},
		{"UnknownWaveType", `{"name": "x", "bpm": 120, "timeSignature": [4, 4], "tracks": [
			{"id": "a", "name": "1", "waveType": "noise", "notes": []}]}`},
		{"InvalidNote", `{"name": "x", "bpm": 120, "timeSignature": [4, 4], "tracks": [
			{"id": "a", "name": "1", "waveType": "sine", "notes": [
				{"id": "n", "pitch": 200, "start": 0, "duration": 1, "velocity": 1}]}]}`},
	} {
		if _, err := seq.ParseProject([]byte(test.contents)); err == nil {
			t.Errorf("%s: ParseProject accepted a bad file", test.name)
		}
	}
}

func TestSaveAndOpenProjectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m, _ := newTestModel()
	trackID := m.Project().Tracks[0].ID
	m.ProjectName().SetValue("Roundtrip")
	m.BPM().SetValue(97)
	m.AddNote(trackID, takt.Note{Pitch: 60, Start: 0.5, Duration: 1.25, Velocity: 0.9})
	for _, name := range []string{"song.json", "song.yaml"} {
		path := filepath.Join(dir, name)
		if err := m.SaveProject(path); err != nil {
			t.Fatalf("SaveProject %s failed: %v", name, err)
		}
		if m.ChangedSinceSave() {
			t.Errorf("%s: saving should clear the unsaved changes flag", name)
		}
		if m.FilePath() != path {
			t.Errorf("%s: file path = %q, expected %q", name, m.FilePath(), path)
		}
		loaded, _ := newTestModel()
		if err := loaded.OpenProject(path); err != nil {
			t.Fatalf("OpenProject %s failed: %v", name, err)
		}
		p := loaded.Project()
		if p.Name != "Roundtrip" || p.BPM != 97 {
			t.Errorf("%s: got name %q bpm %v", name, p.Name, p.BPM)
		}
		if len(p.Tracks) != 1 || len(p.Tracks[0].Notes) != 1 {
			t.Fatalf("%s: got %d tracks", name, len(p.Tracks))
		}
		n := p.Tracks[0].Notes[0]
		if n.Pitch != 60 || n.Start != 0.5 || n.Duration != 1.25 || n.Velocity != 0.9 {
			t.Errorf("%s: note did not survive the round trip: %+v", name, n)
		}
		if loaded.ChangedSinceSave() {
			t.Errorf("%s: a freshly loaded project should not count as changed", name)
		}
		if loaded.Undo().Enabled() {
			t.Errorf("%s: loading should clear the undo history", name)
		}
		if sel := loaded.Selection().TrackID; sel != p.Tracks[0].ID {
			t.Errorf("%s: selection = %q, expected the first track", name, sel)
		}
		if loaded.FilePath() != path {
			t.Errorf("%s: loaded file path = %q", name, loaded.FilePath())
		}
	}
}

func TestSaveProjectReusesPath(t *testing.T) {
	m, _ := newTestModel()
	if err := m.SaveProject(""); err == nil {
		t.Errorf("saving without any path should fail")
	}
	path := filepath.Join(t.TempDir(), "song.json")
	if err := m.SaveProject(path); err != nil {
		t.Fatalf("SaveProject failed: %v", err)
	}
	m.BPM().SetValue(99)
	if err := m.SaveProject(""); err != nil {
		t.Fatalf("saving to the remembered path failed: %v", err)
	}
	loaded, _ := newTestModel()
	if err := loaded.OpenProject(path); err != nil {
		t.Fatalf("OpenProject failed: %v", err)
	}
	if got := loaded.Project().BPM; got != 99 {
		t.Errorf("bpm = %v, expected the second save to land in the same file", got)
	}
}

func TestOpenProjectKeepsModelOnError(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"bpm": 9000}`), 0644); err != nil {
		t.Fatal(err)
	}
	m, _ := newTestModel()
	trackID := m.Project().Tracks[0].ID
	m.AddNote(trackID, takt.Note{Pitch: 60, Start: 0, Duration: 1, Velocity: 1})
	if err := m.OpenProject(bad); err == nil {
		t.Fatalf("OpenProject accepted a bad file")
	}
	if got := len(m.Project().Tracks[0].Notes); got != 1 {
		t.Errorf("a failed open changed the project, %d notes left", got)
	}
	if err := m.OpenProject(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("OpenProject of a missing file succeeded")
	}
	found := false
	for _, a := range m.Alerts().Iterate {
		if a.Priority == seq.Error {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an error alert after the failed opens")
	}
}

func TestSettingsPersistence(t *testing.T) {
	dir := t.TempDir()
	broker := seq.NewBroker()
	m := seq.NewModel(broker, synth.Synther{}, nil, dir)
	trackID := m.Project().Tracks[0].ID
	m.AddNote(trackID, takt.Note{Pitch: 72, Start: 2, Duration: 0.5, Velocity: 0.8})
	m.SetGridSnap(takt.GridEighth)
	m.Zoom().SetValue(6)
	m.SetTool(seq.ToolErase)
	m.SetLoopRegion(1, 5)
	m.LoopEnabled().SetValue(true)
	m.MetronomeEnabled().SetValue(true)
	m.MetronomeVolume().SetValue(0.25)
	m.SaveSettings()

	reloaded := seq.NewModel(seq.NewBroker(), synth.Synther{}, nil, dir)
	p := reloaded.Project()
	if len(p.Tracks) != 1 || len(p.Tracks[0].Notes) != 1 {
		t.Fatalf("the project did not survive the restart")
	}
	if n := p.Tracks[0].Notes[0]; n.Pitch != 72 || n.Start != 2 {
		t.Errorf("restored note = %+v", n)
	}
	if got := reloaded.GridSnap(); got != takt.GridEighth {
		t.Errorf("grid snap = %v, expected %v", got, takt.GridEighth)
	}
	if got := reloaded.Zoom().Value(); got != 6 {
		t.Errorf("zoom = %v, expected 6", got)
	}
	if got := reloaded.Tool(); got != seq.ToolErase {
		t.Errorf("tool = %v, expected %v", got, seq.ToolErase)
	}
	if l := reloaded.Loop(); l.Start != 1 || l.End != 5 || !l.Enabled {
		t.Errorf("loop = %+v, expected 1 to 5 enabled", l)
	}
	if !reloaded.MetronomeEnabled().Value() || reloaded.MetronomeVolume().Value() != 0.25 {
		t.Errorf("metronome settings did not survive the restart")
	}
	if reloaded.ChangedSinceSave() {
		t.Errorf("a restored session should not start with unsaved changes")
	}
}

func TestCorruptSettingsFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"project.json", "transport.json", "ui.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{oops"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	m := seq.NewModel(seq.NewBroker(), synth.Synther{}, nil, dir)
	if len(m.Project().Tracks) != 1 || m.Project().Tracks[0].Name != "Track 1" {
		t.Errorf("expected the default project when every store is corrupt")
	}
	if m.Zoom().Value() != 4 || m.GridSnap() != takt.GridSixteenth || m.Tool() != seq.ToolDraw {
		t.Errorf("expected the default UI settings when every store is corrupt")
	}
}

func TestExportMIDIWritesFile(t *testing.T) {
	m, _ := newTestModel()
	trackID := m.Project().Tracks[0].ID
	m.AddNote(trackID, takt.Note{Pitch: 60, Start: 0, Duration: 1, Velocity: 1})
	path := filepath.Join(t.TempDir(), "out.mid")
	if err := m.ExportMIDI(path); err != nil {
		t.Fatalf("ExportMIDI failed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading the export failed: %v", err)
	}
	if len(b) < 14 || string(b[:4]) != "MThd" {
		t.Errorf("the export does not look like a standard MIDI file")
	}
}

func TestExportWavWritesFile(t *testing.T) {
	m, _ := newTestModel()
	trackID := m.Project().Tracks[0].ID
	m.AddNote(trackID, takt.Note{Pitch: 60, Start: 0, Duration: 1, Velocity: 1})
	path := filepath.Join(t.TempDir(), "out.wav")
	m.ExportWav(path, true)
	if !m.Exporting() {
		t.Fatalf("ExportWav did not mark the export as running")
	}
	for i := 0; i < 1000 && m.Exporting(); i++ {
		m.ProcessMessages()
		time.Sleep(10 * time.Millisecond)
	}
	if m.Exporting() {
		t.Fatalf("the export never finished")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading the export failed: %v", err)
	}
	if len(b) < 44 || string(b[:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		t.Errorf("the export does not look like a WAV file")
	}
	found := false
	for _, a := range m.Alerts().Iterate {
		if a.Name == "Export" && a.Priority == seq.Info && strings.Contains(a.Message, "Exported") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a completion alert after the export")
	}
}
