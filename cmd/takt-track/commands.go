package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/taktile/takt"
	"github.com/taktile/takt/seq"
)

type command struct {
	name  string
	usage string
	help  string
	run   func(m *seq.Model, args []string) error
	arity int // exact when zero or more; atLeast(n) allows n or more
}

func atLeast(n int) int { return -n - 1 }

var commands []command

// the table lives in init because the help command iterates over it
func init() {
	commands = []command{
		{"help", "", "list the commands", helpCommand, 0},
		{"new", "", "start an empty project", func(m *seq.Model, _ []string) error { m.NewProject().Do(); return nil }, 0},
		{"open", "FILE", "load a project from a JSON or YAML file", openCommand, 1},
		{"save", "[FILE]", "save the project, as YAML when the extension is .yml", saveCommand, atLeast(0)},
		{"export", "wav|midi FILE", "export the project; wav takes an optional trailing pcm16", exportCommand, atLeast(2)},
		{"play", "", "play from the current position", func(m *seq.Model, _ []string) error { m.Playing().SetValue(true); return nil }, 0},
		{"pause", "", "pause, keeping the position", func(m *seq.Model, _ []string) error { m.Playing().SetValue(false); return nil }, 0},
		{"toggle", "", "toggle between playing and paused", func(m *seq.Model, _ []string) error { m.Playing().Toggle(); return nil }, 0},
		{"stop", "", "stop and rewind to the beginning", func(m *seq.Model, _ []string) error { m.Stop().Do(); return nil }, 0},
		{"restart", "", "play from the beginning", func(m *seq.Model, _ []string) error { m.PlayFromStart().Do(); return nil }, 0},
		{"seek", "BEAT", "move the playback position", seekCommand, 1},
		{"pos", "", "show the playback position", posCommand, 0},
		{"loop", "on|off|START END", "control the loop region", loopCommand, atLeast(1)},
		{"metro", "on|off|VOLUME", "control the metronome", metroCommand, 1},
		{"bpm", "[TEMPO]", "show or set the tempo", bpmCommand, atLeast(0)},
		{"name", "NAME...", "rename the project", nameCommand, atLeast(1)},
		{"tracks", "", "list the tracks", tracksCommand, 0},
		{"track", "NUMBER", "select a track", trackCommand, 1},
		{"add", "", "add a track", func(m *seq.Model, _ []string) error { m.AddTrack().Do(); return nil }, 0},
		{"del", "", "delete the selected track", func(m *seq.Model, _ []string) error { m.DeleteTrack().Do(); return nil }, 0},
		{"wave", "sine|square|sawtooth|triangle", "set the oscillator of the selected track", waveCommand, 1},
		{"vol", "LEVEL", "set the volume of the selected track, 0 to 1", volCommand, 1},
		{"pan", "POSITION", "set the pan of the selected track, -1 to 1", panCommand, 1},
		{"mute", "", "toggle mute on the selected track", muteCommand, 0},
		{"solo", "", "toggle solo on the selected track", soloCommand, 0},
		{"env", "ATTACK DECAY SUSTAIN RELEASE", "set the envelope of the selected track, in seconds and 0-1", envCommand, 4},
		{"fx", "reverb|delay|filter|dist ...", "set an effect of the selected track", fxCommand, atLeast(2)},
		{"notes", "", "list the notes of the selected track", notesCommand, 0},
		{"note", "add|del|move|len|vel ...", "edit notes of the selected track", noteCommand, atLeast(1)},
		{"dup", "NUMBER...", "duplicate notes, selecting the copies", dupCommand, atLeast(1)},
		{"sel", "none|NUMBER...", "select notes", selCommand, atLeast(1)},
		{"grid", "[1/4|1/8|1/16|1/32]", "show or set the grid snap", gridCommand, atLeast(0)},
		{"tool", "draw|select|erase", "set the editing tool", toolCommand, 1},
		{"zoom", "LEVEL", "set the zoom level", zoomCommand, 1},
		{"undo", "", "undo the last note edit", func(m *seq.Model, _ []string) error { m.Undo().Do(); return nil }, 0},
		{"redo", "", "redo an undone note edit", func(m *seq.Model, _ []string) error { m.Redo().Do(); return nil }, 0},
		{"panic", "", "toggle the panic state, silencing the synth", panicCommand, 0},
		{"vu", "", "show the output levels", vuCommand, 0},
		{"preview", "PITCH [off]", "audition a pitch on the selected track", previewCommand, atLeast(1)},
		{"quit", "", "quit, refusing if there are unsaved changes", func(m *seq.Model, _ []string) error { m.RequestQuit().Do(); return nil }, 0},
		{"quit!", "", "quit, discarding unsaved changes", func(m *seq.Model, _ []string) error { m.ForceQuit().Do(); return nil }, 0},
	}
}

func eval(m *seq.Model, fields []string) error {
	name, args := fields[0], fields[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if c.arity < 0 {
			if min := -c.arity - 1; len(args) < min {
				return fmt.Errorf("%s: need at least %d arguments", name, min)
			}
		} else if len(args) != c.arity {
			return fmt.Errorf("%s: want %d arguments, got %d", name, c.arity, len(args))
		}
		return c.run(m, args)
	}
	return fmt.Errorf("unknown command %q; type help for a list", name)
}

func helpCommand(m *seq.Model, _ []string) error {
	for _, c := range commands {
		fmt.Printf("%-10s %-30s %s\n", c.name, c.usage, c.help)
	}
	return nil
}

func openCommand(m *seq.Model, args []string) error {
	m.OpenProject(args[0])
	return nil
}

func saveCommand(m *seq.Model, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	m.SaveProject(path)
	return nil
}

func exportCommand(m *seq.Model, args []string) error {
	switch args[0] {
	case "wav":
		pcm16 := len(args) > 2 && args[2] == "pcm16"
		m.ExportWav(args[1], pcm16)
	case "midi":
		m.ExportMIDI(args[1])
	default:
		return fmt.Errorf("export: unknown format %q", args[0])
	}
	return nil
}

func seekCommand(m *seq.Model, args []string) error {
	beat, err := parseFloat(args[0])
	if err != nil {
		return err
	}
	m.Seek(beat)
	return posCommand(m, nil)
}

func posCommand(m *seq.Model, _ []string) error {
	state := "stopped"
	if m.Playing().Value() {
		state = "playing"
	} else if m.IsPaused() {
		state = "paused"
	}
	fmt.Printf("%s (beat %.3f, %s)\n", m.Position(), m.CurrentBeat(), state)
	return nil
}

func loopCommand(m *seq.Model, args []string) error {
	switch args[0] {
	case "on":
		m.LoopEnabled().SetValue(true)
	case "off":
		m.LoopEnabled().SetValue(false)
	default:
		if len(args) != 2 {
			return fmt.Errorf("loop: want on, off or two beat positions")
		}
		a, err := parseFloat(args[0])
		if err != nil {
			return err
		}
		b, err := parseFloat(args[1])
		if err != nil {
			return err
		}
		m.SetLoopRegion(a, b)
		m.LoopEnabled().SetValue(true)
	}
	l := m.Loop()
	state := "off"
	if l.Enabled {
		state = "on"
	}
	fmt.Printf("loop %s: %.3f to %.3f\n", state, l.Start, l.End)
	return nil
}

func metroCommand(m *seq.Model, args []string) error {
	switch args[0] {
	case "on":
		m.MetronomeEnabled().SetValue(true)
	case "off":
		m.MetronomeEnabled().SetValue(false)
	default:
		vol, err := parseFloat(args[0])
		if err != nil {
			return err
		}
		m.MetronomeVolume().SetValue(vol)
		m.MetronomeEnabled().SetValue(true)
	}
	return nil
}

func bpmCommand(m *seq.Model, args []string) error {
	if len(args) > 0 {
		tempo, err := parseFloat(args[0])
		if err != nil {
			return err
		}
		m.BPM().SetValue(tempo)
	}
	fmt.Printf("%v bpm\n", m.BPM().Value())
	return nil
}

func nameCommand(m *seq.Model, args []string) error {
	m.ProjectName().SetValue(strings.Join(args, " "))
	return nil
}

func tracksCommand(m *seq.Model, _ []string) error {
	p := m.Project()
	sel := m.Selection().TrackID
	for i, t := range p.Tracks {
		marker := " "
		if t.ID == sel {
			marker = "*"
		}
		flags := ""
		if t.Muted {
			flags += "M"
		}
		if t.Solo {
			flags += "S"
		}
		fmt.Printf("%s %2d %-20s %-9s vol %.2f pan %+.2f %-2s %d notes\n",
			marker, i+1, t.Name, t.WaveType, t.Volume, t.Pan, flags, len(t.Notes))
	}
	return nil
}

func trackCommand(m *seq.Model, args []string) error {
	i, err := parseIndex(args[0], len(m.Project().Tracks))
	if err != nil {
		return err
	}
	m.SelectTrack(m.Project().Tracks[i].ID)
	return nil
}

func waveCommand(m *seq.Model, args []string) error {
	if !m.SetWaveType(takt.WaveType(args[0])) {
		return fmt.Errorf("wave: unknown wave type %q", args[0])
	}
	return nil
}

func volCommand(m *seq.Model, args []string) error {
	level, err := parseFloat(args[0])
	if err != nil {
		return err
	}
	m.TrackVolume().SetValue(level)
	return nil
}

func panCommand(m *seq.Model, args []string) error {
	position, err := parseFloat(args[0])
	if err != nil {
		return err
	}
	m.TrackPan().SetValue(position)
	return nil
}

func muteCommand(m *seq.Model, _ []string) error {
	m.Muted().Toggle()
	fmt.Printf("mute %v\n", m.Muted().Value())
	return nil
}

func soloCommand(m *seq.Model, _ []string) error {
	m.Solo().Toggle()
	fmt.Printf("solo %v\n", m.Solo().Value())
	return nil
}

func envCommand(m *seq.Model, args []string) error {
	var vals [4]float64
	for i, a := range args {
		v, err := parseFloat(a)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	m.SetEnvelope(takt.Envelope{Attack: vals[0], Decay: vals[1], Sustain: vals[2], Release: vals[3]})
	return nil
}

func fxCommand(m *seq.Model, args []string) error {
	switch args[0] {
	case "reverb":
		wet, err := parseFloat(args[1])
		if err != nil {
			return err
		}
		m.SetEffect(takt.ReverbEffect(takt.ReverbSettings{Wet: wet}))
	case "delay":
		if len(args) != 4 {
			return fmt.Errorf("fx delay: want TIME FEEDBACK WET, e.g. fx delay 8n 0.3 0.5")
		}
		feedback, err := parseFloat(args[2])
		if err != nil {
			return err
		}
		wet, err := parseFloat(args[3])
		if err != nil {
			return err
		}
		m.SetEffect(takt.DelayEffect(takt.DelaySettings{Time: takt.DelayTime(args[1]), Feedback: feedback, Wet: wet}))
	case "filter":
		if len(args) != 4 {
			return fmt.Errorf("fx filter: want lowpass|highpass FREQUENCY Q")
		}
		freq, err := parseFloat(args[2])
		if err != nil {
			return err
		}
		q, err := parseFloat(args[3])
		if err != nil {
			return err
		}
		m.SetEffect(takt.FilterEffect(takt.FilterSettings{Kind: takt.FilterKind(args[1]), Frequency: freq, Q: q}))
	case "dist":
		amount, err := parseFloat(args[1])
		if err != nil {
			return err
		}
		m.SetEffect(takt.DistortionEffect(takt.DistortionSettings{Amount: amount}))
	default:
		return fmt.Errorf("fx: unknown effect %q", args[0])
	}
	return nil
}

func notesCommand(m *seq.Model, _ []string) error {
	notes := sortedNotes(m)
	sel := m.Selection()
	for i, n := range notes {
		marker := " "
		if sel.Contains(n.ID) {
			marker = "*"
		}
		fmt.Printf("%s %3d %-4s start %7.3f len %6.3f vel %.2f\n",
			marker, i+1, takt.NoteName(n.Pitch), n.Start, n.Duration, n.Velocity)
	}
	return nil
}

func noteCommand(m *seq.Model, args []string) error {
	trackID := m.Selection().TrackID
	switch args[0] {
	case "add":
		if len(args) < 4 || len(args) > 5 {
			return fmt.Errorf("note add: want PITCH START DURATION, with an optional VELOCITY")
		}
		pitch, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("note add: %q is not a MIDI pitch", args[1])
		}
		start, err := parseFloat(args[2])
		if err != nil {
			return err
		}
		duration, err := parseFloat(args[3])
		if err != nil {
			return err
		}
		velocity := 0.8
		if len(args) == 5 {
			if velocity, err = parseFloat(args[4]); err != nil {
				return err
			}
		}
		start = takt.SnapToGrid(start, m.GridSnap())
		if !m.AddNote(trackID, takt.NewNote(pitch, start, duration, velocity)) {
			return fmt.Errorf("note add: no track selected")
		}
	case "del":
		ids, err := resolveNotes(m, args[1:])
		if err != nil {
			return err
		}
		m.RemoveNotes(trackID, ids)
	case "move":
		if len(args) != 3 {
			return fmt.Errorf("note move: want NUMBER START")
		}
		ids, err := resolveNotes(m, args[1:2])
		if err != nil {
			return err
		}
		start, err := parseFloat(args[2])
		if err != nil {
			return err
		}
		start = takt.SnapToGrid(start, m.GridSnap())
		m.UpdateNote(trackID, ids[0], func(n *takt.Note) { n.Start = start })
	case "len":
		if len(args) != 3 {
			return fmt.Errorf("note len: want NUMBER DURATION")
		}
		ids, err := resolveNotes(m, args[1:2])
		if err != nil {
			return err
		}
		duration, err := parseFloat(args[2])
		if err != nil {
			return err
		}
		m.UpdateNote(trackID, ids[0], func(n *takt.Note) { n.Duration = duration })
	case "vel":
		if len(args) != 3 {
			return fmt.Errorf("note vel: want NUMBER VELOCITY")
		}
		ids, err := resolveNotes(m, args[1:2])
		if err != nil {
			return err
		}
		velocity, err := parseFloat(args[2])
		if err != nil {
			return err
		}
		m.UpdateNote(trackID, ids[0], func(n *takt.Note) { n.Velocity = velocity })
	default:
		return fmt.Errorf("note: unknown subcommand %q", args[0])
	}
	return nil
}

func dupCommand(m *seq.Model, args []string) error {
	ids, err := resolveNotes(m, args)
	if err != nil {
		return err
	}
	newIDs := m.DuplicateNotes(m.Selection().TrackID, ids)
	m.SelectNotes(m.Selection().TrackID, newIDs)
	fmt.Printf("duplicated %d notes\n", len(newIDs))
	return nil
}

func selCommand(m *seq.Model, args []string) error {
	if args[0] == "none" {
		m.ClearSelection()
		return nil
	}
	ids, err := resolveNotes(m, args)
	if err != nil {
		return err
	}
	m.SelectNotes(m.Selection().TrackID, ids)
	return nil
}

func gridCommand(m *seq.Model, args []string) error {
	if len(args) > 0 {
		g, err := takt.ParseGridSize(args[0])
		if err != nil {
			return err
		}
		m.SetGridSnap(g)
	}
	fmt.Printf("grid %v\n", m.GridSnap())
	return nil
}

func toolCommand(m *seq.Model, args []string) error {
	switch t := seq.Tool(args[0]); t {
	case seq.ToolDraw, seq.ToolSelect, seq.ToolErase:
		m.SetTool(t)
		return nil
	}
	return fmt.Errorf("tool: unknown tool %q", args[0])
}

func zoomCommand(m *seq.Model, args []string) error {
	level, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("zoom: %q is not a number", args[0])
	}
	m.Zoom().SetValue(level)
	fmt.Printf("zoom %d\n", m.Zoom().Value())
	return nil
}

func panicCommand(m *seq.Model, _ []string) error {
	m.Panic().Toggle()
	fmt.Printf("panic %v\n", m.Panic().Value())
	return nil
}

func vuCommand(m *seq.Model, _ []string) error {
	master := m.MasterVolume()
	fmt.Printf("master %6.1f dB / %6.1f dB\n", master[0], master[1])
	for i, t := range m.Project().Tracks {
		fmt.Printf("%2d %-20s %s\n", i+1, t.Name, levelBar(m.TrackLevel(i)))
	}
	return nil
}

func previewCommand(m *seq.Model, args []string) error {
	pitch, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("preview: %q is not a MIDI pitch", args[0])
	}
	track := m.Project().TrackIndex(m.Selection().TrackID)
	if track < 0 {
		return fmt.Errorf("preview: no track selected")
	}
	on := len(args) < 2 || args[1] != "off"
	m.PreviewNote(track, pitch, on)
	return nil
}

func levelBar(level float32) string {
	const width = 20
	n := int(level * width)
	if n > width {
		n = width
	}
	return "[" + strings.Repeat("#", n) + strings.Repeat("-", width-n) + "]"
}

// sortedNotes returns the notes of the selected track ordered by start
// time, which is the order the notes and note commands number them in.
func sortedNotes(m *seq.Model) []takt.Note {
	ti := m.Project().TrackIndex(m.Selection().TrackID)
	if ti < 0 {
		return nil
	}
	notes := append([]takt.Note(nil), m.Project().Tracks[ti].Notes...)
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		return notes[i].Pitch < notes[j].Pitch
	})
	return notes
}

func resolveNotes(m *seq.Model, args []string) ([]string, error) {
	notes := sortedNotes(m)
	ids := make([]string, 0, len(args))
	for _, a := range args {
		i, err := parseIndex(a, len(notes))
		if err != nil {
			return nil, err
		}
		ids = append(ids, notes[i].ID)
	}
	return ids, nil
}

func parseIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("%d is out of range, have 1 to %d", i, n)
	}
	return i - 1, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}
