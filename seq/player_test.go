package seq_test

import (
	"testing"

	"github.com/taktile/takt"
	"github.com/taktile/takt/seq"
	"github.com/taktile/takt/synth"
)

func newTestPlayer() (*seq.Player, *seq.Broker) {
	broker := seq.NewBroker()
	return seq.NewPlayer(broker, synth.Synther{}), broker
}

func playerProject(notes ...takt.Note) takt.Project {
	p := takt.NewProject()
	track := takt.NewTrack("Track 1", takt.TrackColors[0])
	track.Notes = append(track.Notes, notes...)
	p.Tracks = append(p.Tracks, track)
	return p
}

func drainToModel(broker *seq.Broker) []seq.MsgToModel {
	var msgs []seq.MsgToModel
	for {
		select {
		case msg := <-broker.ToModel:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func lastPosition(msgs []seq.MsgToModel) (seq.MsgToModel, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].HasPanicPosLevels {
			return msgs[i], true
		}
	}
	return seq.MsgToModel{}, false
}

func maxAbs(buffer takt.AudioBuffer) float32 {
	var ret float32
	for _, frame := range buffer {
		for _, s := range frame {
			if s > ret {
				ret = s
			}
			if -s > ret {
				ret = -s
			}
		}
	}
	return ret
}

func TestPlayerSilentWithoutProject(t *testing.T) {
	player, broker := newTestPlayer()
	buffer := make(takt.AudioBuffer, 512)
	buffer[0] = [2]float32{1, -1}
	player.Process(buffer)
	if got := maxAbs(buffer); got != 0 {
		t.Errorf("player output %v before any project arrived, expected silence", got)
	}
	pos, ok := lastPosition(drainToModel(broker))
	if !ok {
		t.Fatalf("the player did not report its position")
	}
	if pos.Beat != 0 {
		t.Errorf("position = %v, expected 0", pos.Beat)
	}
}

func TestPlayerAdvancesPosition(t *testing.T) {
	player, broker := newTestPlayer()
	seq.TrySend(broker.ToPlayer, any(playerProject()))
	seq.TrySend(broker.ToPlayer, any(seq.StartPlayMsg{Beat: 0}))
	buffer := make(takt.AudioBuffer, 441)
	var beats []float64
	for i := 0; i < 50; i++ { // one second at 120 bpm
		player.Process(buffer)
		for _, msg := range drainToModel(broker) {
			if msg.HasPanicPosLevels {
				beats = append(beats, msg.Beat)
			}
		}
	}
	if len(beats) == 0 {
		t.Fatalf("no position messages arrived")
	}
	last := beats[len(beats)-1]
	if last < 0.95 || last > 1.05 {
		t.Errorf("position after one second = %v beats, expected about 1", last)
	}
	for i := 1; i < len(beats); i++ {
		if beats[i] < beats[i-1] {
			t.Fatalf("position went backwards: %v after %v", beats[i], beats[i-1])
		}
	}
}

func TestPlayerTriggersScheduledNotes(t *testing.T) {
	player, broker := newTestPlayer()
	project := playerProject(takt.NewNote(69, 0, 1, 1))
	seq.TrySend(broker.ToPlayer, any(project))
	seq.TrySend(broker.ToPlayer, any(seq.StartPlayMsg{Beat: 0}))
	buffer := make(takt.AudioBuffer, 4410)
	player.Process(buffer)
	if got := maxAbs(buffer); got < 0.01 {
		t.Errorf("output peak %v, expected the scheduled note to be audible", got)
	}
	pos, ok := lastPosition(drainToModel(broker))
	if !ok {
		t.Fatalf("the player did not report its position")
	}
	if pos.VoiceLevels[0] <= 0 {
		t.Errorf("voice 0 level = %v, expected it to light up", pos.VoiceLevels[0])
	}
}

func TestPlayerLoopWraps(t *testing.T) {
	player, broker := newTestPlayer()
	seq.TrySend(broker.ToPlayer, any(playerProject()))
	seq.TrySend(broker.ToPlayer, any(seq.Loop{Start: 0, End: 1, Enabled: true}))
	seq.TrySend(broker.ToPlayer, any(seq.StartPlayMsg{Beat: 0}))
	buffer := make(takt.AudioBuffer, 441)
	var peak float64
	wrapped := false
	for i := 0; i < 300; i++ { // six beats at 120 bpm
		player.Process(buffer)
		for _, msg := range drainToModel(broker) {
			if !msg.HasPanicPosLevels {
				continue
			}
			if msg.Beat > 1+1e-6 {
				t.Fatalf("position %v escaped the loop", msg.Beat)
			}
			if msg.Beat > peak {
				peak = msg.Beat
			}
			if peak > 0.9 && msg.Beat < 0.5 {
				wrapped = true
			}
		}
	}
	if !wrapped {
		t.Errorf("the position never wrapped back to the loop start")
	}
}

func TestPlayerPanicSilencesAndRecovers(t *testing.T) {
	player, broker := newTestPlayer()
	project := playerProject(takt.NewNote(60, 0, 16, 1))
	seq.TrySend(broker.ToPlayer, any(project))
	seq.TrySend(broker.ToPlayer, any(seq.StartPlayMsg{Beat: 0}))
	buffer := make(takt.AudioBuffer, 4410)
	player.Process(buffer)
	if maxAbs(buffer) < 0.01 {
		t.Fatalf("expected audible output before the panic")
	}
	seq.TrySend(broker.ToPlayer, any(seq.PanicMsg{Panic: true}))
	player.Process(buffer)
	if got := maxAbs(buffer); got != 0 {
		t.Errorf("output peak %v during panic, expected silence", got)
	}
	pos, ok := lastPosition(drainToModel(broker))
	if !ok || !pos.Panic {
		t.Errorf("the player did not report the panic state")
	}
	seq.TrySend(broker.ToPlayer, any(seq.PanicMsg{Panic: false}))
	seq.TrySend(broker.ToPlayer, any(seq.SeekMsg{Beat: 0}))
	player.Process(buffer)
	if maxAbs(buffer) < 0.01 {
		t.Errorf("expected the note to sound again after the panic was cleared")
	}
	pos, ok = lastPosition(drainToModel(broker))
	if !ok || pos.Panic {
		t.Errorf("the player still reports a panic after it was cleared")
	}
}

func TestPlayerPreviewsNotes(t *testing.T) {
	player, broker := newTestPlayer()
	seq.TrySend(broker.ToPlayer, any(playerProject()))
	seq.TrySend(broker.ToPlayer, any(seq.NotePreviewMsg{Track: 0, Pitch: 69, On: true}))
	buffer := make(takt.AudioBuffer, 4410)
	player.Process(buffer)
	if maxAbs(buffer) < 0.01 {
		t.Fatalf("expected the previewed note to be audible while held")
	}
	seq.TrySend(broker.ToPlayer, any(seq.NotePreviewMsg{Track: 0, Pitch: 69, On: false}))
	tail := make(takt.AudioBuffer, takt.SampleRate)
	player.Process(tail) // let the release ring out
	player.Process(buffer)
	if got := maxAbs(buffer); got > 1e-3 {
		t.Errorf("output peak %v long after releasing the preview, expected silence", got)
	}
}

func TestPlayerMetronomeClicks(t *testing.T) {
	player, broker := newTestPlayer()
	seq.TrySend(broker.ToPlayer, any(playerProject()))
	seq.TrySend(broker.ToPlayer, any(seq.MetronomeMsg{Enabled: true, Volume: 1}))
	seq.TrySend(broker.ToPlayer, any(seq.StartPlayMsg{Beat: 0}))
	buffer := make(takt.AudioBuffer, 2205)
	player.Process(buffer)
	if got := maxAbs(buffer); got < 0.1 {
		t.Errorf("output peak %v, expected a click on the downbeat of an empty project", got)
	}
}

func TestPlayerPauseReleasesVoices(t *testing.T) {
	player, broker := newTestPlayer()
	project := playerProject(takt.NewNote(60, 0, 16, 1))
	seq.TrySend(broker.ToPlayer, any(project))
	seq.TrySend(broker.ToPlayer, any(seq.StartPlayMsg{Beat: 0}))
	buffer := make(takt.AudioBuffer, 4410)
	player.Process(buffer)
	if maxAbs(buffer) < 0.01 {
		t.Fatalf("expected audible output while playing")
	}
	seq.TrySend(broker.ToPlayer, any(seq.IsPlayingMsg{IsPlaying: false}))
	tail := make(takt.AudioBuffer, takt.SampleRate)
	player.Process(tail) // pausing releases; the release rings out
	player.Process(buffer)
	if got := maxAbs(buffer); got > 1e-3 {
		t.Errorf("output peak %v long after pausing, expected silence", got)
	}
	pos, ok := lastPosition(drainToModel(broker))
	if !ok {
		t.Fatalf("the player went quiet after pausing")
	}
	if pos.Beat == 0 {
		t.Errorf("pausing rewound the position to 0")
	}
}

func TestPlayerSkipsMutedTracks(t *testing.T) {
	player, broker := newTestPlayer()
	project := playerProject(takt.NewNote(60, 0, 4, 1))
	project.Tracks[0].Muted = true
	seq.TrySend(broker.ToPlayer, any(project))
	seq.TrySend(broker.ToPlayer, any(seq.StartPlayMsg{Beat: 0}))
	buffer := make(takt.AudioBuffer, 4410)
	player.Process(buffer)
	if got := maxAbs(buffer); got != 0 {
		t.Errorf("output peak %v, expected a muted track to stay silent", got)
	}
}
