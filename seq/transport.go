package seq

import "math"

type (
	// Loop is the loop region of the transport, in beats. The region is
	// half open: positions in [Start,End) are inside the loop.
	Loop struct {
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Enabled bool    `json:"enabled"`
	}

	// BeatSink receives the playback position synchronously whenever the
	// user seeks, before the seek returns. The Player implements this
	// through the broker; tests and alternative frontends can inject
	// their own.
	BeatSink interface {
		SyncBeat(beat float64)
	}

	brokerBeatSink struct {
		broker *Broker
	}
)

func (b brokerBeatSink) SyncBeat(beat float64) {
	TrySend(b.broker.ToPlayer, any(SeekMsg{Beat: beat}))
}

// Seek clamps the position to zero or more, pushes it synchronously to
// the position sink so the audio side follows, and then moves the
// displayed position. Seeking works the same whether the transport is
// playing, paused or stopped.
func (m *Model) Seek(beat float64) {
	if beat < 0 || math.IsNaN(beat) {
		beat = 0
	}
	m.beatSink.SyncBeat(beat)
	m.currentBeat = beat
}

func (m *Model) play() {
	if m.playing {
		return
	}
	m.setPanic(false)
	m.playing = true
	m.paused = false
	TrySend(m.broker.ToPlayer, any(StartPlayMsg{Beat: m.currentBeat}))
}

func (m *Model) pause() {
	if !m.playing {
		return
	}
	m.playing = false
	m.paused = true
	TrySend(m.broker.ToPlayer, any(IsPlayingMsg{IsPlaying: false}))
}

func (m *Model) stopPlaying() {
	m.playing = false
	m.paused = false
	m.currentBeat = 0
	TrySend(m.broker.ToPlayer, any(IsPlayingMsg{IsPlaying: false}))
	TrySend(m.broker.ToPlayer, any(SeekMsg{Beat: 0}))
}

func (m *Model) setPanic(val bool) {
	if m.panic == val {
		return
	}
	m.panic = val
	TrySend(m.broker.ToPlayer, any(PanicMsg{Panic: val}))
}

// Loop returns the current loop region.
func (m *Model) Loop() Loop { return m.d.Loop }

// SetLoopRegion sets the loop boundaries, storing them in ascending
// order regardless of the order given.
func (m *Model) SetLoopRegion(a, b float64) {
	defer m.change("SetLoopRegion", LoopChange, MinorChange)()
	if math.IsNaN(a) || a < 0 {
		a = 0
	}
	if math.IsNaN(b) || b < 0 {
		b = 0
	}
	m.d.Loop.Start = math.Min(a, b)
	m.d.Loop.End = math.Max(a, b)
}

// PreviewNote asks the Player to audition a pitch on a track, outside
// any schedule, for as long as the key is held.
func (m *Model) PreviewNote(track, pitch int, on bool) {
	TrySend(m.broker.ToPlayer, any(NotePreviewMsg{Track: track, Pitch: pitch, On: on}))
}
