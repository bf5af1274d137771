package seq

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/taktile/takt"
)

type (
	// Player is the playback engine. It runs on the audio goroutine,
	// pulling messages from the model through the broker and filling the
	// buffers the audio device asks for; it never touches the model
	// directly and never blocks.
	Player struct {
		synth    takt.Synth
		project  takt.Project
		schedule []takt.Event
		loop     Loop

		playing    bool
		panicked   bool
		beat       float64
		eventIndex int
		nextTick   float64
		nextClick  float64

		metronomeEnabled bool
		metronomeVolume  float64
		clickFrames      int
		clickPhase       float64
		clickFreq        float64
		clickAmp         float64

		voiceNoteID  [takt.MaxVoices]string
		voiceStart   [takt.MaxVoices]int
		triggerCount int
		voiceLevels  [takt.MaxVoices]float32

		volume  VolumeAnalyzer
		synther takt.Synther
		broker  *Broker
	}

	// IsPlayingMsg pauses or resumes playback without moving the
	// position.
	IsPlayingMsg struct {
		IsPlaying bool
	}

	// StartPlayMsg starts playback from the given position.
	StartPlayMsg struct {
		Beat float64
	}

	// SeekMsg moves the playback position, whether playing or not.
	SeekMsg struct {
		Beat float64
	}

	// PanicMsg tears the synth down and keeps the output silent until
	// turned off again, at which point the synth is rebuilt.
	PanicMsg struct {
		Panic bool
	}

	// MetronomeMsg reconfigures the metronome click.
	MetronomeMsg struct {
		Enabled bool
		Volume  float64
	}

	// NotePreviewMsg auditions a pitch on a track while a key is held,
	// outside any schedule.
	NotePreviewMsg struct {
		Track int
		Pitch int
		On    bool
	}
)

const (
	tickStep       = 0.25 // of a beat, so the UI position advances per sixteenth
	previewVel     = 0.75
	clickLength    = takt.SampleRate / 20
	clickDecay     = 0.012 // seconds to fall to 1/e
	clickAccentHz  = 1760
	clickRegularHz = 880
)

// NewPlayer makes a player that communicates through the broker. The
// synth is built lazily from the first project the model sends.
func NewPlayer(broker *Broker, synther takt.Synther) *Player {
	return &Player{
		broker:  broker,
		synther: synther,
		volume:  VolumeAnalyzer{Attack: 0.3, Release: 0.3, Min: -100, Max: 20},
	}
}

// Process renders the next buffer of audio, advancing the playback
// position and triggering and releasing voices as their events come
// up. The synth keeps rendering while the transport is stopped, so
// releases ring out and note previews are audible.
func (p *Player) Process(buffer takt.AudioBuffer) {
	p.processMessages()
	for len(buffer) > 0 {
		if p.synth == nil {
			for i := range buffer {
				buffer[i] = [2]float32{}
			}
			break
		}
		if p.playing && p.loopActive() && p.beat >= p.loop.End-1e-9 {
			p.wrapLoop()
		}
		p.processDueEvents()
		frames := len(buffer)
		atBoundary := false
		boundary := math.Inf(1)
		if p.playing && p.project.BPM > 0 {
			framesPerBeat := 60.0 * takt.SampleRate / p.project.BPM
			if p.eventIndex < len(p.schedule) {
				boundary = p.schedule[p.eventIndex].Beat
			}
			if p.loopActive() && p.beat < p.loop.End && p.loop.End < boundary {
				boundary = p.loop.End
			}
			if p.nextTick < boundary {
				boundary = p.nextTick
			}
			if p.metronomeEnabled && p.nextClick < boundary {
				boundary = p.nextClick
			}
			if !math.IsInf(boundary, 1) {
				toBoundary := int(math.Ceil((boundary - p.beat) * framesPerBeat))
				if toBoundary < 1 {
					toBoundary = 1
				}
				if toBoundary <= frames {
					frames = toBoundary
					atBoundary = true
				}
			}
			p.render(buffer[:frames])
			if atBoundary {
				p.beat = boundary
			} else {
				p.beat += float64(frames) / framesPerBeat
			}
		} else {
			p.render(buffer[:frames])
		}
		buffer = buffer[frames:]
	}
	p.sendPosition()
}

func (p *Player) processMessages() {
	for {
		select {
		case msg := <-p.broker.ToPlayer:
			switch e := msg.(type) {
			case takt.Project:
				p.project = e
				p.rebuild()
			case Loop:
				p.loop = e
			case IsPlayingMsg:
				p.playing = e.IsPlaying
				if !e.IsPlaying {
					p.releaseAll()
				}
			case StartPlayMsg:
				p.seekTo(e.Beat)
				p.playing = true
			case SeekMsg:
				p.seekTo(e.Beat)
			case PanicMsg:
				if e.Panic {
					p.panicked = true
					p.synth = nil
					p.clearVoices()
				} else if p.panicked {
					p.panicked = false
					p.rebuild()
				}
			case MetronomeMsg:
				p.metronomeEnabled = e.Enabled
				p.metronomeVolume = e.Volume
			case NotePreviewMsg:
				id := fmt.Sprintf("preview-%d-%d", e.Track, e.Pitch)
				if e.On {
					p.trigger(e.Track, id, e.Pitch, previewVel)
				} else {
					p.release(id)
				}
			}
		default:
			return
		}
	}
}

// rebuild recomputes the schedule and brings the synth up to date with
// the current tracks. Voices whose note disappeared from the schedule
// are released, so deleting a sounding note stops it; other voices keep
// running, so tweaking a volume knob does not cut the audio.
func (p *Player) rebuild() {
	p.schedule = takt.Schedule(p.project.Tracks, p.project.BPM)
	p.eventIndex = sort.Search(len(p.schedule), func(i int) bool {
		return p.schedule[i].Beat >= p.beat-1e-9
	})
	if p.panicked {
		return
	}
	if p.synth == nil {
		synth, err := p.synther.Synth(p.project.Tracks, p.project.BPM)
		if err != nil {
			p.alert("SynthCrash", fmt.Sprintf("Synth failed to start: %v", err), Error)
			return
		}
		p.synth = synth
	} else if err := p.synth.Update(p.project.Tracks, p.project.BPM); err != nil {
		p.panicked = true
		p.synth = nil
		p.clearVoices()
		return
	}
	alive := make(map[string]bool, len(p.schedule)/2)
	for _, e := range p.schedule {
		if e.On {
			alive[e.NoteID] = true
		}
	}
	for v, id := range p.voiceNoteID {
		if id != "" && !alive[id] && !strings.HasPrefix(id, "preview-") {
			p.voiceNoteID[v] = ""
			p.synth.Release(v)
		}
	}
}

// loopActive reports whether looping is on and the region is not
// degenerate; a zero length region cannot be looped over.
func (p *Player) loopActive() bool {
	return p.loop.Enabled && p.loop.End > p.loop.Start
}

func (p *Player) seekTo(beat float64) {
	if beat < 0 {
		beat = 0
	}
	p.beat = beat
	p.eventIndex = sort.Search(len(p.schedule), func(i int) bool {
		return p.schedule[i].Beat >= beat-1e-9
	})
	p.nextTick = math.Ceil(beat/tickStep-1e-9) * tickStep
	p.nextClick = math.Ceil(beat - 1e-9)
	p.releaseAll()
}

func (p *Player) wrapLoop() {
	p.releaseAll()
	p.beat = p.loop.Start
	p.eventIndex = sort.Search(len(p.schedule), func(i int) bool {
		return p.schedule[i].Beat >= p.loop.Start-1e-9
	})
	p.nextTick = math.Ceil(p.loop.Start/tickStep-1e-9) * tickStep
	p.nextClick = math.Ceil(p.loop.Start - 1e-9)
}

// processDueEvents fires everything scheduled at or before the current
// position: note ons and offs, the position tick and the metronome
// click. The schedule orders simultaneous offs before ons, so a note
// ending exactly where another starts frees its voice first.
func (p *Player) processDueEvents() {
	if !p.playing {
		return
	}
	for p.eventIndex < len(p.schedule) {
		e := p.schedule[p.eventIndex]
		if e.Beat > p.beat+1e-9 {
			break
		}
		if p.loopActive() && e.Beat >= p.loop.End-1e-9 {
			break
		}
		if e.On {
			p.trigger(e.Track, e.NoteID, e.Pitch, e.Velocity)
		} else {
			p.release(e.NoteID)
		}
		p.eventIndex++
	}
	if p.beat >= p.nextTick-1e-9 {
		p.sendPosition()
		p.nextTick += tickStep
	}
	if p.metronomeEnabled && p.beat >= p.nextClick-1e-9 {
		p.startClick(int(math.Round(p.nextClick)))
		p.nextClick++
	}
}

func (p *Player) render(buffer takt.AudioBuffer) {
	if err := p.synth.Render(buffer); err != nil {
		p.panicked = true
		p.synth = nil
		p.clearVoices()
		for i := range buffer {
			buffer[i] = [2]float32{}
		}
		return
	}
	if p.clickFrames > 0 {
		p.renderClick(buffer)
	}
	p.volume.Update(buffer)
	decay := float32(math.Exp(-float64(len(buffer)) / 15000))
	for i := range p.voiceLevels {
		p.voiceLevels[i] *= decay
	}
}

func (p *Player) startClick(beat int) {
	beatsPerBar := p.project.TimeSignature.BeatsPerBar
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}
	p.clickFreq = clickRegularHz
	if beat%beatsPerBar == 0 {
		p.clickFreq = clickAccentHz
	}
	p.clickFrames = clickLength
	p.clickPhase = 0
	p.clickAmp = p.metronomeVolume
}

func (p *Player) renderClick(buffer takt.AudioBuffer) {
	decay := math.Exp(-1 / (clickDecay * takt.SampleRate))
	step := 2 * math.Pi * p.clickFreq / takt.SampleRate
	for i := range buffer {
		if p.clickFrames <= 0 {
			break
		}
		s := float32(math.Sin(p.clickPhase) * p.clickAmp)
		buffer[i][0] += s
		buffer[i][1] += s
		p.clickPhase += step
		p.clickAmp *= decay
		p.clickFrames--
	}
}

// trigger starts a voice for the note on its track's fixed range of
// voices, preferring a free voice and stealing the oldest one when all
// four are busy.
func (p *Player) trigger(track int, noteID string, pitch int, velocity float64) {
	if p.synth == nil {
		return
	}
	first, err := takt.VoiceForTrack(track)
	if err != nil {
		return
	}
	voice := -1
	oldest := first
	for v := first; v < first+takt.VoicesPerTrack; v++ {
		if p.voiceNoteID[v] == "" {
			voice = v
			break
		}
		if p.voiceStart[v] < p.voiceStart[oldest] {
			oldest = v
		}
	}
	if voice < 0 {
		voice = oldest
	}
	p.triggerCount++
	p.voiceStart[voice] = p.triggerCount
	p.voiceNoteID[voice] = noteID
	p.voiceLevels[voice] = float32(velocity)
	p.synth.Trigger(voice, pitch, velocity)
}

func (p *Player) release(noteID string) {
	for v, id := range p.voiceNoteID {
		if id == noteID {
			p.voiceNoteID[v] = ""
			if p.synth != nil {
				p.synth.Release(v)
			}
			return
		}
	}
}

func (p *Player) releaseAll() {
	for v, id := range p.voiceNoteID {
		if id != "" {
			p.voiceNoteID[v] = ""
			if p.synth != nil {
				p.synth.Release(v)
			}
		}
	}
}

// clearVoices forgets the voice bookkeeping without telling the synth,
// for when the synth is already gone.
func (p *Player) clearVoices() {
	for v := range p.voiceNoteID {
		p.voiceNoteID[v] = ""
	}
}

func (p *Player) alert(name, message string, priority AlertPriority) {
	TrySend(p.broker.ToModel, MsgToModel{Data: Alert{Name: name, Message: message, Priority: priority}})
}

func (p *Player) sendPosition() {
	TrySend(p.broker.ToModel, MsgToModel{
		HasPanicPosLevels: true,
		Panic:             p.panicked,
		Beat:              p.beat,
		VoiceLevels:       p.voiceLevels,
		MasterVolume:      p.volume.Level,
	})
}
