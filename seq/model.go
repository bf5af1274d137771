package seq

import (
	"github.com/taktile/takt"
)

type (
	// modelData is the part of the model that is persisted to the
	// settings stores and replaced wholesale when a change is cancelled.
	// Everything outside modelData is runtime state.
	modelData struct {
		Project takt.Project

		Loop             Loop
		MetronomeEnabled bool
		MetronomeVolume  float64

		Tool     Tool
		GridSnap takt.GridSize
		Zoom     int

		Selection  Selection
		ColorIndex int

		FilePath         string
		ChangedSinceSave bool
	}

	// Model implements the mutable state of the sequencer: the project
	// with its undo history and selection, the transport, and the UI
	// settings. All mutations go through the documented operations,
	// which take care of the undo history, of keeping the selection
	// valid and of notifying the Player; the Model itself is meant to be
	// used from a single goroutine.
	Model struct {
		d modelData

		currentBeat  float64
		playing      bool
		paused       bool
		panic        bool
		exporting    bool
		quitted      bool
		voiceLevels  [takt.MaxVoices]float32
		masterVolume Volume

		history         history
		prevUndoKind    string
		undoSkipCounter int

		changeLevel    int
		changeCancel   bool
		changeName     string
		changeType     ChangeType
		changeSeverity ChangeSeverity
		changeData     modelData

		beatSink BeatSink
		synther  takt.Synther
		broker   *Broker
		alerts   Alerts

		settingsDir   string
		settingsDirty bool
	}

	// ChangeType is a bitmask of the aspects of the model a change
	// touched, so that completing the change knows what to do: note
	// edits feed the undo history, project content changes are pushed to
	// the Player, and so on.
	ChangeType int

	// ChangeSeverity controls how a change coalesces in the undo
	// history: consecutive MinorChanges of the same kind become a single
	// undo step, MajorChanges always get a step of their own.
	ChangeSeverity int

	// Tool is the active piano roll editing tool.
	Tool string
)

const (
	NoChange   ChangeType = 0
	NoteChange ChangeType = 1 << iota
	TrackChange
	TempoChange
	NameChange
	LoopChange
	MetronomeChange
	UIChange
	ProjectChange ChangeType = NoteChange | TrackChange | TempoChange | NameChange
)

const (
	MajorChange ChangeSeverity = iota + 1
	MinorChange
)

const (
	ToolDraw   Tool = "draw"
	ToolSelect Tool = "select"
	ToolErase  Tool = "erase"
)

const (
	defaultZoom  = 4
	maxZoom      = 8
	maxUndoSkips = 255
)

// NewModel builds a model and loads the persisted settings from
// settingsDir; an empty dir skips persistence altogether. sink receives
// the position whenever the user seeks; passing nil syncs the Player
// through the broker.
func NewModel(broker *Broker, synther takt.Synther, sink BeatSink, settingsDir string) *Model {
	m := &Model{broker: broker, synther: synther, settingsDir: settingsDir}
	if sink == nil {
		sink = brokerBeatSink{broker}
	}
	m.beatSink = sink
	m.d.Project = takt.NewProject()
	m.d.MetronomeVolume = 0.5
	m.d.GridSnap = takt.GridSixteenth
	m.d.Zoom = defaultZoom
	m.d.Tool = ToolDraw
	m.loadSettings()
	if len(m.d.Project.Tracks) == 0 {
		m.d.Project.Tracks = append(m.d.Project.Tracks, takt.NewTrack("Track 1", takt.TrackColors[0]))
	}
	// the color rotation continues from however many tracks there are, so
	// that loaded projects keep getting distinct colors for new tracks
	m.d.ColorIndex = len(m.d.Project.Tracks) % len(takt.TrackColors)
	m.d.Selection = Selection{TrackID: m.d.Project.Tracks[0].ID}
	m.d.ChangedSinceSave = false
	TrySend(broker.ToPlayer, any(m.d.Project.Copy()))
	TrySend(broker.ToPlayer, any(m.d.Loop))
	TrySend(broker.ToPlayer, any(MetronomeMsg{m.d.MetronomeEnabled, m.d.MetronomeVolume}))
	return m
}

func (d *modelData) Copy() modelData {
	ret := *d
	ret.Project = d.Project.Copy()
	ret.Selection = d.Selection.Copy()
	return ret
}

// change starts a new change in the model. It returns a function that
// finishes the change, intended to be deferred at the top of every
// operation that mutates modelData:
//
//	defer m.change("AddNote", NoteChange, MajorChange)()
//
// Changes nest; only when the outermost change finishes are the undo
// history, the selection, the Player and the settings stores brought up
// to date. Setting m.changeCancel inside a change rolls the whole
// change back instead.
func (m *Model) change(n string, t ChangeType, severity ChangeSeverity) func() {
	if m.changeLevel == 0 {
		m.changeName = n
		m.changeType = t
		m.changeSeverity = severity
		m.changeCancel = false
		m.changeData = m.d.Copy()
	} else {
		m.changeType |= t
		if severity < m.changeSeverity {
			m.changeSeverity = severity
		}
	}
	m.changeLevel++
	return func() {
		m.changeLevel--
		if m.changeLevel < 0 {
			panic("change() completed more times than it was started")
		}
		if m.changeLevel > 0 {
			return
		}
		if m.changeCancel {
			m.d = m.changeData
			return
		}
		if m.changeType == NoChange {
			return
		}
		if m.changeType&NoteChange != 0 {
			m.pushUndo()
		}
		if m.changeType&(NoteChange|TrackChange) != 0 {
			m.clampSelection()
		}
		if m.changeType&ProjectChange != 0 {
			m.d.ChangedSinceSave = true
			TrySend(m.broker.ToPlayer, any(m.d.Project.Copy()))
		}
		if m.changeType&LoopChange != 0 {
			TrySend(m.broker.ToPlayer, any(m.d.Loop))
		}
		if m.changeType&MetronomeChange != 0 {
			TrySend(m.broker.ToPlayer, any(MetronomeMsg{m.d.MetronomeEnabled, m.d.MetronomeVolume}))
		}
		m.settingsDirty = true
	}
}

// pushUndo records the state from just before the current change as an
// undo step. Consecutive minor changes of the same kind coalesce into
// one step, so e.g. dragging a note leaves a single undo step instead
// of one per pointer move.
func (m *Model) pushUndo() {
	if m.changeSeverity == MinorChange && m.prevUndoKind == m.changeName && m.undoSkipCounter < maxUndoSkips {
		m.undoSkipCounter++
		return
	}
	m.undoSkipCounter = 0
	m.prevUndoKind = m.changeName
	m.history.push(snapshotNotes(m.changeData.Project.Tracks))
}

// ProcessMessages handles all the messages the Player has sent since
// the last call, without ever blocking.
func (m *Model) ProcessMessages() {
	for {
		select {
		case msg := <-m.broker.ToModel:
			m.processMessage(msg)
		default:
			return
		}
	}
}

func (m *Model) processMessage(msg MsgToModel) {
	if msg.HasPanicPosLevels {
		if msg.Panic && !m.panic {
			m.alerts.AddNamed("PlayerCrash", "The player crashed and was muted; toggle panic off to retry", Error)
		}
		m.panic = msg.Panic
		m.SetCurrentBeat(msg.Beat)
		m.voiceLevels = msg.VoiceLevels
		m.masterVolume = msg.MasterVolume
	}
	switch e := msg.Data.(type) {
	case Alert:
		m.alerts.AddAlert(e)
	case func():
		e()
	}
}

// SetCurrentBeat moves the displayed playback position. When the loop
// is enabled and the position has reached the loop end, the displayed
// position wraps back to the loop start; the audible wrap happens
// independently in the Player.
func (m *Model) SetCurrentBeat(beat float64) {
	if m.d.Loop.Enabled && beat >= m.d.Loop.End {
		beat = m.d.Loop.Start
	}
	if beat < 0 {
		beat = 0
	}
	m.currentBeat = beat
}

// CurrentBeat returns the displayed playback position, in beats.
func (m *Model) CurrentBeat() float64 { return m.currentBeat }

// IsPaused reports whether playback is paused, as opposed to stopped:
// resuming a paused transport continues from the current position.
func (m *Model) IsPaused() bool { return m.paused }

// Position returns the displayed playback position in bar:beat:sixteenth
// form.
func (m *Model) Position() string {
	return takt.FormatPosition(m.currentBeat, m.d.Project.TimeSignature.BeatsPerBar)
}

func (m *Model) Alerts() *Alerts { return &m.alerts }
func (m *Model) FilePath() string { return m.d.FilePath }
func (m *Model) ChangedSinceSave() bool { return m.d.ChangedSinceSave }
func (m *Model) Quitted() bool { return m.quitted }
func (m *Model) Exporting() bool { return m.exporting }
func (m *Model) MasterVolume() Volume { return m.masterVolume }
func (m *Model) Synther() takt.Synther { return m.synther }

// Project returns the current project. The returned value shares the
// track and note slices with the model, so treat it as read only;
// mutations go through the operations of the Model.
func (m *Model) Project() takt.Project { return m.d.Project }

// TrackLevel returns the current output level of a track for level
// meters, as the loudest of its voices, in the range 0-1.
func (m *Model) TrackLevel(track int) float32 {
	first, err := takt.VoiceForTrack(track)
	if err != nil {
		return 0
	}
	var level float32
	for _, l := range m.voiceLevels[first : first+takt.VoicesPerTrack] {
		if l > level {
			level = l
		}
	}
	return level
}

// GridSnap returns the current grid snap setting.
func (m *Model) GridSnap() takt.GridSize { return m.d.GridSnap }

// SetGridSnap changes the grid snap setting used when placing notes.
func (m *Model) SetGridSnap(g takt.GridSize) {
	defer m.change("SetGridSnap", UIChange, MinorChange)()
	m.d.GridSnap = g
}

// Tool returns the active editing tool.
func (m *Model) Tool() Tool { return m.d.Tool }

// SetTool changes the active editing tool.
func (m *Model) SetTool(t Tool) {
	defer m.change("SetTool", UIChange, MinorChange)()
	m.d.Tool = t
}
