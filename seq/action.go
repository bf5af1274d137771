package seq

import (
	"fmt"

	"github.com/taktile/takt"
)

type (
	// Action wraps a side effect of the model, so frontends can bind
	// buttons and key presses to it without knowing what it does. Do is
	// a no-op when the action is not enabled, so callers never need to
	// check first.
	Action struct {
		doer Doer
	}

	Doer interface {
		Do()
	}

	// Enabler is an optional interface for Doers; a Doer that does not
	// implement it is always enabled.
	Enabler interface {
		Enabled() bool
	}
)

func MakeAction(doer Doer) Action { return Action{doer: doer} }

func (a Action) Do() {
	if e, ok := a.doer.(Enabler); ok && !e.Enabled() {
		return
	}
	if a.doer != nil {
		a.doer.Do()
	}
}

func (a Action) Enabled() bool {
	if a.doer == nil {
		return false
	}
	if e, ok := a.doer.(Enabler); ok {
		return e.Enabled()
	}
	return true
}

type addTrack Model

// AddTrack appends a new track with the next palette color and selects
// it.
func (m *Model) AddTrack() Action { return MakeAction((*addTrack)(m)) }

func (m *addTrack) Enabled() bool { return len(m.d.Project.Tracks) < takt.MaxTracks }
func (m *addTrack) Do() {
	defer (*Model)(m).change("AddTrack", TrackChange, MajorChange)()
	color := takt.TrackColors[m.d.ColorIndex%len(takt.TrackColors)]
	m.d.ColorIndex++
	t := takt.NewTrack(fmt.Sprintf("Track %d", len(m.d.Project.Tracks)+1), color)
	m.d.Project.Tracks = append(m.d.Project.Tracks, t)
	m.d.Selection = Selection{TrackID: t.ID}
}

type deleteTrack Model

// DeleteTrack removes the selected track. The selection moves to the
// first remaining track, or nowhere when the last track went.
func (m *Model) DeleteTrack() Action { return MakeAction((*deleteTrack)(m)) }

func (m *deleteTrack) Enabled() bool { return m.d.Project.TrackIndex(m.d.Selection.TrackID) >= 0 }
func (m *deleteTrack) Do() { (*Model)(m).RemoveTrack(m.d.Selection.TrackID) }

type undo Model

// Undo restores the notes from before the most recent edit. Only note
// edits are undoable; track parameters, the transport and the loop are
// not part of the history.
func (m *Model) Undo() Action { return MakeAction((*undo)(m)) }

func (m *undo) Enabled() bool { return len(m.history.past) > 0 }
func (m *undo) Do() {
	s, ok := m.history.undo(snapshotNotes(m.d.Project.Tracks))
	if !ok {
		return
	}
	(*Model)(m).restoreSnapshot(s)
}

type redo Model

// Redo reverses an Undo. Any note edit clears the redoable steps.
func (m *Model) Redo() Action { return MakeAction((*redo)(m)) }

func (m *redo) Enabled() bool { return len(m.history.future) > 0 }
func (m *redo) Do() {
	s, ok := m.history.redo(snapshotNotes(m.d.Project.Tracks))
	if !ok {
		return
	}
	(*Model)(m).restoreSnapshot(s)
}

// restoreSnapshot applies an undo or redo step, bypassing the change
// machinery so that restoring does not itself create an undo step.
func (m *Model) restoreSnapshot(s noteSnapshot) {
	applySnapshot(&m.d.Project, s)
	m.prevUndoKind = ""
	m.undoSkipCounter = 0
	m.clampSelection()
	m.d.ChangedSinceSave = true
	m.settingsDirty = true
	TrySend(m.broker.ToPlayer, any(m.d.Project.Copy()))
}

type playFromStart Model

// PlayFromStart rewinds to the beginning and starts playback.
func (m *Model) PlayFromStart() Action { return MakeAction((*playFromStart)(m)) }

func (m *playFromStart) Do() {
	(*Model)(m).Seek(0)
	(*Model)(m).play()
}

type stop Model

// Stop halts playback and rewinds to the beginning, unlike pausing
// which keeps the position.
func (m *Model) Stop() Action { return MakeAction((*stop)(m)) }

func (m *stop) Do() { (*Model)(m).stopPlaying() }

type newProject Model

// NewProject replaces the project with an empty one with a single
// default track. The undo history is cleared, as its steps would refer
// to tracks that no longer exist.
func (m *Model) NewProject() Action { return MakeAction((*newProject)(m)) }

func (m *newProject) Do() {
	p := takt.NewProject()
	p.Tracks = append(p.Tracks, takt.NewTrack("Track 1", takt.TrackColors[0]))
	(*Model)(m).setProject(p, "")
}

// setProject installs a loaded or newly created project, resetting the
// history, the selection and the color rotation to match.
func (m *Model) setProject(p takt.Project, path string) {
	m.d.Project = p
	m.d.FilePath = path
	m.d.ChangedSinceSave = false
	m.d.ColorIndex = len(p.Tracks) % len(takt.TrackColors)
	m.d.Selection = Selection{}
	m.history.clear()
	m.prevUndoKind = ""
	m.undoSkipCounter = 0
	m.clampSelection()
	m.settingsDirty = true
	TrySend(m.broker.ToPlayer, any(m.d.Project.Copy()))
}

type requestQuit Model

// RequestQuit quits unless there are unsaved changes or an export still
// running, alerting the user instead in those cases. ForceQuit skips
// the checks.
func (m *Model) RequestQuit() Action { return MakeAction((*requestQuit)(m)) }

func (m *requestQuit) Do() {
	if m.exporting {
		m.alerts.AddNamed("Quit", "An export is still running; wait for it to finish or force quit", Warning)
		return
	}
	if m.d.ChangedSinceSave {
		m.alerts.AddNamed("Quit", "There are unsaved changes; save first or force quit", Warning)
		return
	}
	(*Model)(m).ForceQuit().Do()
}

type forceQuit Model

// ForceQuit quits regardless of unsaved changes.
func (m *Model) ForceQuit() Action { return MakeAction((*forceQuit)(m)) }

func (m *forceQuit) Do() {
	(*Model)(m).SaveSettings()
	m.quitted = true
}
