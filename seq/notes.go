package seq

import (
	"math"

	"github.com/google/uuid"

	"github.com/taktile/takt"
)

// AddNote adds a note to the track, clamping its fields into valid
// ranges first. It returns false when the track does not exist.
func (m *Model) AddNote(trackID string, note takt.Note) bool {
	i := m.d.Project.TrackIndex(trackID)
	if i < 0 {
		return false
	}
	defer m.change("AddNote", NoteChange, MajorChange)()
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	clampNote(&note, takt.Note{Duration: takt.GridThirtySecond.Beats(), Velocity: 1})
	m.d.Project.Tracks[i].Notes = append(m.d.Project.Tracks[i].Notes, note)
	return true
}

// RemoveNote removes a note from the track. Removing an unknown note or
// track id is a silent no-op that leaves the undo history alone.
func (m *Model) RemoveNote(trackID, noteID string) bool {
	ti := m.d.Project.TrackIndex(trackID)
	if ti < 0 {
		return false
	}
	ni := m.d.Project.Tracks[ti].NoteIndex(noteID)
	if ni < 0 {
		return false
	}
	defer m.change("RemoveNote", NoteChange, MajorChange)()
	notes := m.d.Project.Tracks[ti].Notes
	m.d.Project.Tracks[ti].Notes = append(notes[:ni], notes[ni+1:]...)
	return true
}

// UpdateNote applies mutate to a note of the track, clamping the result
// into valid ranges. Unknown ids are a silent no-op. Consecutive
// updates coalesce into a single undo step, so dragging a note leaves
// one step, not hundreds.
func (m *Model) UpdateNote(trackID, noteID string, mutate func(*takt.Note)) bool {
	ti := m.d.Project.TrackIndex(trackID)
	if ti < 0 {
		return false
	}
	ni := m.d.Project.Tracks[ti].NoteIndex(noteID)
	if ni < 0 {
		return false
	}
	defer m.change("UpdateNote", NoteChange, MinorChange)()
	old := m.d.Project.Tracks[ti].Notes[ni]
	n := old
	mutate(&n)
	n.ID = old.ID
	clampNote(&n, old)
	m.d.Project.Tracks[ti].Notes[ni] = n
	return true
}

// UpdateNotes applies mutate to several notes of the track as one
// atomic step: one undo step, one notification to the player. Ids that
// do not exist on the track are skipped.
func (m *Model) UpdateNotes(trackID string, noteIDs []string, mutate func(*takt.Note)) bool {
	ti := m.d.Project.TrackIndex(trackID)
	if ti < 0 {
		return false
	}
	changed := false
	defer m.change("UpdateNotes", NoteChange, MinorChange)()
	for _, id := range noteIDs {
		ni := m.d.Project.Tracks[ti].NoteIndex(id)
		if ni < 0 {
			continue
		}
		old := m.d.Project.Tracks[ti].Notes[ni]
		n := old
		mutate(&n)
		n.ID = old.ID
		clampNote(&n, old)
		m.d.Project.Tracks[ti].Notes[ni] = n
		changed = true
	}
	if !changed {
		m.changeCancel = true
	}
	return changed
}

// RemoveNotes removes several notes from the track as one atomic step.
// Ids that do not exist are skipped; with no existing ids at all the
// operation is a no-op.
func (m *Model) RemoveNotes(trackID string, noteIDs []string) bool {
	ti := m.d.Project.TrackIndex(trackID)
	if ti < 0 {
		return false
	}
	remove := make(map[string]bool, len(noteIDs))
	for _, id := range noteIDs {
		remove[id] = true
	}
	changed := false
	defer m.change("RemoveNotes", NoteChange, MajorChange)()
	notes := m.d.Project.Tracks[ti].Notes
	kept := notes[:0]
	for _, n := range notes {
		if remove[n.ID] {
			changed = true
			continue
		}
		kept = append(kept, n)
	}
	m.d.Project.Tracks[ti].Notes = kept
	if !changed {
		m.changeCancel = true
	}
	return changed
}

// DuplicateNotes copies notes of the track, giving each copy a fresh
// id but an otherwise identical payload. It returns the new ids in the
// order the originals were given; unknown ids are skipped.
func (m *Model) DuplicateNotes(trackID string, noteIDs []string) []string {
	ti := m.d.Project.TrackIndex(trackID)
	if ti < 0 {
		return nil
	}
	defer m.change("DuplicateNotes", NoteChange, MajorChange)()
	var newIDs []string
	for _, id := range noteIDs {
		ni := m.d.Project.Tracks[ti].NoteIndex(id)
		if ni < 0 {
			continue
		}
		n := m.d.Project.Tracks[ti].Notes[ni]
		n.ID = uuid.NewString()
		m.d.Project.Tracks[ti].Notes = append(m.d.Project.Tracks[ti].Notes, n)
		newIDs = append(newIDs, n.ID)
	}
	if len(newIDs) == 0 {
		m.changeCancel = true
	}
	return newIDs
}

// clampNote forces the fields of a note into their valid ranges,
// falling back to the old values where the new ones are not numbers at
// all.
func clampNote(n *takt.Note, old takt.Note) {
	n.Pitch = max(takt.PitchMin, min(takt.PitchMax, n.Pitch))
	if math.IsNaN(n.Start) || n.Start < 0 {
		n.Start = 0
	}
	if math.IsNaN(n.Duration) || n.Duration <= 0 {
		n.Duration = old.Duration
	}
	if math.IsNaN(n.Velocity) {
		n.Velocity = old.Velocity
	}
	n.Velocity = math.Max(0, math.Min(1, n.Velocity))
}
