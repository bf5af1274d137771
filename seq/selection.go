package seq

// Selection is the set of selected notes plus the selected track. All
// selected notes live on the selected track; selecting a note on
// another track replaces the selection instead of extending it.
type Selection struct {
	TrackID string
	NoteIDs []string
}

func (s *Selection) Copy() Selection {
	ret := *s
	ret.NoteIDs = append([]string(nil), s.NoteIDs...)
	return ret
}

// Contains reports whether the note is part of the selection.
func (s *Selection) Contains(noteID string) bool {
	for _, id := range s.NoteIDs {
		if id == noteID {
			return true
		}
	}
	return false
}

// Selection returns the current selection.
func (m *Model) Selection() Selection { return m.d.Selection }

// SelectTrack makes the track the selected one, clearing any note
// selection. Selecting an unknown track id clears the selection
// entirely.
func (m *Model) SelectTrack(trackID string) {
	if m.d.Project.TrackIndex(trackID) < 0 {
		trackID = ""
	}
	m.d.Selection = Selection{TrackID: trackID}
}

// SelectNote adds the note to the selection. A note on a different
// track than the current selection replaces the selection. Unknown ids
// are ignored.
func (m *Model) SelectNote(trackID, noteID string) {
	ti := m.d.Project.TrackIndex(trackID)
	if ti < 0 || m.d.Project.Tracks[ti].NoteIndex(noteID) < 0 {
		return
	}
	if m.d.Selection.TrackID != trackID {
		m.d.Selection = Selection{TrackID: trackID}
	}
	if !m.d.Selection.Contains(noteID) {
		m.d.Selection.NoteIDs = append(m.d.Selection.NoteIDs, noteID)
	}
}

// SelectNotes replaces the note selection with the given notes of one
// track, keeping only ids that exist on it.
func (m *Model) SelectNotes(trackID string, noteIDs []string) {
	ti := m.d.Project.TrackIndex(trackID)
	if ti < 0 {
		return
	}
	sel := Selection{TrackID: trackID}
	for _, id := range noteIDs {
		if m.d.Project.Tracks[ti].NoteIndex(id) >= 0 && !sel.Contains(id) {
			sel.NoteIDs = append(sel.NoteIDs, id)
		}
	}
	m.d.Selection = sel
}

// ClearSelection deselects all notes, keeping the selected track.
func (m *Model) ClearSelection() {
	m.d.Selection.NoteIDs = m.d.Selection.NoteIDs[:0]
}

// clampSelection drops selected notes and tracks that no longer exist,
// after edits, undo and project loads. With the selected track gone the
// selection moves to the first remaining track.
func (m *Model) clampSelection() {
	ti := m.d.Project.TrackIndex(m.d.Selection.TrackID)
	if ti < 0 {
		m.d.Selection = Selection{}
		if len(m.d.Project.Tracks) > 0 {
			m.d.Selection.TrackID = m.d.Project.Tracks[0].ID
		}
		return
	}
	kept := m.d.Selection.NoteIDs[:0]
	for _, id := range m.d.Selection.NoteIDs {
		if m.d.Project.Tracks[ti].NoteIndex(id) >= 0 {
			kept = append(kept, id)
		}
	}
	m.d.Selection.NoteIDs = kept
}
