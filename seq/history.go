package seq

import "github.com/taktile/takt"

const maxHistory = 50

type (
	// trackNotes is the undoable state of a single track: just its
	// notes, keyed by the track id. Track parameters like volume or the
	// effect settings are deliberately outside the undo history.
	trackNotes struct {
		TrackID string
		Notes   []takt.Note
	}

	// noteSnapshot is the undoable state of the whole project, one
	// trackNotes per track, in track order.
	noteSnapshot []trackNotes

	// history holds the undo and redo stacks. Both are capped at
	// maxHistory steps; pushing beyond the cap drops the oldest step.
	history struct {
		past   []noteSnapshot
		future []noteSnapshot
	}
)

// snapshotNotes deep copies the notes of every track into a snapshot.
func snapshotNotes(tracks []takt.Track) noteSnapshot {
	ret := make(noteSnapshot, len(tracks))
	for i, t := range tracks {
		ret[i] = trackNotes{TrackID: t.ID, Notes: append([]takt.Note(nil), t.Notes...)}
	}
	return ret
}

// push records a new undo step and invalidates the redo stack.
func (h *history) push(s noteSnapshot) {
	if len(h.past) >= maxHistory {
		h.past = h.past[:copy(h.past, h.past[1:])]
	}
	h.past = append(h.past, s)
	h.future = h.future[:0]
}

// undo exchanges the most recent undo step with the current state,
// returning the step to restore. ok is false when there is nothing to
// undo.
func (h *history) undo(current noteSnapshot) (s noteSnapshot, ok bool) {
	if len(h.past) == 0 {
		return nil, false
	}
	if len(h.future) >= maxHistory {
		h.future = h.future[:copy(h.future, h.future[1:])]
	}
	h.future = append(h.future, current)
	s = h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	return s, true
}

// redo is the inverse of undo.
func (h *history) redo(current noteSnapshot) (s noteSnapshot, ok bool) {
	if len(h.future) == 0 {
		return nil, false
	}
	if len(h.past) >= maxHistory {
		h.past = h.past[:copy(h.past, h.past[1:])]
	}
	h.past = append(h.past, current)
	s = h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	return s, true
}

// clear empties both stacks, for when a new project is created or
// loaded and the old steps would no longer apply.
func (h *history) clear() {
	h.past = h.past[:0]
	h.future = h.future[:0]
}

// applySnapshot writes the notes of a snapshot back into the matching
// tracks of the project. Tracks are matched by id; tracks that are not
// in the snapshot, and everything about a track besides its notes, are
// left untouched.
func applySnapshot(p *takt.Project, s noteSnapshot) {
	for _, tn := range s {
		if i := p.TrackIndex(tn.TrackID); i >= 0 {
			p.Tracks[i].Notes = append([]takt.Note(nil), tn.Notes...)
		}
	}
}
