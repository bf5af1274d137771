package takt

import "sort"

type (
	// Event is a single note on or note off action of a schedule, placed
	// both in beats and in seconds at the tempo the schedule was built
	// with.
	Event struct {
		NoteID   string
		Track    int
		On       bool
		Beat     float64
		Time     float64
		Pitch    int
		Velocity float64
	}
)

// ActiveTracks resolves the solo and mute flags into the set of tracks
// that should sound: if any track is solo'd, only solo'd and unmuted
// tracks are active, otherwise all unmuted tracks are.
func ActiveTracks(tracks []Track) []bool {
	anySolo := false
	for _, t := range tracks {
		if t.Solo {
			anySolo = true
			break
		}
	}
	active := make([]bool, len(tracks))
	for i, t := range tracks {
		active[i] = !t.Muted && (!anySolo || t.Solo)
	}
	return active
}

// Schedule flattens the notes of the tracks into a time ordered list of
// note on and note off events. Tracks silenced by the solo and mute
// resolution are left out entirely, as are notes that fail Valid. Events
// at the same time are ordered note offs first, then by track, then by
// the order the notes appear within their track.
//
// Building a schedule never mutates the tracks, so a schedule can always
// be rebuilt from scratch; an old schedule is retracted simply by
// discarding it.
func Schedule(tracks []Track, bpm float64) []Event {
	active := ActiveTracks(tracks)
	var events []Event
	for ti, t := range tracks {
		if !active[ti] {
			continue
		}
		for _, n := range t.Notes {
			if !n.Valid() {
				continue
			}
			events = append(events, Event{
				NoteID:   n.ID,
				Track:    ti,
				On:       true,
				Beat:     n.Start,
				Time:     BeatsToSeconds(n.Start, bpm),
				Pitch:    n.Pitch,
				Velocity: n.Velocity,
			})
			events = append(events, Event{
				NoteID: n.ID,
				Track:  ti,
				On:     false,
				Beat:   n.End(),
				Time:   BeatsToSeconds(n.End(), bpm),
				Pitch:  n.Pitch,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		return !events[i].On && events[j].On
	})
	return events
}
