package takt

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ticksPerQuarter is the timing resolution of exported MIDI files, in
// ticks per beat.
const ticksPerQuarter = 960

// MIDI converts the project into a standard MIDI file (format 1),
// returned as a []byte array. Every track of the project becomes one
// MIDI track on its own channel, with velocities scaled to 0-127. The
// solo and mute flags are playback state and are not applied; all tracks
// are exported.
func (p Project) MIDI() ([]byte, error) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	var meta smf.Track
	meta.Add(0, smf.MetaTrackSequenceName(p.Name))
	meta.Add(0, smf.MetaMeter(uint8(p.TimeSignature.BeatsPerBar), uint8(p.TimeSignature.NoteValue)))
	meta.Add(0, smf.MetaTempo(p.BPM))
	meta.Close(0)
	if err := sm.Add(meta); err != nil {
		return nil, fmt.Errorf("adding the tempo track failed: %w", err)
	}
	for ti, t := range p.Tracks {
		var tr smf.Track
		tr.Add(0, smf.MetaInstrument(t.Name))
		ch := uint8(ti % 16)
		type tickEvent struct {
			tick uint32
			on   bool
			msg  midi.Message
		}
		var events []tickEvent
		for _, n := range t.Notes {
			if !n.Valid() {
				continue
			}
			key := uint8(n.Pitch)
			vel := uint8(clamp(int(math.Round(n.Velocity*127)), 0, 127))
			events = append(events, tickEvent{
				tick: beatToTick(n.Start),
				on:   true,
				msg:  midi.NoteOn(ch, key, vel),
			})
			events = append(events, tickEvent{
				tick: beatToTick(n.End()),
				on:   false,
				msg:  midi.NoteOff(ch, key),
			})
		}
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].tick != events[j].tick {
				return events[i].tick < events[j].tick
			}
			return !events[i].on && events[j].on
		})
		var last uint32
		for _, e := range events {
			tr.Add(e.tick-last, e.msg)
			last = e.tick
		}
		tr.Close(0)
		if err := sm.Add(tr); err != nil {
			return nil, fmt.Errorf("adding track %q failed: %w", t.Name, err)
		}
	}
	var buf bytes.Buffer
	if _, err := sm.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing the MIDI file failed: %w", err)
	}
	return buf.Bytes(), nil
}

func beatToTick(beat float64) uint32 {
	return uint32(math.Round(beat * ticksPerQuarter))
}
