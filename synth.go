package takt

import (
	"errors"
	"fmt"
	"math"
)

// Voice allocation: every track owns a fixed range of voices, cycling
// through them as its notes trigger, so one busy track can never steal
// the voices of another.
const (
	VoicesPerTrack = 4
	MaxTracks      = 16
	MaxVoices      = VoicesPerTrack * MaxTracks
)

type (
	// Synth renders audio for the tracks of a project. One voice plays
	// one note at a time; voice indices are global, with track t owning
	// voices [t*VoicesPerTrack, (t+1)*VoicesPerTrack).
	Synth interface {
		// Render fills the whole buffer with audio, mixing all sounding
		// voices.
		Render(buffer AudioBuffer) error

		// Update pushes the current track parameters into the synth,
		// creating and disposing per track voice chains as needed. Calling
		// it twice with the same tracks is a no-op; sounding voices keep
		// sounding over an update.
		Update(tracks []Track, bpm float64) error

		// Trigger starts playing a note on the given voice, restarting the
		// voice if it was already sounding.
		Trigger(voice int, pitch int, velocity float64)

		// Release releases the note on the given voice, letting its
		// envelope decay. Releasing a silent voice is a no-op.
		Release(voice int)
	}

	// Synther compiles tracks into a ready to play Synth.
	Synther interface {
		Name() string
		Synth(tracks []Track, bpm float64) (Synth, error)
	}
)

// Render fills the whole buffer with audio from the synth.
func Render(synth Synth, buffer AudioBuffer) error {
	if err := synth.Render(buffer); err != nil {
		return fmt.Errorf("takt.Render failed: %w", err)
	}
	return nil
}

// renderTail is how much audio is rendered past the end of the last
// note, so that envelope releases and delay and reverb tails are not cut
// off.
const renderTail = 2 * SampleRate

// Play renders the whole project offline, from the beginning, into a
// new AudioBuffer. The loop region and transport position play no part;
// the solo and mute flags do. The rendered length is the end of the last
// note rounded up to a whole beat, or 16 beats for a project with no
// notes, plus a two second tail either way.
//
// The progress function, if not nil, is called as rendering proceeds
// with values going from 0 to 1.
func Play(synther Synther, project Project, progress func(float32)) (AudioBuffer, error) {
	if err := project.Validate(); err != nil {
		return nil, err
	}
	synth, err := synther.Synth(project.Tracks, project.BPM)
	if err != nil {
		return nil, fmt.Errorf("takt.Play failed: %w", err)
	}
	durationBeats := 16.0
	if e := project.EndBeat(); e > 0 {
		durationBeats = math.Ceil(e)
	}
	totalFrames := int(math.Ceil(BeatsToSeconds(durationBeats, project.BPM)*SampleRate)) + renderTail
	buffer := make(AudioBuffer, totalFrames)
	events := Schedule(project.Tracks, project.BPM)
	var voiceNote [MaxVoices]string
	nextVoice := make([]int, len(project.Tracks))
	pos := 0
	for _, ev := range events {
		frame := int(math.Round(ev.Time * SampleRate))
		if frame > totalFrames {
			frame = totalFrames
		}
		if frame > pos {
			if err := synth.Render(buffer[pos:frame]); err != nil {
				return nil, fmt.Errorf("takt.Play failed: %w", err)
			}
			pos = frame
			if progress != nil {
				progress(float32(pos) / float32(totalFrames))
			}
		}
		if ev.Track >= MaxTracks {
			continue
		}
		first := ev.Track * VoicesPerTrack
		if ev.On {
			voice := first + nextVoice[ev.Track]%VoicesPerTrack
			nextVoice[ev.Track]++
			voiceNote[voice] = ev.NoteID
			synth.Trigger(voice, ev.Pitch, ev.Velocity)
		} else {
			for voice := first; voice < first+VoicesPerTrack; voice++ {
				if voiceNote[voice] == ev.NoteID {
					voiceNote[voice] = ""
					synth.Release(voice)
				}
			}
		}
	}
	if pos < totalFrames {
		if err := synth.Render(buffer[pos:]); err != nil {
			return nil, fmt.Errorf("takt.Play failed: %w", err)
		}
		if progress != nil {
			progress(1)
		}
	}
	return buffer, nil
}

// VoiceForTrack returns the first voice of the given track, or an error
// if the track is beyond the voice range of the synth.
func VoiceForTrack(track int) (int, error) {
	if track < 0 || track >= MaxTracks {
		return 0, errors.New("track is beyond the voice range of the synth")
	}
	return track * VoicesPerTrack, nil
}
