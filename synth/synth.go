// Package synth implements the built in software synthesizer: a chain
// per track, each with four voices of a classic oscillator shape run
// through an ADSR envelope, and a per track effect section of filter,
// distortion, delay and reverb.
package synth

import (
	"math"

	"github.com/taktile/takt"
)

type (
	// Synther makes synths for the tracks of a project. It implements
	// takt.Synther.
	Synther struct{}

	synth struct {
		chains []*chain
		bpm    float64
	}

	// chain is the signal path of one track: its voices summed to mono,
	// the effects, and finally the pan and volume stage spreading the
	// result to stereo.
	chain struct {
		trackID  string
		wave     takt.WaveType
		volume   float64
		pan      float64
		envelope takt.Envelope
		effects  takt.Effects

		voices  [takt.VoicesPerTrack]voice
		filter  svf
		delay   delayLine
		reverb  reverb
		scratch []float32
	}

	voice struct {
		stage    envStage
		level    float64
		phase    float64
		freq     float64
		velocity float64
	}

	envStage int
)

const (
	envIdle envStage = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

func (s Synther) Name() string { return "go" }

// Synth builds a synth for the tracks, ready to render. The same
// Synther can serve any number of synths.
func (s Synther) Synth(tracks []takt.Track, bpm float64) (takt.Synth, error) {
	ret := &synth{}
	if err := ret.Update(tracks, bpm); err != nil {
		return nil, err
	}
	return ret, nil
}

// Update brings the synth up to date with the tracks. Chains are
// matched to tracks by id, so reordering or editing tracks keeps their
// sounding voices and effect tails; only a removed track loses its
// state. Updating with the same tracks twice is a no-op.
func (s *synth) Update(tracks []takt.Track, bpm float64) error {
	s.bpm = bpm
	n := min(len(tracks), takt.MaxTracks)
	chains := make([]*chain, n)
	for i := 0; i < n; i++ {
		t := tracks[i]
		c := s.findChain(t.ID)
		if c == nil {
			c = &chain{trackID: t.ID}
			c.reverb.init()
		}
		c.wave = t.WaveType
		c.volume = t.Volume
		c.pan = t.Pan
		c.envelope = t.Envelope
		c.effects = t.Effects
		c.filter.set(t.Effects.Filter)
		c.delay.set(t.Effects.Delay, bpm)
		c.reverb.wet = t.Effects.Reverb.Wet
		chains[i] = c
	}
	s.chains = chains
	return nil
}

func (s *synth) findChain(trackID string) *chain {
	for _, c := range s.chains {
		if c != nil && c.trackID == trackID {
			return c
		}
	}
	return nil
}

// Trigger starts the voice playing the pitch, restarting the envelope
// if the voice was already sounding. The velocity scales the voice gain
// linearly.
func (s *synth) Trigger(voiceIndex int, pitch int, velocity float64) {
	track := voiceIndex / takt.VoicesPerTrack
	if voiceIndex < 0 || track >= len(s.chains) {
		return
	}
	v := &s.chains[track].voices[voiceIndex%takt.VoicesPerTrack]
	v.stage = envAttack
	v.phase = 0
	v.freq = takt.MIDIToFrequency(pitch)
	v.velocity = velocity
}

// Release lets the voice enter its release stage. Releasing a silent
// voice does nothing.
func (s *synth) Release(voiceIndex int) {
	track := voiceIndex / takt.VoicesPerTrack
	if voiceIndex < 0 || track >= len(s.chains) {
		return
	}
	v := &s.chains[track].voices[voiceIndex%takt.VoicesPerTrack]
	if v.stage != envIdle {
		v.stage = envRelease
	}
}

// Render fills the buffer with the mix of all chains, overwriting its
// previous contents.
func (s *synth) Render(buffer takt.AudioBuffer) error {
	for i := range buffer {
		buffer[i] = [2]float32{}
	}
	for _, c := range s.chains {
		c.render(buffer)
	}
	return nil
}

func (c *chain) render(buffer takt.AudioBuffer) {
	if cap(c.scratch) < len(buffer) {
		c.scratch = make([]float32, len(buffer))
	}
	c.scratch = c.scratch[:len(buffer)]
	for i := range c.scratch {
		c.scratch[i] = 0
	}
	for v := range c.voices {
		c.voices[v].render(c.scratch, c.wave, c.envelope)
	}
	c.filter.process(c.scratch)
	distort(c.scratch, c.effects.Distortion.Amount)
	c.delay.process(c.scratch)
	c.reverb.process(c.scratch)
	// equal power pan, both channels carrying the full signal at center
	angle := (c.pan + 1) * math.Pi / 4
	l := float32(c.volume * math.Sqrt2 * math.Cos(angle))
	r := float32(c.volume * math.Sqrt2 * math.Sin(angle))
	for i, s := range c.scratch {
		buffer[i][0] += s * l
		buffer[i][1] += s * r
	}
}

func (v *voice) render(out []float32, wave takt.WaveType, env takt.Envelope) {
	if v.stage == envIdle {
		return
	}
	for i := range out {
		if v.stage == envIdle {
			break
		}
		v.advanceEnvelope(env)
		var s float64
		switch wave {
		case takt.WaveSquare:
			if v.phase < 0.5 {
				s = 1
			} else {
				s = -1
			}
		case takt.WaveSawtooth:
			s = 2*v.phase - 1
		case takt.WaveTriangle:
			s = 1 - 4*math.Abs(v.phase-0.5)
		default:
			s = math.Sin(2 * math.Pi * v.phase)
		}
		out[i] += float32(s * v.level * v.velocity)
		v.phase += v.freq / takt.SampleRate
		if v.phase >= 1 {
			v.phase -= 1
		}
	}
}

// advanceEnvelope steps the linear ADSR envelope by one sample. Zero
// length stages jump straight to their target level.
func (v *voice) advanceEnvelope(env takt.Envelope) {
	switch v.stage {
	case envAttack:
		if env.Attack <= 0 {
			v.level = 1
		} else {
			v.level += 1 / (env.Attack * takt.SampleRate)
		}
		if v.level >= 1 {
			v.level = 1
			v.stage = envDecay
		}
	case envDecay:
		if env.Decay <= 0 {
			v.level = env.Sustain
		} else {
			v.level -= (1 - env.Sustain) / (env.Decay * takt.SampleRate)
		}
		if v.level <= env.Sustain {
			v.level = env.Sustain
			v.stage = envSustain
		}
	case envSustain:
		v.level = env.Sustain
	case envRelease:
		if env.Release <= 0 {
			v.level = 0
		} else {
			v.level -= 1 / (env.Release * takt.SampleRate)
		}
		if v.level <= 0 {
			v.level = 0
			v.stage = envIdle
		}
	}
}
