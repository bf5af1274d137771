package synth

import (
	"math"

	"github.com/taktile/takt"
)

const maxDelaySamples = 8 * takt.SampleRate

// svf is a state variable filter in the trapezoidal integrator form,
// giving both the lowpass and highpass response from the same two
// integrator states. The trapezoidal form is stable over the whole 20 Hz
// to 20 kHz cutoff range at any Q, which the plain Chamberlin recurrence
// is not.
type svf struct {
	kind takt.FilterKind
	on   bool
	k    float64
	a1   float64
	a2   float64
	a3   float64
	ic1  float64
	ic2  float64
}

func (s *svf) set(fs takt.FilterSettings) {
	s.kind = fs.Kind
	s.on = fs.Frequency > 0
	if !s.on {
		return
	}
	freq := math.Min(fs.Frequency, 0.49*takt.SampleRate)
	g := math.Tan(math.Pi * freq / takt.SampleRate)
	s.k = 1 / math.Max(fs.Q, 0.1)
	s.a1 = 1 / (1 + g*(g+s.k))
	s.a2 = g * s.a1
	s.a3 = g * s.a2
}

func (s *svf) process(buf []float32) {
	if !s.on {
		return
	}
	for i, x := range buf {
		in := float64(x)
		v3 := in - s.ic2
		v1 := s.a1*s.ic1 + s.a2*v3
		v2 := s.ic2 + s.a2*s.ic1 + s.a3*v3
		s.ic1 = 2*v1 - s.ic1
		s.ic2 = 2*v2 - s.ic2
		out := v2
		if s.kind == takt.FilterHighpass {
			out = in - s.k*v1 - v2
		}
		buf[i] = float32(out)
	}
}

// distort soft clips the signal, with the drive growing with the
// amount. Zero amount passes the signal through untouched.
func distort(buf []float32, amount float64) {
	if amount <= 0 {
		return
	}
	drive := 1 + amount*15
	norm := 1 / math.Tanh(drive)
	for i, x := range buf {
		buf[i] = float32(math.Tanh(float64(x)*drive) * norm)
	}
}

// delayLine is a feedback delay. The line keeps echoing whatever is in
// it when the settings change, so tweaking the knobs does not cut the
// tail.
type delayLine struct {
	buf      []float32
	pos      int
	delay    int
	feedback float64
	wet      float64
}

func (d *delayLine) set(ds takt.DelaySettings, bpm float64) {
	n := int(ds.Time.Seconds(bpm) * takt.SampleRate)
	if n < 1 {
		n = 1
	}
	if n > maxDelaySamples {
		n = maxDelaySamples
	}
	if d.buf == nil {
		d.buf = make([]float32, maxDelaySamples)
	}
	d.delay = n
	d.feedback = ds.Feedback
	d.wet = ds.Wet
}

func (d *delayLine) process(buf []float32) {
	if d.wet <= 0 || d.buf == nil {
		return
	}
	for i, x := range buf {
		read := d.buf[(d.pos-d.delay+len(d.buf))%len(d.buf)]
		d.buf[d.pos] = x + read*float32(d.feedback)
		buf[i] = x + read*float32(d.wet)
		d.pos = (d.pos + 1) % len(d.buf)
	}
}

// reverb is a small parallel comb bank, tuned to mutually prime lengths
// so the echoes smear instead of fluttering.
type reverb struct {
	wet   float64
	combs [4]comb
}

type comb struct {
	buf []float32
	pos int
}

var combTunings = [4]int{1557, 1617, 1491, 1422}

const combFeedback = 0.77

func (r *reverb) init() {
	for i := range r.combs {
		r.combs[i].buf = make([]float32, combTunings[i])
	}
}

func (r *reverb) process(buf []float32) {
	if r.wet <= 0 {
		return
	}
	for i, x := range buf {
		var sum float32
		for c := range r.combs {
			cb := &r.combs[c]
			out := cb.buf[cb.pos]
			cb.buf[cb.pos] = x + out*combFeedback
			cb.pos = (cb.pos + 1) % len(cb.buf)
			sum += out
		}
		buf[i] = x + sum*0.25*float32(r.wet)
	}
}
