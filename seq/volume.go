package seq

import (
	"math"

	"github.com/viterin/vek/vek32"

	"github.com/taktile/takt"
)

// Volume is the volume of the left and right channel, in decibels.
type Volume [2]float64

// VolumeAnalyzer measures the volume of the audio stream for level
// meters, smoothed over time.
type VolumeAnalyzer struct {
	Level   Volume  // current volume in decibels
	Attack  float64 // rise time constant in seconds
	Release float64 // fall time constant in seconds
	Min     float64 // noise floor in decibels
	Max     float64 // clipping ceiling in decibels

	scratch []float32
}

// Update updates Level from the contents of the buffer. The mean square
// of each channel gives the volume of the chunk, and the level then
// approaches it exponentially, with the attack time constant when
// rising and the release one when falling.
func (v *VolumeAnalyzer) Update(buffer takt.AudioBuffer) {
	if len(buffer) == 0 {
		return
	}
	if cap(v.scratch) < len(buffer) {
		v.scratch = make([]float32, len(buffer))
	}
	v.scratch = v.scratch[:len(buffer)]
	elapsed := float64(len(buffer)) / takt.SampleRate
	for j := 0; j < 2; j++ {
		for i, frame := range buffer {
			v.scratch[i] = frame[j]
		}
		meanSquare := float64(vek32.Dot(v.scratch, v.scratch)) / float64(len(v.scratch))
		dB := 10 * math.Log10(meanSquare)
		if math.IsNaN(dB) || dB < v.Min {
			dB = v.Min
		}
		if dB > v.Max {
			dB = v.Max
		}
		tau := v.Release
		if dB > v.Level[j] {
			tau = v.Attack
		}
		alpha := 1.0
		if tau > 0 {
			alpha = 1 - math.Exp(-elapsed/tau)
		}
		v.Level[j] += (dB - v.Level[j]) * alpha
	}
}

// Peak returns the largest absolute sample value in the buffer, for
// clipping indicators.
func (v *VolumeAnalyzer) Peak(buffer takt.AudioBuffer) float32 {
	if len(buffer) == 0 {
		return 0
	}
	if cap(v.scratch) < len(buffer)*2 {
		v.scratch = make([]float32, len(buffer)*2)
	}
	v.scratch = v.scratch[:len(buffer)*2]
	for i, frame := range buffer {
		v.scratch[i*2] = frame[0]
		v.scratch[i*2+1] = frame[1]
	}
	vek32.Abs_Inplace(v.scratch)
	return vek32.Max(v.scratch)
}
