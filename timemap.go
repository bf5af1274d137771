package takt

import (
	"fmt"
	"math"
)

type (
	// GridSize is the quantization step used when placing and moving notes
	// on the piano roll, expressed as a note value.
	GridSize int
)

const (
	GridQuarter GridSize = iota
	GridEighth
	GridSixteenth
	GridThirtySecond
)

// Beats returns the length of one grid step in beats, with a quarter note
// being one beat. Unknown grid sizes default to a sixteenth note.
func (g GridSize) Beats() float64 {
	switch g {
	case GridQuarter:
		return 1
	case GridEighth:
		return 0.5
	case GridSixteenth:
		return 0.25
	case GridThirtySecond:
		return 0.125
	}
	return 0.25
}

func (g GridSize) String() string {
	switch g {
	case GridQuarter:
		return "1/4"
	case GridEighth:
		return "1/8"
	case GridSixteenth:
		return "1/16"
	case GridThirtySecond:
		return "1/32"
	}
	return "1/16"
}

// ParseGridSize parses a grid size from its string form, e.g. "1/8".
func ParseGridSize(s string) (GridSize, error) {
	switch s {
	case "1/4":
		return GridQuarter, nil
	case "1/8":
		return GridEighth, nil
	case "1/16":
		return GridSixteenth, nil
	case "1/32":
		return GridThirtySecond, nil
	}
	return 0, fmt.Errorf("unknown grid size %q", s)
}

// SnapToGrid rounds a beat position to the nearest multiple of the grid
// step. Values exactly halfway between two grid lines round away from
// zero, so 0.375 snaps to 0.5 on an eighth note grid.
func SnapToGrid(beat float64, grid GridSize) float64 {
	step := grid.Beats()
	return math.Round(beat/step) * step
}

// BeatsToSeconds converts a duration in beats to seconds at the given
// tempo.
func BeatsToSeconds(beats, bpm float64) float64 {
	return beats * 60 / bpm
}

// SecondsToBeats converts a duration in seconds to beats at the given
// tempo. It is the algebraic inverse of BeatsToSeconds.
func SecondsToBeats(seconds, bpm float64) float64 {
	return seconds * bpm / 60
}

// FormatPosition renders a beat position as "bar:beat:sixteenth", all
// three 1-based, e.g. "1:1:1" for the very beginning of a project.
// Nonpositive beatsPerBar is treated as the common four beats to a bar.
func FormatPosition(beat float64, beatsPerBar int) string {
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}
	if beat < 0 {
		beat = 0
	}
	whole := int(beat)
	bar := whole/beatsPerBar + 1
	beatInBar := whole%beatsPerBar + 1
	sixteenth := int((beat-math.Floor(beat))*4) + 1
	return fmt.Sprintf("%d:%d:%d", bar, beatInBar, sixteenth)
}
