package seq

type (
	// Bool wraps a boolean value of the model.
	Bool struct {
		v BoolData
	}

	BoolData interface {
		Value() bool
		setValue(bool)
		change(kind string) func()
	}
)

func (v Bool) Value() bool {
	if v.v == nil {
		return false
	}
	return v.v.Value()
}

// SetValue assigns the value, returning false if it did not change.
func (v Bool) SetValue(value bool) bool {
	if v.v == nil || value == v.v.Value() {
		return false
	}
	defer v.v.change("SetValue")()
	v.v.setValue(value)
	return true
}

// Toggle flips the value.
func (v Bool) Toggle() bool {
	return v.SetValue(!v.Value())
}

type playing Model

// Playing is the playing state of the transport. Setting it to true
// starts or resumes playback from the current position; setting it to
// false pauses, keeping the position. Stopping is a separate action
// that also rewinds to the beginning.
func (m *Model) Playing() Bool { return Bool{(*playing)(m)} }

func (v *playing) Value() bool { return v.playing }
func (v *playing) setValue(x bool) {
	if x {
		(*Model)(v).play()
	} else {
		(*Model)(v).pause()
	}
}
func (v *playing) change(kind string) func() {
	return (*Model)(v).change("Playing."+kind, NoChange, MinorChange)
}

type loopEnabled Model

// LoopEnabled controls whether playback wraps at the loop region.
func (m *Model) LoopEnabled() Bool { return Bool{(*loopEnabled)(m)} }

func (v *loopEnabled) Value() bool { return v.d.Loop.Enabled }
func (v *loopEnabled) setValue(x bool) { v.d.Loop.Enabled = x }
func (v *loopEnabled) change(kind string) func() {
	return (*Model)(v).change("LoopEnabled."+kind, LoopChange, MinorChange)
}

type metronomeEnabled Model

// MetronomeEnabled controls the metronome click during playback.
func (m *Model) MetronomeEnabled() Bool { return Bool{(*metronomeEnabled)(m)} }

func (v *metronomeEnabled) Value() bool { return v.d.MetronomeEnabled }
func (v *metronomeEnabled) setValue(x bool) { v.d.MetronomeEnabled = x }
func (v *metronomeEnabled) change(kind string) func() {
	return (*Model)(v).change("MetronomeEnabled."+kind, MetronomeChange, MinorChange)
}

type muted Model

// Muted silences the selected track. Muting never touches the notes;
// the player just skips the track when scheduling.
func (m *Model) Muted() Bool { return Bool{(*muted)(m)} }

func (v *muted) Value() bool {
	if i := v.d.Project.TrackIndex(v.d.Selection.TrackID); i >= 0 {
		return v.d.Project.Tracks[i].Muted
	}
	return false
}

func (v *muted) setValue(x bool) {
	if i := v.d.Project.TrackIndex(v.d.Selection.TrackID); i >= 0 {
		v.d.Project.Tracks[i].Muted = x
	}
}

func (v *muted) change(kind string) func() {
	return (*Model)(v).change("Muted."+kind, TrackChange, MinorChange)
}

type solo Model

// Solo plays the selected track alone. When any track is soloed, only
// soloed tracks that are not muted are heard.
func (m *Model) Solo() Bool { return Bool{(*solo)(m)} }

func (v *solo) Value() bool {
	if i := v.d.Project.TrackIndex(v.d.Selection.TrackID); i >= 0 {
		return v.d.Project.Tracks[i].Solo
	}
	return false
}

func (v *solo) setValue(x bool) {
	if i := v.d.Project.TrackIndex(v.d.Selection.TrackID); i >= 0 {
		v.d.Project.Tracks[i].Solo = x
	}
}

func (v *solo) change(kind string) func() {
	return (*Model)(v).change("Solo."+kind, TrackChange, MinorChange)
}

type panicState Model

// Panic force releases all voices and keeps the synth silent until
// toggled off again.
func (m *Model) Panic() Bool { return Bool{(*panicState)(m)} }

func (v *panicState) Value() bool { return v.panic }
func (v *panicState) setValue(x bool) { (*Model)(v).setPanic(x) }
func (v *panicState) change(kind string) func() {
	return (*Model)(v).change("Panic."+kind, NoChange, MinorChange)
}
