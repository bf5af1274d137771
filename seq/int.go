package seq

type (
	// Int wraps an integer value of the model, allowing only valid
	// mutations: every assignment is clamped to Range and goes through
	// the change machinery of the model.
	Int struct {
		v IntData
	}

	IntData interface {
		Value() int
		Range() IntRange
		setValue(int)
		change(kind string) func()
	}

	IntRange struct {
		Min, Max int
	}
)

func (r IntRange) Clamp(value int) int {
	return max(r.Min, min(r.Max, value))
}

func (v Int) Value() int {
	if v.v == nil {
		return 0
	}
	return v.v.Value()
}

func (v Int) Range() IntRange {
	if v.v == nil {
		return IntRange{}
	}
	return v.v.Range()
}

// SetValue clamps the value to Range and assigns it, returning false if
// the value did not change.
func (v Int) SetValue(value int) bool {
	if v.v == nil {
		return false
	}
	value = v.v.Range().Clamp(value)
	if value == v.v.Value() {
		return false
	}
	defer v.v.change("SetValue")()
	v.v.setValue(value)
	return true
}

// Add adds delta to the value, clamping the result to Range.
func (v Int) Add(delta int) bool {
	return v.SetValue(v.Value() + delta)
}

type zoom Model

// Zoom is the horizontal zoom level of the piano roll.
func (m *Model) Zoom() Int { return Int{(*zoom)(m)} }

func (v *zoom) Value() int { return v.d.Zoom }
func (v *zoom) setValue(x int) { v.d.Zoom = x }
func (v *zoom) Range() IntRange { return IntRange{1, maxZoom} }
func (v *zoom) change(kind string) func() {
	return (*Model)(v).change("Zoom."+kind, UIChange, MinorChange)
}
