package seq

type (
	// String wraps a string value of the model.
	String struct {
		v StringData
	}

	StringData interface {
		Value() string
		setValue(string)
		change(kind string) func()
	}
)

func (v String) Value() string {
	if v.v == nil {
		return ""
	}
	return v.v.Value()
}

// SetValue assigns the value, returning false if it did not change.
func (v String) SetValue(value string) bool {
	if v.v == nil || value == v.v.Value() {
		return false
	}
	defer v.v.change("SetValue")()
	v.v.setValue(value)
	return true
}

type projectName Model

// ProjectName is the name of the project, stored inside the project
// file rather than derived from its path.
func (m *Model) ProjectName() String { return String{(*projectName)(m)} }

func (v *projectName) Value() string { return v.d.Project.Name }
func (v *projectName) setValue(x string) { v.d.Project.Name = x }
func (v *projectName) change(kind string) func() {
	return (*Model)(v).change("ProjectName."+kind, NameChange, MinorChange)
}

type trackName Model

// TrackName is the name of the selected track.
func (m *Model) TrackName() String { return String{(*trackName)(m)} }

func (v *trackName) Value() string {
	if i := v.d.Project.TrackIndex(v.d.Selection.TrackID); i >= 0 {
		return v.d.Project.Tracks[i].Name
	}
	return ""
}

func (v *trackName) setValue(x string) {
	if i := v.d.Project.TrackIndex(v.d.Selection.TrackID); i >= 0 {
		v.d.Project.Tracks[i].Name = x
	}
}

func (v *trackName) change(kind string) func() {
	return (*Model)(v).change("TrackName."+kind, NameChange, MinorChange)
}
