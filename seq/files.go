package seq

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taktile/takt"
)

// ParseProject decodes a project from JSON or YAML and validates it. An
// invalid file is rejected whole; there is no partial import.
func ParseProject(b []byte) (takt.Project, error) {
	var p takt.Project
	if errJSON := json.Unmarshal(b, &p); errJSON != nil {
		p = takt.Project{}
		if errYaml := yaml.Unmarshal(b, &p); errYaml != nil {
			return takt.Project{}, fmt.Errorf("the file is neither valid JSON (%v) nor YAML (%v)", errJSON, errYaml)
		}
	}
	if err := p.Validate(); err != nil {
		return takt.Project{}, err
	}
	return p, nil
}

// OpenProject reads a project file, replacing the current project. A
// file that does not parse or validate alerts the user and leaves the
// model exactly as it was.
func (m *Model) OpenProject(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		m.alerts.Add(fmt.Sprintf("Open failed: %v", err), Error)
		return err
	}
	p, err := ParseProject(b)
	if err != nil {
		m.alerts.Add(fmt.Sprintf("Open failed: %v", err), Error)
		return err
	}
	m.setProject(p, path)
	return nil
}

// SaveProject writes the project to the path, as YAML when the
// extension is .yml or .yaml and as JSON otherwise. An empty path
// reuses the path the project was loaded from.
func (m *Model) SaveProject(path string) error {
	if path == "" {
		path = m.d.FilePath
	}
	if path == "" {
		err := fmt.Errorf("no file name; save with an explicit path first")
		m.alerts.Add(err.Error(), Error)
		return err
	}
	var contents []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		contents, err = yaml.Marshal(m.d.Project)
	default:
		contents, err = json.MarshalIndent(m.d.Project, "", "  ")
	}
	if err != nil {
		m.alerts.Add(fmt.Sprintf("Save failed: %v", err), Error)
		return err
	}
	if err := os.WriteFile(path, contents, 0644); err != nil {
		m.alerts.Add(fmt.Sprintf("Save failed: %v", err), Error)
		return err
	}
	m.d.FilePath = path
	m.d.ChangedSinceSave = false
	m.settingsDirty = true
	m.alerts.Add("Saved "+path, Info)
	return nil
}

// ExportWav renders the project offline and writes it as a WAV file, on
// a background goroutine so playback and editing go on undisturbed.
// Progress and the result arrive as alerts.
func (m *Model) ExportWav(path string, pcm16 bool) {
	if m.exporting {
		m.alerts.AddNamed("Export", "An export is already running", Warning)
		return
	}
	m.exporting = true
	project := m.d.Project.Copy()
	synther := m.synther
	broker := m.broker
	finish := func(message string, priority AlertPriority) {
		TrySend(broker.ToModel, MsgToModel{Data: Alert{Name: "Export", Priority: priority, Message: message, Duration: defaultAlertDuration}})
		TrySend(broker.ToModel, MsgToModel{Data: func() { m.exporting = false }})
	}
	go func() {
		buffer, err := takt.Play(synther, project, func(progress float32) {
			TrySend(broker.ToModel, MsgToModel{Data: Alert{
				Name:     "Export",
				Priority: Info,
				Message:  fmt.Sprintf("Exporting project: %.0f%%", progress*100),
				Duration: defaultAlertDuration,
			}})
		})
		if err != nil {
			finish(fmt.Sprintf("Export failed: %v", err), Error)
			return
		}
		var meter VolumeAnalyzer
		if peak := meter.Peak(buffer); peak > 1 {
			TrySend(broker.ToModel, MsgToModel{Data: Alert{
				Name:     "ExportClip",
				Priority: Warning,
				Message:  fmt.Sprintf("The export clips, peak %.2f; lower the track volumes", peak),
				Duration: defaultAlertDuration,
			}})
		}
		wav, err := buffer.Wav(pcm16)
		if err != nil {
			finish(fmt.Sprintf("Export failed: %v", err), Error)
			return
		}
		if err := os.WriteFile(path, wav, 0644); err != nil {
			finish(fmt.Sprintf("Export failed: %v", err), Error)
			return
		}
		finish("Exported "+path, Info)
	}()
}

// ExportMIDI writes the project as a standard MIDI file.
func (m *Model) ExportMIDI(path string) error {
	b, err := m.d.Project.MIDI()
	if err != nil {
		m.alerts.Add(fmt.Sprintf("Export failed: %v", err), Error)
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		m.alerts.Add(fmt.Sprintf("Export failed: %v", err), Error)
		return err
	}
	m.alerts.Add("Exported "+path, Info)
	return nil
}
