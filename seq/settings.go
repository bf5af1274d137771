package seq

import (
	"encoding/json"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/taktile/takt"
)

// The model state is persisted in three separate stores, so that a
// corrupt or missing one loses only its own slice of state: the project
// itself, the transport settings and the UI settings. All three are
// best effort; a failure is logged and the model carries on with
// defaults.
const (
	projectSettingsFile   = "project.json"
	transportSettingsFile = "transport.json"
	uiSettingsFile        = "ui.json"
)

type (
	projectSettings struct {
		Project  takt.Project `json:"project"`
		FilePath string       `json:"filePath"`
	}

	transportSettings struct {
		Loop             Loop    `json:"loop"`
		MetronomeEnabled bool    `json:"metronomeEnabled"`
		MetronomeVolume  float64 `json:"metronomeVolume"`
	}

	uiSettings struct {
		Tool     Tool          `json:"tool"`
		GridSnap takt.GridSize `json:"gridSnap"`
		Zoom     int           `json:"zoom"`
	}
)

func (m *Model) loadSettings() {
	if m.settingsDir == "" {
		return
	}
	var ps projectSettings
	if m.loadStore(projectSettingsFile, &ps) {
		if err := ps.Project.Validate(); err != nil {
			log.Printf("takt: ignoring saved project: %v", err)
		} else {
			m.d.Project = ps.Project
			m.d.FilePath = ps.FilePath
		}
	}
	var ts transportSettings
	if m.loadStore(transportSettingsFile, &ts) {
		m.d.Loop = ts.Loop
		if m.d.Loop.End < m.d.Loop.Start {
			m.d.Loop.Start, m.d.Loop.End = m.d.Loop.End, m.d.Loop.Start
		}
		m.d.MetronomeEnabled = ts.MetronomeEnabled
		m.d.MetronomeVolume = math.Max(0, math.Min(1, ts.MetronomeVolume))
	}
	var us uiSettings
	if m.loadStore(uiSettingsFile, &us) {
		switch us.Tool {
		case ToolDraw, ToolSelect, ToolErase:
			m.d.Tool = us.Tool
		}
		if us.GridSnap >= takt.GridQuarter && us.GridSnap <= takt.GridThirtySecond {
			m.d.GridSnap = us.GridSnap
		}
		m.d.Zoom = max(1, min(maxZoom, us.Zoom))
	}
}

func (m *Model) loadStore(name string, v any) bool {
	b, err := os.ReadFile(filepath.Join(m.settingsDir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("takt: reading %s: %v", name, err)
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		log.Printf("takt: parsing %s: %v", name, err)
		return false
	}
	return true
}

// SaveSettings writes the three stores if anything changed since the
// last save. Errors are logged and otherwise ignored; failing to
// persist settings must never take the sequencer down.
func (m *Model) SaveSettings() {
	if m.settingsDir == "" || !m.settingsDirty {
		return
	}
	if err := os.MkdirAll(m.settingsDir, 0755); err != nil {
		log.Printf("takt: creating %s: %v", m.settingsDir, err)
		return
	}
	m.saveStore(projectSettingsFile, projectSettings{Project: m.d.Project, FilePath: m.d.FilePath})
	m.saveStore(transportSettingsFile, transportSettings{
		Loop:             m.d.Loop,
		MetronomeEnabled: m.d.MetronomeEnabled,
		MetronomeVolume:  m.d.MetronomeVolume,
	})
	m.saveStore(uiSettingsFile, uiSettings{Tool: m.d.Tool, GridSnap: m.d.GridSnap, Zoom: m.d.Zoom})
	m.settingsDirty = false
}

func (m *Model) saveStore(name string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("takt: marshaling %s: %v", name, err)
		return
	}
	if err := os.WriteFile(filepath.Join(m.settingsDir, name), b, 0644); err != nil {
		log.Printf("takt: writing %s: %v", name, err)
	}
}
