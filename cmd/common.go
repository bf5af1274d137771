// Package cmd has the helpers shared by the takt command line tools.
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/taktile/takt"
	"github.com/taktile/takt/synth"
)

// Synthers lists the available synth implementations, the default one
// first.
var Synthers = []takt.Synther{synth.Synther{}}

func DefaultSynther() takt.Synther { return Synthers[0] }

// Synther finds a synth implementation by name.
func Synther(name string) (takt.Synther, error) {
	for _, s := range Synthers {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown synth %q", name)
}

// SettingsDir returns the per user directory for the settings stores.
// An empty string disables persistence.
func SettingsDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		log.Printf("takt: no settings directory: %v", err)
		return ""
	}
	return filepath.Join(dir, "Takt")
}
