// cmd/skeleton_viewer/prefs.go
// Persistent viewer preferences, stored through gdata.

package main

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ViewerPrefs stores the viewer state that survives restarts.
type ViewerPrefs struct {
	Unit   string `yaml:"unit"`   // last selected unit name
	Clip   string `yaml:"clip"`   // last selected animation clip
	Smooth bool   `yaml:"smooth"` // keyframe interpolation toggle
}

// DefaultPrefs returns the preferences used on first run.
func DefaultPrefs() *ViewerPrefs {
	return &ViewerPrefs{Smooth: true}
}

const (
	prefsObject   = "viewer"
	prefsProperty = "prefs"
)

// PrefsManager loads and saves viewer preferences.
//
// The gdata manager may be nil (degraded mode, 仅内存设置): preferences
// then live only for the current session and Save is a no-op.
type PrefsManager struct {
	gdataManager *gdata.Manager
	prefs        *ViewerPrefs
}

// NewPrefsManager creates a preferences manager. A load failure is not
// fatal; the defaults are used instead.
func NewPrefsManager(gdataManager *gdata.Manager) *PrefsManager {
	pm := &PrefsManager{
		gdataManager: gdataManager,
		prefs:        DefaultPrefs(),
	}
	if err := pm.Load(); err != nil {
		log.Printf("[Prefs] Warning: failed to load preferences: %v (using defaults)", err)
	}
	return pm
}

// Prefs returns the current in-memory preferences.
func (pm *PrefsManager) Prefs() *ViewerPrefs { return pm.prefs }

// Load reads preferences from gdata, falling back to defaults when the
// manager is nil or no saved data exists.
func (pm *PrefsManager) Load() error {
	if pm.gdataManager == nil {
		pm.prefs = DefaultPrefs()
		return nil
	}

	if !pm.gdataManager.ObjectPropExists(prefsObject, prefsProperty) {
		pm.prefs = DefaultPrefs()
		return nil
	}

	data, err := pm.gdataManager.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		pm.prefs = DefaultPrefs()
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	var loaded ViewerPrefs
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		pm.prefs = DefaultPrefs()
		return fmt.Errorf("failed to unmarshal preferences: %w", err)
	}

	pm.prefs = &loaded
	return nil
}

// Save writes the current preferences to gdata. In degraded mode this
// silently succeeds.
func (pm *PrefsManager) Save() error {
	if pm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(pm.prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := pm.gdataManager.SaveObjectProp(prefsObject, prefsProperty, data); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
