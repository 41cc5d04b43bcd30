package prefs

import "time"

// keyPrefix namespaces auto-update keys so several tools can share a store.
const keyPrefix = "pluginsync.autoupdate."

// Preferences is the persisted preference document.
type Preferences struct {
	// AutoUpdate maps AutoUpdateKey(version) to whether automatic updates run
	AutoUpdate map[string]bool `json:"autoUpdate"`

	// LastApplied records the last plan that executed successfully
	LastApplied *Applied `json:"lastApplied,omitempty"`

	// UpdatedAt is when the document was last saved
	UpdatedAt time.Time `json:"updatedAt"`
}

// Applied describes one successful reconciliation.
type Applied struct {
	// Package is the directory name of the package that became enabled
	Package string `json:"package"`

	// Version is the package version, empty when unknown
	Version string `json:"version,omitempty"`

	// Backend is "legacy" or "openxr"
	Backend string `json:"backend"`

	// Automatic is true when no operator triggered the run
	Automatic bool `json:"automatic"`

	// Timestamp is when the plan finished
	Timestamp time.Time `json:"timestamp"`
}

// New creates an empty Preferences.
func New() *Preferences {
	return &Preferences{
		AutoUpdate: make(map[string]bool),
	}
}

// AutoUpdateKey returns the preference key for a software version.
func AutoUpdateKey(softwareVersion string) string {
	return keyPrefix + softwareVersion
}

// AutoUpdateEnabled reports whether automatic updates run for softwareVersion.
// Defaults to true.
func (p *Preferences) AutoUpdateEnabled(softwareVersion string) bool {
	if p == nil {
		return true
	}
	enabled, ok := p.AutoUpdate[AutoUpdateKey(softwareVersion)]
	if !ok {
		return true
	}
	return enabled
}

// SetAutoUpdate records the auto-update choice for softwareVersion.
func (p *Preferences) SetAutoUpdate(softwareVersion string, enabled bool) {
	if p.AutoUpdate == nil {
		p.AutoUpdate = make(map[string]bool)
	}
	p.AutoUpdate[AutoUpdateKey(softwareVersion)] = enabled
}
