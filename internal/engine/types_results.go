package engine

import (
	"time"

	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/compat"
	"github.com/danieljhkim/pluginsync/internal/planner"
)

// State classifies the catalog against what is enabled.
type State int

const (
	NoPackageEnabled State = iota
	PackageEnabledAndCurrent
	PackageEnabledButStale
)

func (s State) String() string {
	switch s {
	case NoPackageEnabled:
		return "no package enabled"
	case PackageEnabledAndCurrent:
		return "current"
	case PackageEnabledButStale:
		return "stale"
	default:
		return "invalid"
	}
}

// Assessment is a snapshot of the catalog and its enablement.
type Assessment struct {
	// State is the classification
	State State

	// Packages is the scanned catalog
	Packages []*catalog.Package

	// Enabled is the enabled package, nil when none is
	Enabled *catalog.Package

	// Newest is the package with the greatest version, nil for an empty catalog
	Newest *catalog.Package

	// Satisfied reports whether enablement suits the host
	Satisfied bool

	// Mismatches explains an unsatisfied state
	Mismatches []compat.Mismatch
}

// Outcome is how an update attempt ended.
type Outcome string

const (
	OutcomeNothingToDo Outcome = "nothing_to_do"
	OutcomeUpToDate    Outcome = "up_to_date"
	OutcomeDeclined    Outcome = "declined"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeUpdated     Outcome = "updated"
	OutcomeReenabled   Outcome = "reenabled"
)

// UpdateResult represents the result of an update attempt.
type UpdateResult struct {
	// Outcome is how the attempt ended
	Outcome Outcome

	// Assessment is the state the attempt started from
	Assessment *Assessment

	// Plan is the generated plan (nil when nothing was planned)
	Plan *planner.Plan

	// Applied is the list of operations that were executed (empty if DryRun)
	Applied []planner.Operation

	// DryRun is true when nothing was executed on purpose
	DryRun bool

	// DontAskAgain is true when the operator turned automatic updates off
	DontAskAgain bool

	// RestartRequired is true when the host must restart to load the change
	RestartRequired bool
}

// DisableResult represents the result of disabling every package.
type DisableResult struct {
	// AlreadyDisabled is true when nothing was enabled
	AlreadyDisabled bool

	// Declined is true when the operator refused
	Declined bool

	// Plan is the generated plan
	Plan *planner.Plan

	// Applied is the list of operations that were executed (empty if DryRun)
	Applied []planner.Operation

	// DryRun is true when nothing was executed on purpose
	DryRun bool

	// RestartRequired is true when the host must restart to load the change
	RestartRequired bool
}

// SwitchResult represents the result of a backend switch.
type SwitchResult struct {
	// Package is the enabled package directory
	Package string

	// Declined is true when the operator refused
	Declined bool

	// Plan is the generated plan
	Plan *planner.Plan

	// Applied is the list of operations that were executed (empty if DryRun)
	Applied []planner.Operation

	// DryRun is true when nothing was executed on purpose
	DryRun bool

	// RestartRequired is true when the host must restart to load the change
	RestartRequired bool
}

// StatusResult represents the current enablement status.
type StatusResult struct {
	// Packages describes every package in the catalog
	Packages []PackageStatus `json:"packages"`

	// Enabled is the enabled package directory, empty when none
	Enabled string `json:"enabled,omitempty"`

	// Backend is the active backend of the enabled package
	Backend string `json:"backend,omitempty"`

	// State is the catalog classification
	State string `json:"state"`

	// Satisfied reports whether enablement suits the host
	Satisfied bool `json:"satisfied"`

	// Mismatches explains an unsatisfied state
	Mismatches []string `json:"mismatches,omitempty"`

	// Violations lists groups with more than one enabled variant
	Violations []ViolationInfo `json:"violations,omitempty"`

	// SoftwareVersion keys the auto-update preference
	SoftwareVersion string `json:"softwareVersion"`

	// AutoUpdate is the persisted auto-update preference
	AutoUpdate bool `json:"autoUpdate"`

	// LastApplied describes the last successful plan, if any
	LastApplied *AppliedInfo `json:"lastApplied,omitempty"`
}

// PackageStatus describes one package.
type PackageStatus struct {
	Dir       string           `json:"dir"`
	Version   string           `json:"version"`
	Enabled   bool             `json:"enabled"`
	Newest    bool             `json:"newest"`
	Platforms []PlatformStatus `json:"platforms"`
}

// PlatformStatus describes one artifact of a package.
type PlatformStatus struct {
	Platform string `json:"platform"`
	State    string `json:"state"`

	// Drift is true when the enabled copy changed since it was configured
	Drift bool `json:"drift,omitempty"`
}

// ViolationInfo describes a mutual-exclusion violation.
type ViolationInfo struct {
	Package string   `json:"package"`
	Group   string   `json:"group"`
	Enabled []string `json:"enabled"`
}

// AppliedInfo describes the last successful plan.
type AppliedInfo struct {
	Package   string    `json:"package"`
	Version   string    `json:"version,omitempty"`
	Backend   string    `json:"backend"`
	Automatic bool      `json:"automatic"`
	Timestamp time.Time `json:"timestamp"`
}
