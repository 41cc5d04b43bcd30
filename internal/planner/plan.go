package planner

import (
	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/importmeta"
	"github.com/danieljhkim/pluginsync/internal/platform"
)

// Plan is the outcome of reconciliation: which package becomes the version
// source and the operations that get it there.
type Plan struct {
	// Target is the package being enabled (nil for a disable-only plan)
	Target *catalog.Package

	// Reenable is set when Target is already the enabled package and only its
	// per-platform configuration changes
	Reenable bool

	// Backend is the backend the target's exclusive groups were resolved for
	Backend platform.Backend

	// Operations is the ordered list of operations to execute
	Operations []Operation

	// Skipped lists artifacts that could not be enabled
	Skipped []Skip
}

// Operation is a single filesystem step.
type Operation struct {
	// Type is the operation type: "disable", "install", "configure"
	Type string

	// Package is the directory name of the package the artifact belongs to
	Package string

	// Platform is the artifact's platform tag
	Platform platform.Platform

	// SourcePath is the catalog artifact to copy (install only)
	SourcePath string

	// DestPath is the enabled copy location
	DestPath string

	// MetaPath is the enabled copy's import metadata sidecar
	MetaPath string

	// Settings is the metadata to write (configure only)
	Settings *importmeta.Settings
}

// Skip records an artifact left out of an enable.
type Skip struct {
	Package  string
	Platform platform.Platform
	Reason   string
}

// Operation type constants
const (
	OpDisable   = "disable"
	OpInstall   = "install"
	OpConfigure = "configure"
)

// NewPlan creates an empty plan.
func NewPlan() *Plan {
	return &Plan{
		Operations: []Operation{},
		Skipped:    []Skip{},
	}
}

// AddOperation appends an operation.
func (p *Plan) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
}

// AddSkip records a skipped artifact.
func (p *Plan) AddSkip(skip Skip) {
	p.Skipped = append(p.Skipped, skip)
}

// IsEmpty returns true if the plan changes nothing.
func (p *Plan) IsEmpty() bool {
	return len(p.Operations) == 0
}

// Count returns the number of operations of the given type.
func (p *Plan) Count(opType string) int {
	n := 0
	for _, op := range p.Operations {
		if op.Type == opType {
			n++
		}
	}
	return n
}
