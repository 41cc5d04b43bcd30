package engine

import "github.com/danieljhkim/pluginsync/internal/platform"

// UpdateRequest represents a request to enable the newest package.
type UpdateRequest struct {
	// Automatic is true when no operator triggered the run
	Automatic bool

	// DryRun performs planning only, without prompts or changes
	DryRun bool
}

// DisableRequest represents a request to disable every package.
type DisableRequest struct {
	// DryRun shows what would be disabled without changing anything
	DryRun bool
}

// SwitchRequest represents a request to change the active backend.
type SwitchRequest struct {
	// Backend is the backend to activate
	Backend platform.Backend

	// DryRun performs planning only, without prompts or changes
	DryRun bool
}
