package engine

import "errors"

var (
	// ErrNoEnabledPackage indicates an operation needs an enabled package and
	// none is.
	ErrNoEnabledPackage = errors.New("no plugin package enabled")

	// ErrUnsupportedHost indicates the host lacks a capability the operation
	// needs.
	ErrUnsupportedHost = errors.New("host does not support this operation")

	// ErrArtifactMissing indicates the enabled package does not ship the
	// requested variants.
	ErrArtifactMissing = errors.New("artifact missing")

	// ErrAlreadyActive indicates the requested backend is already active.
	ErrAlreadyActive = errors.New("already active")
)
