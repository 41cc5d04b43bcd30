package compat

// Capabilities are facts about the host environment. They are set once at
// process start and never mutated by reconciliation.
type Capabilities struct {
	// Unattended means no operator is present; prompts are bypassed.
	Unattended bool

	// AndroidUniversal means the host can build the universal Android variant.
	AndroidUniversal bool

	// OpenXR means the host can load OpenXR backend variants.
	OpenXR bool
}
