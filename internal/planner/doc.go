// Package planner builds reconciliation plans before anything touches disk.
//
// A plan is an ordered list of operations. Every disable precedes every
// install, so executing a plan never passes through a state where two packages
// are enabled at once. A crash midway leaves at worst nothing enabled, which the
// next run recovers from by selecting the same target again.
//
// Key responsibilities:
//   - Disable every enabled copy across the whole catalog
//   - Install and configure the target package's artifacts for the host
//   - Record artifacts that could not be enabled instead of failing
//   - Flip metadata between legacy and OpenXR variants of the enabled package
package planner
