// Package prefs manages the preferences persisted between runs.
//
// Preferences are stored as a single JSON document in the state directory.
// The main entry is the auto-update opt-out, keyed by the software version that
// was current when the operator chose "don't ask again". A missing key means
// automatic updates are enabled. Opt-outs never expire; only a manual update or
// an explicit reset turns prompting back on.
//
// Key concepts:
//   - Preferences: the persisted document
//   - AutoUpdateKey: the per-version key of the opt-out
//   - Applied: a record of the last successful reconciliation
//   - Store: interface for loading and saving preferences
package prefs
