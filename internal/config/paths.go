// Package config loads pluginsync settings and resolves its state paths.
//
// Settings come from flags, PLUGINSYNC_* environment variables, .env files,
// and an optional pluginsync.yaml, in that order of precedence. State
// (preferences and telemetry events) lives in a project-local .pluginsync
// directory when one exists, otherwise in ~/.pluginsync.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the state directory.
const HomeEnv = "PLUGINSYNC_HOME"

// localDir is the project-local state directory name.
const localDir = ".pluginsync"

// Paths contains the filesystem paths pluginsync keeps state in.
type Paths struct {
	// Root is the state directory (default: ./.pluginsync or ~/.pluginsync)
	Root string

	// Prefs is the persisted preference document
	Prefs string

	// Events is the telemetry JSON lines file
	Events string

	// Config is the global config file
	Config string
}

// PathsAt returns the paths rooted at root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:   root,
		Prefs:  filepath.Join(root, "prefs.json"),
		Events: filepath.Join(root, "events.jsonl"),
		Config: filepath.Join(root, "config.yaml"),
	}
}

// DefaultPaths returns the default state paths.
// Resolution order:
// - PLUGINSYNC_HOME
// - .pluginsync in the working directory, when it exists
// - ~/.pluginsync
func DefaultPaths() (*Paths, error) {
	if root := os.Getenv(HomeEnv); root != "" {
		return PathsAt(root), nil
	}

	if wd, err := os.Getwd(); err == nil {
		local := filepath.Join(wd, localDir)
		if info, err := os.Stat(local); err == nil && info.IsDir() {
			return PathsAt(local), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return PathsAt(filepath.Join(home, localDir)), nil
}

// EnsureDirectories creates the state directory if it doesn't exist.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.Root, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.Root, err)
	}
	return nil
}
