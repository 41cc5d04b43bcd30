// Package compat answers per-package, per-platform presence and enablement
// questions against the filesystem and the import metadata sidecars.
//
// Nothing is cached. Every query reads the filesystem again, so a query made
// after a plan executes (or after a crash midway through one) reflects what is
// actually on disk.
package compat

import (
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/fsops"
	"github.com/danieljhkim/pluginsync/internal/importmeta"
	"github.com/danieljhkim/pluginsync/internal/platform"
)

// State is the derived enablement of one (package, platform) pair.
type State int

const (
	Absent State = iota
	PresentDisabled
	PresentEnabled
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case PresentDisabled:
		return "disabled"
	case PresentEnabled:
		return "enabled"
	default:
		return "invalid"
	}
}

// Matrix derives enablement state from the filesystem.
type Matrix struct {
	fs     fsops.FS
	layout catalog.Layout
	meta   importmeta.Store
	log    zerolog.Logger
}

// NewMatrix creates a Matrix.
func NewMatrix(fs fsops.FS, layout catalog.Layout, meta importmeta.Store, log zerolog.Logger) *Matrix {
	return &Matrix{fs: fs, layout: layout, meta: meta, log: log}
}

// Layout returns the layout the matrix reads.
func (m *Matrix) Layout() catalog.Layout {
	return m.layout
}

// exists treats an unreadable path as absent.
func (m *Matrix) exists(path string) bool {
	ok, err := m.fs.Exists(path)
	if err != nil {
		m.log.Debug().Str("path", path).Err(err).Msg("cannot stat artifact, treating as absent")
		return false
	}
	return ok
}

// Installed reports whether the enabled copy of the artifact exists.
func (m *Matrix) Installed(pkg *catalog.Package, p platform.Platform) bool {
	return m.exists(m.layout.EnabledPath(pkg.Dir, p))
}

// Source returns the catalog file an install should copy from: the disabled
// artifact, or the un-suffixed one when only that exists.
func (m *Matrix) Source(pkg *catalog.Package, p platform.Platform) (string, bool) {
	if path := m.layout.DisabledPath(pkg.Dir, p); m.exists(path) {
		return path, true
	}
	if path := m.layout.SourcePath(pkg.Dir, p); m.exists(path) {
		return path, true
	}
	return "", false
}

// Present reports whether the artifact exists in any form.
func (m *Matrix) Present(pkg *catalog.Package, p platform.Platform) bool {
	if m.Installed(pkg, p) {
		return true
	}
	_, ok := m.Source(pkg, p)
	return ok
}

// Settings loads the import metadata of the enabled copy. A missing or corrupt
// sidecar yields nil, which is compatible with nothing.
func (m *Matrix) Settings(pkg *catalog.Package, p platform.Platform) *importmeta.Settings {
	path := m.layout.MetaPath(pkg.Dir, p)
	s, err := m.meta.Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.log.Warn().Str("path", path).Err(err).Msg("ignoring unreadable import metadata")
		}
		return nil
	}
	return s
}

// Enabled reports whether the enabled copy exists and its metadata marks it
// compatible with the platform's build target and with the host. An absent
// copy is never enabled, whatever its metadata says.
func (m *Matrix) Enabled(pkg *catalog.Package, p platform.Platform) bool {
	if !m.Installed(pkg, p) {
		return false
	}
	s := m.Settings(pkg, p)
	return s.CompatibleWith(p.BuildTarget()) && s.CompatibleWithHost()
}

// State returns the tri-state for the pair.
func (m *Matrix) State(pkg *catalog.Package, p platform.Platform) State {
	switch {
	case m.Enabled(pkg, p):
		return PresentEnabled
	case m.Present(pkg, p):
		return PresentDisabled
	default:
		return Absent
	}
}

// PackageEnabled reports whether any artifact of pkg is enabled. Copies left
// without metadata by an interrupted plan do not count.
func (m *Matrix) PackageEnabled(pkg *catalog.Package) bool {
	for _, p := range platform.All() {
		if m.Enabled(pkg, p) {
			return true
		}
	}
	return false
}

// Configured reports whether the artifact has an installed copy with readable
// metadata, or ships nothing to install.
func (m *Matrix) Configured(pkg *catalog.Package, p platform.Platform) bool {
	if _, ok := m.Source(pkg, p); !ok {
		return true
	}
	return m.Installed(pkg, p) && m.Settings(pkg, p) != nil
}

// EnabledPackage returns the enabled package with the strictly greatest
// version, or nil when none is enabled. Several enabled packages is a tolerated
// misconfiguration.
func (m *Matrix) EnabledPackage(pkgs []*catalog.Package) *catalog.Package {
	var enabled []*catalog.Package
	for _, pkg := range pkgs {
		if m.PackageEnabled(pkg) {
			enabled = append(enabled, pkg)
		}
	}
	return catalog.Newest(enabled)
}

// ActiveBackend reports OpenXR when any OpenXR variant of pkg is enabled.
func (m *Matrix) ActiveBackend(pkg *catalog.Package) platform.Backend {
	for _, p := range platform.All() {
		if p.IsOpenXR() && m.Enabled(pkg, p) {
			return platform.BackendOpenXR
		}
	}
	return platform.BackendLegacy
}
