// Package integration drives the engine against a real plugin catalog on
// disk.
package integration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/clock"
	"github.com/danieljhkim/pluginsync/internal/compat"
	"github.com/danieljhkim/pluginsync/internal/engine"
	"github.com/danieljhkim/pluginsync/internal/fsops"
	"github.com/danieljhkim/pluginsync/internal/hash"
	"github.com/danieljhkim/pluginsync/internal/importmeta"
	"github.com/danieljhkim/pluginsync/internal/platform"
	"github.com/danieljhkim/pluginsync/internal/prefs"
	"github.com/danieljhkim/pluginsync/internal/prompt"
	"github.com/danieljhkim/pluginsync/internal/telemetry"
)

// fixture is a temp project with a plugin catalog, an install root and a
// state directory.
type fixture struct {
	t        *testing.T
	layout   catalog.Layout
	stateDir string
	fs       *fsops.RealFS
	prompter *prompt.Scripted
	clock    *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	return &fixture{
		t: t,
		layout: catalog.Layout{
			PluginRoot:  filepath.Join(root, "Plugins"),
			InstallRoot: filepath.Join(root, "Assets", "Plugins"),
		},
		stateDir: filepath.Join(root, "state"),
		fs:       fsops.NewRealFS(),
		prompter: &prompt.Scripted{},
		clock:    clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)),
	}
}

// engine builds an engine with real storage, hashing and telemetry files.
func (f *fixture) engine(caps compat.Capabilities) *engine.Engine {
	return engine.New(
		f.fs,
		importmeta.NewFileStore(f.fs),
		f.prompter,
		telemetry.NewFileSink(f.fs, f.stateDir),
		prefs.NewFileStore(f.fs, f.stateDir),
		f.clock,
		hash.NewSHA256Hasher(),
		zerolog.Nop(),
		engine.Options{Layout: f.layout, Capabilities: caps, SoftwareVersion: "2021.3.8"},
	)
}

// ship writes package dir with every platform disabled. The macOS artifact is
// a bundle directory like the real one.
func (f *fixture) ship(dir string) {
	f.t.Helper()
	f.shipAt(f.layout.PluginRoot, dir)
}

// shipAtomically stages dir in a hidden directory and renames it into the
// plugin root, so a watcher sees the package appear in one step.
func (f *fixture) shipAtomically(dir string) {
	f.t.Helper()
	staging := filepath.Join(f.layout.PluginRoot, ".staging")
	f.shipAt(staging, dir)
	require.NoError(f.t, os.Rename(filepath.Join(staging, dir), f.layout.PackageRoot(dir)))
}

func (f *fixture) shipAt(root, dir string) {
	f.t.Helper()
	layout := catalog.Layout{PluginRoot: root}
	for _, p := range platform.All() {
		path := layout.DisabledPath(dir, p)
		if p == platform.OSXUniversal {
			binary := filepath.Join(path, "Contents", "MacOS", "OVRPlugin")
			require.NoError(f.t, os.MkdirAll(filepath.Dir(binary), 0755))
			require.NoError(f.t, os.WriteFile(binary, []byte(dir), 0755))
			continue
		}
		require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(f.t, os.WriteFile(path, []byte(dir+"/"+p.String()), 0644))
	}
}

// enabledCopies lists the enabled copies present for dir.
func (f *fixture) enabledCopies(dir string) []platform.Platform {
	f.t.Helper()
	var out []platform.Platform
	for _, p := range platform.All() {
		if _, err := os.Stat(f.layout.EnabledPath(dir, p)); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// on reports whether the enabled copy of dir for p is switched on.
func (f *fixture) on(dir string, p platform.Platform) bool {
	f.t.Helper()
	m := compat.NewMatrix(f.fs, f.layout, importmeta.NewFileStore(f.fs), zerolog.Nop())
	return m.Enabled(&catalog.Package{Dir: dir}, p)
}

// meta reads the import settings of an enabled copy.
func (f *fixture) meta(dir string, p platform.Platform) *importmeta.Settings {
	f.t.Helper()
	s, err := importmeta.NewFileStore(f.fs).Load(f.layout.MetaPath(dir, p))
	require.NoError(f.t, err)
	return s
}
