package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/compat"
	"github.com/danieljhkim/pluginsync/internal/fsops"
	"github.com/danieljhkim/pluginsync/internal/importmeta"
	"github.com/danieljhkim/pluginsync/internal/platform"
	"github.com/danieljhkim/pluginsync/internal/version"
)

type testEnv struct {
	t       *testing.T
	layout  catalog.Layout
	store   *importmeta.FileStore
	matrix  *compat.Matrix
	builder *Builder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	fs := fsops.NewRealFS()
	layout := catalog.Layout{
		PluginRoot:  filepath.Join(root, "plugins"),
		InstallRoot: filepath.Join(root, "installed"),
	}
	store := importmeta.NewFileStore(fs)
	matrix := compat.NewMatrix(fs, layout, store, zerolog.Nop())
	return &testEnv{
		t:       t,
		layout:  layout,
		store:   store,
		matrix:  matrix,
		builder: NewBuilder(matrix, zerolog.Nop()),
	}
}

func (e *testEnv) pkg(dir string, ships ...platform.Platform) *catalog.Package {
	e.t.Helper()
	v, _ := version.Parse(dir)
	for _, p := range ships {
		path := e.layout.DisabledPath(dir, p)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			e.t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(p.String()), 0644); err != nil {
			e.t.Fatalf("write: %v", err)
		}
	}
	return &catalog.Package{Dir: dir, Root: e.layout.PackageRoot(dir), Version: v}
}

func (e *testEnv) enable(pkg *catalog.Package, p platform.Platform) {
	e.t.Helper()
	path := e.layout.EnabledPath(pkg.Dir, p)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(p.String()), 0644); err != nil {
		e.t.Fatalf("write: %v", err)
	}
	settings := compat.EnabledSettings(p, true, compat.Capabilities{AndroidUniversal: true})
	if err := e.store.Save(e.layout.MetaPath(pkg.Dir, p), settings); err != nil {
		e.t.Fatalf("save meta: %v", err)
	}
}

// summarize renders operations as "type pkg/platform[=on|off]".
func summarize(plan *Plan) []string {
	var out []string
	for _, op := range plan.Operations {
		s := fmt.Sprintf("%s %s/%s", op.Type, op.Package, op.Platform)
		if op.Type == OpConfigure {
			if op.Settings.CompatibleWith(op.Platform.BuildTarget()) {
				s += "=on"
			} else {
				s += "=off"
			}
		}
		out = append(out, s)
	}
	return out
}

func TestBuildReconcile_DisablesBeforeEnabling(t *testing.T) {
	env := newTestEnv(t)
	old := env.pkg("1.0.0", platform.Win, platform.Win64)
	env.enable(old, platform.Win)
	env.enable(old, platform.Win64)
	target := env.pkg("1.2.0", platform.Win, platform.Win64)

	plan := env.builder.BuildReconcile([]*catalog.Package{old, target}, target, platform.BackendLegacy, compat.Capabilities{})

	want := []string{
		"disable 1.0.0/Win",
		"disable 1.0.0/Win64",
		"install 1.2.0/Win",
		"configure 1.2.0/Win=on",
		"install 1.2.0/Win64",
		"configure 1.2.0/Win64=on",
	}
	if diff := cmp.Diff(want, summarize(plan)); diff != "" {
		t.Errorf("operations mismatch (-want +got):\n%s", diff)
	}
	if plan.Target != target {
		t.Errorf("expected target %s, got %v", target.Dir, plan.Target)
	}

	lastDisable, firstInstall := -1, len(plan.Operations)
	for i, op := range plan.Operations {
		switch op.Type {
		case OpDisable:
			lastDisable = i
		case OpInstall:
			if i < firstInstall {
				firstInstall = i
			}
		}
	}
	if lastDisable > firstInstall {
		t.Errorf("disable at %d follows install at %d", lastDisable, firstInstall)
	}
}

func TestBuildDisableAll_SkipsAbsentCopies(t *testing.T) {
	env := newTestEnv(t)
	a := env.pkg("1.0.0", platform.Win, platform.OSXUniversal)
	b := env.pkg("1.1.0", platform.Win)
	env.enable(a, platform.OSXUniversal)

	plan := NewPlan()
	env.builder.BuildDisableAll(plan, []*catalog.Package{a, b})

	want := []string{"disable 1.0.0/OSXUniversal"}
	if diff := cmp.Diff(want, summarize(plan)); diff != "" {
		t.Errorf("operations mismatch (-want +got):\n%s", diff)
	}
	if plan.Operations[0].MetaPath != env.layout.MetaPath("1.0.0", platform.OSXUniversal) {
		t.Errorf("unexpected meta path %s", plan.Operations[0].MetaPath)
	}

	empty := NewPlan()
	env.builder.BuildDisableAll(empty, []*catalog.Package{b})
	if !empty.IsEmpty() {
		t.Errorf("expected no operations for a package with nothing installed, got %v", summarize(empty))
	}
}

func TestBuildEnable_Backends(t *testing.T) {
	all := []platform.Platform{
		platform.Android, platform.AndroidUniversal, platform.AndroidOpenXR,
		platform.OSXUniversal, platform.Win, platform.Win64, platform.Win64OpenXR,
	}

	tests := []struct {
		name    string
		ships   []platform.Platform
		backend platform.Backend
		caps    compat.Capabilities
		want    []string
	}{
		{
			name:    "legacy on universal host",
			ships:   all,
			backend: platform.BackendLegacy,
			caps:    compat.Capabilities{AndroidUniversal: true},
			want: []string{
				"configure 2.0.0/Android=off",
				"configure 2.0.0/AndroidUniversal=on",
				"configure 2.0.0/AndroidOpenXR=off",
				"configure 2.0.0/OSXUniversal=on",
				"configure 2.0.0/Win=on",
				"configure 2.0.0/Win64=on",
				"configure 2.0.0/Win64OpenXR=off",
			},
		},
		{
			name:    "openxr on universal host",
			ships:   all,
			backend: platform.BackendOpenXR,
			caps:    compat.Capabilities{AndroidUniversal: true, OpenXR: true},
			want: []string{
				"configure 2.0.0/Android=off",
				"configure 2.0.0/AndroidUniversal=off",
				"configure 2.0.0/AndroidOpenXR=on",
				"configure 2.0.0/OSXUniversal=on",
				"configure 2.0.0/Win=on",
				"configure 2.0.0/Win64=off",
				"configure 2.0.0/Win64OpenXR=on",
			},
		},
		{
			name:    "pre-universal host",
			ships:   all,
			backend: platform.BackendLegacy,
			caps:    compat.Capabilities{},
			want: []string{
				"configure 2.0.0/Android=on",
				"configure 2.0.0/AndroidUniversal=off",
				"configure 2.0.0/AndroidOpenXR=off",
				"configure 2.0.0/OSXUniversal=on",
				"configure 2.0.0/Win=on",
				"configure 2.0.0/Win64=on",
				"configure 2.0.0/Win64OpenXR=off",
			},
		},
		{
			name:    "openxr falls back per group when variant is missing",
			ships:   []platform.Platform{platform.AndroidUniversal, platform.AndroidOpenXR, platform.Win64},
			backend: platform.BackendOpenXR,
			caps:    compat.Capabilities{AndroidUniversal: true, OpenXR: true},
			want: []string{
				"configure 2.0.0/AndroidUniversal=off",
				"configure 2.0.0/AndroidOpenXR=on",
				"configure 2.0.0/Win64=on",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			pkg := env.pkg("2.0.0", tt.ships...)

			plan := NewPlan()
			env.builder.BuildEnable(plan, pkg, tt.backend, tt.caps)

			var got []string
			for _, s := range summarize(plan) {
				if s[:len(OpConfigure)] == OpConfigure {
					got = append(got, s)
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("configure operations mismatch (-want +got):\n%s", diff)
			}
			if plan.Count(OpInstall) != len(tt.ships) {
				t.Errorf("expected %d installs, got %d", len(tt.ships), plan.Count(OpInstall))
			}
			if len(plan.Skipped) != len(all)-len(tt.ships) {
				t.Errorf("expected %d skips, got %d", len(all)-len(tt.ships), len(plan.Skipped))
			}
		})
	}
}

func TestBuildEnable_RecordsVersionInSettings(t *testing.T) {
	env := newTestEnv(t)
	pkg := env.pkg("1.63.0", platform.Win)

	plan := NewPlan()
	env.builder.BuildEnable(plan, pkg, platform.BackendLegacy, compat.Capabilities{})

	if len(plan.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(plan.Operations))
	}
	install, configure := plan.Operations[0], plan.Operations[1]
	if install.SourcePath != env.layout.DisabledPath("1.63.0", platform.Win) {
		t.Errorf("unexpected source %s", install.SourcePath)
	}
	if install.DestPath != env.layout.EnabledPath("1.63.0", platform.Win) {
		t.Errorf("unexpected dest %s", install.DestPath)
	}
	if configure.Settings.Version != "1.63.0" {
		t.Errorf("expected settings version 1.63.0, got %q", configure.Settings.Version)
	}
}

func TestBuildBackendSwitch(t *testing.T) {
	caps := compat.Capabilities{AndroidUniversal: true, OpenXR: true}

	t.Run("legacy to openxr", func(t *testing.T) {
		env := newTestEnv(t)
		pkg := env.pkg("1.63.0", platform.AndroidUniversal, platform.AndroidOpenXR, platform.Win64, platform.Win64OpenXR)
		env.enable(pkg, platform.AndroidUniversal)
		env.enable(pkg, platform.Win64)

		plan := env.builder.BuildBackendSwitch(pkg, platform.BackendOpenXR, caps)

		want := []string{
			"configure 1.63.0/AndroidUniversal=off",
			"install 1.63.0/AndroidOpenXR",
			"configure 1.63.0/AndroidOpenXR=on",
			"configure 1.63.0/Win64=off",
			"install 1.63.0/Win64OpenXR",
			"configure 1.63.0/Win64OpenXR=on",
		}
		if diff := cmp.Diff(want, summarize(plan)); diff != "" {
			t.Errorf("operations mismatch (-want +got):\n%s", diff)
		}
		if !plan.Reenable {
			t.Error("expected backend switch to be a re-enable")
		}
	})

	t.Run("already active", func(t *testing.T) {
		env := newTestEnv(t)
		pkg := env.pkg("1.63.0", platform.AndroidOpenXR, platform.Win64OpenXR)
		env.enable(pkg, platform.AndroidOpenXR)
		env.enable(pkg, platform.Win64OpenXR)

		plan := env.builder.BuildBackendSwitch(pkg, platform.BackendOpenXR, caps)
		if !plan.IsEmpty() {
			t.Errorf("expected empty plan, got %v", summarize(plan))
		}
	})

	t.Run("variant missing for one group", func(t *testing.T) {
		env := newTestEnv(t)
		pkg := env.pkg("1.63.0", platform.AndroidUniversal, platform.AndroidOpenXR, platform.Win64)
		env.enable(pkg, platform.AndroidOpenXR)
		env.enable(pkg, platform.Win64)

		plan := env.builder.BuildBackendSwitch(pkg, platform.BackendOpenXR, caps)
		if !plan.IsEmpty() {
			t.Errorf("expected empty plan, got %v", summarize(plan))
		}
		if len(plan.Skipped) != 1 || plan.Skipped[0].Platform != platform.Win64OpenXR {
			t.Errorf("expected Win64OpenXR skip, got %+v", plan.Skipped)
		}
	})
}
