package compat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/fsops"
	"github.com/danieljhkim/pluginsync/internal/importmeta"
	"github.com/danieljhkim/pluginsync/internal/platform"
	"github.com/danieljhkim/pluginsync/internal/version"
)

type fixture struct {
	t      *testing.T
	layout catalog.Layout
	store  *importmeta.FileStore
	matrix *Matrix
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	fs := fsops.NewRealFS()
	layout := catalog.Layout{
		PluginRoot:  filepath.Join(root, "plugins"),
		InstallRoot: filepath.Join(root, "installed"),
	}
	store := importmeta.NewFileStore(fs)
	return &fixture{
		t:      t,
		layout: layout,
		store:  store,
		matrix: NewMatrix(fs, layout, store, zerolog.Nop()),
	}
}

func (f *fixture) pkg(dir string) *catalog.Package {
	v, _ := version.Parse(dir)
	return &catalog.Package{Dir: dir, Root: f.layout.PackageRoot(dir), Version: v}
}

func (f *fixture) ship(pkg *catalog.Package, platforms ...platform.Platform) {
	f.t.Helper()
	for _, p := range platforms {
		path := f.layout.DisabledPath(pkg.Dir, p)
		require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(f.t, os.WriteFile(path, []byte(p.String()), 0644))
	}
}

func (f *fixture) install(pkg *catalog.Package, p platform.Platform, settings *importmeta.Settings) {
	f.t.Helper()
	path := f.layout.EnabledPath(pkg.Dir, p)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(f.t, os.WriteFile(path, []byte(p.String()), 0644))
	if settings != nil {
		require.NoError(f.t, f.store.Save(f.layout.MetaPath(pkg.Dir, p), settings))
	}
}

func (f *fixture) enable(pkg *catalog.Package, p platform.Platform) {
	f.install(pkg, p, EnabledSettings(p, true, Capabilities{AndroidUniversal: true}))
}

func TestMatrix_State(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg("1.63.0")
	f.ship(pkg, platform.Win64, platform.Win64OpenXR, platform.AndroidUniversal)
	f.enable(pkg, platform.Win64)
	f.install(pkg, platform.AndroidUniversal, EnabledSettings(platform.AndroidUniversal, false, Capabilities{}))

	assert.Equal(t, PresentEnabled, f.matrix.State(pkg, platform.Win64))
	assert.Equal(t, PresentDisabled, f.matrix.State(pkg, platform.Win64OpenXR))
	assert.Equal(t, PresentDisabled, f.matrix.State(pkg, platform.AndroidUniversal))
	assert.Equal(t, Absent, f.matrix.State(pkg, platform.OSXUniversal))
	assert.True(t, f.matrix.PackageEnabled(pkg))
}

func TestMatrix_EnabledRequiresCopy(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg("1.63.0")
	f.ship(pkg, platform.Win)
	f.enable(pkg, platform.Win)
	require.True(t, f.matrix.Enabled(pkg, platform.Win))

	// Stale metadata survives the copy being removed.
	require.NoError(t, os.Remove(f.layout.EnabledPath(pkg.Dir, platform.Win)))

	assert.False(t, f.matrix.Enabled(pkg, platform.Win))
	assert.Equal(t, PresentDisabled, f.matrix.State(pkg, platform.Win))
	assert.False(t, f.matrix.PackageEnabled(pkg))
}

func TestMatrix_MissingOrCorruptMetadata(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg("1.0.0")
	f.install(pkg, platform.Win, nil)
	assert.False(t, f.matrix.Enabled(pkg, platform.Win))

	require.NoError(t, os.WriteFile(f.layout.MetaPath(pkg.Dir, platform.Win), []byte("compatible: [oops"), 0644))
	assert.False(t, f.matrix.Enabled(pkg, platform.Win))
	assert.False(t, f.matrix.PackageEnabled(pkg))
}

func TestMatrix_TargetWithoutHostIsNotEnabled(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg("1.0.0")
	s := importmeta.New(platform.Win64)
	s.SetTarget(platform.TargetStandaloneWindows64, true)
	f.install(pkg, platform.Win64, s)

	assert.False(t, f.matrix.Enabled(pkg, platform.Win64))
}

func TestMatrix_SourcePrefersDisabled(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg("1.0.0")

	_, ok := f.matrix.Source(pkg, platform.Win)
	assert.False(t, ok)

	plain := f.layout.SourcePath(pkg.Dir, platform.Win)
	require.NoError(t, os.MkdirAll(filepath.Dir(plain), 0755))
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0644))
	got, ok := f.matrix.Source(pkg, platform.Win)
	require.True(t, ok)
	assert.Equal(t, plain, got)

	f.ship(pkg, platform.Win)
	got, ok = f.matrix.Source(pkg, platform.Win)
	require.True(t, ok)
	assert.Equal(t, f.layout.DisabledPath(pkg.Dir, platform.Win), got)
}

func TestMatrix_EnabledPackage(t *testing.T) {
	f := newFixture(t)
	unknown := f.pkg("Legacy")
	older := f.pkg("1.2.0")
	newer := f.pkg("1.10.0")
	idle := f.pkg("9.9.9")

	assert.Nil(t, f.matrix.EnabledPackage([]*catalog.Package{older, newer}))

	f.enable(unknown, platform.Win)
	assert.Equal(t, unknown, f.matrix.EnabledPackage([]*catalog.Package{unknown, idle}))

	f.enable(older, platform.Win)
	f.enable(newer, platform.Win)
	got := f.matrix.EnabledPackage([]*catalog.Package{unknown, newer, older, idle})
	require.NotNil(t, got)
	assert.Equal(t, "1.10.0", got.Dir)
}

func TestMatrix_Mismatches(t *testing.T) {
	tests := []struct {
		name    string
		ship    []platform.Platform
		enable  []platform.Platform
		caps    Capabilities
		wantLen int
	}{
		{
			name:    "universal enabled and supported",
			ship:    []platform.Platform{platform.AndroidUniversal, platform.Win64},
			enable:  []platform.Platform{platform.AndroidUniversal, platform.Win64},
			caps:    Capabilities{AndroidUniversal: true},
			wantLen: 0,
		},
		{
			name:    "openxr enabled but host lacks openxr",
			ship:    []platform.Platform{platform.AndroidUniversal, platform.AndroidOpenXR},
			enable:  []platform.Platform{platform.AndroidOpenXR},
			caps:    Capabilities{AndroidUniversal: true},
			wantLen: 1,
		},
		{
			name:    "universal enabled but host lacks universal",
			ship:    []platform.Platform{platform.Android, platform.AndroidUniversal},
			enable:  []platform.Platform{platform.AndroidUniversal},
			caps:    Capabilities{},
			wantLen: 1,
		},
		{
			name:    "universal present and supported but nothing enabled for it",
			ship:    []platform.Platform{platform.Android, platform.AndroidUniversal, platform.Win},
			enable:  []platform.Platform{platform.Android, platform.Win},
			caps:    Capabilities{AndroidUniversal: true},
			wantLen: 1,
		},
		{
			name:    "win64 openxr without host openxr",
			ship:    []platform.Platform{platform.Win64OpenXR},
			enable:  []platform.Platform{platform.Win64OpenXR},
			caps:    Capabilities{AndroidUniversal: true},
			wantLen: 1,
		},
		{
			name:    "openxr everywhere and supported",
			ship:    []platform.Platform{platform.AndroidUniversal, platform.AndroidOpenXR, platform.Win64OpenXR},
			enable:  []platform.Platform{platform.AndroidOpenXR, platform.Win64OpenXR},
			caps:    Capabilities{AndroidUniversal: true, OpenXR: true},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			pkg := f.pkg("2.0.0")
			f.ship(pkg, tt.ship...)
			for _, p := range tt.ship {
				f.install(pkg, p, EnabledSettings(p, false, tt.caps))
			}
			for _, p := range tt.enable {
				f.enable(pkg, p)
			}

			got := f.matrix.Mismatches([]*catalog.Package{pkg}, tt.caps)
			assert.Len(t, got, tt.wantLen, "%v", got)
			assert.Equal(t, tt.wantLen == 0, f.matrix.Satisfied([]*catalog.Package{pkg}, tt.caps))
		})
	}
}

func TestMatrix_MismatchesPartlyConfigured(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg("1.0.0")
	f.ship(pkg, platform.Android, platform.Win, platform.Win64)
	f.enable(pkg, platform.Android)
	f.install(pkg, platform.Win, nil)

	got := f.matrix.Mismatches([]*catalog.Package{pkg}, Capabilities{})
	require.Len(t, got, 2, "%v", got)
	assert.Equal(t, platform.Win, got[0].Platform)
	assert.Equal(t, platform.Win64, got[1].Platform)

	f.install(pkg, platform.Win, EnabledSettings(platform.Win, true, Capabilities{}))
	f.install(pkg, platform.Win64, EnabledSettings(platform.Win64, true, Capabilities{}))
	assert.True(t, f.matrix.Satisfied([]*catalog.Package{pkg}, Capabilities{}))
}

func TestMatrix_MismatchesSeveralEnabled(t *testing.T) {
	f := newFixture(t)
	older := f.pkg("1.0.0")
	newer := f.pkg("1.2.0")
	f.enable(older, platform.Win)
	f.enable(newer, platform.Win)

	got := f.matrix.Mismatches([]*catalog.Package{older, newer}, Capabilities{})
	require.Len(t, got, 1)
	assert.Equal(t, "1.0.0", got[0].Package)
	assert.Equal(t, "1.0.0/Win: enabled alongside 1.2.0", got[0].String())
}

func TestMatrix_SatisfiedWithNothingEnabled(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg("1.0.0")
	f.ship(pkg, platform.AndroidUniversal)
	assert.True(t, f.matrix.Satisfied([]*catalog.Package{pkg}, Capabilities{AndroidUniversal: true}))
}

func TestMatrix_Violations(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg("1.63.0")
	f.enable(pkg, platform.AndroidUniversal)
	f.enable(pkg, platform.AndroidOpenXR)
	f.enable(pkg, platform.Win64)

	got := f.matrix.Violations([]*catalog.Package{pkg})
	require.Len(t, got, 1)
	assert.Equal(t, platform.GroupAndroid, got[0].Group)
	assert.Equal(t, []platform.Platform{platform.AndroidUniversal, platform.AndroidOpenXR}, got[0].Enabled)
}

func TestMatrix_ActiveBackend(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg("1.63.0")
	f.enable(pkg, platform.Win64)
	assert.Equal(t, platform.BackendLegacy, f.matrix.ActiveBackend(pkg))

	f.enable(pkg, platform.AndroidOpenXR)
	assert.Equal(t, platform.BackendOpenXR, f.matrix.ActiveBackend(pkg))
}

func TestShouldEnable(t *testing.T) {
	universal := Capabilities{AndroidUniversal: true}
	none := Capabilities{}

	tests := []struct {
		platform platform.Platform
		openXR   bool
		caps     Capabilities
		want     bool
	}{
		{platform.Android, false, none, true},
		{platform.Android, false, universal, false},
		{platform.AndroidUniversal, false, universal, true},
		{platform.AndroidUniversal, true, universal, false},
		{platform.AndroidUniversal, false, none, false},
		{platform.AndroidOpenXR, true, universal, true},
		{platform.AndroidOpenXR, true, none, false},
		{platform.AndroidOpenXR, false, universal, false},
		{platform.OSXUniversal, true, none, true},
		{platform.Win, false, none, true},
		{platform.Win64, false, none, true},
		{platform.Win64, true, none, false},
		{platform.Win64OpenXR, true, none, true},
		{platform.Win64OpenXR, false, none, false},
	}

	for _, tt := range tests {
		got := ShouldEnable(tt.platform, tt.openXR, tt.caps)
		assert.Equal(t, tt.want, got, "%s openxr=%v caps=%+v", tt.platform, tt.openXR, tt.caps)
	}
}

func TestEnabledSettings(t *testing.T) {
	s := EnabledSettings(platform.Android, true, Capabilities{})
	assert.True(t, s.CompatibleWith(platform.TargetAndroid))
	assert.True(t, s.CompatibleWithHost())
	assert.Equal(t, "ARMv7", s.TargetData[string(platform.TargetAndroid)].CPU)

	s = EnabledSettings(platform.Win64OpenXR, true, Capabilities{})
	assert.True(t, s.CompatibleWith(platform.TargetStandaloneWindows64))
	assert.False(t, s.CompatibleWith(platform.TargetStandaloneWindows))
	assert.Equal(t, importmeta.CPUOS{CPU: "X86_64", OS: "Windows"}, s.HostData)

	s = EnabledSettings(platform.OSXUniversal, false, Capabilities{})
	assert.False(t, s.CompatibleWith(platform.TargetStandaloneOSX))
	assert.False(t, s.CompatibleWithHost())

	assert.Panics(t, func() { ShouldEnable(platform.Platform(42), false, Capabilities{}) })
}
