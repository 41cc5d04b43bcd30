package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/pluginsync/internal/fsops"
	"github.com/danieljhkim/pluginsync/internal/platform"
	"github.com/danieljhkim/pluginsync/internal/version"
)

func newTestScanner(t *testing.T) (*Scanner, Layout) {
	t.Helper()
	root := t.TempDir()
	layout := Layout{
		PluginRoot:  filepath.Join(root, "plugins"),
		InstallRoot: filepath.Join(root, "installed"),
	}
	return NewScanner(fsops.NewRealFS(), layout, zerolog.Nop()), layout
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestLayout_Paths(t *testing.T) {
	l := Layout{PluginRoot: "/p", InstallRoot: "/i"}

	assert.Equal(t, filepath.FromSlash("/p/1.63.0/Win64OpenXR/OVRPlugin.dll"), l.SourcePath("1.63.0", platform.Win64OpenXR))
	assert.Equal(t, filepath.FromSlash("/p/1.63.0/Win64OpenXR/OVRPlugin.dll.disabled"), l.DisabledPath("1.63.0", platform.Win64OpenXR))
	assert.Equal(t, filepath.FromSlash("/i/1.63.0/AndroidUniversal/OVRPlugin.aar"), l.EnabledPath("1.63.0", platform.AndroidUniversal))
	assert.Equal(t, filepath.FromSlash("/i/1.63.0/AndroidUniversal/OVRPlugin.aar.meta"), l.MetaPath("1.63.0", platform.AndroidUniversal))
	assert.Equal(t, filepath.FromSlash("/p/1.63.0"), l.PackageRoot("1.63.0"))
}

func TestScan_MissingRootIsEmpty(t *testing.T) {
	s, _ := newTestScanner(t)

	pkgs, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, pkgs)
	assert.Nil(t, Newest(pkgs))
}

func TestScan_VersionFromDirectoryName(t *testing.T) {
	s, layout := newTestScanner(t)
	require.NoError(t, os.MkdirAll(layout.PackageRoot("1.0.0"), 0755))
	require.NoError(t, os.MkdirAll(layout.PackageRoot("1.2.0"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(layout.PluginRoot, ".git"), 0755))
	writeFile(t, filepath.Join(layout.PluginRoot, "README.txt"), []byte("not a package"))

	pkgs, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, pkgs, 2)

	assert.Equal(t, "1.0.0", pkgs[0].Dir)
	assert.Equal(t, "1.0.0", pkgs[0].Version.String())
	assert.Equal(t, layout.PackageRoot("1.0.0"), pkgs[0].Root)
	assert.Len(t, pkgs[0].Artifacts, len(platform.All()))
	assert.Equal(t, layout.SourcePath("1.0.0", platform.Android), pkgs[0].Artifacts[platform.Android])

	assert.Equal(t, "1.2.0", Newest(pkgs).Version.String())
}

func TestScan_VersionFromEmbeddedResource(t *testing.T) {
	s, layout := newTestScanner(t)
	writeFile(t, layout.DisabledPath("OVRPlugin", platform.Win64), versionResource("1.55.1.0"))

	pkgs, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "1.55.1.0", pkgs[0].Version.String())
}

func TestScan_UnsuffixedArtifactPreferred(t *testing.T) {
	s, layout := newTestScanner(t)
	writeFile(t, layout.SourcePath("Current", platform.Win64), versionResource("1.60.0"))
	writeFile(t, layout.DisabledPath("Current", platform.Win64), versionResource("1.10.0"))

	pkgs, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "1.60.0", pkgs[0].Version.String())
}

func TestScan_UnknownVersion(t *testing.T) {
	s, layout := newTestScanner(t)
	writeFile(t, layout.DisabledPath("Mystery", platform.Win64), []byte("no resource here"))
	require.NoError(t, os.MkdirAll(layout.PackageRoot("Empty"), 0755))

	pkgs, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	for _, pkg := range pkgs {
		assert.Equal(t, version.Unknown, pkg.Version, pkg.Dir)
	}
}

func TestNewest(t *testing.T) {
	pkg := func(dir, v string) *Package {
		parsed, _ := version.Parse(v)
		return &Package{Dir: dir, Version: parsed}
	}

	tests := []struct {
		name string
		pkgs []*Package
		want string
	}{
		{name: "empty", pkgs: nil, want: ""},
		{name: "single unknown", pkgs: []*Package{pkg("a", "")}, want: "a"},
		{name: "numeric ordering", pkgs: []*Package{pkg("a", "1.9.0"), pkg("b", "1.10.0")}, want: "b"},
		{name: "unknown never wins", pkgs: []*Package{pkg("a", ""), pkg("b", "0.0.1"), pkg("c", "")}, want: "b"},
		{name: "tie keeps first", pkgs: []*Package{pkg("a", "1.2.0"), pkg("b", "1.2.0.5")}, want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Newest(tt.pkgs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Dir)
		})
	}
}

// versionResource builds a minimal blob carrying a UTF-16LE ProductVersion entry.
func versionResource(value string) []byte {
	b := []byte("MZ\x90\x00header")
	b = append(b, 0x30, 0x00, 0x08, 0x00, 0x01, 0x00)
	b = append(b, utf16le("ProductVersion\x00")...)
	b = append(b, 0x00, 0x00)
	b = append(b, utf16le(value+"\x00")...)
	return b
}

func utf16le(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}
