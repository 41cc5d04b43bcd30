package catalog

import (
	"path/filepath"

	"github.com/danieljhkim/pluginsync/internal/importmeta"
	"github.com/danieljhkim/pluginsync/internal/platform"
)

// DisabledSuffix marks a catalog artifact that is shipped but not active.
const DisabledSuffix = ".disabled"

// Layout maps packages and platforms to filesystem paths.
type Layout struct {
	// PluginRoot holds one subdirectory per package.
	PluginRoot string

	// InstallRoot receives enabled copies, mirrored as <package-dir>/<sub path>.
	InstallRoot string
}

// PackageRoot is the package directory under the plugin root.
func (l Layout) PackageRoot(pkgDir string) string {
	return filepath.Join(l.PluginRoot, pkgDir)
}

// SourcePath is the un-suffixed artifact path inside the package.
func (l Layout) SourcePath(pkgDir string, p platform.Platform) string {
	return filepath.Join(l.PluginRoot, pkgDir, filepath.FromSlash(p.SubPath()))
}

// DisabledPath is the shipped, disabled artifact path inside the package.
func (l Layout) DisabledPath(pkgDir string, p platform.Platform) string {
	return l.SourcePath(pkgDir, p) + DisabledSuffix
}

// EnabledPath is where the enabled copy of the artifact is installed.
func (l Layout) EnabledPath(pkgDir string, p platform.Platform) string {
	return filepath.Join(l.InstallRoot, pkgDir, filepath.FromSlash(p.SubPath()))
}

// MetaPath is the import metadata sidecar of the enabled copy.
func (l Layout) MetaPath(pkgDir string, p platform.Platform) string {
	return l.EnabledPath(pkgDir, p) + importmeta.Suffix
}
