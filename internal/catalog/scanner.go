// Package catalog discovers the plugin packages shipped side by side under the
// plugin root.
//
// Every immediate subdirectory of the plugin root is a package. Its version
// comes from the directory name, or failing that from the product version
// embedded in its Win64 binary. A package whose version cannot be determined
// gets version.Unknown, which never wins a newer-than comparison.
//
// The catalog is never cached: callers rescan for every operation.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/pluginsync/internal/fsops"
	"github.com/danieljhkim/pluginsync/internal/platform"
	"github.com/danieljhkim/pluginsync/internal/version"
)

// Package is one versioned bundle of per-platform artifacts. It is immutable
// once scanned.
type Package struct {
	// Dir is the package directory name under the plugin root.
	Dir string

	// Root is the absolute package directory.
	Root string

	// Version is the parsed version or version.Unknown.
	Version version.Version

	// Artifacts maps every platform to its un-suffixed source path.
	Artifacts map[platform.Platform]string
}

// Scanner enumerates packages under a layout's plugin root.
type Scanner struct {
	fs     fsops.FS
	layout Layout
	log    zerolog.Logger
}

// NewScanner creates a Scanner.
func NewScanner(fs fsops.FS, layout Layout, log zerolog.Logger) *Scanner {
	return &Scanner{fs: fs, layout: layout, log: log}
}

// Layout returns the layout the scanner reads.
func (s *Scanner) Layout() Layout {
	return s.layout
}

// Scan returns every package under the plugin root. A missing plugin root is
// an empty catalog and hidden directories are ignored. Order is by directory
// name but callers must not rely on it.
func (s *Scanner) Scan() ([]*Package, error) {
	exists, err := s.fs.Exists(s.layout.PluginRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to check plugin root: %w", err)
	}
	if !exists {
		return []*Package{}, nil
	}

	entries, err := s.fs.ReadDir(s.layout.PluginRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin root: %w", err)
	}

	pkgs := make([]*Package, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := s.fs.ValidateIdentifier(entry.Name()); err != nil {
			s.log.Warn().Str("dir", entry.Name()).Err(err).Msg("skipping package directory")
			continue
		}
		pkgs = append(pkgs, s.load(entry.Name()))
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Dir < pkgs[j].Dir })
	return pkgs, nil
}

func (s *Scanner) load(dir string) *Package {
	pkg := &Package{
		Dir:       dir,
		Root:      s.layout.PackageRoot(dir),
		Artifacts: make(map[platform.Platform]string, len(platform.All())),
	}
	for _, p := range platform.All() {
		pkg.Artifacts[p] = s.layout.SourcePath(dir, p)
	}
	pkg.Version = s.resolveVersion(dir)
	return pkg
}

// resolveVersion never fails: anything unreadable degrades to Unknown.
func (s *Scanner) resolveVersion(dir string) version.Version {
	if v, ok := version.Parse(dir); ok {
		return v
	}

	candidates := []string{
		s.layout.SourcePath(dir, platform.Win64),
		s.layout.DisabledPath(dir, platform.Win64),
	}
	for _, path := range candidates {
		data, err := s.fs.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.log.Debug().Str("path", path).Err(err).Msg("cannot read version resource")
			}
			continue
		}
		v, ok := version.ProductVersion(data)
		if !ok {
			s.log.Debug().Str("path", path).Msg("no product version embedded")
			return version.Unknown
		}
		return v
	}

	return version.Unknown
}

// Newest returns the package with the strictly greatest version. Ties keep the
// earliest package. Returns nil for an empty slice.
func Newest(pkgs []*Package) *Package {
	var newest *Package
	for _, pkg := range pkgs {
		if newest == nil || newest.Version.Less(pkg.Version) {
			newest = pkg
		}
	}
	return newest
}
