package compat

import (
	"fmt"

	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/platform"
)

// Mismatch explains why current enablement does not suit the host.
type Mismatch struct {
	Package  string
	Platform platform.Platform
	Reason   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s/%s: %s", m.Package, m.Platform, m.Reason)
}

// Mismatches lists every way the enabled artifacts of pkgs disagree with caps.
// An enabled package that is only partly configured, or enabled next to the
// current package, is a mismatch too.
func (m *Matrix) Mismatches(pkgs []*catalog.Package, caps Capabilities) []Mismatch {
	var out []Mismatch
	current := m.EnabledPackage(pkgs)
	for _, pkg := range pkgs {
		if !m.PackageEnabled(pkg) {
			continue
		}

		for _, p := range platform.All() {
			if pkg != current && m.Enabled(pkg, p) {
				out = append(out, Mismatch{pkg.Dir, p, fmt.Sprintf("enabled alongside %s", current.Dir)})
			}
			if !m.Configured(pkg, p) {
				out = append(out, Mismatch{pkg.Dir, p, "enabled copy or its import metadata is missing"})
			}
		}

		universal := m.Enabled(pkg, platform.AndroidUniversal)
		androidOpenXR := m.Enabled(pkg, platform.AndroidOpenXR)

		if !caps.AndroidUniversal {
			if universal {
				out = append(out, Mismatch{pkg.Dir, platform.AndroidUniversal, "host does not support the universal Android variant"})
			}
			if androidOpenXR {
				out = append(out, Mismatch{pkg.Dir, platform.AndroidOpenXR, "host does not support the universal Android variant"})
			}
		}

		if !caps.OpenXR {
			for _, p := range platform.All() {
				if p.IsOpenXR() && m.Enabled(pkg, p) {
					out = append(out, Mismatch{pkg.Dir, p, "host does not support the OpenXR backend"})
				}
			}
		}

		if caps.AndroidUniversal && !universal && !androidOpenXR && m.Present(pkg, platform.AndroidUniversal) {
			out = append(out, Mismatch{pkg.Dir, platform.AndroidUniversal, "host supports the universal Android variant but it is not enabled"})
		}
	}
	return out
}

// Satisfied reports whether current enablement already suits the host.
func (m *Matrix) Satisfied(pkgs []*catalog.Package, caps Capabilities) bool {
	return len(m.Mismatches(pkgs, caps)) == 0
}

// Violation is a group with more than one enabled variant in one package.
type Violation struct {
	Package string
	Group   platform.Group
	Enabled []platform.Platform
}

// Violations lists mutual-exclusion violations across pkgs.
func (m *Matrix) Violations(pkgs []*catalog.Package) []Violation {
	var out []Violation
	for _, pkg := range pkgs {
		for _, g := range platform.ExclusiveGroups() {
			var enabled []platform.Platform
			for _, p := range g.Members() {
				if m.Enabled(pkg, p) {
					enabled = append(enabled, p)
				}
			}
			if len(enabled) > 1 {
				out = append(out, Violation{Package: pkg.Dir, Group: g, Enabled: enabled})
			}
		}
	}
	return out
}
