package planner

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/compat"
	"github.com/danieljhkim/pluginsync/internal/importmeta"
	"github.com/danieljhkim/pluginsync/internal/platform"
)

// Builder generates plans from the current filesystem state.
type Builder struct {
	matrix *compat.Matrix
	log    zerolog.Logger
}

// NewBuilder creates a Builder reading state through matrix.
func NewBuilder(matrix *compat.Matrix, log zerolog.Logger) *Builder {
	return &Builder{matrix: matrix, log: log}
}

// BuildDisableAll adds a disable for every installed copy of every package.
// Copies that are already gone get no operation.
func (b *Builder) BuildDisableAll(plan *Plan, pkgs []*catalog.Package) {
	layout := b.matrix.Layout()
	for _, pkg := range pkgs {
		for _, p := range platform.All() {
			if !b.matrix.Installed(pkg, p) {
				continue
			}
			plan.AddOperation(Operation{
				Type:     OpDisable,
				Package:  pkg.Dir,
				Platform: p,
				DestPath: layout.EnabledPath(pkg.Dir, p),
				MetaPath: layout.MetaPath(pkg.Dir, p),
			})
		}
	}
}

// BuildEnable adds an install and a configure for every artifact pkg ships.
// Artifacts without a catalog source are recorded as skipped.
//
// The backend is resolved per exclusive group: a group only uses its OpenXR
// variant when that variant ships, otherwise it falls back to legacy. No group
// can end up with two variants switched on.
func (b *Builder) BuildEnable(plan *Plan, pkg *catalog.Package, backend platform.Backend, caps compat.Capabilities) {
	layout := b.matrix.Layout()
	useOpenXR := b.resolveOpenXR(pkg, backend)

	for _, p := range platform.All() {
		src, ok := b.matrix.Source(pkg, p)
		if !ok {
			b.log.Warn().
				Str("package", pkg.Dir).
				Str("platform", p.String()).
				Msg("artifact not found, skipping")
			plan.AddSkip(Skip{Package: pkg.Dir, Platform: p, Reason: "artifact not found in package"})
			continue
		}

		dest := layout.EnabledPath(pkg.Dir, p)
		meta := layout.MetaPath(pkg.Dir, p)
		on := compat.ShouldEnable(p, useOpenXR[p.Group()], caps)

		plan.AddOperation(Operation{
			Type:       OpInstall,
			Package:    pkg.Dir,
			Platform:   p,
			SourcePath: src,
			DestPath:   dest,
			MetaPath:   meta,
		})
		plan.AddOperation(Operation{
			Type:     OpConfigure,
			Package:  pkg.Dir,
			Platform: p,
			DestPath: dest,
			MetaPath: meta,
			Settings: b.settings(pkg, p, on, caps),
		})
	}
}

func (b *Builder) resolveOpenXR(pkg *catalog.Package, backend platform.Backend) map[platform.Group]bool {
	out := make(map[platform.Group]bool)
	if backend != platform.BackendOpenXR {
		return out
	}
	for _, g := range platform.ExclusiveGroups() {
		variant, ok := g.Variant(platform.BackendOpenXR)
		if !ok {
			continue
		}
		if _, shipped := b.matrix.Source(pkg, variant); shipped {
			out[g] = true
		} else {
			b.log.Info().
				Str("package", pkg.Dir).
				Str("group", string(g)).
				Msg("OpenXR variant not shipped, keeping legacy backend for group")
		}
	}
	return out
}

// BuildReconcile plans disabling everything in all, then enabling target.
func (b *Builder) BuildReconcile(all []*catalog.Package, target *catalog.Package, backend platform.Backend, caps compat.Capabilities) *Plan {
	plan := NewPlan()
	plan.Target = target
	plan.Backend = backend
	b.BuildDisableAll(plan, all)
	if target != nil {
		b.BuildEnable(plan, target, backend, caps)
	}
	return plan
}

// BuildBackendSwitch plans re-pointing the enabled package's exclusive groups
// at their backend variant by rewriting metadata. Groups already on the
// variant get no operations; groups that do not ship it are skipped.
func (b *Builder) BuildBackendSwitch(pkg *catalog.Package, backend platform.Backend, caps compat.Capabilities) *Plan {
	layout := b.matrix.Layout()
	plan := NewPlan()
	plan.Target = pkg
	plan.Reenable = true
	plan.Backend = backend

	for _, g := range platform.ExclusiveGroups() {
		want, _ := g.Variant(backend)

		src, shipped := b.matrix.Source(pkg, want)
		if !shipped && !b.matrix.Installed(pkg, want) {
			plan.AddSkip(Skip{Package: pkg.Dir, Platform: want, Reason: fmt.Sprintf("%s variant not shipped", backend)})
			continue
		}
		if b.matrix.Enabled(pkg, want) {
			continue
		}

		for _, other := range g.Members() {
			if other == want || !b.matrix.Enabled(pkg, other) {
				continue
			}
			plan.AddOperation(Operation{
				Type:     OpConfigure,
				Package:  pkg.Dir,
				Platform: other,
				DestPath: layout.EnabledPath(pkg.Dir, other),
				MetaPath: layout.MetaPath(pkg.Dir, other),
				Settings: b.settings(pkg, other, false, caps),
			})
		}

		dest := layout.EnabledPath(pkg.Dir, want)
		meta := layout.MetaPath(pkg.Dir, want)
		if !b.matrix.Installed(pkg, want) {
			plan.AddOperation(Operation{
				Type:       OpInstall,
				Package:    pkg.Dir,
				Platform:   want,
				SourcePath: src,
				DestPath:   dest,
				MetaPath:   meta,
			})
		}
		plan.AddOperation(Operation{
			Type:     OpConfigure,
			Package:  pkg.Dir,
			Platform: want,
			DestPath: dest,
			MetaPath: meta,
			Settings: b.settings(pkg, want, true, caps),
		})
	}
	return plan
}

func (b *Builder) settings(pkg *catalog.Package, p platform.Platform, on bool, caps compat.Capabilities) *importmeta.Settings {
	s := compat.EnabledSettings(p, on, caps)
	if pkg.Version.Known() {
		s.Version = pkg.Version.String()
	}
	return s
}
