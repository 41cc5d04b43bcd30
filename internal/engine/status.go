package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/platform"
	"github.com/danieljhkim/pluginsync/internal/prefs"
)

// Status returns the enablement of every package in the catalog.
func (e *Engine) Status(ctx context.Context) (*StatusResult, error) {
	a, err := e.Classify(ctx)
	if err != nil {
		return nil, err
	}

	p, err := prefs.LoadOrNew(e.prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	result := &StatusResult{
		Packages:        make([]PackageStatus, 0, len(a.Packages)),
		State:           a.State.String(),
		Satisfied:       a.Satisfied,
		SoftwareVersion: e.opts.SoftwareVersion,
		AutoUpdate:      p.AutoUpdateEnabled(e.opts.SoftwareVersion),
	}

	if a.Enabled != nil {
		result.Enabled = a.Enabled.Dir
		result.Backend = e.matrix.ActiveBackend(a.Enabled).String()
	}

	for _, pkg := range a.Packages {
		result.Packages = append(result.Packages, e.packageStatus(pkg, pkg == a.Newest))
	}

	for _, m := range a.Mismatches {
		result.Mismatches = append(result.Mismatches, m.String())
	}

	for _, v := range e.matrix.Violations(a.Packages) {
		info := ViolationInfo{Package: v.Package, Group: string(v.Group)}
		for _, pl := range v.Enabled {
			info.Enabled = append(info.Enabled, pl.String())
		}
		result.Violations = append(result.Violations, info)
	}

	if last := p.LastApplied; last != nil {
		result.LastApplied = &AppliedInfo{
			Package:   last.Package,
			Version:   last.Version,
			Backend:   last.Backend,
			Automatic: last.Automatic,
			Timestamp: last.Timestamp,
		}
	}

	return result, nil
}

func (e *Engine) packageStatus(pkg *catalog.Package, isNewest bool) PackageStatus {
	ps := PackageStatus{
		Dir:       pkg.Dir,
		Version:   pkg.Version.String(),
		Enabled:   e.matrix.PackageEnabled(pkg),
		Newest:    isNewest,
		Platforms: make([]PlatformStatus, 0, len(platform.All())),
	}
	for _, p := range platform.All() {
		state := e.matrix.State(pkg, p)
		ps.Platforms = append(ps.Platforms, PlatformStatus{
			Platform: p.String(),
			State:    state.String(),
			Drift:    e.drifted(pkg, p),
		})
	}
	return ps
}

// drifted reports whether an enabled copy no longer hashes to the checksum
// recorded when it was configured. Copies without a recorded checksum or that
// cannot be hashed are not reported.
func (e *Engine) drifted(pkg *catalog.Package, p platform.Platform) bool {
	if !e.matrix.Installed(pkg, p) {
		return false
	}
	s := e.matrix.Settings(pkg, p)
	if s == nil || s.SourceChecksum == "" {
		return false
	}
	path := e.opts.Layout.EnabledPath(pkg.Dir, p)
	sum, err := e.hasher.HashPath(path)
	if err != nil {
		e.log.Debug().Str("path", path).Err(err).Msg("cannot hash enabled copy")
		return false
	}
	return sum != s.SourceChecksum
}
