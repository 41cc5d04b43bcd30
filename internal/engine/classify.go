package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/pluginsync/internal/catalog"
)

// Classify scans the catalog and reports how it relates to what is enabled.
func (e *Engine) Classify(ctx context.Context) (*Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.classify()
}

func (e *Engine) classify() (*Assessment, error) {
	pkgs, err := e.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog: %w", err)
	}

	a := &Assessment{
		Packages: pkgs,
		Enabled:  e.matrix.EnabledPackage(pkgs),
		Newest:   catalog.Newest(pkgs),
	}
	a.Mismatches = e.matrix.Mismatches(pkgs, e.caps())
	a.Satisfied = len(a.Mismatches) == 0

	switch {
	case a.Enabled == nil:
		a.State = NoPackageEnabled
	case a.Newest != nil && a.Enabled.Version.Equal(a.Newest.Version):
		a.State = PackageEnabledAndCurrent
	default:
		a.State = PackageEnabledButStale
	}
	return a, nil
}
