package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/pluginsync/internal/planner"
	"github.com/danieljhkim/pluginsync/internal/platform"
	"github.com/danieljhkim/pluginsync/internal/version"
)

const experimentalOpenXRBody = "The OpenXR backend of this plugin version is experimental. " +
	"Expect stability issues and missing features such as fixed foveated rendering, " +
	"composition layers and display refresh rates.\n\nContinue?"

// SwitchBackend re-points the enabled package's exclusive groups at the
// requested backend by rewriting their import metadata. Groups that do not
// ship the backend's variant are left alone.
func (e *Engine) SwitchBackend(ctx context.Context, req *SwitchRequest) (*SwitchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.classify()
	if err != nil {
		return nil, err
	}
	if a.Enabled == nil {
		return nil, ErrNoEnabledPackage
	}
	pkg := a.Enabled

	caps := e.caps()
	if !caps.AndroidUniversal {
		return nil, fmt.Errorf("%w: universal Android variants are not supported", ErrUnsupportedHost)
	}
	if req.Backend == platform.BackendOpenXR && !caps.OpenXR {
		return nil, fmt.Errorf("%w: the OpenXR backend is not supported", ErrUnsupportedHost)
	}

	shipped := false
	for _, g := range platform.ExclusiveGroups() {
		if variant, ok := g.Variant(req.Backend); ok && e.matrix.Present(pkg, variant) {
			shipped = true
			break
		}
	}
	if !shipped {
		return nil, fmt.Errorf("%w: package %s ships no %s variant", ErrArtifactMissing, pkg.Dir, req.Backend)
	}

	result := &SwitchResult{
		Package: pkg.Dir,
		Applied: []planner.Operation{},
		DryRun:  req.DryRun,
	}

	plan := e.builder.BuildBackendSwitch(pkg, req.Backend, caps)
	result.Plan = plan
	if plan.IsEmpty() {
		return result, fmt.Errorf("%w: %s backend", ErrAlreadyActive, req.Backend)
	}

	if req.DryRun {
		return result, nil
	}

	if req.Backend == platform.BackendOpenXR && !pkg.Version.AtLeast(version.MinimumOpenXR) && !caps.Unattended {
		ok, err := e.prompter.Confirm(ctx, "Experimental OpenXR backend", experimentalOpenXRBody)
		if err != nil {
			return nil, fmt.Errorf("failed to confirm backend switch: %w", err)
		}
		if !ok {
			result.Declined = true
			return result, nil
		}
	}

	applied, err := e.execute(ctx, plan)
	result.Applied = applied
	if err != nil {
		return result, err
	}

	e.log.Info().
		Str("package", pkg.Dir).
		Str("backend", req.Backend.String()).
		Msg("backend switched")
	e.recordApplied(plan, false)
	result.RestartRequired = true
	return result, nil
}

// OpenXRActive reports whether the enabled package runs the OpenXR backend on
// Android.
func (e *Engine) OpenXRActive(ctx context.Context) (bool, error) {
	a, err := e.Classify(ctx)
	if err != nil {
		return false, err
	}
	if a.Enabled == nil {
		return false, nil
	}
	return e.matrix.Enabled(a.Enabled, platform.AndroidOpenXR), nil
}
