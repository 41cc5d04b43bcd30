package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/planner"
	"github.com/danieljhkim/pluginsync/internal/platform"
	"github.com/danieljhkim/pluginsync/internal/prefs"
	"github.com/danieljhkim/pluginsync/internal/prompt"
	"github.com/danieljhkim/pluginsync/internal/telemetry"
	"github.com/danieljhkim/pluginsync/internal/version"
)

const openXRPromptBody = "The OpenXR backend is fully supported, but some features of the legacy " +
	"backend are not part of baseline OpenXR yet.\n\n" +
	"Keep the legacy backend if you depend on advanced hand tracking features " +
	"or on mixed reality capture.\n\n" +
	"You can switch backends at any time with `pluginsync backend`.\n\nUse OpenXR?"

// Update enables the newest package in the catalog.
//
// Algorithm steps:
// 1. Report the attempt to telemetry
// 2. Scan and classify the catalog
// 3. Pick the target: the newest package, or the current one when the host
// needs it reconfigured
// 4. Ask for consent (skipped when unattended or nothing is enabled)
// 5. Choose the backend
// 6. Disable every package, then enable the target
// 7. Record the applied plan
func (e *Engine) Update(ctx context.Context, req *UpdateRequest) (*UpdateResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.notify(ctx, telemetry.EventAttemptUpdate, strconv.FormatBool(req.Automatic))

	a, err := e.classify()
	if err != nil {
		return nil, err
	}
	result := &UpdateResult{
		Assessment: a,
		Applied:    []planner.Operation{},
		DryRun:     req.DryRun,
	}

	if len(a.Packages) == 0 {
		e.log.Info().Str("plugin_root", e.opts.Layout.PluginRoot).Msg("no plugin packages found")
		result.Outcome = OutcomeNothingToDo
		return result, nil
	}

	var target *catalog.Package
	if a.State != PackageEnabledAndCurrent {
		target = a.Newest
	}

	reenable := false
	if target == nil && !a.Satisfied {
		e.log.Info().Str("package", a.Enabled.Dir).Msg("enabled package does not suit the host, re-enabling")
		reenable = true
		target = a.Enabled
	}

	if a.Enabled != nil && target == nil {
		result.Outcome = OutcomeUpToDate
		return result, nil
	}

	if !req.DryRun && !e.caps().Unattended && a.Enabled != nil {
		choice, err := e.prompter.ConfirmUpdate(ctx, prompt.UpdatePrompt{
			Current:  a.Enabled.Version.String(),
			Target:   target.Version.String(),
			Reenable: reenable,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to ask for consent: %w", err)
		}
		switch choice {
		case prompt.Yes:
		case prompt.NoDontAskAgain:
			if err := e.setAutoUpdate(false); err != nil {
				return nil, err
			}
			result.Outcome = OutcomeDeclined
			result.DontAskAgain = true
			return result, nil
		default:
			result.Outcome = OutcomeDeclined
			return result, nil
		}
	}

	backend, err := e.chooseBackend(ctx, target, req.DryRun)
	if err != nil {
		return nil, err
	}

	plan := e.builder.BuildReconcile(a.Packages, target, backend, e.caps())
	plan.Reenable = reenable
	result.Plan = plan
	result.Outcome = OutcomeUpdated
	if reenable {
		result.Outcome = OutcomeReenabled
	}

	if req.DryRun {
		return result, nil
	}

	applied, err := e.execute(ctx, plan)
	result.Applied = applied
	if err != nil {
		return result, err
	}

	e.log.Info().
		Str("package", target.Dir).
		Str("version", target.Version.String()).
		Str("backend", backend.String()).
		Int("disabled", plan.Count(planner.OpDisable)).
		Int("installed", plan.Count(planner.OpInstall)).
		Int("skipped", len(plan.Skipped)).
		Msg("plugin package enabled")

	e.recordApplied(plan, req.Automatic)
	result.RestartRequired = true
	return result, nil
}

// chooseBackend picks OpenXR for packages new enough to ship a production
// OpenXR backend on hosts that can load it, unless the operator opts out.
func (e *Engine) chooseBackend(ctx context.Context, target *catalog.Package, dryRun bool) (platform.Backend, error) {
	if !e.caps().OpenXR || !target.Version.AtLeast(version.MinimumOpenXR) {
		return platform.BackendLegacy, nil
	}
	if dryRun || e.caps().Unattended {
		return platform.BackendOpenXR, nil
	}
	ok, err := e.prompter.Confirm(ctx, "OpenXR backend", openXRPromptBody)
	if err != nil {
		return platform.BackendLegacy, fmt.Errorf("failed to confirm backend: %w", err)
	}
	if !ok {
		return platform.BackendLegacy, nil
	}
	return platform.BackendOpenXR, nil
}

// ShouldAttemptAuto reports whether an automatic update should run: never
// when unattended, always when enablement does not suit the host, otherwise
// as the persisted preference says.
func (e *Engine) ShouldAttemptAuto(ctx context.Context) (bool, error) {
	if e.caps().Unattended {
		return false, nil
	}
	a, err := e.Classify(ctx)
	if err != nil {
		return false, err
	}
	if !a.Satisfied {
		return true, nil
	}
	p, err := prefs.LoadOrNew(e.prefs)
	if err != nil {
		return false, fmt.Errorf("failed to load preferences: %w", err)
	}
	return p.AutoUpdateEnabled(e.opts.SoftwareVersion), nil
}

// AutoUpdate runs an automatic update when ShouldAttemptAuto allows it.
func (e *Engine) AutoUpdate(ctx context.Context) (*UpdateResult, error) {
	ok, err := e.ShouldAttemptAuto(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &UpdateResult{Outcome: OutcomeSkipped, Applied: []planner.Operation{}}, nil
	}
	return e.Update(ctx, &UpdateRequest{Automatic: true})
}

// ManualUpdate turns automatic updates back on and runs an operator update.
// A dry run leaves the preference untouched.
func (e *Engine) ManualUpdate(ctx context.Context, dryRun bool) (*UpdateResult, error) {
	if !dryRun {
		if err := e.setAutoUpdate(true); err != nil {
			return nil, err
		}
	}
	return e.Update(ctx, &UpdateRequest{Automatic: false, DryRun: dryRun})
}

// AutoUpdateEnabled returns the persisted auto-update preference.
func (e *Engine) AutoUpdateEnabled() (bool, error) {
	p, err := prefs.LoadOrNew(e.prefs)
	if err != nil {
		return false, fmt.Errorf("failed to load preferences: %w", err)
	}
	return p.AutoUpdateEnabled(e.opts.SoftwareVersion), nil
}

func (e *Engine) setAutoUpdate(enabled bool) error {
	p, err := prefs.LoadOrNew(e.prefs)
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}
	p.SetAutoUpdate(e.opts.SoftwareVersion, enabled)
	p.UpdatedAt = e.clock.Now()
	if err := e.prefs.Save(p); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
