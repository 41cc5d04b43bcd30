package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/pluginsync/internal/planner"
)

// Disable turns off every artifact of every package. Nothing is asked or
// changed when no package is enabled.
func (e *Engine) Disable(ctx context.Context, req *DisableRequest) (*DisableResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.classify()
	if err != nil {
		return nil, err
	}
	result := &DisableResult{
		Applied: []planner.Operation{},
		DryRun:  req.DryRun,
	}

	if a.Enabled == nil {
		result.AlreadyDisabled = true
		return result, nil
	}

	plan := planner.NewPlan()
	e.builder.BuildDisableAll(plan, a.Packages)
	result.Plan = plan

	if req.DryRun {
		return result, nil
	}

	if !e.caps().Unattended {
		ok, err := e.prompter.Confirm(ctx, "Disable plugin",
			fmt.Sprintf("Disable plugin %s? The host must restart before it stops loading the plugin.", a.Enabled.Version))
		if err != nil {
			return nil, fmt.Errorf("failed to confirm disable: %w", err)
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

	e.log.Info().Int("disabled", plan.Count(planner.OpDisable)).Msg("all plugin packages disabled")
	result.RestartRequired = true
	return result, nil
}
