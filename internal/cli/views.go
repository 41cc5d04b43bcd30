package cli

import (
	"fmt"

	"github.com/danieljhkim/pluginsync/internal/engine"
	"github.com/danieljhkim/pluginsync/internal/planner"
)

// planView is the JSON rendering of a plan.
type planView struct {
	Target     string          `json:"target,omitempty"`
	Version    string          `json:"version,omitempty"`
	Backend    string          `json:"backend"`
	Reenable   bool            `json:"reenable,omitempty"`
	Operations []operationView `json:"operations"`
	Skipped    []skipView      `json:"skipped,omitempty"`
}

type operationView struct {
	Type     string `json:"type"`
	Package  string `json:"package"`
	Platform string `json:"platform"`
	Source   string `json:"source,omitempty"`
	Dest     string `json:"dest,omitempty"`
}

type skipView struct {
	Package  string `json:"package"`
	Platform string `json:"platform"`
	Reason   string `json:"reason"`
}

type updateView struct {
	Outcome         string          `json:"outcome"`
	State           string          `json:"state,omitempty"`
	Enabled         string          `json:"enabled,omitempty"`
	Newest          string          `json:"newest,omitempty"`
	Plan            *planView       `json:"plan,omitempty"`
	Applied         []operationView `json:"applied"`
	DryRun          bool            `json:"dryRun"`
	DontAskAgain    bool            `json:"dontAskAgain,omitempty"`
	RestartRequired bool            `json:"restartRequired"`
}

type disableView struct {
	AlreadyDisabled bool            `json:"alreadyDisabled"`
	Declined        bool            `json:"declined,omitempty"`
	Plan            *planView       `json:"plan,omitempty"`
	Applied         []operationView `json:"applied"`
	DryRun          bool            `json:"dryRun"`
	RestartRequired bool            `json:"restartRequired"`
}

type backendView struct {
	Package         string          `json:"package,omitempty"`
	Backend         string          `json:"backend"`
	AlreadyActive   bool            `json:"alreadyActive,omitempty"`
	Declined        bool            `json:"declined,omitempty"`
	Plan            *planView       `json:"plan,omitempty"`
	Applied         []operationView `json:"applied"`
	DryRun          bool            `json:"dryRun"`
	RestartRequired bool            `json:"restartRequired"`
}

func newPlanView(plan *planner.Plan) *planView {
	if plan == nil {
		return nil
	}
	v := &planView{
		Backend:    plan.Backend.String(),
		Reenable:   plan.Reenable,
		Operations: newOperationViews(plan.Operations),
	}
	if plan.Target != nil {
		v.Target = plan.Target.Dir
		v.Version = plan.Target.Version.String()
	}
	for _, s := range plan.Skipped {
		v.Skipped = append(v.Skipped, skipView{
			Package:  s.Package,
			Platform: s.Platform.String(),
			Reason:   s.Reason,
		})
	}
	return v
}

func newOperationViews(ops []planner.Operation) []operationView {
	out := make([]operationView, 0, len(ops))
	for _, op := range ops {
		out = append(out, operationView{
			Type:     op.Type,
			Package:  op.Package,
			Platform: op.Platform.String(),
			Source:   op.SourcePath,
			Dest:     op.DestPath,
		})
	}
	return out
}

func newUpdateView(result *engine.UpdateResult) *updateView {
	v := &updateView{
		Outcome:         string(result.Outcome),
		Plan:            newPlanView(result.Plan),
		Applied:         newOperationViews(result.Applied),
		DryRun:          result.DryRun,
		DontAskAgain:    result.DontAskAgain,
		RestartRequired: result.RestartRequired,
	}
	if a := result.Assessment; a != nil {
		v.State = a.State.String()
		if a.Enabled != nil {
			v.Enabled = a.Enabled.Dir
		}
		if a.Newest != nil {
			v.Newest = a.Newest.Dir
		}
	}
	return v
}

// printPlan prints a plan's operations and skipped artifacts.
func printPlan(p *printer, plan *planner.Plan) {
	if plan == nil {
		return
	}
	if plan.IsEmpty() {
		p.EmptyState("No changes needed")
		return
	}

	rows := make([][]string, 0, len(plan.Operations))
	for _, op := range plan.Operations {
		rows = append(rows, []string{op.Type, op.Package, op.Platform.String()})
	}
	p.Table([]string{"OPERATION", "PACKAGE", "PLATFORM"}, rows)

	if len(plan.Skipped) > 0 {
		fmt.Fprintln(p.out)
		p.Subsection("Skipped")
		items := make([]string, 0, len(plan.Skipped))
		for _, s := range plan.Skipped {
			items = append(items, fmt.Sprintf("%s/%s: %s", s.Package, s.Platform, s.Reason))
		}
		p.List(items, 1)
	}
}

// printRestart tells the operator the host must restart to load the change.
func printRestart(p *printer, required bool) {
	if required {
		p.Warning("Restart the host application to load the plugin change")
	}
}
