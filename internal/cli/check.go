package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/pluginsync/internal/engine"
)

var checkDryRun bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the automatic update check",
	Long: `Run the check the host performs at startup.

The check updates when automatic updates are on, or when the enabled plugin no
longer suits the host. It never runs in unattended mode.

With --dry-run, check only reports the catalog state and whether it would run.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "Report whether the check would run without running it")
}

type checkView struct {
	State      string   `json:"state"`
	Enabled    string   `json:"enabled,omitempty"`
	Newest     string   `json:"newest,omitempty"`
	Satisfied  bool     `json:"satisfied"`
	Mismatches []string `json:"mismatches,omitempty"`
	WouldRun   bool     `json:"wouldRun"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if !checkDryRun {
		result, err := a.engine.AutoUpdate(ctx)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		return reportUpdate(cmd, result)
	}

	assessment, err := a.engine.Classify(ctx)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	wouldRun, err := a.engine.ShouldAttemptAuto(ctx)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	view := newCheckView(assessment, wouldRun)
	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), view)
	}

	p := newPrinter(cmd)
	p.Section("Check")
	p.LabelValue("State", view.State)
	if view.Enabled != "" {
		p.LabelValue("Enabled", view.Enabled)
	}
	if view.Newest != "" {
		p.LabelValue("Newest", view.Newest)
	}
	p.LabelValue("Satisfied", fmt.Sprintf("%t", view.Satisfied))
	p.LabelValue("Would run", fmt.Sprintf("%t", view.WouldRun))
	if len(view.Mismatches) > 0 {
		fmt.Fprintln(p.out)
		p.Subsection("Mismatches")
		p.List(view.Mismatches, 1)
	}
	return nil
}

func newCheckView(a *engine.Assessment, wouldRun bool) *checkView {
	v := &checkView{
		State:     a.State.String(),
		Satisfied: a.Satisfied,
		WouldRun:  wouldRun,
	}
	if a.Enabled != nil {
		v.Enabled = a.Enabled.Dir
	}
	if a.Newest != nil {
		v.Newest = a.Newest.Dir
	}
	for _, m := range a.Mismatches {
		v.Mismatches = append(v.Mismatches, m.String())
	}
	return v
}
