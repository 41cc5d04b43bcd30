package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/pluginsync/internal/engine"
)

var updateDryRun bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Enable the newest plugin package",
	Long: `Enable the newest plugin package for every platform the host supports.

The previously enabled package is disabled first. Running update by hand turns
automatic updates back on if they were switched off with "don't ask again".

With --dry-run, update shows the operations it would run without prompting or
changing anything.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Show what would be done without making changes")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	result, err := a.engine.ManualUpdate(cmd.Context(), updateDryRun)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	return reportUpdate(cmd, result)
}

// reportUpdate renders an update result for the update, check and watch
// commands.
func reportUpdate(cmd *cobra.Command, result *engine.UpdateResult) error {
	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), newUpdateView(result))
	}

	p := newPrinter(cmd)
	switch result.Outcome {
	case engine.OutcomeNothingToDo:
		p.EmptyState("No plugin packages found")
	case engine.OutcomeUpToDate:
		p.Success(fmt.Sprintf("Plugin %s is up to date", result.Assessment.Enabled.Dir))
	case engine.OutcomeSkipped:
		p.EmptyState("Automatic updates are off")
	case engine.OutcomeDeclined:
		p.Warning("Update declined")
		if result.DontAskAgain {
			p.Info("Automatic updates are off until you run 'pluginsync update'")
		}
	case engine.OutcomeUpdated, engine.OutcomeReenabled:
		if result.DryRun {
			p.Section("Planned operations")
			printPlan(p, result.Plan)
			fmt.Fprintln(p.out)
			p.Info("Dry run: nothing changed")
			return nil
		}
		verb := "Enabled"
		if result.Outcome == engine.OutcomeReenabled {
			verb = "Re-enabled"
		}
		target := result.Plan.Target
		p.Success(fmt.Sprintf("%s plugin %s (%s backend, %s)",
			verb, target.Version, result.Plan.Backend, countOf(len(result.Applied), "operation", "operations")))
		printRestart(p, result.RestartRequired)
	}
	return nil
}
