package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/pluginsync/internal/engine"
)

var disableDryRun bool

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable every plugin package",
	Long: `Disable every enabled artifact of every plugin package.

The catalog is left untouched; run update to enable the newest package again.`,
	Args: cobra.NoArgs,
	RunE: runDisable,
}

func init() {
	disableCmd.Flags().BoolVar(&disableDryRun, "dry-run", false, "Show what would be disabled without making changes")
}

func runDisable(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	result, err := a.engine.Disable(cmd.Context(), &engine.DisableRequest{DryRun: disableDryRun})
	if err != nil {
		return fmt.Errorf("disable failed: %w", err)
	}

	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), &disableView{
			AlreadyDisabled: result.AlreadyDisabled,
			Declined:        result.Declined,
			Plan:            newPlanView(result.Plan),
			Applied:         newOperationViews(result.Applied),
			DryRun:          result.DryRun,
			RestartRequired: result.RestartRequired,
		})
	}

	p := newPrinter(cmd)
	switch {
	case result.AlreadyDisabled:
		p.EmptyState("No plugin package is enabled")
	case result.Declined:
		p.Warning("Disable declined")
	case result.DryRun:
		p.Section("Planned operations")
		printPlan(p, result.Plan)
		fmt.Fprintln(p.out)
		p.Info("Dry run: nothing changed")
	default:
		p.Success(fmt.Sprintf("Disabled plugin (%s)", countOf(len(result.Applied), "operation", "operations")))
		printRestart(p, result.RestartRequired)
	}
	return nil
}
