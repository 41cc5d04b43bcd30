package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/pluginsync/internal/engine"
	"github.com/danieljhkim/pluginsync/internal/platform"
)

var backendDryRun bool

var backendCmd = &cobra.Command{
	Use:   "backend [legacy|openxr]",
	Short: "Show or switch the plugin backend",
	Long: `Show or switch the backend of the enabled plugin package.

Without an argument, backend prints the active backend. With one, it rewrites
the import settings of the enabled package so the requested variant is the one
the host loads.

Examples:
  pluginsync backend
  pluginsync backend openxr
  pluginsync backend legacy --dry-run`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"legacy", "openxr"},
	RunE:      runBackend,
}

func init() {
	backendCmd.Flags().BoolVar(&backendDryRun, "dry-run", false, "Show what would be done without making changes")
}

func runBackend(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if len(args) == 0 {
		active, err := a.engine.OpenXRActive(ctx)
		if err != nil {
			return fmt.Errorf("failed to read backend: %w", err)
		}
		backend := platform.BackendLegacy
		if active {
			backend = platform.BackendOpenXR
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), &backendView{Backend: backend.String(), Applied: []operationView{}})
		}
		newPrinter(cmd).LabelValue("Backend", backend.String())
		return nil
	}

	backend, err := platform.ParseBackend(args[0])
	if err != nil {
		return err
	}

	result, err := a.engine.SwitchBackend(ctx, &engine.SwitchRequest{Backend: backend, DryRun: backendDryRun})
	alreadyActive := errors.Is(err, engine.ErrAlreadyActive)
	if err != nil && !alreadyActive {
		return fmt.Errorf("backend switch failed: %w", err)
	}

	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), &backendView{
			Package:         result.Package,
			Backend:         backend.String(),
			AlreadyActive:   alreadyActive,
			Declined:        result.Declined,
			Plan:            newPlanView(result.Plan),
			Applied:         newOperationViews(result.Applied),
			DryRun:          result.DryRun,
			RestartRequired: result.RestartRequired,
		})
	}

	p := newPrinter(cmd)
	switch {
	case alreadyActive:
		p.Info(fmt.Sprintf("The %s backend is already active", backend))
	case result.Declined:
		p.Warning("Backend switch declined")
	case result.DryRun:
		p.Section("Planned operations")
		printPlan(p, result.Plan)
		fmt.Fprintln(p.out)
		p.Info("Dry run: nothing changed")
	default:
		p.Success(fmt.Sprintf("Switched plugin %s to the %s backend", result.Package, backend))
		printRestart(p, result.RestartRequired)
	}
	return nil
}
