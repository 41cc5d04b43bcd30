package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show plugin packages and their enablement",
	Long: `Show every plugin package in the catalog, which one is enabled and how
each platform artifact is configured.

Enabled copies that changed since they were configured are flagged as drifted.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	result, err := a.engine.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), result)
	}

	p := newPrinter(cmd)
	p.Section("Plugin Status")
	p.LabelValue("Plugin root", a.settings.PluginRoot)
	p.LabelValue("Install root", a.settings.InstallRoot)
	p.LabelValue("State", result.State)
	if result.Enabled != "" {
		p.LabelValue("Enabled", result.Enabled)
		p.LabelValue("Backend", result.Backend)
	}
	autoUpdate := "on"
	if !result.AutoUpdate {
		autoUpdate = "off"
	}
	p.LabelValue("Automatic updates", autoUpdate)
	if result.LastApplied != nil {
		last := result.LastApplied
		p.LabelValue("Last applied", fmt.Sprintf("%s (%s backend) at %s",
			last.Package, last.Backend, last.Timestamp.Local().Format(time.RFC3339)))
	}

	p.Section(fmt.Sprintf("Packages (%d)", len(result.Packages)))
	if len(result.Packages) == 0 {
		p.EmptyState("No plugin packages found")
		return nil
	}

	rows := make([][]string, 0, len(result.Packages))
	for _, pkg := range result.Packages {
		var marks []string
		if pkg.Enabled {
			marks = append(marks, "enabled")
		}
		if pkg.Newest {
			marks = append(marks, "newest")
		}
		var on []string
		for _, pl := range pkg.Platforms {
			if pl.State != "enabled" {
				continue
			}
			if pl.Drift {
				on = append(on, pl.Platform+"*")
			} else {
				on = append(on, pl.Platform)
			}
		}
		rows = append(rows, []string{pkg.Dir, pkg.Version, strings.Join(marks, ","), strings.Join(on, " ")})
	}
	p.Table([]string{"PACKAGE", "VERSION", "FLAGS", "ENABLED PLATFORMS"}, rows)

	if len(result.Mismatches) > 0 {
		fmt.Fprintln(p.out)
		p.Warning("Enabled artifacts do not suit the host")
		p.List(result.Mismatches, 1)
	}
	if len(result.Violations) > 0 {
		fmt.Fprintln(p.out)
		p.Warning("More than one variant is enabled in an exclusive group")
		for _, v := range result.Violations {
			p.List([]string{fmt.Sprintf("%s/%s: %s", v.Package, v.Group, strings.Join(v.Enabled, ", "))}, 1)
		}
	}
	for _, pkg := range result.Packages {
		for _, pl := range pkg.Platforms {
			if pl.Drift {
				fmt.Fprintln(p.out)
				p.Info("* enabled copy changed since it was configured; run 'pluginsync update' to restore it")
				return nil
			}
		}
	}
	return nil
}
