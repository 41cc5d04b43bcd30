package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/pluginsync/internal/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or reset persisted preferences",
	Long: `Show or reset the preferences pluginsync keeps in its state directory.

Automatic updates are tracked per host software version, so upgrading the host
asks again even after "don't ask again".`,
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show persisted preferences",
	Args:  cobra.NoArgs,
	RunE:  runPrefsShow,
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete persisted preferences",
	Args:  cobra.NoArgs,
	RunE:  runPrefsReset,
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsResetCmd)
}

type prefsView struct {
	Path            string          `json:"path"`
	SoftwareVersion string          `json:"softwareVersion"`
	AutoUpdate      bool            `json:"autoUpdate"`
	Stored          map[string]bool `json:"stored"`
	LastApplied     *prefs.Applied  `json:"lastApplied,omitempty"`
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	doc, err := prefs.LoadOrNew(a.prefs)
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	view := &prefsView{
		Path:            a.paths.Prefs,
		SoftwareVersion: a.settings.SoftwareVersion,
		AutoUpdate:      doc.AutoUpdateEnabled(a.settings.SoftwareVersion),
		Stored:          doc.AutoUpdate,
		LastApplied:     doc.LastApplied,
	}
	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), view)
	}

	p := newPrinter(cmd)
	p.Section("Preferences")
	p.LabelValue("File", view.Path)
	p.LabelValue("Software version", view.SoftwareVersion)
	p.LabelValue("Automatic updates", fmt.Sprintf("%t", view.AutoUpdate))
	if view.LastApplied != nil {
		p.LabelValue("Last applied", fmt.Sprintf("%s (%s backend)", view.LastApplied.Package, view.LastApplied.Backend))
	}
	if len(view.Stored) > 0 {
		fmt.Fprintln(p.out)
		p.Subsection("Stored keys")
		items := make([]string, 0, len(view.Stored))
		for key, on := range view.Stored {
			items = append(items, fmt.Sprintf("%s = %t", key, on))
		}
		sort.Strings(items)
		p.List(items, 1)
	}
	return nil
}

func runPrefsReset(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if err := a.prefs.Reset(); err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), map[string]bool{"reset": true})
	}
	newPrinter(cmd).Success("Preferences reset")
	return nil
}
