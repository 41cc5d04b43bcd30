package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/pluginsync/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the automatic update check whenever the catalog changes",
	Long: `Watch the plugin root and run the automatic update check after every
change, once the catalog has been quiet for the debounce window.

The check also runs once at startup. Stop watching with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(watch.Config{
		Root:       a.settings.PluginRoot,
		Debounce:   a.settings.WatchDebounce,
		RunOnStart: true,
		Logger:     a.log,
		OnChange: func(ctx context.Context, changed []string) error {
			if len(changed) > 0 {
				a.log.Info().Strs("changed", changed).Msg("catalog changed")
			}
			result, err := a.engine.AutoUpdate(ctx)
			if err != nil {
				newPrinter(cmd).Error(err.Error())
				return err
			}
			return reportUpdate(cmd, result)
		},
	})
	if err != nil {
		if errors.Is(err, watch.ErrRootMissing) {
			return fmt.Errorf("plugin root %s does not exist", a.settings.PluginRoot)
		}
		return err
	}

	if !jsonOutput {
		newPrinter(cmd).Info(fmt.Sprintf("Watching %s", w.Root()))
	}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
