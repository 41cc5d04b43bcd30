package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/clock"
	"github.com/danieljhkim/pluginsync/internal/compat"
	"github.com/danieljhkim/pluginsync/internal/config"
	"github.com/danieljhkim/pluginsync/internal/engine"
	"github.com/danieljhkim/pluginsync/internal/fsops"
	"github.com/danieljhkim/pluginsync/internal/hash"
	"github.com/danieljhkim/pluginsync/internal/importmeta"
	"github.com/danieljhkim/pluginsync/internal/logging"
	"github.com/danieljhkim/pluginsync/internal/prefs"
	"github.com/danieljhkim/pluginsync/internal/prompt"
	"github.com/danieljhkim/pluginsync/internal/telemetry"
)

// app bundles what a command needs: the engine and the pieces it was built from.
type app struct {
	settings *config.Settings
	paths    *config.Paths
	engine   *engine.Engine
	prefs    prefs.Store
	log      zerolog.Logger
}

// newApp loads settings for cmd and creates an engine with real
// implementations of all dependencies.
func newApp(cmd *cobra.Command) (*app, error) {
	settings, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = settings.LogLevel
	logCfg.Format = settings.LogFormat
	log := logging.New(logCfg)
	logging.SetDefault(log)

	paths, err := settings.Paths()
	if err != nil {
		return nil, fmt.Errorf("failed to get state paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	fs := fsops.NewRealFS()
	prefStore := prefs.NewFileStore(fs, paths.Root)
	sink := telemetry.Multi{
		telemetry.NewLogSink(log),
		telemetry.NewFileSink(fs, paths.Root),
	}

	opts := engine.Options{
		Layout: catalog.Layout{
			PluginRoot:  settings.PluginRoot,
			InstallRoot: settings.InstallRoot,
		},
		Capabilities: compat.Capabilities{
			Unattended:       settings.Unattended,
			AndroidUniversal: settings.Host.AndroidUniversal,
			OpenXR:           settings.Host.OpenXR,
		},
		SoftwareVersion: settings.SoftwareVersion,
	}

	eng := engine.New(
		fs,
		importmeta.NewFileStore(fs),
		newPrompter(settings.Unattended),
		sink,
		prefStore,
		&clock.RealClock{},
		hash.NewSHA256Hasher(),
		log,
		opts,
	)

	log.Debug().
		Str("plugin_root", settings.PluginRoot).
		Str("install_root", settings.InstallRoot).
		Str("state_dir", paths.Root).
		Str("config", settings.ConfigFile).
		Msg("settings loaded")

	return &app{
		settings: settings,
		paths:    paths,
		engine:   eng,
		prefs:    prefStore,
		log:      log,
	}, nil
}

// newPrompter returns huh forms on a terminal. Without a terminal the forms
// fall back to accessible line prompts.
func newPrompter(unattended bool) prompt.Prompter {
	if unattended {
		return prompt.Unattended{}
	}
	accessible := !isatty.IsTerminal(os.Stdin.Fd()) || os.Getenv("ACCESSIBLE") != ""
	return prompt.NewTerminal(os.Stdin, os.Stderr, accessible)
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
