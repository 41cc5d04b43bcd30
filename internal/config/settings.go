package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable pluginsync reads.
const EnvPrefix = "PLUGINSYNC"

// ConfigName is the config file searched for in the working directory.
const ConfigName = "pluginsync"

// ErrInvalidSettings is returned when loaded settings cannot be used.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the resolved configuration.
type Settings struct {
	// PluginRoot holds one directory per plugin package
	PluginRoot string

	// InstallRoot receives enabled copies
	InstallRoot string

	// StateDir overrides the state directory from Paths
	StateDir string

	// SoftwareVersion keys the auto-update preference
	SoftwareVersion string

	// Unattended bypasses prompts
	Unattended bool

	// Host describes what the host environment supports
	Host HostSettings

	// LogLevel and LogFormat configure the logger
	LogLevel  string
	LogFormat string

	// WatchDebounce is the quiet period before the watcher reconciles
	WatchDebounce time.Duration

	// ConfigFile is the config file that was read, if any
	ConfigFile string
}

// HostSettings are the host capability flags.
type HostSettings struct {
	AndroidUniversal bool
	OpenXR           bool
}

// LoadOptions controls where settings are read from.
type LoadOptions struct {
	// ConfigFile is an explicit config file; empty searches Dir
	ConfigFile string

	// Dir is searched for pluginsync.yaml and .env files (default ".")
	Dir string

	// Flags are bound over every other source when set
	Flags *pflag.FlagSet
}

// flagKeys maps command-line flags to settings keys.
var flagKeys = map[string]string{
	"plugin-root":       "plugin_root",
	"install-root":      "install_root",
	"state-dir":         "state_dir",
	"unattended":        "unattended",
	"log-level":         "log.level",
	"log-format":        "log.format",
	"android-universal": "host.android_universal",
	"openxr":            "host.openxr",
}

// Load resolves settings from every source.
func Load(opts LoadOptions) (*Settings, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	loadEnvFiles(dir)

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if opts.Flags != nil {
		for flag, key := range flagKeys {
			if f := opts.Flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	s := &Settings{
		PluginRoot:      v.GetString("plugin_root"),
		InstallRoot:     v.GetString("install_root"),
		StateDir:        v.GetString("state_dir"),
		SoftwareVersion: v.GetString("software_version"),
		Unattended:      v.GetBool("unattended"),
		Host: HostSettings{
			AndroidUniversal: v.GetBool("host.android_universal"),
			OpenXR:           v.GetBool("host.openxr"),
		},
		LogLevel:      v.GetString("log.level"),
		LogFormat:     v.GetString("log.format"),
		WatchDebounce: v.GetDuration("watch.debounce"),
		ConfigFile:    v.ConfigFileUsed(),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("plugin_root", "plugins")
	v.SetDefault("install_root", "enabled")
	v.SetDefault("state_dir", "")
	v.SetDefault("software_version", "")
	v.SetDefault("unattended", false)
	v.SetDefault("host.android_universal", true)
	v.SetDefault("host.openxr", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "auto")
	v.SetDefault("watch.debounce", 500*time.Millisecond)
}

// loadEnvFiles loads .env then .env.local; missing files are ignored and
// variables already set in the environment win.
func loadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		_ = godotenv.Load(filepath.Join(dir, name))
	}
}

// Validate checks the settings are usable.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.PluginRoot) == "" {
		return fmt.Errorf("%w: plugin_root is required", ErrInvalidSettings)
	}
	if strings.TrimSpace(s.InstallRoot) == "" {
		return fmt.Errorf("%w: install_root is required", ErrInvalidSettings)
	}
	if filepath.Clean(s.PluginRoot) == filepath.Clean(s.InstallRoot) {
		return fmt.Errorf("%w: plugin_root and install_root must differ", ErrInvalidSettings)
	}
	if within(s.PluginRoot, s.InstallRoot) {
		return fmt.Errorf("%w: install_root must not be inside plugin_root", ErrInvalidSettings)
	}
	if s.WatchDebounce < 0 {
		return fmt.Errorf("%w: watch.debounce must not be negative", ErrInvalidSettings)
	}
	return nil
}

// within reports whether path lies under root. Paths that cannot be made
// absolute are compared as given.
func within(root, path string) bool {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Paths resolves the state paths, honoring StateDir.
func (s *Settings) Paths() (*Paths, error) {
	if s.StateDir != "" {
		return PathsAt(s.StateDir), nil
	}
	return DefaultPaths()
}
