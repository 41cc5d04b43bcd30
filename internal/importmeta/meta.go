// Package importmeta reads and writes the import metadata sidecar that sits next
// to every installed plugin artifact.
//
// The sidecar is a small YAML document recording which build targets the
// artifact is compatible with, whether the host process may load it, and
// per-target CPU/OS settings. An installed artifact with a missing or corrupt
// sidecar is treated as compatible with nothing.
package importmeta

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/danieljhkim/pluginsync/internal/fsops"
	"github.com/danieljhkim/pluginsync/internal/platform"
)

// Suffix is appended to an installed artifact path to form its sidecar path.
const Suffix = ".meta"

// Settings is the import metadata for one installed artifact.
type Settings struct {
	Platform       string           `yaml:"platform"`
	Version        string           `yaml:"version,omitempty"`
	Compatible     Compatibility    `yaml:"compatible"`
	HostData       CPUOS            `yaml:"host_data,omitempty"`
	TargetData     map[string]CPUOS `yaml:"target_data,omitempty"`
	SourceChecksum string           `yaml:"source_checksum,omitempty"`
}

// Compatibility lists where the artifact may be loaded.
type Compatibility struct {
	Host        bool            `yaml:"host"`
	AnyPlatform bool            `yaml:"any_platform"`
	Targets     map[string]bool `yaml:"targets,omitempty"`
}

// CPUOS is an architecture/OS pair.
type CPUOS struct {
	CPU string `yaml:"cpu,omitempty"`
	OS  string `yaml:"os,omitempty"`
}

// New returns settings for p that are compatible with nothing.
func New(p platform.Platform) *Settings {
	s := &Settings{Platform: p.String()}
	s.Reset()
	return s
}

// Reset clears every compatibility flag and per-target setting.
func (s *Settings) Reset() {
	s.Compatible = Compatibility{Targets: make(map[string]bool)}
	for _, t := range platform.Targets() {
		s.Compatible.Targets[string(t)] = false
	}
	s.HostData = CPUOS{}
	s.TargetData = nil
}

// SetTarget marks the artifact (in)compatible with target.
func (s *Settings) SetTarget(target platform.BuildTarget, enabled bool) {
	if s.Compatible.Targets == nil {
		s.Compatible.Targets = make(map[string]bool)
	}
	s.Compatible.Targets[string(target)] = enabled
}

// SetHost marks the artifact loadable by the host process and records its CPU/OS.
func (s *Settings) SetHost(enabled bool, cpu, osName string) {
	s.Compatible.Host = enabled
	if enabled {
		s.HostData = CPUOS{CPU: cpu, OS: osName}
	} else {
		s.HostData = CPUOS{}
	}
}

// SetTargetData records CPU/OS settings for a build target.
func (s *Settings) SetTargetData(target platform.BuildTarget, data CPUOS) {
	if s.TargetData == nil {
		s.TargetData = make(map[string]CPUOS)
	}
	s.TargetData[string(target)] = data
}

// CompatibleWith reports whether the artifact is imported for target.
func (s *Settings) CompatibleWith(target platform.BuildTarget) bool {
	if s == nil {
		return false
	}
	return s.Compatible.AnyPlatform || s.Compatible.Targets[string(target)]
}

// CompatibleWithHost reports whether the host process may load the artifact.
func (s *Settings) CompatibleWithHost() bool {
	return s != nil && s.Compatible.Host
}

// Store persists Settings through fsops.
type Store interface {
	// Load reads the sidecar at path. Returns os.ErrNotExist when absent.
	Load(path string) (*Settings, error)

	// Save writes the sidecar at path atomically.
	Save(path string, s *Settings) error
}

// FileStore implements Store with YAML files.
type FileStore struct {
	fs fsops.FS
}

// NewFileStore creates a FileStore.
func NewFileStore(fs fsops.FS) *FileStore {
	return &FileStore{fs: fs}
}

// Load reads and decodes the sidecar at path.
func (s *FileStore) Load(path string) (*Settings, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read import metadata: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode import metadata %s: %w", path, err)
	}
	return &settings, nil
}

// Save encodes and writes the sidecar at path.
func (s *FileStore) Save(path string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode import metadata: %w", err)
	}
	if err := s.fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write import metadata: %w", err)
	}
	return nil
}
