// Package engine provides the reconciliation logic behind every pluginsync
// command.
//
// The engine is the orchestration layer between the CLI and the lower-level
// packages. It scans the catalog, derives enablement from the compatibility
// matrix, asks the prompter for consent, and executes plans built by the
// planner.
//
// Key components:
//   - Engine: Main orchestrator, the API surface called by the CLI
//   - Update/AutoUpdate/ManualUpdate: Select and enable the newest package
//   - Disable: Turn every package off
//   - SwitchBackend: Re-point the enabled package between legacy and OpenXR
//   - Status: Report enablement, drift, and preferences
//
// Mutating operations are serialized: a second call blocks until the first
// returns, so plans never interleave.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/pluginsync/internal/catalog"
	"github.com/danieljhkim/pluginsync/internal/clock"
	"github.com/danieljhkim/pluginsync/internal/compat"
	"github.com/danieljhkim/pluginsync/internal/fsops"
	"github.com/danieljhkim/pluginsync/internal/hash"
	"github.com/danieljhkim/pluginsync/internal/importmeta"
	"github.com/danieljhkim/pluginsync/internal/planner"
	"github.com/danieljhkim/pluginsync/internal/prefs"
	"github.com/danieljhkim/pluginsync/internal/prompt"
	"github.com/danieljhkim/pluginsync/internal/telemetry"
)

// Options are the explicit inputs of an Engine.
type Options struct {
	// Layout locates the plugin root and the install root
	Layout catalog.Layout

	// Capabilities describe the host
	Capabilities compat.Capabilities

	// SoftwareVersion keys the auto-update preference
	SoftwareVersion string
}

// Engine orchestrates all pluginsync operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs       fsops.FS
	meta     importmeta.Store
	prompter prompt.Prompter
	sink     telemetry.Sink
	prefs    prefs.Store
	clock    clock.Clock
	hasher   hash.Hasher
	log      zerolog.Logger
	opts     Options

	scanner *catalog.Scanner
	matrix  *compat.Matrix
	builder *planner.Builder

	mu sync.Mutex
}

// New creates a new Engine with the given dependencies.
func New(
	fs fsops.FS,
	meta importmeta.Store,
	prompter prompt.Prompter,
	sink telemetry.Sink,
	prefStore prefs.Store,
	clk clock.Clock,
	hasher hash.Hasher,
	log zerolog.Logger,
	opts Options,
) *Engine {
	matrix := compat.NewMatrix(fs, opts.Layout, meta, log)
	return &Engine{
		fs:       fs,
		meta:     meta,
		prompter: prompter,
		sink:     sink,
		prefs:    prefStore,
		clock:    clk,
		hasher:   hasher,
		log:      log,
		opts:     opts,
		scanner:  catalog.NewScanner(fs, opts.Layout, log),
		matrix:   matrix,
		builder:  planner.NewBuilder(matrix, log),
	}
}

// Options returns the options the engine was built with.
func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) caps() compat.Capabilities {
	return e.opts.Capabilities
}

// notify reports to the telemetry sink without ever failing the caller.
func (e *Engine) notify(ctx context.Context, name, value string) {
	telemetry.Notify(ctx, e.sink, e.log, telemetry.NewEvent(name, value, e.clock.Now()))
}

// execute runs plan operations in order and stops at the first failure. The
// operations that completed are returned either way.
func (e *Engine) execute(ctx context.Context, plan *planner.Plan) ([]planner.Operation, error) {
	applied := []planner.Operation{}
	for _, op := range plan.Operations {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if err := e.executeOperation(op); err != nil {
			return applied, fmt.Errorf("failed to %s %s/%s: %w", op.Type, op.Package, op.Platform, err)
		}
		e.log.Debug().
			Str("op", op.Type).
			Str("package", op.Package).
			Str("platform", op.Platform.String()).
			Msg("operation applied")
		applied = append(applied, op)
	}
	return applied, nil
}

// executeOperation executes a single operation.
func (e *Engine) executeOperation(op planner.Operation) error {
	switch op.Type {
	case planner.OpDisable:
		return e.executeDisable(op)
	case planner.OpInstall:
		return e.executeInstall(op)
	case planner.OpConfigure:
		return e.executeConfigure(op)
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

// executeDisable removes the enabled copy and its metadata.
func (e *Engine) executeDisable(op planner.Operation) error {
	if err := e.fs.RemoveAll(op.DestPath); err != nil {
		return fmt.Errorf("failed to remove enabled copy: %w", err)
	}
	if err := e.fs.Remove(op.MetaPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove import metadata: %w", err)
	}
	return nil
}

// executeInstall copies the catalog artifact to its enabled location.
func (e *Engine) executeInstall(op planner.Operation) error {
	if err := e.fs.MkdirAll(filepath.Dir(op.DestPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	if err := e.fs.RemoveAll(op.DestPath); err != nil {
		return fmt.Errorf("failed to clear destination: %w", err)
	}
	if err := e.fs.Copy(op.SourcePath, op.DestPath); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}
	return nil
}

// executeConfigure writes import metadata, stamping the checksum of the
// enabled copy so later status calls can detect drift.
func (e *Engine) executeConfigure(op planner.Operation) error {
	settings := *op.Settings
	checksum, err := e.hasher.HashPath(op.DestPath)
	if err != nil {
		return fmt.Errorf("failed to hash enabled copy: %w", err)
	}
	settings.SourceChecksum = checksum
	return e.meta.Save(op.MetaPath, &settings)
}

// recordApplied stores the outcome of a successful plan. Failure to persist it
// is logged and otherwise ignored; the filesystem is already reconciled.
func (e *Engine) recordApplied(plan *planner.Plan, automatic bool) {
	p, err := prefs.LoadOrNew(e.prefs)
	if err != nil {
		e.log.Warn().Err(err).Msg("cannot load preferences, last applied plan not recorded")
		return
	}
	now := e.clock.Now()
	applied := &prefs.Applied{
		Package:   plan.Target.Dir,
		Backend:   plan.Backend.String(),
		Automatic: automatic,
		Timestamp: now,
	}
	if plan.Target.Version.Known() {
		applied.Version = plan.Target.Version.String()
	}
	p.LastApplied = applied
	p.UpdatedAt = now
	if err := e.prefs.Save(p); err != nil {
		e.log.Warn().Err(err).Msg("cannot save preferences, last applied plan not recorded")
	}
}
