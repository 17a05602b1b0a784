// Package pargo decides, for one invocation, whether to delegate to cargo or
// to run the project's script, and rebuilds the script first when its nested
// cargo project is stale.
package pargo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pargo/cargo-pargo/internal/cargo"
	"github.com/pargo/cargo-pargo/internal/errs"
	"github.com/pargo/cargo-pargo/internal/fsutil"
	"github.com/pargo/cargo-pargo/internal/layout"
	"github.com/pargo/cargo-pargo/internal/manifest"
	"github.com/pargo/cargo-pargo/internal/root"
	"github.com/pargo/cargo-pargo/internal/staleness"
)

// RunFunc spawns the compiled script and returns its exit code
type RunFunc func(ctx context.Context, path, dir string, args []string) (int, error)

// Engine orchestrates detection, rebuild and execution
type Engine struct {
	cargo  cargo.Tool
	run    RunFunc
	logger *slog.Logger
	dryRun bool
}

// NewEngine creates a new engine
func NewEngine(tool cargo.Tool, logger *slog.Logger, dryRun bool) *Engine {
	return &Engine{
		cargo:  tool,
		run:    cargo.RunArtifact,
		logger: logger,
		dryRun: dryRun,
	}
}

// WithRunner replaces the function that spawns the compiled script
func (e *Engine) WithRunner(run RunFunc) *Engine {
	e.run = run
	return e
}

// Run handles one invocation started in workdir with args (argument 0
// already stripped) and returns the exit code the wrapper should exit with.
func (e *Engine) Run(ctx context.Context, workdir string, args []string) (int, error) {
	plan, err := e.Plan(workdir)
	if err != nil {
		return 1, err
	}

	if plan.Delegate {
		if e.dryRun {
			e.logger.Info("[dry-run] would delegate to cargo", "root", plan.Root, "args", args)
			return 0, nil
		}
		e.logger.Debug("no Pargo.toml found, delegating to cargo", "root", plan.Root)
		return e.cargo.Forward(ctx, plan.Root, args)
	}

	if e.dryRun {
		e.logPlanDetails(plan)
		e.logger.Info("dry-run complete, nothing built or run")
		return 0, nil
	}

	l := layout.New(plan.Root)

	if plan.NeedsInit {
		e.logger.Info("initializing pargo", "dir", l.ContextDir())
		if err := e.initialize(ctx, l); err != nil {
			return 1, err
		}
		// the fresh project gets checked like any other
		if err := e.check(l, plan); err != nil {
			return 1, err
		}
	}

	if plan.ScriptStale {
		e.logger.Info("script changed", "script", plan.Script)
		if err := fsutil.CopyFile(l.Script(plan.Script), l.ScriptCopy()); err != nil {
			return 1, fmt.Errorf("failed to copy script: %w", err)
		}
	}

	if plan.ManifestStale {
		e.logger.Info("manifest changed", "manifest", l.Manifest())
		if err := syncDescription(l); err != nil {
			return 1, fmt.Errorf("failed to update %s: %w", layout.DescriptionFile, err)
		}
	}

	if plan.ShouldCompile() {
		e.logger.Info("compiling pargo script", "dir", l.ContextDir())
		if err := e.cargo.Build(ctx, l.ContextDir()); err != nil {
			return 1, fmt.Errorf("failed to compile script: %w", err)
		}
	}

	e.logger.Info("running pargo script", "artifact", l.Artifact())
	return e.run(ctx, l.Artifact(), plan.Root, args)
}

// Plan locates the project root and works out what Run would do there. It
// only reads the filesystem.
func (e *Engine) Plan(workdir string) (*Plan, error) {
	dir, err := root.Locate(workdir)
	if err != nil {
		return nil, fmt.Errorf("failed to locate project root: %w", err)
	}
	l := layout.New(dir)
	plan := &Plan{Root: dir}

	isProject, err := l.HasManifest()
	if err != nil {
		return nil, err
	}
	if !isProject {
		plan.Delegate = true
		return plan, nil
	}

	project, err := manifest.LoadProject(l.Manifest())
	if err != nil {
		return nil, err
	}
	plan.Script = project.ScriptPath()

	initialized, err := l.Initialized()
	if err != nil {
		return nil, err
	}
	if !initialized {
		plan.NeedsInit = true
		plan.ScriptStale = true
		plan.ManifestStale = true
		plan.NoArtifact = true
		return plan, nil
	}

	if err := e.check(l, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// check runs both staleness checks; neither is skipped when the other fires.
func (e *Engine) check(l layout.Layout, plan *Plan) error {
	d := staleness.NewDetector(l)

	scriptStale, err := d.ScriptStale(plan.Script)
	if errors.Is(err, staleness.ErrMissingCopy) {
		scriptStale, err = true, nil
	}
	if err != nil {
		return fmt.Errorf("failed to check script: %w", err)
	}

	manifestStale, err := d.ManifestStale()
	if err != nil {
		return fmt.Errorf("failed to check dependencies: %w", err)
	}

	noArtifact := false
	if _, err := os.Stat(l.Artifact()); err != nil {
		noArtifact = true
	}

	plan.ScriptStale = scriptStale
	plan.ManifestStale = manifestStale
	plan.NoArtifact = noArtifact
	return nil
}

// initialize scaffolds the nested cargo project below .pargo
func (e *Engine) initialize(ctx context.Context, l layout.Layout) error {
	if err := os.MkdirAll(l.StateDir(), 0755); err != nil {
		return errs.IO("mkdir", l.StateDir(), err)
	}
	if err := e.cargo.Init(ctx, l.StateDir(), layout.ContextName); err != nil {
		return fmt.Errorf("failed to initialize nested project: %w", err)
	}
	return nil
}

// syncDescription writes the rewritten dependencies of Pargo.toml into the
// nested Cargo.toml, keeping every other field.
func syncDescription(l layout.Layout) error {
	project, err := manifest.LoadProject(l.Manifest())
	if err != nil {
		return err
	}

	desc, err := manifest.LoadDescription(l.Description())
	if err != nil {
		return err
	}

	merged := manifest.Merge(desc, manifest.Rewrite(project.Dependencies))
	return manifest.SaveDescription(l.Description(), merged)
}

// logPlanDetails logs the plan for dry-run
func (e *Engine) logPlanDetails(plan *Plan) {
	e.logger.Info("[dry-run] plan",
		"root", plan.Root,
		"script", plan.Script,
		"needs_init", plan.NeedsInit,
		"script_stale", plan.ScriptStale,
		"manifest_stale", plan.ManifestStale,
		"no_artifact", plan.NoArtifact)
	if plan.ShouldCompile() {
		e.logger.Info("[dry-run] would compile", "dir", layout.New(plan.Root).ContextDir())
	}
	e.logger.Info("[dry-run] would run", "artifact", layout.New(plan.Root).Artifact())
}
