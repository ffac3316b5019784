// Package reconcile drives a pass from a desired manifest to an installed
// system: snapshot, tap sync, per-kind classification and execution,
// implied uninstall and cleanup.
package reconcile

import (
	"context"

	"github.com/arthur-debert/shard/pkg/brew"
	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/inventory"
	"github.com/arthur-debert/shard/pkg/logging"
	"github.com/arthur-debert/shard/pkg/processor"
	"github.com/arthur-debert/shard/pkg/types"
	"github.com/rs/zerolog"
)

// Request describes one pass
type Request struct {
	// Target is the shard name or "all", for reporting
	Target   string
	Manifest *types.Manifest
	// AdditiveOnly disables implied uninstall. Single-shard passes are
	// always additive.
	AdditiveOnly bool
	SkipCleanup  bool
}

// Options configures a Driver
type Options struct {
	Actuator brew.Actuator
	Logger   zerolog.Logger
	// CriticalPackages extends the built-in never-uninstall list
	CriticalPackages []string
	// UninstallCasks extends implied uninstall to casks
	UninstallCasks bool
	PruneAll       bool
}

// Driver runs reconciliation passes
type Driver struct {
	actuator       brew.Actuator
	logger         zerolog.Logger
	critical       types.StringSet
	uninstallCasks bool
	pruneAll       bool
}

// New creates a Driver
func New(opts Options) *Driver {
	critical := types.NewStringSet(criticalPackages...)
	for _, p := range opts.CriticalPackages {
		critical.Add(p)
	}
	return &Driver{
		actuator:       opts.Actuator,
		logger:         logging.Component(opts.Logger, "reconcile"),
		critical:       critical,
		uninstallCasks: opts.UninstallCasks,
		pruneAll:       opts.PruneAll,
	}
}

// Result is the outcome of Apply
type Result struct {
	RunID    string                    `json:"run_id" yaml:"run_id"`
	Plan     *types.ReconciliationPlan `json:"plan" yaml:"plan"`
	Failures []errors.ItemError        `json:"-" yaml:"-"`
}

// Err summarizes every failure of the pass, or returns nil
func (r *Result) Err() error {
	if err := errors.Summarize(errors.ErrActuator, "operations", r.Failures); err != nil {
		return err
	}
	return nil
}

// Succeeded is the number of planned operations that did not fail
func (r *Result) Succeeded() int {
	n := r.Plan.Count() - len(r.Failures)
	if r.Plan.Cleanup {
		n++
	}
	if n < 0 {
		return 0
	}
	return n
}

// Apply reconciles the system to req.Manifest. Errors returned directly
// mean the pass aborted before changing anything; per-operation failures
// are collected in the result.
func (d *Driver) Apply(ctx context.Context, req Request) (*Result, error) {
	logger, runID := logging.WithRun(d.logger)
	plan, failures, err := d.run(ctx, req, actuatorSink{actuator: d.actuator, logger: logger}, logger)
	if err != nil {
		return nil, err
	}
	return &Result{RunID: runID, Plan: plan, Failures: failures}, nil
}

// Diff reports what Apply would do without doing any of it
func (d *Driver) Diff(ctx context.Context, req Request) (*types.ReconciliationPlan, error) {
	logger, _ := logging.WithRun(d.logger)
	plan, _, err := d.run(ctx, req, reportSink{logger: logger}, logger)
	return plan, err
}

func (d *Driver) run(ctx context.Context, req Request, out sink, logger zerolog.Logger) (*types.ReconciliationPlan, []errors.ItemError, error) {
	logger = logger.With().Str("target", req.Target).Bool("additive_only", req.AdditiveOnly).Logger()
	defer logging.LogOperationStart(logger, "reconcile")()

	m := req.Manifest
	if m == nil {
		m = types.NewManifest(req.Target)
	}
	plan := &types.ReconciliationPlan{Target: req.Target, AdditiveOnly: req.AdditiveOnly}
	var failures []errors.ItemError

	stage := func(s Stage) {
		logger.Debug().Str("stage", string(s)).Msg("Reconciliation stage")
	}

	stage(StageValidate)
	if err := validate(m); err != nil {
		return nil, nil, err
	}

	stage(StageSnapshot)
	inv, err := inventory.Snapshot(ctx, d.actuator, logger)
	if err != nil {
		return nil, nil, err
	}

	stage(StageSyncTaps)
	for _, tap := range m.TapNames() {
		if inv.Taps.Has(tap) {
			continue
		}
		plan.TapsToAdd = append(plan.TapsToAdd, tap)
		if err := out.addTap(ctx, tap); err != nil {
			logger.Error().Err(err).Str("tap", tap).Msg("Failed to add tap")
			failures = append(failures, errors.ItemError{Item: tap, Op: "tap", Err: err})
		}
	}

	for _, kind := range types.Kinds {
		classify, execute := StageClassifyFormulae, StageExecuteFormulae
		if kind == types.Cask {
			classify, execute = StageClassifyCasks, StageExecuteCasks
		}

		stage(classify)
		ops := processor.Classify(m.Declarations(kind), inv, kind)
		*plan.Ops(kind) = ops

		stage(execute)
		failures = append(failures, out.execute(ctx, kind, ops, inv)...)
	}

	stage(StageImpliedUninstall)
	if !req.AdditiveOnly {
		for _, kind := range types.Kinds {
			implied := d.impliedUninstall(m, inv, kind, plan.Ops(kind))
			if len(implied) == 0 {
				continue
			}
			logger.Info().Str("kind", string(kind)).Strs("packages", implied).Msg("Packages no longer declared by any shard")
			plan.Ops(kind).ToUninstall = append(plan.Ops(kind).ToUninstall, implied...)
			failures = append(failures, out.execute(ctx, kind, types.PackageOps{ToUninstall: implied}, inv)...)
		}
	}

	stage(StageCleanup)
	if !req.SkipCleanup {
		plan.Cleanup = true
		if err := out.cleanup(ctx, d.pruneAll); err != nil {
			logger.Error().Err(err).Msg("Cleanup failed")
			failures = append(failures, errors.ItemError{Item: "brew", Op: "cleanup", Err: err})
		}
	}

	stage(StageDone)
	logger.Info().
		Int("operations", plan.Count()).
		Int("failures", len(failures)).
		Msg("Reconciliation finished")

	return plan, failures, nil
}

// impliedUninstall returns installed packages of kind that no manifest
// declares. Dependency formulae, critical packages and names already
// planned for removal are excluded.
func (d *Driver) impliedUninstall(m *types.Manifest, inv *types.Inventory, kind types.PackageKind, planned *types.PackageOps) []string {
	var candidates types.StringSet
	switch kind {
	case types.Formula:
		candidates = inv.MainFormulae()
	case types.Cask:
		if !d.uninstallCasks {
			return nil
		}
		candidates = inv.Casks.Clone()
	}

	for _, decl := range m.Declarations(kind) {
		candidates.Remove(decl.Name)
	}
	for _, name := range planned.ToUninstall {
		candidates.Remove(name)
	}
	if kind == types.Formula {
		for name := range d.critical {
			candidates.Remove(name)
		}
	}
	return candidates.Sorted()
}

func validate(m *types.Manifest) error {
	for _, tap := range m.TapNames() {
		if err := brew.ValidateTap(tap); err != nil {
			return err
		}
	}
	for _, kind := range types.Kinds {
		for _, decl := range m.Declarations(kind) {
			if err := brew.ValidatePackage(decl.Name); err != nil {
				return errors.Wrapf(err, errors.ErrValidation, "%s declares an invalid %s", orUnnamed(decl.Source), kind).
					WithDetail("package", decl.Name).
					WithDetail("shard", decl.Source)
			}
			if err := brew.ValidateOptions(decl.Options); err != nil {
				return errors.Wrapf(err, errors.ErrValidation, "%s declares invalid options for %s", orUnnamed(decl.Source), decl.Name).
					WithDetail("package", decl.Name).
					WithDetail("shard", decl.Source)
			}
		}
	}
	return nil
}

func orUnnamed(source string) string {
	if source == "" {
		return "manifest"
	}
	return "shard " + source
}
