// Package packages adds packages to and removes packages from shards,
// optionally installing or uninstalling them on the way.
//
// External operations always run before the manifest is written back, so
// a pass interrupted before the write can be retried without repeating
// work that already succeeded.
package packages

import (
	"context"

	"github.com/arthur-debert/shard/pkg/brew"
	"github.com/arthur-debert/shard/pkg/commands/apply"
	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/reconcile"
	"github.com/arthur-debert/shard/pkg/shards"
	"github.com/arthur-debert/shard/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultShard receives packages when no shard is named
const DefaultShard = shards.UserShard

// Env carries the collaborators shared by Add and Remove
type Env struct {
	Shards   *shards.Manager
	Actuator brew.Actuator
	Resolver brew.Resolver
	// Driver runs the merged apply requested by ApplyAll
	Driver *reconcile.Driver
	Logger zerolog.Logger
}

// ChangeResult reports what Add or Remove did, or would do on a dry run
type ChangeResult struct {
	Shards  []string                     `json:"shards" yaml:"shards"`
	Added   map[string]types.PackageKind `json:"added,omitempty" yaml:"added,omitempty"`
	Removed map[string]types.PackageKind `json:"removed,omitempty" yaml:"removed,omitempty"`
	// Skipped maps a package name to the reason it was left alone
	Skipped map[string]string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	// Kept maps a removed package to the reason it was not uninstalled
	Kept    map[string]string `json:"kept,omitempty" yaml:"kept,omitempty"`
	Saved   bool              `json:"saved" yaml:"saved"`
	DryRun  bool              `json:"dry_run" yaml:"dry_run"`
	Apply   *reconcile.Result `json:"apply,omitempty" yaml:"apply,omitempty"`
}

func newResult(dryRun bool) *ChangeResult {
	return &ChangeResult{
		Added:   make(map[string]types.PackageKind),
		Removed: make(map[string]types.PackageKind),
		Skipped: make(map[string]string),
		Kept:    make(map[string]string),
		DryRun:  dryRun,
	}
}

// Changed reports whether any package was added or removed
func (r *ChangeResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

func (e Env) applyAll(ctx context.Context, res *ChangeResult) error {
	result, err := apply.Apply(ctx, apply.Options{
		Shards: e.Shards,
		Driver: e.Driver,
		Logger: e.Logger,
		Target: apply.TargetAll,
	})
	if err != nil {
		return err
	}
	res.Apply = result
	return result.Err()
}

type change struct {
	name string
	kind types.PackageKind
}

// actuate runs fn for every change and summarizes the failures
func actuate(changes []change, what string, logger zerolog.Logger, fn func(change) error) error {
	var failures []errors.ItemError
	for _, c := range changes {
		if err := fn(c); err != nil {
			logger.Error().Err(err).Str("package", c.name).Str("kind", string(c.kind)).Msgf("Failed to %s package", what)
			failures = append(failures, errors.ItemError{Item: c.name, Op: what + " " + string(c.kind), Err: err})
		}
	}
	if err := errors.Summarize(errors.ErrActuator, what+"s", failures); err != nil {
		return err.WithDetail("write_back", false)
	}
	return nil
}
