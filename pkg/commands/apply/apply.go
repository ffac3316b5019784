// Package apply reconciles the system against one shard or every active
// shard.
package apply

import (
	"context"

	"github.com/arthur-debert/shard/pkg/merge"
	"github.com/arthur-debert/shard/pkg/reconcile"
	"github.com/arthur-debert/shard/pkg/shards"
	"github.com/arthur-debert/shard/pkg/types"
	"github.com/rs/zerolog"
)

// TargetAll merges every active shard
const TargetAll = "all"

// Options defines the options for Apply and Diff
type Options struct {
	Shards *shards.Manager
	Driver *reconcile.Driver
	Logger zerolog.Logger
	// Target is a shard name or TargetAll. Empty means TargetAll.
	Target string
	// AdditiveOnly disables implied uninstall for TargetAll. A single
	// shard is always applied additively.
	AdditiveOnly bool
	SkipCleanup  bool
}

// Apply runs one reconciliation pass
func Apply(ctx context.Context, opts Options) (*reconcile.Result, error) {
	req, err := Request(opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug().Str("command", "Apply").Str("target", req.Target).Msg("Executing command")
	return opts.Driver.Apply(ctx, req)
}

// Diff reports what Apply would do
func Diff(ctx context.Context, opts Options) (*types.ReconciliationPlan, error) {
	req, err := Request(opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug().Str("command", "Diff").Str("target", req.Target).Msg("Executing command")
	return opts.Driver.Diff(ctx, req)
}

// Request resolves the target into the desired manifest for a pass
func Request(opts Options) (reconcile.Request, error) {
	target := opts.Target
	if target == "" {
		target = TargetAll
	}
	req := reconcile.Request{Target: target, SkipCleanup: opts.SkipCleanup}

	if target == TargetAll {
		manifests, err := opts.Shards.ActiveManifests()
		if err != nil {
			return req, err
		}
		opts.Logger.Info().Int("shards", len(manifests)).Msg("Merging active shards")
		req.Manifest = merge.Merge(manifests...)
		req.AdditiveOnly = opts.AdditiveOnly
		return req, nil
	}

	rec, err := opts.Shards.Get(target)
	if err != nil {
		return req, err
	}
	if rec.Status == types.StatusDisabled {
		opts.Logger.Warn().Str("shard", target).Msg("Applying a disabled shard")
	}
	req.Manifest = rec.Manifest
	req.AdditiveOnly = true
	return req, nil
}
