package reconcile

import (
	"context"

	"github.com/arthur-debert/shard/pkg/brew"
	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/processor"
	"github.com/arthur-debert/shard/pkg/types"
	"github.com/rs/zerolog"
)

// sink receives the decisions of a pass. Apply and diff build the plan
// with the same code and only differ in the sink they hand it to.
type sink interface {
	addTap(ctx context.Context, tap string) error
	execute(ctx context.Context, kind types.PackageKind, ops types.PackageOps, inv *types.Inventory) []errors.ItemError
	cleanup(ctx context.Context, pruneAll bool) error
}

// actuatorSink carries decisions out
type actuatorSink struct {
	actuator brew.Actuator
	logger   zerolog.Logger
}

func (s actuatorSink) addTap(ctx context.Context, tap string) error {
	s.logger.Info().Str("tap", tap).Msg("Adding tap")
	return s.actuator.AddTap(ctx, tap)
}

func (s actuatorSink) execute(ctx context.Context, kind types.PackageKind, ops types.PackageOps, inv *types.Inventory) []errors.ItemError {
	return processor.Execute(ctx, processor.For(kind, s.actuator), ops, inv, s.logger)
}

func (s actuatorSink) cleanup(ctx context.Context, pruneAll bool) error {
	s.logger.Info().Bool("prune_all", pruneAll).Msg("Cleaning up")
	return s.actuator.Cleanup(ctx, pruneAll)
}

// reportSink only records; the plan it is fed is the report
type reportSink struct {
	logger zerolog.Logger
}

func (s reportSink) addTap(_ context.Context, tap string) error {
	s.logger.Debug().Str("tap", tap).Msg("Would add tap")
	return nil
}

func (s reportSink) execute(_ context.Context, kind types.PackageKind, ops types.PackageOps, _ *types.Inventory) []errors.ItemError {
	if !ops.Empty() {
		s.logger.Debug().Str("kind", string(kind)).Int("operations", ops.Count()).Msg("Would change packages")
	}
	return nil
}

func (s reportSink) cleanup(context.Context, bool) error {
	return nil
}
