// Package inventory takes the snapshot of installed state that every
// reconciliation pass starts from.
package inventory

import (
	"context"

	"github.com/arthur-debert/shard/pkg/brew"
	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/logging"
	"github.com/arthur-debert/shard/pkg/types"
	"github.com/rs/zerolog"
)

type query struct {
	name string
	run  func(context.Context) ([]string, error)
	dst  func(*types.Inventory) types.StringSet
}

// Snapshot runs the four list queries in order. It is all-or-nothing: the
// first failure aborts and no partial inventory is returned.
func Snapshot(ctx context.Context, q brew.Querier, logger zerolog.Logger) (*types.Inventory, error) {
	logger = logging.Component(logger, "inventory")
	defer logging.LogOperationStart(logger, "snapshot")()

	inv := types.NewInventory()
	queries := []query{
		{"formulae", q.ListFormulae, func(i *types.Inventory) types.StringSet { return i.Formulae }},
		{"casks", q.ListCasks, func(i *types.Inventory) types.StringSet { return i.Casks }},
		{"taps", q.ListTaps, func(i *types.Inventory) types.StringSet { return i.Taps }},
		{"dependencies", q.ListDependencies, func(i *types.Inventory) types.StringSet { return i.Dependencies }},
	}

	for _, qu := range queries {
		names, err := qu.run(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrActuator, "failed to list installed %s", qu.name).
				WithDetail("query", qu.name)
		}
		set := qu.dst(inv)
		for _, n := range names {
			set.Add(n)
		}
	}

	logger.Debug().
		Int("formulae", len(inv.Formulae)).
		Int("casks", len(inv.Casks)).
		Int("taps", len(inv.Taps)).
		Int("dependencies", len(inv.Dependencies)).
		Msg("Inventory snapshot taken")

	return inv, nil
}
