package packages

import (
	"context"
	"fmt"

	"github.com/arthur-debert/shard/pkg/brew"
	"github.com/arthur-debert/shard/pkg/shards"
	"github.com/arthur-debert/shard/pkg/types"
)

// AddOptions defines the options for Add
type AddOptions struct {
	Env
	Names []string
	// Kind restricts the package kind. Empty means detect it.
	Kind types.PackageKind
	// DefaultKind is chosen when a package exists as both kinds. Empty
	// means cask.
	DefaultKind types.PackageKind
	// Shard defaults to DefaultShard and is created when missing
	Shard    string
	DryRun   bool
	Install  bool
	ApplyAll bool
}

// Add declares packages in a shard
func Add(ctx context.Context, opts AddOptions) (*ChangeResult, error) {
	logger := opts.Logger.With().Str("command", "Add").Logger()
	logger.Debug().Strs("packages", opts.Names).Msg("Executing command")

	if err := brew.ValidatePackages(opts.Names); err != nil {
		return nil, err
	}
	shard := opts.Shard
	if shard == "" {
		shard = DefaultShard
	}
	status, err := opts.Shards.Status(shard)
	if err != nil {
		return nil, err
	}

	var man *types.Manifest
	if status == types.StatusNotFound {
		logger.Info().Str("shard", shard).Msg("Shard will be created")
		man = opts.Shards.Draft(shard, "")
	} else {
		if ok, err := opts.Shards.CanModify(shard); err != nil {
			return nil, err
		} else if !ok {
			return nil, protectedError(shard, opts.Shards.User())
		}
		if man, err = opts.Shards.Load(shard); err != nil {
			return nil, err
		}
	}

	res := newResult(opts.DryRun)
	res.Shards = []string{shard}

	var planned []change
	for _, name := range opts.Names {
		if _, dup := res.Added[name]; dup {
			continue
		}
		if kind, ok := declaredKind(man, name, opts.Kind); ok {
			res.Skipped[name] = fmt.Sprintf("already declared as %s", kind)
			continue
		}
		kind, reason, err := opts.resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			logger.Warn().Str("package", name).Msg(reason)
			res.Skipped[name] = reason
			continue
		}
		res.Added[name] = kind
		planned = append(planned, change{name: name, kind: kind})
	}

	if len(planned) == 0 || opts.DryRun {
		return res, nil
	}

	if opts.Install {
		err := actuate(planned, "install", logger, func(c change) error {
			if c.kind == types.Cask {
				return opts.Actuator.InstallCask(ctx, c.name, nil)
			}
			return opts.Actuator.InstallFormula(ctx, c.name, nil)
		})
		if err != nil {
			return res, err
		}
	}

	for _, c := range planned {
		d := types.NewDeclaration(c.name)
		d.Source = shard
		man.AddPackage(c.kind, d)
	}
	if err := opts.Shards.Save(shard, man); err != nil {
		return res, err
	}
	res.Saved = true
	logger.Info().Str("shard", shard).Int("added", len(planned)).Msg("Shard updated")

	if opts.ApplyAll {
		return res, opts.applyAll(ctx, res)
	}
	return res, nil
}

// declaredKind looks name up in the kinds allowed by hint
func declaredKind(man *types.Manifest, name string, hint types.PackageKind) (types.PackageKind, bool) {
	for _, kind := range types.Kinds {
		if hint != "" && kind != hint {
			continue
		}
		if man.Has(kind, name) {
			return kind, true
		}
	}
	return "", false
}

// resolve picks a kind for name. A non-empty reason means the package is
// skipped.
func (opts AddOptions) resolve(ctx context.Context, name string) (types.PackageKind, string, error) {
	avail, err := opts.Resolver.Availability(ctx, name)
	if err != nil {
		return "", "", err
	}

	switch opts.Kind {
	case types.Formula:
		if !avail.Formula {
			return "", "no formula named " + name, nil
		}
		return types.Formula, "", nil
	case types.Cask:
		if !avail.Cask {
			return "", "no cask named " + name, nil
		}
		return types.Cask, "", nil
	}

	switch {
	case avail.Formula && avail.Cask:
		if opts.DefaultKind == types.Formula {
			return types.Formula, "", nil
		}
		return types.Cask, "", nil
	case avail.Cask:
		return types.Cask, "", nil
	case avail.Formula:
		return types.Formula, "", nil
	}
	return "", "no formula or cask named " + name, nil
}

func protectedError(shard, user string) error {
	return shards.ProtectedError(shard, user, "modify")
}
