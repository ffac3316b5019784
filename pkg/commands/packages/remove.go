package packages

import (
	"context"
	"sort"

	"github.com/arthur-debert/shard/pkg/brew"
	"github.com/arthur-debert/shard/pkg/commands/apply"
	"github.com/arthur-debert/shard/pkg/types"
)

// RemoveOptions defines the options for Remove
type RemoveOptions struct {
	Env
	Names []string
	// Kind restricts the lookup. Empty means formulae, then casks.
	Kind types.PackageKind
	// Shard is a shard name or apply.TargetAll for every active shard the
	// user may modify. Empty means DefaultShard.
	Shard     string
	DryRun    bool
	Uninstall bool
	ApplyAll  bool
}

type target struct {
	name     string
	manifest *types.Manifest
	changed  bool
}

// Remove drops package declarations from one shard or from every active
// shard
func Remove(ctx context.Context, opts RemoveOptions) (*ChangeResult, error) {
	logger := opts.Logger.With().Str("command", "Remove").Logger()
	logger.Debug().Strs("packages", opts.Names).Msg("Executing command")

	if err := brew.ValidatePackages(opts.Names); err != nil {
		return nil, err
	}
	targets, err := opts.targets()
	if err != nil {
		return nil, err
	}

	res := newResult(opts.DryRun)
	for _, t := range targets {
		res.Shards = append(res.Shards, t.name)
	}

	var planned []change
	for _, name := range opts.Names {
		if _, dup := res.Removed[name]; dup {
			continue
		}
		found := false
		for _, t := range targets {
			kind, ok := declaredKind(t.manifest, name, opts.Kind)
			if !ok {
				continue
			}
			t.manifest.RemovePackage(kind, name)
			t.changed = true
			if !found {
				found = true
				res.Removed[name] = kind
				planned = append(planned, change{name: name, kind: kind})
			}
		}
		if !found {
			res.Skipped[name] = "not declared"
		}
	}

	var uninstall []change
	if opts.Uninstall && len(planned) > 0 {
		declarers, err := opts.declaredElsewhere(targets, planned)
		if err != nil {
			return nil, err
		}
		for _, c := range planned {
			if other, ok := declarers[c.name]; ok {
				res.Kept[c.name] = "still declared by shard " + other
				logger.Info().Str("package", c.name).Str("shard", other).Msg("Not uninstalling package declared by another shard")
				continue
			}
			uninstall = append(uninstall, c)
		}
	}

	if len(planned) == 0 || opts.DryRun {
		return res, nil
	}

	if len(uninstall) > 0 {
		err := actuate(uninstall, "uninstall", logger, func(c change) error {
			if c.kind == types.Cask {
				return opts.Actuator.UninstallCask(ctx, c.name, false)
			}
			return opts.Actuator.UninstallFormula(ctx, c.name, false)
		})
		if err != nil {
			return res, err
		}
	}

	for _, t := range targets {
		if !t.changed {
			continue
		}
		if err := opts.Shards.Save(t.name, t.manifest); err != nil {
			return res, err
		}
		logger.Info().Str("shard", t.name).Msg("Shard updated")
	}
	res.Saved = true

	if opts.ApplyAll {
		return res, opts.applyAll(ctx, res)
	}
	return res, nil
}

func (opts RemoveOptions) targets() ([]*target, error) {
	shard := opts.Shard
	if shard == "" {
		shard = DefaultShard
	}

	if shard != apply.TargetAll {
		if ok, err := opts.Shards.CanModify(shard); err != nil {
			return nil, err
		} else if !ok {
			return nil, protectedError(shard, opts.Shards.User())
		}
		man, err := opts.Shards.Load(shard)
		if err != nil {
			return nil, err
		}
		return []*target{{name: shard, manifest: man}}, nil
	}

	records, err := opts.Shards.List()
	if err != nil {
		return nil, err
	}
	var out []*target
	for _, rec := range records {
		if rec.Status != types.StatusActive {
			continue
		}
		if rec.Manifest == nil {
			opts.Logger.Warn().Str("shard", rec.Name).Str("error", rec.LoadError).Msg("Skipping unreadable shard")
			continue
		}
		if rec.Protected {
			opts.Logger.Debug().Str("shard", rec.Name).Msg("Skipping protected shard")
			continue
		}
		out = append(out, &target{name: rec.Name, manifest: rec.Manifest})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}

// declaredElsewhere maps each planned package still declared by an active
// shard outside targets to the first such shard
func (opts RemoveOptions) declaredElsewhere(targets []*target, planned []change) (map[string]string, error) {
	skip := make(types.StringSet)
	for _, t := range targets {
		skip.Add(t.name)
	}
	records, err := opts.Shards.List()
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, rec := range records {
		if rec.Status != types.StatusActive || rec.Manifest == nil || skip.Has(rec.Name) {
			continue
		}
		for _, c := range planned {
			if _, seen := out[c.name]; seen {
				continue
			}
			if d, ok := rec.Manifest.Find(c.kind, c.name); ok && d.State != types.StateAbsent {
				out[c.name] = rec.Name
			}
		}
	}
	return out, nil
}
