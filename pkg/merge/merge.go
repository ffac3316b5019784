// Package merge folds several shard manifests into the single desired
// state of the system.
package merge

import (
	"slices"
	"sort"
	"strings"

	"github.com/arthur-debert/shard/pkg/types"
)

// Merge combines manifests. The result does not depend on the order of the
// inputs, and merging is associative, so shards can be merged in any
// grouping.
//
//   - taps: sorted union
//   - packages: grouped by name per kind, sorted by name
//   - state: latest if any declaration is latest, otherwise present;
//     absent declarations are dropped, removal happens only through
//     implied uninstall
//   - options: the smallest non-empty option list in lexical order
//   - version: the smallest pinned version, latest when none is pinned
//   - source: the smallest contributing shard name
func Merge(manifests ...*types.Manifest) *types.Manifest {
	out := types.NewManifest("")

	taps := make(types.StringSet)
	for _, m := range manifests {
		if m == nil {
			continue
		}
		for _, t := range m.Taps {
			taps.Add(t.Name)
		}
	}
	for _, name := range taps.Sorted() {
		out.Taps = append(out.Taps, types.TapDeclaration{Name: name})
	}

	out.Formulae = mergeKind(manifests, types.Formula)
	out.Casks = mergeKind(manifests, types.Cask)
	return out
}

func mergeKind(manifests []*types.Manifest, kind types.PackageKind) []types.PackageDeclaration {
	groups := make(map[string][]types.PackageDeclaration)
	for _, m := range manifests {
		if m == nil {
			continue
		}
		for _, d := range m.Declarations(kind) {
			if d.State == types.StateAbsent {
				continue
			}
			groups[d.Name] = append(groups[d.Name], d)
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]types.PackageDeclaration, 0, len(names))
	for _, name := range names {
		out = append(out, fold(name, groups[name]))
	}
	return out
}

func fold(name string, decls []types.PackageDeclaration) types.PackageDeclaration {
	merged := types.PackageDeclaration{
		Name:    name,
		Version: types.VersionLatest,
		State:   types.StatePresent,
	}

	for i, d := range decls {
		if d.State == types.StateLatest {
			merged.State = types.StateLatest
		}
		if d.Version != "" && d.Version != types.VersionLatest &&
			(merged.Version == types.VersionLatest || d.Version < merged.Version) {
			merged.Version = d.Version
		}
		if len(d.Options) > 0 && (merged.Options == nil || lessOptions(d.Options, merged.Options)) {
			merged.Options = slices.Clone(d.Options)
		}
		if i == 0 || d.Source < merged.Source {
			merged.Source = d.Source
		}
	}
	return merged
}

func lessOptions(a, b []string) bool {
	return strings.Join(a, "\x00") < strings.Join(b, "\x00")
}
