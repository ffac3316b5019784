// Package processor decides, per package kind, what must happen to each
// declared package and carries those decisions out.
package processor

import (
	"slices"

	"github.com/arthur-debert/shard/pkg/types"
)

// Classify sorts declarations into at most one bucket each. It is pure:
// the inventory is only read. When a name is declared more than once the
// first declaration wins.
//
// The rules, in order of precedence:
//
//	absent               installed -> uninstall, otherwise nothing
//	present + installed  nothing, even when options are declared
//	options declared     install or upgrade with options
//	not installed        install
//	latest + installed   upgrade
func Classify(decls []types.PackageDeclaration, inv *types.Inventory, kind types.PackageKind) types.PackageOps {
	var ops types.PackageOps
	seen := make(map[string]bool, len(decls))

	for _, d := range decls {
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true

		installed := inv.Installed(kind, d.Name)
		switch {
		case d.State == types.StateAbsent:
			if installed {
				ops.ToUninstall = append(ops.ToUninstall, d.Name)
			}
		case d.State == types.StatePresent && installed:
			// satisfied
		case len(d.Options) > 0:
			ops.WithOptions = append(ops.WithOptions, types.OptionedPackage{
				Name:    d.Name,
				Options: slices.Clone(d.Options),
			})
		case !installed:
			ops.ToInstall = append(ops.ToInstall, d.Name)
		case d.State == types.StateLatest:
			ops.ToUpgrade = append(ops.ToUpgrade, d.Name)
		}
	}
	return ops
}
