package processor

import (
	"context"

	"github.com/arthur-debert/shard/pkg/brew"
	"github.com/arthur-debert/shard/pkg/types"
)

// Kind binds one package kind to the actuator calls that act on it, so the
// same processing code serves formulae and casks.
type Kind struct {
	Kind         types.PackageKind
	Install      func(ctx context.Context, name string, options []string) error
	Upgrade      func(ctx context.Context, name string, options []string) error
	Uninstall    func(ctx context.Context, name string, force bool) error
	BatchInstall func(ctx context.Context, names []string) error
}

// Formulae binds the formula operations of a
func Formulae(a brew.Actuator) Kind {
	return Kind{
		Kind:         types.Formula,
		Install:      a.InstallFormula,
		Upgrade:      a.UpgradeFormula,
		Uninstall:    a.UninstallFormula,
		BatchInstall: a.BatchInstallFormulae,
	}
}

// Casks binds the cask operations of a
func Casks(a brew.Actuator) Kind {
	return Kind{
		Kind:         types.Cask,
		Install:      a.InstallCask,
		Upgrade:      a.UpgradeCask,
		Uninstall:    a.UninstallCask,
		BatchInstall: a.BatchInstallCasks,
	}
}

// For returns the binding for kind
func For(kind types.PackageKind, a brew.Actuator) Kind {
	if kind == types.Cask {
		return Casks(a)
	}
	return Formulae(a)
}

// Declarations returns the manifest declarations of this kind
func (k Kind) Declarations(m *types.Manifest) []types.PackageDeclaration {
	return m.Declarations(k.Kind)
}

// Classify classifies m's declarations of this kind against inv
func (k Kind) Classify(m *types.Manifest, inv *types.Inventory) types.PackageOps {
	return Classify(k.Declarations(m), inv, k.Kind)
}
