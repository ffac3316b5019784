// Package brew is the boundary to the Homebrew package manager. Everything
// above it talks to the Querier, Actuator and Resolver interfaces; the CLI
// type implements them by running the brew binary.
package brew

import "context"

// Querier reports what is installed
type Querier interface {
	ListFormulae(ctx context.Context) ([]string, error)
	ListCasks(ctx context.Context) ([]string, error)
	ListTaps(ctx context.Context) ([]string, error)
	// ListDependencies returns formulae installed only as dependencies
	ListDependencies(ctx context.Context) ([]string, error)
}

// Actuator changes the system. Every mutating call validates its inputs
// before anything is executed.
type Actuator interface {
	Querier

	AddTap(ctx context.Context, tap string) error
	InstallFormula(ctx context.Context, name string, options []string) error
	InstallCask(ctx context.Context, name string, options []string) error
	UpgradeFormula(ctx context.Context, name string, options []string) error
	UpgradeCask(ctx context.Context, name string, options []string) error
	UninstallFormula(ctx context.Context, name string, force bool) error
	UninstallCask(ctx context.Context, name string, force bool) error
	BatchInstallFormulae(ctx context.Context, names []string) error
	BatchInstallCasks(ctx context.Context, names []string) error
	Cleanup(ctx context.Context, pruneAll bool) error
}

// Availability says under which kinds a package name can be installed
type Availability struct {
	Formula bool
	Cask    bool
}

// Resolver looks a package name up locally. It is only used to pick a kind
// when adding packages without an explicit hint.
type Resolver interface {
	Availability(ctx context.Context, name string) (Availability, error)
}
