// Package testutil holds test doubles shared across packages: a stateful
// package manager and manifest fixtures.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/arthur-debert/shard/pkg/brew"
	"github.com/arthur-debert/shard/pkg/types"
)

// Operation names recorded by FakeActuator and used for failure injection
const (
	OpListFormulae     = "list_formulae"
	OpListCasks        = "list_casks"
	OpListTaps         = "list_taps"
	OpListDependencies = "list_dependencies"
	OpTap              = "tap"
	OpInstallFormula   = "install_formula"
	OpInstallCask      = "install_cask"
	OpUpgradeFormula   = "upgrade_formula"
	OpUpgradeCask      = "upgrade_cask"
	OpUninstallFormula = "uninstall_formula"
	OpUninstallCask    = "uninstall_cask"
	OpBatchFormulae    = "batch_install_formulae"
	OpBatchCasks       = "batch_install_casks"
	OpCleanup          = "cleanup"
	OpInfo             = "info"
)

// Call is one recorded invocation
type Call struct {
	Op      string
	Targets []string
	Options []string
	Force   bool
}

// FakeActuator is an in-memory package manager. Installs and uninstalls
// change its state, so a second pass sees the result of the first.
type FakeActuator struct {
	Formulae     types.StringSet
	Casks        types.StringSet
	Taps         types.StringSet
	Dependencies types.StringSet

	// Available drives Availability; unknown names are available as nothing
	Available map[string]brew.Availability

	Calls []Call

	failures map[string]error
}

var (
	_ brew.Actuator = (*FakeActuator)(nil)
	_ brew.Resolver = (*FakeActuator)(nil)
)

// NewFakeActuator returns a fake with nothing installed
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{
		Formulae:     make(types.StringSet),
		Casks:        make(types.StringSet),
		Taps:         make(types.StringSet),
		Dependencies: make(types.StringSet),
		Available:    make(map[string]brew.Availability),
		failures:     make(map[string]error),
	}
}

// WithFormulae marks names as installed formulae
func (f *FakeActuator) WithFormulae(names ...string) *FakeActuator {
	for _, n := range names {
		f.Formulae.Add(n)
	}
	return f
}

// WithCasks marks names as installed casks
func (f *FakeActuator) WithCasks(names ...string) *FakeActuator {
	for _, n := range names {
		f.Casks.Add(n)
	}
	return f
}

// WithTaps marks taps as present
func (f *FakeActuator) WithTaps(names ...string) *FakeActuator {
	for _, n := range names {
		f.Taps.Add(n)
	}
	return f
}

// WithDependencies marks formulae as installed only as dependencies
func (f *FakeActuator) WithDependencies(names ...string) *FakeActuator {
	for _, n := range names {
		f.Formulae.Add(n)
		f.Dependencies.Add(n)
	}
	return f
}

// Fail makes op fail for target. An empty target fails every call of op.
func (f *FakeActuator) Fail(op, target string, err error) {
	if err == nil {
		err = fmt.Errorf("%s %s failed", op, target)
	}
	f.failures[op+"|"+target] = err
}

func (f *FakeActuator) failure(op, target string) error {
	if err, ok := f.failures[op+"|"+target]; ok {
		return err
	}
	if err, ok := f.failures[op+"|"]; ok {
		return err
	}
	return nil
}

// Targets returns the targets of every recorded call of op, in order
func (f *FakeActuator) Targets(op string) []string {
	var out []string
	for _, c := range f.Calls {
		if c.Op == op {
			out = append(out, c.Targets...)
		}
	}
	return out
}

// Mutations returns every recorded call that could change the system
func (f *FakeActuator) Mutations() []Call {
	var out []Call
	for _, c := range f.Calls {
		if !strings.HasPrefix(c.Op, "list_") && c.Op != OpInfo {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps installed state
func (f *FakeActuator) Reset() {
	f.Calls = nil
}

func (f *FakeActuator) record(c Call) {
	f.Calls = append(f.Calls, c)
}

func (f *FakeActuator) list(op string, set types.StringSet) ([]string, error) {
	f.record(Call{Op: op})
	if err := f.failure(op, ""); err != nil {
		return nil, err
	}
	return set.Sorted(), nil
}

func (f *FakeActuator) ListFormulae(context.Context) ([]string, error) {
	return f.list(OpListFormulae, f.Formulae)
}

func (f *FakeActuator) ListCasks(context.Context) ([]string, error) {
	return f.list(OpListCasks, f.Casks)
}

func (f *FakeActuator) ListTaps(context.Context) ([]string, error) {
	return f.list(OpListTaps, f.Taps)
}

func (f *FakeActuator) ListDependencies(context.Context) ([]string, error) {
	return f.list(OpListDependencies, f.Dependencies)
}

func (f *FakeActuator) AddTap(_ context.Context, tap string) error {
	if err := brew.ValidateTap(tap); err != nil {
		return err
	}
	f.record(Call{Op: OpTap, Targets: []string{tap}})
	if err := f.failure(OpTap, tap); err != nil {
		return err
	}
	f.Taps.Add(tap)
	return nil
}

func (f *FakeActuator) set(kind types.PackageKind) types.StringSet {
	if kind == types.Cask {
		return f.Casks
	}
	return f.Formulae
}

func (f *FakeActuator) install(op string, kind types.PackageKind, name string, options []string) error {
	if err := brew.ValidatePackage(name); err != nil {
		return err
	}
	if err := brew.ValidateOptions(options); err != nil {
		return err
	}
	f.record(Call{Op: op, Targets: []string{name}, Options: slices.Clone(options)})
	if err := f.failure(op, name); err != nil {
		return err
	}
	f.set(kind).Add(name)
	if kind == types.Formula {
		f.Dependencies.Remove(name)
	}
	return nil
}

func (f *FakeActuator) upgrade(op string, kind types.PackageKind, name string, options []string) error {
	if err := brew.ValidatePackage(name); err != nil {
		return err
	}
	if err := brew.ValidateOptions(options); err != nil {
		return err
	}
	f.record(Call{Op: op, Targets: []string{name}, Options: slices.Clone(options)})
	if err := f.failure(op, name); err != nil {
		return err
	}
	if !f.set(kind).Has(name) {
		return fmt.Errorf("%s %s is not installed", kind, name)
	}
	return nil
}

func (f *FakeActuator) uninstall(op string, kind types.PackageKind, name string, force bool) error {
	if err := brew.ValidatePackage(name); err != nil {
		return err
	}
	f.record(Call{Op: op, Targets: []string{name}, Force: force})
	if err := f.failure(op, name); err != nil {
		return err
	}
	f.set(kind).Remove(name)
	return nil
}

func (f *FakeActuator) InstallFormula(_ context.Context, name string, options []string) error {
	return f.install(OpInstallFormula, types.Formula, name, options)
}

func (f *FakeActuator) InstallCask(_ context.Context, name string, options []string) error {
	return f.install(OpInstallCask, types.Cask, name, options)
}

func (f *FakeActuator) UpgradeFormula(_ context.Context, name string, options []string) error {
	return f.upgrade(OpUpgradeFormula, types.Formula, name, options)
}

func (f *FakeActuator) UpgradeCask(_ context.Context, name string, options []string) error {
	return f.upgrade(OpUpgradeCask, types.Cask, name, options)
}

func (f *FakeActuator) UninstallFormula(_ context.Context, name string, force bool) error {
	return f.uninstall(OpUninstallFormula, types.Formula, name, force)
}

func (f *FakeActuator) UninstallCask(_ context.Context, name string, force bool) error {
	return f.uninstall(OpUninstallCask, types.Cask, name, force)
}

// batch fails as a whole when the batch op or any single install of a
// member is set to fail, installing nothing, like brew aborting early
func (f *FakeActuator) batch(op, single string, kind types.PackageKind, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if err := brew.ValidatePackages(names); err != nil {
		return err
	}
	f.record(Call{Op: op, Targets: slices.Clone(names)})
	if err := f.failure(op, ""); err != nil {
		return err
	}
	for _, n := range names {
		if err := f.failure(single, n); err != nil {
			return err
		}
	}
	for _, n := range names {
		f.set(kind).Add(n)
	}
	return nil
}

func (f *FakeActuator) BatchInstallFormulae(_ context.Context, names []string) error {
	return f.batch(OpBatchFormulae, OpInstallFormula, types.Formula, names)
}

func (f *FakeActuator) BatchInstallCasks(_ context.Context, names []string) error {
	return f.batch(OpBatchCasks, OpInstallCask, types.Cask, names)
}

func (f *FakeActuator) Cleanup(_ context.Context, pruneAll bool) error {
	c := Call{Op: OpCleanup}
	if pruneAll {
		c.Options = []string{"--prune=all"}
	}
	f.record(c)
	return f.failure(OpCleanup, "")
}

func (f *FakeActuator) Availability(_ context.Context, name string) (brew.Availability, error) {
	if err := brew.ValidatePackage(name); err != nil {
		return brew.Availability{}, err
	}
	f.record(Call{Op: OpInfo, Targets: []string{name}})
	if err := f.failure(OpInfo, name); err != nil {
		return brew.Availability{}, err
	}
	return f.Available[name], nil
}
