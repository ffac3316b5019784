package types

import (
	"fmt"
	"strings"
)

// PackageKind separates the formula and cask namespaces. The same name may
// exist independently in both.
type PackageKind string

const (
	Formula PackageKind = "formula"
	Cask    PackageKind = "cask"
)

// Kinds lists every package kind in processing order
var Kinds = []PackageKind{Formula, Cask}

// ParseKind accepts the singular and plural spellings used in manifests and flags
func ParseKind(s string) (PackageKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "formula", "formulae", "formulas", "brew":
		return Formula, nil
	case "cask", "casks":
		return Cask, nil
	}
	return "", fmt.Errorf("unknown package kind %q", s)
}

// Plural returns the human label used in summaries
func (k PackageKind) Plural() string {
	if k == Cask {
		return "casks"
	}
	return "formulae"
}

// DesiredState is what a declaration asks of the system
type DesiredState string

const (
	StatePresent DesiredState = "present"
	StateAbsent  DesiredState = "absent"
	StateLatest  DesiredState = "latest"
)

// VersionLatest is the default declared version
const VersionLatest = "latest"

// ParseState parses a manifest state. An empty string means latest.
func ParseState(s string) (DesiredState, error) {
	switch DesiredState(strings.ToLower(strings.TrimSpace(s))) {
	case "", StateLatest:
		return StateLatest, nil
	case StatePresent:
		return StatePresent, nil
	case StateAbsent:
		return StateAbsent, nil
	}
	return "", fmt.Errorf("unknown package state %q", s)
}

// PackageDeclaration is one entry of a manifest
type PackageDeclaration struct {
	Name    string       `json:"name" yaml:"name"`
	Version string       `json:"version" yaml:"version"`
	State   DesiredState `json:"state" yaml:"state"`
	Options []string     `json:"options,omitempty" yaml:"options,omitempty"`
	// Source is the shard the declaration came from, informational only
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// NewDeclaration returns a latest declaration with the default version
func NewDeclaration(name string) PackageDeclaration {
	return PackageDeclaration{Name: name, Version: VersionLatest, State: StateLatest}
}

// IsPlain reports whether the declaration has nothing beyond a name and
// optional version, so it fits the simplified manifest form.
func (d PackageDeclaration) IsPlain() bool {
	return d.State == StateLatest && len(d.Options) == 0
}

// TapDeclaration names a third-party repository ("owner/repo")
type TapDeclaration struct {
	Name string `json:"name" yaml:"name"`
}

// OptionedPackage is a package that must be installed or upgraded with options
type OptionedPackage struct {
	Name    string   `json:"name" yaml:"name"`
	Options []string `json:"options" yaml:"options"`
}

// PackageOps is the per-kind output of classification
type PackageOps struct {
	ToInstall   []string          `json:"to_install" yaml:"to_install"`
	ToUpgrade   []string          `json:"to_upgrade" yaml:"to_upgrade"`
	WithOptions []OptionedPackage `json:"with_options" yaml:"with_options"`
	ToUninstall []string          `json:"to_uninstall" yaml:"to_uninstall"`
}

// Count returns the number of planned operations
func (o PackageOps) Count() int {
	return len(o.ToInstall) + len(o.ToUpgrade) + len(o.WithOptions) + len(o.ToUninstall)
}

// Empty reports whether no operation is planned
func (o PackageOps) Empty() bool {
	return o.Count() == 0
}
