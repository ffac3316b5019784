package types

import (
	"slices"
	"time"
)

// Metadata describes a shard and governs who may change it
type Metadata struct {
	Name         string    `json:"name" yaml:"name"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	Owner        string    `json:"owner,omitempty" yaml:"owner,omitempty"`
	Protected    bool      `json:"protected" yaml:"protected"`
	Version      string    `json:"version,omitempty" yaml:"version,omitempty"`
	AllowedUsers []string  `json:"allowed_users,omitempty" yaml:"allowed_users,omitempty"`
	ModifiedAt   time.Time `json:"modified_at,omitempty" yaml:"modified_at,omitempty"`
	ModifiedBy   string    `json:"modified_by,omitempty" yaml:"modified_by,omitempty"`
}

// IsAllowed reports whether user is listed in AllowedUsers
func (m Metadata) IsAllowed(user string) bool {
	return user != "" && slices.Contains(m.AllowedUsers, user)
}

// Touch records a modification
func (m *Metadata) Touch(user string, at time.Time) {
	m.ModifiedBy = user
	m.ModifiedAt = at.UTC().Truncate(time.Second)
}

// Manifest is one shard's desired state
type Manifest struct {
	Taps     []TapDeclaration     `json:"taps" yaml:"taps"`
	Formulae []PackageDeclaration `json:"formulae" yaml:"formulae"`
	Casks    []PackageDeclaration `json:"casks" yaml:"casks"`
	Metadata Metadata             `json:"metadata" yaml:"metadata"`
}

// NewManifest returns an empty manifest carrying the given name
func NewManifest(name string) *Manifest {
	return &Manifest{Metadata: Metadata{Name: name}}
}

// Declarations returns the declarations for one kind
func (m *Manifest) Declarations(kind PackageKind) []PackageDeclaration {
	if kind == Cask {
		return m.Casks
	}
	return m.Formulae
}

func (m *Manifest) setDeclarations(kind PackageKind, decls []PackageDeclaration) {
	if kind == Cask {
		m.Casks = decls
		return
	}
	m.Formulae = decls
}

// Find returns the first declaration of name for the kind
func (m *Manifest) Find(kind PackageKind, name string) (PackageDeclaration, bool) {
	for _, d := range m.Declarations(kind) {
		if d.Name == name {
			return d, true
		}
	}
	return PackageDeclaration{}, false
}

// Has reports whether the manifest declares name under kind
func (m *Manifest) Has(kind PackageKind, name string) bool {
	_, ok := m.Find(kind, name)
	return ok
}

// AddPackage appends a declaration unless the name is already declared for
// the kind. It reports whether the manifest changed.
func (m *Manifest) AddPackage(kind PackageKind, decl PackageDeclaration) bool {
	if m.Has(kind, decl.Name) {
		return false
	}
	m.setDeclarations(kind, append(m.Declarations(kind), decl))
	return true
}

// RemovePackage drops every declaration of name for the kind and reports
// whether anything was removed.
func (m *Manifest) RemovePackage(kind PackageKind, name string) bool {
	decls := m.Declarations(kind)
	kept := slices.DeleteFunc(slices.Clone(decls), func(d PackageDeclaration) bool { return d.Name == name })
	if len(kept) == len(decls) {
		return false
	}
	m.setDeclarations(kind, kept)
	return true
}

// AddTap appends a tap unless it is already declared
func (m *Manifest) AddTap(name string) bool {
	for _, t := range m.Taps {
		if t.Name == name {
			return false
		}
	}
	m.Taps = append(m.Taps, TapDeclaration{Name: name})
	return true
}

// TapNames returns the declared tap names in order
func (m *Manifest) TapNames() []string {
	out := make([]string, 0, len(m.Taps))
	for _, t := range m.Taps {
		out = append(out, t.Name)
	}
	return out
}

// CanModify reports whether user may change a manifest. Unprotected
// manifests are open to everybody.
func (m *Manifest) CanModify(user string) bool {
	return !m.Metadata.Protected || m.Metadata.IsAllowed(user)
}

// PackageCount is the number of declarations across kinds
func (m *Manifest) PackageCount() int {
	return len(m.Formulae) + len(m.Casks)
}
