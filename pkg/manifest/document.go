package manifest

import "time"

// document mirrors every encoding a shard manifest has had on disk. The
// list fields are decoded loosely because they may hold plain strings,
// "name:version" strings or inline tables.
type document struct {
	Metadata metadataDoc `toml:"metadata"`

	Taps     []any `toml:"taps"`
	Formulae []any `toml:"formulae"`
	Casks    []any `toml:"casks"`

	// Legacy array-of-tables forms
	Formulas        []structuredPackage `toml:"formulas"`
	CasksStructured []structuredPackage `toml:"casks_structured"`
	TapsStructured  []structuredTap     `toml:"taps_structured"`

	// Legacy simplified cask list
	Brews []string `toml:"brews"`
}

type metadataDoc struct {
	Name         string     `toml:"name,omitempty"`
	Description  string     `toml:"description,omitempty"`
	Owner        string     `toml:"owner,omitempty"`
	Protected    bool       `toml:"protected"`
	Version      string     `toml:"version,omitempty"`
	AllowedUsers []string   `toml:"allowed_users,omitempty"`
	ModifiedAt   *time.Time `toml:"modified_at,omitempty"`
	ModifiedBy   string     `toml:"modified_by,omitempty"`

	// Deprecated: any value above zero means protected
	ProtectionLevel int `toml:"protection_level,omitempty"`
}

type structuredPackage struct {
	Name    string   `toml:"name"`
	Version string   `toml:"version,omitempty"`
	Options []string `toml:"options,omitempty"`
	State   string   `toml:"state,omitempty"`
}

type structuredTap struct {
	Name string `toml:"name"`
}

// outDocument is what Serialize writes: simplified lists for plain
// declarations, structured tables for everything else.
type outDocument struct {
	Metadata        metadataDoc         `toml:"metadata"`
	Taps            []string            `toml:"taps"`
	Formulae        []string            `toml:"formulae"`
	Casks           []string            `toml:"casks"`
	Formulas        []structuredPackage `toml:"formulas,omitempty"`
	CasksStructured []structuredPackage `toml:"casks_structured,omitempty"`
}
