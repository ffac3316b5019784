package types

// ShardStatus is where a shard's manifest currently lives
type ShardStatus string

const (
	StatusActive   ShardStatus = "active"
	StatusDisabled ShardStatus = "disabled"
	StatusNotFound ShardStatus = "not_found"
)

// ShardRecord is a named manifest on disk
type ShardRecord struct {
	Name      string      `json:"name" yaml:"name"`
	Path      string      `json:"path" yaml:"path"`
	Status    ShardStatus `json:"status" yaml:"status"`
	Protected bool        `json:"protected" yaml:"protected"`
	Manifest  *Manifest   `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	// LoadError is set when the manifest exists but could not be parsed
	LoadError string `json:"load_error,omitempty" yaml:"load_error,omitempty"`
}
