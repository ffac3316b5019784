package shards

import (
	"fmt"

	"github.com/arthur-debert/shard/pkg/manifest"
	"github.com/arthur-debert/shard/pkg/types"
)

// Names of the shards Init creates
const (
	SystemShard = "system"
	UserShard   = "user"
)

// InitAction says what Init did with one default shard
type InitAction string

const (
	InitCreated     InitAction = "created"
	InitOverwritten InitAction = "overwritten"
	InitKept        InitAction = "kept"
)

// InitEntry is the outcome for one default shard
type InitEntry struct {
	Name   string
	Path   string
	Action InitAction
}

// InitOptions configures Init
type InitOptions struct {
	// Force replaces existing default shards with empty ones, after a
	// backup and only for an allowed user
	Force bool
	// DryRun reports the outcome without writing anything
	DryRun bool
}

// Init creates the protected system and user shards. Existing shards,
// active or disabled, are kept unless opts.Force is set.
func (m *Manager) Init(opts InitOptions) ([]InitEntry, error) {
	defaults := []struct{ name, description string }{
		{SystemShard, "System-level packages"},
		{UserShard, m.userDescription()},
	}

	var entries []InitEntry
	for _, d := range defaults {
		entry, err := m.initShard(d.name, d.description, opts)
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (m *Manager) userDescription() string {
	if m.user == "" {
		return "User packages"
	}
	return fmt.Sprintf("User packages for %s", m.user)
}

func (m *Manager) initShard(name, description string, opts InitOptions) (InitEntry, error) {
	status, err := m.Status(name)
	if err != nil {
		return InitEntry{}, err
	}

	if status == types.StatusNotFound {
		path := m.paths.ShardFile(name)
		entry := InitEntry{Name: name, Path: path, Action: InitCreated}
		if opts.DryRun {
			return entry, nil
		}
		if err := manifest.Save(m.fs, path, m.Draft(name, description)); err != nil {
			return InitEntry{}, err
		}
		m.logger.Info().Str("shard", name).Str("path", path).Msg("Created default shard")
		return entry, nil
	}

	path := m.pathFor(name, status)
	if !opts.Force {
		m.logger.Debug().Str("shard", name).Str("status", string(status)).Msg("Default shard exists, keeping it")
		return InitEntry{Name: name, Path: path, Action: InitKept}, nil
	}

	current, err := manifest.Load(m.fs, path)
	if err != nil {
		return InitEntry{}, err
	}
	if err := m.requireAuthorized(name, "overwrite", current); err != nil {
		return InitEntry{}, err
	}

	entry := InitEntry{Name: name, Path: path, Action: InitOverwritten}
	if opts.DryRun {
		return entry, nil
	}
	if _, err := m.backup(name, path); err != nil {
		return InitEntry{}, err
	}
	if err := manifest.Save(m.fs, path, m.Draft(name, description)); err != nil {
		return InitEntry{}, err
	}
	m.logger.Warn().Str("shard", name).Str("path", path).Msg("Overwrote default shard")
	return entry, nil
}
