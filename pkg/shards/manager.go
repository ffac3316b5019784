// Package shards manages the lifecycle of shard manifests on disk:
// creation, listing, enable/disable, deletion, protection and backups.
package shards

import (
	"io/fs"
	"regexp"
	"slices"
	"sort"
	"time"

	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/logging"
	"github.com/arthur-debert/shard/pkg/manifest"
	"github.com/arthur-debert/shard/pkg/paths"
	"github.com/arthur-debert/shard/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultProtectedNames are protected whatever their metadata says
var DefaultProtectedNames = []string{"system", "user"}

// InitialVersion is the version given to new shards
const InitialVersion = "0.1.0"

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Options configures a Manager
type Options struct {
	FS    types.FS
	Paths *paths.Paths
	// ProtectedNames extends DefaultProtectedNames, never replacing them
	ProtectedNames []string
	// User is the acting user checked against allowed_users
	User   string
	Logger zerolog.Logger
	// Now defaults to time.Now
	Now func() time.Time
}

// Manager owns the shard directories
type Manager struct {
	fs        types.FS
	paths     *paths.Paths
	protected types.StringSet
	user      string
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates a Manager
func New(opts Options) *Manager {
	protected := types.NewStringSet(DefaultProtectedNames...)
	for _, name := range opts.ProtectedNames {
		protected.Add(name)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		fs:        opts.FS,
		paths:     opts.Paths,
		protected: protected,
		user:      opts.User,
		logger:    logging.Component(opts.Logger, "shards"),
		now:       now,
	}
}

// User returns the acting user
func (m *Manager) User() string {
	return m.user
}

// ValidateName rejects empty names and anything outside [A-Za-z0-9_-]
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return errors.Newf(errors.ErrInvalidName, "invalid shard name %q: use letters, digits, '-' and '_'", name).
			WithDetail("shard", name)
	}
	return nil
}

func (m *Manager) exists(path string) bool {
	info, err := m.fs.Stat(path)
	return err == nil && !info.IsDir()
}

// Status reports where a shard lives
func (m *Manager) Status(name string) (types.ShardStatus, error) {
	if err := ValidateName(name); err != nil {
		return types.StatusNotFound, err
	}
	switch {
	case m.exists(m.paths.ShardFile(name)):
		return types.StatusActive, nil
	case m.exists(m.paths.DisabledFile(name)):
		return types.StatusDisabled, nil
	}
	return types.StatusNotFound, nil
}

func (m *Manager) pathFor(name string, status types.ShardStatus) string {
	if status == types.StatusDisabled {
		return m.paths.DisabledFile(name)
	}
	return m.paths.ShardFile(name)
}

// locate returns the status and path of an existing shard, or NotFound
func (m *Manager) locate(name string) (types.ShardStatus, string, error) {
	status, err := m.Status(name)
	if err != nil {
		return status, "", err
	}
	if status == types.StatusNotFound {
		return status, "", m.notFound(name)
	}
	return status, m.pathFor(name, status), nil
}

// Get loads a shard, active or disabled
func (m *Manager) Get(name string) (*types.ShardRecord, error) {
	status, path, err := m.locate(name)
	if err != nil {
		return nil, err
	}
	man, err := manifest.Load(m.fs, path)
	if err != nil {
		return nil, err
	}
	return &types.ShardRecord{
		Name:      name,
		Path:      path,
		Status:    status,
		Protected: m.isProtected(name, man),
		Manifest:  man,
	}, nil
}

// Load returns the manifest of a shard, active or disabled
func (m *Manager) Load(name string) (*types.Manifest, error) {
	rec, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return rec.Manifest, nil
}

// IsProtected reports whether a shard is protected by name or by its
// metadata
func (m *Manager) IsProtected(name string) (bool, error) {
	if m.protected.Has(name) {
		return true, nil
	}
	man, err := m.Load(name)
	if err != nil {
		return false, err
	}
	return man.Metadata.Protected, nil
}

func (m *Manager) isProtected(name string, man *types.Manifest) bool {
	return m.protected.Has(name) || (man != nil && man.Metadata.Protected)
}

// authorized reports whether the acting user is listed in the manifest
func (m *Manager) authorized(man *types.Manifest) bool {
	return man != nil && man.Metadata.IsAllowed(m.user)
}

func (m *Manager) requireAuthorized(name, action string, man *types.Manifest) error {
	if !m.isProtected(name, man) || m.authorized(man) {
		return nil
	}
	return ProtectedError(name, m.user, action)
}

// ProtectedError is returned when user may not perform action on a
// protected shard
func ProtectedError(name, user, action string) *errors.ShardError {
	return errors.Newf(errors.ErrProtected, "shard %s is protected: user %q may not %s it", name, user, action).
		WithDetail("shard", name).
		WithDetail("user", user)
}

// CanModify reports whether the acting user may write to a shard
func (m *Manager) CanModify(name string) (bool, error) {
	man, err := m.Load(name)
	if err != nil {
		return false, err
	}
	return m.requireAuthorized(name, "modify", man) == nil, nil
}

// Save writes back a modified manifest to wherever the shard lives,
// recording who changed it. Protected shards require an allowed user.
func (m *Manager) Save(name string, man *types.Manifest) error {
	status, err := m.Status(name)
	if err != nil {
		return err
	}
	if status != types.StatusNotFound {
		current, err := manifest.Load(m.fs, m.pathFor(name, status))
		if err != nil {
			return err
		}
		if err := m.requireAuthorized(name, "modify", current); err != nil {
			return err
		}
	}
	if man.Metadata.Name == "" {
		man.Metadata.Name = name
	}
	man.Metadata.Touch(m.user, m.now())
	return manifest.Save(m.fs, m.pathFor(name, status), man)
}

// Draft returns the manifest Create would write, without writing it
func (m *Manager) Draft(name, description string) *types.Manifest {
	if description == "" {
		description = "Custom shard: " + name
	}
	man := types.NewManifest(name)
	man.Metadata.Description = description
	man.Metadata.Owner = m.user
	man.Metadata.Version = InitialVersion
	man.Metadata.Protected = m.protected.Has(name)
	if m.user != "" {
		man.Metadata.AllowedUsers = []string{m.user}
	}
	man.Metadata.Touch(m.user, m.now())
	return man
}

// Available fails unless name is valid and used by neither an active nor
// a disabled shard
func (m *Manager) Available(name string) error {
	status, err := m.Status(name)
	if err != nil {
		return err
	}
	if status != types.StatusNotFound {
		return errors.Newf(errors.ErrAlreadyExists, "shard %s already exists (%s)", name, status).
			WithDetail("shard", name).
			WithDetail("status", string(status))
	}
	return nil
}

// Create writes a new, empty active shard owned by the acting user
func (m *Manager) Create(name, description string) (*types.ShardRecord, error) {
	if err := m.Available(name); err != nil {
		return nil, err
	}

	man := m.Draft(name, description)
	path := m.paths.ShardFile(name)
	if err := manifest.Save(m.fs, path, man); err != nil {
		return nil, err
	}
	m.logger.Info().Str("shard", name).Str("path", path).Msg("Created shard")

	return &types.ShardRecord{Name: name, Path: path, Status: types.StatusActive, Protected: man.Metadata.Protected, Manifest: man}, nil
}

// Delete backs a shard up and removes it. Protected shards need force and
// an allowed user.
func (m *Manager) Delete(name string, force bool) error {
	_, path, err := m.locate(name)
	if err != nil {
		return err
	}

	man, loadErr := manifest.Load(m.fs, path)
	if loadErr != nil && (!force || m.protected.Has(name)) {
		return loadErr
	}

	if m.isProtected(name, man) {
		if !force {
			return errors.Newf(errors.ErrProtected, "shard %s is protected: deleting it requires --force", name).
				WithDetail("shard", name)
		}
		if err := m.requireAuthorized(name, "delete", man); err != nil {
			return err
		}
	}

	if _, err := m.backup(name, path); err != nil {
		return err
	}
	if err := m.fs.Remove(path); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to delete shard %s", name).
			WithDetail("shard", name).
			WithDetail("path", path)
	}
	m.logger.Info().Str("shard", name).Msg("Deleted shard")
	return nil
}

// Disable moves an active shard into the disabled directory after taking
// a backup. It reports false when the shard was already disabled.
func (m *Manager) Disable(name string) (bool, error) {
	status, path, err := m.locate(name)
	if err != nil {
		return false, err
	}
	if status == types.StatusDisabled {
		m.logger.Info().Str("shard", name).Msg("Shard is already disabled")
		return false, nil
	}

	man, err := manifest.Load(m.fs, path)
	if err != nil {
		return false, err
	}
	if err := m.requireAuthorized(name, "disable", man); err != nil {
		return false, err
	}

	target := m.paths.DisabledFile(name)
	if m.exists(target) {
		return false, errors.Newf(errors.ErrAlreadyExists, "a disabled copy of shard %s already exists", name).
			WithDetail("shard", name).
			WithDetail("path", target)
	}

	if _, err := m.backup(name, path); err != nil {
		return false, err
	}
	if err := m.move(path, target); err != nil {
		return false, errors.Wrapf(err, errors.ErrFilesystem, "failed to disable shard %s", name).
			WithDetail("shard", name)
	}
	m.logger.Info().Str("shard", name).Msg("Disabled shard")
	return true, nil
}

// Enable moves a disabled shard back and refreshes its modification
// metadata. A manifest that cannot be parsed is moved as-is unless the
// shard is protected by name. It reports false when the shard was already
// active.
func (m *Manager) Enable(name string) (bool, error) {
	status, path, err := m.locate(name)
	if err != nil {
		return false, err
	}
	if status == types.StatusActive {
		m.logger.Info().Str("shard", name).Msg("Shard is already active")
		return false, nil
	}

	target := m.paths.ShardFile(name)
	man, loadErr := manifest.Load(m.fs, path)
	if loadErr != nil {
		if m.protected.Has(name) {
			return false, errors.Wrapf(loadErr, errors.ErrProtected, "shard %s is protected and its manifest cannot be read", name).
				WithDetail("shard", name)
		}
		m.logger.Warn().Err(loadErr).Str("shard", name).Msg("Enabling shard without refreshing metadata")
		if err := m.move(path, target); err != nil {
			return false, errors.Wrapf(err, errors.ErrFilesystem, "failed to enable shard %s", name).
				WithDetail("shard", name)
		}
		return true, nil
	}

	if err := m.requireAuthorized(name, "enable", man); err != nil {
		return false, err
	}

	man.Metadata.Touch(m.user, m.now())
	if err := manifest.Save(m.fs, target, man); err != nil {
		return false, err
	}
	if err := m.fs.Remove(path); err != nil {
		return false, errors.Wrapf(err, errors.ErrFilesystem, "failed to remove disabled copy of shard %s", name).
			WithDetail("shard", name).
			WithDetail("path", path)
	}
	m.logger.Info().Str("shard", name).Msg("Enabled shard")
	return true, nil
}

func (m *Manager) move(from, to string) error {
	if err := m.fs.MkdirAll(dirOf(to), 0755); err != nil {
		return err
	}
	return m.fs.Rename(from, to)
}

// List returns every shard, active first then disabled, each sorted by
// name. Manifests that fail to parse are listed with LoadError set.
func (m *Manager) List() ([]types.ShardRecord, error) {
	var out []types.ShardRecord
	for _, dir := range []struct {
		path   string
		status types.ShardStatus
	}{
		{m.paths.ShardsDir(), types.StatusActive},
		{m.paths.DisabledDir(), types.StatusDisabled},
	} {
		names, err := m.names(dir.path)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			path := m.pathFor(name, dir.status)
			rec := types.ShardRecord{Name: name, Path: path, Status: dir.status}
			man, err := manifest.Load(m.fs, path)
			if err != nil {
				rec.LoadError = err.Error()
			} else {
				rec.Manifest = man
			}
			rec.Protected = m.isProtected(name, man)
			out = append(out, rec)
		}
	}
	return out, nil
}

// ActiveManifests loads every active shard, sorted by name. A manifest
// that fails to parse aborts the whole load.
func (m *Manager) ActiveManifests() ([]*types.Manifest, error) {
	names, err := m.names(m.paths.ShardsDir())
	if err != nil {
		return nil, err
	}
	out := make([]*types.Manifest, 0, len(names))
	for _, name := range names {
		man, err := manifest.Load(m.fs, m.paths.ShardFile(name))
		if err != nil {
			return nil, err
		}
		out = append(out, man)
	}
	return out, nil
}

// names lists the shard names in dir. A missing directory has no shards.
func (m *Manager) names(dir string) ([]string, error) {
	entries, err := m.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to read shard directory %s", dir).
			WithDetail("path", dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := paths.ShardName(e.Name()); ok && namePattern.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Names returns the names of every shard, active and disabled
func (m *Manager) Names() ([]string, error) {
	active, err := m.names(m.paths.ShardsDir())
	if err != nil {
		return nil, err
	}
	disabled, err := m.names(m.paths.DisabledDir())
	if err != nil {
		return nil, err
	}
	all := append(active, disabled...)
	sort.Strings(all)
	return slices.Compact(all), nil
}
