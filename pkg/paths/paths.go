package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/shard/pkg/errors"
)

// Environment variable names
const (
	// EnvShardHome overrides the root of the shard tree
	EnvShardHome = "SHARD_HOME"

	// EnvShardDataDir overrides the XDG data directory for shard
	EnvShardDataDir = "SHARD_DATA_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	AppDirName     = "shard"
	ShardsDirName  = "shards"
	DisabledDir    = "disabled"
	BackupsDirName = "backups"
	ConfigFileName = "config.toml"
	LogFileName    = "shard.log"

	// ManifestExt is the extension of every shard manifest on disk
	ManifestExt = ".toml"
)

// Paths resolves every on-disk location shard uses.
type Paths struct {
	home        string
	shardsDir   string
	disabledDir string
	backupsDir  string
	stateDir    string
}

// New creates a Paths rooted at home. An empty home is resolved from
// SHARD_HOME and then from the XDG config directory.
func New(home string) (*Paths, error) {
	xdg.Reload()

	if home == "" {
		home = os.Getenv(EnvShardHome)
	}
	if home == "" {
		home = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	absHome, err := filepath.Abs(ExpandHome(home))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to get absolute path for shard home %s", home)
	}

	p := &Paths{home: absHome}
	p.shardsDir = filepath.Join(absHome, ShardsDirName)
	p.disabledDir = filepath.Join(p.shardsDir, DisabledDir)

	dataDir := filepath.Join(xdg.DataHome, AppDirName)
	if d := os.Getenv(EnvShardDataDir); d != "" {
		dataDir = ExpandHome(d)
	}
	p.backupsDir = filepath.Join(dataDir, BackupsDirName)
	p.stateDir = filepath.Join(xdg.StateHome, AppDirName)

	return p, nil
}

// Override replaces directories with configured values. Empty values keep
// the current location.
func (p *Paths) Override(shardsDir, disabledDir, backupsDir string) *Paths {
	out := *p
	if shardsDir != "" {
		out.shardsDir = ExpandHome(shardsDir)
		if disabledDir == "" {
			out.disabledDir = filepath.Join(out.shardsDir, DisabledDir)
		}
	}
	if disabledDir != "" {
		out.disabledDir = ExpandHome(disabledDir)
	}
	if backupsDir != "" {
		out.backupsDir = ExpandHome(backupsDir)
	}
	return &out
}

func (p *Paths) Home() string        { return p.home }
func (p *Paths) ShardsDir() string   { return p.shardsDir }
func (p *Paths) DisabledDir() string { return p.disabledDir }
func (p *Paths) BackupsDir() string  { return p.backupsDir }
func (p *Paths) StateDir() string    { return p.stateDir }

// ConfigFile is the optional user configuration file
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.home, ConfigFileName)
}

// LogFile is where the file half of the logger writes
func (p *Paths) LogFile() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// ShardFile returns the location of an active shard manifest
func (p *Paths) ShardFile(name string) string {
	return filepath.Join(p.shardsDir, name+ManifestExt)
}

// DisabledFile returns the location of a disabled shard manifest
func (p *Paths) DisabledFile(name string) string {
	return filepath.Join(p.disabledDir, name+ManifestExt)
}

// ShardName extracts the shard name from a manifest path, reporting false
// for files that are not manifests.
func ShardName(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ManifestExt) || strings.HasPrefix(base, ".") {
		return "", false
	}
	name := strings.TrimSuffix(base, ManifestExt)
	return name, name != ""
}

// ExpandHome expands ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
