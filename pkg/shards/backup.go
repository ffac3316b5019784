package shards

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/paths"
)

const backupStamp = "20060102T150405.000000000"

// BackupName is the file name a backup of shard taken at stamp gets
func BackupName(name, stamp string) string {
	return fmt.Sprintf("%s_backup_%s%s", name, stamp, paths.ManifestExt)
}

// Backup copies the current manifest of a shard into the backups
// directory and returns the backup path.
func (m *Manager) Backup(name string) (string, error) {
	_, path, err := m.locate(name)
	if err != nil {
		return "", err
	}
	return m.backup(name, path)
}

// backup never overwrites an earlier backup. Any failure is BACKUP and
// callers must not go on with the destructive step.
func (m *Manager) backup(name, path string) (string, error) {
	fail := func(err error, msg string) error {
		return errors.Wrapf(err, errors.ErrBackup, "%s for shard %s", msg, name).
			WithDetail("shard", name).
			WithDetail("path", path)
	}

	data, err := m.fs.ReadFile(path)
	if err != nil {
		return "", fail(err, "failed to read manifest")
	}
	dir := m.paths.BackupsDir()
	if err := m.fs.MkdirAll(dir, 0755); err != nil {
		return "", fail(err, "failed to create backups directory")
	}

	stamp := m.now().UTC().Format(backupStamp)
	target := filepath.Join(dir, BackupName(name, stamp))
	for i := 1; m.exists(target); i++ {
		target = filepath.Join(dir, BackupName(name, fmt.Sprintf("%s-%d", stamp, i)))
	}
	if err := m.fs.WriteFile(target, data, 0644); err != nil {
		return "", fail(err, "failed to write backup")
	}

	m.logger.Debug().Str("shard", name).Str("backup", target).Msg("Backed up shard")
	return target, nil
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
