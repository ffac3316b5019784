package filesystem

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/shard/pkg/types"
	"github.com/spf13/afero"
)

// store implements types.FS on top of an afero.Fs. Writes go through a
// temporary sibling file and a rename so a shard file is either the old
// document or the new one, never a partial write.
type store struct {
	fs afero.Fs
}

// NewOS returns the real filesystem
func NewOS() types.FS {
	return &store{fs: afero.NewOsFs()}
}

// NewMemory returns an in-memory filesystem for tests
func NewMemory() types.FS {
	return &store{fs: afero.NewMemMapFs()}
}

func (s *store) Stat(name string) (fs.FileInfo, error) {
	return s.fs.Stat(name)
}

func (s *store) ReadFile(name string) ([]byte, error) {
	info, err := s.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return afero.ReadFile(s.fs, name)
}

func (s *store) WriteFile(name string, data []byte, perm fs.FileMode) error {
	tmp, err := afero.TempFile(s.fs, filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = s.fs.Chmod(tmpName, perm)
	}
	if err == nil {
		err = s.fs.Rename(tmpName, name)
	}
	if err != nil {
		_ = s.fs.Remove(tmpName)
		return &fs.PathError{Op: "write", Path: name, Err: err}
	}
	return nil
}

func (s *store) MkdirAll(path string, perm fs.FileMode) error {
	return s.fs.MkdirAll(path, perm)
}

// ReadDir lists name sorted by file name. Stray temporary files from an
// interrupted write are hidden.
func (s *store) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := afero.ReadDir(s.fs, name)
	if err != nil {
		return nil, err
	}
	out := make([]fs.DirEntry, 0, len(infos))
	for _, info := range infos {
		if isTemp(info.Name()) {
			continue
		}
		out = append(out, fs.FileInfoToDirEntry(info))
	}
	return out, nil
}

func (s *store) Remove(name string) error {
	return s.fs.Remove(name)
}

func (s *store) Rename(oldpath, newpath string) error {
	return s.fs.Rename(oldpath, newpath)
}

// isTemp matches the ".<base>.<random>" names WriteFile creates.
func isTemp(name string) bool {
	if len(name) < 2 || name[0] != '.' {
		return false
	}
	ext := filepath.Ext(name[1:])
	return ext != "" && ext != ".toml" && filepath.Ext(name[1:len(name)-len(ext)]) == ".toml"
}
