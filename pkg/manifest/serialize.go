package manifest

import (
	"bytes"
	"path/filepath"

	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/paths"
	"github.com/arthur-debert/shard/pkg/types"
	"github.com/pelletier/go-toml/v2"
)

// Serialize encodes m. Plain latest declarations go to the simplified
// lists; declarations with a state other than latest or with options are
// written as structured tables so nothing is lost.
func Serialize(m *types.Manifest) ([]byte, error) {
	doc := outDocument{
		Metadata: fromMetadata(m.Metadata),
		Taps:     m.TapNames(),
	}

	doc.Formulae, doc.Formulas = split(m.Formulae)
	doc.Casks, doc.CasksStructured = split(m.Casks)

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to serialize manifest %s", m.Metadata.Name)
	}
	return buf.Bytes(), nil
}

func split(decls []types.PackageDeclaration) ([]string, []structuredPackage) {
	simple := []string{}
	var structured []structuredPackage
	for _, d := range decls {
		if d.Version == "" {
			d.Version = types.VersionLatest
		}
		if d.IsPlain() {
			entry := d.Name
			if d.Version != types.VersionLatest {
				entry += ":" + d.Version
			}
			simple = append(simple, entry)
			continue
		}
		sp := structuredPackage{
			Name:    d.Name,
			Options: d.Options,
			State:   string(d.State),
		}
		if d.Version != types.VersionLatest {
			sp.Version = d.Version
		}
		structured = append(structured, sp)
	}
	return simple, structured
}

func fromMetadata(md types.Metadata) metadataDoc {
	out := metadataDoc{
		Name:         md.Name,
		Description:  md.Description,
		Owner:        md.Owner,
		Protected:    md.Protected,
		Version:      md.Version,
		AllowedUsers: md.AllowedUsers,
		ModifiedBy:   md.ModifiedBy,
	}
	if !md.ModifiedAt.IsZero() {
		at := md.ModifiedAt.UTC()
		out.ModifiedAt = &at
	}
	return out
}

// Load reads and parses the manifest at path. The shard name is taken from
// the file name.
func Load(fs types.FS, path string) (*types.Manifest, error) {
	name, _ := paths.ShardName(path)
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to read manifest %s", path).
			WithDetail("path", path)
	}
	m, err := ParseNamed(name, data)
	if err != nil {
		if shardErr, ok := err.(*errors.ShardError); ok {
			shardErr.WithDetail("path", path)
		}
		return nil, err
	}
	return m, nil
}

// Save writes m to path through a temporary file so a failed write never
// leaves a truncated manifest behind.
func Save(fs types.FS, path string, m *types.Manifest) error {
	data, err := Serialize(m)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to create directory for %s", path).
			WithDetail("path", path)
	}
	tmp := path + ".tmp"
	if err := fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to write manifest %s", path).
			WithDetail("path", path)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to replace manifest %s", path).
			WithDetail("path", path)
	}
	return nil
}
