// Package manifest reads and writes shard manifests. Every historical
// encoding is accepted and normalized into one types.Manifest.
package manifest

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/types"
	"github.com/pelletier/go-toml/v2"
)

// Parse decodes a manifest that is not tied to a named shard
func Parse(data []byte) (*types.Manifest, error) {
	return ParseNamed("", data)
}

// ParseNamed decodes a manifest and stamps every declaration with the
// shard name as its source.
func ParseNamed(name string, data []byte) (*types.Manifest, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, parseError(name, err, "invalid TOML")
	}

	m := &types.Manifest{Metadata: doc.Metadata.toMetadata()}
	if m.Metadata.Name == "" {
		m.Metadata.Name = name
	}

	var err error
	if m.Taps, err = collectTaps(doc); err != nil {
		return nil, parseError(name, err, "invalid taps")
	}
	if m.Formulae, err = collect(name, formulaSources(doc)); err != nil {
		return nil, parseError(name, err, "invalid formulae")
	}
	if m.Casks, err = collect(name, caskSources(doc)); err != nil {
		return nil, parseError(name, err, "invalid casks")
	}
	return m, nil
}

func parseError(name string, err error, what string) error {
	msg := "failed to parse manifest: " + what
	if name != "" {
		msg = fmt.Sprintf("failed to parse manifest %s: %s", name, what)
	}
	return errors.Wrap(err, errors.ErrManifestParse, msg).WithDetail("shard", name)
}

func (md metadataDoc) toMetadata() types.Metadata {
	out := types.Metadata{
		Name:         md.Name,
		Description:  md.Description,
		Owner:        md.Owner,
		Protected:    md.Protected || md.ProtectionLevel > 0,
		Version:      md.Version,
		AllowedUsers: md.AllowedUsers,
		ModifiedBy:   md.ModifiedBy,
	}
	if md.ModifiedAt != nil {
		out.ModifiedAt = md.ModifiedAt.UTC()
	}
	return out
}

// source yields declarations from one encoding. Sources are consulted in
// order and the first to declare a name wins.
type source func() ([]types.PackageDeclaration, error)

func formulaSources(doc document) []source {
	return []source{
		structuredTables(doc.Formulas),
		inlineTables(doc.Formulae),
		simplified(doc.Formulae),
	}
}

func caskSources(doc document) []source {
	return []source{
		structuredTables(doc.CasksStructured),
		inlineTables(doc.Casks),
		simplified(doc.Casks),
		legacyBrews(doc.Brews),
	}
}

func collect(shard string, sources []source) ([]types.PackageDeclaration, error) {
	var out []types.PackageDeclaration
	seen := make(map[string]bool)
	for _, src := range sources {
		decls, err := src()
		if err != nil {
			return nil, err
		}
		for _, d := range decls {
			if seen[d.Name] {
				continue
			}
			seen[d.Name] = true
			d.Source = shard
			out = append(out, d)
		}
	}
	return out, nil
}

func structuredTables(entries []structuredPackage) source {
	return func() ([]types.PackageDeclaration, error) {
		out := make([]types.PackageDeclaration, 0, len(entries))
		for _, e := range entries {
			d, err := fromStructured(e)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil
	}
}

// inlineTables picks the {name = ..., state = ...} entries out of a mixed list
func inlineTables(entries []any) source {
	return func() ([]types.PackageDeclaration, error) {
		var out []types.PackageDeclaration
		for _, e := range entries {
			table, ok := e.(map[string]any)
			if !ok {
				continue
			}
			sp, err := tableToStructured(table)
			if err != nil {
				return nil, err
			}
			d, err := fromStructured(sp)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil
	}
}

func simplified(entries []any) source {
	return func() ([]types.PackageDeclaration, error) {
		var out []types.PackageDeclaration
		for _, e := range entries {
			switch v := e.(type) {
			case string:
				d, err := fromSimplified(v)
				if err != nil {
					return nil, err
				}
				out = append(out, d)
			case map[string]any:
				// handled by inlineTables
			default:
				return nil, fmt.Errorf("unsupported entry %v of type %T", e, e)
			}
		}
		return out, nil
	}
}

func legacyBrews(entries []string) source {
	return func() ([]types.PackageDeclaration, error) {
		out := make([]types.PackageDeclaration, 0, len(entries))
		for _, e := range entries {
			d, err := fromSimplified(e)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil
	}
}

func fromSimplified(s string) (types.PackageDeclaration, error) {
	name, version, _ := strings.Cut(strings.TrimSpace(s), ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return types.PackageDeclaration{}, fmt.Errorf("empty package name in %q", s)
	}
	d := types.NewDeclaration(name)
	if v := strings.TrimSpace(version); v != "" {
		d.Version = v
	}
	return d, nil
}

func fromStructured(e structuredPackage) (types.PackageDeclaration, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return types.PackageDeclaration{}, fmt.Errorf("structured entry without a name")
	}
	state, err := types.ParseState(e.State)
	if err != nil {
		return types.PackageDeclaration{}, fmt.Errorf("package %s: %w", name, err)
	}
	d := types.PackageDeclaration{
		Name:    name,
		Version: e.Version,
		State:   state,
	}
	if d.Version == "" {
		d.Version = types.VersionLatest
	}
	if len(e.Options) > 0 {
		d.Options = append([]string(nil), e.Options...)
	}
	return d, nil
}

func tableToStructured(table map[string]any) (structuredPackage, error) {
	var sp structuredPackage
	var ok bool
	if v, present := table["name"]; present {
		if sp.Name, ok = v.(string); !ok {
			return sp, fmt.Errorf("name must be a string, got %T", v)
		}
	}
	if v, present := table["version"]; present {
		if sp.Version, ok = v.(string); !ok {
			return sp, fmt.Errorf("package %s: version must be a string, got %T", sp.Name, v)
		}
	}
	if v, present := table["state"]; present {
		if sp.State, ok = v.(string); !ok {
			return sp, fmt.Errorf("package %s: state must be a string, got %T", sp.Name, v)
		}
	}
	if v, present := table["options"]; present {
		list, isList := v.([]any)
		if !isList {
			return sp, fmt.Errorf("package %s: options must be a list, got %T", sp.Name, v)
		}
		for _, o := range list {
			s, isString := o.(string)
			if !isString {
				return sp, fmt.Errorf("package %s: option %v is not a string", sp.Name, o)
			}
			sp.Options = append(sp.Options, s)
		}
	}
	return sp, nil
}

func collectTaps(doc document) ([]types.TapDeclaration, error) {
	var out []types.TapDeclaration
	seen := make(map[string]bool)
	add := func(name string) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("empty tap name")
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, types.TapDeclaration{Name: name})
		}
		return nil
	}

	for _, t := range doc.TapsStructured {
		if err := add(t.Name); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.Taps {
		switch v := e.(type) {
		case string:
			if err := add(v); err != nil {
				return nil, err
			}
		case map[string]any:
			name, _ := v["name"].(string)
			if err := add(name); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unsupported tap entry %v of type %T", e, e)
		}
	}
	return out, nil
}
