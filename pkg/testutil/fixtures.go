package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/shard/pkg/types"
)

// Manifest builds a manifest named name with latest formulae and casks
func Manifest(name string, formulae, casks []string) *types.Manifest {
	m := types.NewManifest(name)
	for _, f := range formulae {
		d := types.NewDeclaration(f)
		d.Source = name
		m.Formulae = append(m.Formulae, d)
	}
	for _, c := range casks {
		d := types.NewDeclaration(c)
		d.Source = name
		m.Casks = append(m.Casks, d)
	}
	return m
}

// WriteFile writes body at path on fs, creating parent directories
func WriteFile(t testing.TB, fs types.FS, path, body string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := fs.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
