package packages_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/shard/pkg/brew"
	"github.com/arthur-debert/shard/pkg/commands/apply"
	"github.com/arthur-debert/shard/pkg/commands/packages"
	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/filesystem"
	"github.com/arthur-debert/shard/pkg/logging"
	"github.com/arthur-debert/shard/pkg/paths"
	"github.com/arthur-debert/shard/pkg/reconcile"
	"github.com/arthur-debert/shard/pkg/shards"
	"github.com/arthur-debert/shard/pkg/testutil"
	"github.com/arthur-debert/shard/pkg/types"
)

type fixture struct {
	fake  *testutil.FakeActuator
	fs    types.FS
	paths *paths.Paths
	env   packages.Env
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	p, err := paths.New("/cfg/shard")
	require.NoError(t, err)
	p = p.Override("", "", "/data/backups")
	fs := filesystem.NewMemory()
	fake := testutil.NewFakeActuator()
	fake.Available = map[string]brew.Availability{
		"firefox": {Formula: true, Cask: true},
		"jq":      {Formula: true},
		"slack":   {Cask: true},
		"git":     {Formula: true},
	}
	return &fixture{
		fake:  fake,
		fs:    fs,
		paths: p,
		env: packages.Env{
			Shards:   shards.New(shards.Options{FS: fs, Paths: p, User: "alice", Logger: logging.Nop()}),
			Actuator: fake,
			Resolver: fake,
			Driver:   reconcile.New(reconcile.Options{Actuator: fake, Logger: logging.Nop()}),
			Logger:   logging.Nop(),
		},
	}
}

func (f *fixture) shard(t *testing.T, name, body string) {
	testutil.WriteFile(t, f.fs, f.paths.ShardFile(name), body)
}

func (f *fixture) load(t *testing.T, name string) *types.Manifest {
	t.Helper()
	m, err := f.env.Shards.Load(name)
	require.NoError(t, err)
	return m
}

func TestAddPrefersCaskWhenAvailableAsBoth(t *testing.T) {
	f := newFixture(t)

	res, err := packages.Add(context.Background(), packages.AddOptions{Env: f.env, Names: []string{"firefox"}, Shard: "work"})
	require.NoError(t, err)

	assert.Equal(t, types.Cask, res.Added["firefox"])
	assert.True(t, res.Saved)
	m := f.load(t, "work")
	assert.True(t, m.Has(types.Cask, "firefox"))
	assert.False(t, m.Has(types.Formula, "firefox"))
	assert.Equal(t, []string{"alice"}, m.Metadata.AllowedUsers, "new shard is owned by the caller")
	assert.Empty(t, f.fake.Mutations(), "no install without --install")
}

func TestAddKindResolution(t *testing.T) {
	tests := []struct {
		name        string
		pkg         string
		kind        types.PackageKind
		defaultKind types.PackageKind
		want        types.PackageKind
		skipped     bool
	}{
		{name: "formula only", pkg: "jq", want: types.Formula},
		{name: "cask only", pkg: "slack", want: types.Cask},
		{name: "both with formula default", pkg: "firefox", defaultKind: types.Formula, want: types.Formula},
		{name: "hint wins", pkg: "firefox", kind: types.Formula, want: types.Formula},
		{name: "hint not available", pkg: "jq", kind: types.Cask, skipped: true},
		{name: "unknown", pkg: "nothing-here", skipped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			res, err := packages.Add(context.Background(), packages.AddOptions{
				Env:         f.env,
				Names:       []string{tt.pkg},
				Kind:        tt.kind,
				DefaultKind: tt.defaultKind,
				Shard:       "work",
			})
			require.NoError(t, err)
			if tt.skipped {
				assert.Contains(t, res.Skipped, tt.pkg)
				assert.False(t, res.Saved)
				return
			}
			assert.Equal(t, tt.want, res.Added[tt.pkg])
		})
	}
}

func TestAddSkipsAlreadyDeclared(t *testing.T) {
	f := newFixture(t)
	f.shard(t, "work", `formulae = ["jq"]`)

	res, err := packages.Add(context.Background(), packages.AddOptions{Env: f.env, Names: []string{"jq", "slack"}, Shard: "work"})
	require.NoError(t, err)

	assert.Equal(t, "already declared as formula", res.Skipped["jq"])
	assert.Equal(t, types.Cask, res.Added["slack"])
	m := f.load(t, "work")
	assert.Len(t, m.Formulae, 1)
	assert.True(t, m.Has(types.Cask, "slack"))
}

func TestAddInstallsBeforeWriteBack(t *testing.T) {
	f := newFixture(t)

	res, err := packages.Add(context.Background(), packages.AddOptions{Env: f.env, Names: []string{"jq", "slack"}, Shard: "work", Install: true})
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.True(t, f.fake.Formulae.Has("jq"))
	assert.True(t, f.fake.Casks.Has("slack"))
}

func TestAddFailedInstallSkipsWriteBack(t *testing.T) {
	f := newFixture(t)
	f.fake.Fail(testutil.OpInstallCask, "slack", nil)

	res, err := packages.Add(context.Background(), packages.AddOptions{Env: f.env, Names: []string{"jq", "slack"}, Shard: "work", Install: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrActuator))
	assert.False(t, res.Saved)

	status, err := f.env.Shards.Status("work")
	require.NoError(t, err)
	assert.Equal(t, types.StatusNotFound, status, "nothing written")
}

func TestAddDryRun(t *testing.T) {
	f := newFixture(t)

	res, err := packages.Add(context.Background(), packages.AddOptions{Env: f.env, Names: []string{"jq"}, Shard: "work", Install: true, DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, types.Formula, res.Added["jq"])
	assert.False(t, res.Saved)
	assert.Empty(t, f.fake.Mutations())

	status, _ := f.env.Shards.Status("work")
	assert.Equal(t, types.StatusNotFound, status)
}

func TestAddRejectsInvalidNames(t *testing.T) {
	f := newFixture(t)

	_, err := packages.Add(context.Background(), packages.AddOptions{Env: f.env, Names: []string{"jq", "$(reboot)"}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
	assert.Empty(t, f.fake.Calls)
}

func TestAddToProtectedShard(t *testing.T) {
	f := newFixture(t)
	f.shard(t, "system", "[metadata]\nprotected = true\nallowed_users = [\"root\"]\n")

	_, err := packages.Add(context.Background(), packages.AddOptions{Env: f.env, Names: []string{"jq"}, Shard: "system", Install: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProtected))
	assert.Empty(t, f.fake.Calls, "refused before any brew call")
}

func TestAddThenApplyAll(t *testing.T) {
	f := newFixture(t)

	res, err := packages.Add(context.Background(), packages.AddOptions{Env: f.env, Names: []string{"jq"}, Shard: "work", ApplyAll: true})
	require.NoError(t, err)
	require.NotNil(t, res.Apply)
	assert.Equal(t, apply.TargetAll, res.Apply.Plan.Target)
	assert.True(t, f.fake.Formulae.Has("jq"))
}

func TestRemoveFromOneShard(t *testing.T) {
	f := newFixture(t)
	f.shard(t, "work", "formulae = [\"jq\", \"git\"]\ncasks = [\"slack\"]\n")
	f.fake.WithFormulae("jq", "git").WithCasks("slack")

	res, err := packages.Remove(context.Background(), packages.RemoveOptions{Env: f.env, Names: []string{"jq", "slack", "nope"}, Shard: "work", Uninstall: true})
	require.NoError(t, err)

	assert.Equal(t, map[string]types.PackageKind{"jq": types.Formula, "slack": types.Cask}, res.Removed)
	assert.Equal(t, "not declared", res.Skipped["nope"])
	assert.True(t, res.Saved)

	m := f.load(t, "work")
	assert.False(t, m.Has(types.Formula, "jq"))
	assert.True(t, m.Has(types.Formula, "git"))
	assert.False(t, m.Has(types.Cask, "slack"))
	assert.False(t, f.fake.Formulae.Has("jq"))
	assert.False(t, f.fake.Casks.Has("slack"))
}

func TestRemoveKeepsPackagesDeclaredElsewhere(t *testing.T) {
	f := newFixture(t)
	f.shard(t, "work", "formulae = [\"jq\", \"git\"]\n")
	f.shard(t, "home", "formulae = [\"jq\"]\n")
	testutil.WriteFile(t, f.fs, f.paths.DisabledFile("old"), "formulae = [\"git\"]\n")
	f.fake.WithFormulae("jq", "git")

	res, err := packages.Remove(context.Background(), packages.RemoveOptions{Env: f.env, Names: []string{"jq", "git"}, Shard: "work", Uninstall: true})
	require.NoError(t, err)

	assert.Equal(t, map[string]types.PackageKind{"jq": types.Formula, "git": types.Formula}, res.Removed)
	assert.Equal(t, map[string]string{"jq": "still declared by shard home"}, res.Kept)
	assert.True(t, f.fake.Formulae.Has("jq"), "another active shard still wants jq")
	assert.False(t, f.fake.Formulae.Has("git"), "disabled shards do not count")
	assert.Equal(t, []string{"git"}, f.fake.Targets(testutil.OpUninstallFormula))
	assert.False(t, f.load(t, "work").Has(types.Formula, "jq"))
}

func TestRemoveKindHint(t *testing.T) {
	f := newFixture(t)
	f.shard(t, "work", "formulae = [\"firefox\"]\ncasks = [\"firefox\"]\n")

	res, err := packages.Remove(context.Background(), packages.RemoveOptions{Env: f.env, Names: []string{"firefox"}, Kind: types.Cask, Shard: "work"})
	require.NoError(t, err)
	assert.Equal(t, types.Cask, res.Removed["firefox"])

	m := f.load(t, "work")
	assert.True(t, m.Has(types.Formula, "firefox"))
	assert.False(t, m.Has(types.Cask, "firefox"))
}

func TestRemoveFromAllSkipsProtected(t *testing.T) {
	f := newFixture(t)
	f.shard(t, "a", `formulae = ["git", "jq", "wget"]`)
	f.shard(t, "b", `formulae = ["git", "wget"]`)
	f.shard(t, "system", `formulae = ["git"]`)
	f.fake.WithFormulae("git", "wget")

	res, err := packages.Remove(context.Background(), packages.RemoveOptions{Env: f.env, Names: []string{"git", "wget"}, Shard: apply.TargetAll, Uninstall: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, res.Shards)
	assert.False(t, f.load(t, "a").Has(types.Formula, "git"))
	assert.True(t, f.load(t, "a").Has(types.Formula, "jq"))
	assert.False(t, f.load(t, "b").Has(types.Formula, "git"))
	assert.True(t, f.load(t, "system").Has(types.Formula, "git"))
	assert.Equal(t, "still declared by shard system", res.Kept["git"])
	assert.Equal(t, []string{"wget"}, f.fake.Targets(testutil.OpUninstallFormula), "uninstalled once")
}

func TestRemoveFailedUninstallSkipsWriteBack(t *testing.T) {
	f := newFixture(t)
	f.shard(t, "work", `formulae = ["jq"]`)
	f.fake.Fail(testutil.OpUninstallFormula, "jq", nil)

	res, err := packages.Remove(context.Background(), packages.RemoveOptions{Env: f.env, Names: []string{"jq"}, Shard: "work", Uninstall: true})
	require.Error(t, err)
	assert.False(t, res.Saved)
	assert.True(t, f.load(t, "work").Has(types.Formula, "jq"))
}

func TestRemoveMissingShard(t *testing.T) {
	f := newFixture(t)

	_, err := packages.Remove(context.Background(), packages.RemoveOptions{Env: f.env, Names: []string{"jq"}, Shard: "ghost"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}
