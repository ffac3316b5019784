package shard

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/shard/pkg/brew"
	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/output"
	"github.com/arthur-debert/shard/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t     *testing.T
	home  string
	data  string
	fake  *testutil.FakeActuator
	agree bool
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	root := t.TempDir()
	c := &cli{
		t:     t,
		home:  filepath.Join(root, "home"),
		data:  filepath.Join(root, "data"),
		fake:  testutil.NewFakeActuator(),
		agree: true,
	}
	c.fake.Available = map[string]brew.Availability{
		"jq":      {Formula: true},
		"firefox": {Formula: true, Cask: true},
	}
	t.Setenv("SHARD_HOME", c.home)
	t.Setenv("SHARD_DATA_DIR", c.data)
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("SHARD_USER", "alice")
	return c
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCmd(deps{
		actuator:  c.fake,
		resolver:  c.fake,
		confirmer: output.StaticConfirmer(c.agree),
		console:   io.Discard,
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--output", "text"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestGrowListShatter(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("grow", "work", "-d", "Work tools")
	assert.Contains(t, out, "Created work")
	assert.FileExists(t, filepath.Join(c.home, "shards", "work.toml"))

	out = c.mustRun("list")
	assert.Contains(t, out, "work")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "Work tools")

	out = c.mustRun("shatter", "work", "--yes")
	assert.Contains(t, out, "Deleted work")
	assert.NoFileExists(t, filepath.Join(c.home, "shards", "work.toml"))

	backups, err := os.ReadDir(filepath.Join(c.data, "backups"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	out = c.mustRun("list")
	assert.Contains(t, out, "No shards yet")
}

func TestGrowRejectsDuplicate(t *testing.T) {
	c := newCLI(t)
	c.mustRun("grow", "work")

	_, err := c.run("grow", "work")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}

func TestShatterCancelled(t *testing.T) {
	c := newCLI(t)
	c.mustRun("grow", "work")

	c.agree = false
	out := c.mustRun("shatter", "work")
	assert.Contains(t, out, "Cancelled")
	assert.FileExists(t, filepath.Join(c.home, "shards", "work.toml"))
}

func TestShatterProtectedNeedsForce(t *testing.T) {
	c := newCLI(t)
	c.mustRun("grow", "user")

	_, err := c.run("shatter", "user", "--yes")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProtected))
	assert.FileExists(t, filepath.Join(c.home, "shards", "user.toml"))

	c.mustRun("shatter", "user", "--yes", "--force")
	assert.NoFileExists(t, filepath.Join(c.home, "shards", "user.toml"))
}

func TestDisableEnable(t *testing.T) {
	c := newCLI(t)
	c.mustRun("grow", "work")

	assert.Contains(t, c.mustRun("disable", "work"), "Disabled work")
	assert.Contains(t, c.mustRun("disable", "work"), "work is already disabled")
	assert.FileExists(t, filepath.Join(c.home, "shards", "disabled", "work.toml"))

	assert.Contains(t, c.mustRun("enable", "work"), "Enabled work")
	assert.FileExists(t, filepath.Join(c.home, "shards", "work.toml"))
}

func TestLifecycleDryRunChangesNothing(t *testing.T) {
	c := newCLI(t)
	c.mustRun("grow", "work")

	assert.Contains(t, c.mustRun("disable", "work", "--dry-run"), "Would disable work")
	assert.FileExists(t, filepath.Join(c.home, "shards", "work.toml"))

	assert.Contains(t, c.mustRun("grow", "play", "--dry-run"), "Would create play")
	assert.NoFileExists(t, filepath.Join(c.home, "shards", "play.toml"))
}

func TestAddDryRunWritesNothing(t *testing.T) {
	c := newCLI(t)
	c.mustRun("grow", "work")

	out := c.mustRun("add", "jq", "--shard", "work", "--dry-run")
	assert.Contains(t, out, "Would update work")
	assert.Contains(t, out, "+ jq formula")

	body, err := os.ReadFile(filepath.Join(c.home, "shards", "work.toml"))
	require.NoError(t, err)
	assert.NotContains(t, string(body), "jq")
	assert.Empty(t, c.fake.Mutations())
}

func TestAddAndApply(t *testing.T) {
	c := newCLI(t)
	c.mustRun("grow", "work")

	out := c.mustRun("add", "jq", "firefox", "--shard", "work", "--apply")
	assert.Contains(t, out, "+ firefox cask")
	assert.Contains(t, out, "+ jq formula")
	assert.True(t, c.fake.Formulae.Has("jq"))
	assert.True(t, c.fake.Casks.Has("firefox"))

	out = c.mustRun("remove", "jq", "--shard", "work")
	assert.Contains(t, out, "- jq formula")

	c.mustRun("apply")
	assert.False(t, c.fake.Formulae.Has("jq"))
	assert.True(t, c.fake.Casks.Has("firefox"))
}

func TestAddKindFlagsConflict(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("add", "jq", "--formula", "--cask")
	require.Error(t, err)
}

func TestDiffJSON(t *testing.T) {
	c := newCLI(t)
	c.mustRun("grow", "work")
	c.mustRun("add", "jq", "--shard", "work")

	out := c.mustRun("diff", "-o", "json")
	var plan map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &plan), out)
	assert.Equal(t, "all", plan["target"])
	assert.Empty(t, c.fake.Mutations())
}

func TestUnknownShardSuggests(t *testing.T) {
	c := newCLI(t)
	c.mustRun("grow", "work")

	_, err := c.run("disable", "wrk")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Contains(t, err.Error(), "work")
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	assert.Contains(t, c.mustRun("version"), "shard version dev")
}

func TestNoCommand(t *testing.T) {
	c := newCLI(t)
	_, err := c.run()
	require.Error(t, err)
}

func TestHelpTopics(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("help", "topics")
	assert.Contains(t, out, "manifests")
	assert.Contains(t, out, "--dry-run")

	assert.Contains(t, c.mustRun("help", "protection"), "allowed_users")
	assert.Contains(t, c.mustRun("help", "apply"), "apply")
}

func TestInit(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("init", "--dry-run")
	assert.Contains(t, out, "Would create system")
	assert.NoFileExists(t, filepath.Join(c.home, "shards", "system.toml"))

	out = c.mustRun("init")
	assert.Contains(t, out, "Created system")
	assert.Contains(t, out, "Created user")
	assert.FileExists(t, filepath.Join(c.home, "shards", "system.toml"))
	assert.FileExists(t, filepath.Join(c.home, "shards", "user.toml"))

	c.mustRun("add", "jq", "--shard", "user")
	out = c.mustRun("init")
	assert.Contains(t, out, "user is already initialized")

	c.mustRun("init", "--force")
	body, err := os.ReadFile(filepath.Join(c.home, "shards", "user.toml"))
	require.NoError(t, err)
	assert.NotContains(t, string(body), "jq")

	backups, err := os.ReadDir(filepath.Join(c.data, "backups"))
	require.NoError(t, err)
	assert.Len(t, backups, 2)

	out = c.mustRun("init", "-o", "json")
	var events []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &events), out)
	assert.Len(t, events, 2)
}
