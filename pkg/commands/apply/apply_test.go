package apply_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/shard/pkg/commands/apply"
	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/filesystem"
	"github.com/arthur-debert/shard/pkg/logging"
	"github.com/arthur-debert/shard/pkg/paths"
	"github.com/arthur-debert/shard/pkg/reconcile"
	"github.com/arthur-debert/shard/pkg/shards"
	"github.com/arthur-debert/shard/pkg/testutil"
)

func setup(t *testing.T, fake *testutil.FakeActuator) apply.Options {
	t.Helper()
	p, err := paths.New("/cfg/shard")
	require.NoError(t, err)
	p = p.Override("", "", "/data/backups")
	fs := filesystem.NewMemory()

	testutil.WriteFile(t, fs, p.ShardFile("base"), `formulae = ["git"]`)
	testutil.WriteFile(t, fs, p.ShardFile("work"), "formulae = [\"jq\"]\ncasks = [\"firefox\"]\n")
	testutil.WriteFile(t, fs, p.DisabledFile("old"), `formulae = ["wget"]`)

	return apply.Options{
		Shards: shards.New(shards.Options{FS: fs, Paths: p, User: "alice", Logger: logging.Nop()}),
		Driver: reconcile.New(reconcile.Options{Actuator: fake, Logger: logging.Nop(), UninstallCasks: true}),
		Logger: logging.Nop(),
	}
}

func TestApplyAllMergesActiveShards(t *testing.T) {
	fake := testutil.NewFakeActuator().WithFormulae("git", "wget")
	opts := setup(t, fake)

	result, err := apply.Apply(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, result.Err())

	assert.Equal(t, apply.TargetAll, result.Plan.Target)
	assert.True(t, fake.Formulae.Has("jq"))
	assert.True(t, fake.Casks.Has("firefox"))
	assert.False(t, fake.Formulae.Has("wget"), "declared only by a disabled shard")
}

func TestApplyAllAdditiveOnly(t *testing.T) {
	fake := testutil.NewFakeActuator().WithFormulae("git", "wget")
	opts := setup(t, fake)
	opts.AdditiveOnly = true

	result, err := apply.Apply(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, result.Plan.AdditiveOnly)
	assert.True(t, fake.Formulae.Has("wget"))
}

func TestApplySingleShardIsAdditive(t *testing.T) {
	fake := testutil.NewFakeActuator().WithFormulae("git", "wget")
	opts := setup(t, fake)
	opts.Target = "work"

	req, err := apply.Request(opts)
	require.NoError(t, err)
	assert.True(t, req.AdditiveOnly)
	assert.Equal(t, "work", req.Target)

	result, err := apply.Apply(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, result.Plan.Formulae.ToUninstall)
	assert.True(t, fake.Formulae.Has("wget"))
	assert.True(t, fake.Formulae.Has("git"))
	assert.True(t, fake.Formulae.Has("jq"))
}

func TestDiffChangesNothing(t *testing.T) {
	fake := testutil.NewFakeActuator().WithFormulae("git", "wget")
	opts := setup(t, fake)

	plan, err := apply.Diff(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"jq"}, plan.Formulae.ToInstall)
	assert.Equal(t, []string{"wget"}, plan.Formulae.ToUninstall)
	assert.Empty(t, fake.Mutations())
}

func TestApplyUnknownShard(t *testing.T) {
	fake := testutil.NewFakeActuator()
	opts := setup(t, fake)
	opts.Target = "wrok"

	_, err := apply.Apply(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Empty(t, fake.Calls)
}
