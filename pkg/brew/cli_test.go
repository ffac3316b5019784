package brew_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/arthur-debert/shard/pkg/brew"
	shardErrors "github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRunner records the argument vectors brew is called with
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	called := m.Called(name, args)
	out, _ := called.Get(0).([]byte)
	return out, called.Error(1)
}

func newCLI(r brew.Runner) *brew.CLI {
	return brew.NewCLI(brew.Options{Path: "brew", Runner: r, Logger: logging.Nop()})
}

func TestListQueries(t *testing.T) {
	r := new(MockRunner)
	r.On("Run", "brew", []string{"list", "--formula"}).Return([]byte("git\n  wget \n\njq\n"), nil)
	r.On("Run", "brew", []string{"list", "--cask"}).Return([]byte("firefox\n"), nil)
	r.On("Run", "brew", []string{"tap"}).Return([]byte("homebrew/core\nhomebrew/cask\n"), nil)
	r.On("Run", "brew", []string{"list", "--installed-as-dependency"}).Return([]byte(""), nil)

	c := newCLI(r)
	ctx := context.Background()

	formulae, err := c.ListFormulae(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "wget", "jq"}, formulae)

	casks, err := c.ListCasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"firefox"}, casks)

	taps, err := c.ListTaps(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"homebrew/core", "homebrew/cask"}, taps)

	deps, err := c.ListDependencies(ctx)
	require.NoError(t, err)
	assert.Empty(t, deps)

	r.AssertExpectations(t)
}

func TestMutatingArguments(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(c *brew.CLI) error
		want []string
	}{
		{"tap", func(c *brew.CLI) error { return c.AddTap(ctx, "homebrew/cask-fonts") }, []string{"tap", "homebrew/cask-fonts"}},
		{"install formula", func(c *brew.CLI) error { return c.InstallFormula(ctx, "ffmpeg", []string{"--with-fdk-aac"}) }, []string{"install", "ffmpeg", "--with-fdk-aac"}},
		{"install cask", func(c *brew.CLI) error { return c.InstallCask(ctx, "firefox", nil) }, []string{"install", "--cask", "firefox"}},
		{"upgrade formula", func(c *brew.CLI) error { return c.UpgradeFormula(ctx, "git", nil) }, []string{"upgrade", "git"}},
		{"upgrade cask", func(c *brew.CLI) error { return c.UpgradeCask(ctx, "iterm2", []string{"--no-quarantine"}) }, []string{"upgrade", "--cask", "iterm2", "--no-quarantine"}},
		{"uninstall formula", func(c *brew.CLI) error { return c.UninstallFormula(ctx, "wget", true) }, []string{"uninstall", "--formula", "wget", "--force"}},
		{"uninstall cask", func(c *brew.CLI) error { return c.UninstallCask(ctx, "slack", false) }, []string{"uninstall", "--cask", "slack"}},
		{"batch formulae", func(c *brew.CLI) error { return c.BatchInstallFormulae(ctx, []string{"jq", "node@20"}) }, []string{"install", "jq", "node@20"}},
		{"batch casks", func(c *brew.CLI) error { return c.BatchInstallCasks(ctx, []string{"firefox"}) }, []string{"install", "--cask", "firefox"}},
		{"cleanup", func(c *brew.CLI) error { return c.Cleanup(ctx, false) }, []string{"cleanup"}},
		{"cleanup prune", func(c *brew.CLI) error { return c.Cleanup(ctx, true) }, []string{"cleanup", "--prune=all"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(MockRunner)
			r.On("Run", "brew", tt.want).Return([]byte(nil), nil).Once()

			require.NoError(t, tt.call(newCLI(r)))
			r.AssertExpectations(t)
		})
	}
}

func TestEmptyBatchDoesNotRun(t *testing.T) {
	r := new(MockRunner)
	require.NoError(t, newCLI(r).BatchInstallFormulae(context.Background(), nil))
	r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestValidationBeforeExecution(t *testing.T) {
	ctx := context.Background()
	r := new(MockRunner)
	c := newCLI(r)

	errs := []error{
		c.InstallFormula(ctx, "git; rm -rf /", nil),
		c.InstallCask(ctx, "-firefox", nil),
		c.AddTap(ctx, "not-a-tap"),
		c.UpgradeFormula(ctx, "git", []string{"--prefix=$(whoami)"}),
		c.BatchInstallCasks(ctx, []string{"ok", "bad name"}),
		c.UninstallFormula(ctx, "", true),
	}
	for _, err := range errs {
		require.Error(t, err)
		assert.True(t, shardErrors.IsErrorCode(err, shardErrors.ErrValidation), err.Error())
	}
	r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestFailureIsActuatorError(t *testing.T) {
	r := new(MockRunner)
	r.On("Run", "brew", []string{"install", "wget"}).
		Return([]byte(nil), &brew.RunError{Command: "brew install wget", ExitCode: 1, Stderr: "Error: No available formula", Err: errors.New("exit status 1")})

	err := newCLI(r).InstallFormula(context.Background(), "wget", nil)
	require.Error(t, err)
	assert.True(t, shardErrors.IsErrorCode(err, shardErrors.ErrActuator))
	assert.Contains(t, err.Error(), "brew install wget")
	assert.Equal(t, 1, shardErrors.GetErrorDetails(err)["exit_code"])
}

// blockingRunner waits for the context like a hung brew process would
type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeout(t *testing.T) {
	c := brew.NewCLI(brew.Options{Runner: blockingRunner{}, Timeout: 20 * time.Millisecond, Logger: logging.Nop()})

	start := time.Now()
	err := c.UpgradeFormula(context.Background(), "git", nil)
	require.Error(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, shardErrors.IsErrorCode(err, shardErrors.ErrActuator))
	assert.Equal(t, true, shardErrors.GetErrorDetails(err)["timeout"])
}

func TestTimeoutKillsChildProcesses(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	// sh forks sleep, which inherits the output pipes
	script := filepath.Join(t.TempDir(), "brew")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\necho done\n"), 0755))

	c := brew.NewCLI(brew.Options{Path: script, Timeout: 100 * time.Millisecond, Logger: logging.Nop()})

	start := time.Now()
	err := c.UpgradeFormula(context.Background(), "git", nil)
	require.Error(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, shardErrors.IsErrorCode(err, shardErrors.ErrActuator))
	assert.Equal(t, true, shardErrors.GetErrorDetails(err)["timeout"])
}

func TestAvailability(t *testing.T) {
	notFound := &brew.RunError{ExitCode: 1, Err: errors.New("exit status 1")}

	tests := []struct {
		name        string
		formulaErr  error
		caskErr     error
		want        brew.Availability
		wantErrCode shardErrors.ErrorCode
	}{
		{"both", nil, nil, brew.Availability{Formula: true, Cask: true}, ""},
		{"cask only", notFound, nil, brew.Availability{Cask: true}, ""},
		{"formula only", nil, notFound, brew.Availability{Formula: true}, ""},
		{"neither", notFound, notFound, brew.Availability{}, ""},
		{"missing brew", &brew.RunError{ExitCode: 127, Err: exec.ErrNotFound}, nil, brew.Availability{}, shardErrors.ErrActuator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(MockRunner)
			r.On("Run", "brew", []string{"info", "--formula", "firefox"}).Return([]byte(nil), tt.formulaErr)
			r.On("Run", "brew", []string{"info", "--cask", "firefox"}).Return([]byte(nil), tt.caskErr)

			got, err := newCLI(r).Availability(context.Background(), "firefox")
			if tt.wantErrCode != "" {
				require.Error(t, err)
				assert.True(t, shardErrors.IsErrorCode(err, tt.wantErrCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
