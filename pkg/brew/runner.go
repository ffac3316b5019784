package brew

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/arthur-debert/shard/pkg/logging"
	"github.com/rs/zerolog"
)

// Runner executes one external command and returns its stdout
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RunError carries the captured stderr and exit code of a failed command
type RunError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RunError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, msg)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the shell could not find the command
func (e *RunError) NotFound() bool {
	return e.ExitCode == 127 || errors.Is(e.Err, exec.ErrNotFound)
}

// waitDelay bounds how long Run waits for output pipes after the process
// group was killed
const waitDelay = 2 * time.Second

// ExecRunner runs commands with os/exec. When ctx ends the whole process
// group is killed, not only the direct child.
type ExecRunner struct {
	logger zerolog.Logger
}

// NewExecRunner creates a runner that logs every command at debug level
func NewExecRunner(logger zerolog.Logger) *ExecRunner {
	return &ExecRunner{logger: logging.Component(logger, "brew.runner")}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	logging.LogCommand(r.logger, name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	setProcGroup(cmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Cancel = func() error {
		return killProcGroup(cmd)
	}
	cmd.WaitDelay = waitDelay

	err := cmd.Run()

	if stderr.Len() > 0 {
		r.logger.Debug().
			Str("output", stderr.String()).
			Msg("Command stderr")
	}

	if err != nil {
		runErr := &RunError{
			Command:  name + " " + strings.Join(args, " "),
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			runErr.ExitCode = exitErr.ExitCode()
		}
		return stdout.Bytes(), runErr
	}
	return stdout.Bytes(), nil
}
