package brew

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	shardErrors "github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single brew invocation
const DefaultTimeout = 10 * time.Minute

// CLI drives the brew binary
type CLI struct {
	path    string
	timeout time.Duration
	runner  Runner
	logger  zerolog.Logger
}

// Options configures a CLI actuator. Zero values pick the defaults.
type Options struct {
	Path    string
	Timeout time.Duration
	Runner  Runner
	Logger  zerolog.Logger
}

// NewCLI returns an actuator running brew through opts.Runner
func NewCLI(opts Options) *CLI {
	c := &CLI{
		path:    opts.Path,
		timeout: opts.Timeout,
		runner:  opts.Runner,
		logger:  logging.Component(opts.Logger, "brew"),
	}
	if c.path == "" {
		c.path = "brew"
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.runner == nil {
		c.runner = NewExecRunner(opts.Logger)
	}
	return c
}

var (
	_ Actuator = (*CLI)(nil)
	_ Resolver = (*CLI)(nil)
)

func (c *CLI) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.runner.Run(ctx, c.path, args...)
	if err == nil {
		return out, nil
	}

	command := "brew " + strings.Join(args, " ")
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out, shardErrors.Wrapf(err, shardErrors.ErrActuator, "%s timed out after %s", command, c.timeout).
			WithDetail("command", command).
			WithDetail("timeout", true)
	}

	shardErr := shardErrors.Wrapf(err, shardErrors.ErrActuator, "%s failed", command).
		WithDetail("command", command)
	var runErr *RunError
	if errors.As(err, &runErr) {
		shardErr.WithDetail("exit_code", runErr.ExitCode)
		if runErr.NotFound() {
			shardErr.Message = "brew executable not found at " + c.path
		}
	}
	return out, shardErr
}

func (c *CLI) list(ctx context.Context, args ...string) ([]string, error) {
	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseLines(out), nil
}

func parseLines(out []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	return names
}

func (c *CLI) ListFormulae(ctx context.Context) ([]string, error) {
	return c.list(ctx, "list", "--formula")
}

func (c *CLI) ListCasks(ctx context.Context) ([]string, error) {
	return c.list(ctx, "list", "--cask")
}

func (c *CLI) ListTaps(ctx context.Context) ([]string, error) {
	return c.list(ctx, "tap")
}

func (c *CLI) ListDependencies(ctx context.Context) ([]string, error) {
	return c.list(ctx, "list", "--installed-as-dependency")
}

func (c *CLI) AddTap(ctx context.Context, tap string) error {
	if err := ValidateTap(tap); err != nil {
		return err
	}
	_, err := c.run(ctx, "tap", tap)
	return err
}

func (c *CLI) InstallFormula(ctx context.Context, name string, options []string) error {
	return c.single(ctx, "install", false, name, options)
}

func (c *CLI) InstallCask(ctx context.Context, name string, options []string) error {
	return c.single(ctx, "install", true, name, options)
}

func (c *CLI) UpgradeFormula(ctx context.Context, name string, options []string) error {
	return c.single(ctx, "upgrade", false, name, options)
}

func (c *CLI) UpgradeCask(ctx context.Context, name string, options []string) error {
	return c.single(ctx, "upgrade", true, name, options)
}

func (c *CLI) single(ctx context.Context, verb string, cask bool, name string, options []string) error {
	if err := ValidatePackage(name); err != nil {
		return err
	}
	if err := ValidateOptions(options); err != nil {
		return err
	}
	args := []string{verb}
	if cask {
		args = append(args, "--cask")
	}
	args = append(args, name)
	args = append(args, options...)
	_, err := c.run(ctx, args...)
	return err
}

func (c *CLI) UninstallFormula(ctx context.Context, name string, force bool) error {
	return c.uninstall(ctx, "--formula", name, force)
}

func (c *CLI) UninstallCask(ctx context.Context, name string, force bool) error {
	return c.uninstall(ctx, "--cask", name, force)
}

func (c *CLI) uninstall(ctx context.Context, kindFlag, name string, force bool) error {
	if err := ValidatePackage(name); err != nil {
		return err
	}
	args := []string{"uninstall", kindFlag, name}
	if force {
		args = append(args, "--force")
	}
	_, err := c.run(ctx, args...)
	return err
}

func (c *CLI) BatchInstallFormulae(ctx context.Context, names []string) error {
	return c.batch(ctx, false, names)
}

func (c *CLI) BatchInstallCasks(ctx context.Context, names []string) error {
	return c.batch(ctx, true, names)
}

func (c *CLI) batch(ctx context.Context, cask bool, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if err := ValidatePackages(names); err != nil {
		return err
	}
	args := []string{"install"}
	if cask {
		args = append(args, "--cask")
	}
	args = append(args, names...)
	_, err := c.run(ctx, args...)
	return err
}

func (c *CLI) Cleanup(ctx context.Context, pruneAll bool) error {
	args := []string{"cleanup"}
	if pruneAll {
		args = append(args, "--prune=all")
	}
	_, err := c.run(ctx, args...)
	return err
}

// Availability runs `brew info` for both kinds. A failed lookup means the
// package is not available as that kind; timeouts and a missing brew
// binary are reported as errors.
func (c *CLI) Availability(ctx context.Context, name string) (Availability, error) {
	if err := ValidatePackage(name); err != nil {
		return Availability{}, err
	}

	var avail Availability
	for _, q := range []struct {
		flag string
		dst  *bool
	}{
		{"--formula", &avail.Formula},
		{"--cask", &avail.Cask},
	} {
		_, err := c.run(ctx, "info", q.flag, name)
		if err == nil {
			*q.dst = true
			continue
		}
		if fatalLookup(err) {
			return Availability{}, err
		}
		c.logger.Debug().Str("package", name).Str("kind", q.flag).Msg("Package not available")
	}
	return avail, nil
}

func fatalLookup(err error) bool {
	if details := shardErrors.GetErrorDetails(err); details != nil {
		if timeout, _ := details["timeout"].(bool); timeout {
			return true
		}
	}
	var runErr *RunError
	return errors.As(err, &runErr) && runErr.NotFound()
}
