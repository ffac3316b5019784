package shard

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/shard/pkg/brew"
	"github.com/arthur-debert/shard/pkg/commands/packages"
	"github.com/arthur-debert/shard/pkg/config"
	"github.com/arthur-debert/shard/pkg/filesystem"
	"github.com/arthur-debert/shard/pkg/logging"
	"github.com/arthur-debert/shard/pkg/output"
	"github.com/arthur-debert/shard/pkg/paths"
	"github.com/arthur-debert/shard/pkg/reconcile"
	"github.com/arthur-debert/shard/pkg/shards"
	"github.com/arthur-debert/shard/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// globals are the persistent flags
type globals struct {
	verbosity  int
	dryRun     bool
	outputFlag string
	configFile string
}

// deps lets tests replace the outside world
type deps struct {
	actuator  brew.Actuator
	resolver  brew.Resolver
	fs        types.FS
	confirmer output.Confirmer
	// console receives log output, stderr by default
	console io.Writer
}

// app is the composition root of one invocation
type app struct {
	globals
	deps

	config   *config.Config
	paths    *paths.Paths
	logger   zerolog.Logger
	closeLog func() error
	shards   *shards.Manager
	driver   *reconcile.Driver
	renderer *output.Renderer
}

// setup builds everything a command needs. Commands that need nothing
// (version, completion, man) never call it.
func (a *app) setup(cmd *cobra.Command) error {
	if a.shards != nil {
		return nil
	}

	format, err := output.ParseFormat(a.outputFlag)
	if err != nil {
		return err
	}
	if out, ok := cmd.OutOrStdout().(*os.File); ok {
		format = output.Resolve(format, out)
	}
	a.renderer = output.New(cmd.OutOrStdout(), format)

	p, err := paths.New("")
	if err != nil {
		return err
	}
	cfgPath, required := p.ConfigFile(), false
	if a.configFile != "" {
		cfgPath, required = paths.ExpandHome(a.configFile), true
	}
	cfg, err := config.Load(cfgPath, required)
	if err != nil {
		return err
	}
	if cfg.Paths.Home != "" {
		if p, err = paths.New(cfg.Paths.Home); err != nil {
			return err
		}
	}
	a.paths = p.Override(cfg.Paths.ShardsDir, cfg.Paths.DisabledDir, cfg.Paths.BackupsDir)
	a.config = cfg

	console := a.console
	if console == nil {
		console = os.Stderr
	}
	a.logger, a.closeLog = logging.New(logging.Options{
		Verbosity: a.verbosity,
		Console:   console,
		LogFile:   a.paths.LogFile(),
		NoColor:   format != output.FormatTerminal,
	})
	logging.LogCommand(a.logger, cmd.CommandPath(), os.Args[1:])
	if cfg.Source != "" {
		a.logger.Debug().Str("path", cfg.Source).Msg("Loaded configuration")
	}

	if a.fs == nil {
		a.fs = filesystem.NewOS()
	}
	if a.actuator == nil {
		cli := brew.NewCLI(brew.Options{Path: cfg.Brew.Path, Timeout: cfg.Brew.Timeout, Logger: a.logger})
		a.actuator = cli
		if a.resolver == nil {
			a.resolver = cli
		}
	}
	if a.confirmer == nil {
		a.confirmer = output.PromptConfirmer{}
	}

	a.shards = shards.New(shards.Options{
		FS:             a.fs,
		Paths:          a.paths,
		ProtectedNames: cfg.Protection.Names,
		User:           config.CurrentUser(),
		Logger:         a.logger,
	})
	a.driver = reconcile.New(reconcile.Options{
		Actuator:         a.actuator,
		Logger:           a.logger,
		CriticalPackages: cfg.Apply.CriticalPackages,
		UninstallCasks:   cfg.Apply.UninstallCasks,
		PruneAll:         cfg.Brew.CleanupPruneAll,
	})
	return nil
}

func (a *app) close() {
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}

func (a *app) env() packages.Env {
	return packages.Env{
		Shards:   a.shards,
		Actuator: a.actuator,
		Resolver: a.resolver,
		Driver:   a.driver,
		Logger:   a.logger,
	}
}

func (a *app) defaultKind() (types.PackageKind, error) {
	kind, err := types.ParseKind(a.config.Add.DefaultKind)
	if err != nil {
		return "", fmt.Errorf(MsgErrUnknownKind, a.config.Add.DefaultKind)
	}
	return kind, nil
}

// dryRunNotice is only printed for people
func (a *app) dryRunNotice(cmd *cobra.Command) {
	if a.dryRun && !a.renderer.Format().Structured() {
		fmt.Fprintln(cmd.ErrOrStderr(), MsgDryRunNotice)
	}
}
