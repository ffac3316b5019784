package shard

import (
	"fmt"
	"os"

	"github.com/arthur-debert/shard/internal/version"
	"github.com/arthur-debert/shard/pkg/commands/apply"
	"github.com/arthur-debert/shard/pkg/commands/packages"
	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/output"
	"github.com/arthur-debert/shard/pkg/shards"
	"github.com/arthur-debert/shard/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newApplyCmd(a *app) *cobra.Command {
	var skipCleanup, additiveOnly bool

	cmd := &cobra.Command{
		Use:               "apply [shard|all]",
		Short:             MsgApplyShort,
		Long:              MsgApplyLong,
		Example:           MsgApplyExample,
		GroupID:           "reconcile",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: shardNamesCompletion(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			opts := a.applyOptions(args, skipCleanup, additiveOnly)

			if a.dryRun {
				plan, err := apply.Diff(cmd.Context(), opts)
				if err != nil {
					return err
				}
				a.dryRunNotice(cmd)
				return a.renderer.Plan(plan)
			}

			result, err := apply.Apply(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if err := a.renderer.Result(result); err != nil {
				return err
			}
			return result.Err()
		},
	}
	cmd.Flags().BoolVar(&skipCleanup, "skip-cleanup", false, MsgFlagSkipCleanup)
	cmd.Flags().BoolVar(&additiveOnly, "additive-only", false, MsgFlagAdditiveOnly)
	return cmd
}

func newDiffCmd(a *app) *cobra.Command {
	var skipCleanup, additiveOnly bool

	cmd := &cobra.Command{
		Use:               "diff [shard|all]",
		Short:             MsgDiffShort,
		Long:              MsgDiffLong,
		GroupID:           "reconcile",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: shardNamesCompletion(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			plan, err := apply.Diff(cmd.Context(), a.applyOptions(args, skipCleanup, additiveOnly))
			if err != nil {
				return err
			}
			return a.renderer.Plan(plan)
		},
	}
	cmd.Flags().BoolVar(&skipCleanup, "skip-cleanup", false, MsgFlagSkipCleanup)
	cmd.Flags().BoolVar(&additiveOnly, "additive-only", false, MsgFlagAdditiveOnly)
	return cmd
}

func (a *app) applyOptions(args []string, skipCleanup, additiveOnly bool) apply.Options {
	target := apply.TargetAll
	if len(args) == 1 {
		target = args[0]
	}
	return apply.Options{
		Shards:       a.shards,
		Driver:       a.driver,
		Logger:       a.logger,
		Target:       target,
		AdditiveOnly: additiveOnly,
		SkipCleanup:  skipCleanup,
	}
}

// kindFlags resolves --formula and --cask into a kind hint
func kindFlags(formula, cask bool) (types.PackageKind, error) {
	switch {
	case formula && cask:
		return "", fmt.Errorf(MsgErrKindConflict)
	case formula:
		return types.Formula, nil
	case cask:
		return types.Cask, nil
	}
	return "", nil
}

func newAddCmd(a *app) *cobra.Command {
	var (
		formula, cask     bool
		shard             string
		install, applyAll bool
	)

	cmd := &cobra.Command{
		Use:     "add <package>...",
		Short:   MsgAddShort,
		Long:    MsgAddLong,
		GroupID: "shards",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindFlags(formula, cask)
			if err != nil {
				return err
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			defaultKind, err := a.defaultKind()
			if err != nil {
				return err
			}

			res, err := packages.Add(cmd.Context(), packages.AddOptions{
				Env:         a.env(),
				Names:       args,
				Kind:        kind,
				DefaultKind: defaultKind,
				Shard:       shard,
				DryRun:      a.dryRun,
				Install:     install,
				ApplyAll:    applyAll,
			})
			if res != nil {
				if rerr := a.renderer.Change(res); rerr != nil && err == nil {
					err = rerr
				}
			}
			a.dryRunNotice(cmd)
			return err
		},
	}
	cmd.Flags().BoolVar(&formula, "formula", false, MsgFlagFormula)
	cmd.Flags().BoolVar(&cask, "cask", false, MsgFlagCask)
	cmd.Flags().StringVarP(&shard, "shard", "s", packages.DefaultShard, MsgFlagShard)
	cmd.Flags().BoolVar(&install, "install", false, MsgFlagInstall)
	cmd.Flags().BoolVar(&applyAll, "apply", false, MsgFlagApplyAll)
	cmd.MarkFlagsMutuallyExclusive("formula", "cask")
	_ = cmd.RegisterFlagCompletionFunc("shard", shardNamesCompletion(a))
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var (
		formula, cask       bool
		shard               string
		uninstall, applyAll bool
	)

	cmd := &cobra.Command{
		Use:     "remove <package>...",
		Aliases: []string{"rm"},
		Short:   MsgRemoveShort,
		Long:    MsgRemoveLong,
		GroupID: "shards",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindFlags(formula, cask)
			if err != nil {
				return err
			}
			if err := a.setup(cmd); err != nil {
				return err
			}

			res, err := packages.Remove(cmd.Context(), packages.RemoveOptions{
				Env:       a.env(),
				Names:     args,
				Kind:      kind,
				Shard:     shard,
				DryRun:    a.dryRun,
				Uninstall: uninstall,
				ApplyAll:  applyAll,
			})
			if res != nil {
				if rerr := a.renderer.Change(res); rerr != nil && err == nil {
					err = rerr
				}
			}
			a.dryRunNotice(cmd)
			return err
		},
	}
	cmd.Flags().BoolVar(&formula, "formula", false, MsgFlagFormula)
	cmd.Flags().BoolVar(&cask, "cask", false, MsgFlagCask)
	cmd.Flags().StringVarP(&shard, "shard", "s", packages.DefaultShard, MsgFlagRemoveShard)
	cmd.Flags().BoolVar(&uninstall, "uninstall", false, MsgFlagUninstall)
	cmd.Flags().BoolVar(&applyAll, "apply", false, MsgFlagApplyAll)
	cmd.MarkFlagsMutuallyExclusive("formula", "cask")
	_ = cmd.RegisterFlagCompletionFunc("shard", shardNamesCompletion(a))
	return cmd
}

func newGrowCmd(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:     "grow <name>",
		Short:   MsgGrowShort,
		GroupID: "shards",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			name := args[0]
			if a.dryRun {
				if err := a.shards.Available(name); err != nil {
					return err
				}
				a.dryRunNotice(cmd)
				return a.renderer.Event(output.Event{Shard: name, Action: "would create", Changed: true, Path: a.paths.ShardFile(name)})
			}
			rec, err := a.shards.Create(name, description)
			if err != nil {
				return err
			}
			return a.renderer.Event(output.Event{Shard: name, Action: "created", Changed: true, Path: rec.Path})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", MsgFlagDescription)
	return cmd
}

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "init",
		Short:   MsgInitShort,
		GroupID: "shards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			entries, err := a.shards.Init(shards.InitOptions{Force: force, DryRun: a.dryRun})
			if err != nil {
				return err
			}

			events := make([]output.Event, 0, len(entries))
			for _, e := range entries {
				ev := output.Event{Shard: e.Name, Action: string(e.Action), Changed: e.Action != shards.InitKept, Path: e.Path}
				if !ev.Changed {
					ev.Action = "initialized"
					ev.Path = ""
				} else if a.dryRun {
					ev.Action = map[shards.InitAction]string{
						shards.InitCreated:     "would create",
						shards.InitOverwritten: "would overwrite",
					}[e.Action]
				}
				events = append(events, ev)
			}
			a.dryRunNotice(cmd)
			return a.renderer.Events(events)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagInitForce)
	return cmd
}

func newShatterCmd(a *app) *cobra.Command {
	var force, yes bool

	cmd := &cobra.Command{
		Use:               "shatter <name>",
		Short:             MsgShatterShort,
		GroupID:           "shards",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: shardNamesCompletion(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			name := args[0]
			rec, err := a.shards.Get(name)
			if err != nil {
				return err
			}
			if rec.Protected && !force {
				return errors.Newf(errors.ErrProtected, MsgShatterProtected, name).WithDetail("shard", name)
			}
			if a.dryRun {
				a.dryRunNotice(cmd)
				return a.renderer.Event(output.Event{Shard: name, Action: "would delete", Changed: true, Path: rec.Path})
			}

			if !yes {
				ok, err := a.confirmer.Confirm(fmt.Sprintf(MsgConfirmShatter, name, a.paths.BackupsDir()))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), MsgShatterCancelled, name)
					return nil
				}
			}

			if err := a.shards.Delete(name, force); err != nil {
				return err
			}
			return a.renderer.Event(output.Event{Shard: name, Action: "deleted", Changed: true, Path: rec.Path})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	return cmd
}

func newDisableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "disable <name>",
		Short:             MsgDisableShort,
		GroupID:           "shards",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: shardNamesCompletion(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			name := args[0]
			if a.dryRun {
				rec, err := a.shards.Get(name)
				if err != nil {
					return err
				}
				a.dryRunNotice(cmd)
				if rec.Status != types.StatusActive {
					return a.renderer.Event(output.Event{Shard: name, Action: "disabled"})
				}
				return a.renderer.Event(output.Event{Shard: name, Action: "would disable", Changed: true})
			}
			changed, err := a.shards.Disable(name)
			if err != nil {
				return err
			}
			return a.renderer.Event(output.Event{Shard: name, Action: "disabled", Changed: changed})
		},
	}
}

func newEnableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "enable <name>",
		Short:             MsgEnableShort,
		GroupID:           "shards",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: shardNamesCompletion(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			name := args[0]
			if a.dryRun {
				rec, err := a.shards.Get(name)
				if err != nil {
					return err
				}
				a.dryRunNotice(cmd)
				if rec.Status != types.StatusDisabled {
					return a.renderer.Event(output.Event{Shard: name, Action: "enabled"})
				}
				return a.renderer.Event(output.Event{Shard: name, Action: "would enable", Changed: true})
			}
			changed, err := a.shards.Enable(name)
			if err != nil {
				return err
			}
			return a.renderer.Event(output.Event{Shard: name, Action: "enabled", Changed: changed})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		GroupID: "shards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			records, err := a.shards.List()
			if err != nil {
				return err
			}
			return a.renderer.Shards(records)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: MsgCompletionShort,
		Long: `To load completions:

Bash:
  $ source <(shard completion bash)

Zsh:
  $ shard completion zsh > "${fpath[1]}/_shard"

Fish:
  $ shard completion fish | source

PowerShell:
  PS> shard completion powershell | Out-String | Invoke-Expression
`,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			header := &doc.GenManHeader{Title: "SHARD", Section: "1", Source: "shard " + version.Version}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgManWritten, dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "man", MsgFlagManDir)
	return cmd
}
