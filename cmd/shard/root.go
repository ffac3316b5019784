// Package shard is the cobra command tree of the shard CLI.
package shard

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/arthur-debert/shard/internal/version"
	"github.com/arthur-debert/shard/pkg/cobrax/topics"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicFiles embed.FS

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(deps{})
}

func newRootCmd(d deps) *cobra.Command {
	initTemplateFormatting()

	a := &app{deps: d}

	rootCmd := &cobra.Command{
		Use:     "shard",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVarP(&a.outputFlag, "output", "o", "auto", MsgFlagOutput)
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", MsgFlagConfig)

	rootCmd.AddGroup(&cobra.Group{ID: "reconcile", Title: "RECONCILE:"})
	rootCmd.AddGroup(&cobra.Group{ID: "shards", Title: "SHARDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newApplyCmd(a))
	rootCmd.AddCommand(newDiffCmd(a))
	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newRemoveCmd(a))
	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newGrowCmd(a))
	rootCmd.AddCommand(newShatterCmd(a))
	rootCmd.AddCommand(newDisableCmd(a))
	rootCmd.AddCommand(newEnableCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	if err := installTopics(rootCmd); err != nil {
		panic(err)
	}

	return rootCmd
}

// shardNamesCompletion completes shard names for positional arguments
func shardNamesCompletion(a *app) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if err := a.setup(cmd); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		names, err := a.shards.Names()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

// installTopics adds the embedded help topics to "shard help"
func installTopics(root *cobra.Command) error {
	sub, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		return err
	}
	var renderer topics.Renderer = topics.PlainRenderer{}
	if isTerminal() {
		renderer = topics.GlamourRenderer{}
	}
	tm, err := topics.Load(sub, topics.Options{Renderer: renderer})
	if err != nil {
		return err
	}
	tm.Install(root, "misc")
	return nil
}
