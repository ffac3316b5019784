package shard

import (
	_ "embed"
	"strings"
)

// Short messages
const (
	MsgRootShort       = "Desired-state Homebrew manifests"
	MsgApplyShort      = "Reconcile the system against one shard or all of them"
	MsgDiffShort       = "Show what apply would change"
	MsgDiffLong        = "Diff builds the same plan as apply, with the same arguments, without running anything."
	MsgGrowShort       = "Create a new shard"
	MsgShatterShort    = "Delete a shard after backing it up"
	MsgDisableShort    = "Disable a shard without deleting it"
	MsgEnableShort     = "Enable a disabled shard"
	MsgAddShort        = "Add packages to a shard"
	MsgRemoveShort     = "Remove packages from shards"
	MsgListShort       = "List shards"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"
	MsgInitShort       = "Create the protected system and user shards"

	// Prompts and notices
	MsgConfirmShatter   = "Delete shard %s? A backup is kept in %s"
	MsgShatterCancelled = "Cancelled, shard %s was not deleted.\n"
	MsgShatterProtected = "shard %s is protected: use --force to delete it"
	MsgDryRunNotice     = "DRY RUN MODE - No changes were made"
	MsgVersionFormat    = "shard version %s\n  commit: %s\n  built:  %s\n"
	MsgManWritten       = "Man pages written to %s\n"
	MsgErrNoCommand     = "no command specified"
	MsgErrKindConflict  = "--formula and --cask are mutually exclusive"
	MsgErrUnknownKind   = "add.default_kind must be formula or cask, got %q"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun       = "Preview changes without executing them"
	MsgFlagOutput       = "Output format: auto, term, text, json or yaml"
	MsgFlagConfig       = "Config file (default $SHARD_HOME/config.toml)"
	MsgFlagSkipCleanup  = "Do not run 'brew cleanup' after the pass"
	MsgFlagAdditiveOnly = "Never uninstall packages that no shard declares"
	MsgFlagDescription  = "Description of the new shard"
	MsgFlagForce        = "Allow deleting a protected shard"
	MsgFlagYes          = "Do not ask for confirmation"
	MsgFlagFormula      = "Treat names as formulae"
	MsgFlagCask         = "Treat names as casks"
	MsgFlagShard        = "Target shard"
	MsgFlagRemoveShard  = "Target shard, or 'all' for every active shard"
	MsgFlagInstall      = "Install the packages before writing the shard"
	MsgFlagUninstall    = "Uninstall the packages before writing the shards"
	MsgFlagApplyAll     = "Run a merged apply afterwards"
	MsgFlagManDir       = "Directory to write man pages to"
	MsgFlagInitForce    = "Replace existing system and user shards with empty ones"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/apply-long.txt
	msgApplyLongRaw string
	MsgApplyLong    = strings.TrimSpace(msgApplyLongRaw)

	//go:embed msgs/apply-example.txt
	msgApplyExampleRaw string
	MsgApplyExample    = strings.TrimRight(msgApplyExampleRaw, "\n")

	//go:embed msgs/add-long.txt
	msgAddLongRaw string
	MsgAddLong    = strings.TrimSpace(msgAddLongRaw)

	//go:embed msgs/remove-long.txt
	msgRemoveLongRaw string
	MsgRemoveLong    = strings.TrimSpace(msgRemoveLongRaw)

	//go:embed msgs/usage-template.txt
	MsgUsageTemplate string
)
