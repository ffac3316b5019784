// Package paths provides centralized path handling for shard.
//
// It implements XDG Base Directory compliance and is the single place that
// knows where manifests, disabled manifests, backups, the user config file
// and the log file live.
//
// # Environment Variables
//
//   - SHARD_HOME: root of the shard tree (default: $XDG_CONFIG_HOME/shard)
//   - SHARD_DATA_DIR: override for the data directory holding backups
//     (default: $XDG_DATA_HOME/shard)
//
// # Layout
//
//	<home>/config.toml            user configuration
//	<home>/shards/<name>.toml     active shards
//	<home>/shards/disabled/       disabled shards
//	<data>/backups/               timestamped backups
//	$XDG_STATE_HOME/shard/shard.log
package paths
