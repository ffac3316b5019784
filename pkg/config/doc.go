// Package config handles configuration management for shard.
// It layers embedded defaults, an optional user TOML file and SHARD_
// environment variables, then decodes and validates the result.
package config
