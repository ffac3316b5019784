// Package filesystem provides the types.FS implementations shard runs on:
// the real filesystem and an in-memory one for tests. Both share one
// afero-backed store whose writes replace files atomically.
package filesystem
