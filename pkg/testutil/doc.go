// Package testutil holds test doubles and fixtures shared by package tests.
//
// FakeActuator stands in for Homebrew: it keeps installed state in memory,
// records every call and can be told to fail an operation for one target.
// Manifest and WriteFile build shard fixtures on any types.FS.
package testutil
