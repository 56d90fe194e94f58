// Package test holds helpers shared by the module's tests.
package test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// Epoch is the fixed start time of fake clocks handed out by FakeClock.
var Epoch = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

// DBPath returns a database path inside a per-test temporary directory.
// The directory itself is not created, so callers exercise directory creation.
func DBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data", "objstore.db")
}

// FakeClock returns a fake clock starting at Epoch.
func FakeClock(t *testing.T) *clockwork.FakeClock {
	t.Helper()
	return clockwork.NewFakeClockAt(Epoch)
}

// AssertFileExists checks if a file exists and fails the test if it doesn't.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.NoError(t, err, "file should exist: %s", path)
}

// AssertFileNotExists checks if a file doesn't exist and fails the test if it does.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.Error(t, err, "file should not exist: %s", path)
	require.True(t, os.IsNotExist(err), "expected file not to exist: %s", path)
}
