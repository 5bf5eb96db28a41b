// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFromCreatesDefault verifies that a missing config file is created
// with default values on first load.
func TestLoadFromCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tracker.yaml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 12310, cfg.Server.Port)
	assert.Equal(t, 12311, cfg.Server.MetricsPort)
	assert.Equal(t, "info", cfg.Logging.Level)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

// TestLoadFromPartialFile verifies that fields absent from the file keep
// their defaults.
func TestLoadFromPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 12310, cfg.Server.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

// TestLoadFromBadYAML verifies that unparseable config is an error rather
// than a silent fallback.
func TestLoadFromBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\nnot yaml at all ["), 0o644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

// TestPathEnvOverride verifies the TRACKER_CONFIG override.
func TestPathEnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom-tracker.yaml")

	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-tracker.yaml", path)
}

// TestWatcherReload verifies that editing the file swaps in the new config
// and that a broken edit keeps the previous one.
func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w, err := Watch(path, logger)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, "info", w.Current().Logging.Level)

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o644))
	require.Eventually(t, func() bool {
		return w.Current().Logging.Level == "warn"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(":\nbroken ["), 0o644))
	// The broken file must not replace the last good config.
	assert.Never(t, func() bool {
		return w.Current().Logging.Level != "warn"
	}, 500*time.Millisecond, 50*time.Millisecond)
}

// TestStorageDirExpandsHome verifies tilde expansion in the storage dir.
func TestStorageDirExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Storage.Dir = "~/tracker-data"
	assert.Equal(t, filepath.Join(home, "tracker-data"), cfg.StorageDir())

	cfg.Storage.Dir = "/var/lib/tracker"
	assert.Equal(t, "/var/lib/tracker", cfg.StorageDir())
}
