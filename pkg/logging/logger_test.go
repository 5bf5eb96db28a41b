// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}

func TestLevel_toSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.toSlogLevel())
	assert.Equal(t, slog.LevelInfo, LevelInfo.toSlogLevel())
	assert.Equal(t, slog.LevelWarn, LevelWarn.toSlogLevel())
	assert.Equal(t, slog.LevelError, LevelError.toSlogLevel())
	// Unknown levels default to Info rather than dropping everything.
	assert.Equal(t, slog.LevelInfo, Level(99).toSlogLevel())
}

func TestNew_DefaultConfig(t *testing.T) {
	logger := New(Config{})
	require.NotNil(t, logger)
	require.NotNil(t, logger.Slog())
	assert.NoError(t, logger.Close())
}

func TestDefault(t *testing.T) {
	logger := Default()
	require.NotNil(t, logger)
	assert.Equal(t, LevelInfo, logger.config.Level)
	assert.Equal(t, "aleutian", logger.config.Service)
}

func TestNew_WithLogDir(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "tracker",
		Quiet:   true,
	})
	logger.Info("store opened", "in_memory", true)
	require.NoError(t, logger.Close())

	filename := "tracker_" + time.Now().Format("2006-01-02") + ".log"
	raw, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)

	// File output is always JSON with the service attribute attached.
	var entry map[string]any
	line := strings.SplitN(strings.TrimSpace(string(raw)), "\n", 2)[0]
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "store opened", entry["msg"])
	assert.Equal(t, "tracker", entry["service"])
	assert.Equal(t, true, entry["in_memory"])
}

func TestNew_WithLogDir_NoService(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Quiet: true})
	logger.Info("hello")
	require.NoError(t, logger.Close())

	filename := "aleutian_" + time.Now().Format("2006-01-02") + ".log"
	_, err := os.Stat(filepath.Join(dir, filename))
	assert.NoError(t, err)
}

func TestNew_WithLogDir_InvalidPath(t *testing.T) {
	// A file where the directory should be: file logging is skipped but
	// the logger still works.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	logger := New(Config{LogDir: filepath.Join(blocker, "logs")})
	require.NotNil(t, logger)
	logger.Info("still works")
	assert.NoError(t, logger.Close())
}

func TestLogger_LevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{Level: LevelWarn, LogDir: dir, Service: "svc", Quiet: true})
	logger.Debug("verbose detail")
	logger.Info("routine event")
	logger.Warn("kept")
	logger.Error("kept as well")
	require.NoError(t, logger.Close())

	filename := "svc_" + time.Now().Format("2006-01-02") + ".log"
	raw, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)

	out := string(raw)
	assert.NotContains(t, out, "verbose detail")
	assert.NotContains(t, out, "routine event")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, "kept as well")
}

func TestLogger_With(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "svc", Quiet: true})
	child := logger.With("project_id", "abc123")
	child.Info("child entry")
	logger.Info("parent entry")
	require.NoError(t, logger.Close())

	filename := "svc_" + time.Now().Format("2006-01-02") + ".log"
	raw, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)

	var childSeen, parentPlain bool
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		switch entry["msg"] {
		case "child entry":
			childSeen = entry["project_id"] == "abc123"
		case "parent entry":
			_, has := entry["project_id"]
			parentPlain = !has
		}
	}
	assert.True(t, childSeen, "child entry carries the extra attribute")
	assert.True(t, parentPlain, "parent logger is unmodified")
}

func TestLogger_Close_NoFile(t *testing.T) {
	logger := New(Config{})
	assert.NoError(t, logger.Close())
	// Close is idempotent.
	assert.NoError(t, logger.Close())
}
