// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the tracker's YAML configuration.
//
// The config file lives at $TRACKER_CONFIG, falling back to
// ~/.aleutian/tracker.yaml. A missing file is created with defaults on first
// run. Watch re-reads the file on change so a running server picks up edits
// without a restart.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config location.
const EnvConfigPath = "TRACKER_CONFIG"

// TrackerConfig is the full service configuration.
type TrackerConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port        int `yaml:"port"`         // e.g. 12310
	MetricsPort int `yaml:"metrics_port"` // e.g. 12311
}

// StorageConfig holds the document-store settings.
type StorageConfig struct {
	Dir      string `yaml:"dir"`       // e.g. ~/.aleutian/tracker
	InMemory bool   `yaml:"in_memory"` // ephemeral store, for local experiments
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() TrackerConfig {
	return TrackerConfig{
		Server:  ServerConfig{Port: 12310, MetricsPort: 12311},
		Storage: StorageConfig{Dir: "~/.aleutian/tracker"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Level maps the configured log level onto slog.
func (c *TrackerConfig) Level() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// StorageDir expands ~ in the configured storage directory.
func (c *TrackerConfig) StorageDir() string {
	return expandHome(c.Storage.Dir)
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Path resolves the config file location.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".aleutian", "tracker.yaml"), nil
}

// Load reads the config file, creating it with defaults when absent.
func Load() (*TrackerConfig, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file at an explicit path, creating it with
// defaults when absent.
func LoadFrom(path string) (*TrackerConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefault(path); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse the config file: %w", err)
	}
	return &cfg, nil
}

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Watcher re-reads the config file when it changes on disk.
type Watcher struct {
	mu      sync.RWMutex
	current *TrackerConfig
	watcher *fsnotify.Watcher
	log     *slog.Logger
}

// Watch loads the config and starts watching its file for edits. Close the
// watcher to stop.
func Watch(path string, log *slog.Logger) (*Watcher, error) {
	cfg, err := LoadFrom(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create the config watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch the config file: %w", err)
	}

	w := &Watcher{current: cfg, watcher: fw, log: log}
	go w.run(path)
	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *TrackerConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close stops the file watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) run(path string) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := LoadFrom(path)
			if err != nil {
				w.log.Warn("config reload failed, keeping previous config", "error", err)
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			w.log.Info("config reloaded", "path", path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", "error", err)
		}
	}
}
