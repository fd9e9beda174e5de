// Copyright 2025 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the daemon's TOML configuration file with viper
// and hot-reloads it on change via fsnotify, mirroring the teacher's
// internal/engine/config package.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/x123la/lacrimosa/internal/telemetry/log"
)

// SequencerConfig configures the ingest loop and journal.
type SequencerConfig struct {
	BindAddr          string `mapstructure:"bind_addr"`
	RingDepth         int    `mapstructure:"ring_depth"`
	JournalPath       string `mapstructure:"journal_path"`
	JournalSizeBytes  uint64 `mapstructure:"journal_size_bytes"`
	IndexRingCapacity int    `mapstructure:"index_ring_capacity"`
}

// LogConfig configures internal/telemetry/log.
type LogConfig struct {
	Output string `mapstructure:"output"`
	Level  string `mapstructure:"level"`
}

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// ReadAPIConfig configures the read API HTTP server.
type ReadAPIConfig struct {
	Addr string `mapstructure:"addr"`
}

// CheckpointConfig configures the restart-survival checkpoint store.
type CheckpointConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Path          string        `mapstructure:"path"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// ArchiveConfig configures the optional S3 checkpoint archiver.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
}

// AppConfig is the daemon's full configuration tree.
type AppConfig struct {
	Sequencer  SequencerConfig  `mapstructure:"sequencer"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	ReadAPI    ReadAPIConfig    `mapstructure:"readapi"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
}

// Default returns the configuration matching SPEC_FULL.md §6.5's example
// file, used when no config file is supplied.
func Default() AppConfig {
	return AppConfig{
		Sequencer: SequencerConfig{
			BindAddr:          "0.0.0.0:9000",
			RingDepth:         256,
			JournalPath:       "./data/causalseq.journal",
			JournalSizeBytes:  100 * 1024 * 1024 * 1024,
			IndexRingCapacity: 33554432,
		},
		Log: LogConfig{
			Output: "stdout",
			Level:  "INFO",
		},
		Metrics: MetricsConfig{Addr: ":9090"},
		ReadAPI: ReadAPIConfig{Addr: ":8080"},
		Checkpoint: CheckpointConfig{
			Enabled:       true,
			Path:          "./data/causalseq.checkpoint.db",
			FlushInterval: time.Second,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Prefix:  "causalseq/checkpoints/",
		},
	}
}

var (
	mu  sync.RWMutex
	cfg = Default()
)

// Get returns a copy of the current configuration, safe for concurrent
// reads while a watcher goroutine may be applying a reload.
func Get() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Load reads path into the package-level config and installs a
// fsnotify-backed watcher that re-reads the file on every change. An
// empty path leaves the compiled-in defaults in effect.
func Load(path string) (AppConfig, error) {
	if path == "" {
		mu.Lock()
		cfg = Default()
		mu.Unlock()
		return Get(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return AppConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var loaded AppConfig
	if err := v.Unmarshal(&loaded); err != nil {
		return AppConfig{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	mu.Lock()
	cfg = loaded
	mu.Unlock()

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("config: file changed, reloading", "file", e.Name)
		var reloaded AppConfig
		if err := v.Unmarshal(&reloaded); err != nil {
			log.Errorw("config: reload failed, keeping previous config", "error", err, "file", e.Name)
			return
		}
		mu.Lock()
		cfg = reloaded
		mu.Unlock()
		log.Infow("config: reload complete", "file", e.Name)
	})

	return Get(), nil
}

func applyDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("sequencer.bind_addr", d.Sequencer.BindAddr)
	v.SetDefault("sequencer.ring_depth", d.Sequencer.RingDepth)
	v.SetDefault("sequencer.journal_path", d.Sequencer.JournalPath)
	v.SetDefault("sequencer.journal_size_bytes", d.Sequencer.JournalSizeBytes)
	v.SetDefault("sequencer.index_ring_capacity", d.Sequencer.IndexRingCapacity)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("readapi.addr", d.ReadAPI.Addr)
	v.SetDefault("checkpoint.enabled", d.Checkpoint.Enabled)
	v.SetDefault("checkpoint.path", d.Checkpoint.Path)
	v.SetDefault("checkpoint.flush_interval", d.Checkpoint.FlushInterval)
	v.SetDefault("archive.enabled", d.Archive.Enabled)
	v.SetDefault("archive.prefix", d.Archive.Prefix)
}
