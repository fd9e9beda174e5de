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

// Command causalseqd runs the sequencer daemon: the journal, cursor,
// ingest loop, read API, metrics endpoint, and optional checkpoint
// archiver, wired by hand (no wire codegen) in the shape of the
// teacher's internal/engine/bootstrap.Bootstrap/Run.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/x123la/lacrimosa/internal/archive"
	"github.com/x123la/lacrimosa/internal/checkpoint"
	"github.com/x123la/lacrimosa/internal/config"
	"github.com/x123la/lacrimosa/internal/counters"
	"github.com/x123la/lacrimosa/internal/cursor"
	"github.com/x123la/lacrimosa/internal/journal"
	"github.com/x123la/lacrimosa/internal/metrics"
	"github.com/x123la/lacrimosa/internal/readapi"
	"github.com/x123la/lacrimosa/internal/sequencer"
	"github.com/x123la/lacrimosa/internal/telemetry/log"
	"github.com/x123la/lacrimosa/pkg/safe"
)

var configPath string

func init() {
	flag.StringVar(&configPath, "conf", "", "config file path, e.g. -conf ./causalseqd.toml")
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	if err := log.Init(log.Config{Output: cfg.Log.Output, Level: cfg.Log.Level}); err != nil {
		panic(err)
	}
	defer log.Sync()

	instanceID := uuid.NewString()
	log.Infow("starting causalseqd", "instance_id", instanceID, "bind_addr", cfg.Sequencer.BindAddr)

	app, cleanup, err := bootstrap(cfg)
	if err != nil {
		log.Errorw("bootstrap failed", "error", err)
		os.Exit(1)
	}

	run(app, cleanup)
}

// app holds every long-lived component the daemon owns.
type app struct {
	cfg        config.AppConfig
	journal    *journal.Journal
	loop       *sequencer.Loop
	readAPI    *readapi.Server
	metrics    *metrics.Server
	checkpoint *checkpoint.Store
	archiver   *archive.Archiver
}

func bootstrap(cfg config.AppConfig) (*app, func(), error) {
	j, err := journal.Open(cfg.Sequencer.JournalPath, cfg.Sequencer.JournalSizeBytes)
	if err != nil {
		return nil, nil, err
	}

	var store *checkpoint.Store
	if cfg.Checkpoint.Enabled {
		store, err = checkpoint.Open(cfg.Checkpoint.Path)
		if err != nil {
			j.Close()
			return nil, nil, err
		}
	}

	c := cursor.New(cfg.Sequencer.IndexRingCapacity)
	ctrs := counters.New()

	seqCfg := sequencer.DefaultConfig()
	seqCfg.BindAddr = cfg.Sequencer.BindAddr
	seqCfg.RingDepth = cfg.Sequencer.RingDepth
	seqCfg.CheckpointFlushInterval = cfg.Checkpoint.FlushInterval

	loop, err := sequencer.New(seqCfg, j, c, ctrs, store)
	if err != nil {
		j.Close()
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}

	readAPI := readapi.New(j, ctrs)

	metricsServer := metrics.NewServer(metrics.Config{Addr: cfg.Metrics.Addr})
	if err := metricsServer.Registry().Register(counters.NewCollector(ctrs)); err != nil {
		log.Warnw("failed to register counters collector", "error", err)
	}

	var archiver *archive.Archiver
	if cfg.Archive.Enabled && store != nil {
		archiver, err = archive.New(context.Background(), archive.Config{
			Bucket: cfg.Archive.Bucket,
			Prefix: cfg.Archive.Prefix,
			NodeID: hostname(),
		}, store)
		if err != nil {
			log.Warnw("archive disabled: failed to construct archiver", "error", err)
			archiver = nil
		}
	}

	a := &app{
		cfg:        cfg,
		journal:    j,
		loop:       loop,
		readAPI:    readAPI,
		metrics:    metricsServer,
		checkpoint: store,
		archiver:   archiver,
	}

	cleanup := func() {
		log.Infow("shutting down metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			log.Errorw("failed to stop metrics server", "error", err)
		}

		log.Infow("shutting down read API")
		shutdownCtx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		if err := readAPI.Shutdown(shutdownCtx2); err != nil {
			log.Errorw("failed to stop read API", "error", err)
		}

		if store != nil {
			if err := store.Close(); err != nil {
				log.Errorw("failed to close checkpoint store", "error", err)
			}
		}
		if err := j.Close(); err != nil {
			log.Errorw("failed to close journal", "error", err)
		}
	}

	return a, cleanup, nil
}

func run(a *app, cleanup func()) {
	ctx, cancelLoop := context.WithCancel(context.Background())

	if err := a.metrics.Start(); err != nil {
		log.Errorw("metrics server failed to start", "error", err)
	}

	safe.Go(func() {
		if err := a.readAPI.Listen(a.cfg.ReadAPI.Addr); err != nil {
			log.Errorw("read API listener failed", "address", a.cfg.ReadAPI.Addr, "error", err)
		}
	})

	loopErr := make(chan error, 1)
	safe.Go(func() {
		if err := a.loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Errorw("sequencer loop exited unexpectedly", "error", err)
			loopErr <- err
		}
	})

	if a.archiver != nil {
		safe.Go(func() {
			if err := a.archiver.Run(ctx, time.Minute); err != nil && ctx.Err() == nil {
				log.Errorw("archiver exited unexpectedly", "error", err)
			}
		})
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	select {
	case sig := <-quit:
		log.Infow("received signal, shutting down gracefully", "signal", sig)
	case <-loopErr:
		cancelLoop()
		cleanup()
		log.Sync()
		os.Exit(1)
	}

	cancelLoop()
	cleanup()
	log.Infow("shutdown complete")
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
