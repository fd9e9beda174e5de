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

// Package metrics exposes the Prometheus scrape endpoint, grounded on
// the teacher's pkg/metrics provider shape (config-driven constructor,
// an owned registry, a Start/Stop lifecycle) without the Wire provider
// set, since this repository wires its dependencies by hand.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the metrics server.
type Config struct {
	Addr string
}

// Server serves /metrics over HTTP from an owned registry.
type Server struct {
	cfg      Config
	registry *prometheus.Registry
	http     *http.Server
}

// NewServer constructs a metrics Server with a fresh registry.
func NewServer(cfg Config) *Server {
	registry := prometheus.NewRegistry()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Server{
		cfg:      cfg,
		registry: registry,
		http:     &http.Server{Addr: cfg.Addr, Handler: mux},
	}
}

// Registry returns the server's collector registry, so callers can
// register domain collectors (e.g. internal/counters.Collector) before
// Start.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Start begins serving in the background. It returns once the listener
// is ready to accept connections, or immediately with an error if it
// never became ready.
func (s *Server) Start() error {
	ln, err := newListener(s.http.Addr)
	if err != nil {
		return err
	}
	go s.http.Serve(ln)
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
