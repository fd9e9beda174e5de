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

// Package readapi exposes the sequencer's read-only operations
// (snapshot_counters, read_range, read_payload) over HTTP, using the
// fiber framework throughout this codebase's admin HTTP surface. This is
// the stable interface the out-of-scope dashboards, query DSL, and
// connectors are built against — this package implements only the
// surface, never those collaborators.
package readapi

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/x123la/lacrimosa/internal/atom"
	"github.com/x123la/lacrimosa/internal/counters"
	"github.com/x123la/lacrimosa/internal/journal"
)

// Server serves the core's read API.
type Server struct {
	app      *fiber.App
	journal  *journal.Journal
	counters *counters.Counters
}

// New constructs a Server reading from j and ctrs.
func New(j *journal.Journal, ctrs *counters.Counters) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{app: app, journal: j, counters: ctrs}

	app.Get("/v1/counters", s.handleCounters)
	app.Get("/v1/events", s.handleReadRange)
	app.Get("/v1/payload", s.handleReadPayload)

	return s
}

// Listen starts serving on addr. It blocks until the server stops.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts the HTTP server down.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// handleCounters implements snapshot_counters().
func (s *Server) handleCounters(c *fiber.Ctx) error {
	return c.JSON(s.counters.Snapshot())
}

type eventEntry struct {
	Slot          int    `json:"slot"`
	LamportTS     uint64 `json:"lamport_ts"`
	NodeID        uint32 `json:"node_id"`
	StreamID      uint16 `json:"stream_id"`
	Flags         uint16 `json:"flags"`
	PayloadOffset uint64 `json:"payload_offset"`
	Checksum      uint32 `json:"checksum"`
}

// handleReadRange implements read_range(slot_start, slot_end). It applies
// the torn-read discriminator spec.md §5 requires of observers: an
// all-zero atom is skipped as never-written, and an atom at slot ≥ the
// published head is skipped as not-yet-committed, since the producer may
// be mid-write to it even when its bytes are no longer all-zero.
func (s *Server) handleReadRange(c *fiber.Ctx) error {
	start, err := strconv.Atoi(c.Query("start", "0"))
	if err != nil || start < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid start")
	}
	end, err := strconv.Atoi(c.Query("end", "0"))
	if err != nil || end < start {
		return fiber.NewError(fiber.StatusBadRequest, "invalid end")
	}
	if end > journal.IndexRingCapacity {
		end = journal.IndexRingCapacity
	}
	head := s.counters.Snapshot().RingHead

	entries := make([]eventEntry, 0, end-start)
	for slot := start; slot < end; slot++ {
		if int64(slot) >= head {
			continue
		}
		a, err := s.journal.ReadEventAt(slot)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if atom.IsEmptySlot(a) {
			continue
		}
		entries = append(entries, eventEntry{
			Slot:          slot,
			LamportTS:     a.LamportTS,
			NodeID:        a.NodeID,
			StreamID:      a.StreamID,
			Flags:         a.Flags,
			PayloadOffset: a.PayloadOffset,
			Checksum:      a.Checksum,
		})
	}
	return c.JSON(entries)
}

// handleReadPayload implements read_payload(offset, len): a raw view
// into the blob region. Callers are responsible for not relying on bytes
// whose associated atom is no longer live (spec.md §6.4).
func (s *Server) handleReadPayload(c *fiber.Ctx) error {
	offset, err := strconv.ParseUint(c.Query("offset", "0"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid offset")
	}
	length, err := strconv.ParseUint(c.Query("len", "0"), 10, 32)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid len")
	}

	payload, err := s.journal.ReadPayload(offset, uint32(length))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(payload)
}
