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

// Package sequencer implements the single-threaded, completion-driven
// ingest loop: it pipelines UDP receives directly into the journal's
// mmap'd blob region, validates each datagram, assigns Lamport
// timestamps, and commits index-ring atoms through the cursor.
//
// Go has no importable io_uring binding in this codebase's dependency
// set, so the kernel completion ring is emulated with PipelineDepth
// goroutines blocked in net.UDPConn.ReadFromUDP and a completion channel
// buffered to PipelineDepth — one slot per outstanding receive, so it
// never blocks a worker's send. Exactly one goroutine — the loop
// itself — ever drains that channel, which reproduces the
// single-consumer serialization the original's completion ring gave for
// free: the blob write cursor, the Lamport counter's assignment order,
// the cursor, and the journal's index-ring writes belong to that one
// goroutine alone (the receive goroutines write only into their assigned
// blob slices).
package sequencer

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/x123la/lacrimosa/internal/atom"
	"github.com/x123la/lacrimosa/internal/checkpoint"
	"github.com/x123la/lacrimosa/internal/counters"
	"github.com/x123la/lacrimosa/internal/cursor"
	"github.com/x123la/lacrimosa/internal/journal"
	"github.com/x123la/lacrimosa/internal/telemetry/log"
)

type submission struct {
	tag    int
	offset int
}

type completion struct {
	tag    int
	offset int
	n      int
	err    error
}

// Loop is the sequencer's completion-driven ingest engine.
type Loop struct {
	cfg Config

	journal  *journal.Journal
	cursor   *cursor.Cursor
	counters *counters.Counters
	store    *checkpoint.Store

	conn *net.UDPConn
	ipc  *ipcBroadcaster

	lamport atomic.Uint64

	nextBlobOffset int // owned solely by the Run goroutine

	subCh  chan submission
	compCh chan completion

	// fault carries a structural I/O fault (spec.md §7 class 2) from
	// submit to Run's select loop. Buffered by 1: submit never blocks
	// on it, and only the first fault matters since Run exits on it.
	fault chan error

	wg sync.WaitGroup
}

// New constructs a Loop bound to journal j and cursor c. If store is
// non-nil, the Lamport counter and cursor position are restored from the
// last checkpoint instead of starting at zero, resolving spec.md §9's
// restart-survival open questions.
func New(cfg Config, j *journal.Journal, c *cursor.Cursor, ctrs *counters.Counters, store *checkpoint.Store) (*Loop, error) {
	addr, err := net.ResolveUDPAddr("udp", cfg.BindAddr)
	if err != nil {
		return nil, fmt.Errorf("sequencer: resolve %s: %w", cfg.BindAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("sequencer: listen %s: %w", cfg.BindAddr, err)
	}

	l := &Loop{
		cfg:      cfg,
		journal:  j,
		cursor:   c,
		counters: ctrs,
		store:    store,
		conn:     conn,
		subCh:    make(chan submission, PipelineDepth),
		compCh:   make(chan completion, PipelineDepth),
		fault:    make(chan error, 1),
	}

	if store != nil {
		if state, found, err := store.Load(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sequencer: load checkpoint: %w", err)
		} else if found {
			l.lamport.Store(state.LamportTS)
			l.cursor = cursor.Restore(c.Capacity(), int(state.Head), int(state.Tail))
			log.Infow("sequencer: resumed from checkpoint",
				"lamport_ts", state.LamportTS, "head", state.Head, "tail", state.Tail)
		}
	}

	if cfg.IPCSocketPath != "" {
		ipc, err := startIPC(cfg.IPCSocketPath)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("sequencer: start ipc: %w", err)
		}
		l.ipc = ipc
	}

	return l, nil
}

// BindAddr returns the local address the loop is actually bound to,
// useful in tests that bind to port 0.
func (l *Loop) BindAddr() net.Addr { return l.conn.LocalAddr() }

// Run drives the loop until ctx is canceled. It always returns a non-nil
// error: ctx.Err() on ordinary shutdown, or the error submit reported on a
// structural fault (spec.md §7 class 2).
func (l *Loop) Run(ctx context.Context) error {
	for i := 0; i < PipelineDepth; i++ {
		l.wg.Add(1)
		go l.receiveWorker(i)
	}

	for i := 0; i < PipelineDepth; i++ {
		l.submit(i)
	}

	var flushTicker *time.Ticker
	var flushCh <-chan time.Time
	if l.store != nil && l.cfg.CheckpointFlushInterval > 0 {
		flushTicker = time.NewTicker(l.cfg.CheckpointFlushInterval)
		flushCh = flushTicker.C
		defer flushTicker.Stop()
	}

	defer l.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-l.fault:
			return err

		case c := <-l.compCh:
			l.drainAndProcess(c)

		case <-flushCh:
			l.flushCheckpoint()
		}
	}
}

// drainAndProcess processes first, then keeps processing any other
// completions already queued until none is ready (spec.md §4.4.2 step 2).
// Each completion is resubmitted as soon as it has been processed.
func (l *Loop) drainAndProcess(first completion) {
	l.process(first)
	for {
		select {
		case c := <-l.compCh:
			l.process(c)
		default:
			return
		}
	}
}

func (l *Loop) process(c completion) {
	if c.err != nil {
		if !errors.Is(c.err, net.ErrClosed) {
			l.submit(c.tag)
		}
		return
	}

	bytes := c.n
	if bytes < atom.Size {
		l.submit(c.tag)
		return
	}

	blob := l.journal.BlobStorage()
	header := atom.Decode(blob[c.offset : c.offset+atom.Size])
	payload := blob[c.offset+atom.Size : c.offset+bytes]

	if checksumPayload(payload) != header.Checksum {
		l.counters.IncCRCFailures()
		l.submit(c.tag)
		return
	}

	ts := l.lamport.Add(1)
	sequenced := atom.New(ts, header.NodeID, header.StreamID, uint64(c.offset), header.Checksum)

	slot, ok := l.cursor.AdvanceHead()
	if !ok {
		l.counters.IncEventsDropped()
		l.submit(c.tag)
		return
	}

	if err := l.journal.WriteEventAt(slot, sequenced); err != nil {
		log.Errorw("sequencer: write event failed", "slot", slot, "error", err)
		l.submit(c.tag)
		return
	}

	l.counters.IncEventsProcessed()
	l.counters.AddBytesProcessed(uint64(bytes))
	l.counters.SetLamportTS(ts)
	l.counters.SetRingPositions(int64(l.cursor.Head()), int64(l.cursor.Tail()))

	if l.ipc != nil {
		var msg [4]byte
		binary.LittleEndian.PutUint32(msg[:], uint32(slot))
		l.ipc.broadcast(msg[:])
	}

	l.submit(c.tag)
}

// submit claims the next blob offset and hands a fresh receive request to
// the worker pool. Offset assignment happens only here, in the single
// Run goroutine, so nextBlobOffset needs no synchronization.
func (l *Loop) submit(tag int) {
	blobLen := len(l.journal.BlobStorage())
	if l.nextBlobOffset+MaxPacketSize > blobLen {
		l.nextBlobOffset = 0
	}
	offset := l.nextBlobOffset
	l.nextBlobOffset += MaxPacketSize

	select {
	case l.subCh <- submission{tag: tag, offset: offset}:
	default:
		// The submission queue should never be saturated: one slot per
		// worker, and workers only request a new submission after their
		// previous completion was consumed. A full channel here means a
		// structural bug, not transient backpressure — spec.md §4.4.5
		// and §7 class 2 call this a fatal I/O error: report it and
		// terminate the loop rather than silently dropping the request.
		err := fmt.Errorf("sequencer: submission queue saturated (tag=%d)", tag)
		log.Errorw("sequencer: submission queue saturated, terminating loop", "tag", tag)
		select {
		case l.fault <- err:
		default:
		}
	}
}

func (l *Loop) receiveWorker(tag int) {
	defer l.wg.Done()

	for sub := range l.subCh {
		blob := l.journal.BlobStorageMut()
		buf := blob[sub.offset : sub.offset+MaxPacketSize]
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
		}
		l.compCh <- completion{tag: sub.tag, offset: sub.offset, n: n, err: err}
	}
}

func (l *Loop) flushCheckpoint() {
	if l.store == nil {
		return
	}
	if err := l.store.Save(l.lamport.Load(), int64(l.cursor.Head()), int64(l.cursor.Tail())); err != nil {
		log.Errorw("sequencer: checkpoint flush failed", "error", err)
	}
}

func (l *Loop) shutdown() {
	l.flushCheckpoint()
	l.conn.Close()
	close(l.subCh)
	l.wg.Wait()
	if l.ipc != nil {
		l.ipc.close()
	}
}
