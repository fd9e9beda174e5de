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

package sequencer

import (
	"errors"
	"net"
	"os"
	"sync"

	"github.com/x123la/lacrimosa/internal/telemetry/log"
	"github.com/x123la/lacrimosa/pkg/safe"
)

// ipcBroadcaster is the local-socket wakeup channel of spec.md §6.3: a
// Unix domain socket that pushes the 4-byte little-endian committed-slot
// index to every connected observer. Observers treat it as an
// edge-triggered hint and must still consult the cursor themselves.
type ipcBroadcaster struct {
	listener net.Listener
	mu       sync.Mutex
	clients  []net.Conn
}

// startIPC removes any stale socket file at path, listens on it, and
// accepts connections in the background for the broadcaster's lifetime.
func startIPC(path string) (*ipcBroadcaster, error) {
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}

	b := &ipcBroadcaster{listener: l}
	safe.Go(b.acceptLoop)
	return b, nil
}

func (b *ipcBroadcaster) acceptLoop() {
	for {
		conn, err := b.listener.Accept()
		if err != nil {
			return
		}
		b.mu.Lock()
		b.clients = append(b.clients, conn)
		b.mu.Unlock()
	}
}

// broadcast sends msg to every connected client, dropping any client that
// fails to accept the write (broken pipe, closed connection).
func (b *ipcBroadcaster) broadcast(msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	live := b.clients[:0]
	for _, c := range b.clients {
		if _, err := c.Write(msg); err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Warnw("ipc: dropping client after write error", "error", err)
			}
			c.Close()
			continue
		}
		live = append(live, c)
	}
	b.clients = live
}

// close shuts down the listener and every connected client.
func (b *ipcBroadcaster) close() error {
	b.mu.Lock()
	for _, c := range b.clients {
		c.Close()
	}
	b.clients = nil
	b.mu.Unlock()
	return b.listener.Close()
}
