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

import "time"

// MaxPacketSize is the largest UDP datagram the loop accepts; larger
// datagrams are truncated by the kernel and rejected by the size check.
const MaxPacketSize = 65535

// PipelineDepth is the number of concurrent receive operations the loop
// keeps in flight against the blob region.
const PipelineDepth = 16

// Config configures a Loop.
type Config struct {
	// BindAddr is the UDP endpoint to listen on.
	BindAddr string
	// RingDepth is the submission-queue depth of the kernel async I/O
	// facility this loop emulates. The Go substitute has no submission
	// queue to size — PipelineDepth fixes the number of in-flight
	// receives instead — so this field has no runtime effect; it is
	// retained for parity with the original's tunable.
	RingDepth int
	// IPCSocketPath is the Unix domain socket path observers connect to
	// for wakeup notifications. Empty disables the IPC broadcaster.
	IPCSocketPath string
	// CheckpointFlushInterval controls how often the loop persists
	// (lamport_ts, head, tail) to the checkpoint store. Zero disables
	// periodic checkpointing.
	CheckpointFlushInterval time.Duration
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		BindAddr:                "0.0.0.0:9000",
		RingDepth:               256,
		IPCSocketPath:           "/tmp/causalseq.sock",
		CheckpointFlushInterval: time.Second,
	}
}
