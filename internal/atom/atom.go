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

// Package atom defines the fundamental event atom of the causal sequencer:
// a fixed 32-byte record with a deterministic field layout and a total
// order on its (lamport_ts, node_id, stream_id) key.
package atom

import "encoding/binary"

// Size is the fixed on-disk and on-wire size of an Atom, in bytes.
const Size = 32

// FlagCheckpoint marks an atom as a checkpoint boundary.
const FlagCheckpoint uint16 = 0x1

// Ordering is the result of comparing two atoms by their ordering key.
type Ordering int

const (
	Less Ordering = -1
	Equal Ordering = 0
	Greater Ordering = 1
)

// Atom is the canonical 32-byte event record.
//
// Field layout (offset/size):
//
//	0   8  LamportTS
//	8   4  NodeID
//	12  2  StreamID
//	14  2  Flags
//	16  8  PayloadOffset
//	24  4  Checksum
//	28  4  (pad, must be zero)
//
// Only (LamportTS, NodeID, StreamID) participate in ordering; the rest is
// payload bookkeeping and never consulted by Compare.
type Atom struct {
	LamportTS     uint64
	NodeID        uint32
	StreamID      uint16
	Flags         uint16
	PayloadOffset uint64
	Checksum      uint32
}

// New constructs an atom with Flags = 0.
func New(lamportTS uint64, nodeID uint32, streamID uint16, payloadOffset uint64, checksum uint32) Atom {
	return Atom{
		LamportTS:     lamportTS,
		NodeID:        nodeID,
		StreamID:      streamID,
		PayloadOffset: payloadOffset,
		Checksum:      checksum,
	}
}

// WithFlags constructs an atom with explicit flags.
func WithFlags(lamportTS uint64, nodeID uint32, streamID uint16, payloadOffset uint64, checksum uint32, flags uint16) Atom {
	a := New(lamportTS, nodeID, streamID, payloadOffset, checksum)
	a.Flags = flags
	return a
}

// IsCheckpoint reports whether the checkpoint flag bit is set.
func (a Atom) IsCheckpoint() bool {
	return a.Flags&FlagCheckpoint != 0
}

// Compare orders two atoms lexicographically on (LamportTS, NodeID,
// StreamID). It never consults PayloadOffset, Checksum, Flags, or padding.
func Compare(a, b Atom) Ordering {
	switch {
	case a.LamportTS < b.LamportTS:
		return Less
	case a.LamportTS > b.LamportTS:
		return Greater
	}
	switch {
	case a.NodeID < b.NodeID:
		return Less
	case a.NodeID > b.NodeID:
		return Greater
	}
	switch {
	case a.StreamID < b.StreamID:
		return Less
	case a.StreamID > b.StreamID:
		return Greater
	}
	return Equal
}

// Before reports whether a sorts strictly before b under Compare. It
// satisfies sort.Interface-style comparators.
func Before(a, b Atom) bool {
	return Compare(a, b) == Less
}

// Encode writes the atom's 32-byte little-endian representation into dst.
// dst must be at least Size bytes long.
func Encode(a Atom, dst []byte) {
	_ = dst[Size-1]
	binary.LittleEndian.PutUint64(dst[0:8], a.LamportTS)
	binary.LittleEndian.PutUint32(dst[8:12], a.NodeID)
	binary.LittleEndian.PutUint16(dst[12:14], a.StreamID)
	binary.LittleEndian.PutUint16(dst[14:16], a.Flags)
	binary.LittleEndian.PutUint64(dst[16:24], a.PayloadOffset)
	binary.LittleEndian.PutUint32(dst[24:28], a.Checksum)
	dst[28], dst[29], dst[30], dst[31] = 0, 0, 0, 0
}

// Decode reads a 32-byte little-endian representation from src.
func Decode(src []byte) Atom {
	_ = src[Size-1]
	return Atom{
		LamportTS:     binary.LittleEndian.Uint64(src[0:8]),
		NodeID:        binary.LittleEndian.Uint32(src[8:12]),
		StreamID:      binary.LittleEndian.Uint16(src[12:14]),
		Flags:         binary.LittleEndian.Uint16(src[14:16]),
		PayloadOffset: binary.LittleEndian.Uint64(src[16:24]),
		Checksum:      binary.LittleEndian.Uint32(src[24:28]),
	}
}

// IsEmptySlotBytes reports whether a raw 32-byte index-ring slot is empty
// (all bytes zero). This is the unambiguous "not yet committed" signal
// readers use, since a real atom always has LamportTS > 0.
func IsEmptySlotBytes(src []byte) bool {
	_ = src[Size-1]
	for _, b := range src[:Size] {
		if b != 0 {
			return false
		}
	}
	return true
}

// IsEmptySlot reports whether a decoded atom represents an empty slot.
func IsEmptySlot(a Atom) bool {
	return a == Atom{}
}
