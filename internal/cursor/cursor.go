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

// Package cursor tracks the write (head) and commit (tail) positions of
// the index ring. It owns the ring-buffer invariant: head can never
// advance to equal tail, which would mean the ring wrapped around and
// overwrote a slot nobody has consumed yet. That invariant costs the ring
// one usable slot (capacity - 1), the only acceptable trade for avoiding a
// separate length counter that would have to stay consistent with
// head/tail on every mutation.
package cursor

// Cursor is the single-producer ring-buffer position tracker described in
// the journal spec: head is the next slot to write, tail is the oldest
// unread slot.
type Cursor struct {
	head     int
	tail     int
	capacity int
}

// New creates a cursor for a ring with the given number of slots.
//
// New panics if capacity < 2, matching the original implementation's
// precondition: a ring needs at least 2 slots to distinguish "empty" from
// "full" at all.
func New(capacity int) *Cursor {
	if capacity < 2 {
		panic("cursor: capacity must be at least 2")
	}
	return &Cursor{capacity: capacity}
}

// Restore creates a cursor resuming from a previously persisted
// head/tail, used when the checkpoint store has a prior position.
func Restore(capacity, head, tail int) *Cursor {
	c := New(capacity)
	c.head = head % capacity
	c.tail = tail % capacity
	return c
}

// Head returns the current write position.
func (c *Cursor) Head() int { return c.head }

// Tail returns the current commit/read position.
func (c *Cursor) Tail() int { return c.tail }

// Capacity returns the total number of slots in the ring.
func (c *Cursor) Capacity() int { return c.capacity }

// IsFull reports whether advancing head would make it equal tail.
func (c *Cursor) IsFull() bool {
	return c.next(c.head) == c.tail
}

// IsEmpty reports whether head equals tail.
func (c *Cursor) IsEmpty() bool {
	return c.head == c.tail
}

// Len returns the number of committed-but-unconsumed slots, always in
// [0, capacity-1].
func (c *Cursor) Len() int {
	if c.head >= c.tail {
		return c.head - c.tail
	}
	return c.capacity - c.tail + c.head
}

// AdvanceHead claims the current head slot for writing and advances head
// by one, modulo capacity. It returns (slot, false) if the ring is full;
// the caller must treat that as backpressure, not an error.
func (c *Cursor) AdvanceHead() (slot int, ok bool) {
	if c.IsFull() {
		return 0, false
	}
	slot = c.head
	c.head = c.next(c.head)
	return slot, true
}

// AdvanceTail releases the current tail slot (marks it consumed) and
// advances tail by one, modulo capacity. It returns (slot, false) if the
// ring is empty.
func (c *Cursor) AdvanceTail() (slot int, ok bool) {
	if c.IsEmpty() {
		return 0, false
	}
	slot = c.tail
	c.tail = c.next(c.tail)
	return slot, true
}

func (c *Cursor) next(pos int) int {
	return (pos + 1) % c.capacity
}
