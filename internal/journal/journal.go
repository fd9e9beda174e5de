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

// Package journal implements the memory-mapped, dual-region event journal:
// a single file split into a fixed-size Index Ring (CausalEvent/atom
// records) followed by a Blob Storage region (variable-length payloads).
// The file is pre-allocated once at Open and never resized; all reads and
// writes go through the kernel page cache via an mmap'd byte slice, so
// there is no userspace copy between the journal and the OS.
package journal

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"

	"github.com/x123la/lacrimosa/internal/atom"
)

// DefaultSize is the default total journal size: 100 GiB.
const DefaultSize uint64 = 100 * 1024 * 1024 * 1024

// IndexRingSize is the fixed size of the Index Ring region: 1 GiB.
const IndexRingSize uint64 = 1024 * 1024 * 1024

// IndexRingCapacity is the number of atom slots the Index Ring holds.
const IndexRingCapacity = int(IndexRingSize) / atom.Size

var (
	// ErrTooSmall is returned when the requested journal size does not
	// leave room for both regions.
	ErrTooSmall = errors.New("journal: size must exceed index ring size")
	// ErrSlotOutOfRange is returned by (Read|Write)EventAt for an
	// out-of-bounds slot index.
	ErrSlotOutOfRange = errors.New("journal: slot out of range")
	// ErrClosed is returned when operating on a closed journal.
	ErrClosed = errors.New("journal: closed")
)

// Journal is the memory-mapped dual-region journal file.
//
// Layout:
//
//	[0, IndexRingSize)       Index Ring  (fixed-size atom slots)
//	[IndexRingSize, size)    Blob Storage (variable-length payloads)
type Journal struct {
	file   *os.File
	region mmap.MMap
	size   uint64
	closed bool
}

// Open opens (or creates) a journal file at path, pre-allocated to size
// bytes, and memory-maps it. An advisory exclusive flock guards against a
// second process mapping the same file concurrently — the single-producer
// invariant the spec requires is a property of process ownership, not
// just in-process goroutine discipline.
func Open(path string, size uint64) (*Journal, error) {
	if size <= IndexRingSize {
		return nil, ErrTooSmall
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("journal: flock %s: %w", path, err)
	}

	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, fmt.Errorf("journal: truncate %s to %d: %w", path, size, err)
	}

	region, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("journal: mmap %s: %w", path, err)
	}

	return &Journal{file: f, region: region, size: size}, nil
}

// Size returns the total journal size in bytes.
func (j *Journal) Size() uint64 { return j.size }

// BlobCapacity returns the usable size of the Blob Storage region in bytes.
func (j *Journal) BlobCapacity() uint64 { return j.size - IndexRingSize }

// IndexRing returns a read-only view of the Index Ring region.
func (j *Journal) IndexRing() []byte {
	return j.region[:IndexRingSize]
}

// IndexRingMut returns a mutable view of the Index Ring region.
func (j *Journal) IndexRingMut() []byte {
	return j.region[:IndexRingSize]
}

// BlobStorage returns a read-only view of the Blob Storage region.
func (j *Journal) BlobStorage() []byte {
	return j.region[IndexRingSize:]
}

// BlobStorageMut returns a mutable view of the Blob Storage region.
func (j *Journal) BlobStorageMut() []byte {
	return j.region[IndexRingSize:]
}

// WriteEventAt writes a as the 32-byte record at index-ring slot.
// Caller must ensure slot < IndexRingCapacity.
func (j *Journal) WriteEventAt(slot int, a atom.Atom) error {
	if slot < 0 || slot >= IndexRingCapacity {
		return ErrSlotOutOfRange
	}
	off := slot * atom.Size
	atom.Encode(a, j.region[off:off+atom.Size])
	return nil
}

// ReadEventAt reads the 32-byte record at index-ring slot.
// Caller must ensure slot < IndexRingCapacity.
func (j *Journal) ReadEventAt(slot int) (atom.Atom, error) {
	if slot < 0 || slot >= IndexRingCapacity {
		return atom.Atom{}, ErrSlotOutOfRange
	}
	off := slot * atom.Size
	return atom.Decode(j.region[off : off+atom.Size]), nil
}

// WritePayload copies p into the blob storage region starting at the
// given blob-relative offset. Caller must ensure the write fits within
// BlobCapacity (the sequencer loop performs that bounds check, since only
// it knows the current blob write cursor).
func (j *Journal) WritePayload(offset uint64, p []byte) error {
	if offset+uint64(len(p)) > j.BlobCapacity() {
		return fmt.Errorf("journal: payload write at offset %d len %d exceeds blob capacity %d", offset, len(p), j.BlobCapacity())
	}
	dst := j.BlobStorageMut()
	copy(dst[offset:], p)
	return nil
}

// ReadPayload returns a copy of length n starting at the given
// blob-relative offset.
func (j *Journal) ReadPayload(offset uint64, n uint32) ([]byte, error) {
	if offset+uint64(n) > j.BlobCapacity() {
		return nil, fmt.Errorf("journal: payload read at offset %d len %d exceeds blob capacity %d", offset, n, j.BlobCapacity())
	}
	src := j.BlobStorage()
	out := make([]byte, n)
	copy(out, src[offset:offset+uint64(n)])
	return out, nil
}

// Flush synchronously flushes the mapped region to disk.
func (j *Journal) Flush() error {
	if j.closed {
		return ErrClosed
	}
	return j.region.Flush()
}

// Close unmaps the journal and releases the flock, closing the backing
// file. It is safe to call Close more than once.
func (j *Journal) Close() error {
	if j.closed {
		return nil
	}
	j.closed = true
	var errs []error
	if err := j.region.Unmap(); err != nil {
		errs = append(errs, err)
	}
	if err := unix.Flock(int(j.file.Fd()), unix.LOCK_UN); err != nil {
		errs = append(errs, err)
	}
	if err := j.file.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
