// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

// Package fsmap presents file contents as a read-only, NUL-terminated
// memory mapping.
//
// Quarry's manifest and metadata parsers consume whole files as byte
// buffers and rely on a terminating zero byte one past the logical end
// of the data. Mapping the file instead of reading it keeps large
// metadata zero-copy; the terminator comes for free from the kernel's
// zero fill of the final partial page. When the file length is an exact
// multiple of the page size there is no partial page, so an extra guard
// page of anonymous zeros is kept mapped after the file to preserve the
// terminator invariant.
//
// The mapping is built in two steps: an anonymous PROT_READ reservation
// covering the rounded-up length plus any guard page, then the file
// mapped MAP_FIXED over the leading pages. Whatever the file does not
// cover stays anonymous and reads as zero. A single munmap releases the
// whole region.
package fsmap

import (
	"fmt"
	"math"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mapping is a private, read-only memory mapping of a regular file's
// contents. The byte at offset [Mapping.Len] is always addressable and
// reads as zero. The caller owns the mapping and must release it with
// [Mapping.Close] when done.
type Mapping struct {
	region []byte // full mapped region, including any guard page
	length int    // logical file length
	closed bool
}

// Map maps the regular file at path into memory. The file descriptor
// used to build the mapping is closed before Map returns; the mapping
// remains valid independent of it. On any failure no resources are
// left held.
func Map(path string) (*Mapping, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fsmap: opening %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("fsmap: stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("fsmap: %s is not a regular file", path)
	}

	pageSize := int64(os.Getpagesize())
	size := info.Size()
	// Rounding up to the page size plus a guard page must not wrap,
	// and the result must fit a slice length.
	if size > math.MaxInt64-2*pageSize || size > int64(math.MaxInt)-2*pageSize {
		return nil, fmt.Errorf("fsmap: %s is too large to map (%d bytes)", path, size)
	}

	mapSize := (size + pageSize - 1) &^ (pageSize - 1)
	total := mapSize
	if size%pageSize == 0 {
		// No partial page to zero-fill: keep a guard page of
		// anonymous zeros after the file so region[size] stays
		// addressable. This includes the empty file.
		total += pageSize
	}

	region, err := unix.Mmap(-1, 0, int(total), unix.PROT_READ,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("fsmap: reserving %d bytes for %s: %w", total, path, err)
	}

	if mapSize > 0 {
		_, err := unix.MmapPtr(int(file.Fd()), 0, unsafe.Pointer(&region[0]),
			uintptr(mapSize), unix.PROT_READ, unix.MAP_PRIVATE|unix.MAP_FIXED)
		if err != nil {
			unix.Munmap(region)
			return nil, fmt.Errorf("fsmap: mapping %s: %w", path, err)
		}
	}

	return &Mapping{
		region: region,
		length: int(size),
	}, nil
}

// Bytes returns the file contents: exactly [Mapping.Len] bytes. The
// slice points directly into the mapping; it must not be used after
// Close. The byte one past the end of the returned slice is mapped and
// reads as zero. Panics if the mapping has been closed.
func (m *Mapping) Bytes() []byte {
	if m.closed {
		panic("fsmap: read from closed mapping")
	}
	return m.region[:m.length]
}

// Mapped returns the full mapped region, including the zero fill after
// the logical file length and any guard page. Panics if the mapping
// has been closed.
func (m *Mapping) Mapped() []byte {
	if m.closed {
		panic("fsmap: read from closed mapping")
	}
	return m.region
}

// Len returns the logical file length in bytes.
func (m *Mapping) Len() int {
	return m.length
}

// Close releases the mapping. After Close, Bytes and Mapped panic.
// Close is idempotent.
func (m *Mapping) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	region := m.region
	m.region = nil
	if err := unix.Munmap(region); err != nil {
		return fmt.Errorf("fsmap: munmap failed: %w", err)
	}
	return nil
}
