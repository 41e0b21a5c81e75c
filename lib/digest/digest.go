// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
)

// Size is the length in bytes of a binary digest.
const Size = sha256.Size

// HexSize is the length in characters of the canonical hex form of a
// digest. This is the representation stored in package manifests.
const HexSize = 2 * Size

// chunkSize is the read buffer length used when streaming a file
// through the hash. 64 KiB keeps memory constant regardless of file
// size while staying large enough that syscall overhead is negligible.
const chunkSize = 64 * 1024

// ErrShortBuffer is returned when a caller-supplied output buffer is
// smaller than the fixed size the operation requires. It is reported
// before any I/O happens, so a short buffer never leaves a partially
// written result.
var ErrShortBuffer = errors.New("digest: output buffer too small")

// Digest is a 32-byte SHA256 digest of file content.
type Digest [Size]byte

// String returns the canonical lowercase hex form of the digest.
func (d Digest) String() string {
	return Format(d[:])
}

// Sum computes the SHA256 digest of the file at path and writes it
// into out, which must be at least [Size] bytes. The file is read in
// fixed 64 KiB chunks; memory usage is constant regardless of file
// size. If any read fails the contents of out are undefined and the
// error is returned.
func Sum(path string, out []byte) error {
	if len(out) < Size {
		return fmt.Errorf("%w: %d bytes, need %d", ErrShortBuffer, len(out), Size)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	buffer := make([]byte, chunkSize)
	for {
		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("hashing %s: %w", path, err)
		}
	}

	// Sum appends into out[:0], reusing the caller's storage. The
	// length check above guarantees capacity for the full digest.
	hasher.Sum(out[:0])
	return nil
}

// SumFile computes the SHA256 digest of the file at path and returns
// it as a [Digest] value. Convenience wrapper around [Sum] for callers
// that do not manage their own buffers.
func SumFile(path string) (Digest, error) {
	var digest Digest
	if err := Sum(path, digest[:]); err != nil {
		return Digest{}, err
	}
	return digest, nil
}
