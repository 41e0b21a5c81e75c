// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"encoding/hex"
	"fmt"
)

// hexTable maps a nibble value to its canonical character. Values 10
// and above map to 'a'..'f', matching encoding/hex. [Equal] indexes
// this table directly so its idea of the canonical form cannot drift
// from what [Format] produces.
const hexTable = "0123456789abcdef"

// Format returns the canonical hex form of a binary digest: two
// lowercase characters per byte, high nibble first.
func Format(digest []byte) string {
	return hex.EncodeToString(digest)
}

// Encode writes the canonical hex form of digest into dst, which must
// be at least 2*len(digest) bytes. Nothing is written when dst is too
// small; the call fails with [ErrShortBuffer] instead. This is the
// caller-buffer counterpart of [Format].
func Encode(dst, digest []byte) error {
	if len(dst) < 2*len(digest) {
		return fmt.Errorf("%w: %d bytes, need %d", ErrShortBuffer, len(dst), 2*len(digest))
	}
	hex.Encode(dst, digest)
	return nil
}

// Equal reports whether hexString is the canonical hex form of the
// binary digest, without allocating an intermediate encoding. The
// lengths are validated first: hexString must be exactly [HexSize]
// characters and digest exactly [Size] bytes, otherwise the result is
// false (never an error). The comparison walks the digest nibble by
// nibble, computing each expected character and checking it against
// the string; the first mismatch wins.
func Equal(hexString string, digest []byte) bool {
	if len(hexString) != HexSize || len(digest) != Size {
		return false
	}
	for i, value := range digest {
		if hexString[2*i] != hexTable[value>>4] {
			return false
		}
		if hexString[2*i+1] != hexTable[value&0x0f] {
			return false
		}
	}
	return true
}

// Parse parses a canonical hex digest string into a [Digest]. Returns
// an error if the string is not a valid 64-character hex encoding of
// 32 bytes.
func Parse(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != Size {
		return digest, fmt.Errorf("digest is %d bytes, want %d", len(decoded), Size)
	}
	copy(digest[:], decoded)
	return digest, nil
}
