// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/quarry-foundation/quarry/lib/fsmap"
)

// zstdDecoder is shared across calls to avoid repeated initialization.
// zstd.Decoder is safe for concurrent use via DecodeAll.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("manifest: zstd decoder initialization failed: " + err.Error())
	}
}

// ReadFile loads a manifest from disk. The file is memory-mapped
// rather than read into the heap; for the common uncompressed case the
// parser consumes the mapping zero-copy.
//
// The format is taken from the file name. One outer compression layer
// is recognized by extension (".zst", ".lz4", ".gz"); under it, a
// ".cbor" extension selects the binary format and anything else is
// parsed as JSONC. So "pkg.cbor.zst" is zstd-compressed CBOR and
// "pkg.json" or "pkg.jsonc" is plain JSONC.
func ReadFile(path string) (*Manifest, error) {
	mapping, err := fsmap.Map(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	defer mapping.Close()

	data := mapping.Bytes()
	name := path

	switch filepath.Ext(name) {
	case ".zst":
		if data, err = zstdDecoder.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		name = strings.TrimSuffix(name, ".zst")
	case ".lz4":
		if data, err = io.ReadAll(lz4.NewReader(bytes.NewReader(data))); err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		name = strings.TrimSuffix(name, ".lz4")
	case ".gz":
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		if data, err = io.ReadAll(reader); err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		name = strings.TrimSuffix(name, ".gz")
	}

	var manifest *Manifest
	if filepath.Ext(name) == ".cbor" {
		manifest, err = ParseBinary(data)
	} else {
		manifest, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}
