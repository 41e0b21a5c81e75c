// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest loads package manifests: the per-package documents
// recording which files a package ships and the expected content
// digest of each.
//
// Two source formats are supported. Human-authored manifests are JSONC
// (JSON extended with comments and trailing commas); repository
// tooling emits the same structure as deterministically encoded CBOR,
// optionally wrapped in one layer of zstd, LZ4, or gzip compression.
// [ReadFile] sniffs the format from the file name and handles all of
// it; [Parse] and [ParseBinary] work on bytes.
//
// A manifest document is a map from string keys to either scalar
// metadata ("pkgname", "version") or ordered collections of file
// records:
//
//	{
//	    "pkgname": "coreutils",
//	    "files": [
//	        {"file": "bin/ls", "sha256": "4bf3..."},
//	        {"file": "bin/cat", "sha256": "9c02..."},
//	    ],
//	}
//
// Collection order is the document's array order and is preserved.
// [Manifest] implements verify.RecordStore, so a loaded manifest plugs
// directly into the verifier.
//
// Every loaded manifest carries a BLAKE3 keyed fingerprint of its
// source bytes, used to identify the document in logs and to detect
// repository metadata changes without re-parsing.
package manifest
