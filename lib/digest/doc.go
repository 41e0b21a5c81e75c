// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest provides SHA256 content digests for package files.
//
// Quarry records a digest for every file a package ships, and re-derives
// the digest from the bytes on disk whenever a file's integrity is in
// question (installation, verification, repair). Two files with the same
// digest are the same file as far as the package system is concerned;
// nothing else about the file (path, permissions, timestamps) enters the
// computation.
//
// The API surface:
//
//   - [Sum] -- streams a file through SHA256 in fixed 64 KiB chunks,
//     writing the digest into a caller-supplied buffer
//   - [SumFile] -- same computation, returning a [Digest] value
//   - [Format] / [Encode] -- binary digest to canonical lowercase hex
//   - [Equal] -- compares a hex string against a binary digest without
//     allocating an intermediate encoding
//   - [Parse] -- hex string back to a [Digest], validating length
//
// The hex form produced by [Format] is the manifest representation:
// exactly [HexSize] lowercase characters. [Equal] computes each expected
// character from the binary digest with the same nibble mapping, so the
// two functions can never disagree about what a digest looks like.
//
// This package has no dependencies on other Quarry packages.
package digest
