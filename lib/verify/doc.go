// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

// Package verify checks files on disk against the digests recorded in
// a package manifest.
//
// A manifest groups file records under keys ("files", "conf_files");
// each record carries at least the package-relative path in its "file"
// field and the expected content digest in its "sha256" field. The
// verifier resolves the expected digest for a filename, hashes the
// file on disk (optionally under an alternate root directory), and
// reports one of three outcomes:
//
//   - [OutcomeMatched] -- the on-disk content matches the manifest
//   - [OutcomeNotMatched] -- the digests differ, the manifest has no
//     record for the file, or the file is unreadable on disk
//   - [OutcomeError] -- an internal failure unrelated to the file's
//     content, such as an undersized digest buffer
//
// The coarse grouping is deliberate: install and repair pipelines only
// need accept, reject, or abort. In particular a file missing from
// disk is reported as OutcomeNotMatched, not as an error: from the
// pipeline's point of view it is simply not the file the package
// shipped. Callers that need to know why a lookup failed must inspect
// the manifest themselves.
//
// The manifest is consumed through the [RecordStore] and [Record]
// interfaces, so the verifier works against any ordered key-value
// structure; [github.com/quarry-foundation/quarry/lib/manifest]
// provides the standard implementation.
package verify
