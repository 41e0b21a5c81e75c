// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/quarry-foundation/quarry/lib/digest"
)

// Outcome is the three-way result of a verification.
type Outcome int

const (
	// OutcomeError indicates an internal failure unrelated to file
	// content, such as an undersized digest buffer.
	OutcomeError Outcome = -1

	// OutcomeMatched indicates the on-disk content matches the
	// digest recorded in the manifest.
	OutcomeMatched Outcome = 0

	// OutcomeNotMatched indicates the digests differ, the manifest
	// has no record for the file, or the file could not be read.
	OutcomeNotMatched Outcome = 1
)

// String returns the human-readable name of an outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeNotMatched:
		return "not matched"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// FileField is the record field holding the package-relative path.
const FileField = "file"

// DigestField is the record field holding the expected content digest
// in canonical hex form.
const DigestField = "sha256"

// Record is a single manifest entry: a key-value structure with at
// least the [FileField] and [DigestField] fields.
type Record interface {
	// Field returns the named field as a string. The second result
	// is false when the record has no such field.
	Field(name string) (string, bool)
}

// RecordStore is the manifest surface the verifier consumes: an
// associative structure holding ordered collections of records under
// string keys.
type RecordStore interface {
	// RecordsUnder returns the records stored under key, in document
	// order. The second result is false when the key is absent or
	// does not hold an iterable collection.
	RecordsUnder(key string) ([]Record, bool)
}

// LookupDigest returns the expected hex digest recorded for filename
// in the collection stored under key. Records are scanned in order;
// the first one whose file field equals filename exactly wins. The
// second result is false when the key is absent, no record matches,
// or the matching record has no digest field. Callers cannot tell
// these apart, and the verifier treats them all as "not matched".
func LookupDigest(store RecordStore, key, filename string) (string, bool) {
	records, ok := store.RecordsUnder(key)
	if !ok {
		return "", false
	}
	for _, record := range records {
		path, ok := record.Field(FileField)
		if !ok || path != filename {
			continue
		}
		return record.Field(DigestField)
	}
	return "", false
}

// Verifier checks files against manifest digests. The zero value
// verifies against the filesystem root with no logging.
type Verifier struct {
	// RootDir, when set to a path other than "/", is prepended to
	// every filename before the on-disk digest is computed. Models
	// packages installed into an alternate root.
	RootDir string

	// Logger, when non-nil, receives a debug record per
	// verification.
	Logger *slog.Logger
}

// Verify resolves the expected digest for filename under key in the
// store, hashes the corresponding file on disk, and reports the
// outcome. A filename with no recorded digest and a file that cannot
// be read both report [OutcomeNotMatched]; see the package comment
// for the rationale.
func (v *Verifier) Verify(store RecordStore, key, filename string) Outcome {
	expected, ok := LookupDigest(store, key, filename)
	if !ok {
		v.log(filename, OutcomeNotMatched, "no digest recorded")
		return OutcomeNotMatched
	}

	path := filename
	if v.RootDir != "" && v.RootDir != "/" {
		path = filepath.Join(v.RootDir, filename)
	}

	var actual [digest.Size]byte
	outcome := v.checkFile(path, expected, actual[:])
	v.log(filename, outcome, "")
	return outcome
}

// checkFile digests the file at path into out and compares the result
// against the expected hex string. A read failure is indistinguishable
// from a content mismatch at this layer; only buffer sizing escalates
// to [OutcomeError].
func (v *Verifier) checkFile(path, expected string, out []byte) Outcome {
	if err := digest.Sum(path, out); err != nil {
		if errors.Is(err, digest.ErrShortBuffer) {
			return OutcomeError
		}
		return OutcomeNotMatched
	}
	// Equal validates lengths itself: a malformed expected digest is
	// an inequality, not a fault.
	if !digest.Equal(expected, out[:digest.Size]) {
		return OutcomeNotMatched
	}
	return OutcomeMatched
}

func (v *Verifier) log(filename string, outcome Outcome, detail string) {
	if v.Logger == nil {
		return
	}
	attributes := []any{"file", filename, "outcome", outcome.String()}
	if detail != "" {
		attributes = append(attributes, "detail", detail)
	}
	v.Logger.Debug("verified file", attributes...)
}
