// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/quarry-foundation/quarry/lib/verify"
)

// Fingerprint is a 32-byte BLAKE3 keyed hash identifying a loaded
// manifest document.
type Fingerprint [32]byte

// fingerprintDomainKey is the BLAKE3 keyed-hashing domain for manifest
// fingerprints. A fixed constant; changing it invalidates every
// recorded fingerprint. The bytes are the ASCII domain name,
// zero-padded to 32 bytes, so the key is readable in hex dumps.
var fingerprintDomainKey = [32]byte{
	'q', 'u', 'a', 'r', 'r', 'y', '.', 'm', 'a', 'n', 'i', 'f', 'e', 's', 't', '.',
	'f', 'i', 'l', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Manifest is a loaded package manifest. It satisfies
// verify.RecordStore. A Manifest is read-only after construction and
// safe for concurrent readers.
type Manifest struct {
	document    map[string]any
	fields      map[string]string
	groups      map[string][]*Record
	fingerprint Fingerprint
}

// Record is one entry in a manifest collection. Field values are
// scalars rendered as strings; nested structures inside a record are
// not represented.
type Record struct {
	fields map[string]string
}

// Field returns the named record field. Implements verify.Record.
func (r *Record) Field(name string) (string, bool) {
	value, ok := r.fields[name]
	return value, ok
}

var (
	_ verify.Record      = (*Record)(nil)
	_ verify.RecordStore = (*Manifest)(nil)
)

// Field returns a top-level scalar field of the manifest, such as
// "pkgname".
func (m *Manifest) Field(name string) (string, bool) {
	value, ok := m.fields[name]
	return value, ok
}

// Records returns the records stored under key, in document order.
func (m *Manifest) Records(key string) ([]*Record, bool) {
	records, ok := m.groups[key]
	return records, ok
}

// RecordsUnder implements verify.RecordStore.
func (m *Manifest) RecordsUnder(key string) ([]verify.Record, bool) {
	typed, ok := m.groups[key]
	if !ok {
		return nil, false
	}
	records := make([]verify.Record, len(typed))
	for i, record := range typed {
		records[i] = record
	}
	return records, true
}

// Groups returns the keys holding record collections, sorted.
func (m *Manifest) Groups() []string {
	keys := make([]string, 0, len(m.groups))
	for key := range m.groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Fingerprint returns the BLAKE3 fingerprint of the manifest's source
// bytes (after any decompression, before parsing).
func (m *Manifest) Fingerprint() Fingerprint {
	return m.fingerprint
}

// Ref returns the short log form of the manifest fingerprint: the
// "man-" prefix followed by the first 12 hex characters.
func (m *Manifest) Ref() string {
	return "man-" + hex.EncodeToString(m.fingerprint[:6])
}

// fingerprintOf computes the keyed BLAKE3 fingerprint of raw document
// bytes.
func fingerprintOf(data []byte) Fingerprint {
	hasher, err := blake3.NewKeyed(fingerprintDomainKey[:])
	if err != nil {
		panic("manifest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var fingerprint Fingerprint
	copy(fingerprint[:], hasher.Sum(nil))
	return fingerprint
}

// fromDocument builds a Manifest from a decoded document. Top-level
// arrays whose elements are all objects become record collections; a
// top-level object becomes a single-record collection; scalars become
// manifest fields.
func fromDocument(document map[string]any, raw []byte) *Manifest {
	m := &Manifest{
		document:    document,
		fields:      make(map[string]string),
		groups:      make(map[string][]*Record),
		fingerprint: fingerprintOf(raw),
	}

	for key, value := range document {
		switch typed := value.(type) {
		case []any:
			records, ok := recordsFrom(typed)
			if !ok {
				// An array of scalars ("provides", "shlib-requires")
				// is not a record collection; leave it to callers
				// that work with the raw document.
				continue
			}
			m.groups[key] = records
		case map[string]any:
			m.groups[key] = []*Record{recordFrom(typed)}
		default:
			if scalar, ok := scalarString(value); ok {
				m.fields[key] = scalar
			}
		}
	}

	return m
}

// recordsFrom converts an array into a record collection. Reports
// false unless every element is an object.
func recordsFrom(elements []any) ([]*Record, bool) {
	records := make([]*Record, 0, len(elements))
	for _, element := range elements {
		object, ok := element.(map[string]any)
		if !ok {
			return nil, false
		}
		records = append(records, recordFrom(object))
	}
	return records, true
}

// recordFrom flattens an object's scalar members into a Record.
// Nested arrays and objects inside a record are dropped.
func recordFrom(object map[string]any) *Record {
	fields := make(map[string]string, len(object))
	for name, value := range object {
		if scalar, ok := scalarString(value); ok {
			fields[name] = scalar
		}
	}
	return &Record{fields: fields}
}

// scalarString renders a decoded scalar as a string. Handles the
// value types produced by both the JSON decoder (string, json.Number,
// bool) and the CBOR decoder (string, integer and float types, bool).
func scalarString(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case json.Number:
		return typed.String(), true
	case bool:
		return strconv.FormatBool(typed), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case uint64:
		return strconv.FormatUint(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'g', -1, 64), true
	default:
		return "", false
	}
}
