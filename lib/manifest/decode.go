// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/jsonc"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. The same logical manifest
// always encodes to identical bytes, which is what makes repository
// metadata content-addressable.
var encMode cbor.EncMode

// decMode is the CBOR decoder configured to accept standard CBOR.
// Unknown fields pass through untouched for forward compatibility.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("manifest: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Manifest documents only ever use string keys. Decoding
		// into any-typed targets must therefore produce
		// map[string]any, not the CBOR default
		// map[interface{}]interface{}.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("manifest: CBOR decoder initialization failed: " + err.Error())
	}
}

// Parse parses a JSONC manifest document. Comments and trailing
// commas are stripped before standard JSON decoding; numbers are kept
// in their source form.
func Parse(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.UseNumber()

	var document map[string]any
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	// json.Number survives as a string type through CBOR encoding,
	// which would silently turn numbers into text. Normalize to real
	// numeric types up front.
	normalizeNumbers(document)

	return fromDocument(document, data), nil
}

// normalizeNumbers replaces json.Number values with int64 (or float64
// when the value has a fractional part) throughout a decoded document.
func normalizeNumbers(document map[string]any) {
	for key, value := range document {
		document[key] = normalizedValue(value)
	}
}

func normalizedValue(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if integer, err := typed.Int64(); err == nil {
			return integer
		}
		if float, err := typed.Float64(); err == nil {
			return float
		}
		return typed.String()
	case []any:
		for i, element := range typed {
			typed[i] = normalizedValue(element)
		}
		return typed
	case map[string]any:
		normalizeNumbers(typed)
		return typed
	default:
		return value
	}
}

// ParseBinary parses a CBOR manifest document, the format repository
// tooling emits.
func ParseBinary(data []byte) (*Manifest, error) {
	var document map[string]any
	if err := decMode.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parsing binary manifest: %w", err)
	}

	return fromDocument(document, data), nil
}

// EncodeBinary encodes the manifest's document as deterministic CBOR.
// Encoding a manifest and parsing the result yields an equivalent
// manifest (the fingerprint differs: it tracks source bytes).
func (m *Manifest) EncodeBinary() ([]byte, error) {
	encoded, err := encMode.Marshal(m.document)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return encoded, nil
}
