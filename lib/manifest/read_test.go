// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

func checkSample(t *testing.T, m *Manifest) {
	t.Helper()
	if name, _ := m.Field("pkgname"); name != "coreutils" {
		t.Errorf("pkgname = %q, want \"coreutils\"", name)
	}
	records, ok := m.Records("files")
	if !ok || len(records) != 2 {
		t.Fatalf("Records(files) = %d records, %v; want 2, true", len(records), ok)
	}
	if sha, _ := records[0].Field("sha256"); sha != "aaaa" {
		t.Errorf("files[0].sha256 = %q, want \"aaaa\"", sha)
	}
}

func TestReadFileJSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.jsonc")
	if err := os.WriteFile(path, []byte(sampleJSONC), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	checkSample(t, m)
}

func TestReadFileBinary(t *testing.T) {
	parsed, err := Parse([]byte(sampleJSONC))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	encoded, err := parsed.EncodeBinary()
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}

	path := filepath.Join(t.TempDir(), "pkg.cbor")
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	checkSample(t, m)
}

func TestReadFileZstd(t *testing.T) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	compressed := encoder.EncodeAll([]byte(sampleJSONC), nil)

	path := filepath.Join(t.TempDir(), "pkg.jsonc.zst")
	if err := os.WriteFile(path, compressed, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	checkSample(t, m)
}

func TestReadFileLZ4(t *testing.T) {
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	if _, err := writer.Write([]byte(sampleJSONC)); err != nil {
		t.Fatalf("lz4 write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("lz4 close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "pkg.jsonc.lz4")
	if err := os.WriteFile(path, compressed.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	checkSample(t, m)
}

func TestReadFileGzipBinary(t *testing.T) {
	parsed, err := Parse([]byte(sampleJSONC))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	encoded, err := parsed.EncodeBinary()
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}

	var compressed bytes.Buffer
	writer := gzip.NewWriter(&compressed)
	if _, err := writer.Write(encoded); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "pkg.cbor.gz")
	if err := os.WriteFile(path, compressed.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	checkSample(t, m)
}

func TestReadFileFingerprintMatchesSource(t *testing.T) {
	// The fingerprint tracks the decompressed source bytes, so the
	// same document compressed or not fingerprints identically.
	directory := t.TempDir()

	plain := filepath.Join(directory, "pkg.jsonc")
	if err := os.WriteFile(plain, []byte(sampleJSONC), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	compressed := filepath.Join(directory, "pkg2.jsonc.zst")
	if err := os.WriteFile(compressed, encoder.EncodeAll([]byte(sampleJSONC), nil), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	first, err := ReadFile(plain)
	if err != nil {
		t.Fatalf("ReadFile(plain): %v", err)
	}
	second, err := ReadFile(compressed)
	if err != nil {
		t.Fatalf("ReadFile(compressed): %v", err)
	}

	if first.Fingerprint() != second.Fingerprint() {
		t.Error("fingerprint should not depend on the compression wrapper")
	}
}

func TestReadFileNonexistent(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.jsonc"))
	if err == nil {
		t.Fatal("ReadFile should fail for a nonexistent file")
	}
}

func TestReadFileCorruptCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.jsonc.zst")
	if err := os.WriteFile(path, []byte("not zstd frames"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := ReadFile(path); err == nil {
		t.Fatal("ReadFile should fail for corrupt compressed data")
	}
}
