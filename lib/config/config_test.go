// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QUARRY_CONFIG", "")

	configuration, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if configuration.RootDir != "/" {
		t.Errorf("RootDir = %q, want \"/\"", configuration.RootDir)
	}
	if len(configuration.Keys) != 2 || configuration.Keys[0] != "files" || configuration.Keys[1] != "conf_files" {
		t.Errorf("Keys = %v, want [files conf_files]", configuration.Keys)
	}
	if configuration.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want \"info\"", configuration.LogLevel)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quarry.yaml")
	content := `rootdir: /srv/target
manifest: /var/db/quarry/pkg.cbor.zst
keys:
  - files
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	configuration, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if configuration.RootDir != "/srv/target" {
		t.Errorf("RootDir = %q, want \"/srv/target\"", configuration.RootDir)
	}
	if configuration.Manifest != "/var/db/quarry/pkg.cbor.zst" {
		t.Errorf("Manifest = %q", configuration.Manifest)
	}
	if len(configuration.Keys) != 1 || configuration.Keys[0] != "files" {
		t.Errorf("Keys = %v, want [files]", configuration.Keys)
	}
	if configuration.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want \"debug\"", configuration.LogLevel)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quarry.yaml")
	if err := os.WriteFile(path, []byte("manifest: ./pkg.jsonc\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	configuration, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if configuration.RootDir != "/" {
		t.Errorf("RootDir = %q, want \"/\"", configuration.RootDir)
	}
	if len(configuration.Keys) != 2 {
		t.Errorf("Keys = %v, want the default pair", configuration.Keys)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quarry.yaml")
	if err := os.WriteFile(path, []byte("rootdir: /mnt/alt\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("QUARRY_CONFIG", path)

	configuration, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if configuration.RootDir != "/mnt/alt" {
		t.Errorf("RootDir = %q, want \"/mnt/alt\"", configuration.RootDir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load should fail for a nonexistent config path")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quarry.yaml")
	if err := os.WriteFile(path, []byte("rootdir: [unclosed\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail for malformed YAML")
	}
}
