// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), configName)
	contents := `
policy = "throw"
paths = ["/opt/shared/node_modules"]
verbose = true
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Policy != "throw" {
		t.Fatalf("policy = %q, want throw", cfg.Policy)
	}
	if len(cfg.Paths) != 1 || cfg.Paths[0] != "/opt/shared/node_modules" {
		t.Fatalf("paths = %v", cfg.Paths)
	}
	if !cfg.Verbose {
		t.Fatal("verbose not parsed")
	}
}

func TestLoadConfigMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), configName)

	// A default lookup tolerates absence; an explicit -config does not.
	cfg, err := loadConfig(path, false)
	if err != nil || cfg.Policy != "" || len(cfg.Paths) != 0 {
		t.Fatalf("expected empty config, got %v (%v)", cfg, err)
	}
	if _, err := loadConfig(path, true); err == nil {
		t.Fatal("expected an error for an explicitly named missing file")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), configName)
	if err := os.WriteFile(path, []byte("policy = [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path, false); err == nil {
		t.Fatal("expected a parse error")
	}
}
