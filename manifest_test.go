// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pkgverify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifestMissing(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope"))
	if _, ok := err.(*ManifestReadError); !ok {
		t.Fatalf("expected *ManifestReadError, got %T (%v)", err, err)
	}
}

func TestLoadManifestMalformed(t *testing.T) {
	dir := writePackage(t, t.TempDir(), `{"name": "x",`)
	_, err := LoadManifest(dir)
	if _, ok := err.(*ManifestDecodeError); !ok {
		t.Fatalf("expected *ManifestDecodeError, got %T (%v)", err, err)
	}
}

func TestManifestAccessors(t *testing.T) {
	dir := writePackage(t, t.TempDir(), `{
		"name": "pkg",
		"version": "1.2.3",
		"dependencies": {"a": "^1.0.0"},
		"peerDependencies": null
	}`)

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}

	if name, ok := m.Name(); !ok || name != "pkg" {
		t.Fatalf("name = %q, %v", name, ok)
	}
	if version, ok := m.Version(); !ok || version != "1.2.3" {
		t.Fatalf("version = %q, %v", version, ok)
	}

	deps, err := m.Field(Dependencies)
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 1 {
		t.Fatalf("dependencies = %v", deps)
	}

	// null decodes like an absent section.
	if peers, err := m.Field(PeerDependencies); err != nil || peers != nil {
		t.Fatalf("peerDependencies = %v, %v", peers, err)
	}
	if opts, err := m.Field(OptionalDependencies); err != nil || opts != nil {
		t.Fatalf("optionalDependencies = %v, %v", opts, err)
	}
}

func TestManifestBadlyTypedFields(t *testing.T) {
	dir := writePackage(t, t.TempDir(), `{
		"name": ["not", "a", "string"],
		"version": 7,
		"dependencies": "oops"
	}`)

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := m.Name(); ok {
		t.Fatal("non-string name should not be usable")
	}
	if _, ok := m.Version(); ok {
		t.Fatal("non-string version should not be usable")
	}
	if _, err := m.Field(Dependencies); err == nil {
		t.Fatal("non-object dependencies should be an error")
	}
}

func TestManifestNativeBuildProbe(t *testing.T) {
	dir := writePackage(t, t.TempDir(), `{"name": "n", "version": "1.0.0"}`)
	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}

	if m.HasNativeBuild() {
		t.Fatal("no descriptor written yet")
	}
	if err := os.WriteFile(filepath.Join(dir, NativeDescriptorName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if !m.HasNativeBuild() {
		t.Fatal("descriptor not detected")
	}
}
