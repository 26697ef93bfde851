// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pkgverify

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// testResolver builds a resolver isolated from the real process
// environment, with extra search roots for fixtures that need them.
func testResolver(extra ...string) *Resolver {
	return NewResolver(&ResolverOptions{
		Getenv:   func(string) string { return "" },
		ExecPath: "/nonexistent/bin/node",
		Paths:    extra,
	})
}

func TestSearchPaths(t *testing.T) {
	env := map[string]string{
		"NODE_PATH": "/g1:/g2",
		"HOME":      "/home/u",
	}
	r := NewResolver(&ResolverOptions{
		GOOS:     "linux",
		Getenv:   func(k string) string { return env[k] },
		ExecPath: "/usr/local/bin/node",
	})

	got := r.searchPaths("/a/b/c")
	want := []string{
		"/a/b/c/node_modules",
		"/a/b/node_modules",
		"/a/node_modules",
		"/node_modules",
		"/g1",
		"/g2",
		"/home/u/.node_modules",
		"/home/u/.node_libraries",
		"/usr/local/lib/node",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("searchPaths = %v, want %v", got, want)
	}
}

func TestSearchPathsSkipsNodeModulesAncestors(t *testing.T) {
	r := NewResolver(&ResolverOptions{
		GOOS:     "linux",
		Getenv:   func(string) string { return "" },
		ExecPath: "/opt/node/bin/node",
	})

	got := r.searchPaths("/a/node_modules/foo")
	want := []string{
		"/a/node_modules/foo/node_modules",
		"/a/node_modules",
		"/node_modules",
		"/opt/node/lib/node",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("searchPaths = %v, want %v", got, want)
	}
}

func TestSearchPathsWindows(t *testing.T) {
	env := map[string]string{"USERPROFILE": `C:\Users\u`}
	r := NewResolver(&ResolverOptions{
		GOOS:     "windows",
		Getenv:   func(k string) string { return env[k] },
		ExecPath: `C:\nodejs\node.exe`,
	})

	got := r.searchPaths(`C:\app\node_modules\pkg`)
	want := []string{
		`C:\app\node_modules\pkg\node_modules`,
		`C:\app\node_modules`,
		`C:\node_modules`,
		`C:\Users\u\.node_modules`,
		`C:\Users\u\.node_libraries`,
		`C:\nodejs\lib\node`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("searchPaths = %v, want %v", got, want)
	}
}

func TestResolveEmptyName(t *testing.T) {
	if _, err := testResolver().Resolve("", t.TempDir()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveRelative(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	r := testResolver()

	got, err := r.Resolve("./sub", dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != sub {
		t.Fatalf("resolved %q, want %q", got, sub)
	}

	if _, err := r.Resolve("./missing", dir); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// A path that exists but is a file still resolves to "not found".
	if err := os.WriteFile(filepath.Join(dir, "file"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Resolve("./file", dir); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for a file, got %v", err)
	}
}

func TestResolveBareName(t *testing.T) {
	root := t.TempDir()
	installed := filepath.Join(root, "node_modules", "left-pad")
	if err := os.MkdirAll(installed, 0755); err != nil {
		t.Fatal(err)
	}

	r := testResolver()

	got, err := r.Resolve("left-pad", root)
	if err != nil {
		t.Fatal(err)
	}
	if got != installed {
		t.Fatalf("resolved %q, want %q", got, installed)
	}

	// The lookup also succeeds from anywhere below root.
	deep := filepath.Join(root, "src", "lib")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}
	if got, err := r.Resolve("left-pad", deep); err != nil || got != installed {
		t.Fatalf("resolved (%q, %v), want %q", got, err, installed)
	}

	if _, err := r.Resolve("right-pad", root); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveNearestWins(t *testing.T) {
	root := t.TempDir()
	outer := filepath.Join(root, "node_modules", "dep")
	holder := filepath.Join(root, "node_modules", "holder")
	inner := filepath.Join(holder, "node_modules", "dep")
	for _, dir := range []string{outer, inner} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	r := testResolver()

	// From the holder package, its nested copy shadows the hoisted one.
	if got, _ := r.Resolve("dep", holder); got != inner {
		t.Fatalf("resolved %q, want nested %q", got, inner)
	}
	if got, _ := r.Resolve("dep", root); got != outer {
		t.Fatalf("resolved %q, want hoisted %q", got, outer)
	}
}

func TestResolveExtraPaths(t *testing.T) {
	global := t.TempDir()
	installed := filepath.Join(global, "globby")
	if err := os.MkdirAll(installed, 0755); err != nil {
		t.Fatal(err)
	}

	r := testResolver(global)

	got, err := r.Resolve("globby", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got != installed {
		t.Fatalf("resolved %q, want %q", got, installed)
	}
}
