// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pkgverify

import (
	"os"
	"runtime"

	"github.com/pkg/errors"

	"github.com/chjj/pkg-verify/internal/fs"
)

// ErrNotFound is returned by Resolve when no candidate directory contains
// the requested package. Every failure mode of the underlying stat calls
// collapses into it; the caller only ever cares that the package is not
// there.
var ErrNotFound = errors.New("package not found")

// A Resolver locates the installed directory of a named package, starting
// from an arbitrary directory, using the same layered lookup the module
// loader uses at require time: the requesting directory's ancestor
// node_modules chain, then the configured and global fallback roots.
// Matching the loader exactly is the point — verifying a copy the loader
// would never pick, or missing one it would, makes the verdict worthless.
type Resolver struct {
	pf     platform
	extra  []string // caller-configured roots, tried before the globals
	global []string
	trace  TraceFunc
}

// ResolverOptions configures a Resolver. The zero value of every field
// selects the host platform and real process environment.
type ResolverOptions struct {
	// GOOS selects the path-syntax strategy. Defaults to runtime.GOOS.
	GOOS string

	// Getenv supplies environment variables (NODE_PATH and the home
	// directory). Defaults to os.Getenv.
	Getenv func(string) string

	// ExecPath is the runtime executable location used to derive the
	// install prefix's library directory. Defaults to the current
	// executable.
	ExecPath string

	// Paths are extra search roots consulted after the ancestor walk but
	// before the environment-derived globals.
	Paths []string

	// Trace receives a line per candidate probed. Nil disables tracing.
	Trace TraceFunc
}

// NewResolver builds a Resolver, computing the global fallback paths once.
func NewResolver(opts *ResolverOptions) *Resolver {
	if opts == nil {
		opts = &ResolverOptions{}
	}
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	execPath := opts.ExecPath
	if execPath == "" {
		execPath, _ = os.Executable()
	}
	trace := opts.Trace
	if trace == nil {
		trace = func(string, ...interface{}) {}
	}

	pf := platformFor(goos)
	return &Resolver{
		pf:     pf,
		extra:  opts.Paths,
		global: pf.GlobalPaths(getenv, execPath),
		trace:  trace,
	}
}

// Resolve returns the absolute directory containing name's manifest, or
// ErrNotFound. from must be an absolute directory; resolution of a bare
// name is always performed relative to the requesting package, never the
// original root, which is what makes nested version conflicts come out
// right.
func (r *Resolver) Resolve(name, from string) (string, error) {
	if name == "" {
		return "", ErrNotFound
	}

	if r.isPathSpecifier(name) {
		dir := pathResolve(r.pf, from, name)
		if fs.DirExists(dir) {
			r.trace("resolved %s from %s -> %s", name, from, dir)
			return dir, nil
		}
		r.trace("no directory at %s", dir)
		return "", ErrNotFound
	}

	for _, candidate := range r.searchPaths(from) {
		if !fs.DirExists(candidate) {
			continue
		}
		dir := pathJoin(r.pf, candidate, name)
		if fs.DirExists(dir) {
			r.trace("resolved %s from %s -> %s", name, from, dir)
			return dir, nil
		}
	}

	r.trace("%s not found from %s", name, from)
	return "", ErrNotFound
}

// isPathSpecifier reports whether name addresses a directory directly
// instead of naming an installed package.
func (r *Resolver) isPathSpecifier(name string) bool {
	return name[0] == '.' || r.pf.IsAbs(name)
}

// searchPaths enumerates the candidate installation roots for a lookup
// starting at from, in search order: <ancestor>/node_modules for every
// ancestor of from up to and including the filesystem root, skipping
// ancestors that are themselves named node_modules (a doubled
// node_modules/node_modules segment is never consulted by the loader),
// then the configured extra roots, then the global fallbacks.
func (r *Resolver) searchPaths(from string) []string {
	pf := r.pf

	var paths []string
	dir := pathClean(pf, from)
	for {
		if pathBase(pf, dir) != "node_modules" {
			paths = append(paths, pathJoin(pf, dir, "node_modules"))
		}
		if pathIsRoot(pf, dir) {
			break
		}
		parent := pathParent(pf, dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	paths = append(paths, r.extra...)
	paths = append(paths, r.global...)
	return paths
}
