// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pkgverify checks that an installed dependency tree satisfies the
// constraints its manifests declare. It walks the manifest graph the way
// the module loader would, reading descriptors and matching semantic
// versions, but never evaluates any package code.
package pkgverify

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// TraceFunc receives debug trace lines from resolution and verification.
type TraceFunc func(format string, args ...interface{})

// ReportFunc receives every problem found during a walk. Returning a
// non-nil error aborts the walk and surfaces that error from Verify; the
// engine itself never decides whether a problem is fatal.
type ReportFunc func(*VerifyError) error

// Config carries the two injectable side effects of a verification run and
// the resolver to use. Any nil field gets a default: abort-on-first-problem
// reporting, NODE_DEBUG-gated tracing to stderr, a host-platform resolver.
type Config struct {
	Report   ReportFunc
	Trace    TraceFunc
	Resolver *Resolver
}

// Result summarizes a completed (or aborted) verification run.
type Result struct {
	// NativePackages are the basenames of visited package directories
	// carrying a native-build descriptor. Collected as an observation;
	// never used for control flow.
	NativePackages []string

	// Visited counts the unique package directories verified.
	Visited int

	// Problems counts the errors delivered to the report hook. Missing
	// optional dependencies are not problems and are not counted.
	Problems int
}

// Verify resolves name starting from the start directory and verifies its
// entire dependency tree, aborting on the first problem found. The
// returned error, if any, is the *VerifyError describing it.
func Verify(start, name string) (*Result, error) {
	return VerifyWithConfig(start, name, nil)
}

// VerifyWithConfig is Verify with caller-controlled error policy, tracing
// and resolution. Verification state is created fresh for this call and
// discarded on return; runs never share or reuse it.
func VerifyWithConfig(start, name string, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	report := cfg.Report
	if report == nil {
		report = AbortOnError()
	}
	trace := cfg.Trace
	if trace == nil {
		trace = NewTracer(os.Stderr)
	}
	res := cfg.Resolver
	if res == nil {
		res = NewResolver(&ResolverOptions{Trace: trace})
	}

	v := &verifier{
		res:     res,
		report:  report,
		trace:   trace,
		visited: make(map[string]bool),
		native:  make(map[string]bool),
	}
	err := v.verifyRoot(start, name)
	return v.result(), err
}

// verifier holds the state of one verification run. It is owned by exactly
// one VerifyWithConfig call for the duration of that call.
type verifier struct {
	res      *Resolver
	report   ReportFunc
	trace    TraceFunc
	visited  map[string]bool
	native   map[string]bool
	problems int
}

// emit funnels a problem through the report hook. A non-nil return is the
// abort signal propagated up the recursion.
func (v *verifier) emit(e *VerifyError) error {
	v.problems++
	return v.report(e)
}

func (v *verifier) result() *Result {
	natives := make([]string, 0, len(v.native))
	for name := range v.native {
		natives = append(natives, name)
	}
	sort.Strings(natives)
	return &Result{
		NativePackages: natives,
		Visited:        len(v.visited),
		Problems:       v.problems,
	}
}

func (v *verifier) verifyRoot(start, name string) error {
	dir, err := v.res.Resolve(name, start)
	if err != nil {
		// Without a directory there is nothing further to check.
		return v.emit(&VerifyError{Kind: MissingManifest, Name: name})
	}

	m, err := LoadManifest(dir)
	if err != nil {
		return v.emit(manifestError(err, name, ""))
	}

	// A path specifier is not a package name; there is no declared name to
	// hold it against.
	if !v.res.isPathSpecifier(name) {
		if declared, _ := m.Name(); declared != name {
			e := &VerifyError{Kind: NameMismatch, Dir: dir, Name: name, Declared: declared}
			if err := v.emit(e); err != nil {
				return err
			}
			// Mismatched, but still worth verifying.
		}
	}

	return v.verifyPackage(m)
}

// verifyPackage checks every dependency declared by m and recurses into
// each one. A directory is verified at most once per run: the visited mark
// is set before any recursion, so a cycle finds its entry point already
// marked and stops.
func (v *verifier) verifyPackage(m *Manifest) error {
	if v.visited[m.Dir] {
		v.trace("already verified %s", m.Dir)
		return nil
	}
	v.visited[m.Dir] = true

	if m.HasNativeBuild() {
		v.native[filepath.Base(m.Dir)] = true
		v.trace("native build descriptor in %s", m.Dir)
	}

	for _, field := range DependencyFields {
		deps, err := m.Field(field)
		if err != nil {
			e := &VerifyError{Kind: InvalidField, Dir: m.Dir, Field: field, Err: err}
			if err := v.emit(e); err != nil {
				return err
			}
			continue
		}

		// Stable order keeps reports reproducible between runs.
		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if err := v.verifyDependency(m.Dir, field, name, deps[name]); err != nil {
				return err
			}
		}
	}

	return nil
}

// verifyDependency checks one (field, name, range) declaration made by the
// package installed at dir. Version problems are reported but do not stop
// the walk from descending into the dependency's own tree; the goal is to
// surface every problem in one pass.
func (v *verifier) verifyDependency(dir string, field DependencyField, name string, rawRange json.RawMessage) error {
	if name == "" {
		return v.emit(&VerifyError{Kind: InvalidName, Dir: dir, Field: field})
	}

	// Scoped and URL-style specifiers are out of scope: never resolved,
	// never flagged missing.
	if name[0] == '@' || strings.ContainsRune(name, ':') {
		v.trace("skipping %s (%s)", name, field)
		return nil
	}

	var rng string
	if err := json.Unmarshal(rawRange, &rng); err != nil {
		return v.emit(&VerifyError{Kind: InvalidField, Dir: dir, Field: field, Name: name, Err: err})
	}

	depDir, err := v.res.Resolve(name, dir)
	if err != nil {
		if field == OptionalDependencies {
			v.trace("optional dependency not installed: %s@%s", name, rng)
			return nil
		}
		return v.emit(&VerifyError{Kind: MissingDependency, Field: field, Name: name, Range: rng})
	}

	m, err := LoadManifest(depDir)
	if err != nil {
		// A broken manifest ends this subtree; there is nothing below it
		// that can be trusted.
		return v.emit(manifestError(err, name, rng))
	}

	version, ok := m.Version()
	var e *VerifyError
	switch {
	case !ok:
		e = &VerifyError{Kind: NoVersion, Name: name, Range: rng}
	case !isValidVersion(version):
		e = &VerifyError{Kind: InvalidVersion, Name: name, Range: rng, Version: version}
	case !satisfies(version, rng):
		e = &VerifyError{Kind: UnmetVersion, Name: name, Range: rng, Version: version}
	}
	if e != nil {
		if err := v.emit(e); err != nil {
			return err
		}
	}

	return v.verifyPackage(m)
}

// manifestError maps a LoadManifest failure onto the error taxonomy.
func manifestError(err error, name, rng string) *VerifyError {
	switch err := err.(type) {
	case *ManifestDecodeError:
		return &VerifyError{Kind: MalformedManifest, Name: name, Range: rng, Err: err.Err}
	case *ManifestReadError:
		return &VerifyError{Kind: UnreadableManifest, Name: name, Range: rng, Err: err.Err}
	default:
		return &VerifyError{Kind: UnreadableManifest, Name: name, Range: rng, Err: err}
	}
}

// isValidVersion reports whether s is a well-formed semantic version. The
// strict parser is deliberate: the loader's ecosystem does not accept
// shorthand like "1.0".
func isValidVersion(s string) bool {
	_, err := semver.StrictNewVersion(s)
	return err == nil
}

// satisfies reports whether version matches the declared range. A range
// expression that does not parse satisfies nothing.
func satisfies(version, rng string) bool {
	c, err := semver.NewConstraint(rng)
	if err != nil {
		return false
	}
	ver, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return c.Check(ver)
}

// AbortOnError is the default policy: the first problem ends the walk and
// becomes Verify's returned error.
func AbortOnError() ReportFunc {
	return func(e *VerifyError) error { return e }
}

// WarnAndContinue logs each problem as a warning and keeps walking.
func WarnAndContinue(logger *log.Logger) ReportFunc {
	return func(e *VerifyError) error {
		logger.Printf("warning: %v", e)
		return nil
	}
}

// WarnAndExit logs the problem and terminates the process with a nonzero
// status.
func WarnAndExit(logger *log.Logger) ReportFunc {
	return func(e *VerifyError) error {
		logger.Printf("error: %v", e)
		os.Exit(1)
		return nil
	}
}

// CollectErrors appends every problem to errs and keeps walking.
func CollectErrors(errs *[]*VerifyError) ReportFunc {
	return func(e *VerifyError) error {
		*errs = append(*errs, e)
		return nil
	}
}
