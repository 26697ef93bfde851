// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pkgverify

import (
	"bytes"
	"fmt"
)

// ErrorKind tags a VerifyError with its stable, machine-readable category.
type ErrorKind uint8

const (
	// MissingManifest: no directory could be found for a requested package.
	MissingManifest ErrorKind = iota

	// UnreadableManifest: the directory exists but its manifest file could
	// not be read.
	UnreadableManifest

	// MalformedManifest: the manifest file exists but does not decode.
	MalformedManifest

	// NameMismatch: the manifest declares a different name than the one it
	// was requested under. Reported, but verification continues.
	NameMismatch

	// InvalidField: a dependency section is not an object, or a declared
	// range is not a string.
	InvalidField

	// InvalidName: an empty dependency name.
	InvalidName

	// MissingDependency: a required or peer dependency is not installed.
	MissingDependency

	// NoVersion: a resolved dependency's manifest has no usable version.
	NoVersion

	// InvalidVersion: the installed version is not a semantic version.
	InvalidVersion

	// UnmetVersion: the installed version does not satisfy the declared
	// range.
	UnmetVersion
)

var errorCodes = [...]string{
	MissingManifest:    "missing-manifest",
	UnreadableManifest: "unreadable-manifest",
	MalformedManifest:  "malformed-manifest",
	NameMismatch:       "name-mismatch",
	InvalidField:       "invalid-field",
	InvalidName:        "invalid-name",
	MissingDependency:  "missing-dependency",
	NoVersion:          "no-version",
	InvalidVersion:     "invalid-version",
	UnmetVersion:       "unmet-dependency",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorCodes) {
		return errorCodes[k]
	}
	return fmt.Sprintf("errorkind(%d)", uint8(k))
}

// A VerifyError is one problem found during a verification walk. Every
// problem, whatever its kind, is delivered to the run's single report hook;
// the hook decides whether the walk continues.
type VerifyError struct {
	Kind     ErrorKind
	Dir      string          // package directory involved, when resolved
	Name     string          // requested package or dependency name
	Declared string          // manifest's declared name, for NameMismatch
	Field    DependencyField // section the dependency was declared in
	Range    string          // declared version range
	Version  string          // installed version, when one was found
	Err      error           // underlying read or decode failure
}

// Code returns the stable machine-readable identifier for the error,
// distinct from the human-readable message.
func (e *VerifyError) Code() string { return e.Kind.String() }

func (e *VerifyError) Unwrap() error { return e.Err }

func (e *VerifyError) Error() string {
	var buf bytes.Buffer

	switch e.Kind {
	case MissingManifest:
		fmt.Fprintf(&buf, "missing manifest: %s", e.Name)
	case UnreadableManifest:
		fmt.Fprintf(&buf, "cannot access manifest: %s", e.spec())
	case MalformedManifest:
		fmt.Fprintf(&buf, "malformed manifest: %s", e.spec())
	case NameMismatch:
		fmt.Fprintf(&buf, "name mismatch: %q != %q", e.Declared, e.Name)
	case InvalidField:
		fmt.Fprintf(&buf, "invalid field: %s", e.Field)
		if e.Name != "" {
			fmt.Fprintf(&buf, "[%q]", e.Name)
		}
	case InvalidName:
		fmt.Fprintf(&buf, "invalid dependency name in %s", e.Field)
	case MissingDependency:
		fmt.Fprintf(&buf, "missing dependency: %s", e.spec())
	case NoVersion:
		fmt.Fprintf(&buf, "no version: %s", e.spec())
	case InvalidVersion:
		fmt.Fprintf(&buf, "invalid version: %s: %s", e.spec(), e.Version)
	case UnmetVersion:
		fmt.Fprintf(&buf, "unmet dependency version: %s: %s", e.spec(), e.Version)
	default:
		fmt.Fprintf(&buf, "%s: %s", e.Kind, e.Name)
	}

	if e.Dir != "" {
		fmt.Fprintf(&buf, " (in %s)", e.Dir)
	}
	if e.Err != nil {
		fmt.Fprintf(&buf, ": %v", e.Err)
	}

	return buf.String()
}

// spec formats the name@range pair naming the dependency at fault.
func (e *VerifyError) spec() string {
	if e.Range == "" {
		return e.Name
	}
	return e.Name + "@" + e.Range
}
