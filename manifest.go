// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pkgverify

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/chjj/pkg-verify/internal/fs"
)

// ManifestName is the descriptor file read from every package directory.
const ManifestName = "package.json"

// NativeDescriptorName marks a package that builds a native extension.
const NativeDescriptorName = "binding.gyp"

// DependencyField names one of the manifest sections declaring dependencies.
// The field a dependency is declared in determines how severe a resolution
// failure is: a missing optional dependency is only a trace-level
// observation.
type DependencyField string

const (
	Dependencies         DependencyField = "dependencies"
	PeerDependencies     DependencyField = "peerDependencies"
	OptionalDependencies DependencyField = "optionalDependencies"
)

// DependencyFields lists the manifest sections in the order they are
// verified.
var DependencyFields = []DependencyField{
	Dependencies,
	PeerDependencies,
	OptionalDependencies,
}

// Manifest is a loaded package descriptor. The version and dependency
// sections are kept raw so that a single badly-typed field surfaces as a
// per-field problem instead of failing the whole manifest.
type Manifest struct {
	// Dir is the package directory the manifest was read from. It is the
	// unit of identity during verification.
	Dir string

	raw rawManifest
}

type rawManifest struct {
	Name                 json.RawMessage `json:"name"`
	Version              json.RawMessage `json:"version"`
	Dependencies         json.RawMessage `json:"dependencies"`
	PeerDependencies     json.RawMessage `json:"peerDependencies"`
	OptionalDependencies json.RawMessage `json:"optionalDependencies"`
}

// ManifestReadError reports a manifest file that could not be read at all.
type ManifestReadError struct {
	Path string
	Err  error
}

func (e *ManifestReadError) Error() string {
	return "cannot access manifest " + e.Path + ": " + e.Err.Error()
}

func (e *ManifestReadError) Unwrap() error { return e.Err }

// ManifestDecodeError reports a manifest file that is not valid JSON.
type ManifestDecodeError struct {
	Path string
	Err  error
}

func (e *ManifestDecodeError) Error() string {
	return "malformed manifest " + e.Path + ": " + e.Err.Error()
}

func (e *ManifestDecodeError) Unwrap() error { return e.Err }

// LoadManifest reads and decodes dir's package descriptor. The two failure
// modes are distinguished by error type: *ManifestReadError when the file
// is inaccessible, *ManifestDecodeError when it exists but does not decode.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestReadError{Path: path, Err: err}
	}
	m := &Manifest{Dir: dir}
	if err := json.Unmarshal(data, &m.raw); err != nil {
		return nil, &ManifestDecodeError{Path: path, Err: err}
	}
	return m, nil
}

// Name returns the declared package name. ok is false when the field is
// absent or not a string.
func (m *Manifest) Name() (string, bool) {
	return rawString(m.raw.Name)
}

// Version returns the declared version string. ok is false when the field
// is absent or not a string; whether the string is a well-formed semantic
// version is the verifier's business, not the manifest's.
func (m *Manifest) Version() (string, bool) {
	return rawString(m.raw.Version)
}

// Field extracts one dependency section as a name-to-range mapping. An
// absent section yields a nil map; a section that is present but not an
// object is an error. Range values stay raw for per-entry type checking.
func (m *Manifest) Field(field DependencyField) (map[string]json.RawMessage, error) {
	var raw json.RawMessage
	switch field {
	case Dependencies:
		raw = m.raw.Dependencies
	case PeerDependencies:
		raw = m.raw.PeerDependencies
	case OptionalDependencies:
		raw = m.raw.OptionalDependencies
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var deps map[string]json.RawMessage
	if err := json.Unmarshal(raw, &deps); err != nil {
		return nil, err
	}
	return deps, nil
}

// HasNativeBuild reports whether the package directory carries a
// native-build descriptor.
func (m *Manifest) HasNativeBuild() bool {
	return fs.FileExists(filepath.Join(m.Dir, NativeDescriptorName))
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
