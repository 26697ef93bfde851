// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pkgverify

import "strings"

// platform captures the path syntax of an operating system: separator
// characters, absolute-path and volume detection, and the computation of the
// global fallback search roots. Resolution must reproduce the module loader
// of the host runtime on both platforms, so the path algebra here is pure
// string manipulation rather than path/filepath, which only speaks the
// syntax of the platform the verifier itself runs on.
type platform interface {
	// Separator is the primary path separator.
	Separator() byte

	// ListSeparator separates entries in a path-list variable such as
	// NODE_PATH.
	ListSeparator() byte

	// IsSep reports whether c separates path segments.
	IsSep(c byte) bool

	// IsAbs reports whether path is absolute.
	IsAbs(path string) bool

	// VolumeName returns the leading volume of path: "" on posix, the
	// drive-letter-colon prefix on windows.
	VolumeName(path string) string

	// GlobalPaths computes the global fallback search roots, in search
	// order: the NODE_PATH list, the user's legacy library directories,
	// then the install prefix's library directory.
	GlobalPaths(getenv func(string) string, execPath string) []string
}

// platformFor returns the strategy for a GOOS value.
func platformFor(goos string) platform {
	if goos == "windows" {
		return windowsPlatform{}
	}
	return posixPlatform{}
}

type posixPlatform struct{}

func (posixPlatform) Separator() byte     { return '/' }
func (posixPlatform) ListSeparator() byte { return ':' }
func (posixPlatform) IsSep(c byte) bool   { return c == '/' }

func (posixPlatform) IsAbs(path string) bool {
	return len(path) > 0 && path[0] == '/'
}

func (posixPlatform) VolumeName(string) string { return "" }

func (p posixPlatform) GlobalPaths(getenv func(string) string, execPath string) []string {
	paths := appendPathList(p, nil, getenv("NODE_PATH"))
	if home := getenv("HOME"); home != "" {
		paths = append(paths,
			pathJoin(p, home, ".node_modules"),
			pathJoin(p, home, ".node_libraries"))
	}
	if execPath != "" {
		// $PREFIX/lib/node, where the executable lives in $PREFIX/bin.
		prefix := pathParent(p, pathParent(p, pathClean(p, execPath)))
		paths = append(paths, pathJoin(p, pathJoin(p, prefix, "lib"), "node"))
	}
	return paths
}

type windowsPlatform struct{}

func (windowsPlatform) Separator() byte     { return '\\' }
func (windowsPlatform) ListSeparator() byte { return ';' }

func (windowsPlatform) IsSep(c byte) bool {
	return c == '\\' || c == '/'
}

func (w windowsPlatform) IsAbs(path string) bool {
	path = path[len(w.VolumeName(path)):]
	return len(path) > 0 && w.IsSep(path[0])
}

func (windowsPlatform) VolumeName(path string) string {
	if len(path) >= 2 && path[1] == ':' && isDriveLetter(path[0]) {
		return path[:2]
	}
	return ""
}

func (w windowsPlatform) GlobalPaths(getenv func(string) string, execPath string) []string {
	paths := appendPathList(w, nil, getenv("NODE_PATH"))
	if home := getenv("USERPROFILE"); home != "" {
		paths = append(paths,
			pathJoin(w, home, ".node_modules"),
			pathJoin(w, home, ".node_libraries"))
	}
	if execPath != "" {
		// The windows install places node.exe directly in the prefix.
		prefix := pathParent(w, pathClean(w, execPath))
		paths = append(paths, pathJoin(w, pathJoin(w, prefix, "lib"), "node"))
	}
	return paths
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// appendPathList splits a ListSeparator-delimited value and appends the
// non-empty entries to paths.
func appendPathList(pf platform, paths []string, list string) []string {
	for _, p := range strings.Split(list, string(pf.ListSeparator())) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// pathJoin appends name to dir with the platform separator.
func pathJoin(pf platform, dir, name string) string {
	if dir == "" {
		return name
	}
	if pf.IsSep(dir[len(dir)-1]) {
		return dir + name
	}
	return dir + string(pf.Separator()) + name
}

// pathBase returns the last segment of path, or "" for a bare root.
func pathBase(pf platform, path string) string {
	path = path[len(pf.VolumeName(path)):]
	for len(path) > 0 && pf.IsSep(path[len(path)-1]) {
		path = path[:len(path)-1]
	}
	i := len(path) - 1
	for i >= 0 && !pf.IsSep(path[i]) {
		i--
	}
	return path[i+1:]
}

// pathParent strips the last segment of path. The root of a tree is its own
// parent, which is what lets the ancestor walk detect termination.
func pathParent(pf platform, path string) string {
	vol := pf.VolumeName(path)
	rest := path[len(vol):]
	for len(rest) > 1 && pf.IsSep(rest[len(rest)-1]) {
		rest = rest[:len(rest)-1]
	}
	i := len(rest) - 1
	for i >= 0 && !pf.IsSep(rest[i]) {
		i--
	}
	switch {
	case i < 0:
		return vol
	case i == 0:
		return vol + rest[:1]
	default:
		return vol + rest[:i]
	}
}

// pathIsRoot reports whether path is a filesystem root ("/", `C:\`).
func pathIsRoot(pf platform, path string) bool {
	rest := path[len(pf.VolumeName(path)):]
	return len(rest) == 1 && pf.IsSep(rest[0])
}

// pathClean normalizes separators and resolves "." and ".." lexically.
func pathClean(pf platform, path string) string {
	vol := pf.VolumeName(path)
	rest := path[len(vol):]
	rooted := len(rest) > 0 && pf.IsSep(rest[0])

	var segs []string
	start := 0
	for i := 0; i <= len(rest); i++ {
		if i < len(rest) && !pf.IsSep(rest[i]) {
			continue
		}
		switch seg := rest[start:i]; seg {
		case "", ".":
		case "..":
			if n := len(segs); n > 0 && segs[n-1] != ".." {
				segs = segs[:n-1]
			} else if !rooted {
				segs = append(segs, "..")
			}
		default:
			segs = append(segs, seg)
		}
		start = i + 1
	}

	sep := string(pf.Separator())
	out := strings.Join(segs, sep)
	if rooted {
		return vol + sep + out
	}
	if out == "" {
		out = "."
	}
	return vol + out
}

// pathResolve makes name absolute relative to from and cleans it.
func pathResolve(pf platform, from, name string) string {
	if pf.IsAbs(name) {
		return pathClean(pf, name)
	}
	return pathClean(pf, pathJoin(pf, from, name))
}
