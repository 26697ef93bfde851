// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pkgverify

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ToolName is the section name NODE_DEBUG is matched against to enable
// tracing, mirroring the runtime's own debuglog convention.
const ToolName = "pkg-verify"

// NewTracer returns a TraceFunc writing prefixed lines to w when the
// NODE_DEBUG environment variable selects this tool, and a no-op otherwise.
func NewTracer(w io.Writer) TraceFunc {
	if !debugEnabled(os.Getenv("NODE_DEBUG"), ToolName) {
		return func(string, ...interface{}) {}
	}
	return Tracer(w)
}

// Tracer returns an unconditional TraceFunc writing to w.
func Tracer(w io.Writer) TraceFunc {
	prefix := fmt.Sprintf("%s %d: ", strings.ToUpper(ToolName), os.Getpid())
	return func(format string, args ...interface{}) {
		fmt.Fprintf(w, prefix+format+"\n", args...)
	}
}

// debugEnabled reports whether the comma- or space-separated pattern list
// in a NODE_DEBUG-style value selects section. Patterns match
// case-insensitively and may contain '*' wildcards.
func debugEnabled(list, section string) bool {
	section = strings.ToLower(section)
	for _, pat := range strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		if matchPattern(strings.ToLower(pat), section) {
			return true
		}
	}
	return false
}

func matchPattern(pat, s string) bool {
	for len(pat) > 0 {
		if pat[0] == '*' {
			pat = pat[1:]
			if pat == "" {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchPattern(pat, s[i:]) {
					return true
				}
			}
			return false
		}
		if len(s) == 0 || pat[0] != s[0] {
			return false
		}
		pat, s = pat[1:], s[1:]
	}
	return len(s) == 0
}
