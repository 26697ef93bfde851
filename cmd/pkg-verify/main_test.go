// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "testing"

func TestParseArgs(t *testing.T) {
	cases := []struct {
		args          []string
		cmdName       string
		printCmdUsage bool
		exit          bool
	}{
		{[]string{"pkg-verify"}, "", false, true},
		{[]string{"pkg-verify", "help"}, "help", false, true},
		{[]string{"pkg-verify", "verify"}, "verify", false, false},
		{[]string{"pkg-verify", "help", "verify"}, "verify", true, false},
		{[]string{"pkg-verify", "verify", "."}, "verify", false, false},
		{[]string{"pkg-verify", "-h", "list"}, "list", true, false},
	}

	for _, c := range cases {
		cmdName, printCmdUsage, exit := parseArgs(c.args)
		if cmdName != c.cmdName || printCmdUsage != c.printCmdUsage || exit != c.exit {
			t.Errorf("parseArgs(%v) = (%q, %v, %v), want (%q, %v, %v)",
				c.args, cmdName, printCmdUsage, exit, c.cmdName, c.printCmdUsage, c.exit)
		}
	}
}
