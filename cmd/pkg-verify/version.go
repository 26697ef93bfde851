// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"runtime"

	"github.com/chjj/pkg-verify"
)

// Set by the build: -ldflags "-X main.version=... -X main.buildDate=...".
var (
	version    = "devel"
	buildDate  string
	commitHash string
)

type versionCommand struct{}

func (cmd *versionCommand) Name() string      { return "version" }
func (cmd *versionCommand) Args() string      { return "" }
func (cmd *versionCommand) ShortHelp() string { return "Show the tool version information" }
func (cmd *versionCommand) LongHelp() string  { return "Show the tool version information" }
func (cmd *versionCommand) Hidden() bool      { return false }

func (cmd *versionCommand) Register(fs *flag.FlagSet) {}

func (cmd *versionCommand) Run(ctx *pkgverify.Ctx, args []string) error {
	ctx.Out.Printf(`pkg-verify:
 version     : %s
 build date  : %s
 git hash    : %s
 go version  : %s
 go compiler : %s
 platform    : %s/%s
`, version, buildDate, commitHash, runtime.Version(), runtime.Compiler,
		runtime.GOOS, runtime.GOARCH)
	return nil
}
