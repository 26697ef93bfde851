// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/chjj/pkg-verify"
	"github.com/chjj/pkg-verify/internal/fs"
)

const verifyShortHelp = `Verify an installed dependency tree`
const verifyLongHelp = `
Verify resolves a package starting from a directory and walks its manifest
graph, checking that every declared dependency is installed where the module
loader would find it and that each installed version satisfies the declared
semantic-version range. Nothing is written and no package code is loaded.

With no arguments, the package rooted at the current directory is verified.
A second argument names a package to resolve from the directory instead.

The error policy controls what happens on the first problem: "throw" stops
immediately, "warn" reports every problem and exits nonzero at the end,
"exit" terminates the process on the first report.
`

type verifyCommand struct {
	policy string
	config string
}

func (cmd *verifyCommand) Name() string      { return "verify" }
func (cmd *verifyCommand) Args() string      { return "[dir] [package]" }
func (cmd *verifyCommand) ShortHelp() string { return verifyShortHelp }
func (cmd *verifyCommand) LongHelp() string  { return verifyLongHelp }
func (cmd *verifyCommand) Hidden() bool      { return false }

func (cmd *verifyCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.policy, "policy", "", "error policy: warn, throw or exit")
	fs.StringVar(&cmd.config, "config", "", "path to a pkg-verify.toml")
}

func (cmd *verifyCommand) Run(ctx *pkgverify.Ctx, args []string) error {
	if len(args) > 2 {
		return errors.Errorf("too many args (%d)", len(args))
	}

	dir := ctx.WorkingDir
	if len(args) > 0 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, "cannot absolutize %s", dir)
	}
	if ok, err := fs.IsDir(dir); err != nil || !ok {
		return errors.Errorf("%s is not a directory", dir)
	}

	name := "."
	if len(args) > 1 {
		name = args[1]
	}

	cfgPath := cmd.config
	if cfgPath == "" {
		cfgPath = filepath.Join(dir, configName)
	}
	cfg, err := loadConfig(cfgPath, cmd.config != "")
	if err != nil {
		return err
	}

	tracer := ctx.Tracer()
	if cfg.Verbose && !ctx.Verbose {
		tracer = pkgverify.Tracer(ctx.Err.Writer())
	}

	policy := cmd.policy
	if policy == "" {
		policy = cfg.Policy
	}
	if policy == "" {
		policy = "warn"
	}

	var report pkgverify.ReportFunc
	switch policy {
	case "throw":
		report = pkgverify.AbortOnError()
	case "warn":
		report = pkgverify.WarnAndContinue(ctx.Err)
	case "exit":
		report = pkgverify.WarnAndExit(ctx.Err)
	default:
		return errors.Errorf("unknown error policy %q", policy)
	}

	resolver := pkgverify.NewResolver(&pkgverify.ResolverOptions{
		Getenv: ctx.Getenv,
		Paths:  cfg.Paths,
		Trace:  tracer,
	})

	result, err := pkgverify.VerifyWithConfig(dir, name, &pkgverify.Config{
		Report:   report,
		Trace:    tracer,
		Resolver: resolver,
	})
	if err != nil {
		return err
	}

	for _, native := range result.NativePackages {
		tracer("native binding package: %s", native)
	}
	if result.Problems > 0 {
		return errors.Errorf("%d problem(s) found in %d package(s)", result.Problems, result.Visited)
	}

	ctx.Out.Printf("verified %d package(s)", result.Visited)
	return nil
}
