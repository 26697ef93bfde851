// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/chjj/pkg-verify"
	"github.com/chjj/pkg-verify/internal/fs"
)

const listShortHelp = `List the packages installed under node_modules`
const listLongHelp = `
List walks the node_modules tree below a directory (the current directory by
default) and prints every installed package as name@version. Packages
carrying a native-build descriptor are marked, since those are the ones a
changed runtime version can break.
`

type listCommand struct {
	native bool
}

func (cmd *listCommand) Name() string      { return "list" }
func (cmd *listCommand) Args() string      { return "[dir]" }
func (cmd *listCommand) ShortHelp() string { return listShortHelp }
func (cmd *listCommand) LongHelp() string  { return listLongHelp }
func (cmd *listCommand) Hidden() bool      { return false }

func (cmd *listCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.native, "native", false, "only list packages with native build descriptors")
}

func (cmd *listCommand) Run(ctx *pkgverify.Ctx, args []string) error {
	if len(args) > 1 {
		return errors.Errorf("too many args (%d)", len(args))
	}

	root := ctx.WorkingDir
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrapf(err, "cannot absolutize %s", root)
	}

	modules := filepath.Join(root, "node_modules")
	if ok, err := fs.IsDir(modules); err != nil || !ok {
		return errors.Errorf("no node_modules directory in %s", root)
	}

	return godirwalk.Walk(modules, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			// Descend through installation roots and scope directories;
			// print package roots; stay out of package internals.
			parent := filepath.Base(filepath.Dir(path))
			switch {
			case base == "node_modules" || strings.HasPrefix(base, "@"):
				return nil
			case parent == "node_modules" || strings.HasPrefix(parent, "@"):
				cmd.printPackage(ctx, path)
				return nil
			default:
				return filepath.SkipDir
			}
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			ctx.Err.Printf("warning: %s: %v", path, err)
			return godirwalk.SkipNode
		},
	})
}

func (cmd *listCommand) printPackage(ctx *pkgverify.Ctx, dir string) {
	m, err := pkgverify.LoadManifest(dir)
	if err != nil {
		ctx.Err.Printf("warning: %v", err)
		return
	}

	native := m.HasNativeBuild()
	if cmd.native && !native {
		return
	}

	name, ok := m.Name()
	if !ok {
		name = filepath.Base(dir)
	}
	version, ok := m.Version()
	if !ok {
		version = "unknown"
	}

	if native {
		ctx.Out.Printf("%s@%s (native)", name, version)
	} else {
		ctx.Out.Printf("%s@%s", name, version)
	}
}
