// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fs

import (
	"os"

	"github.com/pkg/errors"
)

// IsDir determines whether name is a directory. A path that does not exist
// is not an error; anything else that goes wrong during the stat is.
func IsDir(name string) (bool, error) {
	fi, err := os.Stat(name)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !fi.IsDir() {
		return false, errors.Errorf("%q is not a directory", name)
	}
	return true, nil
}

// IsRegular determines whether name is a regular file.
func IsRegular(name string) (bool, error) {
	fi, err := os.Stat(name)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if mode := fi.Mode(); mode&os.ModeType != 0 {
		return false, errors.Errorf("%q is a %v, expected a file", name, mode)
	}
	return true, nil
}

// DirExists is the quiet probe used during path resolution. Missing,
// unreadable and wrong-typed paths all report false; resolution treats
// every stat failure as "does not exist".
func DirExists(name string) bool {
	ok, err := IsDir(name)
	return err == nil && ok
}

// FileExists reports whether name exists and is a regular file, with the
// same uniform treatment of stat failures as DirExists.
func FileExists(name string) bool {
	ok, err := IsRegular(name)
	return err == nil && ok
}
