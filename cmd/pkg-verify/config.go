// Copyright 2018 The pkg-verify Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// configName is the optional per-project configuration file, looked up in
// the directory being verified.
const configName = "pkg-verify.toml"

type tomlConfig struct {
	// Policy is the default error policy, overridden by -policy.
	Policy string `toml:"policy"`

	// Paths are extra installation roots searched after the ancestor
	// node_modules walk, like NODE_PATH entries.
	Paths []string `toml:"paths"`

	// Verbose enables tracing without NODE_DEBUG.
	Verbose bool `toml:"verbose"`
}

// loadConfig reads a pkg-verify.toml. A missing file is only an error when
// the user named it explicitly.
func loadConfig(path string, required bool) (*tomlConfig, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return &tomlConfig{}, nil
		}
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}
	cfg := &tomlConfig{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse %s", path)
	}
	return cfg, nil
}
