// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

package browsercollect

import (
	"github.com/BurntSushi/toml"
	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Config holds the operator-facing settings of the tool.
type Config struct {
	OutputDir string `toml:"output_dir"`
	UsersRoot string `toml:"users_root"`
	RecordDB  string `toml:"record_db"`
	Catalog   string `toml:"catalog"`
}

// DefaultConfig returns the built-in settings for a live Windows
// acquisition.
func DefaultConfig() Config {
	return Config{
		OutputDir: ".",
		UsersRoot: `C:\Users`,
	}
}

// LoadConfig reads an optional TOML config file and merges it over the
// defaults. An empty path yields the defaults.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return Config{}, errors.Wrap(err, "could not read config")
		}
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "could not parse config")
		}
	}
	if err := mergo.Merge(&cfg, DefaultConfig()); err != nil {
		return Config{}, errors.Wrap(err, "could not apply config defaults")
	}
	return cfg, nil
}
