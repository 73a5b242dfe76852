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
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    Config
		wantErr bool
	}{
		{
			"No file", "", "",
			Config{OutputDir: ".", UsersRoot: `C:\Users`}, false,
		},
		{
			"Partial", "/browsercollect.toml", `output_dir = "/evidence"`,
			Config{OutputDir: "/evidence", UsersRoot: `C:\Users`}, false,
		},
		{
			"Full", "/browsercollect.toml",
			"output_dir = \"/evidence\"\nusers_root = \"/mnt/image/Users\"\nrecord_db = \":memory:\"\ncatalog = \"/catalog.json\"",
			Config{
				OutputDir: "/evidence", UsersRoot: "/mnt/image/Users",
				RecordDB: ":memory:", Catalog: "/catalog.json",
			}, false,
		},
		{"Broken", "/browsercollect.toml", `output_dir = `, Config{}, true},
		{"Missing", "/gone.toml", "", Config{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tt.content != "" {
				require.NoError(t, afero.WriteFile(fs, "/browsercollect.toml", []byte(tt.content), 0644))
			}

			cfg, err := LoadConfig(fs, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}
