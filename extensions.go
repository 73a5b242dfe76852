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
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// Extension is one installed browser extension found in a staged
// Chromium profile.
type Extension struct {
	Type    string
	ID      string
	Name    string
	Version string
	Browser Browser
	User    string
}

// InventoryExtensions reads the manifest.json of every extension below a
// staged Extensions directory. Chromium lays extensions out as
// <id>/<version>/manifest.json. Manifests that are missing or unreadable
// are skipped, the copied files are the evidence, the inventory is
// commentary.
func InventoryExtensions(fs afero.Fs, extensionsDir string, profile Profile) []Extension {
	ids, err := afero.ReadDir(fs, extensionsDir)
	if err != nil {
		return nil
	}

	var extensions []Extension
	for _, id := range ids {
		if !id.IsDir() {
			continue
		}
		versions, err := afero.ReadDir(fs, filepath.Join(extensionsDir, id.Name()))
		if err != nil {
			continue
		}
		for _, version := range versions {
			if !version.IsDir() {
				continue
			}
			manifest, err := afero.ReadFile(fs,
				filepath.Join(extensionsDir, id.Name(), version.Name(), "manifest.json"))
			if err != nil {
				continue
			}

			name := gjson.GetBytes(manifest, "name").String()
			if strings.HasPrefix(name, "__MSG_") {
				// localized name placeholder, the id is all we have
				name = id.Name()
			}
			extensions = append(extensions, Extension{
				Type:    "browser-extension",
				ID:      id.Name(),
				Name:    name,
				Version: gjson.GetBytes(manifest, "version").String(),
				Browser: profile.Browser,
				User:    profile.User,
			})
		}
	}
	return extensions
}
