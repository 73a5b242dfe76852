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
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	"github.com/qri-io/jsonschema"
	"github.com/spf13/afero"
)

// Browser identifies a supported browser family member.
type Browser string

// Supported browsers. Chrome, Edge and Brave share the Chromium profile
// layout, Firefox has its own multi-profile layout.
const (
	Chrome  Browser = "Chrome"
	Edge    Browser = "Edge"
	Brave   Browser = "Brave"
	Firefox Browser = "Firefox"
)

// AllBrowsers lists every browser the catalog knows about, in collection
// order.
func AllBrowsers() []Browser {
	return []Browser{Chrome, Edge, Brave, Firefox}
}

// ArtifactSpec names the files and directories considered forensically
// relevant for one browser family. Entries are single-segment glob
// patterns matched against the entries of a profile directory; the
// built-in catalog only uses exact names.
type ArtifactSpec struct {
	Files       []string `json:"files"`
	Directories []string `json:"directories"`
}

// Catalog is the single point of truth for what counts as an artifact.
// Changing forensic scope means changing this table, not collection code.
type Catalog map[Browser]ArtifactSpec

// SpecFor returns the artifact spec for a browser. Unknown browsers get
// an empty spec.
func (c Catalog) SpecFor(browser Browser) ArtifactSpec {
	return c[browser]
}

var chromiumSpec = ArtifactSpec{
	Files: []string{
		"History", "Cookies", "Login Data", "Bookmarks", "Web Data",
		"Top Sites", "Favicons", "Shortcuts", "Preferences", "Secure Preferences",
	},
	Directories: []string{
		"Local Storage", "Session Storage", "Sessions", "Extensions", "IndexedDB",
	},
}

var firefoxSpec = ArtifactSpec{
	Files: []string{
		"places.sqlite", "cookies.sqlite", "key4.db", "logins.json",
		"formhistory.sqlite", "permissions.sqlite", "favicons.sqlite",
		"extensions.json", "prefs.js",
	},
	Directories: []string{
		"storage", "sessionstore-backups", "extensions", "bookmarkbackups",
	},
}

// DefaultCatalog returns a copy of the compiled-in artifact catalog.
func DefaultCatalog() Catalog {
	catalog := Catalog{}
	for browser, spec := range map[Browser]ArtifactSpec{
		Chrome:  chromiumSpec,
		Edge:    chromiumSpec,
		Brave:   chromiumSpec,
		Firefox: firefoxSpec,
	} {
		catalog[browser] = ArtifactSpec{
			Files:       append([]string{}, spec.Files...),
			Directories: append([]string{}, spec.Directories...),
		}
	}
	return catalog
}

var catalogSchema = jsonschema.Must(`{
	"$id": "browsercollect:catalog",
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"properties": {
			"files": {"type": "array", "items": {"type": "string", "minLength": 1}},
			"directories": {"type": "array", "items": {"type": "string", "minLength": 1}}
		},
		"additionalProperties": false
	}
}`)

// LoadCatalog reads a catalog overlay file, validates it and merges its
// entries over the default catalog. Overlay entries extend the built-in
// artifact lists, they cannot remove anything.
func LoadCatalog(fs afero.Fs, path string) (Catalog, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read catalog overlay")
	}

	valErrs, err := catalogSchema.ValidateBytes(context.Background(), content)
	if err != nil {
		return nil, errors.Wrap(err, "could not validate catalog overlay")
	}
	if len(valErrs) > 0 {
		var flaws []string
		for _, valErr := range valErrs {
			flaws = append(flaws, fmt.Sprintf("%s", valErr))
		}
		return nil, fmt.Errorf("invalid catalog overlay [%s]", strings.Join(flaws, ", "))
	}

	overlay := Catalog{}
	if err := json.Unmarshal(content, &overlay); err != nil {
		return nil, errors.Wrap(err, "could not parse catalog overlay")
	}

	catalog := DefaultCatalog()
	for browser, overlaySpec := range overlay {
		spec := catalog[browser]
		if err := mergo.Merge(&spec, overlaySpec, mergo.WithAppendSlice); err != nil {
			return nil, errors.Wrap(err, "could not merge catalog overlay")
		}
		catalog[browser] = spec
	}

	if err := catalog.compile(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// compile checks that every catalog entry is a valid glob pattern.
func (c Catalog) compile() error {
	for browser, spec := range c {
		for _, pattern := range append(append([]string{}, spec.Files...), spec.Directories...) {
			if _, err := glob.Compile(pattern); err != nil {
				return errors.Wrapf(err, "invalid pattern '%s' for %s", pattern, browser)
			}
		}
	}
	return nil
}
