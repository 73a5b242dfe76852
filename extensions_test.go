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

func TestInventoryExtensions(t *testing.T) {
	fs := afero.NewMemMapFs()
	extensionsDir := "/staging/Chrome/alice/Extensions"
	require.NoError(t, afero.WriteFile(fs,
		extensionsDir+"/cjpalhdlnbpafiamejdnhcphjbkeiagm/1.52.2_0/manifest.json",
		[]byte(`{"name": "uBlock Origin", "version": "1.52.2"}`), 0644))
	require.NoError(t, afero.WriteFile(fs,
		extensionsDir+"/nmmhkkegccagdldgiimedpiccmgmieda/1.0.0_0/manifest.json",
		[]byte(`{"name": "__MSG_APP_NAME__", "version": "1.0.0"}`), 0644))
	require.NoError(t, afero.WriteFile(fs,
		extensionsDir+"/broken/2.0_0/manifest.json", []byte(`{`), 0644))

	profile := Profile{Browser: Chrome, User: "alice"}
	extensions := InventoryExtensions(fs, extensionsDir, profile)
	require.Len(t, extensions, 3)

	byID := map[string]Extension{}
	for _, extension := range extensions {
		assert.Equal(t, "browser-extension", extension.Type)
		assert.Equal(t, Chrome, extension.Browser)
		assert.Equal(t, "alice", extension.User)
		byID[extension.ID] = extension
	}

	assert.Equal(t, "uBlock Origin", byID["cjpalhdlnbpafiamejdnhcphjbkeiagm"].Name)
	assert.Equal(t, "1.52.2", byID["cjpalhdlnbpafiamejdnhcphjbkeiagm"].Version)

	// localized placeholder names fall back to the extension id
	assert.Equal(t, "nmmhkkegccagdldgiimedpiccmgmieda", byID["nmmhkkegccagdldgiimedpiccmgmieda"].Name)
}

func TestInventoryExtensionsMissingDir(t *testing.T) {
	assert.Empty(t, InventoryExtensions(afero.NewMemMapFs(), "/gone", Profile{}))
}
