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
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagedTree(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs,
		"/out/staging/Chrome/alice/History", []byte("history-bytes"), 0644))
	require.NoError(t, afero.WriteFile(fs,
		"/out/staging/Firefox/alice/abc.default/places.sqlite", []byte("places-bytes"), 0644))
	return fs
}

func readArchive(t *testing.T, fs afero.Fs, archivePath string) map[string][]byte {
	t.Helper()
	content, err := afero.ReadFile(fs, archivePath)
	require.NoError(t, err)
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	entries := map[string][]byte{}
	for _, file := range reader.File {
		rc, err := file.Open()
		require.NoError(t, err)
		data, err := afero.ReadAll(rc)
		rc.Close() // nolint:errcheck
		require.NoError(t, err)
		entries[file.Name] = data
	}
	return entries
}

func TestSeal(t *testing.T) {
	fs := stagedTree(t)
	sealer := &Sealer{Fs: fs}

	integrity, err := sealer.Seal("/out/staging", "/out/run.zip")
	require.NoError(t, err)
	assert.Equal(t, "run.zip", integrity.Archive)
	assert.Equal(t, "SHA256", integrity.Algorithm)
	assert.Len(t, integrity.Digest, 64)

	entries := readArchive(t, fs, "/out/run.zip")
	assert.Equal(t, []byte("history-bytes"), entries["Chrome/alice/History"])
	assert.Equal(t, []byte("places-bytes"), entries["Firefox/alice/abc.default/places.sqlite"])

	// the recorded digest covers the archive bytes exactly
	content, err := afero.ReadFile(fs, "/out/run.zip")
	require.NoError(t, err)
	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), integrity.Digest)
}

func TestSealIntegrityRecordFormat(t *testing.T) {
	fs := stagedTree(t)
	sealer := &Sealer{Fs: fs}

	integrity, err := sealer.Seal("/out/staging", "/out/run.zip")
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, "/out/run.zip.sha256.txt")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")

	assert.Equal(t, "# Integrity record for run.zip", lines[0])
	for _, line := range lines[:len(lines)-1] {
		assert.True(t, strings.HasPrefix(line, "# "), "header lines must be comments")
	}
	assert.Equal(t, "SHA256: "+integrity.Digest, lines[len(lines)-1])
}

func TestSealEmptyTree(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out/staging", 0750))
	sealer := &Sealer{Fs: fs}

	integrity, err := sealer.Seal("/out/staging", "/out/run.zip")
	require.NoError(t, err)

	entries := readArchive(t, fs, "/out/run.zip")
	assert.Empty(t, entries)

	_, err = sealer.Verify("/out/run.zip")
	assert.NoError(t, err)
	assert.NotEmpty(t, integrity.Digest)
}

func TestVerify(t *testing.T) {
	fs := stagedTree(t)
	sealer := &Sealer{Fs: fs}

	sealed, err := sealer.Seal("/out/staging", "/out/run.zip")
	require.NoError(t, err)

	// cleanup must not invalidate the seal
	require.NoError(t, fs.RemoveAll("/out/staging"))

	verified, err := sealer.Verify("/out/run.zip")
	require.NoError(t, err)
	assert.Equal(t, sealed.Digest, verified.Digest)
}

func TestVerifyTamperedArchive(t *testing.T) {
	fs := stagedTree(t)
	sealer := &Sealer{Fs: fs}

	_, err := sealer.Seal("/out/staging", "/out/run.zip")
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, "/out/run.zip")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/out/run.zip", append(content, '!'), 0644))

	_, err = sealer.Verify("/out/run.zip")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")
}

func TestVerifyMissingRecord(t *testing.T) {
	fs := stagedTree(t)
	sealer := &Sealer{Fs: fs}

	_, err := sealer.Verify("/out/run.zip")
	assert.Error(t, err)
}

func TestSealOverwritesExistingArchive(t *testing.T) {
	fs := stagedTree(t)
	require.NoError(t, afero.WriteFile(fs, "/out/run.zip", []byte("stale"), 0644))
	sealer := &Sealer{Fs: fs}

	_, err := sealer.Seal("/out/staging", "/out/run.zip")
	require.NoError(t, err)

	entries := readArchive(t, fs, "/out/run.zip")
	assert.Contains(t, entries, "Chrome/alice/History")
}
