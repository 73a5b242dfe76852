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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Integrity describes a sealed archive. Once written it is never
// changed; re-hashing the archive must reproduce Digest at any later
// point.
type Integrity struct {
	Archive   string
	Generated time.Time
	Algorithm string
	Digest    string
}

// Sealer compresses a finished staging tree into one archive and records
// its digest. An unsealed archive has no forensic value, so every error
// here is fatal to the run.
type Sealer struct {
	Fs afero.Fs
}

// Seal compresses the staging tree into archivePath, hashes the closed
// archive's bytes and writes the integrity record next to it. A
// pre-existing archive at that path is overwritten.
func (s *Sealer) Seal(stagingRoot, archivePath string) (*Integrity, error) {
	if err := s.compress(stagingRoot, archivePath); err != nil {
		return nil, errors.Wrap(err, "could not compress staging tree")
	}

	digest, err := s.digest(archivePath)
	if err != nil {
		return nil, errors.Wrap(err, "could not hash archive")
	}

	integrity := &Integrity{
		Archive:   filepath.Base(archivePath),
		Generated: time.Now().UTC(),
		Algorithm: "SHA256",
		Digest:    digest,
	}
	if err := s.writeRecord(archivePath+".sha256.txt", integrity); err != nil {
		return nil, errors.Wrap(err, "could not write integrity record")
	}
	return integrity, nil
}

// Verify recomputes the archive digest and compares it with its
// integrity record.
func (s *Sealer) Verify(archivePath string) (*Integrity, error) {
	content, err := afero.ReadFile(s.Fs, archivePath+".sha256.txt")
	if err != nil {
		return nil, errors.Wrap(err, "could not read integrity record")
	}

	var want string
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, "SHA256: ") {
			want = strings.TrimSpace(strings.TrimPrefix(line, "SHA256: "))
		}
	}
	if want == "" {
		return nil, errors.New("integrity record contains no SHA256 line")
	}

	digest, err := s.digest(archivePath)
	if err != nil {
		return nil, errors.Wrap(err, "could not hash archive")
	}
	if digest != want {
		return nil, fmt.Errorf("digest mismatch (archive is %s, record says %s)", digest, want)
	}
	return &Integrity{Archive: filepath.Base(archivePath), Algorithm: "SHA256", Digest: digest}, nil
}

func (s *Sealer) compress(root, archivePath string) error {
	archive, err := s.Fs.Create(archivePath)
	if err != nil {
		return err
	}

	writer := zip.NewWriter(archive)
	walkErr := afero.Walk(s.Fs, root, func(srcPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, srcPath)
		if err != nil {
			return err
		}
		entry, err := writer.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		file, err := s.Fs.Open(srcPath)
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, file)
		file.Close() // nolint:errcheck
		return err
	})
	if walkErr != nil {
		writer.Close()  // nolint:errcheck
		archive.Close() // nolint:errcheck
		return walkErr
	}
	if err := writer.Close(); err != nil {
		archive.Close() // nolint:errcheck
		return err
	}
	return archive.Close()
}

func (s *Sealer) digest(archivePath string) (string, error) {
	file, err := s.Fs.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Sealer) writeRecord(recordPath string, integrity *Integrity) error {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "# Integrity record for %s\n", integrity.Archive)
	fmt.Fprintf(buf, "# Generated: %s\n", integrity.Generated.Format(timestampFormat)+" UTC")
	fmt.Fprintf(buf, "# Algorithm: %s\n", integrity.Algorithm)
	fmt.Fprintf(buf, "# Recompute the digest over the archive bytes to prove the evidence was not altered.\n")
	fmt.Fprintf(buf, "%s: %s\n", integrity.Algorithm, integrity.Digest)
	return afero.WriteFile(s.Fs, recordPath, buf.Bytes(), 0640)
}
