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
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ArtifactType distinguishes single file copies from whole subtree copies.
type ArtifactType string

// Artifact types as they appear in the summary table.
const (
	File      ArtifactType = "File"
	Directory ArtifactType = "Directory"
)

// Outcome is the per-item result of a copy attempt. A skipped item was
// not present in the profile, a failed item was present but could not be
// copied (e.g. locked by a running browser).
type Outcome int

const (
	Copied Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Copied:
		return "copied"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ItemResult is the outcome of one catalog entry for one profile.
type ItemResult struct {
	Name    string
	Type    ArtifactType
	Outcome Outcome
	Err     error
}

// Record is one audit ledger entry. Every file or directory that appears
// in the staging tree has exactly one record.
type Record struct {
	ID              string
	Timestamp       time.Time `structs:"Timestamp,omitnested"`
	Browser         Browser
	User            string
	Type            ArtifactType
	SourcePath      string
	DestinationPath string
}

// NewRecord creates an audit record for one staged artifact.
func NewRecord(profile Profile, kind ArtifactType, src, dst string, now time.Time) Record {
	return Record{
		ID:              "record--" + uuid.New().String(),
		Timestamp:       now.UTC(),
		Browser:         profile.Browser,
		User:            profile.User,
		Type:            kind,
		SourcePath:      src,
		DestinationPath: dst,
	}
}

// Collector stages catalog artifacts of single profiles into the staging
// tree and appends one ledger record per staged item.
type Collector struct {
	Src     afero.Fs
	Dest    afero.Fs
	Staging string
	Ledger  *Ledger
	Log     zerolog.Logger
	Now     func() time.Time // defaults to time.Now
}

func (c *Collector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// DestDir returns the staging directory for a profile. Firefox profiles
// get one subdirectory per profile so that multiple profiles of one user
// cannot collide.
func (c *Collector) DestDir(profile Profile) string {
	dir := filepath.Join(c.Staging, string(profile.Browser), profile.User)
	if profile.Browser == Firefox {
		dir = filepath.Join(dir, filepath.Base(profile.Path))
	}
	return dir
}

// Collect copies every catalog artifact found in the profile into the
// staging tree. A missing profile path is a no-op. Individual copy
// failures never abort the collection, they only show up as failed item
// results and as missing ledger records.
func (c *Collector) Collect(profile Profile, spec ArtifactSpec) ([]ItemResult, error) {
	ok, err := afero.DirExists(c.Src, profile.Path)
	if err != nil || !ok {
		return nil, nil
	}

	destDir := c.DestDir(profile)
	if err := c.Dest.MkdirAll(destDir, 0750); err != nil {
		return nil, errors.Wrap(err, "could not create staging directory")
	}

	entries, err := afero.ReadDir(c.Src, profile.Path)
	if err != nil {
		c.Log.Warn().Err(err).Str("path", profile.Path).Msg("profile not readable")
		return nil, nil
	}

	var results []ItemResult
	for _, pattern := range spec.Files {
		results = append(results, c.copyMatches(profile, pattern, File, entries, destDir)...)
	}
	for _, pattern := range spec.Directories {
		results = append(results, c.copyMatches(profile, pattern, Directory, entries, destDir)...)
	}
	return results, nil
}

func (c *Collector) copyMatches(profile Profile, pattern string, kind ArtifactType,
	entries []os.FileInfo, destDir string) []ItemResult {
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return []ItemResult{{Name: pattern, Type: kind, Outcome: Failed, Err: err}}
	}

	var results []ItemResult
	for _, entry := range entries {
		if entry.IsDir() != (kind == Directory) || !matcher.Match(entry.Name()) {
			continue
		}
		results = append(results, c.copyItem(profile, entry.Name(), kind, destDir))
	}
	if len(results) == 0 {
		results = append(results, ItemResult{Name: pattern, Type: kind, Outcome: Skipped})
	}
	return results
}

func (c *Collector) copyItem(profile Profile, name string, kind ArtifactType, destDir string) ItemResult {
	src := filepath.Join(profile.Path, name)
	dst := filepath.Join(destDir, name)

	var copyErr error
	if kind == Directory {
		copyErr = copyTree(c.Src, c.Dest, src, dst)
	} else {
		copyErr = copyFile(c.Src, c.Dest, src, dst)
	}
	if copyErr != nil {
		c.Log.Warn().Err(copyErr).
			Str("browser", string(profile.Browser)).Str("user", profile.User).
			Str("artifact", name).Msg("copy failed")
		return ItemResult{Name: name, Type: kind, Outcome: Failed, Err: copyErr}
	}

	record := NewRecord(profile, kind, src, dst, c.now())
	if err := c.Ledger.Append(record); err != nil {
		c.Log.Warn().Err(err).Str("artifact", name).Msg("could not append to ledger")
		return ItemResult{Name: name, Type: kind, Outcome: Failed, Err: err}
	}

	c.Log.Info().
		Str("browser", string(profile.Browser)).Str("user", profile.User).
		Str("artifact", name).Str("type", string(kind)).Msg("collected")
	return ItemResult{Name: name, Type: kind, Outcome: Copied}
}

func copyFile(srcFS, destFS afero.Fs, src, dst string) error {
	in, err := srcFS.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := destFS.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close() // nolint:errcheck
		return err
	}
	return out.Close()
}

func copyTree(srcFS, destFS afero.Fs, src, dst string) error {
	return afero.Walk(srcFS, src, func(srcPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, srcPath)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return destFS.MkdirAll(target, 0750)
		}
		return copyFile(srcFS, destFS, srcPath, target)
	})
}
