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
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Mode selects where the users root comes from.
type Mode string

// Acquisition modes.
const (
	Live  Mode = "live"  // the running system's own users directory
	Image Mode = "image" // a mounted forensic image's users directory
)

// RunContext is the process-wide configuration of one acquisition run,
// resolved once and never reassigned.
type RunContext struct {
	ID        string
	Mode      Mode
	UsersRoot string
	OutputDir string
	RecordDB  string // OS path or ":memory:", empty selects a file in OutputDir
	Started   time.Time
	Catalog   Catalog
}

// NewRunContext resolves the configuration for one run. A non-empty
// imageRoot selects image mode with that users root, trailing path
// separators normalized away.
func NewRunContext(cfg Config, imageRoot string) RunContext {
	ctx := RunContext{
		ID:        uuid.New().String(),
		Mode:      Live,
		UsersRoot: cfg.UsersRoot,
		OutputDir: cfg.OutputDir,
		RecordDB:  cfg.RecordDB,
		Started:   time.Now(),
		Catalog:   DefaultCatalog(),
	}
	if imageRoot != "" {
		ctx.Mode = Image
		ctx.UsersRoot = strings.TrimRight(imageRoot, `/\`)
	}
	return ctx
}

// Report summarizes a finished run.
type Report struct {
	ArchivePath    string
	IntegrityPath  string
	TranscriptPath string
	SummaryPath    string
	RecordDBPath   string
	Records        int
	FailedItems    int
	Digest         string
}

// Runner executes the acquisition pipeline: discover profiles, stage
// artifacts, finalize the ledger, seal the archive, delete the staging
// tree. The staging tree survives a failed seal so that raw evidence can
// be recovered manually.
type Runner struct {
	Src     afero.Fs  // filesystem holding the users root
	Dest    afero.Fs  // filesystem receiving staging tree and outputs
	Console io.Writer // extra transcript copy for the operator, may be nil
}

// Run performs one complete acquisition run.
func (r *Runner) Run(ctx RunContext) (*Report, error) { // nolint:funlen
	// Init
	ts := ctx.Started.UTC().Format("20060102_150405")
	runName := "browser_collection_" + ts
	staging := filepath.Join(ctx.OutputDir, runName)
	if err := r.Dest.MkdirAll(staging, 0750); err != nil {
		return nil, errors.Wrap(err, "could not create staging tree")
	}

	// The transcript starts inside the staging tree and is relocated
	// before sealing, the archive must only contain collected artifacts.
	transcriptName := "collection_log_" + ts + ".txt"
	transcript, err := r.Dest.Create(filepath.Join(staging, transcriptName))
	if err != nil {
		return nil, errors.Wrap(err, "could not create transcript")
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: transcript, NoColor: true, TimeFormat: timestampFormat}
	if r.Console != nil {
		out = zerolog.MultiLevelWriter(out,
			zerolog.ConsoleWriter{Out: r.Console, TimeFormat: timestampFormat})
	}
	logger := zerolog.New(out).With().Timestamp().Str("run", ctx.ID).Logger()

	// ModeSelect
	usersRoot := strings.TrimRight(ctx.UsersRoot, `/\`)
	logger.Info().Str("mode", string(ctx.Mode)).Str("users_root", usersRoot).
		Str("output", ctx.OutputDir).Msg("starting acquisition")

	summaryPath := filepath.Join(ctx.OutputDir, "collection_summary.csv")
	recordDB := ctx.RecordDB
	if recordDB == "" {
		recordDB = filepath.Join(ctx.OutputDir, "collection_records_"+ts+".db")
	}
	ledger, err := NewLedger(r.Dest, summaryPath, recordDB)
	if err != nil {
		transcript.Close() // nolint:errcheck
		return nil, err
	}

	// Discover & Collect
	failedItems := r.collect(ctx, usersRoot, staging, ledger, logger)

	// FinalizeLedger
	records := ledger.Count()
	if err := ledger.Close(); err != nil {
		transcript.Close() // nolint:errcheck
		return nil, err
	}
	logger.Info().Int("records", records).Int("failed_items", failedItems).
		Msg("collection finished, sealing archive")
	if err := transcript.Close(); err != nil {
		return nil, errors.Wrap(err, "could not finalize transcript")
	}
	transcriptPath := filepath.Join(ctx.OutputDir, transcriptName)
	if err := r.Dest.Rename(filepath.Join(staging, transcriptName), transcriptPath); err != nil {
		return nil, errors.Wrap(err, "could not relocate transcript")
	}

	// Seal, fatal on failure, staging tree stays on disk
	sealer := &Sealer{Fs: r.Dest}
	archivePath := filepath.Join(ctx.OutputDir, runName+".zip")
	integrity, err := sealer.Seal(staging, archivePath)
	if err != nil {
		return nil, err
	}

	// Cleanup, only after a successful seal
	console := r.consoleLogger()
	if err := r.Dest.RemoveAll(staging); err != nil {
		console.Warn().Err(err).Str("path", staging).Msg("could not delete staging tree")
	}

	report := &Report{
		ArchivePath:    archivePath,
		IntegrityPath:  archivePath + ".sha256.txt",
		TranscriptPath: transcriptPath,
		SummaryPath:    summaryPath,
		RecordDBPath:   recordDB,
		Records:        records,
		FailedItems:    failedItems,
		Digest:         integrity.Digest,
	}
	console.Info().Str("archive", report.ArchivePath).Str("integrity", report.IntegrityPath).
		Str("transcript", report.TranscriptPath).Str("digest", report.Digest).
		Int("records", report.Records).Msg("acquisition sealed")
	return report, nil
}

func (r *Runner) collect(ctx RunContext, usersRoot, staging string,
	ledger *Ledger, logger zerolog.Logger) (failedItems int) {
	locator := &Locator{Fs: r.Src, Log: logger}
	collector := &Collector{
		Src: r.Src, Dest: r.Dest, Staging: staging, Ledger: ledger, Log: logger,
	}

	for _, user := range locator.EnumerateUsers(usersRoot) {
		for _, browser := range AllBrowsers() {
			for _, profile := range locator.ResolveProfiles(usersRoot, user, browser) {
				log := logger.With().Str("browser", string(browser)).
					Str("user", user).Str("profile", profile.Path).Logger()
				if profile.Name != "" {
					log = log.With().Str("name", profile.Name).Logger()
				}
				log.Info().Msg("collecting profile")

				results, err := collector.Collect(profile, ctx.Catalog.SpecFor(browser))
				if err != nil {
					log.Warn().Err(err).Msg("could not collect profile")
					failedItems++
					continue
				}
				for _, result := range results {
					if result.Outcome == Failed {
						failedItems++
					}
				}

				r.inventory(collector, ledger, profile, log)
			}
		}
	}
	return failedItems
}

// inventory records the extensions found in a staged Chromium profile.
func (r *Runner) inventory(collector *Collector, ledger *Ledger, profile Profile, log zerolog.Logger) {
	if profile.Browser == Firefox {
		return
	}
	extensionsDir := filepath.Join(collector.DestDir(profile), "Extensions")
	for _, extension := range InventoryExtensions(r.Dest, extensionsDir, profile) {
		id := "browser-extension--" + uuid.New().String()
		if err := ledger.InsertElement(id, extension); err != nil {
			log.Warn().Err(err).Str("extension", extension.ID).Msg("could not record extension")
			continue
		}
		log.Info().Str("extension", extension.Name).Str("version", extension.Version).
			Msg("extension inventoried")
	}
}

func (r *Runner) consoleLogger() zerolog.Logger {
	if r.Console == nil {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: r.Console, TimeFormat: timestampFormat}).
		With().Timestamp().Logger()
}
