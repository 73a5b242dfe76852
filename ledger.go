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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"crawshaw.io/sqlite"
	"github.com/fatih/structs"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// JSONElement is a single entry in the record database.
type JSONElement []byte

const ledgerApplicationID = 1651864675
const ledgerVersion = 1

// timestampFormat is the wall clock format of the summary table and the
// transcript.
const timestampFormat = "2006-01-02 15:04:05"

var summaryHeader = []string{
	"Timestamp", "Browser", "User", "ArtifactType", "SourcePath", "DestinationPath",
}

// The Ledger is the append-only chain of custody record of one run.
// Every staged artifact lands as one row in the CSV summary table and as
// one JSON element in the sqlite record database. The narrative
// transcript is a separate stream owned by the run, not by the ledger,
// so that the evidence archive never contains the tool's own log.
type Ledger struct {
	csvFile afero.File
	summary *csv.Writer
	cursor  *sqlite.Conn
	count   int
}

// NewLedger creates the summary table and the record database. The
// summary gets its header row before any record is appended. dbURL is an
// OS path or ":memory:".
func NewLedger(fs afero.Fs, summaryPath, dbURL string) (*Ledger, error) {
	csvFile, err := fs.Create(summaryPath)
	if err != nil {
		return nil, errors.Wrap(err, "could not create summary table")
	}

	summary := csv.NewWriter(csvFile)
	if err := summary.Write(summaryHeader); err != nil {
		csvFile.Close() // nolint:errcheck
		return nil, errors.Wrap(err, "could not write summary header")
	}
	summary.Flush()
	if err := summary.Error(); err != nil {
		csvFile.Close() // nolint:errcheck
		return nil, errors.Wrap(err, "could not write summary header")
	}

	cursor, err := sqlite.OpenConn(dbURL, 0)
	if err != nil {
		csvFile.Close() // nolint:errcheck
		return nil, errors.Wrap(err, "could not open record database")
	}

	ledger := &Ledger{csvFile: csvFile, summary: summary, cursor: cursor}
	if err := setPragma(cursor, "application_id", ledgerApplicationID); err != nil {
		ledger.Close() // nolint:errcheck
		return nil, errors.Wrap(err, "could not set up record database")
	}
	if err := setPragma(cursor, "user_version", ledgerVersion); err != nil {
		ledger.Close() // nolint:errcheck
		return nil, errors.Wrap(err, "could not set up record database")
	}
	err = ledger.exec("CREATE TABLE IF NOT EXISTS `records` " +
		"(id TEXT PRIMARY KEY, json TEXT, insert_time TEXT)")
	if err != nil {
		ledger.Close() // nolint:errcheck
		return nil, errors.Wrap(err, "could not set up record database")
	}
	return ledger, nil
}

// Append adds an audit record to the summary table and the record
// database, in emission order.
func (l *Ledger) Append(record Record) error {
	row := []string{
		record.Timestamp.Format(timestampFormat),
		string(record.Browser),
		record.User,
		string(record.Type),
		record.SourcePath,
		record.DestinationPath,
	}
	if err := l.summary.Write(row); err != nil {
		return errors.Wrap(err, "could not append summary row")
	}
	l.summary.Flush()
	if err := l.summary.Error(); err != nil {
		return errors.Wrap(err, "could not append summary row")
	}

	if err := l.InsertElement(record.ID, record); err != nil {
		return err
	}
	l.count++
	return nil
}

// InsertElement adds a single element to the record database.
func (l *Ledger) InsertElement(id string, element interface{}) error {
	flat := lower(structs.Map(element)).(map[string]interface{})
	content, err := json.Marshal(flat)
	if err != nil {
		return errors.Wrap(err, "could not serialize element")
	}

	query := "INSERT INTO `records` (id, json, insert_time) VALUES ($id, $json, $time)"
	stmt, err := l.cursor.Prepare(query)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("could not prepare statement %s", query))
	}
	stmt.SetText("$id", id)
	stmt.SetText("$json", string(content))
	stmt.SetText("$time", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	if _, err := stmt.Step(); err != nil {
		return errors.Wrap(err, fmt.Sprint("could not exec statement ", query))
	}
	return stmt.Finalize()
}

// Elements returns every element of the record database in insertion
// order.
func (l *Ledger) Elements() ([]JSONElement, error) {
	stmt, err := l.cursor.Prepare("SELECT json FROM `records` ORDER BY rowid")
	if err != nil {
		return nil, err
	}

	elements := []JSONElement{}
	for {
		if hasRow, err := stmt.Step(); err != nil {
			return nil, err
		} else if !hasRow {
			break
		}
		elements = append(elements, JSONElement(stmt.GetText("json")))
	}
	return elements, stmt.Finalize()
}

// Count returns the number of appended audit records.
func (l *Ledger) Count() int {
	return l.count
}

// Close flushes the summary table and closes the record database.
func (l *Ledger) Close() error {
	l.summary.Flush()
	flushErr := l.summary.Error()
	closeErr := l.csvFile.Close()
	dbErr := l.cursor.Close()

	for _, err := range []error{flushErr, closeErr, dbErr} {
		if err != nil {
			return errors.Wrap(err, "could not close ledger")
		}
	}
	return nil
}

func (l *Ledger) exec(query string) error {
	stmt, err := l.cursor.Prepare(query)
	if err != nil {
		return err
	}
	if _, err := stmt.Step(); err != nil {
		return err
	}
	return stmt.Finalize()
}

func setPragma(conn *sqlite.Conn, name string, i int64) error {
	stmt, err := conn.Prepare("PRAGMA " + name + " = " + fmt.Sprint(i))
	if err != nil {
		return err
	}
	if _, err := stmt.Step(); err != nil {
		return err
	}
	return stmt.Finalize()
}

func pragma(conn *sqlite.Conn, name string) (int64, error) {
	stmt, err := conn.Prepare("PRAGMA " + name)
	if err != nil {
		return 0, err
	}
	if _, err := stmt.Step(); err != nil {
		return 0, err
	}
	i := stmt.GetInt64(name)
	return i, stmt.Finalize()
}
