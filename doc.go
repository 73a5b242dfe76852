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

// Package browsercollect acquires browser artifacts (history, cookies,
// credential stores, bookmarks, extension state, local and session storage)
// from the user profiles of a live Windows system or a mounted disk image
// and seals them into a single verifiable evidence archive.
//
// A run stages all collected files into a temporary tree, records every
// copy in an append-only ledger, compresses the tree into a zip archive,
// hashes the archive and only then deletes the staging tree:
//
//	output/
//	├── browser_collection_20200114_150405.zip
//	├── browser_collection_20200114_150405.zip.sha256.txt
//	├── collection_log_20200114_150405.txt
//	├── collection_records_20200114_150405.db
//	└── collection_summary.csv
//
// Inside the archive, artifacts are rooted at <Browser>/<User>/..., e.g.
//
//	Chrome/alice/History
//	Firefox/alice/abcd1234.default/places.sqlite
//
// Locked or otherwise unreadable files are skipped without aborting the
// run; the ledger records exactly what was staged. Decrypting browser
// databases is out of scope, use a dedicated dumper on the collected
// files afterwards.
package browsercollect
