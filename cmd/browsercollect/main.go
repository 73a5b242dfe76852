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

// Package main implements the browsercollect command line tool with
// subcommands to acquire browser artifacts and to handle the resulting
// evidence archives.
//
//	acquire   Collect browser artifacts into a sealed evidence archive
//	verify    Recompute an archive digest and compare it with its integrity record
//	ls        List the artifacts in a sealed evidence archive
//	catalog   Print the effective artifact catalog
//
// Usage
//
// Acquire from the live system into ./evidence
//	browsercollect acquire --output evidence
// Acquire from a mounted image
//	browsercollect acquire --output evidence --image F:/Users
// Verify a sealed archive
//	browsercollect verify evidence/browser_collection_20200114_150405.zip
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forensicanalysis/browsercollect/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "browsercollect",
		Short: "Acquire browser artifacts into sealed evidence archives",
	}
	rootCmd.AddCommand(cmd.Acquire(), cmd.Verify(), cmd.Ls(), cmd.Catalog())
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
