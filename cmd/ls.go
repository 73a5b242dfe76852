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

package cmd

import (
	"fmt"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/cobra"
)

// Ls is the browsercollect ls commandline subcommand.
func Ls() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <archive.zip>",
		Short: "List the artifacts in a sealed evidence archive",
		Args:  requireOneArchive,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := zip.OpenReader(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			for _, file := range reader.File {
				fmt.Println(file.Name)
			}
			return nil
		},
	}
}
