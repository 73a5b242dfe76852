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
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/forensicanalysis/browsercollect"
)

// Catalog is the browsercollect catalog commandline subcommand. It prints
// the effective artifact catalog, so the forensic scope of a run can be
// audited before and after the fact.
func Catalog() *cobra.Command {
	var catalogPath string

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the effective artifact catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := browsercollect.DefaultCatalog()
			if catalogPath != "" {
				var err error
				catalog, err = browsercollect.LoadCatalog(afero.NewOsFs(), catalogPath)
				if err != nil {
					return err
				}
			}

			content, err := json.MarshalIndent(catalog, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(content))
			return nil
		},
	}

	catalogCmd.Flags().StringVar(&catalogPath, "catalog", "", "JSON catalog overlay file")
	return catalogCmd
}
