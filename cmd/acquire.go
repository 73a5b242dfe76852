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
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/forensicanalysis/browsercollect"
)

// Acquire is the browsercollect acquire commandline subcommand.
func Acquire() *cobra.Command {
	var output, imageRoot, configPath, catalogPath string

	acquireCmd := &cobra.Command{
		Use:   "acquire",
		Short: "Collect browser artifacts into a sealed evidence archive",
		Long: "Collect browser artifacts from the live system's user profiles, " +
			"or from a mounted image's users directory when --image is given, " +
			"and seal them into a hash-verified zip archive.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := afero.NewOsFs()

			cfg, err := browsercollect.LoadConfig(fs, configPath)
			if err != nil {
				return err
			}
			if output != "" {
				cfg.OutputDir = output
			}
			if catalogPath != "" {
				cfg.Catalog = catalogPath
			}

			ctx := browsercollect.NewRunContext(cfg, imageRoot)
			if cfg.Catalog != "" {
				catalog, err := browsercollect.LoadCatalog(fs, cfg.Catalog)
				if err != nil {
					return err
				}
				ctx.Catalog = catalog
			}

			runner := &browsercollect.Runner{Src: fs, Dest: fs, Console: os.Stderr}
			report, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Println("archive:   ", report.ArchivePath)
			fmt.Println("integrity: ", report.IntegrityPath)
			fmt.Println("transcript:", report.TranscriptPath)
			fmt.Println("summary:   ", report.SummaryPath)
			fmt.Println("records:   ", report.Records)
			if report.FailedItems > 0 {
				fmt.Println("failed:    ", report.FailedItems)
			}
			return nil
		},
	}

	acquireCmd.Flags().StringVarP(&output, "output", "o", "", "output directory")
	acquireCmd.Flags().StringVar(&imageRoot, "image", "", "users directory of a mounted image")
	acquireCmd.Flags().StringVar(&configPath, "config", "", "TOML config file")
	acquireCmd.Flags().StringVar(&catalogPath, "catalog", "", "JSON catalog overlay file")
	return acquireCmd
}
