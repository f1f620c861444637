// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/inklesspen1rus/anvilregion-repacker/internal/regionpack"
)

func compactCommand() *cli.Command {
	return &cli.Command{
		Name:  "compact",
		Usage: "decompress a region file into a flat bin stream",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "input region file (defaults to stdin)",
			},
			&cli.PathFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output bin file (defaults to stdout)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "print a per-run summary table",
			},
		},
		Action: func(c *cli.Context) error {
			cmd := compact{
				input:   c.Path("input"),
				output:  c.Path("output"),
				verbose: c.Bool("verbose"),
			}
			return cmd.Run(c.App.Writer)
		},
	}
}

type compact struct {
	input   string
	output  string
	verbose bool
}

func (cmd *compact) Run(stdout io.Writer) error {
	var in io.Reader = os.Stdin
	if cmd.input != "" {
		f, err := os.Open(cmd.input)
		if err != nil {
			return fmt.Errorf("%w: opening input: %w", errAnvilrepack, err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if cmd.output != "" {
		f, err := os.OpenFile(cmd.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("%w: opening output: %w", errAnvilrepack, err)
		}
		defer f.Close()
		out = f
	}

	n, err := regionpack.Compact(in, out)
	if err != nil {
		return fmt.Errorf("%w: compacting: %w", errAnvilrepack, err)
	}

	if cmd.verbose {
		tbl := table.New("input", "output", "bin bytes written")
		tbl.AddRow(displayPath(cmd.input, "<stdin>"), displayPath(cmd.output, "<stdout>"), n)
		tbl.WithWriter(stdout).Print()
	}

	return nil
}

func displayPath(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}
