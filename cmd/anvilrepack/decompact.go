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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/inklesspen1rus/anvilregion-repacker/internal/regionpack"
)

// errRequiresOutput indicates decompact was invoked without -o/--output.
var errRequiresOutput = errors.New("decompact requires -o/--output")

func decompactCommand() *cli.Command {
	return &cli.Command{
		Name:  "decompact",
		Usage: "recompress a flat bin stream into a region file",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "input bin file (defaults to stdin)",
			},
			&cli.PathFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "output region file (required; must be a regular file)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "print a per-run summary table",
			},
		},
		Action: func(c *cli.Context) error {
			cmd := decompact{
				input:   c.Path("input"),
				output:  c.Path("output"),
				verbose: c.Bool("verbose"),
			}
			return cmd.Run(c.App.Writer)
		},
	}
}

type decompact struct {
	input   string
	output  string
	verbose bool
}

func (cmd *decompact) Run(stdout io.Writer) error {
	if cmd.output == "" {
		return fmt.Errorf("%w: %w", errAnvilrepack, errRequiresOutput)
	}

	var in io.Reader = os.Stdin
	if cmd.input != "" {
		f, err := os.Open(cmd.input)
		if err != nil {
			return fmt.Errorf("%w: opening input: %w", errAnvilrepack, err)
		}
		defer f.Close()
		in = f
	}

	// decompact requires a seekable regular file: the pipeline seeks back
	// to offset 0 to finalize the header table.
	out, err := os.OpenFile(cmd.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening output: %w", errAnvilrepack, err)
	}

	n, runErr := regionpack.Decompact(in, out)
	closeErr := out.Close()
	if runErr != nil {
		// This command, not regionpack.Decompact, owns cleanup of a
		// partially written destination.
		if rmErr := os.Remove(cmd.output); rmErr != nil {
			return fmt.Errorf("%w: decompacting: %w (also failed to remove partial output: %v)", errAnvilrepack, runErr, rmErr)
		}
		return fmt.Errorf("%w: decompacting: %w", errAnvilrepack, runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: closing output: %w", errAnvilrepack, closeErr)
	}

	if cmd.verbose {
		tbl := table.New("input", "output", "region bytes written")
		tbl.AddRow(displayPath(cmd.input, "<stdin>"), cmd.output, n)
		tbl.WithWriter(stdout).Print()
	}

	return nil
}
