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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/inklesspen1rus/anvilregion-repacker/internal/regionpack"
)

// errUnknownCodec indicates an unrecognized -c/--compression value.
var errUnknownCodec = errors.New("unknown compression codec")

func parseRpackCodec(name string) (byte, error) {
	switch name {
	case "", "none":
		return regionpack.RpackNone, nil
	case "zstd":
		return regionpack.RpackZstd, nil
	case "lz4":
		return regionpack.RpackLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownCodec, name)
	}
}

func rpackCommand() *cli.Command {
	return &cli.Command{
		Name:  "rpack",
		Usage: "read or write the forward-looking rpack container format",
		Subcommands: []*cli.Command{
			{
				Name:  "read",
				Usage: "read a bin stream out of an rpack container",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "input rpack file (defaults to stdin)",
					},
					&cli.PathFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output bin file (defaults to stdout)",
					},
				},
				Action: func(c *cli.Context) error {
					return runRpackRead(c.Path("input"), c.Path("output"))
				},
			},
			{
				Name:  "write",
				Usage: "wrap a bin stream in an rpack container",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "input bin file (defaults to stdin)",
					},
					&cli.PathFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output rpack file (defaults to stdout)",
					},
					&cli.StringFlag{
						Name:    "compression",
						Aliases: []string{"c"},
						Usage:   "outer codec: none, zstd, or lz4",
						Value:   "none",
					},
				},
				Action: func(c *cli.Context) error {
					return runRpackWrite(c.Path("input"), c.Path("output"), c.String("compression"))
				},
			},
		},
	}
}

func runRpackRead(inputPath, outputPath string) error {
	var in io.Reader = os.Stdin
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("%w: opening input: %w", errAnvilrepack, err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("%w: opening output: %w", errAnvilrepack, err)
		}
		defer f.Close()
		out = f
	}

	rr, err := regionpack.OpenRpackReader(in)
	if err != nil {
		return fmt.Errorf("%w: opening rpack stream: %w", errAnvilrepack, err)
	}
	defer rr.Close()

	var payload bytes.Buffer
	for {
		payload.Reset()
		header, err := rr.Next(&payload)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: reading rpack record: %w", errAnvilrepack, err)
		}

		if _, err := header.WriteTo(out); err != nil {
			return fmt.Errorf("%w: writing bin record header: %w", errAnvilrepack, err)
		}
		if _, err := out.Write(payload.Bytes()); err != nil {
			return fmt.Errorf("%w: writing bin record payload: %w", errAnvilrepack, err)
		}
	}

	return nil
}

func runRpackWrite(inputPath, outputPath, codecName string) error {
	codec, err := parseRpackCodec(codecName)
	if err != nil {
		return fmt.Errorf("%w: %w", errAnvilrepack, err)
	}

	var in io.Reader = os.Stdin
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("%w: opening input: %w", errAnvilrepack, err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("%w: opening output: %w", errAnvilrepack, err)
		}
		defer f.Close()
		out = f
	}

	rw, err := regionpack.NewRpackWriter(codec, out)
	if err != nil {
		return fmt.Errorf("%w: opening rpack stream: %w", errAnvilrepack, err)
	}

	for {
		header, err := regionpack.ReadBinHeader(in)
		if err != nil {
			if regionpack.IsCleanEOF(err) {
				break
			}
			return fmt.Errorf("%w: reading bin record header: %w", errAnvilrepack, err)
		}
		if err := rw.WriteRecord(header, io.LimitReader(in, int64(header.Length))); err != nil {
			return fmt.Errorf("%w: writing rpack record: %w", errAnvilrepack, err)
		}
	}

	if err := rw.Close(); err != nil {
		return fmt.Errorf("%w: closing rpack stream: %w", errAnvilrepack, err)
	}

	return nil
}
