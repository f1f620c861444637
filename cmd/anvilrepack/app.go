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

// Command anvilrepack transcodes between the sector-aligned Anvil-style
// region container and a streaming flat container of decompressed
// chunks.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = errors.New("parsing flags")

func init() {
	// Set the HelpFlag to a random name so that it isn't used. `cli` handles
	// the flag with the root command such that it takes a command name
	// argument but we don't use that form here.
	//
	// This is done because `anvilrepack --help foo` would otherwise display
	// a "command foo not found" error instead of the help.
	//
	// This flag is hidden by the help output.
	// See: github.com/urfave/cli/issues/1809
	cli.HelpFlag = &cli.BoolFlag{
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

// must checks the error and panics if not nil.
func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

func newApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Transcode between Anvil-style region files and flat bin streams.",
		Description: strings.Join([]string{
			"anvilrepack compacts a region file into a flat decompressed stream,",
			"and decompacts such a stream back into a region file.",
		}, "\n"),
		Commands: []*cli.Command{
			compactCommand(),
			decompactCommand(),
			rpackCommand(),
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		HideHelp:        true,
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			if c.Bool("help") {
				return cli.ShowAppHelp(c)
			}
			if c.Bool("version") {
				return printVersion(c)
			}
			return cli.ShowAppHelp(c)
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}

			_ = must(fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", c.App.Name, err))
			if errors.Is(err, ErrFlagParse) {
				cli.OsExiter(ExitCodeFlagParseError)
				return
			}

			cli.OsExiter(ExitCodeUnknownError)
		},
	}
}

func main() {
	app := newApp()
	// ExitErrHandler above already reports the error and calls
	// cli.OsExiter with the right code; Run returning a non-nil error here
	// just means we shouldn't fall through to a normal return.
	_ = app.Run(os.Args)
}
