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
	// ExitCodeSuccess is the successful exit code.
	ExitCodeSuccess int = iota
	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError
	// ExitCodeUnknownError is the exit code for anything else.
	ExitCodeUnknownError
)

// ErrFlagParse marks a flag-parsing failure, mapped to ExitCodeFlagParseError.
var ErrFlagParse = errors.New("parsing flags")

func init() {
	// Relocate the built-in help flag so "gnzip --help foo" shows help
	// instead of an unknown-command error, same trick (and same reason)
	// urfave/cli's own issue #1809 documents.
	cli.HelpFlag = &cli.BoolFlag{
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}

	return val
}

func newApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Domain-specialized compressor for genomic text formats.",
		Description: strings.Join([]string{
			"gnzip segments VCF/SAM/FASTQ/FASTA/GFF3/23andMe text into",
			"per-column dictionaries and reassembles it byte-identical on",
			"decompression.",
		}, "\n"),
		HideHelp:        true,
		HideHelpCommand: true,
		Commands: []*cli.Command{
			compressCommand(),
			decompressCommand(),
			listCommand(),
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("help") || c.Args().Len() == 0 {
				return cli.ShowAppHelp(c)
			}

			return fmt.Errorf("%w: unknown command %q", ErrFlagParse, c.Args().First())
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
	// App.Run invokes ExitErrHandler itself before returning, so the error
	// here has already been printed and mapped to an exit code.
	_ = newApp().Run(os.Args)
}
