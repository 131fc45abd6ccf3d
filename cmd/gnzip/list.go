package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/section"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "print a .gnz container's trailer summary",
		ArgsUsage: "FILE.gnz...",
		Action: func(c *cli.Context) error {
			if c.Args().Len() == 0 {
				return fmt.Errorf("%w: list requires at least one FILE.gnz argument", ErrFlagParse)
			}

			tbl := table.New("name", "type", "lines", "plaintext", "compressed", "ratio", "created")
			for _, path := range c.Args().Slice() {
				row, err := listRow(path)
				if err != nil {
					return err
				}

				tbl.AddRow(row...)
			}
			tbl.Print()

			return nil
		},
	}
}

func listRow(path string) ([]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %w", errs.ErrIO, path, err)
	}
	defer f.Close()

	fInfo, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %q: %w", errs.ErrIO, path, err)
	}

	if _, err := f.Seek(-int64(section.GenozipHeaderSize), io.SeekEnd); err != nil {
		return nil, fmt.Errorf("%w: seeking trailer in %q: %w", errs.ErrIO, path, err)
	}

	buf := make([]byte, section.GenozipHeaderSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("%w: reading trailer of %q: %w", errs.ErrIO, path, err)
	}

	hdr, err := section.ParseGenozipHeader(buf)
	if err != nil {
		return nil, err
	}

	typeName := "unknown"
	if impl, err := implForDataType(hdr.DataType); err == nil {
		typeName = impl.Name()
	}

	ratio := "n/a"
	if fInfo.Size() > 0 {
		ratio = fmt.Sprintf("%.1f%%", (1-float64(fInfo.Size())/float64(maxUint64(hdr.PlaintextSize, 1)))*100)
	}

	return []interface{}{
		path,
		typeName,
		hdr.LineCount,
		hdr.PlaintextSize,
		fInfo.Size(),
		ratio,
		hdr.CreatedAt().Format("2006-01-02 15:04:05"),
	}, nil
}

func maxUint64(a uint64, b uint64) uint64 {
	if a > b {
		return a
	}

	return b
}
