package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/vale-bio/gnzip/container"
	"github.com/vale-bio/gnzip/datatype"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/internal/profiler"
)

var errTruncate = errors.New("cannot derive an output filename")

// errUnsupported flags a genozip flag this container format cannot honor:
// --split needs a multi-component container (this format always writes
// ComponentCount == 1) and --header-only needs stored meta-header lines
// (this format never records them), neither of which this repo builds.
var errUnsupported = errors.New("not supported by this container format")

func decompressCommand() *cli.Command {
	return &cli.Command{
		Name:      "decompress",
		Aliases:   []string{"d"},
		Usage:     "decompress a .gnz container",
		ArgsUsage: "FILE.gnz",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "data type of the container (VCF, SAM, ...); inferred from the file name if omitted"},
			&cli.StringSliceFlag{Name: "regions", Aliases: []string{"r"}, Usage: "keep only lines in chrom[:start[-end]] (repeatable); VCF/SAM/GFF3/23andMe only"},
			&cli.StringFlag{Name: "grep", Usage: "keep only lines containing this substring"},
			&cli.BoolFlag{Name: "md5", Usage: "verify the reconstructed text's MD5 against the container trailer", DisableDefaultText: true},
			&cli.BoolFlag{Name: "split", Usage: "split a multi-sample container into one file per component (unsupported: this format never writes more than one component)", DisableDefaultText: true},
			&cli.BoolFlag{Name: "header-only", Usage: "reconstruct only the meta-header lines (unsupported: this format never stores them)", DisableDefaultText: true},
			&cli.BoolFlag{Name: "no-header", Usage: "omit meta-header lines from the output (always true: this format never reconstructs them)", DisableDefaultText: true},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "overwrite an existing output file", DisableDefaultText: true},
			&cli.BoolFlag{Name: "stdout", Aliases: []string{"c"}, Usage: "write reconstructed text to stdout", DisableDefaultText: true},
			&cli.BoolFlag{Name: "show-time", Usage: "print a per-stage timing report to stderr on completion", DisableDefaultText: true},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("%w: decompress requires a FILE argument", ErrFlagParse)
			}

			if c.Bool("split") || c.Bool("header-only") {
				return fmt.Errorf("%w: --split/--header-only", errUnsupported)
			}

			regions, err := parseRegions(c.StringSlice("regions"))
			if err != nil {
				return err
			}

			dc := &decompressCmd{
				path:      path,
				typeName:  c.String("type"),
				regions:   regions,
				grep:      c.String("grep"),
				verifyMD5: c.Bool("md5"),
				force:     c.Bool("force"),
				stdout:    c.Bool("stdout"),
				showTime:  c.Bool("show-time"),
			}

			return dc.run()
		},
	}
}

type decompressCmd struct {
	path      string
	typeName  string
	regions   []container.RegionFilter
	grep      string
	verifyMD5 bool
	force     bool
	stdout    bool
	showTime  bool
}

// parseRegions parses "chrom", "chrom:pos" or "chrom:start-end" region
// specifiers, the same shape samtools/bcftools --regions accepts.
func parseRegions(specs []string) ([]container.RegionFilter, error) {
	var out []container.RegionFilter

	for _, spec := range specs {
		chrom, rest, hasRange := strings.Cut(spec, ":")
		if chrom == "" {
			return nil, fmt.Errorf("%w: --regions %q: empty chromosome", ErrFlagParse, spec)
		}

		rf := container.RegionFilter{Chrom: chrom}
		if hasRange {
			startStr, endStr, hasEnd := strings.Cut(rest, "-")

			start, err := strconv.ParseInt(startStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: --regions %q: %w", ErrFlagParse, spec, err)
			}
			rf.Start = start

			if hasEnd && endStr != "" {
				end, err := strconv.ParseInt(endStr, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: --regions %q: %w", ErrFlagParse, spec, err)
				}
				rf.End = end
			} else if !hasEnd {
				rf.End = start
			}
		}

		out = append(out, rf)
	}

	return out, nil
}

func (dc *decompressCmd) run() error {
	in, err := os.Open(dc.path)
	if err != nil {
		return fmt.Errorf("%w: opening %q: %w", errs.ErrIO, dc.path, err)
	}
	defer in.Close()

	impl, err := dc.resolveImpl()
	if err != nil {
		return err
	}

	out, cleanup, err := dc.openOutput()
	if err != nil {
		return err
	}
	defer cleanup()

	var rec *profiler.Recorder
	if dc.showTime {
		rec = profiler.New()
	}

	decodeOpts := []container.DecodeOption{container.WithDecodeProfiler(rec)}
	if len(dc.regions) > 0 {
		decodeOpts = append(decodeOpts, container.WithRegions(dc.regions...))
	}
	if dc.grep != "" {
		decodeOpts = append(decodeOpts, container.WithGrep(dc.grep))
	}
	if dc.verifyMD5 {
		decodeOpts = append(decodeOpts, container.WithVerifyMD5())
	}

	begin := time.Now()
	err = container.ReconstructAll(in, impl, out, decodeOpts...)

	if rec != nil {
		rec.Report(os.Stderr, time.Since(begin))
	}

	return err
}

// resolveImpl picks the reconstruction vtable: an explicit --type flag
// wins, otherwise it's inferred from the filename (e.g. "reads.fastq.gnz").
// There is no need to fall back to the trailer's own DataType byte here:
// container.ReconstructAll reads that itself, but decompress still needs a
// concrete datatype.Type to hand it before the trailer has been read.
func (dc *decompressCmd) resolveImpl() (datatype.Type, error) {
	if dc.typeName != "" {
		_, impl, err := resolveByName(dc.typeName)

		return impl, err
	}

	_, impl, err := resolveByPath(dc.path)
	if err != nil {
		return nil, fmt.Errorf("%w: pass --type to decompress %q", ErrDataType, dc.path)
	}

	return impl, nil
}

func (dc *decompressCmd) openOutput() (*os.File, func(), error) {
	if dc.stdout {
		return os.Stdout, func() {}, nil
	}

	outPath := strings.TrimSuffix(dc.path, containerExt)
	if outPath == dc.path {
		return nil, nil, fmt.Errorf("%w: %q has no %s suffix", errTruncate, dc.path, containerExt)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !dc.force {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(outPath, flags, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening %q: %w", errs.ErrIO, outPath, err)
	}

	return f, func() { f.Close() }, nil
}
