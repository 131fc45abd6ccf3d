package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"github.com/vale-bio/gnzip/container"
	"github.com/vale-bio/gnzip/datatype"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/internal/profiler"
)

func compressCommand() *cli.Command {
	return &cli.Command{
		Name:      "compress",
		Usage:     "compress a genomic text file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "data type (VCF, SAM, FASTQ, FASTA, GFF3, 23ANDME); inferred from the file extension if omitted"},
			&cli.IntFlag{Name: "threads", Aliases: []string{"@"}, Usage: "number of segmentation worker goroutines", Value: 0},
			&cli.IntFlag{Name: "lines-per-vblock", Usage: "lines batched into one vblock", Value: 0},
			&cli.StringFlag{Name: "vblock", Usage: "vblock size as a byte count (e.g. 1MB, 16MB), an alternative to --lines-per-vblock"},
			&cli.BoolFlag{Name: "optimize", Usage: "spend more CPU per section for a smaller container", DisableDefaultText: true},
			&cli.BoolFlag{Name: "md5", Usage: "record the plaintext MD5 in the container trailer (always computed; this flag only affects reporting)", DisableDefaultText: true},
			&cli.BoolFlag{Name: "test", Usage: "after compressing, decompress back and verify the MD5 matches the original", DisableDefaultText: true},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "overwrite an existing output file", DisableDefaultText: true},
			&cli.BoolFlag{Name: "stdout", Aliases: []string{"c"}, Usage: "write the container to stdout instead of FILE.gnz", DisableDefaultText: true},
			&cli.BoolFlag{Name: "show-time", Usage: "print a per-stage timing report to stderr on completion", DisableDefaultText: true},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("%w: compress requires a FILE argument", ErrFlagParse)
			}

			var vblockBytes int64
			if v := c.String("vblock"); v != "" {
				n, err := humanize.ParseBytes(v)
				if err != nil {
					return fmt.Errorf("%w: --vblock %q: %w", ErrFlagParse, v, err)
				}
				vblockBytes = int64(n) //nolint:gosec
			}

			cc := &compressCmd{
				path:           path,
				typeName:       c.String("type"),
				workers:        c.Int("threads"),
				linesPerVBlock: c.Int("lines-per-vblock"),
				vblockBytes:    vblockBytes,
				optimize:       c.Bool("optimize"),
				showMD5:        c.Bool("md5"),
				test:           c.Bool("test"),
				force:          c.Bool("force"),
				stdout:         c.Bool("stdout"),
				showTime:       c.Bool("show-time"),
			}

			if cc.test && cc.stdout {
				return fmt.Errorf("%w: --test cannot verify a container written to --stdout", ErrFlagParse)
			}

			return cc.run()
		},
	}
}

type compressCmd struct {
	path           string
	typeName       string
	workers        int
	linesPerVBlock int
	vblockBytes    int64
	optimize       bool
	showMD5        bool
	test           bool
	force          bool
	stdout         bool
	showTime       bool
}

func (cc *compressCmd) run() error {
	dt, impl, err := resolveTypeArgs(cc.typeName, cc.path)
	if err != nil {
		return err
	}

	in, err := os.Open(cc.path)
	if err != nil {
		return fmt.Errorf("%w: opening %q: %w", errs.ErrIO, cc.path, err)
	}
	defer in.Close()

	out, cleanup, err := cc.openOutput()
	if err != nil {
		return err
	}
	defer cleanup()

	var rec *profiler.Recorder
	if cc.showTime {
		rec = profiler.New()
	}

	encodeOpts := []container.EncodeOption{
		container.WithWorkers(cc.workers),
		container.WithLinesPerVBlock(cc.linesPerVBlock),
		container.WithProfiler(rec),
	}
	if cc.vblockBytes > 0 {
		encodeOpts = append(encodeOpts, container.WithVBlockBytes(cc.vblockBytes))
	}
	if cc.optimize {
		encodeOpts = append(encodeOpts, container.WithOptimize())
	}

	begin := time.Now()
	hdr, err := container.Encode(out, dt, impl, in, encodeOpts...)

	if rec != nil {
		rec.Report(os.Stderr, time.Since(begin))
	}

	if err != nil {
		return err
	}

	if cc.showMD5 {
		fmt.Fprintf(os.Stderr, "MD5 = %x\n", hdr.WholeMD5)
	}

	if cc.test {
		return cc.verify(impl)
	}

	return nil
}

// verify reopens the just-written container and decompresses it with MD5
// checking enabled, discarding the reconstructed text: --test only cares
// whether the round trip is byte-exact, not its output.
func (cc *compressCmd) verify(impl datatype.Type) error {
	outPath := cc.path + containerExt

	f, err := os.Open(outPath)
	if err != nil {
		return fmt.Errorf("%w: --test: reopening %q: %w", errs.ErrIO, outPath, err)
	}
	defer f.Close()

	if err := container.ReconstructAll(f, impl, io.Discard, container.WithVerifyMD5()); err != nil {
		return fmt.Errorf("--test failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "test: %s: MD5 verified OK\n", outPath)

	return nil
}

func (cc *compressCmd) openOutput() (*os.File, func(), error) {
	if cc.stdout {
		return os.Stdout, func() {}, nil
	}

	outPath := cc.path + containerExt

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !cc.force {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(outPath, flags, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening %q: %w", errs.ErrIO, outPath, err)
	}

	return f, func() { f.Close() }, nil
}
