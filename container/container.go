// Package container assembles and disassembles the on-disk genozip-style
// file: it drives a dispatch.Dispatcher over the input text, writes each
// vblock's B250/LOCAL sections as they are merged, and appends the
// file-global DICT, random-access index, alias table and GenozipHeader
// trailer once the input is exhausted. Decode reads the fixed-size trailer
// first, then walks the self-delimiting section headers from the start of
// the file; the table of contents is parsed only to validate it.
//
// Section compression follows the algorithm each format.Algorithm constant
// documents itself for: AlgZstd for sequence-shaped LOCAL streams, AlgBZ2
// for everything else in B250/LOCAL, AlgLZMA for DICT, AlgLZ4 for the small
// fixed-record sections (random access, alias table).
package container

import (
	"bytes"
	"crypto/md5" //nolint:gosec
	"fmt"
	"hash"
	"io"
	"time"

	"github.com/vale-bio/gnzip/compress"
	"github.com/vale-bio/gnzip/datatype"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/dispatch"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/file"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/internal/options"
	"github.com/vale-bio/gnzip/internal/pool"
	"github.com/vale-bio/gnzip/internal/profiler"
	"github.com/vale-bio/gnzip/piz"
	"github.com/vale-bio/gnzip/section"
	"github.com/vale-bio/gnzip/vblock"
)

// EncodeConfig holds one compression run's tunables, built by applying
// EncodeOption values over the zero value.
type EncodeConfig struct {
	// Workers is the number of segmentation goroutines. Zero uses
	// dispatch's default of 1.
	Workers int
	// LinesPerVBlock bounds how many lines are batched per vblock. Zero
	// uses dispatch.DefaultLinesPerVBlock.
	LinesPerVBlock int
	// VBlockBytes, if positive, additionally flushes a vblock once its
	// accumulated line bytes reach this size, whichever of it and
	// LinesPerVBlock is hit first.
	VBlockBytes int64
	// Optimize asks every section's codec for its slower, higher-ratio
	// variant where one exists (AlgBZ2, AlgZstd), trading encode time for a
	// smaller container.
	Optimize bool
	// Profiler, if non-nil, accumulates per-stage timings for a
	// --show-time-style report: StageSegment for the dispatch run and
	// StageWrite for the vblock and DICT section writes. The random-access,
	// alias, TOC and trailer writes are not timed.
	Profiler *profiler.Recorder
}

// EncodeOption configures one compression run via Encode's opts parameter.
type EncodeOption = options.Option[*EncodeConfig]

// WithWorkers sets the number of segmentation goroutines.
func WithWorkers(n int) EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.Workers = n })
}

// WithLinesPerVBlock bounds how many lines are batched per vblock.
func WithLinesPerVBlock(n int) EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.LinesPerVBlock = n })
}

// WithProfiler attaches a Recorder that accumulates per-stage timings for
// the run.
func WithProfiler(rec *profiler.Recorder) EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.Profiler = rec })
}

// WithVBlockBytes additionally flushes a vblock once its accumulated line
// bytes reach n, whichever of it and LinesPerVBlock is hit first.
func WithVBlockBytes(n int64) EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.VBlockBytes = n })
}

// WithOptimize requests the slower, higher-ratio codec variant for every
// section that has one.
func WithOptimize() EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.Optimize = true })
}

// Encode reads r as dt-formatted text, segments and compresses it with dtImpl,
// and writes a complete container to w. It returns the plaintext line and
// byte counts recorded in the trailer.
func Encode(w io.Writer, dt section.DataType, dtImpl datatype.Type, r io.Reader, opts ...EncodeOption) (*section.GenozipHeader, error) {
	cfg := &EncodeConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, fmt.Errorf("%w: container: %w", errs.ErrConfig, err)
	}

	f := file.New(dt)
	d := dispatch.New(f, dtImpl, cfg.Workers, cfg.LinesPerVBlock, cfg.VBlockBytes)

	cw := &countingWriter{w: w}
	toc := &section.TOC{}

	emit := func(vb *vblock.VBlock) error {
		return timeStage(cfg.Profiler, profiler.StageWrite, func() error {
			return writeVBlock(cw, toc, vb, cfg.Optimize)
		})
	}

	// f implements io.Writer over WriteMD5, folding the plaintext into the
	// rolling whole-file MD5 in exactly the order dispatch's reader consumes
	// it, independent of how many workers segment it in parallel.
	if err := timeStage(cfg.Profiler, profiler.StageSegment, func() error {
		return d.Run(io.TeeReader(r, f), emit)
	}); err != nil {
		return nil, err
	}

	if err := timeStage(cfg.Profiler, profiler.StageWrite, func() error {
		return writeDicts(cw, toc, f, cfg.Optimize)
	}); err != nil {
		return nil, err
	}

	if err := writeSmallSection(cw, toc, format.SectionRandomAccess, format.AlgLZ4, format.LTypeUint8, 0, 0, f.RandomAccess.Bytes()); err != nil {
		return nil, err
	}

	if err := writeSmallSection(cw, toc, format.SectionAlias, format.AlgLZ4, format.LTypeUint8, 0, 0, section.NewAliasTable().Bytes()); err != nil {
		return nil, err
	}

	hdr := f.GenozipHeader(time.Now())

	// The TOC sits immediately before the trailer; a reader locates it by
	// scanning forward from byte 0 (ReconstructAll does exactly this)
	// rather than by a stored offset field, since every section is
	// self-delimiting (Header.CompressedSize) and the trailer has a fixed
	// size.
	if _, err := cw.Write(toc.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: container: writing toc: %w", errs.ErrIO, err)
	}

	if _, err := cw.Write(hdr.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: container: writing trailer: %w", errs.ErrIO, err)
	}

	return hdr, nil
}

// writeVBlock writes one merged vblock's VB_HEADER, B250 and LOCAL
// sections. vb's contexts already carry file-global word indices: MergeVBlock
// rewrites them in place before the dispatcher's Emit callback runs.
// optimize requests the slower, higher-ratio codec variant for B250/LOCAL.
func writeVBlock(w io.Writer, toc *section.TOC, vb *vblock.VBlock, optimize bool) error {
	vh := encodeVBHeader(vb)
	if err := writeSmallSection(w, toc, format.SectionVBHeader, format.AlgNone, format.LTypeUint8, vb.VBlockI, 0, vh); err != nil {
		return err
	}

	for _, id := range vb.OrderedIDs() {
		c := vb.Contexts[id]

		if b250Bytes := c.B250Bytes(); len(b250Bytes) > 0 {
			if err := writeSectionBytesOpt(w, toc, format.SectionB250, format.AlgBZ2, c.LType, vb.VBlockI, uint64(id), b250Bytes, optimize); err != nil {
				return err
			}
		}

		if local := c.Local().Bytes(); len(local) > 0 {
			alg := format.AlgBZ2
			if c.LType == format.LTypeSequence {
				alg = format.AlgZstd
			}

			if err := writeSectionBytesOpt(w, toc, format.SectionLocal, alg, c.LType, vb.VBlockI, uint64(id), local, optimize); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeDicts appends one DICT section per dict_id known to f, each holding
// the word list accumulated across every merged vblock.
func writeDicts(w io.Writer, toc *section.TOC, f *file.File, optimize bool) error {
	for _, id := range f.SortedDictIDs() {
		c, ok := f.Context(id)
		if !ok {
			continue
		}

		if err := writeSectionBytesOpt(w, toc, format.SectionDict, format.AlgLZMA, c.LType, 0, uint64(id), c.DictBytes(), optimize); err != nil {
			return err
		}
	}

	return nil
}

// writeSmallSection is writeSectionBytes under a name that reads better at
// call sites writing file-global, non-context sections (index, alias
// table) that have no dict_id of their own. These sections are tiny enough
// that --optimize never applies to them.
func writeSmallSection(w io.Writer, toc *section.TOC, typ format.SectionType, alg format.Algorithm, lt format.LType, vblockI uint32, dictID uint64, payload []byte) error {
	return writeSectionBytes(w, toc, typ, alg, lt, vblockI, dictID, payload)
}

// writeSectionBytes compresses payload with alg and appends a
// Header-prefixed section, recording its location in toc.
func writeSectionBytes(w io.Writer, toc *section.TOC, typ format.SectionType, alg format.Algorithm, lt format.LType, vblockI uint32, dictID uint64, payload []byte) error {
	return writeSectionBytesOpt(w, toc, typ, alg, lt, vblockI, dictID, payload, false)
}

// writeSectionBytesOpt is writeSectionBytes with an explicit optimize flag,
// consulted by compress.CreateCodec for codecs that have a slower,
// higher-ratio variant.
func writeSectionBytesOpt(w io.Writer, toc *section.TOC, typ format.SectionType, alg format.Algorithm, lt format.LType, vblockI uint32, dictID uint64, payload []byte, optimize bool) error {
	codec, err := compress.CreateCodec(alg, typ.String(), optimize)
	if err != nil {
		return fmt.Errorf("%w: container: %w", errs.ErrConfig, err)
	}

	compressed, err := codec.Compress(payload)
	if err != nil {
		return fmt.Errorf("%w: container: compressing %s: %w", errs.ErrIO, typ, err)
	}

	h := section.Header{
		Type:             typ,
		Codec:            alg,
		LType:            lt,
		CompressedOffset: section.HeaderSize,
		CompressedSize:   uint32(len(compressed)), //nolint:gosec
		UncompressedSize: uint32(len(payload)),     //nolint:gosec
		VBlockI:          vblockI,
		DictID:           dictID,
	}

	offset := currentOffset(w)

	if _, err := w.Write(h.Bytes()); err != nil {
		return fmt.Errorf("%w: container: writing section header: %w", errs.ErrIO, err)
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("%w: container: writing section payload: %w", errs.ErrIO, err)
	}

	toc.Entries = append(toc.Entries, section.TOCEntry{
		Type:   uint8(typ),
		Offset: offset,
		Size:   section.HeaderSize + uint32(len(compressed)), //nolint:gosec
	})

	return nil
}

// countingWriter tracks the number of bytes written so section offsets can
// be recorded without requiring the destination to be seekable.
type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n) //nolint:gosec

	return n, err
}

func currentOffset(w io.Writer) uint64 {
	if cw, ok := w.(*countingWriter); ok {
		return cw.n
	}

	return 0
}

// encodeVBHeader packs a vblock's line count and CR-bit-per-line map into a
// small fixed-layout payload: 4-byte little-endian line count followed by
// ceil(n/8) bitmap bytes (bit set means the line's original terminator was
// \r\n).
func encodeVBHeader(vb *vblock.VBlock) []byte {
	n := vb.LineCount()
	buf := make([]byte, 4+(n+7)/8)
	buf[0] = byte(n)
	buf[1] = byte(n >> 8)
	buf[2] = byte(n >> 16)
	buf[3] = byte(n >> 24)

	for i := 0; i < n; i++ {
		_, hasCR, err := vb.Line(i)
		if err == nil && hasCR {
			buf[4+i/8] |= 1 << uint(i%8) //nolint:gosec
		}
	}

	return buf
}

// decodeVBHeader is the inverse of encodeVBHeader.
func decodeVBHeader(data []byte) (lineCount int, hasCR func(i int) bool, err error) {
	if len(data) < 4 {
		return 0, nil, fmt.Errorf("%w: container: vb header truncated", errs.ErrIntegrity)
	}

	n := int(data[0]) | int(data[1])<<8 | int(data[2])<<16 | int(data[3])<<24
	bitmap := data[4:]

	return n, func(i int) bool {
		byteI := i / 8
		if byteI >= len(bitmap) {
			return false
		}

		return bitmap[byteI]&(1<<uint(i%8)) != 0 //nolint:gosec
	}, nil
}

// RegionFilter restricts reconstruction to lines whose datatype.RegionAware
// chromosome matches Chrom and whose position falls in [Start, End]. A zero
// End means "to the end of the chromosome."
type RegionFilter struct {
	Chrom      string
	Start, End int64
}

// contains reports whether pos on chrom satisfies rf.
func (rf RegionFilter) contains(chrom string, pos int64) bool {
	if rf.Chrom != "" && rf.Chrom != chrom {
		return false
	}
	if pos < rf.Start {
		return false
	}

	return rf.End == 0 || pos <= rf.End
}

// DecodeConfig holds one decompression run's tunables, built by applying
// DecodeOption values over the zero value.
type DecodeConfig struct {
	// Profiler, if non-nil, accumulates per-stage timings (section
	// decompression, reconstruction) for a --show-time-style report.
	Profiler *profiler.Recorder
	// Regions, if non-empty, keeps only lines falling in at least one of
	// the given regions. Only meaningful for a dtImpl implementing
	// datatype.RegionAware; ignored otherwise.
	Regions []RegionFilter
	// Grep, if non-empty, keeps only lines containing this substring
	// (after region filtering, if both are set).
	Grep string
	// VerifyMD5 recomputes the whole-file MD5 of the reconstructed output
	// and compares it against the trailer's WholeMD5, returning
	// errs.ErrIntegrity on mismatch.
	VerifyMD5 bool
}

// DecodeOption configures one decompression run via ReconstructAll's opts
// parameter.
type DecodeOption = options.Option[*DecodeConfig]

// WithDecodeProfiler attaches a Recorder that accumulates per-stage
// timings for the run.
func WithDecodeProfiler(rec *profiler.Recorder) DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.Profiler = rec })
}

// WithRegions restricts reconstruction to lines falling in at least one of
// the given regions.
func WithRegions(regions ...RegionFilter) DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.Regions = regions })
}

// WithGrep restricts reconstruction to lines containing pattern.
func WithGrep(pattern string) DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.Grep = pattern })
}

// WithVerifyMD5 recomputes and checks the reconstructed output's MD5
// against the trailer's recorded value.
func WithVerifyMD5() DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.VerifyMD5 = true })
}

// ReconstructAll decodes a full container previously written by Encode,
// writing the original text to out.
func ReconstructAll(r io.ReadSeeker, dtImpl datatype.Type, out io.Writer, opts ...DecodeOption) error {
	cfg := &DecodeConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return fmt.Errorf("%w: container: %w", errs.ErrConfig, err)
	}

	trailerOff, err := r.Seek(-int64(section.GenozipHeaderSize), io.SeekEnd)
	if err != nil {
		return fmt.Errorf("%w: container: seeking to trailer: %w", errs.ErrIO, err)
	}

	trailerBuf := make([]byte, section.GenozipHeaderSize)
	if _, err := io.ReadFull(r, trailerBuf); err != nil {
		return fmt.Errorf("%w: container: reading trailer: %w", errs.ErrIO, err)
	}

	hdr, err := section.ParseGenozipHeader(trailerBuf)
	if err != nil {
		return err
	}

	// The TOC immediately precedes the trailer; scan forward from the start
	// of the file instead of requiring a stored TOC offset, since the
	// trailer does not presently carry one (see DESIGN.md).
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: container: seeking to start: %w", errs.ErrIO, err)
	}

	all := make([]byte, trailerOff)
	if _, err := io.ReadFull(r, all); err != nil {
		return fmt.Errorf("%w: container: reading container body: %w", errs.ErrIO, err)
	}

	sections, tocBytes, err := splitSectionsAndTOC(all)
	if err != nil {
		return err
	}

	if _, err := section.ParseTOC(tocBytes); err != nil {
		return err
	}

	f := file.New(hdr.DataType)
	if err := timeStage(cfg.Profiler, profiler.StageDecompress, func() error {
		return loadDicts(f, sections)
	}); err != nil {
		return err
	}

	dest := out

	var sum hash.Hash
	if cfg.VerifyMD5 {
		sum = md5.New() //nolint:gosec
		dest = io.MultiWriter(out, sum)
	}

	if err := timeStage(cfg.Profiler, profiler.StageReconstruct, func() error {
		return reconstructVBlocks(f, dtImpl, sections, dest, cfg)
	}); err != nil {
		return err
	}

	if cfg.VerifyMD5 {
		var got [16]byte
		copy(got[:], sum.Sum(nil))

		if got != hdr.WholeMD5 {
			return fmt.Errorf("%w: container: MD5 mismatch: container recorded %x, reconstructed %x", errs.ErrIntegrity, hdr.WholeMD5, got)
		}
	}

	return nil
}

// timeStage runs fn, recording its duration under stage on rec when rec is
// non-nil. A nil Recorder (the default zero EncodeConfig/DecodeConfig)
// costs nothing beyond the call itself.
func timeStage(rec *profiler.Recorder, stage string, fn func() error) error {
	if rec == nil {
		return fn()
	}

	stop := rec.Start(stage)
	defer stop()

	return fn()
}

type parsedSection struct {
	header  section.Header
	payload []byte
}

func splitSectionsAndTOC(all []byte) ([]parsedSection, []byte, error) {
	var sections []parsedSection
	off := 0

	for off+int(section.HeaderSize) <= len(all) {
		if !bytes.HasPrefix(all[off:], magicPrefix()) {
			break
		}

		h, err := section.ParseHeader(all[off : off+section.HeaderSize])
		if err != nil {
			return nil, nil, err
		}

		start := off + section.HeaderSize
		end := start + int(h.CompressedSize)
		if end > len(all) {
			return nil, nil, fmt.Errorf("%w: container: section payload truncated", errs.ErrIntegrity)
		}

		sections = append(sections, parsedSection{header: h, payload: all[start:end]})
		off = end
	}

	return sections, all[off:], nil
}

func magicPrefix() []byte {
	b := make([]byte, 4)
	b[0] = byte(section.MagicSection)
	b[1] = byte(section.MagicSection >> 8)
	b[2] = byte(section.MagicSection >> 16)
	b[3] = byte(section.MagicSection >> 24)

	return b
}

func loadDicts(f *file.File, sections []parsedSection) error {
	for _, s := range sections {
		if s.header.Type != format.SectionDict {
			continue
		}

		codec, err := compress.CreateCodec(s.header.Codec, "DICT")
		if err != nil {
			return err
		}

		raw, err := codec.Decompress(s.payload, int(s.header.UncompressedSize))
		if err != nil {
			return fmt.Errorf("%w: container: decompressing dict: %w", errs.ErrIO, err)
		}

		f.SeedContext(dictid.ID(s.header.DictID), s.header.LType, raw)
	}

	return nil
}

func reconstructVBlocks(f *file.File, dtImpl datatype.Type, sections []parsedSection, out io.Writer, cfg *DecodeConfig) error {
	interp := &piz.Interpreter{Resolver: f, Specials: dtImpl.Specials()}
	regionAware, _ := dtImpl.(datatype.RegionAware)

	i := 0
	for i < len(sections) {
		s := sections[i]
		if s.header.Type != format.SectionVBHeader {
			i++

			continue
		}

		vblockI := s.header.VBlockI

		codec, err := compress.CreateCodec(s.header.Codec, "VB_HEADER")
		if err != nil {
			return err
		}

		vhRaw, err := codec.Decompress(s.payload, int(s.header.UncompressedSize))
		if err != nil {
			return fmt.Errorf("%w: container: decompressing vb header: %w", errs.ErrIO, err)
		}

		lineCount, hasCR, err := decodeVBHeader(vhRaw)
		if err != nil {
			return err
		}

		i++

		for i < len(sections) && sections[i].header.VBlockI == vblockI && sections[i].header.Type != format.SectionVBHeader {
			sec := sections[i]

			codec, err := compress.CreateCodec(sec.header.Codec, sec.header.Type.String())
			if err != nil {
				return err
			}

			raw, err := codec.Decompress(sec.payload, int(sec.header.UncompressedSize))
			if err != nil {
				return fmt.Errorf("%w: container: decompressing %s: %w", errs.ErrIO, sec.header.Type, err)
			}

			c, ok := f.Context(dictid.ID(sec.header.DictID))
			if !ok {
				return fmt.Errorf("%w: container: section for unknown dict_id", errs.ErrIntegrity)
			}

			switch sec.header.Type {
			case format.SectionB250:
				c.LoadB250(raw)
			case format.SectionLocal:
				c.Local().Load(raw)
			}

			i++
		}

		buf := &pool.ByteBuffer{}
		for line := 0; line < lineCount; line++ {
			buf.Reset()

			if err := dtImpl.Reconstruct(f, interp, buf); err != nil {
				return fmt.Errorf("%w: container: vblock %d line %d: %w", errs.ErrIntegrity, vblockI, line, err)
			}

			if !lineSurvivesFilters(cfg, regionAware, buf.Bytes()) {
				continue
			}

			if _, err := out.Write(buf.Bytes()); err != nil {
				return fmt.Errorf("%w: container: writing output: %w", errs.ErrIO, err)
			}

			if hasCR(line) {
				if _, err := out.Write([]byte{'\r', '\n'}); err != nil {
					return fmt.Errorf("%w: container: writing output: %w", errs.ErrIO, err)
				}
			} else {
				if _, err := out.Write([]byte{'\n'}); err != nil {
					return fmt.Errorf("%w: container: writing output: %w", errs.ErrIO, err)
				}
			}
		}
	}

	return nil
}

// lineSurvivesFilters reports whether one already-reconstructed line
// (without its terminator) passes cfg's region and grep filters. A region
// filter that cannot be evaluated (dtImpl isn't datatype.RegionAware, or
// LineRegion can't parse this line) is treated as non-matching rather than
// erroring out the whole run, mirroring genozip's own dont_show semantics:
// a line genozip can't place in a region never satisfies --regions.
func lineSurvivesFilters(cfg *DecodeConfig, regionAware datatype.RegionAware, line []byte) bool {
	if len(cfg.Regions) > 0 {
		matched := false

		if regionAware != nil {
			if chrom, pos, ok := regionAware.LineRegion(line); ok {
				for _, rf := range cfg.Regions {
					if rf.contains(chrom, pos) {
						matched = true

						break
					}
				}
			}
		}

		if !matched {
			return false
		}
	}

	if cfg.Grep != "" && !bytes.Contains(line, []byte(cfg.Grep)) {
		return false
	}

	return true
}
