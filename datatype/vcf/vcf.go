// Package vcf implements the datatype.Type vtable for VCF (Variant Call
// Format) files: CHROM, POS, ID, REF, ALT, QUAL, FILTER, INFO and an
// optional FORMAT + per-sample genotype block.
package vcf

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/vale-bio/gnzip/datatype"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/internal/pool"
	"github.com/vale-bio/gnzip/piz"
	"github.com/vale-bio/gnzip/seg"
)

var (
	posID    = dictid.Make("POS")
	idID     = dictid.Make("ID")
	refID    = dictid.Make("REF")
	altID    = dictid.Make("ALT")
	qualID   = dictid.Make("QUAL")
	filterID = dictid.Make("FILTER")
	infoID   = dictid.Make("oINFO")
	formatID = dictid.Make("FORMAT")
	eolID    = dictid.Make("EOL")
)

// Type implements datatype.Type for VCF. SampleNames is fixed for the
// whole file, taken from the "#CHROM ... FORMAT sample1 sample2" header
// line; VCF does not vary its column count line to line.
type Type struct {
	SampleNames []string
}

// New constructs a VCF vtable. sampleNames may be empty for site-only VCFs
// (no FORMAT/genotype columns).
func New(sampleNames []string) *Type {
	return &Type{SampleNames: sampleNames}
}

func (t *Type) Name() string { return "VCF" }

// SegLine segments one tab-separated VCF data line (the trailing
// terminator already stripped by the caller).
func (t *Type) SegLine(get seg.Getter, record []byte, hasCR bool) error {
	fields := bytes.Split(record, []byte{'\t'})
	if len(fields) < 8 {
		return fmt.Errorf("%w: vcf line has %d columns, need at least 8", errs.ErrInputFormat, len(fields))
	}

	chromWI := seg.Chrom(get.Get(datatype.CHROMDictID, format.LTypeText), fields[0])

	pos, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: vcf POS %q: %w", errs.ErrInputFormat, fields[1], err)
	}
	posCtx := get.Get(posID, format.LTypeText)
	posCtx.Flags.StoreValue = true
	seg.PosDelta(posCtx, pos)
	seg.RecordRange(get, chromWI, pos)

	if id := fields[2]; len(id) == 1 && id[0] == '.' {
		get.Get(idID, format.LTypeText).EvaluateAndEncode(id)
	} else {
		seg.IDWithSuffix(get.Get(idID, format.LTypeText), id)
	}

	get.Get(refID, format.LTypeText).EvaluateAndEncode(fields[3])
	get.Get(altID, format.LTypeText).EvaluateAndEncode(fields[4])
	get.Get(qualID, format.LTypeText).EvaluateAndEncode(fields[5])
	get.Get(filterID, format.LTypeText).EvaluateAndEncode(fields[6])

	segInfo(get, fields[7])

	if len(fields) > 8 {
		get.Get(formatID, format.LTypeText).EvaluateAndEncode(fields[8])

		subfields := bytes.Split(fields[8], []byte{':'})
		for _, sampleField := range fields[9:] {
			values := bytes.Split(sampleField, []byte{':'})
			for i, name := range subfields {
				v := []byte(".")
				if i < len(values) {
					v = values[i]
				}
				get.Get(dictid.Make(string(name)), format.LTypeText).EvaluateAndEncode(v)
			}
		}
	}

	seg.EOL(get.Get(eolID, format.LTypeText), hasCR)

	return nil
}

// segInfo parses "AC=2;DP=35;FLAG" into seg.KV pairs. INFO/END is kept in
// its own numeric subcontext (dictid.Make("END")) rather than literally
// sharing POS's b250 stream; see DESIGN.md for why the byte-exact alias
// wiring was traded for this simpler, equally round-trip-correct form.
func segInfo(get seg.Getter, info []byte) {
	if len(info) == 1 && info[0] == '.' {
		get.Get(infoID, format.LTypeText).EvaluateAndEncode(info)

		return
	}

	var pairs []seg.KV
	for _, attr := range bytes.Split(info, []byte{';'}) {
		if len(attr) == 0 {
			continue
		}

		eq := bytes.IndexByte(attr, '=')
		if eq < 0 {
			pairs = append(pairs, seg.KV{Key: string(attr), Value: nil})

			continue
		}

		key := string(attr[:eq])
		val := attr[eq+1:]

		pairs = append(pairs, seg.KV{Key: key, Value: val, Numeric: isAllDigits(val)})
	}

	seg.InfoLike(get, get.Get(infoID, format.LTypeText), pairs)
}

func isAllDigits(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// Reconstruct appends one VCF data line (without its terminator) to out.
func (t *Type) Reconstruct(resolver piz.ContextResolver, interp *piz.Interpreter, out *pool.ByteBuffer) error {
	cols := []dictid.ID{datatype.CHROMDictID, posID, idID, refID, altID, qualID, filterID, infoID}

	for i, id := range cols {
		if i > 0 {
			out.MustWriteByte('\t')
		}

		c, ok := resolver.Context(id)
		if !ok {
			return fmt.Errorf("%w: vcf reconstruct: missing context for column %d", errs.ErrIntegrity, i)
		}

		if _, err := interp.ReconstructContext(out, c); err != nil {
			return err
		}
	}

	if len(t.SampleNames) == 0 {
		return nil
	}

	formatCtx, ok := resolver.Context(formatID)
	if !ok {
		return fmt.Errorf("%w: vcf reconstruct: missing FORMAT context", errs.ErrIntegrity)
	}

	fmtBuf := &pool.ByteBuffer{}
	if _, err := interp.ReconstructContext(fmtBuf, formatCtx); err != nil {
		return err
	}
	subfields := bytes.Split(fmtBuf.Bytes(), []byte{':'})

	out.MustWriteByte('\t')
	out.MustWrite(fmtBuf.Bytes())

	for range t.SampleNames {
		out.MustWriteByte('\t')

		for j, name := range subfields {
			if j > 0 {
				out.MustWriteByte(':')
			}

			subCtx, ok := resolver.Context(dictid.Make(string(name)))
			if !ok {
				return fmt.Errorf("%w: vcf reconstruct: missing subfield context %q", errs.ErrIntegrity, name)
			}

			if _, err := interp.ReconstructContext(out, subCtx); err != nil {
				return err
			}
		}
	}

	return nil
}

// Specials has no data-type-specific SPECIAL handlers yet: every VCF
// column reconstructs through LOOKUP/SELF_DELTA/STRUCTURED alone.
func (t *Type) Specials() map[int]piz.SpecialHandler { return nil }

// LineRegion implements datatype.RegionAware, reading CHROM and POS off an
// already-reconstructed VCF data line.
func (t *Type) LineRegion(line []byte) (chrom string, pos int64, ok bool) {
	tab1 := bytes.IndexByte(line, '\t')
	if tab1 < 0 {
		return "", 0, false
	}

	rest := line[tab1+1:]
	tab2 := bytes.IndexByte(rest, '\t')
	if tab2 < 0 {
		return "", 0, false
	}

	p, err := strconv.ParseInt(string(rest[:tab2]), 10, 64)
	if err != nil {
		return "", 0, false
	}

	return string(line[:tab1]), p, true
}
