// Package sam implements the datatype.Type vtable for SAM alignment
// records: tab-separated QNAME/FLAG/RNAME/POS/MAPQ/CIGAR/RNEXT/PNEXT/
// TLEN/SEQ/QUAL plus optional tag fields.
package sam

import (
	"bytes"
	"fmt"

	"github.com/vale-bio/gnzip/datatype"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/internal/pool"
	"github.com/vale-bio/gnzip/piz"
	"github.com/vale-bio/gnzip/seg"
)

var (
	qnameID = dictid.Make("QNAME")
	flagID  = dictid.Make("FLAG")
	posID   = dictid.Make("POS")
	mapqID  = dictid.Make("MAPQ")
	cigarID = dictid.Make("CIGAR")
	rnextID = dictid.Make("RNEXT")
	pnextID = dictid.Make("PNEXT")
	tlenID  = dictid.Make("TLEN")
	seqID   = dictid.Make("SEQ")
	qualID  = dictid.Make("QUAL")
	tagsID  = dictid.Make("TAGS")
)

// Type implements datatype.Type for SAM.
type Type struct{}

// New constructs a SAM vtable.
func New() *Type { return &Type{} }

func (t *Type) Name() string { return "SAM" }

// SegLine segments one tab-separated SAM alignment line. The eleven
// mandatory columns are always present; any columns after QUAL are
// optional tags, kept as a single joined literal (a coarser compression
// than per-tag subcontexts, traded here for scope).
func (t *Type) SegLine(get seg.Getter, record []byte, hasCR bool) error {
	fields := bytes.Split(record, []byte{'\t'})
	if len(fields) < 11 {
		return fmt.Errorf("%w: sam line has %d columns, need at least 11", errs.ErrInputFormat, len(fields))
	}

	seg.IDWithSuffix(get.Get(qnameID, format.LTypeText), fields[0])
	get.Get(flagID, format.LTypeText).EvaluateAndEncode(fields[1])
	chromWI := seg.Chrom(get.Get(datatype.CHROMDictID, format.LTypeText), fields[2])

	pos, err := parseInt(fields[3])
	if err != nil {
		return fmt.Errorf("%w: sam POS %q: %w", errs.ErrInputFormat, fields[3], err)
	}
	posCtx := get.Get(posID, format.LTypeText)
	posCtx.Flags.StoreValue = true
	seg.PosDelta(posCtx, pos)
	seg.RecordRange(get, chromWI, pos)

	get.Get(mapqID, format.LTypeText).EvaluateAndEncode(fields[4])
	get.Get(cigarID, format.LTypeText).EvaluateAndEncode(fields[5])
	get.Get(rnextID, format.LTypeText).EvaluateAndEncode(fields[6])
	get.Get(pnextID, format.LTypeText).EvaluateAndEncode(fields[7])
	get.Get(tlenID, format.LTypeText).EvaluateAndEncode(fields[8])

	seg.SequenceColumn(get.Get(seqID, format.LTypeSequence), fields[9])
	seg.SequenceColumn(get.Get(qualID, format.LTypeSequence), fields[10])

	if len(fields) > 11 {
		get.Get(tagsID, format.LTypeText).EvaluateAndEncode(bytes.Join(fields[11:], []byte{'\t'}))
	} else {
		get.Get(tagsID, format.LTypeText).EvaluateAndEncode(nil)
	}

	_ = hasCR

	return nil
}

func parseInt(b []byte) (int64, error) {
	var v int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a decimal integer")
		}
		v = v*10 + int64(c-'0')
	}

	return v, nil
}

// Reconstruct appends one SAM alignment line (without its terminator) to
// out.
func (t *Type) Reconstruct(resolver piz.ContextResolver, interp *piz.Interpreter, out *pool.ByteBuffer) error {
	cols := []dictid.ID{
		qnameID, flagID, datatype.CHROMDictID, posID, mapqID, cigarID,
		rnextID, pnextID, tlenID, seqID, qualID,
	}

	for i, id := range cols {
		if i > 0 {
			out.MustWriteByte('\t')
		}

		c, ok := resolver.Context(id)
		if !ok {
			return fmt.Errorf("%w: sam reconstruct: missing context for column %d", errs.ErrIntegrity, i)
		}

		if _, err := interp.ReconstructContext(out, c); err != nil {
			return err
		}
	}

	tagsCtx, ok := resolver.Context(tagsID)
	if !ok {
		return fmt.Errorf("%w: sam reconstruct: missing TAGS context", errs.ErrIntegrity)
	}

	tagsBuf := &pool.ByteBuffer{}
	if _, err := interp.ReconstructContext(tagsBuf, tagsCtx); err != nil {
		return err
	}
	if tagsBuf.Len() > 0 {
		out.MustWriteByte('\t')
		out.MustWrite(tagsBuf.Bytes())
	}

	return nil
}

// Specials has no data-type-specific SPECIAL handlers.
func (t *Type) Specials() map[int]piz.SpecialHandler { return nil }

// LineRegion implements datatype.RegionAware, reading RNAME and POS off an
// already-reconstructed SAM alignment line.
func (t *Type) LineRegion(line []byte) (chrom string, pos int64, ok bool) {
	fields := bytes.SplitN(line, []byte{'\t'}, 5)
	if len(fields) < 4 {
		return "", 0, false
	}

	p, err := parseInt(fields[3])
	if err != nil {
		return "", 0, false
	}

	return string(fields[2]), p, true
}
