// Package gff3 implements the datatype.Type vtable for GFF3 feature
// records: tab-separated seqid/source/type/start/end/score/strand/phase
// plus a semicolon-joined key=value attributes column.
package gff3

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
	sourceID = dictid.Make("SOURCE")
	typeID   = dictid.Make("TYPE")
	startID  = dictid.Make("START")
	endID    = dictid.Make("END")
	scoreID  = dictid.Make("SCORE")
	strandID = dictid.Make("STRAND")
	phaseID  = dictid.Make("PHASE")
	attrsID  = dictid.Make("oATTRS")
)

// Type implements datatype.Type for GFF3.
type Type struct{}

// New constructs a GFF3 vtable.
func New() *Type { return &Type{} }

func (t *Type) Name() string { return "GFF3" }

// SegLine segments one tab-separated GFF3 feature line.
func (t *Type) SegLine(get seg.Getter, record []byte, hasCR bool) error {
	fields := bytes.Split(record, []byte{'\t'})
	if len(fields) != 9 {
		return fmt.Errorf("%w: gff3 line has %d columns, need 9", errs.ErrInputFormat, len(fields))
	}

	chromWI := seg.Chrom(get.Get(datatype.CHROMDictID, format.LTypeText), fields[0])
	get.Get(sourceID, format.LTypeText).EvaluateAndEncode(fields[1])
	get.Get(typeID, format.LTypeText).EvaluateAndEncode(fields[2])

	start, err := strconv.ParseInt(string(fields[3]), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: gff3 start %q: %w", errs.ErrInputFormat, fields[3], err)
	}
	startCtx := get.Get(startID, format.LTypeText)
	startCtx.Flags.StoreValue = true
	seg.PosDelta(startCtx, start)
	seg.RecordRange(get, chromWI, start)

	end, err := strconv.ParseInt(string(fields[4]), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: gff3 end %q: %w", errs.ErrInputFormat, fields[4], err)
	}
	endCtx := get.Get(endID, format.LTypeText)
	endCtx.Flags.StoreValue = true
	seg.PosDelta(endCtx, end)

	get.Get(scoreID, format.LTypeText).EvaluateAndEncode(fields[5])
	get.Get(strandID, format.LTypeText).EvaluateAndEncode(fields[6])
	get.Get(phaseID, format.LTypeText).EvaluateAndEncode(fields[7])

	segAttrs(get, fields[8])

	return nil
}

func segAttrs(get seg.Getter, attrs []byte) {
	if len(attrs) == 0 || (len(attrs) == 1 && attrs[0] == '.') {
		get.Get(attrsID, format.LTypeText).EvaluateAndEncode(attrs)

		return
	}

	var pairs []seg.KV
	for _, kv := range bytes.Split(attrs, []byte{';'}) {
		if len(kv) == 0 {
			continue
		}

		eq := bytes.IndexByte(kv, '=')
		if eq < 0 {
			pairs = append(pairs, seg.KV{Key: string(kv), Value: nil})

			continue
		}

		pairs = append(pairs, seg.KV{Key: string(kv[:eq]), Value: kv[eq+1:]})
	}

	seg.InfoLike(get, get.Get(attrsID, format.LTypeText), pairs)
}

// Reconstruct appends one GFF3 feature line (without its terminator) to
// out.
func (t *Type) Reconstruct(resolver piz.ContextResolver, interp *piz.Interpreter, out *pool.ByteBuffer) error {
	cols := []dictid.ID{
		datatype.CHROMDictID, sourceID, typeID, startID, endID, scoreID, strandID, phaseID, attrsID,
	}

	for i, id := range cols {
		if i > 0 {
			out.MustWriteByte('\t')
		}

		c, ok := resolver.Context(id)
		if !ok {
			return fmt.Errorf("%w: gff3 reconstruct: missing context for column %d", errs.ErrIntegrity, i)
		}

		if _, err := interp.ReconstructContext(out, c); err != nil {
			return err
		}
	}

	return nil
}

// Specials has no data-type-specific SPECIAL handlers.
func (t *Type) Specials() map[int]piz.SpecialHandler { return nil }

// LineRegion implements datatype.RegionAware, reading seqid and start off
// an already-reconstructed GFF3 feature line.
func (t *Type) LineRegion(line []byte) (chrom string, pos int64, ok bool) {
	fields := bytes.SplitN(line, []byte{'\t'}, 5)
	if len(fields) < 4 {
		return "", 0, false
	}

	p, err := strconv.ParseInt(string(fields[3]), 10, 64)
	if err != nil {
		return "", 0, false
	}

	return string(fields[0]), p, true
}
