// Package me23 implements the datatype.Type vtable for 23andMe raw
// genotype export files: tab-separated rsid/chromosome/position/genotype.
package me23

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
	rsidID     = dictid.Make("RSID")
	posID      = dictid.Make("POS")
	genotypeID = dictid.Make("GENOTYPE")
)

// Type implements datatype.Type for 23andMe genotype files.
type Type struct{}

// New constructs a 23andMe vtable.
func New() *Type { return &Type{} }

func (t *Type) Name() string { return "23ANDME" }

// SegLine segments one tab-separated rsid/chromosome/position/genotype
// line.
func (t *Type) SegLine(get seg.Getter, record []byte, hasCR bool) error {
	fields := bytes.Split(record, []byte{'\t'})
	if len(fields) != 4 {
		return fmt.Errorf("%w: 23andme line has %d columns, need 4", errs.ErrInputFormat, len(fields))
	}

	seg.IDWithSuffix(get.Get(rsidID, format.LTypeText), fields[0])
	chromWI := seg.Chrom(get.Get(datatype.CHROMDictID, format.LTypeText), fields[1])

	pos, err := strconv.ParseInt(string(fields[2]), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: 23andme position %q: %w", errs.ErrInputFormat, fields[2], err)
	}
	posCtx := get.Get(posID, format.LTypeText)
	posCtx.Flags.StoreValue = true
	seg.PosDelta(posCtx, pos)
	seg.RecordRange(get, chromWI, pos)

	get.Get(genotypeID, format.LTypeText).EvaluateAndEncode(fields[3])

	return nil
}

// Reconstruct appends one rsid/chromosome/position/genotype line
// (without its terminator) to out.
func (t *Type) Reconstruct(resolver piz.ContextResolver, interp *piz.Interpreter, out *pool.ByteBuffer) error {
	cols := []dictid.ID{rsidID, datatype.CHROMDictID, posID, genotypeID}

	for i, id := range cols {
		if i > 0 {
			out.MustWriteByte('\t')
		}

		c, ok := resolver.Context(id)
		if !ok {
			return fmt.Errorf("%w: 23andme reconstruct: missing context for column %d", errs.ErrIntegrity, i)
		}

		if _, err := interp.ReconstructContext(out, c); err != nil {
			return err
		}
	}

	return nil
}

// Specials has no data-type-specific SPECIAL handlers.
func (t *Type) Specials() map[int]piz.SpecialHandler { return nil }

// LineRegion implements datatype.RegionAware, reading chromosome and
// position off an already-reconstructed 23andMe genotype line.
func (t *Type) LineRegion(line []byte) (chrom string, pos int64, ok bool) {
	fields := bytes.SplitN(line, []byte{'\t'}, 4)
	if len(fields) < 3 {
		return "", 0, false
	}

	p, err := strconv.ParseInt(string(fields[2]), 10, 64)
	if err != nil {
		return "", 0, false
	}

	return string(fields[1]), p, true
}
