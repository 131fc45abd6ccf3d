// Package fastq implements the datatype.Type vtable for FASTQ read
// records: four lines per record (description, sequence, a "+"
// separator optionally repeating the description, and quality scores).
package fastq

import (
	"bytes"
	"fmt"

	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/internal/pool"
	"github.com/vale-bio/gnzip/piz"
	"github.com/vale-bio/gnzip/seg"
)

var (
	descID = dictid.Make("DESC")
	seqID  = dictid.Make("SEQ")
	sepID  = dictid.Make("SEP")
	qualID = dictid.Make("QUAL")
)

// Type implements datatype.Type for FASTQ.
type Type struct{}

// New constructs a FASTQ vtable.
func New() *Type { return &Type{} }

func (t *Type) Name() string { return "FASTQ" }

// SegLine segments one FASTQ record. record holds all four lines joined
// by '\n' (the caller frames records this way since a single FASTQ
// record spans four physical lines).
func (t *Type) SegLine(get seg.Getter, record []byte, hasCR bool) error {
	lines := bytes.SplitN(record, []byte{'\n'}, 4)
	if len(lines) != 4 {
		return fmt.Errorf("%w: fastq record has %d lines, need 4", errs.ErrInputFormat, len(lines))
	}
	if len(lines[0]) == 0 || lines[0][0] != '@' {
		return fmt.Errorf("%w: fastq description line missing '@'", errs.ErrInputFormat)
	}
	if len(lines[2]) == 0 || lines[2][0] != '+' {
		return fmt.Errorf("%w: fastq separator line missing '+'", errs.ErrInputFormat)
	}

	seg.IDWithSuffix(get.Get(descID, format.LTypeText), lines[0][1:])
	seg.SequenceColumn(get.Get(seqID, format.LTypeSequence), lines[1])

	get.Get(sepID, format.LTypeText).EvaluateAndEncode(lines[2][1:])

	seg.SequenceColumn(get.Get(qualID, format.LTypeSequence), lines[3])

	return nil
}

// Reconstruct appends one FASTQ record's four lines (newline-joined,
// without a trailing terminator) to out.
func (t *Type) Reconstruct(resolver piz.ContextResolver, interp *piz.Interpreter, out *pool.ByteBuffer) error {
	descCtx, ok := resolver.Context(descID)
	if !ok {
		return fmt.Errorf("%w: fastq reconstruct: missing DESC context", errs.ErrIntegrity)
	}
	out.MustWriteByte('@')
	if _, err := interp.ReconstructContext(out, descCtx); err != nil {
		return err
	}
	out.MustWriteByte('\n')

	seqCtx, ok := resolver.Context(seqID)
	if !ok {
		return fmt.Errorf("%w: fastq reconstruct: missing SEQ context", errs.ErrIntegrity)
	}
	if _, err := interp.ReconstructContext(out, seqCtx); err != nil {
		return err
	}
	out.MustWriteByte('\n')

	sepCtx, ok := resolver.Context(sepID)
	if !ok {
		return fmt.Errorf("%w: fastq reconstruct: missing SEP context", errs.ErrIntegrity)
	}
	out.MustWriteByte('+')
	if _, err := interp.ReconstructContext(out, sepCtx); err != nil {
		return err
	}
	out.MustWriteByte('\n')

	qualCtx, ok := resolver.Context(qualID)
	if !ok {
		return fmt.Errorf("%w: fastq reconstruct: missing QUAL context", errs.ErrIntegrity)
	}
	if _, err := interp.ReconstructContext(out, qualCtx); err != nil {
		return err
	}

	return nil
}

// Specials has no data-type-specific SPECIAL handlers.
func (t *Type) Specials() map[int]piz.SpecialHandler { return nil }
