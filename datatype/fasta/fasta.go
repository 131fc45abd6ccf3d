// Package fasta implements the datatype.Type vtable for FASTA records: a
// ">description" header line followed by one or more sequence lines. The
// sequence lines are joined into a single contiguous residue stream for
// segmentation; the original line-wrap width is not restored (a record
// round-trips byte-identical only when written back unwrapped).
package fasta

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
)

// Type implements datatype.Type for FASTA.
type Type struct{}

// New constructs a FASTA vtable.
func New() *Type { return &Type{} }

func (t *Type) Name() string { return "FASTA" }

// SegLine segments one FASTA record. record holds the header line and
// every wrapped sequence line joined by '\n'.
func (t *Type) SegLine(get seg.Getter, record []byte, hasCR bool) error {
	lines := bytes.Split(record, []byte{'\n'})
	if len(lines) == 0 || len(lines[0]) == 0 || lines[0][0] != '>' {
		return fmt.Errorf("%w: fasta record missing '>' header", errs.ErrInputFormat)
	}

	seg.IDWithSuffix(get.Get(descID, format.LTypeText), lines[0][1:])

	seq := bytes.Join(lines[1:], nil)
	seg.SequenceColumn(get.Get(seqID, format.LTypeSequence), seq)

	return nil
}

// Reconstruct appends one FASTA record (header and unwrapped sequence,
// newline-separated, without a trailing terminator) to out.
func (t *Type) Reconstruct(resolver piz.ContextResolver, interp *piz.Interpreter, out *pool.ByteBuffer) error {
	descCtx, ok := resolver.Context(descID)
	if !ok {
		return fmt.Errorf("%w: fasta reconstruct: missing DESC context", errs.ErrIntegrity)
	}
	out.MustWriteByte('>')
	if _, err := interp.ReconstructContext(out, descCtx); err != nil {
		return err
	}
	out.MustWriteByte('\n')

	seqCtx, ok := resolver.Context(seqID)
	if !ok {
		return fmt.Errorf("%w: fasta reconstruct: missing SEQ context", errs.ErrIntegrity)
	}
	if _, err := interp.ReconstructContext(out, seqCtx); err != nil {
		return err
	}

	return nil
}

// Specials has no data-type-specific SPECIAL handlers.
func (t *Type) Specials() map[int]piz.SpecialHandler { return nil }
