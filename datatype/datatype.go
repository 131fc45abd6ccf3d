// Package datatype exposes the per-format vtable: one Type implementation
// per supported
// bioinformatics text format, each providing a line segmenter, a line
// reconstructor, and any SPECIAL snip handlers the format needs.
//
// Every Type with a chromosome/contig-like column (CHROM for VCF, RNAME
// for SAM, seqid for GFF3, chromosome for 23andMe) routes it through the
// fixed dict_id CHROMDictID, so the random access index can be built the
// same way regardless of data type. FASTA and FASTQ have no such column;
// their header token goes to a DESC context.
package datatype

import (
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/internal/pool"
	"github.com/vale-bio/gnzip/piz"
	"github.com/vale-bio/gnzip/seg"
)

// CHROMDictID is the shared dict_id every Type with a per-line
// chromosome/contig/reference column routes that column through.
var CHROMDictID = dictid.Make("CHROM")

// Type is one data format's segmentation and reconstruction vtable.
type Type interface {
	// Name identifies the data type for the container header.
	Name() string

	// SegLine segments one input record (a line, or a multi-line FASTQ/
	// FASTA record already split into record boundaries by the caller)
	// into get's contexts. hasCR records whether the record's original
	// terminator included \r.
	SegLine(get seg.Getter, record []byte, hasCR bool) error

	// Reconstruct appends one record's reconstructed text to out, reading
	// from contexts reachable through resolver.
	Reconstruct(resolver piz.ContextResolver, interp *piz.Interpreter, out *pool.ByteBuffer) error

	// Specials returns this type's SPECIAL snip handler table, keyed by
	// handler number.
	Specials() map[int]piz.SpecialHandler
}

// RegionAware is implemented by formats whose reconstructed line carries a
// chromosome/contig name and a single position column, letting
// container.ReconstructAll filter a reconstructed line against a set of
// requested regions without knowing the format's column layout. Formats
// with no natural position column (FASTA, FASTQ) don't implement this;
// they are filtered by --grep alone.
type RegionAware interface {
	// LineRegion extracts the chromosome name and position from one
	// already-reconstructed output line. ok is false if line doesn't carry
	// a recognizable region (malformed or short line).
	LineRegion(line []byte) (chrom string, pos int64, ok bool)
}
