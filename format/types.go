// Package format defines the small on-disk enums shared by every section of
// a container: the compression algorithm a section was written with, the
// shape of a context's local stream, and the kind of section a chunk header
// introduces.
package format

type (
	// LType describes the shape of values stored in a context's local
	// stream, so the PIZ interpreter knows how to decode and interlace them.
	LType uint8

	// Algorithm identifies the compression codec a section was written
	// with.
	Algorithm uint8

	// SectionType identifies the role of one on-disk chunk.
	SectionType uint8
)

const (
	LTypeInt8 LType = iota + 1
	LTypeInt16
	LTypeInt32
	LTypeInt64
	LTypeUint8
	LTypeUint16
	LTypeUint32
	LTypeUint64
	LTypeSequence
	LTypeText
)

const (
	// AlgNone stores section data uncompressed.
	AlgNone Algorithm = iota + 1
	// AlgBZ2 is the primary general-purpose codec for B250/LOCAL/DICT
	// sections (github.com/dsnet/compress/bzip2).
	AlgBZ2
	// AlgLZMA favors DICT sections: long concatenated strings benefit from
	// its larger window (github.com/ulikunitz/xz/lzma).
	AlgLZMA
	// AlgBSC is the wire-compatible slot for a block-sorting compressor.
	// No Go binding for libbsc exists in this module's dependency set; see
	// DESIGN.md for why it is backed by AlgZstd at level 19
	// instead of a fabricated binding.
	AlgBSC
	// AlgZstd is the default backend for high-cardinality local streams
	// (SEQ/QUAL) (github.com/valyala/gozstd).
	AlgZstd
	// AlgLZ4 trades ratio for speed, favored by the random-access index
	// (github.com/pierrec/lz4/v4).
	AlgLZ4
	// AlgS2 is klauspost/compress/s2, a balanced speed/ratio option
	// exercised by tests.
	AlgS2
)

func (a Algorithm) String() string {
	switch a {
	case AlgNone:
		return "none"
	case AlgBZ2:
		return "bz2"
	case AlgLZMA:
		return "lzma"
	case AlgBSC:
		return "bsc"
	case AlgZstd:
		return "zstd"
	case AlgLZ4:
		return "lz4"
	case AlgS2:
		return "s2"
	default:
		return "unknown"
	}
}

const (
	SectionTxtHeader SectionType = iota + 1
	SectionVBHeader
	SectionB250
	SectionLocal
	SectionDict
	SectionRandomAccess
	SectionAlias
	SectionGenozipHeader
)

func (s SectionType) String() string {
	switch s {
	case SectionTxtHeader:
		return "TXT_HEADER"
	case SectionVBHeader:
		return "VB_HEADER"
	case SectionB250:
		return "B250"
	case SectionLocal:
		return "LOCAL"
	case SectionDict:
		return "DICT"
	case SectionRandomAccess:
		return "RANDOM_ACCESS"
	case SectionAlias:
		return "ALIAS"
	case SectionGenozipHeader:
		return "GENOZIP_HEADER"
	default:
		return "UNKNOWN"
	}
}
