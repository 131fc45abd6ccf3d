// Package section implements the on-disk chunk framing: the fixed-prefix
// header every section starts with, the file-global container trailer,
// the alias table, and the random-access index entry shape.
//
// Every multi-byte field is written little-endian with explicit
// field-by-field packing rather than encoding/binary struct reflection.
package section

const (
	// MagicSection marks the start of a per-section header.
	MagicSection uint32 = 0x475A5342 // "GZSB"
	// MagicContainer marks the start of the whole-file GenozipHeader trailer.
	MagicContainer uint32 = 0x475A4849 // "GZHI"

	// HeaderSize is the fixed size in bytes of a section Header.
	HeaderSize = 32
	// GenozipHeaderSize is the fixed size in bytes of the container trailer.
	GenozipHeaderSize = 64
	// AliasEntrySize is the fixed size in bytes of one AliasEntry.
	AliasEntrySize = 16
	// IndexEntrySize is the fixed size in bytes of one random-access Entry.
	IndexEntrySize = 24

	// ContainerVersion is the version this implementation writes and the
	// minimum version it will read.
	ContainerVersion uint8 = 5
)
