// Package index implements the random-access index: a (chrom, pos-range)
// -> vblock_i mapping serialized as one section at
// file close, letting a region query jump straight to the vblocks that can
// contain it instead of scanning the whole container.
package index

import (
	"fmt"

	"github.com/vale-bio/gnzip/endian"
	"github.com/vale-bio/gnzip/errs"
)

// EntrySize is the fixed size in bytes of one Entry.
const EntrySize = 24

// Entry records the position range one vblock covers for one chromosome.
type Entry struct {
	VBlockI        uint32
	ChromNodeIndex uint32
	StartPos       int64
	EndPos         int64
}

// Bytes serializes the entry into EntrySize bytes.
func (e Entry) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	b := make([]byte, EntrySize)
	engine.PutUint32(b[0:4], e.VBlockI)
	engine.PutUint32(b[4:8], e.ChromNodeIndex)
	engine.PutUint64(b[8:16], uint64(e.StartPos)) //nolint:gosec
	engine.PutUint64(b[16:24], uint64(e.EndPos))  //nolint:gosec

	return b
}

// ParseEntry parses one Entry from data.
func ParseEntry(data []byte) (Entry, error) {
	if len(data) < EntrySize {
		return Entry{}, fmt.Errorf("%w: index entry needs %d bytes, got %d", errs.ErrIntegrity, EntrySize, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	return Entry{
		VBlockI:        engine.Uint32(data[0:4]),
		ChromNodeIndex: engine.Uint32(data[4:8]),
		StartPos:       int64(engine.Uint64(data[8:16])), //nolint:gosec
		EndPos:         int64(engine.Uint64(data[16:24])), //nolint:gosec
	}, nil
}

// Index is the file-global random-access structure, appended to once per
// vblock and serialized as one section when the file closes.
type Index struct {
	Entries []Entry
}

// New creates an empty Index.
func New() *Index { return &Index{} }

// Add records the range one vblock covers for one chromosome. A vblock
// touching multiple chromosomes adds one entry per chromosome.
func (ix *Index) Add(e Entry) {
	ix.Entries = append(ix.Entries, e)
}

// Bytes serializes the whole index as a concatenated run of entries.
func (ix *Index) Bytes() []byte {
	out := make([]byte, 0, len(ix.Entries)*EntrySize)
	for _, e := range ix.Entries {
		out = append(out, e.Bytes()...)
	}

	return out
}

// Parse parses a concatenated run of Entry records written by Bytes.
func Parse(data []byte) (*Index, error) {
	if len(data)%EntrySize != 0 {
		return nil, fmt.Errorf("%w: index size %d is not a multiple of %d", errs.ErrIntegrity, len(data), EntrySize)
	}

	ix := &Index{Entries: make([]Entry, 0, len(data)/EntrySize)}
	for off := 0; off < len(data); off += EntrySize {
		e, err := ParseEntry(data[off : off+EntrySize])
		if err != nil {
			return nil, err
		}
		ix.Entries = append(ix.Entries, e)
	}

	return ix, nil
}

// VBlocksInRange returns, in file order, the vblock_i values of entries on
// chromNodeIndex whose [StartPos, EndPos] range intersects [start, end].
func (ix *Index) VBlocksInRange(chromNodeIndex uint32, start, end int64) []uint32 {
	var out []uint32
	for _, e := range ix.Entries {
		if e.ChromNodeIndex != chromNodeIndex {
			continue
		}
		if e.StartPos > end || e.EndPos < start {
			continue
		}
		out = append(out, e.VBlockI)
	}

	return out
}
