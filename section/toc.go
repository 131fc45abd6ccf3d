package section

import (
	"fmt"

	"github.com/vale-bio/gnzip/endian"
	"github.com/vale-bio/gnzip/errs"
)

// TOCEntrySize is the fixed size of one table-of-contents entry: the
// section's type, its byte offset from the start of the file, and its
// on-disk (compressed) size including its own Header.
const TOCEntrySize = 13

// TOCEntry locates one section within the file.
type TOCEntry struct {
	Type   uint8
	Offset uint64
	Size   uint32
}

func (e TOCEntry) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	b := make([]byte, TOCEntrySize)
	b[0] = e.Type
	engine.PutUint64(b[1:9], e.Offset)
	engine.PutUint32(b[9:13], e.Size)

	return b
}

func parseTOCEntry(data []byte) (TOCEntry, error) {
	if len(data) < TOCEntrySize {
		return TOCEntry{}, fmt.Errorf("%w: toc entry needs %d bytes, got %d", errs.ErrIntegrity, TOCEntrySize, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	return TOCEntry{
		Type:   data[0],
		Offset: engine.Uint64(data[1:9]),
		Size:   engine.Uint32(data[9:13]),
	}, nil
}

// TOC is the table of section offsets written after every other section,
// just ahead of the fixed-size trailer. The trailer does not record the
// TOC's offset or entry count; readers locate sections by walking their
// self-delimiting headers from the start of the container.
type TOC struct {
	Entries []TOCEntry
}

// Bytes serializes the full TOC as entry-count (4 bytes, little-endian)
// followed by the concatenated entries.
func (t *TOC) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	out := make([]byte, 4, 4+len(t.Entries)*TOCEntrySize)
	engine.PutUint32(out[0:4], uint32(len(t.Entries))) //nolint:gosec

	for _, e := range t.Entries {
		out = append(out, e.Bytes()...)
	}

	return out
}

// ParseTOC parses a TOC previously written by Bytes.
func ParseTOC(data []byte) (*TOC, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: toc truncated", errs.ErrIntegrity)
	}

	engine := endian.GetLittleEndianEngine()
	count := engine.Uint32(data[0:4])

	t := &TOC{Entries: make([]TOCEntry, 0, count)}
	off := 4
	for i := uint32(0); i < count; i++ {
		if off+TOCEntrySize > len(data) {
			return nil, fmt.Errorf("%w: toc entry %d truncated", errs.ErrIntegrity, i)
		}

		entry, err := parseTOCEntry(data[off : off+TOCEntrySize])
		if err != nil {
			return nil, err
		}

		t.Entries = append(t.Entries, entry)
		off += TOCEntrySize
	}

	return t, nil
}
