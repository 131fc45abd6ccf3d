package section

import (
	"fmt"

	"github.com/vale-bio/gnzip/endian"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/format"
)

// Header is the fixed-prefix chunk header every on-disk section starts
// with: magic, the kind of section, the codec and local-stream shape it was
// written with, the vblock it belongs to (0 for file-global sections), and
// the dict_id it carries data for (0 for non-context sections).
type Header struct {
	Type             format.SectionType
	Codec            format.Algorithm
	LType            format.LType
	Flags            uint8
	CompressedOffset uint32
	CompressedSize   uint32
	UncompressedSize uint32
	VBlockI          uint32
	DictID           uint64
}

// Bytes serializes h into a HeaderSize-byte little-endian buffer.
func (h *Header) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	b := make([]byte, HeaderSize)
	engine.PutUint32(b[0:4], MagicSection)
	b[4] = uint8(h.Type)
	b[5] = uint8(h.Codec)
	b[6] = uint8(h.LType)
	b[7] = h.Flags
	engine.PutUint32(b[8:12], h.CompressedOffset)
	engine.PutUint32(b[12:16], h.CompressedSize)
	engine.PutUint32(b[16:20], h.UncompressedSize)
	engine.PutUint32(b[20:24], h.VBlockI)
	engine.PutUint64(b[24:32], h.DictID)

	return b
}

// Parse reads a Header from the first HeaderSize bytes of data.
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: section header needs %d bytes, got %d", errs.ErrIntegrity, HeaderSize, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	magic := engine.Uint32(data[0:4])
	if magic != MagicSection {
		return fmt.Errorf("%w: bad section magic %#x", errs.ErrIntegrity, magic)
	}

	h.Type = format.SectionType(data[4])
	h.Codec = format.Algorithm(data[5])
	h.LType = format.LType(data[6])
	h.Flags = data[7]
	h.CompressedOffset = engine.Uint32(data[8:12])
	h.CompressedSize = engine.Uint32(data[12:16])
	h.UncompressedSize = engine.Uint32(data[16:20])
	h.VBlockI = engine.Uint32(data[20:24])
	h.DictID = engine.Uint64(data[24:32])

	return nil
}

// ParseHeader parses a Header from data, returning the struct directly.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if err := h.Parse(data); err != nil {
		return Header{}, err
	}

	return h, nil
}
