package piz

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/errs"
)

// StructuredItem is one field of a Structured template: the subcontext it
// reconstructs from, and the separator bytes written before it (sep[1] == 0
// means "no second separator byte"). The first item's Sep is not written.
type StructuredItem struct {
	DictID dictid.ID
	Sep    [2]byte
}

const structuredItemSize = 10 // 8 (dict_id) + 2 (sep)

// Structured describes a repeated record: repeats copies of num_items
// fields, each after the first preceded by its own separator, with repsep
// between repetitions. Prefixes is a shared string table referenced by item
// index via an in-band delimiter (0x00); it is carried through the binary
// and base64 wire forms, but the interpreter does not apply it when
// reconstructing.
type Structured struct {
	Repeats  uint32
	Items    []StructuredItem
	RepSep   [2]byte
	Flags    uint8
	Prefixes []byte
}

// Bytes serializes the template to its fixed-shape binary form.
func (s Structured) Bytes() []byte {
	out := make([]byte, 0, 4+1+len(s.Items)*structuredItemSize+2+1+2+len(s.Prefixes))

	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], s.Repeats)
	out = append(out, tmp[:]...)
	out = append(out, uint8(len(s.Items))) //nolint:gosec

	for _, it := range s.Items {
		var idBuf [8]byte
		binary.BigEndian.PutUint64(idBuf[:], uint64(it.DictID))
		out = append(out, idBuf[:]...)
		out = append(out, it.Sep[0], it.Sep[1])
	}

	out = append(out, s.RepSep[0], s.RepSep[1], s.Flags)

	var plen [2]byte
	binary.BigEndian.PutUint16(plen[:], uint16(len(s.Prefixes))) //nolint:gosec
	out = append(out, plen[:]...)
	out = append(out, s.Prefixes...)

	return out
}

// ParseStructured decodes a template previously produced by Bytes.
func ParseStructured(data []byte) (Structured, error) {
	if len(data) < 4+1+2+1+2 {
		return Structured{}, fmt.Errorf("%w: structured template truncated", errs.ErrIntegrity)
	}

	var s Structured
	s.Repeats = binary.BigEndian.Uint32(data[0:4])
	numItems := int(data[4])
	off := 5

	if len(data) < off+numItems*structuredItemSize {
		return Structured{}, fmt.Errorf("%w: structured template item list truncated", errs.ErrIntegrity)
	}

	s.Items = make([]StructuredItem, numItems)
	for i := 0; i < numItems; i++ {
		id := dictid.ID(binary.BigEndian.Uint64(data[off : off+8]))
		sep0, sep1 := data[off+8], data[off+9]
		s.Items[i] = StructuredItem{DictID: id, Sep: [2]byte{sep0, sep1}}
		off += structuredItemSize
	}

	if len(data) < off+2+1+2 {
		return Structured{}, fmt.Errorf("%w: structured template trailer truncated", errs.ErrIntegrity)
	}

	s.RepSep = [2]byte{data[off], data[off+1]}
	s.Flags = data[off+2]
	off += 3

	plen := int(binary.BigEndian.Uint16(data[off : off+2]))
	off += 2

	if len(data) < off+plen {
		return Structured{}, fmt.Errorf("%w: structured template prefixes truncated", errs.ErrIntegrity)
	}

	s.Prefixes = data[off : off+plen]

	return s, nil
}

// EncodeBase64 renders the template as the ASCII payload a STRUCTURED snip
// carries, so it can live inside a dictionary string alongside literal
// text snips.
func (s Structured) EncodeBase64() []byte {
	raw := s.Bytes()
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)

	return out
}

// DecodeStructuredBase64 reverses EncodeBase64.
func DecodeStructuredBase64(payload []byte) (Structured, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))
	n, err := base64.StdEncoding.Decode(raw, payload)
	if err != nil {
		return Structured{}, fmt.Errorf("%w: structured template base64: %w", errs.ErrIntegrity, err)
	}

	return ParseStructured(raw[:n])
}
