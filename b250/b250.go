// Package b250 implements the base-250 variable-length encoding of a
// context's sequence of dictionary word indices: one
// byte for the common case (0..249), a lead byte plus 2-5 big-endian
// follower bytes for larger indices, and three out-of-band sentinel values
// reserved at the top of the uint32 range.
package b250

import (
	"fmt"

	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/internal/pool"
)

const (
	maxSingleByte = 249

	lead2Bytes byte = 250
	lead3Bytes byte = 251
	lead4Bytes byte = 252
	lead5Bytes byte = 253
)

// Sentinel word_index values. They are ordinary uint32 values from the
// encoding's point of view (always encoded as the 5-byte form) but are
// intercepted by the decoder side before reaching a context's dictionary.
const (
	// OneUp means "this line's word_index is the previous line's plus
	// one", letting the encoder skip the dictionary lookup entirely for
	// runs of consecutive new values (e.g. an auto-incrementing ID column).
	OneUp uint32 = 0xFFFFFFFF
	// EmptySF marks a subfield present on the line but holding an empty
	// string (VCF's "" INFO flag value, a trailing empty FORMAT field).
	EmptySF uint32 = 0xFFFFFFFE
	// MissingSF marks a subfield entirely absent from this line (fewer
	// FORMAT fields than the header declares for this sample).
	MissingSF uint32 = 0xFFFFFFFD
)

// EncodeValue appends the base-250 encoding of v to dst and returns the
// extended slice. The format reserves a fifth, 5-follower-byte form for
// values wider than uint32; since word indices are uint32 throughout this
// implementation, the 4-follower-byte form already covers the full range
// and is used for every value above 0xFFFFFF, sentinels included.
func EncodeValue(dst []byte, v uint32) []byte {
	switch {
	case v <= maxSingleByte:
		return append(dst, byte(v))
	case v <= 0xFFFF:
		return append(dst, lead2Bytes, byte(v>>8), byte(v))
	case v <= 0xFFFFFF:
		return append(dst, lead3Bytes, byte(v>>16), byte(v>>8), byte(v))
	default:
		return append(dst, lead4Bytes, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
}

// DecodeValue reads one base-250 value from the front of data, returning
// the value and the number of bytes consumed.
func DecodeValue(data []byte) (value uint32, n int, err error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("%w: b250: empty input", errs.ErrIntegrity)
	}

	lead := data[0]
	if lead <= maxSingleByte {
		return uint32(lead), 1, nil
	}

	var need int
	switch lead {
	case lead2Bytes:
		need = 2
	case lead3Bytes:
		need = 3
	case lead4Bytes:
		need = 4
	case lead5Bytes:
		need = 5
	default:
		return 0, 0, fmt.Errorf("%w: b250: invalid lead byte %d", errs.ErrIntegrity, lead)
	}

	if len(data) < 1+need {
		return 0, 0, fmt.Errorf("%w: b250: truncated value", errs.ErrIntegrity)
	}

	var v uint32
	for i := 0; i < need; i++ {
		v = v<<8 | uint32(data[1+i])
	}

	return v, 1 + need, nil
}

// Encoder accumulates a context's b250 stream during segmentation.
type Encoder struct {
	buf *pool.ByteBuffer
}

// NewEncoder creates an Encoder writing into buf.
func NewEncoder(buf *pool.ByteBuffer) *Encoder {
	return &Encoder{buf: buf}
}

// Put appends the base-250 encoding of wordIndex (or one of the sentinel
// values) to the stream.
func (e *Encoder) Put(wordIndex uint32) {
	e.buf.B = EncodeValue(e.buf.B, wordIndex)
}

// Bytes returns the accumulated stream.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// Decoder walks a previously-encoded b250 stream.
type Decoder struct {
	data   []byte
	cursor int
}

// NewDecoder creates a Decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Take decodes and returns the next word_index (or sentinel) in the stream.
func (d *Decoder) Take() (uint32, error) {
	v, n, err := DecodeValue(d.data[d.cursor:])
	if err != nil {
		return 0, err
	}
	d.cursor += n

	return v, nil
}

// Done reports whether every byte of the stream has been consumed.
func (d *Decoder) Done() bool { return d.cursor >= len(d.data) }
