package ctx

import (
	"fmt"

	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/internal/pool"
)

const localTextSeparator = 0x07

// LocalStream is a context's secondary stream: fixed-width big-endian
// integers, raw sequence/quality bytes, or separator-terminated text.
type LocalStream struct {
	buf    *pool.ByteBuffer
	cursor int
}

func newLocalStream() *LocalStream {
	return &LocalStream{buf: &pool.ByteBuffer{}}
}

// Bytes returns the accumulated (encode side) or loaded (decode side)
// stream.
func (l *LocalStream) Bytes() []byte { return l.buf.Bytes() }

// Load prepares l for decoding a previously written local stream.
func (l *LocalStream) Load(data []byte) {
	l.buf.B = data
	l.cursor = 0
}

// widthFor returns the byte width of an LType's fixed-width integer form.
func widthFor(lt format.LType) (int, error) {
	switch lt {
	case format.LTypeInt8, format.LTypeUint8:
		return 1, nil
	case format.LTypeInt16, format.LTypeUint16:
		return 2, nil
	case format.LTypeInt32, format.LTypeUint32:
		return 4, nil
	case format.LTypeInt64, format.LTypeUint64:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: ltype %d has no fixed integer width", errs.ErrIntegrity, lt)
	}
}

// interlace maps a signed integer onto an unsigned one so a fixed-width
// big-endian encoding keeps small magnitudes short regardless of sign:
// v>=0 -> 2v, v<0 -> 2|v|-1.
func interlace(v int64) uint64 {
	if v >= 0 {
		return uint64(v) << 1
	}

	return uint64(-v)<<1 - 1
}

// deinterlace reverses interlace.
func deinterlace(u uint64) int64 {
	if u%2 == 0 {
		return int64(u >> 1) //nolint:gosec
	}

	return -int64((u + 1) >> 1) //nolint:gosec
}

func putUintWidth(dst []byte, v uint64, width int) {
	for i := 0; i < width; i++ {
		shift := uint((width - 1 - i) * 8)
		dst[i] = byte(v >> shift)
	}
}

func getUintWidth(data []byte, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v = v<<8 | uint64(data[i])
	}

	return v
}

// AppendLocalInt interlace-transforms v and appends it to the local stream
// as a fixed-width big-endian integer sized for c.LType.
func (c *Context) AppendLocalInt(v int64) error {
	width, err := widthFor(c.LType)
	if err != nil {
		return err
	}

	u := interlace(v)
	var tmp [8]byte
	putUintWidth(tmp[:width], u, width)
	c.local.buf.MustWrite(tmp[:width])

	return nil
}

// AppendLocalText appends s to the local stream, terminated by the
// in-band separator byte.
func (c *Context) AppendLocalText(s []byte) {
	c.local.buf.MustWrite(s)
	c.local.buf.MustWriteByte(localTextSeparator)
}

// AppendLocalSeq appends raw sequence or quality bytes to the local
// stream. Unlike AppendLocalText this has no separator: the reconstructor
// recovers each line's length from the length carried in that line's
// LOOKUP snip (see seg.SequenceColumn), not from the stream itself.
func (c *Context) AppendLocalSeq(s []byte) {
	c.local.buf.MustWrite(s)
}

// TakeLocalInt reads and deinterlaces the next fixed-width integer from
// the local stream.
func (c *Context) TakeLocalInt() (int64, error) {
	width, err := widthFor(c.LType)
	if err != nil {
		return 0, err
	}

	l := c.local
	if l.cursor+width > len(l.buf.B) {
		return 0, fmt.Errorf("%w: ctx %s: local stream truncated", errs.ErrIntegrity, c.DictID)
	}

	u := getUintWidth(l.buf.B[l.cursor:l.cursor+width], width)
	l.cursor += width

	return deinterlace(u), nil
}

// TakeLocalText reads the next separator-terminated string from the local
// stream.
func (c *Context) TakeLocalText() ([]byte, error) {
	l := c.local
	for i := l.cursor; i < len(l.buf.B); i++ {
		if l.buf.B[i] == localTextSeparator {
			s := l.buf.B[l.cursor:i]
			l.cursor = i + 1

			return s, nil
		}
	}

	return nil, fmt.Errorf("%w: ctx %s: local text stream missing terminator", errs.ErrIntegrity, c.DictID)
}

// TakeLocalSeq reads exactly n raw bytes from the local stream.
func (c *Context) TakeLocalSeq(n int) ([]byte, error) {
	l := c.local
	if l.cursor+n > len(l.buf.B) {
		return nil, fmt.Errorf("%w: ctx %s: local seq stream truncated", errs.ErrIntegrity, c.DictID)
	}

	s := l.buf.B[l.cursor : l.cursor+n]
	l.cursor += n

	return s, nil
}
