package compress

import (
	"bytes"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// BZ2Codec wires github.com/dsnet/compress/bzip2, the primary general
// purpose codec for B250, LOCAL and DICT sections.
type BZ2Codec struct {
	level int
}

var _ Codec = BZ2Codec{}

func NewBZ2Codec() BZ2Codec { return BZ2Codec{level: bzip2.DefaultCompression} }

// bzip2BestCompression is the level CreateCodec's optimize flag selects
// for AlgBZ2, trading encode speed for a smaller B250/LOCAL/DICT payload.
const bzip2BestCompression = bzip2.BestCompression

// NewBZ2CodecLevel returns a bzip2 codec at an explicit level.
func NewBZ2CodecLevel(level int) BZ2Codec { return BZ2Codec{level: level} }

func (c BZ2Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := bzip2.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (c BZ2Codec) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	r, err := bzip2.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out := make([]byte, 0, uncompressedSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
