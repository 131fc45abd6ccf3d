package compress

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// LZMACodec wires github.com/ulikunitz/xz/lzma, used for DICT sections:
// long concatenated dictionary strings benefit from LZMA's larger window
// relative to bzip2's block size.
type LZMACodec struct{}

var _ Codec = LZMACodec{}

func NewLZMACodec() LZMACodec { return LZMACodec{} }

func (c LZMACodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := lzma.NewWriter(&buf)
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

func (c LZMACodec) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	out := bytes.NewBuffer(make([]byte, 0, uncompressedSize))
	if _, err := io.Copy(out, r); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
