package compress

import "github.com/klauspost/compress/s2"

// S2Codec wires github.com/klauspost/compress/s2, a balanced speed/ratio
// option kept alongside the primary bzip2/lzma/zstd codecs for components
// that favor S2's lower latency.
type S2Codec struct{}

var _ Codec = S2Codec{}

func NewS2Codec() S2Codec { return S2Codec{} }

func (c S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (c S2Codec) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
