package compress

import "github.com/valyala/gozstd"

// ZstdCodec wires github.com/valyala/gozstd, the default backend for
// high-cardinality local streams (SEQ/QUAL) where ratio matters more than
// raw throughput.
type ZstdCodec struct {
	level int
}

var _ Codec = ZstdCodec{}

// NewZstdCodec returns a Zstd codec at the default compression level.
func NewZstdCodec() ZstdCodec { return ZstdCodec{level: 3} }

// NewZstdCodecLevel returns a Zstd codec at an explicit level, used by
// AlgBSC's substitute implementation to request level 19.
func NewZstdCodecLevel(level int) ZstdCodec { return ZstdCodec{level: level} }

// zstdOptimizeLevel is the level CreateCodec's optimize flag selects for
// AlgZstd, matching gozstd's top of its non-ultra range.
const zstdOptimizeLevel = 19

func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, c.level), nil
}

func (c ZstdCodec) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(make([]byte, 0, uncompressedSize), data)
}
