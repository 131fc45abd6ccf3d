// Package compress provides the codec dispatch table for section payloads.
// Every codec implements Compress/Decompress on a
// whole byte slice, and every section, SEQ/QUAL local streams included, is
// compressed as one slice. The callback-input form (StreamCompressor) is
// declared but no codec in this package implements it.
package compress

import (
	"fmt"

	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/internal/pool"
)

// Compressor compresses a complete payload.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a payload back to its original bytes. The
// caller supplies the uncompressed size recorded in the section header so
// codecs that need a destination buffer can size it exactly.
type Decompressor interface {
	Decompress(data []byte, uncompressedSize int) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// StreamCompressor additionally accepts a pull callback that feeds the
// codec one chunk at a time instead of one pre-concatenated slice. No codec
// in this package implements it, so SEQ/QUAL local streams are compressed
// through Compress like every other section.
type StreamCompressor interface {
	Codec
	CompressFunc(next func() ([]byte, bool), out *pool.ByteBuffer) error
}

// CreateCodec returns the Codec for alg, or an error naming target for
// diagnostics. An optional trailing optimize flag (consulted on encode
// only; decode always omits it, since a section decompresses with
// whatever codec it was written with) requests the slower, higher-ratio
// variant of the codec. Only AlgBZ2 and AlgZstd have such a variant; every
// other algorithm ignores the flag.
func CreateCodec(alg format.Algorithm, target string, optimize ...bool) (Codec, error) {
	opt := len(optimize) > 0 && optimize[0]

	switch alg {
	case format.AlgNone:
		return NewNoOpCodec(), nil
	case format.AlgBZ2:
		if opt {
			return NewBZ2CodecLevel(bzip2BestCompression), nil
		}

		return NewBZ2Codec(), nil
	case format.AlgLZMA:
		return NewLZMACodec(), nil
	case format.AlgBSC:
		return NewBSCCodec(), nil
	case format.AlgZstd:
		if opt {
			return NewZstdCodecLevel(zstdOptimizeLevel), nil
		}

		return NewZstdCodec(), nil
	case format.AlgLZ4:
		return NewLZ4Codec(), nil
	case format.AlgS2:
		return NewS2Codec(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression algorithm: %s", target, alg)
	}
}
