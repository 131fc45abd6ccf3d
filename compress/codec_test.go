package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vale-bio/gnzip/format"
)

func roundTrip(t *testing.T, c Codec, data []byte) {
	t.Helper()

	compressed, err := c.Compress(data)
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, decompressed)
}

func TestCodecs_RoundTrip(t *testing.T) {
	data := []byte("CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"1\t10000\t.\tA\tT\t.\tPASS\tAF=0.5\n")

	codecs := map[string]Codec{
		"none": NewNoOpCodec(),
		"bz2":  NewBZ2Codec(),
		"lzma": NewLZMACodec(),
		"bsc":  NewBSCCodec(),
		"zstd": NewZstdCodec(),
		"lz4":  NewLZ4Codec(),
		"s2":   NewS2Codec(),
	}

	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			roundTrip(t, c, data)
		})
	}
}

func TestCodecs_EmptyInput(t *testing.T) {
	codecs := []Codec{NewNoOpCodec(), NewZstdCodec(), NewLZ4Codec(), NewS2Codec()}
	for _, c := range codecs {
		compressed, err := c.Compress(nil)
		require.NoError(t, err)
		decompressed, err := c.Decompress(compressed, 0)
		require.NoError(t, err)
		assert.Empty(t, decompressed)
	}
}

func TestCreateCodec_Dispatch(t *testing.T) {
	for _, alg := range []format.Algorithm{format.AlgNone, format.AlgBZ2, format.AlgLZMA, format.AlgBSC, format.AlgZstd, format.AlgLZ4, format.AlgS2} {
		c, err := CreateCodec(alg, "test")
		require.NoError(t, err)
		require.NotNil(t, c)
	}
}

func TestCreateCodec_InvalidAlgorithm(t *testing.T) {
	_, err := CreateCodec(format.Algorithm(255), "local")
	require.Error(t, err)
}
