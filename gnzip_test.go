package gnzip

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompressVCF_RoundTrip(t *testing.T) {
	input := strings.Join([]string{
		"1\t100\trs1\tA\tG\t60\tPASS\tDP=10",
		"1\t200\trs2\tC\tT\t40\tPASS\tDP=20",
	}, "\n") + "\n"

	var container bytes.Buffer
	hdr, err := CompressVCF(&container, strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, hdr.LineCount)

	var out bytes.Buffer
	err = DecompressVCF(bytes.NewReader(container.Bytes()), &out)
	require.NoError(t, err)
	assert.Equal(t, input, out.String())
}

func TestCompressDecompressSAM_RoundTrip(t *testing.T) {
	input := strings.Join([]string{
		"read1\t0\tchr1\t100\t60\t10M\t*\t0\t0\tACGTACGTAC\tIIIIIIIIII",
		"read2\t16\tchr1\t150\t60\t10M\t*\t0\t0\tTTTTAAAACC\tFFFFFFFFFF",
	}, "\n") + "\n"

	var container bytes.Buffer
	hdr, err := CompressSAM(&container, strings.NewReader(input))
	require.NoError(t, err)
	assert.EqualValues(t, 2, hdr.LineCount)

	var out bytes.Buffer
	err = DecompressSAM(bytes.NewReader(container.Bytes()), &out)
	require.NoError(t, err)
	assert.Equal(t, input, out.String())
}

func TestCompress23andMe_RoundTrip(t *testing.T) {
	input := "rs1\t1\t100\tAA\nrs2\t1\t200\tAG\n"

	var container bytes.Buffer
	_, err := Compress23andMe(&container, strings.NewReader(input))
	require.NoError(t, err)

	var out bytes.Buffer
	err = Decompress23andMe(bytes.NewReader(container.Bytes()), &out)
	require.NoError(t, err)
	assert.Equal(t, input, out.String())
}

func TestDecompress_UnrecognizedFormat(t *testing.T) {
	err := Decompress(bytes.NewReader(nil), &bytes.Buffer{}, Format(99))
	require.Error(t, err)
}
