package section

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/format"
)

func TestHeader_RoundTrip(t *testing.T) {
	h := Header{
		Type:             format.SectionB250,
		Codec:            format.AlgBZ2,
		LType:            format.LTypeUint32,
		Flags:            0x01,
		CompressedOffset: 128,
		CompressedSize:   64,
		UncompressedSize: 256,
		VBlockI:          7,
		DictID:           uint64(dictid.Make("CHROM")),
	}

	got, err := ParseHeader(h.Bytes())
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestHeader_RejectsBadMagic(t *testing.T) {
	data := make([]byte, HeaderSize)
	_, err := ParseHeader(data)
	require.Error(t, err)
}

func TestGenozipHeader_RoundTrip(t *testing.T) {
	h := NewGenozipHeader(DataTypeVCF, time.Unix(1700000000, 0))
	h.ComponentCount = 3
	h.PlaintextSize = 1 << 20
	h.LineCount = 50000
	h.WholeMD5 = [16]byte{1, 2, 3}

	got, err := ParseGenozipHeader(h.Bytes())
	require.NoError(t, err)
	assert.Equal(t, *h, got)
}

func TestGenozipHeader_RejectsOldVersion(t *testing.T) {
	h := NewGenozipHeader(DataTypeVCF, time.Now())
	h.Version = ContainerVersion - 1
	_, err := ParseGenozipHeader(h.Bytes())
	require.Error(t, err)
}

func TestAliasTable_RoundTrip(t *testing.T) {
	tbl := NewAliasTable()
	tbl.Declare(dictid.Make("END").Type2(), dictid.Make("POS").Field())

	parsed, err := ParseAliasTable(tbl.Bytes())
	require.NoError(t, err)

	resolved := parsed.Resolve(dictid.Make("END").Type2())
	assert.Equal(t, dictid.Make("POS").Field(), resolved)

	// A dict_id with no alias resolves to itself.
	assert.Equal(t, dictid.Make("AF"), parsed.Resolve(dictid.Make("AF")))
}

func TestTOC_RoundTrip(t *testing.T) {
	toc := &TOC{Entries: []TOCEntry{
		{Type: uint8(format.SectionTxtHeader), Offset: 0, Size: 100},
		{Type: uint8(format.SectionVBHeader), Offset: 100, Size: 40},
	}}

	parsed, err := ParseTOC(toc.Bytes())
	require.NoError(t, err)
	assert.Equal(t, toc.Entries, parsed.Entries)
}
