package ctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vale-bio/gnzip/b250"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/format"
)

func TestEvaluate_AssignsStableWordIndices(t *testing.T) {
	c := New(dictid.Make("CHROM"), format.LTypeText)

	wi1, isNew1 := c.Evaluate([]byte("chr1"))
	assert.Equal(t, uint32(0), wi1)
	assert.True(t, isNew1)

	wi2, isNew2 := c.Evaluate([]byte("chr2"))
	assert.Equal(t, uint32(1), wi2)
	assert.True(t, isNew2)

	wi1Again, isNew3 := c.Evaluate([]byte("chr1"))
	assert.Equal(t, wi1, wi1Again)
	assert.False(t, isNew3)
}

func TestB250_RoundTripWithOneUp(t *testing.T) {
	c := New(dictid.Make("POS"), format.LTypeText)
	c.Flags.OneUpAllowed = true

	for i := 0; i < 5; i++ {
		wi, _ := c.Evaluate([]byte{byte('a' + i)})
		c.PutB250(wi)
	}

	c.LoadB250(c.B250Bytes())
	for i := 0; i < 5; i++ {
		got, err := c.TakeB250()
		require.NoError(t, err)
		assert.Equal(t, uint32(i), got)
	}
}

func TestB250_EmptyAndMissingSentinels(t *testing.T) {
	c := New(dictid.Make("GT"), format.LTypeText)
	c.PutEmptySF()
	c.PutMissingSF()

	c.LoadB250(c.B250Bytes())

	v1, err := c.TakeB250()
	require.NoError(t, err)
	assert.True(t, IsEmptySF(v1))

	v2, err := c.TakeB250()
	require.NoError(t, err)
	assert.True(t, IsMissingSF(v2))
}

func TestInterlace_RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 1000, -1000, 1 << 30, -(1 << 30)}
	for _, v := range values {
		assert.Equal(t, v, deinterlace(interlace(v)))
	}
}

func TestLocalInt_RoundTrip(t *testing.T) {
	c := New(dictid.Make("POS"), format.LTypeInt32)

	values := []int64{0, 100, -100, 123456, -654321}
	for _, v := range values {
		require.NoError(t, c.AppendLocalInt(v))
	}

	c.local.Load(c.Local().Bytes())
	for _, want := range values {
		got, err := c.TakeLocalInt()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLocalText_RoundTrip(t *testing.T) {
	c := New(dictid.Make("QUAL"), format.LTypeText)
	c.AppendLocalText([]byte("IIIIIIII"))
	c.AppendLocalText([]byte("FFFFFFFF"))

	c.local.Load(c.Local().Bytes())
	s1, err := c.TakeLocalText()
	require.NoError(t, err)
	assert.Equal(t, "IIIIIIII", string(s1))

	s2, err := c.TakeLocalText()
	require.NoError(t, err)
	assert.Equal(t, "FFFFFFFF", string(s2))
}

func TestMerge_PromotesNewNodesAndRemaps(t *testing.T) {
	global := New(dictid.Make("CHROM"), format.LTypeText)
	global.Evaluate([]byte("chr1"))

	local := New(dictid.Make("CHROM"), format.LTypeText)
	local.Evaluate([]byte("chr2")) // local index 0
	local.Evaluate([]byte("chr1")) // local index 1, already global

	remap := global.Merge(local)
	require.Len(t, remap, 2)

	chr2Global, err := global.Lookup(remap[0])
	require.NoError(t, err)
	assert.Equal(t, "chr2", string(chr2Global))

	chr1Global, err := global.Lookup(remap[1])
	require.NoError(t, err)
	assert.Equal(t, "chr1", string(chr1Global))
	assert.Equal(t, uint32(0), remap[1])
}

func TestSortByFrequency_PromotesCommonEntries(t *testing.T) {
	c := New(dictid.Make("REF"), format.LTypeText)

	rareWI, _ := c.Evaluate([]byte("rare"))
	commonWI, _ := c.Evaluate([]byte("common"))

	for i := 0; i < 10; i++ {
		c.PutB250(commonWI)
	}
	c.PutB250(rareWI)

	remap := c.SortByFrequency()

	assert.Equal(t, uint32(0), remap[commonWI])
	assert.Equal(t, uint32(1), remap[rareWI])

	s, err := c.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, "common", string(s))
}

func TestTakeB250_OneUpWithoutPriorIsAnError(t *testing.T) {
	c := New(dictid.Make("X"), format.LTypeText)
	buf := b250.EncodeValue(nil, b250.OneUp)
	c.LoadB250(buf)

	_, err := c.TakeB250()
	require.Error(t, err)
}
