package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_RoundTrip(t *testing.T) {
	e := Entry{VBlockI: 3, ChromNodeIndex: 1, StartPos: 1000, EndPos: 5000}
	got, err := ParseEntry(e.Bytes())
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestIndex_RoundTripAndQuery(t *testing.T) {
	ix := New()
	ix.Add(Entry{VBlockI: 1, ChromNodeIndex: 1, StartPos: 1, EndPos: 1000})
	ix.Add(Entry{VBlockI: 2, ChromNodeIndex: 1, StartPos: 1001, EndPos: 2000})
	ix.Add(Entry{VBlockI: 3, ChromNodeIndex: 2, StartPos: 1, EndPos: 500})

	parsed, err := Parse(ix.Bytes())
	require.NoError(t, err)
	assert.Equal(t, ix.Entries, parsed.Entries)

	assert.Equal(t, []uint32{1}, parsed.VBlocksInRange(1, 500, 600))
	assert.Equal(t, []uint32{1, 2}, parsed.VBlocksInRange(1, 999, 1002))
	assert.Empty(t, parsed.VBlocksInRange(3, 0, 100))
}

func TestParse_RejectsMisalignedSize(t *testing.T) {
	_, err := Parse(make([]byte, EntrySize+1))
	require.Error(t, err)
}
