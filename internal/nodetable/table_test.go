package nodetable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_InsertAndLookup(t *testing.T) {
	tbl := New(4)
	strs := []string{"1", "2", "X", "Y", "MT"}

	for i, s := range strs {
		h := fakeHash(s)
		_, found := tbl.Lookup(h, func(wi uint32) bool { return strs[wi] == s })
		require.False(t, found)
		tbl.Insert(h, uint32(i))
	}

	for i, s := range strs {
		h := fakeHash(s)
		wi, found := tbl.Lookup(h, func(wi uint32) bool { return strs[wi] == s })
		require.True(t, found)
		assert.Equal(t, uint32(i), wi)
	}
}

func TestTable_GrowsPastLoadFactor(t *testing.T) {
	tbl := New(2)
	const n = 200
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = fmt.Sprintf("word-%d", i)
	}

	for i, s := range names {
		tbl.Insert(fakeHash(s), uint32(i))
	}

	assert.Equal(t, n, tbl.Len())

	for i, s := range names {
		wi, found := tbl.Lookup(fakeHash(s), func(wi uint32) bool { return names[wi] == s })
		require.True(t, found, s)
		assert.Equal(t, uint32(i), wi)
	}
}

func TestTable_HashCollisionResolvedByEquality(t *testing.T) {
	tbl := New(4)
	const collidingHash = 42

	tbl.Insert(collidingHash, 0)
	tbl.Insert(collidingHash, 1)

	names := []string{"AC", "AF"}
	wi, found := tbl.Lookup(collidingHash, func(wi uint32) bool { return names[wi] == "AF" })
	require.True(t, found)
	assert.Equal(t, uint32(1), wi)
}

// fakeHash is a deterministic stand-in used only to exercise probing and
// overflow-chaining logic without depending on the real string hash.
func fakeHash(s string) uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}

	return h
}
