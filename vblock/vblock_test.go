package vblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/format"
)

func TestVBlock_AddLineRecordsFraming(t *testing.T) {
	vb := New(1)

	vb.AddLine([]byte("chr1\t100"), true)
	vb.AddLine([]byte("chr1\t200"), false)

	require.Equal(t, 2, vb.LineCount())

	l0, cr0, err := vb.Line(0)
	require.NoError(t, err)
	assert.Equal(t, "chr1\t100", string(l0))
	assert.True(t, cr0)

	l1, cr1, err := vb.Line(1)
	require.NoError(t, err)
	assert.Equal(t, "chr1\t200", string(l1))
	assert.False(t, cr1)
}

func TestVBlock_GetIsLazyAndStable(t *testing.T) {
	vb := New(1)

	id := dictid.Make("POS")
	a := vb.Get(id, format.LTypeText)
	b := vb.Get(id, format.LTypeText)

	assert.Same(t, a, b)
	assert.Equal(t, []dictid.ID{id}, vb.OrderedIDs())
}

func TestVBlock_LineOutOfRange(t *testing.T) {
	vb := New(1)
	_, _, err := vb.Line(0)
	require.Error(t, err)
}
