package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/internal/pool"
	"github.com/vale-bio/gnzip/piz"
	"github.com/vale-bio/gnzip/section"
	"github.com/vale-bio/gnzip/vblock"
)

func TestFile_MergeVBlockPreservesRoundTrip(t *testing.T) {
	f := New(section.DataTypeVCF)
	id := dictid.Make("CHROM")

	// Seed the global dictionary with an entry from a fake earlier vblock so
	// the second vblock's merge must actually remap, not just append.
	seed := vblock.New(1)
	seed.Get(id, format.LTypeText).EvaluateAndEncode([]byte("chrX"))
	f.MergeVBlock(seed)

	vb := vblock.New(2)
	c := vb.Get(id, format.LTypeText)
	c.EvaluateAndEncode([]byte("chr1"))
	c.EvaluateAndEncode([]byte("chrX"))

	f.MergeVBlock(vb)

	global, ok := f.Context(id)
	require.True(t, ok)

	global.LoadB250(vb.Contexts[id].B250Bytes())

	interp := &piz.Interpreter{Resolver: f}
	buf1 := &pool.ByteBuffer{}
	_, err := interp.ReconstructContext(buf1, global)
	require.NoError(t, err)
	assert.Equal(t, "chr1", string(buf1.Bytes()))

	buf2 := &pool.ByteBuffer{}
	_, err = interp.ReconstructContext(buf2, global)
	require.NoError(t, err)
	assert.Equal(t, "chrX", string(buf2.Bytes()))
}
