package seg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vale-bio/gnzip/ctx"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/internal/pool"
	"github.com/vale-bio/gnzip/piz"
)

type fakeGetter map[dictid.ID]*ctx.Context

func (g fakeGetter) Get(id dictid.ID, ltype format.LType) *ctx.Context {
	if c, ok := g[id]; ok {
		return c
	}
	c := ctx.New(id, ltype)
	g[id] = c

	return c
}

func (g fakeGetter) Context(id dictid.ID) (*ctx.Context, bool) {
	c, ok := g[id]
	return c, ok
}

func reconstructAll(t *testing.T, interp *piz.Interpreter, c *ctx.Context, n int) []string {
	t.Helper()
	c.LoadB250(c.B250Bytes())

	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		buf := &pool.ByteBuffer{}
		_, err := interp.ReconstructContext(buf, c)
		require.NoError(t, err)
		out = append(out, string(buf.Bytes()))
	}

	return out
}

func TestPosDelta_FirstAbsoluteThenDelta(t *testing.T) {
	c := ctx.New(dictid.Make("POS"), format.LTypeText)
	c.Flags.StoreValue = true

	PosDelta(c, 100)
	PosDelta(c, 103)
	PosDelta(c, 90)

	interp := &piz.Interpreter{}
	got := reconstructAll(t, interp, c, 3)
	assert.Equal(t, []string{"100", "103", "90"}, got)
}

func TestIDWithSuffix_SplitsPrefixAndDigits(t *testing.T) {
	idCtx := ctx.New(dictid.Make("ID"), format.LTypeText)

	IDWithSuffix(idCtx, []byte("rs1282280967"))
	IDWithSuffix(idCtx, []byte("rs42"))

	interp := &piz.Interpreter{}
	got := reconstructAll(t, interp, idCtx, 2)
	assert.Equal(t, []string{"rs1282280967", "rs42"}, got)
}

func TestSequenceColumn_RoundTrip(t *testing.T) {
	c := ctx.New(dictid.Make("SEQ"), format.LTypeSequence)

	SequenceColumn(c, []byte("ACGTACGT"))
	SequenceColumn(c, []byte("TTTT"))

	interp := &piz.Interpreter{}
	got := reconstructAll(t, interp, c, 2)
	assert.Equal(t, []string{"ACGTACGT", "TTTT"}, got)
}

func TestInfoLike_StructuredRoundTrip(t *testing.T) {
	get := fakeGetter{}
	outer := ctx.New(dictid.Make("oINFO"), format.LTypeText)

	InfoLike(get, outer, []KV{
		{Key: "AC", Value: []byte("2"), Numeric: true},
		{Key: "DP", Value: []byte("35"), Numeric: true},
	})

	for _, sub := range get {
		sub.LoadB250(sub.B250Bytes())
	}

	interp := &piz.Interpreter{Resolver: get}
	got := reconstructAll(t, interp, outer, 1)
	assert.Equal(t, "AC=2;DP=35", got[0])
}

func TestInfoLike_EmptyPairs(t *testing.T) {
	get := fakeGetter{}
	outer := ctx.New(dictid.Make("oINFO"), format.LTypeText)

	InfoLike(get, outer, nil)

	interp := &piz.Interpreter{Resolver: get}
	got := reconstructAll(t, interp, outer, 1)
	assert.Equal(t, "", got[0])
}
