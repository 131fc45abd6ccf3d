package piz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vale-bio/gnzip/ctx"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/internal/pool"
)

type mapResolver map[dictid.ID]*ctx.Context

func (m mapResolver) Context(id dictid.ID) (*ctx.Context, bool) {
	c, ok := m[id]
	return c, ok
}

func TestReconstruct_LiteralAndSelfDelta(t *testing.T) {
	pos := ctx.New(dictid.Make("POS"), format.LTypeText)
	pos.Flags.StoreValue = true

	wi0, _ := pos.Evaluate([]byte("100"))
	pos.PutB250(wi0)

	deltaSnip := append([]byte{byte(OpSelfDelta)}, []byte("3")...)
	wi1, _ := pos.Evaluate(deltaSnip)
	pos.PutB250(wi1)

	pos.LoadB250(pos.B250Bytes())

	interp := &Interpreter{Resolver: mapResolver{}}
	out := &pool.ByteBuffer{}

	present, err := interp.ReconstructContext(out, pos)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "100", string(out.Bytes()))

	present, err = interp.ReconstructContext(out, pos)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "100103", string(out.Bytes()))
}

func TestReconstruct_MissingAndEmptySubfields(t *testing.T) {
	c := ctx.New(dictid.Make("GT"), format.LTypeText)
	c.PutMissingSF()
	c.PutEmptySF()
	c.LoadB250(c.B250Bytes())

	interp := &Interpreter{}
	out := &pool.ByteBuffer{}

	present, err := interp.ReconstructContext(out, c)
	require.NoError(t, err)
	assert.False(t, present)

	present, err = interp.ReconstructContext(out, c)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "", string(out.Bytes()))
}

func TestReconstruct_StructuredTemplate(t *testing.T) {
	a := ctx.New(dictid.Make("A1"), format.LTypeText)
	b := ctx.New(dictid.Make("A2"), format.LTypeText)

	wa, _ := a.Evaluate([]byte("chr1"))
	a.PutB250(wa)
	a.LoadB250(a.B250Bytes())

	wb, _ := b.Evaluate([]byte("100"))
	b.PutB250(wb)
	b.LoadB250(b.B250Bytes())

	outerWrap := ctx.New(dictid.Make("ID"), format.LTypeText)
	st := Structured{
		Repeats: 1,
		Items: []StructuredItem{
			{DictID: a.DictID},
			{DictID: b.DictID, Sep: [2]byte{':', 0}},
		},
	}
	snip := append([]byte{byte(OpStructured)}, st.EncodeBase64()...)
	wi, _ := outerWrap.Evaluate(snip)
	outerWrap.PutB250(wi)
	outerWrap.LoadB250(outerWrap.B250Bytes())

	resolver := mapResolver{a.DictID: a, b.DictID: b}
	interp := &Interpreter{Resolver: resolver}
	out := &pool.ByteBuffer{}

	present, err := interp.ReconstructContext(out, outerWrap)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "chr1:100", string(out.Bytes()))
}

func TestReconstruct_LookupLocalInt(t *testing.T) {
	dp := ctx.New(dictid.Make("DP"), format.LTypeInt32)
	require.NoError(t, dp.AppendLocalInt(42))

	snip := append([]byte{byte(OpLookup)}, []byte("DP=")...)
	wi, _ := dp.Evaluate(snip)
	dp.PutB250(wi)

	dp.LoadB250(dp.B250Bytes())

	interp := &Interpreter{}
	out := &pool.ByteBuffer{}

	present, err := interp.ReconstructContext(out, dp)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "DP=42", string(out.Bytes()))
}

func TestReconstruct_SpecialDispatch(t *testing.T) {
	c := ctx.New(dictid.Make("X"), format.LTypeText)
	snip := []byte{byte(OpSpecial), 7, 'h', 'i'}
	wi, _ := c.Evaluate(snip)
	c.PutB250(wi)
	c.LoadB250(c.B250Bytes())

	called := false
	interp := &Interpreter{Specials: map[int]SpecialHandler{
		7: func(_ *Interpreter, _ *ctx.Context, payload []byte, out *pool.ByteBuffer) error {
			called = true
			out.MustWrite(payload)
			return nil
		},
	}}
	out := &pool.ByteBuffer{}

	_, err := interp.ReconstructContext(out, c)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "hi", string(out.Bytes()))
}
