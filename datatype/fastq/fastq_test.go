package fastq

import (
	"bytes"
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

func (g fakeGetter) loadAll() {
	for _, c := range g {
		c.LoadB250(c.B250Bytes())
	}
}

func TestFASTQ_RoundTrip(t *testing.T) {
	ft := New()
	get := fakeGetter{}

	record := bytes.Join([][]byte{
		[]byte("@read1/1"),
		[]byte("ACGTACGTAC"),
		[]byte("+"),
		[]byte("IIIIIIIIII"),
	}, []byte{'\n'})

	require.NoError(t, ft.SegLine(get, record, true))
	get.loadAll()

	interp := &piz.Interpreter{Resolver: get}
	out := &pool.ByteBuffer{}
	require.NoError(t, ft.Reconstruct(get, interp, out))
	assert.Equal(t, string(record), string(out.Bytes()))
}
