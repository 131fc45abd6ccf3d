package vcf

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

func (g fakeGetter) loadAll() {
	for _, c := range g {
		c.LoadB250(c.B250Bytes())
	}
}

func TestVCF_SiteOnlyRoundTrip(t *testing.T) {
	vt := New(nil)
	get := fakeGetter{}

	lines := [][]byte{
		[]byte("1\t100\trs1\tA\tG\t50\tPASS\tAC=2;DP=35"),
		[]byte("1\t103\t.\tC\tT\t30\tPASS\tDP=20"),
	}

	for _, l := range lines {
		require.NoError(t, vt.SegLine(get, l, true))
	}
	get.loadAll()

	interp := &piz.Interpreter{Resolver: get}
	for _, want := range lines {
		out := &pool.ByteBuffer{}
		require.NoError(t, vt.Reconstruct(get, interp, out))
		assert.Equal(t, string(want), string(out.Bytes()))
	}
}

func TestVCF_WithSamplesRoundTrip(t *testing.T) {
	vt := New([]string{"SAMPLE1", "SAMPLE2"})
	get := fakeGetter{}

	line := []byte("1\t100\trs1\tA\tG\t50\tPASS\tDP=35\tGT:DP\t0/1:10\t1/1:12")

	require.NoError(t, vt.SegLine(get, line, true))
	get.loadAll()

	interp := &piz.Interpreter{Resolver: get}
	out := &pool.ByteBuffer{}
	require.NoError(t, vt.Reconstruct(get, interp, out))
	assert.Equal(t, string(line), string(out.Bytes()))
}

func TestVCF_InfoEndRoundTrips(t *testing.T) {
	vt := New(nil)
	get := fakeGetter{}

	line := []byte("1\t12000\t.\tN\t<DEL>\t.\tPASS\tEND=12345")
	require.NoError(t, vt.SegLine(get, line, true))
	get.loadAll()

	interp := &piz.Interpreter{Resolver: get}
	out := &pool.ByteBuffer{}
	require.NoError(t, vt.Reconstruct(get, interp, out))
	assert.Equal(t, string(line), string(out.Bytes()))
}
