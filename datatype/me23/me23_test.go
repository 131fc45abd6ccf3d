package me23

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

func TestME23_RoundTrip(t *testing.T) {
	mt := New()
	get := fakeGetter{}

	lines := [][]byte{
		[]byte("rs4477212\t1\t82154\tAA"),
		[]byte("rs3131972\t1\t752721\tAG"),
	}

	for _, l := range lines {
		require.NoError(t, mt.SegLine(get, l, true))
	}
	get.loadAll()

	interp := &piz.Interpreter{Resolver: get}
	for _, want := range lines {
		out := &pool.ByteBuffer{}
		require.NoError(t, mt.Reconstruct(get, interp, out))
		assert.Equal(t, string(want), string(out.Bytes()))
	}
}
