// Package ctx implements the per-column dictionary context (spec
// components C3, C4, C10): an append-only string dictionary keyed by
// stable word indices, the open-addressed hash table that resolves a
// string to its word_index, the b250 node-index stream, the local
// residual stream, and the merge step that promotes a vblock's tentative
// dictionary into the file-global one.
package ctx

import (
	"bytes"
	"fmt"

	"github.com/vale-bio/gnzip/b250"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/internal/hash"
	"github.com/vale-bio/gnzip/internal/nodetable"
	"github.com/vale-bio/gnzip/internal/pool"
)

// Node is one dictionary entry: the byte range of its string within the
// context's dict arena, and its stable word_index.
type Node struct {
	Offset    uint32
	Length    uint32
	WordIndex uint32
}

// Flags controls a context's segmentation behavior.
type Flags struct {
	// StoreValue keeps a numeric rendering of the context's last value
	// available for SELF_DELTA/OTHER_DELTA decoding by other contexts.
	StoreValue bool
	// NoStons ("no singletons") is carried on the context, but no code in
	// this module reads it: setting it does not change where a value seen
	// exactly once is stored.
	NoStons bool
	// OneUpAllowed permits the b250 ONE_UP shortcut: PutB250 emits ONE_UP
	// in place of a word index exactly one above the previous one. No
	// segmenter in this module sets it, so contexts built by the data types
	// never emit ONE_UP.
	OneUpAllowed bool
}

// Context owns one column's dictionary, hash table, b250 stream and local
// stream, plus the cursors used while decoding.
type Context struct {
	DictID dictid.ID
	DidI   int

	LType format.LType
	Flags Flags

	dict    []byte
	nodes   []Node
	table   *nodetable.Table
	freq    []uint32
	b250Enc *b250.Encoder
	b250Buf *pool.ByteBuffer
	local   *LocalStream

	lastWordIndex uint32
	hasLast       bool

	nextB250  *b250.Decoder
	lastValue int64
	lastDelta int64
	lastLineI int
}

const dictSeparator = 0x00

// New creates an empty context for dictID with the given local-stream
// shape.
func New(dictID dictid.ID, ltype format.LType) *Context {
	buf := &pool.ByteBuffer{}

	return &Context{
		DictID:  dictID,
		LType:   ltype,
		table:   nodetable.New(64),
		b250Buf: buf,
		b250Enc: b250.NewEncoder(buf),
		local:   newLocalStream(),
	}
}

// nodeBytes returns the dictionary string backing wordIndex.
func (c *Context) nodeBytes(wordIndex uint32) []byte {
	n := c.nodes[wordIndex]
	return c.dict[n.Offset : n.Offset+n.Length]
}

// Evaluate looks up s in the dictionary, appending a new node if it has
// not been seen before. It does not touch the b250 stream.
func (c *Context) Evaluate(s []byte) (wordIndex uint32, isNew bool) {
	h := hash.String(s)

	if wi, found := c.table.Lookup(h, func(wi uint32) bool {
		return bytes.Equal(c.nodeBytes(wi), s)
	}); found {
		return wi, false
	}

	offset := uint32(len(c.dict))
	c.dict = append(c.dict, s...)
	c.dict = append(c.dict, dictSeparator)

	wi := uint32(len(c.nodes))
	c.nodes = append(c.nodes, Node{Offset: offset, Length: uint32(len(s)), WordIndex: wi})
	c.freq = append(c.freq, 0)
	c.table.Insert(h, wi)

	return wi, true
}

// PutB250 writes wordIndex to the b250 stream, substituting the ONE_UP
// sentinel when permitted and applicable.
func (c *Context) PutB250(wordIndex uint32) {
	if wordIndex < uint32(len(c.freq)) {
		c.freq[wordIndex]++
	}

	if c.Flags.OneUpAllowed && c.hasLast && wordIndex == c.lastWordIndex+1 {
		c.b250Enc.Put(b250.OneUp)
	} else {
		c.b250Enc.Put(wordIndex)
	}

	c.lastWordIndex = wordIndex
	c.hasLast = true
}

// PutEmptySF records that this line's subfield is present but empty.
func (c *Context) PutEmptySF() { c.b250Enc.Put(b250.EmptySF) }

// PutMissingSF records that this line's subfield is entirely absent.
func (c *Context) PutMissingSF() { c.b250Enc.Put(b250.MissingSF) }

// EvaluateAndEncode is the common segmenter path: resolve s to a word
// index and immediately encode it to the b250 stream.
func (c *Context) EvaluateAndEncode(s []byte) (wordIndex uint32, isNew bool) {
	wordIndex, isNew = c.Evaluate(s)
	c.PutB250(wordIndex)

	return wordIndex, isNew
}

// B250Bytes returns the accumulated (encode side) or loaded (decode side)
// b250 stream.
func (c *Context) B250Bytes() []byte { return c.b250Enc.Bytes() }

// LoadB250 prepares c for decoding a previously written b250 stream.
func (c *Context) LoadB250(data []byte) {
	c.nextB250 = b250.NewDecoder(data)
}

// TakeB250 decodes the next word_index, resolving ONE_UP against the
// context's decode-side cursor. EmptySF/MissingSF are returned as-is; the
// caller distinguishes them with IsEmptySF/IsMissingSF.
func (c *Context) TakeB250() (uint32, error) {
	if c.nextB250 == nil {
		return 0, fmt.Errorf("%w: ctx %s: b250 stream not loaded", errs.ErrIntegrity, c.DictID)
	}

	raw, err := c.nextB250.Take()
	if err != nil {
		return 0, err
	}

	switch raw {
	case b250.EmptySF, b250.MissingSF:
		return raw, nil
	case b250.OneUp:
		if !c.hasLast {
			return 0, fmt.Errorf("%w: ctx %s: ONE_UP with no prior word_index", errs.ErrIntegrity, c.DictID)
		}
		wi := c.lastWordIndex + 1
		c.lastWordIndex = wi
		c.hasLast = true

		return wi, nil
	default:
		c.lastWordIndex = raw
		c.hasLast = true

		return raw, nil
	}
}

// SetRewrittenB250 replaces the accumulated b250 stream outright, used by
// the merge step (C10) to install a vblock's word indices translated into
// the file-global dictionary's numbering after the vblock's tentative
// dictionary is promoted.
func (c *Context) SetRewrittenB250(data []byte) {
	c.b250Buf.Reset()
	c.b250Buf.MustWrite(data)
}

// B250Done reports whether every value written to the b250 stream loaded
// by LoadB250 has been consumed by TakeB250, used by the merge step to
// know when to stop rewriting a vblock's word indices.
func (c *Context) B250Done() bool {
	return c.nextB250 == nil || c.nextB250.Done()
}

// IsEmptySF reports whether a value taken from TakeB250 is the EMPTY_SF
// sentinel.
func IsEmptySF(wordIndex uint32) bool { return wordIndex == b250.EmptySF }

// IsMissingSF reports whether a value taken from TakeB250 is the
// MISSING_SF sentinel.
func IsMissingSF(wordIndex uint32) bool { return wordIndex == b250.MissingSF }

// Lookup returns the dictionary string for wordIndex, as used during
// reconstruction.
func (c *Context) Lookup(wordIndex uint32) ([]byte, error) {
	if wordIndex >= uint32(len(c.nodes)) {
		return nil, fmt.Errorf("%w: ctx %s: word_index %d out of range (dict has %d entries)", errs.ErrIntegrity, c.DictID, wordIndex, len(c.nodes))
	}

	return c.nodeBytes(wordIndex), nil
}

// NodeCount returns the number of entries in the dictionary.
func (c *Context) NodeCount() int { return len(c.nodes) }

// LastValue, SetLastValue, LastDelta, SetLastDelta, LastLineI and
// SetLastLineI expose the decode-side cursors used by SELF_DELTA,
// OTHER_DELTA and STRUCTURED interpretation.
func (c *Context) LastValue() int64      { return c.lastValue }
func (c *Context) SetLastValue(v int64)  { c.lastValue = v }
func (c *Context) LastDelta() int64      { return c.lastDelta }
func (c *Context) SetLastDelta(v int64)  { c.lastDelta = v }
func (c *Context) LastLineI() int        { return c.lastLineI }
func (c *Context) SetLastLineI(i int)    { c.lastLineI = i }

// DictBytes returns the raw concatenated dictionary, serialized as a DICT
// section at file close.
func (c *Context) DictBytes() []byte { return c.dict }

// LoadDict rebuilds the node table from a dictionary byte slice previously
// written by DictBytes, used on the decode side where entries are only
// ever looked up by word_index and the hash table used for encode-side
// Evaluate is unnecessary.
func (c *Context) LoadDict(data []byte) {
	c.dict = data
	c.nodes = c.nodes[:0]

	start := uint32(0)
	for i, b := range data {
		if b == dictSeparator {
			end := uint32(i) //nolint:gosec
			c.nodes = append(c.nodes, Node{Offset: start, Length: end - start, WordIndex: uint32(len(c.nodes))})
			start = end + 1
		}
	}
}

// Local returns the context's local residual stream.
func (c *Context) Local() *LocalStream { return c.local }
