// Package file implements the process-wide file-global state (spec
// components C10, C12, C13): the merged dictionary contexts every vblock
// promotes into, the per-dict_id locks that make that promotion safe from
// multiple workers at once, the section list, the random-access index and
// the rolling whole-file MD5.
package file

import (
	"crypto/md5" //nolint:gosec
	"hash"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vale-bio/gnzip/b250"
	"github.com/vale-bio/gnzip/ctx"
	"github.com/vale-bio/gnzip/datatype"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/index"
	"github.com/vale-bio/gnzip/section"
	"github.com/vale-bio/gnzip/vblock"
)

// File owns every piece of state shared across vblocks: the merged
// dictionary, the section list, the random-access index, and the rolling
// whole-file MD5. The section list grows only through AddSection, which
// nothing in this module calls; the container records its sections in its
// own TOC.
type File struct {
	DataType section.DataType

	mu       sync.Mutex
	contexts map[dictid.ID]*ctx.Context
	sorted   map[dictid.ID]bool
	locks    map[dictid.ID]*sync.Mutex

	Sections     []section.Header
	RandomAccess *index.Index
	Alias        *section.AliasTable

	sum          hash.Hash
	vblockSeq    uint32
	lineCount    uint64
	plaintextLen uint64
}

// New creates an empty file-global state for dataType.
func New(dataType section.DataType) *File {
	return &File{
		DataType:     dataType,
		contexts:     make(map[dictid.ID]*ctx.Context),
		sorted:       make(map[dictid.ID]bool),
		locks:        make(map[dictid.ID]*sync.Mutex),
		RandomAccess: index.New(),
		Alias:        section.NewAliasTable(),
		sum:          md5.New(), //nolint:gosec
	}
}

// NextVBlockI atomically allocates the next vblock number, starting at 1
// (vblock 0 is reserved for the file-global pseudo-vblock).
func (f *File) NextVBlockI() uint32 {
	return atomic.AddUint32(&f.vblockSeq, 1)
}

func (f *File) lockFor(id dictid.ID) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()

	mu, ok := f.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		f.locks[id] = mu
	}

	return mu
}

func (f *File) globalContext(id dictid.ID, ltype format.LType) *ctx.Context {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.contexts[id]
	if !ok {
		c = ctx.New(id, ltype)
		f.contexts[id] = c
	}

	return c
}

// MergeVBlock promotes every context vb touched into the file-global
// dictionary (C10), rewriting vb's own b250 streams in place wherever the
// merge changed a word_index, and records the total line count toward the
// rolling file line count. The first vblock to merge a given dict_id
// triggers a one-time frequency sort on that context, folded into the
// same remap pass. Once the CHROM dict_id's own merge settles its final
// word indices, vb's recorded position ranges are remapped to match and
// drained into the file-global random-access index.
func (f *File) MergeVBlock(vb *vblock.VBlock) {
	for _, id := range vb.OrderedIDs() {
		local := vb.Contexts[id]

		mu := f.lockFor(id)
		mu.Lock()

		global := f.globalContext(id, local.LType)
		remap := global.Merge(local)

		f.mu.Lock()
		firstMerge := !f.sorted[id]
		f.sorted[id] = true
		f.mu.Unlock()

		if firstMerge {
			freqRemap := global.SortByFrequency()
			for i, wi := range remap {
				remap[i] = freqRemap[wi]
			}
		}

		rewriteB250(local, remap)

		if id == datatype.CHROMDictID {
			vb.RemapRangeKeys(remap)
		}

		mu.Unlock()
	}

	f.mu.Lock()
	f.lineCount += uint64(vb.LineCount())
	f.plaintextLen += uint64(len(vb.TxtData))
	f.mu.Unlock()

	for _, e := range vb.RandomAccessEntries() {
		f.RandomAccess.Add(e)
	}
}

// rewriteB250 decodes local's current b250 stream (resolving ONE_UP
// against local's own cursor) and re-encodes it with every word_index
// translated through remap. EMPTY_SF/MISSING_SF sentinels pass through
// unchanged. The ONE_UP shortcut is not re-derived on the rewritten
// stream: always emitting the explicit form is a few bytes larger per run
// of consecutive indices but keeps this rewrite a straight one-pass
// translation instead of needing to replay local's original encode-time
// decisions.
func rewriteB250(local *ctx.Context, remap []uint32) {
	local.LoadB250(local.B250Bytes())

	var rewritten []byte
	for !local.B250Done() {
		wi, err := local.TakeB250()
		if err != nil {
			break
		}

		switch {
		case ctx.IsEmptySF(wi), ctx.IsMissingSF(wi):
			rewritten = b250.EncodeValue(rewritten, wi)
		default:
			if int(wi) < len(remap) {
				wi = remap[wi]
			}
			rewritten = b250.EncodeValue(rewritten, wi)
		}
	}

	local.SetRewrittenB250(rewritten)
}

// AddSection appends one section header to the file's running list, in
// the order sections are written.
func (f *File) AddSection(h section.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Sections = append(f.Sections, h)
}

// WriteMD5 folds data into the rolling whole-file MD5, which must be fed
// in exactly the order the original text was read: container.Encode feeds
// it through io.TeeReader from dispatch's single reader goroutine, the
// only caller, so no lock is needed here.
func (f *File) WriteMD5(data []byte) {
	f.sum.Write(data) //nolint:errcheck
}

// Write implements io.Writer over WriteMD5, letting Encode fold the
// original input through io.TeeReader(r, f) as it is read, without the
// dispatcher or any datatype.Type ever needing to know MD5 is being
// computed.
func (f *File) Write(p []byte) (int, error) {
	f.WriteMD5(p)

	return len(p), nil
}

// GenozipHeader builds the container trailer summarizing this file's
// totals, stamped with createdAt.
func (f *File) GenozipHeader(createdAt time.Time) *section.GenozipHeader {
	h := section.NewGenozipHeader(f.DataType, createdAt)
	h.ComponentCount = 1
	h.LineCount = f.lineCount
	h.PlaintextSize = f.plaintextLen
	copy(h.WholeMD5[:], f.sum.Sum(nil))

	return h
}

// SortedDictIDs returns every dict_id the file has a global context for,
// in a stable (lexicographic by String()) order, used when writing DICT
// sections at file close so the output is deterministic regardless of
// which worker merged which context first.
func (f *File) SortedDictIDs() []dictid.ID {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]dictid.ID, 0, len(f.contexts))
	for id := range f.contexts {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	return ids
}

// SeedContext creates (or reuses) the file-global context for id and loads
// dictBytes into it, used while rebuilding file-global state from a
// container's DICT sections on decode.
func (f *File) SeedContext(id dictid.ID, ltype format.LType, dictBytes []byte) *ctx.Context {
	c := f.globalContext(id, ltype)
	c.LoadDict(dictBytes)

	return c
}

// Context returns the file-global context for id, used to seed a decode
// vblock before PIZ reconstruction.
func (f *File) Context(id dictid.ID) (*ctx.Context, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.contexts[id]

	return c, ok
}
