// Package vblock implements the variant block: the unit of parallel work
// a worker goroutine owns end to end, from raw text lines in through
// encoded contexts out (encode side), or from loaded contexts in through
// reconstructed text out (decode side).
//
// A VBlock's Contexts map starts empty on the encode side (every context a
// line touches is created tentatively, local to this vblock) and is
// populated from the file-global dictionary on the decode side before
// PIZ can walk it. A vblock owns a tentative dictionary that gets merged
// into the global one at vblock close, realized here with plain
// *ctx.Context values rather than a separate overlay type: ctx.Context.Merge
// already treats any Context as a mergeable tentative dictionary, so a
// distinct Overlay type would just duplicate that shape.
package vblock

import (
	"fmt"
	"sort"

	"github.com/vale-bio/gnzip/ctx"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/index"
)

// LineInfo records where one input line's bytes sit within TxtData, and
// whether its original terminator carried a \r.
type LineInfo struct {
	Offset int
	Length int
	HasCR  bool
}

// VBlock is one batch of consecutive lines, processed by exactly one
// worker goroutine at a time.
type VBlock struct {
	VBlockI  uint32
	TxtData  []byte
	Lines    []LineInfo
	Contexts map[dictid.ID]*ctx.Context

	// order records the sequence contexts were first touched in, so merge
	// and serialization can walk them deterministically instead of relying
	// on Go's randomized map iteration.
	order []dictid.ID

	// ranges accumulates, per chromosome/contig word index, the span of
	// position values this vblock's lines touch (seg.RecordRange), fed
	// into the file-global random-access index once the vblock merges.
	ranges map[uint32]*posRange
}

// posRange tracks the smallest and largest position value seen so far for
// one chromosome within a vblock.
type posRange struct {
	min, max int64
}

// New creates an empty vblock numbered i.
func New(i uint32) *VBlock {
	return &VBlock{
		VBlockI:  i,
		Contexts: make(map[dictid.ID]*ctx.Context),
	}
}

// AddLine appends one line's bytes to TxtData and records its framing.
func (vb *VBlock) AddLine(line []byte, hasCR bool) []byte {
	offset := len(vb.TxtData)
	vb.TxtData = append(vb.TxtData, line...)

	vb.Lines = append(vb.Lines, LineInfo{Offset: offset, Length: len(line), HasCR: hasCR})

	return vb.TxtData[offset : offset+len(line)]
}

// Get implements seg.Getter: it lazily creates a tentative context local
// to this vblock the first time id is touched.
func (vb *VBlock) Get(id dictid.ID, ltype format.LType) *ctx.Context {
	if c, ok := vb.Contexts[id]; ok {
		return c
	}

	c := ctx.New(id, ltype)
	vb.Contexts[id] = c
	vb.order = append(vb.order, id)

	return c
}

// Context implements piz.ContextResolver: a decode-side lookup into
// contexts this vblock already holds (populated by the caller from the
// file-global dictionary plus this vblock's own loaded b250/local
// streams before reconstruction starts).
func (vb *VBlock) Context(id dictid.ID) (*ctx.Context, bool) {
	c, ok := vb.Contexts[id]
	return c, ok
}

// Put installs c as the context for id, used on the decode side to seed
// this vblock with the file-global dictionary before PIZ runs.
func (vb *VBlock) Put(id dictid.ID, c *ctx.Context) {
	if _, exists := vb.Contexts[id]; !exists {
		vb.order = append(vb.order, id)
	}
	vb.Contexts[id] = c
}

// OrderedIDs returns the dict_ids this vblock touched, in first-touch
// order, so a caller merging or serializing contexts gets a deterministic
// walk instead of Go's randomized map iteration.
func (vb *VBlock) OrderedIDs() []dictid.ID {
	return vb.order
}

// Line returns the bytes and CRLF flag for line i.
func (vb *VBlock) Line(i int) ([]byte, bool, error) {
	if i < 0 || i >= len(vb.Lines) {
		return nil, false, fmt.Errorf("%w: vblock %d: line %d out of range (%d lines)", errs.ErrIntegrity, vb.VBlockI, i, len(vb.Lines))
	}

	li := vb.Lines[i]

	return vb.TxtData[li.Offset : li.Offset+li.Length], li.HasCR, nil
}

// LineCount returns the number of lines this vblock holds.
func (vb *VBlock) LineCount() int { return len(vb.Lines) }

// RecordPos implements seg.RangeRecorder: it widens the observed position
// range for chromWordIndex to include pos.
func (vb *VBlock) RecordPos(chromWordIndex uint32, pos int64) {
	if vb.ranges == nil {
		vb.ranges = make(map[uint32]*posRange)
	}

	r, ok := vb.ranges[chromWordIndex]
	if !ok {
		vb.ranges[chromWordIndex] = &posRange{min: pos, max: pos}

		return
	}

	if pos < r.min {
		r.min = pos
	}
	if pos > r.max {
		r.max = pos
	}
}

// RemapRangeKeys translates vb.ranges' keys (chromosome word indices,
// tentative to this vblock) through remap, the local-to-global word_index
// translation file.MergeVBlock computes for the CHROM dict_id. Called once,
// right after that dict_id's merge, so RandomAccessEntries always reports
// final global word indices.
func (vb *VBlock) RemapRangeKeys(remap []uint32) {
	if len(vb.ranges) == 0 {
		return
	}

	remapped := make(map[uint32]*posRange, len(vb.ranges))
	for wi, r := range vb.ranges {
		newWI := wi
		if int(wi) < len(remap) {
			newWI = remap[wi]
		}
		remapped[newWI] = r
	}
	vb.ranges = remapped
}

// RandomAccessEntries returns one index.Entry per chromosome this vblock
// touched, in ascending chrom-word-index order so encode output (and the
// index section it feeds) stays deterministic across runs.
func (vb *VBlock) RandomAccessEntries() []index.Entry {
	if len(vb.ranges) == 0 {
		return nil
	}

	chromWIs := make([]uint32, 0, len(vb.ranges))
	for wi := range vb.ranges {
		chromWIs = append(chromWIs, wi)
	}
	sort.Slice(chromWIs, func(i, j int) bool { return chromWIs[i] < chromWIs[j] })

	entries := make([]index.Entry, 0, len(chromWIs))
	for _, wi := range chromWIs {
		r := vb.ranges[wi]
		entries = append(entries, index.Entry{
			VBlockI:        vb.VBlockI,
			ChromNodeIndex: wi,
			StartPos:       r.min,
			EndPos:         r.max,
		})
	}

	return entries
}
