// Package seg implements the universal segmenter helpers shared by every
// data type's vtable: the column shapes that show up
// in more than one bioinformatics text format (a chromosome-like column,
// a delta-friendly position column, identifiers with a numeric suffix,
// INFO-like key=value lists, compound structured fields, and raw
// sequence/quality columns).
//
// A data type's Seg function drives these helpers per line; the
// format-specific field order and record framing lives in the datatype
// package, not here.
package seg

import (
	"strconv"

	"github.com/vale-bio/gnzip/ctx"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/piz"
)

// Getter lazily creates or returns the context for id, sized for ltype.
// A vblock's tentative context map implements this on the encode side.
type Getter interface {
	Get(id dictid.ID, ltype format.LType) *ctx.Context
}

// RangeRecorder is implemented by a vblock's Getter to track, per
// chromosome/contig word index, the span of position values a vblock's
// lines touch. A format with no chromosome-like column never calls
// RecordRange, so implementing this is optional.
type RangeRecorder interface {
	RecordPos(chromWordIndex uint32, pos int64)
}

// RecordRange feeds one line's (chromosome, position) pair toward the
// random-access index if get implements RangeRecorder. Safe to call for
// every data type: formats with no position column simply never call it.
func RecordRange(get Getter, chromWordIndex uint32, pos int64) {
	if rr, ok := get.(RangeRecorder); ok {
		rr.RecordPos(chromWordIndex, pos)
	}
}

// largeDeltaThreshold is the magnitude past which PosDelta falls back to
// an absolute literal instead of an ascii SELF_DELTA snip, since a huge
// delta's decimal rendering would cost more bytes than the absolute value
// plus a fresh dictionary entry.
const largeDeltaThreshold = 1 << 24

// Chrom evaluates and encodes a chromosome-like column value, which uses
// no special transform: a plain dictionary lookup, because the same
// handful of chromosome names repeat across the whole file.
func Chrom(c *ctx.Context, tok []byte) uint32 {
	wi, _ := c.EvaluateAndEncode(tok)
	return wi
}

// PosDelta segments a position-like integer column. The first value seen
// in a context (LastLineI == 0) is stored absolute; later values are
// stored as the ascii decimal delta against the previous value, wrapped
// in a SELF_DELTA snip, unless the delta is implausibly large.
func PosDelta(c *ctx.Context, pos int64) {
	first := c.LastLineI() == 0
	delta := pos - c.LastValue()

	var snip []byte
	if first || delta > largeDeltaThreshold || delta < -largeDeltaThreshold {
		snip = []byte(strconv.FormatInt(pos, 10))
	} else {
		snip = append([]byte{byte(piz.OpSelfDelta)}, []byte(strconv.FormatInt(delta, 10))...)
	}

	wi, _ := c.Evaluate(snip)
	c.PutB250(wi)
	c.SetLastValue(pos)
	c.SetLastLineI(c.LastLineI() + 1)
}

// IDWithSuffix segments an identifier with a trailing numeric suffix (e.g.
// "rs1282280967") into a literal prefix and a numeric suffix, the suffix
// routed to c's own local text stream and referenced via a LOOKUP snip
// whose tail is the literal prefix.
//
// A row's own \r/\n framing is not this function's concern: every
// vblock's VB_HEADER carries one per-line CRLF bit (see
// container.encodeVBHeader), so a CRLF file with one row missing its
// trailing \r already round-trips exactly via that bitmap rather than
// anything recorded per-column here.
func IDWithSuffix(c *ctx.Context, tok []byte) {
	split := len(tok)
	for split > 0 && tok[split-1] >= '0' && tok[split-1] <= '9' {
		split--
	}

	if split == len(tok) {
		// No numeric suffix at all: plain literal.
		c.EvaluateAndEncode(tok)

		return
	}

	prefix := tok[:split]
	digits := tok[split:]

	c.AppendLocalText(digits)

	snip := append([]byte{byte(piz.OpLookup)}, prefix...)

	wi, _ := c.Evaluate(snip)
	c.PutB250(wi)
}

// EOL records, as a one-byte dictionary entry, whether this line's
// original terminator carried a \r (Windows CRLF) or not, so the original
// line ending can be restored bit-exactly.
func EOL(c *ctx.Context, hasCR bool) {
	v := []byte("0")
	if hasCR {
		v = []byte("1")
	}

	c.EvaluateAndEncode(v)
}

// SequenceColumn appends raw sequence or quality bytes to c's local
// stream and records a LOOKUP snip whose payload is the ascii byte count,
// so the interpreter knows how many bytes to pull back out.
func SequenceColumn(c *ctx.Context, s []byte) {
	c.AppendLocalSeq(s)

	snip := append([]byte{byte(piz.OpLookup)}, []byte(strconv.Itoa(len(s)))...)
	wi, _ := c.Evaluate(snip)
	c.PutB250(wi)
}

// KV is one key=value pair of an INFO-like attribute list.
type KV struct {
	Key     string
	Value   []byte
	Numeric bool
}

// InfoLike segments a semicolon-joined key=value list (VCF INFO, and
// similar attribute strings in other formats) into one subcontext per
// key plus a STRUCTURED template tying them together in order. Each
// key's value is stored in that key's own context local stream; the
// template's per-item snip is a LOOKUP whose literal prefix is "KEY=" so
// the key name itself is never duplicated per line.
func InfoLike(get Getter, outer *ctx.Context, pairs []KV) {
	if len(pairs) == 0 {
		outer.EvaluateAndEncode(nil)

		return
	}

	items := make([]piz.StructuredItem, 0, len(pairs))

	for _, kv := range pairs {
		ltype := format.LTypeText
		if kv.Numeric {
			ltype = format.LTypeInt64
		}

		sub := get.Get(dictid.Make(kv.Key), ltype)

		prefix := []byte(kv.Key)
		if kv.Value != nil {
			prefix = append(prefix, '=')
		}
		snip := append([]byte{byte(piz.OpLookup)}, prefix...)

		if kv.Numeric {
			n, err := strconv.ParseInt(string(kv.Value), 10, 64)
			if err == nil {
				_ = sub.AppendLocalInt(n)
			} else {
				sub.AppendLocalText(kv.Value)
			}
		} else {
			sub.AppendLocalText(kv.Value)
		}

		wi, _ := sub.Evaluate(snip)
		sub.PutB250(wi)

		items = append(items, piz.StructuredItem{DictID: sub.DictID, Sep: [2]byte{';', 0}})
	}

	st := piz.Structured{Repeats: 1, Items: items}
	snip := append([]byte{byte(piz.OpStructured)}, st.EncodeBase64()...)

	wi, _ := outer.Evaluate(snip)
	outer.PutB250(wi)
}
