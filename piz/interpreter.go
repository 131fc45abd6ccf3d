package piz

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/vale-bio/gnzip/ctx"
	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/format"
	"github.com/vale-bio/gnzip/internal/pool"
)

// ContextResolver looks up a vblock's contexts by dict_id, used by
// OTHER_LOOKUP, OTHER_DELTA, REDIRECTION and STRUCTURED to reach a
// sibling context.
type ContextResolver interface {
	Context(id dictid.ID) (*ctx.Context, bool)
}

// SpecialHandler is a data-type-provided reconstruction routine, dispatched
// by SPECIAL snips. n is the handler number embedded in the snip; payload
// is the remainder of the snip after that byte.
type SpecialHandler func(interp *Interpreter, c *ctx.Context, payload []byte, out *pool.ByteBuffer) error

// Interpreter walks one vblock's context streams, appending reconstructed
// text to an output buffer. It holds no vblock-specific state itself: all
// cursor state (last_value, last_delta, next_local/next_b250) lives on the
// ctx.Context values the Resolver returns, so one Interpreter can be reused
// across vblocks.
type Interpreter struct {
	Resolver ContextResolver
	Specials map[int]SpecialHandler
}

// ReconstructContext decodes this context's next b250 code and appends the
// resulting bytes to out. It returns (false, nil) for an absent subfield
// (MISSING_SF), in which case the caller should not emit that field's
// separator either.
func (in *Interpreter) ReconstructContext(out *pool.ByteBuffer, c *ctx.Context) (present bool, err error) {
	wordIndex, err := c.TakeB250()
	if err != nil {
		return false, err
	}

	switch {
	case ctx.IsMissingSF(wordIndex):
		return false, nil
	case ctx.IsEmptySF(wordIndex):
		return true, nil
	}

	snip, err := c.Lookup(wordIndex)
	if err != nil {
		return false, err
	}

	if err := in.interpretSnip(out, c, Snip(snip), true); err != nil {
		return false, err
	}

	return true, nil
}

// interpretSnip dispatches on the snip's leading opcode, if any. storeLast
// controls whether a literal/delta snip updates c.last_value; it is false
// only for the tail recursion beneath a DONT_STORE opcode.
func (in *Interpreter) interpretSnip(out *pool.ByteBuffer, c *ctx.Context, snip Snip, storeLast bool) error {
	op, hasOp := snip.Opcode()
	if !hasOp {
		return in.appendLiteral(out, c, snip, storeLast)
	}

	payload := snip.Payload()

	switch op {
	case OpLookup:
		return in.doLookup(out, c, payload)
	case OpOtherLookup:
		target, tail, err := in.resolveTarget(c, payload)
		if err != nil {
			return err
		}

		return in.doLookup(out, target, tail)
	case OpSelfDelta:
		return applyDelta(out, c, c, payload, storeLast)
	case OpOtherDelta:
		target, tail, err := in.resolveTarget(c, payload)
		if err != nil {
			return err
		}

		return applyDelta(out, c, target, tail, storeLast)
	case OpRedirection:
		target, _, err := in.resolveTarget(c, payload)
		if err != nil {
			return err
		}

		_, err = in.ReconstructContext(out, target)

		return err
	case OpStructured:
		st, err := DecodeStructuredBase64(payload)
		if err != nil {
			return err
		}

		return in.doStructured(out, st)
	case OpSpecial:
		if len(payload) == 0 {
			return fmt.Errorf("%w: ctx %s: SPECIAL snip has no handler number", errs.ErrIntegrity, c.DictID)
		}

		n := int(payload[0])
		h, ok := in.Specials[n]
		if !ok {
			return fmt.Errorf("%w: ctx %s: no SPECIAL handler #%d registered", errs.ErrIntegrity, c.DictID, n)
		}

		return h(in, c, payload[1:], out)
	case OpDontStore:
		return in.interpretSnip(out, c, Snip(payload), false)
	default:
		return fmt.Errorf("%w: ctx %s: unknown snip opcode %#x", errs.ErrIntegrity, c.DictID, byte(op))
	}
}

// doLookup reconstructs a LOOKUP/OTHER_LOOKUP snip against target's local
// stream. For int/text locals, tail is a literal prefix written before the
// value; for a sequence local, tail is instead the ascii byte count to
// read (the dictionary has no other place to carry a per-line length).
func (in *Interpreter) doLookup(out *pool.ByteBuffer, target *ctx.Context, tail []byte) error {
	switch target.LType {
	case format.LTypeText:
		out.MustWrite(tail)

		s, err := target.TakeLocalText()
		if err != nil {
			return err
		}
		out.MustWrite(s)
	case format.LTypeSequence:
		n, err := strconv.Atoi(string(tail))
		if err != nil {
			return fmt.Errorf("%w: ctx %s: bad sequence length %q: %w", errs.ErrIntegrity, target.DictID, tail, err)
		}

		s, err := target.TakeLocalSeq(n)
		if err != nil {
			return err
		}
		out.MustWrite(s)
	default:
		out.MustWrite(tail)

		v, err := target.TakeLocalInt()
		if err != nil {
			return err
		}
		out.MustWrite([]byte(strconv.FormatInt(v, 10)))
		target.SetLastValue(v)
	}

	return nil
}

// applyDelta implements the SELF_DELTA/OTHER_DELTA rule: '-' negates
// target.last_value, an empty payload negates target.last_delta,
// otherwise payload is the ascii delta added to target.last_value. The
// result is always written against self's output and, when storeLast,
// recorded as self's last_value.
func applyDelta(out *pool.ByteBuffer, self, target *ctx.Context, payload []byte, storeLast bool) error {
	var value int64

	switch {
	case len(payload) == 1 && payload[0] == '-':
		value = -target.LastValue()
	case len(payload) == 0:
		value = target.LastValue() - target.LastDelta()
	default:
		delta, err := strconv.ParseInt(string(payload), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: ctx %s: bad delta payload %q: %w", errs.ErrIntegrity, self.DictID, payload, err)
		}
		value = target.LastValue() + delta
		target.SetLastDelta(delta)
	}

	out.MustWrite([]byte(strconv.FormatInt(value, 10)))

	if storeLast {
		self.SetLastValue(value)
		target.SetLastValue(value)
	}

	return nil
}

// doStructured invokes the template once per repeat, resolving each item
// through in.Resolver and writing item/repeat separators between them.
func (in *Interpreter) doStructured(out *pool.ByteBuffer, st Structured) error {
	for rep := uint32(0); rep < st.Repeats; rep++ {
		if rep > 0 {
			writeSep(out, st.RepSep)
		}

		for i, item := range st.Items {
			if i > 0 {
				writeSep(out, item.Sep)
			}

			itemCtx, ok := in.Resolver.Context(item.DictID)
			if !ok {
				return fmt.Errorf("%w: structured item dict_id %s not found", errs.ErrIntegrity, item.DictID)
			}

			if _, err := in.ReconstructContext(out, itemCtx); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeSep(out *pool.ByteBuffer, sep [2]byte) {
	if sep[0] != 0 {
		out.MustWriteByte(sep[0])
	}
	if sep[1] != 0 {
		out.MustWriteByte(sep[1])
	}
}

// appendLiteral appends a plain-text snip. When the context tracks a
// numeric last_value (Flags.StoreValue) and the snip parses as an
// integer, last_value is refreshed so a later SELF_DELTA can reference it.
func (in *Interpreter) appendLiteral(out *pool.ByteBuffer, c *ctx.Context, snip Snip, storeLast bool) error {
	out.MustWrite(snip)

	if storeLast && c.Flags.StoreValue {
		if v, err := strconv.ParseInt(string(snip), 10, 64); err == nil {
			c.SetLastValue(v)
		}
	}

	return nil
}

// resolveTarget reads the 8-byte big-endian dict_id embedded at the front
// of an OTHER_LOOKUP/OTHER_DELTA/REDIRECTION payload and resolves it
// through the interpreter's resolver, returning the remaining tail bytes.
func (in *Interpreter) resolveTarget(c *ctx.Context, payload []byte) (target *ctx.Context, tail []byte, err error) {
	if len(payload) < 8 {
		return nil, nil, fmt.Errorf("%w: ctx %s: snip payload too short for dict_id", errs.ErrIntegrity, c.DictID)
	}

	id := dictid.ID(binary.BigEndian.Uint64(payload[:8]))

	target, ok := in.Resolver.Context(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: ctx %s: snip references unknown dict_id %s", errs.ErrIntegrity, c.DictID, id)
	}

	return target, payload[8:], nil
}
