// Package nodetable implements the open-addressed string->word_index hash
// table backing each context's dictionary. It mirrors
// the hash-collision bookkeeping shape of a metric-name collision tracker,
// generalized from "detect and flag a colliding name" to "resolve a
// colliding probe hash to the right word_index via a short linear probe,
// falling back to an append-only overflow chain."
//
// The table never grows in place: once the primary bucket array's load
// factor crosses the threshold, it is rehashed into a larger array and the
// overflow chain is cleared, exactly mirroring the dictionary's own
// append-only growth.
package nodetable

const (
	maxProbe        = 8
	loadFactorLimit = 0.75
)

type entry struct {
	hash      uint64
	wordIndex uint32
	used      bool
}

// Table maps a 64-bit probe hash to one or more dictionary word indices.
// Because two distinct strings can share a hash, Lookup takes an equality
// callback that compares the candidate word_index's backing string.
type Table struct {
	buckets  []entry
	overflow []entry
	count    int
}

// New creates a table sized for at least initialCapacity entries.
func New(initialCapacity int) *Table {
	size := 16
	for size < initialCapacity*2 {
		size *= 2
	}

	return &Table{buckets: make([]entry, size)}
}

func (t *Table) mask() uint64 { return uint64(len(t.buckets) - 1) }

// Lookup returns the word_index whose backing string satisfies equal, if any
// entry with matching hash h does.
func (t *Table) Lookup(h uint64, equal func(wordIndex uint32) bool) (uint32, bool) {
	idx := h & t.mask()
	for i := 0; i < maxProbe; i++ {
		slot := &t.buckets[(idx+uint64(i))&t.mask()]
		if !slot.used {
			break
		}
		if slot.hash == h && equal(slot.wordIndex) {
			return slot.wordIndex, true
		}
	}

	for i := len(t.overflow) - 1; i >= 0; i-- {
		if t.overflow[i].hash == h && equal(t.overflow[i].wordIndex) {
			return t.overflow[i].wordIndex, true
		}
	}

	return 0, false
}

// Insert records a new (hash, wordIndex) pair. The caller is responsible for
// having already established via Lookup that no equal entry exists.
func (t *Table) Insert(h uint64, wordIndex uint32) {
	if float64(t.count+1) > loadFactorLimit*float64(len(t.buckets)) {
		t.grow()
	}

	idx := h & t.mask()
	for i := 0; i < maxProbe; i++ {
		slot := &t.buckets[(idx+uint64(i))&t.mask()]
		if !slot.used {
			*slot = entry{hash: h, wordIndex: wordIndex, used: true}
			t.count++

			return
		}
	}

	// Probe run exhausted: chain into the overflow array rather than
	// rehashing immediately.
	t.overflow = append(t.overflow, entry{hash: h, wordIndex: wordIndex, used: true})
	t.count++
}

func (t *Table) grow() {
	old := t.buckets
	oldOverflow := t.overflow
	t.buckets = make([]entry, len(old)*2)
	t.overflow = nil
	t.count = 0

	for _, e := range old {
		if e.used {
			t.insertDuringRehash(e.hash, e.wordIndex)
		}
	}
	for _, e := range oldOverflow {
		t.insertDuringRehash(e.hash, e.wordIndex)
	}
}

// insertDuringRehash places an entry without re-checking the load factor
// (the caller has already sized the new table).
func (t *Table) insertDuringRehash(h uint64, wordIndex uint32) {
	idx := h & t.mask()
	for i := 0; i < maxProbe; i++ {
		slot := &t.buckets[(idx+uint64(i))&t.mask()]
		if !slot.used {
			*slot = entry{hash: h, wordIndex: wordIndex, used: true}
			t.count++

			return
		}
	}
	t.overflow = append(t.overflow, entry{hash: h, wordIndex: wordIndex, used: true})
	t.count++
}

// Len returns the number of entries recorded.
func (t *Table) Len() int { return t.count }

// Rebuild returns a new table with the same (hash -> word_index) pairs,
// each word_index remapped through remap. Used after a dictionary-wide
// reordering (frequency sort) to keep the probe table in sync without
// rehashing every string.
func (t *Table) Rebuild(remap []uint32) *Table {
	nt := &Table{buckets: make([]entry, len(t.buckets))}

	for _, e := range t.buckets {
		if e.used {
			nt.insertDuringRehash(e.hash, remap[e.wordIndex])
		}
	}
	for _, e := range t.overflow {
		nt.insertDuringRehash(e.hash, remap[e.wordIndex])
	}

	return nt
}
