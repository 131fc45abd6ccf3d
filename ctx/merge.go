package ctx

import "sort"

// Merge promotes every node in local (a vblock's tentative dictionary) into
// c (the file-global context), under a lock the caller already holds (one
// per dict_id). It returns, indexed by
// local word_index, the corresponding global word_index, so the caller can
// rewrite the vblock's already-encoded b250 stream. Each local node's use
// count is added to its global node's, so SortByFrequency sees real counts.
func (c *Context) Merge(local *Context) []uint32 {
	remap := make([]uint32, local.NodeCount())

	for i := 0; i < local.NodeCount(); i++ {
		s := local.nodeBytes(uint32(i))
		wi, _ := c.Evaluate(s)
		if i < len(local.freq) {
			c.freq[wi] += local.freq[i]
		}
		remap[i] = wi
	}

	return remap
}

// SortByFrequency reorders the dictionary by descending use count, so the
// most common entries receive the 1-byte b250 codes (0..249).
// file.MergeVBlock calls it once per dict_id, on that dict_id's first
// merge, so the merging vblock's b250 stream is rewritten against
// frequency-sorted word indices before anything downstream reads it. It
// returns, indexed by old word_index, the new word_index, so that
// already-encoded b250 stream can be rewritten.
func (c *Context) SortByFrequency() []uint32 {
	order := make([]int, len(c.nodes))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return c.freq[order[a]] > c.freq[order[b]]
	})

	newDict := make([]byte, 0, len(c.dict))
	newNodes := make([]Node, len(c.nodes))
	newFreq := make([]uint32, len(c.freq))
	oldToNew := make([]uint32, len(c.nodes))

	for newIdx, oldIdx := range order {
		n := c.nodes[oldIdx]
		s := c.dict[n.Offset : n.Offset+n.Length]

		offset := uint32(len(newDict))
		newDict = append(newDict, s...)
		newDict = append(newDict, dictSeparator)

		newNodes[newIdx] = Node{Offset: offset, Length: n.Length, WordIndex: uint32(newIdx)}
		newFreq[newIdx] = c.freq[oldIdx]
		oldToNew[oldIdx] = uint32(newIdx)
	}

	c.dict = newDict
	c.nodes = newNodes
	c.freq = newFreq

	c.table = c.table.Rebuild(oldToNew)

	if c.hasLast {
		c.lastWordIndex = oldToNew[c.lastWordIndex]
	}

	return oldToNew
}
