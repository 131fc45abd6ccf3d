// Package hash provides the fast string hash used to probe a context's
// dictionary (string -> word_index) during segmentation.
package hash

import "github.com/cespare/xxhash/v2"

// String computes the xxHash64 of the given byte-backed string, used as the
// probe key for a context's dictionary hash table.
func String(data []byte) uint64 {
	return xxhash.Sum64(data)
}
