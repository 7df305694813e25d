// Package sparse builds bounded sparse term vectors for hybrid search.
package sparse

import (
	"crypto/md5"
	"encoding/binary"
	"sort"
	"strings"

	"github.com/readloom/readloom/tokenizer"
	"github.com/readloom/readloom/types"
)

// DefaultMaxTerms bounds a sparse vector to the most frequent terms.
const DefaultMaxTerms = 1536

// TermID hashes a token to a stable 32-bit identifier: the first four
// bytes, big-endian, of the MD5 digest of the token's UTF-8 bytes.
// Collisions at this width occur naturally and are not resolved.
func TermID(token string) uint32 {
	sum := md5.Sum([]byte(token))
	return binary.BigEndian.Uint32(sum[:4])
}

// ToSparseVector maps text to parallel (indices, values) arrays holding the
// top maxTerms most frequent stop-filtered tokens. Values are raw counts
// ordered non-increasing. Empty input produces empty arrays.
func ToSparseVector(text string, maxTerms int) types.SparseVector {
	if maxTerms <= 0 {
		maxTerms = DefaultMaxTerms
	}

	counts := make(map[uint32]float32)
	for _, token := range strings.Fields(tokenizer.StripStops(text)) {
		if token == "" {
			continue
		}
		counts[TermID(token)]++
	}

	type entry struct {
		id    uint32
		count float32
	}
	entries := make([]entry, 0, len(counts))
	for id, count := range counts {
		entries = append(entries, entry{id: id, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].id < entries[j].id
	})

	if len(entries) > maxTerms {
		entries = entries[:maxTerms]
	}

	vec := types.SparseVector{
		Indices: make([]uint32, len(entries)),
		Values:  make([]float32, len(entries)),
	}
	for i, e := range entries {
		vec.Indices[i] = e.id
		vec.Values[i] = e.count
	}
	return vec
}
