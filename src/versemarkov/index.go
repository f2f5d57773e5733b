package versemarkov

import (
	"sort"
	"strings"
)

// Key identifies an index bucket: the n-1 words following a candidate, joined with single
// spaces, and the candidate's syllable offset modulo k.
type Key struct {
	Context string
	Bucket  int
}

// NewKey builds the key for a context and an offset under modulus k.
func NewKey(context []string, offset, k int) Key {
	return Key{Context: strings.Join(context, " "), Bucket: Bucket(offset, k)}
}

// Bucket reduces an offset modulo k.
func Bucket(offset, k int) int {
	b := offset % k
	if b < 0 {
		b += k
	}
	return b
}

// headKey narrows a Key to the nearest following word, for widened lookups.
type headKey struct {
	Head   string
	Bucket int
}

// Index is the reverse n-gram table. For every key it lists, in training order and with
// duplicates, the words seen immediately before that context at that metrical position.
type Index struct {
	n, k    int
	buckets map[Key][]string
	heads   map[headKey][]string
}

// Train builds an Index from a token stream. Position i contributes word i under the context
// formed by the n-1 tokens after it; positions without n-1 followers are skipped.
func Train(tokens []Token, n, k int) *Index {
	idx := &Index{
		n:       n,
		k:       k,
		buckets: make(map[Key][]string),
		heads:   make(map[headKey][]string),
	}
	context := make([]string, n-1)
	for i := 0; i+n-1 < len(tokens); i++ {
		for j := range context {
			context[j] = tokens[i+1+j].Word
		}
		idx.insert(context, tokens[i].Offset, tokens[i].Word)
	}
	return idx
}

func (idx *Index) insert(context []string, offset int, word string) {
	key := NewKey(context, offset, idx.k)
	idx.buckets[key] = append(idx.buckets[key], word)

	hk := headKey{Head: context[0], Bucket: key.Bucket}
	idx.heads[hk] = append(idx.heads[hk], word)
}

// Candidates returns the words observed before context at the given offset. The returned
// slice is shared with the index and must not be modified.
func (idx *Index) Candidates(context []string, offset int) []string {
	return idx.buckets[NewKey(context, offset, idx.k)]
}

// Widen returns the candidates of every key whose context starts with head at the given
// offset, ignoring the rest of the context. The returned slice must not be modified.
func (idx *Index) Widen(head string, offset int) []string {
	return idx.heads[headKey{Head: head, Bucket: Bucket(offset, idx.k)}]
}

// Keys returns every key in the index, sorted by context then bucket.
func (idx *Index) Keys() []Key {
	keys := make([]Key, 0, len(idx.buckets))
	for key := range idx.buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Context != keys[j].Context {
			return keys[i].Context < keys[j].Context
		}
		return keys[i].Bucket < keys[j].Bucket
	})
	return keys
}

// Lookup returns the words stored under key.
func (idx *Index) Lookup(key Key) []string {
	return idx.buckets[key]
}

// Len is the number of distinct keys.
func (idx *Index) Len() int {
	return len(idx.buckets)
}

func (idx *Index) Order() int   { return idx.n }
func (idx *Index) Modulus() int { return idx.k }
