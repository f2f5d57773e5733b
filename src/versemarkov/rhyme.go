package versemarkov

import (
	"sort"

	"github.com/kalexmills/verse-hammer/src/dict"
)

// RhymeSet is the set of dictionary words rhyming with some word.
type RhymeSet map[string]struct{}

// Contains reports whether word, stripped of surrounding punctuation, is in the set.
func (s RhymeSet) Contains(word string) bool {
	_, ok := s[cleanWord(word)]
	return ok
}

// Words returns the set's members in sorted order.
func (s RhymeSet) Words() []string {
	result := make([]string, 0, len(s))
	for word := range s {
		result = append(result, word)
	}
	sort.Strings(result)
	return result
}

// FindRhymes returns every dictionary word with a pronunciation whose rhymable part equals the
// rhymable part of some pronunciation of word. A word missing from the dictionary has no
// rhymes. The word itself is included.
func FindRhymes(d *dict.Dictionary, word string) RhymeSet {
	result := make(RhymeSet)
	prons, ok := d.Lookup(cleanWord(word))
	if !ok {
		return result
	}
	for _, p := range prons {
		part, ok := p.RhymablePart()
		if !ok {
			continue
		}
		for _, rhyme := range d.WordsWithSuffix(part) {
			result[rhyme] = struct{}{}
		}
	}
	return result
}

// FilterRhymes keeps the candidates rhyming with target. An empty target keeps every
// candidate. candidates is never modified.
func FilterRhymes(d *dict.Dictionary, candidates []string, target string) []string {
	if target == "" {
		return candidates
	}
	return filterRhymeSet(candidates, FindRhymes(d, target))
}

func filterRhymeSet(candidates []string, rhymes RhymeSet) []string {
	var result []string
	for _, c := range candidates {
		if rhymes.Contains(c) {
			result = append(result, c)
		}
	}
	return result
}
