package versemarkov

import (
	"regexp"
	"strings"

	"github.com/kalexmills/verse-hammer/src/dict"
)

// Punctuation is stripped from both ends of a word before it is looked up.
const Punctuation = " .,;:!?\"'"

// CountSyllables estimates the syllables in word. Dictionary words use their first
// pronunciation; other words go through a rough vowel-grouping heuristic. The result depends
// only on word and d, so training and generation always agree.
func CountSyllables(d *dict.Dictionary, word string) int {
	cleaned := cleanWord(word)
	if prons, ok := d.Lookup(cleaned); ok {
		return prons[0].Syllables()
	}
	return countHeuristic(cleaned)
}

// LineSyllables totals the syllables of a sequence of words.
func LineSyllables(d *dict.Dictionary, words []string) int {
	count := 0
	for _, word := range words {
		count += CountSyllables(d, word)
	}
	return count
}

func countHeuristic(word string) int {
	word = finalERegex.ReplaceAllString(word, "")
	word = vowelRegex.ReplaceAllString(word, "V")
	word = finalYRegex.ReplaceAllString(word, "V")
	word = medialYRegex.ReplaceAllString(word, "V")
	word = vowelRunRegex.ReplaceAllString(word, "V")
	return strings.Count(word, "V")
}

func cleanWord(s string) string {
	return strings.ToLower(strings.Trim(s, Punctuation))
}

var (
	finalERegex   = regexp.MustCompile(`e$`)
	vowelRegex    = regexp.MustCompile(`[aeiou]`)
	finalYRegex   = regexp.MustCompile(`y$`)
	medialYRegex  = regexp.MustCompile(`[^V]y[^V]`)
	vowelRunRegex = regexp.MustCompile(`V+`)
)
