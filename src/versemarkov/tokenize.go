package versemarkov

import (
	"strings"

	"github.com/kalexmills/verse-hammer/src/dict"
)

// Token is a corpus word with its cumulative syllable offset from the start of its line,
// counting the word itself.
type Token struct {
	Word   string
	Offset int
}

// Tokenize splits text into lines and words, lower-cases each word and annotates it with its
// line-local syllable offset. Lines are concatenated in order, so n-grams may span a line
// break.
func Tokenize(d *dict.Dictionary, text string) []Token {
	var tokens []Token
	for _, line := range splitLines(text) {
		offset := 0
		for _, word := range strings.Fields(line) {
			word = strings.ToLower(word)
			offset += CountSyllables(d, word)
			tokens = append(tokens, Token{Word: word, Offset: offset})
		}
	}
	return tokens
}

// LineStarts collects the first n-1 lower-cased words of every line. Blank lines and lines
// with fewer than n-1 words contribute nothing.
func LineStarts(text string, n int) [][]string {
	var starts [][]string
	for _, line := range splitLines(text) {
		words := strings.Fields(line)
		if len(words) == 0 || len(words) < n-1 {
			continue
		}
		start := make([]string, n-1)
		for i := range start {
			start[i] = strings.ToLower(words[i])
		}
		starts = append(starts, start)
	}
	return starts
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}
