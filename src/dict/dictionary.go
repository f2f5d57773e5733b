package dict

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

//go:embed data/cmudict.txt
var cmudictFile string

// Dictionary maps lower-cased words to their pronunciations in file order. It is read-only
// once loaded and safe for concurrent use.
type Dictionary struct {
	entries map[string][]Pronunciation
	words   []string // insertion order

	rhymeOnce sync.Once
	rhymes    *TrieNode
}

func New() *Dictionary {
	return &Dictionary{entries: make(map[string][]Pronunciation)}
}

// Add appends a pronunciation for word. It must not be called once the dictionary is shared.
func (d *Dictionary) Add(word string, p Pronunciation) {
	word = strings.ToLower(word)
	if _, ok := d.entries[word]; !ok {
		d.words = append(d.words, word)
	}
	d.entries[word] = append(d.entries[word], p)
}

// Lookup returns every pronunciation of word. A missing word is not an error; callers fall
// back to heuristics.
func (d *Dictionary) Lookup(word string) ([]Pronunciation, bool) {
	prons, ok := d.entries[strings.ToLower(word)]
	return prons, ok && len(prons) > 0
}

func (d *Dictionary) IsWord(word string) bool {
	_, ok := d.Lookup(word)
	return ok
}

// Words returns the dictionary's words in the order they were loaded.
func (d *Dictionary) Words() []string {
	return d.words
}

func (d *Dictionary) Len() int {
	return len(d.words)
}

// WordsWithSuffix returns the words owning at least one pronunciation whose rhymable part is
// exactly suffix.
func (d *Dictionary) WordsWithSuffix(suffix []string) []string {
	d.rhymeOnce.Do(d.buildRhymeTrie)
	return d.rhymes.Find(suffix).Words()
}

func (d *Dictionary) buildRhymeTrie() {
	d.rhymes = &TrieNode{}
	for _, word := range d.words {
		for _, p := range d.entries[word] {
			if part, ok := p.RhymablePart(); ok {
				d.rhymes.insert(part, word)
			}
		}
	}
}

// Parse reads a dictionary in CMU format. Lines starting with ";;;" are comments; variant
// pronunciations are written WORD(1), WORD(2), ... and are folded onto WORD in order.
func Parse(r io.Reader) (*Dictionary, error) {
	d := New()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) < 2 {
			return nil, fmt.Errorf("could not parse line %d: no phonemes for %q", lineNum, tokens[0])
		}
		d.Add(stripVariant(tokens[0]), ParsePronunciation(strings.Join(tokens[1:], " ")))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFile parses the CMU format dictionary stored at path.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func stripVariant(word string) string {
	n := len(word)
	if n > 3 && word[n-1] == ')' { // remove extra pronunciation count
		if idx := strings.LastIndexByte(word, '('); idx > 0 {
			return word[:idx]
		}
	}
	return word
}

var (
	defaultOnce sync.Once
	defaultDict *Dictionary
)

// Default returns the embedded dictionary.
func Default() *Dictionary {
	defaultOnce.Do(func() {
		var err error
		defaultDict, err = Parse(strings.NewReader(cmudictFile))
		if err != nil {
			panic(fmt.Errorf("could not parse embedded dictionary: %w", err))
		}
	})
	return defaultDict
}
