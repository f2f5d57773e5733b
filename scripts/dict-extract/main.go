// Command dict-extract trims the full CMU pronouncing dictionary down to the vocabulary of one
// or more corpora, printing the kept entries in dictionary format. Its output is the source of
// src/dict/data/cmudict.txt.
//
//	go run ./scripts/dict-extract -dict data/cmudict-0.7b.txt corpus.txt [corpus.txt...]
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"strings"

	"github.com/kalexmills/verse-hammer/src/versemarkov"
)

const Filename = "data/cmudict-0.7b.txt"

func main() {
	dictPath := flag.String("dict", Filename, "full CMU pronouncing dictionary")
	extra := flag.String("extra", "", "comma-separated words to keep regardless of the corpora")
	flag.Parse()

	vocab := make(map[string]struct{})
	if flag.NArg() == 0 {
		addVocabulary(vocab, versemarkov.DefaultCorpus())
	}
	for _, path := range flag.Args() {
		text, err := ioutil.ReadFile(path)
		FatalError(err)
		addVocabulary(vocab, string(text))
	}
	for _, word := range strings.Split(*extra, ",") {
		if word = strings.TrimSpace(word); word != "" {
			vocab[strings.ToUpper(word)] = struct{}{}
		}
	}

	f, err := ioutil.ReadFile(*dictPath)
	FatalError(err)
	entries := parseFile(f, vocab)

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, entry := range entries {
		fmt.Fprintln(w, entry.line)
	}

	var missing []string
	found := make(map[string]struct{})
	for _, entry := range entries {
		found[entry.word] = struct{}{}
	}
	for word := range vocab {
		if _, ok := found[word]; !ok {
			missing = append(missing, word)
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "%d words have no pronunciation: %s\n", len(missing), strings.Join(missing, " "))
	}
}

func addVocabulary(vocab map[string]struct{}, text string) {
	for _, token := range strings.Fields(text) {
		word := strings.Trim(token, versemarkov.Punctuation)
		if word != "" {
			vocab[strings.ToUpper(word)] = struct{}{}
		}
	}
}

type Entry struct {
	word string
	key  string // word plus variant, for a stable sort
	line string
}

func parseFile(file []byte, vocab map[string]struct{}) []Entry {
	var result []Entry
	lines := bytes.Split(file, []byte("\n")) // not the fastest.
	for _, line := range lines {
		entry, ok := parseLine(bytes.TrimRight(line, "\r"))
		if !ok {
			continue
		}
		if _, ok := vocab[entry.word]; ok {
			result = append(result, entry)
		}
	}
	return result
}

func parseLine(line []byte) (Entry, bool) {
	if bytes.HasPrefix(line, []byte(";;;")) { // comment
		return Entry{}, false
	}
	tokens := bytes.SplitN(line, []byte("  "), 2)
	if len(tokens) != 2 || len(tokens[0]) == 0 {
		return Entry{}, false
	}
	key := string(tokens[0])
	word := key
	if i := strings.IndexByte(word, '('); i > 0 { // remove extra pronunciation count
		word = word[:i]
	}
	return Entry{word: word, key: key, line: string(line)}, true
}

func FatalError(err error) {
	if err != nil {
		fmt.Printf("encountered error: %v\n", err)
		os.Exit(1)
	}
}
