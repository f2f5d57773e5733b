// Command dict-gaps lists corpus words missing from the pronouncing dictionary, most frequent
// first, with the syllable count the heuristic will assign them. Words seen only once are
// skipped.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kalexmills/verse-hammer/src/dict"
	"github.com/kalexmills/verse-hammer/src/versemarkov"
)

var Requoter = strings.NewReplacer("’", "'", "‘", "'")

func main() {
	dictPath := flag.String("dict", "", "CMU-format pronouncing dictionary; empty uses the built-in dictionary")
	minCount := flag.Int("min", 2, "minimum occurrences for a word to be listed")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Println("usage: dict-gaps [-dict path] [-min n] corpus.txt")
		os.Exit(2)
	}

	d := dict.Default()
	if *dictPath != "" {
		var err error
		d, err = dict.LoadFile(*dictPath)
		FatalError(err)
	}

	f, err := os.Open(flag.Arg(0))
	FatalError(err)
	defer f.Close()

	counts := make(map[string]int)
	s := bufio.NewScanner(f)
	for s.Scan() {
		for _, t := range strings.Fields(s.Text()) {
			cleaned := clean(t)
			if cleaned == "" || d.IsWord(cleaned) {
				continue
			}
			counts[cleaned]++
		}
	}
	FatalError(s.Err())

	type result struct {
		str   string
		count int
	}
	var results []result
	for s, count := range counts {
		if count < *minCount {
			continue
		}
		results = append(results, result{s, count})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].count != results[j].count {
			return results[i].count > results[j].count
		}
		return results[i].str < results[j].str
	})
	for _, result := range results {
		fmt.Println(result.str, result.count, versemarkov.CountSyllables(d, result.str))
	}
}

func clean(s string) string {
	if strings.HasPrefix(s, "[") ||
		strings.HasPrefix(s, "<") ||
		strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") {
		return ""
	}
	replaced := Requoter.Replace(s)
	return strip(strings.ToLower(replaced))
}

func strip(s string) string {
	var result strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if ('a' <= b && b <= 'z') || b == '\'' {
			result.WriteByte(b)
		}
	}
	return strings.Trim(result.String(), "'")
}

func FatalError(err error) {
	if err != nil {
		fmt.Printf("encountered error: %v\n", err)
		os.Exit(1)
	}
}
