package dict

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `;;; comment line
CAT  K AE1 T
HAT  HH AE1 T

MOSS  M AO1 S
ALBATROSS  AE1 L B AH0 T R AO2 S
EVENING  IY1 V N IH0 NG
EVENING(1)  IY1 V AH0 N IH0 NG
THE  DH AH0
`

func TestParse(t *testing.T) {
	d, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 6, d.Len())
	assert.Equal(t, []string{"cat", "hat", "moss", "albatross", "evening", "the"}, d.Words())

	prons, ok := d.Lookup("EVENING")
	assert.True(t, ok)
	require.Len(t, prons, 2)
	assert.Equal(t, 2, prons[0].Syllables())
	assert.Equal(t, 3, prons[1].Syllables())

	_, ok = d.Lookup("asdfgf")
	assert.False(t, ok)
}

func TestParse_MissingPhonemes(t *testing.T) {
	_, err := Parse(strings.NewReader("CAT  K AE1 T\nDOG\n"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestIsWord(t *testing.T) {
	d := Default()
	assert.True(t, d.IsWord("throne"))
	assert.True(t, d.IsWord("THRONE"))
	assert.False(t, d.IsWord("hadgasdgf"))
}

func TestPhoneme(t *testing.T) {
	tests := []struct {
		phoneme Phoneme
		stress  Stress
		base    string
	}{
		{"AO1", Primary, "AO"},
		{"AO2", Secondary, "AO"},
		{"AH0", Unstressed, "AH"},
		{"S", NoStress, "S"},
		{"", NoStress, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.stress, tt.phoneme.Stress(), tt.phoneme)
		assert.Equal(t, tt.base, tt.phoneme.Base(), tt.phoneme)
	}
}

func TestRhymablePart(t *testing.T) {
	tests := []struct {
		pron     string
		expected []string
		ok       bool
	}{
		{"M AO1 S", []string{"AO", "S"}, true},
		{"AE1 L B AH0 T R AO2 S", []string{"AO", "S"}, true},
		{"IY1 V N IH0 NG", []string{"IY", "V", "N", "IH", "NG"}, true},
		{"DH AH0", nil, false},
		{"HH M", nil, false},
	}
	for _, tt := range tests {
		part, ok := ParsePronunciation(tt.pron).RhymablePart()
		assert.Equal(t, tt.ok, ok, tt.pron)
		assert.Equal(t, tt.expected, part, tt.pron)
	}
}

func TestWordsWithSuffix(t *testing.T) {
	d, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	words := d.WordsWithSuffix([]string{"AO", "S"})
	sort.Strings(words)
	assert.Equal(t, []string{"albatross", "moss"}, words)

	assert.Equal(t, []string{"cat", "hat"}, d.WordsWithSuffix([]string{"AE", "T"}))
	assert.Empty(t, d.WordsWithSuffix([]string{"UW"}))
	assert.Empty(t, d.WordsWithSuffix([]string{"AO"}))
}

func TestWordsWithSuffix_MatchesScan(t *testing.T) {
	d := Default()
	for _, word := range d.Words() {
		prons, _ := d.Lookup(word)
		for _, p := range prons {
			part, ok := p.RhymablePart()
			if !ok {
				continue
			}
			assert.Contains(t, d.WordsWithSuffix(part), word, "%s %s", word, p)
		}
	}
}

func TestDefault_Rhymes(t *testing.T) {
	words := Default().WordsWithSuffix([]string{"AO", "S"})
	assert.Contains(t, words, "moss")
	assert.Contains(t, words, "albatross")
	assert.Contains(t, words, "cross")
	assert.Contains(t, words, "loss")
}
