package versemarkov

import (
	"testing"

	"github.com/kalexmills/verse-hammer/src/dict"
	"github.com/stretchr/testify/assert"
)

func TestCountSyllables(t *testing.T) {
	d := dict.Default()
	tests := []struct {
		input         string
		expectedCount int
	}{
		{"throne", 1},
		{"Sufficient,", 3},
		{"\"evening\"", 2}, // first pronunciation only
		{"ages", 2},
		{"everlasting", 4},
		{"God;", 1},
		{"queue", 1},
		{"blorpe", 1},
		{"flibber", 2},
		{"happy", 2},
		{"sky", 1},
		{"rhythm", 1},
		{"zzyzx", 1},
		{"ever-rolling", 4},
		{"\"'!", 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expectedCount, CountSyllables(d, tt.input), tt.input)
	}
}

func TestCountSyllables_Deterministic(t *testing.T) {
	d := dict.Default()
	for _, word := range d.Words() {
		first := CountSyllables(d, word)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, CountSyllables(d, word), word)
		}
	}
}

func TestLineSyllables(t *testing.T) {
	d := dict.Default()
	assert.Equal(t, 8, LineSyllables(d, []string{"before", "the", "hills", "in", "order", "stood,"}))
	assert.Equal(t, 0, LineSyllables(d, nil))
}
