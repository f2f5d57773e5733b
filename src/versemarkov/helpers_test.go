package versemarkov

import (
	"strings"
	"testing"

	"github.com/kalexmills/verse-hammer/src/dict"
	"github.com/stretchr/testify/require"
)

const testDictionary = `A  AH0
A(1)  EY1
ALBATROSS  AE1 L B AH0 T R AO2 S
BANANA  B AH0 N AE1 N AH0
CAT  K AE1 T
CROSS  K R AO1 S
HAT  HH AE1 T
MAT  M AE1 T
MOSS  M AO1 S
ON  AA1 N
RAT  R AE1 T
SAT  S AE1 T
THE  DH AH0
THE(1)  DH AH1
`

func testDict(t *testing.T) *dict.Dictionary {
	t.Helper()
	d, err := dict.Parse(strings.NewReader(testDictionary))
	require.NoError(t, err)
	return d
}

func testModel(t *testing.T, corpus string, opts ...Option) *Model {
	t.Helper()
	opts = append([]Option{WithDictionary(testDict(t))}, opts...)
	m, err := New(corpus, opts...)
	require.NoError(t, err)
	return m
}
