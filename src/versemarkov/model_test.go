package versemarkov

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	dictPath := filepath.Join(dir, "dict.txt")
	require.NoError(t, os.WriteFile(corpusPath, []byte("the cat sat on\nthe cat sat on\n"), 0644))
	require.NoError(t, os.WriteFile(dictPath, []byte(testDictionary), 0644))

	_, err := Load(corpusPath, "")
	assert.ErrorIs(t, err, ErrDictionaryRequired)

	m, err := Load(corpusPath, dictPath, WithOrder(2))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"the"}, {"the"}}, m.LineStarts())
	assert.True(t, m.Dictionary().IsWord("albatross"))

	m, err = Load("", "")
	require.NoError(t, err)
	assert.Len(t, m.LineStarts(), 44)

	m, err = Load("", dictPath)
	require.NoError(t, err)
	assert.Len(t, m.LineStarts(), 44)
	assert.False(t, m.Dictionary().IsWord("god"))

	_, err = Load(filepath.Join(dir, "missing.txt"), dictPath)
	assert.Error(t, err)
	_, err = Load("", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
