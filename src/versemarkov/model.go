package versemarkov

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/kalexmills/verse-hammer/src/dict"
)

//go:embed data/watts.txt
var wattsCorpus string

// DefaultCorpus returns the embedded hymn corpus.
func DefaultCorpus() string {
	return wattsCorpus
}

const (
	DefaultOrder   = 3
	DefaultModulus = 4
)

var (
	ErrInvalidOrder   = errors.New("n-gram order must be at least 2")
	ErrInvalidModulus = errors.New("offset modulus must be at least 1")
	// ErrDictionaryRequired is returned by Load for a corpus file without a dictionary file. The
	// built-in dictionary only covers the built-in hymns.
	ErrDictionaryRequired = errors.New("a corpus file needs a pronouncing dictionary file")
)

// Model is a reverse n-gram model conditioned on syllable position. It is immutable once
// built and may be shared by concurrent Generate calls.
type Model struct {
	n, k   int
	dict   *dict.Dictionary
	index  *Index
	starts [][]string
}

type Option func(*Model)

// WithOrder sets the n-gram order n; contexts hold n-1 words.
func WithOrder(n int) Option {
	return func(m *Model) { m.n = n }
}

// WithModulus sets k, the modulus applied to syllable offsets. k should divide the lengths
// of the lines to be generated.
func WithModulus(k int) Option {
	return func(m *Model) { m.k = k }
}

func WithDictionary(d *dict.Dictionary) Option {
	return func(m *Model) { m.dict = d }
}

// New trains a model on text, one line of verse per line.
func New(text string, opts ...Option) (*Model, error) {
	m := &Model{n: DefaultOrder, k: DefaultModulus}
	for _, opt := range opts {
		opt(m)
	}
	if m.n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOrder, m.n)
	}
	if m.k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidModulus, m.k)
	}
	if m.dict == nil {
		m.dict = dict.Default()
	}
	m.index = Train(Tokenize(m.dict, text), m.n, m.k)
	m.starts = LineStarts(text, m.n)
	return m, nil
}

// NewFromFile trains a model on the corpus stored at path.
func NewFromFile(path string, opts ...Option) (*Model, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read corpus: %w", err)
	}
	return New(string(text), opts...)
}

func (m *Model) Order() int                   { return m.n }
func (m *Model) Modulus() int                 { return m.k }
func (m *Model) Index() *Index                { return m.index }
func (m *Model) Dictionary() *dict.Dictionary { return m.dict }

// LineStarts returns the opening n-1 words of every training line. The result must not be
// modified.
func (m *Model) LineStarts() [][]string {
	return m.starts
}

// CountSyllables counts word with the model's dictionary.
func (m *Model) CountSyllables(word string) int {
	return CountSyllables(m.dict, word)
}

// FindRhymes finds rhymes for word in the model's dictionary.
func (m *Model) FindRhymes(word string) RhymeSet {
	return FindRhymes(m.dict, word)
}

// Load trains a model from files. An empty corpusPath selects the built-in hymns and an empty
// dictPath the built-in dictionary, which is rejected for any other corpus.
func Load(corpusPath, dictPath string, opts ...Option) (*Model, error) {
	if corpusPath != "" && dictPath == "" {
		return nil, fmt.Errorf("%w: corpus %s", ErrDictionaryRequired, corpusPath)
	}
	if dictPath != "" {
		d, err := dict.LoadFile(dictPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithDictionary(d))
	}
	if corpusPath == "" {
		return New(DefaultCorpus(), opts...)
	}
	return NewFromFile(corpusPath, opts...)
}
