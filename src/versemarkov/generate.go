package versemarkov

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

const (
	DefaultTries = 10

	// maxDrawsPerSyllable bounds the draws of one attempt so that a run of zero-syllable
	// words cannot keep an attempt alive forever.
	maxDrawsPerSyllable = 4
)

var (
	ErrInvalidLength = errors.New("line length must be positive")
	ErrInvalidTries  = errors.New("tries must be positive")
	ErrSeedLength    = errors.New("seed length must be n-1")
)

// Result is the outcome of Generate. Words is empty when every attempt failed.
type Result struct {
	Words    []string
	Attempts int
}

// Found reports whether a line of the requested length was produced.
func (r Result) Found() bool {
	return len(r.Words) > 0
}

func (r Result) String() string {
	return strings.Join(r.Words, " ")
}

type generateConfig struct {
	seed             []string
	rhyme            string
	tries            int
	rng              *rand.Rand
	excludeSelfRhyme bool
}

type GenerateOption func(*generateConfig)

// WithSeed fixes the words following the generated line, typically the opening n-1 words of
// the next line. The same seed is reused on every try.
func WithSeed(words ...string) GenerateOption {
	return func(c *generateConfig) {
		c.seed = make([]string, len(words))
		for i, w := range words {
			c.seed[i] = strings.ToLower(w)
		}
	}
}

// WithRhyme requires the last word of the line to rhyme with word.
func WithRhyme(word string) GenerateOption {
	return func(c *generateConfig) { c.rhyme = word }
}

// WithTries sets how many full attempts are made before giving up.
func WithTries(tries int) GenerateOption {
	return func(c *generateConfig) { c.tries = tries }
}

// WithRand draws from r instead of the package-level source. r is not safe for concurrent
// use, so it must not be shared between simultaneous calls.
func WithRand(r *rand.Rand) GenerateOption {
	return func(c *generateConfig) { c.rng = r }
}

// ExcludeSelfRhyme stops the rhyme target from satisfying its own rhyme.
func ExcludeSelfRhyme() GenerateOption {
	return func(c *generateConfig) { c.excludeSelfRhyme = true }
}

func (c *generateConfig) intn(n int) int {
	if c.rng != nil {
		return c.rng.Intn(n)
	}
	return rand.Intn(n)
}

// Generate produces a line of exactly length syllables, choosing words right to left. Each
// attempt starts from the seed, or a random line start, and stops at the first dead end;
// failed attempts are discarded and retried from scratch. Running out of tries is reported by
// a Result whose Found is false, not by an error. Errors are returned only for invalid
// arguments.
func (m *Model) Generate(length int, opts ...GenerateOption) (Result, error) {
	conf := generateConfig{tries: DefaultTries}
	for _, opt := range opts {
		opt(&conf)
	}
	if length < 1 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidLength, length)
	}
	if conf.tries < 1 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidTries, conf.tries)
	}
	if conf.seed != nil && len(conf.seed) != m.n-1 {
		return Result{}, fmt.Errorf("%w: got %d words, want %d", ErrSeedLength, len(conf.seed), m.n-1)
	}

	var rhymes RhymeSet
	if conf.rhyme != "" {
		rhymes = m.FindRhymes(conf.rhyme)
		if conf.excludeSelfRhyme {
			delete(rhymes, cleanWord(conf.rhyme))
		}
	}

	result := Result{}
	for result.Attempts < conf.tries {
		result.Attempts++
		context := conf.seed
		if context == nil {
			if len(m.starts) == 0 {
				continue
			}
			context = m.starts[conf.intn(len(m.starts))]
		}
		if line, ok := m.attempt(&conf, length, context, rhymes); ok {
			result.Words = line
			return result, nil
		}
	}
	return result, nil
}

// attempt walks the index backward from context until length syllables are spent. rhymes,
// when non-nil, constrains only the first word drawn, which ends the line.
func (m *Model) attempt(conf *generateConfig, length int, context []string, rhymes RhymeSet) ([]string, bool) {
	context = append([]string(nil), context...)
	var reversed []string
	offset := length
	for draws := 0; offset > 0 && draws < maxDrawsPerSyllable*length; draws++ {
		candidates := m.candidates(context, offset, rhymes)
		if len(candidates) == 0 {
			break
		}
		word := candidates[conf.intn(len(candidates))]
		offset -= m.CountSyllables(word)
		reversed = append(reversed, word)

		copy(context[1:], context[:len(context)-1])
		context[0] = word
		rhymes = nil
	}

	line := make([]string, len(reversed))
	for i, word := range reversed {
		line[len(reversed)-1-i] = word
	}
	if len(line) == 0 || LineSyllables(m.dict, line) != length {
		return nil, false
	}
	return line, true
}

// candidates looks up the exact context first and, when nothing survives the rhyme filter,
// widens to every context sharing its nearest word. The offset and rhyme constraints are never
// relaxed.
func (m *Model) candidates(context []string, offset int, rhymes RhymeSet) []string {
	candidates := m.index.Candidates(context, offset)
	if rhymes != nil {
		candidates = filterRhymeSet(candidates, rhymes)
	}
	if len(candidates) > 0 {
		return candidates
	}
	candidates = m.index.Widen(context[0], offset)
	if rhymes != nil {
		candidates = filterRhymeSet(candidates, rhymes)
	}
	return candidates
}
