package versemarkov

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownMeter    = errors.New("unknown meter")
	ErrInvalidMeter    = errors.New("invalid meter")
	ErrStanzaExhausted = errors.New("could not assemble stanza")
)

const DefaultStanzaAttempts = 20

// LineSpec describes one line of a stanza.
type LineSpec struct {
	Syllables int
	// Chained lines are seeded with the opening words of the following line.
	Chained bool
	// RhymesWith is the index of a later line whose last word this line must rhyme with, or -1.
	RhymesWith int
	// Unchain retries a failed chained line once without its seed.
	Unchain bool
}

// Meter is a stanza form: line lengths, chaining and rhyme scheme.
type Meter struct {
	Name  string
	Lines []LineSpec
}

var (
	// CommonMeter is 8.6.8.6 rhyming ABCB.
	CommonMeter = Meter{
		Name: "common",
		Lines: []LineSpec{
			{Syllables: 8, RhymesWith: -1},
			{Syllables: 6, RhymesWith: 3},
			{Syllables: 8, Chained: true, RhymesWith: -1},
			{Syllables: 6, RhymesWith: -1},
		},
	}
	// LongMeter is 8.8.8.8 rhyming ABCB.
	LongMeter = Meter{
		Name: "long",
		Lines: []LineSpec{
			{Syllables: 8, Chained: true, RhymesWith: -1},
			{Syllables: 8, Chained: true, RhymesWith: 3},
			{Syllables: 8, Chained: true, RhymesWith: -1},
			{Syllables: 8, RhymesWith: -1},
		},
	}
	// ShortMeter is 6.6.8.6 rhyming ABCB.
	ShortMeter = Meter{
		Name: "short",
		Lines: []LineSpec{
			{Syllables: 6, Chained: true, RhymesWith: -1},
			{Syllables: 6, Chained: true, RhymesWith: 3, Unchain: true},
			{Syllables: 8, Chained: true, RhymesWith: -1},
			{Syllables: 6, RhymesWith: -1},
		},
	}
)

// Meters lists the built-in meters.
var Meters = []Meter{CommonMeter, LongMeter, ShortMeter}

func MeterByName(name string) (Meter, error) {
	for _, meter := range Meters {
		if strings.EqualFold(meter.Name, name) {
			return meter, nil
		}
	}
	return Meter{}, fmt.Errorf("%w: %q", ErrUnknownMeter, name)
}

// Validate checks that every rhyme refers to a later line and every length is positive.
func (m Meter) Validate() error {
	if len(m.Lines) == 0 {
		return fmt.Errorf("%w: %s has no lines", ErrInvalidMeter, m.Name)
	}
	for i, line := range m.Lines {
		if line.Syllables < 1 {
			return fmt.Errorf("%w: %s line %d has %d syllables", ErrInvalidMeter, m.Name, i+1, line.Syllables)
		}
		if line.RhymesWith >= 0 && (line.RhymesWith <= i || line.RhymesWith >= len(m.Lines)) {
			return fmt.Errorf("%w: %s line %d rhymes with line %d", ErrInvalidMeter, m.Name, i+1, line.RhymesWith+1)
		}
	}
	if m.Lines[len(m.Lines)-1].Chained {
		return fmt.Errorf("%w: %s chains its last line", ErrInvalidMeter, m.Name)
	}
	return nil
}

func (m Meter) String() string {
	lengths := make([]string, len(m.Lines))
	for i, line := range m.Lines {
		lengths[i] = fmt.Sprint(line.Syllables)
	}
	return fmt.Sprintf("%s (%s)", m.Name, strings.Join(lengths, "."))
}

// Stanza holds the words of each generated line, first line first.
type Stanza [][]string

func (s Stanza) Lines() []string {
	lines := make([]string, len(s))
	for i, words := range s {
		lines[i] = strings.Join(words, " ")
	}
	return lines
}

func (s Stanza) String() string {
	return strings.Join(s.Lines(), "\n")
}

type stanzaConfig struct {
	attempts int
	generate []GenerateOption
}

type StanzaOption func(*stanzaConfig)

// WithAttempts sets how many whole stanzas are tried before giving up.
func WithAttempts(n int) StanzaOption {
	return func(c *stanzaConfig) { c.attempts = n }
}

// WithLineOptions applies opts to every line generated, e.g. WithTries or WithRand.
func WithLineOptions(opts ...GenerateOption) StanzaOption {
	return func(c *stanzaConfig) { c.generate = append(c.generate, opts...) }
}

// Assemble generates a stanza in meter, last line first so that chained lines can be seeded
// with the line after them and rhymed lines can see their targets. Any failed line restarts
// the whole stanza.
func (m *Model) Assemble(meter Meter, opts ...StanzaOption) (Stanza, error) {
	conf := stanzaConfig{attempts: DefaultStanzaAttempts}
	for _, opt := range opts {
		opt(&conf)
	}
	if err := meter.Validate(); err != nil {
		return nil, err
	}
	for attempt := 0; attempt < conf.attempts; attempt++ {
		stanza, ok, err := m.assembleOnce(meter, conf.generate)
		if err != nil {
			return nil, err
		}
		if ok {
			return stanza, nil
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", ErrStanzaExhausted, meter, conf.attempts)
}

func (m *Model) assembleOnce(meter Meter, base []GenerateOption) (Stanza, bool, error) {
	stanza := make(Stanza, len(meter.Lines))
	for i := len(meter.Lines) - 1; i >= 0; i-- {
		spec := meter.Lines[i]
		opts := append([]GenerateOption(nil), base...)
		if spec.RhymesWith >= 0 {
			target := stanza[spec.RhymesWith]
			opts = append(opts, WithRhyme(target[len(target)-1]))
		}

		seed := m.seedFrom(stanza, i, spec)
		res, err := m.Generate(spec.Syllables, append(opts, seedOption(seed)...)...)
		if err != nil {
			return nil, false, err
		}
		if !res.Found() && seed != nil && spec.Unchain {
			res, err = m.Generate(spec.Syllables, opts...)
			if err != nil {
				return nil, false, err
			}
		}
		if !res.Found() {
			return nil, false, nil
		}
		stanza[i] = res.Words
	}
	return stanza, true, nil
}

// seedFrom returns the opening n-1 words of the line after i when spec is chained and that
// line is long enough.
func (m *Model) seedFrom(stanza Stanza, i int, spec LineSpec) []string {
	if !spec.Chained || i+1 >= len(stanza) {
		return nil
	}
	next := stanza[i+1]
	if len(next) < m.n-1 {
		return nil
	}
	return next[:m.n-1]
}

func seedOption(seed []string) []GenerateOption {
	if seed == nil {
		return nil
	}
	return []GenerateOption{WithSeed(seed...)}
}
