package dict

import "strings"

// Stress is the stress level carried by a vowel phoneme.
type Stress int

const (
	NoStress   Stress = -1 // consonants carry no stress digit
	Unstressed Stress = 0
	Primary    Stress = 1
	Secondary  Stress = 2
)

// Phoneme is a single ARPAbet symbol as written in the CMU dictionary, e.g. "AO1" or "S".
type Phoneme string

func (p Phoneme) Stress() Stress {
	n := len(p)
	if n == 0 {
		return NoStress
	}
	switch p[n-1] {
	case '0':
		return Unstressed
	case '1':
		return Primary
	case '2':
		return Secondary
	}
	return NoStress
}

// IsVowel reports whether the phoneme carries a stress digit. Every vowel in the CMU
// dictionary does and no consonant does.
func (p Phoneme) IsVowel() bool {
	return p.Stress() != NoStress
}

// Base returns the phoneme with its stress digit removed.
func (p Phoneme) Base() string {
	return strings.TrimRight(string(p), "012")
}

// Pronunciation is one transcription of a word.
type Pronunciation []Phoneme

// ParsePronunciation splits a space separated transcription such as "M AO1 S".
func ParsePronunciation(s string) Pronunciation {
	fields := strings.Fields(s)
	result := make(Pronunciation, 0, len(fields))
	for _, f := range fields {
		result = append(result, Phoneme(strings.ToUpper(f)))
	}
	return result
}

// Syllables counts the syllable nuclei of the pronunciation.
func (p Pronunciation) Syllables() int {
	count := 0
	for _, ph := range p {
		if ph.IsVowel() {
			count++
		}
	}
	return count
}

// RhymablePart returns the stress-stripped phonemes from the last vowel bearing primary or
// secondary stress through the end of the pronunciation. Because stress marks are dropped, a
// secondarily stressed rhyme matches a primary one (albatross and moss both end in "AO S").
// ok is false when no vowel carries primary or secondary stress.
func (p Pronunciation) RhymablePart() (part []string, ok bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if s := p[i].Stress(); s == Primary || s == Secondary {
			part = make([]string, 0, len(p)-i)
			for _, ph := range p[i:] {
				part = append(part, ph.Base())
			}
			return part, true
		}
	}
	return nil, false
}

func (p Pronunciation) String() string {
	strs := make([]string, len(p))
	for i, ph := range p {
		strs[i] = string(ph)
	}
	return strings.Join(strs, " ")
}
