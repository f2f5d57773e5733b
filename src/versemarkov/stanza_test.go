package versemarkov

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeterByName(t *testing.T) {
	meter, err := MeterByName("LONG")
	require.NoError(t, err)
	assert.Equal(t, LongMeter.Name, meter.Name)
	assert.Equal(t, "long (8.8.8.8)", meter.String())

	_, err = MeterByName("sapphic")
	assert.ErrorIs(t, err, ErrUnknownMeter)
}

func TestMeter_Validate(t *testing.T) {
	for _, meter := range Meters {
		assert.NoError(t, meter.Validate(), meter.Name)
	}

	invalid := []Meter{
		{Name: "empty"},
		{Name: "backward rhyme", Lines: []LineSpec{{Syllables: 4, RhymesWith: -1}, {Syllables: 4, RhymesWith: 0}}},
		{Name: "self rhyme", Lines: []LineSpec{{Syllables: 4, RhymesWith: 0}}},
		{Name: "out of range", Lines: []LineSpec{{Syllables: 4, RhymesWith: 3}}},
		{Name: "zero", Lines: []LineSpec{{Syllables: 0, RhymesWith: -1}}},
		{Name: "chained last", Lines: []LineSpec{{Syllables: 4, Chained: true, RhymesWith: -1}}},
	}
	for _, meter := range invalid {
		assert.ErrorIs(t, meter.Validate(), ErrInvalidMeter, meter.Name)
	}
}

func TestAssemble_Chained(t *testing.T) {
	m := testModel(t, "the cat sat on\nthe cat sat on", WithOrder(2))
	meter := Meter{Name: "couplet", Lines: []LineSpec{
		{Syllables: 4, Chained: true, RhymesWith: -1},
		{Syllables: 4, RhymesWith: -1},
	}}

	stanza, err := m.Assemble(meter)
	require.NoError(t, err)
	assert.Equal(t, Stanza{{"the", "cat", "sat", "on"}, {"the", "cat", "sat", "on"}}, stanza)
	assert.Equal(t, "the cat sat on\nthe cat sat on", stanza.String())
}

func TestAssemble_Rhymed(t *testing.T) {
	m := testModel(t, "the cat\nthe hat\nthe moss\nthe mat", WithOrder(2), WithModulus(2))
	meter := Meter{Name: "couplet", Lines: []LineSpec{
		{Syllables: 2, RhymesWith: 1},
		{Syllables: 2, RhymesWith: -1},
	}}

	for i := 0; i < 10; i++ {
		stanza, err := m.Assemble(meter)
		require.NoError(t, err)
		require.Len(t, stanza, 2)
		first, second := stanza[0], stanza[1]
		assert.True(t, m.FindRhymes(second[len(second)-1]).Contains(first[len(first)-1]), stanza.String())
	}
}

func TestAssemble_Exhausted(t *testing.T) {
	m := testModel(t, "the cat sat\nthe cat sat", WithOrder(2))
	meter := Meter{Name: "quatrain", Lines: []LineSpec{{Syllables: 4, RhymesWith: -1}}}

	_, err := m.Assemble(meter, WithAttempts(2), WithLineOptions(WithTries(1)))
	assert.ErrorIs(t, err, ErrStanzaExhausted)

	_, err = m.Assemble(Meter{Name: "broken"})
	assert.ErrorIs(t, err, ErrInvalidMeter)
}

func TestAssemble_DefaultCorpus(t *testing.T) {
	m, err := New(DefaultCorpus())
	require.NoError(t, err)

	for _, meter := range Meters {
		stanza, err := m.Assemble(meter, WithAttempts(5))
		if err != nil {
			assert.True(t, errors.Is(err, ErrStanzaExhausted), err)
			continue
		}
		require.Len(t, stanza, len(meter.Lines))
		for i, line := range stanza {
			assert.Equal(t, meter.Lines[i].Syllables, LineSyllables(m.Dictionary(), line), stanza.String())
		}
		second, fourth := stanza[1], stanza[3]
		assert.True(t, m.FindRhymes(fourth[len(fourth)-1]).Contains(second[len(second)-1]), stanza.String())
	}
}
