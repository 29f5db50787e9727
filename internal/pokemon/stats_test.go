package pokemon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestScore_HPSaturates(t *testing.T) {
	stats := Stats{HP: 999, Attack: 0, Defense: 0, SpecialAttack: 0, SpecialDefense: 0, Speed: 0}
	assert.InDelta(t, 15.0, Score(stats), 1e-9)
}

func TestScore_SpeedSaturates(t *testing.T) {
	assert.InDelta(t, 25.0, Score(Stats{Speed: 500}), 1e-9)
}

func TestScore_AllMaxedIsHundred(t *testing.T) {
	stats := Stats{HP: 255, Attack: 190, Defense: 230, SpecialAttack: 194, SpecialDefense: 230, Speed: 200}
	assert.InDelta(t, 100.0, Score(stats), 1e-9)
}

func TestScore_Pikachu(t *testing.T) {
	stats := Stats{HP: 35, Attack: 55, Defense: 40, SpecialAttack: 50, SpecialDefense: 50, Speed: 90}
	want := (35.0/200)*15 + (55.0/150)*15 + (40.0/150)*15 + (50.0/150)*15 + (50.0/150)*15 + (90.0/150)*25
	assert.InDelta(t, want, Score(stats), 1e-9)
}

func TestScore_UnknownAndMissingIgnored(t *testing.T) {
	assert.Equal(t, 0.0, Score(nil))
	assert.Equal(t, 0.0, Score(Stats{"accuracy": 100, "evasion": 100}))
	assert.InDelta(t, Score(Stats{Attack: 75}), Score(Stats{Attack: 75, "luck": 9000}), 1e-12)
}

func TestParseStatName(t *testing.T) {
	s, err := ParseStatName(" Special-Attack ")
	require.NoError(t, err)
	assert.Equal(t, SpecialAttack, s)

	_, err = ParseStatName("accuracy")
	assert.True(t, errors.Is(err, ErrUnknownStat))
}

func TestStatsTotal(t *testing.T) {
	assert.Equal(t, 320, Stats{HP: 35, Attack: 55, Defense: 40, SpecialAttack: 50, SpecialDefense: 50, Speed: 90}.Total())
}

// Property: the score always lies in [0, 100].
func TestPropertyScoreBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stats := Stats{}
		for _, name := range StatOrder {
			if rapid.Bool().Draw(t, string(name)+"_present") {
				stats[name] = rapid.IntRange(0, 1000).Draw(t, string(name))
			}
		}
		got := Score(stats)
		if got < 0 || got > 100+1e-9 {
			t.Fatalf("score %f out of range for %v", got, stats)
		}
	})
}

// Property: a stat at or above its ceiling contributes exactly its weight.
func TestPropertyScoreSaturatesAtCeiling(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.SampledFrom(StatOrder).Draw(t, "stat")
		w := scoreWeights[name]
		value := rapid.IntRange(int(w.ceiling), 100_000).Draw(t, "value")
		got := Score(Stats{name: value})
		if diff := got - w.weight*100; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("Score({%s: %d}) = %f, want %f", name, value, got, w.weight*100)
		}
	})
}
