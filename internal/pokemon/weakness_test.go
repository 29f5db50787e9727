package pokemon

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestChart_ListsAreDisjoint(t *testing.T) {
	for d := Type(0); d < numTypes; d++ {
		seen := map[Type]string{}
		for _, a := range chart[d].superEffective {
			seen[a] = "superEffective"
		}
		for _, a := range chart[d].notEffective {
			_, dup := seen[a]
			assert.False(t, dup, "%s: %s listed twice", d, a)
			seen[a] = "notEffective"
		}
		for _, a := range chart[d].immune {
			_, dup := seen[a]
			assert.False(t, dup, "%s: %s listed twice", d, a)
		}
	}
}

func TestWeaknesses_SingleType(t *testing.T) {
	assert.Equal(t, []Type{Water, Ground, Rock}, Weaknesses([]Type{Fire}))
	assert.Equal(t, []Type{Fighting}, Weaknesses([]Type{Normal}))
	assert.Equal(t, []Type{Poison, Steel}, Weaknesses([]Type{Fairy}))
}

func TestWeaknesses_GroundFlyingNotWeakToElectric(t *testing.T) {
	// flying is weak to electric; ground is immune to it.
	got := Weaknesses([]Type{Ground, Flying})
	assert.NotContains(t, got, Electric)
	assert.Equal(t, 0.0, Effectiveness(Electric, []Type{Ground, Flying}))
	assert.Contains(t, got, Ice)
	assert.Contains(t, got, Water)
}

func TestWeaknesses_ResistanceCancelsWeakness(t *testing.T) {
	// water is weak to grass, ground is weak to grass too, but
	// water/flying: flying resists grass so the net multiplier is 1.
	assert.Equal(t, 1.0, Effectiveness(Grass, []Type{Water, Flying}))
	assert.NotContains(t, Weaknesses([]Type{Water, Flying}), Grass)

	// fire is weak to rock; fighting resists it.
	assert.Equal(t, 1.0, Effectiveness(Rock, []Type{Fire, Fighting}))
	assert.NotContains(t, Weaknesses([]Type{Fire, Fighting}), Rock)
}

func TestWeaknesses_DoubleWeaknessKept(t *testing.T) {
	assert.Equal(t, 4.0, Effectiveness(Grass, []Type{Water, Ground}))
	assert.Contains(t, Weaknesses([]Type{Water, Ground}), Grass)
}

func TestWeaknesses_ImmunityOverridesDoubleWeakness(t *testing.T) {
	// steel is immune to poison even when fairy would be hit super-effectively.
	assert.Equal(t, 0.0, Effectiveness(Poison, []Type{Steel, Fairy}))
	assert.NotContains(t, Weaknesses([]Type{Steel, Fairy}), Poison)
}

func TestWeaknesses_DuplicateTypesCountOnce(t *testing.T) {
	assert.Equal(t, Weaknesses([]Type{Fire}), Weaknesses([]Type{Fire, Fire}))
	assert.Equal(t, 2.0, Effectiveness(Water, []Type{Fire, Fire}))
}

func TestWeaknesses_EmptyIsEmpty(t *testing.T) {
	got := Weaknesses(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStrengths_MatchesExamplePrompt(t *testing.T) {
	assert.Equal(t, []Type{Grass, Ice, Bug, Steel}, Strengths([]Type{Fire}))
	assert.Equal(t, []Type{Fire, Ground, Rock}, Strengths([]Type{Water}))
}

func TestEffectiveness_InvalidAttackerIsNeutral(t *testing.T) {
	assert.Equal(t, 1.0, Effectiveness(Type(200), []Type{Fire}))
}

func typeGen() *rapid.Generator[Type] {
	return rapid.Custom(func(t *rapid.T) Type {
		return Type(rapid.IntRange(0, int(numTypes)-1).Draw(t, "type"))
	})
}

// Property: the weakness set does not depend on the order of the input types.
func TestPropertyWeaknessesOrderSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		types := rapid.SliceOfN(typeGen(), 0, 3).Draw(t, "types")
		reversed := slices.Clone(types)
		slices.Reverse(reversed)
		if !slices.Equal(Weaknesses(types), Weaknesses(reversed)) {
			t.Fatalf("order changed result for %v", types)
		}
	})
}

// Property: a type an own type is immune to is never a weakness.
func TestPropertyImmunityNeverWeakness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		types := rapid.SliceOfN(typeGen(), 1, 2).Draw(t, "types")
		weak := Weaknesses(types)
		for _, own := range types {
			for _, a := range chart[own].immune {
				if slices.Contains(weak, a) {
					t.Fatalf("%v lists immune type %s as weakness", types, a)
				}
			}
		}
	})
}

// Property: membership is decided by the combined multiplier, never per type.
func TestPropertyWeaknessMatchesCombinedMultiplier(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		types := rapid.SliceOfN(typeGen(), 1, 2).Draw(t, "types")
		weak := Weaknesses(types)
		for _, a := range AllTypes() {
			want := Effectiveness(a, types) >= 2
			if slices.Contains(weak, a) != want {
				t.Fatalf("%v: attacker %s membership mismatch", types, a)
			}
		}
	})
}
