package pokemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func power(n int) *int { return &n }

func TestTopMoves_SortsByPowerAndDropsStatus(t *testing.T) {
	moves := []Move{
		{Name: "growl", Type: Normal},
		{Name: "thunder-shock", Power: power(40), Type: Electric},
		{Name: "thunderbolt", Power: power(90), Type: Electric},
		{Name: "thunder", Power: power(110), Type: Electric},
		{Name: "quick-attack", Power: power(40), Type: Normal},
	}
	got := TopMoves(moves, 3)
	assert.Equal(t, []string{"thunder", "thunderbolt", "thunder-shock"}, moveNames(got))
}

func TestTopMoves_TiesKeepOriginalOrder(t *testing.T) {
	moves := []Move{
		{Name: "a", Power: power(40), Type: Normal},
		{Name: "b", Power: power(40), Type: Normal},
		{Name: "c", Power: power(40), Type: Normal},
		{Name: "d", Power: power(40), Type: Normal},
	}
	assert.Equal(t, []string{"a", "b", "c"}, moveNames(TopMoves(moves, 3)))
}

func TestTopMoves_FewerThanNReturnsAll(t *testing.T) {
	moves := []Move{
		{Name: "tackle", Power: power(40), Type: Normal},
		{Name: "tail-whip", Type: Normal},
	}
	assert.Equal(t, []string{"tackle"}, moveNames(TopMoves(moves, 3)))
}

func TestTopMoves_NonPositiveN(t *testing.T) {
	moves := []Move{{Name: "tackle", Power: power(40), Type: Normal}}
	assert.Empty(t, TopMoves(moves, 0))
	assert.Empty(t, TopMoves(moves, -2))
	assert.NotNil(t, TopMoves(nil, 3))
}

func TestTopMoves_DoesNotModifyInput(t *testing.T) {
	moves := []Move{
		{Name: "weak", Power: power(10), Type: Normal},
		{Name: "strong", Power: power(100), Type: Normal},
	}
	_ = TopMoves(moves, 2)
	assert.Equal(t, "weak", moves[0].Name)
}

func TestMoveString(t *testing.T) {
	assert.Equal(t, "ember [fire] (Power: 40)", Move{Name: "ember", Power: power(40), Type: Fire}.String())
	assert.Equal(t, "growl [normal]", Move{Name: "growl", Type: Normal}.String())
}

func moveNames(moves []Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.Name)
	}
	return out
}

// Property: TopMoves never exceeds n, never includes status moves, and is
// sorted by power descending.
func TestPropertyTopMovesBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(-1, 6).Draw(t, "n")
		count := rapid.IntRange(0, 12).Draw(t, "count")
		moves := make([]Move, 0, count)
		for i := 0; i < count; i++ {
			m := Move{Name: "m", Type: Normal}
			if rapid.Bool().Draw(t, "damaging") {
				m.Power = power(rapid.IntRange(0, 250).Draw(t, "power"))
			}
			moves = append(moves, m)
		}
		got := TopMoves(moves, n)
		if n >= 0 && len(got) > n {
			t.Fatalf("got %d moves for n=%d", len(got), n)
		}
		for i, m := range got {
			if m.Power == nil {
				t.Fatalf("status move returned at %d", i)
			}
			if i > 0 && *got[i-1].Power < *m.Power {
				t.Fatalf("not sorted at %d", i)
			}
		}
	})
}
