package pokemon

import (
	"fmt"
	"sort"
)

// PromptMoveCount is the number of moves shown per Pokémon in a battle prompt.
const PromptMoveCount = 3

// Move is one learnable move. A nil Power marks a status move.
type Move struct {
	Name  string `json:"name"`
	Power *int   `json:"power"`
	Type  Type   `json:"type"`
}

// Damaging reports whether m has a base power.
func (m Move) Damaging() bool { return m.Power != nil }

// String renders m as "name [type] (Power: N)", or "name [type]" for a status move.
func (m Move) String() string {
	if m.Power == nil {
		return fmt.Sprintf("%s [%s]", m.Name, m.Type)
	}
	return fmt.Sprintf("%s [%s] (Power: %d)", m.Name, m.Type, *m.Power)
}

// TopMoves returns up to n damaging moves ordered by power, strongest first.
// Status moves are left out. Moves of equal power keep their original order.
//
// Postcondition: len(result) <= max(n, 0); every returned move is Damaging;
// moves is not modified.
func TopMoves(moves []Move, n int) []Move {
	if n <= 0 {
		return []Move{}
	}
	damaging := make([]Move, 0, len(moves))
	for _, m := range moves {
		if m.Damaging() {
			damaging = append(damaging, m)
		}
	}
	sort.SliceStable(damaging, func(i, j int) bool {
		return *damaging[i].Power > *damaging[j].Power
	})
	if len(damaging) > n {
		damaging = damaging[:n]
	}
	return damaging
}
