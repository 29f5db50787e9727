package pokemon

import (
	"maps"
	"slices"
	"strings"
)

// Profile is the battle-relevant view of one Pokémon, built fresh from
// upstream data for each request and never persisted.
type Profile struct {
	Name      string   `json:"name"`
	ID        int      `json:"id"`
	Types     []Type   `json:"types"`
	Abilities []string `json:"abilities"`
	Stats     Stats    `json:"stats"`
	Moves     []Move   `json:"moves"`
	// Weaknesses and Strengths are nil until Enrich runs.
	Weaknesses []Type  `json:"weaknesses"`
	Strengths  []Type  `json:"strengths"`
	Score      float64 `json:"score"`
	// Height (decimetres), Weight (hectograms) and Sprite are display-only
	// and never reach the battle prompt.
	Height int    `json:"height,omitempty"`
	Weight int    `json:"weight,omitempty"`
	Sprite string `json:"sprite,omitempty"`
}

// CanonicalName returns the lower-cased, trimmed name used for matching.
func (p Profile) CanonicalName() string {
	return strings.ToLower(strings.TrimSpace(p.Name))
}

// Normalized returns a copy of p whose slice and map fields are non-nil and
// not shared with p.
func (p Profile) Normalized() Profile {
	out := p
	out.Types = cloneOrEmpty(p.Types)
	out.Abilities = cloneOrEmpty(p.Abilities)
	out.Moves = cloneOrEmpty(p.Moves)
	out.Weaknesses = cloneOrEmpty(p.Weaknesses)
	out.Strengths = cloneOrEmpty(p.Strengths)
	if p.Stats == nil {
		out.Stats = Stats{}
	} else {
		out.Stats = maps.Clone(p.Stats)
	}
	return out
}

// Enrich returns a normalised copy of p with Weaknesses, Strengths and Score
// derived from its types and stats. p itself is left untouched.
//
// Postcondition: result.Weaknesses == Weaknesses(p.Types);
// result.Score == Score(p.Stats).
func (p Profile) Enrich() Profile {
	out := p.Normalized()
	out.Weaknesses = Weaknesses(out.Types)
	out.Strengths = Strengths(out.Types)
	out.Score = Score(out.Stats)
	return out
}

// TopMoves returns the profile's PromptMoveCount strongest damaging moves.
func (p Profile) TopMoves() []Move {
	return TopMoves(p.Moves, PromptMoveCount)
}

func cloneOrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
