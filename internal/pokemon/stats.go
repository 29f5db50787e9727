package pokemon

import (
	"errors"
	"fmt"
	"strings"
)

// StatName identifies one of the six base stats.
type StatName string

// The six recognised base stats, named as PokéAPI names them.
const (
	HP             StatName = "hp"
	Attack         StatName = "attack"
	Defense        StatName = "defense"
	SpecialAttack  StatName = "special-attack"
	SpecialDefense StatName = "special-defense"
	Speed          StatName = "speed"
)

// StatOrder is the canonical display order of the base stats.
var StatOrder = []StatName{HP, Attack, Defense, SpecialAttack, SpecialDefense, Speed}

// ErrUnknownStat is returned when a stat name is not one of the six base stats.
var ErrUnknownStat = errors.New("unknown stat")

// statWeight holds the normalisation ceiling and score weight of one stat.
type statWeight struct {
	ceiling float64
	weight  float64
}

// scoreWeights sum to 1.0 so a maxed-out profile scores exactly 100.
var scoreWeights = map[StatName]statWeight{
	HP:             {ceiling: 200, weight: 0.15},
	Attack:         {ceiling: 150, weight: 0.15},
	Defense:        {ceiling: 150, weight: 0.15},
	SpecialAttack:  {ceiling: 150, weight: 0.15},
	SpecialDefense: {ceiling: 150, weight: 0.15},
	Speed:          {ceiling: 150, weight: 0.25},
}

// ParseStatName validates a stat name.
//
// Postcondition: Returns the StatName, or an error wrapping ErrUnknownStat.
func ParseStatName(name string) (StatName, error) {
	s := StatName(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := scoreWeights[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStat, name)
	}
	return s, nil
}

// Stats maps a stat name to its base value. A map key can only occur once,
// so a Stats value never holds two entries for the same stat.
type Stats map[StatName]int

// Total returns the sum of all recognised base stats.
func (s Stats) Total() int {
	total := 0
	for _, name := range StatOrder {
		total += s[name]
	}
	return total
}

// Score condenses the six base stats into a single weighted value in [0, 100].
//
// Each recognised stat is divided by its ceiling (hp 200, others 150) and
// capped at 1, then weighted (speed 0.25, others 0.15). Unknown stat names
// are ignored and missing ones contribute nothing. Negative values count as 0.
//
// Postcondition: 0 <= result <= 100.
func Score(stats Stats) float64 {
	total := 0.0
	for _, name := range StatOrder {
		value, w := stats[name], scoreWeights[name]
		if value <= 0 {
			continue
		}
		normalized := float64(value) / w.ceiling
		if normalized > 1 {
			normalized = 1
		}
		total += normalized * w.weight
	}
	return total * 100
}
