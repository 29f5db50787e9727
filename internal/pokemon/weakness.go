package pokemon

// weaknessThreshold is the combined multiplier at or above which an attacking
// type counts as a weakness.
const weaknessThreshold = 2.0

// distinct returns the valid types of types with duplicates removed, as a
// membership table. Invalid values are skipped.
func distinct(types []Type) [numTypes]bool {
	var seen [numTypes]bool
	for _, t := range types {
		if t.Valid() {
			seen[t] = true
		}
	}
	return seen
}

// multipliers computes one damage multiplier per attacking type against the
// combination of defending types.
//
// Resistances and weaknesses of every own type are folded in first;
// immunities are applied last across all own types and always win.
func multipliers(types []Type) [numTypes]float64 {
	var m [numTypes]float64
	for i := range m {
		m[i] = 1.0
	}
	own := distinct(types)
	for t := Type(0); t < numTypes; t++ {
		if !own[t] {
			continue
		}
		for _, a := range chart[t].superEffective {
			m[a] *= 2
		}
		for _, a := range chart[t].notEffective {
			m[a] *= 0.5
		}
	}
	for t := Type(0); t < numTypes; t++ {
		if !own[t] {
			continue
		}
		for _, a := range chart[t].immune {
			m[a] = 0
		}
	}
	return m
}

// Effectiveness returns the combined damage multiplier of an attack of type
// attacker against a Pokémon with the given defending types.
//
// Postcondition: Returns one of 0, 0.25, 0.5, 1, 2, 4; returns 1 for an
// invalid attacker.
func Effectiveness(attacker Type, defenders []Type) float64 {
	if !attacker.Valid() {
		return 1.0
	}
	return multipliers(defenders)[attacker]
}

// Weaknesses returns the attacking types that deal at least double damage to
// the given type combination, in canonical chart order.
//
// A weakness contributed by one own type is cancelled when another own type
// resists it or is immune to it. The result does not depend on the order of
// types, and duplicate entries in types count once.
//
// Postcondition: Returns a non-nil slice.
func Weaknesses(types []Type) []Type {
	m := multipliers(types)
	out := []Type{}
	for a := Type(0); a < numTypes; a++ {
		if m[a] >= weaknessThreshold {
			out = append(out, a)
		}
	}
	return out
}

// Strengths returns the defending types that at least one of types hits for
// double damage, in canonical chart order.
//
// Postcondition: Returns a non-nil slice.
func Strengths(types []Type) []Type {
	own := distinct(types)
	out := []Type{}
	for d := Type(0); d < numTypes; d++ {
		for _, a := range chart[d].superEffective {
			if own[a] {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
