package battle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/pokebattle/internal/pokemon"
)

// emptyList stands in for an empty sequence in a profile block.
const emptyList = "none"

// promptPreamble is the fixed instruction and worked example that precede
// every pair of profiles.
const promptPreamble = `Evaluate two Pokemon in a 1v1 battle. Consider their base stats, types, abilities, weaknesses, strengths, and their top 3 most powerful moves.

Return only the winner's name in lowercase, or "tie" if it's an even match.
Do not explain. Respond with a single word only.

Examples:
---
Pokemon 1: charmander
Types: fire
Abilities: blaze
Weaknesses: water, ground, rock
Strengths: grass, ice, bug, steel
Stats: hp: 39, attack: 52, defense: 43, special-attack: 60, special-defense: 50, speed: 65
Moves: ember [fire] (Power: 40), scratch [normal] (Power: 40)

Pokemon 2: squirtle
Types: water
Abilities: torrent
Weaknesses: electric, grass
Strengths: fire, ground, rock
Stats: hp: 44, attack: 48, defense: 65, special-attack: 50, special-defense: 64, speed: 43
Moves: water-gun [water] (Power: 40), tackle [normal] (Power: 40)

Answer: squirtle

---
`

// BuildPrompt renders the adjudication prompt for a against b.
//
// Precondition: a and b should already be enriched; nil fields render as "none".
// Postcondition: The result contains the worked example followed by a's block,
// then b's block, and ends with "Answer:".
func BuildPrompt(a, b pokemon.Profile) string {
	var sb strings.Builder
	sb.WriteString(promptPreamble)
	writeBlock(&sb, 1, a)
	sb.WriteString("\n")
	writeBlock(&sb, 2, b)
	sb.WriteString("\nAnswer:")
	return sb.String()
}

// FormatBlock renders one profile as it appears in the prompt.
func FormatBlock(slot int, p pokemon.Profile) string {
	var sb strings.Builder
	writeBlock(&sb, slot, p)
	return sb.String()
}

func writeBlock(sb *strings.Builder, slot int, p pokemon.Profile) {
	p = p.Normalized()
	fmt.Fprintf(sb, "Pokemon %d: %s\n", slot, p.CanonicalName())
	fmt.Fprintf(sb, "Types: %s\n", joinList(pokemon.TypeNames(p.Types)))
	fmt.Fprintf(sb, "Abilities: %s\n", joinList(p.Abilities))
	fmt.Fprintf(sb, "Weaknesses: %s\n", joinList(pokemon.TypeNames(p.Weaknesses)))
	fmt.Fprintf(sb, "Strengths: %s\n", joinList(pokemon.TypeNames(p.Strengths)))
	fmt.Fprintf(sb, "Stats: %s\n", joinList(statPairs(p.Stats)))
	fmt.Fprintf(sb, "Moves: %s\n", joinList(moveStrings(p.TopMoves())))
}

func joinList(items []string) string {
	if len(items) == 0 {
		return emptyList
	}
	return strings.Join(items, ", ")
}

// statPairs lists the base stats in canonical order, followed by any
// unrecognised entries sorted by name.
func statPairs(stats pokemon.Stats) []string {
	out := make([]string, 0, len(stats))
	seen := make(map[pokemon.StatName]bool, len(pokemon.StatOrder))
	for _, name := range pokemon.StatOrder {
		seen[name] = true
		if v, ok := stats[name]; ok {
			out = append(out, fmt.Sprintf("%s: %d", name, v))
		}
	}
	var extra []pokemon.StatName
	for name := range stats {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	for _, name := range extra {
		out = append(out, fmt.Sprintf("%s: %d", name, stats[name]))
	}
	return out
}

func moveStrings(moves []pokemon.Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	return out
}
