// Package pokemon holds the battle-relevant model of a Pokémon: the closed
// set of elemental types and their interaction chart, base stats and the
// stat score, move selection, and the derived Profile fed to adjudication.
//
// Everything in this package is pure; no function performs I/O.
package pokemon

import (
	"errors"
	"fmt"
	"strings"
)

// Type is one of the 18 elemental types.
type Type uint8

// The 18 elemental types, in canonical chart order.
const (
	Normal Type = iota
	Fire
	Water
	Electric
	Grass
	Ice
	Fighting
	Poison
	Ground
	Flying
	Psychic
	Bug
	Rock
	Ghost
	Dragon
	Dark
	Steel
	Fairy

	numTypes
)

// ErrUnknownType is returned when a type name is not one of the 18 known types.
var ErrUnknownType = errors.New("unknown elemental type")

var typeNames = [numTypes]string{
	Normal:   "normal",
	Fire:     "fire",
	Water:    "water",
	Electric: "electric",
	Grass:    "grass",
	Ice:      "ice",
	Fighting: "fighting",
	Poison:   "poison",
	Ground:   "ground",
	Flying:   "flying",
	Psychic:  "psychic",
	Bug:      "bug",
	Rock:     "rock",
	Ghost:    "ghost",
	Dragon:   "dragon",
	Dark:     "dark",
	Steel:    "steel",
	Fairy:    "fairy",
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, numTypes)
	for t := Type(0); t < numTypes; t++ {
		m[typeNames[t]] = t
	}
	return m
}()

// AllTypes returns every elemental type in canonical order.
//
// Postcondition: len(result) == 18; the caller owns the returned slice.
func AllTypes() []Type {
	out := make([]Type, 0, numTypes)
	for t := Type(0); t < numTypes; t++ {
		out = append(out, t)
	}
	return out
}

// ParseType converts a type name (case-insensitive, surrounding space ignored)
// into a Type.
//
// Postcondition: Returns the Type, or an error wrapping ErrUnknownType.
func ParseType(name string) (Type, error) {
	t, ok := typesByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return t, nil
}

// ParseTypes converts every name in names, failing on the first unknown one.
func ParseTypes(names []string) ([]Type, error) {
	out := make([]Type, 0, len(names))
	for _, n := range names {
		t, err := ParseType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Valid reports whether t is one of the 18 known types.
func (t Type) Valid() bool { return t < numTypes }

// String returns the lower-case PokéAPI name of t.
func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return typeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TypeNames renders types as their names, preserving order.
func TypeNames(types []Type) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.String())
	}
	return out
}
