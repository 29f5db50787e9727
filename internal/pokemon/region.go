package pokemon

import (
	"errors"
	"fmt"
	"strings"
)

// MaxNationalID is the highest national Pokédex number the service knows about.
const MaxNationalID = 1025

// Region is a game region with a contiguous national Pokédex range.
type Region string

// Known regions.
const (
	Kanto  Region = "kanto"
	Johto  Region = "johto"
	Hoenn  Region = "hoenn"
	Sinnoh Region = "sinnoh"
	Unova  Region = "unova"
	Kalos  Region = "kalos"
	Alola  Region = "alola"
	Galar  Region = "galar"
	Paldea Region = "paldea"
)

// ErrUnknownRegion is returned for a region name outside the known set.
var ErrUnknownRegion = errors.New("unknown region")

var regionRanges = map[Region][2]int{
	Kanto:  {1, 151},
	Johto:  {152, 251},
	Hoenn:  {252, 386},
	Sinnoh: {387, 493},
	Unova:  {494, 649},
	Kalos:  {650, 721},
	Alola:  {722, 809},
	Galar:  {810, 898},
	Paldea: {899, 1025},
}

// ParseRegion validates a region name (case-insensitive).
func ParseRegion(name string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := regionRanges[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRegion, name)
	}
	return r, nil
}

// Range returns the inclusive national Pokédex id range of r.
//
// Precondition: r came from ParseRegion or is one of the Region constants.
func (r Region) Range() (lo, hi int) {
	rg := regionRanges[r]
	return rg[0], rg[1]
}

// Contains reports whether national id falls inside r.
func (r Region) Contains(id int) bool {
	lo, hi := r.Range()
	return id >= lo && id <= hi
}

// AdjacentIDs returns the previous and next national ids around id; zero
// means there is no neighbour in that direction.
func AdjacentIDs(id int) (prev, next int) {
	if id > 1 {
		prev = id - 1
	}
	if id < MaxNationalID {
		next = id + 1
	}
	return prev, next
}
