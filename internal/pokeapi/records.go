package pokeapi

import (
	"slices"
	"strconv"
	"strings"
)

// NamedResource is PokéAPI's {name, url} reference to another resource.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ID parses the numeric id from the trailing path segment of URL.
//
// Postcondition: Returns 0 when the URL carries no numeric id.
func (r NamedResource) ID() int {
	trimmed := strings.TrimRight(r.URL, "/")
	i := strings.LastIndex(trimmed, "/")
	id, err := strconv.Atoi(trimmed[i+1:])
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// PokemonRecord is the subset of /pokemon/{name} the service reads.
type PokemonRecord struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Types []struct {
		Slot int           `json:"slot"`
		Type NamedResource `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability  NamedResource `json:"ability"`
		IsHidden bool          `json:"is_hidden"`
	} `json:"abilities"`
	Stats []struct {
		BaseStat int           `json:"base_stat"`
		Stat     NamedResource `json:"stat"`
	} `json:"stats"`
	Moves []struct {
		Move NamedResource `json:"move"`
	} `json:"moves"`
	// Height is in decimetres, Weight in hectograms.
	Height  int           `json:"height"`
	Weight  int           `json:"weight"`
	Species NamedResource `json:"species"`
	Sprites struct {
		FrontDefault *string `json:"front_default"`
		Other        struct {
			OfficialArtwork struct {
				FrontDefault *string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
}

// SpriteURL returns the official artwork, else the default front sprite,
// else "".
func (r PokemonRecord) SpriteURL() string {
	for _, u := range []*string{r.Sprites.Other.OfficialArtwork.FrontDefault, r.Sprites.FrontDefault} {
		if u != nil && *u != "" {
			return *u
		}
	}
	return ""
}

// MoveRecord is the subset of /move/{name} the service reads.
type MoveRecord struct {
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Power *int          `json:"power"`
	Type  NamedResource `json:"type"`
}

// Page is one page of a paginated listing.
type Page struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []NamedResource `json:"results"`
}

// TypeRecord is the subset of /type/{name} the service reads.
type TypeRecord struct {
	Name    string `json:"name"`
	Pokemon []struct {
		Pokemon NamedResource `json:"pokemon"`
	} `json:"pokemon"`
}

// AbilityRecord is the subset of /ability/{name} the service reads.
type AbilityRecord struct {
	Name    string `json:"name"`
	Pokemon []struct {
		Pokemon NamedResource `json:"pokemon"`
	} `json:"pokemon"`
}

// SpeciesRecord is the subset of /pokemon-species/{name} the service reads.
type SpeciesRecord struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
}

// ChainLink is one stage of an evolution chain and the stages it evolves into.
type ChainLink struct {
	Species   NamedResource `json:"species"`
	EvolvesTo []ChainLink   `json:"evolves_to"`
}

// EvolutionChainRecord is /evolution-chain/{id}.
type EvolutionChainRecord struct {
	ID    int       `json:"id"`
	Chain ChainLink `json:"chain"`
}

// Flatten lists every species in the chain ordered by national-dex id.
// Branches (eevee) are included side by side.
func (c ChainLink) Flatten() []NamedResource {
	var out []NamedResource
	var walk func(ChainLink)
	walk = func(l ChainLink) {
		if l.Species.Name != "" {
			out = append(out, l.Species)
		}
		for _, next := range l.EvolvesTo {
			walk(next)
		}
	}
	walk(c)
	slices.SortStableFunc(out, func(a, b NamedResource) int { return a.ID() - b.ID() })
	return out
}
