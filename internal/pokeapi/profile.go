package pokeapi

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/pokebattle/internal/pokemon"
)

// ToProfile converts a Pokémon record and its resolved moves into an
// enriched profile.
//
// Postcondition: An unknown type name yields *UpstreamDataError wrapping
// pokemon.ErrUnknownType. Unrecognised stat names are skipped.
func ToProfile(rec PokemonRecord, moves []MoveRecord) (pokemon.Profile, error) {
	resource := "pokemon/" + rec.Name
	if rec.Name == "" {
		return pokemon.Profile{}, &UpstreamDataError{Resource: "pokemon", Err: errors.New("record has no name")}
	}

	typeNames := make([]string, 0, len(rec.Types))
	for _, t := range rec.Types {
		typeNames = append(typeNames, t.Type.Name)
	}
	types, err := pokemon.ParseTypes(typeNames)
	if err != nil {
		return pokemon.Profile{}, &UpstreamDataError{Resource: resource, Err: err}
	}

	abilities := make([]string, 0, len(rec.Abilities))
	for _, a := range rec.Abilities {
		abilities = append(abilities, a.Ability.Name)
	}

	stats := make(pokemon.Stats, len(rec.Stats))
	for _, s := range rec.Stats {
		name, err := pokemon.ParseStatName(s.Stat.Name)
		if err != nil {
			continue
		}
		stats[name] = s.BaseStat
	}

	converted := make([]pokemon.Move, 0, len(moves))
	for _, m := range moves {
		mt, err := pokemon.ParseType(m.Type.Name)
		if err != nil {
			return pokemon.Profile{}, &UpstreamDataError{Resource: "move/" + m.Name, Err: err}
		}
		converted = append(converted, pokemon.Move{Name: m.Name, Power: m.Power, Type: mt})
	}

	return pokemon.Profile{
		Name:      rec.Name,
		ID:        rec.ID,
		Types:     types,
		Abilities: abilities,
		Stats:     stats,
		Moves:     converted,
		Height:    rec.Height,
		Weight:    rec.Weight,
		Sprite:    rec.SpriteURL(),
	}.Enrich(), nil
}

// GetMoves resolves refs concurrently, at most maxParallel at a time.
//
// Postcondition: The result is in refs order. Any failure cancels the rest
// and is returned.
func (c *Client) GetMoves(ctx context.Context, refs []NamedResource) ([]MoveRecord, error) {
	out := make([]MoveRecord, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxParallel)
	for i, ref := range refs {
		g.Go(func() error {
			m, err := c.GetMove(gctx, ref.Name)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchProfile fetches a Pokémon and its first move_limit moves and returns
// the enriched profile.
//
// Postcondition: On success the profile is enriched. Upstream failures are
// returned as *UpstreamDataError.
func (c *Client) FetchProfile(ctx context.Context, nameOrID string) (pokemon.Profile, error) {
	rec, err := c.GetPokemon(ctx, nameOrID)
	if err != nil {
		return pokemon.Profile{}, err
	}

	refs := make([]NamedResource, 0, c.moveLimit)
	for _, m := range rec.Moves {
		if len(refs) == c.moveLimit {
			break
		}
		refs = append(refs, m.Move)
	}
	moves, err := c.GetMoves(ctx, refs)
	if err != nil {
		return pokemon.Profile{}, fmt.Errorf("resolving moves of %s: %w", rec.Name, err)
	}
	return ToProfile(rec, moves)
}
