// Package dex answers Pokédex questions on top of the PokéAPI client:
// lookups with neighbours, filtered search, and random regional encounters.
package dex

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/pokebattle/internal/pokeapi"
	"github.com/cory-johannsen/pokebattle/internal/pokemon"
	"github.com/cory-johannsen/pokebattle/internal/random"
)

// ErrInvalidQuery is returned for malformed search parameters.
var ErrInvalidQuery = errors.New("invalid query")

// Source is the upstream subset the Dex needs. *pokeapi.Client satisfies it.
type Source interface {
	FetchProfile(ctx context.Context, nameOrID string) (pokemon.Profile, error)
	ListPokemon(ctx context.Context, offset, limit int) (pokeapi.Page, error)
	PokemonByType(ctx context.Context, typeName string) ([]pokeapi.NamedResource, error)
	PokemonByAbility(ctx context.Context, ability string) ([]pokeapi.NamedResource, error)
	Evolutions(ctx context.Context, nameOrID string) ([]pokeapi.NamedResource, error)
}

// Entry is one search or listing hit.
type Entry struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Detail is a looked-up Pokémon with navigation ids and its evolution
// family. Zero PrevID or NextID means there is no neighbour.
type Detail struct {
	pokemon.Profile
	DisplayName string  `json:"display_name"`
	PrevID      int     `json:"prev_id,omitempty"`
	NextID      int     `json:"next_id,omitempty"`
	Evolutions  []Entry `json:"evolutions"`
}

// Query filters a search. Empty fields do not filter.
type Query struct {
	Type    string
	Ability string
	Region  string
	MinID   int
	MaxID   int
}

// Dex serves lookups, searches, and encounters.
type Dex struct {
	src    Source
	rng    random.Source
	logger *zap.Logger
}

// New creates a Dex.
//
// Precondition: src, rng and logger must be non-nil.
func New(src Source, rng random.Source, logger *zap.Logger) *Dex {
	return &Dex{src: src, rng: rng, logger: logger}
}

// DisplayName turns a PokéAPI slug such as "mr-mime" into "Mr Mime".
func DisplayName(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}

func newEntry(r pokeapi.NamedResource) Entry {
	return Entry{ID: r.ID(), Name: r.Name, DisplayName: DisplayName(r.Name)}
}

// Lookup fetches one Pokémon's enriched profile and, concurrently, its
// evolution family. A failed evolution lookup is logged and leaves
// Evolutions empty; it never fails the lookup.
//
// Postcondition: Profile failures are returned unchanged. Evolutions is
// non-nil and ordered by id.
func (d *Dex) Lookup(ctx context.Context, nameOrID string) (Detail, error) {
	var (
		p     pokemon.Profile
		chain []pokeapi.NamedResource
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p, err = d.src.FetchProfile(gctx, nameOrID)
		return err
	})
	g.Go(func() error {
		var err error
		chain, err = d.src.Evolutions(gctx, nameOrID)
		if err != nil && gctx.Err() == nil {
			d.logger.Warn("evolution lookup failed", zap.String("pokemon", nameOrID), zap.Error(err))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Detail{}, err
	}

	evolutions := make([]Entry, 0, len(chain))
	for _, r := range chain {
		evolutions = append(evolutions, newEntry(r))
	}
	prev, next := pokemon.AdjacentIDs(p.ID)
	return Detail{
		Profile:     p,
		DisplayName: DisplayName(p.Name),
		PrevID:      prev,
		NextID:      next,
		Evolutions:  evolutions,
	}, nil
}

// List returns one page of the national dex and the total count.
//
// Precondition: offset >= 0; 0 < limit.
func (d *Dex) List(ctx context.Context, offset, limit int) ([]Entry, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("%w: offset %d limit %d", ErrInvalidQuery, offset, limit)
	}
	page, err := d.src.ListPokemon(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Entry, 0, len(page.Results))
	for _, r := range page.Results {
		out = append(out, newEntry(r))
	}
	return out, page.Count, nil
}

// bounds resolves the id window of q.
func (q Query) bounds() (lo, hi int, err error) {
	lo, hi = 1, pokemon.MaxNationalID
	if q.Region != "" {
		r, err := pokemon.ParseRegion(q.Region)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		lo, hi = r.Range()
	}
	if q.MinID > 0 {
		lo = max(lo, q.MinID)
	}
	if q.MaxID > 0 {
		hi = min(hi, q.MaxID)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("%w: empty id range %d-%d", ErrInvalidQuery, lo, hi)
	}
	return lo, hi, nil
}

// Search returns the Pokémon matching every filter in q, ordered by id.
// Type and ability listings are fetched concurrently and intersected.
//
// Postcondition: Every entry's id lies in the query's window. Returns a
// non-nil slice on success.
func (d *Dex) Search(ctx context.Context, q Query) ([]Entry, error) {
	lo, hi, err := q.bounds()
	if err != nil {
		return nil, err
	}
	if q.Type != "" {
		if _, err := pokemon.ParseType(q.Type); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
	}

	if q.Type == "" && q.Ability == "" {
		entries, _, err := d.List(ctx, lo-1, hi-lo+1)
		if err != nil {
			return nil, err
		}
		return filterRange(entries, lo, hi), nil
	}

	var byType, byAbility []pokeapi.NamedResource
	g, gctx := errgroup.WithContext(ctx)
	if q.Type != "" {
		g.Go(func() (err error) {
			byType, err = d.src.PokemonByType(gctx, q.Type)
			return err
		})
	}
	if q.Ability != "" {
		g.Go(func() (err error) {
			byAbility, err = d.src.PokemonByAbility(gctx, q.Ability)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var candidates []pokeapi.NamedResource
	switch {
	case q.Type != "" && q.Ability != "":
		keep := make(map[string]bool, len(byAbility))
		for _, r := range byAbility {
			keep[r.Name] = true
		}
		for _, r := range byType {
			if keep[r.Name] {
				candidates = append(candidates, r)
			}
		}
	case q.Type != "":
		candidates = byType
	default:
		candidates = byAbility
	}

	entries := make([]Entry, 0, len(candidates))
	for _, r := range candidates {
		entries = append(entries, newEntry(r))
	}
	out := filterRange(entries, lo, hi)
	d.logger.Debug("search",
		zap.String("type", q.Type),
		zap.String("ability", q.Ability),
		zap.Int("lo", lo),
		zap.Int("hi", hi),
		zap.Int("hits", len(out)),
	)
	return out, nil
}

func filterRange(entries []Entry, lo, hi int) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID >= lo && e.ID <= hi {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b Entry) int { return a.ID - b.ID })
	return out
}

// Encounter fetches a uniformly random Pokémon from region.
//
// Postcondition: The returned profile's id lies within the region's range.
func (d *Dex) Encounter(ctx context.Context, region string) (Detail, error) {
	r, err := pokemon.ParseRegion(region)
	if err != nil {
		return Detail{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	lo, hi := r.Range()
	id := random.Between(d.rng, lo, hi)
	d.logger.Debug("encounter", zap.String("region", string(r)), zap.Int("id", id))
	return d.Lookup(ctx, fmt.Sprint(id))
}
