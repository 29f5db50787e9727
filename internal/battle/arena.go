package battle

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/pokebattle/internal/pokemon"
)

// ProfileSource resolves a Pokémon name or id into a profile.
type ProfileSource interface {
	FetchProfile(ctx context.Context, nameOrID string) (pokemon.Profile, error)
}

// Bout is a fully resolved battle: both enriched contestants and the outcome.
type Bout struct {
	A      pokemon.Profile `json:"a"`
	B      pokemon.Profile `json:"b"`
	Result Result          `json:"result"`
}

// Arena fetches contestants by name and runs them through an Adjudicator.
type Arena struct {
	source ProfileSource
	judge  *Adjudicator
	logger *zap.Logger
}

// NewArena creates an Arena.
//
// Precondition: source, judge and logger must be non-nil.
func NewArena(source ProfileSource, judge *Adjudicator, logger *zap.Logger) *Arena {
	return &Arena{source: source, judge: judge, logger: logger}
}

// Fetch resolves one contestant and enriches it.
func (a *Arena) Fetch(ctx context.Context, name string) (pokemon.Profile, error) {
	p, err := a.source.FetchProfile(ctx, name)
	if err != nil {
		return pokemon.Profile{}, fmt.Errorf("fetching %q: %w", name, err)
	}
	return p.Enrich(), nil
}

// Fight fetches both contestants concurrently, enriches them and adjudicates.
//
// Postcondition: On success both Bout profiles are enriched. A fetch failure
// is returned as is; an adjudication failure as *AdjudicationError.
func (a *Arena) Fight(ctx context.Context, nameA, nameB string) (Bout, error) {
	var pa, pb pokemon.Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pa, err = a.Fetch(gctx, nameA)
		return err
	})
	g.Go(func() (err error) {
		pb, err = a.Fetch(gctx, nameB)
		return err
	})
	if err := g.Wait(); err != nil {
		a.logger.Warn("fetching contestants failed", zap.Error(err))
		return Bout{}, err
	}

	res, err := a.judge.Adjudicate(ctx, pa, pb)
	if err != nil {
		return Bout{}, err
	}
	return Bout{A: pa, B: pb, Result: res}, nil
}

// Judge runs already-fetched profiles through the Adjudicator after enriching them.
func (a *Arena) Judge(ctx context.Context, pa, pb pokemon.Profile) (Bout, error) {
	pa, pb = pa.Enrich(), pb.Enrich()
	res, err := a.judge.Adjudicate(ctx, pa, pb)
	if err != nil {
		return Bout{}, err
	}
	return Bout{A: pa, B: pb, Result: res}, nil
}
