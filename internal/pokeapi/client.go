// Package pokeapi is a read-only client for the PokéAPI REST service and the
// conversion of its records into battle profiles.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokebattle/internal/config"
)

// ErrNotFound is wrapped by UpstreamDataError when PokéAPI answers 404.
var ErrNotFound = errors.New("resource not found")

// UpstreamDataError reports a failed or unusable PokéAPI response.
type UpstreamDataError struct {
	// Resource is the request path, e.g. "pokemon/pikachu".
	Resource string
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	Err        error
}

func (e *UpstreamDataError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("pokeapi %s: status %d: %v", e.Resource, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("pokeapi %s: %v", e.Resource, e.Err)
}

func (e *UpstreamDataError) Unwrap() error { return e.Err }

// maxBodyBytes caps how much of a response body is decoded.
const maxBodyBytes = 8 << 20

// Client issues GET requests against a PokéAPI base URL.
type Client struct {
	base        string
	http        *http.Client
	moveLimit   int
	maxParallel int
	logger      *zap.Logger
}

// NewClient creates a Client from cfg.
//
// Precondition: cfg.BaseURL must be an absolute URL; logger must be non-nil.
func NewClient(cfg config.PokeAPIConfig, logger *zap.Logger) *Client {
	maxParallel := max(cfg.MaxParallel, 1)
	return &Client{
		base:        cfg.BaseURL,
		http:        &http.Client{Timeout: cfg.Timeout},
		moveLimit:   max(cfg.MoveLimit, 0),
		maxParallel: maxParallel,
		logger:      logger,
	}
}

// Slug turns user input into a PokéAPI path segment: trimmed, lower-case,
// with inner spaces as hyphens.
func Slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

func (c *Client) getJSON(ctx context.Context, resource string, query url.Values, out any) error {
	u, err := url.JoinPath(c.base, strings.Split(resource, "/")...)
	if err != nil {
		return &UpstreamDataError{Resource: resource, Err: err}
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &UpstreamDataError{Resource: resource, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamDataError{Resource: resource, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("pokeapi request",
		zap.String("resource", resource),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &UpstreamDataError{Resource: resource, StatusCode: resp.StatusCode, Err: ErrNotFound}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &UpstreamDataError{Resource: resource, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return &UpstreamDataError{Resource: resource, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding body: %w", err)}
	}
	return nil
}

// GetPokemon fetches one Pokémon by name or national-dex id.
//
// Precondition: nameOrID must be non-blank.
// Postcondition: A 404 yields an error matching ErrNotFound.
func (c *Client) GetPokemon(ctx context.Context, nameOrID string) (PokemonRecord, error) {
	slug := Slug(nameOrID)
	if slug == "" {
		return PokemonRecord{}, &UpstreamDataError{Resource: "pokemon", Err: ErrNotFound}
	}
	var rec PokemonRecord
	if err := c.getJSON(ctx, "pokemon/"+slug, nil, &rec); err != nil {
		return PokemonRecord{}, err
	}
	return rec, nil
}

// GetMove fetches one move by name or id.
func (c *Client) GetMove(ctx context.Context, nameOrID string) (MoveRecord, error) {
	var rec MoveRecord
	if err := c.getJSON(ctx, "move/"+Slug(nameOrID), nil, &rec); err != nil {
		return MoveRecord{}, err
	}
	return rec, nil
}

// ListPokemon fetches one page of the national dex.
//
// Precondition: offset >= 0; limit > 0.
func (c *Client) ListPokemon(ctx context.Context, offset, limit int) (Page, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	var page Page
	if err := c.getJSON(ctx, "pokemon", q, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// PokemonByType lists every Pokémon having the named type.
func (c *Client) PokemonByType(ctx context.Context, typeName string) ([]NamedResource, error) {
	var rec TypeRecord
	if err := c.getJSON(ctx, "type/"+Slug(typeName), nil, &rec); err != nil {
		return nil, err
	}
	out := make([]NamedResource, 0, len(rec.Pokemon))
	for _, p := range rec.Pokemon {
		out = append(out, p.Pokemon)
	}
	return out, nil
}

// PokemonByAbility lists every Pokémon that can have the named ability.
func (c *Client) PokemonByAbility(ctx context.Context, ability string) ([]NamedResource, error) {
	var rec AbilityRecord
	if err := c.getJSON(ctx, "ability/"+Slug(ability), nil, &rec); err != nil {
		return nil, err
	}
	out := make([]NamedResource, 0, len(rec.Pokemon))
	for _, p := range rec.Pokemon {
		out = append(out, p.Pokemon)
	}
	return out, nil
}

// GetSpecies fetches the species entry of a Pokémon by name or id.
func (c *Client) GetSpecies(ctx context.Context, nameOrID string) (SpeciesRecord, error) {
	var rec SpeciesRecord
	if err := c.getJSON(ctx, "pokemon-species/"+Slug(nameOrID), nil, &rec); err != nil {
		return SpeciesRecord{}, err
	}
	return rec, nil
}

// GetEvolutionChain fetches one evolution chain by id.
func (c *Client) GetEvolutionChain(ctx context.Context, id int) (EvolutionChainRecord, error) {
	var rec EvolutionChainRecord
	if err := c.getJSON(ctx, "evolution-chain/"+strconv.Itoa(id), nil, &rec); err != nil {
		return EvolutionChainRecord{}, err
	}
	return rec, nil
}

// Evolutions resolves the species of nameOrID and returns its whole
// evolution family ordered by id.
//
// Postcondition: A species without a chain yields an empty, non-nil slice.
func (c *Client) Evolutions(ctx context.Context, nameOrID string) ([]NamedResource, error) {
	species, err := c.GetSpecies(ctx, nameOrID)
	if err != nil {
		return nil, err
	}
	chainID := NamedResource{URL: species.EvolutionChain.URL}.ID()
	if chainID == 0 {
		return []NamedResource{}, nil
	}
	chain, err := c.GetEvolutionChain(ctx, chainID)
	if err != nil {
		return nil, err
	}
	out := chain.Chain.Flatten()
	if out == nil {
		out = []NamedResource{}
	}
	return out, nil
}
