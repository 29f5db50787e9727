package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Starter national ids offered to a new player.
const (
	StarterBulbasaur  = 1
	StarterCharmander = 4
	StarterSquirtle   = 7
)

// ValidStarter reports whether id is one of the offered starters.
func ValidStarter(id int) bool {
	switch id {
	case StarterBulbasaur, StarterCharmander, StarterSquirtle:
		return true
	}
	return false
}

// OwnedPokemon is one Pokémon in a user's collection.
type OwnedPokemon struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	PokemonID int       `json:"pokemon_id"`
	Nickname  string    `json:"nickname"`
	CaughtAt  time.Time `json:"caught_at"`
}

// CollectionRepository persists users' owned Pokémon.
type CollectionRepository struct {
	db *pgxpool.Pool
}

// NewCollectionRepository creates a CollectionRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCollectionRepository(db *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertOwned(ctx context.Context, q querier, userID uuid.UUID, pokemonID int, nickname string) (OwnedPokemon, error) {
	var o OwnedPokemon
	err := q.QueryRow(ctx,
		`INSERT INTO user_pokemons (user_id, pokemon_id, nickname)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, pokemon_id, nickname, caught_at`,
		userID, pokemonID, strings.TrimSpace(nickname),
	).Scan(&o.ID, &o.UserID, &o.PokemonID, &o.Nickname, &o.CaughtAt)
	if err != nil {
		if isForeignKeyError(err) {
			return OwnedPokemon{}, ErrUserNotFound
		}
		return OwnedPokemon{}, storeErr("insert owned pokemon", err)
	}
	return o, nil
}

// Add records that userID now owns pokemonID.
//
// Precondition: pokemonID > 0; nickname must be non-blank.
// Postcondition: Returns the stored row, or ErrUserNotFound.
func (r *CollectionRepository) Add(ctx context.Context, userID uuid.UUID, pokemonID int, nickname string) (OwnedPokemon, error) {
	return insertOwned(ctx, r.db, userID, pokemonID, nickname)
}

// List returns the user's collection, oldest first.
//
// Postcondition: Returns a non-nil slice.
func (r *CollectionRepository) List(ctx context.Context, userID uuid.UUID) ([]OwnedPokemon, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, pokemon_id, nickname, caught_at
		 FROM user_pokemons WHERE user_id = $1
		 ORDER BY caught_at, id`,
		userID,
	)
	if err != nil {
		return nil, storeErr("list owned pokemon", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (OwnedPokemon, error) {
		var o OwnedPokemon
		err := row.Scan(&o.ID, &o.UserID, &o.PokemonID, &o.Nickname, &o.CaughtAt)
		return o, err
	})
	if err != nil {
		return nil, storeErr("scan owned pokemon", err)
	}
	if out == nil {
		out = []OwnedPokemon{}
	}
	return out, nil
}

// Get returns one owned Pokémon if it belongs to userID.
//
// Postcondition: Returns ErrOwnedNotFound when no such row belongs to the user.
func (r *CollectionRepository) Get(ctx context.Context, userID uuid.UUID, id int64) (OwnedPokemon, error) {
	var o OwnedPokemon
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, pokemon_id, nickname, caught_at
		 FROM user_pokemons WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&o.ID, &o.UserID, &o.PokemonID, &o.Nickname, &o.CaughtAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OwnedPokemon{}, ErrOwnedNotFound
		}
		return OwnedPokemon{}, storeErr("query owned pokemon", err)
	}
	return o, nil
}

// ChooseStarter gives the user their first Pokémon. The user row is locked
// so two concurrent requests cannot both succeed.
//
// Precondition: ValidStarter(pokemonID).
// Postcondition: Returns the stored row, ErrInvalidStarter, ErrUserNotFound,
// or ErrStarterTaken if the collection was not empty.
func (r *CollectionRepository) ChooseStarter(ctx context.Context, userID uuid.UUID, pokemonID int, nickname string) (OwnedPokemon, error) {
	if !ValidStarter(pokemonID) {
		return OwnedPokemon{}, ErrInvalidStarter
	}
	var owned OwnedPokemon
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return storeErr("lock user", err)
		}
		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM user_pokemons WHERE user_id = $1`, userID).Scan(&count); err != nil {
			return storeErr("count owned pokemon", err)
		}
		if count > 0 {
			return ErrStarterTaken
		}
		o, err := insertOwned(ctx, tx, userID, pokemonID, nickname)
		if err != nil {
			return err
		}
		owned = o
		return nil
	})
	if err != nil {
		return OwnedPokemon{}, err
	}
	return owned, nil
}
