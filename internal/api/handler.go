// Package api exposes the battle service as a JSON HTTP API routed with
// gorilla/mux.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokebattle/internal/battle"
	"github.com/cory-johannsen/pokebattle/internal/dex"
	"github.com/cory-johannsen/pokebattle/internal/observability"
	"github.com/cory-johannsen/pokebattle/internal/quiz"
	"github.com/cory-johannsen/pokebattle/internal/storage/postgres"
)

// maxBodyBytes caps a request body.
const maxBodyBytes = 64 << 10

// Pokedex is the lookup and search surface.
type Pokedex interface {
	Lookup(ctx context.Context, nameOrID string) (dex.Detail, error)
	List(ctx context.Context, offset, limit int) ([]dex.Entry, int, error)
	Search(ctx context.Context, q dex.Query) ([]dex.Entry, error)
	Encounter(ctx context.Context, region string) (dex.Detail, error)
}

// Battler fetches contestants and adjudicates.
type Battler interface {
	Fight(ctx context.Context, nameA, nameB string) (battle.Bout, error)
}

// Users is the account store.
type Users interface {
	Create(ctx context.Context, email, password string) (postgres.User, error)
	Authenticate(ctx context.Context, email, password string) (postgres.User, error)
	Get(ctx context.Context, id uuid.UUID) (postgres.User, error)
}

// Collection is the owned-Pokémon store.
type Collection interface {
	Add(ctx context.Context, userID uuid.UUID, pokemonID int, nickname string) (postgres.OwnedPokemon, error)
	List(ctx context.Context, userID uuid.UUID) ([]postgres.OwnedPokemon, error)
	Get(ctx context.Context, userID uuid.UUID, id int64) (postgres.OwnedPokemon, error)
	ChooseStarter(ctx context.Context, userID uuid.UUID, pokemonID int, nickname string) (postgres.OwnedPokemon, error)
}

// Quiz draws and settles questions.
type Quiz interface {
	Next(d quiz.Difficulty, exclude []string) (quiz.Prompt, error)
	Answer(ctx context.Context, userID uuid.UUID, d quiz.Difficulty, id, choice string) (quiz.Outcome, error)
}

// HealthChecker reports whether the record store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler serves every API route.
type Handler struct {
	dex        Pokedex
	battles    Battler
	users      Users
	collection Collection
	quiz       Quiz
	health     HealthChecker
	tickets    *TicketLedger
	pending    *pendingBattles
	logger     *zap.Logger
}

// Deps groups the collaborators of a Handler.
type Deps struct {
	Dex        Pokedex
	Battles    Battler
	Users      Users
	Collection Collection
	Quiz       Quiz
	// Health may be nil, in which case /api/healthz always succeeds.
	Health  HealthChecker
	Tickets *TicketLedger
}

// NewHandler creates a Handler.
//
// Precondition: every Deps field except Health must be non-nil; logger must be non-nil.
func NewHandler(d Deps, logger *zap.Logger) *Handler {
	return &Handler{
		dex:        d.Dex,
		battles:    d.Battles,
		users:      d.Users,
		collection: d.Collection,
		quiz:       d.Quiz,
		health:     d.Health,
		tickets:    d.Tickets,
		pending:    newPendingBattles(),
		logger:     logger,
	}
}

// Router builds the mux router with request logging.
//
// Postcondition: Returns a router serving every /api route.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(observability.RequestLogger(h.logger))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)

	api.HandleFunc("/pokemon", h.listPokemon).Methods(http.MethodGet)
	api.HandleFunc("/pokemon/{name}", h.getPokemon).Methods(http.MethodGet)
	api.HandleFunc("/search", h.search).Methods(http.MethodGet)
	api.HandleFunc("/encounters", h.encounter).Methods(http.MethodGet)
	api.HandleFunc("/battles", h.createBattle).Methods(http.MethodPost)

	api.HandleFunc("/auth/signup", h.signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", h.signin).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", h.getUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/pokemons", h.listOwned).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/pokemons", h.catch).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/starter", h.chooseStarter).Methods(http.MethodPost)

	api.HandleFunc("/quiz", h.nextQuestion).Methods(http.MethodGet)
	api.HandleFunc("/quiz/answer", h.answerQuestion).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Health(r.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding body: %v", ErrBadRequest, err)
	}
	return nil
}

func pathUserID(r *http.Request) (uuid.UUID, error) {
	return parseUserID(mux.Vars(r)["id"])
}

func parseUserID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: user id %q", ErrBadRequest, s)
	}
	return id, nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrBadRequest, key)
	}
	return n, nil
}

// requireName rejects a blank Pokémon name.
func requireName(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", ErrBadRequest, field)
	}
	return nil
}
