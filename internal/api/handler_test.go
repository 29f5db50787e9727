package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/pokebattle/internal/battle"
	"github.com/cory-johannsen/pokebattle/internal/dex"
	"github.com/cory-johannsen/pokebattle/internal/pokeapi"
	"github.com/cory-johannsen/pokebattle/internal/pokemon"
	"github.com/cory-johannsen/pokebattle/internal/quiz"
	"github.com/cory-johannsen/pokebattle/internal/storage/postgres"
)

type fakeDex struct {
	details map[string]dex.Detail
	lastQ   dex.Query
}

func (f *fakeDex) Lookup(_ context.Context, nameOrID string) (dex.Detail, error) {
	d, ok := f.details[nameOrID]
	if !ok {
		return dex.Detail{}, pokeapi.ErrNotFound
	}
	return d, nil
}

func (f *fakeDex) List(_ context.Context, offset, limit int) ([]dex.Entry, int, error) {
	out := []dex.Entry{}
	for i := offset + 1; i <= offset+limit; i++ {
		out = append(out, dex.Entry{ID: i, Name: "p" + strconv.Itoa(i)})
	}
	return out, pokemon.MaxNationalID, nil
}

func (f *fakeDex) Search(_ context.Context, q dex.Query) ([]dex.Entry, error) {
	f.lastQ = q
	return []dex.Entry{{ID: 25, Name: "pikachu", DisplayName: "Pikachu"}}, nil
}

func (f *fakeDex) Encounter(_ context.Context, region string) (dex.Detail, error) {
	if _, err := pokemon.ParseRegion(region); err != nil {
		return dex.Detail{}, err
	}
	return f.details["pikachu"], nil
}

// fakeBattler declares the contestant named winner the victor.
type fakeBattler struct {
	winner string
	err    error
	calls  []string
}

func (f *fakeBattler) Fight(_ context.Context, a, b string) (battle.Bout, error) {
	f.calls = append(f.calls, a+"/"+b)
	if f.err != nil {
		return battle.Bout{}, f.err
	}
	w := f.winner
	if w == "" {
		w = battle.Tie
	}
	bout := battle.Bout{
		A: pokemon.Profile{Name: a, ID: 1},
		B: pokemon.Profile{Name: b, ID: 74},
	}
	bout.Result = battle.Resolve(w, bout.A, bout.B)
	return bout, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]postgres.User
}

func (f *fakeUsers) Create(_ context.Context, email, password string) (postgres.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[email]; ok {
		return postgres.User{}, postgres.ErrUserExists
	}
	u := postgres.User{ID: uuid.New(), Email: email, PasswordHash: password}
	f.users[email] = u
	return u, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, email, password string) (postgres.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || u.PasswordHash != password {
		return postgres.User{}, postgres.ErrInvalidCredentials
	}
	return u, nil
}

func (f *fakeUsers) Get(_ context.Context, id uuid.UUID) (postgres.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return postgres.User{}, postgres.ErrUserNotFound
}

type fakeCollection struct {
	mu     sync.Mutex
	owned  []postgres.OwnedPokemon
	addErr error
}

func (f *fakeCollection) Add(_ context.Context, userID uuid.UUID, pokemonID int, nickname string) (postgres.OwnedPokemon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return postgres.OwnedPokemon{}, f.addErr
	}
	o := postgres.OwnedPokemon{ID: int64(len(f.owned) + 1), UserID: userID, PokemonID: pokemonID, Nickname: nickname}
	f.owned = append(f.owned, o)
	return o, nil
}

func (f *fakeCollection) List(_ context.Context, userID uuid.UUID) ([]postgres.OwnedPokemon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []postgres.OwnedPokemon{}
	for _, o := range f.owned {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeCollection) Get(_ context.Context, userID uuid.UUID, id int64) (postgres.OwnedPokemon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.owned {
		if o.UserID == userID && o.ID == id {
			return o, nil
		}
	}
	return postgres.OwnedPokemon{}, postgres.ErrOwnedNotFound
}

func (f *fakeCollection) ChooseStarter(ctx context.Context, userID uuid.UUID, pokemonID int, nickname string) (postgres.OwnedPokemon, error) {
	if owned, _ := f.List(ctx, userID); len(owned) > 0 {
		return postgres.OwnedPokemon{}, postgres.ErrStarterTaken
	}
	return f.Add(ctx, userID, pokemonID, nickname)
}

type fakeQuiz struct {
	mu       sync.Mutex
	answered map[uuid.UUID]bool
}

func (*fakeQuiz) Next(d quiz.Difficulty, exclude []string) (quiz.Prompt, error) {
	return quiz.Prompt{ID: "q1", Difficulty: d, Question: "?", Choices: exclude}, nil
}

func (f *fakeQuiz) Answer(_ context.Context, userID uuid.UUID, d quiz.Difficulty, id, choice string) (quiz.Outcome, error) {
	if id != "q1" {
		return quiz.Outcome{}, quiz.ErrUnknownQuestion
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.answered[userID] {
		return quiz.Outcome{}, quiz.ErrAlreadyAnswered
	}
	f.answered[userID] = true
	if choice != "a" {
		return quiz.Outcome{}, nil
	}
	return quiz.Outcome{Correct: true, Answer: "a", Reward: 10, Balance: 10}, nil
}

type fakeHealth struct{ err error }

func (f fakeHealth) Health(context.Context) error { return f.err }

type fixture struct {
	handler    *Handler
	router     http.Handler
	battles    *fakeBattler
	users      *fakeUsers
	collection *fakeCollection
	dex        *fakeDex
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		battles:    &fakeBattler{},
		users:      &fakeUsers{users: map[string]postgres.User{}},
		collection: &fakeCollection{},
		dex: &fakeDex{details: map[string]dex.Detail{
			"pikachu": {Profile: pokemon.Profile{Name: "pikachu", ID: 25}, DisplayName: "Pikachu", PrevID: 24, NextID: 26},
			"1":       {Profile: pokemon.Profile{Name: "bulbasaur", ID: 1}, DisplayName: "Bulbasaur"},
		}},
	}
	f.handler = NewHandler(Deps{
		Dex:        f.dex,
		Battles:    f.battles,
		Users:      f.users,
		Collection: f.collection,
		Quiz:       &fakeQuiz{answered: make(map[uuid.UUID]bool)},
		Tickets:    NewTicketLedger(CatchTicketTTL, nil),
	}, zaptest.NewLogger(t))
	f.router = f.handler.Router()
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.handler.health = fakeHealth{err: errors.New("db down")}
	rec = f.do(t, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestListPokemon_DefaultPage(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/pokemon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[listResponse](t, rec)
	assert.Len(t, got.Results, defaultPageSize)
	assert.Equal(t, pokemon.MaxNationalID, got.Count)
}

func TestListPokemon_RejectsBadLimit(t *testing.T) {
	f := newFixture(t)
	for _, q := range []string{"limit=0", "limit=-1", "limit=abc", "limit=1000"} {
		rec := f.do(t, http.MethodGet, "/api/pokemon?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestListPokemon_PastEndIsEmpty(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/pokemon?offset=5000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[listResponse](t, rec).Results)
}

func TestGetPokemon(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/pokemon/pikachu", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "pikachu", got["name"])
	assert.EqualValues(t, 26, got["next_id"])

	rec = f.do(t, http.MethodGet, "/api/pokemon/agumon", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearch_PassesFilters(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/search?type=electric&ability=static&region=kanto&min_id=1&max_id=151", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dex.Query{Type: "electric", Ability: "static", Region: "kanto", MinID: 1, MaxID: 151}, f.dex.lastQ)
}

func TestEncounter(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/encounters?region=kanto", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/encounters?region=narnia", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/encounters", nil).Code)
}

func TestCreateBattle_ByName(t *testing.T) {
	f := newFixture(t)
	f.battles.winner = "pikachu"
	rec := f.do(t, http.MethodPost, "/api/battles", map[string]string{"a": "pikachu", "b": "geodude"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "pikachu", got["winner"])
	assert.NotEmpty(t, got["battle_id"])
	assert.NotContains(t, got, "catch_ticket")
}

func TestCreateBattle_MissingContestant(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/battles", map[string]string{"a": "pikachu"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.battles.calls)
}

func TestCreateBattle_UnknownFieldRejected(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/battles", map[string]string{"a": "x", "b": "y", "c": "z"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBattle_UpstreamFailureIsGeneric502(t *testing.T) {
	f := newFixture(t)
	f.battles.err = &battle.AdjudicationError{Op: "complete", Err: errors.New("secret upstream detail")}
	rec := f.do(t, http.MethodPost, "/api/battles", map[string]string{"a": "pikachu", "b": "geodude"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestCreateBattle_NotFound(t *testing.T) {
	f := newFixture(t)
	f.battles.err = pokeapi.ErrNotFound
	rec := f.do(t, http.MethodPost, "/api/battles", map[string]string{"a": "pikachu", "b": "agumon"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserBattle_WinThenCatch(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	starter, err := f.collection.Add(context.Background(), user, 1, "Bulbasaur")
	require.NoError(t, err)
	f.battles.winner = "1"

	rec := f.do(t, http.MethodPost, "/api/battles", map[string]any{
		"user_id": user.String(), "owned_id": starter.ID, "opponent": "geodude",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1/geodude"}, f.battles.calls)
	got := decodeBody[battleResponse](t, rec)
	require.NotNil(t, got.CatchTicket)

	path := "/api/users/" + user.String() + "/pokemons"
	rec = f.do(t, http.MethodPost, path, map[string]any{"ticket": got.CatchTicket.String()})
	require.Equal(t, http.StatusCreated, rec.Code)
	caught := decodeBody[postgres.OwnedPokemon](t, rec)
	assert.Equal(t, 74, caught.PokemonID)
	assert.Equal(t, "Geodude", caught.Nickname)

	rec = f.do(t, http.MethodPost, path, map[string]any{"ticket": got.CatchTicket.String()})
	assert.Equal(t, http.StatusNotFound, rec.Code, "tickets are single use")

	rec = f.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[map[string][]postgres.OwnedPokemon](t, rec)["results"], 2)
}

func TestUserBattle_LossGrantsNoTicket(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	starter, _ := f.collection.Add(context.Background(), user, 1, "Bulbasaur")
	f.battles.winner = "geodude"

	rec := f.do(t, http.MethodPost, "/api/battles", map[string]any{
		"user_id": user.String(), "owned_id": starter.ID, "opponent": "geodude",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[battleResponse](t, rec).CatchTicket)
}

func TestUserBattle_MirrorMatchGrantsNoTicket(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	owned, _ := f.collection.Add(context.Background(), user, 74, "Rocky")
	f.battles.winner = "74"

	rec := f.do(t, http.MethodPost, "/api/battles", map[string]any{
		"user_id": user.String(), "owned_id": owned.ID, "opponent": "74",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[battleResponse](t, rec)
	assert.Equal(t, "74", got.Winner)
	assert.Nil(t, got.CatchTicket)
}

func TestUserBattle_UnownedPokemon(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/battles", map[string]any{
		"user_id": uuid.NewString(), "owned_id": 99, "opponent": "geodude",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.battles.calls)
}

func TestUserBattle_OneInFlightPerUser(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	starter, _ := f.collection.Add(context.Background(), user, 1, "Bulbasaur")
	require.True(t, f.handler.pending.acquire(user))

	rec := f.do(t, http.MethodPost, "/api/battles", map[string]any{
		"user_id": user.String(), "owned_id": starter.ID, "opponent": "geodude",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.handler.pending.release(user)
	rec = f.do(t, http.MethodPost, "/api/battles", map[string]any{
		"user_id": user.String(), "owned_id": starter.ID, "opponent": "geodude",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatch_FailedInsertRestoresTicket(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	id := f.handler.tickets.Issue(user, Catch{PokemonID: 74, Name: "geodude"})
	f.collection.addErr = errors.New("db down")

	path := "/api/users/" + user.String() + "/pokemons"
	rec := f.do(t, http.MethodPost, path, map[string]any{"ticket": id.String(), "nickname": "Rocky"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	f.collection.addErr = nil
	rec = f.do(t, http.MethodPost, path, map[string]any{"ticket": id.String(), "nickname": "Rocky"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Rocky", decodeBody[postgres.OwnedPokemon](t, rec).Nickname)
}

func TestSignupSigninGetUser(t *testing.T) {
	f := newFixture(t)
	creds := map[string]string{"email": "ash@kanto.example", "password": "pikapika"}

	rec := f.do(t, http.MethodPost, "/api/auth/signup", creds)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[map[string]any](t, rec)
	assert.NotContains(t, created, "PasswordHash")
	assert.NotContains(t, created, "password_hash")

	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/auth/signup", creds).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/auth/signin", creds).Code)

	bad := map[string]string{"email": creds["email"], "password": "wrong-pass"}
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/api/auth/signin", bad).Code)

	rec = f.do(t, http.MethodGet, "/api/users/"+created["id"].(string), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/users/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/users/not-a-uuid", nil).Code)
}

func TestSignup_Validation(t *testing.T) {
	f := newFixture(t)
	for _, c := range []map[string]string{
		{"email": "nope", "password": "longenough"},
		{"email": "a@b.example", "password": "short"},
		{"email": "a@b.example", "password": strings.Repeat("x", 73)},
	} {
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/auth/signup", c).Code)
	}
}

func TestChooseStarter(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	path := "/api/users/" + user.String() + "/starter"

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, path, map[string]int{"pokemon_id": 25}).Code)

	rec := f.do(t, http.MethodPost, path, map[string]int{"pokemon_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Bulbasaur", decodeBody[postgres.OwnedPokemon](t, rec).Nickname)

	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, path, map[string]any{"pokemon_id": 4, "nickname": "Char"}).Code)
}

func TestQuizRoutes(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/quiz?difficulty=Easy&exclude=a,+b,,", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeBody[quiz.Prompt](t, rec)
	assert.Equal(t, quiz.Easy, p.Difficulty)
	assert.Equal(t, []string{"a", "b"}, p.Choices)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/quiz?difficulty=legendary", nil).Code)

	answer := map[string]string{"user_id": uuid.NewString(), "difficulty": "easy", "question_id": "q1", "choice": "a"}
	rec = f.do(t, http.MethodPost, "/api/quiz/answer", answer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[quiz.Outcome](t, rec).Correct)
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/quiz/answer", answer).Code)

	answer["user_id"] = uuid.NewString()
	answer["choice"] = "b"
	rec = f.do(t, http.MethodPost, "/api/quiz/answer", answer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decodeBody[map[string]any](t, rec), "answer")

	answer["question_id"] = "q9"
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/quiz/answer", answer).Code)
}

func TestTicketLedger(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ledger := NewTicketLedger(time.Minute, func() time.Time { return now })
	user := uuid.New()
	c := Catch{PokemonID: 74, Name: "geodude"}

	id := ledger.Issue(user, c)
	_, err := ledger.Redeem(id, uuid.New())
	assert.ErrorIs(t, err, ErrTicketNotFound, "foreign user")

	got, err := ledger.Redeem(id, user)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	_, err = ledger.Redeem(id, user)
	assert.ErrorIs(t, err, ErrTicketNotFound, "spent")

	id = ledger.Issue(user, c)
	now = now.Add(2 * time.Minute)
	_, err = ledger.Redeem(id, user)
	assert.ErrorIs(t, err, ErrTicketExpired)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{postgres.ErrUserExists, http.StatusConflict},
		{postgres.ErrInsufficientFunds, http.StatusConflict},
		{&pokeapi.UpstreamDataError{Err: errors.New("x")}, http.StatusBadGateway},
		{battle.ErrInvalidProfile, http.StatusBadRequest},
		{postgres.ErrPasswordTooLong, http.StatusBadRequest},
		{quiz.ErrAlreadyAnswered, http.StatusConflict},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
