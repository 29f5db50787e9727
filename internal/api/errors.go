package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokebattle/internal/battle"
	"github.com/cory-johannsen/pokebattle/internal/dex"
	"github.com/cory-johannsen/pokebattle/internal/pokeapi"
	"github.com/cory-johannsen/pokebattle/internal/pokemon"
	"github.com/cory-johannsen/pokebattle/internal/quiz"
	"github.com/cory-johannsen/pokebattle/internal/storage/postgres"
)

var (
	// ErrBadRequest marks malformed input.
	ErrBadRequest = errors.New("bad request")
	// ErrBattlePending is returned when the user already has a battle in flight.
	ErrBattlePending = errors.New("battle already in progress")
)

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var upErr *pokeapi.UpstreamDataError
	var adjErr *battle.AdjudicationError
	switch {
	case errors.Is(err, pokeapi.ErrNotFound),
		errors.Is(err, postgres.ErrUserNotFound),
		errors.Is(err, postgres.ErrOwnedNotFound),
		errors.Is(err, quiz.ErrUnknownQuestion),
		errors.Is(err, ErrTicketNotFound),
		errors.Is(err, ErrTicketExpired):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, dex.ErrInvalidQuery),
		errors.Is(err, pokemon.ErrUnknownRegion),
		errors.Is(err, quiz.ErrUnknownDifficulty),
		errors.Is(err, postgres.ErrInvalidStarter),
		errors.Is(err, postgres.ErrPasswordTooLong),
		errors.Is(err, battle.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, postgres.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, postgres.ErrUserExists),
		errors.Is(err, postgres.ErrStarterTaken),
		errors.Is(err, postgres.ErrInsufficientFunds),
		errors.Is(err, quiz.ErrAlreadyAnswered),
		errors.Is(err, ErrBattlePending):
		return http.StatusConflict
	case errors.As(err, &upErr), errors.As(err, &adjErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes a JSON error. Client errors carry the message; server
// errors carry only the generic status text and are logged in full.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
