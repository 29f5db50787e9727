package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokebattle/internal/dex"
	"github.com/cory-johannsen/pokebattle/internal/storage/postgres"
)

// minPasswordLen is the shortest accepted password.
const minPasswordLen = 6

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c credentials) validate() error {
	if !strings.Contains(c.Email, "@") {
		return fmt.Errorf("%w: email is invalid", ErrBadRequest)
	}
	if len(c.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrBadRequest, minPasswordLen)
	}
	if len(c.Password) > postgres.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrBadRequest, postgres.MaxPasswordBytes)
	}
	return nil
}

type catchRequest struct {
	Ticket   uuid.UUID `json:"ticket"`
	Nickname string    `json:"nickname"`
}

type starterRequest struct {
	PokemonID int    `json:"pokemon_id"`
	Nickname  string `json:"nickname"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decode(r, &c); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := c.validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.users.Create(r.Context(), c.Email, c.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("user signed up", zap.String("user", u.ID.String()))
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) signin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decode(r, &c); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.users.Authenticate(r.Context(), c.Email, c.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUserID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) listOwned(w http.ResponseWriter, r *http.Request) {
	id, err := pathUserID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	owned, err := h.collection.List(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]postgres.OwnedPokemon{"results": owned})
}

// catch redeems a catch ticket into the user's collection. The ticket is
// restored if the insert fails so the player can retry.
func (h *Handler) catch(w http.ResponseWriter, r *http.Request) {
	id, err := pathUserID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req catchRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.tickets.Redeem(req.Ticket, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = dex.DisplayName(c.Name)
	}
	owned, err := h.collection.Add(r.Context(), id, c.PokemonID, nickname)
	if err != nil {
		h.tickets.Restore(req.Ticket, id, c)
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("pokemon caught",
		zap.String("user", id.String()),
		zap.Int("pokemon", c.PokemonID),
	)
	writeJSON(w, http.StatusCreated, owned)
}

func (h *Handler) chooseStarter(w http.ResponseWriter, r *http.Request) {
	id, err := pathUserID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req starterRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if !postgres.ValidStarter(req.PokemonID) {
		h.writeError(w, r, postgres.ErrInvalidStarter)
		return
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		detail, err := h.dex.Lookup(r.Context(), fmt.Sprint(req.PokemonID))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		nickname = detail.DisplayName
	}
	owned, err := h.collection.ChooseStarter(r.Context(), id, req.PokemonID, nickname)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, owned)
}
