package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokebattle/internal/battle"
	"github.com/cory-johannsen/pokebattle/internal/dex"
)

// battleRequest names two contestants directly, or a user's owned Pokémon
// against an opponent.
type battleRequest struct {
	A string `json:"a"`
	B string `json:"b"`

	UserID   string `json:"user_id"`
	OwnedID  int64  `json:"owned_id"`
	Opponent string `json:"opponent"`
}

type battleResponse struct {
	BattleID    uuid.UUID  `json:"battle_id"`
	Winner      string     `json:"winner"`
	A           dex.Detail `json:"a"`
	B           dex.Detail `json:"b"`
	CatchTicket *uuid.UUID `json:"catch_ticket,omitempty"`
}

func detailOf(b battle.Bout, first bool) dex.Detail {
	p := b.B
	if first {
		p = b.A
	}
	return dex.Detail{Profile: p, DisplayName: dex.DisplayName(p.Name)}
}

func (h *Handler) createBattle(w http.ResponseWriter, r *http.Request) {
	var req battleRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.UserID != "" {
		h.userBattle(w, r, req)
		return
	}
	if err := requireName("a", req.A); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := requireName("b", req.B); err != nil {
		h.writeError(w, r, err)
		return
	}
	bout, err := h.battles.Fight(r.Context(), req.A, req.B)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, battleResponse{
		BattleID: uuid.New(),
		Winner:   bout.Result.Winner,
		A:        detailOf(bout, true),
		B:        detailOf(bout, false),
	})
}

// userBattle pits a user's owned Pokémon against an opponent. A win earns a
// ticket to catch the opponent. One battle per user may be in flight.
func (h *Handler) userBattle(w http.ResponseWriter, r *http.Request, req battleRequest) {
	userID, err := parseUserID(req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := requireName("opponent", req.Opponent); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.OwnedID <= 0 {
		h.writeError(w, r, fmt.Errorf("%w: owned_id is required", ErrBadRequest))
		return
	}
	if !h.pending.acquire(userID) {
		h.writeError(w, r, ErrBattlePending)
		return
	}
	defer h.pending.release(userID)

	owned, err := h.collection.Get(r.Context(), userID, req.OwnedID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	bout, err := h.battles.Fight(r.Context(), strconv.Itoa(owned.PokemonID), req.Opponent)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := battleResponse{
		BattleID: uuid.New(),
		Winner:   bout.Result.Winner,
		A:        detailOf(bout, true),
		B:        detailOf(bout, false),
	}
	if bout.Result.Side == battle.SideA {
		t := h.tickets.Issue(userID, Catch{PokemonID: bout.B.ID, Name: bout.B.Name})
		resp.CatchTicket = &t
	}
	h.logger.Info("user battle",
		zap.String("battle", resp.BattleID.String()),
		zap.String("user", userID.String()),
		zap.String("winner", resp.Winner),
		zap.Bool("catchable", resp.CatchTicket != nil),
	)
	writeJSON(w, http.StatusOK, resp)
}
