package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cory-johannsen/pokebattle/internal/dex"
	"github.com/cory-johannsen/pokebattle/internal/pokemon"
)

// Listing page bounds.
const (
	defaultPageSize = 20
	maxPageSize     = 200
)

type listResponse struct {
	Count   int         `json:"count"`
	Offset  int         `json:"offset"`
	Results []dex.Entry `json:"results"`
}

func (h *Handler) listPokemon(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if limit == 0 || limit > maxPageSize {
		h.writeError(w, r, fmt.Errorf("%w: limit must be 1-%d", ErrBadRequest, maxPageSize))
		return
	}
	if offset >= pokemon.MaxNationalID {
		writeJSON(w, http.StatusOK, listResponse{Count: pokemon.MaxNationalID, Offset: offset, Results: []dex.Entry{}})
		return
	}
	entries, count, err := h.dex.List(r.Context(), offset, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Count: count, Offset: offset, Results: entries})
}

func (h *Handler) getPokemon(w http.ResponseWriter, r *http.Request) {
	detail, err := h.dex.Lookup(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	minID, err := queryInt(r, "min_id", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	maxID, err := queryInt(r, "max_id", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	entries, err := h.dex.Search(r.Context(), dex.Query{
		Type:    strings.TrimSpace(q.Get("type")),
		Ability: strings.TrimSpace(q.Get("ability")),
		Region:  strings.TrimSpace(q.Get("region")),
		MinID:   minID,
		MaxID:   maxID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": entries})
}

func (h *Handler) encounter(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if err := requireName("region", region); err != nil {
		h.writeError(w, r, err)
		return
	}
	detail, err := h.dex.Encounter(r.Context(), region)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
