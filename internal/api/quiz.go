package api

import (
	"net/http"
	"strings"

	"github.com/cory-johannsen/pokebattle/internal/quiz"
)

type answerRequest struct {
	UserID     string `json:"user_id"`
	Difficulty string `json:"difficulty"`
	QuestionID string `json:"question_id"`
	Choice     string `json:"choice"`
}

func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := quiz.ParseDifficulty(q.Get("difficulty"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var exclude []string
	for _, id := range strings.Split(q.Get("exclude"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			exclude = append(exclude, id)
		}
	}
	p, err := h.quiz.Next(d, exclude)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) answerQuestion(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	userID, err := parseUserID(req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := quiz.ParseDifficulty(req.Difficulty)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.quiz.Answer(r.Context(), userID, d, req.QuestionID, req.Choice)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
