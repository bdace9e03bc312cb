package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/battleship/internal/stats"
)

// mountStats registers GET /api/statistics and GET /api/leaderboard.
func (s *Server) mountStats(r chi.Router) {
	r.Get("/statistics", s.handleStatistics)
	r.Get("/leaderboard", s.handleLeaderboard)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	me, _ := identityFrom(r.Context())
	st, err := s.svc.Stats.ForUser(r.Context(), me.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type leaderboardRes struct {
	Leaderboard []stats.LeaderboardEntry `json:"leaderboard"`
}

// handleLeaderboard serves the top games; ?limit= is optional.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeValidation(w, map[string][]string{"limit": {"must be a positive integer"}})
			return
		}
		limit = n
	}
	rows, err := s.svc.Stats.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardRes{Leaderboard: rows})
}
