// internal/httpserver/routes_games.go
//
// Game endpoints (auth required):
//   - POST /api/games            → start a game
//   - GET  /api/games            → active and completed games
//   - GET  /api/games/{id}       → game + board (ships shown once completed)
//   - POST /api/games/{id}/shots → fire at a cell

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/battleship/internal/game"
)

func (s *Server) mountGames(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Post("/", s.handleStartGame)
		r.Get("/", s.handleListGames)
		r.Get("/{id}", s.handleGetGame)
		r.Post("/{id}/shots", s.handleShot)
	})
}

type startedGame struct {
	ID        string      `json:"id"`
	StartTime time.Time   `json:"start_time"`
	Status    game.Status `json:"status"`
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	me, _ := identityFrom(r.Context())
	g, err := s.svc.Games.Start(r.Context(), me.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "New game started.",
		"game":    startedGame{ID: g.ID, StartTime: g.StartTime, Status: g.Status},
	})
}

type gameListRes struct {
	Active    []game.Game `json:"active_games"`
	Completed []game.Game `json:"completed_games"`
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	me, _ := identityFrom(r.Context())
	active, completed, err := s.svc.Games.List(r.Context(), me.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gameListRes{Active: active, Completed: completed})
}

type gameStateRes struct {
	Game  game.Game  `json:"game"`
	Board game.Board `json:"board"`
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	me, _ := identityFrom(r.Context())
	v, err := s.svc.Games.Get(r.Context(), me.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gameStateRes{Game: v.Game, Board: v.Board})
}

// shotReq is the payload for POST /api/games/{id}/shots.
type shotReq struct {
	X *int `json:"position_x" validate:"required,min=0,max=9"`
	Y *int `json:"position_y" validate:"required,min=0,max=9"`
}

type gameStateSummary struct {
	Status     game.Status `json:"status"`
	TotalShots int         `json:"total_shots"`
	Hits       int         `json:"hits"`
	Misses     int         `json:"misses"`
}

type sunkShip struct {
	Type game.ShipType `json:"type"`
}

// shotRes mirrors what a client needs after each shot; the game-over fields
// are only present on the shot that ends the game.
type shotRes struct {
	Hit       bool             `json:"hit"`
	Position  game.Coord       `json:"position"`
	GameState gameStateSummary `json:"game_state"`
	SunkShip  *sunkShip        `json:"sunk_ship,omitempty"`
	GameOver  bool             `json:"game_over,omitempty"`
	Score     *int             `json:"score,omitempty"`
	EndTime   *time.Time       `json:"end_time,omitempty"`
	Board     *game.Board      `json:"board,omitempty"`
}

func (s *Server) handleShot(w http.ResponseWriter, r *http.Request) {
	var req shotReq
	if !s.bind(w, r, &req) {
		return
	}
	me, _ := identityFrom(r.Context())
	res, err := s.svc.Games.Fire(r.Context(), me.ID, chi.URLParam(r, "id"), *req.X, *req.Y)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := shotRes{
		Hit:      res.Outcome.Hit,
		Position: game.Coord{X: res.Outcome.Shot.X, Y: res.Outcome.Shot.Y},
		GameState: gameStateSummary{
			Status:     res.Game.Status,
			TotalShots: res.Game.TotalShots,
			Hits:       res.Game.Hits,
			Misses:     res.Game.Misses,
		},
	}
	if res.Outcome.Sunk != nil {
		out.SunkShip = &sunkShip{Type: res.Outcome.Sunk.Type}
	}
	if res.Outcome.GameOver {
		score := res.Game.Score
		out.GameOver = true
		out.Score = &score
		out.EndTime = res.Game.EndTime
		out.Board = res.Board
	}
	writeJSON(w, http.StatusOK, out)
}
