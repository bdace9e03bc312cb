// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used by tests and when durability is not required (STORE_DRIVER=memory).
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are copied in and out so callers never share state with the store.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/robalobadob/battleship/internal/auth"
	"github.com/robalobadob/battleship/internal/game"
	"github.com/robalobadob/battleship/internal/stats"
)

type memory struct {
	mu      sync.RWMutex
	users   map[string]*auth.User // keyed by ID
	byName  map[string]string     // lower(username) -> ID
	games   map[string]*Snapshot  // keyed by Game.ID
	ordered []string              // game IDs in creation order
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		users:  make(map[string]*auth.User),
		byName: make(map[string]string),
		games:  make(map[string]*Snapshot),
	}
}

func (m *memory) CreateUser(ctx context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Username)
	if _, ok := m.byName[key]; ok {
		return ErrUsernameTaken
	}
	cp := *u
	m.users[u.ID] = &cp
	m.byName[key] = u.ID
	return nil
}

func (m *memory) FindUserByID(ctx context.Context, id string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memory) FindUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byName[strings.ToLower(username)]; ok {
		cp := *m.users[id]
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memory) MarkPlayed(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.HasPlayed = true
	return nil
}

func (m *memory) CreateGame(ctx context.Context, g *game.Game, ships []game.Ship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[g.UserID]; !ok {
		return ErrNotFound
	}
	m.games[g.ID] = copySnapshot(&Snapshot{Game: *g, Ships: ships})
	m.ordered = append(m.ordered, g.ID)
	return nil
}

func (m *memory) GetGame(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.games[id]; ok {
		return copySnapshot(s), nil
	}
	return nil, ErrNotFound
}

func (m *memory) RecordShot(ctx context.Context, rec ShotRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.games[rec.Game.ID]
	if !ok {
		return ErrNotFound
	}
	if s.Game.Completed() {
		return game.ErrGameOver
	}
	for _, sh := range s.Shots {
		if sh.X == rec.Shot.X && sh.Y == rec.Shot.Y {
			return game.ErrDuplicateShot
		}
	}
	shipIdx := -1
	if rec.Ship != nil {
		for i := range s.Ships {
			if s.Ships[i].Type == rec.Ship.Type {
				shipIdx = i
				break
			}
		}
		if shipIdx < 0 {
			return ErrNotFound
		}
	}

	// All checks passed; apply.
	s.Game = copyGame(rec.Game)
	s.Shots = append(s.Shots, rec.Shot)
	if shipIdx >= 0 {
		s.Ships[shipIdx].HitCount = rec.Ship.HitCount
		s.Ships[shipIdx].Sunk = rec.Ship.Sunk
	}
	return nil
}

func (m *memory) ListGames(ctx context.Context, userID string, status game.Status) ([]game.Game, error) {
	out := m.collect(func(g *game.Game) bool { return g.UserID == userID && g.Status == status })
	slices.Reverse(out)
	if status == game.StatusCompleted {
		sort.SliceStable(out, func(i, j int) bool { return out[i].EndTime.After(*out[j].EndTime) })
	} else {
		sortByStartDesc(out)
	}
	return out, nil
}

func (m *memory) CompletedGames(ctx context.Context, userID string) ([]game.Game, error) {
	out := m.collect(func(g *game.Game) bool { return g.UserID == userID && g.Completed() })
	slices.Reverse(out)
	sortByStartDesc(out)
	return out, nil
}

func (m *memory) TopGames(ctx context.Context, limit int) ([]stats.Row, error) {
	if limit <= 0 {
		limit = stats.DefaultLeaderboardLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []stats.Row
	for _, id := range m.ordered {
		s := m.games[id]
		if !s.Game.Completed() {
			continue
		}
		name := ""
		if u, ok := m.users[s.Game.UserID]; ok {
			name = u.Username
		}
		rows = append(rows, stats.Row{Username: name, Game: copyGame(s.Game)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Game.Score > rows[j].Game.Score })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// collect returns copies of every game matching keep, in creation order.
func (m *memory) collect(keep func(*game.Game) bool) []game.Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []game.Game{}
	for _, id := range m.ordered {
		if g := &m.games[id].Game; keep(g) {
			out = append(out, copyGame(*g))
		}
	}
	return out
}

func sortByStartDesc(gs []game.Game) {
	sort.SliceStable(gs, func(i, j int) bool { return gs[i].StartTime.After(gs[j].StartTime) })
}

func copyGame(g game.Game) game.Game {
	if g.EndTime != nil {
		end := *g.EndTime
		g.EndTime = &end
	}
	return g
}

func copySnapshot(s *Snapshot) *Snapshot {
	return &Snapshot{
		Game:  copyGame(s.Game),
		Ships: append([]game.Ship(nil), s.Ships...),
		Shots: append([]game.Shot(nil), s.Shots...),
	}
}
