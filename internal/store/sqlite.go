// internal/store/sqlite.go
//
// SQLite implementation of the Store interface, built on sqlx.
//
// Shots are applied in one immediate transaction. The conditional
// "WHERE status='in_progress'" update and UNIQUE(game_id, position_x,
// position_y) on shots keep the row-level guarantees even when several
// processes share the database file.

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/robalobadob/battleship/internal/auth"
	"github.com/robalobadob/battleship/internal/game"
	"github.com/robalobadob/battleship/internal/stats"
)

type userRow struct {
	ID                 string    `db:"id"`
	Username           string    `db:"username"`
	PasswordHash       string    `db:"password_hash"`
	RegistrationSource string    `db:"registration_source"`
	HasPlayed          bool      `db:"has_played"`
	AcceptTerms        bool      `db:"accept_terms"`
	CreatedAt          time.Time `db:"created_at"`
}

type gameRow struct {
	ID         string       `db:"id"`
	UserID     string       `db:"user_id"`
	StartTime  time.Time    `db:"start_time"`
	EndTime    sql.NullTime `db:"end_time"`
	Status     string       `db:"status"`
	TotalShots int          `db:"total_shots"`
	Hits       int          `db:"hits"`
	Misses     int          `db:"misses"`
	Score      int          `db:"score"`
}

type shipRow struct {
	Type        string `db:"type"`
	PositionX   int    `db:"position_x"`
	PositionY   int    `db:"position_y"`
	Orientation string `db:"orientation"`
	Hits        int    `db:"hits"`
	Sunk        bool   `db:"sunk"`
}

type shotRow struct {
	PositionX int  `db:"position_x"`
	PositionY int  `db:"position_y"`
	Hit       bool `db:"hit"`
}

type topRow struct {
	gameRow
	Username string `db:"username"`
}

const gameColumns = `id, user_id, start_time, end_time, status, total_shots, hits, misses, score`

type sqliteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore wraps a migrated database handle.
func NewSQLiteStore(db *sqlx.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) CreateUser(ctx context.Context, u *auth.User) error {
	_, err := s.db.NamedExecContext(ctx, `
        INSERT INTO users (id, username, password_hash, registration_source, has_played, accept_terms, created_at)
        VALUES (:id, :username, :password_hash, :registration_source, :has_played, :accept_terms, :created_at)`,
		userRow{
			ID:                 u.ID,
			Username:           u.Username,
			PasswordHash:       u.PasswordHash,
			RegistrationSource: u.RegistrationSource,
			HasPlayed:          u.HasPlayed,
			AcceptTerms:        u.AcceptTerms,
			CreatedAt:          u.CreatedAt.UTC(),
		})
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return errors.Wrap(err, "insert user")
}

func (s *sqliteStore) FindUserByID(ctx context.Context, id string) (*auth.User, error) {
	return s.findUser(ctx, `SELECT * FROM users WHERE id=?`, id)
}

func (s *sqliteStore) FindUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	return s.findUser(ctx, `SELECT * FROM users WHERE username=?`, username)
}

func (s *sqliteStore) findUser(ctx context.Context, query string, arg any) (*auth.User, error) {
	var r userRow
	if err := s.db.GetContext(ctx, &r, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "select user")
	}
	return &auth.User{
		ID:                 r.ID,
		Username:           r.Username,
		PasswordHash:       r.PasswordHash,
		RegistrationSource: r.RegistrationSource,
		HasPlayed:          r.HasPlayed,
		AcceptTerms:        r.AcceptTerms,
		CreatedAt:          r.CreatedAt,
	}, nil
}

func (s *sqliteStore) MarkPlayed(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET has_played=1 WHERE id=?`, userID)
	if err != nil {
		return errors.Wrap(err, "mark played")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) CreateGame(ctx context.Context, g *game.Game, ships []game.Ship) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin create game")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO games (`+gameColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		g.ID, g.UserID, g.StartTime.UTC(), nullTime(g.EndTime), string(g.Status),
		g.TotalShots, g.Hits, g.Misses, g.Score,
	); err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return errors.Wrap(err, "insert game")
	}

	for _, sh := range ships {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO ships (game_id, type, position_x, position_y, orientation, size, hits, sunk)
            VALUES (?,?,?,?,?,?,?,?)`,
			g.ID, sh.Type.String(), sh.X, sh.Y, sh.Orientation.String(), sh.Size(), sh.HitCount, sh.Sunk,
		); err != nil {
			return errors.Wrapf(err, "insert ship %s", sh.Type)
		}
	}
	return errors.Wrap(tx.Commit(), "commit create game")
}

func (s *sqliteStore) GetGame(ctx context.Context, id string) (*Snapshot, error) {
	var gr gameRow
	if err := s.db.GetContext(ctx, &gr, `SELECT `+gameColumns+` FROM games WHERE id=?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "select game")
	}

	var ships []shipRow
	if err := s.db.SelectContext(ctx, &ships, `
        SELECT type, position_x, position_y, orientation, hits, sunk
        FROM ships WHERE game_id=? ORDER BY id`, id); err != nil {
		return nil, errors.Wrap(err, "select ships")
	}
	var shots []shotRow
	if err := s.db.SelectContext(ctx, &shots, `
        SELECT position_x, position_y, hit
        FROM shots WHERE game_id=? ORDER BY id`, id); err != nil {
		return nil, errors.Wrap(err, "select shots")
	}

	snap := &Snapshot{
		Game:  gr.toGame(),
		Ships: make([]game.Ship, 0, len(ships)),
		Shots: make([]game.Shot, 0, len(shots)),
	}
	for _, r := range ships {
		sh, err := r.toShip()
		if err != nil {
			return nil, errors.Wrapf(err, "decode ship of game %s", id)
		}
		snap.Ships = append(snap.Ships, sh)
	}
	for _, r := range shots {
		snap.Shots = append(snap.Shots, game.Shot{X: r.PositionX, Y: r.PositionY, Hit: r.Hit})
	}
	return snap, nil
}

func (s *sqliteStore) RecordShot(ctx context.Context, rec ShotRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin record shot")
	}
	defer func() { _ = tx.Rollback() }()

	g := rec.Game
	res, err := tx.ExecContext(ctx, `
        UPDATE games
        SET total_shots=?, hits=?, misses=?, status=?, end_time=?, score=?
        WHERE id=? AND status=?`,
		g.TotalShots, g.Hits, g.Misses, string(g.Status), nullTime(g.EndTime), g.Score,
		g.ID, string(game.StatusInProgress),
	)
	if err != nil {
		return errors.Wrap(err, "update game")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT 1 FROM games WHERE id=?`, g.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return errors.Wrap(err, "select game")
		}
		return game.ErrGameOver
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO shots (game_id, position_x, position_y, hit) VALUES (?,?,?,?)`,
		g.ID, rec.Shot.X, rec.Shot.Y, rec.Shot.Hit,
	); err != nil {
		if isUniqueViolation(err) {
			return game.ErrDuplicateShot
		}
		return errors.Wrap(err, "insert shot")
	}

	if rec.Ship != nil {
		res, err := tx.ExecContext(ctx, `UPDATE ships SET hits=?, sunk=? WHERE game_id=? AND type=?`,
			rec.Ship.HitCount, rec.Ship.Sunk, g.ID, rec.Ship.Type.String())
		if err != nil {
			return errors.Wrap(err, "update ship")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
	}
	return errors.Wrap(tx.Commit(), "commit shot")
}

func (s *sqliteStore) ListGames(ctx context.Context, userID string, status game.Status) ([]game.Game, error) {
	order := `start_time DESC`
	if status == game.StatusCompleted {
		order = `end_time DESC`
	}
	return s.selectGames(ctx,
		`SELECT `+gameColumns+` FROM games WHERE user_id=? AND status=? ORDER BY `+order+`, rowid DESC`,
		userID, string(status))
}

func (s *sqliteStore) CompletedGames(ctx context.Context, userID string) ([]game.Game, error) {
	return s.selectGames(ctx,
		`SELECT `+gameColumns+` FROM games WHERE user_id=? AND status=? ORDER BY start_time DESC, rowid DESC`,
		userID, string(game.StatusCompleted))
}

func (s *sqliteStore) selectGames(ctx context.Context, query string, args ...any) ([]game.Game, error) {
	var rows []gameRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "select games")
	}
	out := make([]game.Game, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toGame())
	}
	return out, nil
}

func (s *sqliteStore) TopGames(ctx context.Context, limit int) ([]stats.Row, error) {
	if limit <= 0 {
		limit = stats.DefaultLeaderboardLimit
	}
	var rows []topRow
	if err := s.db.SelectContext(ctx, &rows, `
        SELECT g.id, g.user_id, g.start_time, g.end_time, g.status, g.total_shots, g.hits, g.misses, g.score,
               u.username
        FROM games g
        JOIN users u ON u.id = g.user_id
        WHERE g.status=?
        ORDER BY g.score DESC, g.rowid ASC
        LIMIT ?`, string(game.StatusCompleted), limit); err != nil {
		return nil, errors.Wrap(err, "select leaderboard")
	}
	out := make([]stats.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, stats.Row{Username: r.Username, Game: r.toGame()})
	}
	return out, nil
}

func (r gameRow) toGame() game.Game {
	g := game.Game{
		ID:         r.ID,
		UserID:     r.UserID,
		StartTime:  r.StartTime.UTC(),
		Status:     game.Status(r.Status),
		TotalShots: r.TotalShots,
		Hits:       r.Hits,
		Misses:     r.Misses,
		Score:      r.Score,
	}
	if r.EndTime.Valid {
		end := r.EndTime.Time.UTC()
		g.EndTime = &end
	}
	return g
}

func (r shipRow) toShip() (game.Ship, error) {
	t, err := game.ParseShipType(r.Type)
	if err != nil {
		return game.Ship{}, err
	}
	o, err := game.ParseOrientation(r.Orientation)
	if err != nil {
		return game.Ship{}, err
	}
	return game.Ship{Type: t, X: r.PositionX, Y: r.PositionY, Orientation: o, HitCount: r.Hits, Sunk: r.Sunk}, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
