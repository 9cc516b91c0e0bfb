// internal/results/results.go
//
// Completed-match results and the leaderboard query. One row per finished
// session, written when the session expires; INSERT OR IGNORE keeps the
// write idempotent if the same completion is ever reported twice.
package results

import (
	"context"
	"database/sql"
)

// Row is one finished match.
type Row struct {
	GameID  string `json:"gameId"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Score1  int    `json:"score1"`
	Score2  int    `json:"score2"`
	Winner  string `json:"winner"` // empty on a tie
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert records a finished match. Replays of the same game id are ignored.
func (s *Store) Insert(ctx context.Context, r Row) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO match_results
            (game_id, player1, player2, score1, score2, winner)
        VALUES (?,?,?,?,?,?)`,
		r.GameID, r.Player1, r.Player2, r.Score1, r.Score2, r.Winner,
	)
	return err
}

// Leaderboard returns the best finished matches, highest winning score
// first, oldest first among ties. Default limit is 20.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT game_id, player1, player2, score1, score2, winner
        FROM match_results
        ORDER BY MAX(score1, score2) DESC, created_at ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Row, 0, limit)
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.GameID, &r.Player1, &r.Player2, &r.Score1, &r.Score2, &r.Winner); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
