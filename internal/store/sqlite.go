// internal/store/sqlite.go
//
// Durable mirror of live game state. The broker's in-memory state stays
// authoritative; these writes exist for crash recovery and audit, run
// inside the broker lock, and are strictly best-effort: failures are
// logged and swallowed so persistence latency can never change a game
// outcome. Anything slower than local sqlite belongs behind a write-ahead
// queue instead.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/boggleduel/server/internal/game"
	"github.com/boggleduel/server/internal/results"
)

// SQLite mirrors session and word-play writes into sqlite and forwards
// completed matches to the results store. Implements game.Recorder.
type SQLite struct {
	db      *sql.DB
	results *results.Store
}

func NewSQLite(db *sql.DB, res *results.Store) *SQLite {
	return &SQLite{db: db, results: res}
}

func (s *SQLite) SessionCreated(sess *game.Session) {
	_, err := s.db.Exec(`INSERT INTO games (id, player1, board, time_limit, state) VALUES (?,?,?,?,?)`,
		sess.ID, sess.PlayerA, sess.Board.String(), sess.Requested, string(sess.State))
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("mirror session create")
	}
}

func (s *SQLite) SessionPaired(sess *game.Session) {
	_, err := s.db.Exec(`UPDATE games SET player2=?, time_limit=?, started_at=?, state=? WHERE id=?`,
		sess.PlayerB, sess.TimeLimit, sess.StartedAt.UTC().Format(time.RFC3339), string(sess.State), sess.ID)
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("mirror session pair")
	}
}

func (s *SQLite) SessionCancelled(id string) {
	if _, err := s.db.Exec(`DELETE FROM games WHERE id=?`, id); err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("mirror session cancel")
	}
}

func (s *SQLite) WordPlayed(sessionID, token string, play game.WordPlay) {
	_, err := s.db.Exec(`INSERT INTO words (game_id, player, word, score) VALUES (?,?,?,?)`,
		sessionID, token, play.Word, play.Score)
	if err != nil {
		log.Warn().Err(err).Str("gameId", sessionID).Msg("mirror word play")
	}
}

func (s *SQLite) SessionCompleted(sess *game.Session, nickA, nickB string) {
	if _, err := s.db.Exec(`UPDATE games SET state=? WHERE id=?`, string(sess.State), sess.ID); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("mirror session complete")
	}

	scoreA, scoreB := sess.LedgerA.Total(), sess.LedgerB.Total()
	winner := ""
	switch {
	case scoreA > scoreB:
		winner = nickA
	case scoreB > scoreA:
		winner = nickB
	}
	row := results.Row{
		GameID:  sess.ID,
		Player1: nickA,
		Player2: nickB,
		Score1:  scoreA,
		Score2:  scoreB,
		Winner:  winner,
	}
	if err := s.results.Insert(context.Background(), row); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("record match result")
	}
}
