package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boggleduel/server/internal/board"
	"github.com/boggleduel/server/internal/game"
	"github.com/boggleduel/server/internal/results"
)

// openTestDB loads the real schema into an in-memory database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := os.ReadFile("../../sql/001_init.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	return db
}

func testSession(t *testing.T) *game.Session {
	t.Helper()
	brd, err := board.Parse("CATSDOGSBIRDFISH")
	require.NoError(t, err)
	return &game.Session{
		ID:        "g1",
		State:     game.StatePending,
		PlayerA:   "tok-a",
		Board:     brd,
		Requested: 80,
		LedgerA:   &game.Ledger{},
		LedgerB:   &game.Ledger{},
	}
}

func TestMirrorSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	rec := NewSQLite(db, results.NewStore(db))
	sess := testSession(t)

	rec.SessionCreated(sess)

	var state string
	require.NoError(t, db.QueryRow(`SELECT state FROM games WHERE id='g1'`).Scan(&state))
	assert.Equal(t, "pending", state)

	sess.PlayerB = "tok-b"
	sess.TimeLimit = 60
	sess.StartedAt = time.Now()
	sess.State = game.StateActive
	rec.SessionPaired(sess)

	var player2 string
	var limit int
	require.NoError(t, db.QueryRow(`SELECT player2, time_limit, state FROM games WHERE id='g1'`).
		Scan(&player2, &limit, &state))
	assert.Equal(t, "tok-b", player2)
	assert.Equal(t, 60, limit)
	assert.Equal(t, "active", state)

	rec.WordPlayed("g1", "tok-a", game.WordPlay{Word: "cat", Score: 1})
	rec.WordPlayed("g1", "tok-a", game.WordPlay{Word: "zzzzz", Score: -1})

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM words WHERE game_id='g1' AND player='tok-a'`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestMirrorSessionCancelled(t *testing.T) {
	db := openTestDB(t)
	rec := NewSQLite(db, results.NewStore(db))
	sess := testSession(t)
	rec.SessionCreated(sess)

	rec.SessionCancelled("g1")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM games WHERE id='g1'`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestSessionCompletedRecordsResult(t *testing.T) {
	db := openTestDB(t)
	res := results.NewStore(db)
	rec := NewSQLite(db, res)

	sess := testSession(t)
	sess.PlayerB = "tok-b"
	sess.State = game.StateCompleted
	sess.LedgerA.Append("cat", 1)
	sess.LedgerA.Append("cats", 1)
	sess.LedgerB.Append("zzzzz", -1)
	rec.SessionCreated(sess)

	rec.SessionCompleted(sess, "alice", "bob")
	// A duplicate completion report is ignored.
	rec.SessionCompleted(sess, "alice", "bob")

	rows, err := res.Leaderboard(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0].Winner)
	assert.Equal(t, 2, rows[0].Score1)
	assert.Equal(t, -1, rows[0].Score2)
}
