package results

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestInsertIdempotent(t *testing.T) {
	s := NewStore(openTestDB(t))
	ctx := context.Background()

	r := Row{GameID: "g1", Player1: "a", Player2: "b", Score1: 3, Score2: 1, Winner: "a"}
	require.NoError(t, s.Insert(ctx, r))
	r.Score1 = 99 // second report differs; the first one wins
	require.NoError(t, s.Insert(ctx, r))

	rows, err := s.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Score1)
}

func TestLeaderboardOrderAndLimit(t *testing.T) {
	s := NewStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, Row{GameID: "g1", Player1: "a", Player2: "b", Score1: 2, Score2: 5, Winner: "b"}))
	require.NoError(t, s.Insert(ctx, Row{GameID: "g2", Player1: "c", Player2: "d", Score1: 9, Score2: 1, Winner: "c"}))
	require.NoError(t, s.Insert(ctx, Row{GameID: "g3", Player1: "e", Player2: "f", Score1: 4, Score2: 4, Winner: ""}))

	rows, err := s.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "g2", rows[0].GameID) // winning score 9
	assert.Equal(t, "g1", rows[1].GameID) // winning score 5
	assert.Equal(t, "g3", rows[2].GameID) // tie at 4

	rows, err = s.Leaderboard(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "g2", rows[0].GameID)
}
