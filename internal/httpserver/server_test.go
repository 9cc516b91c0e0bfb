package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boggleduel/server/internal/dict"
	"github.com/boggleduel/server/internal/game"
	"github.com/boggleduel/server/internal/players"
)

// newTestServer wires a server with an in-memory registry, a small
// dictionary, and no database-backed extras.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	registry, err := players.NewRegistry(nil)
	require.NoError(t, err)
	words := dict.New([]string{"cat", "cats", "dog", "grid"})
	broker := game.NewBroker(registry, words, nil)
	return New(broker, registry, Options{})
}

// doJSON performs a request with a JSON body and decodes the response into out.
func doJSON(t *testing.T, s *Server, method, path string, body, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
	}
	return rec
}

// register creates a player and returns its token.
func register(t *testing.T, s *Server, nickname string) string {
	t.Helper()
	var res tokenRes
	rec := doJSON(t, s, http.MethodPost, "/users", registerReq{Nickname: nickname}, &res)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, res.UserToken)
	return res.UserToken
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/users", registerReq{Nickname: "   "}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJoinFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tokX := register(t, s, "xavier")
	tokY := register(t, s, "yolanda")

	// First player: 202 Accepted with the game id.
	var idRes gameIDRes
	rec := doJSON(t, s, http.MethodPost, "/games", joinReq{UserToken: tokX, TimeLimit: 80}, &idRes)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.NotEmpty(t, idRes.GameID)
	gameID := idRes.GameID

	// Same player again: 409 Conflict.
	rec = doJSON(t, s, http.MethodPost, "/games", joinReq{UserToken: tokX, TimeLimit: 80}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Out-of-bounds time limit: 403.
	rec = doJSON(t, s, http.MethodPost, "/games", joinReq{UserToken: tokY, TimeLimit: 4}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Second player: 201 Created, same game.
	rec = doJSON(t, s, http.MethodPost, "/games", joinReq{UserToken: tokY, TimeLimit: 40}, &idRes)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, gameID, idRes.GameID)

	// Status is now active with the averaged limit.
	var view game.StatusView
	rec = doJSON(t, s, http.MethodGet, "/games/"+gameID, nil, &view)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.StateActive, view.GameState)
	require.NotNil(t, view.TimeLimit)
	assert.Equal(t, 60, *view.TimeLimit)
	assert.NotEmpty(t, view.Board)
}

func TestCancelJoinOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tok := register(t, s, "xavier")

	// Nothing pending: 403.
	rec := doJSON(t, s, http.MethodPut, "/games", cancelReq{UserToken: tok}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	doJSON(t, s, http.MethodPost, "/games", joinReq{UserToken: tok, TimeLimit: 30}, nil)
	rec = doJSON(t, s, http.MethodPut, "/games", cancelReq{UserToken: tok}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlayWordOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tokX := register(t, s, "xavier")
	tokY := register(t, s, "yolanda")

	var idRes gameIDRes
	doJSON(t, s, http.MethodPost, "/games", joinReq{UserToken: tokX, TimeLimit: 30}, &idRes)
	gameID := idRes.GameID

	// Pending game: 409.
	rec := doJSON(t, s, http.MethodPut, "/games/"+gameID, playWordReq{UserToken: tokX, Word: "cat"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	doJSON(t, s, http.MethodPost, "/games", joinReq{UserToken: tokY, TimeLimit: 30}, nil)

	// Active game accepts the submission; the score depends on the random
	// board, so only the envelope is asserted here.
	var score scoreRes
	rec = doJSON(t, s, http.MethodPut, "/games/"+gameID, playWordReq{UserToken: tokX, Word: "cat"}, &score)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unknown game and non-participant: 403.
	rec = doJSON(t, s, http.MethodPut, "/games/missing", playWordReq{UserToken: tokX, Word: "cat"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(t, s, http.MethodPut, "/games/"+gameID, playWordReq{UserToken: "stranger", Word: "cat"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetStatusOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tok := register(t, s, "xavier")

	var idRes gameIDRes
	doJSON(t, s, http.MethodPost, "/games", joinReq{UserToken: tok, TimeLimit: 30}, &idRes)

	// Pending view hides everything but the state.
	var view game.StatusView
	rec := doJSON(t, s, http.MethodGet, "/games/"+idRes.GameID+"?Brief=yes", nil, &view)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.StatePending, view.GameState)
	assert.Empty(t, view.Board)
	assert.Nil(t, view.Player1)

	// Unknown id: 403.
	rec = doJSON(t, s, http.MethodGet, "/games/missing", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLeaderboardWithoutDatabase(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/leaderboard", nil, nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestNotFoundIsJSON(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}
