// internal/httpserver/server.go
//
// HTTP wiring for the Boggle match server.
// Responsibilities:
//   - Router + middleware (request IDs, panic recovery, timeouts, JSON,
//     credentialed CORS).
//   - Public endpoints: "/", "/health", "/leaderboard".
//   - Game endpoints: POST /users, POST /games, PUT /games,
//     PUT /games/{GameID}, GET /games/{GameID}?Brief=yes.
//   - Account endpoints (optional): /auth/signup, /auth/login,
//     /auth/logout, /auth/me.
//
// The handlers translate broker outcomes into HTTP statuses with a fixed
// lookup; no game logic lives here.
package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/boggleduel/server/internal/game"
	"github.com/boggleduel/server/internal/players"
	"github.com/boggleduel/server/internal/results"
)

// Server bundles the router with the broker and its collaborators.
type Server struct {
	r        *chi.Mux
	broker   *game.Broker
	registry *players.Registry
	results  *results.Store // nil without a database
	auth     *AuthService   // nil without a database
}

// Options carries the optional collaborators.
type Options struct {
	Results *results.Store
	Auth    *AuthService
}

// New constructs a Server, installs middleware, and registers routes.
func New(broker *game.Broker, registry *players.Registry, opts Options) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		broker:   broker,
		registry: registry,
		results:  opts.Results,
		auth:     opts.Auth,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"boggle-duel","endpoints":["/health","POST /users","POST /games","PUT /games","PUT /games/{GameID}","GET /games/{GameID}","/leaderboard"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post("/users", s.handleRegister)
	s.r.Post("/games", s.handleJoin)
	s.r.Put("/games", s.handleCancelJoin)
	s.r.Put("/games/{gameID}", s.handlePlayWord)
	s.r.Get("/games/{gameID}", s.handleGetStatus)
	s.r.Get("/leaderboard", s.handleLeaderboard)

	if s.auth != nil {
		s.auth.mount(s.r)
	}

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin taken from
// CLIENT_ORIGIN (default http://localhost:5173).
func corsFromEnv(next http.Handler) http.Handler {
	origin := getEnv("CLIENT_ORIGIN", "http://localhost:5173")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ handlers -----------------------------------

// Request/response payloads mirror the public API's field names.
type registerReq struct {
	Nickname string `json:"Nickname"`
}
type tokenRes struct {
	UserToken string `json:"UserToken"`
}
type joinReq struct {
	UserToken string `json:"UserToken"`
	TimeLimit int    `json:"TimeLimit"`
}
type gameIDRes struct {
	GameID string `json:"GameID"`
}
type cancelReq struct {
	UserToken string `json:"UserToken"`
}
type playWordReq struct {
	UserToken string `json:"UserToken"`
	Word      string `json:"Word"`
}
type scoreRes struct {
	Score int `json:"Score"`
}

// handleRegister issues a fresh player token for a nickname.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	token, err := s.registry.Register(req.Nickname)
	if err != nil {
		http.Error(w, `{"error":"invalid_nickname"}`, http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(tokenRes{UserToken: token})
}

// handleJoin enters a player into matchmaking.
// Outcome mapping: FirstPlayerAccepted→202, Paired→201, AlreadyPending→409,
// Rejected→403.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	id, out := s.broker.Join(req.UserToken, req.TimeLimit)
	switch out {
	case game.FirstPlayerAccepted:
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(gameIDRes{GameID: id})
	case game.Paired:
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(gameIDRes{GameID: id})
	case game.AlreadyPending:
		http.Error(w, `{"error":"already_pending"}`, http.StatusConflict)
	default:
		http.Error(w, `{"error":"rejected"}`, http.StatusForbidden)
	}
}

// handleCancelJoin withdraws a waiting player.
func (s *Server) handleCancelJoin(w http.ResponseWriter, r *http.Request) {
	var req cancelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if s.broker.CancelJoin(req.UserToken) != game.Cancelled {
		http.Error(w, `{"error":"rejected"}`, http.StatusForbidden)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handlePlayWord submits a word to a game.
// Outcome mapping: Scored→200, NotActive→409, Rejected→403.
func (s *Server) handlePlayWord(w http.ResponseWriter, r *http.Request) {
	var req playWordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	score, out := s.broker.PlayWord(chi.URLParam(r, "gameID"), req.UserToken, req.Word)
	switch out {
	case game.Scored:
		_ = json.NewEncoder(w).Encode(scoreRes{Score: score})
	case game.NotActive:
		http.Error(w, `{"error":"not_active"}`, http.StatusConflict)
	default:
		http.Error(w, `{"error":"rejected"}`, http.StatusForbidden)
	}
}

// handleGetStatus returns a session view; ?Brief=yes selects the brief shape.
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	brief := r.URL.Query().Get("Brief") == "yes"
	view, out := s.broker.GetStatus(chi.URLParam(r, "gameID"), brief)
	if out != game.Retrieved {
		http.Error(w, `{"error":"rejected"}`, http.StatusForbidden)
		return
	}
	_ = json.NewEncoder(w).Encode(view)
}

// handleLeaderboard lists the best finished matches.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		http.Error(w, `{"error":"no_database"}`, http.StatusNotImplemented)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.results.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard query")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}
