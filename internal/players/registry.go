// internal/players/registry.go
//
// Player identity: nickname registration and token resolution.
// Tokens are UUIDs. The in-memory map is authoritative; when a database is
// supplied, registrations are mirrored there and reloaded at startup so
// tokens survive restarts.
package players

import (
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxNicknameLen bounds a trimmed nickname.
const MaxNicknameLen = 50

// ErrInvalidNickname is returned for empty or over-long nicknames.
var ErrInvalidNickname = errors.New("players: nickname must be 1-50 characters")

// Registry issues player tokens and resolves them back to nicknames.
type Registry struct {
	mu      sync.RWMutex
	byToken map[string]string
	db      *sql.DB // optional mirror
}

// NewRegistry builds a registry. db may be nil; when present, previously
// registered players are loaded back into memory.
func NewRegistry(db *sql.DB) (*Registry, error) {
	r := &Registry{byToken: make(map[string]string), db: db}
	if db == nil {
		return r, nil
	}
	rows, err := db.Query(`SELECT token, nickname FROM players`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var token, nickname string
		if err := rows.Scan(&token, &nickname); err != nil {
			return nil, err
		}
		r.byToken[token] = nickname
	}
	return r, rows.Err()
}

// Register validates the nickname, issues a fresh token, and mirrors the
// row best-effort.
func (r *Registry) Register(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || utf8.RuneCountInString(nickname) > MaxNicknameLen {
		return "", ErrInvalidNickname
	}
	token := uuid.NewString()

	r.mu.Lock()
	r.byToken[token] = nickname
	r.mu.Unlock()

	if r.db != nil {
		now := time.Now().UTC().Format(time.RFC3339)
		if _, err := r.db.Exec(`INSERT INTO players (token, nickname, created_at) VALUES (?,?,?)`,
			token, nickname, now); err != nil {
			log.Warn().Err(err).Msg("mirror player registration")
		}
	}
	return token, nil
}

// Resolve returns the nickname for a token.
func (r *Registry) Resolve(token string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byToken[token]
	return n, ok
}

// Count returns the number of registered players.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byToken)
}
