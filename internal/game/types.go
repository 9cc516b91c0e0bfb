// internal/game/types.go
//
// Core type definitions for the match engine.
// Defines:
//   - State: the session lifecycle (pending/active/completed).
//   - Outcome: the tagged result of every broker operation.
//   - WordPlay/Ledger: a player's append-only scoring history.
//   - Session: the internal record for one two-player match.
//   - StatusView/PlayerView: the external, non-aliased view shapes.
package game

import (
	"time"

	"github.com/boggleduel/server/internal/board"
)

// State is the lifecycle phase of a session.
type State string

const (
	StatePending   State = "pending"
	StateActive    State = "active"
	StateCompleted State = "completed"
)

// Outcome tags the result of a broker operation so callers never have to
// infer failure from missing data.
type Outcome int

const (
	// Rejected covers malformed input, unknown identifiers, callers that
	// are not participants, and out-of-bounds time limits.
	Rejected Outcome = iota
	// FirstPlayerAccepted means a new pending session was created for the caller.
	FirstPlayerAccepted
	// AlreadyPending means the caller is already the waiting player.
	AlreadyPending
	// Paired means the caller became the second player and the match started.
	Paired
	// Cancelled means the caller's pending session was destroyed.
	Cancelled
	// Scored means a word submission was recorded (whatever its score).
	Scored
	// NotActive means the session is pending or completed, so words
	// cannot be played.
	NotActive
	// Retrieved means a status view was produced.
	Retrieved
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case FirstPlayerAccepted:
		return "first_player_accepted"
	case AlreadyPending:
		return "already_pending"
	case Paired:
		return "paired"
	case Cancelled:
		return "cancelled"
	case Scored:
		return "scored"
	case NotActive:
		return "not_active"
	case Retrieved:
		return "retrieved"
	}
	return "unknown"
}

// WordPlay is one recorded submission: the word as stored (lowercase) and
// the score it earned. Entries are never mutated once appended.
type WordPlay struct {
	Word  string `json:"Word"`
	Score int    `json:"Score"`
}

// Ledger is one player's append-only submission history within a session.
type Ledger struct {
	plays []WordPlay
	total int
}

// Append records a submission and folds its score into the total.
func (l *Ledger) Append(word string, score int) {
	l.plays = append(l.plays, WordPlay{Word: word, Score: score})
	l.total += score
}

// Total is the sum of every recorded score, negatives included.
func (l *Ledger) Total() int { return l.total }

// HasScoredPositive reports whether word already earned a positive score.
// Zero and negative entries do not count: only a positive prior play makes
// a resubmission worthless.
func (l *Ledger) HasScoredPositive(word string) bool {
	for _, p := range l.plays {
		if p.Word == word && p.Score > 0 {
			return true
		}
	}
	return false
}

// Plays returns a copy of the history, oldest first.
func (l *Ledger) Plays() []WordPlay {
	out := make([]WordPlay, len(l.plays))
	copy(out, l.plays)
	return out
}

// Session is the internal record for one match. It is mutated only under
// the broker's lock and never handed to callers; views are built by copying.
type Session struct {
	ID        string
	State     State
	PlayerA   string // token of the player who opened the session
	PlayerB   string // empty while pending
	Board     *board.Board
	Requested int // player A's requested time limit, seconds
	TimeLimit int // effective limit, fixed when paired
	StartedAt time.Time
	LedgerA   *Ledger
	LedgerB   *Ledger
}

// ledgerFor returns the ledger belonging to token, or nil for non-participants.
func (s *Session) ledgerFor(token string) *Ledger {
	switch token {
	case s.PlayerA:
		return s.LedgerA
	case s.PlayerB:
		if token == "" {
			return nil
		}
		return s.LedgerB
	}
	return nil
}

// timeLeft is the remaining whole seconds at now, floored at zero.
func (s *Session) timeLeft(now time.Time) int {
	elapsed := int(now.Sub(s.StartedAt) / time.Second)
	if left := s.TimeLimit - elapsed; left > 0 {
		return left
	}
	return 0
}

// PlayerView is the per-player slice of a status view.
type PlayerView struct {
	Nickname    string     `json:"Nickname,omitempty"`
	Score       int        `json:"Score"`
	WordsPlayed []WordPlay `json:"WordsPlayed,omitempty"`
}

// StatusView is what GetStatus returns. Field presence depends on the
// session state and the brief flag:
//   - pending: GameState only.
//   - brief:   GameState, TimeLeft, both Scores.
//   - active:  everything except word histories.
//   - completed (full): everything including word histories.
type StatusView struct {
	GameState State       `json:"GameState"`
	Board     string      `json:"Board,omitempty"`
	TimeLimit *int        `json:"TimeLimit,omitempty"`
	TimeLeft  *int        `json:"TimeLeft,omitempty"`
	Player1   *PlayerView `json:"Player1,omitempty"`
	Player2   *PlayerView `json:"Player2,omitempty"`
}
