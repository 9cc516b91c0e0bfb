// internal/game/broker.go
//
// The matchmaking front door and the only owner of live game state.
//
// The broker holds the session table and the single pending slot, and runs
// all four operations (Join, CancelJoin, PlayWord, GetStatus) under one
// global mutex. That serializes every game-state mutation across all
// sessions: simple, and no caller can observe a half-updated pending slot
// or ledger. Sharding the lock per session is a known follow-up; the
// pending slot would keep its own lock either way since that invariant is
// global.
//
// The broker is a pure decision engine: it does not log and does not retry.
// The durable mirror is best-effort and must not influence outcomes.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/boggleduel/server/internal/board"
)

const (
	// MinTimeLimit and MaxTimeLimit bound a join request, in seconds.
	MinTimeLimit = 5
	MaxTimeLimit = 120
	// MaxWordLength caps a submission after trimming.
	MaxWordLength = 30
)

// Resolver maps a player token to a nickname. Registration itself is
// someone else's job; the broker only checks that a token is known.
type Resolver interface {
	Resolve(token string) (nickname string, ok bool)
}

// Dictionary answers membership for candidate words.
type Dictionary interface {
	Contains(word string) bool
}

// Recorder mirrors state changes to a durable store. Implementations are
// called synchronously inside the broker lock and must not block for long;
// failures are theirs to log, never the broker's to act on.
type Recorder interface {
	SessionCreated(s *Session)
	SessionPaired(s *Session)
	SessionCancelled(id string)
	WordPlayed(sessionID, token string, play WordPlay)
	SessionCompleted(s *Session, nickA, nickB string)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) SessionCreated(*Session)                   {}
func (NopRecorder) SessionPaired(*Session)                    {}
func (NopRecorder) SessionCancelled(string)                   {}
func (NopRecorder) WordPlayed(string, string, WordPlay)       {}
func (NopRecorder) SessionCompleted(*Session, string, string) {}

// Broker pairs arriving players into sessions and routes play and status
// requests to them.
type Broker struct {
	mu       sync.Mutex
	resolver Resolver
	dict     Dictionary
	rec      Recorder
	sessions map[string]*Session
	pending  *Session

	// Clock and board factory, overridable in tests.
	now      func() time.Time
	newBoard func() *board.Board
}

// NewBroker wires a broker with its collaborators. rec may be nil when no
// durable mirror is configured.
func NewBroker(resolver Resolver, dict Dictionary, rec Recorder) *Broker {
	if rec == nil {
		rec = NopRecorder{}
	}
	return &Broker{
		resolver: resolver,
		dict:     dict,
		rec:      rec,
		sessions: make(map[string]*Session),
		now:      time.Now,
		newBoard: board.New,
	}
}

// Join enters the caller into matchmaking.
//
// Outcomes:
//   - Rejected: unknown token, or time limit outside [MinTimeLimit, MaxTimeLimit].
//   - FirstPlayerAccepted: a new pending session was created; its id is returned.
//   - AlreadyPending: the caller is already the waiting player; no change.
//   - Paired: the caller completed the pending session, which is now active
//     with the averaged time limit and a start instant of now.
func (b *Broker) Join(token string, timeLimit int) (string, Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.resolver.Resolve(token); !ok {
		return "", Rejected
	}
	if timeLimit < MinTimeLimit || timeLimit > MaxTimeLimit {
		return "", Rejected
	}

	if b.pending == nil {
		s := &Session{
			ID:        randomID(),
			State:     StatePending,
			PlayerA:   token,
			Board:     b.newBoard(),
			Requested: timeLimit,
			LedgerA:   &Ledger{},
			LedgerB:   &Ledger{},
		}
		b.sessions[s.ID] = s
		b.pending = s
		b.rec.SessionCreated(s)
		return s.ID, FirstPlayerAccepted
	}

	if b.pending.PlayerA == token {
		return b.pending.ID, AlreadyPending
	}

	s := b.pending
	s.PlayerB = token
	s.TimeLimit = (s.Requested + timeLimit) / 2
	s.StartedAt = b.now()
	s.State = StateActive
	b.pending = nil
	b.rec.SessionPaired(s)
	return s.ID, Paired
}

// CancelJoin destroys the caller's pending session. Rejected when there is
// no pending session or the caller is not its first player; safe to call
// any number of times.
func (b *Broker) CancelJoin(token string) Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending == nil || b.pending.PlayerA != token {
		return Rejected
	}
	id := b.pending.ID
	delete(b.sessions, id)
	b.pending = nil
	b.rec.SessionCancelled(id)
	return Cancelled
}

// PlayWord submits a word to an active session on behalf of token.
//
// Every accepted submission is appended to the caller's ledger, valid or
// not; that is what makes replays detectable. The returned score follows
// the length table for fresh valid words, 0 for replays of positively
// scored words, and -1 (words longer than two letters) or 0 otherwise for
// invalid ones.
func (b *Broker) PlayWord(sessionID, token, rawWord string) (int, Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	word := strings.ToLower(strings.TrimSpace(rawWord))
	if word == "" || len(word) > MaxWordLength {
		return 0, Rejected
	}
	s, ok := b.sessions[sessionID]
	if !ok {
		return 0, Rejected
	}
	led := s.ledgerFor(token)
	if led == nil {
		return 0, Rejected
	}

	b.expireIfDue(s)
	if s.State != StateActive {
		return 0, NotActive
	}

	score := b.scoreWord(s, led, word)
	led.Append(word, score)
	b.rec.WordPlayed(s.ID, token, WordPlay{Word: word, Score: score})
	return score, Scored
}

// scoreWord decides what a submission is worth without mutating anything.
func (b *Broker) scoreWord(s *Session, led *Ledger, word string) int {
	if s.Board.CanBeFormed(word) && b.dict.Contains(word) {
		if led.HasScoredPositive(word) {
			return 0
		}
		return scoreForLength(len(word))
	}
	if len(word) > 2 {
		return -1
	}
	return 0
}

// scoreForLength is the fixed word-length scoring table.
func scoreForLength(n int) int {
	switch {
	case n < 3:
		return 0
	case n <= 4:
		return 1
	case n == 5:
		return 2
	case n == 6:
		return 3
	case n == 7:
		return 5
	default:
		return 11
	}
}

// GetStatus builds a view of the session. Looking at an active session is
// also what expires it: if the time limit has elapsed the session flips to
// completed here, exactly once.
func (b *Broker) GetStatus(sessionID string, brief bool) (*StatusView, Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[sessionID]
	if !ok {
		return nil, Rejected
	}

	if s.State == StatePending {
		return &StatusView{GameState: StatePending}, Retrieved
	}

	b.expireIfDue(s)
	left := s.timeLeft(b.now())
	nickA, _ := b.resolver.Resolve(s.PlayerA)
	nickB, _ := b.resolver.Resolve(s.PlayerB)

	view := &StatusView{
		GameState: s.State,
		TimeLeft:  &left,
		Player1:   &PlayerView{Score: s.LedgerA.Total()},
		Player2:   &PlayerView{Score: s.LedgerB.Total()},
	}
	if brief {
		return view, Retrieved
	}

	limit := s.TimeLimit
	view.Board = s.Board.String()
	view.TimeLimit = &limit
	view.Player1.Nickname = nickA
	view.Player2.Nickname = nickB
	if s.State == StateCompleted {
		view.Player1.WordsPlayed = s.LedgerA.Plays()
		view.Player2.WordsPlayed = s.LedgerB.Plays()
	}
	return view, Retrieved
}

// expireIfDue flips an active session to completed once its time limit has
// elapsed. Completion is announced to the recorder with resolved nicknames
// so the durable side can store a final result.
func (b *Broker) expireIfDue(s *Session) {
	if s.State != StateActive || s.timeLeft(b.now()) > 0 {
		return
	}
	s.State = StateCompleted
	nickA, _ := b.resolver.Resolve(s.PlayerA)
	nickB, _ := b.resolver.Resolve(s.PlayerB)
	b.rec.SessionCompleted(s, nickA, nickB)
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
