package study

import (
	"context"
	"errors"
	"sync"

	"github.com/looplab/fsm"
)

// Conversation states.
const (
	StateUnauthenticated = "unauthenticated"
	StateAwaiting        = "awaiting_response"
	StateCompleted       = "completed"
	StateWithdrawn       = "withdrawn"
)

// State machine events.
const (
	eventAuthenticate  = "authenticate"
	eventComplete      = "complete"
	eventRestartRounds = "restart_rounds"
	eventReset         = "reset"
	eventWithdraw      = "withdraw"
)

// Session tracks one participant's progress through the rounds. A session
// is created on first contact and lives for the process lifetime. All
// fields are guarded by the session lock; handlers hold it for the whole
// message so no two in-flight handlers mutate the same session.
type Session struct {
	mu sync.Mutex

	ChatKey       string
	ParticipantID string
	CurrentRound  int
	TotalRounds   int
	Answered      bool // true only after a successful logged write for CurrentRound

	state *fsm.FSM
}

func newSession(chatKey string, totalRounds int) *Session {
	s := &Session{ChatKey: chatKey, TotalRounds: totalRounds}
	s.state = fsm.NewFSM(
		StateUnauthenticated,
		fsm.Events{
			{Name: eventAuthenticate, Src: []string{StateUnauthenticated}, Dst: StateAwaiting},
			{Name: eventComplete, Src: []string{StateAwaiting}, Dst: StateCompleted},
			{Name: eventRestartRounds, Src: []string{StateAwaiting, StateCompleted}, Dst: StateAwaiting},
			{Name: eventReset, Src: []string{StateUnauthenticated, StateAwaiting, StateCompleted}, Dst: StateUnauthenticated},
			{Name: eventWithdraw, Src: []string{StateUnauthenticated, StateAwaiting, StateCompleted}, Dst: StateWithdrawn},
		},
		fsm.Callbacks{},
	)
	return s
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// State returns the current conversation state name.
func (s *Session) State() string { return s.state.Current() }

// fire drives the state machine. Self-transitions (restarting rounds while
// already awaiting, resetting an unauthenticated session) are fine.
func (s *Session) fire(ctx context.Context, event string) error {
	err := s.state.Event(ctx, event)
	if err == nil {
		return nil
	}
	var noop fsm.NoTransitionError
	if errors.As(err, &noop) {
		return nil
	}
	return err
}

// MarkAnswered records that CurrentRound has a logged response. Idempotent.
func (s *Session) MarkAnswered() { s.Answered = true }

// AdvanceRound moves to the next round iff the current round is answered
// and rounds remain; otherwise it is a no-op. The answered flag resets for
// the new round.
func (s *Session) AdvanceRound() {
	if !s.Answered || s.CurrentRound >= s.TotalRounds {
		return
	}
	s.CurrentRound++
	s.Answered = false
}

// SessionStore maps opaque chat keys to live sessions. The map itself is
// guarded; per-participant serialization is the session lock's job, so one
// participant's slow log write never blocks the others.
type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	totalRounds int
}

func NewSessionStore(totalRounds int) *SessionStore {
	return &SessionStore{sessions: map[string]*Session{}, totalRounds: totalRounds}
}

// GetOrCreate returns the live session for chatKey, creating it on first
// contact. A chat key maps to at most one live session.
func (st *SessionStore) GetOrCreate(chatKey string) *Session {
	st.mu.RLock()
	s := st.sessions[chatKey]
	st.mu.RUnlock()
	if s != nil {
		return s
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if s := st.sessions[chatKey]; s != nil {
		return s
	}
	s = newSession(chatKey, st.totalRounds)
	st.sessions[chatKey] = s
	return s
}

// Len reports how many sessions the process has seen.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
