package study

import (
	"sync"
	"testing"
)

func TestSessionStoreGetOrCreate(t *testing.T) {
	st := NewSessionStore(3)
	a := st.GetOrCreate("chat1")
	b := st.GetOrCreate("chat1")
	if a != b {
		t.Fatalf("GetOrCreate returned distinct sessions for the same key")
	}
	if a.State() != StateUnauthenticated {
		t.Fatalf("new session state = %s, want %s", a.State(), StateUnauthenticated)
	}
	if a.TotalRounds != 3 {
		t.Fatalf("TotalRounds = %d, want 3", a.TotalRounds)
	}
	if st.Len() != 1 {
		t.Fatalf("Len = %d, want 1", st.Len())
	}
}

func TestSessionStoreConcurrentCreate(t *testing.T) {
	st := NewSessionStore(1)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.GetOrCreate("chat1")
		}()
	}
	wg.Wait()
	if st.Len() != 1 {
		t.Fatalf("Len = %d after concurrent creates, want 1", st.Len())
	}
}

func TestMarkAnsweredIdempotent(t *testing.T) {
	s := newSession("chat1", 2)
	s.MarkAnswered()
	answered, round := s.Answered, s.CurrentRound
	s.MarkAnswered()
	if s.Answered != answered || s.CurrentRound != round {
		t.Fatalf("second MarkAnswered changed observable state")
	}
}

func TestAdvanceRound(t *testing.T) {
	s := newSession("chat1", 2)

	s.AdvanceRound() // premature: not answered
	if s.CurrentRound != 0 {
		t.Fatalf("AdvanceRound before answer moved to round %d", s.CurrentRound)
	}

	s.MarkAnswered()
	s.AdvanceRound()
	if s.CurrentRound != 1 {
		t.Fatalf("CurrentRound = %d, want 1", s.CurrentRound)
	}
	if s.Answered {
		t.Fatalf("Answered not reset after advancing")
	}

	s.MarkAnswered()
	s.AdvanceRound()
	if s.CurrentRound != 2 {
		t.Fatalf("CurrentRound = %d, want 2", s.CurrentRound)
	}

	// Terminal: never beyond TotalRounds.
	s.MarkAnswered()
	s.AdvanceRound()
	if s.CurrentRound != 2 {
		t.Fatalf("CurrentRound advanced past TotalRounds: %d", s.CurrentRound)
	}
}
