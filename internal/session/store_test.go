package session

import (
	"sync"
	"testing"

	"github.com/cherrish/matchmaker/internal/engine"
	"github.com/cherrish/matchmaker/internal/matching"
)

func newTestStore() *Store {
	stages := engine.NewStages(&scriptedLLM{}, "test-model")
	matcher := matching.New(fakeEmbedder{}, &fakeIndex{}, 0)
	return NewStore(stages, matcher, nil, Config{})
}

func TestGetOrCreateGeneratesIDs(t *testing.T) {
	s := newTestStore()

	m1, id1 := s.GetOrCreate("")
	m2, id2 := s.GetOrCreate("")
	if id1 == "" || id2 == "" {
		t.Fatal("expected generated ids")
	}
	if id1 == id2 {
		t.Fatal("empty ids must create distinct sessions")
	}
	if m1 == m2 {
		t.Fatal("distinct sessions must have distinct machines")
	}

	again, id := s.GetOrCreate(id1)
	if id != id1 || again != m1 {
		t.Fatal("known id should return the same machine")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 live sessions, got %d", s.Len())
	}
}

func TestGetOrCreateUnderContention(t *testing.T) {
	s := newTestStore()

	const goroutines = 32
	machines := make([]*Machine, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			machines[i], _ = s.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if machines[i] != machines[0] {
			t.Fatal("all callers must observe the same machine for one id")
		}
	}
	if s.Len() != 1 {
		t.Fatalf("expected exactly one session, got %d", s.Len())
	}
}
