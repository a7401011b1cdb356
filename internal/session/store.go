package session

import (
	"sync"

	"github.com/cherrish/matchmaker/internal/engine"
	"github.com/cherrish/matchmaker/internal/matching"
)

// Store keeps live session machines in memory, keyed by session id.
// Sessions are never evicted; ended sessions stay readable until the
// process exits.
type Store struct {
	mu       sync.RWMutex
	machines map[string]*Machine

	stages      *engine.Stages
	matcher     *matching.Matcher
	transcriber engine.Transcriber
	cfg         Config
}

// NewStore creates an empty store that builds machines with the given
// dependencies.
func NewStore(stages *engine.Stages, matcher *matching.Matcher, transcriber engine.Transcriber, cfg Config) *Store {
	return &Store{
		machines:    make(map[string]*Machine),
		stages:      stages,
		matcher:     matcher,
		transcriber: transcriber,
		cfg:         cfg,
	}
}

// GetOrCreate returns the machine for id, creating a fresh session when the
// id is unknown. An empty id always creates a new session under a generated
// id, returned alongside the machine.
func (s *Store) GetOrCreate(id string) (*Machine, string) {
	if id != "" {
		s.mu.RLock()
		m, ok := s.machines[id]
		s.mu.RUnlock()
		if ok {
			return m, id
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if m, ok := s.machines[id]; ok {
			return m, id
		}
	}

	sess := NewSession(id)
	m := NewMachine(sess, s.stages, s.matcher, s.transcriber, s.cfg)
	s.machines[sess.ID] = m
	return m, sess.ID
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.machines)
}
