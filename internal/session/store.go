// Package session owns per-session conversation state. It replaces a
// process-global history with an explicit store keyed by session id,
// serializing turns per session so messages append in turn order.
package session

import (
	"sync"

	"docchat/internal/domain"
)

// Store maps session ids to conversation state. Safe for concurrent use;
// at most one caller mutates a given session's state at a time.
type Store struct {
	mu           sync.Mutex
	sessions     map[string]*entry
	systemPrompt string
}

type entry struct {
	mu    sync.Mutex
	state *domain.ConversationState
}

func NewStore(systemPrompt string) *Store {
	return &Store{
		sessions:     make(map[string]*entry),
		systemPrompt: systemPrompt,
	}
}

func (s *Store) get(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{state: domain.NewConversationState(s.systemPrompt)}
		s.sessions[id] = e
	}
	return e
}

// WithSession runs fn while holding the session's lock. The state passed to
// fn must not be retained after fn returns.
func (s *Store) WithSession(id string, fn func(state *domain.ConversationState) error) error {
	e := s.get(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.state)
}

// Reset replaces the session's state with a fresh one holding only the
// initial system message.
func (s *Store) Reset(id string) {
	e := s.get(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = domain.NewConversationState(s.systemPrompt)
}

// History returns a copy of the session's message log.
func (s *Store) History(id string) []domain.Message {
	e := s.get(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Message, len(e.state.Messages))
	copy(out, e.state.Messages)
	return out
}
