package repository

import (
	"context"
	"ctchen222/Tic-Tac-Toe-AI/internal/session"
	"sync"
)

// MemorySessionRepository keeps sessions in process memory. Sessions never expire.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]session.Session
}

// NewMemorySessionRepository creates an empty in-memory session store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]session.Session)}
}

func (r *MemorySessionRepository) Create(ctx context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *MemorySessionRepository) Find(ctx context.Context, id string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &s, nil
}

// Update runs fn on a copy and only stores it when fn succeeds.
func (r *MemorySessionRepository) Update(ctx context.Context, id string, fn func(s *session.Session) error) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	if err := fn(&s); err != nil {
		return nil, err
	}
	r.sessions[id] = s
	return &s, nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return session.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}
