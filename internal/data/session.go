package data

import (
	"context"
	"sync"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
)

// sessionRepo keeps in-progress surveys in memory; they do not survive a restart
type sessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewSessionRepo creates a new Session repository
func NewSessionRepo() repo.SessionRepo {
	return &sessionRepo{sessions: make(map[string]*domain.Session)}
}

// Get returns a copy of the session of chatID
func (r *sessionRepo) Get(ctx context.Context, chatID string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[chatID].Clone(), nil
}

// Save stores a copy of session, replacing any previous one
func (r *sessionRepo) Save(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ChatID] = session.Clone()
	return nil
}

// Delete removes the session of chatID
func (r *sessionRepo) Delete(ctx context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, chatID)
	return nil
}

// Count returns the number of in-progress sessions
func (r *sessionRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}
