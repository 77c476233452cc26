package repo

import (
	"context"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

// SessionRepo is the session store interface
// Holds at most one in-progress survey per chat; never persisted across restarts
type SessionRepo interface {
	// Get returns the session of chatID, or nil when the chat is idle
	Get(ctx context.Context, chatID string) (*domain.Session, error)

	// Save creates or replaces the session of session.ChatID
	Save(ctx context.Context, session *domain.Session) error

	// Delete clears the session of chatID; deleting a missing session is not an error
	Delete(ctx context.Context, chatID string) error

	// Count returns the number of in-progress sessions
	Count(ctx context.Context) (int, error)
}
