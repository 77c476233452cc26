package repo

import (
	"context"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

// UserRepo is the roster of chats eligible for scheduled broadcasts
type UserRepo interface {
	// Ensure registers chatID as active if it is not known yet
	Ensure(ctx context.Context, chatID string) error

	// SetActive flips the opt-in flag, registering the chat if needed
	SetActive(ctx context.Context, chatID string, active bool) error

	// Get returns the roster entry, or nil if the chat is unknown
	Get(ctx context.Context, chatID string) (*domain.User, error)

	// ListActive returns a snapshot of all active chat ids
	ListActive(ctx context.Context) ([]string, error)
}
