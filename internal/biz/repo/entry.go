package repo

import (
	"context"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

// EntryRepo is the durable, append-only store of completed entries (SQLite)
type EntryRepo interface {
	// Save appends the entry and returns its id
	Save(ctx context.Context, entry *domain.Entry) (int64, error)

	// CountByKind counts the entries of chatID per survey kind
	CountByKind(ctx context.Context, chatID string) (map[domain.SurveyKind]int, error)

	// ListByDay lists the entries of chatID created on the local day (YYYY-MM-DD)
	ListByDay(ctx context.Context, chatID, day string) ([]*domain.Entry, error)
}
