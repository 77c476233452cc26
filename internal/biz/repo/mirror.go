package repo

import (
	"context"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

// MirrorRepo is the best-effort external copy of entries (spreadsheet)
type MirrorRepo interface {
	Append(ctx context.Context, entry *domain.Entry) error
}
