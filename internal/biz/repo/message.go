package repo

import (
	"context"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

// MessageRepo is the outbound side of the messaging transport
// Implementations render the choice set the way their platform supports
type MessageRepo interface {
	Send(ctx context.Context, msg domain.Outbound) error
}
