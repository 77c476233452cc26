package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
	"github.com/moodcheck/survey-bot/internal/pkg/logger"
)

// RosterUsecase manages which chats receive scheduled broadcasts
type RosterUsecase struct {
	users  repo.UserRepo
	logger zerolog.Logger
}

// NewRosterUsecase creates the roster use case
func NewRosterUsecase(users repo.UserRepo) *RosterUsecase {
	return &RosterUsecase{users: users, logger: logger.Component("roster")}
}

// Register records a first contact; known chats keep their opt-in flag
func (uc *RosterUsecase) Register(ctx context.Context, chatID string) error {
	if err := uc.users.Ensure(ctx, chatID); err != nil {
		return fmt.Errorf("register %s: %w", chatID, err)
	}
	return nil
}

// OptIn adds chatID back to scheduled broadcasts
func (uc *RosterUsecase) OptIn(ctx context.Context, chatID string) error {
	if err := uc.users.SetActive(ctx, chatID, true); err != nil {
		return fmt.Errorf("opt in %s: %w", chatID, err)
	}
	uc.logger.Info().Str("chat_id", chatID).Msg("opted in")
	return nil
}

// OptOut removes chatID from scheduled broadcasts. Stored entries are kept.
func (uc *RosterUsecase) OptOut(ctx context.Context, chatID string) error {
	if err := uc.users.SetActive(ctx, chatID, false); err != nil {
		return fmt.Errorf("opt out %s: %w", chatID, err)
	}
	uc.logger.Info().Str("chat_id", chatID).Msg("opted out")
	return nil
}

// IsActive reports whether chatID currently receives broadcasts
func (uc *RosterUsecase) IsActive(ctx context.Context, chatID string) (bool, error) {
	u, err := uc.users.Get(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("get user %s: %w", chatID, err)
	}
	return u != nil && u.IsActive, nil
}

// ActiveChats returns a snapshot of the broadcast roster
func (uc *RosterUsecase) ActiveChats(ctx context.Context) ([]string, error) {
	ids, err := uc.users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return ids, nil
}

// User returns the roster entry of chatID, or nil
func (uc *RosterUsecase) User(ctx context.Context, chatID string) (*domain.User, error) {
	return uc.users.Get(ctx, chatID)
}
