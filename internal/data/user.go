package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
)

// userRepo implements the roster repository
type userRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new User repository
func NewUserRepo(db *sql.DB) repo.UserRepo {
	return &userRepo{db: db}
}

// Ensure registers chatID as active unless it is already known
func (r *userRepo) Ensure(ctx context.Context, chatID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO users (chat_id, is_active) VALUES (?, 1)`, chatID)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// SetActive sets the opt-in flag of chatID
func (r *userRepo) SetActive(ctx context.Context, chatID string, active bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (chat_id, is_active) VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET is_active = excluded.is_active
	`, chatID, boolToInt(active))
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Get returns the user, or nil if unknown
func (r *userRepo) Get(ctx context.Context, chatID string) (*domain.User, error) {
	var active int
	err := r.db.QueryRowContext(ctx, `SELECT is_active FROM users WHERE chat_id = ?`, chatID).Scan(&active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &domain.User{ChatID: chatID, IsActive: active == 1}, nil
}

// ListActive lists the ids of all active users
func (r *userRepo) ListActive(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT chat_id FROM users WHERE is_active = 1 ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
