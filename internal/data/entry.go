package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
)

// entryRepo implements the append-only entry store
type entryRepo struct {
	db *sql.DB
}

// NewEntryRepo creates a new Entry repository
func NewEntryRepo(db *sql.DB) repo.EntryRepo {
	return &entryRepo{db: db}
}

// Save appends an entry; created_at keeps its local offset so the day prefix is local
func (r *entryRepo) Save(ctx context.Context, entry *domain.Entry) (int64, error) {
	answers, err := json.Marshal(entry.Answers)
	if err != nil {
		return 0, fmt.Errorf("failed to encode answers: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (chat_id, kind, created_at, answers)
		VALUES (?, ?, ?, ?)
	`, entry.ChatID, string(entry.Kind), entry.CreatedAt.Format(domain.EntryTimeLayout), string(answers))
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}
	return result.LastInsertId()
}

// CountByKind counts entries of chatID per kind
func (r *entryRepo) CountByKind(ctx context.Context, chatID string) (map[domain.SurveyKind]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) FROM entries WHERE chat_id = ? GROUP BY kind
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.SurveyKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[domain.SurveyKind(kind)] = n
	}
	return counts, rows.Err()
}

// ListByDay lists the entries of chatID whose local date is day (YYYY-MM-DD)
func (r *entryRepo) ListByDay(ctx context.Context, chatID, day string) ([]*domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chat_id, kind, created_at, answers
		FROM entries
		WHERE chat_id = ? AND created_at LIKE ?
		ORDER BY id
	`, chatID, day+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		var e domain.Entry
		var kind, createdAt, answers string
		if err := rows.Scan(&e.ID, &e.ChatID, &kind, &createdAt, &answers); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Kind = domain.SurveyKind(kind)
		if e.CreatedAt, err = time.Parse(domain.EntryTimeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at of entry %d: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(answers), &e.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers of entry %d: %w", e.ID, err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
