package data

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
)

// SheetsConfig locates the mirror spreadsheet
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string // service account JSON
	Range           string // A1 range the rows are appended after, e.g. "entries!A:E"
}

// sheetsRepo appends one row per entry to a Google spreadsheet
type sheetsRepo struct {
	svc *sheets.Service
	cfg SheetsConfig
}

// NewSheetsRepo creates the spreadsheet mirror
func NewSheetsRepo(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (repo.MirrorRepo, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &sheetsRepo{svc: svc, cfg: cfg}, nil
}

// Append writes id, created_at, chat_id, kind and the answers JSON as one row
func (r *sheetsRepo) Append(ctx context.Context, entry *domain.Entry) error {
	row, err := entryRow(entry)
	if err != nil {
		return err
	}
	_, err = r.svc.Spreadsheets.Values.
		Append(r.cfg.SpreadsheetID, r.cfg.Range, &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

func entryRow(entry *domain.Entry) ([]interface{}, error) {
	answers, err := json.Marshal(entry.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	return []interface{}{
		entry.ID,
		entry.CreatedAt.Format(domain.EntryTimeLayout),
		entry.ChatID,
		string(entry.Kind),
		string(answers),
	}, nil
}
