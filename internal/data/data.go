package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/moodcheck/survey-bot/internal/biz"
)

// Options configure NewRepositories
type Options struct {
	DBPath string
	Sheets SheetsConfig // mirror disabled when SpreadsheetID is empty
}

// Data owns the shared SQLite handle
type Data struct {
	DB *sql.DB
}

// Close releases the database
func (d *Data) Close() error {
	return d.DB.Close()
}

// NewRepositories creates all storage repositories
func NewRepositories(ctx context.Context, opts Options) (*biz.Repositories, *Data, error) {
	db, err := OpenDB(opts.DBPath)
	if err != nil {
		return nil, nil, err
	}

	repos := &biz.Repositories{
		Sessions: NewSessionRepo(),
		Entries:  NewEntryRepo(db),
		Users:    NewUserRepo(db),
	}

	if opts.Sheets.SpreadsheetID != "" {
		mirror, err := NewSheetsRepo(ctx, opts.Sheets)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("spreadsheet mirror: %w", err)
		}
		repos.Mirror = mirror
	}

	return repos, &Data{DB: db}, nil
}
