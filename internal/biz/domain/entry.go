package domain

import "time"

// EntryTimeLayout is the ISO-8601 layout of Entry.CreatedAt in storage
const EntryTimeLayout = "2006-01-02T15:04:05.000000-07:00"

// Entry is a finalized answer set for one completed survey
type Entry struct {
	ID        int64
	ChatID    string
	Kind      SurveyKind
	CreatedAt time.Time
	Answers   Answers
}

// Day returns the local calendar day of the entry
func (e *Entry) Day() string {
	return e.CreatedAt.Format("2006-01-02")
}
