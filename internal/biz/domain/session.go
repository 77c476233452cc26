package domain

import "time"

// Session is the in-progress survey of one chat
type Session struct {
	ChatID    string
	Kind      SurveyKind
	Cursor    int // index of the pending question
	Answers   Answers
	StartedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a session positioned at the first question
func NewSession(chatID string, kind SurveyKind, now time.Time) *Session {
	return &Session{
		ChatID:    chatID,
		Kind:      kind,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Record stores a validated answer and advances the cursor
func (s *Session) Record(key, value string, now time.Time) {
	s.Answers = append(s.Answers, Answer{Key: key, Value: value})
	s.Cursor++
	s.UpdatedAt = now
}

// IsComplete reports whether every one of total questions has been answered
func (s *Session) IsComplete(total int) bool {
	return s.Cursor >= total
}

// Clone returns a deep copy so stored sessions are never aliased
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Answers = s.Answers.Clone()
	return &c
}
