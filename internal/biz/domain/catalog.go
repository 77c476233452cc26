package domain

import (
	"fmt"
	"strings"
)

// AnswerDomain is the closed set of literals accepted for an answer type
type AnswerDomain struct {
	Values  []string          // canonical literals, in display order
	Aliases map[string]string // folded alias -> canonical literal
}

// Survey is the ordered question set of one kind
type Survey struct {
	Kind      SurveyKind
	Title     string
	Questions []Question
}

// Messages holds user-facing texts; they are locale data, not logic
type Messages struct {
	Greeting        string
	Help            string
	Rejected        string
	Saved           string
	SaveFailed      string
	Cancelled       string
	NothingToCancel string
	NoSurvey        string
	OptedOut        string
	UnknownCommand  string
	StatsTemplate   string
	AveragesHeader  string
	AlertRisk       string
	AlertTension    string
}

// Catalog is the static definition of every survey
type Catalog struct {
	Version  string
	Surveys  map[SurveyKind]*Survey
	Domains  map[AnswerType]AnswerDomain
	Risk     RiskPolicy
	Messages Messages
}

// QuestionsFor returns the ordered questions of kind
func (c *Catalog) QuestionsFor(kind SurveyKind) []Question {
	s, ok := c.Surveys[kind]
	if !ok {
		return nil
	}
	return s.Questions
}

// Title returns the display title of kind, falling back to the kind name
func (c *Catalog) Title(kind SurveyKind) string {
	if s, ok := c.Surveys[kind]; ok && s.Title != "" {
		return s.Title
	}
	return string(kind)
}

// ValidValues returns the canonical literals accepted for t
func (c *Catalog) ValidValues(t AnswerType) []string {
	return c.Domains[t].Values
}

// Normalize folds raw input and maps it to a canonical literal of t
func (c *Catalog) Normalize(t AnswerType, raw string) (string, bool) {
	d, ok := c.Domains[t]
	if !ok {
		return "", false
	}
	folded := Fold(raw)
	for _, v := range d.Values {
		if Fold(v) == folded {
			return v, true
		}
	}
	if v, ok := d.Aliases[folded]; ok {
		return v, true
	}
	return "", false
}

// Question returns the question with key in any survey
func (c *Catalog) Question(key string) (Question, bool) {
	for _, kind := range Kinds {
		for _, q := range c.QuestionsFor(kind) {
			if q.Key == key {
				return q, true
			}
		}
	}
	return Question{}, false
}

// Validate checks the catalog is usable. A failure here is fatal at startup.
func (c *Catalog) Validate() error {
	for _, kind := range Kinds {
		s, ok := c.Surveys[kind]
		if !ok || len(s.Questions) == 0 {
			return fmt.Errorf("%w: kind %s has no questions", ErrCatalog, kind)
		}
		seen := make(map[string]bool, len(s.Questions))
		for i, q := range s.Questions {
			if q.Key == "" {
				return fmt.Errorf("%w: %s question %d has no key", ErrCatalog, kind, i)
			}
			if seen[q.Key] {
				return fmt.Errorf("%w: %s has duplicate key %q", ErrCatalog, kind, q.Key)
			}
			seen[q.Key] = true
			if !q.Type.Valid() {
				return fmt.Errorf("%w: %s.%s has unknown answer type %q", ErrCatalog, kind, q.Key, q.Type)
			}
			if len(c.Domains[q.Type].Values) == 0 {
				return fmt.Errorf("%w: answer type %s has no values", ErrCatalog, q.Type)
			}
		}
	}
	for kind := range c.Surveys {
		if !kind.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
	}
	if c.Risk.RiskKey != "" {
		q, ok := c.Question(c.Risk.RiskKey)
		if !ok {
			return fmt.Errorf("%w: risk question %q not found", ErrCatalog, c.Risk.RiskKey)
		}
		if _, ok := c.Normalize(q.Type, c.Risk.NoneValue); !ok {
			return fmt.Errorf("%w: risk none value %q not in %s", ErrCatalog, c.Risk.NoneValue, q.Type)
		}
	}
	return nil
}

// Fold trims and case-folds user input
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
