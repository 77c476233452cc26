package domain

import (
	"fmt"
	"strings"
)

// SurveyKind identifies one of the fixed survey variants
type SurveyKind string

const (
	KindMorning SurveyKind = "morning"
	KindDay     SurveyKind = "day"
	KindEvening SurveyKind = "evening"
)

// Kinds lists every survey kind in schedule order
var Kinds = []SurveyKind{KindMorning, KindDay, KindEvening}

// Valid reports whether k belongs to the closed set of kinds
func (k SurveyKind) Valid() bool {
	switch k {
	case KindMorning, KindDay, KindEvening:
		return true
	}
	return false
}

// ParseKind converts user or URL input into a SurveyKind
func ParseKind(s string) (SurveyKind, error) {
	k := SurveyKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// AnswerType is the answer domain of a question
type AnswerType string

const (
	AnswerScale0to5    AnswerType = "scale0to5"
	AnswerYesNo        AnswerType = "yes_no"
	AnswerTristateRisk AnswerType = "tristate_risk"
)

// Valid reports whether t is a known answer type
func (t AnswerType) Valid() bool {
	switch t {
	case AnswerScale0to5, AnswerYesNo, AnswerTristateRisk:
		return true
	}
	return false
}

// Question is a single step of a survey
type Question struct {
	Key    string
	Prompt string
	Type   AnswerType
}
