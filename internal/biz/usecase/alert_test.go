package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

func TestAlertEvaluator(t *testing.T) {
	eval := NewAlertEvaluator(testRiskPolicy())

	tests := []struct {
		name    string
		answers domain.Answers
		want    []domain.AlertKind
	}{
		{
			name:    "intrusive ideation",
			answers: domain.Answers{{Key: "anxiety", Value: "1"}, {Key: "suicidal", Value: "навязчивые"}},
			want:    []domain.AlertKind{domain.AlertRiskKeyword},
		},
		{
			name:    "transient ideation",
			answers: domain.Answers{{Key: "suicidal", Value: "мимолётные"}},
			want:    []domain.AlertKind{domain.AlertRiskKeyword},
		},
		{
			name:    "no ideation",
			answers: domain.Answers{{Key: "suicidal", Value: "нет"}},
			want:    nil,
		},
		{
			name:    "tension at threshold",
			answers: domain.Answers{{Key: "anxiety", Value: "4"}},
			want:    []domain.AlertKind{domain.AlertHighTension},
		},
		{
			name:    "tension below threshold",
			answers: domain.Answers{{Key: "anxiety", Value: "3"}},
			want:    nil,
		},
		{
			name: "several tense answers raise one signal",
			answers: domain.Answers{
				{Key: "anxiety", Value: "5"},
				{Key: "irritability", Value: "4"},
				{Key: "impulsivity", Value: "5"},
			},
			want: []domain.AlertKind{domain.AlertHighTension},
		},
		{
			name:    "high non-tension metric",
			answers: domain.Answers{{Key: "mood", Value: "5"}},
			want:    nil,
		},
		{
			name:    "malformed value skipped",
			answers: domain.Answers{{Key: "anxiety", Value: "много"}, {Key: "impulsivity", Value: "4"}},
			want:    []domain.AlertKind{domain.AlertHighTension},
		},
		{
			name: "both signals",
			answers: domain.Answers{
				{Key: "irritability", Value: "5"},
				{Key: "suicidal", Value: "мимолётные"},
			},
			want: []domain.AlertKind{domain.AlertRiskKeyword, domain.AlertHighTension},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := eval.Evaluate(domain.KindEvening, tt.answers)
			var kinds []domain.AlertKind
			for _, s := range signals {
				kinds = append(kinds, s.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestAlertEvaluatorFirstTenseAnswerWins(t *testing.T) {
	eval := NewAlertEvaluator(testRiskPolicy())
	signals := eval.Evaluate(domain.KindEvening, domain.Answers{
		{Key: "anxiety", Value: "2"},
		{Key: "irritability", Value: "5"},
		{Key: "impulsivity", Value: "4"},
	})
	require.Len(t, signals, 1)
	assert.Contains(t, signals[0].Detail, "irritability")
}
